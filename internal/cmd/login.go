package cmd

import (
	"context"
	"fmt"

	"github.com/jrsteele09/sportify-auth-client/forms"
	sperrors "github.com/jrsteele09/sportify-auth-client/internal/errors"
	"github.com/jrsteele09/sportify-auth-client/stepup"
	"github.com/jrsteele09/sportify-auth-client/users"
	"github.com/spf13/cobra"
)

// maxCodeAttempts is how many second factor codes are prompted for before
// the verification is cancelled.
const maxCodeAttempts = 3

func newLoginCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in as a player or a manager",
		Long: `Sign in with a player or manager account.

An account that belongs to the other role is refused. Accounts with two
factor authentication are asked for the code that was emailed to them.

Examples:
  sportify login player --email jane@example.com
  sportify login manager --email max@example.com --code 123456`,
	}
	cmd.AddCommand(
		newLoginRoleCmd(a, users.RolePlayer),
		newLoginRoleCmd(a, users.RoleManager),
	)
	return cmd
}

func newLoginRoleCmd(a *app, role users.Role) *cobra.Command {
	var (
		in   forms.SignInInput
		code string
	)

	cmd := &cobra.Command{
		Use:   role.Path(),
		Short: fmt.Sprintf("Sign in with a %s account", role.Path()),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			if err := a.ask("Email", "email", &in.Email, false); err != nil {
				return err
			}
			if err := a.ask("Password", "password", &in.Password, true); err != nil {
				return err
			}
			if role == users.RoleManager && a.cfg.GetRequireRecaptcha() {
				if err := a.ask("reCAPTCHA token", "recaptcha-token", &in.RecaptchaToken, false); err != nil {
					return err
				}
			}

			a.modals.Open(signInModal(role))
			outcome := a.signIn(role).Submit(ctx, in)
			a.modals.Apply(outcome)

			switch outcome.Kind {
			case forms.OutcomeSuccess:
				a.success("Signed in as %s.", outcome.Email)
				a.printSession()
				return nil
			case forms.OutcomeStepUp:
				return a.completeStepUp(ctx, code)
			case forms.OutcomeVerificationRequired:
				a.warn("%s", outcome.Message)
				a.hint("Run: sportify verify-email --email %s", outcome.Email)
			}
			return outcome.Err
		},
	}

	cmd.Flags().StringVar(&in.Email, "email", "", "account email")
	cmd.Flags().StringVar(&in.Password, "password", "", "account password (prompted when omitted)")
	cmd.Flags().StringVar(&code, "code", "", "two factor code, when the account asks for one")
	if role == users.RoleManager {
		cmd.Flags().StringVar(&in.RecaptchaToken, "recaptcha-token", "", "reCAPTCHA response token")
	}
	return cmd
}

// completeStepUp asks for the second factor code until it is accepted, the
// user gives up or maxCodeAttempts is reached.
func (a *app) completeStepUp(ctx context.Context, code string) error {
	a.hint("A verification code was sent to %s.", a.stepUp.Email())

	for attempt := 1; ; attempt++ {
		if err := a.ask("Verification code", "code", &code, false); err != nil {
			a.cancelStepUp()
			return err
		}

		err := a.stepUp.Submit(ctx, code)
		if err == nil {
			a.modals.StepUpVerified()
			a.success("Signed in as %s.", a.sessions.Current().Session.Profile.Email)
			a.printSession()
			return nil
		}

		if a.stepUp.State() != stepup.AwaitingCode {
			a.modals.Close()
			return err
		}
		if !a.prompt.Interactive() || attempt >= maxCodeAttempts {
			a.cancelStepUp()
			return err
		}
		a.warn("%s", sperrors.UserMessage(err, stepup.MsgInvalidCode))
		code = ""
	}
}

func (a *app) cancelStepUp() {
	a.stepUp.Cancel()
	a.modals.StepUpCancelled()
}
