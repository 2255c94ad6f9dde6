package cmd

import (
	"github.com/jrsteele09/sportify-auth-client/forms"
	"github.com/jrsteele09/sportify-auth-client/navigation"
	"github.com/jrsteele09/sportify-auth-client/users"
	"github.com/spf13/cobra"
)

func newVerifyEmailCmd(a *app) *cobra.Command {
	var email, code string

	cmd := &cobra.Command{
		Use:   "verify-email",
		Short: "Confirm a player's email with the emailed code",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.ask("Email", "email", &email, false); err != nil {
				return err
			}
			if err := a.ask("Verification code", "code", &code, false); err != nil {
				return err
			}

			a.modals.Open(navigation.ModalVerifyEmail)
			outcome := forms.NewVerifyEmail(a.gateway, a.sessions).Submit(commandContext(cmd), email, code)
			a.modals.Apply(outcome)
			if outcome.Kind != forms.OutcomeSuccess {
				return outcome.Err
			}

			a.success("%s", outcome.Message)
			if a.sessions.IsAuthenticated() {
				a.printSession()
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&code, "code", "", "verification code")
	return cmd
}

func newForgotPasswordCmd(a *app) *cobra.Command {
	var (
		email   string
		manager bool
	)

	cmd := &cobra.Command{
		Use:   "forgot-password",
		Short: "Email a password reset link",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.ask("Email", "email", &email, false); err != nil {
				return err
			}

			role := users.RolePlayer
			if manager {
				role = users.RoleManager
			}
			a.modals.Open(signInModal(role))
			a.modals.SwitchToPasswordReset()

			outcome := forms.NewForgotPassword(a.gateway).Submit(commandContext(cmd), email)
			a.modals.Apply(outcome)
			if outcome.Kind != forms.OutcomeSuccess {
				return outcome.Err
			}
			a.success("%s", outcome.Message)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().BoolVar(&manager, "manager", false, "reset a manager account")
	return cmd
}

func newResetPasswordCmd(a *app) *cobra.Command {
	var in forms.ResetPasswordInput

	cmd := &cobra.Command{
		Use:   "reset-password",
		Short: "Choose a new password with the token from the reset link",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.ask("Reset token", "token", &in.Token, false); err != nil {
				return err
			}
			if err := a.askNewPassword(&in.Password, &in.ConfirmPassword); err != nil {
				return err
			}

			outcome := forms.NewResetPassword(a.gateway).Submit(commandContext(cmd), in)
			if outcome.Kind != forms.OutcomeSuccess {
				return outcome.Err
			}
			a.success("%s", outcome.Message)
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Token, "token", "", "token from the reset link")
	cmd.Flags().StringVar(&in.Password, "password", "", "new password (prompted when omitted)")
	return cmd
}
