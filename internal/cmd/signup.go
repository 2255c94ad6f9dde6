package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jrsteele09/sportify-auth-client/forms"
	"github.com/jrsteele09/sportify-auth-client/gateway"
	"github.com/jrsteele09/sportify-auth-client/navigation"
	"github.com/spf13/cobra"
)

const termsPrompt = "I agree to the Terms of Service and Privacy Policy"

func newSignupCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create a player account or apply as a manager",
	}
	cmd.AddCommand(newPlayerSignupCmd(a), newManagerSignupCmd(a))
	return cmd
}

func newPlayerSignupCmd(a *app) *cobra.Command {
	var in forms.PlayerSignUpInput

	cmd := &cobra.Command{
		Use:   "player",
		Short: "Create a player account",
		Long: `Create a player account. Unless the API signs the player in straight away,
a verification code is emailed and must be confirmed with verify-email.

Examples:
  sportify signup player --name "Jane Doe" --email jane@example.com --accept-terms`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.ask("Full name", "name", &in.FullName, false); err != nil {
				return err
			}
			if err := a.ask("Email", "email", &in.Email, false); err != nil {
				return err
			}
			if err := a.askNewPassword(&in.Password, &in.ConfirmPassword); err != nil {
				return err
			}
			if err := a.askTerms(&in.AcceptTerms); err != nil {
				return err
			}

			a.modals.Open(navigation.ModalPlayerSignUp)
			outcome := forms.NewPlayerSignUp(a.gateway, a.sessions).Submit(commandContext(cmd), in)
			a.modals.Apply(outcome)

			switch outcome.Kind {
			case forms.OutcomeSuccess:
				a.success("Account created. Signed in as %s.", outcome.Email)
				a.printSession()
				return nil
			case forms.OutcomeVerificationRequired:
				a.success("%s", outcome.Message)
				a.hint("Run: sportify verify-email --email %s", outcome.Email)
				return nil
			}
			return outcome.Err
		},
	}

	cmd.Flags().StringVar(&in.FullName, "name", "", "full name")
	cmd.Flags().StringVar(&in.Email, "email", "", "email address")
	cmd.Flags().StringVar(&in.Password, "password", "", "password (prompted when omitted)")
	cmd.Flags().BoolVar(&in.AcceptTerms, "accept-terms", false, "agree to the Terms of Service and Privacy Policy")
	return cmd
}

func newManagerSignupCmd(a *app) *cobra.Command {
	var (
		in         forms.ManagerSignUpInput
		attachment string
	)

	cmd := &cobra.Command{
		Use:   "manager",
		Short: "Apply for a manager account",
		Long: `Apply for a manager account. The application, with its supporting document,
waits for an administrator's approval before the manager can sign in.

Examples:
  sportify signup manager --name "Max Doe" --email max@example.com --company "Five A Side" \
    --cin 12345678 --phone 20123456 --attachment ./registration.pdf --accept-terms`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			prompts := []struct {
				title, flag string
				value       *string
			}{
				{"Full name", "name", &in.FullName},
				{"Email", "email", &in.Email},
				{"Company name", "company", &in.CompanyName},
				{"CIN (8 digits)", "cin", &in.NationalID},
				{"Phone number (8 digits)", "phone", &in.PhoneNumber},
				{"Supporting document", "attachment", &attachment},
			}
			for _, p := range prompts {
				if err := a.ask(p.title, p.flag, p.value, false); err != nil {
					return err
				}
			}
			if err := a.askTerms(&in.AcceptTerms); err != nil {
				return err
			}

			file, err := os.Open(attachment)
			if err != nil {
				return fmt.Errorf("failed to open attachment: %w", err)
			}
			defer file.Close()
			in.Attachment = gateway.Attachment{Name: filepath.Base(attachment), Content: file}

			a.modals.Open(navigation.ModalManagerSignUp)
			outcome := forms.NewManagerSignUp(a.gateway).Submit(commandContext(cmd), in)
			a.modals.Apply(outcome)

			if outcome.Kind != forms.OutcomePendingApproval {
				return outcome.Err
			}
			a.success("%s", outcome.Message)
			a.hint("Once approved, run: sportify login manager --email %s", outcome.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&in.FullName, "name", "", "full name")
	cmd.Flags().StringVar(&in.Email, "email", "", "email address")
	cmd.Flags().StringVar(&in.CompanyName, "company", "", "company name")
	cmd.Flags().StringVar(&in.NationalID, "cin", "", "national identity number (8 digits)")
	cmd.Flags().StringVar(&in.PhoneNumber, "phone", "", "phone number (8 digits)")
	cmd.Flags().StringVar(&attachment, "attachment", "", "path of the supporting document")
	cmd.Flags().BoolVar(&in.AcceptTerms, "accept-terms", false, "agree to the Terms of Service and Privacy Policy")
	return cmd
}

// askNewPassword prompts for a password and its confirmation. Without a
// terminal the flag value is its own confirmation.
func (a *app) askNewPassword(password, confirm *string) error {
	if *password != "" && !a.prompt.Interactive() {
		*confirm = *password
		return nil
	}
	if err := a.ask("Password", "password", password, true); err != nil {
		return err
	}
	return a.ask("Confirm password", "password", confirm, true)
}

func (a *app) askTerms(accepted *bool) error {
	if *accepted || !a.prompt.Interactive() {
		return nil
	}
	return a.prompt.Confirm(termsPrompt, accepted)
}
