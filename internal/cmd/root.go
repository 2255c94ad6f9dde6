// Package cmd is the sportify command line client. Each command loads the
// configuration, restores the persisted session and then drives the same
// forms, session store and modal controller a graphical front end would.
package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

// NewRootCommand builds the sportify command tree.
func NewRootCommand() *cobra.Command {
	return newRootCmd(&app{})
}

// ExecuteContext runs the command line client until ctx is done.
func ExecuteContext(ctx context.Context) error {
	a := &app{}
	defer a.close()
	return newRootCmd(a).ExecuteContext(ctx)
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "sportify",
		Short: "Sportify account access from the terminal",
		Long: `sportify signs players and managers in to Sportify, keeps the session
between runs and shows the navigation each role is entitled to.

Examples:
  sportify login player --email jane@example.com
  sportify signup manager --attachment ./registration.pdf
  sportify status
  sportify logout`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open(commandContext(cmd), cmd.OutOrStdout())
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default is $HOME/.sportify/config.yaml)")
	root.PersistentFlags().BoolVar(&a.noInput, "no-input", false, "never prompt, fail when a required value is missing")

	root.AddCommand(
		newLoginCmd(a),
		newSignupCmd(a),
		newVerifyEmailCmd(a),
		newForgotPasswordCmd(a),
		newResetPasswordCmd(a),
		newLogoutCmd(a),
		newStatusCmd(a),
		newRefreshCmd(a),
		newMenuCmd(a),
		newWatchCmd(a),
		newImageURLCmd(a),
	)
	return root
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
