package cmd

import (
	"fmt"

	sperrors "github.com/jrsteele09/sportify-auth-client/internal/errors"
	"github.com/jrsteele09/sportify-auth-client/navigation"
	"github.com/jrsteele09/sportify-auth-client/sessions"
	"github.com/spf13/cobra"
)

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			wasSignedIn := a.sessions.IsAuthenticated()
			if err := a.sessions.Logout(commandContext(cmd)); err != nil {
				return err
			}
			if wasSignedIn {
				a.success("Signed out.")
			} else {
				a.hint("Not signed in.")
			}
			return nil
		},
	}
}

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show who is signed in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a.printStatus(a.sessions.Current())
			return nil
		},
	}
}

func newRefreshCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Re-validate the stored session with the API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			state, err := a.sessions.Refresh(commandContext(cmd))
			if err != nil {
				return fmt.Errorf("could not reach the API, session kept: %w", err)
			}
			a.printStatus(state)
			return nil
		},
	}
}

func newMenuCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "menu",
		Short: "Show the navigation available to the current session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a.printSession()
			return nil
		},
	}
}

func newWatchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Follow sign-ins and sign-outs made by other sportify processes",
		Long: `Follow sign-ins and sign-outs made by other sportify processes sharing the
same session. Requires the redis storage backend.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a.printStatus(a.sessions.Current())
			unsubscribe := a.sessions.Subscribe(func() {
				a.printStatus(a.sessions.Current())
			})
			defer unsubscribe()

			ctx := commandContext(cmd)
			err := a.sessions.Watch(ctx)
			switch {
			case sperrors.Is(err, sperrors.ErrUnsupported):
				return fmt.Errorf("watch needs the redis storage backend: %w", err)
			case ctx.Err() != nil:
				// Interrupted
				return nil
			}
			return err
		},
	}
}

func newImageURLCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "image-url [path]",
		Short: "Print the absolute URL of an image path, or of the profile image",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.sessions.Current().Session.Profile.ProfileImagePath
			if len(args) == 1 {
				path = args[0]
			}
			resolved := a.assets.Resolve(path)
			if resolved == "" {
				return fmt.Errorf("no image path given and the session has no profile image")
			}
			fmt.Fprintln(a.out, resolved)
			return nil
		},
	}
}

func (a *app) printStatus(state sessions.State) {
	if !state.Authenticated() {
		fmt.Fprintln(a.out, a.styles.warn.Render("Signed out"))
		return
	}

	profile := state.Session.Profile
	rows := [][2]string{
		{"Name", profile.FullName},
		{"Email", profile.Email},
		{"Role", string(profile.Role)},
	}
	if image := a.assets.Resolve(profile.ProfileImagePath); image != "" {
		rows = append(rows, [2]string{"Image", image})
	}
	if navigation.HasProfile(state) {
		rows = append(rows, [2]string{"Profile", navigation.PathProfile})
	}
	for _, row := range rows {
		fmt.Fprintln(a.out, a.styles.label.Render(row[0])+row[1])
	}
}
