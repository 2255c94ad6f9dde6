package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/jrsteele09/sportify-auth-client/assets"
	"github.com/jrsteele09/sportify-auth-client/forms"
	"github.com/jrsteele09/sportify-auth-client/gateway"
	"github.com/jrsteele09/sportify-auth-client/internal/config"
	"github.com/jrsteele09/sportify-auth-client/internal/logging"
	"github.com/jrsteele09/sportify-auth-client/navigation"
	"github.com/jrsteele09/sportify-auth-client/sessions"
	"github.com/jrsteele09/sportify-auth-client/sessions/storage"
	"github.com/jrsteele09/sportify-auth-client/stepup"
	"github.com/jrsteele09/sportify-auth-client/users"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// app holds the components one command invocation works with.
type app struct {
	configPath string
	noInput    bool

	out      io.Writer
	cfg      config.Config
	logger   zerolog.Logger
	registry *prometheus.Registry
	storage  storage.Storage
	gateway  *gateway.HTTPGateway
	sessions *sessions.Store
	stepUp   *stepup.Flow
	modals   *navigation.Controller
	assets   *assets.Resolver
	styles   styles
	prompt   prompter
}

func (a *app) open(ctx context.Context, out io.Writer) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	a.cfg = cfg
	a.out = out
	a.styles = defaultStyles()
	a.logger = logging.Setup(cfg.GetEnv(), cfg.GetLogLevel())
	if a.prompt == nil {
		a.prompt = newPrompter(!a.noInput && shouldPrompt())
	}

	a.assets, err = assets.NewResolver(cfg.GetAssetsURL())
	if err != nil {
		return err
	}

	a.registry = prometheus.NewRegistry()
	a.gateway, err = gateway.New(cfg.GetAPIURL(),
		gateway.WithTimeout(cfg.GetAPITimeout()),
		gateway.WithLogger(a.logger),
		gateway.WithRegisterer(a.registry),
	)
	if err != nil {
		return err
	}

	a.storage, err = storage.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open session storage: %w", err)
	}

	a.modals = navigation.NewController()
	a.sessions, err = sessions.NewStore(a.storage, a.gateway,
		sessions.WithLogger(a.logger),
		sessions.WithNavigator(sessions.NavigatorFunc(func(path string) {
			a.modals.Close()
			a.logger.Debug().Str("path", path).Msg("navigate")
		})),
	)
	if err != nil {
		return err
	}
	a.stepUp = stepup.NewFlow(a.gateway, stepup.WithLogger(a.logger))

	if _, err := a.sessions.Restore(ctx); err != nil {
		return fmt.Errorf("failed to restore session: %w", err)
	}
	return nil
}

// close releases the storage. It is safe to call more than once.
func (a *app) close() error {
	if a.storage == nil {
		return nil
	}
	err := a.storage.Close()
	a.storage = nil
	return err
}

func (a *app) signIn(role users.Role) *forms.SignIn {
	if role == users.RoleManager {
		return forms.NewManagerSignIn(a.gateway, a.sessions, a.stepUp,
			forms.WithLogger(a.logger),
			forms.WithRecaptchaRequired(a.cfg.GetRequireRecaptcha()),
		)
	}
	return forms.NewPlayerSignIn(a.gateway, a.sessions, a.stepUp, forms.WithLogger(a.logger))
}

func signInModal(role users.Role) navigation.Modal {
	if role == users.RoleManager {
		return navigation.ModalManagerSignIn
	}
	return navigation.ModalPlayerSignIn
}

// printSession writes who is signed in followed by the menu.
func (a *app) printSession() {
	fmt.Fprint(a.out, navigation.Render(a.sessions.Current(), a.styles.menu))
}

func (a *app) success(format string, args ...any) {
	fmt.Fprintln(a.out, a.styles.success.Render(fmt.Sprintf(format, args...)))
}

func (a *app) warn(format string, args ...any) {
	fmt.Fprintln(a.out, a.styles.warn.Render(fmt.Sprintf(format, args...)))
}

func (a *app) hint(format string, args ...any) {
	fmt.Fprintln(a.out, a.styles.hint.Render(fmt.Sprintf(format, args...)))
}
