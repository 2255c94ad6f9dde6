package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/sportify-auth-client/internal/config"
	"github.com/jrsteele09/sportify-auth-client/internal/logging"
	"github.com/jrsteele09/sportify-auth-client/mockapi"
	"github.com/jrsteele09/sportify-auth-client/users"
	"github.com/rs/zerolog/log"
)

// demoPassword is the password of every seeded account.
const demoPassword = "Sportify123"

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("Error running mock API")
	}
	log.Info().Msg("Mock API stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Msgf("Recovered from panic: %v", r)
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c, err := config.Load(os.Getenv("SPORTIFY_CONFIG"))
	if err != nil {
		return fmt.Errorf("config.Load: %w", err)
	}
	logger := logging.Setup(c.GetEnv(), c.GetLogLevel())
	displayAppname(c.GetAppName() + " API")

	api := mockapi.New(c, mockapi.WithLogger(logger))
	if err := seedDemoAccounts(api); err != nil {
		return err
	}

	server := &http.Server{Addr: c.GetPort(), Handler: api}
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- listenAndServe(server)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-waitForStopSignal():
	}
	return shutdown(server)
}

func seedDemoAccounts(api *mockapi.Server) error {
	accounts := []mockapi.Account{
		{FullName: "Demo Player", Email: "player@sportify.test", Role: users.RolePlayer, Verified: true, ProfileImage: "uploads/player.png"},
		{FullName: "Demo Manager", Email: "manager@sportify.test", Role: users.RoleManager, Approved: true},
		{FullName: "Secure Player", Email: "2fa@sportify.test", Role: users.RolePlayer, Verified: true, TwoFactor: true},
	}
	for _, account := range accounts {
		if err := api.SeedAccount(account, demoPassword); err != nil {
			return fmt.Errorf("seed %s: %w", account.Email, err)
		}
		log.Info().Str("email", account.Email).Str("role", string(account.Role)).Msg("demo account")
	}
	return nil
}

func listenAndServe(server *http.Server) error {
	log.Info().Msgf("Mock API listening on %s", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
