package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
)

// prompter asks for values that were not passed as flags.
type prompter interface {
	Input(title string, value *string, secret bool) error
	Confirm(title string, value *bool) error
	Interactive() bool
}

func newPrompter(interactive bool) prompter {
	if interactive {
		return huhPrompter{}
	}
	return noPrompter{}
}

type huhPrompter struct{}

func (huhPrompter) Input(title string, value *string, secret bool) error {
	input := huh.NewInput().
		Title(title).
		Value(value)
	if secret {
		input = input.EchoMode(huh.EchoModePassword)
	}

	if err := huh.NewForm(huh.NewGroup(input)).Run(); err != nil {
		return fmt.Errorf("prompt failed: %w", err)
	}
	return nil
}

func (huhPrompter) Confirm(title string, value *bool) error {
	confirm := huh.NewConfirm().
		Title(title).
		Value(value)

	if err := huh.NewForm(huh.NewGroup(confirm)).Run(); err != nil {
		return fmt.Errorf("prompt failed: %w", err)
	}
	return nil
}

func (huhPrompter) Interactive() bool {
	return true
}

type noPrompter struct{}

func (noPrompter) Input(title string, value *string, secret bool) error {
	return fmt.Errorf("%s is required", title)
}

func (noPrompter) Confirm(title string, value *bool) error {
	return nil
}

func (noPrompter) Interactive() bool {
	return false
}

// ask fills value from a prompt unless the flag already set it.
func (a *app) ask(title, flag string, value *string, secret bool) error {
	if *value != "" {
		return nil
	}
	if !a.prompt.Interactive() {
		return fmt.Errorf("--%s is required", flag)
	}
	return a.prompt.Input(title, value, secret)
}

// shouldPrompt reports whether stdin is a terminal outside CI.
func shouldPrompt() bool {
	for _, env := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "BUILDKITE"} {
		if os.Getenv(env) != "" {
			return false
		}
	}

	info, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
