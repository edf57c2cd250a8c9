package utils

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/huh/spinner"
	"golang.org/x/term"
)

// IsInteractive reports whether stdin and stdout are both terminals.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// ReadPassword asks for a secret without echoing it. When stdin isn't a
// terminal one line is read from it instead, so the secret can be piped in.
func ReadPassword(prompt string) (string, error) {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		var password string
		err := huh.NewInput().
			Title(prompt).
			EchoMode(huh.EchoModePassword).
			Value(&password).
			Run()
		if err != nil {
			return "", fmt.Errorf("password prompt: %w", err)
		}
		return password, nil
	}
	return readLine(os.Stdin)
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// WithSpinner runs action, showing a spinner titled title while it works
// when attached to a terminal.
func WithSpinner(ctx context.Context, title string, action func(ctx context.Context) error) error {
	if !IsInteractive() {
		return action(ctx)
	}
	return spinner.New().Title(title).Context(ctx).ActionWithErr(action).Run()
}
