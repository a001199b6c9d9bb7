//go:build !baremetal

// Package rawterm gives the llscan tool single-key input from the
// controlling terminal.
package rawterm

import (
	"os"

	"golang.org/x/crypto/ssh/terminal"
)

var terminalState *terminal.State

// IsTerminal reports whether stdin is a terminal.
func IsTerminal() bool {
	return terminal.IsTerminal(int(os.Stdin.Fd()))
}

// Configure puts stdin into raw mode so Getchar returns on every key press.
// It must be undone with Restore:
//
//	if err := rawterm.Configure(); err == nil {
//		defer rawterm.Restore()
//	}
func Configure() error {
	state, err := terminal.MakeRaw(int(os.Stdin.Fd()))
	if err != nil {
		return err
	}
	terminalState = state
	return nil
}

// Restore returns the terminal to the state before Configure. It does
// nothing if Configure was not called or failed.
func Restore() error {
	if terminalState == nil {
		return nil
	}
	err := terminal.Restore(int(os.Stdin.Fd()), terminalState)
	terminalState = nil
	return err
}

// Getchar blocks until a key is pressed and returns it. CR is returned as
// LF.
func Getchar() (byte, error) {
	var b [1]byte
	if _, err := os.Stdin.Read(b[:]); err != nil {
		return 0, err
	}
	if b[0] == '\r' {
		return '\n', nil
	}
	return b[0], nil
}
