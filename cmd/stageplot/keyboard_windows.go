//go:build windows

package main

import "golang.org/x/term"

// enterCbreak puts the console in raw input mode. Output processing is
// unaffected on Windows; Ctrl+C arrives as a key press.
func enterCbreak(fd int) (func(), error) {
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return nil, err
	}
	return func() { _ = term.Restore(fd, oldState) }, nil
}
