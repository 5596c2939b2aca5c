//go:build linux || darwin || freebsd

package main

import (
	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// enterCbreak disables line buffering and echo but keeps output
// processing and signals, so log lines and Ctrl+C behave normally
func enterCbreak(fd int) (func(), error) {
	oldState, err := term.GetState(fd)
	if err != nil {
		return nil, err
	}

	termios, err := unix.IoctlGetTermios(fd, ioctlReadTermios)
	if err != nil {
		return nil, err
	}
	termios.Lflag &^= unix.ICANON | unix.ECHO
	termios.Cc[unix.VMIN] = 1
	termios.Cc[unix.VTIME] = 0
	if err := unix.IoctlSetTermios(fd, ioctlWriteTermios, termios); err != nil {
		return nil, err
	}

	return func() { _ = term.Restore(fd, oldState) }, nil
}
