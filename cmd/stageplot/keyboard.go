package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"unicode"

	"golang.org/x/term"

	"github.com/abrezinsky/stageplot/internal/logger"
)

var errNotTerminal = errors.New("stdin is not a terminal")

type shortcut struct {
	key  byte
	help string
}

var shortcuts = []shortcut{
	{'o', "Open the editor in a browser"},
	{'h', "Toggle HTTP request logging"},
	{'l', "Cycle log level (debug → info → warn → error)"},
	{'q', "Quit server"},
	{'?', "Show this help"},
}

// keyboard maps single key presses to server actions
type keyboard struct {
	out       io.Writer
	color     bool
	log       logger.Logger
	editorURL string
	open      func(url string) error
	quit      func()
}

// start switches the terminal to unbuffered input and reads keys in the
// background. The returned func restores the terminal.
func (k *keyboard) start(in *os.File) (func(), error) {
	fd := int(in.Fd())
	if !term.IsTerminal(fd) {
		return nil, errNotTerminal
	}
	restore, err := enterCbreak(fd)
	if err != nil {
		return nil, err
	}
	go k.readLoop(in)
	return restore, nil
}

func (k *keyboard) readLoop(in io.Reader) {
	buf := make([]byte, 1)
	for {
		n, err := in.Read(buf)
		if err != nil {
			return
		}
		if n == 0 {
			continue
		}
		k.handle(buf[0])
	}
}

func (k *keyboard) handle(key byte) {
	switch unicode.ToLower(rune(key)) {
	case 'o':
		fmt.Fprintln(k.out, paint(k.color, cyan, "Opening editor in browser..."))
		if err := k.open(k.editorURL); err != nil {
			fmt.Fprintln(k.out, paint(k.color, red, fmt.Sprintf("Error opening browser: %v", err)))
		}
	case 'h':
		if k.log.IsHTTPLoggingEnabled() {
			k.log.DisableHTTPLogging()
			fmt.Fprintln(k.out, paint(k.color, yellow, "HTTP logging disabled"))
		} else {
			k.log.EnableHTTPLogging()
			fmt.Fprintln(k.out, paint(k.color, green, "HTTP logging enabled"))
		}
	case 'l':
		next := cycleLogLevel(k.log)
		fmt.Fprintf(k.out, "%s%s\n", paint(k.color, green, "Log level: "), paint(k.color, yellow, next))
	case 'q', '\x03':
		fmt.Fprintln(k.out, paint(k.color, yellow, "Shutting down server..."))
		k.quit()
	case '?':
		printKeyboardHelp(k.out, k.color)
	}
}

// cycleLogLevel moves debug -> info -> warn -> error -> debug and returns
// the new level name
func cycleLogLevel(log logger.Logger) string {
	var next string
	switch log.GetLevel().String() {
	case "DEBUG":
		next = "info"
	case "INFO":
		next = "warn"
	case "WARN":
		next = "error"
	case "ERROR":
		next = "debug"
	default:
		next = "info"
	}
	log.SetLevel(logger.ParseLevel(next))
	return next
}
