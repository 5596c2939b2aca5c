package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/abrezinsky/stageplot/internal/app"
	"github.com/abrezinsky/stageplot/internal/auth"
	"github.com/abrezinsky/stageplot/internal/browser"
)

// ANSI escape codes
const (
	reset  = "\033[0m"
	yellow = "\033[33m"
	red    = "\033[31m"
	green  = "\033[32m"
	cyan   = "\033[36m"
	bold   = "\033[1m"
)

var logo = []string{
	"     _                         _       _   ",
	" ___| |_ __ _  __ _  ___ _ __ | | ___ | |_ ",
	"/ __| __/ _` |/ _` |/ _ \\ '_ \\| |/ _ \\| __|",
	"\\__ \\ || (_| | (_| |  __/ |_) | | (_) | |_ ",
	"|___/\\__\\__,_|\\__, |\\___| .__/|_|\\___/ \\__|",
	"              |___/     |_|                ",
}

type serveOptions struct {
	port       int
	password   string
	noBrowser  bool
	noKeyboard bool
	plotID     string
}

func newServeCommand(ctx *commandContext) *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the stage plot editor",
		Long: `Run the stage plot editor HTTP server.

Keyboard shortcuts (when stdin is a terminal):
  o   Open the editor in a browser
  h   Toggle HTTP request logging
  l   Cycle log level (debug, info, warn, error)
  q   Quit
  ?   Show keyboard help`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, ctx, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.port, "port", "p", 0, "HTTP server port (overrides server.port)")
	cmd.Flags().StringVar(&opts.password, "editor-password", "", "Editor password (auto-generated if not set)")
	cmd.Flags().BoolVar(&opts.noBrowser, "no-browser", false, "Do not open the editor in a browser")
	cmd.Flags().BoolVar(&opts.noKeyboard, "no-keyboard", false, "Disable keyboard shortcuts")
	cmd.Flags().StringVar(&opts.plotID, "plot", "", "Plot to open in the browser")
	return cmd
}

func runServe(cmd *cobra.Command, ctx *commandContext, opts serveOptions) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	if opts.port != 0 {
		cfg.Server.Port = opts.port
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	unlock, err := lockDatabase(cfg)
	if err != nil {
		return err
	}
	defer unlock()

	out := cmd.OutOrStdout()
	color := isTerminal(out)
	printLogo(out, color)

	password := strings.TrimSpace(opts.password)
	if password == "" {
		password = cfg.Server.EditorPassword
	}
	if password == "" {
		password = auth.GeneratePassword()
	}

	appLog := ctx.newLogger(cmd.ErrOrStderr())
	a, err := app.New(appLog, cfg, catalogClient(cfg, appLog), auth.New(password))
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer a.Close()

	addr := cfg.Addr()
	editorURL := browser.PlotURL(app.EditorURL(addr), opts.plotID)
	appLog.Info("Editor password", "password", password)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- a.Run(signalCtx, addr)
	}()

	// Give the listener a moment before the browser connects
	time.Sleep(100 * time.Millisecond)

	if cfg.Server.OpenBrowser && !opts.noBrowser {
		if err := browser.Open(editorURL); err != nil {
			appLog.Warn("Failed to open browser", "error", err)
		}
	}

	if !opts.noKeyboard {
		keys := &keyboard{
			out:       out,
			color:     color,
			log:       appLog,
			editorURL: editorURL,
			open:      browser.Open,
			quit:      cancel,
		}
		stop, err := keys.start(os.Stdin)
		if err != nil {
			fmt.Fprintf(out, "%s\n\n", paint(color, yellow, "Keyboard shortcuts disabled: "+err.Error()))
		} else {
			defer stop()
			printKeyboardHelp(out, color)
		}
	}

	return <-serverErr
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}

func paint(color bool, code, s string) string {
	if !color {
		return s
	}
	return code + s + reset
}

func printLogo(w io.Writer, color bool) {
	width := 0
	for _, line := range logo {
		if len(line) > width {
			width = len(line)
		}
	}
	width += 4
	border := strings.Repeat("═", width)

	fmt.Fprintf(w, "\n  %s\n", paint(color, cyan, "╔"+border+"╗"))
	for _, line := range logo {
		padded := "  " + line + strings.Repeat(" ", width-len(line)-2)
		fmt.Fprintf(w, "  %s%s%s\n", paint(color, cyan, "║"), paint(color, yellow, padded), paint(color, cyan, "║"))
	}
	fmt.Fprintf(w, "  %s\n", paint(color, cyan, "╚"+border+"╝"))
	fmt.Fprintf(w, "  %s\n\n", paint(color, bold, "stageplot "+version))
}

func printKeyboardHelp(w io.Writer, color bool) {
	fmt.Fprintf(w, "\n  %s\n", paint(color, bold+green, "Keyboard Shortcuts:"))
	for _, k := range shortcuts {
		fmt.Fprintf(w, "    %s      - %s\n", paint(color, cyan, string(k.key)), k.help)
	}
	fmt.Fprintln(w)
}
