// Package main is the entry point for the caret terminal demo.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/dshills/caret/internal/config"
	"github.com/dshills/caret/internal/engine"
	"github.com/dshills/caret/internal/host"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

type options struct {
	configPath string
	file       string
	logFile    string
	logLevel   string
	readOnly   bool
}

func main() {
	os.Exit(run())
}

func run() int {
	opts := parseFlags()

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		for _, e := range config.Errors(err) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", e)
		}
		return 1
	}
	if opts.logLevel != "" {
		cfg.Logging.Level = opts.logLevel
	}
	if opts.readOnly {
		cfg.Editor.ReadOnly = true
	}

	// The terminal owns stderr while the view runs
	var out io.Writer = io.Discard
	if opts.logFile != "" {
		f, err := os.OpenFile(opts.logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to open log file: %v\n", err)
			return 1
		}
		defer f.Close()
		out = f
	}
	log := cfg.Logging.Logger(out)
	defer func() { _ = log.Sync() }()

	engineOpts, err := host.EngineOptions(cfg, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	var view *host.View
	engineOpts = append(engineOpts, engine.WithInvalidationHandler(func(inv engine.Invalidation) {
		if view != nil {
			view.Invalidate(inv)
		}
	}))

	eng, err := openEngine(opts.file, engineOpts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	term, err := host.NewTerminal()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to create terminal: %v\n", err)
		return 1
	}
	if err := term.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize terminal: %v\n", err)
		return 1
	}
	defer term.Shutdown()

	view = host.NewView(term, eng, log)

	if opts.configPath != "" {
		w, err := config.NewWatcher(opts.configPath, func(c *config.Config) {
			if opts.readOnly {
				c.Editor.ReadOnly = true
			}
			if err := view.Reload(c); err != nil {
				log.Warn("queue config reload: %v", err)
			}
		},
			config.WithWatcherLogger(log),
			config.WithErrorHandler(func(err error) {
				log.Warn("config reload failed: %v", err)
			}),
		)
		if err != nil {
			log.Warn("config watch disabled: %v", err)
		} else {
			defer w.Close()
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("started %s with %d characters", eng.ID(), eng.Len())
	if err := view.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("run: %v", err)
		return 1
	}
	return 0
}

// openEngine creates an engine holding the contents of path, or an empty
// engine when path is empty or does not exist yet.
func openEngine(path string, opts []engine.Option) (*engine.Engine, error) {
	if path == "" {
		return engine.New(opts...), nil
	}
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return engine.New(opts...), nil
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return engine.NewFromReader(f, opts...)
}

func parseFlags() options {
	var opts options
	var showVersion bool

	flag.StringVar(&opts.configPath, "config", "", "Path to configuration file (.toml or .yaml)")
	flag.StringVar(&opts.configPath, "c", "", "Path to configuration file (shorthand)")
	flag.StringVar(&opts.file, "file", "", "File to open")
	flag.StringVar(&opts.file, "f", "", "File to open (shorthand)")
	flag.StringVar(&opts.logFile, "log-file", "", "Write logs to this file")
	flag.StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.BoolVar(&opts.readOnly, "readonly", false, "Open the file read-only")
	flag.BoolVar(&opts.readOnly, "R", false, "Open the file read-only (shorthand)")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "caret - text engine terminal demo\n\n")
		fmt.Fprintf(os.Stderr, "Usage: caret [options] [file]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEnvironment:\n")
		for _, name := range config.EnvVars() {
			fmt.Fprintf(os.Stderr, "  %s\n", name)
		}
	}

	flag.Parse()

	if showVersion {
		fmt.Printf("caret %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	switch opts.logLevel {
	case "", "debug", "info", "warn", "error":
	default:
		fmt.Fprintf(os.Stderr, "Error: invalid log level %q (must be debug, info, warn, or error)\n", opts.logLevel)
		os.Exit(1)
	}

	// A positional argument may name the file instead of -file
	if flag.NArg() > 1 || (flag.NArg() == 1 && opts.file != "") {
		fmt.Fprintf(os.Stderr, "Error: at most one file may be opened\n")
		os.Exit(1)
	}
	if opts.file == "" {
		opts.file = flag.Arg(0)
	}

	return opts
}
