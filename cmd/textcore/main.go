// Package main is the entry point for the textcore batch editor.
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

	"github.com/dshills/textcore/internal/config"
	"github.com/dshills/textcore/internal/engine"
	"github.com/dshills/textcore/internal/logging"
	"github.com/dshills/textcore/internal/script"
	"github.com/dshills/textcore/internal/watcher"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// options holds the parsed command line.
type options struct {
	configPath string
	logLevel   string
	scriptPath string
	code       string
	output     string
	dryRun     bool
	watch      bool
	file       string
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stdout, stderr)
	if errors.Is(err, flag.ErrHelp) || errors.Is(err, errVersion) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error: failed to load config: %v\n", err)
		return 1
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	if opts.watch {
		cfg.Watch.Enabled = true
	}

	level, _ := logging.ParseLevel(cfg.Log.Level)
	log := logging.New(logging.Config{
		Level:  level,
		Format: logging.Format(cfg.Log.Format),
		Output: stderr,
	}).WithComponent("textcore")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := edit(ctx, opts, cfg, log, stdout, stderr); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

var errVersion = errors.New("version requested")

func parseFlags(args []string, stdout, stderr io.Writer) (options, error) {
	var opts options
	var showVersion bool

	fs := flag.NewFlagSet("textcore", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configPath, "config", "", "Path to configuration file")
	fs.StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&opts.scriptPath, "script", "", "Lua script to run against the buffer")
	fs.StringVar(&opts.code, "e", "", "Lua code to run against the buffer")
	fs.StringVar(&opts.output, "o", "", "Write the result to this path instead of the input file")
	fs.BoolVar(&opts.dryRun, "n", false, "Print the result to stdout and leave files untouched")
	fs.BoolVar(&opts.watch, "watch", false, "Re-run whenever the input file changes")
	fs.BoolVar(&showVersion, "version", false, "Show version information")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "textcore - scriptable text buffer\n\n")
		fmt.Fprintf(stderr, "Usage: textcore [options] file\n\n")
		fmt.Fprintf(stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  textcore -e 'buf.insert(\"# \")' notes.txt\n")
		fmt.Fprintf(stderr, "  textcore -script fix.lua -n main.go\n")
		fmt.Fprintf(stderr, "  textcore -script fix.lua -o out.txt -watch in.txt\n")
	}

	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	if showVersion {
		fmt.Fprintf(stdout, "textcore %s\n", version)
		fmt.Fprintf(stdout, "Commit: %s\n", commit)
		fmt.Fprintf(stdout, "Built: %s\n", date)
		return opts, errVersion
	}

	if opts.logLevel != "" {
		if _, ok := logging.ParseLevel(opts.logLevel); !ok {
			return opts, fmt.Errorf("invalid log level %q (must be debug, info, warn, or error)", opts.logLevel)
		}
	}

	switch {
	case fs.NArg() != 1:
		return opts, errors.New("expected exactly one file")
	case opts.scriptPath == "" && opts.code == "":
		return opts, errors.New("one of -script or -e is required")
	case opts.scriptPath != "" && opts.code != "":
		return opts, errors.New("-script and -e are mutually exclusive")
	case opts.dryRun && opts.output != "":
		return opts, errors.New("-n and -o are mutually exclusive")
	}
	opts.file = fs.Arg(0)
	return opts, nil
}

// edit opens the file, runs the script once, and with watching enabled
// runs it again after every change until ctx is done.
func edit(ctx context.Context, opts options, cfg config.Config, log *logging.Logger, stdout, stderr io.Writer) error {
	if cfg.Watch.Enabled && !opts.dryRun && opts.output == "" {
		return errors.New("watching requires -n or -o")
	}

	b, err := engine.Open(opts.file, engine.WithConfig(cfg), engine.WithLogger(log))
	if err != nil {
		return err
	}
	defer b.Release()

	var events <-chan watcher.Event
	if cfg.Watch.Enabled {
		if events, err = b.Watch(ctx); err != nil {
			return fmt.Errorf("watch %s: %w", opts.file, err)
		}
	}

	printOut := stdout
	if opts.dryRun {
		printOut = stderr
	}
	state := script.NewState(script.WithLogger(log), script.WithOutput(printOut))
	defer state.Close()
	if err := state.Bind(b); err != nil {
		return err
	}

	if err := apply(ctx, opts, b, state, stdout); err != nil {
		return err
	}
	if events == nil {
		return nil
	}

	log.Info("watching %s", opts.file)
	for ev := range events {
		if !reloadable(ev) {
			log.Warn("%s went away (%s)", ev.Path, ev.Op)
			continue
		}
		if err := b.Load(opts.file); err != nil {
			log.WithError(err).Warn("reload failed")
			continue
		}
		if err := apply(ctx, opts, b, state, stdout); err != nil {
			log.WithError(err).Warn("script failed")
		}
	}
	return nil
}

// reloadable reports whether the file behind ev can be read again. Editors
// that save by renaming a backup report a rename with the file in place.
func reloadable(ev watcher.Event) bool {
	info, err := os.Stat(ev.Path)
	return err == nil && !info.IsDir()
}

// apply runs the script as one undo step and writes the result. A failing
// script leaves the buffer as it was.
func apply(ctx context.Context, opts options, b *engine.Buffer, state *script.State, stdout io.Writer) error {
	err := b.Transaction("script", func() error {
		if opts.scriptPath != "" {
			return state.DoFile(ctx, opts.scriptPath)
		}
		return state.DoString(ctx, opts.code)
	})
	if err != nil {
		return err
	}

	switch {
	case opts.dryRun:
		_, err = b.WriteTo(stdout)
	case opts.output != "":
		err = b.SaveAs(opts.output)
	case b.Modified():
		err = b.Save()
	}
	return err
}
