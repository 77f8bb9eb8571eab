package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/iw2rmb/reflow"
	"github.com/iw2rmb/reflow/format"
	"github.com/iw2rmb/reflow/internal/config"
	"github.com/iw2rmb/reflow/internal/logfields"
	"github.com/iw2rmb/reflow/recent"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

var errUsage = errors.New("usage")

// Global is bound into every command's Run method.
type Global struct {
	Ctx    context.Context
	Config *config.Config
	Logger *slog.Logger
	Recent *recent.Store
	Stdout io.Writer
}

type CLI struct {
	Config  string           `short:"c" help:"Configuration file path (default: ${default_config} when present)." type:"path"`
	Verbose bool             `short:"v" help:"Enable debug logging."`
	Version kong.VersionFlag `name:"version" help:"Show version and exit."`

	Format     FormatCmd  `cmd:"" help:"Format a file and print or write the result."`
	Watch      WatchCmd   `cmd:"" help:"Format files whenever they are saved."`
	Nvim       NvimCmd    `cmd:"" help:"Format a buffer of a running Neovim."`
	Recent     RecentCmd  `cmd:"" help:"Manage the recently formatted files list."`
	VersionCmd VersionCmd `cmd:"" name:"version" help:"Print the version."`
}

func newParser(cli *CLI, stdout io.Writer) (*kong.Kong, error) {
	return kong.New(cli,
		kong.Name("reflow"),
		kong.Description("Apply formatter output to files and editor buffers as a single undoable edit."),
		kong.UsageOnError(),
		kong.Writers(stdout, os.Stderr),
		kong.Vars{
			"version":        reflow.BuildString(),
			"default_config": config.DefaultFile,
			"engines":        strings.Join(format.EngineNames(), ", "),
		},
	)
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	var cli CLI
	parser, err := newParser(&cli, os.Stdout)
	if err != nil {
		fmt.Fprintln(os.Stderr, "reflow:", err)
		return exitError
	}
	kctx, err := parser.Parse(args)
	if err != nil {
		parser.Errorf("%s", err)
		return exitUsage
	}

	cfg, err := config.Load(cli.Config)
	if err != nil {
		fmt.Fprintln(os.Stderr, "reflow:", err)
		return exitUsage
	}

	level := cfg.LogLevel.Level()
	if cli.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g := &Global{
		Ctx:    ctx,
		Config: cfg,
		Logger: logger,
		Recent: recent.New(cfg.Recent.Path, recent.Options{Limit: cfg.Recent.Limit, Logger: logger}),
		Stdout: os.Stdout,
	}
	if err := kctx.Run(g); err != nil {
		logFailure(logger, kctx.Command(), err)
		return exitCode(err)
	}
	return exitOK
}

// logFailure records a failed command. The formatter has already logged a
// *format.FormatError with its engine and duration.
func logFailure(logger *slog.Logger, cmd string, err error) {
	var ferr *format.FormatError
	if errors.As(err, &ferr) {
		return
	}
	logger.Error("command failed", logfields.Op(cmd), logfields.Error(err))
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, errUsage), errors.Is(err, config.ErrInvalid):
		return exitUsage
	default:
		return exitError
	}
}

type VersionCmd struct{}

func (VersionCmd) Run(g *Global) error {
	_, err := fmt.Fprintln(g.Stdout, reflow.BuildString())
	return err
}
