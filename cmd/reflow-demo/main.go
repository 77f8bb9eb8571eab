package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/iw2rmb/reflow/buffer"
	"github.com/iw2rmb/reflow/format"
	"github.com/iw2rmb/reflow/internal/config"
)

const sample = "package main\n\nimport  \"fmt\"\n\nfunc main()  {\n    msg  :=  \"hello from reflow\"\n  fmt.Println( msg )\n}\n"

var cli struct {
	File   string `arg:"" optional:"" type:"existingfile" help:"File to edit; a Go sample is used when omitted."`
	Config string `short:"c" type:"path" help:"Configuration file path."`
	Engine string `short:"e" help:"Formatting engine (${engines})."`
	Log    string `type:"path" help:"Write logs to this file; the terminal belongs to the editor."`
}

func main() {
	kong.Parse(&cli,
		kong.Name("reflow-demo"),
		kong.Description("Terminal editor that formats its buffer as one undoable step."),
		kong.Vars{"engines": strings.Join(format.EngineNames(), ", ")},
	)
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "reflow-demo:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(cli.Config)
	if err != nil {
		return err
	}
	if cli.Engine != "" {
		cfg.Engine = cli.Engine
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	var logOut io.Writer = io.Discard
	if cli.Log != "" {
		f, err := os.OpenFile(cli.Log, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return err
		}
		defer f.Close()
		logOut = f
	}
	logger := slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: cfg.LogLevel.Level()}))

	text := sample
	if cli.File != "" {
		data, err := os.ReadFile(cli.File)
		if err != nil {
			return err
		}
		text = string(data)
	}

	engine, err := format.EngineByName(cfg.Engine)
	if err != nil {
		return err
	}
	if gi, ok := engine.(format.GoImports); ok {
		gi.Filename = cli.File
		engine = gi
	}

	b := buffer.New(text, buffer.Options{
		HistoryLimit: cfg.HistoryLimit,
		EOLMarker:    cfg.EOL.Marker(text),
	})
	f := format.NewFormatter(engine, format.Config{Timeout: cfg.Timeout, Logger: logger})

	applyColorEnv()
	_, err = tea.NewProgram(newModel(b, f, cli.File), tea.WithAltScreen()).Run()
	return err
}
