package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/iw2rmb/reflow/buffer"
	"github.com/iw2rmb/reflow/format"
	"github.com/iw2rmb/reflow/internal/config"
	"github.com/iw2rmb/reflow/internal/logfields"
	"github.com/iw2rmb/reflow/recent"
)

// EngineFlags are shared by every command that runs a formatter.
type EngineFlags struct {
	Engine  string        `short:"e" help:"Formatting engine (${engines})."`
	EOL     string        `help:"Line terminator of the document: lf, crlf or auto."`
	Timeout time.Duration `help:"Upper bound for one engine call."`
}

// resolve overlays the flags on the loaded configuration.
func (f EngineFlags) resolve(base *config.Config) (*config.Config, error) {
	cfg := *base
	if f.Engine != "" {
		cfg.Engine = strings.ToLower(f.Engine)
	}
	if f.EOL != "" {
		cfg.EOL = config.EOL(strings.ToLower(f.EOL))
	}
	if f.Timeout != 0 {
		cfg.Timeout = f.Timeout
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func newFormatter(g *Global, cfg *config.Config, file string, notify func(error), obs format.Observer) (*format.Formatter, error) {
	engine, err := format.EngineByName(cfg.Engine)
	if err != nil {
		return nil, err
	}
	if gi, ok := engine.(format.GoImports); ok {
		gi.Filename = file
		engine = gi
	}
	return format.NewFormatter(engine, format.Config{
		Timeout:  cfg.Timeout,
		Logger:   g.Logger,
		Notify:   notify,
		Observer: obs,
	}), nil
}

type FormatCmd struct {
	EngineFlags

	File        string `arg:"" type:"existingfile" help:"File to format."`
	Range       string `help:"Format only START:END, in rune offsets."`
	StatementAt int    `name:"statement-at" default:"-1" help:"Format only the statement at this rune offset."`
	Write       bool   `short:"w" help:"Write the result to the file instead of standard output."`
}

func (c *FormatCmd) Run(g *Global) error {
	if c.Range != "" && c.StatementAt >= 0 {
		return fmt.Errorf("%w: --range and --statement-at are mutually exclusive", errUsage)
	}
	cfg, err := c.resolve(g.Config)
	if err != nil {
		return err
	}
	f, err := newFormatter(g, cfg, c.File, nil, nil)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(c.File)
	if err != nil {
		return err
	}
	src := string(data)
	b := buffer.New(src, buffer.Options{
		HistoryLimit: cfg.HistoryLimit,
		EOLMarker:    cfg.EOL.Marker(src),
	})

	switch {
	case c.Range != "":
		start, end, err := parseRange(c.Range)
		if err != nil {
			return err
		}
		err = f.FormatRange(g.Ctx, b, start, end, true)
		if err != nil {
			return err
		}
	case c.StatementAt >= 0:
		if err := f.FormatStatementAt(g.Ctx, b, c.StatementAt); err != nil {
			return err
		}
	default:
		if err := f.FormatDocument(g.Ctx, b); err != nil {
			return err
		}
	}

	c.remember(g)

	out := b.Text()
	if !c.Write {
		_, err := fmt.Fprint(g.Stdout, out)
		return err
	}
	if out == src {
		return nil
	}
	info, err := os.Stat(c.File)
	if err != nil {
		return err
	}
	if err := os.WriteFile(c.File, []byte(out), info.Mode().Perm()); err != nil {
		return err
	}
	g.Logger.Info("formatted", logfields.Path(c.File), logfields.Engine(cfg.Engine))
	return nil
}

// remember records the file in the recent list of the working directory.
func (c *FormatCmd) remember(g *Global) {
	abs, err := filepath.Abs(c.File)
	if err != nil {
		return
	}
	scope, err := os.Getwd()
	if err != nil {
		scope = recent.Global
	}
	g.Recent.Register(abs, scope)
	if err := g.Recent.Save(); err != nil {
		g.Logger.Warn("could not save recent files", logfields.Error(err))
	}
}

// parseRange parses "START:END".
func parseRange(s string) (start, end int, err error) {
	a, b, ok := strings.Cut(s, ":")
	if !ok {
		return 0, 0, fmt.Errorf("%w: range %q must be START:END", errUsage, s)
	}
	if start, err = strconv.Atoi(strings.TrimSpace(a)); err != nil {
		return 0, 0, fmt.Errorf("%w: range start: %w", errUsage, err)
	}
	if end, err = strconv.Atoi(strings.TrimSpace(b)); err != nil {
		return 0, 0, fmt.Errorf("%w: range end: %w", errUsage, err)
	}
	if start < 0 || end < start {
		return 0, 0, fmt.Errorf("%w: range %d:%d is empty or negative", errUsage, start, end)
	}
	return start, end, nil
}
