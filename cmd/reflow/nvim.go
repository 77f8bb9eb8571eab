package main

import (
	"github.com/iw2rmb/reflow/internal/logfields"
	"github.com/iw2rmb/reflow/internal/nvim"
)

type NvimCmd struct {
	EngineFlags

	Addr        string `help:"Neovim listen address (default: $$NVIM, then $$NVIM_LISTEN_ADDRESS)."`
	Buffer      int    `help:"Buffer number; 0 is the current buffer."`
	StatementAt int    `name:"statement-at" default:"-1" help:"Format only the statement at this rune offset."`
}

func (c *NvimCmd) Run(g *Global) error {
	cfg, err := c.resolve(g.Config)
	if err != nil {
		return err
	}

	t, err := nvim.Dial(c.Addr, c.Buffer)
	if err != nil {
		return err
	}
	defer t.Close()

	name, _ := t.Name()
	f, err := newFormatter(g, cfg, name, t.ReportError, nil)
	if err != nil {
		return err
	}

	if c.StatementAt >= 0 {
		err = f.FormatStatementAt(g.Ctx, t, c.StatementAt)
	} else {
		err = f.FormatDocument(g.Ctx, t)
	}
	if err != nil {
		return err
	}
	g.Logger.Info("formatted", logfields.Buffer(int(t.Buffer())), logfields.Path(name), logfields.Engine(cfg.Engine))
	return nil
}
