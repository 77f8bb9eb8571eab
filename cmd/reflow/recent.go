package main

import (
	"fmt"
	"path/filepath"
	"strings"
)

type RecentCmd struct {
	Add  RecentAddCmd  `cmd:"" help:"Register files in the recent list."`
	List RecentListCmd `cmd:"" help:"List recent files, optionally filtered."`
}

type RecentAddCmd struct {
	Files []string `arg:"" type:"existingfile" help:"Files to register."`
	Scope string   `short:"s" help:"Scope (project path); empty registers globally."`
}

func (c *RecentAddCmd) Run(g *Global) error {
	for _, f := range c.Files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return err
		}
		g.Recent.Register(abs, c.Scope)
	}
	return g.Recent.Save()
}

type RecentListCmd struct {
	Query []string `arg:"" optional:"" help:"Terms every listed file must contain."`
	Scope string   `short:"s" help:"Scope (project path) listed after the global entries."`
}

func (c *RecentListCmd) Run(g *Global) error {
	for _, f := range g.Recent.Filter(c.Scope, strings.Join(c.Query, " ")) {
		if _, err := fmt.Fprintln(g.Stdout, f); err != nil {
			return err
		}
	}
	return nil
}
