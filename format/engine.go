package format

import (
	"context"
	"fmt"
	"sort"
)

// Engine produces the formatted form of a whole document.
type Engine interface {
	Name() string
	Format(ctx context.Context, src string) (string, error)
}

// StatementLocator is implemented by engines that understand enough syntax to
// find the statement enclosing an offset. Offsets are in runes.
type StatementLocator interface {
	StatementSpan(src string, offset int) (Span, bool)
}

var engines = map[string]func() Engine{
	"gofmt":      func() Engine { return GoFmt{} },
	"goimports":  func() Engine { return GoImports{} },
	"whitespace": func() Engine { return Whitespace{} },
}

// EngineByName returns a fresh engine registered under name.
func EngineByName(name string) (Engine, error) {
	mk, ok := engines[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (known: %v)", ErrUnknownEngine, name, EngineNames())
	}
	return mk(), nil
}

// EngineNames lists the registered engine names in sorted order.
func EngineNames() []string {
	names := make([]string, 0, len(engines))
	for name := range engines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
