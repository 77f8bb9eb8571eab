package format

import (
	"context"
	"strings"
)

// Whitespace is a language-agnostic engine. It trims trailing blanks,
// collapses runs of inner spaces and of blank lines to one, and drops blank
// lines at the end of the document. Lines are terminated with DefaultEOL
// whatever the input used.
type Whitespace struct{}

func (Whitespace) Name() string { return "whitespace" }

func (Whitespace) Format(ctx context.Context, src string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	lines := strings.Split(src, "\n")
	finalEOL := len(lines) > 1 && lines[len(lines)-1] == ""
	if finalEOL {
		lines = lines[:len(lines)-1]
	}

	out := make([]string, 0, len(lines))
	prevBlank := false
	for _, line := range lines {
		line = strings.TrimSuffix(line, "\r")
		line = collapseInnerSpaces(strings.TrimRight(line, " \t"))
		blank := line == ""
		if blank && prevBlank {
			continue
		}
		prevBlank = blank
		out = append(out, line)
	}
	for len(out) > 1 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}

	s := strings.Join(out, DefaultEOL)
	if finalEOL {
		s += DefaultEOL
	}
	return s, nil
}

// collapseInnerSpaces squeezes runs of spaces after the indentation.
func collapseInnerSpaces(line string) string {
	body := strings.TrimLeft(line, " \t")
	if !strings.Contains(body, "  ") {
		return line
	}
	indent := line[:len(line)-len(body)]

	var sb strings.Builder
	sb.Grow(len(line))
	sb.WriteString(indent)
	prevSpace := false
	for _, r := range body {
		if r == ' ' {
			if prevSpace {
				continue
			}
			prevSpace = true
		} else {
			prevSpace = false
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
