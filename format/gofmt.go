package format

import (
	"context"
	"go/ast"
	"go/format"
	"go/parser"
	"go/token"
	"strings"

	"golang.org/x/tools/go/ast/astutil"
	"golang.org/x/tools/imports"

	"github.com/iw2rmb/reflow/buffer"
)

// GoFmt formats Go source the way gofmt does.
type GoFmt struct{}

func (GoFmt) Name() string { return "gofmt" }

func (GoFmt) Format(ctx context.Context, src string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	lf, crlf := toLF(src)
	out, err := format.Source([]byte(lf))
	if err != nil {
		return "", err
	}
	return fromLF(string(out), crlf), nil
}

// StatementSpan returns the span of the innermost statement enclosing offset,
// or of the enclosing declaration when offset is outside any function body.
func (GoFmt) StatementSpan(src string, offset int) (Span, bool) {
	return goStatementSpan(src, offset)
}

// GoImports formats Go source and sorts its imports like goimports.
// Unless FormatOnly is set, missing imports are added and unused ones removed,
// which consults the local module cache.
type GoImports struct {
	Filename   string
	FormatOnly bool
}

func (GoImports) Name() string { return "goimports" }

func (g GoImports) Format(ctx context.Context, src string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	lf, crlf := toLF(src)
	out, err := imports.Process(g.Filename, []byte(lf), &imports.Options{
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
		FormatOnly: g.FormatOnly,
	})
	if err != nil {
		return "", err
	}
	return fromLF(string(out), crlf), nil
}

func (GoImports) StatementSpan(src string, offset int) (Span, bool) {
	return goStatementSpan(src, offset)
}

func goStatementSpan(src string, offset int) (Span, bool) {
	doc := buffer.New(src, buffer.Options{HistoryLimit: -1})
	strict := buffer.ConvertPolicy{ClampMode: buffer.OffsetError}
	at, ok := doc.ByteOffsetFromRuneOffset(offset, strict)
	if !ok {
		return Span{}, false
	}
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "", src, parser.ParseComments)
	if err != nil {
		return Span{}, false
	}
	tf := fset.File(file.Pos())
	pos := tf.Pos(at)

	path, _ := astutil.PathEnclosingInterval(file, pos, pos)
	for _, n := range path {
		switch n.(type) {
		case *ast.BlockStmt:
			continue
		case ast.Stmt, ast.Decl:
			start, ok1 := doc.RuneOffsetFromByteOffset(tf.Offset(n.Pos()), strict)
			end, ok2 := doc.RuneOffsetFromByteOffset(tf.Offset(n.End()), strict)
			if !ok1 || !ok2 {
				return Span{}, false
			}
			return Span{Start: start, Length: end - start}, true
		}
	}
	return Span{}, false
}

// toLF strips the carriage returns of "\r\n" terminators; go/format expects
// plain line feeds.
func toLF(src string) (string, bool) {
	if !strings.Contains(src, "\r\n") {
		return src, false
	}
	return strings.ReplaceAll(src, "\r\n", "\n"), true
}

func fromLF(out string, crlf bool) string {
	if !crlf {
		return out
	}
	return strings.ReplaceAll(out, "\n", DefaultEOL)
}
