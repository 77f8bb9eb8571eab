package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"

	"github.com/iw2rmb/reflow/buffer"
	"github.com/iw2rmb/reflow/format"
	"github.com/iw2rmb/reflow/internal/grapheme"
)

const tabWidth = 4

type model struct {
	buf       *buffer.Buffer
	formatter *format.Formatter
	path      string
	keys      KeyMap
	style     Style
	width     int
	height    int
	top       int

	status    string
	statusErr bool
	busy      bool
}

// formatDoneMsg carries an engine result computed off the Update loop.
type formatDoneMsg struct {
	version       uint64
	before, after string
	err           error
}

func newModel(b *buffer.Buffer, f *format.Formatter, path string) model {
	return model{
		buf:       b,
		formatter: f,
		path:      path,
		keys:      DefaultKeyMap(),
		style:     DefaultStyle(),
		width:     80,
		height:    24,
		status:    "engine: " + f.Engine().Name(),
	}
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}
		m, cmd = m.handleKey(msg)
	case formatDoneMsg:
		m.finishFormat(msg)
	}
	m.scrollToCursor()
	return m, cmd
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	b := m.buf
	k := m.keys
	switch {
	case key.Matches(msg, k.Left):
		b.Move(buffer.Move{Unit: buffer.MoveGrapheme, Dir: buffer.DirLeft})
	case key.Matches(msg, k.Right):
		b.Move(buffer.Move{Unit: buffer.MoveGrapheme, Dir: buffer.DirRight})
	case key.Matches(msg, k.Up):
		b.Move(buffer.Move{Unit: buffer.MoveLine, Dir: buffer.DirUp})
	case key.Matches(msg, k.Down):
		b.Move(buffer.Move{Unit: buffer.MoveLine, Dir: buffer.DirDown})
	case key.Matches(msg, k.WordLeft):
		b.Move(buffer.Move{Unit: buffer.MoveWord, Dir: buffer.DirLeft})
	case key.Matches(msg, k.WordRight):
		b.Move(buffer.Move{Unit: buffer.MoveWord, Dir: buffer.DirRight})
	case key.Matches(msg, k.Home):
		b.Move(buffer.Move{Unit: buffer.MoveLine, Dir: buffer.DirHome})
	case key.Matches(msg, k.End):
		b.Move(buffer.Move{Unit: buffer.MoveLine, Dir: buffer.DirEnd})
	case key.Matches(msg, k.Backspace):
		b.DeleteBackward()
	case key.Matches(msg, k.Delete):
		b.DeleteForward()
	case key.Matches(msg, k.Enter):
		b.InsertNewline()
	case key.Matches(msg, k.Tab):
		b.InsertText("\t")
	case key.Matches(msg, k.Undo):
		if !b.Undo() {
			m.setStatus("nothing to undo", false)
		}
	case key.Matches(msg, k.Redo):
		if !b.Redo() {
			m.setStatus("nothing to redo", false)
		}
	case key.Matches(msg, k.Format):
		f := m.formatter
		return m, m.startFormat(func(ctx context.Context, doc *buffer.Buffer) error {
			return f.FormatDocument(ctx, doc)
		})
	case key.Matches(msg, k.FormatStatement):
		f := m.formatter
		off, _ := b.RuneOffsetFromPos(b.Cursor(), buffer.ConvertPolicy{ClampMode: buffer.OffsetClamp})
		return m, m.startFormat(func(ctx context.Context, doc *buffer.Buffer) error {
			return f.FormatStatementAt(ctx, doc, off)
		})
	case key.Matches(msg, k.Save):
		m.save()
	case msg.Type == tea.KeyRunes || msg.Type == tea.KeySpace:
		b.InsertText(string(msg.Runes))
	}
	return m, nil
}

// startFormat runs the formatter on a copy of the text in a tea.Cmd so a slow
// engine does not stall input. The result is applied by finishFormat.
func (m *model) startFormat(run func(ctx context.Context, doc *buffer.Buffer) error) tea.Cmd {
	if m.busy {
		m.setStatus("format already running", false)
		return nil
	}
	m.busy = true
	m.setStatus("formatting with "+m.formatter.Engine().Name()+"…", false)

	version := m.buf.TextVersion()
	before := m.buf.Text()
	eol := m.buf.EOLMarker()
	return func() tea.Msg {
		doc := buffer.New(before, buffer.Options{HistoryLimit: -1, EOLMarker: eol})
		err := run(context.Background(), doc)
		return formatDoneMsg{version: version, before: before, after: doc.Text(), err: err}
	}
}

// finishFormat applies a result as one undo step, unless the buffer was
// edited while the engine ran.
func (m *model) finishFormat(msg formatDoneMsg) {
	m.busy = false
	if msg.err != nil {
		m.setStatus(msg.err.Error(), true)
		return
	}
	if m.buf.TextVersion() != msg.version {
		m.setStatus("buffer changed while formatting; result discarded", true)
		return
	}
	edits := format.Diff(msg.before, msg.after)
	if len(edits) == 0 {
		m.setStatus("already formatted", false)
		return
	}
	if err := format.Apply(m.buf, edits); err != nil {
		m.setStatus(err.Error(), true)
		return
	}
	m.setStatus(fmt.Sprintf("formatted with %s: %d edits (ctrl+z reverts)", m.formatter.Engine().Name(), len(edits)), false)
}

func (m *model) save() {
	if m.path == "" {
		m.setStatus("no file to save to", true)
		return
	}
	if err := os.WriteFile(m.path, []byte(m.buf.Text()), 0o644); err != nil {
		m.setStatus(err.Error(), true)
		return
	}
	m.setStatus("saved "+m.path, false)
}

func (m *model) setStatus(s string, isErr bool) {
	m.status, m.statusErr = s, isErr
}

func (m *model) textHeight() int { return max(m.height-2, 1) }

func (m *model) scrollToCursor() {
	row := m.buf.Cursor().Row
	h := m.textHeight()
	switch {
	case row < m.top:
		m.top = row
	case row >= m.top+h:
		m.top = row - h + 1
	}
}

func (m model) View() string {
	var sb strings.Builder
	cur := m.buf.Cursor()
	numWidth := len(strconv.Itoa(m.buf.LineCount()))

	end := min(m.top+m.textHeight(), m.buf.LineCount())
	for row := m.top; row < end; row++ {
		num := fmt.Sprintf("%*d ", numWidth, row+1)
		if row == cur.Row {
			sb.WriteString(m.style.LineNumActive.Render(num))
		} else {
			sb.WriteString(m.style.LineNum.Render(num))
		}
		col := -1
		if row == cur.Row {
			col = cur.Col
		}
		sb.WriteString(m.renderLine(m.buf.Line(row), col))
		sb.WriteByte('\n')
	}
	for row := end; row < m.top+m.textHeight(); row++ {
		sb.WriteString(m.style.LineNum.Render(strings.Repeat(" ", numWidth) + "~"))
		sb.WriteByte('\n')
	}

	status := m.style.Status
	if m.statusErr {
		status = m.style.StatusErr
	}
	sb.WriteString(status.Render(runewidth.Truncate(m.status, m.width, "…")))
	sb.WriteByte('\n')
	sb.WriteString(m.style.Help.Render(runewidth.Truncate(m.helpLine(), m.width, "…")))
	return sb.String()
}

// renderLine draws one row with tabs expanded and, when cursorCol >= 0, the
// cursor over the grapheme starting at that rune column.
func (m model) renderLine(line string, cursorCol int) string {
	runes := []rune(strings.TrimSuffix(line, "\r"))
	bounds := grapheme.Boundaries(runes)

	var sb strings.Builder
	cell := 0
	for i := 0; i+1 < len(bounds); i++ {
		cluster := string(runes[bounds[i]:bounds[i+1]])
		w := runewidth.StringWidth(cluster)
		if cluster == "\t" {
			w = tabWidth - cell%tabWidth
			cluster = strings.Repeat(" ", w)
		}
		if bounds[i] == cursorCol {
			sb.WriteString(m.style.Cursor.Render(cluster))
		} else {
			sb.WriteString(m.style.Text.Render(cluster))
		}
		cell += w
	}
	if cursorCol >= len(runes) {
		sb.WriteString(m.style.Cursor.Render(" "))
	}
	return sb.String()
}

func (m model) helpLine() string {
	parts := make([]string, 0, len(m.keys.ShortHelp()))
	for _, b := range m.keys.ShortHelp() {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return strings.Join(parts, " • ")
}
