// Package recent keeps the lists of recently referenced files, one global
// list plus one list per scope (typically a project or workspace root).
//
// Lists are bounded; registering a file that is already listed is a no-op and
// the oldest entry is evicted once the bound is exceeded. The store is
// persisted as plain text: global entries first, one path per line, then for
// each scope a "# <scope>" header followed by its entries.
package recent

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/iw2rmb/reflow/internal/logfields"
)

const (
	DefaultLimit    = 75
	DefaultFileName = "RecentFiles.txt"
)

// Global is the scope of files not tied to any project.
const Global = ""

const scopePrefix = "# "

type Options struct {
	Limit  int          // default: DefaultLimit
	Logger *slog.Logger // default: slog.Default()
}

// Store is safe for concurrent use. It loads its file lazily on first access.
type Store struct {
	path  string
	limit int
	log   *slog.Logger

	mu       sync.Mutex
	loaded   bool
	modified bool
	lists    map[string][]string
}

func New(path string, opt Options) *Store {
	if opt.Limit <= 0 {
		opt.Limit = DefaultLimit
	}
	if opt.Logger == nil {
		opt.Logger = slog.Default()
	}
	return &Store{path: path, limit: opt.Limit, log: opt.Logger}
}

func (s *Store) Path() string { return s.path }

// Register appends file to the list of scope.
func (s *Store) Register(file, scope string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadLocked()

	file = filepath.Clean(file)
	scope = CanonicalScope(scope)
	files := s.lists[scope]
	if slices.Contains(files, file) {
		return
	}
	files = append(files, file)
	if len(files) > s.limit {
		files = slices.Delete(files, 0, len(files)-s.limit)
	}
	s.lists[scope] = files
	s.modified = true
}

// Files returns the global list followed by the list of scope.
func (s *Store) Files(scope string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadLocked()

	out := slices.Clone(s.lists[Global])
	if scope = CanonicalScope(scope); scope != Global {
		out = append(out, s.lists[scope]...)
	}
	return out
}

// Filter returns the entries of Files(scope) matching every
// whitespace-separated term of query, case-insensitively, against either the
// file name or the full path.
func (s *Store) Filter(scope, query string) []string {
	terms := strings.Fields(strings.ToLower(query))
	files := s.Files(scope)
	if len(terms) == 0 {
		return files
	}

	out := files[:0]
	for _, f := range files {
		if matchAll(f, terms) {
			out = append(out, f)
		}
	}
	return out
}

func matchAll(file string, terms []string) bool {
	name := strings.ToLower(filepath.Base(file))
	full := strings.ToLower(file)
	for _, t := range terms {
		if !strings.Contains(name, t) && !strings.Contains(full, t) {
			return false
		}
	}
	return true
}

// Modified reports whether there are registrations not yet saved.
func (s *Store) Modified() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.modified
}

// Load reads the store file if it has not been read yet. A missing file is an
// empty store; any other error is logged and also leaves the store empty.
func (s *Store) Load() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadLocked()
}

func (s *Store) loadLocked() {
	if s.loaded {
		return
	}
	s.loaded = true
	s.modified = false
	s.lists = make(map[string][]string)

	lists, err := readFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.log.Error("load recent files failed", logfields.Path(s.path), logfields.Error(err))
		}
		return
	}
	s.lists = lists
}

func readFile(path string) (map[string][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	lists := map[string][]string{Global: nil}
	scope := Global
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if line == "" {
			continue
		}
		if rest, ok := strings.CutPrefix(line, scopePrefix); ok {
			scope = rest
			if _, seen := lists[scope]; !seen {
				lists[scope] = nil
			}
			continue
		}
		if !slices.Contains(lists[scope], line) {
			lists[scope] = append(lists[scope], line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return lists, nil
}

// Save writes the store when it was modified. Entries whose file no longer
// exists are dropped, and so is a scope whose own path no longer exists.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.modified {
		return nil
	}

	var buf bytes.Buffer
	writeList(&buf, Global, s.lists[Global])
	scopes := make([]string, 0, len(s.lists))
	for scope := range s.lists {
		if scope != Global {
			scopes = append(scopes, scope)
		}
	}
	slices.Sort(scopes)
	for _, scope := range scopes {
		writeList(&buf, scope, s.lists[scope])
	}

	err := os.MkdirAll(filepath.Dir(s.path), 0o755)
	if err == nil {
		err = os.WriteFile(s.path, buf.Bytes(), 0o644)
	}
	if err != nil {
		s.log.Error("save recent files failed", logfields.Path(s.path), logfields.Error(err))
		return fmt.Errorf("save recent files: %w", err)
	}
	s.modified = false
	return nil
}

func writeList(buf *bytes.Buffer, scope string, files []string) {
	var existing []string
	for _, f := range files {
		if exists(f) {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return
	}
	if scope != Global {
		if !exists(scope) {
			return
		}
		buf.WriteString(scopePrefix + scope + "\n")
	}
	for _, f := range existing {
		buf.WriteString(f + "\n")
	}
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// CanonicalScope returns the absolute, cleaned form of scope. The global
// scope stays empty.
func CanonicalScope(scope string) string {
	if scope == Global {
		return Global
	}
	abs, err := filepath.Abs(scope)
	if err != nil {
		return filepath.Clean(scope)
	}
	return abs
}
