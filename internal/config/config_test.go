package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate runs the test in an empty directory with no REFLOW_* variables set.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	for _, key := range []string{EnvEngine, EnvTimeout, EnvEOL, EnvLogLevel, EnvRecentPath} {
		t.Setenv(key, "")
	}
	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "gofmt", cfg.Engine)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, EOLAuto, cfg.EOL)
	assert.Equal(t, 1000, cfg.HistoryLimit)
	assert.Equal(t, LogLevelInfo, cfg.LogLevel)
	assert.Equal(t, 75, cfg.Recent.Limit)
	assert.Equal(t, "RecentFiles.txt", filepath.Base(cfg.Recent.Path))
}

func TestLoad_File(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "custom.yaml")
	writeFile(t, path, `
engine: Whitespace
timeout: 250ms
eol: crlf
history_limit: 10
log_level: debug
recent:
  path: /tmp/recent.txt
  limit: 5
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "whitespace", cfg.Engine)
	assert.Equal(t, 250*time.Millisecond, cfg.Timeout)
	assert.Equal(t, EOLCRLF, cfg.EOL)
	assert.Equal(t, 10, cfg.HistoryLimit)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel.Level())
	assert.Equal(t, "/tmp/recent.txt", cfg.Recent.Path)
	assert.Equal(t, 5, cfg.Recent.Limit)
}

func TestLoad_DefaultFileInWorkingDirectory(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, DefaultFile), "engine: goimports\n")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "goimports", cfg.Engine)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "reflow.yaml")
	writeFile(t, path, "engine: gofmt\neol: lf\n")
	t.Setenv(EnvEngine, "whitespace")
	t.Setenv(EnvTimeout, "2s")
	t.Setenv(EnvEOL, "CRLF")
	t.Setenv(EnvLogLevel, "warn")
	t.Setenv(EnvRecentPath, "/var/tmp/r.txt")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "whitespace", cfg.Engine)
	assert.Equal(t, 2*time.Second, cfg.Timeout)
	assert.Equal(t, EOLCRLF, cfg.EOL)
	assert.Equal(t, LogLevelWarn, cfg.LogLevel)
	assert.Equal(t, "/var/tmp/r.txt", cfg.Recent.Path)
}

func TestLoad_DotEnvFile(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.Unsetenv(EnvEngine))
	writeFile(t, filepath.Join(dir, ".env"), "REFLOW_ENGINE=whitespace\n")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "whitespace", cfg.Engine)
}

func TestLoad_ExpandsEnvInFile(t *testing.T) {
	dir := isolate(t)
	t.Setenv("RECENT_DIR", "/srv/cache")
	path := filepath.Join(dir, "reflow.yaml")
	writeFile(t, path, "recent:\n  path: ${RECENT_DIR}/recent.txt\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/cache/recent.txt", cfg.Recent.Path)
}

func TestLoad_Invalid(t *testing.T) {
	cases := []struct {
		name string
		yaml string
		env  map[string]string
	}{
		{name: "unknown engine", yaml: "engine: clang-format\n"},
		{name: "bad eol", yaml: "eol: cr\n"},
		{name: "negative timeout", yaml: "timeout: -1s\n"},
		{name: "bad log level", yaml: "log_level: loud\n"},
		{name: "negative history", yaml: "history_limit: -1\n"},
		{name: "bad env timeout", env: map[string]string{EnvTimeout: "soon"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dir := isolate(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			path := filepath.Join(dir, "reflow.yaml")
			writeFile(t, path, tc.yaml)

			_, err := Load(path)
			require.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	dir := isolate(t)
	_, err := Load(filepath.Join(dir, "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestEOLMarker(t *testing.T) {
	assert.Equal(t, "\n", EOLLF.Marker("a\r\nb"))
	assert.Equal(t, "\r\n", EOLCRLF.Marker("a\nb"))
	assert.Equal(t, "\r\n", EOLAuto.Marker("a\r\nb"))
	assert.Equal(t, "\n", EOLAuto.Marker("a\nb"))
	assert.Equal(t, "\n", EOLAuto.Marker("single line"))
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".cache/r.txt"), expandHome("~/.cache/r.txt"))
	assert.Equal(t, "/abs/r.txt", expandHome("/abs/r.txt"))
}
