package recent

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, nil, 0o644))
	return path
}

func TestRegister_DeduplicatesAndBounds(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), DefaultFileName), Options{Limit: 3})

	for i := range 5 {
		s.Register(fmt.Sprintf("/lib/%d.dll", i), Global)
	}
	s.Register("/lib/4.dll", Global)

	assert.Equal(t, []string{"/lib/2.dll", "/lib/3.dll", "/lib/4.dll"}, s.Files(Global))
	assert.True(t, s.Modified())
}

func TestRegister_DefaultLimit(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), DefaultFileName), Options{})
	for i := range DefaultLimit + 10 {
		s.Register(fmt.Sprintf("/lib/%03d.dll", i), Global)
	}

	files := s.Files(Global)
	require.Len(t, files, DefaultLimit)
	assert.Equal(t, "/lib/010.dll", files[0])
}

func TestRegister_DuplicateDoesNotModify(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultFileName)
	lib := touch(t, filepath.Join(dir, "a.dll"))

	s := New(path, Options{})
	s.Register(lib, Global)
	require.NoError(t, s.Save())

	s.Register(lib, Global)
	assert.False(t, s.Modified())
}

func TestFiles_GlobalThenScope(t *testing.T) {
	dir := t.TempDir()
	s := New(filepath.Join(dir, DefaultFileName), Options{})
	proj := filepath.Join(dir, "proj", "app.sln")

	s.Register("/global/a.dll", Global)
	s.Register("/proj/b.dll", proj)
	s.Register("/other/c.dll", filepath.Join(dir, "other.sln"))

	assert.Equal(t, []string{"/global/a.dll", "/proj/b.dll"}, s.Files(proj))
	assert.Equal(t, []string{"/global/a.dll"}, s.Files(Global))
}

func TestFiles_CanonicalScope(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	s := New(filepath.Join(dir, DefaultFileName), Options{})

	s.Register("/x.dll", "proj/../proj/app.sln")
	assert.Equal(t, []string{"/x.dll"}, s.Files(filepath.Join(dir, "proj", "app.sln")))
}

func TestFilter(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), DefaultFileName), Options{})
	s.Register("/usr/lib/mono/System.Xml.dll", Global)
	s.Register("/usr/lib/mono/System.Core.dll", Global)
	s.Register("/home/me/libs/Newtonsoft.Json.dll", Global)

	cases := []struct {
		query string
		want  []string
	}{
		{"", []string{"/usr/lib/mono/System.Xml.dll", "/usr/lib/mono/System.Core.dll", "/home/me/libs/Newtonsoft.Json.dll"}},
		{"xml", []string{"/usr/lib/mono/System.Xml.dll"}},
		{"SYSTEM core", []string{"/usr/lib/mono/System.Core.dll"}},
		{"mono dll", []string{"/usr/lib/mono/System.Xml.dll", "/usr/lib/mono/System.Core.dll"}},
		{"home json", []string{"/home/me/libs/Newtonsoft.Json.dll"}},
		{"missing", nil},
	}
	for _, tc := range cases {
		got := s.Filter(Global, tc.query)
		if len(tc.want) == 0 {
			assert.Empty(t, got, "query %q", tc.query)
			continue
		}
		assert.Equal(t, tc.want, got, "query %q", tc.query)
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cache", DefaultFileName)
	a := touch(t, filepath.Join(dir, "a.dll"))
	b := touch(t, filepath.Join(dir, "b.dll"))
	proj := touch(t, filepath.Join(dir, "proj", "app.sln"))

	s := New(path, Options{})
	s.Register(a, Global)
	s.Register(b, proj)
	require.NoError(t, s.Save())
	assert.False(t, s.Modified())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, a+"\n# "+proj+"\n"+b+"\n", string(data))

	loaded := New(path, Options{})
	assert.Equal(t, []string{a, b}, loaded.Files(proj))
	assert.False(t, loaded.Modified())
}

func TestSave_SkipsMissingFilesAndScopes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultFileName)
	kept := touch(t, filepath.Join(dir, "kept.dll"))
	proj := touch(t, filepath.Join(dir, "live.sln"))

	s := New(path, Options{})
	s.Register(kept, Global)
	s.Register(filepath.Join(dir, "gone.dll"), Global)
	s.Register(kept, filepath.Join(dir, "deleted.sln"))
	s.Register(filepath.Join(dir, "gone.dll"), proj)
	require.NoError(t, s.Save())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, kept+"\n", string(data))
}

func TestSave_NoopWhenUnmodified(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)
	s := New(path, Options{})
	s.Load()

	require.NoError(t, s.Save())
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestSave_DirectoryErrorIsLogged(t *testing.T) {
	dir := t.TempDir()
	blocker := touch(t, filepath.Join(dir, "blocker"))
	var logs bytes.Buffer
	s := New(filepath.Join(blocker, "sub", DefaultFileName), Options{Logger: slog.New(slog.NewTextHandler(&logs, nil))})
	s.Register(touch(t, filepath.Join(dir, "a.dll")), Global)

	require.Error(t, s.Save())
	assert.Contains(t, logs.String(), "save recent files failed")
	assert.True(t, s.Modified())
}

func TestLoad_ParsesScopes(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)
	require.NoError(t, os.WriteFile(path, []byte("/g/a.dll\r\n\n# /p/x.sln\n/p/b.dll\n/p/b.dll\n# /q/y.sln\n/q/c.dll\n"), 0o644))

	s := New(path, Options{})
	assert.Equal(t, []string{"/g/a.dll", "/p/b.dll"}, s.Files("/p/x.sln"))
	assert.Equal(t, []string{"/g/a.dll", "/q/c.dll"}, s.Files("/q/y.sln"))
}

func TestLoad_ErrorIsLoggedAndLeavesEmptyStore(t *testing.T) {
	dir := t.TempDir()
	var logs bytes.Buffer
	s := New(dir, Options{Logger: slog.New(slog.NewTextHandler(&logs, nil))})

	assert.Empty(t, s.Files(Global))
	assert.Contains(t, logs.String(), "load recent files failed")
}

func TestLoad_MissingFileIsSilent(t *testing.T) {
	var logs bytes.Buffer
	s := New(filepath.Join(t.TempDir(), "none.txt"), Options{Logger: slog.New(slog.NewTextHandler(&logs, nil))})

	assert.Empty(t, s.Files(Global))
	assert.Empty(t, logs.String())
}
