// Package reflow applies the output of source formatters to editor buffers,
// files and Neovim as single undoable edits. The library lives in the buffer,
// format and recent packages; this package only carries release metadata.
package reflow

import (
	_ "embed"
	"regexp"
	"runtime/debug"
	"strings"
)

var semverRE = regexp.MustCompile(`^(0|[1-9]\d*)\.(0|[1-9]\d*)\.(0|[1-9]\d*)(?:-[0-9A-Za-z-]+(?:\.[0-9A-Za-z-]+)*)?(?:\+[0-9A-Za-z-]+(?:\.[0-9A-Za-z-]+)*)?$`)

//go:embed VERSION
var embeddedVersion string

// Version returns the release in SemVer form, without the leading `v`.
func Version() string {
	return strings.TrimSpace(embeddedVersion)
}

// VersionTag is Version as a git tag.
func VersionTag() string {
	return "v" + Version()
}

// IsSemver reports whether v is a SemVer 2.0.0 version.
func IsSemver(v string) bool {
	return semverRE.MatchString(strings.TrimSpace(v))
}

// BuildString describes the running binary: the tag, followed by the VCS
// revision when the build recorded one.
func BuildString() string {
	s := VersionTag()
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return s
	}
	var rev string
	dirty := false
	for _, kv := range info.Settings {
		switch kv.Key {
		case "vcs.revision":
			rev = kv.Value
		case "vcs.modified":
			dirty = kv.Value == "true"
		}
	}
	return withRevision(s, rev, dirty)
}

func withRevision(tag, rev string, dirty bool) string {
	if rev == "" {
		return tag
	}
	if len(rev) > 12 {
		rev = rev[:12]
	}
	if dirty {
		rev += "-dirty"
	}
	return tag + " (" + rev + ")"
}
