package context

import (
	"fmt"
	"runtime/debug"
)

// VersionInfo describes the build of the application.
type VersionInfo struct {
	Semantic string
	Commit   string
	Dirty    bool
}

// String returns the version in a human readable format.
func (v *VersionInfo) String() string {
	s := v.Semantic
	if v.Commit != "" {
		commit := v.Commit
		if len(commit) > 12 {
			commit = commit[:12]
		}
		s = fmt.Sprintf("%s (%s", s, commit)
		if v.Dirty {
			s += "-dirty"
		}
		s += ")"
	}

	return s
}

// GetVersion returns the version of the running binary, as recorded by the Go
// toolchain.
func GetVersion() (*VersionInfo, error) {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return nil, fmt.Errorf("failed reading build information")
	}

	v := &VersionInfo{Semantic: bi.Main.Version}
	if v.Semantic == "" || v.Semantic == "(devel)" {
		v.Semantic = "v0.0.0-dev"
	}

	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			v.Commit = s.Value
		case "vcs.modified":
			v.Dirty = s.Value == "true"
		}
	}

	return v, nil
}
