package context

import (
	"fmt"
	"runtime/debug"
)

// VersionInfo describes the build of the application.
type VersionInfo struct {
	Semantic  string
	Commit    string
	Dirty     bool
	GoVersion string
}

// GetVersion returns the version information embedded in the binary.
func GetVersion() (*VersionInfo, error) {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return nil, fmt.Errorf("build information is not available")
	}

	v := &VersionInfo{Semantic: bi.Main.Version, GoVersion: bi.GoVersion}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			v.Commit = s.Value
		case "vcs.modified":
			v.Dirty = s.Value == "true"
		}
	}
	if v.Semantic == "" {
		v.Semantic = "(devel)"
	}

	return v, nil
}

func (v *VersionInfo) String() string {
	commit := v.Commit
	if len(commit) > 12 {
		commit = commit[:12]
	}
	if commit == "" {
		return fmt.Sprintf("%s (%s)", v.Semantic, v.GoVersion)
	}
	if v.Dirty {
		commit += "-dirty"
	}
	return fmt.Sprintf("%s (%s, %s)", v.Semantic, commit, v.GoVersion)
}
