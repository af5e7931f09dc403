// Package buildinfo reports the version, VCS revision and build tags
// recorded in the binary.
package buildinfo

import (
	"fmt"
	"runtime/debug"
	"strings"
)

var readBuildInfo = debug.ReadBuildInfo

type Info struct {
	// Version is the module version, "dev" for local builds.
	Version  string
	Revision string
	Modified bool
	Tags     string
}

func Read() Info {
	info := Info{Version: "dev"}
	bi, ok := readBuildInfo()
	if !ok || bi == nil {
		return info
	}
	if v := bi.Main.Version; v != "" && v != "(devel)" {
		info.Version = v
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "-tags":
			info.Tags = s.Value
		case "vcs.revision":
			info.Revision = s.Value
		case "vcs.modified":
			info.Modified = s.Value == "true"
		}
	}
	return info
}

// String renders "version (revision[, modified]) [tags: ...]".
func (i Info) String() string {
	var b strings.Builder
	b.WriteString(i.Version)
	if i.Revision != "" {
		rev := i.Revision
		if len(rev) > 12 {
			rev = rev[:12]
		}
		if i.Modified {
			rev += ", modified"
		}
		fmt.Fprintf(&b, " (%s)", rev)
	}
	if i.Tags != "" {
		fmt.Fprintf(&b, " [tags: %s]", i.Tags)
	}
	return b.String()
}

// VersionWithTags is Read().String().
func VersionWithTags() string {
	return Read().String()
}
