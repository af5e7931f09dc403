package git

import (
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"sync"
)

// Oldest git accepted by the front-end. "checkout tags/<name>", "push
// --force-with-lease" and "status --porcelain=v1" are all older than this.
var minGitVersion = gitVersion{major: 2, minor: 23}

type gitVersion struct {
	major, minor, patch int
}

func (v gitVersion) String() string {
	return fmt.Sprintf("%d.%d.%d", v.major, v.minor, v.patch)
}

func (v gitVersion) less(other gitVersion) bool {
	if v.major != other.major {
		return v.major < other.major
	}
	if v.minor != other.minor {
		return v.minor < other.minor
	}
	return v.patch < other.patch
}

// MinGitVersion returns the oldest supported git release.
func MinGitVersion() string {
	return minGitVersion.String()
}

// parseGitVersionOutput accepts "git version 2.44.0", "git version 2.39.3
// (Apple Git-146)" and "git version 2.39.3.windows.1".
func parseGitVersionOutput(out string) (gitVersion, bool) {
	s := strings.TrimSpace(out)
	s = strings.TrimSpace(strings.TrimPrefix(s, "git version"))
	start := strings.IndexFunc(s, func(r rune) bool { return r >= '0' && r <= '9' })
	if start < 0 {
		return gitVersion{}, false
	}
	s = s[start:]
	if end := strings.IndexFunc(s, func(r rune) bool { return (r < '0' || r > '9') && r != '.' }); end >= 0 {
		s = s[:end]
	}
	parts := strings.Split(strings.Trim(s, "."), ".")
	if len(parts) < 2 {
		return gitVersion{}, false
	}
	var v gitVersion
	var err error
	if v.major, err = strconv.Atoi(parts[0]); err != nil {
		return gitVersion{}, false
	}
	if v.minor, err = strconv.Atoi(parts[1]); err != nil {
		return gitVersion{}, false
	}
	if len(parts) >= 3 {
		if p, err := strconv.Atoi(parts[2]); err == nil {
			v.patch = p
		}
	}
	return v, true
}

func validateGitVersionOutput(out string) error {
	got, ok := parseGitVersionOutput(out)
	if !ok {
		return fmt.Errorf("unable to parse git version output: %q", strings.TrimSpace(out))
	}
	if got.less(minGitVersion) {
		return fmt.Errorf("git %s is too old; gitrepo-go requires git >= %s", got, minGitVersion)
	}
	return nil
}

var (
	versionOnce sync.Once
	versionOut  string
	versionErr  error
)

// EnsureMinVersion checks the installed git once per process.
func EnsureMinVersion() error {
	versionOnce.Do(func() {
		out, err := exec.Command(defaultGitBin, "--version").CombinedOutput()
		versionOut = strings.TrimSpace(decodeOutput(out))
		if err != nil {
			versionErr = fmt.Errorf("git --version: %w", err)
			return
		}
		versionErr = validateGitVersionOutput(versionOut)
	})
	return versionErr
}

// Version returns the raw "git --version" output once EnsureMinVersion ran.
func Version() string {
	_ = EnsureMinVersion()
	return versionOut
}
