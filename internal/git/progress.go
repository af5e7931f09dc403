package git

import (
	"regexp"
	"strconv"
	"strings"
)

// HintCredentials is reported when git stops at an interactive credential
// prompt.
const HintCredentials = "[HINT] git asked for credentials interactively; configure a credential helper or an SSH key, or authenticate once from a terminal."

var progressRE = regexp.MustCompile(
	`(?P<stage>Counting objects|Compressing objects|Writing objects|Receiving objects|Resolving deltas):\s+(?P<pct>\d+)%`,
)

var credentialPrompts = []string{"Username for '", "Password for '"}

// LineInfo is what ClassifyLine found in a single output line.
type LineInfo struct {
	Stage      string
	Percent    int
	HasPercent bool
	Hint       string
}

// ClassifyLine extracts transfer progress and credential prompts from one
// line of git output.
func ClassifyLine(line string) LineInfo {
	var info LineInfo
	if m := progressRE.FindStringSubmatch(line); m != nil {
		pct, err := strconv.Atoi(m[progressRE.SubexpIndex("pct")])
		if err == nil {
			info.Stage = m[progressRE.SubexpIndex("stage")]
			info.Percent = min(pct, 100)
			info.HasPercent = true
		}
	}
	for _, p := range credentialPrompts {
		if strings.Contains(line, p) {
			info.Hint = HintCredentials
			break
		}
	}
	return info
}
