package git

import "strings"

// WorktreeStatus summarises "status --porcelain=v1".
type WorktreeStatus struct {
	Staged    int
	Unstaged  int
	Untracked int
}

// Dirty reports whether anything would show up in "git status".
func (w WorktreeStatus) Dirty() bool {
	return w.Staged > 0 || w.Unstaged > 0 || w.Untracked > 0
}

// ParsePorcelainStatus parses the output of "git status --porcelain=v1".
func ParsePorcelainStatus(out string) WorktreeStatus {
	var st WorktreeStatus
	for line := range strings.SplitSeq(out, "\n") {
		line = strings.TrimRight(line, "\r")
		if len(line) < 2 {
			continue
		}
		x, y := line[0], line[1]
		switch {
		case x == '?' && y == '?':
			st.Untracked++
			continue
		case x == '!' && y == '!':
			continue
		}
		if x != ' ' {
			st.Staged++
		}
		if y != ' ' {
			st.Unstaged++
		}
	}
	return st
}
