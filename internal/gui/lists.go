package gui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/thiagokokada/gitrepo-go/internal/git"
)

// branchRow renders one branch list entry: a current-branch marker, the
// name and where it exists.
func branchRow(r git.BranchRecord) string {
	prefix := "  "
	if r.Current {
		prefix = "* "
	}
	return fmt.Sprintf("%s%s  [%s]", prefix, r.Name, git.Marker(r.Local, r.Remote))
}

func tagRow(r git.TagRecord) string {
	return fmt.Sprintf("  %s  [%s]", r.Name, git.Marker(r.Local, r.Remote))
}

// selectedName maps a listbox selection back to a record name.
func selectedName[T any](records []T, selection []int, name func(T) string) string {
	if len(selection) == 0 {
		return ""
	}
	idx := selection[0]
	if idx < 0 || idx >= len(records) {
		return ""
	}
	return name(records[idx])
}

func branchName(r git.BranchRecord) string { return r.Name }
func tagName(r git.TagRecord) string       { return r.Name }

// pickRemote keeps current when it is still configured, else falls back to
// preferred, else to the first name.
func pickRemote(names []string, current, preferred string) string {
	current = strings.TrimSpace(current)
	if current != "" && slices.Contains(names, current) {
		return current
	}
	if preferred != "" && slices.Contains(names, preferred) {
		return preferred
	}
	if len(names) > 0 {
		return names[0]
	}
	return ""
}

// progressText is the label next to the progress bar.
func progressText(percent int, stage string) string {
	stage = strings.TrimSpace(stage)
	switch {
	case percent < 0 && stage == "":
		return ""
	case percent < 0:
		return stage
	case stage == "":
		return fmt.Sprintf("%d%%", percent)
	default:
		return fmt.Sprintf("%s %d%%", stage, percent)
	}
}
