package git

import (
	"fmt"
	"slices"
	"strings"

	"github.com/go-git/go-git/v5/plumbing"
)

// BranchRecord is a display row of the reconciled branch list.
type BranchRecord struct {
	Name    string
	Local   bool
	Remote  bool
	Current bool
}

// TagRecord is a display row of the reconciled tag list.
type TagRecord struct {
	Name   string
	Local  bool
	Remote bool
}

// MergeBranches returns the sorted union of local and remote branch names,
// each flagged with the side(s) it exists on.
func MergeBranches(local, remote []string, current string) []BranchRecord {
	names, inLocal, inRemote := unionNames(local, remote)
	records := make([]BranchRecord, 0, len(names))
	for _, name := range names {
		records = append(records, BranchRecord{
			Name:    name,
			Local:   inLocal[name],
			Remote:  inRemote[name],
			Current: current != "" && name == current,
		})
	}
	return records
}

// MergeTags is MergeBranches for tags.
func MergeTags(local, remote []string) []TagRecord {
	names, inLocal, inRemote := unionNames(local, remote)
	records := make([]TagRecord, 0, len(names))
	for _, name := range names {
		records = append(records, TagRecord{Name: name, Local: inLocal[name], Remote: inRemote[name]})
	}
	return records
}

func unionNames(local, remote []string) ([]string, map[string]bool, map[string]bool) {
	inLocal := make(map[string]bool, len(local))
	inRemote := make(map[string]bool, len(remote))
	var names []string
	add := func(set map[string]bool, raw string) {
		name := strings.TrimSpace(raw)
		if name == "" {
			return
		}
		if !inLocal[name] && !inRemote[name] {
			names = append(names, name)
		}
		set[name] = true
	}
	for _, n := range local {
		add(inLocal, n)
	}
	for _, n := range remote {
		add(inRemote, n)
	}
	slices.Sort(names)
	return names, inLocal, inRemote
}

// Marker renders the presence flags the way the lists show them.
func Marker(local, remote bool) string {
	switch {
	case local && remote:
		return "local+remote"
	case local:
		return "local"
	case remote:
		return "remote"
	default:
		return ""
	}
}

// BranchRef returns refs/heads/<name> after validating the name.
func BranchRef(name string) (string, error) {
	return validRef(plumbing.NewBranchReferenceName(strings.TrimSpace(name)), "branch", name)
}

// TagRef returns refs/tags/<name> after validating the name.
func TagRef(name string) (string, error) {
	return validRef(plumbing.NewTagReferenceName(strings.TrimSpace(name)), "tag", name)
}

func validRef(ref plumbing.ReferenceName, kind, raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("%s name is empty", kind)
	}
	if strings.ContainsAny(raw, " \t") {
		return "", fmt.Errorf("%s name %q contains whitespace", kind, raw)
	}
	if err := ref.Validate(); err != nil {
		return "", fmt.Errorf("invalid %s name %q: %w", kind, raw, err)
	}
	return ref.String(), nil
}
