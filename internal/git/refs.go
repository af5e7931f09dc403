package git

import (
	"slices"
	"strings"
)

const (
	headsPrefix = "refs/heads/"
	tagsPrefix  = "refs/tags/"
	peelSuffix  = "^{}"
)

// RemoteRef is one reconciled entry of an ls-remote listing.
type RemoteRef struct {
	Name string
	Hash string
}

// ParseRemoteRefs parses "<hash>\t<ref>" lines restricted to namespace
// (refs/heads/ or refs/tags/) and returns entries sorted by short name.
//
// In the tags namespace a "<name>^{}" line is the peeled commit of the
// annotated tag <name>: its hash replaces the tag object hash and later
// unpeeled lines for the same name are ignored. Malformed lines are skipped.
func ParseRemoteRefs(out, namespace string) []RemoteRef {
	peelTags := namespace == tagsPrefix
	byName := map[string]string{}
	peeled := map[string]bool{}
	for rawLine := range strings.SplitSeq(out, "\n") {
		hash, ref, ok := splitListingLine(rawLine)
		if !ok {
			continue
		}
		name, ok := strings.CutPrefix(ref, namespace)
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		if peelTags {
			base, isPeeled := strings.CutSuffix(name, peelSuffix)
			if base == "" {
				continue
			}
			if isPeeled {
				peeled[base] = true
				byName[base] = hash
				continue
			}
			if peeled[name] {
				continue
			}
		}
		if name == "" {
			continue
		}
		if _, seen := byName[name]; !seen {
			byName[name] = hash
		}
	}
	refs := make([]RemoteRef, 0, len(byName))
	for name, hash := range byName {
		refs = append(refs, RemoteRef{Name: name, Hash: hash})
	}
	slices.SortFunc(refs, func(a, b RemoteRef) int { return strings.Compare(a.Name, b.Name) })
	return refs
}

// ParseRemoteHeads returns the sorted branch names of "ls-remote --heads".
func ParseRemoteHeads(out string) []string {
	return refNames(ParseRemoteRefs(out, headsPrefix))
}

// ParseRemoteTags returns the sorted tag names of "ls-remote --tags", with
// peel markers folded into their base names.
func ParseRemoteTags(out string) []string {
	return refNames(ParseRemoteRefs(out, tagsPrefix))
}

func splitListingLine(rawLine string) (hash, ref string, ok bool) {
	line := strings.TrimSpace(rawLine)
	if line == "" {
		return "", "", false
	}
	hash, ref, found := strings.Cut(line, "\t")
	if !found {
		return "", "", false
	}
	hash = strings.TrimSpace(hash)
	ref = strings.TrimSpace(ref)
	if hash == "" || ref == "" {
		return "", "", false
	}
	return hash, ref, true
}

func refNames(refs []RemoteRef) []string {
	names := make([]string, 0, len(refs))
	for _, r := range refs {
		names = append(names, r.Name)
	}
	return names
}

// splitNameLines turns newline separated names into a sorted, de-duplicated
// list.
func splitNameLines(out string) []string {
	var names []string
	for line := range strings.SplitSeq(out, "\n") {
		if name := strings.TrimSpace(line); name != "" {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return slices.Compact(names)
}
