package git

import (
	"slices"
	"strings"
)

// NoCommitsLabel stands in for the HEAD hash of a repository without commits.
const NoCommitsLabel = "(no commits)"

// DetachedLabel is shown as the branch name when HEAD is detached.
const DetachedLabel = "(detached HEAD)"

// Remote is a configured remote with its URL masked.
type Remote struct {
	Name string
	URL  string
}

// Snapshot is a point-in-time view of a repository. It is built by a single
// collection pass and never modified afterwards; the list accessors return
// copies.
type Snapshot struct {
	repoRoot      string
	currentBranch string
	detached      bool
	headShort     string
	status        WorktreeStatus
	remotes       []Remote
	localBranches []string
	remoteBranch  []string
	localTags     []string
	remoteTags    []string
	remoteQueried string
}

// SnapshotData carries the fields of a Snapshot under construction.
type SnapshotData struct {
	RepoRoot       string
	CurrentBranch  string
	Detached       bool
	HeadShort      string
	Status         WorktreeStatus
	Remotes        []Remote
	LocalBranches  []string
	RemoteBranches []string
	LocalTags      []string
	RemoteTags     []string
	RemoteQueried  string
}

// NewSnapshot freezes d into a Snapshot.
func NewSnapshot(d SnapshotData) *Snapshot {
	return &Snapshot{
		repoRoot:      d.RepoRoot,
		currentBranch: d.CurrentBranch,
		detached:      d.Detached,
		headShort:     d.HeadShort,
		status:        d.Status,
		remotes:       slices.Clone(d.Remotes),
		localBranches: sortedUnique(d.LocalBranches),
		remoteBranch:  sortedUnique(d.RemoteBranches),
		localTags:     sortedUnique(d.LocalTags),
		remoteTags:    sortedUnique(d.RemoteTags),
		remoteQueried: d.RemoteQueried,
	}
}

func (s *Snapshot) RepoRoot() string       { return s.repoRoot }
func (s *Snapshot) CurrentBranch() string  { return s.currentBranch }
func (s *Snapshot) Detached() bool         { return s.detached }
func (s *Snapshot) HeadShort() string      { return s.headShort }
func (s *Snapshot) Dirty() bool            { return s.status.Dirty() }
func (s *Snapshot) Status() WorktreeStatus { return s.status }
func (s *Snapshot) RemoteQueried() string  { return s.remoteQueried }
func (s *Snapshot) Remotes() []Remote      { return slices.Clone(s.remotes) }
func (s *Snapshot) LocalBranches() []string {
	return slices.Clone(s.localBranches)
}
func (s *Snapshot) RemoteBranches() []string { return slices.Clone(s.remoteBranch) }
func (s *Snapshot) LocalTags() []string      { return slices.Clone(s.localTags) }
func (s *Snapshot) RemoteTags() []string     { return slices.Clone(s.remoteTags) }

// RemoteNames lists remote names in discovery order.
func (s *Snapshot) RemoteNames() []string {
	names := make([]string, 0, len(s.remotes))
	for _, r := range s.remotes {
		names = append(names, r.Name)
	}
	return names
}

// Branches reconciles local and remote branches. A detached HEAD has no
// current branch.
func (s *Snapshot) Branches() []BranchRecord {
	current := s.currentBranch
	if s.detached {
		current = ""
	}
	return MergeBranches(s.localBranches, s.remoteBranch, current)
}

// Tags reconciles local and remote tags.
func (s *Snapshot) Tags() []TagRecord {
	return MergeTags(s.localTags, s.remoteTags)
}

// WithRemoteRefs returns s carrying the remote listing of prev. It applies
// only when s is local-only, prev listed a remote of the same repository
// and that remote is still configured; otherwise s is returned unchanged.
func (s *Snapshot) WithRemoteRefs(prev *Snapshot) *Snapshot {
	if s.remoteQueried != "" || prev == nil || prev.remoteQueried == "" || prev.repoRoot != s.repoRoot {
		return s
	}
	if !slices.Contains(s.RemoteNames(), prev.remoteQueried) {
		return s
	}
	merged := *s
	merged.remoteBranch = slices.Clone(prev.remoteBranch)
	merged.remoteTags = slices.Clone(prev.remoteTags)
	merged.remoteQueried = prev.remoteQueried
	return &merged
}

// Collector produces snapshots. remote names the remote to list with
// ls-remote; an empty remote gives a local-only snapshot.
type Collector interface {
	Collect(root, remote string) (*Snapshot, error)
}

// Collect runs one data-collection pass over root.
func (r *Runner) Collect(root, remote string) (*Snapshot, error) {
	d := SnapshotData{RepoRoot: root}

	if out, err := r.Capture(root, "rev-parse", "--short", "HEAD"); err == nil {
		d.HeadShort = strings.TrimSpace(out)
	} else {
		d.HeadShort = NoCommitsLabel
	}

	if out, err := r.Capture(root, "symbolic-ref", "--quiet", "--short", "HEAD"); err == nil && strings.TrimSpace(out) != "" {
		d.CurrentBranch = strings.TrimSpace(out)
	} else {
		d.Detached = true
		d.CurrentBranch = DetachedLabel
	}

	out, err := r.Capture(root, "status", "--porcelain=v1")
	if err != nil {
		return nil, err
	}
	d.Status = ParsePorcelainStatus(out)

	if d.Remotes, err = r.ListRemotes(root, true); err != nil {
		return nil, err
	}

	if out, err = r.Capture(root, "for-each-ref", "--format=%(refname:short)", "refs/heads"); err != nil {
		return nil, err
	}
	d.LocalBranches = splitNameLines(out)

	if out, err = r.Capture(root, "tag", "--list"); err != nil {
		return nil, err
	}
	d.LocalTags = splitNameLines(out)

	if remote = strings.TrimSpace(remote); remote != "" {
		if out, err = r.Capture(root, "ls-remote", "--heads", remote); err != nil {
			return nil, err
		}
		d.RemoteBranches = ParseRemoteHeads(out)
		if out, err = r.Capture(root, "ls-remote", "--tags", remote); err != nil {
			return nil, err
		}
		d.RemoteTags = ParseRemoteTags(out)
		d.RemoteQueried = remote
	}
	return NewSnapshot(d), nil
}

// ListRemotes returns remotes in "git remote" order. With mask set, URL
// credentials are hidden.
func (r *Runner) ListRemotes(root string, mask bool) ([]Remote, error) {
	out, err := r.Capture(root, "remote")
	if err != nil {
		return nil, err
	}
	var remotes []Remote
	for line := range strings.SplitSeq(out, "\n") {
		name := strings.TrimSpace(line)
		if name == "" {
			continue
		}
		url, err := r.Capture(root, "remote", "get-url", name)
		if err != nil {
			return nil, err
		}
		url = strings.TrimSpace(url)
		if mask {
			url = MaskRemoteURL(url)
		}
		remotes = append(remotes, Remote{Name: name, URL: url})
	}
	return remotes, nil
}

// MaskRemoteURL hides the user-info part of a remote URL.
func MaskRemoteURL(url string) string {
	url = strings.TrimSpace(url)
	if url == "" {
		return url
	}
	if scheme, rest, ok := strings.Cut(url, "://"); ok {
		host, _, _ := strings.Cut(rest, "/")
		if !strings.Contains(host, "@") {
			return url
		}
		_, tail, _ := strings.Cut(rest, "@")
		return scheme + "://***@" + tail
	}
	if strings.Contains(url, "@") && strings.Contains(url, ":") {
		_, tail, _ := strings.Cut(url, "@")
		return "***@" + tail
	}
	return url
}

func sortedUnique(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}
