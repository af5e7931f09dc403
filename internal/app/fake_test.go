package app

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/thiagokokada/gitrepo-go/internal/aicommit"
	"github.com/thiagokokada/gitrepo-go/internal/config"
	"github.com/thiagokokada/gitrepo-go/internal/git"
)

// fakeGit is an in-memory Git. Captures and streams are keyed by their
// space-joined arguments.
type fakeGit struct {
	captures map[string]string
	capErrs  map[string]error
	codes    map[string]int
	panicOn  string

	remotes   []git.Remote
	localRefs map[string]bool
	remoteRef map[string]bool
	remoteErr error
	noHead    bool
	name      string
	email     string
	github    git.GitHubConfig
	notRepo   bool
	// root, when set, is the repository root found from any start path.
	root string

	streamed [][]string
	captured [][]string
	written  []git.GitHubRepo
	collects []string
}

func newFakeGit() *fakeGit {
	return &fakeGit{
		captures:  map[string]string{},
		capErrs:   map[string]error{},
		codes:     map[string]int{},
		localRefs: map[string]bool{},
		remoteRef: map[string]bool{},
		remotes:   []git.Remote{{Name: "origin", URL: "https://example.com/o/r.git"}},
		name:      "Test",
		email:     "test@example.com",
	}
}

func (f *fakeGit) Stream(_ string, args []string, h git.StreamHandlers) (int, error) {
	key := strings.Join(args, " ")
	if f.panicOn != "" && key == f.panicOn {
		panic("boom")
	}
	f.streamed = append(f.streamed, args)
	h.OnLine("$ git --no-pager " + key)
	return f.codes[key], nil
}

func (f *fakeGit) Collect(root, remote string) (*git.Snapshot, error) {
	f.collects = append(f.collects, remote)
	d := git.SnapshotData{
		RepoRoot:      root,
		CurrentBranch: "main",
		HeadShort:     "abc1234",
		RemoteQueried: remote,
		Remotes:       f.remotes,
		LocalBranches: []string{"main", "dev"},
		LocalTags:     []string{"v1"},
	}
	if remote != "" {
		d.RemoteBranches = []string{"main", "feature"}
	}
	return git.NewSnapshot(d), nil
}

func (f *fakeGit) Capture(_ string, args ...string) (string, error) {
	f.captured = append(f.captured, args)
	key := strings.Join(args, " ")
	if err := f.capErrs[key]; err != nil {
		return "", err
	}
	if len(args) == 4 && args[0] == "remote" && args[1] == "add" {
		f.remotes = append(f.remotes, git.Remote{Name: args[2], URL: args[3]})
	}
	return f.captures[key], nil
}

func (f *fakeGit) FindRepoRoot(start string) (string, error) {
	if f.notRepo {
		return "", git.ErrNotRepository
	}
	if f.root != "" {
		return f.root, nil
	}
	return start, nil
}

func (f *fakeGit) ListRemotes(string, bool) ([]git.Remote, error) {
	return slices.Clone(f.remotes), nil
}

func (f *fakeGit) LocalRefExists(_, ref string) (bool, error) { return f.localRefs[ref], nil }

func (f *fakeGit) RemoteRefExists(_, _, ref string) (bool, error) {
	if f.remoteErr != nil {
		return false, f.remoteErr
	}
	return f.remoteRef[ref], nil
}

func (f *fakeGit) HasHead(string) bool                           { return !f.noHead }
func (f *fakeGit) Identity(string) (string, string)              { return f.name, f.email }
func (f *fakeGit) EffectiveGitHubConfig(string) git.GitHubConfig { return f.github }

func (f *fakeGit) WriteGitHubConfig(_ string, repo git.GitHubRepo, _ string) error {
	f.written = append(f.written, repo)
	return nil
}

type fakeView struct {
	logs     []string
	progress []int
	status   []string
	summary  string
	repoPath string
	remotes  []string
	selected string
	branches []git.BranchRecord
	tags     []git.TagRecord
	recent   []string
	target   string
	busy     bool
	loaded   bool
	finished []bool
}

func (v *fakeView) AppendLog(line string)                 { v.logs = append(v.logs, line) }
func (v *fakeView) SetProgress(p int, _ string)           { v.progress = append(v.progress, p) }
func (v *fakeView) SetStatus(text string)                 { v.status = append(v.status, text) }
func (v *fakeView) SetSummary(text string)                { v.summary = text }
func (v *fakeView) SetRepoPath(path string)               { v.repoPath = path }
func (v *fakeView) SetBranches(r []git.BranchRecord)      { v.branches = r }
func (v *fakeView) SetTags(r []git.TagRecord)             { v.tags = r }
func (v *fakeView) SetRecent(paths []string)              { v.recent = paths }
func (v *fakeView) SetTargetBranch(name string)           { v.target = name }
func (v *fakeView) TargetBranch() string                  { return v.target }
func (v *fakeView) SetBusy(busy, loaded bool)             { v.busy, v.loaded = busy, loaded }
func (v *fakeView) FinishProgress(ok bool)                { v.finished = append(v.finished, ok) }
func (v *fakeView) SetRemotes(names []string, sel string) { v.remotes, v.selected = names, sel }

func (v *fakeView) lastStatus() string {
	if len(v.status) == 0 {
		return ""
	}
	return v.status[len(v.status)-1]
}

func (v *fakeView) hasLog(prefix string) bool {
	return slices.ContainsFunc(v.logs, func(l string) bool { return strings.HasPrefix(l, prefix) })
}

// fakePrompter answers every dialog from its fields and records what was
// shown.
type fakePrompter struct {
	commit    CommitInput
	commitOK  bool
	identity  IdentityInput
	idOK      bool
	github    GitHubInput
	githubOK  bool
	remote    RemoteInput
	remoteOK  bool
	deny      bool
	denyDirty bool

	// during runs inside PromptCommit, while the dialog would be open.
	during func()

	suggest  SuggestFunc
	dangers  []string
	confirms []string
	infos    []string
	errs     []string
}

func (p *fakePrompter) PromptCommit(_ CommitInput, suggest SuggestFunc) (CommitInput, bool) {
	p.suggest = suggest
	if p.during != nil {
		p.during()
	}
	return p.commit, p.commitOK
}

func (p *fakePrompter) PromptIdentity(IdentityInput) (IdentityInput, bool) {
	return p.identity, p.idOK
}

func (p *fakePrompter) PromptGitHubRepo(GitHubInput) (GitHubInput, bool) {
	return p.github, p.githubOK
}

func (p *fakePrompter) PromptRemote(d RemoteInput, nameEditable bool) (RemoteInput, bool) {
	in := p.remote
	if !nameEditable {
		in.Name = d.Name
	}
	return in, p.remoteOK
}

func (p *fakePrompter) ConfirmDanger(action, _, _ string) bool {
	p.dangers = append(p.dangers, action)
	return !p.deny
}

func (p *fakePrompter) Confirm(title, _ string) bool {
	p.confirms = append(p.confirms, title)
	return !p.denyDirty
}

func (p *fakePrompter) Info(_, message string)      { p.infos = append(p.infos, message) }
func (p *fakePrompter) ShowError(_, message string) { p.errs = append(p.errs, message) }

type fakeSuggester struct{ got string }

func (s *fakeSuggester) Suggest(_ context.Context, _ aicommit.Changes, _ func(string)) (string, error) {
	if s.got == "" {
		return "", errors.New("no model")
	}
	return s.got, nil
}

type harness struct {
	c       *Controller
	git     *fakeGit
	view    *fakeView
	prompt  *fakePrompter
	pending []func()
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{git: newFakeGit(), view: &fakeView{}, prompt: &fakePrompter{}}
	h.c = New(Options{
		Git:      h.git,
		View:     h.view,
		Prompter: h.prompt,
		Settings: config.Load(""),
	})
	h.c.async = func(f func()) { h.pending = append(h.pending, f) }
	return h
}

// loaded returns a harness with a repository already open.
func loaded(t *testing.T) *harness {
	t.Helper()
	h := newHarness(t)
	h.c.root = "/repo"
	return h
}

// settle runs the queued workers and applies their events.
func (h *harness) settle() {
	for len(h.pending) > 0 {
		f := h.pending[0]
		h.pending = h.pending[1:]
		f()
	}
	h.c.Poll()
}

func equalSteps(a, b [][]string) bool {
	return slices.EqualFunc(a, b, func(x, y []string) bool { return slices.Equal(x, y) })
}
