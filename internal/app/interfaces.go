// Package app holds the controller that sits between the Tk front-end and
// git: it validates user requests, asks for confirmation, starts operations
// on worker goroutines and applies their events on the UI goroutine.
package app

import (
	"context"
	"fmt"

	"github.com/thiagokokada/gitrepo-go/internal/git"
)

// Op names a user-triggered operation.
type Op int

const (
	OpRefresh Op = iota + 1
	OpRefreshLocal
	OpFetch
	OpPush
	OpCommit
	OpCheckoutBranch
	OpCheckoutTag
	OpDeleteBranch
	OpDeleteTag
	OpAddRemote
	OpSetRemoteURL
	OpRemoveRemote
	OpInit
	OpOpenRepo
	OpOpenRecent
	OpClearRecent
)

var opNames = map[Op]string{
	OpRefresh:        "refresh",
	OpRefreshLocal:   "refresh-local",
	OpFetch:          "fetch",
	OpPush:           "push",
	OpCommit:         "commit",
	OpCheckoutBranch: "checkout-branch",
	OpCheckoutTag:    "checkout-tag",
	OpDeleteBranch:   "delete-branch",
	OpDeleteTag:      "delete-tag",
	OpAddRemote:      "add-remote",
	OpSetRemoteURL:   "set-remote-url",
	OpRemoveRemote:   "remove-remote",
	OpInit:           "init",
	OpOpenRepo:       "open-repo",
	OpOpenRecent:     "open-recent",
	OpClearRecent:    "clear-recent",
}

func (o Op) String() string {
	if name, ok := opNames[o]; ok {
		return name
	}
	return fmt.Sprintf("op(%d)", int(o))
}

// Request is one UI action. Only the fields the Op reads need to be set.
type Request struct {
	Op Op
	// Name is the selected branch, tag or remote.
	Name string
	URL  string
	// Path is a directory for OpOpenRepo, OpOpenRecent and OpInit.
	Path string
	// Remote is the remote selected in the UI; empty means "first remote".
	Remote string
	// Force selects "branch -D" for OpDeleteBranch.
	Force bool
	Push  git.PushOptions
}

// View is the UI state the controller drives. All methods are called on
// the UI goroutine.
type View interface {
	AppendLog(line string)
	SetProgress(percent int, stage string)
	SetStatus(text string)
	SetSummary(text string)
	SetRepoPath(path string)
	SetRemotes(names []string, selected string)
	SetBranches(records []git.BranchRecord)
	SetTags(records []git.TagRecord)
	SetRecent(paths []string)
	SetTargetBranch(name string)
	TargetBranch() string
	// SetBusy toggles the operation controls; busy starts an indeterminate
	// progress indicator, leaving busy finishes it.
	SetBusy(busy, repoLoaded bool)
	FinishProgress(ok bool)
}

type CommitInput struct {
	Message  string
	StageAll bool
}

type IdentityInput struct {
	Name  string
	Email string
	Scope git.IdentityScope
}

type GitHubInput struct {
	Repo     git.GitHubRepo
	Protocol string
}

type RemoteInput struct {
	Name string
	URL  string
}

// SuggestFunc generates a commit message for the pending changes. It runs
// off the UI goroutine; onChunk receives partial text.
type SuggestFunc func(ctx context.Context, stageAll bool, onChunk func(string)) (string, error)

// Prompter shows modal dialogs. A false ok means the user cancelled.
type Prompter interface {
	PromptCommit(defaults CommitInput, suggest SuggestFunc) (CommitInput, bool)
	PromptIdentity(defaults IdentityInput) (IdentityInput, bool)
	PromptGitHubRepo(defaults GitHubInput) (GitHubInput, bool)
	PromptRemote(defaults RemoteInput, nameEditable bool) (RemoteInput, bool)
	ConfirmDanger(action, impact, risks string) bool
	Confirm(title, message string) bool
	Info(title, message string)
	ShowError(title, message string)
}

// Git is the subset of *git.Runner the controller uses.
type Git interface {
	git.Streamer
	git.Collector
	Capture(root string, args ...string) (string, error)
	FindRepoRoot(start string) (string, error)
	ListRemotes(root string, mask bool) ([]git.Remote, error)
	LocalRefExists(root, ref string) (bool, error)
	RemoteRefExists(root, remote, ref string) (bool, error)
	HasHead(root string) bool
	Identity(root string) (name, email string)
	EffectiveGitHubConfig(root string) git.GitHubConfig
	WriteGitHubConfig(root string, repo git.GitHubRepo, protocol string) error
}

var _ Git = (*git.Runner)(nil)
