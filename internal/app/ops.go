package app

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/thiagokokada/gitrepo-go/internal/git"
	"github.com/thiagokokada/gitrepo-go/internal/ops"
)

func (c *Controller) onRefresh(req Request) bool {
	return c.startRefresh("Refresh", c.resolveRemote(req.Remote))
}

// onRefreshLocal re-reads local refs without contacting a remote. The last
// remote listing stays on screen.
func (c *Controller) onRefreshLocal(Request) bool {
	if !c.startRefresh("Local refresh", "") {
		return false
	}
	c.keepRemote = true
	return true
}

func (c *Controller) onFetch(req Request) bool {
	remote := strings.TrimSpace(req.Remote)
	if remote == "" {
		c.prompt.ShowError("Fetch", "No remote selected.")
		return false
	}
	return c.runSequence(ops.Sequence{
		Title:        "Fetch from " + remote,
		Steps:        [][]string{git.FetchArgs(remote)},
		RefreshAfter: true,
		Remote:       remote,
	})
}

func (c *Controller) onPush(req Request) bool {
	opts := req.Push
	opts.Target = strings.TrimSpace(opts.Target)
	if opts.Target == "" {
		c.prompt.ShowError("Push", "Target branch must not be empty.")
		return false
	}
	if _, err := git.BranchRef(opts.Target); err != nil {
		c.prompt.ShowError("Push", err.Error())
		return false
	}
	if tag := strings.TrimSpace(opts.Tag); tag != "" {
		if _, err := git.TagRef(tag); err != nil {
			c.prompt.ShowError("Push", err.Error())
			return false
		}
	}

	opts.Remote = c.ensureRemote(opts.Remote)
	if opts.Remote == "" {
		c.prompt.ShowError("Push", "No remote configured, cannot push.")
		return false
	}
	if !c.git.HasHead(c.root) {
		c.prompt.ShowError("Push", "This repository has no commits yet (no HEAD).\nCommit first, then push.")
		return false
	}
	if c.isDirty() && !c.prompt.Confirm("Push", "The worktree has uncommitted changes.\nUncommitted files are not pushed.\nPush anyway?") {
		return false
	}
	if opts.Force && !c.prompt.ConfirmDanger(
		"Force push",
		opts.Remote+":"+opts.Target,
		"May overwrite remote history and drop commits made by others.",
	) {
		return false
	}

	steps, err := git.PlanPush(opts)
	if err != nil {
		c.prompt.ShowError("Push", err.Error())
		return false
	}
	return c.runSequence(ops.Sequence{
		Title:        "Push to " + opts.Remote,
		Steps:        steps,
		RefreshAfter: true,
		Remote:       opts.Remote,
	})
}

// ensureRemote returns the remote to push to. With no remote configured it
// creates origin from the stored or inferred GitHub settings, asking the
// user when there are none.
func (c *Controller) ensureRemote(requested string) string {
	if remote := c.resolveRemote(requested); remote != "" {
		return remote
	}

	cfg := c.git.EffectiveGitHubConfig(c.root)
	if !cfg.Found {
		in, ok := c.prompt.PromptGitHubRepo(GitHubInput{Protocol: cfg.Protocol})
		if !ok {
			return ""
		}
		cfg = git.GitHubConfig{Repo: in.Repo, Protocol: in.Protocol, Found: true}
		if err := c.git.WriteGitHubConfig(c.root, cfg.Repo, cfg.Protocol); err != nil {
			c.view.AppendLog(fmt.Sprintf("[WARN] could not store GitHub settings: %v", err))
		}
	}

	url := cfg.Repo.URL(cfg.Protocol)
	if _, err := c.git.Capture(c.root, git.AddRemoteArgs("origin", url)...); err != nil {
		c.logCommandError("creating origin failed", err)
		c.prompt.ShowError("Push", fmt.Sprintf("Could not create origin: %v", err))
		return ""
	}
	c.view.AppendLog("[INFO] created origin: " + url)
	c.view.SetRemotes([]string{"origin"}, "origin")
	return "origin"
}

func (c *Controller) onCommit(req Request) bool {
	in, ok := c.prompt.PromptCommit(CommitInput{StageAll: true}, c.suggestFunc(c.root))
	if !ok {
		return false
	}
	steps, err := git.PlanCommit(in.Message, in.StageAll)
	if err != nil {
		c.prompt.ShowError("Commit", err.Error())
		return false
	}
	if !c.hasChanges(in.StageAll) {
		c.prompt.Info("Commit", "Nothing to commit.")
		return false
	}
	if !c.ensureIdentity() {
		return false
	}

	staging := "staged changes only"
	if in.StageAll {
		staging = "everything (git add -A)"
	}
	if !c.prompt.ConfirmDanger(
		"Commit",
		fmt.Sprintf("%s\nMessage: %s\nStage: %s", c.root, strings.TrimSpace(in.Message), staging),
		"Creates a new commit. Staging everything may include secrets or temporary files.",
	) {
		return false
	}
	return c.runSequence(ops.Sequence{
		Title:        "Commit",
		Steps:        steps,
		RefreshAfter: true,
		Remote:       c.resolveRemote(req.Remote),
	})
}

func (c *Controller) hasChanges(stageAll bool) bool {
	args := []string{"diff", "--cached", "--name-only"}
	if stageAll {
		args = []string{"status", "--porcelain=v1"}
	}
	out, err := c.git.Capture(c.root, args...)
	if err != nil {
		return true
	}
	return strings.TrimSpace(out) != ""
}

// ensureIdentity makes sure user.name and user.email are set, prompting for
// them when either is missing.
func (c *Controller) ensureIdentity() bool {
	name, email := c.git.Identity(c.root)
	if name != "" && email != "" {
		return true
	}
	in, ok := c.prompt.PromptIdentity(IdentityInput{Name: name, Email: email, Scope: git.ScopeLocal})
	if !ok {
		c.prompt.Info("Commit", "No git identity configured, commit cancelled.")
		return false
	}
	if in.Scope == git.ScopeGlobal && !c.prompt.ConfirmDanger(
		"Set global git identity",
		fmt.Sprintf("user.name=%s\nuser.email=%s", in.Name, in.Email),
		"Writes ~/.gitconfig and applies to every repository on this machine.",
	) {
		return false
	}
	for _, args := range git.IdentityArgs(in.Scope, in.Name, in.Email) {
		if _, err := c.git.Capture(c.root, args...); err != nil {
			c.logCommandError("writing git identity failed", err)
			c.prompt.ShowError("Commit", fmt.Sprintf("Could not write git identity: %v", err))
			return false
		}
	}
	return true
}

func (c *Controller) onCheckoutBranch(req Request) bool {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		c.prompt.Info("Checkout", "Select a branch first.")
		return false
	}
	if name == c.currentBranch() {
		c.prompt.Info("Checkout", fmt.Sprintf("Already on branch %s.", name))
		return false
	}
	if c.isDirty() && !c.prompt.Confirm("Checkout", "The worktree has uncommitted changes and switching branch may conflict.\nContinue?") {
		return false
	}
	return c.runSequence(ops.Sequence{
		Title:        "Checkout branch " + name,
		Steps:        [][]string{git.CheckoutBranchArgs(name)},
		RefreshAfter: true,
		Remote:       c.resolveRemote(req.Remote),
	})
}

func (c *Controller) onCheckoutTag(req Request) bool {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		c.prompt.Info("Checkout", "Select a tag first.")
		return false
	}
	if c.isDirty() && !c.prompt.Confirm("Checkout", "The worktree has uncommitted changes and checking out a tag may conflict.\nContinue?") {
		return false
	}
	return c.runSequence(ops.Sequence{
		Title:        "Checkout tag " + name,
		Steps:        [][]string{git.CheckoutTagArgs(name)},
		RefreshAfter: true,
		Remote:       c.resolveRemote(req.Remote),
	})
}

// refPresence looks ref up locally and on remote. A failed remote query is
// reported and aborts the caller.
func (c *Controller) refPresence(kind, remote, ref string) (git.RefPresence, bool) {
	local, err := c.git.LocalRefExists(c.root, ref)
	if err != nil {
		c.logger.Warn("local ref lookup", slog.String("ref", ref), slog.Any("error", err))
	}
	remoteExists, err := c.git.RemoteRefExists(c.root, remote, ref)
	if err != nil {
		c.logCommandError("querying remote "+kind+" failed", err)
		c.prompt.ShowError("Delete "+kind, fmt.Sprintf("Querying the remote %s failed: %v", kind, err))
		return git.RefPresence{}, false
	}
	return git.RefPresence{Local: local, Remote: remoteExists}, true
}

func (c *Controller) onDeleteBranch(req Request) bool {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		c.prompt.Info("Delete branch", "Select a branch first.")
		return false
	}
	if name == c.currentBranch() {
		c.prompt.ShowError("Delete branch", fmt.Sprintf("Cannot delete the current branch %s.\nCheck out another branch first.", name))
		return false
	}
	ref, err := git.BranchRef(name)
	if err != nil {
		c.prompt.ShowError("Delete branch", err.Error())
		return false
	}
	remote := c.resolveRemote(req.Remote)
	if remote == "" {
		c.prompt.ShowError("Delete branch", "No remote configured, cannot delete the remote branch.")
		return false
	}
	where, ok := c.refPresence("branch", remote, ref)
	if !ok {
		return false
	}
	steps, err := git.PlanDeleteBranch(remote, name, where, req.Force)
	if errors.Is(err, git.ErrNothingToDo) {
		c.prompt.Info("Delete branch", "Branch does not exist: "+name)
		return false
	} else if err != nil {
		c.prompt.ShowError("Delete branch", err.Error())
		return false
	}
	if !c.prompt.ConfirmDanger(
		"Delete branch",
		name,
		"Deletes the remote and local branch where present. Fails if unmerged or if the remote branch is protected.",
	) {
		return false
	}
	return c.runSequence(ops.Sequence{Title: "Delete branch", Steps: steps, RefreshAfter: true, Remote: remote})
}

func (c *Controller) onDeleteTag(req Request) bool {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		c.prompt.Info("Delete tag", "Select a tag first.")
		return false
	}
	ref, err := git.TagRef(name)
	if err != nil {
		c.prompt.ShowError("Delete tag", err.Error())
		return false
	}
	remote := c.resolveRemote(req.Remote)
	if remote == "" {
		c.prompt.ShowError("Delete tag", "No remote configured, cannot delete the remote tag.")
		return false
	}
	where, ok := c.refPresence("tag", remote, ref)
	if !ok {
		return false
	}
	steps, err := git.PlanDeleteTag(remote, name, where)
	if errors.Is(err, git.ErrNothingToDo) {
		c.prompt.Info("Delete tag", "Tag does not exist: "+name)
		return false
	} else if err != nil {
		c.prompt.ShowError("Delete tag", err.Error())
		return false
	}
	if !c.prompt.ConfirmDanger(
		"Delete tag",
		name,
		"Deletes the remote and local tag where present. Releases or rollbacks that use it may break.",
	) {
		return false
	}
	return c.runSequence(ops.Sequence{Title: "Delete tag", Steps: steps, RefreshAfter: true, Remote: remote})
}

func (c *Controller) onAddRemote(req Request) bool {
	in, ok := c.prompt.PromptRemote(RemoteInput{Name: strings.TrimSpace(req.Name), URL: req.URL}, true)
	if !ok {
		return false
	}
	if in.Name == "" || in.URL == "" {
		c.prompt.ShowError("Add remote", "Remote name and URL are required.")
		return false
	}
	return c.runSequence(ops.Sequence{
		Title:        "Add remote " + in.Name,
		Steps:        [][]string{git.AddRemoteArgs(in.Name, in.URL)},
		RefreshAfter: true,
		Remote:       in.Name,
	})
}

func (c *Controller) onSetRemoteURL(req Request) bool {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		c.prompt.Info("Edit remote", "Select a remote first.")
		return false
	}
	in, ok := c.prompt.PromptRemote(RemoteInput{Name: name, URL: req.URL}, false)
	if !ok {
		return false
	}
	if in.URL == "" {
		c.prompt.ShowError("Edit remote", "Remote URL is required.")
		return false
	}
	return c.runSequence(ops.Sequence{
		Title:        "Set URL of " + name,
		Steps:        [][]string{git.SetRemoteURLArgs(name, in.URL)},
		RefreshAfter: true,
		Remote:       name,
	})
}

func (c *Controller) onRemoveRemote(req Request) bool {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		c.prompt.Info("Remove remote", "Select a remote first.")
		return false
	}
	if !c.prompt.ConfirmDanger(
		"Remove remote",
		name,
		"Deletes the remote and its remote-tracking branches from this repository.",
	) {
		return false
	}
	return c.runSequence(ops.Sequence{
		Title:        "Remove remote " + name,
		Steps:        [][]string{git.RemoveRemoteArgs(name)},
		RefreshAfter: true,
	})
}

func (c *Controller) onInit(req Request) bool {
	dir := strings.TrimSpace(req.Path)
	if dir == "" {
		dir = c.root
	}
	abs, err := filepath.Abs(dir)
	if dir == "" || err != nil || !isDir(abs) {
		c.prompt.ShowError("Init", "The directory does not exist, cannot initialise.")
		return false
	}

	var gh *GitHubInput
	if in, ok := c.prompt.PromptGitHubRepo(GitHubInput{Protocol: git.ProtocolHTTPS}); ok {
		gh = &in
	}
	if !c.prompt.ConfirmDanger(
		"Initialise repository",
		abs+"\nRuns: git init",
		"Creates a .git directory and writes configuration. May conflict with another VCS in the directory.",
	) {
		return false
	}

	out, err := c.git.Capture(abs, "init")
	if err != nil {
		c.logCommandError("git init failed", err)
		c.prompt.ShowError("Init", fmt.Sprintf("git init failed: %v", err))
		return false
	}
	if s := strings.TrimSpace(out); s != "" {
		c.view.AppendLog(s)
	}

	if gh != nil {
		if err := c.configureOrigin(abs, *gh); err != nil {
			c.logCommandError("configuring origin failed", err)
			c.prompt.ShowError("Init", fmt.Sprintf("Could not configure origin: %v", err))
			return false
		}
	}
	return c.openRepo(abs)
}

func (c *Controller) configureOrigin(root string, gh GitHubInput) error {
	url := gh.Repo.URL(gh.Protocol)
	remotes, err := c.git.ListRemotes(root, false)
	if err != nil {
		return err
	}
	args := git.AddRemoteArgs("origin", url)
	if slices.ContainsFunc(remotes, func(r git.Remote) bool { return r.Name == "origin" }) {
		args = git.SetRemoteURLArgs("origin", url)
	}
	if _, err := c.git.Capture(root, args...); err != nil {
		return err
	}
	if err := c.git.WriteGitHubConfig(root, gh.Repo, gh.Protocol); err != nil {
		return err
	}
	c.view.AppendLog("[INFO] configured origin: " + url)
	return nil
}

func (c *Controller) onOpenRepo(req Request) bool {
	return c.openRepo(req.Path)
}

// openRepo loads the repository containing path and starts a refresh.
// A directory that is not a repository leaves the controller without one
// and invites the user to initialise it.
func (c *Controller) openRepo(path string) bool {
	abs, err := filepath.Abs(strings.TrimSpace(path))
	if err != nil || path == "" || !isDir(abs) {
		c.root, c.snap = "", nil
		c.view.SetSummary("Directory does not exist: " + abs)
		c.view.SetBusy(false, false)
		return false
	}
	root, err := c.git.FindRepoRoot(abs)
	if err != nil {
		c.root, c.snap = "", nil
		c.view.SetRepoPath(abs)
		c.logger.Info("not a repository", slog.String("path", abs), slog.Any("error", err))
		c.view.SetSummary(fmt.Sprintf(
			"Not a git repository: %s\n%v\n\nFor a new directory use Init... to create .git and configure a GitHub origin.",
			abs, err,
		))
		c.view.SetBusy(false, false)
		return false
	}

	c.root, c.snap = root, nil
	c.view.SetRepoPath(root)
	c.view.SetTargetBranch("")
	c.saveSettings(c.settings.AddRecent(root))
	c.view.SetRecent(c.settings.RecentRepos)
	c.view.SetBusy(false, true)
	return c.startRefresh("Refresh", c.resolveRemote(""))
}

func (c *Controller) onOpenRecent(req Request) bool {
	if isDir(req.Path) {
		return c.openRepo(req.Path)
	}
	c.prompt.ShowError("Open recent", "Directory does not exist: "+req.Path)
	c.saveSettings(c.settings.RemoveRecent(req.Path))
	c.view.SetRecent(c.settings.RecentRepos)
	return false
}

func (c *Controller) onClearRecent(Request) bool {
	c.saveSettings(c.settings.ClearRecent())
	c.view.SetRecent(nil)
	return true
}

func isDir(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}
