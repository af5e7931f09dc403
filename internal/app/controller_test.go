package app

import (
	"bytes"
	"context"
	"log/slog"
	"slices"
	"strings"
	"testing"

	"github.com/thiagokokada/gitrepo-go/internal/events"
	"github.com/thiagokokada/gitrepo-go/internal/git"
	"github.com/thiagokokada/gitrepo-go/internal/ops"
)

func TestDispatch_SingleFlight(t *testing.T) {
	t.Parallel()

	h := loaded(t)
	if !h.c.Dispatch(Request{Op: OpFetch, Remote: "origin"}) {
		t.Fatal("first dispatch refused")
	}
	if h.c.State() != ops.StateRunning || !h.view.busy {
		t.Fatalf("state = %s busy = %v", h.c.State(), h.view.busy)
	}
	if h.c.Dispatch(Request{Op: OpRefresh}) {
		t.Fatal("second dispatch accepted while running")
	}
	if len(h.pending) != 1 {
		t.Fatalf("pending workers = %d, want 1", len(h.pending))
	}

	h.settle()

	if h.c.State() != ops.StateIdle || h.view.busy {
		t.Fatalf("state = %s busy = %v after Done", h.c.State(), h.view.busy)
	}
	if got := h.view.lastStatus(); got != "Ready (Fetch from origin done)" {
		t.Fatalf("status = %q", got)
	}
	if !slices.Equal(h.view.finished, []bool{true}) {
		t.Fatalf("finished = %v", h.view.finished)
	}
	if !h.c.Dispatch(Request{Op: OpRefresh}) {
		t.Fatal("dispatch refused after the operation finished")
	}
}

func TestDispatch_Guards(t *testing.T) {
	t.Parallel()

	t.Run("unknown_op", func(t *testing.T) {
		t.Parallel()

		h := loaded(t)
		if h.c.Dispatch(Request{Op: Op(99)}) {
			t.Fatal("unknown op accepted")
		}
	})

	t.Run("needs_repository", func(t *testing.T) {
		t.Parallel()

		h := newHarness(t)
		for _, op := range []Op{OpRefresh, OpFetch, OpPush, OpCommit, OpDeleteTag} {
			if h.c.Dispatch(Request{Op: op, Remote: "origin", Name: "x"}) {
				t.Errorf("%s accepted without a repository", op)
			}
		}
		if !h.c.Dispatch(Request{Op: OpClearRecent}) {
			t.Error("clear-recent refused without a repository")
		}
	})
}

func TestDispatch_RefusesReentry(t *testing.T) {
	t.Parallel()

	h := loaded(t)
	var nested bool
	h.prompt.during = func() { nested = h.c.Dispatch(Request{Op: OpRefreshLocal}) }
	h.c.Dispatch(Request{Op: OpCommit})
	if nested {
		t.Fatal("request accepted while a dialog of another request was open")
	}
	if !h.c.Dispatch(Request{Op: OpRefreshLocal}) {
		t.Fatal("dispatch refused after the dialog closed")
	}
}

func TestOpString(t *testing.T) {
	t.Parallel()

	if OpPush.String() != "push" || Op(99).String() != "op(99)" {
		t.Fatal("unexpected Op strings")
	}
}

func TestPoll_UnknownEvent(t *testing.T) {
	t.Parallel()

	h := loaded(t)
	h.c.Post(events.Event{Kind: events.Kind(42)})
	h.c.Poll()
	if !h.view.hasLog("[WARN] unknown event") {
		t.Fatalf("logs = %q", h.view.logs)
	}
}

func TestPoll_AppliesInOrder(t *testing.T) {
	t.Parallel()

	h := loaded(t)
	h.c.Post(events.Log("one"))
	h.c.Post(events.Progress(40, "Receiving objects"))
	h.c.Post(events.Status("working"))
	h.c.Post(events.Error("Oops", "bad"))
	h.c.Post(events.Log("two"))
	h.c.Poll()

	if !slices.Equal(h.view.logs, []string{"one", "two"}) {
		t.Fatalf("logs = %q", h.view.logs)
	}
	if !slices.Equal(h.view.progress, []int{40}) || h.view.lastStatus() != "working" {
		t.Fatalf("progress = %v status = %q", h.view.progress, h.view.status)
	}
	if !slices.Equal(h.prompt.errs, []string{"bad"}) {
		t.Fatalf("errors = %q", h.prompt.errs)
	}
}

func TestStart_RecoversPanic(t *testing.T) {
	t.Parallel()

	h := loaded(t)
	h.git.panicOn = "fetch origin --prune --tags --progress"
	h.c.Dispatch(Request{Op: OpFetch, Remote: "origin"})
	h.settle()

	if h.c.State() != ops.StateIdle {
		t.Fatalf("state = %s, want idle", h.c.State())
	}
	if !h.view.hasLog("[ERROR] Fetch from origin failed: boom") {
		t.Fatalf("logs = %q", h.view.logs)
	}
	if len(h.prompt.errs) != 1 || !slices.Equal(h.view.finished, []bool{false}) {
		t.Fatalf("errors = %q finished = %v", h.prompt.errs, h.view.finished)
	}
	if got := h.view.lastStatus(); got != "Ready (Fetch from origin failed, see log)" {
		t.Fatalf("status = %q", got)
	}
}

func TestStart_LogsOperationID(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	h := loaded(t)
	h.c.logger = slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	h.c.Dispatch(Request{Op: OpFetch, Remote: "origin"})
	h.settle()

	const prefix = "==> Fetch from origin ["
	i := slices.IndexFunc(h.view.logs, func(l string) bool { return strings.HasPrefix(l, prefix) })
	if i < 0 {
		t.Fatalf("no header line in %q", h.view.logs)
	}
	id := strings.TrimSuffix(strings.TrimPrefix(h.view.logs[i], prefix), "]")
	if len(id) != 8 {
		t.Fatalf("header = %q, want an 8 character id", h.view.logs[i])
	}
	if !strings.Contains(buf.String(), "op_id="+id) {
		t.Fatalf("stderr log lacks op_id=%s:\n%s", id, buf.String())
	}
}

func TestApplySnapshot(t *testing.T) {
	t.Parallel()

	h := loaded(t)
	h.c.Dispatch(Request{Op: OpRefresh})
	h.settle()

	if got := h.git.collects; !slices.Equal(got, []string{"origin"}) {
		t.Fatalf("collect remotes = %q, want the first remote", got)
	}
	if h.view.target != "main" {
		t.Fatalf("target = %q, want current branch", h.view.target)
	}
	if h.view.selected != "origin" || !slices.Equal(h.view.remotes, []string{"origin"}) {
		t.Fatalf("remotes = %q selected = %q", h.view.remotes, h.view.selected)
	}
	// dev, feature, main
	if len(h.view.branches) != 3 || len(h.view.tags) != 1 {
		t.Fatalf("branches = %+v tags = %+v", h.view.branches, h.view.tags)
	}
	if !h.view.hasLog("[INFO] loaded 3 branches, 1 tags; remotes=origin") {
		t.Fatalf("logs = %q", h.view.logs)
	}
	if !strings.Contains(h.view.summary, "Branch: main    HEAD: abc1234    Worktree: clean") {
		t.Fatalf("summary = %q", h.view.summary)
	}
	if got := h.view.lastStatus(); got != "Ready (3 branches, 1 tags)" {
		t.Fatalf("status = %q", got)
	}

	h.view.target = "release"
	h.c.Dispatch(Request{Op: OpRefreshLocal})
	h.settle()
	if h.view.target != "release" {
		t.Fatal("refresh overwrote a user-entered target branch")
	}
}

func TestRefreshLocal_KeepsRemoteListing(t *testing.T) {
	t.Parallel()

	h := loaded(t)
	h.c.Dispatch(Request{Op: OpRefresh})
	h.settle()
	h.c.Dispatch(Request{Op: OpRefreshLocal})
	h.settle()

	if !slices.Equal(h.git.collects, []string{"origin", ""}) {
		t.Fatalf("collect remotes = %q", h.git.collects)
	}
	if !slices.ContainsFunc(h.view.branches, func(r git.BranchRecord) bool {
		return r.Name == "feature" && r.Remote && !r.Local
	}) {
		t.Fatalf("remote-only branch dropped by a local refresh: %+v", h.view.branches)
	}
	if h.view.selected != "origin" {
		t.Fatalf("selected remote = %q", h.view.selected)
	}
	if h.c.keepRemote {
		t.Fatal("keepRemote outlived the local refresh")
	}
}

func TestSuggestFunc(t *testing.T) {
	t.Parallel()

	h := loaded(t)
	if h.c.suggestFunc("/repo") != nil {
		t.Fatal("suggest func without a suggester")
	}

	h.c.ai = &fakeSuggester{got: "Add feature"}
	h.git.captures["diff --cached --name-status"] = "M\ta.go\n"
	h.git.captures["diff --cached -- ."] = "+x\n"
	got, err := h.c.suggestFunc("/repo")(context.Background(), false, nil)
	if err != nil || got != "Add feature" {
		t.Fatalf("suggest = %q, %v", got, err)
	}
}

func TestSnapshotAccessors(t *testing.T) {
	t.Parallel()

	h := loaded(t)
	if h.c.Snapshot() != nil || h.c.Root() != "/repo" || h.c.Busy() {
		t.Fatal("unexpected initial controller state")
	}
	h.c.Post(events.Snapshot(git.NewSnapshot(git.SnapshotData{RepoRoot: "/repo", Detached: true, CurrentBranch: git.DetachedLabel})))
	h.c.Poll()
	if h.c.Snapshot() == nil || h.c.currentBranch() != "" {
		t.Fatal("detached snapshot should have no current branch")
	}
	if h.view.target != "" {
		t.Fatalf("target = %q, detached HEAD must not set it", h.view.target)
	}
}
