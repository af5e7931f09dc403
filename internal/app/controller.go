package app

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"

	"github.com/google/uuid"

	"github.com/thiagokokada/gitrepo-go/internal/aicommit"
	"github.com/thiagokokada/gitrepo-go/internal/config"
	"github.com/thiagokokada/gitrepo-go/internal/events"
	"github.com/thiagokokada/gitrepo-go/internal/git"
	"github.com/thiagokokada/gitrepo-go/internal/ops"
)

type Options struct {
	Git       Git
	View      View
	Prompter  Prompter
	Settings  *config.Settings
	Suggester aicommit.Suggester
	Logger    *slog.Logger
}

// Controller owns the busy token and the event queue. Every method except
// the worker bodies it starts must be called on the UI goroutine.
type Controller struct {
	git      Git
	view     View
	prompt   Prompter
	settings *config.Settings
	ai       aicommit.Suggester
	logger   *slog.Logger

	queue *events.Queue
	seq   *ops.Sequencer

	state    ops.State
	root     string
	snap     *git.Snapshot
	handlers map[Op]func(Request) bool
	// dispatching is set while a handler runs; its modal dialogs spin the
	// event loop, which may deliver further requests.
	dispatching bool
	// keepRemote makes the running refresh reuse the remote listing of the
	// previous snapshot.
	keepRemote bool

	// async starts a worker. Tests replace it to control scheduling.
	async func(func())
}

func New(opts Options) *Controller {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	settings := opts.Settings
	if settings == nil {
		settings = config.Load("")
	}
	q := events.NewQueue()
	c := &Controller{
		git:      opts.Git,
		view:     opts.View,
		prompt:   opts.Prompter,
		settings: settings,
		ai:       opts.Suggester,
		logger:   logger,
		queue:    q,
		seq:      &ops.Sequencer{Streamer: opts.Git, Collector: opts.Git, Sink: q, Logger: logger},
		state:    ops.StateIdle,
		async:    func(f func()) { go f() },
	}
	c.handlers = map[Op]func(Request) bool{
		OpRefresh:        c.onRefresh,
		OpRefreshLocal:   c.onRefreshLocal,
		OpFetch:          c.onFetch,
		OpPush:           c.onPush,
		OpCommit:         c.onCommit,
		OpCheckoutBranch: c.onCheckoutBranch,
		OpCheckoutTag:    c.onCheckoutTag,
		OpDeleteBranch:   c.onDeleteBranch,
		OpDeleteTag:      c.onDeleteTag,
		OpAddRemote:      c.onAddRemote,
		OpSetRemoteURL:   c.onSetRemoteURL,
		OpRemoveRemote:   c.onRemoveRemote,
		OpInit:           c.onInit,
		OpOpenRepo:       c.onOpenRepo,
		OpOpenRecent:     c.onOpenRecent,
		OpClearRecent:    c.onClearRecent,
	}
	return c
}

// repoless ops may run before a repository is loaded.
var repoless = map[Op]bool{
	OpInit:        true,
	OpOpenRepo:    true,
	OpOpenRecent:  true,
	OpClearRecent: true,
}

// Busy reports whether an operation is in flight.
func (c *Controller) Busy() bool { return c.state == ops.StateRunning }

func (c *Controller) State() ops.State { return c.state }

// Root is the loaded repository root, or "".
func (c *Controller) Root() string { return c.root }

// Snapshot is the last applied snapshot, or nil.
func (c *Controller) Snapshot() *git.Snapshot { return c.snap }

func (c *Controller) Settings() *config.Settings { return c.settings }

// Post lets collaborators outside the controller (the file watcher, the
// commit dialog) feed the queue.
func (c *Controller) Post(e events.Event) { c.queue.Post(e) }

// Dispatch runs the handler for req.Op. While an operation is running it
// does nothing and returns false.
func (c *Controller) Dispatch(req Request) bool {
	h, ok := c.handlers[req.Op]
	if !ok {
		c.logger.Warn("unknown operation", slog.String("op", req.Op.String()))
		return false
	}
	if c.Busy() || c.dispatching {
		c.logger.Debug("operation ignored while busy", slog.String("op", req.Op.String()))
		return false
	}
	if c.root == "" && !repoless[req.Op] {
		c.logger.Debug("operation needs a repository", slog.String("op", req.Op.String()))
		return false
	}
	c.dispatching = true
	defer func() { c.dispatching = false }()
	return h(req)
}

// Poll drains the queue and applies each event in arrival order.
func (c *Controller) Poll() {
	for _, e := range c.queue.Drain() {
		c.apply(e)
	}
}

func (c *Controller) apply(e events.Event) {
	switch e.Kind {
	case events.KindLog:
		c.view.AppendLog(e.Text)
	case events.KindProgress:
		c.view.SetProgress(e.Percent, e.Stage)
	case events.KindStatus:
		c.view.SetStatus(e.Text)
	case events.KindSnapshot:
		c.applySnapshot(e.Snap)
	case events.KindDone:
		c.finish(e.OK, e.Text)
	case events.KindError:
		c.prompt.ShowError(e.Title, e.Text)
	default:
		c.view.AppendLog(fmt.Sprintf("[WARN] unknown event: %s %+v", e.Kind, e))
	}
}

// begin marks the controller busy and opens the log section of operation
// id. The short id also appears on its stderr records.
func (c *Controller) begin(title, id string) {
	c.state = ops.StateRunning
	c.view.AppendLog("")
	c.view.AppendLog(fmt.Sprintf("==> %s [%s]", title, shortID(id)))
	c.view.SetStatus(title)
	c.view.SetBusy(true, c.root != "")
}

func (c *Controller) finish(ok bool, message string) {
	c.state = ops.StateIdle
	c.keepRemote = false
	c.view.FinishProgress(ok)
	c.view.SetStatus(message)
	c.view.SetBusy(false, c.root != "")
}

// start runs work on a worker goroutine. The worker always posts exactly
// one Done event, even when work panics.
func (c *Controller) start(title string, work func() ops.Outcome) {
	id := uuid.NewString()
	c.begin(title, id)
	logger := c.logger.With(slog.String("op_id", shortID(id)), slog.String("op", title))
	logger.Debug("operation started")
	q := c.queue
	c.async(func() {
		out := ops.Outcome{Message: fmt.Sprintf("Ready (%s failed, see log)", title)}
		defer func() {
			if r := recover(); r != nil {
				logger.Error("operation panicked", slog.Any("panic", r), slog.String("stack", string(debug.Stack())))
				q.Post(events.Log(fmt.Sprintf("[ERROR] %s failed: %v", title, r)))
				q.Post(events.Error(title+" failed", fmt.Sprint(r)))
				out.OK = false
			}
			logger.Debug("operation finished", slog.Bool("ok", out.OK))
			q.Post(events.Done(out.OK, out.Message))
		}()
		out = work()
	})
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func (c *Controller) runSequence(seq ops.Sequence) bool {
	if c.root == "" || len(seq.Steps) == 0 {
		return false
	}
	root := c.root
	c.start(seq.Title, func() ops.Outcome { return c.seq.Run(root, seq) })
	return true
}

func (c *Controller) startRefresh(title, remote string) bool {
	if c.root == "" {
		return false
	}
	root := c.root
	c.start(title, func() ops.Outcome { return c.seq.Refresh(root, remote) })
	return true
}

func (c *Controller) applySnapshot(s *git.Snapshot) {
	if s == nil {
		return
	}
	if c.keepRemote {
		s = s.WithRemoteRefs(c.snap)
	}
	c.snap = s

	worktree := "clean"
	if s.Dirty() {
		worktree = "dirty (uncommitted changes are not pushed)"
	}
	lines := []string{
		"Repository: " + s.RepoRoot(),
		fmt.Sprintf("Branch: %s    HEAD: %s    Worktree: %s", s.CurrentBranch(), s.HeadShort(), worktree),
	}
	remotes := s.Remotes()
	if len(remotes) == 0 {
		lines = append(lines, "Remotes: (none)")
	} else {
		parts := make([]string, 0, len(remotes))
		for _, r := range remotes {
			parts = append(parts, r.Name+"="+r.URL)
		}
		lines = append(lines, "Remotes: "+strings.Join(parts, "; "))
	}
	c.view.SetSummary(strings.Join(lines, "\n"))

	names := s.RemoteNames()
	selected := s.RemoteQueried()
	if selected == "" && len(names) > 0 {
		selected = names[0]
	}
	c.view.SetRemotes(names, selected)

	if strings.TrimSpace(c.view.TargetBranch()) == "" && !s.Detached() {
		c.view.SetTargetBranch(s.CurrentBranch())
	}

	branches := s.Branches()
	tags := s.Tags()
	c.view.SetBranches(branches)
	c.view.SetTags(tags)

	remoteText := "(none)"
	if len(names) > 0 {
		remoteText = strings.Join(names, ", ")
	}
	c.view.AppendLog(fmt.Sprintf("[INFO] loaded %d branches, %d tags; remotes=%s", len(branches), len(tags), remoteText))
}

// currentBranch is the checked-out branch of the last snapshot, "" when
// detached or unknown.
func (c *Controller) currentBranch() string {
	if c.snap == nil || c.snap.Detached() {
		return ""
	}
	return c.snap.CurrentBranch()
}

// resolveRemote returns requested, else the first configured remote.
func (c *Controller) resolveRemote(requested string) string {
	if r := strings.TrimSpace(requested); r != "" {
		return r
	}
	remotes, err := c.git.ListRemotes(c.root, false)
	if err != nil || len(remotes) == 0 {
		return ""
	}
	return remotes[0].Name
}

func (c *Controller) isDirty() bool {
	out, err := c.git.Capture(c.root, "status", "--porcelain=v1")
	if err != nil {
		return false
	}
	return git.ParsePorcelainStatus(out).Dirty()
}

func (c *Controller) logCommandError(prefix string, err error) {
	c.view.AppendLog(fmt.Sprintf("[ERROR] %s: %v", prefix, err))
	if cmdErr, ok := git.AsCommandError(err); ok && strings.TrimSpace(cmdErr.Output) != "" {
		c.view.AppendLog(strings.TrimRight(cmdErr.Output, "\n"))
	}
}

func (c *Controller) saveSettings(err error) {
	if err != nil {
		c.logger.Warn("saving settings", slog.String("path", c.settings.Path()), slog.Any("error", err))
	}
}

func (c *Controller) suggestFunc(root string) SuggestFunc {
	if c.ai == nil {
		return nil
	}
	return func(ctx context.Context, stageAll bool, onChunk func(string)) (string, error) {
		changes, err := aicommit.CollectChanges(c.git, root, stageAll)
		if err != nil {
			return "", err
		}
		return c.ai.Suggest(ctx, changes, onChunk)
	}
}
