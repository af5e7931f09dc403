// Package ops runs ordered git command sequences and the repository refresh
// that follows them.
package ops

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/thiagokokada/gitrepo-go/internal/events"
	"github.com/thiagokokada/gitrepo-go/internal/git"
)

type State int

const (
	StateIdle State = iota
	StateRunning
	StateRefreshing
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateRefreshing:
		return "refreshing"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Sequence is a list of git invocations executed as one operation.
type Sequence struct {
	Title        string
	Steps        [][]string
	RefreshAfter bool
	// Remote is listed with ls-remote during the refresh; empty means a
	// local-only refresh.
	Remote string
}

// Outcome is the final result of Run or Refresh.
type Outcome struct {
	OK         bool
	Message    string
	FailedStep []string
	ExitCode   int
	State      State
}

// Sequencer executes sequences through a Streamer and reports every line,
// progress update and snapshot to Sink.
type Sequencer struct {
	Streamer  git.Streamer
	Collector git.Collector
	Sink      events.Sink
	Logger    *slog.Logger
}

func (s *Sequencer) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

func (s *Sequencer) transition(title string, from, to State) State {
	s.logger().Debug("operation state", slog.String("op", title), slog.String("from", from.String()), slog.String("to", to.String()))
	return to
}

// Run executes seq.Steps in order and stops at the first failing step.
// When seq.RefreshAfter is set a refresh follows whatever the outcome.
func (s *Sequencer) Run(root string, seq Sequence) Outcome {
	state := s.transition(seq.Title, StateIdle, StateRunning)
	out := Outcome{OK: true}

	handlers := git.StreamHandlers{
		OnLine:     func(line string) { s.Sink.Post(events.Log(line)) },
		OnProgress: func(pct int, stage string) { s.Sink.Post(events.Progress(pct, stage)) },
		OnHint:     func(hint string) { s.Sink.Post(events.Log(hint)) },
	}
	for _, step := range seq.Steps {
		code, err := s.Streamer.Stream(root, step, handlers)
		if err != nil {
			s.Sink.Post(events.Log("[ERROR] " + err.Error()))
		}
		if err != nil || code != 0 {
			out.OK = false
			out.FailedStep = step
			out.ExitCode = code
			break
		}
	}

	if !out.OK {
		cmdText := git.QuoteArgs(append([]string{"git", "--no-pager"}, out.FailedStep...))
		s.Sink.Post(events.Log(fmt.Sprintf("[ERROR] %s failed: exit code %d", seq.Title, out.ExitCode)))
		s.Sink.Post(events.Log("[ERROR] failed command: " + cmdText))
		s.Sink.Post(events.Error(seq.Title+" failed", fmt.Sprintf("git exited with code %d, see the log.", out.ExitCode)))
		s.logger().Warn("operation failed",
			slog.String("op", seq.Title),
			slog.String("cmd", cmdText),
			slog.Int("exit", out.ExitCode),
		)
	}

	if seq.RefreshAfter {
		state = s.transition(seq.Title, state, StateRefreshing)
		if _, err := s.refresh(root, seq.Remote, false); err != nil {
			s.logger().Warn("refresh after operation", slog.String("op", seq.Title), slog.Any("error", err))
		}
	}

	if out.OK {
		out.State = s.transition(seq.Title, state, StateSucceeded)
		out.Message = fmt.Sprintf("Ready (%s done)", seq.Title)
	} else {
		out.State = s.transition(seq.Title, state, StateFailed)
		out.Message = fmt.Sprintf("Ready (%s failed, see log)", seq.Title)
	}
	return out
}

// Refresh collects a snapshot on its own. A failing remote listing is
// reported as an error and followed by a local-only snapshot.
func (s *Sequencer) Refresh(root, remote string) Outcome {
	const title = "refresh"
	state := s.transition(title, StateIdle, StateRefreshing)
	snap, err := s.refresh(root, remote, true)
	switch {
	case err == nil:
		branches := len(git.MergeBranches(snap.LocalBranches(), snap.RemoteBranches(), ""))
		tags := len(git.MergeTags(snap.LocalTags(), snap.RemoteTags()))
		return Outcome{
			OK:      true,
			Message: fmt.Sprintf("Ready (%d branches, %d tags)", branches, tags),
			State:   s.transition(title, state, StateSucceeded),
		}
	case snap != nil:
		return Outcome{
			Message: "Ready (remote refresh failed, showing local data)",
			State:   s.transition(title, state, StateFailed),
		}
	default:
		return Outcome{
			Message: "Ready (refresh failed, see log)",
			State:   s.transition(title, state, StateFailed),
		}
	}
}

// refresh posts a snapshot when one can be collected. It returns the
// snapshot that was posted (possibly the local-only fallback) and the error
// of the first attempt. With primary set the failure is the operation's own
// and is reported as an error rather than a warning.
func (s *Sequencer) refresh(root, remote string, primary bool) (*git.Snapshot, error) {
	remote = strings.TrimSpace(remote)
	snap, err := s.Collector.Collect(root, remote)
	if err == nil {
		s.Sink.Post(events.Snapshot(snap))
		return snap, nil
	}

	level := "[WARN]"
	if primary {
		level = "[ERROR]"
	}
	s.Sink.Post(events.Log(fmt.Sprintf("%s refresh failed: %v", level, err)))
	cmdErr, isCmdErr := git.AsCommandError(err)
	if isCmdErr && strings.TrimSpace(cmdErr.Output) != "" {
		s.Sink.Post(events.Log(strings.TrimRight(cmdErr.Output, "\n")))
	}
	if primary {
		s.Sink.Post(events.Error("Refresh failed", err.Error()))
	}
	if !isCmdErr || remote == "" {
		return nil, err
	}

	local, fallbackErr := s.Collector.Collect(root, "")
	if fallbackErr != nil {
		// TODO: surface this as its own error event once the UI can show
		// two failures for one operation.
		s.Sink.Post(events.Log(fmt.Sprintf("[WARN] local-only refresh failed: %v", fallbackErr)))
		s.logger().Warn("local-only refresh", slog.String("root", root), slog.Any("error", fallbackErr))
		return nil, err
	}
	s.Sink.Post(events.Log("[WARN] remote listing unavailable, showing local data only"))
	s.Sink.Post(events.Snapshot(local))
	return local, err
}
