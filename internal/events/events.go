// Package events carries operation output from worker goroutines to the
// single goroutine that owns the UI.
package events

import (
	"fmt"
	"sync"

	"github.com/thiagokokada/gitrepo-go/internal/git"
)

type Kind int

const (
	KindLog Kind = iota + 1
	KindProgress
	KindStatus
	KindSnapshot
	KindDone
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindLog:
		return "log"
	case KindProgress:
		return "progress"
	case KindStatus:
		return "status"
	case KindSnapshot:
		return "snapshot"
	case KindDone:
		return "done"
	case KindError:
		return "error"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Event is a tagged value; only the fields of its Kind are set.
type Event struct {
	Kind Kind

	Text    string // log, status, done message, error text
	Title   string // error title
	Percent int
	Stage   string
	OK      bool
	Snap    *git.Snapshot
}

func Log(text string) Event              { return Event{Kind: KindLog, Text: text} }
func Status(text string) Event           { return Event{Kind: KindStatus, Text: text} }
func Snapshot(s *git.Snapshot) Event     { return Event{Kind: KindSnapshot, Snap: s} }
func Done(ok bool, message string) Event { return Event{Kind: KindDone, OK: ok, Text: message} }
func Error(title, text string) Event     { return Event{Kind: KindError, Title: title, Text: text} }
func Progress(percent int, stage string) Event {
	return Event{Kind: KindProgress, Percent: percent, Stage: stage}
}

// Sink accepts events from any goroutine.
type Sink interface {
	Post(Event)
}

// Queue is an unbounded multi-producer FIFO. Post never blocks.
type Queue struct {
	mu      sync.Mutex
	pending []Event
}

func NewQueue() *Queue {
	return &Queue{}
}

func (q *Queue) Post(e Event) {
	q.mu.Lock()
	q.pending = append(q.pending, e)
	q.mu.Unlock()
}

// Drain removes and returns everything queued so far, oldest first.
func (q *Queue) Drain() []Event {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.pending) == 0 {
		return nil
	}
	out := q.pending
	q.pending = nil
	return out
}

// Len reports the number of undrained events.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Event)

func (f SinkFunc) Post(e Event) { f(e) }
