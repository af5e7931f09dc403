package gui

import (
	"strings"

	. "modernc.org/tk9.0"

	"github.com/thiagokokada/gitrepo-go/internal/git"
	"github.com/thiagokokada/gitrepo-go/internal/gui/tkutil"
)

func (w *window) AppendLog(line string) {
	w.ui.log.Configure(State(NORMAL))
	for _, l := range strings.Split(strings.TrimRight(line, "\n"), "\n") {
		w.ui.log.Insert(END, l+"\n")
		w.logLines++
		w.highlightLogLine(w.logLines, l)
	}
	w.ui.log.Configure(State("disabled"))
	w.eval("%s see end", w.ui.log)
}

func (w *window) SetProgress(percent int, stage string) {
	if percent >= 0 {
		w.eval("%s stop", w.ui.progress)
		w.eval("%s configure -mode determinate -value %d", w.ui.progress, min(max(percent, 0), 100))
	}
	w.ui.progressLb.Configure(Txt(progressText(percent, stage)))
}

func (w *window) SetStatus(text string) {
	w.ui.status.Configure(Txt(text))
}

func (w *window) SetSummary(text string) {
	w.ui.summary.Configure(Txt(text))
}

func (w *window) SetRepoPath(path string) {
	w.ui.repoEntry.Configure(Textvariable(path))
	title := "gitrepo-go"
	if path != "" {
		title += " - " + path
	}
	App.WmTitle(title)
	w.restartWatcher(path)
}

func (w *window) SetRemotes(names []string, selected string) {
	w.eval("%s configure -values [list %s]", w.ui.remoteBox, tkutil.List(names...))
	w.eval("%s set %s", w.ui.remoteBox, tkutil.Quote(pickRemote(names, selected, w.selectedRemote())))
}

func (w *window) SetBranches(records []git.BranchRecord) {
	w.filter.allBranches = records
	w.renderRefs()
}

func (w *window) SetTags(records []git.TagRecord) {
	w.filter.allTags = records
	w.renderRefs()
}

func (w *window) SetRecent(paths []string) {
	w.rebuildRecentMenu(paths)
}

func (w *window) SetTargetBranch(name string) {
	w.ui.targetEntry.Configure(Textvariable(name))
}

func (w *window) TargetBranch() string {
	return w.ui.targetEntry.Textvariable()
}

func (w *window) SetBusy(busy, repoLoaded bool) {
	for _, c := range w.ui.openControls {
		w.setEnabled(c, !busy)
	}
	for _, c := range w.ui.repoControls {
		w.setEnabled(c, !busy && repoLoaded)
	}
	if busy {
		w.eval("%s configure -mode indeterminate -value 0", w.ui.progress)
		w.eval("%s start 12", w.ui.progress)
		w.ui.progressLb.Configure(Txt(""))
	}
}

func (w *window) FinishProgress(ok bool) {
	w.eval("%s stop", w.ui.progress)
	value := 0
	if ok {
		value = 100
	}
	w.eval("%s configure -mode determinate -value %d", w.ui.progress, value)
	w.ui.progressLb.Configure(Txt(""))
}

func (w *window) setEnabled(widget *Window, enabled bool) {
	state := "disabled"
	if enabled {
		state = "!disabled"
	}
	w.eval("%s state %s", widget, state)
}
