package gui

import (
	"strings"
	"time"

	. "modernc.org/tk9.0"

	"github.com/thiagokokada/gitrepo-go/internal/debounce"
	"github.com/thiagokokada/gitrepo-go/internal/git"
)

const filterDebounceDelay = 240 * time.Millisecond

type filterState struct {
	entry    *TEntryWidget
	value    string
	debounce *debounce.Debouncer

	allBranches []git.BranchRecord
	allTags     []git.TagRecord
}

// filterRecords keeps the records whose name contains query, ignoring case.
func filterRecords[T any](records []T, query string, name func(T) string) []T {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return records
	}
	var out []T
	for _, r := range records {
		if strings.Contains(strings.ToLower(name(r)), q) {
			out = append(out, r)
		}
	}
	return out
}

func (w *window) buildFilter(parent *TFrameWidget) {
	Grid(parent.TLabel(Txt("Filter:"), Anchor(E)), Row(0), Column(0), Sticky(E))
	w.filter.entry = parent.TEntry(Width(30), Textvariable(""))
	Grid(w.filter.entry, Row(0), Column(1), Sticky(WE), Padx("4p"))
	clearBtn := parent.TButton(Txt("Clear"), Command(func() {
		w.filter.entry.Configure(Textvariable(""))
		w.applyFilterImmediate("")
	}))
	Grid(clearBtn, Row(0), Column(2), Sticky(W))
	Bind(w.filter.entry, "<KeyRelease>", Command(func() {
		w.scheduleFilterApply()
	}))
	Bind(w.filter.entry, "<KeyPress-Escape>", Command(func() {
		w.filter.entry.Configure(Textvariable(""))
		w.applyFilterImmediate("")
	}))
}

func (w *window) scheduleFilterApply() {
	debounce.Ensure(&w.filter.debounce, filterDebounceDelay, func() {
		PostEvent(func() { w.applyFilter(w.filter.entry.Textvariable()) }, false)
	}).Trigger()
}

func (w *window) applyFilterImmediate(raw string) {
	if w.filter.debounce != nil {
		w.filter.debounce.Stop()
	}
	w.applyFilter(raw)
}

func (w *window) applyFilter(raw string) {
	w.filter.value = raw
	w.renderRefs()
}

// renderRefs refills both lists from the last snapshot, filtered.
func (w *window) renderRefs() {
	w.branches = filterRecords(w.filter.allBranches, w.filter.value, branchName)
	w.ui.branchList.Delete(0, END)
	for i, r := range w.branches {
		w.ui.branchList.Insert(END, branchRow(r))
		if r.Current {
			w.eval("%s itemconfigure %d -background %s", w.ui.branchList, i, w.palette.Current)
		}
	}

	w.tags = filterRecords(w.filter.allTags, w.filter.value, tagName)
	w.ui.tagList.Delete(0, END)
	for _, r := range w.tags {
		w.ui.tagList.Insert(END, tagRow(r))
	}
}
