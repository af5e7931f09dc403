package gui

import (
	"log/slog"
	"strings"

	"github.com/alecthomas/chroma/v2"
	. "modernc.org/tk9.0"

	"github.com/thiagokokada/gitrepo-go/internal/app"
	"github.com/thiagokokada/gitrepo-go/internal/config"
	"github.com/thiagokokada/gitrepo-go/internal/git"
	"github.com/thiagokokada/gitrepo-go/internal/gui/tkutil"
)

// window is the main Tk window. It implements app.View and app.Prompter;
// every method runs on the Tk goroutine.
type window struct {
	cfg      windowConfig
	ctrl     *app.Controller
	settings *config.Settings
	palette  colorPalette

	lexer      chroma.Lexer
	style      *chroma.Style
	syntaxTags map[string]string

	ui appWidgets

	branches []git.BranchRecord
	tags     []git.TagRecord
	logLines int

	filter filterState
	watch  watchState
}

type windowConfig struct {
	syntaxHighlight bool
	watch           bool
	verbose         bool
}

var (
	_ app.View     = (*window)(nil)
	_ app.Prompter = (*window)(nil)
)

func (w *window) buildUI() {
	GridColumnConfigure(App, 0, Weight(1))
	GridRowConfigure(App, 2, Weight(1))

	w.buildRepoRow()
	w.buildRefPane()
	w.buildLogPane()

	bottom := App.TFrame(Padding("4p"))
	Grid(bottom, Row(3), Column(0), Sticky(WE))
	GridColumnConfigure(bottom.Window, 2, Weight(1))
	w.ui.progress = bottom.TProgressbar(Orient(HORIZONTAL), Length(220))
	w.ui.progressLb = bottom.TLabel(Width(28), Anchor(W))
	w.ui.status = bottom.TLabel(Anchor(W), Relief(SUNKEN), Padding("4p"))
	Grid(w.ui.progress, Row(0), Column(0), Sticky(W), Padx("0 4p"))
	Grid(w.ui.progressLb, Row(0), Column(1), Sticky(W))
	Grid(w.ui.status, Row(0), Column(2), Sticky(WE))
	w.eval("%s configure -mode determinate -maximum 100 -value 0", w.ui.progress)

	w.configureLogTags()
	w.initMenubar()
	w.bindShortcuts()
}

func (w *window) buildRepoRow() {
	top := App.TFrame(Padding("8p"))
	Grid(top, Row(0), Column(0), Sticky(WE))
	GridColumnConfigure(top.Window, 1, Weight(1))

	Grid(top.TLabel(Txt("Repository:"), Anchor(E)), Row(0), Column(0), Sticky(E))
	w.ui.repoEntry = top.TEntry(Width(60), Textvariable(""))
	Grid(w.ui.repoEntry, Row(0), Column(1), Sticky(WE), Padx("4p"))
	Bind(w.ui.repoEntry, "<KeyPress-Return>", Command(func() {
		w.ctrl.Dispatch(app.Request{Op: app.OpOpenRepo, Path: w.ui.repoEntry.Textvariable()})
	}))

	openBtn := top.TButton(Txt("Open..."), Command(w.promptOpenRepository))
	initBtn := top.TButton(Txt("Init..."), Command(w.promptInitRepository))
	Grid(openBtn, Row(0), Column(2), Padx("0 4p"))
	Grid(initBtn, Row(0), Column(3))
	w.ui.openControls = append(w.ui.openControls, w.ui.repoEntry.Window, openBtn.Window, initBtn.Window)

	w.ui.summary = top.TLabel(Anchor(W), Justify("left"), Txt("No repository loaded."))
	Grid(w.ui.summary, Row(1), Column(0), Columnspan(4), Sticky(WE), Pady("6p 0"))
}

func (w *window) buildRefPane() {
	pane := App.TFrame(Padding("8p 0"))
	Grid(pane, Row(1), Column(0), Sticky(NEWS))
	GridColumnConfigure(pane.Window, 0, Weight(1))
	GridColumnConfigure(pane.Window, 1, Weight(1))
	GridRowConfigure(pane.Window, 1, Weight(1))

	filterRow := pane.TFrame(Padding("0 0 0 4p"))
	Grid(filterRow, Row(0), Column(0), Columnspan(2), Sticky(WE))
	GridColumnConfigure(filterRow.Window, 1, Weight(1))
	w.buildFilter(filterRow)

	w.ui.branchList = w.refList(pane, 0, "Branches  [L=local, R=remote]")
	w.ui.tagList = w.refList(pane, 1, "Tags")
	Bind(w.ui.branchList, "<<ListboxSelect>>", Command(w.onBranchSelected))
	Bind(w.ui.branchList, "<Double-Button-1>", Command(w.checkoutSelectedBranch))
	Bind(w.ui.tagList, "<Double-Button-1>", Command(w.checkoutSelectedTag))

	side := pane.TFrame(Padding("8p 0 0 0"))
	Grid(side, Row(0), Column(2), Rowspan(2), Sticky(NEWS))
	w.buildPushFrame(side)
	w.buildOpsFrame(side)
}

func (w *window) refList(parent *TFrameWidget, col int, title string) *ListboxWidget {
	frame := parent.TLabelframe(Txt(title), Padding("4p"))
	Grid(frame, Row(1), Column(col), Sticky(NEWS), Padx("0 4p"))
	GridColumnConfigure(frame.Window, 0, Weight(1))
	GridRowConfigure(frame.Window, 0, Weight(1))

	scroll := frame.TScrollbar()
	list := frame.Listbox(Exportselection(false), Height(14), Font(CourierFont(), 10))
	list.Configure(Yscrollcommand(func(e *Event) { e.ScrollSet(scroll) }))
	Grid(list, Row(0), Column(0), Sticky(NEWS))
	Grid(scroll, Row(0), Column(1), Sticky(NS))
	scroll.Configure(Command(func(e *Event) { e.Yview(list) }))
	return list
}

func (w *window) buildPushFrame(parent *TFrameWidget) {
	frame := parent.TLabelframe(Txt("Push"), Padding("6p"))
	Grid(frame, Row(0), Column(0), Sticky(WE))
	GridColumnConfigure(frame.Window, 1, Weight(1))

	Grid(frame.TLabel(Txt("Remote:")), Row(0), Column(0), Sticky(W))
	w.ui.remoteBox = frame.TCombobox(Width(18))
	w.eval("%s configure -state readonly", w.ui.remoteBox)
	Grid(w.ui.remoteBox, Row(0), Column(1), Sticky(WE), Pady("2p"))

	Grid(frame.TLabel(Txt("Target branch:")), Row(1), Column(0), Sticky(W))
	w.ui.targetEntry = frame.TEntry(Width(20), Textvariable(""))
	Grid(w.ui.targetEntry, Row(1), Column(1), Sticky(WE), Pady("2p"))

	upstream := w.checkbutton(frame, "Set upstream (-u)", varUpstream, true)
	force := w.checkbutton(frame, "Force with lease", varForce, false)
	createTag := w.checkbutton(frame, "Create tag", varCreateTag, false)
	Grid(upstream, Row(2), Column(0), Columnspan(2), Sticky(W))
	Grid(force, Row(3), Column(0), Columnspan(2), Sticky(W))
	Grid(createTag, Row(4), Column(0), Columnspan(2), Sticky(W))

	Grid(frame.TLabel(Txt("Tag name:")), Row(5), Column(0), Sticky(W))
	w.ui.tagEntry = frame.TEntry(Width(20), Textvariable(""))
	Grid(w.ui.tagEntry, Row(5), Column(1), Sticky(WE), Pady("2p"))
	Grid(frame.TLabel(Txt("Tag message:")), Row(6), Column(0), Sticky(W))
	w.ui.tagMsgEntry = frame.TEntry(Width(20), Textvariable(""))
	Grid(w.ui.tagMsgEntry, Row(6), Column(1), Sticky(WE), Pady("2p"))

	buttons := frame.TFrame()
	Grid(buttons, Row(7), Column(0), Columnspan(2), Sticky(E), Pady("6p 0"))
	refreshBtn := buttons.TButton(Txt("Refresh"), Command(w.requestRefresh))
	fetchBtn := buttons.TButton(Txt("Fetch"), Command(func() {
		w.ctrl.Dispatch(app.Request{Op: app.OpFetch, Remote: w.selectedRemote()})
	}))
	pushBtn := buttons.TButton(Txt("Push"), Command(w.requestPush))
	Grid(refreshBtn, Row(0), Column(0), Padx("0 4p"))
	Grid(fetchBtn, Row(0), Column(1), Padx("0 4p"))
	Grid(pushBtn, Row(0), Column(2))

	w.ui.repoControls = append(w.ui.repoControls,
		w.ui.remoteBox.Window, w.ui.targetEntry.Window, upstream.Window, force.Window, createTag.Window,
		w.ui.tagEntry.Window, w.ui.tagMsgEntry.Window, refreshBtn.Window, fetchBtn.Window, pushBtn.Window)
}

func (w *window) buildOpsFrame(parent *TFrameWidget) {
	frame := parent.TLabelframe(Txt("Repository"), Padding("6p"))
	Grid(frame, Row(1), Column(0), Sticky(WE), Pady("8p 0"))
	GridColumnConfigure(frame.Window, 0, Weight(1))
	GridColumnConfigure(frame.Window, 1, Weight(1))

	buttons := []struct {
		label string
		fn    func()
	}{
		{"Commit...", w.requestCommit},
		{"Checkout branch", w.checkoutSelectedBranch},
		{"Checkout tag", w.checkoutSelectedTag},
		{"Delete branch", w.deleteSelectedBranch},
		{"Delete tag", w.deleteSelectedTag},
		{"Add remote...", func() { w.ctrl.Dispatch(app.Request{Op: app.OpAddRemote}) }},
		{"Edit remote URL...", func() { w.ctrl.Dispatch(app.Request{Op: app.OpSetRemoteURL, Name: w.selectedRemote()}) }},
		{"Remove remote", func() { w.ctrl.Dispatch(app.Request{Op: app.OpRemoveRemote, Name: w.selectedRemote()}) }},
	}
	for i, b := range buttons {
		btn := frame.TButton(Txt(b.label), Command(b.fn))
		Grid(btn, Row(i/2), Column(i%2), Sticky(WE), Padx("2p"), Pady("2p"))
		w.ui.repoControls = append(w.ui.repoControls, btn.Window)
	}
	forceDelete := w.checkbutton(frame, "Force delete unmerged branch (-D)", varForceDelete, false)
	Grid(forceDelete, Row(len(buttons)/2), Column(0), Columnspan(2), Sticky(W))
	w.ui.repoControls = append(w.ui.repoControls, forceDelete.Window)
}

func (w *window) buildLogPane() {
	frame := App.TLabelframe(Txt("Log"), Padding("4p"))
	Grid(frame, Row(2), Column(0), Sticky(NEWS), Padx("8p"), Pady("4p"))
	GridColumnConfigure(frame.Window, 0, Weight(1))
	GridRowConfigure(frame.Window, 0, Weight(1))

	scroll := frame.TScrollbar()
	w.ui.log = frame.Text(Wrap(NONE), Font(CourierFont(), 10), Height(14), Exportselection(false))
	w.ui.log.Configure(Yscrollcommand(func(e *Event) { e.ScrollSet(scroll) }))
	Grid(w.ui.log, Row(0), Column(0), Sticky(NEWS))
	Grid(scroll, Row(0), Column(1), Sticky(NS))
	scroll.Configure(Command(func(e *Event) { e.Yview(w.ui.log) }))
	w.ui.log.Configure(State("disabled"))
}

func (w *window) checkbutton(parent *TLabelframeWidget, label, variable string, initial bool) *TCheckbuttonWidget {
	cb := parent.TCheckbutton(Txt(label))
	tkutil.SetBool(variable, initial)
	w.eval("%s configure -variable ::%s", cb, variable)
	return cb
}

// eval runs a Tcl command whose failure only affects presentation.
func (w *window) eval(format string, a ...any) {
	if _, err := tkutil.Eval(format, a...); err != nil {
		slog.Debug("tk eval", slog.Any("error", err))
	}
}

func (w *window) selectedRemote() string {
	return strings.TrimSpace(tkutil.EvalOrEmpty("%s get", w.ui.remoteBox))
}

func (w *window) selectedBranch() string {
	return selectedName(w.branches, w.ui.branchList.Curselection(), branchName)
}

func (w *window) selectedTag() string {
	return selectedName(w.tags, w.ui.tagList.Curselection(), tagName)
}

func (w *window) requestRefresh() {
	w.ctrl.Dispatch(app.Request{Op: app.OpRefresh, Remote: w.selectedRemote()})
}

func (w *window) requestCommit() {
	w.ctrl.Dispatch(app.Request{Op: app.OpCommit, Remote: w.selectedRemote()})
}

func (w *window) requestPush() {
	opts := git.PushOptions{
		Remote:      w.selectedRemote(),
		Target:      strings.TrimSpace(w.ui.targetEntry.Textvariable()),
		SetUpstream: tkutil.Bool(varUpstream),
		Force:       tkutil.Bool(varForce),
	}
	if tkutil.Bool(varCreateTag) {
		opts.Tag = strings.TrimSpace(w.ui.tagEntry.Textvariable())
		opts.TagMessage = strings.TrimSpace(w.ui.tagMsgEntry.Textvariable())
		if opts.Tag == "" {
			w.ShowError("Push", "Tag name is required when Create tag is checked.")
			return
		}
	}
	w.ctrl.Dispatch(app.Request{Op: app.OpPush, Remote: opts.Remote, Push: opts})
}

func (w *window) onBranchSelected() {
	if name := w.selectedBranch(); name != "" {
		w.SetTargetBranch(name)
	}
}

func (w *window) checkoutSelectedBranch() {
	w.ctrl.Dispatch(app.Request{Op: app.OpCheckoutBranch, Name: w.selectedBranch(), Remote: w.selectedRemote()})
}

func (w *window) checkoutSelectedTag() {
	name := w.selectedTag()
	if name == "" {
		w.Info("Checkout tag", "Select a tag first.")
		return
	}
	w.ctrl.Dispatch(app.Request{Op: app.OpCheckoutTag, Name: name, Remote: w.selectedRemote()})
}

func (w *window) deleteSelectedBranch() {
	name := w.selectedBranch()
	if name == "" {
		w.Info("Delete branch", "Select a branch first.")
		return
	}
	w.ctrl.Dispatch(app.Request{
		Op:     app.OpDeleteBranch,
		Name:   name,
		Remote: w.selectedRemote(),
		Force:  tkutil.Bool(varForceDelete),
	})
}

func (w *window) deleteSelectedTag() {
	name := w.selectedTag()
	if name == "" {
		w.Info("Delete tag", "Select a tag first.")
		return
	}
	w.ctrl.Dispatch(app.Request{Op: app.OpDeleteTag, Name: name, Remote: w.selectedRemote()})
}

func (w *window) promptOpenRepository() {
	dir := strings.TrimSpace(ChooseDirectory(
		Parent(App),
		Title("Select Git repository"),
		Initialdir(w.initialDir()),
		Mustexist(true),
	))
	if dir == "" {
		return
	}
	w.ctrl.Dispatch(app.Request{Op: app.OpOpenRepo, Path: dir})
}

func (w *window) promptInitRepository() {
	dir := strings.TrimSpace(ChooseDirectory(
		Parent(App),
		Title("Select directory to initialise"),
		Initialdir(w.initialDir()),
		Mustexist(true),
	))
	if dir == "" {
		return
	}
	w.ctrl.Dispatch(app.Request{Op: app.OpInit, Path: dir})
}

func (w *window) initialDir() string {
	if root := w.ctrl.Root(); root != "" {
		return root
	}
	if p := strings.TrimSpace(w.ui.repoEntry.Textvariable()); p != "" {
		return p
	}
	return "."
}
