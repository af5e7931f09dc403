package gui

import (
	. "modernc.org/tk9.0"
)

type appWidgets struct {
	repoEntry  *TEntryWidget
	summary    *TLabelWidget
	branchList *ListboxWidget
	tagList    *ListboxWidget

	remoteBox   *TComboboxWidget
	targetEntry *TEntryWidget
	tagEntry    *TEntryWidget
	tagMsgEntry *TEntryWidget

	log        *TextWidget
	progress   *TProgressbarWidget
	progressLb *TLabelWidget
	status     *TLabelWidget

	recentMenu      *MenuWidget
	shortcutsWindow *ToplevelWidget

	// repoControls need a loaded repository; openControls only need the
	// window to be idle.
	repoControls []*Window
	openControls []*Window
}

// Tcl variables behind the option checkbuttons.
const (
	varUpstream    = "gitrepo_upstream"
	varForce       = "gitrepo_force"
	varCreateTag   = "gitrepo_create_tag"
	varForceDelete = "gitrepo_force_delete"
)
