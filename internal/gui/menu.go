package gui

import (
	"fmt"

	. "modernc.org/tk9.0"

	"github.com/thiagokokada/gitrepo-go/internal/app"
	"github.com/thiagokokada/gitrepo-go/internal/buildinfo"
)

func (w *window) initMenubar() {
	menubar := Menu(Tearoff(false))

	fileMenu := menubar.Menu(Tearoff(false))
	fileMenu.AddCommand(Lbl("Open Repository..."), Command(w.promptOpenRepository))
	fileMenu.AddCommand(Lbl("Init Repository..."), Command(w.promptInitRepository))
	w.ui.recentMenu = fileMenu.Menu(Tearoff(false))
	fileMenu.AddCascade(Lbl("Open Recent"), Mnu(w.ui.recentMenu))
	fileMenu.AddSeparator()
	fileMenu.AddCommand(Lbl("Quit"), Command(func() { Destroy(App) }))
	menubar.AddCascade(Lbl("File"), Mnu(fileMenu))

	repoMenu := menubar.Menu(Tearoff(false))
	repoMenu.AddCommand(Lbl("Refresh"), Command(w.requestRefresh))
	repoMenu.AddCommand(Lbl("Fetch"), Command(func() {
		w.ctrl.Dispatch(app.Request{Op: app.OpFetch, Remote: w.selectedRemote()})
	}))
	repoMenu.AddCommand(Lbl("Push"), Command(w.requestPush))
	repoMenu.AddCommand(Lbl("Commit..."), Command(w.requestCommit))
	menubar.AddCascade(Lbl("Repository"), Mnu(repoMenu))

	helpMenu := menubar.Menu(Tearoff(false))
	helpMenu.AddCommand(Lbl("Keyboard Shortcuts"), Command(w.showShortcutsDialog))
	helpMenu.AddCommand(Lbl("About gitrepo-go"), Command(w.showAboutDialog))
	menubar.AddCascade(Lbl("Help"), Mnu(helpMenu))

	App.Configure(Mnu(menubar))
	w.rebuildRecentMenu(w.settings.RecentRepos)
}

// rebuildRecentMenu replaces the Open Recent entries with paths.
func (w *window) rebuildRecentMenu(paths []string) {
	if w.ui.recentMenu == nil {
		return
	}
	w.eval("%s delete 0 end", w.ui.recentMenu)
	if len(paths) == 0 {
		item := w.ui.recentMenu.AddCommand(Lbl("(none)"))
		w.eval("%s entryconfigure %s -state disabled", w.ui.recentMenu, item)
		return
	}
	for _, p := range paths {
		w.ui.recentMenu.AddCommand(Lbl(p), Command(func() {
			w.ctrl.Dispatch(app.Request{Op: app.OpOpenRecent, Path: p})
		}))
	}
	w.ui.recentMenu.AddSeparator()
	w.ui.recentMenu.AddCommand(Lbl("Clear Recent"), Command(func() {
		w.ctrl.Dispatch(app.Request{Op: app.OpClearRecent})
	}))
}

func (w *window) showAboutDialog() {
	message := fmt.Sprintf("gitrepo-go %s", buildinfo.VersionWithTags())
	MessageBox(
		Parent(App),
		Title("About gitrepo-go"),
		Icon("info"),
		Msg(message),
		Type("ok"),
	)
}
