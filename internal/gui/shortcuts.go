package gui

import (
	"fmt"
	"strings"

	. "modernc.org/tk9.0"

	"github.com/thiagokokada/gitrepo-go/internal/app"
)

type shortcutBinding struct {
	sequences   []string
	display     string
	description string
	category    string
	handler     func()
}

func (w *window) bindShortcuts() {
	for _, sc := range w.shortcutBindings() {
		if sc.handler == nil {
			continue
		}
		for _, seq := range sc.sequences {
			if seq == "" {
				continue
			}
			Bind(App, seq, Command(sc.handler))
		}
	}
}

func (w *window) shortcutBindings() []shortcutBinding {
	return []shortcutBinding{
		{
			category:    "Repository",
			display:     "F5",
			description: "Refresh branches and tags, querying the selected remote",
			sequences:   []string{"<F5>"},
			handler:     w.requestRefresh,
		},
		{
			category:    "Repository",
			display:     "Shift+F5",
			description: "Refresh from local refs only",
			sequences:   []string{"<Shift-F5>"},
			handler:     func() { w.ctrl.Dispatch(app.Request{Op: app.OpRefreshLocal}) },
		},
		{
			category:    "Repository",
			display:     "Ctrl/Cmd+P",
			description: "Push to the selected remote",
			sequences:   []string{"<Control-KeyPress-p>", "<Command-KeyPress-p>"},
			handler:     w.requestPush,
		},
		{
			category:    "Repository",
			display:     "Ctrl/Cmd+K",
			description: "Commit",
			sequences:   []string{"<Control-KeyPress-k>", "<Command-KeyPress-k>"},
			handler:     w.requestCommit,
		},
		{
			category:    "Repository",
			display:     "Ctrl/Cmd+O",
			description: "Open a repository",
			sequences:   []string{"<Control-KeyPress-o>", "<Command-KeyPress-o>"},
			handler:     w.promptOpenRepository,
		},
		{
			category:    "General",
			display:     "F1",
			description: "Show shortcut list",
			sequences:   []string{"<F1>"},
			handler:     w.showShortcutsDialog,
		},
		{
			category:    "General",
			display:     "Ctrl+Q",
			description: "Quit gitrepo-go",
			sequences:   []string{"<Control-KeyPress-q>"},
			handler:     func() { Destroy(App) },
		},
	}
}

func (w *window) showShortcutsDialog() {
	if w.ui.shortcutsWindow != nil {
		Destroy(w.ui.shortcutsWindow.Window)
		w.ui.shortcutsWindow = nil
	}
	dialog := App.Toplevel()
	w.ui.shortcutsWindow = dialog
	dialog.Window.WmTitle("Keyboard Shortcuts")
	WmTransient(dialog.Window, App)

	frame := dialog.TFrame(Padding("12p"))
	Grid(frame, Row(0), Column(0), Sticky(NEWS))
	GridColumnConfigure(frame.Window, 0, Weight(1))
	GridRowConfigure(frame.Window, 1, Weight(1))

	header := frame.TLabel(Txt("Keyboard Shortcuts"), Anchor(W))
	Grid(header, Row(0), Column(0), Sticky(W), Pady("0 8p"))

	text := frame.Text(Width(62), Height(12), Wrap(WORD), Exportselection(false))
	text.Insert("1.0", formatShortcutsHelpText(w.shortcutBindings()))
	text.Configure(State("disabled"))
	Grid(text, Row(1), Column(0), Sticky(NEWS))

	closeBtn := frame.TButton(Txt("Close"), Command(func() { Destroy(dialog.Window) }))
	Grid(closeBtn, Row(2), Column(0), Sticky(E), Pady("8p 0"))

	Bind(dialog.Window, "<KeyPress-Escape>", Command(func() { Destroy(dialog.Window) }))
	Bind(dialog.Window, "<Destroy>", Command(func() {
		if w.ui.shortcutsWindow == dialog {
			w.ui.shortcutsWindow = nil
		}
	}))
	dialog.Window.Center()
}

// formatShortcutsHelpText groups bindings by category, in order. Bindings
// without a category, display or description are left out.
func formatShortcutsHelpText(bindings []shortcutBinding) string {
	var b strings.Builder
	currentCategory := ""
	for _, sc := range bindings {
		if sc.category == "" || sc.display == "" || sc.description == "" {
			continue
		}
		if sc.category != currentCategory {
			if b.Len() > 0 {
				b.WriteString("\n")
			}
			currentCategory = sc.category
			b.WriteString(currentCategory)
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "  %s: %s\n", sc.display, sc.description)
	}
	return strings.TrimRight(b.String(), "\n")
}
