package gui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	. "modernc.org/tk9.0"

	"github.com/thiagokokada/gitrepo-go/internal/aicommit"
	"github.com/thiagokokada/gitrepo-go/internal/app"
	"github.com/thiagokokada/gitrepo-go/internal/git"
	"github.com/thiagokokada/gitrepo-go/internal/gui/tkutil"
)

const (
	varCommitStageAll = "gitrepo_commit_stage_all"
	varIdentityGlobal = "gitrepo_identity_global"
)

// form is a modal dialog with labelled entries and OK/Cancel buttons.
type form struct {
	w      *window
	dialog *ToplevelWidget
	frame  *TFrameWidget
	errLb  *TLabelWidget
	row    int
	first  *Window
}

func (w *window) newForm(title string) *form {
	dialog := App.Toplevel()
	dialog.WmTitle(title)
	WmTransient(dialog.Window, App)

	frame := dialog.TFrame(Padding("12p"))
	Grid(frame, Row(0), Column(0), Sticky(NEWS))
	GridColumnConfigure(dialog.Window, 0, Weight(1))
	GridColumnConfigure(frame.Window, 1, Weight(1))
	return &form{w: w, dialog: dialog, frame: frame}
}

func (f *form) label(text string) *TLabelWidget {
	lb := f.frame.TLabel(Txt(text), Anchor(W), Justify("left"))
	Grid(lb, Row(f.row), Column(0), Columnspan(2), Sticky(WE), Pady("0 6p"))
	f.row++
	return lb
}

func (f *form) entry(label, value string) *TEntryWidget {
	Grid(f.frame.TLabel(Txt(label), Anchor(W)), Row(f.row), Column(0), Sticky(W), Padx("0 6p"))
	e := f.frame.TEntry(Width(48), Textvariable(value))
	Grid(e, Row(f.row), Column(1), Sticky(WE), Pady("2p"))
	f.row++
	if f.first == nil {
		f.first = e.Window
	}
	return e
}

func (f *form) check(label, variable string, initial bool) *TCheckbuttonWidget {
	cb := f.frame.TCheckbutton(Txt(label))
	tkutil.SetBool(variable, initial)
	f.w.eval("%s configure -variable ::%s", cb, variable)
	Grid(cb, Row(f.row), Column(0), Columnspan(2), Sticky(W), Pady("2p"))
	f.row++
	return cb
}

func (f *form) fail(msg string) {
	f.errLb.Configure(Txt(msg))
}

// run shows the dialog and blocks in a nested event loop until it closes.
// accept is called on OK; returning false keeps the dialog open.
func (f *form) run(okLabel string, accept func() bool) bool {
	f.errLb = f.frame.TLabel(Anchor(W), Foreground(f.w.palette.LogError))
	Grid(f.errLb, Row(f.row), Column(0), Columnspan(2), Sticky(WE))
	f.row++

	var ok bool
	closeDialog := func() { Destroy(f.dialog.Window) }
	submit := func() {
		f.errLb.Configure(Txt(""))
		if accept() {
			ok = true
			closeDialog()
		}
	}
	buttons := f.frame.TFrame()
	Grid(buttons, Row(f.row), Column(0), Columnspan(2), Sticky(E), Pady("8p 0"))
	Grid(buttons.TButton(Txt("Cancel"), Command(closeDialog)), Row(0), Column(0), Padx("0 8p"))
	Grid(buttons.TButton(Txt(okLabel), Command(submit)), Row(0), Column(1))
	Bind(f.dialog.Window, "<KeyPress-Escape>", Command(closeDialog))
	Bind(f.dialog.Window, "<KeyPress-Return>", Command(submit))

	f.dialog.Center()
	if f.first != nil {
		f.w.eval("focus %s", f.first)
	}
	f.w.eval("grab set %s", f.dialog)
	f.w.eval("tkwait window %s", f.dialog)
	return ok
}

func (w *window) PromptCommit(defaults app.CommitInput, suggest app.SuggestFunc) (app.CommitInput, bool) {
	f := w.newForm("Commit")
	msg := f.entry("Message:", defaults.Message)
	f.check("Stage all changes (git add -A)", varCommitStageAll, defaults.StageAll)

	var cancel context.CancelFunc = func() {}
	alive := true
	if suggest != nil {
		status := f.label("")
		var btn *TButtonWidget
		btn = f.frame.TButton(Txt("Suggest message"), Command(func() {
			cancel()
			var ctx context.Context
			ctx, cancel = context.WithCancel(context.Background())
			btn.Configure(State("disabled"))
			status.Configure(Txt("Asking the model..."))
			w.suggestCommitMessage(ctx, suggest, tkutil.Bool(varCommitStageAll), func(partial string) {
				if alive {
					msg.Configure(Textvariable(partial))
				}
			}, func(final string, err error) {
				if !alive {
					return
				}
				btn.Configure(State("normal"))
				if err != nil {
					status.Configure(Txt("Suggestion failed: " + err.Error()))
					return
				}
				status.Configure(Txt(""))
				msg.Configure(Textvariable(final))
			})
		}))
		Grid(btn, Row(f.row), Column(1), Sticky(E))
		f.row++
	}
	Bind(f.dialog.Window, "<Destroy>", Command(func() {
		alive = false
		cancel()
	}))

	var out app.CommitInput
	ok := f.run("Commit", func() bool {
		out = app.CommitInput{
			Message:  strings.TrimSpace(msg.Textvariable()),
			StageAll: tkutil.Bool(varCommitStageAll),
		}
		if out.Message == "" {
			f.fail("Commit message is required.")
			return false
		}
		return true
	})
	return out, ok
}

// suggestCommitMessage runs suggest off the Tk goroutine. onPartial and
// onDone are called back on the Tk goroutine.
func (w *window) suggestCommitMessage(ctx context.Context, suggest app.SuggestFunc, stageAll bool, onPartial func(string), onDone func(string, error)) {
	go func() {
		var sb strings.Builder
		final, err := suggest(ctx, stageAll, func(chunk string) {
			sb.WriteString(chunk)
			partial := aicommit.NormalizeSingleLine(sb.String())
			PostEvent(func() { onPartial(partial) }, false)
		})
		if err != nil {
			slog.Debug("commit message suggestion", slog.Any("error", err))
		}
		PostEvent(func() { onDone(final, err) }, false)
	}()
}

func (w *window) PromptIdentity(defaults app.IdentityInput) (app.IdentityInput, bool) {
	f := w.newForm("Git identity")
	f.label("No git identity is configured for this repository.\nIt is needed to record the commit author.")
	name := f.entry("Name:", defaults.Name)
	email := f.entry("Email:", defaults.Email)
	f.check("Save globally (~/.gitconfig)", varIdentityGlobal, defaults.Scope == git.ScopeGlobal)

	var out app.IdentityInput
	ok := f.run("Save", func() bool {
		out = app.IdentityInput{
			Name:  strings.TrimSpace(name.Textvariable()),
			Email: strings.TrimSpace(email.Textvariable()),
			Scope: git.ScopeLocal,
		}
		if tkutil.Bool(varIdentityGlobal) {
			out.Scope = git.ScopeGlobal
		}
		if out.Name == "" || out.Email == "" {
			f.fail("Name and email are required.")
			return false
		}
		return true
	})
	return out, ok
}

func (w *window) PromptGitHubRepo(defaults app.GitHubInput) (app.GitHubInput, bool) {
	f := w.newForm("GitHub repository")
	f.label("Enter owner/repo or a GitHub URL for the origin remote.")
	initial := ""
	if defaults.Repo.Owner != "" {
		initial = defaults.Repo.String()
	}
	repo := f.entry("Repository:", initial)

	Grid(f.frame.TLabel(Txt("Protocol:"), Anchor(W)), Row(f.row), Column(0), Sticky(W))
	proto := f.frame.TCombobox(Width(8))
	w.eval("%s configure -state readonly -values [list %s]", proto, tkutil.List(git.ProtocolHTTPS, git.ProtocolSSH))
	protocol := defaults.Protocol
	if protocol != git.ProtocolSSH {
		protocol = git.ProtocolHTTPS
	}
	w.eval("%s set %s", proto, protocol)
	Grid(proto, Row(f.row), Column(1), Sticky(W), Pady("2p"))
	f.row++

	var out app.GitHubInput
	ok := f.run("OK", func() bool {
		parsed, valid := git.ParseGitHubRepo(repo.Textvariable())
		if !valid {
			f.fail("Expected owner/repo, https://github.com/owner/repo or git@github.com:owner/repo.")
			return false
		}
		out = app.GitHubInput{Repo: parsed, Protocol: strings.TrimSpace(tkutil.EvalOrEmpty("%s get", proto))}
		return true
	})
	return out, ok
}

func (w *window) PromptRemote(defaults app.RemoteInput, nameEditable bool) (app.RemoteInput, bool) {
	title := "Add remote"
	if !nameEditable {
		title = "Edit remote " + defaults.Name
	}
	f := w.newForm(title)
	name := f.entry("Name:", defaults.Name)
	if !nameEditable {
		w.setEnabled(name.Window, false)
	}
	url := f.entry("URL:", defaults.URL)
	if !nameEditable {
		f.first = url.Window
	}

	var out app.RemoteInput
	ok := f.run("OK", func() bool {
		out = app.RemoteInput{Name: defaults.Name, URL: strings.TrimSpace(url.Textvariable())}
		if nameEditable {
			out.Name = strings.TrimSpace(name.Textvariable())
		}
		if out.Name == "" || out.URL == "" {
			f.fail("Name and URL are required.")
			return false
		}
		return true
	})
	return out, ok
}

// dangerText is the body of a destructive-action confirmation.
func dangerText(action, impact, risks string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are about to: %s", action)
	if impact = strings.TrimSpace(impact); impact != "" {
		fmt.Fprintf(&b, "\n\nWhat will happen:\n%s", impact)
	}
	if risks = strings.TrimSpace(risks); risks != "" {
		fmt.Fprintf(&b, "\n\nRisks:\n%s", risks)
	}
	b.WriteString("\n\nContinue?")
	return b.String()
}

func (w *window) ConfirmDanger(action, impact, risks string) bool {
	return MessageBox(
		Parent(App),
		Title("Confirm: "+action),
		Icon("warning"),
		Msg(dangerText(action, impact, risks)),
		Type("yesno"),
	) == "yes"
}

func (w *window) Confirm(title, message string) bool {
	return MessageBox(
		Parent(App),
		Title(title),
		Icon("question"),
		Msg(message),
		Type("yesno"),
	) == "yes"
}

func (w *window) Info(title, message string) {
	MessageBox(
		Parent(App),
		Title(title),
		Icon("info"),
		Msg(message),
		Type("ok"),
	)
}

func (w *window) ShowError(title, message string) {
	MessageBox(
		Parent(App),
		Title(title),
		Icon("error"),
		Msg(message),
		Type("ok"),
	)
}
