// Package gui is the Tk front-end. It renders the controller's view state
// and answers its dialogs; all git work happens in internal/app workers.
package gui

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	. "modernc.org/tk9.0"
	_ "modernc.org/tk9.0/themes/azure" // load theme

	"github.com/thiagokokada/gitrepo-go/internal/aicommit"
	"github.com/thiagokokada/gitrepo-go/internal/app"
	"github.com/thiagokokada/gitrepo-go/internal/config"
	"github.com/thiagokokada/gitrepo-go/internal/git"
	"github.com/thiagokokada/gitrepo-go/internal/gui/tkutil"
)

const pollInterval = 100 * time.Millisecond

// RunConfig describes the parameters that control the GUI runtime.
type RunConfig struct {
	// RepoPath is opened at start; empty reopens the last repository.
	RepoPath        string
	ThemePreference ThemePreference
	Watch           bool
	SyntaxHighlight bool
	Verbose         bool
	// AIModel enables commit message suggestions; empty disables them.
	AIModel      string
	SettingsPath string
}

func Run(cfg RunConfig) error {
	if err := InitializeExtension("eval"); err != nil && err != AlreadyInitialized {
		return fmt.Errorf("init eval extension: %v", err)
	}
	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	pref := cfg.ThemePreference
	if pref < ThemeAuto || pref > ThemeDark {
		pref = ThemeAuto
	}
	w := &window{
		cfg: windowConfig{
			syntaxHighlight: cfg.SyntaxHighlight,
			watch:           cfg.Watch,
			verbose:         cfg.Verbose,
		},
		settings:   config.Load(cfg.SettingsPath),
		palette:    paletteForPreference(pref),
		syntaxTags: make(map[string]string),
	}
	if cfg.SyntaxHighlight {
		w.lexer = commandLexer()
		w.style = styleForPalette(w.palette)
	}

	var suggester aicommit.Suggester
	if model := strings.TrimSpace(cfg.AIModel); model != "" {
		ollama, err := aicommit.NewOllama(model)
		if err != nil {
			slog.Warn("commit message suggestions disabled", slog.Any("error", err))
		} else {
			suggester = ollama
		}
	}
	w.ctrl = app.New(app.Options{
		Git:       git.NewRunner(""),
		View:      w,
		Prompter:  w,
		Settings:  w.settings,
		Suggester: suggester,
		Logger:    slog.Default(),
	})
	return w.run(cfg.RepoPath)
}

func (w *window) run(repoPath string) error {
	defer w.shutdown()
	if w.palette.ThemeName != "" {
		if err := ActivateTheme(w.palette.ThemeName); err != nil {
			slog.Error(
				"activate theme",
				slog.String("theme", w.palette.ThemeName),
				slog.Any("error", err),
			)
		}
	}
	w.buildUI()
	App.WmTitle("gitrepo-go")
	App.SetResizable(true, true)
	w.eval("wm geometry . %s", w.settings.WindowGeometry)
	w.SetBusy(false, false)
	w.SetStatus("Ready")

	stop := w.startPolling()
	defer close(stop)

	if v := git.Version(); v != "" {
		w.AppendLog("[INFO] " + v)
	}
	if start := initialRepo(repoPath, w.settings.LastRepo); start != "" {
		w.ctrl.Dispatch(app.Request{Op: app.OpOpenRepo, Path: start})
	} else {
		w.SetSummary("No repository loaded. Use Open... or Init... to start.")
	}

	Bind(App, "<Destroy>", Command(w.saveGeometry))
	App.Center().Wait()
	return nil
}

// startPolling applies controller events on the Tk goroutine every
// pollInterval until the returned channel is closed.
func (w *window) startPolling() chan<- struct{} {
	stop := make(chan struct{})
	go func() {
		ticker := time.NewTicker(pollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				PostEvent(w.ctrl.Poll, false)
			}
		}
	}()
	return stop
}

// initialRepo prefers the path given on the command line over the last
// opened repository.
func initialRepo(requested, last string) string {
	if p := strings.TrimSpace(requested); p != "" {
		return p
	}
	return strings.TrimSpace(last)
}

func (w *window) saveGeometry() {
	geometry := strings.TrimSpace(tkutil.EvalOrEmpty("wm geometry ."))
	if err := w.settings.SetWindowGeometry(geometry); err != nil {
		slog.Warn("saving window geometry", slog.Any("error", err))
	}
}

func (w *window) shutdown() {
	w.stopWatcher()
}
