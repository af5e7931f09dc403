// Package cmd is the command-line entry point.
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/thiagokokada/gitrepo-go/internal/aicommit"
	"github.com/thiagokokada/gitrepo-go/internal/buildinfo"
	"github.com/thiagokokada/gitrepo-go/internal/config"
	"github.com/thiagokokada/gitrepo-go/internal/git"
	"github.com/thiagokokada/gitrepo-go/internal/gui"
)

const envPrefix = "GITREPO"

// Swapped in tests.
var (
	runGUI       = gui.Run
	ensureGit    = git.EnsureMinVersion
	settingsPath = config.DefaultPath
)

func Run() error {
	return run(os.Args[1:])
}

func run(args []string) error {
	root := newRootCmd()
	root.SetArgs(args)
	return root.Execute()
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	v.SetDefault("ai-model", "")
	v.SetDefault("mode", gui.ThemeAuto.String())

	root := &cobra.Command{
		Use:           "gitrepo-go [repository]",
		Short:         "Manage branches, tags, remotes, commits and pushes of a git repository",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if showVersion, _ := cmd.Flags().GetBool("version"); showVersion {
				fmt.Fprintln(cmd.OutOrStdout(), buildinfo.VersionWithTags())
				return nil
			}
			return runRoot(cmd, v, args)
		},
	}
	flags := root.Flags()
	flags.String("mode", gui.ThemeAuto.String(), "color mode: auto, light, or dark")
	flags.Bool("nowatch", false, "disable automatic refresh when the repository changes")
	flags.Bool("nosyntax", false, "disable syntax highlighting of commands in the log")
	flags.Bool("verbose", false, "enable verbose logging")
	flags.Bool("version", false, "print version information and exit")
	flags.String("ai-model", "", fmt.Sprintf("Ollama model for commit message suggestions, e.g. %s (env %s_AI_MODEL)", aicommit.DefaultModel, envPrefix))
	flags.String("settings", "", "settings file (default is $XDG_CONFIG_HOME/gitrepo-go/settings.yaml)")
	for _, name := range []string{"mode", "ai-model"} {
		_ = v.BindPFlag(name, flags.Lookup(name))
	}
	return root
}

func runRoot(cmd *cobra.Command, v *viper.Viper, args []string) error {
	if err := ensureGit(); err != nil {
		return err
	}
	flags := cmd.Flags()
	noWatch, _ := flags.GetBool("nowatch")
	noSyntax, _ := flags.GetBool("nosyntax")
	verbose, _ := flags.GetBool("verbose")

	path, _ := flags.GetString("settings")
	if path == "" {
		p, err := settingsPath()
		if err != nil {
			return fmt.Errorf("settings path: %w", err)
		}
		path = p
	}
	var repoPath string
	if len(args) > 0 {
		repoPath = args[0]
	}
	return runGUI(gui.RunConfig{
		RepoPath:        repoPath,
		ThemePreference: gui.ThemePreferenceFromString(v.GetString("mode")),
		Watch:           !noWatch,
		SyntaxHighlight: !noSyntax,
		Verbose:         verbose,
		AIModel:         v.GetString("ai-model"),
		SettingsPath:    path,
	})
}
