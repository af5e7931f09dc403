package gui

import (
	"strings"
	"testing"

	"github.com/thiagokokada/gitrepo-go/internal/git"
)

func TestRefRows(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"current_branch", branchRow(git.BranchRecord{Name: "main", Local: true, Remote: true, Current: true}), "* main  [local+remote]"},
		{"remote_branch", branchRow(git.BranchRecord{Name: "feature", Remote: true}), "  feature  [remote]"},
		{"local_tag", tagRow(git.TagRecord{Name: "v1.0", Local: true}), "  v1.0  [local]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if tt.got != tt.want {
				t.Fatalf("row = %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestSelectedName(t *testing.T) {
	t.Parallel()

	records := []git.BranchRecord{{Name: "dev"}, {Name: "main"}}
	tests := []struct {
		name      string
		selection []int
		want      string
	}{
		{"none", nil, ""},
		{"first", []int{0}, "dev"},
		{"uses_first_index", []int{1, 0}, "main"},
		{"out_of_range", []int{2}, ""},
		{"negative", []int{-1}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := selectedName(records, tt.selection, branchName); got != tt.want {
				t.Fatalf("selectedName = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPickRemote(t *testing.T) {
	t.Parallel()

	names := []string{"origin", "upstream"}
	tests := []struct {
		name               string
		names              []string
		current, preferred string
		want               string
	}{
		{"keeps_current", names, "upstream", "origin", "upstream"},
		{"current_gone", names, "fork", "upstream", "upstream"},
		{"falls_back_to_first", names, "", "", "origin"},
		{"no_remotes", nil, "origin", "origin", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := pickRemote(tt.names, tt.current, tt.preferred); got != tt.want {
				t.Fatalf("pickRemote = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestProgressText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		percent int
		stage   string
		want    string
	}{
		{-1, "", ""},
		{-1, "Counting objects", "Counting objects"},
		{40, "", "40%"},
		{75, " Receiving objects ", "Receiving objects 75%"},
	}
	for _, tt := range tests {
		if got := progressText(tt.percent, tt.stage); got != tt.want {
			t.Errorf("progressText(%d, %q) = %q, want %q", tt.percent, tt.stage, got, tt.want)
		}
	}
}

func TestInitialRepo(t *testing.T) {
	t.Parallel()

	if got := initialRepo(" /work/a ", "/work/b"); got != "/work/a" {
		t.Fatalf("initialRepo = %q, want the requested path", got)
	}
	if got := initialRepo("", "/work/b"); got != "/work/b" {
		t.Fatalf("initialRepo = %q, want the last repository", got)
	}
	if got := initialRepo("", ""); got != "" {
		t.Fatalf("initialRepo = %q, want empty", got)
	}
}

func TestDangerText(t *testing.T) {
	t.Parallel()

	got := dangerText("Force push", "Rewrites origin/main.", "Commits on the remote may be lost.")
	for _, want := range []string{
		"You are about to: Force push",
		"What will happen:\nRewrites origin/main.",
		"Risks:\nCommits on the remote may be lost.",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("danger text %q lacks %q", got, want)
		}
	}
	if !strings.HasSuffix(got, "Continue?") {
		t.Errorf("danger text %q should end with the question", got)
	}

	bare := dangerText("Commit", " ", "")
	if strings.Contains(bare, "Risks") || strings.Contains(bare, "What will happen") {
		t.Errorf("empty sections rendered: %q", bare)
	}
}
