package git

import "testing"

func TestParseGitHubRepo(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want GitHubRepo
		ok   bool
	}{
		{in: "octo/hello", want: GitHubRepo{"octo", "hello"}, ok: true},
		{in: "octo/hello.git", want: GitHubRepo{"octo", "hello"}, ok: true},
		{in: "https://github.com/octo/hello.git", want: GitHubRepo{"octo", "hello"}, ok: true},
		{in: "https://github.com/octo/hello/", want: GitHubRepo{"octo", "hello"}, ok: true},
		{in: "HTTP://GitHub.com/octo/hello", want: GitHubRepo{"octo", "hello"}, ok: true},
		{in: "git@github.com:octo/hello.git", want: GitHubRepo{"octo", "hello"}, ok: true},
		{in: "git@github.com:octo/hello", want: GitHubRepo{"octo", "hello"}, ok: true},
		{in: "", ok: false},
		{in: "octo", ok: false},
		{in: "gitlab.com/octo/hello", ok: false},
		{in: "https://gitlab.com/octo/hello.git", ok: false},
		{in: "a/b/c", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			got, ok := ParseGitHubRepo(tt.in)
			if ok != tt.ok || got != tt.want {
				t.Fatalf("ParseGitHubRepo(%q) = %+v, %v; want %+v, %v", tt.in, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestGitHubRepoURL(t *testing.T) {
	t.Parallel()

	r := GitHubRepo{Owner: "octo", Name: "hello"}
	if got := r.URL("https"); got != "https://github.com/octo/hello.git" {
		t.Fatalf("https URL = %q", got)
	}
	if got := r.URL(" SSH "); got != "git@github.com:octo/hello.git" {
		t.Fatalf("ssh URL = %q", got)
	}
	if got := r.URL("bogus"); got != "https://github.com/octo/hello.git" {
		t.Fatalf("fallback URL = %q", got)
	}
	if r.String() != "octo/hello" {
		t.Fatalf("String() = %q", r.String())
	}
}

func TestEffectiveGitHubConfig(t *testing.T) {
	requireGit(t)

	repo := newTestRepo(t)
	r := NewRunner("")

	if cfg := r.EffectiveGitHubConfig(repo.dir); cfg.Found || cfg.Protocol != ProtocolHTTPS {
		t.Fatalf("empty repo config = %+v", cfg)
	}

	repo.remote("origin", "git@github.com:octo/inferred.git")
	cfg := r.EffectiveGitHubConfig(repo.dir)
	if !cfg.Found || cfg.Repo.String() != "octo/inferred" || cfg.Protocol != ProtocolSSH {
		t.Fatalf("inferred config = %+v", cfg)
	}

	if err := r.WriteGitHubConfig(repo.dir, GitHubRepo{"octo", "stored"}, "HTTPS"); err != nil {
		t.Fatalf("WriteGitHubConfig: %v", err)
	}
	cfg = r.EffectiveGitHubConfig(repo.dir)
	if cfg.Repo.String() != "octo/stored" || cfg.Protocol != ProtocolHTTPS {
		t.Fatalf("stored config = %+v", cfg)
	}

	if err := r.ClearGitHubConfig(repo.dir); err != nil {
		t.Fatalf("ClearGitHubConfig: %v", err)
	}
	// Clearing twice hits exit code 5, which is not an error.
	if err := r.ClearGitHubConfig(repo.dir); err != nil {
		t.Fatalf("second ClearGitHubConfig: %v", err)
	}
	if cfg := r.EffectiveGitHubConfig(repo.dir); cfg.Repo.String() != "octo/inferred" {
		t.Fatalf("config after clear = %+v", cfg)
	}
}
