package git

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	ConfigKeyGitHubRepo     = "auto-github.githubRepo"
	ConfigKeyGitHubProtocol = "auto-github.protocol"

	ProtocolHTTPS = "https"
	ProtocolSSH   = "ssh"
)

var (
	githubHTTPSRE = regexp.MustCompile(`(?i)^https?://github\.com/([^/]+)/([^/]+?)(?:\.git)?/?$`)
	githubSSHRE   = regexp.MustCompile(`(?i)^git@github\.com:([^/]+)/([^/]+?)(?:\.git)?$`)
)

// GitHubRepo identifies a repository on GitHub.
type GitHubRepo struct {
	Owner string
	Name  string
}

func (g GitHubRepo) String() string { return g.Owner + "/" + g.Name }

// URL builds the clone URL for protocol; anything but "ssh" means HTTPS.
func (g GitHubRepo) URL(protocol string) string {
	if strings.EqualFold(strings.TrimSpace(protocol), ProtocolSSH) {
		return fmt.Sprintf("git@github.com:%s/%s.git", g.Owner, g.Name)
	}
	return fmt.Sprintf("https://github.com/%s/%s.git", g.Owner, g.Name)
}

// ParseGitHubRepo accepts "owner/repo", an HTTPS URL or an SSH URL.
func ParseGitHubRepo(s string) (GitHubRepo, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return GitHubRepo{}, false
	}
	if strings.Contains(s, "/") && !strings.Contains(s, ":") {
		parts := strings.Split(s, "/")
		if len(parts) == 2 && !strings.Contains(parts[0], ".") {
			owner := strings.TrimSpace(parts[0])
			name := strings.TrimSuffix(strings.TrimSpace(parts[1]), ".git")
			if owner != "" && name != "" {
				return GitHubRepo{Owner: owner, Name: name}, true
			}
		}
	}
	for _, re := range []*regexp.Regexp{githubHTTPSRE, githubSSHRE} {
		if m := re.FindStringSubmatch(s); m != nil {
			return GitHubRepo{Owner: m[1], Name: m[2]}, true
		}
	}
	return GitHubRepo{}, false
}

// GitHubConfig is the GitHub origin stored for a repository.
type GitHubConfig struct {
	Repo     GitHubRepo
	Protocol string
	// Found is false when neither the config keys nor origin named a
	// GitHub repository.
	Found bool
}

func normalizeProtocol(p string) string {
	p = strings.ToLower(strings.TrimSpace(p))
	if p == ProtocolSSH {
		return ProtocolSSH
	}
	return ProtocolHTTPS
}

// WriteGitHubConfig stores repo and protocol in the local git config.
func (r *Runner) WriteGitHubConfig(root string, repo GitHubRepo, protocol string) error {
	if err := r.ConfigSet(root, "--local", ConfigKeyGitHubRepo, repo.String()); err != nil {
		return err
	}
	return r.ConfigSet(root, "--local", ConfigKeyGitHubProtocol, normalizeProtocol(protocol))
}

// ClearGitHubConfig removes the stored GitHub keys.
func (r *Runner) ClearGitHubConfig(root string) error {
	if err := r.ConfigUnset(root, "--local", ConfigKeyGitHubRepo); err != nil {
		return err
	}
	return r.ConfigUnset(root, "--local", ConfigKeyGitHubProtocol)
}

// InferGitHubFromOrigin derives the GitHub config from the origin URL.
func (r *Runner) InferGitHubFromOrigin(root string) (GitHubConfig, bool) {
	url, err := r.Capture(root, "remote", "get-url", "origin")
	if err != nil {
		return GitHubConfig{}, false
	}
	url = strings.TrimSpace(url)
	repo, ok := ParseGitHubRepo(url)
	if !ok {
		return GitHubConfig{}, false
	}
	protocol := ProtocolHTTPS
	if strings.HasPrefix(strings.ToLower(url), "git@") {
		protocol = ProtocolSSH
	}
	return GitHubConfig{Repo: repo, Protocol: protocol, Found: true}, true
}

// EffectiveGitHubConfig prefers the stored keys and falls back to origin.
func (r *Runner) EffectiveGitHubConfig(root string) GitHubConfig {
	rawProto, _ := r.ConfigGet(root, "--local", ConfigKeyGitHubProtocol)
	protocol := ProtocolHTTPS
	if p := strings.ToLower(rawProto); p == ProtocolHTTPS || p == ProtocolSSH {
		protocol = p
	}
	if raw, _ := r.ConfigGet(root, "--local", ConfigKeyGitHubRepo); raw != "" {
		if repo, ok := ParseGitHubRepo(raw); ok {
			return GitHubConfig{Repo: repo, Protocol: protocol, Found: true}
		}
	}
	if cfg, ok := r.InferGitHubFromOrigin(root); ok {
		return cfg
	}
	return GitHubConfig{Protocol: protocol}
}
