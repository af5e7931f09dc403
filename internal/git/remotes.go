package git

import (
	"strings"
)

// LocalRefExists reports whether ref (a full ref name) exists locally.
func (r *Runner) LocalRefExists(root, ref string) (bool, error) {
	res, err := r.Run(root, "show-ref", "--verify", "--quiet", ref)
	if err != nil {
		return false, err
	}
	return res.ExitCode == 0, nil
}

// RemoteRefExists asks remote whether it has ref. Unlike LocalRefExists a
// failing query is an error: the remote may be unreachable.
func (r *Runner) RemoteRefExists(root, remote, ref string) (bool, error) {
	out, err := r.Capture(root, "ls-remote", remote, ref)
	if err != nil {
		return false, err
	}
	for line := range strings.SplitSeq(out, "\n") {
		if _, got, ok := splitListingLine(line); ok && got == ref {
			return true, nil
		}
	}
	return false, nil
}

// HasHead reports whether HEAD resolves to a commit.
func (r *Runner) HasHead(root string) bool {
	res, err := r.Run(root, "rev-parse", "--verify", "--quiet", "HEAD")
	return err == nil && res.ExitCode == 0
}

// ConfigGet reads key with an optional scope ("--local", "--global").
// A missing key yields "" without error.
func (r *Runner) ConfigGet(root, scope, key string) (string, error) {
	args := []string{"config"}
	if scope != "" {
		args = append(args, scope)
	}
	args = append(args, "--get", key)
	res, err := r.Run(root, args...)
	if err != nil {
		return "", err
	}
	if res.ExitCode != 0 {
		return "", nil
	}
	return strings.TrimSpace(res.Output), nil
}

// ConfigSet writes key=value in scope.
func (r *Runner) ConfigSet(root, scope, key, value string) error {
	args := []string{"config"}
	if scope != "" {
		args = append(args, scope)
	}
	_, err := r.Capture(root, append(args, key, value)...)
	return err
}

// ConfigUnset removes key from scope. Exit code 5 (key not set) is not an
// error.
func (r *Runner) ConfigUnset(root, scope, key string) error {
	args := []string{"config"}
	if scope != "" {
		args = append(args, scope)
	}
	args = append(args, "--unset", key)
	res, err := r.Run(root, args...)
	if err != nil {
		return err
	}
	switch res.ExitCode {
	case 0, 5:
		return nil
	default:
		return &CommandError{Args: r.argv(args), ExitCode: res.ExitCode, Output: res.Output}
	}
}

// Identity returns user.name and user.email as git resolves them.
func (r *Runner) Identity(root string) (name, email string) {
	name, _ = r.ConfigGet(root, "", "user.name")
	email, _ = r.ConfigGet(root, "", "user.email")
	return name, email
}
