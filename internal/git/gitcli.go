package git

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

const defaultGitBin = "git"

// CommandResult is the outcome of a capture-mode invocation.
type CommandResult struct {
	ExitCode int
	Output   string
}

// Runner executes git in capture mode: the command runs to completion and its
// stdout and stderr are returned as one string.
type Runner struct {
	// Bin is the git executable. Defaults to "git".
	Bin string
}

// NewRunner returns a Runner for bin, or for "git" when bin is blank.
func NewRunner(bin string) *Runner {
	return &Runner{Bin: strings.TrimSpace(bin)}
}

func (r *Runner) bin() string {
	if r == nil || r.Bin == "" {
		return defaultGitBin
	}
	return r.Bin
}

// Capture runs git --no-pager args inside root. A non-zero exit is reported
// as *CommandError carrying the combined output.
func (r *Runner) Capture(root string, args ...string) (string, error) {
	res, err := r.Run(root, args...)
	if err != nil {
		return "", err
	}
	if res.ExitCode != 0 {
		return "", &CommandError{
			Args:     r.argv(args),
			ExitCode: res.ExitCode,
			Output:   res.Output,
		}
	}
	return res.Output, nil
}

// Run is like Capture but leaves the exit code to the caller. The error is
// only set when git could not be started.
func (r *Runner) Run(root string, args ...string) (CommandResult, error) {
	if root == "" {
		return CommandResult{ExitCode: -1}, fmt.Errorf("repository root not set")
	}
	argv := r.argv(args)
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Dir = root
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	out := decodeOutput(stdout.Bytes()) + decodeOutput(stderr.Bytes())
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return CommandResult{ExitCode: exitErr.ExitCode(), Output: out}, nil
		}
		return CommandResult{ExitCode: -1, Output: out}, fmt.Errorf("%s: %w", QuoteArgs(argv), err)
	}
	return CommandResult{Output: out}, nil
}

func (r *Runner) argv(args []string) []string {
	return append([]string{r.bin(), "--no-pager"}, args...)
}

// FindRepoRoot resolves the top-level directory of the repository that
// contains start.
func (r *Runner) FindRepoRoot(start string) (string, error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return "", err
	}
	argv := []string{r.bin(), "-C", abs, "rev-parse", "--show-toplevel"}
	cmd := exec.Command(argv[0], argv[1:]...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		out := decodeOutput(stdout.Bytes()) + decodeOutput(stderr.Bytes())
		code := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code = exitErr.ExitCode()
		}
		return "", fmt.Errorf("%w: %s: %w", ErrNotRepository, abs, &CommandError{Args: argv, ExitCode: code, Output: out})
	}
	root := strings.TrimSpace(decodeOutput(stdout.Bytes()))
	if root == "" {
		return "", fmt.Errorf("%w: %s: git rev-parse returned empty root", ErrNotRepository, abs)
	}
	return filepath.Clean(root), nil
}

func decodeOutput(b []byte) string {
	return strings.ToValidUTF8(string(b), "�")
}
