package git

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotRepository is returned (wrapped) when the repository root cannot be
// discovered from a directory.
var ErrNotRepository = errors.New("not a git repository")

// CommandError reports a git invocation that exited with a non-zero status.
type CommandError struct {
	Args     []string
	ExitCode int
	Output   string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("git command failed (%d): %s", e.ExitCode, QuoteArgs(e.Args))
}

// Class classifies the command output into a known failure category.
func (e *CommandError) Class() ErrorClass {
	if e == nil {
		return ErrUnknown
	}
	return ClassifyOutput(e.Output)
}

type ErrorClass string

const (
	ErrAuth     ErrorClass = "auth"
	ErrNetwork  ErrorClass = "network"
	ErrNoRemote ErrorClass = "no_remote"
	ErrCorrupt  ErrorClass = "corrupt"
	ErrNotARepo ErrorClass = "not_a_repo"
	ErrUnknown  ErrorClass = "unknown"
)

// ClassifyOutput inspects git output and returns a failure category.
func ClassifyOutput(out string) ErrorClass {
	lower := strings.ToLower(out)
	switch {
	case strings.Contains(lower, "authentication failed"),
		strings.Contains(lower, "permission denied"),
		strings.Contains(lower, "could not read username"),
		strings.Contains(lower, "could not read from remote"),
		strings.Contains(lower, "terminal prompts disabled"):
		return ErrAuth
	case strings.Contains(lower, "could not resolve host"),
		strings.Contains(lower, "connection refused"),
		strings.Contains(lower, "network is unreachable"),
		strings.Contains(lower, "connection timed out"),
		strings.Contains(lower, "unable to access"):
		return ErrNetwork
	case strings.Contains(lower, "does not appear to be a git repository"),
		strings.Contains(lower, "no such remote"):
		return ErrNoRemote
	case strings.Contains(lower, "not a git repository"):
		return ErrNotARepo
	case strings.Contains(lower, "object file is empty"),
		strings.Contains(lower, "loose object"),
		strings.Contains(lower, "bad object"),
		strings.Contains(lower, "corrupt"):
		return ErrCorrupt
	default:
		return ErrUnknown
	}
}

// AsCommandError unwraps err into a *CommandError when possible.
func AsCommandError(err error) (*CommandError, bool) {
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr, true
	}
	return nil, false
}

// QuoteArgs renders argv the way a shell user would type it.
func QuoteArgs(args []string) string {
	quoted := make([]string, 0, len(args))
	for _, a := range args {
		quoted = append(quoted, quoteArg(a))
	}
	return strings.Join(quoted, " ")
}

func quoteArg(a string) string {
	if a == "" {
		return `""`
	}
	if !strings.ContainsAny(a, " \t\n\"'\\$`|&;<>()*?[]{}") {
		return a
	}
	return "'" + strings.ReplaceAll(a, "'", `'\''`) + "'"
}
