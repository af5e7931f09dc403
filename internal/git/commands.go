package git

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNothingToDo is returned by planners that end up with no steps.
var ErrNothingToDo = errors.New("nothing to do")

// FetchArgs fetches remote with pruning, tags and progress output.
func FetchArgs(remote string) []string {
	return []string{"fetch", remote, "--prune", "--tags", "--progress"}
}

// PushOptions describes a push of HEAD to a remote branch.
type PushOptions struct {
	Remote      string
	Target      string
	SetUpstream bool
	Force       bool
	// Tag, when set, is created on HEAD before the push and pushed after it.
	Tag        string
	TagMessage string
}

// PlanPush returns the ordered steps of a push. A forced push fetches first
// so --force-with-lease compares against fresh remote-tracking refs.
func PlanPush(o PushOptions) ([][]string, error) {
	remote := strings.TrimSpace(o.Remote)
	if remote == "" {
		return nil, errors.New("no remote selected")
	}
	target := strings.TrimSpace(o.Target)
	targetRef, err := BranchRef(target)
	if err != nil {
		return nil, fmt.Errorf("target branch: %w", err)
	}
	tag := strings.TrimSpace(o.Tag)
	var tagRef string
	if tag != "" {
		if tagRef, err = TagRef(tag); err != nil {
			return nil, err
		}
	}

	var steps [][]string
	if o.Force {
		steps = append(steps, FetchArgs(remote))
	}
	if tag != "" {
		if msg := strings.TrimSpace(o.TagMessage); msg != "" {
			steps = append(steps, []string{"tag", "-a", tag, "-m", msg})
		} else {
			steps = append(steps, []string{"tag", tag})
		}
	}
	push := []string{"push"}
	if o.SetUpstream {
		push = append(push, "-u")
	}
	push = append(push, remote, "HEAD:"+targetRef, "--progress")
	if o.Force {
		push = append(push, "--force-with-lease")
	}
	steps = append(steps, push)
	if tag != "" {
		steps = append(steps, []string{"push", remote, tagRef, "--progress"})
	}
	return steps, nil
}

// PlanCommit stages everything when stageAll is set, then commits.
func PlanCommit(message string, stageAll bool) ([][]string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, errors.New("commit message is empty")
	}
	var steps [][]string
	if stageAll {
		steps = append(steps, []string{"add", "-A"})
	}
	return append(steps, []string{"commit", "-m", message}), nil
}

// CheckoutBranchArgs switches to a local or remote-tracked branch.
func CheckoutBranchArgs(name string) []string {
	return []string{"checkout", name}
}

// CheckoutTagArgs checks out a tag, leaving HEAD detached.
func CheckoutTagArgs(name string) []string {
	return []string{"checkout", "tags/" + name}
}

// RefPresence tells a delete planner where the ref exists.
type RefPresence struct {
	Local  bool
	Remote bool
}

// PlanDeleteBranch removes the remote branch first, then the local one.
func PlanDeleteBranch(remote, name string, where RefPresence, force bool) ([][]string, error) {
	if _, err := BranchRef(name); err != nil {
		return nil, err
	}
	var steps [][]string
	if where.Remote {
		steps = append(steps, []string{"push", remote, "--delete", name, "--progress"})
	}
	if where.Local {
		flag := "-d"
		if force {
			flag = "-D"
		}
		steps = append(steps, []string{"branch", flag, name})
	}
	if len(steps) == 0 {
		return nil, fmt.Errorf("branch %s: %w", name, ErrNothingToDo)
	}
	return steps, nil
}

// PlanDeleteTag removes the remote tag first, then the local one.
func PlanDeleteTag(remote, name string, where RefPresence) ([][]string, error) {
	ref, err := TagRef(name)
	if err != nil {
		return nil, err
	}
	var steps [][]string
	if where.Remote {
		steps = append(steps, []string{"push", remote, ":" + ref, "--progress"})
	}
	if where.Local {
		steps = append(steps, []string{"tag", "-d", name})
	}
	if len(steps) == 0 {
		return nil, fmt.Errorf("tag %s: %w", name, ErrNothingToDo)
	}
	return steps, nil
}

func AddRemoteArgs(name, url string) []string    { return []string{"remote", "add", name, url} }
func SetRemoteURLArgs(name, url string) []string { return []string{"remote", "set-url", name, url} }
func RemoveRemoteArgs(name string) []string      { return []string{"remote", "remove", name} }

// IdentityScope selects where user.name/user.email are written.
type IdentityScope string

const (
	ScopeLocal  IdentityScope = "local"
	ScopeGlobal IdentityScope = "global"
)

// IdentityArgs returns the two config invocations that store an identity.
func IdentityArgs(scope IdentityScope, name, email string) [][]string {
	prefix := []string{"config"}
	if scope == ScopeGlobal {
		prefix = append(prefix, "--global")
	}
	return [][]string{
		append(append([]string(nil), prefix...), "user.name", name),
		append(append([]string(nil), prefix...), "user.email", email),
	}
}
