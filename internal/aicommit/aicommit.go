// Package aicommit suggests a one-line commit message for the pending
// changes of a repository using a local Ollama model.
package aicommit

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ollama/ollama/api"
)

const (
	DefaultModel = "llama3.2"
	MaxDiffChars = 12000

	truncatedMarker = "\n\n[... diff truncated ...]"
)

// ErrNoChanges is returned when there is nothing to describe.
var ErrNoChanges = errors.New("no changes to describe")

// Suggester produces a commit message. onChunk, when non-nil, receives the
// text as it is generated.
type Suggester interface {
	Suggest(ctx context.Context, changes Changes, onChunk func(string)) (string, error)
}

// Capturer runs git in capture mode.
type Capturer interface {
	Capture(root string, args ...string) (string, error)
}

// Changes is the material sent to the model.
type Changes struct {
	Files string
	Diff  string
}

// CollectChanges gathers the staged changes, plus the unstaged ones when
// stageAll is set. The diff is cut at MaxDiffChars.
func CollectChanges(git Capturer, root string, stageAll bool) (Changes, error) {
	stagedFiles, err := git.Capture(root, "diff", "--cached", "--name-status")
	if err != nil {
		return Changes{}, err
	}
	stagedDiff, err := git.Capture(root, "diff", "--cached", "--", ".")
	if err != nil {
		return Changes{}, err
	}
	var unstagedFiles, unstagedDiff string
	if stageAll {
		if unstagedFiles, err = git.Capture(root, "diff", "--name-status"); err != nil {
			return Changes{}, err
		}
		if unstagedDiff, err = git.Capture(root, "diff", "--", "."); err != nil {
			return Changes{}, err
		}
	}

	files := joinSections(
		section("[staged files]", stagedFiles),
		section("[unstaged files]", unstagedFiles),
	)
	diff := joinSections(
		section("[staged diff]", stagedDiff),
		section("[unstaged diff]", unstagedDiff),
	)
	if files == "" && diff == "" {
		if stageAll {
			return Changes{}, ErrNoChanges
		}
		return Changes{}, fmt.Errorf("%w: nothing is staged", ErrNoChanges)
	}
	return Changes{Files: files, Diff: truncate(diff, MaxDiffChars)}, nil
}

func section(header, body string) string {
	if strings.TrimSpace(body) == "" {
		return ""
	}
	return header + "\n" + strings.TrimRight(body, "\n")
}

func joinSections(parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.TrimSpace(strings.Join(kept, "\n\n"))
}

func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit]) + truncatedMarker
}

// NormalizeSingleLine collapses all whitespace, line breaks included, into
// single spaces.
func NormalizeSingleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

type chatClient interface {
	Chat(ctx context.Context, req *api.ChatRequest, fn api.ChatResponseFunc) error
}

// Ollama is a Suggester backed by the Ollama chat API.
type Ollama struct {
	client chatClient
	model  string
}

// NewOllama connects to the server named by OLLAMA_HOST (default
// localhost:11434).
func NewOllama(model string) (*Ollama, error) {
	if strings.TrimSpace(model) == "" {
		model = DefaultModel
	}
	client, err := api.ClientFromEnvironment()
	if err != nil {
		return nil, fmt.Errorf("failed to create ollama client: %w", err)
	}
	return &Ollama{client: client, model: model}, nil
}

func (o *Ollama) Model() string { return o.model }

const systemPrompt = `You are a senior software engineer writing a git commit message.
Rules:
1) Output exactly one line of text and nothing else.
2) Be concise and specific, ideally 5 to 12 words.
3) Start with an imperative verb (Add, Fix, Refactor, Update, Remove).
4) No quotes, line breaks, list markers or prefixes.`

func buildMessages(c Changes) []api.Message {
	files := c.Files
	if files == "" {
		files = "[no file summary]"
	}
	diff := c.Diff
	if diff == "" {
		diff = "[no diff]"
	}
	return []api.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: "Write a commit message for these changes:\n\n" + files + "\n\n" + diff},
	}
}

// Suggest streams the model answer through onChunk and returns it
// normalised to a single line.
func (o *Ollama) Suggest(ctx context.Context, changes Changes, onChunk func(string)) (string, error) {
	stream := true
	req := &api.ChatRequest{
		Model:    o.model,
		Messages: buildMessages(changes),
		Stream:   &stream,
	}
	var b strings.Builder
	err := o.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		if chunk := resp.Message.Content; chunk != "" {
			b.WriteString(chunk)
			if onChunk != nil {
				onChunk(chunk)
			}
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("ollama chat (%s): %w", o.model, err)
	}
	msg := NormalizeSingleLine(b.String())
	if msg == "" {
		return "", fmt.Errorf("ollama chat (%s): empty response", o.model)
	}
	return msg, nil
}
