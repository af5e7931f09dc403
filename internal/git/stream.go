package git

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
)

// StreamHandlers receive output while a streamed command runs. Nil handlers
// are skipped.
type StreamHandlers struct {
	OnLine     func(line string)
	OnProgress func(percent int, stage string)
	OnHint     func(hint string)
}

// Streamer runs a single git process and forwards its output line by line.
type Streamer interface {
	Stream(root string, args []string, h StreamHandlers) (int, error)
}

// Stream runs git --no-pager args in root with stderr merged into stdout and
// interactive prompts disabled. Lines are delivered as they are produced;
// git's carriage-return progress updates count as line breaks. The exit code
// is returned once output is exhausted and the process has exited.
func (r *Runner) Stream(root string, args []string, h StreamHandlers) (int, error) {
	if root == "" {
		return -1, fmt.Errorf("repository root not set")
	}
	argv := r.argv(args)
	emitLine(h, "$ "+QuoteArgs(argv))

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Dir = root
	cmd.Env = streamEnv(os.Environ())
	pr, pw := io.Pipe()
	cmd.Stdout = pw
	cmd.Stderr = pw
	if err := cmd.Start(); err != nil {
		pw.Close()
		pr.Close()
		return -1, fmt.Errorf("start %s: %w", QuoteArgs(argv), err)
	}

	waitErr := make(chan error, 1)
	go func() {
		err := cmd.Wait()
		pw.CloseWithError(io.EOF)
		waitErr <- err
	}()

	scanner := bufio.NewScanner(pr)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	scanner.Split(scanLinesCR)
	for scanner.Scan() {
		line := strings.TrimRight(decodeOutput(scanner.Bytes()), " ")
		if line == "" {
			continue
		}
		emitLine(h, line)
	}
	if err := scanner.Err(); err != nil {
		slog.Debug("stream read", slog.String("cmd", QuoteArgs(argv)), slog.Any("error", err))
		// Keep draining so Wait is not blocked on a full pipe.
		_, _ = io.Copy(io.Discard, pr)
	}

	err := <-waitErr
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode(), nil
		}
		return -1, fmt.Errorf("wait %s: %w", QuoteArgs(argv), err)
	}
	return 0, nil
}

func emitLine(h StreamHandlers, line string) {
	info := ClassifyLine(line)
	if h.OnLine != nil {
		h.OnLine(line)
	}
	if info.HasPercent && h.OnProgress != nil {
		h.OnProgress(info.Percent, info.Stage)
	}
	if info.Hint != "" && h.OnHint != nil {
		h.OnHint(info.Hint)
	}
}

// streamEnv disables terminal prompts and pagers unless the user already
// set them.
func streamEnv(base []string) []string {
	env := append([]string(nil), base...)
	for _, kv := range [][2]string{
		{"GIT_TERMINAL_PROMPT", "0"},
		{"GIT_PAGER", "cat"},
	} {
		if !hasEnv(env, kv[0]) {
			env = append(env, kv[0]+"="+kv[1])
		}
	}
	return env
}

func hasEnv(env []string, key string) bool {
	prefix := key + "="
	for _, kv := range env {
		if strings.HasPrefix(kv, prefix) {
			return true
		}
	}
	return false
}

// scanLinesCR is bufio.ScanLines that also splits on a lone '\r'. A '\r'
// ending the buffered data breaks the line at once, since git pauses right
// after progress updates; a "\r\n" split across reads then yields an extra
// empty token.
func scanLinesCR(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		if data[i] == '\r' && i+1 < len(data) && data[i+1] == '\n' {
			return i + 2, data[:i], nil
		}
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
