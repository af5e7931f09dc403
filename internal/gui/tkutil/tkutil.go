// Package tkutil wraps raw Tcl evaluation for the few Tk features the
// typed widget API does not cover: linked variables, modal waits and
// progressbar control.
package tkutil

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	evalext "modernc.org/tk9.0/extensions/eval"
)

func Eval(format string, a ...any) (string, error) {
	eval := fmt.Sprintf(format, a...)
	r, err := evalext.Eval(eval)
	if err != nil {
		return "", fmt.Errorf("tk eval=%s; err=%w", eval, err)
	}
	return r, nil
}

func EvalOrEmpty(format string, a ...any) string {
	out, err := Eval(format, a...)
	if err != nil {
		slog.Debug("tk eval or empty", slog.Any("error", err))
		return ""
	}
	return out
}

// Quote makes s a single Tcl word. Strings without braces or backslashes
// are brace-quoted; others are backslash-escaped.
func Quote(s string) string {
	if !strings.ContainsAny(s, "{}\\") {
		return "{" + s + "}"
	}
	var b strings.Builder
	b.Grow(len(s) * 2)
	for _, r := range s {
		switch r {
		case '\n':
			b.WriteString(`\n`)
			continue
		case '\t':
			b.WriteString(`\t`)
			continue
		case '{', '}', '\\', '[', ']', '$', '"', ';', ' ':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// List builds a Tcl list of items.
func List(items ...string) string {
	quoted := make([]string, len(items))
	for i, it := range items {
		quoted[i] = Quote(it)
	}
	return strings.Join(quoted, " ")
}

// SetVar assigns a global Tcl variable.
func SetVar(name, value string) {
	if _, err := Eval("set ::%s %s", name, Quote(value)); err != nil {
		slog.Debug("tk set var", slog.String("name", name), slog.Any("error", err))
	}
}

// Var reads a global Tcl variable, "" when unset.
func Var(name string) string {
	return EvalOrEmpty("if {[info exists ::%[1]s]} {set ::%[1]s}", name)
}

// Bool reads a checkbutton variable.
func Bool(name string) bool {
	return Atoi(Var(name)) != 0
}

// SetBool assigns a checkbutton variable.
func SetBool(name string, v bool) {
	if v {
		SetVar(name, "1")
	} else {
		SetVar(name, "0")
	}
}

func Atoi(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		if f, ferr := strconv.ParseFloat(raw, 64); ferr == nil {
			return int(f)
		}
		return 0
	}
	return v
}
