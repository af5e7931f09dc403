package gui

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	. "modernc.org/tk9.0"
)

const commandPrefix = "$ "

// Log line tags configured on the log text widget.
const (
	tagError   = "logError"
	tagWarn    = "logWarn"
	tagHint    = "logHint"
	tagInfo    = "logInfo"
	tagHeader  = "logHeader"
	tagCommand = "logCommand"
)

// logLineTag picks the whole-line tag for a log line, "" for plain output.
func logLineTag(line string) string {
	switch {
	case strings.HasPrefix(line, "[ERROR]"):
		return tagError
	case strings.HasPrefix(line, "[WARN]"):
		return tagWarn
	case strings.HasPrefix(line, "[HINT]"):
		return tagHint
	case strings.HasPrefix(line, "[INFO]"):
		return tagInfo
	case strings.HasPrefix(line, "==> "):
		return tagHeader
	case strings.HasPrefix(line, commandPrefix):
		return tagCommand
	default:
		return ""
	}
}

type colorSpan struct {
	start, end int // rune columns
	color      string
}

// commandSpans tokenises the shell command of a "$ git ..." echo line and
// returns the coloured spans, in columns of the full line.
func commandSpans(lexer chroma.Lexer, style *chroma.Style, line string) []colorSpan {
	if lexer == nil || style == nil || !strings.HasPrefix(line, commandPrefix) {
		return nil
	}
	code := strings.TrimPrefix(line, commandPrefix)
	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return nil
	}
	var spans []colorSpan
	col := utf8.RuneCountInString(commandPrefix)
	for _, token := range iterator.Tokens() {
		if token.Value == "" {
			continue
		}
		length := utf8.RuneCountInString(strings.TrimRight(token.Value, "\n"))
		if color := colorFromEntry(style.Get(token.Type)); color != "" && length > 0 {
			spans = append(spans, colorSpan{start: col, end: col + length, color: color})
		}
		col += utf8.RuneCountInString(token.Value)
	}
	return spans
}

func commandLexer() chroma.Lexer {
	lexer := lexers.Get("bash")
	if lexer == nil {
		lexer = lexers.Fallback
	}
	return chroma.Coalesce(lexer)
}

func styleForPalette(p colorPalette) *chroma.Style {
	if p.isDark() {
		if st := styles.Get("github-dark"); st != nil {
			return st
		}
	} else {
		if st := styles.Get("github"); st != nil {
			return st
		}
	}
	return styles.Fallback
}

func colorFromEntry(entry chroma.StyleEntry) string {
	if entry.Colour.IsSet() {
		col := entry.Colour.String()
		col = strings.TrimPrefix(strings.ToLower(col), "#")
		return "#" + col
	}
	return ""
}

func (w *window) configureLogTags() {
	p := w.palette
	w.ui.log.TagConfigure(tagError, Foreground(p.LogError))
	w.ui.log.TagConfigure(tagWarn, Foreground(p.LogWarn))
	w.ui.log.TagConfigure(tagHint, Foreground(p.LogHint))
	w.ui.log.TagConfigure(tagInfo, Foreground(p.LogInfo))
	w.ui.log.TagConfigure(tagHeader, Foreground(p.LogHeader), Font(CourierFont(), 10, "bold"))
}

// highlightLogLine tags line number lineNo of the log widget.
func (w *window) highlightLogLine(lineNo int, line string) {
	tag := logLineTag(line)
	if tag == "" {
		return
	}
	if tag != tagCommand {
		w.ui.log.TagAdd(tag, fmt.Sprintf("%d.0", lineNo), fmt.Sprintf("%d.end", lineNo))
		return
	}
	if !w.cfg.syntaxHighlight {
		return
	}
	for _, sp := range commandSpans(w.lexer, w.style, line) {
		w.ui.log.TagAdd(w.syntaxTagForColor(sp.color), fmt.Sprintf("%d.%d", lineNo, sp.start), fmt.Sprintf("%d.%d", lineNo, sp.end))
	}
}

func (w *window) syntaxTagForColor(color string) string {
	if tag, ok := w.syntaxTags[color]; ok {
		return tag
	}
	tag := fmt.Sprintf("syntax_%d", len(w.syntaxTags))
	w.ui.log.TagConfigure(tag, Foreground(color))
	w.syntaxTags[color] = tag
	return tag
}
