package render

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"

	"github.com/tkohara/ccsm/internal/transcript"
)

const (
	colorReset   = "\033[0m"
	colorUser    = "\033[1;34m" // bold blue
	colorAssist  = "\033[1;32m" // bold green
	colorSystem  = "\033[2;35m" // dim magenta
	colorDim     = "\033[2m"
	colorHit     = "\033[43m"   // yellow background
	colorBoldRed = "\033[1;31m" // bold red for keyword highlights
)

type Options struct {
	HitSeq   int    // message sequence to highlight (-1 = none)
	Context  int    // messages before/after hit to show (<0 = all)
	Width    int    // wrap width (0 = no wrap)
	ShowMeta bool   // render meta placeholders instead of suppressing them
	Query    string // search query for keyword highlighting
}

// fts5Operators are FTS5 operators that should not be highlighted as keywords.
var fts5Operators = map[string]bool{
	"AND": true, "OR": true, "NOT": true, "NEAR": true,
	"and": true, "or": true, "not": true, "near": true,
}

// highlightKeywords wraps case-insensitive matches of query terms in bold red ANSI codes.
func highlightKeywords(text, query string) string {
	if query == "" {
		return text
	}
	terms := strings.Fields(query)
	var filtered []string
	for _, t := range terms {
		if !fts5Operators[t] {
			filtered = append(filtered, t)
		}
	}
	if len(filtered) == 0 {
		return text
	}
	for _, term := range filtered {
		lower := strings.ToLower(term)
		i := 0
		for i < len(text) {
			idx := strings.Index(strings.ToLower(text[i:]), lower)
			if idx < 0 {
				break
			}
			pos := i + idx
			orig := text[pos : pos+len(term)]
			replacement := colorBoldRed + orig + colorReset
			text = text[:pos] + replacement + text[pos+len(term):]
			i = pos + len(replacement)
		}
	}
	return text
}

// indentLines prepends each line of text with the given prefix.
func indentLines(text, prefix string) string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}

// wrapLine breaks a single line into multiple lines that fit within maxWidth
// visible columns, correctly skipping ANSI escape sequences when measuring width.
func wrapLine(line string, maxWidth int) []string {
	if maxWidth <= 0 {
		return []string{line}
	}

	var result []string
	var cur strings.Builder
	visW := 0

	i := 0
	for i < len(line) {
		// check for ANSI escape sequence: ESC[ ... m
		if i+1 < len(line) && line[i] == '\033' && line[i+1] == '[' {
			j := i + 2
			for j < len(line) && line[j] != 'm' {
				j++
			}
			if j < len(line) {
				j++ // include 'm'
			}
			cur.WriteString(line[i:j])
			i = j
			continue
		}

		r, size := utf8.DecodeRuneInString(line[i:])
		rw := runewidth.RuneWidth(r)

		if visW+rw > maxWidth {
			result = append(result, cur.String())
			cur.Reset()
			visW = 0
		}

		cur.WriteRune(r)
		visW += rw
		i += size
	}

	if cur.Len() > 0 {
		result = append(result, cur.String())
	}

	if len(result) == 0 {
		return []string{""}
	}
	return result
}

// visible filters the expanded message list down to what the terminal
// shows: meta placeholders and messages with no extractable text are
// suppressed unless ShowMeta asks for them. The returned positions are
// the sequence numbers the index assigns, so FTS hits line up.
func visible(msgs []transcript.Message, showMeta bool) []transcript.Message {
	var out []transcript.Message
	for _, m := range msgs {
		if m.Text() == "" && !(showMeta && m.IsMeta) {
			continue
		}
		out = append(out, m)
	}
	return out
}

// Conversation renders a session's messages and returns the content and
// the 0-based line number of the hit message header (-1 if no hit).
func Conversation(header string, msgs []transcript.Message, opts Options) (string, int) {
	shown := visible(msgs, opts.ShowMeta)

	if len(shown) == 0 {
		return "(empty session)", -1
	}

	// compute the context window around the hit
	start, end := 0, len(shown)
	hitIdx := -1
	if opts.HitSeq >= 0 && opts.HitSeq < len(shown) {
		hitIdx = opts.HitSeq
	}
	if hitIdx >= 0 && opts.Context >= 0 {
		if opts.Context == 0 {
			opts.Context = 10
		}
		start = hitIdx - opts.Context
		if start < 0 {
			start = 0
		}
		end = hitIdx + opts.Context + 1
		if end > len(shown) {
			end = len(shown)
		}
	}

	var b strings.Builder
	hitLine := -1
	lineCount := 0
	separator := colorDim + "--------------------------------------------------" + colorReset
	wrapW := opts.Width

	writeLine := func(s string) {
		wrapped := wrapLine(s, wrapW)
		for _, wl := range wrapped {
			b.WriteString(wl)
			b.WriteString("\n")
			lineCount++
		}
	}

	if header != "" {
		writeLine(fmt.Sprintf("%s--- %s ---%s", colorDim, header, colorReset))
	}

	if start > 0 {
		writeLine(fmt.Sprintf("%s... (%d messages before) ...%s", colorDim, start, colorReset))
	}

	for i := start; i < end; i++ {
		m := shown[i]
		isHit := i == hitIdx

		if i > start {
			writeLine(separator)
		}

		if isHit {
			hitLine = lineCount
		}

		var roleColor, roleLabel string
		switch m.Role {
		case "user":
			roleColor = colorUser
			roleLabel = "USER"
		case "assistant":
			roleColor = colorAssist
			roleLabel = "ASST"
		case "system":
			roleColor = colorSystem
			roleLabel = "SYS"
		default:
			roleColor = colorDim
			roleLabel = strings.ToUpper(m.Role)
		}

		if isHit {
			writeLine(fmt.Sprintf("%s>> %s > %s <<%s", colorHit, roleLabel, m.Timestamp, colorReset))
		} else {
			writeLine(fmt.Sprintf("%s%s >%s %s%s%s", roleColor, roleLabel, colorReset, colorDim, m.Timestamp, colorReset))
		}

		text := m.Text()
		if m.IsMeta {
			text = colorDim + "(meta)" + colorReset
		}
		text = highlightKeywords(text, opts.Query)
		text = indentLines(text, "  ")

		for _, tl := range strings.Split(text, "\n") {
			writeLine(tl)
		}
		writeLine("") // blank line after message
	}

	if end < len(shown) {
		writeLine(fmt.Sprintf("%s... (%d messages after) ...%s", colorDim, len(shown)-end, colorReset))
	}

	return b.String(), hitLine
}
