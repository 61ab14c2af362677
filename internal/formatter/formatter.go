package formatter

import (
	"strings"

	"github.com/mcncl/json2md/internal/models"
)

// Formatter is responsible for tidying rendered Markdown
type Formatter struct{}

// NewFormatter creates a new Formatter instance
func NewFormatter() *Formatter {
	return &Formatter{}
}

// Format joins rendered blocks into a document. A block is one emitted
// piece of output and may span several lines. Whitespace-only blocks, and
// whitespace-only lines at the start or end of a block, are separators: runs
// of them collapse to one blank line and they are dropped at either end of
// the document. Lines inside a block are kept as written, so value text is
// never rewritten. Non-empty output ends with exactly one newline.
func (f *Formatter) Format(blocks []string) string {
	out := make([]string, 0, len(blocks))
	pendingBlank := false

	// Leading separators are dropped outright.
	separate := func() { pendingBlank = len(out) > 0 }

	for _, block := range blocks {
		lines := strings.Split(block, "\n")
		start, end := 0, len(lines)
		for start < end && isBlank(lines[start]) {
			start++
		}
		for end > start && isBlank(lines[end-1]) {
			end--
		}

		if start == end {
			separate()
			continue
		}
		if start > 0 {
			separate()
		}
		if pendingBlank {
			out = append(out, "")
			pendingBlank = false
		}
		out = append(out, lines[start:end]...)
		if end < len(lines) {
			separate()
		}
	}

	if len(out) == 0 {
		return ""
	}
	return strings.Join(out, "\n") + "\n"
}

func isBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}

// Pretty is a value formatter preset that gives every leaf value room to
// breathe: scalars are followed by a blank line, and array items are
// separated by blank lines with nested objects and arrays shown as indented
// JSON.
func Pretty(value models.Value, key string, depth int) string {
	if !value.IsArray() {
		return value.Text() + "\n"
	}

	items := make([]string, 0, value.Len())
	for _, item := range value.Items() {
		if item.IsObject() || item.IsArray() {
			items = append(items, "- "+indentContinuation(item.IndentJSON("  "), "  "))
			continue
		}
		items = append(items, "- "+item.Text())
	}
	return strings.Join(items, "\n\n") + "\n"
}

// indentContinuation prefixes every line after the first so a multi-line
// block stays inside its list item.
func indentContinuation(text, prefix string) string {
	return strings.ReplaceAll(text, "\n", "\n"+prefix)
}
