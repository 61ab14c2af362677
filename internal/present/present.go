// Package present turns rendered Markdown into the form it is delivered in:
// the Markdown itself, an HTML fragment, or styled terminal output.
package present

import (
	"bytes"
	"fmt"

	"github.com/charmbracelet/glamour"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
)

// Format names an output presentation.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
	FormatTerminal Format = "terminal"
)

const (
	// DefaultStyle picks a dark or light glamour style from the terminal.
	DefaultStyle = "auto"
	// DefaultWidth is the terminal word-wrap width.
	DefaultWidth = 80
)

// Settings configures Render.
type Settings struct {
	Format Format
	Style  string
	Width  int
}

// ContentType is the MIME type of output in format f.
func (f Format) ContentType() string {
	switch f {
	case FormatHTML:
		return "text/html; charset=utf-8"
	case FormatTerminal:
		return "text/plain; charset=utf-8"
	default:
		return "text/markdown; charset=utf-8"
	}
}

// Render presents markdown according to s. An empty format is Markdown.
func Render(markdown string, s Settings) (string, error) {
	switch s.Format {
	case "", FormatMarkdown:
		return markdown, nil
	case FormatHTML:
		return HTML(markdown)
	case FormatTerminal:
		return Terminal(markdown, s.Style, s.Width)
	default:
		return "", fmt.Errorf("unknown output format %q", s.Format)
	}
}

var engine = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithParserOptions(parser.WithAutoHeadingID()),
)

// HTML converts markdown to an HTML fragment. Raw HTML carried in JSON
// strings is omitted rather than passed through.
func HTML(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := engine.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("failed to convert markdown to html: %w", err)
	}
	return buf.String(), nil
}

// Terminal renders markdown with glamour for display in a terminal.
func Terminal(markdown, style string, width int) (string, error) {
	if style == "" {
		style = DefaultStyle
	}
	if width <= 0 {
		width = DefaultWidth
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create renderer: %w", err)
	}

	out, err := r.Render(markdown)
	if err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return out, nil
}
