// Package converter reads JSON from files or strings, renders it to
// Markdown, presents it in the requested format and optionally writes the
// result.
package converter

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mcncl/json2md/internal/errors"
	"github.com/mcncl/json2md/internal/models"
	"github.com/mcncl/json2md/internal/parser"
	"github.com/mcncl/json2md/internal/present"
	"github.com/mcncl/json2md/internal/renderer"
)

// Converter runs a conversion end to end. The zero Converter renders
// Markdown with default options.
type Converter struct {
	Options      renderer.Options
	Presentation present.Settings
}

// ConvertString parses jsonText and renders it to Markdown with opts.
func ConvertString(jsonText string, opts renderer.Options) (string, error) {
	return Converter{Options: opts}.String(jsonText)
}

// ConvertFile renders the JSON file at input to Markdown. When output is
// non-empty the Markdown is also written there; the rendered text is
// returned either way.
func ConvertFile(input, output string, opts renderer.Options) (string, error) {
	return Converter{Options: opts}.File(input, output)
}

// String parses jsonText, renders and presents it.
func (c Converter) String(jsonText string) (string, error) {
	if err := c.Options.Validate(); err != nil {
		return "", err
	}

	doc, err := parser.ParseString(jsonText)
	if err != nil {
		return "", err
	}
	return c.Document(doc)
}

// File converts the JSON file at input and writes the result to output
// unless output is empty.
func (c Converter) File(input, output string) (string, error) {
	// Options are checked before touching the file system
	if err := c.Options.Validate(); err != nil {
		return "", err
	}

	doc, err := parser.ParseFile(input)
	if err != nil {
		return "", err
	}

	out, err := c.Document(doc)
	if err != nil {
		return "", err
	}

	if output != "" {
		if err := WriteFile(output, out); err != nil {
			return "", err
		}
	}
	return out, nil
}

// Document renders an already parsed document and presents it.
func (c Converter) Document(doc models.Document) (string, error) {
	markdown, err := renderer.RenderDocument(doc, c.Options)
	if err != nil {
		return "", err
	}

	out, err := present.Render(markdown, c.Presentation)
	if err != nil {
		return "", errors.NewRenderError(fmt.Sprintf("failed to produce %s output", c.format()), err)
	}
	return out, nil
}

func (c Converter) format() present.Format {
	if c.Presentation.Format == "" {
		return present.FormatMarkdown
	}
	return c.Presentation.Format
}

// WriteFile writes content to path with mode 0644.
func WriteFile(path, content string) error {
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return errors.NewOutputError(fmt.Sprintf("failed to write to file '%s'", path), err)
	}
	return nil
}

// DefaultOutputPath returns the Markdown path next to input: the input's
// base name with its extension replaced by .md.
func DefaultOutputPath(input string) string {
	base := filepath.Base(input)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(filepath.Dir(input), base+".md")
}
