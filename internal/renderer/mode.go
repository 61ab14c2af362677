package renderer

import "strings"

// IndentUnit is the indentation added per list nesting level. Four spaces
// nest a child under both "- " and ordered markers up to "99. ".
const IndentUnit = "    "

// ModeKind distinguishes heading rendering from list rendering.
type ModeKind int

const (
	HeadingMode ModeKind = iota
	ListMode
)

// Mode is how keys at a given depth are rendered.
type Mode struct {
	Kind ModeKind
	// Level is the heading level, set in HeadingMode.
	Level int
	// IndentDepth is the number of IndentUnits before the list marker, set
	// in ListMode.
	IndentDepth int
}

// ModeFor derives the render mode for depth. Keys stay headings while depth
// is within MaxHeadingLevel and become list items beyond it, unless the
// overflow is OverflowClamp.
func ModeFor(depth int, opts Options) Mode {
	opts = opts.withDefaults()

	if depth <= opts.MaxHeadingLevel || opts.Overflow == OverflowClamp {
		return Mode{Kind: HeadingMode, Level: clamp(depth, opts.MinHeadingLevel, opts.MaxHeadingLevel)}
	}
	return Mode{Kind: ListMode, IndentDepth: depth - opts.MaxHeadingLevel - 1}
}

// IsHeading reports whether m renders headings.
func (m Mode) IsHeading() bool { return m.Kind == HeadingMode }

// Indent returns the leading whitespace for list items in m.
func (m Mode) Indent() string {
	if m.Kind != ListMode || m.IndentDepth <= 0 {
		return ""
	}
	return strings.Repeat(IndentUnit, m.IndentDepth)
}

// Heading returns a heading line for text at m's level.
func (m Mode) Heading(text string) string {
	return strings.Repeat("#", m.Level) + " " + text
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
