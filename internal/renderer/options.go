package renderer

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/mcncl/json2md/internal/errors"
	"github.com/mcncl/json2md/internal/models"
)

const (
	// LowestHeadingLevel and HighestHeadingLevel bound the levels Markdown
	// supports.
	LowestHeadingLevel  = 1
	HighestHeadingLevel = 6

	// DefaultMaxDepth is the nesting ceiling used when Options.MaxDepth is 0.
	DefaultMaxDepth = 1000
)

// ValueFormatter replaces the default rendering of scalar and array values.
// depth is the depth of the key that owns the value.
type ValueFormatter func(value models.Value, key string, depth int) string

// Overflow selects what happens to keys nested deeper than MaxHeadingLevel.
type Overflow string

const (
	// OverflowList switches to nested list items past the heading ceiling.
	OverflowList Overflow = "list"
	// OverflowClamp keeps emitting headings at MaxHeadingLevel.
	OverflowClamp Overflow = "clamp"
)

// Options configures Render. The zero value renders with the defaults:
// headings from level 1 to 6, no type annotations, array-of-objects
// promotion enabled, bullet lists and list overflow.
type Options struct {
	MinHeadingLevel int  `json:"minHeadingLevel"`
	MaxHeadingLevel int  `json:"maxHeadingLevel"`
	IncludeTypes    bool `json:"includeTypes"`
	// FlatArrays disables array-of-objects promotion so every array renders
	// as a flat bullet list.
	FlatArrays      bool           `json:"flatArrays"`
	UseOrderedLists bool           `json:"useOrderedLists"`
	ValueFormatter  ValueFormatter `json:"-"`
	Overflow        Overflow       `json:"overflow"`
	MaxDepth        int            `json:"maxDepth"`
}

// DefaultOptions returns the options Render uses for a zero Options value.
func DefaultOptions() Options {
	return Options{}.withDefaults()
}

// ProcessArrayObjects reports whether arrays whose first element is an
// object are promoted to headings or list items.
func (o Options) ProcessArrayObjects() bool {
	return !o.FlatArrays
}

func (o Options) withDefaults() Options {
	if o.MinHeadingLevel == 0 {
		o.MinHeadingLevel = LowestHeadingLevel
	}
	if o.MaxHeadingLevel == 0 {
		o.MaxHeadingLevel = HighestHeadingLevel
	}
	if o.Overflow == "" {
		o.Overflow = OverflowList
	}
	if o.MaxDepth == 0 {
		o.MaxDepth = DefaultMaxDepth
	}
	return o
}

// Validate checks heading bounds and the remaining settings after defaults
// are applied. Failures are option errors wrapping ErrLevelRange or
// ErrLevelOrder where the heading levels are at fault.
func (o Options) Validate() error {
	o = o.withDefaults()

	err := validation.ValidateStruct(&o,
		validation.Field(&o.MinHeadingLevel, validation.Min(LowestHeadingLevel), validation.Max(HighestHeadingLevel)),
		validation.Field(&o.MaxHeadingLevel, validation.Min(LowestHeadingLevel), validation.Max(HighestHeadingLevel)),
	)
	if err != nil {
		return errors.NewOptionError(err.Error(), errors.ErrLevelRange)
	}

	if o.MinHeadingLevel > o.MaxHeadingLevel {
		return errors.NewOptionError(
			fmt.Sprintf("minHeadingLevel %d is greater than maxHeadingLevel %d", o.MinHeadingLevel, o.MaxHeadingLevel),
			errors.ErrLevelOrder,
		)
	}

	err = validation.ValidateStruct(&o,
		validation.Field(&o.Overflow, validation.In(OverflowList, OverflowClamp)),
		validation.Field(&o.MaxDepth, validation.Min(1)),
	)
	if err != nil {
		return errors.NewOptionError(err.Error(), err)
	}
	return nil
}
