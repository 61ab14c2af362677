// Package renderer turns a JSON value into a hierarchical Markdown document.
//
// Object keys become headings whose level follows their nesting depth. Once
// the depth passes the configured heading ceiling, keys become nested list
// items instead. Arrays whose elements are objects are promoted to their own
// level, labelled by a shared identifier field when one exists.
//
// Render is pure: it performs no I/O, does not log and keeps all state on
// the call stack, so concurrent calls are safe.
package renderer

import (
	"fmt"
	"strconv"

	"github.com/mcncl/json2md/internal/errors"
	"github.com/mcncl/json2md/internal/formatter"
	"github.com/mcncl/json2md/internal/models"
)

// Render converts value to Markdown. Options are validated before any
// output is produced.
func Render(value models.Value, opts Options) (out string, err error) {
	if err := opts.Validate(); err != nil {
		return "", err
	}

	defer func() {
		if r := recover(); r != nil {
			out = ""
			err = errors.NewRenderError("unexpected failure while rendering", fmt.Errorf("%v", r))
		}
	}()

	r := &renderer{opts: opts.withDefaults()}
	if err := r.root(value); err != nil {
		return "", err
	}
	return formatter.NewFormatter().Format(r.blocks), nil
}

// RenderDocument renders the root of a parsed document.
func RenderDocument(doc models.Document, opts Options) (string, error) {
	return Render(doc.Root, opts)
}

type renderer struct {
	opts   Options
	blocks []string
}

// emit appends output blocks. An empty block separates its neighbours.
func (r *renderer) emit(blocks ...string) {
	r.blocks = append(r.blocks, blocks...)
}

func (r *renderer) mode(depth int) Mode {
	return ModeFor(depth, r.opts)
}

func (r *renderer) marker(position int) string {
	if r.opts.UseOrderedLists {
		return strconv.Itoa(position) + ". "
	}
	return "- "
}

// enter guards the recursion ceiling for a container rendered at depth.
func (r *renderer) enter(depth int) error {
	nesting := depth - r.opts.MinHeadingLevel + 1
	if nesting > r.opts.MaxDepth {
		return errors.NewRecursionError(
			fmt.Sprintf("nesting depth %d exceeds the limit of %d", nesting, r.opts.MaxDepth),
		)
	}
	return nil
}

// contained guards a value written out as JSON text from depth. The value's
// own level and every level inside it count towards the ceiling.
func (r *renderer) contained(value models.Value, depth int) error {
	limit := r.opts.MaxDepth - (depth - r.opts.MinHeadingLevel)
	if value.DeeperThan(limit) {
		return errors.NewRecursionError(
			fmt.Sprintf("value at nesting depth %d exceeds the limit of %d", depth-r.opts.MinHeadingLevel+1, r.opts.MaxDepth),
		)
	}
	return nil
}

// root renders a top-level value. Only objects carry keys; other roots are
// rendered as though they were the value of a key one level above the
// minimum heading level.
func (r *renderer) root(value models.Value) error {
	depth := r.opts.MinHeadingLevel
	switch value.Kind() {
	case models.Object:
		return r.object(value, depth)
	case models.Array:
		if f := r.opts.ValueFormatter; f != nil {
			if err := r.contained(value, depth); err != nil {
				return err
			}
			r.emit(f(value, "", depth))
			return nil
		}
		return r.array(value, depth-1)
	case models.Null:
		r.emit("null")
	default:
		r.scalar(value, "", depth)
	}
	return nil
}

func (r *renderer) object(value models.Value, depth int) error {
	if err := r.enter(depth); err != nil {
		return err
	}
	for i, m := range value.Members() {
		if err := r.member(m.Key, m.Value, depth, i+1); err != nil {
			return err
		}
	}
	return nil
}

// member renders a single key and its value. position is the 1-based index
// of the key among its siblings.
func (r *renderer) member(key string, value models.Value, depth, position int) error {
	mode := r.mode(depth)
	if mode.IsHeading() {
		r.emit(mode.Heading(key), "")
		if err := r.headingValue(key, value, depth); err != nil {
			return err
		}
		r.emit("")
		return nil
	}

	label := mode.Indent() + r.marker(position) + "**" + key + "**:"
	return r.listValue(label, key, value, depth)
}

func (r *renderer) headingValue(key string, value models.Value, depth int) error {
	switch value.Kind() {
	case models.Null:
		r.emit("null")
	case models.Object:
		return r.object(value, depth+1)
	case models.Array:
		if f := r.opts.ValueFormatter; f != nil {
			if err := r.contained(value, depth+1); err != nil {
				return err
			}
			r.emit(f(value, key, depth))
			return nil
		}
		return r.array(value, depth)
	default:
		r.scalar(value, key, depth)
	}
	return nil
}

func (r *renderer) scalar(value models.Value, key string, depth int) {
	if f := r.opts.ValueFormatter; f != nil {
		r.emit(f(value, key, depth))
		return
	}
	if r.opts.IncludeTypes {
		r.emit(typeLine(value), "")
	}
	r.emit(value.Text())
}

// listValue renders the value of a list-mode key. Leaf values follow the
// label on the same line; nested blocks start on the next line.
func (r *renderer) listValue(label, key string, value models.Value, depth int) error {
	f := r.opts.ValueFormatter

	switch value.Kind() {
	case models.Null:
		r.emit(label + " null")
	case models.Object:
		r.emit(label)
		return r.object(value, depth+1)
	case models.Array:
		if f != nil {
			if err := r.contained(value, depth+1); err != nil {
				return err
			}
			r.emit(label + " " + f(value, key, depth))
			return nil
		}
		r.emit(label)
		return r.array(value, depth)
	default:
		if f != nil {
			r.emit(label + " " + f(value, key, depth))
			return nil
		}
		text := value.Text()
		if r.opts.IncludeTypes {
			text = typeLine(value) + " " + text
		}
		r.emit(label + " " + text)
	}
	return nil
}

// array renders the array owned by a key at depth.
func (r *renderer) array(value models.Value, depth int) error {
	items := value.Items()
	if r.opts.ProcessArrayObjects() && len(items) > 0 && items[0].IsObject() {
		return r.arrayOfObjects(items, depth+1)
	}
	if err := r.contained(value, depth+1); err != nil {
		return err
	}

	indent := ""
	if mode := r.mode(depth); !mode.IsHeading() {
		indent = mode.Indent() + IndentUnit
	}
	for _, item := range items {
		r.emit(indent + "- " + item.Text())
	}
	return nil
}

// arrayOfObjects promotes each element to its own heading or list item at
// depth, labelled by the shared identifier field or by position.
func (r *renderer) arrayOfObjects(items []models.Value, depth int) error {
	if err := r.enter(depth); err != nil {
		return err
	}

	mode := r.mode(depth)
	field, found := IdentifierField(items)

	for i, item := range items {
		label := "Item " + strconv.Itoa(i+1)
		body := item
		if found {
			id, _ := item.Get(field)
			label = id.Text()
			body = item.Without(field)
		}
		if !body.IsObject() {
			if err := r.contained(body, depth+1); err != nil {
				return err
			}
		}

		if mode.IsHeading() {
			// A previous element may end in list items.
			r.emit("", mode.Heading(label), "")
			if !body.IsObject() {
				r.emit(body.Text(), "")
				continue
			}
		} else {
			line := mode.Indent() + r.marker(i+1) + "**" + label + "**"
			if !body.IsObject() {
				r.emit(line + ": " + body.Text())
				continue
			}
			r.emit(line)
		}

		if body.Len() == 0 {
			continue
		}
		if err := r.object(body, depth+1); err != nil {
			return err
		}
	}
	return nil
}

func typeLine(value models.Value) string {
	return "*Type: " + value.Kind().String() + "*"
}
