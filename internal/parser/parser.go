package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf16"

	stderrors "errors" // Standard errors package

	"github.com/buger/jsonparser"
	"github.com/mcncl/json2md/internal/errors" // Custom errors package
	"github.com/mcncl/json2md/internal/models"
)

// Parse reads a single JSON document from reader into a models.Document,
// keeping object keys in the order they appear in the input.
func Parse(reader io.Reader) (models.Document, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return models.Document{}, errors.NewInputError("failed to read input", err)
	}

	raw, err := decodeSingle(data)
	if err != nil {
		return models.Document{}, err
	}

	root, err := buildRoot(replaceLoneSurrogates(raw))
	if err != nil {
		return models.Document{}, errors.NewParsingError("failed to decode JSON", err)
	}
	return models.Document{Root: root}, nil
}

// decodeSingle validates data with encoding/json and returns the raw bytes of
// the first and only top-level value.
func decodeSingle(data []byte) (json.RawMessage, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	var raw json.RawMessage
	if err := decoder.Decode(&raw); err != nil {
		if stderrors.Is(err, io.EOF) {
			return nil, errors.NewParsingError("input is empty or contains only whitespace", errors.ErrEmptyInput)
		}
		var syntaxError *json.SyntaxError
		if stderrors.As(err, &syntaxError) {
			return nil, errors.NewParsingError(
				fmt.Sprintf("JSON syntax error at offset %d: %s", syntaxError.Offset, syntaxError.Error()),
				errors.ErrInvalidJSON,
			)
		}
		if stderrors.Is(err, io.ErrUnexpectedEOF) {
			return nil, errors.NewParsingError("unexpected end of JSON input", errors.ErrInvalidJSON)
		}
		return nil, errors.NewParsingError("failed to decode JSON", err)
	}

	// Only whitespace may follow the first value. More() alone misses a
	// stray closing brace, so attempt a second decode.
	var trailing json.RawMessage
	switch err := decoder.Decode(&trailing); {
	case err == nil:
		return nil, errors.NewParsingError("multiple JSON values found at the root", errors.ErrMultipleJSON)
	case !stderrors.Is(err, io.EOF):
		return nil, errors.NewParsingError("invalid trailing data after first JSON value", errors.ErrInvalidJSON)
	}

	return raw, nil
}

// replaceLoneSurrogates rewrites \u escapes of unpaired UTF-16 surrogates to
// \ufffd, which is what encoding/json decodes them to. jsonparser rejects
// them outright. data must be valid JSON; its length is unchanged.
func replaceLoneSurrogates(data []byte) []byte {
	if !bytes.Contains(data, []byte(`\u`)) {
		return data
	}

	var out []byte
	for i := 0; i < len(data); i++ {
		// Backslashes only occur inside strings, always followed by an escape.
		if data[i] != '\\' {
			continue
		}
		if data[i+1] != 'u' {
			i++
			continue
		}

		r := hexRune(data[i+2 : i+6])
		switch {
		case !utf16.IsSurrogate(r):
		case r < 0xDC00 && i+12 <= len(data) && data[i+6] == '\\' && data[i+7] == 'u' && isLowSurrogate(hexRune(data[i+8:i+12])):
			i += 6
		default:
			if out == nil {
				out = append([]byte(nil), data...)
			}
			copy(out[i:i+6], `\ufffd`)
		}
		i += 5
	}

	if out == nil {
		return data
	}
	return out
}

func isLowSurrogate(r rune) bool { return r >= 0xDC00 && r <= 0xDFFF }

// hexRune decodes the four hex digits of a \u escape.
func hexRune(digits []byte) rune {
	var r rune
	for _, c := range digits {
		r <<= 4
		switch {
		case c >= '0' && c <= '9':
			r |= rune(c - '0')
		case c >= 'a' && c <= 'f':
			r |= rune(c-'a') + 10
		case c >= 'A' && c <= 'F':
			r |= rune(c-'A') + 10
		}
	}
	return r
}

// valueType classifies a complete, validated JSON value by its first byte.
func valueType(raw []byte) jsonparser.ValueType {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return jsonparser.NotExist
	}
	switch trimmed[0] {
	case '{':
		return jsonparser.Object
	case '[':
		return jsonparser.Array
	case '"':
		return jsonparser.String
	case 't', 'f':
		return jsonparser.Boolean
	case 'n':
		return jsonparser.Null
	default:
		return jsonparser.Number
	}
}

// buildRoot converts the validated top-level value. Unlike the values handed
// to jsonparser callbacks, a root string still carries its quotes.
func buildRoot(raw []byte) (models.Value, error) {
	dataType := valueType(raw)
	if dataType == jsonparser.String {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return models.Value{}, err
		}
		return models.StringValue(s), nil
	}
	return build(bytes.TrimSpace(raw), dataType)
}

// build converts already-validated JSON bytes into a models.Value. For
// strings, data must be the raw contents between the quotes, which is what
// jsonparser hands to its callbacks.
func build(data []byte, dataType jsonparser.ValueType) (models.Value, error) {
	switch dataType {
	case jsonparser.Object:
		var members []models.Member
		err := jsonparser.ObjectEach(data, func(key []byte, value []byte, vt jsonparser.ValueType, _ int) error {
			// ObjectEach hands over keys already unescaped.
			child, err := build(value, vt)
			if err != nil {
				return err
			}
			members = append(members, models.Member{Key: string(key), Value: child})
			return nil
		})
		if err != nil {
			return models.Value{}, err
		}
		return models.ObjectValue(members...), nil

	case jsonparser.Array:
		var (
			items    []models.Value
			buildErr error
		)
		_, err := jsonparser.ArrayEach(data, func(value []byte, vt jsonparser.ValueType, _ int, err error) {
			if buildErr != nil {
				return
			}
			if err != nil {
				buildErr = err
				return
			}
			child, err := build(value, vt)
			if err != nil {
				buildErr = err
				return
			}
			items = append(items, child)
		})
		if err != nil {
			return models.Value{}, err
		}
		if buildErr != nil {
			return models.Value{}, buildErr
		}
		return models.ArrayValue(items...), nil

	case jsonparser.String:
		s, err := jsonparser.ParseString(data)
		if err != nil {
			return models.Value{}, err
		}
		return models.StringValue(s), nil

	case jsonparser.Number:
		return models.NumberValue(json.Number(data)), nil

	case jsonparser.Boolean:
		b, err := jsonparser.ParseBoolean(data)
		if err != nil {
			return models.Value{}, err
		}
		return models.BoolValue(b), nil

	case jsonparser.Null:
		return models.NullValue(), nil
	}

	return models.Value{}, fmt.Errorf("unsupported JSON value type %v", dataType)
}

// ParseString parses JSON from a string
func ParseString(jsonString string) (models.Document, error) {
	if strings.TrimSpace(jsonString) == "" {
		return models.Document{}, errors.NewInputError("input string is empty", errors.ErrEmptyInput)
	}
	return Parse(strings.NewReader(jsonString))
}

// ParseFile parses JSON from a file path
func ParseFile(filePath string) (models.Document, error) {
	if strings.TrimSpace(filePath) == "" {
		return models.Document{}, errors.NewInputError("file path is empty", errors.ErrInvalidFilePath)
	}
	file, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return models.Document{}, errors.NewInputError(
				fmt.Sprintf("file '%s' not found", filePath),
				errors.ErrFileNotFound,
			)
		}
		return models.Document{}, errors.NewInputError(
			fmt.Sprintf("failed to open file '%s'", filePath),
			err,
		)
	}
	defer func() {
		if err := file.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Error closing file: %v\n", err)
		}
	}()

	stat, err := file.Stat()
	if err != nil {
		return models.Document{}, errors.NewInputError(
			fmt.Sprintf("failed to get file stats for '%s'", filePath),
			err,
		)
	}
	if stat.Size() == 0 {
		return models.Document{}, errors.NewInputError(
			fmt.Sprintf("input file '%s' is empty", filePath),
			errors.ErrFileEmpty,
		)
	}

	return Parse(file)
}
