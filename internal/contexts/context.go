// Package contexts resolves the customer context that grounds dispatch and
// synthesis prompts: a cached snapshot, or a one-time extraction from the
// customer's domain.
package contexts

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"
	"unicode"
)

// Field is one key/value entry of a Context.
type Field struct {
	Key   string
	Value any
}

// Context is an ordered set of customer facts. A nil Context means no
// context is available.
type Context []Field

// Get returns the value for key.
func (c Context) Get(key string) (any, bool) {
	for _, f := range c {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// MarshalJSON encodes the context as a JSON object, preserving field order.
func (c Context) MarshalJSON() ([]byte, error) {
	if c == nil {
		return []byte("null"), nil
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range c {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(f.Value)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", f.Key, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Decode parses a JSON object into a Context in document order.
// Anything other than a single object is an error.
func Decode(data []byte) (Context, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("expected object, got %v", tok)
	}

	c := Context{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, _ := tok.(string)

		var val any
		if err := dec.Decode(&val); err != nil {
			return nil, fmt.Errorf("decode %s: %w", key, err)
		}
		c = append(c, Field{Key: key, Value: val})
	}

	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err == nil {
		return nil, fmt.Errorf("trailing data after object")
	}

	return c, nil
}

// FromMap builds a Context from m with keys in sorted order.
func FromMap(m map[string]any) Context {
	c := make(Context, 0, len(m))
	for _, k := range slices.Sorted(maps.Keys(m)) {
		c = append(c, Field{Key: k, Value: m[k]})
	}
	return c
}

// Format renders the context for prompt inclusion, one "Readable Key: value"
// line per field.
func Format(c Context) string {
	if c == nil {
		return "No context available"
	}

	lines := make([]string, len(c))
	for i, f := range c {
		lines[i] = readableKey(f.Key) + ": " + formatValue(f.Value)
	}
	return strings.Join(lines, "\n")
}

func readableKey(key string) string {
	words := strings.Fields(strings.ReplaceAll(key, "_", " "))
	for i, w := range words {
		runes := []rune(strings.ToLower(w))
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		return val
	case map[string]any, []any:
		data, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(data)
	default:
		return fmt.Sprint(val)
	}
}
