package formatting

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	fenceRegex = regexp.MustCompile("```json\\s*|\\s*```|```")
	blockRegex = regexp.MustCompile(`\{[^{}]*(?:\{[^{}]*\}[^{}]*)*\}`)
)

// Reply is a model response that is either an already-structured mapping
// or free text. Exactly one of the two forms is populated.
type Reply struct {
	fields map[string]any
	text   string
	typed  bool
}

// StructuredReply wraps a mapping the model (or its client) already decoded.
func StructuredReply(fields map[string]any) Reply {
	return Reply{fields: fields, typed: true}
}

// TextReply wraps raw model output.
func TextReply(text string) Reply {
	return Reply{text: text}
}

// Structured reports whether the reply carries a decoded mapping.
func (r Reply) Structured() bool {
	return r.typed
}

// Text returns the raw text of a TextReply, or the JSON encoding of a StructuredReply.
func (r Reply) Text() string {
	if !r.typed {
		return r.text
	}
	data, err := json.Marshal(r.fields)
	if err != nil {
		return fmt.Sprint(r.fields)
	}
	return string(data)
}

// Extract recovers a field mapping from a model reply.
//
// Structured replies are returned unchanged. Text replies have markdown fences
// and leading prose removed, then the first brace block (one nesting level
// deep) is decoded. If nothing decodes, every key in keys maps to "".
func Extract(reply Reply, keys ...string) map[string]any {
	if reply.typed && reply.fields != nil {
		return reply.fields
	}

	text := fenceRegex.ReplaceAllString(reply.text, "")
	text = strings.TrimSpace(text)

	start := strings.Index(text, "{")
	if start < 0 {
		return empty(keys)
	}
	text = text[start:]

	block := blockRegex.FindString(text)
	if block == "" {
		return empty(keys)
	}

	var fields map[string]any
	if err := json.Unmarshal([]byte(block), &fields); err != nil || fields == nil {
		return empty(keys)
	}

	return fields
}

// String returns fields[key] as a string. Non-string values are rendered
// with fmt; missing and null values yield "".
func String(fields map[string]any, key string) string {
	v, ok := fields[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Bool reports whether fields[key] is a JSON true or a case-insensitive "true".
func Bool(fields map[string]any, key string) bool {
	switch v := fields[key].(type) {
	case bool:
		return v
	case string:
		return strings.EqualFold(strings.TrimSpace(v), "true")
	default:
		return false
	}
}

// Int returns fields[key] as an int. Values that cannot be read as a number yield 0.
func Int(fields map[string]any, key string) int {
	switch v := fields[key].(type) {
	case float64:
		return saturate(v)
	case int:
		return v
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n)
		}
		if f, err := strconv.ParseFloat(v.String(), 64); err == nil || errors.Is(err, strconv.ErrRange) {
			return saturate(f)
		}
	case string:
		s := strings.TrimSpace(v)
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil || errors.Is(err, strconv.ErrRange) {
			return saturate(f)
		}
	}
	return 0
}

// saturate truncates f toward zero, pinning values outside the int range to
// its bounds. NaN yields 0.
func saturate(f float64) int {
	switch {
	case math.IsNaN(f):
		return 0
	case f >= math.MaxInt:
		return math.MaxInt
	case f <= math.MinInt:
		return math.MinInt
	}
	return int(f)
}

func empty(keys []string) map[string]any {
	fields := make(map[string]any, len(keys))
	for _, k := range keys {
		fields[k] = ""
	}
	return fields
}
