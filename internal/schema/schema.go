// Package schema declares document shapes once and derives from each
// declaration both a validator for untyped JSON trees and a JSON Schema
// (draft 2020-12) description suitable for structured-output generators.
//
// Candidate trees are the generic values produced by encoding/json:
// map[string]any, []any, string, bool, nil, and float64 or json.Number.
package schema

import (
	"encoding/json"
	"errors"
	"math"
	"strconv"

	"github.com/invopop/jsonschema"
)

// DraftVersion is the $schema URI emitted on root documents.
const DraftVersion = "https://json-schema.org/draft/2020-12/schema"

// Node is one declared shape. Implementations live in this package.
type Node interface {
	// check validates v and returns the cleaned value with defaults applied.
	check(p path, v any, c *collector) any
	// JSONSchema emits a fresh schema value; callers may mutate it.
	JSONSchema() *jsonschema.Schema
}

// Validate checks candidate against n. It never panics. On success the
// returned tree is a copy of candidate with declared defaults filled in.
func Validate(n Node, candidate any) (any, Violations) {
	c := &collector{}
	clean := n.check(nil, candidate, c)
	if len(c.out) > 0 {
		return nil, c.out
	}
	return clean, nil
}

// Document emits n as a root schema document.
func Document(n Node) *jsonschema.Schema {
	s := n.JSONSchema()
	s.Version = DraftVersion
	return s
}

func kindOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64, float32, int, int64, int32, json.Number:
		return "number"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return "unknown"
	}
}

// number extracts a finite numeric value from a JSON scalar.
func number(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Bounds of the integers an IntegerNode can hold; 2^63 itself overflows.
const (
	maxInt64 = float64(1 << 63)
	minInt64 = -maxInt64
)

// overflow reports whether v is a number too large for float64 and returns
// the infinity it rounds to.
func overflow(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, math.IsInf(n, 0)
	case json.Number:
		f, err := strconv.ParseFloat(string(n), 64)
		return f, errors.Is(err, strconv.ErrRange) && math.IsInf(f, 0)
	}
	return 0, false
}

func outOfRange(p path, f float64, kind string, c *collector) {
	if f < 0 {
		c.add(p, CodeTooSmall, "%s out of range", kind)
		return
	}
	c.add(p, CodeTooBig, "%s out of range", kind)
}

func formatNumber(f float64) json.Number {
	return json.Number(jsonNumberString(f))
}

func jsonNumberString(f float64) string {
	b, err := json.Marshal(f)
	if err != nil {
		return "0"
	}
	return string(b)
}

func nullSchema() *jsonschema.Schema {
	return &jsonschema.Schema{Type: "null"}
}
