package schema

import (
	"fmt"
	"strconv"
	"strings"
)

// Code is a machine-readable violation kind.
type Code string

const (
	CodeInvalidType     Code = "invalid_type"
	CodeMissingField    Code = "missing_field"
	CodeInvalidEnum     Code = "invalid_enum"
	CodeUnrecognizedKey Code = "unrecognized_key"
	CodeInvalidPattern  Code = "invalid_pattern"
	CodeInvalidUnion    Code = "invalid_union"
	CodeTooSmall        Code = "too_small"
	CodeTooBig          Code = "too_big"
)

// Violation is one way a candidate document failed validation.
type Violation struct {
	Path    string `json:"path"`
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

func (v Violation) String() string {
	if v.Path == "" {
		return fmt.Sprintf("(root): %s [%s]", v.Message, v.Code)
	}
	return fmt.Sprintf("%s: %s [%s]", v.Path, v.Message, v.Code)
}

// Violations is an ordered list of violations.
type Violations []Violation

func (vs Violations) Error() string {
	if len(vs) == 0 {
		return "no violations"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d schema violation(s):", len(vs))
	for _, v := range vs {
		sb.WriteString("\n- ")
		sb.WriteString(v.String())
	}
	return sb.String()
}

// Codes returns the code of every violation, in order.
func (vs Violations) Codes() []string {
	codes := make([]string, len(vs))
	for i, v := range vs {
		codes[i] = string(v.Code)
	}
	return codes
}

// path is the sequence of keys/indices from the document root.
type path []string

func (p path) key(k string) path {
	next := make(path, len(p), len(p)+1)
	copy(next, p)
	return append(next, k)
}

func (p path) index(i int) path {
	return p.key(strconv.Itoa(i))
}

func (p path) String() string {
	return strings.Join(p, ".")
}

type collector struct {
	out Violations
}

func (c *collector) add(p path, code Code, format string, args ...any) {
	c.out = append(c.out, Violation{
		Path:    p.String(),
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	})
}
