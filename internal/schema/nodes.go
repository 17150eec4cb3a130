package schema

import (
	"fmt"
	"math"
	"regexp"
	"slices"
	"sort"
	"strings"

	"github.com/invopop/jsonschema"
)

// --- String ---

// StringNode accepts strings, optionally constrained by a pattern.
type StringNode struct {
	title       string
	description string
	examples    []any
	pattern     *regexp.Regexp
	patternMsg  string
}

// String declares a string.
func String() *StringNode {
	return &StringNode{}
}

// Pattern constrains the string; msg is reported on mismatch.
func (n *StringNode) Pattern(re *regexp.Regexp, msg string) *StringNode {
	n.pattern = re
	n.patternMsg = msg
	return n
}

// Meta attaches a title, description and examples to the emitted schema.
func (n *StringNode) Meta(title, description string, examples ...any) *StringNode {
	n.title = title
	n.description = description
	n.examples = examples
	return n
}

func (n *StringNode) check(p path, v any, c *collector) any {
	s, ok := v.(string)
	if !ok {
		c.add(p, CodeInvalidType, "expected string, received %s", kindOf(v))
		return v
	}
	if n.pattern != nil && !n.pattern.MatchString(s) {
		msg := n.patternMsg
		if msg == "" {
			msg = fmt.Sprintf("string does not match pattern %s", n.pattern)
		}
		c.add(p, CodeInvalidPattern, "%s", msg)
	}
	return s
}

func (n *StringNode) JSONSchema() *jsonschema.Schema {
	s := &jsonschema.Schema{
		Type:        "string",
		Title:       n.title,
		Description: n.description,
		Examples:    n.examples,
	}
	if n.pattern != nil {
		s.Pattern = n.pattern.String()
	}
	return s
}

// --- Integer ---

// IntegerNode accepts whole numbers.
type IntegerNode struct {
	min    int64
	hasMin bool
}

// Integer declares a whole number.
func Integer() *IntegerNode {
	return &IntegerNode{}
}

// Min sets an inclusive lower bound.
func (n *IntegerNode) Min(min int64) *IntegerNode {
	n.min = min
	n.hasMin = true
	return n
}

func (n *IntegerNode) check(p path, v any, c *collector) any {
	f, ok := number(v)
	if !ok {
		if inf, over := overflow(v); over {
			outOfRange(p, inf, "integer", c)
			return v
		}
		c.add(p, CodeInvalidType, "expected integer, received %s", kindOf(v))
		return v
	}
	if f >= maxInt64 || f < minInt64 {
		outOfRange(p, f, "integer", c)
		return v
	}
	if f != math.Trunc(f) {
		c.add(p, CodeInvalidType, "expected integer, received float")
		return v
	}
	if n.hasMin && f < float64(n.min) {
		c.add(p, CodeTooSmall, "must be greater than or equal to %d", n.min)
	}
	return int64(f)
}

func (n *IntegerNode) JSONSchema() *jsonschema.Schema {
	s := &jsonschema.Schema{Type: "integer"}
	if n.hasMin {
		s.Minimum = formatNumber(float64(n.min))
	}
	return s
}

// --- Number ---

// NumberNode accepts any finite number.
type NumberNode struct {
	min, max       float64
	hasMin, hasMax bool
}

// Number declares a finite number.
func Number() *NumberNode {
	return &NumberNode{}
}

// Min sets an inclusive lower bound.
func (n *NumberNode) Min(min float64) *NumberNode {
	n.min = min
	n.hasMin = true
	return n
}

// Max sets an inclusive upper bound.
func (n *NumberNode) Max(max float64) *NumberNode {
	n.max = max
	n.hasMax = true
	return n
}

func (n *NumberNode) check(p path, v any, c *collector) any {
	f, ok := number(v)
	if !ok {
		if inf, over := overflow(v); over {
			outOfRange(p, inf, "number", c)
			return v
		}
		c.add(p, CodeInvalidType, "expected number, received %s", kindOf(v))
		return v
	}
	if n.hasMin && f < n.min {
		c.add(p, CodeTooSmall, "must be greater than or equal to %s", jsonNumberString(n.min))
	}
	if n.hasMax && f > n.max {
		c.add(p, CodeTooBig, "must be less than or equal to %s", jsonNumberString(n.max))
	}
	return v
}

func (n *NumberNode) JSONSchema() *jsonschema.Schema {
	s := &jsonschema.Schema{Type: "number"}
	if n.hasMin {
		s.Minimum = formatNumber(n.min)
	}
	if n.hasMax {
		s.Maximum = formatNumber(n.max)
	}
	return s
}

// --- Enum ---

// EnumNode accepts one of a fixed set of strings.
type EnumNode struct {
	values []string
}

// Enum declares a closed set of string values.
func Enum(values ...string) *EnumNode {
	return &EnumNode{values: values}
}

func (n *EnumNode) check(p path, v any, c *collector) any {
	s, ok := v.(string)
	if !ok {
		c.add(p, CodeInvalidType, "expected string, received %s", kindOf(v))
		return v
	}
	if !slices.Contains(n.values, s) {
		c.add(p, CodeInvalidEnum, "invalid enum value %q; expected %s", s, strings.Join(n.values, " | "))
	}
	return s
}

func (n *EnumNode) JSONSchema() *jsonschema.Schema {
	enum := make([]any, len(n.values))
	for i, v := range n.values {
		enum[i] = v
	}
	return &jsonschema.Schema{Type: "string", Enum: enum}
}

// constNode pins a union discriminator to one value in emitted schemas.
// TaggedUnionNode selects the variant by this value before checking it, so
// check has nothing left to reject.
type constNode struct {
	value string
}

func (constNode) check(_ path, v any, _ *collector) any {
	return v
}

func (n constNode) JSONSchema() *jsonschema.Schema {
	return &jsonschema.Schema{Type: "string", Const: n.value}
}

// --- Nullable ---

// NullableNode accepts null or the wrapped shape.
type NullableNode struct {
	inner Node
}

// Nullable wraps n so that null is also accepted.
func Nullable(n Node) *NullableNode {
	return &NullableNode{inner: n}
}

func (n *NullableNode) check(p path, v any, c *collector) any {
	if v == nil {
		return nil
	}
	return n.inner.check(p, v, c)
}

func (n *NullableNode) JSONSchema() *jsonschema.Schema {
	return &jsonschema.Schema{AnyOf: []*jsonschema.Schema{n.inner.JSONSchema(), nullSchema()}}
}

// --- Array ---

// ArrayNode accepts a list whose items all match one shape.
type ArrayNode struct {
	items          Node
	min, max       int
	hasMin, hasMax bool
}

// Array declares a list of items.
func Array(items Node) *ArrayNode {
	return &ArrayNode{items: items}
}

// Min sets the minimum number of items.
func (n *ArrayNode) Min(min int) *ArrayNode {
	n.min = min
	n.hasMin = true
	return n
}

// Max sets the maximum number of items.
func (n *ArrayNode) Max(max int) *ArrayNode {
	n.max = max
	n.hasMax = true
	return n
}

// Len requires exactly l items.
func (n *ArrayNode) Len(l int) *ArrayNode {
	return n.Min(l).Max(l)
}

func (n *ArrayNode) check(p path, v any, c *collector) any {
	list, ok := v.([]any)
	if !ok {
		c.add(p, CodeInvalidType, "expected array, received %s", kindOf(v))
		return v
	}
	if n.hasMin && len(list) < n.min {
		c.add(p, CodeTooSmall, "expected at least %d item(s), received %d", n.min, len(list))
	}
	if n.hasMax && len(list) > n.max {
		c.add(p, CodeTooBig, "expected at most %d item(s), received %d", n.max, len(list))
	}
	out := make([]any, len(list))
	for i, item := range list {
		out[i] = n.items.check(p.index(i), item, c)
	}
	return out
}

func (n *ArrayNode) JSONSchema() *jsonschema.Schema {
	s := &jsonschema.Schema{Type: "array", Items: n.items.JSONSchema()}
	if n.hasMin {
		min := uint64(n.min)
		s.MinItems = &min
	}
	if n.hasMax {
		max := uint64(n.max)
		s.MaxItems = &max
	}
	return s
}

// --- Object ---

type presence int

const (
	presenceRequired presence = iota
	presenceOptional
	presenceDefault
)

// Field is one declared key of an object.
type Field struct {
	Name        string
	node        Node
	presence    presence
	def         any
	description string
}

// Required declares a key that must be present and match n.
func Required(name string, n Node, description string) Field {
	return Field{Name: name, node: n, presence: presenceRequired, description: description}
}

// Optional declares a key that may be absent or null.
func Optional(name string, n Node, description string) Field {
	return Field{Name: name, node: n, presence: presenceOptional, description: description}
}

// Default declares a key that takes def when absent.
func Default(name string, n Node, def any, description string) Field {
	return Field{Name: name, node: n, presence: presenceDefault, def: def, description: description}
}

// shape is the node a present value is checked against; optional keys
// also take null.
func (f Field) shape() Node {
	if f.presence == presenceOptional {
		return Nullable(f.node)
	}
	return f.node
}

// ObjectNode is a closed object: undeclared keys are rejected.
type ObjectNode struct {
	title       string
	description string
	fields      []Field
}

// Object declares a closed object with ordered fields.
func Object(title, description string, fields ...Field) *ObjectNode {
	return &ObjectNode{title: title, description: description, fields: fields}
}

// Extend returns a new object with o's fields followed by fields.
func (o *ObjectNode) Extend(title, description string, fields ...Field) *ObjectNode {
	all := make([]Field, 0, len(o.fields)+len(fields))
	all = append(all, o.fields...)
	all = append(all, fields...)
	return Object(title, description, all...)
}

// FieldNames returns the declared keys in order.
func (o *ObjectNode) FieldNames() []string {
	names := make([]string, len(o.fields))
	for i, f := range o.fields {
		names[i] = f.Name
	}
	return names
}

func (o *ObjectNode) check(p path, v any, c *collector) any {
	m, ok := v.(map[string]any)
	if !ok {
		c.add(p, CodeInvalidType, "expected object, received %s", kindOf(v))
		return v
	}
	out := make(map[string]any, len(m))
	declared := make(map[string]bool, len(o.fields))
	for _, f := range o.fields {
		declared[f.Name] = true
		val, present := m[f.Name]
		fp := p.key(f.Name)
		switch {
		case !present && f.presence == presenceDefault:
			out[f.Name] = f.def
		case !present && f.presence == presenceRequired:
			c.add(fp, CodeMissingField, "required field %q is missing", f.Name)
		case !present:
		default:
			out[f.Name] = f.shape().check(fp, val, c)
		}
	}

	var extras []string
	for k := range m {
		if !declared[k] {
			extras = append(extras, k)
		}
	}
	sort.Strings(extras)
	for _, k := range extras {
		c.add(p.key(k), CodeUnrecognizedKey, "unrecognized key %q", k)
	}
	return out
}

func (o *ObjectNode) JSONSchema() *jsonschema.Schema {
	s := &jsonschema.Schema{
		Type:                 "object",
		Title:                o.title,
		Description:          o.description,
		Properties:           jsonschema.NewProperties(),
		AdditionalProperties: jsonschema.FalseSchema,
	}
	for _, f := range o.fields {
		fs := f.shape().JSONSchema()
		if f.presence == presenceDefault {
			fs.Default = f.def
		}
		if f.description != "" {
			fs.Description = f.description
		}
		s.Properties.Set(f.Name, fs)
		// Strict structured output requires every key; optional ones are nullable.
		s.Required = append(s.Required, f.Name)
	}
	return s
}

// --- Tagged union ---

// Variant is one case of a tagged union.
type Variant struct {
	Tag    string
	Object *ObjectNode
}

// TaggedUnionNode dispatches on a string discriminator to a closed set of
// object variants.
type TaggedUnionNode struct {
	title       string
	description string
	tag         string
	tags        []string
	variants    map[string]*ObjectNode
}

// TaggedUnion declares a discriminated union keyed by tag. Each variant's
// object gets the discriminator prepended as its first field.
func TaggedUnion(tag, title, description string, variants ...Variant) *TaggedUnionNode {
	u := &TaggedUnionNode{
		title:       title,
		description: description,
		tag:         tag,
		variants:    make(map[string]*ObjectNode, len(variants)),
	}
	for _, v := range variants {
		fields := make([]Field, 0, len(v.Object.fields)+1)
		fields = append(fields, Required(tag, constNode{value: v.Tag}, "Discriminator selecting the "+v.Tag+" variant"))
		fields = append(fields, v.Object.fields...)
		u.tags = append(u.tags, v.Tag)
		u.variants[v.Tag] = Object(v.Object.title, v.Object.description, fields...)
	}
	return u
}

// Tags returns the variant tags in declaration order.
func (u *TaggedUnionNode) Tags() []string {
	return slices.Clone(u.tags)
}

// Variant returns the object declared for tag, including the discriminator.
func (u *TaggedUnionNode) Variant(tag string) (*ObjectNode, bool) {
	o, ok := u.variants[tag]
	return o, ok
}

func (u *TaggedUnionNode) check(p path, v any, c *collector) any {
	m, ok := v.(map[string]any)
	if !ok {
		c.add(p, CodeInvalidType, "expected object, received %s", kindOf(v))
		return v
	}
	expected := strings.Join(u.tags, " | ")
	raw, present := m[u.tag]
	if !present {
		c.add(p.key(u.tag), CodeInvalidUnion, "missing discriminator %q; expected %s", u.tag, expected)
		return v
	}
	tag, _ := raw.(string)
	variant, ok := u.variants[tag]
	if !ok {
		c.add(p.key(u.tag), CodeInvalidUnion, "no variant matches discriminator %s; expected %s", describe(raw), expected)
		return v
	}
	return variant.check(p, m, c)
}

func (u *TaggedUnionNode) JSONSchema() *jsonschema.Schema {
	s := &jsonschema.Schema{Title: u.title, Description: u.description}
	for _, tag := range u.tags {
		s.AnyOf = append(s.AnyOf, u.variants[tag].JSONSchema())
	}
	return s
}

func describe(v any) string {
	if s, ok := v.(string); ok {
		return fmt.Sprintf("%q", s)
	}
	return kindOf(v)
}
