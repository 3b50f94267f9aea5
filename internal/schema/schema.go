// Package schema provides a declarative field-table engine for converting
// typed API models into flat, export-ready rows. Each model declares an
// ordered table of fields once at startup; the dump, header, and explode
// logic consult the table instead of relying on runtime reflection.
package schema

import (
	"fmt"
)

// Type identifies the declared wire type of a field.
type Type string

// The set of declared field types.
const (
	TypeString     Type = "string"
	TypeInt        Type = "integer"
	TypeFloat      Type = "number"
	TypeBool       Type = "boolean"
	TypeDateTime   Type = "datetime"
	TypeObject     Type = "object"
	TypeListString Type = "list_string"
	TypeListObject Type = "list_object"
)

// Field describes a single declared field of a model: its wire name, type,
// visibility, and, for complex fields, the table describing the nested
// record type.
type Field struct {
	Name        string
	Type        Type
	Description string
	Required    bool
	Nullable    bool
	Default     string

	// Hidden fields never contribute to headers or schema output, though
	// their values still appear in dumped rows.
	Hidden bool

	// Nested is set for complex fields, those whose declared type is itself
	// a record (TypeObject) or a list of records (TypeListObject).
	Nested *Table
}

// Complex reports whether the field's declared type is a nested record type,
// directly or as the element type of a list.
func (f Field) Complex() bool { return f.Nested != nil }

// Table is an ordered, immutable collection of field declarations for one
// model. Declaration order drives header order and the explode recursion.
type Table struct {
	fields []Field
}

// NewTable builds a Table from the given fields. It panics on duplicate
// field names or on complex type tags without a nested table; tables are
// package-level values built once at init, so a malformed declaration is a
// programming error.
func NewTable(fields ...Field) *Table {
	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if _, ok := seen[f.Name]; ok {
			panic(fmt.Sprintf("schema: duplicate field %q", f.Name))
		}
		seen[f.Name] = struct{}{}

		isComplexType := f.Type == TypeObject || f.Type == TypeListObject
		if isComplexType != (f.Nested != nil) {
			panic(fmt.Sprintf("schema: field %q type %s inconsistent with nested table", f.Name, f.Type))
		}
	}
	return &Table{fields: fields}
}

// Fields returns the declared fields in declaration order.
func (t *Table) Fields() []Field {
	out := make([]Field, len(t.fields))
	copy(out, t.fields)
	return out
}

// Lookup returns the declaration for the named field.
func (t *Table) Lookup(name string) (Field, bool) {
	for _, f := range t.fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// visible returns the declared fields that participate in headers and
// schema output.
func (t *Table) visible() []Field {
	out := make([]Field, 0, len(t.fields))
	for _, f := range t.fields {
		if !f.Hidden {
			out = append(out, f)
		}
	}
	return out
}

// complexFields returns the visible complex fields in declaration order.
func (t *Table) complexFields() []Field {
	var out []Field
	for _, f := range t.visible() {
		if f.Complex() {
			out = append(out, f)
		}
	}
	return out
}

// Flatten returns the visible fields with every complex field recursively
// replaced by the fields of its nested table, each renamed with the parent
// field's name and an underscore as prefix. The result contains only simple
// leaf fields and defines the header set for exploded output.
func (t *Table) Flatten() []Field {
	var out []Field
	for _, f := range t.visible() {
		if !f.Complex() {
			out = append(out, f)
			continue
		}
		for _, sub := range f.Nested.Flatten() {
			sub.Name = f.Name + "_" + sub.Name
			out = append(out, sub)
		}
	}
	return out
}

// Headers returns the output header names: the visible field names, or the
// flattened leaf names when explode is requested.
func (t *Table) Headers(explode bool) []string {
	fields := t.visible()
	if explode {
		fields = t.Flatten()
	}
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = f.Name
	}
	return out
}
