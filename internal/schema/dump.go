package schema

import (
	"encoding/json"
	"fmt"
)

// Row is a single dumped record: declared field name to serialized value.
// Values are the JSON forms of the model's fields, so nested records appear
// as map[string]any and lists of records as []any.
type Row map[string]any

// Clone returns a shallow copy of the row.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// DumpOptions control the shape of dumped output.
type DumpOptions struct {
	// Explode flattens nested list-of-record fields into multiple rows,
	// one per nested element combination.
	Explode bool

	// WithSchemas prepends field metadata to the output: a schemas row for
	// structured output, or type and description rows for CSV output.
	WithSchemas bool

	// AsCSV prepends a header row mapping each output column to itself,
	// the shape csv writers consume.
	AsCSV bool
}

// FieldSchema is the per-field metadata emitted when schemas are requested.
type FieldSchema struct {
	Name        string `json:"name"`
	Type        Type   `json:"type"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
	Nullable    bool   `json:"nullable"`
	Default     string `json:"default"`
}

// Dump converts one model value into a Row via its JSON form. The model's
// json tags must match its declared field names.
func Dump(v any) (Row, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshaling record: %w", err)
	}

	var row Row
	if err := json.Unmarshal(data, &row); err != nil {
		return nil, fmt.Errorf("unmarshaling record into row: %w", err)
	}
	return row, nil
}

// DumpAll converts a sequence of model values into export-ready rows per the
// options. When AsCSV is set the first row maps each header to itself, and
// WithSchemas adds a row of type names and a row of descriptions after it.
// When WithSchemas is set without AsCSV, the first row carries the full field
// metadata under the "schemas" key. Record rows follow, exploded when
// requested.
func DumpAll(t *Table, records []any, opts DumpOptions) ([]Row, error) {
	out := make([]Row, 0, len(records)+3)

	if opts.AsCSV {
		out = append(out, headerRow(t, opts.Explode))
		if opts.WithSchemas {
			typeRow, descRow := csvSchemaRows(t, opts.Explode)
			out = append(out, typeRow, descRow)
		}
	} else if opts.WithSchemas {
		out = append(out, Row{"schemas": schemaMap(t, opts.Explode)})
	}

	for _, rec := range records {
		row, err := Dump(rec)
		if err != nil {
			return nil, err
		}

		if !opts.Explode {
			out = append(out, row)
			continue
		}
		out = append(out, ExplodeRow(t, row)...)
	}

	return out, nil
}

// headerRow builds the identity mapping csv writers use as their first row.
func headerRow(t *Table, explode bool) Row {
	row := make(Row)
	for _, h := range t.Headers(explode) {
		row[h] = h
	}
	return row
}

// csvSchemaRows builds the two-row schema description for csv output: one
// row of type names and one row of descriptions.
func csvSchemaRows(t *Table, explode bool) (Row, Row) {
	fields := t.visible()
	if explode {
		fields = t.Flatten()
	}

	typeRow := make(Row, len(fields))
	descRow := make(Row, len(fields))
	for _, f := range fields {
		typeRow[f.Name] = string(f.Type)
		descRow[f.Name] = f.Description
	}
	return typeRow, descRow
}

// schemaMap builds the field-name to metadata mapping for structured output.
func schemaMap(t *Table, explode bool) map[string]FieldSchema {
	fields := t.visible()
	if explode {
		fields = t.Flatten()
	}

	out := make(map[string]FieldSchema, len(fields))
	for _, f := range fields {
		out[f.Name] = FieldSchema{
			Name:        f.Name,
			Type:        f.Type,
			Description: f.Description,
			Required:    f.Required,
			Nullable:    f.Nullable,
			Default:     f.Default,
		}
	}
	return out
}
