package schema

// ExplodeRow flattens one dumped row by expanding its complex fields into
// multiple rows. Complex fields are processed in declaration order, each
// re-exploding the output of the previous field, so two complex fields with
// m and n elements produce m*n rows: a combinatorial cross-product. A row
// with no complex fields comes back unchanged as a single-element slice.
func ExplodeRow(t *Table, row Row) []Row {
	return explodeFields(t.complexFields(), "", []Row{row})
}

// explodeFields expands each complex field in order over the accumulated
// rows. The prefix carries the renaming applied by enclosing fields during
// recursion into nested tables.
func explodeFields(fields []Field, prefix string, rows []Row) []Row {
	for _, f := range fields {
		next := make([]Row, 0, len(rows))
		for _, r := range rows {
			next = append(next, explodeField(f, prefix, r)...)
		}
		rows = next
	}
	return rows
}

// explodeField expands a single complex field of one row. The field's value
// is removed from the row; each element of the value then produces one row
// merging the remainder with the element's fields renamed with the field
// name as prefix. An empty or absent value yields the remainder unchanged.
func explodeField(f Field, prefix string, row Row) []Row {
	name := prefix + f.Name

	value, ok := row[name]
	base := row.Clone()
	delete(base, name)

	if !ok || value == nil {
		return []Row{base}
	}

	elems := coerceList(value)
	if len(elems) == 0 {
		return []Row{base}
	}

	out := make([]Row, 0, len(elems))
	for _, elem := range elems {
		fields, ok := elem.(map[string]any)
		if !ok {
			// Scalar element in a field declared as list-of-record: keep it
			// under the field's own name rather than dropping data.
			merged := base.Clone()
			merged[name] = elem
			out = append(out, merged)
			continue
		}

		merged := base.Clone()
		for k, v := range fields {
			merged[name+"_"+k] = v
		}

		// The nested table may itself declare complex fields; they now live
		// under prefixed names and explode recursively.
		out = append(out, explodeFields(f.Nested.complexFields(), name+"_", []Row{merged})...)
	}

	return out
}

// coerceList normalizes a complex field's value to a list: a single record
// becomes a one-element list.
func coerceList(v any) []any {
	switch val := v.(type) {
	case []any:
		return val
	case map[string]any:
		return []any{val}
	default:
		return []any{val}
	}
}
