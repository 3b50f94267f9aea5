// Package export writes dumped records to JSON, CSV, or aligned text,
// honoring the schema layer's header ordering and explode transform.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/seclens/seclens-go/internal/domain/task"
	"github.com/seclens/seclens-go/internal/schema"
)

// Format selects the output encoding.
type Format string

// The supported output formats.
const (
	FormatJSON  Format = "json"
	FormatCSV   Format = "csv"
	FormatTable Format = "table"
)

// ParseFormat maps a user-supplied format name to a Format.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatJSON:
		return FormatJSON, nil
	case FormatCSV:
		return FormatCSV, nil
	case FormatTable:
		return FormatTable, nil
	}
	return "", &task.ValidationError{
		Field:   "format",
		Message: fmt.Sprintf("%q is not one of json, csv, table", s),
	}
}

// Options control the dumped output shape.
type Options struct {
	// Explode flattens nested list-of-record fields into one row per
	// nested element combination.
	Explode bool

	// WithSchemas includes field metadata: a schemas object for JSON, or
	// type and description rows for CSV.
	WithSchemas bool
}

// Write encodes the records to w in the given format. The table drives
// header names and order; records must be dumpable against it.
func Write(w io.Writer, format Format, tbl *schema.Table, records []any, opts Options) error {
	switch format {
	case FormatCSV:
		return writeCSV(w, tbl, records, opts)
	case FormatTable:
		return writeTable(w, tbl, records, opts)
	default:
		return writeJSON(w, tbl, records, opts)
	}
}

// CreateFile opens the export destination, refusing to clobber an existing
// file unless overwrite is set.
func CreateFile(path string, overwrite bool) (io.WriteCloser, error) {
	flags := os.O_WRONLY | os.O_CREATE
	if overwrite {
		flags |= os.O_TRUNC
	} else {
		flags |= os.O_EXCL
	}

	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return nil, fmt.Errorf("%s already exists; pass overwrite to replace it", path)
		}
		return nil, fmt.Errorf("creating %s: %w", path, err)
	}
	return f, nil
}

func writeJSON(w io.Writer, tbl *schema.Table, records []any, opts Options) error {
	rows, err := schema.DumpAll(tbl, records, schema.DumpOptions{
		Explode:     opts.Explode,
		WithSchemas: opts.WithSchemas,
	})
	if err != nil {
		return err
	}
	if rows == nil {
		rows = []schema.Row{}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}

func writeCSV(w io.Writer, tbl *schema.Table, records []any, opts Options) error {
	rows, err := schema.DumpAll(tbl, records, schema.DumpOptions{
		Explode:     opts.Explode,
		WithSchemas: opts.WithSchemas,
		AsCSV:       true,
	})
	if err != nil {
		return err
	}

	headers := tbl.Headers(opts.Explode)
	cw := csv.NewWriter(w)
	for _, row := range rows {
		cells := make([]string, len(headers))
		for i, h := range headers {
			cells[i] = cellString(row[h])
		}
		if err := cw.Write(cells); err != nil {
			return fmt.Errorf("writing csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeTable(w io.Writer, tbl *schema.Table, records []any, opts Options) error {
	rows, err := schema.DumpAll(tbl, records, schema.DumpOptions{
		Explode: opts.Explode,
		AsCSV:   true,
	})
	if err != nil {
		return err
	}

	headers := tbl.Headers(opts.Explode)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, row := range rows {
		cells := make([]string, len(headers))
		for i, h := range headers {
			cells[i] = cellString(row[h])
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}

// cellString renders one dumped value as a flat cell. Values that are still
// structured, which happens when complex fields are dumped without explode,
// fall back to compact JSON.
func cellString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return fmt.Sprintf("%v", val)
	case float64:
		return fmt.Sprintf("%v", val)
	case []any:
		if allStrings(val) {
			parts := make([]string, len(val))
			for i, item := range val {
				parts[i] = item.(string)
			}
			return strings.Join(parts, ",")
		}
		return compactJSON(val)
	case map[string]any:
		return compactJSON(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}

func allStrings(items []any) bool {
	for _, item := range items {
		if _, ok := item.(string); !ok {
			return false
		}
	}
	return true
}

func compactJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}
