// Package normalize projects a decoded vendor export onto the columns a schema
// revision keeps.
package normalize

import (
	"fmt"
	"strings"

	"github.com/angelmondragon/callpay-backend/internal/schema"
	"github.com/angelmondragon/callpay-backend/internal/spreadsheet"
)

// SchemaMismatchError lists every kept field the export did not carry.
type SchemaMismatchError struct {
	Revision int
	Missing  []schema.Field
	// Expected holds the accepted vendor headers per missing field.
	Expected map[schema.Field][]string
}

func (e *SchemaMismatchError) Error() string {
	parts := make([]string, 0, len(e.Missing))
	for _, f := range e.Missing {
		parts = append(parts, fmt.Sprintf("%s (%s)", f, strings.Join(e.Expected[f], " | ")))
	}
	return fmt.Sprintf("schema revision %d: missing required columns: %s", e.Revision, strings.Join(parts, ", "))
}

// Dataset is a normalized export. Headers keep their vendor spelling; Fields
// holds the canonical field for each column at the same index.
type Dataset struct {
	Revision schema.Revision
	Headers  []string
	Fields   []schema.Field
	Rows     [][]string
	// Dropped lists the vendor headers whose field is in the revision's drop
	// set, plus repeated kept columns, in input order.
	Dropped []string
	// Unknown lists headers the revision does not declare at all. They are
	// removed like dropped columns but usually mean the vendor layout moved.
	Unknown []string
}

// Normalize keeps only the revision's kept columns. Declared drop columns and
// unknown columns are removed and reported separately; a kept field without a
// column is fatal.
func Normalize(ds *spreadsheet.Dataset, rev schema.Revision) (*Dataset, error) {
	if ds == nil {
		return nil, fmt.Errorf("normalize: nil dataset")
	}

	type column struct {
		index  int
		header string
		field  schema.Field
	}

	found := map[schema.Field]column{}
	var dropped, unknown []string
	for i, header := range ds.Headers {
		field, ok := rev.FieldForHeader(header)
		switch {
		case ok && rev.Drops(field):
			dropped = append(dropped, header)
		case !ok || !rev.Keeps(field):
			unknown = append(unknown, header)
		default:
			if _, dup := found[field]; dup {
				dropped = append(dropped, header)
				continue
			}
			found[field] = column{index: i, header: header, field: field}
		}
	}

	var missing []schema.Field
	for _, field := range rev.Keep {
		if _, ok := found[field]; !ok {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		expected := make(map[schema.Field][]string, len(missing))
		for _, f := range missing {
			expected[f] = rev.HeadersFor(f)
		}
		return nil, &SchemaMismatchError{Revision: rev.Version, Missing: missing, Expected: expected}
	}

	// Column order follows the revision's Keep list so output is stable
	// across vendor layouts.
	cols := make([]column, 0, len(rev.Keep))
	for _, field := range rev.Keep {
		cols = append(cols, found[field])
	}

	out := &Dataset{
		Revision: rev,
		Headers:  make([]string, len(cols)),
		Fields:   make([]schema.Field, len(cols)),
		Rows:     make([][]string, 0, len(ds.Rows)),
		Dropped:  dropped,
		Unknown:  unknown,
	}
	for i, c := range cols {
		out.Headers[i] = c.header
		out.Fields[i] = c.field
	}
	for _, row := range ds.Rows {
		cells := make([]string, len(cols))
		for i, c := range cols {
			if c.index < len(row) {
				cells[i] = row[c.index]
			}
		}
		out.Rows = append(out.Rows, cells)
	}
	return out, nil
}

// Index returns the column index of a canonical field, or -1.
func (d *Dataset) Index(field schema.Field) int {
	for i, f := range d.Fields {
		if f == field {
			return i
		}
	}
	return -1
}

// Canonicalize renames a row's cells from vendor headers to canonical fields.
// Fields the revision does not keep are absent from the map.
func (d *Dataset) Canonicalize(row []string) map[schema.Field]string {
	out := make(map[schema.Field]string, len(d.Fields))
	for i, f := range d.Fields {
		if i < len(row) {
			out[f] = row[i]
		} else {
			out[f] = ""
		}
	}
	return out
}
