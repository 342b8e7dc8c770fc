package metadata

import (
	"context"
	"fmt"
)

// Columnar holds a query result as column name -> ordered values, the
// shape the resolver needs when the caller picks fields at run time.
type Columnar map[string][]any

// Len returns the number of rows in the result.
func (c Columnar) Len() int {
	for _, vals := range c {
		return len(vals)
	}
	return 0
}

// Row returns row i as a column -> value record.
func (c Columnar) Row(i int) map[string]any {
	rec := make(map[string]any, len(c))
	for col, vals := range c {
		rec[col] = vals[i]
	}
	return rec
}

// queryColumnar executes a query and collects the full result columnwise.
// Every selected column is present in the result even when no rows match.
func (s *Store) queryColumnar(ctx context.Context, query string, args ...any) (Columnar, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns: %w", err)
	}

	out := make(Columnar, len(cols))
	for _, c := range cols {
		out[c] = []any{}
	}

	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		for i, c := range cols {
			out[c] = append(out[c], normalizeValue(vals[i]))
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

// normalizeValue converts driver byte slices to strings so results are
// comparable and JSON-friendly.
func normalizeValue(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}
