package queries

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Querier is the read-only slice of the storage layer the runner needs.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

// Result is one executed report: the declared columns and the result rows in
// the query's fixed order. Cell values are strings, int64s, float64s, or nil.
type Result struct {
	Name    string          `json:"name"`
	Title   string          `json:"title"`
	Columns []string        `json:"columns"`
	Rows    [][]interface{} `json:"rows"`
}

// Runner executes catalog queries against a populated store.
type Runner struct {
	catalog *Catalog
	db      Querier
}

// NewRunner creates a runner over the given store.
func NewRunner(catalog *Catalog, db Querier) *Runner {
	return &Runner{catalog: catalog, db: db}
}

// Run executes one named query and checks the result against the catalog's
// column contract. Unknown names are an error, not an empty result.
func (r *Runner) Run(ctx context.Context, name string) (*Result, error) {
	q := r.catalog.Get(name)
	if q == nil {
		return nil, fmt.Errorf("unknown query %q", name)
	}

	rows, err := r.db.QueryContext(ctx, q.SQL)
	if err != nil {
		return nil, fmt.Errorf("query %s failed: %w", q.Name, err)
	}
	defer func() { _ = rows.Close() }()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("query %s columns: %w", q.Name, err)
	}
	if err := checkColumns(q, cols); err != nil {
		return nil, err
	}

	result := &Result{Name: q.Name, Title: q.Title, Columns: q.Columns}
	for rows.Next() {
		cells := make([]interface{}, len(cols))
		ptrs := make([]interface{}, len(cols))
		for i := range cells {
			ptrs[i] = &cells[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("query %s scan: %w", q.Name, err)
		}
		for i, v := range cells {
			cells[i] = normalizeCell(v)
		}
		result.Rows = append(result.Rows, cells)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query %s rows: %w", q.Name, err)
	}
	return result, nil
}

// RunAll executes every catalog query in name order.
func (r *Runner) RunAll(ctx context.Context) ([]*Result, error) {
	names := r.catalog.Names()
	results := make([]*Result, 0, len(names))
	for _, name := range names {
		res, err := r.Run(ctx, name)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, nil
}

// checkColumns verifies the store returned exactly the declared columns.
// A drifted result set means the schema and the catalog disagree, which
// should fail loudly rather than feed a dashboard silently shifted data.
func checkColumns(q *Query, got []string) error {
	if len(got) != len(q.Columns) {
		return fmt.Errorf("query %s returned %d columns, contract declares %d",
			q.Name, len(got), len(q.Columns))
	}
	for i, want := range q.Columns {
		if got[i] != want {
			return fmt.Errorf("query %s column %d is %q, contract declares %q",
				q.Name, i, got[i], want)
		}
	}
	return nil
}

// normalizeCell flattens driver-specific scan types into the small set the
// Result contract promises.
func normalizeCell(v interface{}) interface{} {
	switch val := v.(type) {
	case []byte:
		return string(val)
	case time.Time:
		return val.Format("2006-01-02")
	default:
		return v
	}
}
