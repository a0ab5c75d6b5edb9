package query

import (
	"fmt"
	"strings"

	"cloud.google.com/go/spanner"
)

// Direction is the sort direction of an ORDER BY key.
type Direction int

const (
	Asc Direction = iota
	Desc
)

func (d Direction) keyword() string {
	if d == Desc {
		return "DESC"
	}
	return "ASC"
}

type sortKey struct {
	column string
	dir    Direction
}

// Builder assembles a single-table SELECT for Spanner. Every method returns a
// new Builder, so a partially built query can be shared as a base.
//
// Parameters are bound as @p0, @p1, ... in the order conditions were added;
// the row limit is bound as @limit.
type Builder struct {
	table   string
	columns []string
	conds   []Condition
	order   []sortKey
	limit   int64
}

// From starts a query over table.
func From(table string) *Builder {
	return &Builder{table: table}
}

// Select appends columns to the projection. With no columns the query selects *.
func (b *Builder) Select(columns ...string) *Builder {
	next := b.clone()
	next.columns = append(next.columns, columns...)
	return next
}

// Where adds a condition. Conditions are ANDed.
func (b *Builder) Where(c Condition) *Builder {
	next := b.clone()
	next.conds = append(next.conds, c)
	return next
}

// OrderBy appends a sort key. Later keys break ties left by earlier ones.
func (b *Builder) OrderBy(column string, dir Direction) *Builder {
	next := b.clone()
	next.order = append(next.order, sortKey{column: column, dir: dir})
	return next
}

// Limit caps the number of rows. Zero means unlimited.
func (b *Builder) Limit(n int64) *Builder {
	next := b.clone()
	next.limit = n
	return next
}

// Build renders the statement.
func (b *Builder) Build() spanner.Statement {
	var sb strings.Builder
	bind := newBinder()

	projection := "*"
	if len(b.columns) > 0 {
		projection = strings.Join(b.columns, ", ")
	}
	fmt.Fprintf(&sb, "SELECT %s FROM %s", projection, b.table)

	for i, c := range b.conds {
		if i == 0 {
			sb.WriteString(" WHERE ")
		} else {
			sb.WriteString(" AND ")
		}
		sb.WriteString(c.SQL(bind))
	}

	for i, k := range b.order {
		if i == 0 {
			sb.WriteString(" ORDER BY ")
		} else {
			sb.WriteString(", ")
		}
		sb.WriteString(k.column + " " + k.dir.keyword())
	}

	if b.limit > 0 {
		sb.WriteString(" LIMIT @limit")
		bind.params["limit"] = b.limit
	}

	return spanner.Statement{SQL: sb.String(), Params: bind.params}
}

func (b *Builder) clone() *Builder {
	return &Builder{
		table:   b.table,
		columns: append([]string(nil), b.columns...),
		conds:   append([]Condition(nil), b.conds...),
		order:   append([]sortKey(nil), b.order...),
		limit:   b.limit,
	}
}

// String renders the statement for logs and test failures.
func (b *Builder) String() string {
	stmt := b.Build()
	return fmt.Sprintf("%s %v", stmt.SQL, stmt.Params)
}
