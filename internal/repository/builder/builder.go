package builder

import (
	"fmt"
	"strconv"
	"strings"
)

type verb int

const (
	verbSelect verb = iota + 1
	verbInsert
	verbUpdate
	verbDelete
)

// SQLBuilder assembles PostgreSQL statements. Conditions are written with
// ? markers, which Build renumbers into $n placeholders in argument order:
// SET values first, then WHERE values.
type SQLBuilder struct {
	verb    verb
	table   string
	columns []string
	values  []interface{}

	setCols []string
	setArgs []interface{}

	where     []string
	whereArgs []interface{}
	orderBy   []string

	conflictTarget string
	conflictUpdate []string
	returning      []string
}

// NewSQLBuilder creates a new instance of SQLBuilder.
func NewSQLBuilder() *SQLBuilder {
	return &SQLBuilder{}
}

// Select specifies the columns to retrieve.
func (b *SQLBuilder) Select(cols ...string) *SQLBuilder {
	b.verb = verbSelect
	b.columns = cols
	return b
}

// Insert specifies the table and columns for insertion.
func (b *SQLBuilder) Insert(table string, cols ...string) *SQLBuilder {
	b.verb = verbInsert
	b.table = table
	b.columns = cols
	return b
}

func (b *SQLBuilder) Update(table string) *SQLBuilder {
	b.verb = verbUpdate
	b.table = table
	return b
}

func (b *SQLBuilder) Delete(table string) *SQLBuilder {
	b.verb = verbDelete
	b.table = table
	return b
}

func (b *SQLBuilder) From(table string) *SQLBuilder {
	b.table = table
	return b
}

// Set adds one assignment to an UPDATE.
func (b *SQLBuilder) Set(col string, val interface{}) *SQLBuilder {
	b.setCols = append(b.setCols, col)
	b.setArgs = append(b.setArgs, val)
	return b
}

// Values specifies the row for an INSERT, in column order.
func (b *SQLBuilder) Values(vals ...interface{}) *SQLBuilder {
	b.values = vals
	return b
}

// Where adds a condition; multiple conditions are joined with AND.
func (b *SQLBuilder) Where(condition string, args ...interface{}) *SQLBuilder {
	b.where = append(b.where, condition)
	b.whereArgs = append(b.whereArgs, args...)
	return b
}

func (b *SQLBuilder) OrderBy(order string) *SQLBuilder {
	b.orderBy = append(b.orderBy, order)
	return b
}

// OnConflictUpdate turns an INSERT into an upsert on the target column,
// overwriting cols with the proposed row. With no cols the conflicting
// row is left alone.
func (b *SQLBuilder) OnConflictUpdate(target string, cols ...string) *SQLBuilder {
	b.conflictTarget = target
	b.conflictUpdate = cols
	return b
}

// Returning appends a RETURNING clause to INSERT, UPDATE or DELETE.
func (b *SQLBuilder) Returning(cols ...string) *SQLBuilder {
	b.returning = cols
	return b
}

// Build constructs the final SQL string and arguments.
func (b *SQLBuilder) Build() (string, []interface{}) {
	var sb strings.Builder
	var args []interface{}
	n := 0
	next := func() string {
		n++
		return "$" + strconv.Itoa(n)
	}

	switch b.verb {
	case verbSelect:
		fmt.Fprintf(&sb, "SELECT %s FROM %s", strings.Join(b.columns, ", "), b.table)
	case verbInsert:
		placeholders := make([]string, len(b.values))
		for i := range placeholders {
			placeholders[i] = next()
		}
		fmt.Fprintf(&sb, "INSERT INTO %s (%s) VALUES (%s)",
			b.table, strings.Join(b.columns, ", "), strings.Join(placeholders, ", "))
		args = append(args, b.values...)
		b.writeConflict(&sb)
	case verbUpdate:
		sets := make([]string, len(b.setCols))
		for i, col := range b.setCols {
			sets[i] = col + " = " + next()
		}
		fmt.Fprintf(&sb, "UPDATE %s SET %s", b.table, strings.Join(sets, ", "))
		args = append(args, b.setArgs...)
	case verbDelete:
		sb.WriteString("DELETE FROM ")
		sb.WriteString(b.table)
	}

	if len(b.where) > 0 && b.verb != verbInsert {
		sb.WriteString(" WHERE ")
		for i, cond := range b.where {
			if i > 0 {
				sb.WriteString(" AND ")
			}
			sb.WriteString(bind(cond, next))
		}
		args = append(args, b.whereArgs...)
	}

	if len(b.orderBy) > 0 && b.verb == verbSelect {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(strings.Join(b.orderBy, ", "))
	}

	if len(b.returning) > 0 && b.verb != verbSelect {
		sb.WriteString(" RETURNING ")
		sb.WriteString(strings.Join(b.returning, ", "))
	}

	return sb.String(), args
}

func (b *SQLBuilder) writeConflict(sb *strings.Builder) {
	if b.conflictTarget == "" {
		return
	}
	fmt.Fprintf(sb, " ON CONFLICT (%s)", b.conflictTarget)
	if len(b.conflictUpdate) == 0 {
		sb.WriteString(" DO NOTHING")
		return
	}
	sets := make([]string, len(b.conflictUpdate))
	for i, col := range b.conflictUpdate {
		sets[i] = col + " = EXCLUDED." + col
	}
	sb.WriteString(" DO UPDATE SET ")
	sb.WriteString(strings.Join(sets, ", "))
}

// bind replaces each ? in cond with the next positional placeholder.
func bind(cond string, next func() string) string {
	if !strings.Contains(cond, "?") {
		return cond
	}
	var sb strings.Builder
	for _, r := range cond {
		if r == '?' {
			sb.WriteString(next())
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
