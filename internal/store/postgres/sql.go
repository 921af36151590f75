package postgres

import (
	"fmt"
	"strings"

	"github.com/spigell/cv-screener/internal/store"
)

// args collects positional parameters for a statement.
type args struct {
	values []any
}

func (a *args) add(v any) string {
	a.values = append(a.values, v)
	return fmt.Sprintf("$%d", len(a.values))
}

func whereClause(filters []store.Filter, a *args) (string, error) {
	if len(filters) == 0 {
		return "", nil
	}

	parts := make([]string, 0, len(filters))
	for _, f := range filters {
		switch f.Op {
		case store.OpEq:
			if len(f.Values) != 1 {
				return "", fmt.Errorf("eq filter on %s needs one value", f.Column)
			}
			parts = append(parts, fmt.Sprintf("%s = %s", f.Column, a.add(f.Values[0])))
		case store.OpIn:
			if len(f.Values) == 0 {
				parts = append(parts, "FALSE")
				continue
			}
			placeholders := make([]string, len(f.Values))
			for i, v := range f.Values {
				placeholders[i] = a.add(v)
			}
			parts = append(parts, fmt.Sprintf("%s IN (%s)", f.Column, strings.Join(placeholders, ", ")))
		case store.OpIsNull:
			parts = append(parts, f.Column+" IS NULL")
		default:
			return "", fmt.Errorf("unsupported filter %q", f.Op)
		}
	}

	return " WHERE " + strings.Join(parts, " AND "), nil
}

func orderClause(order []store.Order) string {
	if len(order) == 0 {
		return ""
	}
	parts := make([]string, len(order))
	for i, o := range order {
		if o.Desc {
			parts[i] = o.Column + " DESC NULLS LAST"
		} else {
			parts[i] = o.Column + " ASC NULLS LAST"
		}
	}
	return " ORDER BY " + strings.Join(parts, ", ")
}

func pageClause(q store.Query, a *args) string {
	var b strings.Builder
	if q.Limit > 0 {
		b.WriteString(" LIMIT " + a.add(q.Limit))
	}
	if q.Offset > 0 {
		b.WriteString(" OFFSET " + a.add(q.Offset))
	}
	return b.String()
}

// selectSQL builds a SELECT over table with the query's filters, order and page.
func selectSQL(columns, table string, q store.Query) (string, []any, error) {
	a := &args{}
	where, err := whereClause(q.Filters, a)
	if err != nil {
		return "", nil, err
	}
	sql := "SELECT " + columns + " FROM " + table + where + orderClause(q.Order) + pageClause(q, a)
	return sql, a.values, nil
}

func countSQL(table string, filters []store.Filter) (string, []any, error) {
	a := &args{}
	where, err := whereClause(filters, a)
	if err != nil {
		return "", nil, err
	}
	return "SELECT count(*) FROM " + table + where, a.values, nil
}

// updateSQL builds an UPDATE of cols on the rows matching filters.
func updateSQL(table string, cols map[string]any, filters []store.Filter) (string, []any, error) {
	a := &args{}
	sets := make([]string, 0, len(cols))
	for _, name := range store.SortedKeys(cols) {
		sets = append(sets, fmt.Sprintf("%s = %s", name, a.add(cols[name])))
	}
	where, err := whereClause(filters, a)
	if err != nil {
		return "", nil, err
	}
	return "UPDATE " + table + " SET " + strings.Join(sets, ", ") + where, a.values, nil
}

func deleteSQL(table string, filters []store.Filter) (string, []any, error) {
	a := &args{}
	where, err := whereClause(filters, a)
	if err != nil {
		return "", nil, err
	}
	if where == "" {
		return "", nil, fmt.Errorf("refusing to delete every row of %s", table)
	}
	return "DELETE FROM " + table + where, a.values, nil
}
