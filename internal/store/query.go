package store

type Op string

const (
	OpEq     Op = "eq"
	OpIn     Op = "in"
	OpIsNull Op = "is"
)

// Filter is a single predicate over a column.
type Filter struct {
	Column string
	Op     Op
	Values []any
}

func Eq(column string, value any) Filter {
	return Filter{Column: column, Op: OpEq, Values: []any{value}}
}

func In[T any](column string, values []T) Filter {
	vs := make([]any, len(values))
	for i, v := range values {
		vs[i] = v
	}
	return Filter{Column: column, Op: OpIn, Values: vs}
}

func IsNull(column string) Filter {
	return Filter{Column: column, Op: OpIsNull}
}

type Order struct {
	Column string
	Desc   bool
}

// Query selects rows. A zero Limit means no limit.
type Query struct {
	Filters []Filter
	Order   []Order
	Offset  int
	Limit   int
}

// Where returns a query with the given filters.
func Where(filters ...Filter) Query {
	return Query{Filters: filters}
}

func (q Query) OrderBy(column string, desc bool) Query {
	q.Order = append(q.Order, Order{Column: column, Desc: desc})
	return q
}

func (q Query) Page(offset, limit int) Query {
	q.Offset, q.Limit = offset, limit
	return q
}

// FolderScope restricts candidates to a set of folders, or to candidates
// without a folder when ids is nil.
func FolderScope(ids []int64) Filter {
	if ids == nil {
		return IsNull(ColFolderID)
	}
	return In(ColFolderID, ids)
}
