package memory

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spigell/cv-screener/internal/store"
)

// row exposes column values by their stored name.
type row interface {
	column(name string) any
}

// normalize turns pointers and integer kinds into comparable values. Nil
// pointers become nil.
func normalize(v any) any {
	switch val := v.(type) {
	case *int64:
		if val == nil {
			return nil
		}
		return *val
	case *int:
		if val == nil {
			return nil
		}
		return int64(*val)
	case *string:
		if val == nil {
			return nil
		}
		return *val
	case int:
		return int64(val)
	case int32:
		return int64(val)
	default:
		return v
	}
}

func matches(r row, filters []store.Filter) (bool, error) {
	for _, f := range filters {
		got := normalize(r.column(f.Column))
		switch f.Op {
		case store.OpEq:
			if len(f.Values) != 1 {
				return false, fmt.Errorf("eq filter on %s needs one value", f.Column)
			}
			if got == nil || got != normalize(f.Values[0]) {
				return false, nil
			}
		case store.OpIn:
			found := false
			for _, v := range f.Values {
				if got != nil && got == normalize(v) {
					found = true
					break
				}
			}
			if !found {
				return false, nil
			}
		case store.OpIsNull:
			if got != nil {
				return false, nil
			}
		default:
			return false, fmt.Errorf("unsupported filter %q", f.Op)
		}
	}
	return true, nil
}

// compare orders two column values; nil sorts after everything else.
func compare(a, b any) int {
	a, b = normalize(a), normalize(b)
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}

	switch av := a.(type) {
	case int64:
		bv := b.(int64)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		}
		return 0
	case string:
		return strings.Compare(av, b.(string))
	case time.Time:
		return av.Compare(b.(time.Time))
	}
	return 0
}

// query filters, sorts and pages rows the way the database backends do.
func query[T row](rows []T, q store.Query) ([]T, error) {
	var out []T
	for _, r := range rows {
		ok, err := matches(r, q.Filters)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, r)
		}
	}

	if len(q.Order) > 0 {
		sort.SliceStable(out, func(i, j int) bool {
			for _, o := range q.Order {
				c := compare(out[i].column(o.Column), out[j].column(o.Column))
				if c == 0 {
					continue
				}
				// Nulls stay last in both directions.
				if normalize(out[i].column(o.Column)) == nil || normalize(out[j].column(o.Column)) == nil {
					return c < 0
				}
				if o.Desc {
					return c > 0
				}
				return c < 0
			}
			return false
		})
	}

	if q.Offset > 0 {
		if q.Offset >= len(out) {
			return nil, nil
		}
		out = out[q.Offset:]
	}
	if q.Limit > 0 && q.Limit < len(out) {
		out = out[:q.Limit]
	}
	return out, nil
}
