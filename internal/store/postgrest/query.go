package postgrest

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spigell/cv-screener/internal/store"
)

// encodeFilters renders filters as PostgREST horizontal filtering parameters.
func encodeFilters(q url.Values, filters []store.Filter) error {
	for _, f := range filters {
		switch f.Op {
		case store.OpEq:
			if len(f.Values) != 1 {
				return fmt.Errorf("eq filter on %s needs one value", f.Column)
			}
			q.Add(f.Column, "eq."+formatValue(f.Values[0]))
		case store.OpIn:
			values := make([]string, len(f.Values))
			for i, v := range f.Values {
				values[i] = quoteListValue(formatValue(v))
			}
			q.Add(f.Column, "in.("+strings.Join(values, ",")+")")
		case store.OpIsNull:
			q.Add(f.Column, "is.null")
		default:
			return fmt.Errorf("unsupported filter %q", f.Op)
		}
	}
	return nil
}

func encodeOrder(q url.Values, order []store.Order) {
	if len(order) == 0 {
		return
	}
	parts := make([]string, len(order))
	for i, o := range order {
		dir := "asc"
		if o.Desc {
			dir = "desc"
		}
		parts[i] = o.Column + "." + dir + ".nullslast"
	}
	q.Set("order", strings.Join(parts, ","))
}

func idFilter(id int64) url.Values {
	q := url.Values{}
	q.Set(store.ColID, "eq."+strconv.FormatInt(id, 10))
	return q
}

func idsFilter(ids []int64) (url.Values, error) {
	q := url.Values{}
	err := encodeFilters(q, []store.Filter{store.In(store.ColID, ids)})
	return q, err
}

func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		return val
	case time.Time:
		return val.UTC().Format(time.RFC3339)
	case *int64:
		if val == nil {
			return "null"
		}
		return strconv.FormatInt(*val, 10)
	default:
		return fmt.Sprint(val)
	}
}

// quoteListValue quotes values that would break the in.(...) list syntax.
func quoteListValue(v string) string {
	if strings.ContainsAny(v, `,()"\ `) {
		v = strings.ReplaceAll(v, `\`, `\\`)
		return `"` + strings.ReplaceAll(v, `"`, `\"`) + `"`
	}
	return v
}
