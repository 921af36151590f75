package postgrest

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/spigell/cv-screener/internal/store"
)

func returnRepresentation() http.Header {
	h := http.Header{}
	h.Set("Prefer", "return=representation")
	return h
}

// list encodes q and fetches the matching rows of table.
func list[T any](ctx context.Context, c *Client, table, columns string, q store.Query) ([]T, error) {
	params := url.Values{}
	params.Set("select", columns)
	if err := encodeFilters(params, q.Filters); err != nil {
		return nil, store.Wrap("list", table, err)
	}
	encodeOrder(params, q.Order)

	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
		params.Set("offset", strconv.Itoa(q.Offset))
	} else if q.Offset > 0 {
		// Paging in getItems starts from zero, so an offset without a limit
		// is applied after the fetch.
		rows, err := getItems[T](ctx, c, table, params)
		if err != nil {
			return nil, store.Wrap("list", table, err)
		}
		if q.Offset >= len(rows) {
			return nil, nil
		}
		return rows[q.Offset:], nil
	}

	rows, err := getItems[T](ctx, c, table, params)
	if err != nil {
		return nil, store.Wrap("list", table, err)
	}
	return rows, nil
}

// getOne fetches the row with the given id.
func getOne[T any](ctx context.Context, c *Client, table, columns string, id int64) (T, error) {
	var zero T

	params := idFilter(id)
	params.Set("select", columns)

	var rows []T
	if _, err := c.getJSON(ctx, table, params, nil, &rows); err != nil {
		return zero, store.Wrap("get", table, err)
	}
	if len(rows) == 0 {
		return zero, store.Wrap("get", table, store.ErrNotFound)
	}
	return rows[0], nil
}

// insert creates a row and returns its stored representation.
func insert[T any](ctx context.Context, c *Client, table string, row any) (T, error) {
	var zero T

	var rows []T
	if _, err := c.do(ctx, http.MethodPost, table, nil, returnRepresentation(), row, &rows); err != nil {
		return zero, store.Wrap("insert", table, err)
	}
	if len(rows) == 0 {
		return zero, store.Wrap("insert", table, store.ErrNotFound)
	}
	return rows[0], nil
}

// patch updates the rows matched by params and returns how many changed.
func (c *Client) patch(ctx context.Context, table string, params url.Values, cols map[string]any) (int, error) {
	if len(cols) == 0 {
		return 0, nil
	}
	params.Set("select", store.ColID)

	var rows []struct {
		ID int64 `json:"id"`
	}
	if _, err := c.do(ctx, http.MethodPatch, table, params, returnRepresentation(), cols, &rows); err != nil {
		return 0, store.Wrap("update", table, err)
	}
	return len(rows), nil
}

func (c *Client) patchOne(ctx context.Context, table string, id int64, cols map[string]any) error {
	if len(cols) == 0 {
		return nil
	}
	n, err := c.patch(ctx, table, idFilter(id), cols)
	if err != nil {
		return err
	}
	if n == 0 {
		return store.Wrap("update", table, store.ErrNotFound)
	}
	return nil
}

func (c *Client) deleteIDs(ctx context.Context, table string, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	params, err := idsFilter(ids)
	if err != nil {
		return store.Wrap("delete", table, err)
	}
	if _, err := c.do(ctx, http.MethodDelete, table, params, nil, nil, nil); err != nil {
		return store.Wrap("delete", table, err)
	}
	return nil
}

func (c *Client) countRows(ctx context.Context, table string, filters []store.Filter) (int, error) {
	params := url.Values{}
	if err := encodeFilters(params, filters); err != nil {
		return 0, store.Wrap("count", table, err)
	}
	n, err := c.count(ctx, table, params)
	if err != nil {
		return 0, store.Wrap("count", table, err)
	}
	return n, nil
}
