package postgrest

import (
	"context"
	"net/http"

	"github.com/spigell/cv-screener/internal/recruiting"
	"github.com/spigell/cv-screener/internal/store"
)

func (c *Client) ListPostings(ctx context.Context) ([]*recruiting.JobPosting, error) {
	rows, err := list[postingRow](ctx, c, store.TablePostings, "*", store.Query{}.OrderBy(store.ColCreatedAt, true))
	if err != nil {
		return nil, err
	}
	postings := make([]*recruiting.JobPosting, len(rows))
	for i, r := range rows {
		postings[i] = r.posting()
	}
	return postings, nil
}

func (c *Client) GetPosting(ctx context.Context, id int64) (*recruiting.JobPosting, error) {
	row, err := getOne[postingRow](ctx, c, store.TablePostings, "*", id)
	if err != nil {
		return nil, err
	}
	return row.posting(), nil
}

func (c *Client) CreatePosting(ctx context.Context, p *recruiting.JobPosting) (*recruiting.JobPosting, error) {
	row, err := insert[postingRow](ctx, c, store.TablePostings, newPostingRow(p))
	if err != nil {
		return nil, err
	}
	return row.posting(), nil
}

func (c *Client) UpdatePosting(ctx context.Context, p *recruiting.JobPosting) (*recruiting.JobPosting, error) {
	params := idFilter(p.ID)
	params.Set("select", "*")

	var rows []postingRow
	if _, err := c.do(ctx, http.MethodPatch, store.TablePostings, params, returnRepresentation(), newPostingRow(p), &rows); err != nil {
		return nil, store.Wrap("update", store.TablePostings, err)
	}
	if len(rows) == 0 {
		return nil, store.Wrap("update", store.TablePostings, store.ErrNotFound)
	}
	return rows[0].posting(), nil
}
