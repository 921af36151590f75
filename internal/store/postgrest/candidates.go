package postgrest

import (
	"context"

	"github.com/spigell/cv-screener/internal/recruiting"
	"github.com/spigell/cv-screener/internal/store"
)

func (c *Client) CreateCandidate(ctx context.Context, cand *recruiting.Candidate) (*recruiting.Candidate, error) {
	row, err := insert[candidateRow](ctx, c, store.TableCandidates, newCandidateRow(cand))
	if err != nil {
		return nil, err
	}
	return row.candidate(), nil
}

func (c *Client) GetCandidate(ctx context.Context, id int64) (*recruiting.Candidate, error) {
	row, err := getOne[candidateRow](ctx, c, store.TableCandidates, "*", id)
	if err != nil {
		return nil, err
	}
	return row.candidate(), nil
}

func (c *Client) ListCandidates(ctx context.Context, q store.Query) ([]*recruiting.Candidate, error) {
	rows, err := list[candidateRow](ctx, c, store.TableCandidates, candidateListSelect, q)
	if err != nil {
		return nil, err
	}
	candidates := make([]*recruiting.Candidate, len(rows))
	for i, r := range rows {
		candidates[i] = r.candidate()
	}
	return candidates, nil
}

func (c *Client) CountCandidates(ctx context.Context, filters ...store.Filter) (int, error) {
	return c.countRows(ctx, store.TableCandidates, filters)
}

func (c *Client) UpdateCandidate(ctx context.Context, id int64, u store.CandidateUpdate) error {
	return c.patchOne(ctx, store.TableCandidates, id, u.Columns())
}

func (c *Client) MoveCandidates(ctx context.Context, ids []int64, folderID *int64) error {
	if len(ids) == 0 {
		return nil
	}
	params, err := idsFilter(ids)
	if err != nil {
		return store.Wrap("update", store.TableCandidates, err)
	}
	_, err = c.patch(ctx, store.TableCandidates, params, map[string]any{store.ColFolderID: folderID})
	return err
}

func (c *Client) DeleteCandidates(ctx context.Context, ids []int64) error {
	return c.deleteIDs(ctx, store.TableCandidates, ids)
}
