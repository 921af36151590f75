package postgrest

import (
	"context"
	"net/http"
	"net/url"

	"github.com/spigell/cv-screener/internal/recruiting"
	"github.com/spigell/cv-screener/internal/store"
)

func (c *Client) ListEvaluations(ctx context.Context, q store.Query) ([]*recruiting.Evaluation, error) {
	rows, err := list[evaluationRow](ctx, c, store.TableEvaluations, "*", q)
	if err != nil {
		return nil, err
	}
	evaluations := make([]*recruiting.Evaluation, len(rows))
	for i, r := range rows {
		evaluations[i] = r.evaluation()
	}
	return evaluations, nil
}

func (c *Client) CountEvaluations(ctx context.Context, filters ...store.Filter) (int, error) {
	return c.countRows(ctx, store.TableEvaluations, filters)
}

// ApplicationCounts pages through the posting ids of every evaluation; the
// REST interface has no GROUP BY without a database view.
func (c *Client) ApplicationCounts(ctx context.Context) (map[int64]int, error) {
	params := url.Values{}
	params.Set("select", store.ColPostingID)

	rows, err := getItems[struct {
		PostingID int64 `json:"aviso_id"`
	}](ctx, c, store.TableEvaluations, params)
	if err != nil {
		return nil, store.Wrap("count", store.TableEvaluations, err)
	}

	counts := make(map[int64]int)
	for _, r := range rows {
		counts[r.PostingID]++
	}
	return counts, nil
}

func (c *Client) CreateEvaluation(ctx context.Context, e *recruiting.Evaluation) (bool, error) {
	params := url.Values{}
	params.Set("on_conflict", store.ColCandidateID+","+store.ColPostingID)

	header := http.Header{}
	header.Add("Prefer", "return=representation")
	header.Add("Prefer", "resolution=ignore-duplicates")

	row := evaluationRow{
		CandidateID:   e.CandidateID,
		PostingID:     e.PostingID,
		Score:         e.Score,
		Justification: e.Justification,
		Notes:         e.Notes,
	}

	var created []evaluationRow
	if _, err := c.do(ctx, http.MethodPost, store.TableEvaluations, params, header, row, &created); err != nil {
		return false, store.Wrap("insert", store.TableEvaluations, err)
	}
	// Ignored duplicates are not part of the representation.
	return len(created) == 1, nil
}

func (c *Client) UpdateEvaluation(ctx context.Context, id int64, u store.EvaluationUpdate) error {
	return c.patchOne(ctx, store.TableEvaluations, id, u.Columns())
}
