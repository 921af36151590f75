package evaluation

import (
	"context"
	"fmt"

	"github.com/spigell/cv-screener/internal/logger"
	"github.com/spigell/cv-screener/internal/pdftext"
	"github.com/spigell/cv-screener/internal/recruiting"
	"github.com/spigell/cv-screener/internal/store"
	"go.uber.org/zap"
)

// Application is a CV submitted through the public form of a posting.
type Application struct {
	FileName string
	Payload  []byte
	FullName string
	Email    string
	Phone    string
}

// Apply stores a public application as a new candidate with a pending
// evaluation. The posting must still be open.
func (p *Pipeline) Apply(ctx context.Context, postingID int64, app Application) (*recruiting.Evaluation, error) {
	if err := recruiting.ValidatePDF(app.FileName, app.Payload); err != nil {
		return nil, err
	}

	posting, err := p.store.GetPosting(ctx, postingID)
	if err != nil {
		return nil, fmt.Errorf("load posting: %w", err)
	}

	applications, err := p.store.CountEvaluations(ctx, store.Eq(store.ColPostingID, postingID))
	if err != nil {
		return nil, fmt.Errorf("count applications: %w", err)
	}
	if err := posting.Open(p.now(), applications); err != nil {
		return nil, err
	}

	evaluation, err := p.enroll(ctx, postingID, &recruiting.Candidate{
		FileName:      app.FileName,
		RawFileBase64: pdftext.EncodeDataURL(app.Payload),
		FullName:      optional(app.FullName),
		Email:         optional(app.Email),
		Phone:         optional(app.Phone),
	})
	if err != nil {
		return nil, err
	}

	p.invalidate(ctx)

	p.logger.Info("application received",
		append(logger.EvaluationFields(evaluation.CandidateID, postingID), zap.String(logger.FieldFileName, app.FileName))...,
	)

	return evaluation, nil
}

// enroll creates the candidate and its pending evaluation for the posting. The
// candidate is removed again when the evaluation cannot be stored.
func (p *Pipeline) enroll(ctx context.Context, postingID int64, c *recruiting.Candidate) (*recruiting.Evaluation, error) {
	candidate, err := p.store.CreateCandidate(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("create candidate: %w", err)
	}

	if _, err := p.store.CreateEvaluation(ctx, &recruiting.Evaluation{CandidateID: candidate.ID, PostingID: postingID}); err != nil {
		if derr := p.store.DeleteCandidates(ctx, []int64{candidate.ID}); derr != nil {
			p.logger.Error("could not remove the candidate without evaluation",
				append(logger.EvaluationFields(candidate.ID, postingID), zap.Error(derr))...,
			)
		}
		return nil, fmt.Errorf("create evaluation: %w", err)
	}

	created, err := p.store.ListEvaluations(ctx, store.Where(
		store.Eq(store.ColCandidateID, candidate.ID),
		store.Eq(store.ColPostingID, postingID),
	).Page(0, 1))
	if err != nil || len(created) == 0 {
		return nil, fmt.Errorf("load evaluation: %w", store.Wrap("get", store.TableEvaluations, orNotFound(err)))
	}

	evaluation := created[0]
	evaluation.Candidate = candidate
	return evaluation, nil
}

func orNotFound(err error) error {
	if err == nil {
		return store.ErrNotFound
	}
	return err
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
