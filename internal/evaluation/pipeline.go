// Package evaluation scores candidates against job postings.
package evaluation

import (
	"context"
	"fmt"
	"time"

	"github.com/spigell/cv-screener/internal/ai"
	"github.com/spigell/cv-screener/internal/logger"
	"github.com/spigell/cv-screener/internal/pdftext"
	"github.com/spigell/cv-screener/internal/recruiting"
	"github.com/spigell/cv-screener/internal/store"
	"go.uber.org/zap"
)

const analysisErrorPrefix = "Analysis error: "

type TextExtractor interface {
	Extract(ctx context.Context, pdf []byte) (string, error)
}

// Invalidator drops cached data that new applications make stale.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

type Pipeline struct {
	store     store.Store
	extractor TextExtractor
	scorer    ai.Scorer
	cache     Invalidator
	logger    *zap.Logger
	now       func() time.Time
}

// New creates a pipeline. cache may be nil.
func New(st store.Store, extractor TextExtractor, scorer ai.Scorer, cache Invalidator, log *zap.Logger) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{
		store:     st,
		extractor: extractor,
		scorer:    scorer,
		cache:     cache,
		logger:    log.Named("evaluation"),
		now:       time.Now,
	}
}

// Report summarizes a ProcessPosting run.
type Report struct {
	PostingID int64 `json:"postingId"`
	Pending   int   `json:"pending"`
	Scored    int   `json:"scored"`
	Failed    int   `json:"failed"`
}

// ProcessPosting scores every evaluation of the posting that has no score yet
// or whose previous analysis failed. Evaluations are handled one at a time and
// a failure never stops the run.
func (p *Pipeline) ProcessPosting(ctx context.Context, postingID int64) (Report, error) {
	report := Report{PostingID: postingID}
	log := p.logger.With(zap.Int64(logger.FieldPosting, postingID))

	posting, err := p.store.GetPosting(ctx, postingID)
	if err != nil {
		return report, fmt.Errorf("load posting: %w", err)
	}

	evaluations, err := p.store.ListEvaluations(ctx, store.Where(
		store.Eq(store.ColPostingID, postingID),
	).OrderBy(store.ColID, false))
	if err != nil {
		return report, fmt.Errorf("list evaluations: %w", err)
	}

	for _, e := range evaluations {
		if !e.Pending() {
			continue
		}
		report.Pending++

		elog := log.With(zap.Int64(logger.FieldCandidate, e.CandidateID))
		if err := p.evaluate(ctx, posting, e, elog); err != nil {
			report.Failed++
			elog.Warn("analysis failed", zap.Error(err))
			p.recordFailure(ctx, e, err, elog)
			continue
		}
		report.Scored++
	}

	log.Info("posting processed",
		zap.Int("pending", report.Pending),
		zap.Int("scored", report.Scored),
		zap.Int("failed", report.Failed),
	)
	return report, nil
}

func (p *Pipeline) evaluate(ctx context.Context, posting *recruiting.JobPosting, e *recruiting.Evaluation, log *zap.Logger) error {
	candidate, err := p.store.GetCandidate(ctx, e.CandidateID)
	if err != nil {
		return fmt.Errorf("load candidate: %w", err)
	}

	text, extracted, err := p.candidateText(ctx, candidate)
	if err != nil {
		return err
	}

	assessment, err := p.scorer.Score(ctx, text, posting)
	if err != nil {
		return err
	}

	err = p.store.UpdateEvaluation(ctx, e.ID, store.EvaluationUpdate{
		Score:         &assessment.Score,
		Justification: &assessment.Justification,
	})
	if err != nil {
		return fmt.Errorf("save evaluation: %w", err)
	}

	update := store.CandidateUpdate{
		FullName:      assessment.FullName,
		Email:         assessment.Email,
		Phone:         assessment.Phone,
		Score:         &assessment.Score,
		Justification: &assessment.Justification,
	}
	if extracted {
		update.ExtractedText = &text
	}
	if err := p.store.UpdateCandidate(ctx, candidate.ID, update); err != nil {
		// The evaluation already holds the result.
		log.Warn("could not update the candidate", zap.Error(err))
	}

	log.Info("candidate scored", zap.Int("score", assessment.Score))
	return nil
}

// candidateText returns the cached text or extracts it from the stored file.
// extracted is true when the text was produced now.
func (p *Pipeline) candidateText(ctx context.Context, c *recruiting.Candidate) (text string, extracted bool, err error) {
	if pdftext.Usable(c.ExtractedText) == nil {
		return c.ExtractedText, false, nil
	}
	if c.RawFileBase64 == "" {
		return "", false, &pdftext.ExtractionError{Reason: pdftext.ReasonEmpty, Err: fmt.Errorf("no stored file")}
	}

	pdf, err := pdftext.DecodeDataURL(c.RawFileBase64)
	if err != nil {
		return "", false, &pdftext.ExtractionError{Reason: pdftext.ReasonUnreadable, Err: err}
	}

	text, err = p.extractor.Extract(ctx, pdf)
	if err != nil {
		return "", false, err
	}
	if err := pdftext.Usable(text); err != nil {
		return "", false, err
	}
	return text, true, nil
}

func (p *Pipeline) recordFailure(ctx context.Context, e *recruiting.Evaluation, cause error, log *zap.Logger) {
	score := recruiting.ScoreFailed
	justification := analysisErrorPrefix + cause.Error()

	err := p.store.UpdateEvaluation(ctx, e.ID, store.EvaluationUpdate{
		Score:         &score,
		Justification: &justification,
	})
	if err != nil {
		log.Error("could not record the failed analysis", zap.Error(err))
		return
	}

	err = p.store.UpdateCandidate(ctx, e.CandidateID, store.CandidateUpdate{
		Score:         &score,
		Justification: &justification,
	})
	if err != nil {
		log.Warn("could not update the candidate", zap.Error(err))
	}
}

// ProcessOpen runs ProcessPosting for every posting that still accepts
// applications and returns the reports of postings that had pending work.
func (p *Pipeline) ProcessOpen(ctx context.Context) ([]Report, error) {
	postings, err := p.store.ListPostings(ctx)
	if err != nil {
		return nil, fmt.Errorf("list postings: %w", err)
	}

	now := p.now()
	var reports []Report
	for _, posting := range postings {
		if !now.Before(posting.ClosesAt()) {
			continue
		}
		report, err := p.ProcessPosting(ctx, posting.ID)
		if err != nil {
			p.logger.Error("processing posting failed", zap.Int64(logger.FieldPosting, posting.ID), zap.Error(err))
			continue
		}
		if report.Pending > 0 {
			reports = append(reports, report)
		}
	}
	return reports, nil
}
