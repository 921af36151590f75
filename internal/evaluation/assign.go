package evaluation

import (
	"context"
	"fmt"

	"github.com/spigell/cv-screener/internal/logger"
	"github.com/spigell/cv-screener/internal/recruiting"
	"github.com/spigell/cv-screener/internal/store"
	"go.uber.org/zap"
)

// Assignment reports the outcome of linking candidates to a posting.
type Assignment struct {
	Inserted int `json:"inserted"`
	Skipped  int `json:"skipped"`
}

// AssignCandidates creates a pending evaluation per candidate. Candidates that
// are already linked to the posting are skipped.
func (p *Pipeline) AssignCandidates(ctx context.Context, postingID int64, candidateIDs []int64) (Assignment, error) {
	var result Assignment

	if len(candidateIDs) == 0 {
		return result, recruiting.NewValidationError("candidateIds", "select at least one candidate")
	}
	if _, err := p.store.GetPosting(ctx, postingID); err != nil {
		return result, fmt.Errorf("load posting: %w", err)
	}

	seen := make(map[int64]bool, len(candidateIDs))
	for _, id := range candidateIDs {
		if seen[id] {
			result.Skipped++
			continue
		}
		seen[id] = true

		created, err := p.store.CreateEvaluation(ctx, &recruiting.Evaluation{CandidateID: id, PostingID: postingID})
		if err != nil {
			return result, fmt.Errorf("assign candidate %d: %w", id, err)
		}
		if created {
			result.Inserted++
		} else {
			result.Skipped++
		}
	}

	if result.Inserted > 0 {
		p.invalidate(ctx)
	}

	p.logger.Info("candidates assigned",
		zap.Int64(logger.FieldPosting, postingID),
		zap.Int("inserted", result.Inserted),
		zap.Int("skipped", result.Skipped),
	)
	return result, nil
}

// AssignFolder assigns every candidate in the folder and its subfolders.
func (p *Pipeline) AssignFolder(ctx context.Context, postingID, folderID int64) (Assignment, error) {
	folders, err := p.store.ListFolders(ctx)
	if err != nil {
		return Assignment{}, fmt.Errorf("list folders: %w", err)
	}
	if folders.Find(folderID) == nil {
		return Assignment{}, fmt.Errorf("folder %d: %w", folderID, store.ErrNotFound)
	}

	candidates, err := p.store.ListCandidates(ctx, store.Where(store.FolderScope(folders.SubfolderIDs(folderID))))
	if err != nil {
		return Assignment{}, fmt.Errorf("list candidates: %w", err)
	}
	if len(candidates) == 0 {
		return Assignment{}, nil
	}

	ids := make([]int64, len(candidates))
	for i, c := range candidates {
		ids[i] = c.ID
	}
	return p.AssignCandidates(ctx, postingID, ids)
}

func (p *Pipeline) invalidate(ctx context.Context) {
	if p.cache == nil {
		return
	}
	if err := p.cache.Invalidate(ctx); err != nil {
		p.logger.Warn("could not invalidate the postings summary", zap.Error(err))
	}
}
