package evaluation

import (
	"context"
	"fmt"

	"github.com/spigell/cv-screener/internal/logger"
	"github.com/spigell/cv-screener/internal/pdftext"
	"github.com/spigell/cv-screener/internal/recruiting"
	"go.uber.org/zap"
)

// Upload is a CV file a recruiter adds to a posting directly.
type Upload struct {
	FileName string
	Payload  []byte
}

type UploadFailure struct {
	FileName string `json:"fileName"`
	Error    string `json:"error"`
}

// UploadResult lists the evaluations created by AddCandidates and the files
// that could not be stored.
type UploadResult struct {
	Added  []*recruiting.Evaluation `json:"added"`
	Failed []UploadFailure          `json:"failed"`
}

// AddCandidates stores every file as a new candidate with a pending evaluation
// for the posting. Unlike Apply, closed or full postings are accepted. A file
// that fails is reported and the rest are still added.
func (p *Pipeline) AddCandidates(ctx context.Context, postingID int64, uploads []Upload) (UploadResult, error) {
	result := UploadResult{
		Added:  []*recruiting.Evaluation{},
		Failed: []UploadFailure{},
	}

	if len(uploads) == 0 {
		return result, recruiting.NewValidationError("files", "select at least one file")
	}
	if _, err := p.store.GetPosting(ctx, postingID); err != nil {
		return result, fmt.Errorf("load posting: %w", err)
	}

	for _, u := range uploads {
		log := p.logger.With(zap.Int64(logger.FieldPosting, postingID), zap.String(logger.FieldFileName, u.FileName))

		evaluation, err := p.addUpload(ctx, postingID, u)
		if err != nil {
			log.Warn("could not add the file", zap.Error(err))
			result.Failed = append(result.Failed, UploadFailure{FileName: u.FileName, Error: err.Error()})
			continue
		}
		result.Added = append(result.Added, evaluation)
	}

	if len(result.Added) > 0 {
		p.invalidate(ctx)
	}

	p.logger.Info("files added to posting",
		zap.Int64(logger.FieldPosting, postingID),
		zap.Int("added", len(result.Added)),
		zap.Int("failed", len(result.Failed)),
	)
	return result, nil
}

func (p *Pipeline) addUpload(ctx context.Context, postingID int64, u Upload) (*recruiting.Evaluation, error) {
	if err := recruiting.ValidatePDF(u.FileName, u.Payload); err != nil {
		return nil, err
	}
	return p.enroll(ctx, postingID, &recruiting.Candidate{
		FileName:      u.FileName,
		RawFileBase64: pdftext.EncodeDataURL(u.Payload),
	})
}
