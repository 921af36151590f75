package gemini

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/spigell/cv-screener/internal/ai"
	"github.com/spigell/cv-screener/internal/recruiting"
	"github.com/spigell/cv-screener/internal/utils"
	"go.uber.org/zap"
)

const (
	// ScoreTextBudget bounds the CV text sent for scoring.
	ScoreTextBudget = 12000

	// KnockoutCap is the highest score a candidate missing a required condition can get.
	KnockoutCap = 40

	defaultLanguage = "Spanish"
	notSpecified    = "Not specified"
)

// Scorer rates CVs against a posting using the knockout rubric.
type Scorer struct {
	generator contentGenerator
	language  string
	logger    *zap.Logger
	maxLogLen int
}

func NewScorer(generator contentGenerator, language string, maxLogLength int, logger *zap.Logger) *Scorer {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if strings.TrimSpace(language) == "" {
		language = defaultLanguage
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Scorer{generator: generator, language: language, logger: logger, maxLogLen: maxLogLength}
}

type scorePayload struct {
	FullName        *string  `json:"fullName"`
	Email           *string  `json:"email"`
	Phone           *string  `json:"phone"`
	Score           float64  `json:"score"`
	Justification   string   `json:"justification"`
	MissingRequired []string `json:"missingRequired"`
}

func (s *Scorer) Score(ctx context.Context, text string, posting *recruiting.JobPosting) (*ai.Assessment, error) {
	if posting == nil {
		return nil, errors.New("posting is required")
	}

	prompt := render(scorePrompt, map[string]string{
		"POSTING":  postingContext(posting),
		"LANGUAGE": s.language,
		"CV_TEXT":  utils.Truncate(text, ScoreTextBudget),
	})

	logger := s.logger.With(zap.Int64("posting_id", posting.ID))

	raw, err := complete(ctx, s.generator, logger, s.maxLogLen, prompt)
	if err != nil {
		return nil, err
	}

	var payload scorePayload
	if err := decodeResponse(raw, scoreSchema, &payload); err != nil {
		return nil, err
	}

	assessment := &ai.Assessment{
		ContactFields: ai.ContactFields{
			FullName: optional(payload.FullName),
			Email:    optional(payload.Email),
			Phone:    optional(payload.Phone),
		},
		Score:           clampScore(payload.Score),
		Justification:   strings.TrimSpace(payload.Justification),
		MissingRequired: cleanList(payload.MissingRequired, 0),
		Raw:             raw,
	}

	applyKnockout(assessment)

	logger.Debug("cv scored",
		zap.Int("score", assessment.Score),
		zap.Strings("missing_required", assessment.MissingRequired),
	)

	return assessment, nil
}

// applyKnockout caps the score when a required condition is missing and makes
// sure the justification names every missing condition.
func applyKnockout(a *ai.Assessment) {
	if len(a.MissingRequired) == 0 {
		return
	}

	if a.Score > KnockoutCap {
		a.Score = KnockoutCap
	}

	lower := strings.ToLower(a.Justification)
	var unnamed []string
	for _, condition := range a.MissingRequired {
		if !strings.Contains(lower, strings.ToLower(condition)) {
			unnamed = append(unnamed, condition)
		}
	}
	if len(unnamed) == 0 {
		return
	}

	note := "Missing required conditions: " + strings.Join(unnamed, ", ") + "."
	if a.Justification == "" {
		a.Justification = note
		return
	}
	a.Justification += " " + note
}

func clampScore(score float64) int {
	if math.IsNaN(score) {
		return 0
	}
	rounded := int(math.Round(score))
	switch {
	case rounded < 0:
		return 0
	case rounded > 100:
		return 100
	}
	return rounded
}

func postingContext(p *recruiting.JobPosting) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Title: %s\n", strings.TrimSpace(p.Title))
	fmt.Fprintf(&b, "Description: %s\n", strings.TrimSpace(p.Description))
	b.WriteString("Required conditions:\n")
	writeConditions(&b, p.RequiredConditions)
	b.WriteString("Preferred conditions:\n")
	writeConditions(&b, p.PreferredConditions)
	return strings.TrimRight(b.String(), "\n")
}

func writeConditions(b *strings.Builder, conditions []string) {
	conditions = cleanList(conditions, 0)
	if len(conditions) == 0 {
		b.WriteString(notSpecified + "\n")
		return
	}
	for _, c := range conditions {
		fmt.Fprintf(b, "- %s\n", c)
	}
}
