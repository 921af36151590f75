package gemini

import (
	"context"
	"strings"

	"github.com/spigell/cv-screener/internal/ai"
	"github.com/spigell/cv-screener/internal/recruiting"
	"go.uber.org/zap"
)

const (
	maxDraftRequired  = 5
	maxDraftPreferred = 4
)

// Drafter writes a first version of a posting from its title.
type Drafter struct {
	generator contentGenerator
	language  string
	logger    *zap.Logger
	maxLogLen int
}

func NewDrafter(generator contentGenerator, language string, maxLogLength int, logger *zap.Logger) *Drafter {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if strings.TrimSpace(language) == "" {
		language = defaultLanguage
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Drafter{generator: generator, language: language, logger: logger, maxLogLen: maxLogLength}
}

func (d *Drafter) DraftPosting(ctx context.Context, title string) (*ai.PostingDraft, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, recruiting.NewValidationError("title", "a job title is required to draft a posting")
	}

	prompt := render(draftPostingPrompt, map[string]string{
		"TITLE":    title,
		"LANGUAGE": d.language,
	})

	raw, err := complete(ctx, d.generator, d.logger, d.maxLogLen, prompt)
	if err != nil {
		return nil, err
	}

	var draft ai.PostingDraft
	if err := decodeResponse(raw, draftPostingSchema, &draft); err != nil {
		return nil, err
	}

	draft.Description = strings.TrimSpace(draft.Description)
	draft.RequiredConditions = cleanList(draft.RequiredConditions, maxDraftRequired)
	draft.PreferredConditions = cleanList(draft.PreferredConditions, maxDraftPreferred)

	return &draft, nil
}
