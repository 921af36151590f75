package gemini

import (
	"context"
	"unicode/utf8"

	"github.com/spigell/cv-screener/internal/ai"
	"github.com/spigell/cv-screener/internal/utils"
	"go.uber.org/zap"
)

const (
	// FieldsTextBudget bounds the CV text sent for contact extraction.
	FieldsTextBudget = 4000

	defaultMaxLogLength = 200
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, system, prompt string) (string, error)
}

// FieldExtractor pulls contact details out of CV text.
type FieldExtractor struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

func NewFieldExtractor(generator contentGenerator, maxLogLength int, logger *zap.Logger) *FieldExtractor {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &FieldExtractor{generator: generator, logger: logger, maxLogLen: maxLogLength}
}

type fieldsPayload struct {
	FullName *string `json:"fullName"`
	Email    *string `json:"email"`
	Phone    *string `json:"phone"`
}

func (f *FieldExtractor) ExtractFields(ctx context.Context, text string) (*ai.ContactFields, error) {
	prompt := render(extractFieldsPrompt, map[string]string{
		"CV_TEXT": utils.Truncate(text, FieldsTextBudget),
	})

	raw, err := complete(ctx, f.generator, f.logger, f.maxLogLen, prompt)
	if err != nil {
		return nil, err
	}

	var payload fieldsPayload
	if err := decodeResponse(raw, fieldsSchema, &payload); err != nil {
		return nil, err
	}

	return &ai.ContactFields{
		FullName: optional(payload.FullName),
		Email:    optional(payload.Email),
		Phone:    optional(payload.Phone),
	}, nil
}

// complete sends the prompt and logs truncated previews of the exchange.
func complete(ctx context.Context, generator contentGenerator, logger *zap.Logger, maxLogLen int, prompt string) (string, error) {
	logger.Debug("gemini generate content request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, maxLogLen)),
	)

	raw, err := generator.GenerateContent(ctx, systemPrompt, prompt)
	if err != nil {
		return "", ai.Unavailable(err)
	}

	logger.Debug("gemini generate content response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, maxLogLen)),
	)

	return raw, nil
}
