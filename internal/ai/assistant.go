package ai

import (
	"context"

	"github.com/spigell/cv-screener/internal/recruiting"
)

// ContactFields are the contact details found in a CV. Nil means not found.
type ContactFields struct {
	FullName *string `json:"fullName"`
	Email    *string `json:"email"`
	Phone    *string `json:"phone"`
}

// Assessment is the outcome of scoring a CV against a posting.
type Assessment struct {
	ContactFields
	Score           int
	Justification   string
	MissingRequired []string
	Raw             string
}

// PostingDraft is an AI-written starting point for a new posting.
type PostingDraft struct {
	Description         string   `json:"description"`
	RequiredConditions  []string `json:"requiredConditions"`
	PreferredConditions []string `json:"preferredConditions"`
}

type FieldExtractor interface {
	ExtractFields(ctx context.Context, text string) (*ContactFields, error)
}

type Scorer interface {
	Score(ctx context.Context, text string, posting *recruiting.JobPosting) (*Assessment, error)
}

type PostingDrafter interface {
	DraftPosting(ctx context.Context, title string) (*PostingDraft, error)
}
