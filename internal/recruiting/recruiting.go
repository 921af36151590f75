// Package recruiting holds the records the screener works with and the rules
// that do not depend on where they are stored.
package recruiting

import (
	"strings"
	"time"
)

// ScoreFailed marks a candidate or evaluation whose analysis failed and may be retried.
const ScoreFailed = -1

type Candidate struct {
	ID            int64     `json:"id"`
	FileName      string    `json:"fileName" validate:"required"`
	RawFileBase64 string    `json:"-"`
	ExtractedText string    `json:"extractedText,omitempty"`
	FullName      *string   `json:"fullName"`
	Email         *string   `json:"email"`
	Phone         *string   `json:"phone"`
	FolderID      *int64    `json:"folderId"`
	Notes         *string   `json:"notes"`
	Score         *int      `json:"score"`
	Justification *string   `json:"justification"`
	CreatedAt     time.Time `json:"createdAt"`
}

// DisplayName returns the extracted name, or the file name when the name is unknown.
func (c *Candidate) DisplayName() string {
	if c.FullName != nil && strings.TrimSpace(*c.FullName) != "" {
		return *c.FullName
	}
	return c.FileName
}

type JobPosting struct {
	ID                  int64     `json:"id"`
	Title               string    `json:"title" validate:"required,max=200"`
	Description         string    `json:"description"`
	MaxCV               int       `json:"maxCv" validate:"gt=0"`
	ValidUntil          time.Time `json:"validUntil" validate:"required"`
	RequiredConditions  []string  `json:"requiredConditions" validate:"dive,required"`
	PreferredConditions []string  `json:"preferredConditions" validate:"dive,required"`
	CreatedAt           time.Time `json:"createdAt"`
}

// ClosesAt is the first instant after the posting's last valid day.
func (p *JobPosting) ClosesAt() time.Time {
	y, m, d := p.ValidUntil.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
}

// Open reports whether the posting still accepts applications.
func (p *JobPosting) Open(now time.Time, applications int) error {
	if !now.Before(p.ClosesAt()) {
		return ErrPostingClosed
	}
	if p.MaxCV > 0 && applications >= p.MaxCV {
		return ErrPostingFull
	}
	return nil
}

type Evaluation struct {
	ID            int64      `json:"id"`
	CandidateID   int64      `json:"candidateId"`
	PostingID     int64      `json:"postingId"`
	Score         *int       `json:"score"`
	Justification *string    `json:"justification"`
	Notes         *string    `json:"notes"`
	CreatedAt     time.Time  `json:"createdAt"`
	Candidate     *Candidate `json:"candidate,omitempty"`
}

// Pending reports whether the evaluation still needs a scoring pass.
func (e *Evaluation) Pending() bool {
	return e.Score == nil || *e.Score == ScoreFailed
}

type Folder struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name" validate:"required,max=120"`
	ParentID  *int64    `json:"parentId"`
	CreatedAt time.Time `json:"createdAt"`
}

// PostingSummary is the postings list with the number of applications per posting.
type PostingSummary struct {
	Postings     []*JobPosting `json:"postings"`
	Applications map[int64]int `json:"applications"`
	GeneratedAt  time.Time     `json:"generatedAt"`
}
