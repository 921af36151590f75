package recruiting

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestPostingOpen(t *testing.T) {
	posting := &JobPosting{
		MaxCV:      2,
		ValidUntil: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
	}

	lastDay := time.Date(2026, 3, 10, 23, 59, 0, 0, time.UTC)
	if err := posting.Open(lastDay, 1); err != nil {
		t.Fatalf("expected posting to be open on its last day, got %v", err)
	}

	if err := posting.Open(lastDay.Add(time.Minute), 0); !errors.Is(err, ErrPostingClosed) {
		t.Fatalf("expected closed posting, got %v", err)
	}

	if err := posting.Open(lastDay, 2); !errors.Is(err, ErrPostingFull) {
		t.Fatalf("expected full posting, got %v", err)
	}

	if !IsConflict(ErrPostingFull) {
		t.Fatalf("expected full posting to be a conflict")
	}
}

func TestEvaluationPending(t *testing.T) {
	failed, done := ScoreFailed, 80

	cases := map[string]struct {
		score *int
		want  bool
	}{
		"not analyzed": {score: nil, want: true},
		"failed":       {score: &failed, want: true},
		"scored":       {score: &done, want: false},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			if got := (&Evaluation{Score: tc.score}).Pending(); got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestValidatePosting(t *testing.T) {
	err := Validate(&JobPosting{RequiredConditions: []string{"Go", ""}})

	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	msg := validation.Error()
	for _, field := range []string{"title", "maxCv", "validUntil", "requiredConditions[1]"} {
		if !strings.Contains(msg, field) {
			t.Fatalf("expected %q in %q", field, msg)
		}
	}

	ok := &JobPosting{Title: "Go developer", MaxCV: 10, ValidUntil: time.Now()}
	if err := Validate(ok); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidatePDF(t *testing.T) {
	pdf := []byte("%PDF-1.7\n1 0 obj\n")

	if err := ValidatePDF("cv.pdf", pdf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var validation *ValidationError
	if err := ValidatePDF("cv.docx", []byte("PK\x03\x04 not a pdf")); !errors.As(err, &validation) {
		t.Fatalf("expected non-PDF to be rejected, got %v", err)
	}

	big := append([]byte("%PDF-"), make([]byte, MaxUploadSize)...)
	if err := ValidatePDF("big.pdf", big); !errors.As(err, &validation) {
		t.Fatalf("expected oversized file to be rejected, got %v", err)
	}
}

func TestCandidateDisplayName(t *testing.T) {
	name := "Ana Pérez"
	if got := (&Candidate{FileName: "cv.pdf", FullName: &name}).DisplayName(); got != name {
		t.Fatalf("unexpected name %q", got)
	}
	if got := (&Candidate{FileName: "cv.pdf"}).DisplayName(); got != "cv.pdf" {
		t.Fatalf("expected file name fallback, got %q", got)
	}
}
