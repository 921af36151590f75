package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/spigell/cv-screener/internal/recruiting"
	"github.com/spigell/cv-screener/internal/store"
)

func ptr[T any](v T) *T { return &v }

func TestListCandidatesFiltersOrdersAndPages(t *testing.T) {
	ctx := context.Background()
	s := New()

	folder, err := s.CreateFolder(ctx, &recruiting.Folder{Name: "Backend"})
	if err != nil {
		t.Fatalf("create folder: %v", err)
	}

	scores := []*int{ptr(40), nil, ptr(90), ptr(recruiting.ScoreFailed)}
	for i, score := range scores {
		_, err := s.CreateCandidate(ctx, &recruiting.Candidate{
			FileName:      string(rune('a'+i)) + ".pdf",
			RawFileBase64: "data:application/pdf;base64,AA==",
			FolderID:      &folder.ID,
			Score:         score,
		})
		if err != nil {
			t.Fatalf("create candidate: %v", err)
		}
	}
	if _, err := s.CreateCandidate(ctx, &recruiting.Candidate{FileName: "root.pdf"}); err != nil {
		t.Fatalf("create candidate: %v", err)
	}

	q := store.Where(store.FolderScope([]int64{folder.ID})).OrderBy(store.ColScore, true)
	got, err := s.ListCandidates(ctx, q)
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	want := []string{"c.pdf", "a.pdf", "d.pdf", "b.pdf"}
	if len(got) != len(want) {
		t.Fatalf("expected %d candidates, got %d", len(want), len(got))
	}
	for i, name := range want {
		if got[i].FileName != name {
			t.Fatalf("position %d: expected %s, got %s", i, name, got[i].FileName)
		}
		if got[i].RawFileBase64 != "" {
			t.Fatalf("listing must not carry the stored file")
		}
	}

	page, err := s.ListCandidates(ctx, q.Page(1, 2))
	if err != nil {
		t.Fatalf("list page: %v", err)
	}
	if len(page) != 2 || page[0].FileName != "a.pdf" || page[1].FileName != "d.pdf" {
		t.Fatalf("unexpected page %+v", page)
	}

	n, err := s.CountCandidates(ctx, store.FolderScope(nil))
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 candidate without folder, got %d", n)
	}
}

func TestCreateEvaluationSkipsDuplicates(t *testing.T) {
	ctx := context.Background()
	s := New()

	c, _ := s.CreateCandidate(ctx, &recruiting.Candidate{FileName: "cv.pdf"})
	p, _ := s.CreatePosting(ctx, &recruiting.JobPosting{Title: "Go", MaxCV: 5, ValidUntil: time.Now()})

	created, err := s.CreateEvaluation(ctx, &recruiting.Evaluation{CandidateID: c.ID, PostingID: p.ID})
	if err != nil || !created {
		t.Fatalf("expected evaluation to be created, got %v, %v", created, err)
	}

	created, err = s.CreateEvaluation(ctx, &recruiting.Evaluation{CandidateID: c.ID, PostingID: p.ID})
	if err != nil || created {
		t.Fatalf("expected duplicate to be skipped, got %v, %v", created, err)
	}

	counts, err := s.ApplicationCounts(ctx)
	if err != nil {
		t.Fatalf("counts: %v", err)
	}
	if counts[p.ID] != 1 {
		t.Fatalf("expected 1 application, got %d", counts[p.ID])
	}

	_, err = s.CreateEvaluation(ctx, &recruiting.Evaluation{CandidateID: 999, PostingID: p.ID})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found for unknown candidate, got %v", err)
	}
}

func TestUpdatesLeaveNilFieldsUntouched(t *testing.T) {
	ctx := context.Background()
	s := New()

	c, _ := s.CreateCandidate(ctx, &recruiting.Candidate{FileName: "cv.pdf", Email: ptr("old@example.com")})

	err := s.UpdateCandidate(ctx, c.ID, store.CandidateUpdate{FullName: ptr("Ana"), Score: ptr(70)})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := s.GetCandidate(ctx, c.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if *got.FullName != "Ana" || *got.Score != 70 || *got.Email != "old@example.com" {
		t.Fatalf("unexpected candidate %+v", got)
	}

	if err := s.UpdateCandidate(ctx, 42, store.CandidateUpdate{Notes: ptr("x")}); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDeleteFoldersCascades(t *testing.T) {
	ctx := context.Background()
	s := New()

	parent, _ := s.CreateFolder(ctx, &recruiting.Folder{Name: "2025"})
	child, _ := s.CreateFolder(ctx, &recruiting.Folder{Name: "Q1", ParentID: &parent.ID})
	other, _ := s.CreateFolder(ctx, &recruiting.Folder{Name: "Archive"})
	c, _ := s.CreateCandidate(ctx, &recruiting.Candidate{FileName: "cv.pdf", FolderID: &child.ID})

	if err := s.DeleteFolders(ctx, []int64{parent.ID}); err != nil {
		t.Fatalf("delete: %v", err)
	}

	folders, _ := s.ListFolders(ctx)
	if len(folders) != 1 || folders[0].ID != other.ID {
		t.Fatalf("expected only the unrelated folder to remain, got %+v", folders)
	}

	got, _ := s.GetCandidate(ctx, c.ID)
	if got.FolderID != nil {
		t.Fatalf("expected candidate to lose its folder")
	}
}

func TestDeleteCandidatesRemovesEvaluations(t *testing.T) {
	ctx := context.Background()
	s := New()

	c, _ := s.CreateCandidate(ctx, &recruiting.Candidate{FileName: "cv.pdf"})
	p, _ := s.CreatePosting(ctx, &recruiting.JobPosting{Title: "Go", MaxCV: 5, ValidUntil: time.Now()})
	_, _ = s.CreateEvaluation(ctx, &recruiting.Evaluation{CandidateID: c.ID, PostingID: p.ID})

	if err := s.DeleteCandidates(ctx, []int64{c.ID}); err != nil {
		t.Fatalf("delete: %v", err)
	}

	n, _ := s.CountEvaluations(ctx, store.Eq(store.ColPostingID, p.ID))
	if n != 0 {
		t.Fatalf("expected evaluations to be removed, got %d", n)
	}
}
