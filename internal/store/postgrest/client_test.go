package postgrest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/spigell/cv-screener/internal/recruiting"
	"github.com/spigell/cv-screener/internal/store"
	"go.uber.org/zap/zaptest"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return New(srv.URL, "secret", zaptest.NewLogger(t))
}

func TestEncodeFilters(t *testing.T) {
	q := url.Values{}
	err := encodeFilters(q, []store.Filter{
		store.In(store.ColFolderID, []int64{1, 2}),
		store.Eq(store.ColFileName, "cv, final.pdf"),
		store.IsNull(store.ColScore),
	})
	if err != nil {
		t.Fatalf("encode filters: %v", err)
	}

	if got := q.Get(store.ColFolderID); got != "in.(1,2)" {
		t.Fatalf("unexpected in filter %q", got)
	}
	if got := q.Get(store.ColFileName); got != "eq.cv, final.pdf" {
		t.Fatalf("unexpected eq filter %q", got)
	}
	if got := q.Get(store.ColScore); got != "is.null" {
		t.Fatalf("unexpected null filter %q", got)
	}

	q = url.Values{}
	if err := encodeFilters(q, []store.Filter{store.In(store.ColFileName, []string{"a b.pdf", "c.pdf"})}); err != nil {
		t.Fatalf("encode filters: %v", err)
	}
	if got := q.Get(store.ColFileName); got != `in.("a b.pdf",c.pdf)` {
		t.Fatalf("unexpected quoted list %q", got)
	}

	q = url.Values{}
	err = encodeFilters(q, []store.Filter{store.In(store.ColFileName, []string{`C:\cv\ana.pdf`, `say "hi"\.pdf`})})
	if err != nil {
		t.Fatalf("encode filters: %v", err)
	}
	if got := q.Get(store.ColFileName); got != `in.("C:\\cv\\ana.pdf","say \"hi\"\\.pdf")` {
		t.Fatalf("unexpected escaped list %q", got)
	}
}

func TestEncodeOrder(t *testing.T) {
	q := url.Values{}
	encodeOrder(q, store.Query{}.OrderBy(store.ColScore, true).OrderBy(store.ColFullName, false).Order)

	if got := q.Get("order"); got != "calificacion.desc.nullslast,nombre_candidato.asc.nullslast" {
		t.Fatalf("unexpected order %q", got)
	}
}

func TestParseContentRange(t *testing.T) {
	tests := []struct {
		value   string
		want    int
		wantErr bool
	}{
		{value: "0-24/3573", want: 3573},
		{value: "*/0", want: 0},
		{value: "0-0/*", wantErr: true},
		{value: "", wantErr: true},
	}

	for _, tt := range tests {
		got, err := parseContentRange(tt.value)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("%q: expected error", tt.value)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", tt.value, err)
		}
		if got != tt.want {
			t.Fatalf("%q: expected %d, got %d", tt.value, tt.want, got)
		}
	}
}

func TestListCandidatesPagesThroughResults(t *testing.T) {
	var requests int
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		requests++

		if r.URL.Path != "/rest/v1/candidatos" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("apikey") != "secret" || r.Header.Get("Authorization") != "Bearer secret" {
			t.Errorf("missing credentials in headers: %v", r.Header)
		}
		if r.URL.Query().Get("carpeta_id") != "is.null" {
			t.Errorf("expected folder filter, got %q", r.URL.RawQuery)
		}

		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		var rows []map[string]any
		switch offset {
		case 0:
			rows = []map[string]any{
				{"id": 1, "nombre_archivo": "a.pdf", "calificacion": 80},
				{"id": 2, "nombre_archivo": "b.pdf"},
			}
		case 2:
			rows = []map[string]any{{"id": 3, "nombre_archivo": "c.pdf", "texto_cv": "text"}}
		}
		_ = json.NewEncoder(w).Encode(rows)
	})
	client.PageSize = 2

	candidates, err := client.ListCandidates(context.Background(), store.Where(store.FolderScope(nil)))
	if err != nil {
		t.Fatalf("list candidates: %v", err)
	}

	if requests != 2 {
		t.Fatalf("expected 2 requests, got %d", requests)
	}
	if len(candidates) != 3 {
		t.Fatalf("expected 3 candidates, got %d", len(candidates))
	}
	if candidates[0].Score == nil || *candidates[0].Score != 80 {
		t.Fatalf("unexpected score %v", candidates[0].Score)
	}
	if candidates[2].ExtractedText != "text" {
		t.Fatalf("unexpected text %q", candidates[2].ExtractedText)
	}
}

func TestCountCandidatesUsesExactCount(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Prefer") != "count=exact" {
			t.Errorf("expected exact count preference, got %q", r.Header.Get("Prefer"))
		}
		w.Header().Set("Content-Range", "0-0/42")
		_, _ = io.WriteString(w, `[{"id":1}]`)
	})

	n, err := client.CountCandidates(context.Background(), store.Eq(store.ColFolderID, int64(3)))
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 42 {
		t.Fatalf("expected 42, got %d", n)
	}
}

func TestGetPostingNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[]`)
	})

	_, err := client.GetPosting(context.Background(), 7)
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCreatePostingSendsDate(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}

		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if body["valido_hasta"] != "2025-03-31" {
			t.Errorf("unexpected date %v", body["valido_hasta"])
		}
		if _, ok := body["id"]; ok {
			t.Errorf("id must not be sent on insert")
		}

		body["id"] = 5
		body["created_at"] = "2025-03-01T10:00:00.123456+00:00"
		_ = json.NewEncoder(w).Encode([]map[string]any{body})
	})

	created, err := client.CreatePosting(context.Background(), &recruiting.JobPosting{
		Title:      "Backend",
		MaxCV:      10,
		ValidUntil: time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("create posting: %v", err)
	}
	if created.ID != 5 {
		t.Fatalf("unexpected id %d", created.ID)
	}
	if !created.ValidUntil.Equal(time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected valid until %s", created.ValidUntil)
	}
	if created.RequiredConditions == nil {
		t.Fatalf("expected empty conditions to be sent as a list")
	}
}

func TestCreateEvaluationIgnoresDuplicates(t *testing.T) {
	existing := map[string]bool{}
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("on_conflict") != "candidato_id,aviso_id" {
			t.Errorf("missing on_conflict: %q", r.URL.RawQuery)
		}
		if len(r.Header.Values("Prefer")) != 2 {
			t.Errorf("unexpected preferences %v", r.Header.Values("Prefer"))
		}

		var row evaluationRow
		if err := json.NewDecoder(r.Body).Decode(&row); err != nil {
			t.Errorf("decode body: %v", err)
		}
		key := strconv.FormatInt(row.CandidateID, 10) + "/" + strconv.FormatInt(row.PostingID, 10)
		if existing[key] {
			_, _ = io.WriteString(w, `[]`)
			return
		}
		existing[key] = true
		row.ID = 1
		_ = json.NewEncoder(w).Encode([]evaluationRow{row})
	})

	ctx := context.Background()
	e := &recruiting.Evaluation{CandidateID: 1, PostingID: 2}

	created, err := client.CreateEvaluation(ctx, e)
	if err != nil || !created {
		t.Fatalf("expected first insert to create a row, got %v, %v", created, err)
	}

	created, err = client.CreateEvaluation(ctx, e)
	if err != nil || created {
		t.Fatalf("expected duplicate to be skipped, got %v, %v", created, err)
	}
}

func TestUpdateCandidateNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch {
			t.Errorf("expected PATCH, got %s", r.Method)
		}
		_, _ = io.WriteString(w, `[]`)
	})

	notes := "call back"
	err := client.UpdateCandidate(context.Background(), 9, store.CandidateUpdate{Notes: &notes})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestBadStatusIncludesServerMessage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"code":"22P02","message":"invalid input syntax"}`)
	})

	_, err := client.ListFolders(context.Background())
	var storeErr *store.Error
	if !errors.As(err, &storeErr) {
		t.Fatalf("expected store error, got %v", err)
	}
	if storeErr.Op != "list" || storeErr.Table != store.TableFolders {
		t.Fatalf("unexpected error context %+v", storeErr)
	}
}
