package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/spigell/cv-screener/internal/evaluation"
	"github.com/spigell/cv-screener/internal/filtering"
	"github.com/spigell/cv-screener/internal/recruiting"
	"github.com/spigell/cv-screener/internal/store"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

type postingRequest struct {
	Title               string   `json:"title"`
	Description         string   `json:"description"`
	MaxCV               int      `json:"maxCv"`
	ValidUntil          string   `json:"validUntil"`
	RequiredConditions  []string `json:"requiredConditions"`
	PreferredConditions []string `json:"preferredConditions"`
}

func (r postingRequest) posting() (*recruiting.JobPosting, error) {
	p := &recruiting.JobPosting{
		Title:               strings.TrimSpace(r.Title),
		Description:         strings.TrimSpace(r.Description),
		MaxCV:               r.MaxCV,
		RequiredConditions:  trimAll(r.RequiredConditions),
		PreferredConditions: trimAll(r.PreferredConditions),
	}

	if raw := strings.TrimSpace(r.ValidUntil); raw != "" {
		validUntil, err := parseDate(raw)
		if err != nil {
			return nil, recruiting.NewValidationError("validUntil", "must be a date formatted as YYYY-MM-DD")
		}
		p.ValidUntil = validUntil
	}

	if err := recruiting.Validate(p); err != nil {
		return nil, err
	}
	return p, nil
}

// parseDate accepts a plain date or a full timestamp.
func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(dateLayout, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, err
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
}

type assignRequest struct {
	CandidateIDs []int64 `json:"candidateIds"`
	FolderID     *int64  `json:"folderId"`
}

type draftRequest struct {
	Title string `json:"title"`
}

type linkResponse struct {
	Path string `json:"path"`
	URL  string `json:"url,omitempty"`
}

// HandleListPostings returns the postings with their application counts. The
// result is cached for a few minutes.
func (s *Server) HandleListPostings(c echo.Context) error {
	summary, err := s.postingSummary(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, summary)
}

func (s *Server) postingSummary(ctx context.Context) (recruiting.PostingSummary, error) {
	if s.summary != nil {
		cached, ok, err := s.summary.Get(ctx)
		if err != nil {
			s.logger.Warn("could not read the postings summary cache", zap.Error(err))
		}
		if ok {
			return cached, nil
		}
	}

	postings, err := s.store.ListPostings(ctx)
	if err != nil {
		return recruiting.PostingSummary{}, err
	}
	counts, err := s.store.ApplicationCounts(ctx)
	if err != nil {
		return recruiting.PostingSummary{}, err
	}

	summary := recruiting.PostingSummary{
		Postings:     nonNilSlice(postings),
		Applications: counts,
		GeneratedAt:  s.now().UTC(),
	}

	if s.summary != nil {
		if err := s.summary.Set(ctx, summary); err != nil {
			s.logger.Warn("could not cache the postings summary", zap.Error(err))
		}
	}
	return summary, nil
}

func (s *Server) invalidateSummary(c echo.Context) {
	if s.summary == nil {
		return
	}
	if err := s.summary.Invalidate(c.Request().Context()); err != nil {
		s.logger.Warn("could not invalidate the postings summary", zap.Error(err))
	}
}

func (s *Server) HandleCreatePosting(c echo.Context) error {
	var req postingRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	posting, err := req.posting()
	if err != nil {
		return err
	}

	created, err := s.store.CreatePosting(c.Request().Context(), posting)
	if err != nil {
		return err
	}
	s.invalidateSummary(c)
	return c.JSON(http.StatusCreated, created)
}

func (s *Server) HandleGetPosting(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	posting, err := s.store.GetPosting(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, posting)
}

func (s *Server) HandleUpdatePosting(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var req postingRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	posting, err := req.posting()
	if err != nil {
		return err
	}
	posting.ID = id

	updated, err := s.store.UpdatePosting(c.Request().Context(), posting)
	if err != nil {
		return err
	}
	s.invalidateSummary(c)
	return c.JSON(http.StatusOK, updated)
}

// HandleDraftPosting asks the AI service for a description and conditions for a title.
func (s *Server) HandleDraftPosting(c echo.Context) error {
	if s.drafter == nil {
		return &APIError{Status: http.StatusServiceUnavailable, Code: "SERVICE_UNAVAILABLE", Message: "AI drafting is not configured"}
	}

	var req draftRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	draft, err := s.drafter.DraftPosting(c.Request().Context(), strings.TrimSpace(req.Title))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, draft)
}

// HandlePostingLink returns the public application link of a posting.
func (s *Server) HandlePostingLink(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	posting, err := s.store.GetPosting(c.Request().Context(), id)
	if err != nil {
		return err
	}

	resp := linkResponse{Path: applyPath(posting)}
	if s.publicURL != "" {
		resp.URL = strings.TrimRight(s.publicURL, "/") + resp.Path
	}
	return c.JSON(http.StatusOK, resp)
}

// HandleListEvaluations lists the evaluations of a posting, best score first.
func (s *Server) HandleListEvaluations(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	minScore, err := queryInt(c, "minScore")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	if _, err := s.store.GetPosting(ctx, id); err != nil {
		return err
	}

	evaluations, err := s.store.ListEvaluations(ctx, store.Where(store.Eq(store.ColPostingID, id)))
	if err != nil {
		return err
	}

	ids := make([]int64, len(evaluations))
	for i, e := range evaluations {
		ids[i] = e.CandidateID
	}
	var candidates []*recruiting.Candidate
	if len(ids) > 0 {
		candidates, err = s.store.ListCandidates(ctx, store.Where(store.In(store.ColID, ids)))
		if err != nil {
			return err
		}
	}

	cfg := &filtering.Config{Query: c.QueryParam("q"), MinScore: minScore}
	entries, err := filtering.Run(ctx, cfg, filtering.Deps{Logger: s.logger}, filtering.Default(), filtering.FromEvaluations(evaluations, candidates))
	if err != nil {
		return err
	}

	items := entries.Evaluations()
	return c.JSON(http.StatusOK, listResponse[*recruiting.Evaluation]{Items: items, Total: len(items)})
}

// HandleAssign links candidates, or every candidate of a folder subtree, to a posting.
func (s *Server) HandleAssign(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var req assignRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	if req.FolderID != nil {
		result, err := s.pipeline.AssignFolder(ctx, id, *req.FolderID)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, result)
	}

	result, err := s.pipeline.AssignCandidates(ctx, id, req.CandidateIDs)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}

// HandleUploadToPosting adds the PDFs in the multipart field "files" to the
// posting as new candidates with pending evaluations.
func (s *Server) HandleUploadToPosting(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	form, err := c.MultipartForm()
	if err != nil {
		return NewBadRequestError("expected a multipart form", err)
	}

	headers := form.File["files"]
	uploads := make([]evaluation.Upload, 0, len(headers))
	for _, h := range headers {
		data, err := readUpload(h)
		if err != nil {
			return NewBadRequestError("could not read "+h.Filename, err)
		}
		uploads = append(uploads, evaluation.Upload{FileName: h.Filename, Payload: data})
	}

	result, err := s.pipeline.AddCandidates(c.Request().Context(), id, uploads)
	if err != nil {
		return err
	}

	status := http.StatusCreated
	if len(result.Added) == 0 {
		status = http.StatusOK
	}
	return c.JSON(status, result)
}

// HandleProcessPosting scores the pending evaluations of a posting.
func (s *Server) HandleProcessPosting(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	report, err := s.pipeline.ProcessPosting(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, report)
}

type evaluationUpdateRequest struct {
	Notes *string `json:"notes"`
}

func (s *Server) HandleUpdateEvaluation(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var req evaluationUpdateRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if req.Notes == nil {
		return recruiting.NewValidationError("notes", "is required")
	}

	if err := s.store.UpdateEvaluation(c.Request().Context(), id, store.EvaluationUpdate{Notes: req.Notes}); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func trimAll(items []string) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = strings.TrimSpace(item)
	}
	return out
}
