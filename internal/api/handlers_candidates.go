package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/spigell/cv-screener/internal/filtering"
	"github.com/spigell/cv-screener/internal/pdftext"
	"github.com/spigell/cv-screener/internal/recruiting"
	"github.com/spigell/cv-screener/internal/store"
)

const (
	defaultPageSize = 50
	maxPageSize     = 500
)

type candidateUpdateRequest struct {
	FullName *string `json:"fullName"`
	Email    *string `json:"email"`
	Phone    *string `json:"phone"`
	Notes    *string `json:"notes"`
}

type bulkRequest struct {
	IDs      []int64 `json:"ids"`
	FolderID *int64  `json:"folderId"`
}

// HandleListCandidates lists the candidates of a folder subtree, or those
// without a folder when folder=none. Without a folder parameter every
// candidate is listed. q and minScore narrow the result.
func (s *Server) HandleListCandidates(c echo.Context) error {
	ctx := c.Request().Context()

	offset, limit, err := page(c)
	if err != nil {
		return err
	}
	minScore, err := queryInt(c, "minScore")
	if err != nil {
		return err
	}

	var filters []store.Filter
	switch folder := c.QueryParam("folder"); folder {
	case "":
	case "none":
		filters = append(filters, store.FolderScope(nil))
	default:
		id, err := strconv.ParseInt(folder, 10, 64)
		if err != nil {
			return NewBadRequestError("invalid folder", err)
		}
		folders, err := s.store.ListFolders(ctx)
		if err != nil {
			return err
		}
		if folders.Find(id) == nil {
			return NewNotFoundError("folder", id)
		}
		filters = append(filters, store.FolderScope(folders.SubfolderIDs(id)))
	}

	query := store.Where(filters...).OrderBy(store.ColFullName, false).OrderBy(store.ColFileName, false)
	search := strings.TrimSpace(c.QueryParam("q"))

	if search == "" && minScore == nil {
		total, err := s.store.CountCandidates(ctx, filters...)
		if err != nil {
			return err
		}
		items, err := s.store.ListCandidates(ctx, query.Page(offset, limit))
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, listResponse[*recruiting.Candidate]{Items: nonNilSlice(items), Total: total})
	}

	all, err := s.store.ListCandidates(ctx, query)
	if err != nil {
		return err
	}

	steps := filtering.Default()
	filtering.DisableByName(steps, "ranking", "candidates are listed by name")
	entries, err := filtering.Run(ctx, &filtering.Config{Query: search, MinScore: minScore}, filtering.Deps{Logger: s.logger}, steps, filtering.FromCandidates(all))
	if err != nil {
		return err
	}

	matched := entries.Candidates()
	return c.JSON(http.StatusOK, listResponse[*recruiting.Candidate]{Items: paginate(matched, offset, limit), Total: len(matched)})
}

func (s *Server) HandleGetCandidate(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	candidate, err := s.store.GetCandidate(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, candidate)
}

// HandleCandidateFile serves the stored CV.
func (s *Server) HandleCandidateFile(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	candidate, err := s.store.GetCandidate(c.Request().Context(), id)
	if err != nil {
		return err
	}
	if candidate.RawFileBase64 == "" {
		return NewNotFoundError("file of candidate", id)
	}

	pdf, err := pdftext.DecodeDataURL(candidate.RawFileBase64)
	if err != nil {
		return NewInternalError("stored file is corrupt", err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("inline; filename=%q", candidate.FileName))
	return c.Blob(http.StatusOK, "application/pdf", pdf)
}

func (s *Server) HandleUpdateCandidate(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var req candidateUpdateRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	update := store.CandidateUpdate{
		FullName: trimmed(req.FullName),
		Email:    trimmed(req.Email),
		Phone:    trimmed(req.Phone),
		Notes:    req.Notes,
	}
	if err := s.store.UpdateCandidate(ctx, id, update); err != nil {
		return err
	}

	candidate, err := s.store.GetCandidate(ctx, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, candidate)
}

// HandleMoveCandidates moves candidates to a folder, or out of any folder when folderId is null.
func (s *Server) HandleMoveCandidates(c echo.Context) error {
	var req bulkRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if len(req.IDs) == 0 {
		return recruiting.NewValidationError("ids", "select at least one candidate")
	}

	ctx := c.Request().Context()
	if req.FolderID != nil {
		folders, err := s.store.ListFolders(ctx)
		if err != nil {
			return err
		}
		if folders.Find(*req.FolderID) == nil {
			return NewNotFoundError("folder", *req.FolderID)
		}
	}

	if err := s.store.MoveCandidates(ctx, req.IDs, req.FolderID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) HandleDeleteCandidate(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	if _, err := s.store.GetCandidate(ctx, id); err != nil {
		return err
	}
	if err := s.store.DeleteCandidates(ctx, []int64{id}); err != nil {
		return err
	}
	s.invalidateSummary(c)
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) HandleDeleteCandidates(c echo.Context) error {
	var req bulkRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if len(req.IDs) == 0 {
		return recruiting.NewValidationError("ids", "select at least one candidate")
	}

	if err := s.store.DeleteCandidates(c.Request().Context(), req.IDs); err != nil {
		return err
	}
	s.invalidateSummary(c)
	return c.NoContent(http.StatusNoContent)
}

func page(c echo.Context) (offset, limit int, err error) {
	o, err := queryInt(c, "offset")
	if err != nil {
		return 0, 0, err
	}
	l, err := queryInt(c, "limit")
	if err != nil {
		return 0, 0, err
	}

	limit = defaultPageSize
	if l != nil {
		limit = *l
	}
	if limit <= 0 || limit > maxPageSize {
		return 0, 0, recruiting.NewValidationError("limit", fmt.Sprintf("must be between 1 and %d", maxPageSize))
	}
	if o != nil {
		if *o < 0 {
			return 0, 0, recruiting.NewValidationError("offset", "must not be negative")
		}
		offset = *o
	}
	return offset, limit, nil
}

func paginate[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

func nonNilSlice[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

// trimmed trims a user supplied value. A blank value clears the field.
func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
