package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/spigell/cv-screener/internal/evaluation"
	"github.com/spigell/cv-screener/internal/recruiting"
	"github.com/spigell/cv-screener/internal/store"
)

type applicationPosting struct {
	ID                  int64     `json:"id"`
	Title               string    `json:"title"`
	Description         string    `json:"description"`
	ValidUntil          time.Time `json:"validUntil"`
	RequiredConditions  []string  `json:"requiredConditions"`
	PreferredConditions []string  `json:"preferredConditions"`
	Open                bool      `json:"open"`
	Reason              string    `json:"reason,omitempty"`
}

type applicationResponse struct {
	EvaluationID int64 `json:"evaluationId"`
	CandidateID  int64 `json:"candidateId"`
}

// HandleGetApplication returns what a candidate sees on the public form.
func (s *Server) HandleGetApplication(c echo.Context) error {
	id, err := pathID(c, "postingID")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	posting, err := s.store.GetPosting(ctx, id)
	if err != nil {
		return err
	}
	applications, err := s.store.CountEvaluations(ctx, store.Eq(store.ColPostingID, id))
	if err != nil {
		return err
	}

	resp := applicationPosting{
		ID:                  posting.ID,
		Title:               posting.Title,
		Description:         posting.Description,
		ValidUntil:          posting.ValidUntil,
		RequiredConditions:  posting.RequiredConditions,
		PreferredConditions: posting.PreferredConditions,
		Open:                true,
	}
	if err := posting.Open(s.now(), applications); err != nil {
		resp.Open = false
		resp.Reason = err.Error()
	}
	return c.JSON(http.StatusOK, resp)
}

// HandleApply receives a CV in the multipart field "file" together with the
// optional fields fullName, email and phone.
func (s *Server) HandleApply(c echo.Context) error {
	id, err := pathID(c, "postingID")
	if err != nil {
		return err
	}

	header, err := c.FormFile("file")
	if err != nil {
		return recruiting.NewValidationError("file", "a CV file is required")
	}
	if header.Size > recruiting.MaxUploadSize {
		return recruiting.NewValidationError("file", "the file is larger than 5MB")
	}
	data, err := readUpload(header)
	if err != nil {
		return NewBadRequestError("could not read the file", err)
	}

	e, err := s.pipeline.Apply(c.Request().Context(), id, evaluation.Application{
		FileName: header.Filename,
		Payload:  data,
		FullName: c.FormValue("fullName"),
		Email:    c.FormValue("email"),
		Phone:    c.FormValue("phone"),
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, applicationResponse{EvaluationID: e.ID, CandidateID: e.CandidateID})
}
