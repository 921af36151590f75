package postgrest

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spigell/cv-screener/internal/recruiting"
)

const dateLayout = "2006-01-02"

// date is a DATE column; PostgREST renders it as YYYY-MM-DD.
type date time.Time

func (d date) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Time(d).UTC().Format(dateLayout))
}

func (d *date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("parse date %q: %w", s, err)
	}
	*d = date(t)
	return nil
}

type candidateRow struct {
	ID            int64     `json:"id,omitempty"`
	FileName      string    `json:"nombre_archivo"`
	RawFile       *string   `json:"base64,omitempty"`
	ExtractedText *string   `json:"texto_cv"`
	FullName      *string   `json:"nombre_candidato"`
	Email         *string   `json:"email"`
	Phone         *string   `json:"telefono"`
	FolderID      *int64    `json:"carpeta_id"`
	Notes         *string   `json:"notas"`
	Score         *int      `json:"calificacion"`
	Justification *string   `json:"resumen"`
	CreatedAt     time.Time `json:"created_at,omitzero"`
}

// candidateListSelect leaves out the stored file.
const candidateListSelect = "id,nombre_archivo,texto_cv,nombre_candidato,email,telefono,carpeta_id,notas,calificacion,resumen,created_at"

func newCandidateRow(c *recruiting.Candidate) candidateRow {
	return candidateRow{
		FileName:      c.FileName,
		RawFile:       &c.RawFileBase64,
		ExtractedText: nonEmpty(c.ExtractedText),
		FullName:      c.FullName,
		Email:         c.Email,
		Phone:         c.Phone,
		FolderID:      c.FolderID,
		Notes:         c.Notes,
		Score:         c.Score,
		Justification: c.Justification,
	}
}

func (r candidateRow) candidate() *recruiting.Candidate {
	c := &recruiting.Candidate{
		ID:            r.ID,
		FileName:      r.FileName,
		FullName:      r.FullName,
		Email:         r.Email,
		Phone:         r.Phone,
		FolderID:      r.FolderID,
		Notes:         r.Notes,
		Score:         r.Score,
		Justification: r.Justification,
		CreatedAt:     r.CreatedAt,
	}
	if r.RawFile != nil {
		c.RawFileBase64 = *r.RawFile
	}
	if r.ExtractedText != nil {
		c.ExtractedText = *r.ExtractedText
	}
	return c
}

type folderRow struct {
	ID        int64     `json:"id,omitempty"`
	Name      string    `json:"nombre"`
	ParentID  *int64    `json:"parent_id"`
	CreatedAt time.Time `json:"created_at,omitzero"`
}

func (r folderRow) folder() *recruiting.Folder {
	return &recruiting.Folder{ID: r.ID, Name: r.Name, ParentID: r.ParentID, CreatedAt: r.CreatedAt}
}

type postingRow struct {
	ID                  int64     `json:"id,omitempty"`
	Title               string    `json:"titulo"`
	Description         string    `json:"descripcion"`
	MaxCV               int       `json:"max_cv"`
	ValidUntil          date      `json:"valido_hasta"`
	RequiredConditions  []string  `json:"condiciones_necesarias"`
	PreferredConditions []string  `json:"condiciones_deseables"`
	CreatedAt           time.Time `json:"created_at,omitzero"`
}

func newPostingRow(p *recruiting.JobPosting) postingRow {
	return postingRow{
		Title:               p.Title,
		Description:         p.Description,
		MaxCV:               p.MaxCV,
		ValidUntil:          date(p.ValidUntil),
		RequiredConditions:  nonNil(p.RequiredConditions),
		PreferredConditions: nonNil(p.PreferredConditions),
	}
}

func (r postingRow) posting() *recruiting.JobPosting {
	return &recruiting.JobPosting{
		ID:                  r.ID,
		Title:               r.Title,
		Description:         r.Description,
		MaxCV:               r.MaxCV,
		ValidUntil:          time.Time(r.ValidUntil),
		RequiredConditions:  r.RequiredConditions,
		PreferredConditions: r.PreferredConditions,
		CreatedAt:           r.CreatedAt,
	}
}

type evaluationRow struct {
	ID            int64     `json:"id,omitempty"`
	CandidateID   int64     `json:"candidato_id"`
	PostingID     int64     `json:"aviso_id"`
	Score         *int      `json:"calificacion"`
	Justification *string   `json:"resumen"`
	Notes         *string   `json:"notas"`
	CreatedAt     time.Time `json:"created_at,omitzero"`
}

func (r evaluationRow) evaluation() *recruiting.Evaluation {
	return &recruiting.Evaluation{
		ID:            r.ID,
		CandidateID:   r.CandidateID,
		PostingID:     r.PostingID,
		Score:         r.Score,
		Justification: r.Justification,
		Notes:         r.Notes,
		CreatedAt:     r.CreatedAt,
	}
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func nonNil(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}
