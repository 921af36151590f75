package api

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/spigell/cv-screener/internal/queue"
	"github.com/spigell/cv-screener/internal/recruiting"
)

type queueProcessRequest struct {
	FolderID *int64 `json:"folderId"`
}

type queueResponse struct {
	Items      []queue.Item `json:"items"`
	Processing bool         `json:"processing"`
}

func (s *Server) HandleListQueue(c echo.Context) error {
	items, err := s.queue.Items(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, queueResponse{Items: nonNilSlice(items), Processing: s.queue.Busy()})
}

// HandleAddToQueue accepts one or more PDFs in the multipart field "files".
func (s *Server) HandleAddToQueue(c echo.Context) error {
	form, err := c.MultipartForm()
	if err != nil {
		return NewBadRequestError("expected a multipart form", err)
	}

	headers := form.File["files"]
	if len(headers) == 0 {
		return recruiting.NewValidationError("files", "select at least one file")
	}

	files := make([]queue.File, 0, len(headers))
	for _, h := range headers {
		data, err := readUpload(h)
		if err != nil {
			return NewBadRequestError("could not read "+h.Filename, err)
		}
		files = append(files, queue.File{Name: h.Filename, Data: data})
	}

	added, err := s.queue.Add(c.Request().Context(), files)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, map[string]any{
		"added":   nonNilSlice(added),
		"skipped": len(files) - len(added),
	})
}

// HandleProcessQueue drains the queue into the folder given in the body and
// waits for the run to finish.
func (s *Server) HandleProcessQueue(c echo.Context) error {
	var req queueProcessRequest
	if c.Request().ContentLength != 0 {
		if err := bind(c, &req); err != nil {
			return err
		}
	}
	if raw := c.QueryParam("folderId"); raw != "" && req.FolderID == nil {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return NewBadRequestError("invalid folderId", err)
		}
		req.FolderID = &id
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

	report, err := s.queue.Process(ctx, req.FolderID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, report)
}

// HandleClearQueue removes finished and failed items.
func (s *Server) HandleClearQueue(c echo.Context) error {
	removed, err := s.queue.Clear(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]int{"removed": removed})
}

func readUpload(h *multipart.FileHeader) ([]byte, error) {
	if h.Size > recruiting.MaxUploadSize {
		return nil, fmt.Errorf("%s is larger than 5MB", h.Filename)
	}

	f, err := h.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return io.ReadAll(io.LimitReader(f, recruiting.MaxUploadSize+1))
}
