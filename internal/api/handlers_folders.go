package api

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/spigell/cv-screener/internal/recruiting"
	"github.com/spigell/cv-screener/internal/store"
)

type folderRequest struct {
	Name     string `json:"name"`
	ParentID *int64 `json:"parentId"`
}

type folderListResponse struct {
	Folders recruiting.Folders       `json:"folders"`
	Tree    []*recruiting.FolderNode `json:"tree"`
}

// HandleListFolders returns the folders ordered by name and as a tree.
func (s *Server) HandleListFolders(c echo.Context) error {
	folders, err := s.store.ListFolders(c.Request().Context())
	if err != nil {
		return err
	}
	if folders == nil {
		folders = recruiting.Folders{}
	}
	return c.JSON(http.StatusOK, folderListResponse{Folders: folders, Tree: folders.Tree()})
}

func (s *Server) HandleCreateFolder(c echo.Context) error {
	var req folderRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	folder := &recruiting.Folder{Name: strings.TrimSpace(req.Name), ParentID: req.ParentID}
	if err := recruiting.Validate(folder); err != nil {
		return err
	}

	ctx := c.Request().Context()
	if req.ParentID != nil {
		folders, err := s.store.ListFolders(ctx)
		if err != nil {
			return err
		}
		if folders.Find(*req.ParentID) == nil {
			return NewNotFoundError("folder", *req.ParentID)
		}
	}

	created, err := s.store.CreateFolder(ctx, folder)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, created)
}

func (s *Server) HandleRenameFolder(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var req folderRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	name := strings.TrimSpace(req.Name)
	if err := recruiting.Validate(&recruiting.Folder{Name: name}); err != nil {
		return err
	}

	if err := s.store.RenameFolder(c.Request().Context(), id, name); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// HandleMoveFolder re-parents a folder. A null parentId moves it to the root.
func (s *Server) HandleMoveFolder(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var req folderRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	folders, err := s.store.ListFolders(ctx)
	if err != nil {
		return err
	}
	if folders.Find(id) == nil {
		return NewNotFoundError("folder", id)
	}
	if err := folders.CanMove(id, req.ParentID); err != nil {
		return err
	}

	if err := s.store.MoveFolder(ctx, id, req.ParentID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// HandleDeleteFolder removes a folder and its subfolders. Folders whose
// subtree still holds candidates are kept.
func (s *Server) HandleDeleteFolder(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	folders, err := s.store.ListFolders(ctx)
	if err != nil {
		return err
	}
	if folders.Find(id) == nil {
		return NewNotFoundError("folder", id)
	}

	subtree := folders.SubfolderIDs(id)
	n, err := s.store.CountCandidates(ctx, store.FolderScope(subtree))
	if err != nil {
		return err
	}
	if n > 0 {
		return recruiting.ErrFolderNotEmpty
	}

	if err := s.store.DeleteFolders(ctx, subtree); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
