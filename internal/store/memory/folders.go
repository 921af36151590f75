package memory

import (
	"context"
	"sort"

	"github.com/spigell/cv-screener/internal/recruiting"
	"github.com/spigell/cv-screener/internal/store"
)

func (s *Store) ListFolders(_ context.Context) (recruiting.Folders, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(recruiting.Folders, 0, len(s.folders))
	for _, f := range byID(s.folders) {
		c := f.Folder
		c.ParentID = clonePtr(f.ParentID)
		out = append(out, &c)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) CreateFolder(_ context.Context, f *recruiting.Folder) (*recruiting.Folder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if f.ParentID != nil {
		if _, ok := s.folders[*f.ParentID]; !ok {
			return nil, store.Wrap("insert", store.TableFolders, store.ErrNotFound)
		}
	}

	stored := &folder{Folder: *f}
	stored.ID = s.id()
	stored.ParentID = clonePtr(f.ParentID)
	stored.CreatedAt = s.now()
	s.folders[stored.ID] = stored

	created := stored.Folder
	created.ParentID = clonePtr(stored.ParentID)
	return &created, nil
}

func (s *Store) RenameFolder(_ context.Context, id int64, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.folders[id]
	if !ok {
		return store.Wrap("update", store.TableFolders, store.ErrNotFound)
	}
	f.Name = name
	return nil
}

func (s *Store) MoveFolder(_ context.Context, id int64, parentID *int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.folders[id]
	if !ok {
		return store.Wrap("update", store.TableFolders, store.ErrNotFound)
	}
	f.ParentID = clonePtr(parentID)
	return nil
}

// DeleteFolders removes the folders and, like the database foreign keys,
// their subfolders. Candidates in removed folders lose their folder.
func (s *Store) DeleteFolders(_ context.Context, ids []int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := make(recruiting.Folders, 0, len(s.folders))
	for _, f := range s.folders {
		all = append(all, &f.Folder)
	}

	for _, id := range ids {
		for _, sub := range all.SubfolderIDs(id) {
			delete(s.folders, sub)
			for _, c := range s.candidates {
				if c.FolderID != nil && *c.FolderID == sub {
					c.FolderID = nil
				}
			}
		}
	}
	return nil
}
