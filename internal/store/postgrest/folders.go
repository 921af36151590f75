package postgrest

import (
	"context"

	"github.com/spigell/cv-screener/internal/recruiting"
	"github.com/spigell/cv-screener/internal/store"
)

func (c *Client) ListFolders(ctx context.Context) (recruiting.Folders, error) {
	rows, err := list[folderRow](ctx, c, store.TableFolders, "*", store.Query{}.OrderBy(store.ColName, false))
	if err != nil {
		return nil, err
	}
	folders := make(recruiting.Folders, len(rows))
	for i, r := range rows {
		folders[i] = r.folder()
	}
	return folders, nil
}

func (c *Client) CreateFolder(ctx context.Context, f *recruiting.Folder) (*recruiting.Folder, error) {
	row, err := insert[folderRow](ctx, c, store.TableFolders, folderRow{Name: f.Name, ParentID: f.ParentID})
	if err != nil {
		return nil, err
	}
	return row.folder(), nil
}

func (c *Client) RenameFolder(ctx context.Context, id int64, name string) error {
	return c.patchOne(ctx, store.TableFolders, id, map[string]any{store.ColName: name})
}

func (c *Client) MoveFolder(ctx context.Context, id int64, parentID *int64) error {
	return c.patchOne(ctx, store.TableFolders, id, map[string]any{store.ColParentID: parentID})
}

func (c *Client) DeleteFolders(ctx context.Context, ids []int64) error {
	return c.deleteIDs(ctx, store.TableFolders, ids)
}
