package recruiting

import (
	"sort"
	"strings"
)

// Folders is a flat folder list that can be navigated as a tree.
type Folders []*Folder

// FolderNode is a folder with its children, used to render the tree.
type FolderNode struct {
	*Folder
	Children []*FolderNode `json:"children"`
}

func (fs Folders) Find(id int64) *Folder {
	for _, f := range fs {
		if f.ID == id {
			return f
		}
	}
	return nil
}

func (fs Folders) children(parentID *int64) []*Folder {
	var out []*Folder
	for _, f := range fs {
		switch {
		case parentID == nil && f.ParentID == nil:
			out = append(out, f)
		case parentID != nil && f.ParentID != nil && *f.ParentID == *parentID:
			out = append(out, f)
		}
	}
	return out
}

// SubfolderIDs returns id followed by the ids of every folder below it.
func (fs Folders) SubfolderIDs(id int64) []int64 {
	ids := []int64{id}
	seen := map[int64]bool{id: true}

	for i := 0; i < len(ids); i++ {
		parent := ids[i]
		for _, child := range fs.children(&parent) {
			if seen[child.ID] {
				continue
			}
			seen[child.ID] = true
			ids = append(ids, child.ID)
		}
	}
	return ids
}

// CanMove checks that folder id may be re-parented under newParent.
// A nil newParent moves the folder to the root.
func (fs Folders) CanMove(id int64, newParent *int64) error {
	if fs.Find(id) == nil {
		return NewValidationError("id", "folder does not exist")
	}
	if newParent == nil {
		return nil
	}
	if fs.Find(*newParent) == nil {
		return NewValidationError("parentId", "target folder does not exist")
	}
	for _, sub := range fs.SubfolderIDs(id) {
		if sub == *newParent {
			return ErrFolderCycle
		}
	}
	return nil
}

// Tree builds the folder hierarchy, sorting siblings by name.
func (fs Folders) Tree() []*FolderNode {
	var build func(parent *int64) []*FolderNode
	build = func(parent *int64) []*FolderNode {
		children := fs.children(parent)
		sort.SliceStable(children, func(i, j int) bool { return children[i].Name < children[j].Name })

		nodes := make([]*FolderNode, 0, len(children))
		for _, child := range children {
			id := child.ID
			nodes = append(nodes, &FolderNode{Folder: child, Children: build(&id)})
		}
		return nodes
	}
	return build(nil)
}

// Path returns the folder names from the root down to id, joined by " / ".
func (fs Folders) Path(id int64) string {
	var names []string
	seen := map[int64]bool{}
	for cur := fs.Find(id); cur != nil && !seen[cur.ID]; {
		seen[cur.ID] = true
		names = append([]string{cur.Name}, names...)
		if cur.ParentID == nil {
			break
		}
		cur = fs.Find(*cur.ParentID)
	}

	return strings.Join(names, " / ")
}
