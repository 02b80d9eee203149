package categories

import (
	"sort"

	"github.com/google/uuid"

	"github.com/ichaoui56/e-commerce-backoffice/pkg/db/models"
)

// Tree is an in-memory index of the category table: nodes by id plus a
// parent -> children adjacency list, so ancestry walks never touch the store.
type Tree struct {
	nodes    map[uuid.UUID]models.Category
	children map[uuid.UUID][]uuid.UUID
	roots    []uuid.UUID
}

// NewTree indexes rows. Children and roots are kept sorted by name.
func NewTree(rows []models.Category) *Tree {
	t := &Tree{
		nodes:    make(map[uuid.UUID]models.Category, len(rows)),
		children: make(map[uuid.UUID][]uuid.UUID),
	}
	for _, row := range rows {
		row.Parent = nil
		row.Children = nil
		t.nodes[row.ID] = row
	}
	for _, row := range rows {
		if row.ParentID == nil {
			t.roots = append(t.roots, row.ID)
			continue
		}
		t.children[*row.ParentID] = append(t.children[*row.ParentID], row.ID)
	}
	byName := func(ids []uuid.UUID) {
		sort.SliceStable(ids, func(i, j int) bool {
			return t.nodes[ids[i]].Name < t.nodes[ids[j]].Name
		})
	}
	byName(t.roots)
	for parent := range t.children {
		byName(t.children[parent])
	}
	return t
}

func (t *Tree) Get(id uuid.UUID) (models.Category, bool) {
	node, ok := t.nodes[id]
	return node, ok
}

func (t *Tree) Len() int {
	return len(t.nodes)
}

// Roots returns the top-level nodes ordered by name.
func (t *Tree) Roots() []models.Category {
	return t.collect(t.roots)
}

// Children returns the direct children of id ordered by name.
func (t *Tree) Children(id uuid.UUID) []models.Category {
	return t.collect(t.children[id])
}

func (t *Tree) ChildCount(id uuid.UUID) int {
	return len(t.children[id])
}

// Ancestors walks from id's parent up to its root. The walk stops if a
// corrupted row loops back on itself.
func (t *Tree) Ancestors(id uuid.UUID) []models.Category {
	var out []models.Category
	seen := map[uuid.UUID]struct{}{id: {}}
	node, ok := t.nodes[id]
	for ok && node.ParentID != nil {
		if _, dup := seen[*node.ParentID]; dup {
			break
		}
		seen[*node.ParentID] = struct{}{}
		node, ok = t.nodes[*node.ParentID]
		if ok {
			out = append(out, node)
		}
	}
	return out
}

// Depth is 1 for a root, 2 for its children and so on.
func (t *Tree) Depth(id uuid.UUID) int {
	if _, ok := t.nodes[id]; !ok {
		return 0
	}
	return len(t.Ancestors(id)) + 1
}

// Height is the number of levels in the subtree rooted at id, 1 for a leaf.
func (t *Tree) Height(id uuid.UUID) int {
	return t.height(id, map[uuid.UUID]struct{}{})
}

func (t *Tree) height(id uuid.UUID, seen map[uuid.UUID]struct{}) int {
	seen[id] = struct{}{}
	best := 0
	for _, child := range t.children[id] {
		if _, dup := seen[child]; dup {
			continue
		}
		if h := t.height(child, seen); h > best {
			best = h
		}
	}
	return best + 1
}

// WouldCycle reports whether making parentID the parent of id would let id
// become its own ancestor.
func (t *Tree) WouldCycle(id, parentID uuid.UUID) bool {
	if id == parentID {
		return true
	}
	for _, ancestor := range t.Ancestors(parentID) {
		if ancestor.ID == id {
			return true
		}
	}
	return false
}

// DepthAfterMove returns the deepest level the subtree of id would reach under parentID.
func (t *Tree) DepthAfterMove(id, parentID uuid.UUID) int {
	height := 1
	if _, ok := t.nodes[id]; ok {
		height = t.Height(id)
	}
	return t.Depth(parentID) + height
}

func (t *Tree) collect(ids []uuid.UUID) []models.Category {
	out := make([]models.Category, 0, len(ids))
	for _, id := range ids {
		out = append(out, t.nodes[id])
	}
	return out
}
