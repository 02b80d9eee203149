package categories

import (
	"time"

	"github.com/google/uuid"

	"github.com/ichaoui56/e-commerce-backoffice/pkg/db/models"
)

// CategoryDTO is the flat representation used by list and detail responses.
type CategoryDTO struct {
	ID         uuid.UUID  `json:"id"`
	Name       string     `json:"name"`
	Slug       string     `json:"slug"`
	ParentID   *uuid.UUID `json:"parent_id,omitempty"`
	ParentName *string    `json:"parent_name,omitempty"`
	ChildCount int        `json:"child_count"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// CategoryNode is a root category with its direct children.
type CategoryNode struct {
	ID       uuid.UUID     `json:"id"`
	Name     string        `json:"name"`
	Slug     string        `json:"slug"`
	Children []CategoryDTO `json:"children"`
}

// CategoryDetail adds the parent and children of a single category.
type CategoryDetail struct {
	CategoryDTO
	Parent   *CategoryDTO  `json:"parent,omitempty"`
	Children []CategoryDTO `json:"children"`
}

// CreateInput holds the values accepted when creating a category.
// An empty Slug is derived from Name.
type CreateInput struct {
	Name     string
	Slug     string
	ParentID *uuid.UUID
}

type UpdateInput struct {
	Name     string
	Slug     string
	ParentID *uuid.UUID
}

func toDTO(tree *Tree, c models.Category) CategoryDTO {
	dto := CategoryDTO{
		ID:         c.ID,
		Name:       c.Name,
		Slug:       c.Slug,
		ParentID:   c.ParentID,
		ChildCount: tree.ChildCount(c.ID),
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
	if c.ParentID != nil {
		if parent, ok := tree.Get(*c.ParentID); ok {
			name := parent.Name
			dto.ParentName = &name
		}
	}
	return dto
}

func toDTOs(tree *Tree, rows []models.Category) []CategoryDTO {
	out := make([]CategoryDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, toDTO(tree, row))
	}
	return out
}
