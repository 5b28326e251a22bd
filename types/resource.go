package types

import "time"

type ItemType string

const (
	ItemTypeURL   ItemType = "url"
	ItemTypePDF   ItemType = "pdf"
	ItemTypeImage ItemType = "image"
)

func (t ItemType) IsValid() bool {
	return t == ItemTypeURL || t == ItemTypePDF || t == ItemTypeImage
}

// IsFile reports whether items of this type point at an uploaded object.
func (t ItemType) IsFile() bool {
	return t == ItemTypePDF || t == ItemTypeImage
}

// Resource is a titled group of downloadable or linkable items.
type Resource struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description *string        `json:"description"`
	Icon        *string        `json:"icon"`
	Color       *string        `json:"color"`
	Orden       int            `json:"orden"`
	Items       []ResourceItem `json:"items"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

type ResourceItem struct {
	ID          string    `json:"id"`
	RecursoID   string    `json:"recurso_id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	Link        string    `json:"link"`
	Type        ItemType  `json:"type"`
	Orden       int       `json:"orden"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ResourceCreate struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Icon        *string `json:"icon"`
	Color       *string `json:"color"`
	Orden       int     `json:"orden"`
}

type ResourceUpdate struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Icon        *string `json:"icon,omitempty"`
	Color       *string `json:"color,omitempty"`
	Orden       *int    `json:"orden,omitempty"`
}

type ResourceItemCreate struct {
	Name        string   `json:"name"`
	Description *string  `json:"description"`
	Link        string   `json:"link"`
	Type        ItemType `json:"type"`
	Orden       int      `json:"orden"`
}

type ResourceItemUpdate struct {
	Name        *string   `json:"name,omitempty"`
	Description *string   `json:"description,omitempty"`
	Link        *string   `json:"link,omitempty"`
	Type        *ItemType `json:"type,omitempty"`
	Orden       *int      `json:"orden,omitempty"`
}
