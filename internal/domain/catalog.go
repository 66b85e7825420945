package domain

import "time"

// Book is a catalog entry. Titles are unique.
type Book struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Rating      float64    `json:"rating"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	AuthorID    string     `json:"author_id"`
	CategoryID  string     `json:"category_id"`
	PublisherID string     `json:"publisher_id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Author of one or more books. Names are unique.
type Author struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Publisher of one or more books.
type Publisher struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Category is a node in the catalog's category tree. A nil ParentID marks a
// root category.
type Category struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	ParentID  *string    `json:"parent_id,omitempty"`
	Children  []Category `json:"children,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// BuildCategoryTree arranges a flat category list into a forest of root
// categories with nested children. Input order is preserved within each level.
func BuildCategoryTree(flat []Category) []Category {
	byParent := make(map[string][]Category)
	var rootIDs []string
	byID := make(map[string]Category, len(flat))

	for _, c := range flat {
		byID[c.ID] = c
		if c.ParentID == nil {
			rootIDs = append(rootIDs, c.ID)
		} else {
			byParent[*c.ParentID] = append(byParent[*c.ParentID], c)
		}
	}

	var build func(c Category) Category
	build = func(c Category) Category {
		for _, child := range byParent[c.ID] {
			c.Children = append(c.Children, build(child))
		}
		return c
	}

	roots := make([]Category, 0, len(rootIDs))
	for _, id := range rootIDs {
		roots = append(roots, build(byID[id]))
	}
	return roots
}
