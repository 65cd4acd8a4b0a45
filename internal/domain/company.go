package domain

import (
	"time"
)

// Company is the minimal owning entity reviews refer to.
type Company struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// DisplaySlug returns the slug, falling back to the ID when the name
// produced no ASCII-representable slug.
func (c *Company) DisplaySlug() string {
	if c.Slug == "" {
		return c.ID
	}
	return c.Slug
}
