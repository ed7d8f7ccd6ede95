package model

import "time"

// Category is a folder grouping documents. Categories form a tree of
// arbitrary depth via ParentID. The storage layer does not enforce
// acyclicity, so tree walkers must carry a visited set.
type Category struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	OwnerID   string     `json:"owner_id"`
	ParentID  *string    `json:"parent_id"`
	IsDeleted bool       `json:"is_deleted"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}
