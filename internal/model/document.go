package model

import "time"

// Document is a versioned, soft-deletable document owned by exactly one user
// and optionally filed under one category. Documents are never hard-deleted
// through normal flow.
type Document struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Content        string     `json:"content"`
	OwnerID        string     `json:"owner_id"`
	CategoryID     *string    `json:"category_id"`
	IsDeleted      bool       `json:"is_deleted"`
	DeletedAt      *time.Time `json:"deleted_at,omitempty"`
	DeletionReason *string    `json:"deletion_reason,omitempty"`
	DeletedBy      *string    `json:"deleted_by,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}
