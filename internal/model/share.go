package model

import "time"

// DocumentShare grants one user view or edit on one document.
// Unique per (DocumentID, SharedWithUserID); re-sharing updates the
// permission instead of duplicating the row. The owner is never entered in
// DocumentShare for their own document.
type DocumentShare struct {
	ID               string     `json:"id"`
	DocumentID       string     `json:"document_id"`
	SharedWithUserID string     `json:"shared_with_user_id"`
	Permission       Permission `json:"permission"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// AreaDocumentShare grants every member of an area view or edit on one
// document. A nil AreaID means "shared with every area" and is interpreted
// at resolution time, never materialized per-area.
// Unique per (DocumentID, AreaID).
type AreaDocumentShare struct {
	ID         string     `json:"id"`
	DocumentID string     `json:"document_id"`
	AreaID     *string    `json:"area_id"`
	Permission Permission `json:"permission"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// CategoryShare records that a folder was shared with a user. It is
// informational: document access is governed by the DocumentShare rows
// materialized alongside it, not by this record.
// Unique per (CategoryID, SharedWithUserID).
type CategoryShare struct {
	ID               string     `json:"id"`
	CategoryID       string     `json:"category_id"`
	SharedWithUserID string     `json:"shared_with_user_id"`
	Permission       Permission `json:"permission"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}
