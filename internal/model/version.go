package model

import "time"

// DocumentVersion is an immutable snapshot of a document's title and content.
// Version numbers start at 1 and increase by exactly one per snapshot, so
// for any document the set of versions is {1..max} with no gaps.
// Only ChangeNote may be edited after creation.
type DocumentVersion struct {
	ID         string    `json:"id"`
	DocumentID string    `json:"document_id"`
	Version    int       `json:"version"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	ChangeNote string    `json:"change_note"`
	CreatedBy  string    `json:"created_by"`
	CreatedAt  time.Time `json:"created_at"`
}
