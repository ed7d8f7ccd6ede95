package model

import "time"

// Area is an organizational unit used as a sharing target. Membership lives
// on the user rows (users.area_id).
type Area struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
