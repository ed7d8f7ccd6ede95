package model

import "time"

// Role is the organizational role of a user. Roles gate administrative
// operations (category/area management, document restore); they do not grant
// access to third-party document content.
type Role string

const (
	RoleNormal    Role = "normal"
	RoleAdmin     Role = "admin"
	RoleSuperuser Role = "superuser"
)

// Elevated reports whether the role carries administrative authority.
func (r Role) Elevated() bool {
	return r == RoleAdmin || r == RoleSuperuser
}

// GrantCreateDocuments is the fine-grained grant allowing a normal user to
// create documents.
const GrantCreateDocuments = "create_documents"

// User represents an authenticated principal. A user belongs to at most one
// area; deleting that area orphans the user (clears AreaID and IsLeader)
// rather than deleting the row.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      Role      `json:"role"`
	AreaID    *string   `json:"area_id"`
	IsLeader  bool      `json:"is_leader"`
	Grants    []string  `json:"grants"`
	CreatedAt time.Time `json:"created_at"`
}

// HasGrant reports whether the user holds the named fine-grained grant.
func (u *User) HasGrant(name string) bool {
	for _, g := range u.Grants {
		if g == name {
			return true
		}
	}
	return false
}

// CanCreateDocuments reports whether the user may create documents:
// elevated role or an explicit create_documents grant.
func (u *User) CanCreateDocuments() bool {
	return u.Role.Elevated() || u.HasGrant(GrantCreateDocuments)
}
