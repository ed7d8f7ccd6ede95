package model

// Permission is the ordered capability a principal has over a document or
// category: none < view < edit < owner.
type Permission string

const (
	PermissionNone  Permission = "none"
	PermissionView  Permission = "view"
	PermissionEdit  Permission = "edit"
	PermissionOwner Permission = "owner"
)

// Grantable reports whether p is a valid share permission.
// Only view and edit can be materialized in share rows; none and owner are
// resolver outcomes, never stored grants.
func (p Permission) Grantable() bool {
	return p == PermissionView || p == PermissionEdit
}

// AllowsRead reports whether p permits reading document content.
func (p Permission) AllowsRead() bool {
	return p == PermissionView || p == PermissionEdit || p == PermissionOwner
}

// AllowsWrite reports whether p permits mutating title/content.
func (p Permission) AllowsWrite() bool {
	return p == PermissionEdit || p == PermissionOwner
}
