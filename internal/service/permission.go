package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"docvault/internal/apperr"
	"docvault/internal/model"
	"docvault/internal/repository"
)

// PermissionResolver computes the effective permission a user holds on a
// document. Resolution is read-only and safe to call concurrently.
type PermissionResolver interface {
	// Resolve returns exactly one of owner/edit/view/none for (user, document).
	Resolve(ctx context.Context, userID, documentID string) (model.Permission, error)
}

// permissionResolver applies an explicit ordered rule list; the first rule
// that matches is authoritative. Order: ownership, direct user share, area
// share (exact area outranking the all-areas grant). Organizational role is
// deliberately absent: admin/superuser authority applies to management
// operations, never to document content.
type permissionResolver struct {
	users  repository.UserRepository
	docs   repository.DocumentRepository
	shares repository.ShareRepository
}

// NewPermissionResolver constructs a PermissionResolver over the given
// repositories.
func NewPermissionResolver(users repository.UserRepository, docs repository.DocumentRepository, shares repository.ShareRepository) PermissionResolver {
	return &permissionResolver{users: users, docs: docs, shares: shares}
}

// resolveRule inspects one precedence level. ok reports whether the rule
// matched; when it does, its permission is final.
type resolveRule func(ctx context.Context, user *model.User, doc *model.Document) (p model.Permission, ok bool, err error)

func (r *permissionResolver) Resolve(ctx context.Context, userID, documentID string) (model.Permission, error) {
	doc, err := r.docs.FindByID(ctx, documentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.PermissionNone, apperr.NotFound("document %s not found", documentID)
		}
		return model.PermissionNone, fmt.Errorf("find document: %w", err)
	}
	user, err := r.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.PermissionNone, apperr.NotFound("user %s not found", userID)
		}
		return model.PermissionNone, fmt.Errorf("find user: %w", err)
	}

	rules := []resolveRule{
		r.ruleOwner,
		r.ruleDirectShare,
		r.ruleAreaShare,
	}
	for _, rule := range rules {
		p, ok, err := rule(ctx, user, doc)
		if err != nil {
			return model.PermissionNone, err
		}
		if ok {
			return p, nil
		}
	}
	return model.PermissionNone, nil
}

// ruleOwner: the owner always holds owner permission, regardless of any
// share rows that may also exist.
func (r *permissionResolver) ruleOwner(_ context.Context, user *model.User, doc *model.Document) (model.Permission, bool, error) {
	if doc.OwnerID == user.ID {
		return model.PermissionOwner, true, nil
	}
	return model.PermissionNone, false, nil
}

// ruleDirectShare: a (document, user) share outranks any area share.
func (r *permissionResolver) ruleDirectShare(ctx context.Context, user *model.User, doc *model.Document) (model.Permission, bool, error) {
	share, err := r.shares.FindDocumentShare(ctx, doc.ID, user.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.PermissionNone, false, nil
		}
		return model.PermissionNone, false, fmt.Errorf("find document share: %w", err)
	}
	return share.Permission, true, nil
}

// ruleAreaShare: applies only when the user belongs to an area; matches the
// exact area row or the all-areas row.
func (r *permissionResolver) ruleAreaShare(ctx context.Context, user *model.User, doc *model.Document) (model.Permission, bool, error) {
	if user.AreaID == nil {
		return model.PermissionNone, false, nil
	}
	share, err := r.shares.FindAreaDocumentShare(ctx, doc.ID, *user.AreaID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.PermissionNone, false, nil
		}
		return model.PermissionNone, false, fmt.Errorf("find area document share: %w", err)
	}
	return share.Permission, true, nil
}
