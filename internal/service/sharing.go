package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"docvault/internal/apperr"
	"docvault/internal/model"
	"docvault/internal/repository"
)

// maxShareTreeDepth caps subtree collection. The category tree is expected
// to be shallow; the cap plus the visited set keeps traversal bounded even
// if stored parent links ever form a cycle.
const maxShareTreeDepth = 64

// SkippedTarget records one share target that was skipped instead of
// aborting the batch.
type SkippedTarget struct {
	Email  string `json:"email"`
	Reason string `json:"reason"`
}

// PropagationResult aggregates what one share request materialized.
// Counts are cardinalities of upserted pairs, so re-running the same request
// returns the same numbers.
type PropagationResult struct {
	SharedDocumentCount int             `json:"shared_document_count"`
	SharedCategoryCount int             `json:"shared_category_count"`
	Skipped             []SkippedTarget `json:"skipped,omitempty"`

	// AffectedDocumentIDs lists the documents whose effective permissions may
	// have changed. The HTTP layer uses it to invalidate cached resolutions;
	// it is not part of the response body.
	AffectedDocumentIDs []string `json:"-"`
}

// SharingService expands share requests into materialized share records.
type SharingService interface {
	// ShareCategoryWithAreas fans a folder share out across the actor-owned
	// subtree and its documents. An empty areaIDs slice means every area.
	ShareCategoryWithAreas(ctx context.Context, actorID, categoryID string, areaIDs []string, p model.Permission) (*PropagationResult, error)

	// ShareCategoryWithUsers does the same for an explicit email list.
	// Unknown emails are skipped, never fatal.
	ShareCategoryWithUsers(ctx context.Context, actorID, categoryID string, emails []string, p model.Permission) (*PropagationResult, error)

	// ShareDocumentWithUsers grants view/edit on one document to the users
	// resolved from emails. Owner only.
	ShareDocumentWithUsers(ctx context.Context, actorID, documentID string, emails []string, p model.Permission) (*PropagationResult, error)

	// ShareDocumentWithArea grants view/edit on one document to an area, or
	// with nil areaID to every area. Owner only.
	ShareDocumentWithArea(ctx context.Context, actorID, documentID string, areaID *string, p model.Permission) (*PropagationResult, error)

	// RevokeDocumentShare removes a direct share. Owner only.
	RevokeDocumentShare(ctx context.Context, actorID, documentID, userID string) error

	// ListDocumentShares returns the direct shares on a document. Owner only.
	ListDocumentShares(ctx context.Context, actorID, documentID string) ([]model.DocumentShare, error)

	// ListSharedCategories returns the category shares granted to the user.
	ListSharedCategories(ctx context.Context, userID string) ([]model.CategoryShare, error)
}

type sharingService struct {
	atomic repository.Atomic
	store  repository.Store
	log    *zap.Logger
}

// NewSharingService constructs a SharingService.
func NewSharingService(atomic repository.Atomic, store repository.Store, log *zap.Logger) SharingService {
	return &sharingService{atomic: atomic, store: store, log: log}
}

func (s *sharingService) ShareCategoryWithAreas(ctx context.Context, actorID, categoryID string, areaIDs []string, p model.Permission) (*PropagationResult, error) {
	if !p.Grantable() {
		return nil, apperr.InvalidInput("permission must be view or edit, got %q", p)
	}

	var result *PropagationResult
	err := s.atomic.WithinTx(ctx, func(ctx context.Context, st repository.Store) error {
		categories, docs, err := collectShareSubtree(ctx, st, actorID, categoryID)
		if err != nil {
			return err
		}

		areas, err := resolveTargetAreas(ctx, st, areaIDs)
		if err != nil {
			return err
		}
		targets, err := resolveAreaMembers(ctx, st, areas, actorID)
		if err != nil {
			return err
		}

		res := &PropagationResult{}
		for _, doc := range docs {
			for _, area := range areas {
				areaID := area.ID
				if _, err := st.Shares.UpsertAreaDocumentShare(ctx, doc.ID, &areaID, p); err != nil {
					return fmt.Errorf("upsert area share: %w", err)
				}
			}
			for _, userID := range targets {
				if _, err := st.Shares.UpsertDocumentShare(ctx, doc.ID, userID, p); err != nil {
					return fmt.Errorf("upsert document share: %w", err)
				}
				res.SharedDocumentCount++
			}
		}
		for _, cat := range categories {
			for _, userID := range targets {
				if _, err := st.Shares.UpsertCategoryShare(ctx, cat.ID, userID, p); err != nil {
					return fmt.Errorf("upsert category share: %w", err)
				}
				res.SharedCategoryCount++
			}
		}
		if len(areas) > 0 || len(targets) > 0 {
			res.AffectedDocumentIDs = documentIDs(docs)
		}
		result = res
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("category shared with areas",
		zap.String("category_id", categoryID),
		zap.String("actor_id", actorID),
		zap.Int("shared_documents", result.SharedDocumentCount),
		zap.Int("shared_categories", result.SharedCategoryCount),
	)
	return result, nil
}

func (s *sharingService) ShareCategoryWithUsers(ctx context.Context, actorID, categoryID string, emails []string, p model.Permission) (*PropagationResult, error) {
	if !p.Grantable() {
		return nil, apperr.InvalidInput("permission must be view or edit, got %q", p)
	}
	if len(emails) == 0 {
		return nil, apperr.InvalidInput("email list is required")
	}

	var result *PropagationResult
	err := s.atomic.WithinTx(ctx, func(ctx context.Context, st repository.Store) error {
		categories, docs, err := collectShareSubtree(ctx, st, actorID, categoryID)
		if err != nil {
			return err
		}

		targets, skipped, err := resolveTargetEmails(ctx, st, emails, actorID)
		if err != nil {
			return err
		}

		res := &PropagationResult{Skipped: skipped}
		for _, doc := range docs {
			for _, userID := range targets {
				if _, err := st.Shares.UpsertDocumentShare(ctx, doc.ID, userID, p); err != nil {
					return fmt.Errorf("upsert document share: %w", err)
				}
				res.SharedDocumentCount++
			}
		}
		for _, cat := range categories {
			for _, userID := range targets {
				if _, err := st.Shares.UpsertCategoryShare(ctx, cat.ID, userID, p); err != nil {
					return fmt.Errorf("upsert category share: %w", err)
				}
				res.SharedCategoryCount++
			}
		}
		if len(targets) > 0 {
			res.AffectedDocumentIDs = documentIDs(docs)
		}
		result = res
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("category shared with users",
		zap.String("category_id", categoryID),
		zap.String("actor_id", actorID),
		zap.Int("shared_documents", result.SharedDocumentCount),
		zap.Int("skipped", len(result.Skipped)),
	)
	return result, nil
}

func (s *sharingService) ShareDocumentWithUsers(ctx context.Context, actorID, documentID string, emails []string, p model.Permission) (*PropagationResult, error) {
	if !p.Grantable() {
		return nil, apperr.InvalidInput("permission must be view or edit, got %q", p)
	}
	if len(emails) == 0 {
		return nil, apperr.InvalidInput("email list is required")
	}

	var result *PropagationResult
	err := s.atomic.WithinTx(ctx, func(ctx context.Context, st repository.Store) error {
		if err := requireOwnedDocument(ctx, st, actorID, documentID); err != nil {
			return err
		}
		targets, skipped, err := resolveTargetEmails(ctx, st, emails, actorID)
		if err != nil {
			return err
		}
		res := &PropagationResult{Skipped: skipped}
		for _, userID := range targets {
			if _, err := st.Shares.UpsertDocumentShare(ctx, documentID, userID, p); err != nil {
				return fmt.Errorf("upsert document share: %w", err)
			}
			res.SharedDocumentCount++
		}
		if res.SharedDocumentCount > 0 {
			res.AffectedDocumentIDs = []string{documentID}
		}
		result = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *sharingService) ShareDocumentWithArea(ctx context.Context, actorID, documentID string, areaID *string, p model.Permission) (*PropagationResult, error) {
	if !p.Grantable() {
		return nil, apperr.InvalidInput("permission must be view or edit, got %q", p)
	}

	var result *PropagationResult
	err := s.atomic.WithinTx(ctx, func(ctx context.Context, st repository.Store) error {
		if err := requireOwnedDocument(ctx, st, actorID, documentID); err != nil {
			return err
		}
		if areaID != nil {
			if _, err := st.Areas.FindByID(ctx, *areaID); err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return apperr.NotFound("area %s not found", *areaID)
				}
				return fmt.Errorf("find area: %w", err)
			}
		}
		if _, err := st.Shares.UpsertAreaDocumentShare(ctx, documentID, areaID, p); err != nil {
			return fmt.Errorf("upsert area share: %w", err)
		}
		result = &PropagationResult{SharedDocumentCount: 1, AffectedDocumentIDs: []string{documentID}}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *sharingService) RevokeDocumentShare(ctx context.Context, actorID, documentID, userID string) error {
	return s.atomic.WithinTx(ctx, func(ctx context.Context, st repository.Store) error {
		if err := requireOwnedDocument(ctx, st, actorID, documentID); err != nil {
			return err
		}
		return st.Shares.DeleteDocumentShare(ctx, documentID, userID)
	})
}

func (s *sharingService) ListDocumentShares(ctx context.Context, actorID, documentID string) ([]model.DocumentShare, error) {
	if err := requireOwnedDocument(ctx, s.store, actorID, documentID); err != nil {
		return nil, err
	}
	shares, err := s.store.Shares.ListDocumentShares(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("list document shares: %w", err)
	}
	return shares, nil
}

func (s *sharingService) ListSharedCategories(ctx context.Context, userID string) ([]model.CategoryShare, error) {
	shares, err := s.store.Shares.ListCategorySharesForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list category shares: %w", err)
	}
	return shares, nil
}

// collectShareSubtree validates the share preconditions and gathers the
// actor-owned category subtree plus the actor's non-deleted documents in it.
// Traversal is an iterative worklist with a visited set: a category not
// owned by the actor is not expanded, and a cycle in stored parent links
// cannot loop it.
func collectShareSubtree(ctx context.Context, st repository.Store, actorID, categoryID string) ([]model.Category, []model.Document, error) {
	root, err := st.Categories.FindByID(ctx, categoryID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, apperr.NotFound("category %s not found", categoryID)
		}
		return nil, nil, fmt.Errorf("find category: %w", err)
	}
	if root.IsDeleted {
		return nil, nil, apperr.NotFound("category %s not found", categoryID)
	}
	if root.OwnerID != actorID {
		return nil, nil, apperr.Forbidden("only the category owner can share it")
	}

	type frame struct {
		cat   model.Category
		depth int
	}
	visited := map[string]bool{root.ID: true}
	collected := []model.Category{*root}
	work := []frame{{cat: *root, depth: 0}}

	for len(work) > 0 {
		cur := work[len(work)-1]
		work = work[:len(work)-1]
		if cur.depth >= maxShareTreeDepth {
			continue
		}
		children, err := st.Categories.ListChildren(ctx, cur.cat.ID)
		if err != nil {
			return nil, nil, fmt.Errorf("list subcategories: %w", err)
		}
		for _, child := range children {
			if visited[child.ID] {
				continue
			}
			visited[child.ID] = true
			if child.OwnerID != actorID {
				// Ownership boundary: foreign subtrees are not visited.
				continue
			}
			collected = append(collected, child)
			work = append(work, frame{cat: child, depth: cur.depth + 1})
		}
	}

	ids := make([]string, len(collected))
	for i, c := range collected {
		ids[i] = c.ID
	}
	docs, err := st.Documents.ListActiveByCategories(ctx, actorID, ids)
	if err != nil {
		return nil, nil, fmt.Errorf("list folder documents: %w", err)
	}
	if len(docs) == 0 {
		return nil, nil, apperr.InvalidInput("folder contains no documents")
	}
	return collected, docs, nil
}

// resolveTargetAreas expands an empty list to every area and validates
// explicit ids.
func resolveTargetAreas(ctx context.Context, st repository.Store, areaIDs []string) ([]model.Area, error) {
	if len(areaIDs) == 0 {
		areas, err := st.Areas.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("list areas: %w", err)
		}
		return areas, nil
	}
	areas := make([]model.Area, 0, len(areaIDs))
	seen := make(map[string]bool, len(areaIDs))
	for _, id := range areaIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		area, err := st.Areas.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, apperr.NotFound("area %s not found", id)
			}
			return nil, fmt.Errorf("find area: %w", err)
		}
		areas = append(areas, *area)
	}
	return areas, nil
}

// resolveAreaMembers collects the deduplicated member set of the target
// areas, excluding the actor.
func resolveAreaMembers(ctx context.Context, st repository.Store, areas []model.Area, actorID string) ([]string, error) {
	seen := make(map[string]bool)
	targets := make([]string, 0)
	for _, area := range areas {
		members, err := st.Users.ListByArea(ctx, area.ID)
		if err != nil {
			return nil, fmt.Errorf("list area members: %w", err)
		}
		for _, m := range members {
			if m.ID == actorID || seen[m.ID] {
				continue
			}
			seen[m.ID] = true
			targets = append(targets, m.ID)
		}
	}
	return targets, nil
}

// resolveTargetEmails maps emails to user ids, recording unknown emails and
// the actor's own address as skipped instead of failing the batch.
func resolveTargetEmails(ctx context.Context, st repository.Store, emails []string, actorID string) ([]string, []SkippedTarget, error) {
	seen := make(map[string]bool)
	targets := make([]string, 0, len(emails))
	skipped := make([]SkippedTarget, 0)
	for _, email := range emails {
		user, err := st.Users.FindByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				skipped = append(skipped, SkippedTarget{Email: email, Reason: "unknown email"})
				continue
			}
			return nil, nil, fmt.Errorf("find user by email: %w", err)
		}
		if user.ID == actorID {
			skipped = append(skipped, SkippedTarget{Email: email, Reason: "cannot share with yourself"})
			continue
		}
		if seen[user.ID] {
			continue
		}
		seen[user.ID] = true
		targets = append(targets, user.ID)
	}
	return targets, skipped, nil
}

func documentIDs(docs []model.Document) []string {
	ids := make([]string, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
	}
	return ids
}

// requireOwnedDocument loads the document and checks actor ownership.
func requireOwnedDocument(ctx context.Context, st repository.Store, actorID, documentID string) error {
	doc, err := st.Documents.FindByID(ctx, documentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFound("document %s not found", documentID)
		}
		return fmt.Errorf("find document: %w", err)
	}
	if doc.IsDeleted {
		return apperr.NotFound("document %s not found", documentID)
	}
	if doc.OwnerID != actorID {
		return apperr.Forbidden("only the document owner can share it")
	}
	return nil
}
