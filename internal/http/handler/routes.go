package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"docvault/internal/http/middleware"
	"docvault/internal/model"
	"docvault/internal/service"
)

// Services bundles the application services the HTTP layer exposes.
type Services struct {
	Documents  service.DocumentService
	Versions   service.VersionLedger
	Sharing    service.SharingService
	Categories service.CategoryService
	Areas      service.AreaService
	UserAdmin  service.UserAdminService
}

// PermissionInvalidator drops cached permission entries after share
// mutations. A nil invalidator disables explicit invalidation; the cache TTL
// still bounds staleness.
type PermissionInvalidator interface {
	InvalidateDocument(ctx context.Context, documentID string) error
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Handlers only parse, delegate and translate errors; business rules live in
// the service layer.
func RegisterRoutes(app *fiber.App, db *sql.DB, svcs Services, perms PermissionInvalidator, jwtSecret string) {
	// Serve OpenAPI spec and Swagger UI
	app.Get("/openapi.yaml", func(c *fiber.Ctx) error {
		c.Type("yaml")
		return c.SendFile("openapi.yaml")
	})
	app.Get("/docs", func(c *fiber.Ctx) error {
		html := `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>API Docs</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    window.ui = SwaggerUIBundle({
      url: '/openapi.yaml',
      dom_id: '#swagger-ui',
      presets: [SwaggerUIBundle.presets.apis],
      layout: 'BaseLayout'
    });
  </script>
</body>
</html>`
		return c.Type("html").SendString(html)
	})

	// Health endpoint: checks DB connectivity only
	app.Get("/health", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	})

	// Simple liveness probe
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	api := app.Group("", middleware.Auth(jwtSecret))

	registerDocumentRoutes(api, svcs, perms)
	registerVersionRoutes(api, svcs)
	registerCategoryRoutes(api, svcs, perms)
	registerAreaRoutes(api, svcs)
	registerUserRoutes(api, svcs)
}

func registerDocumentRoutes(r fiber.Router, svcs Services, perms PermissionInvalidator) {
	r.Post("/documents", func(c *fiber.Ctx) error {
		var body struct {
			Title      string  `json:"title"`
			Content    string  `json:"content"`
			CategoryID *string `json:"category_id"`
		}
		if err := c.BodyParser(&body); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		doc, err := svcs.Documents.Create(c.UserContext(), middleware.UserIDFromCtx(c), body.Title, body.Content, body.CategoryID)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(doc)
	})

	r.Get("/documents", func(c *fiber.Ctx) error {
		limit, err := strconv.Atoi(c.Query("limit", "10"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := strconv.Atoi(c.Query("offset", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}
		res, err := svcs.Documents.List(c.UserContext(), middleware.UserIDFromCtx(c), limit, offset)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	})

	r.Get("/documents/:id", func(c *fiber.Ctx) error {
		id, ok := pathID(c, "id")
		if !ok {
			return errInvalidPath(c, "INVALID_ID")
		}
		doc, err := svcs.Documents.Get(c.UserContext(), middleware.UserIDFromCtx(c), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(doc)
	})

	r.Patch("/documents/:id", func(c *fiber.Ctx) error {
		id, ok := pathID(c, "id")
		if !ok {
			return errInvalidPath(c, "INVALID_ID")
		}
		patch, err := parseDocumentPatch(c)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		doc, err := svcs.Documents.Update(c.UserContext(), middleware.UserIDFromCtx(c), id, patch)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(doc)
	})

	r.Delete("/documents/:id", func(c *fiber.Ctx) error {
		id, ok := pathID(c, "id")
		if !ok {
			return errInvalidPath(c, "INVALID_ID")
		}
		var body struct {
			Reason string `json:"reason"`
		}
		if err := c.BodyParser(&body); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		receipt, err := svcs.Documents.Delete(c.UserContext(), middleware.UserIDFromCtx(c), id, body.Reason)
		if err != nil {
			return writeServiceError(c, err)
		}
		invalidatePermissions(c.UserContext(), perms, id)
		return c.JSON(receipt)
	})

	r.Post("/documents/:id/restore", func(c *fiber.Ctx) error {
		id, ok := pathID(c, "id")
		if !ok {
			return errInvalidPath(c, "INVALID_ID")
		}
		doc, err := svcs.Documents.Restore(c.UserContext(), middleware.UserIDFromCtx(c), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		invalidatePermissions(c.UserContext(), perms, id)
		return c.JSON(doc)
	})

	r.Get("/documents/:id/permission", func(c *fiber.Ctx) error {
		id, ok := pathID(c, "id")
		if !ok {
			return errInvalidPath(c, "INVALID_ID")
		}
		p, err := svcs.Documents.Resolve(c.UserContext(), middleware.UserIDFromCtx(c), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"document_id": id, "permission": p})
	})

	r.Get("/documents/:id/shares", func(c *fiber.Ctx) error {
		id, ok := pathID(c, "id")
		if !ok {
			return errInvalidPath(c, "INVALID_ID")
		}
		shares, err := svcs.Sharing.ListDocumentShares(c.UserContext(), middleware.UserIDFromCtx(c), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(shares)
	})

	r.Post("/documents/:id/shares", func(c *fiber.Ctx) error {
		id, ok := pathID(c, "id")
		if !ok {
			return errInvalidPath(c, "INVALID_ID")
		}
		var body struct {
			Emails     []string `json:"emails"`
			Permission string   `json:"permission"`
		}
		if err := c.BodyParser(&body); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		res, err := svcs.Sharing.ShareDocumentWithUsers(c.UserContext(), middleware.UserIDFromCtx(c), id, body.Emails, model.Permission(body.Permission))
		if err != nil {
			return writeServiceError(c, err)
		}
		invalidateDocuments(c.UserContext(), perms, res.AffectedDocumentIDs)
		return c.JSON(res)
	})

	r.Post("/documents/:id/shares/area", func(c *fiber.Ctx) error {
		id, ok := pathID(c, "id")
		if !ok {
			return errInvalidPath(c, "INVALID_ID")
		}
		var body struct {
			AreaID     *string `json:"area_id"`
			Permission string  `json:"permission"`
		}
		if err := c.BodyParser(&body); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		res, err := svcs.Sharing.ShareDocumentWithArea(c.UserContext(), middleware.UserIDFromCtx(c), id, body.AreaID, model.Permission(body.Permission))
		if err != nil {
			return writeServiceError(c, err)
		}
		invalidateDocuments(c.UserContext(), perms, res.AffectedDocumentIDs)
		return c.JSON(res)
	})

	r.Delete("/documents/:id/shares/:userId", func(c *fiber.Ctx) error {
		id, ok := pathID(c, "id")
		if !ok {
			return errInvalidPath(c, "INVALID_ID")
		}
		userID, ok := pathID(c, "userId")
		if !ok {
			return errInvalidPath(c, "INVALID_ID")
		}
		if err := svcs.Sharing.RevokeDocumentShare(c.UserContext(), middleware.UserIDFromCtx(c), id, userID); err != nil {
			return writeServiceError(c, err)
		}
		invalidatePermissions(c.UserContext(), perms, id)
		return c.SendStatus(fiber.StatusNoContent)
	})
}

func registerVersionRoutes(r fiber.Router, svcs Services) {
	r.Get("/documents/:id/versions", func(c *fiber.Ctx) error {
		id, ok := pathID(c, "id")
		if !ok {
			return errInvalidPath(c, "INVALID_ID")
		}
		versions, err := svcs.Versions.ListVersions(c.UserContext(), middleware.UserIDFromCtx(c), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(versions)
	})

	r.Get("/documents/:id/versions/:version", func(c *fiber.Ctx) error {
		id, ok := pathID(c, "id")
		if !ok {
			return errInvalidPath(c, "INVALID_ID")
		}
		version, ok := pathVersion(c)
		if !ok {
			return errInvalidPath(c, "INVALID_VERSION")
		}
		v, err := svcs.Versions.GetVersion(c.UserContext(), middleware.UserIDFromCtx(c), id, version)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(v)
	})

	r.Post("/documents/:id/versions/:version/restore", func(c *fiber.Ctx) error {
		id, ok := pathID(c, "id")
		if !ok {
			return errInvalidPath(c, "INVALID_ID")
		}
		version, ok := pathVersion(c)
		if !ok {
			return errInvalidPath(c, "INVALID_VERSION")
		}
		doc, err := svcs.Versions.RestoreToVersion(c.UserContext(), id, version, middleware.UserIDFromCtx(c))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(doc)
	})

	r.Patch("/documents/:id/versions/:version", func(c *fiber.Ctx) error {
		id, ok := pathID(c, "id")
		if !ok {
			return errInvalidPath(c, "INVALID_ID")
		}
		version, ok := pathVersion(c)
		if !ok {
			return errInvalidPath(c, "INVALID_VERSION")
		}
		var body struct {
			ChangeNote string `json:"change_note"`
		}
		if err := c.BodyParser(&body); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		if err := svcs.Versions.UpdateChangeNote(c.UserContext(), middleware.UserIDFromCtx(c), id, version, body.ChangeNote); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}

func registerCategoryRoutes(r fiber.Router, svcs Services, perms PermissionInvalidator) {
	r.Post("/categories", func(c *fiber.Ctx) error {
		var body struct {
			Name     string  `json:"name"`
			ParentID *string `json:"parent_id"`
		}
		if err := c.BodyParser(&body); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		cat, err := svcs.Categories.Create(c.UserContext(), middleware.UserIDFromCtx(c), body.Name, body.ParentID)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(cat)
	})

	r.Get("/categories", func(c *fiber.Ctx) error {
		cats, err := svcs.Categories.ListRoots(c.UserContext(), middleware.UserIDFromCtx(c))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(cats)
	})

	r.Get("/categories/shared-with-me", func(c *fiber.Ctx) error {
		shares, err := svcs.Sharing.ListSharedCategories(c.UserContext(), middleware.UserIDFromCtx(c))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(shares)
	})

	r.Get("/categories/:id", func(c *fiber.Ctx) error {
		id, ok := pathID(c, "id")
		if !ok {
			return errInvalidPath(c, "INVALID_ID")
		}
		cat, err := svcs.Categories.Get(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(cat)
	})

	r.Get("/categories/:id/children", func(c *fiber.Ctx) error {
		id, ok := pathID(c, "id")
		if !ok {
			return errInvalidPath(c, "INVALID_ID")
		}
		cats, err := svcs.Categories.ListChildren(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(cats)
	})

	r.Delete("/categories/:id", func(c *fiber.Ctx) error {
		id, ok := pathID(c, "id")
		if !ok {
			return errInvalidPath(c, "INVALID_ID")
		}
		if err := svcs.Categories.Delete(c.UserContext(), middleware.UserIDFromCtx(c), id); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Post("/categories/:id/shares", func(c *fiber.Ctx) error {
		id, ok := pathID(c, "id")
		if !ok {
			return errInvalidPath(c, "INVALID_ID")
		}
		var body struct {
			Emails     []string `json:"emails"`
			Permission string   `json:"permission"`
		}
		if err := c.BodyParser(&body); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		res, err := svcs.Sharing.ShareCategoryWithUsers(c.UserContext(), middleware.UserIDFromCtx(c), id, body.Emails, model.Permission(body.Permission))
		if err != nil {
			return writeServiceError(c, err)
		}
		invalidateDocuments(c.UserContext(), perms, res.AffectedDocumentIDs)
		return c.JSON(res)
	})

	r.Post("/categories/:id/shares/areas", func(c *fiber.Ctx) error {
		id, ok := pathID(c, "id")
		if !ok {
			return errInvalidPath(c, "INVALID_ID")
		}
		var body struct {
			AreaIDs    []string `json:"area_ids"`
			Permission string   `json:"permission"`
		}
		if err := c.BodyParser(&body); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		res, err := svcs.Sharing.ShareCategoryWithAreas(c.UserContext(), middleware.UserIDFromCtx(c), id, body.AreaIDs, model.Permission(body.Permission))
		if err != nil {
			return writeServiceError(c, err)
		}
		invalidateDocuments(c.UserContext(), perms, res.AffectedDocumentIDs)
		return c.JSON(res)
	})
}

func registerAreaRoutes(r fiber.Router, svcs Services) {
	r.Post("/areas", func(c *fiber.Ctx) error {
		var body struct {
			Name string `json:"name"`
		}
		if err := c.BodyParser(&body); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		area, err := svcs.Areas.Create(c.UserContext(), middleware.UserIDFromCtx(c), body.Name)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(area)
	})

	r.Get("/areas", func(c *fiber.Ctx) error {
		areas, err := svcs.Areas.List(c.UserContext(), middleware.UserIDFromCtx(c))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(areas)
	})

	r.Delete("/areas/:id", func(c *fiber.Ctx) error {
		id, ok := pathID(c, "id")
		if !ok {
			return errInvalidPath(c, "INVALID_ID")
		}
		if err := svcs.Areas.Delete(c.UserContext(), middleware.UserIDFromCtx(c), id); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}

func registerUserRoutes(r fiber.Router, svcs Services) {
	r.Put("/users/:id/area", func(c *fiber.Ctx) error {
		id, ok := pathID(c, "id")
		if !ok {
			return errInvalidPath(c, "INVALID_ID")
		}
		var body struct {
			AreaID   *string `json:"area_id"`
			IsLeader bool    `json:"is_leader"`
		}
		if err := c.BodyParser(&body); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		if err := svcs.Areas.AssignUser(c.UserContext(), middleware.UserIDFromCtx(c), id, body.AreaID, body.IsLeader); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Put("/users/:id/role", func(c *fiber.Ctx) error {
		id, ok := pathID(c, "id")
		if !ok {
			return errInvalidPath(c, "INVALID_ID")
		}
		var body struct {
			Role string `json:"role"`
		}
		if err := c.BodyParser(&body); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		if err := svcs.UserAdmin.SetRole(c.UserContext(), middleware.UserIDFromCtx(c), id, model.Role(body.Role)); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Put("/users/:id/grants", func(c *fiber.Ctx) error {
		id, ok := pathID(c, "id")
		if !ok {
			return errInvalidPath(c, "INVALID_ID")
		}
		var body struct {
			Grants []string `json:"grants"`
		}
		if err := c.BodyParser(&body); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		if err := svcs.UserAdmin.SetGrants(c.UserContext(), middleware.UserIDFromCtx(c), id, body.Grants); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}

// pathID validates a UUID path parameter.
func pathID(c *fiber.Ctx, name string) (string, bool) {
	id := c.Params(name)
	if _, err := uuid.Parse(id); err != nil {
		return "", false
	}
	return id, true
}

// pathVersion validates the :version path parameter.
func pathVersion(c *fiber.Ctx) (int, bool) {
	v, err := strconv.Atoi(c.Params("version"))
	if err != nil || v < 1 {
		return 0, false
	}
	return v, true
}

// invalidatePermissions best-effort drops cached permissions for a document.
// The TTL bounds staleness, so a failed invalidation is not an error the
// client should see.
func invalidatePermissions(ctx context.Context, perms PermissionInvalidator, documentID string) {
	if perms == nil {
		return
	}
	_ = perms.InvalidateDocument(ctx, documentID)
}

// invalidateDocuments drops cached permissions for every document a share
// mutation touched, so bulk shares take effect without waiting out the TTL.
func invalidateDocuments(ctx context.Context, perms PermissionInvalidator, documentIDs []string) {
	for _, id := range documentIDs {
		invalidatePermissions(ctx, perms, id)
	}
}

// errInvalidPath writes the standard 400 for a malformed path parameter.
func errInvalidPath(c *fiber.Ctx, code string) error {
	return writeError(c, fiber.StatusBadRequest, code, "invalid path parameter")
}

// parseDocumentPatch reads the PATCH body preserving the absent / set /
// set-to-null distinction for category_id.
func parseDocumentPatch(c *fiber.Ctx) (model.DocumentPatch, error) {
	var body struct {
		Title      *string         `json:"title"`
		Content    *string         `json:"content"`
		CategoryID json.RawMessage `json:"category_id"`
		ChangeNote *string         `json:"change_note"`
	}
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return model.DocumentPatch{}, err
	}

	var patch model.DocumentPatch
	if body.Title != nil {
		patch.Title = model.Some(*body.Title)
	}
	if body.Content != nil {
		patch.Content = model.Some(*body.Content)
	}
	if body.ChangeNote != nil {
		patch.ChangeNote = model.Some(*body.ChangeNote)
	}
	if len(body.CategoryID) > 0 {
		var id *string
		if err := json.Unmarshal(body.CategoryID, &id); err != nil {
			return model.DocumentPatch{}, err
		}
		patch.CategoryID = model.Some(id)
	}
	return patch, nil
}
