package migration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"
)

type migrationStep struct {
	Name string
	SQL  string
}

var steps = []migrationStep{
	{
		Name: "create_extension_uuid_ossp",
		SQL:  `CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	},
	{
		Name: "create_table_areas",
		SQL: `CREATE TABLE IF NOT EXISTS areas (
  id         UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  name       TEXT        NOT NULL UNIQUE,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_users",
		SQL: `CREATE TABLE IF NOT EXISTS users (
  id         UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  email      TEXT        NOT NULL UNIQUE,
  name       TEXT        NOT NULL,
  role       TEXT        NOT NULL DEFAULT 'normal',
  area_id    UUID        REFERENCES areas (id) ON DELETE SET NULL,
  is_leader  BOOLEAN     NOT NULL DEFAULT FALSE,
  grants     JSONB       NOT NULL DEFAULT '[]',
  created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_users_area_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_users_area_id ON users (area_id);`,
	},
	{
		Name: "create_table_categories",
		SQL: `CREATE TABLE IF NOT EXISTS categories (
  id         UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  name       TEXT        NOT NULL,
  owner_id   UUID        NOT NULL REFERENCES users (id),
  parent_id  UUID        REFERENCES categories (id),
  is_deleted BOOLEAN     NOT NULL DEFAULT FALSE,
  deleted_at TIMESTAMPTZ,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
  UNIQUE NULLS NOT DISTINCT (owner_id, parent_id, name)
);`,
	},
	{
		Name: "create_index_categories_parent_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_categories_parent_id ON categories (parent_id);`,
	},
	{
		Name: "create_table_documents",
		SQL: `CREATE TABLE IF NOT EXISTS documents (
  id              UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  title           TEXT        NOT NULL,
  content         TEXT        NOT NULL DEFAULT '',
  owner_id        UUID        NOT NULL REFERENCES users (id),
  category_id     UUID        REFERENCES categories (id),
  is_deleted      BOOLEAN     NOT NULL DEFAULT FALSE,
  deleted_at      TIMESTAMPTZ,
  deletion_reason TEXT,
  deleted_by      UUID        REFERENCES users (id),
  created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_documents_owner_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_documents_owner_id ON documents (owner_id);`,
	},
	{
		Name: "create_index_documents_category_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_documents_category_id ON documents (category_id);`,
	},
	{
		Name: "create_table_document_shares",
		SQL: `CREATE TABLE IF NOT EXISTS document_shares (
  id                  UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  document_id         UUID        NOT NULL REFERENCES documents (id) ON DELETE CASCADE,
  shared_with_user_id UUID        NOT NULL REFERENCES users (id) ON DELETE CASCADE,
  permission          TEXT        NOT NULL,
  created_at          TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at          TIMESTAMPTZ NOT NULL DEFAULT now(),
  UNIQUE (document_id, shared_with_user_id)
);`,
	},
	{
		Name: "create_index_document_shares_user",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_document_shares_user ON document_shares (shared_with_user_id);`,
	},
	{
		Name: "create_table_area_document_shares",
		SQL: `CREATE TABLE IF NOT EXISTS area_document_shares (
  id          UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  document_id UUID        NOT NULL REFERENCES documents (id) ON DELETE CASCADE,
  area_id     UUID        REFERENCES areas (id) ON DELETE CASCADE,
  permission  TEXT        NOT NULL,
  created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
  UNIQUE NULLS NOT DISTINCT (document_id, area_id)
);`,
	},
	{
		Name: "create_table_category_shares",
		SQL: `CREATE TABLE IF NOT EXISTS category_shares (
  id                  UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  category_id         UUID        NOT NULL REFERENCES categories (id) ON DELETE CASCADE,
  shared_with_user_id UUID        NOT NULL REFERENCES users (id) ON DELETE CASCADE,
  permission          TEXT        NOT NULL,
  created_at          TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at          TIMESTAMPTZ NOT NULL DEFAULT now(),
  UNIQUE (category_id, shared_with_user_id)
);`,
	},
	{
		Name: "create_table_document_versions",
		SQL: `CREATE TABLE IF NOT EXISTS document_versions (
  id          UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  document_id UUID        NOT NULL REFERENCES documents (id) ON DELETE CASCADE,
  version     INTEGER     NOT NULL CHECK (version >= 1),
  title       TEXT        NOT NULL,
  content     TEXT        NOT NULL,
  change_note TEXT        NOT NULL,
  created_by  UUID        NOT NULL REFERENCES users (id),
  created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
  UNIQUE (document_id, version)
);`,
	},
	{
		Name: "create_index_document_versions_document",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_document_versions_document ON document_versions (document_id, version DESC);`,
	},
}

// EnsureMigrated checks if the 'documents' table exists and runs migrations if it doesn't.
func EnsureMigrated(ctx context.Context, db *sql.DB, loc *time.Location, dbHost string) error {
	start := time.Now()

	logJSON(loc, map[string]any{
		"component": "database",
		"event":     "db_migration_check",
		"status":    "starting",
		"db_host":   dbHost,
	})

	var exists bool
	query := "SELECT to_regclass('public.documents') IS NOT NULL"
	err := db.QueryRowContext(ctx, query).Scan(&exists)
	if err != nil {
		logJSON(loc, map[string]any{
			"component":     "database",
			"event":         "db_migration_failed",
			"status":        "error",
			"error_message": fmt.Sprintf("failed to check sentinel table: %v", err),
			"db_host":       dbHost,
			"duration_ms":   time.Since(start).Milliseconds(),
		})
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		logJSON(loc, map[string]any{
			"component":   "database",
			"event":       "db_migration_skip",
			"status":      "success",
			"msg":         "schema already exists, skipping migration",
			"db_host":     dbHost,
			"duration_ms": time.Since(start).Milliseconds(),
		})
		return nil
	}

	logJSON(loc, map[string]any{
		"component": "database",
		"event":     "db_migration_start",
		"status":    "in_progress",
		"db_host":   dbHost,
	})

	for _, step := range steps {
		stepStart := time.Now()
		_, err := db.ExecContext(ctx, step.SQL)
		if err != nil {
			logJSON(loc, map[string]any{
				"component":        "database",
				"event":            "db_migration_failed",
				"status":           "error",
				"migration_step":   step.Name,
				"error_message":    err.Error(),
				"db_host":          dbHost,
				"duration_ms":      time.Since(start).Milliseconds(),
				"step_duration_ms": time.Since(stepStart).Milliseconds(),
			})
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		logJSON(loc, map[string]any{
			"component":        "database",
			"event":            "db_migration_step",
			"status":           "success",
			"migration_step":   step.Name,
			"db_host":          dbHost,
			"step_duration_ms": time.Since(stepStart).Milliseconds(),
		})
	}

	logJSON(loc, map[string]any{
		"component":   "database",
		"event":       "db_migration_success",
		"status":      "success",
		"db_host":     dbHost,
		"duration_ms": time.Since(start).Milliseconds(),
	})

	return nil
}

func logJSON(loc *time.Location, data map[string]any) {
	data["ts"] = time.Now().In(loc).Format(time.RFC3339Nano)
	if _, ok := data["level"]; !ok {
		if data["status"] == "error" {
			data["level"] = "error"
		} else {
			data["level"] = "info"
		}
	}

	b, err := json.Marshal(data)
	if err != nil {
		log.Printf("failed to marshal migration log: %v", err)
		return
	}
	log.SetFlags(0)
	log.Println(string(b))
}
