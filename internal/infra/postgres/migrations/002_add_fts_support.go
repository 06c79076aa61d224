package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

// addFTSSupport wires PostgreSQL full-text search onto the posts table.
//
// 1. Adds a `search_vector` tsvector column
// 2. Creates a GIN index over it
// 3. Installs a trigger keeping the vector current on INSERT/UPDATE
// 4. Backfills existing rows
//
// Vector weights: title 'A' (highest), tags 'B', content 'C'. Queries match
// through `search_vector @@ websearch_to_tsquery('english', ?)`.
func addFTSSupport() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "002_add_fts_support",
		Migrate: func(tx *gorm.DB) error {
			if err := tx.Exec(`
				ALTER TABLE posts
				ADD COLUMN IF NOT EXISTS search_vector tsvector
			`).Error; err != nil {
				return err
			}

			if err := tx.Exec(`
				CREATE INDEX IF NOT EXISTS idx_posts_search_vector
				ON posts USING GIN (search_vector)
			`).Error; err != nil {
				return err
			}

			if err := tx.Exec(`
				CREATE OR REPLACE FUNCTION posts_search_vector_update()
				RETURNS trigger AS $$
				BEGIN
					NEW.search_vector :=
						setweight(to_tsvector('english', coalesce(NEW.title, '')), 'A') ||
						setweight(to_tsvector('english', coalesce(array_to_string(NEW.tags, ' '), '')), 'B') ||
						setweight(to_tsvector('english', coalesce(NEW.content, '')), 'C');
					RETURN NEW;
				END
				$$ LANGUAGE plpgsql
			`).Error; err != nil {
				return err
			}

			if err := tx.Exec(`
				DROP TRIGGER IF EXISTS trg_posts_search_vector ON posts
			`).Error; err != nil {
				return err
			}

			if err := tx.Exec(`
				CREATE TRIGGER trg_posts_search_vector
				BEFORE INSERT OR UPDATE OF title, content, tags
				ON posts
				FOR EACH ROW
				EXECUTE FUNCTION posts_search_vector_update()
			`).Error; err != nil {
				return err
			}

			if err := tx.Exec(`
				UPDATE posts SET search_vector =
					setweight(to_tsvector('english', coalesce(title, '')), 'A') ||
					setweight(to_tsvector('english', coalesce(array_to_string(tags, ' '), '')), 'B') ||
					setweight(to_tsvector('english', coalesce(content, '')), 'C')
				WHERE search_vector IS NULL
			`).Error; err != nil {
				return err
			}

			return nil
		},
		Rollback: func(tx *gorm.DB) error {
			_ = tx.Exec(`DROP TRIGGER IF EXISTS trg_posts_search_vector ON posts`).Error
			_ = tx.Exec(`DROP FUNCTION IF EXISTS posts_search_vector_update()`).Error
			_ = tx.Exec(`DROP INDEX IF EXISTS idx_posts_search_vector`).Error
			_ = tx.Exec(`ALTER TABLE posts DROP COLUMN IF EXISTS search_vector`).Error
			return nil
		},
	}
}
