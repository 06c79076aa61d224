package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

// createPostsTable creates the posts table with all indexes. The table is
// owned by the post store; this service bootstraps the schema so the search
// backend can run standalone in development and tests.
func createPostsTable() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "001_create_posts",
		Migrate: func(tx *gorm.DB) error {
			err := tx.Exec(`
				CREATE TABLE IF NOT EXISTS posts (
					id BIGINT PRIMARY KEY,
					author_id BIGINT NOT NULL,
					author_name VARCHAR(100) NOT NULL,
					author_avatar VARCHAR(500),
					title VARCHAR(500) NOT NULL,
					content TEXT NOT NULL,
					tags TEXT[],

					-- Engagement counters
					like_count INTEGER DEFAULT 0,
					comment_count INTEGER DEFAULT 0,

					created_at TIMESTAMP NOT NULL
				);
			`).Error
			if err != nil {
				return err
			}

			indexes := []string{
				"CREATE INDEX IF NOT EXISTS idx_posts_author_id ON posts(author_id);",
				"CREATE INDEX IF NOT EXISTS idx_posts_created_at ON posts(created_at DESC);",
				"CREATE INDEX IF NOT EXISTS idx_posts_tags ON posts USING GIN (tags);",
			}

			for _, idx := range indexes {
				if err := tx.Exec(idx).Error; err != nil {
					return err
				}
			}

			return nil
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Exec("DROP TABLE IF EXISTS posts;").Error
		},
	}
}
