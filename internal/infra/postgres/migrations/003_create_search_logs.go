package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

// createSearchLogsTable creates the append-only search_logs table consumed
// by trending aggregation and pruned by the retention job.
func createSearchLogsTable() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "003_create_search_logs",
		Migrate: func(tx *gorm.DB) error {
			err := tx.Exec(`
				CREATE TABLE IF NOT EXISTS search_logs (
					id BIGSERIAL PRIMARY KEY,
					requester_id BIGINT NOT NULL,
					query_text VARCHAR(200),
					filter_summary VARCHAR(500),
					result_count BIGINT DEFAULT 0,
					latency_ms BIGINT DEFAULT 0,
					created_at TIMESTAMP NOT NULL
				);
			`).Error
			if err != nil {
				return err
			}

			indexes := []string{
				"CREATE INDEX IF NOT EXISTS idx_search_logs_requester_id ON search_logs(requester_id);",
				"CREATE INDEX IF NOT EXISTS idx_search_logs_created_at ON search_logs(created_at DESC);",
			}

			for _, idx := range indexes {
				if err := tx.Exec(idx).Error; err != nil {
					return err
				}
			}

			return nil
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Exec("DROP TABLE IF EXISTS search_logs;").Error
		},
	}
}
