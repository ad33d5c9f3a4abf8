package migrations

import (
	"github.com/dinesh-git17/debate-lab-sub000/pkg/infra/database"
	"gorm.io/gorm"
)

// Initial abuse-prevention schema.
// Tables: ip_tracking, ip_bans, abuse_logs
func init() {
	database.RegisterMigration(database.Migration{
		ID:   "20250801_initial_schema",
		Name: "Create abuse tables: ip_tracking, ip_bans, abuse_logs",

		Up: func(db *gorm.DB) error {
			if err := db.Exec(`
				CREATE EXTENSION IF NOT EXISTS pgcrypto;
			`).Error; err != nil {
				return err
			}

			// Tracking rows are keyed by the salted identity hash; raw IPs
			// never reach the database.
			if err := db.Exec(`
				CREATE TABLE IF NOT EXISTS ip_tracking (
					ip_hash       VARCHAR(64) PRIMARY KEY,
					first_seen    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					last_seen     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					visit_count   INTEGER NOT NULL DEFAULT 0,
					flag_count    INTEGER NOT NULL DEFAULT 0,
					is_flagged    BOOLEAN NOT NULL DEFAULT FALSE,
					flag_reasons  TEXT[] NOT NULL DEFAULT '{}',
					metadata      JSONB
				);
			`).Error; err != nil {
				return err
			}

			if err := db.Exec(`
				CREATE TABLE IF NOT EXISTS ip_bans (
					id          UUID PRIMARY KEY DEFAULT gen_random_uuid(),
					ip_hash     VARCHAR(64) NOT NULL,
					ban_type    TEXT NOT NULL,
					reason      TEXT NOT NULL,
					description TEXT,
					expires_at  TIMESTAMPTZ,
					created_by  TEXT,
					is_active   BOOLEAN NOT NULL DEFAULT TRUE,
					created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);
			`).Error; err != nil {
				return err
			}

			if err := db.Exec(`
				CREATE INDEX IF NOT EXISTS idx_ip_bans_hash_active
					ON ip_bans (ip_hash, is_active);
			`).Error; err != nil {
				return err
			}

			if err := db.Exec(`
				CREATE TABLE IF NOT EXISTS abuse_logs (
					id         UUID PRIMARY KEY DEFAULT gen_random_uuid(),
					ip_hash    VARCHAR(64) NOT NULL,
					event_type TEXT NOT NULL,
					severity   TEXT NOT NULL,
					endpoint   TEXT,
					details    JSONB,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);
			`).Error; err != nil {
				return err
			}

			return db.Exec(`
				CREATE INDEX IF NOT EXISTS idx_abuse_logs_hash_type_time
					ON abuse_logs (ip_hash, event_type, created_at);
			`).Error
		},

		Down: func(db *gorm.DB) error {
			if err := db.Exec(`DROP TABLE IF EXISTS abuse_logs;`).Error; err != nil {
				return err
			}
			if err := db.Exec(`DROP TABLE IF EXISTS ip_bans;`).Error; err != nil {
				return err
			}
			return db.Exec(`DROP TABLE IF EXISTS ip_tracking;`).Error
		},
	})
}
