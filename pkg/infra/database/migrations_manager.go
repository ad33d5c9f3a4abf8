package database

import (
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Migration is a single schema step. IDs are date-prefixed so sorting them
// lexicographically yields application order.
type Migration struct {
	ID   string
	Name string
	Up   func(db *gorm.DB) error
	Down func(db *gorm.DB) error
}

var registry []Migration

// RegisterMigration is called from package init funcs in pkg/infra/migrations.
func RegisterMigration(m Migration) {
	for _, existing := range registry {
		if existing.ID == m.ID {
			panic(fmt.Sprintf("duplicate migration id %q", m.ID))
		}
	}
	registry = append(registry, m)
}

type MigrationsManager struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewMigrationsManager(db *gorm.DB, logger *logrus.Logger) *MigrationsManager {
	return &MigrationsManager{db: db, logger: logger}
}

// ApplyPending runs every registered migration that has no row in
// schema_migrations yet, recording each step as it lands. Each step runs
// inside its own transaction.
func (m *MigrationsManager) ApplyPending() error {
	if err := m.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			id         TEXT PRIMARY KEY,
			name       TEXT NOT NULL,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`).Error; err != nil {
		return fmt.Errorf("ensure schema_migrations: %w", err)
	}

	var appliedIDs []string
	if err := m.db.Raw("SELECT id FROM schema_migrations").Scan(&appliedIDs).Error; err != nil {
		return fmt.Errorf("load applied migrations: %w", err)
	}
	applied := make(map[string]struct{}, len(appliedIDs))
	for _, id := range appliedIDs {
		applied[id] = struct{}{}
	}

	pending := make([]Migration, 0, len(registry))
	for _, mig := range registry {
		if _, ok := applied[mig.ID]; !ok {
			pending = append(pending, mig)
		}
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].ID < pending[j].ID })

	for _, mig := range pending {
		if mig.Up == nil {
			return fmt.Errorf("migration %s has no Up step", mig.ID)
		}
		start := time.Now()
		err := m.db.Transaction(func(tx *gorm.DB) error {
			if err := mig.Up(tx); err != nil {
				return err
			}
			return tx.Exec(
				"INSERT INTO schema_migrations (id, name) VALUES (?, ?)",
				mig.ID, mig.Name,
			).Error
		})
		if err != nil {
			return fmt.Errorf("migration %s (%s): %w", mig.ID, mig.Name, err)
		}
		m.logger.WithFields(logrus.Fields{
			"migration": mig.ID,
			"elapsed":   time.Since(start).String(),
		}).Info("applied migration")
	}
	return nil
}
