// Package store runs the dashboard's SQL against the shared connection pool.
package store

import (
	"gorm.io/gorm"
)

// Store is safe for concurrent use; every call takes a pooled connection.
type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB exposes the handle for health checks.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// englishName selects the "en" entry of a species common_name column.
// PostgreSQL stores it as jsonb; SQLite (tests, local runs) as JSON text.
func (s *Store) englishName(alias string) string {
	if s.db.Dialector.Name() == "postgres" {
		return alias + ".common_name ->> 'en'"
	}
	return "json_extract(" + alias + ".common_name, '$.en')"
}
