package journal

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Open opens the journal database.
// Postgres uses the simple protocol so pooled connections do not collide on
// prepared statement names. SQLite is pinned to one connection so an
// in-memory database is shared by every query.
func Open(driver, dsn string) (*gorm.DB, error) {
	cfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}

	switch driver {
	case DriverPostgres:
		return gorm.Open(postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		}), cfg)
	case DriverSQLite, "":
		if dsn == "" {
			dsn = ":memory:"
		}
		db, err := gorm.Open(sqlite.Open(dsn), cfg)
		if err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
		return db, nil
	default:
		return nil, fmt.Errorf("journal: unsupported database driver %q", driver)
	}
}

// AutoMigrate creates or updates the journal tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&Entry{})
}
