// Package db provides entity-store connections and schema migrations.
package db

import (
	"fmt"

	sqldriver "github.com/go-sql-driver/mysql"
	"github.com/veldhuis/atelier/internal/config"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// MySQLDSN builds a DSN for connecting to a shared MySQL deployment.
func MySQLDSN(user, host string, port int, database string) string {
	dsnCfg := sqldriver.NewConfig()
	dsnCfg.User = user
	dsnCfg.Net = "tcp"
	dsnCfg.Addr = fmt.Sprintf("%s:%d", host, port)
	dsnCfg.DBName = database
	dsnCfg.ParseTime = true
	return dsnCfg.FormatDSN()
}

// Connect opens a GORM connection to the store described by cfg.Database.
// SQLite is the default backend; MySQL is used for shared deployments.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	switch cfg.Database.Driver {
	case "mysql":
		dsn := MySQLDSN(cfg.Database.User, cfg.Database.Host, cfg.Database.Port, cfg.Database.Name)
		db, err := gorm.Open(mysql.Open(dsn), gormCfg)
		if err != nil {
			return nil, fmt.Errorf("db: connect to mysql %s:%d/%s: %w",
				cfg.Database.Host, cfg.Database.Port, cfg.Database.Name, err)
		}
		return db, nil
	case "sqlite":
		db, err := gorm.Open(sqlite.Open(cfg.Database.Path), gormCfg)
		if err != nil {
			return nil, fmt.Errorf("db: open sqlite %s: %w", cfg.Database.Path, err)
		}
		// SQLite does not enforce foreign keys unless asked.
		if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
			return nil, fmt.Errorf("db: enable foreign keys: %w", err)
		}
		return db, nil
	default:
		return nil, fmt.Errorf("db: unsupported driver %q", cfg.Database.Driver)
	}
}
