package main

import (
	"fmt"
	"time"

	"github.com/veldhuis/atelier/internal/config"
	"github.com/veldhuis/atelier/internal/db"
	"gorm.io/gorm"
)

const defaultConfigPath = "atelier.yaml"

// connectFromConfig loads the config file and opens the entity store.
func connectFromConfig(configPath string) (*config.Config, *gorm.DB, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	gormDB, err := db.Connect(cfg)
	if err != nil {
		return nil, nil, err
	}

	return cfg, gormDB, nil
}

// parseDate parses a YYYY-MM-DD flag value; empty input returns a zero time.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q (want YYYY-MM-DD): %w", s, err)
	}
	return t, nil
}

// formatAmount renders a monetary value for table output.
func formatAmount(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
