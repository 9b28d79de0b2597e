package database

import (
	"strings"

	"pocketledger/internal/config"
)

// DefaultPath is the snapshot file used when nothing else is configured.
const DefaultPath = "pocket_ledger.json"

// Config holds document store configuration
type Config struct {
	Path string
}

// NewConfig creates a store configuration from the application config.
func NewConfig(appCfg *config.Config) *Config {
	path := DefaultPath
	if appCfg != nil && strings.TrimSpace(appCfg.DBPath) != "" {
		path = appCfg.DBPath
	}
	return &Config{Path: path}
}
