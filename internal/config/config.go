package config

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

// Config holds application configuration
type Config struct {
	Env string `mapstructure:"env"`

	// Storage
	DBPath string `mapstructure:"db_path"`

	// Entries
	DefaultCurrency string `mapstructure:"default_currency"`

	// Security
	BcryptCost int `mapstructure:"bcrypt_cost"`

	// Export
	ExportDir string `mapstructure:"export_dir"`
}

// Load loads configuration from an optional config file, a .env file and
// LEDGER_-prefixed environment variables, in increasing precedence.
func Load(path string) (*Config, error) {
	// Load .env file if present
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	v := viper.New()
	v.SetDefault("env", "development")
	v.SetDefault("db_path", "pocket_ledger.json")
	v.SetDefault("default_currency", "CNY")
	v.SetDefault("bcrypt_cost", bcrypt.DefaultCost)
	v.SetDefault("export_dir", ".")

	v.SetEnvPrefix("LEDGER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	c.DefaultCurrency = strings.ToUpper(strings.TrimSpace(c.DefaultCurrency))

	if err := c.Validate(); err != nil {
		return nil, err
	}

	return &c, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.DBPath) == "" {
		errs = append(errs, errors.New("db_path is required"))
	}
	if c.DefaultCurrency == "" {
		errs = append(errs, errors.New("default_currency is required"))
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		errs = append(errs, fmt.Errorf("bcrypt_cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}
