// Package config loads star-trend settings from defaults, an optional
// config file and the environment.
package config

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrMissingToken is returned when no GitHub token is configured.
	ErrMissingToken = errors.New("github token is not set")
	// ErrInvalidFormat is returned for an unknown output format.
	ErrInvalidFormat = errors.New("invalid output format")
	// ErrInvalidPageSize is returned for a page size GitHub would reject.
	ErrInvalidPageSize = errors.New("page size must be between 1 and 100")
)

// Output formats.
const (
	FormatJSON  = "json"
	FormatTable = "table"
	FormatHTML  = "html"
)

// Defaults.
const (
	DefaultFormat   = FormatTable
	DefaultPageSize = 100
	DefaultTimeout  = 2 * time.Minute
	maxPageSize     = 100
)

// Config is the top-level configuration struct.
// Field tags use mapstructure for viper unmarshalling.
type Config struct {
	Token         string        `mapstructure:"token"`
	Format        string        `mapstructure:"format"`
	Output        string        `mapstructure:"output"`
	PageSize      int           `mapstructure:"page_size"`
	Timeout       time.Duration `mapstructure:"timeout"`
	EnterpriseURL string        `mapstructure:"enterprise_url"`
}

// Validate checks the settings that would otherwise fail late.
func (c *Config) Validate() error {
	if c.Token == "" {
		return ErrMissingToken
	}
	switch c.Format {
	case FormatJSON, FormatTable, FormatHTML:
	default:
		return fmt.Errorf("%w: %q (want json, table or html)", ErrInvalidFormat, c.Format)
	}
	if c.PageSize < 1 || c.PageSize > maxPageSize {
		return fmt.Errorf("%w: %d", ErrInvalidPageSize, c.PageSize)
	}
	return nil
}
