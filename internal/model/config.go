package model

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"
)

// Config holds the application configuration
type Config struct {
	// APIBaseURL is the scheme and host of the clinic API (e.g., "http://localhost:8000")
	APIBaseURL string

	// Timeout bounds every API request
	Timeout time.Duration

	// PageSize is the page size the pet list starts with
	PageSize int

	// Column is the display column the pet list searches and sorts on initially
	Column Column

	// Order is the initial sort order
	Order SortOrder

	// LogLevel is one of debug, info, warn, error
	LogLevel string

	// LogFormat is text or json
	LogFormat string

	// ServerAddr is the listen address of `vetlink serve`
	ServerAddr string

	// ServerDriver is the database/sql driver of `vetlink serve` (sqlite or mysql)
	ServerDriver string

	// ServerDSN is the data source name handed to the driver
	ServerDSN string
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() Config {
	return Config{
		APIBaseURL:   "http://localhost:8000",
		Timeout:      30 * time.Second,
		PageSize:     DefaultPageSize,
		Column:       ColumnName,
		Order:        Ascending,
		LogLevel:     "warn",
		LogFormat:    "text",
		ServerAddr:   ":8000",
		ServerDriver: "sqlite",
		ServerDSN:    "",
	}
}

// InitialQuery builds the pet list query the configuration starts from.
func (c Config) InitialQuery() Query {
	q := DefaultQuery()
	q.Column = c.Column
	q.Order = c.Order
	q.PageSize = c.PageSize

	return q
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api.base_url must be an absolute URL: %q", c.APIBaseURL)
	}

	if c.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be positive: %s", c.Timeout)
	}

	if !ValidPageSize(c.PageSize) {
		return fmt.Errorf("list.page_size: %w: %d", ErrInvalidPageSize, c.PageSize)
	}

	if _, err := ParseColumn(string(c.Column)); err != nil {
		return fmt.Errorf("list.column: %w", err)
	}

	if _, err := ParseSortOrder(string(c.Order)); err != nil {
		return fmt.Errorf("list.order: %w", err)
	}

	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}

	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json: %q", c.LogFormat)
	}

	switch c.ServerDriver {
	case "sqlite", "mysql":
	default:
		return fmt.Errorf("server.driver must be sqlite or mysql: %q", c.ServerDriver)
	}

	return nil
}

// ParseLogLevel converts a level name to a slog.Level.
func ParseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelWarn, fmt.Errorf("log.level must be debug, info, warn or error: %q", s)
	}

	return level, nil
}
