// Package config loads and stores the VetLink settings file.
//
// Settings live in an ini file inside the application directory. Values are
// resolved in this order: defaults, the file, environment variables, then
// command-line flags (applied by the caller).
package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/inovacc/vetlink/internal/application"
	"github.com/inovacc/vetlink/internal/model"
	"gopkg.in/ini.v1"
)

const (
	// EnvAPIURL overrides api.base_url
	EnvAPIURL = "VETLINK_API_URL"

	// EnvLogLevel overrides log.level
	EnvLogLevel = "VETLINK_LOG_LEVEL"
)

// ErrUnknownKey is returned by Set for keys outside Keys.
var ErrUnknownKey = errors.New("unknown config key")

type setting struct {
	get func(c *model.Config) string
	set func(c *model.Config, v string) error
}

// settings is keyed by "section.key".
var settings = map[string]setting{
	"api.base_url": {
		get: func(c *model.Config) string { return c.APIBaseURL },
		set: func(c *model.Config, v string) error { c.APIBaseURL = v; return nil },
	},
	"api.timeout": {
		get: func(c *model.Config) string { return c.Timeout.String() },
		set: func(c *model.Config, v string) error {
			d, err := time.ParseDuration(v)
			if err != nil {
				return err
			}

			c.Timeout = d

			return nil
		},
	},
	"list.page_size": {
		get: func(c *model.Config) string { return strconv.Itoa(c.PageSize) },
		set: func(c *model.Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return err
			}

			c.PageSize = n

			return nil
		},
	},
	"list.column": {
		get: func(c *model.Config) string { return string(c.Column) },
		set: func(c *model.Config, v string) error { c.Column = model.Column(v); return nil },
	},
	"list.order": {
		get: func(c *model.Config) string { return string(c.Order) },
		set: func(c *model.Config, v string) error { c.Order = model.SortOrder(v); return nil },
	},
	"log.level": {
		get: func(c *model.Config) string { return c.LogLevel },
		set: func(c *model.Config, v string) error { c.LogLevel = v; return nil },
	},
	"log.format": {
		get: func(c *model.Config) string { return c.LogFormat },
		set: func(c *model.Config, v string) error { c.LogFormat = v; return nil },
	},
	"server.addr": {
		get: func(c *model.Config) string { return c.ServerAddr },
		set: func(c *model.Config, v string) error { c.ServerAddr = v; return nil },
	},
	"server.driver": {
		get: func(c *model.Config) string { return c.ServerDriver },
		set: func(c *model.Config, v string) error { c.ServerDriver = v; return nil },
	},
	"server.dsn": {
		get: func(c *model.Config) string { return c.ServerDSN },
		set: func(c *model.Config, v string) error { c.ServerDSN = v; return nil },
	},
}

// Keys returns every settable key in sorted order.
func Keys() []string {
	keys := make([]string, 0, len(settings))
	for k := range settings {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}

// Path returns the location of the settings file.
func Path() (string, error) {
	return application.FilePath(application.ConfigFileName)
}

// Load reads path on top of the defaults. A missing file yields the defaults.
func Load(path string) (model.Config, error) {
	cfg := model.DefaultConfig()

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}

		return cfg, fmt.Errorf("failed to stat config %s: %w", path, err)
	}

	file, err := ini.Load(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	api := file.Section("api")
	cfg.APIBaseURL = api.Key("base_url").MustString(cfg.APIBaseURL)
	cfg.Timeout = api.Key("timeout").MustDuration(cfg.Timeout)

	list := file.Section("list")
	cfg.PageSize = list.Key("page_size").MustInt(cfg.PageSize)
	cfg.Column = model.Column(list.Key("column").MustString(string(cfg.Column)))
	cfg.Order = model.SortOrder(list.Key("order").MustString(string(cfg.Order)))

	logSec := file.Section("log")
	cfg.LogLevel = logSec.Key("level").MustString(cfg.LogLevel)
	cfg.LogFormat = logSec.Key("format").MustString(cfg.LogFormat)

	server := file.Section("server")
	cfg.ServerAddr = server.Key("addr").MustString(cfg.ServerAddr)
	cfg.ServerDriver = server.Key("driver").MustString(cfg.ServerDriver)
	cfg.ServerDSN = server.Key("dsn").MustString(cfg.ServerDSN)

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// ApplyEnv overrides cfg with the VETLINK_* environment variables that are set.
func ApplyEnv(cfg *model.Config) {
	if v := os.Getenv(EnvAPIURL); v != "" {
		cfg.APIBaseURL = v
	}

	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
	}
}

// Save writes cfg to path with 0600 permissions.
func Save(path string, cfg model.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	file := ini.Empty()

	for _, key := range Keys() {
		section, name := splitKey(key)

		if _, err := file.Section(section).NewKey(name, settings[key].get(&cfg)); err != nil {
			return fmt.Errorf("failed to encode %s: %w", key, err)
		}
	}

	if err := file.SaveTo(path); err != nil {
		return fmt.Errorf("failed to write config %s: %w", path, err)
	}

	if err := os.Chmod(path, 0600); err != nil {
		return fmt.Errorf("failed to restrict config permissions: %w", err)
	}

	return nil
}

// Get returns the value of key in cfg.
func Get(cfg model.Config, key string) (string, error) {
	s, ok := settings[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}

	return s.get(&cfg), nil
}

// Set assigns value to key and validates the result. cfg is left unchanged on error.
func Set(cfg *model.Config, key, value string) error {
	s, ok := settings[key]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}

	updated := *cfg
	if err := s.set(&updated, value); err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}

	if err := updated.Validate(); err != nil {
		return err
	}

	*cfg = updated

	return nil
}

func splitKey(key string) (section, name string) {
	section, name, ok := strings.Cut(key, ".")
	if !ok {
		return ini.DefaultSection, key
	}

	return section, name
}
