// Package config loads the entrypoint's own settings (paths, retry
// tuning, WP-CLI invocation) by merging three layers: embedded
// defaults, an optional /etc/wpstrap/wpstrap.toml, and WPSTRAP_*
// environment variables.
package config

import (
	_ "embed"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/wpstrap/wpstrap/pkg/wperrors"
)

// DefaultPath is the on-disk configuration file consulted when present.
const DefaultPath = "/etc/wpstrap/wpstrap.toml"

// envPrefix maps WPSTRAP_DB_WAIT_ATTEMPTS to the flat key
// "db_wait_attempts".
const envPrefix = "WPSTRAP_"

//go:embed embedded/defaults.toml
var defaultConfig []byte

// rawBytesProvider implements a koanf provider for raw bytes
type rawBytesProvider struct{ bytes []byte }

func (r *rawBytesProvider) ReadBytes() ([]byte, error) { return r.bytes, nil }
func (r *rawBytesProvider) Read() (map[string]interface{}, error) {
	return nil, errors.New("not implemented")
}

// Settings is the resolved tool configuration.
type Settings struct {
	Docroot    string
	ConfigName string

	HooksPreDir  string
	HooksPostDir string

	DBWaitAttempts int
	DBWaitInterval time.Duration
	DBSkipWait     bool

	WPCLIBin       string
	WPCLIAllowRoot bool
}

// ConfigPath is where wp-config.php lives.
func (s Settings) ConfigPath() string {
	return filepath.Join(s.Docroot, s.ConfigName)
}

// Load merges all configuration layers. path overrides DefaultPath
// when non-empty; a missing file is not an error, a malformed one is.
func Load(path string) (Settings, error) {
	k := koanf.New(".")

	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return Settings{}, wperrors.Wrap(err, wperrors.ErrConfigParse, "parsing embedded defaults")
	}

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return Settings{}, wperrors.Wrapf(err, wperrors.ErrConfigParse, "parsing %s", path)
		}
	} else if explicit {
		return Settings{}, wperrors.Wrapf(err, wperrors.ErrConfigLoad, "loading %s", path)
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil); err != nil {
		return Settings{}, wperrors.Wrap(err, wperrors.ErrConfigLoad, "loading environment overrides")
	}

	// Environment values are strings; koanf's unmarshal is weakly typed
	// and converts them into the DTO's ints and bools.
	var dto settingsDTO
	if err := k.Unmarshal("", &dto); err != nil {
		return Settings{}, wperrors.Wrap(err, wperrors.ErrConfigParse, "decoding configuration")
	}

	return Settings{
		Docroot:        dto.Docroot,
		ConfigName:     dto.ConfigName,
		HooksPreDir:    dto.HooksPreDir,
		HooksPostDir:   dto.HooksPostDir,
		DBWaitAttempts: dto.DBWaitAttempts,
		DBWaitInterval: time.Duration(dto.DBWaitIntervalSeconds) * time.Second,
		DBSkipWait:     dto.DBSkipWait,
		WPCLIBin:       dto.WPCLIBin,
		WPCLIAllowRoot: dto.WPCLIAllowRoot,
	}, nil
}

type settingsDTO struct {
	Docroot               string `koanf:"docroot"`
	ConfigName            string `koanf:"config_name"`
	HooksPreDir           string `koanf:"hooks_pre_dir"`
	HooksPostDir          string `koanf:"hooks_post_dir"`
	DBWaitAttempts        int    `koanf:"db_wait_attempts"`
	DBWaitIntervalSeconds int    `koanf:"db_wait_interval_seconds"`
	DBSkipWait            bool   `koanf:"db_skip_wait"`
	WPCLIBin              string `koanf:"wpcli_bin"`
	WPCLIAllowRoot        bool   `koanf:"wpcli_allow_root"`
}
