package workrange

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/ygrebnov/errorc"
	"gopkg.in/yaml.v3"
)

// Environment variables read by SettingsFromEnv.
const (
	EnvStrategy  = "WORKRANGE_STRATEGY"
	EnvNoCapture = "WORKRANGE_NO_CAPTURE"
	EnvProcs     = "WORKRANGE_PROCS"
)

// Settings is the file and environment form of the dispatch options a deployment may want
// to change without rebuilding: the execution strategy, panic capture and data-parallel
// concurrency. Zero values keep the defaults.
type Settings struct {
	// Strategy is a name accepted by ParseStrategy.
	Strategy  string `toml:"strategy" yaml:"strategy"`
	NoCapture bool   `toml:"no_capture" yaml:"no_capture"`
	Procs     int    `toml:"procs" yaml:"procs"`
}

// LoadSettings reads settings from a TOML (.toml) or YAML (.yaml, .yml) file.
func LoadSettings(path string) (Settings, error) {
	var s Settings
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if _, err := toml.DecodeFile(path, &s); err != nil {
			return Settings{}, fmt.Errorf("decoding settings file %s: %w", path, err)
		}
	case ".yaml", ".yml":
		// #nosec G304 -- the path is chosen by the caller.
		data, err := os.ReadFile(path)
		if err != nil {
			return Settings{}, fmt.Errorf("reading settings file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &s); err != nil {
			return Settings{}, fmt.Errorf("decoding settings file %s: %w", path, err)
		}
	default:
		return Settings{}, errorc.With(ErrInvalidConfig, errorc.String("settings file extension", ext))
	}
	return s, nil
}

// SettingsFromEnv overrides s with the WORKRANGE_* environment variables that are set and
// returns the result.
func SettingsFromEnv(s Settings) (Settings, error) {
	if v, ok := os.LookupEnv(EnvStrategy); ok {
		s.Strategy = v
	}
	if v, ok := os.LookupEnv(EnvNoCapture); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return s, errorc.With(ErrInvalidConfig, errorc.String(EnvNoCapture, v))
		}
		s.NoCapture = b
	}
	if v, ok := os.LookupEnv(EnvProcs); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return s, errorc.With(ErrInvalidConfig, errorc.String(EnvProcs, v))
		}
		s.Procs = n
	}
	return s, nil
}

// Options converts s into dispatch options, typically passed to SetDefaults.
func (s Settings) Options() ([]Option, error) {
	strategy, err := ParseStrategy(s.Strategy)
	if err != nil {
		return nil, err
	}
	if s.Procs < 0 {
		return nil, errorc.With(ErrInvalidConfig, errorc.String("procs", strconv.Itoa(s.Procs)))
	}

	opts := []Option{WithStrategy(strategy)}
	if s.NoCapture {
		opts = append(opts, WithoutCapture())
	}
	if s.Procs > 0 {
		opts = append(opts, WithProcs(s.Procs))
	}
	return opts, nil
}
