package internal

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v2"

	"keyed.ratelimiter/config"
)

// ConfigFile represents the top-level structure of the configuration file.
type ConfigFile struct {
	Limiters []config.LimiterConfig `yaml:"limiters"`
}

// LoadConfig reads and unmarshals the YAML config.
// It expects a list of limiters under the 'limiters' key.
func LoadConfig(path string) (*ConfigFile, error) {
	log.Debug().Str("config_path", path).Msg("Loading configuration")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}
	return ParseConfig(data)
}

// ParseConfig unmarshals YAML config bytes. Unknown fields are rejected.
func ParseConfig(data []byte) (*ConfigFile, error) {
	var cfg ConfigFile
	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}
