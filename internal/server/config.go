package server

import (
	"fmt"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/phrasefit/phrasefit/internal/openrouter"
	"gopkg.in/yaml.v3"
)

const defaultListen = ":8080"

// Config is the server's YAML configuration. Values may reference
// environment variables with ${VAR} syntax, expanded before parsing.
type Config struct {
	Listen       string           `yaml:"listen"`
	GinMode      string           `yaml:"gin_mode"`
	APIKey       string           `yaml:"api_key"`
	SnapshotFile string           `yaml:"snapshot_file"`
	RedisURL     string           `yaml:"redis_url"`
	OpenRouter   OpenRouterConfig `yaml:"openrouter"`
}

// OpenRouterConfig mirrors openrouter.Config with yaml tags.
type OpenRouterConfig struct {
	APIKey       string `yaml:"api_key"`
	TextModel    string `yaml:"text_model"`
	ImageModel   string `yaml:"image_model"`
	BaseURL      string `yaml:"base_url"`
	Referer      string `yaml:"referer"`
	Title        string `yaml:"title"`
	ImageQuality string `yaml:"image_quality"`
	ImageStyle   string `yaml:"image_style"`
}

// ClientConfig converts the yaml form into the client's config type.
func (o OpenRouterConfig) ClientConfig() openrouter.Config {
	return openrouter.Config{
		APIKey:       o.APIKey,
		TextModel:    o.TextModel,
		ImageModel:   o.ImageModel,
		BaseURL:      o.BaseURL,
		Referer:      o.Referer,
		Title:        o.Title,
		ImageQuality: o.ImageQuality,
		ImageStyle:   o.ImageStyle,
	}
}

// LoadConfig reads the YAML file at path, expands ${ENV} references and
// applies defaults. Model and credential validation happens when the
// openrouter client is constructed, not here.
func LoadConfig(path string) (Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}

	expanded := os.ExpandEnv(string(content))
	var conf Config
	if err := yaml.Unmarshal([]byte(expanded), &conf); err != nil {
		return Config{}, fmt.Errorf("failed to parse config yaml: %w", err)
	}

	conf.applyDefaults()
	return conf, nil
}

func (c *Config) applyDefaults() {
	if strings.TrimSpace(c.Listen) == "" {
		c.Listen = defaultListen
	}
	if strings.TrimSpace(c.GinMode) == "" {
		c.GinMode = gin.ReleaseMode
	}
}
