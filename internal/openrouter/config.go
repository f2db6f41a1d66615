package openrouter

import "strings"

const DefaultBaseURL = "https://openrouter.ai/api/v1"

// Config for the OpenRouter client. Validated once by New, immutable after
// construction. The zero value for optional fields means "not set".
type Config struct {
	// APIKey is the bearer credential. Required.
	APIKey string `json:"api_key"`
	// TextModel is the default model for text completions. Required.
	TextModel string `json:"text_model"`
	// ImageModel is the default model for image generation. Required.
	ImageModel string `json:"image_model"`
	// BaseURL overrides the default API endpoint.
	BaseURL string `json:"base_url,omitempty"`
	// Referer and Title are optional attribution headers, sent as
	// HTTP-Referer and X-Title when set.
	Referer string `json:"referer,omitempty"`
	Title   string `json:"title,omitempty"`
	// ImageQuality and ImageStyle are only forwarded for model families
	// which understand them, see applyProviderExtras.
	ImageQuality string `json:"image_quality,omitempty"`
	ImageStyle   string `json:"image_style,omitempty"`
}

func (c Config) validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return &ConfigError{Field: "api_key"}
	}
	if strings.TrimSpace(c.TextModel) == "" {
		return &ConfigError{Field: "text_model"}
	}
	if strings.TrimSpace(c.ImageModel) == "" {
		return &ConfigError{Field: "image_model"}
	}
	return nil
}

func (c Config) baseURL() string {
	if c.BaseURL != "" {
		return strings.TrimSuffix(c.BaseURL, "/")
	}
	return DefaultBaseURL
}

// resolveModel applies the per-call override precedence: a non-empty
// override, after trimming, always wins over the configured default.
func resolveModel(override, configured string) (string, error) {
	if m := strings.TrimSpace(override); m != "" {
		return m, nil
	}
	if m := strings.TrimSpace(configured); m != "" {
		return m, nil
	}
	return "", &ConfigError{Field: "model"}
}
