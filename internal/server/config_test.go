package server

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/baalimago/go_away_boilerplate/pkg/testboil"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("TEST_OPENROUTER_KEY", "sk-test-123")
	path := writeConfigFile(t, `
listen: ":9999"
api_key: "client-key"
snapshot_file: "state.json"
openrouter:
  api_key: "${TEST_OPENROUTER_KEY}"
  text_model: "test/text"
  image_model: "test/image"
`)
	conf, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testboil.FailTestIfDiff(t, conf.Listen, ":9999")
	testboil.FailTestIfDiff(t, conf.APIKey, "client-key")
	testboil.FailTestIfDiff(t, conf.OpenRouter.APIKey, "sk-test-123")
	testboil.FailTestIfDiff(t, conf.OpenRouter.TextModel, "test/text")

	clientConf := conf.OpenRouter.ClientConfig()
	testboil.FailTestIfDiff(t, clientConf.ImageModel, "test/image")
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeConfigFile(t, `
openrouter:
  api_key: "k"
`)
	conf, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testboil.FailTestIfDiff(t, conf.Listen, defaultListen)
	testboil.FailTestIfDiff(t, conf.GinMode, "release")
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadConfigBadYaml(t *testing.T) {
	path := writeConfigFile(t, "listen: [unterminated")
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected error for malformed yaml")
	}
}
