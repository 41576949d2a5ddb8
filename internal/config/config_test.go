package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Address != ":8000" {
		t.Errorf("Server.Address = %q, want %q", cfg.Server.Address, ":8000")
	}
	if cfg.Model.ChatModel != "mistral-large-latest" {
		t.Errorf("Model.ChatModel = %q, want %q", cfg.Model.ChatModel, "mistral-large-latest")
	}
	if cfg.Limits.SessionHistory != 10 {
		t.Errorf("Limits.SessionHistory = %d, want 10", cfg.Limits.SessionHistory)
	}
}

func TestLoad_FileWithComments(t *testing.T) {
	dir := t.TempDir()
	content := `{
		// server settings
		"server": {
			"address": ":9000",
			"data_dir": "/tmp/mentor" /* block comment */
		},
		"model": {
			"api_key": "file-key",
			"chat_model": "mistral-large-latest"
		}
	}`
	if err := os.WriteFile(filepath.Join(dir, "mentor.jsonc"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Address != ":9000" {
		t.Errorf("Server.Address = %q, want %q", cfg.Server.Address, ":9000")
	}
	if cfg.Server.DataDir != "/tmp/mentor" {
		t.Errorf("Server.DataDir = %q, want %q", cfg.Server.DataDir, "/tmp/mentor")
	}
	if cfg.Model.APIKey != "file-key" {
		t.Errorf("Model.APIKey = %q, want %q", cfg.Model.APIKey, "file-key")
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	dir := t.TempDir()
	content := `{"model": {"api_key": "file-key"}}`
	if err := os.WriteFile(filepath.Join(dir, "mentor.jsonc"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("MENTOR_API_KEY", "env-key")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Model.APIKey != "env-key" {
		t.Errorf("Model.APIKey = %q, want env override %q", cfg.Model.APIKey, "env-key")
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "mentor.jsonc"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(dir); err == nil {
		t.Error("Load() with invalid JSON should return error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults valid", func(c *Config) {}, false},
		{"empty address", func(c *Config) { c.Server.Address = "" }, true},
		{"empty chat model", func(c *Config) { c.Model.ChatModel = "" }, true},
		{"negative history", func(c *Config) { c.Limits.SessionHistory = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestHasAPIKey(t *testing.T) {
	cfg := Default()
	if cfg.HasAPIKey() {
		t.Error("HasAPIKey() = true for empty key")
	}
	cfg.Model.APIKey = "k"
	if !cfg.HasAPIKey() {
		t.Error("HasAPIKey() = false after setting key")
	}
}

func TestStripJSONComments_PreservesStrings(t *testing.T) {
	in := `{"url": "https://example.com/path"}`
	got := string(StripJSONComments([]byte(in)))
	if got != in {
		t.Errorf("StripJSONComments altered string content: %q", got)
	}
}
