package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("ANTHROPIC_AUTH_TOKEN", "")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("llm:\n  providers: {}\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LLM.DefaultProvider != "openai" {
		t.Fatalf("default provider: got %q want %q", cfg.LLM.DefaultProvider, "openai")
	}
	if cfg.Generation.Temperature != 0.5 {
		t.Fatalf("generation temperature: got %v want %v", cfg.Generation.Temperature, 0.5)
	}
	if cfg.Generation.Sleep != time.Second {
		t.Fatalf("generation sleep: got %v want %v", cfg.Generation.Sleep, time.Second)
	}
	if cfg.Evaluation.Temperature != 0.1 {
		t.Fatalf("evaluation temperature: got %v want %v", cfg.Evaluation.Temperature, 0.1)
	}
}

func TestLoad_EnvOverridesAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("ANTHROPIC_AUTH_TOKEN", "")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := "llm:\n  providers:\n    openai:\n      api_key: sk-file\n      model: gpt-4o\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	p := cfg.LLM.Providers["openai"]
	if p.APIKey != "sk-env" {
		t.Fatalf("api key: got %q want %q", p.APIKey, "sk-env")
	}
	if p.Model != "gpt-4o" {
		t.Fatalf("model: got %q want %q", p.Model, "gpt-4o")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
