package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LLM.Provider != "gemini" || cfg.LLM.APIKeyEnv != "GEMINI_API_KEY" {
		t.Errorf("unexpected llm defaults %+v", cfg.LLM)
	}
	if cfg.Embedder.Type != "tfidf" || cfg.Embedder.Dimension != 384 {
		t.Errorf("unexpected embedder defaults %+v", cfg.Embedder)
	}
	if cfg.Retriever.TopK != 3 {
		t.Errorf("expected top_k 3, got %d", cfg.Retriever.TopK)
	}
	c := cfg.Conversation
	if c.Store != "memory" || c.MaxMessages != 21 || c.IdleTTLMins != 1440 || c.EvictSchedule != "@every 10m" {
		t.Errorf("unexpected conversation defaults %+v", c)
	}
	if cfg.Server.Addr != "0.0.0.0:10000" {
		t.Errorf("unexpected addr %q", cfg.Server.Addr)
	}
}

func TestLoadYAMLOverridesDefaults(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yaml", `
llm:
  provider: claude
  max_retries: 2
embedder:
  type: ollama
conversation:
  store: sqlite
  db_path: /tmp/x.db
  max_messages: 9
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LLM.Provider != "claude" || cfg.LLM.APIKeyEnv != "ANTHROPIC_API_KEY" || cfg.LLM.MaxRetries != 2 {
		t.Errorf("unexpected llm %+v", cfg.LLM)
	}
	if cfg.Embedder.Ollama.Model != "all-minilm" || cfg.Embedder.Ollama.BaseURL == "" {
		t.Errorf("ollama defaults not applied: %+v", cfg.Embedder.Ollama)
	}
	if cfg.Conversation.Store != "sqlite" || cfg.Conversation.MaxMessages != 9 {
		t.Errorf("unexpected conversation %+v", cfg.Conversation)
	}
	// untouched sections keep their defaults
	if cfg.Catalog.CoursesPath != "data/courses.json" {
		t.Errorf("catalog default lost: %+v", cfg.Catalog)
	}
}

func TestEnvOverridesYAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yaml", "llm:\n  provider: openai\n  model: gpt-4o\n")
	t.Setenv("COURSECHAT_LLM_MODEL", "gpt-4o-mini")
	t.Setenv("COURSECHAT_LLM_API_KEY", "sk-env")
	t.Setenv("COURSECHAT_SERVER_CORS_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("COURSECHAT_CATALOG_STRICT_REFS", "true")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LLM.Model != "gpt-4o-mini" {
		t.Errorf("env did not override model: %q", cfg.LLM.Model)
	}
	if cfg.LLM.ResolveAPIKey() != "sk-env" {
		t.Errorf("unexpected api key %q", cfg.LLM.ResolveAPIKey())
	}
	if len(cfg.Server.CORSOrigins) != 2 || cfg.Server.CORSOrigins[1] != "https://b.example" {
		t.Errorf("unexpected cors origins %v", cfg.Server.CORSOrigins)
	}
	if !cfg.Catalog.StrictRefs {
		t.Error("strict_refs override ignored")
	}
}

func TestPortEnv(t *testing.T) {
	t.Setenv("PORT", "8081")
	cfg, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Addr != "0.0.0.0:8081" {
		t.Fatalf("PORT not applied: %q", cfg.Server.Addr)
	}
}

func TestResolveAPIKeyFromNamedEnv(t *testing.T) {
	t.Setenv("MY_KEY", "secret")
	c := LLMConfig{APIKeyEnv: "MY_KEY"}
	if c.ResolveAPIKey() != "secret" {
		t.Fatalf("unexpected key %q", c.ResolveAPIKey())
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"bad embedder", "embedder:\n  type: word2vec\n", "embedder type"},
		{"bad store", "conversation:\n  store: redis\n", "conversation store"},
		{"tiny cap", "conversation:\n  max_messages: 2\n", "max_messages"},
		{"negative retries", "llm:\n  max_retries: -1\n", "max_retries"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "config.yaml", tt.yaml)
			_, err := Load(path)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestLoadDefaultWritesUserConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	wd, _ := os.Getwd()
	t.Cleanup(func() { _ = os.Chdir(wd) })
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}

	cfg, path, err := LoadDefault()
	if err != nil {
		t.Fatalf("load default: %v", err)
	}
	want := filepath.Join(home, ".config", "coursechat", "config.yaml")
	if path != want {
		t.Fatalf("unexpected path %q", path)
	}
	if _, err := os.Stat(want); err != nil {
		t.Fatalf("defaults not written: %v", err)
	}
	if cfg.LLM.SystemPrompt != "You are a helpful course enquiry assistant." {
		t.Fatalf("unexpected system prompt %q", cfg.LLM.SystemPrompt)
	}
}
