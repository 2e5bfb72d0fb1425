package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v6"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every environment override, e.g.
// COURSECHAT_LLM_PROVIDER or COURSECHAT_SERVER_ADDR.
const EnvPrefix = "COURSECHAT_"

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr             string   `yaml:"addr" env:"ADDR"`
	CORSOrigins      []string `yaml:"cors_origins" env:"CORS_ORIGINS" envSeparator:","`
	ReadTimeoutSecs  int      `yaml:"read_timeout_secs" env:"READ_TIMEOUT_SECS"`
	WriteTimeoutSecs int      `yaml:"write_timeout_secs" env:"WRITE_TIMEOUT_SECS"`
	IdleTimeoutSecs  int      `yaml:"idle_timeout_secs" env:"IDLE_TIMEOUT_SECS"`
	MaxBodyBytes     int64    `yaml:"max_body_bytes" env:"MAX_BODY_BYTES"`
}

// CatalogConfig points at the course and instructor files.
type CatalogConfig struct {
	CoursesPath     string `yaml:"courses_path" env:"COURSES_PATH"`
	InstructorsPath string `yaml:"instructors_path" env:"INSTRUCTORS_PATH"`
	StrictRefs      bool   `yaml:"strict_refs" env:"STRICT_REFS"`
}

// OpenAIEmbedderConfig holds configuration for the OpenAI-compatible embedder.
type OpenAIEmbedderConfig struct {
	BaseURL     string `yaml:"base_url" env:"BASE_URL"`
	APIKeyEnv   string `yaml:"api_key_env" env:"API_KEY_ENV"`
	Model       string `yaml:"model" env:"MODEL"`
	TimeoutSecs int    `yaml:"timeout_secs" env:"TIMEOUT_SECS"`
}

// OllamaEmbedderConfig holds configuration for a local Ollama embedder.
type OllamaEmbedderConfig struct {
	BaseURL     string `yaml:"base_url" env:"BASE_URL"`
	Model       string `yaml:"model" env:"MODEL"`
	TimeoutSecs int    `yaml:"timeout_secs" env:"TIMEOUT_SECS"`
}

// EmbedderConfig selects and configures the text embedder implementation.
type EmbedderConfig struct {
	Type      string               `yaml:"type" env:"TYPE"`
	Dimension int                  `yaml:"dimension" env:"DIMENSION"`
	OpenAI    OpenAIEmbedderConfig `yaml:"openai" envPrefix:"OPENAI_"`
	Ollama    OllamaEmbedderConfig `yaml:"ollama" envPrefix:"OLLAMA_"`
}

// RetrieverConfig controls ranking.
type RetrieverConfig struct {
	TopK int `yaml:"top_k" env:"TOP_K"`
}

// LLMConfig selects the generation provider.
type LLMConfig struct {
	Provider     string            `yaml:"provider" env:"PROVIDER"`
	Model        string            `yaml:"model" env:"MODEL"`
	BaseURL      string            `yaml:"base_url" env:"BASE_URL"`
	APIKeyEnv    string            `yaml:"api_key_env" env:"API_KEY_ENV"`
	APIKey       string            `yaml:"-" env:"API_KEY"`
	TimeoutSecs  int               `yaml:"timeout_secs" env:"TIMEOUT_SECS"`
	MaxRetries   int               `yaml:"max_retries" env:"MAX_RETRIES"`
	RetryDelayMs int               `yaml:"retry_delay_ms" env:"RETRY_DELAY_MS"`
	SystemPrompt string            `yaml:"system_prompt" env:"SYSTEM_PROMPT"`
	Headers      map[string]string `yaml:"headers,omitempty"`

	YandexFolderID string `yaml:"yandex_folder_id" env:"YANDEX_FOLDER_ID"`
}

// ConversationConfig selects the conversation store and retention policy.
type ConversationConfig struct {
	Store         string `yaml:"store" env:"STORE"`
	DBPath        string `yaml:"db_path" env:"DB_PATH"`
	MaxMessages   int    `yaml:"max_messages" env:"MAX_MESSAGES"`
	IdleTTLMins   int    `yaml:"idle_ttl_mins" env:"IDLE_TTL_MINS"`
	EvictSchedule string `yaml:"evict_schedule" env:"EVICT_SCHEDULE"`
}

// LogConfig controls the process logger.
type LogConfig struct {
	Level  string `yaml:"level" env:"LEVEL"`
	Format string `yaml:"format" env:"FORMAT"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Server       ServerConfig       `yaml:"server" envPrefix:"SERVER_"`
	Catalog      CatalogConfig      `yaml:"catalog" envPrefix:"CATALOG_"`
	Embedder     EmbedderConfig     `yaml:"embedder" envPrefix:"EMBEDDER_"`
	Retriever    RetrieverConfig    `yaml:"retriever" envPrefix:"RETRIEVER_"`
	LLM          LLMConfig          `yaml:"llm" envPrefix:"LLM_"`
	Conversation ConversationConfig `yaml:"conversation" envPrefix:"CONVERSATION_"`
	Log          LogConfig          `yaml:"log" envPrefix:"LOG_"`
}

// Load reads a config from a specified path. If the file does not exist, the
// defaults are used. Environment overrides are applied on top either way.
func Load(path string) (*AppConfig, error) {
	cfg := defaultConfig()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	if err := finish(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/coursechat/config.yaml.
// If neither exists, it writes defaults to ~/.config/coursechat/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	if err := Save(userPath, defaultConfig()); err != nil {
		return nil, "", err
	}
	cfg, err := Load(userPath)
	return cfg, userPath, err
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "coursechat", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Addr:             "0.0.0.0:10000",
			CORSOrigins:      []string{"*"},
			ReadTimeoutSecs:  15,
			WriteTimeoutSecs: 90,
			IdleTimeoutSecs:  60,
			MaxBodyBytes:     1 << 20,
		},
		Catalog: CatalogConfig{
			CoursesPath:     "data/courses.json",
			InstructorsPath: "data/instructors.json",
		},
		Embedder:  EmbedderConfig{Type: "tfidf", Dimension: 384},
		Retriever: RetrieverConfig{TopK: 3},
		LLM: LLMConfig{
			Provider:     "gemini",
			TimeoutSecs:  60,
			RetryDelayMs: 200,
			SystemPrompt: "You are a helpful course enquiry assistant.",
		},
		Conversation: ConversationConfig{
			Store:         "memory",
			DBPath:        "data/conversations.db",
			MaxMessages:   21,
			IdleTTLMins:   1440,
			EvictSchedule: "@every 10m",
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

func finish(cfg *AppConfig) error {
	if err := env.Parse(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("env overrides: %w", err)
	}
	// PORT is honoured for platforms that inject it.
	if port := os.Getenv("PORT"); port != "" && os.Getenv(EnvPrefix+"SERVER_ADDR") == "" {
		cfg.Server.Addr = "0.0.0.0:" + port
	}
	if os.Getenv("COURSECHAT_DEBUG") == "true" {
		cfg.Log.Level = "debug"
	}
	applyConfigDefaults(cfg)
	return cfg.Validate()
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Embedder.Dimension == 0 && cfg.Embedder.Type == "tfidf" {
		cfg.Embedder.Dimension = 384
	}
	if cfg.Embedder.Type == "openai" {
		if cfg.Embedder.OpenAI.BaseURL == "" {
			cfg.Embedder.OpenAI.BaseURL = "https://api.openai.com/v1"
		}
		if cfg.Embedder.OpenAI.APIKeyEnv == "" {
			cfg.Embedder.OpenAI.APIKeyEnv = "OPENAI_API_KEY"
		}
		if cfg.Embedder.OpenAI.Model == "" {
			cfg.Embedder.OpenAI.Model = "text-embedding-3-small"
		}
		if cfg.Embedder.OpenAI.TimeoutSecs == 0 {
			cfg.Embedder.OpenAI.TimeoutSecs = 30
		}
	}
	if cfg.Embedder.Type == "ollama" {
		if cfg.Embedder.Ollama.BaseURL == "" {
			cfg.Embedder.Ollama.BaseURL = "http://localhost:11434"
		}
		if cfg.Embedder.Ollama.Model == "" {
			cfg.Embedder.Ollama.Model = "all-minilm"
		}
		if cfg.Embedder.Ollama.TimeoutSecs == 0 {
			cfg.Embedder.Ollama.TimeoutSecs = 30
		}
	}
	if cfg.Retriever.TopK <= 0 {
		cfg.Retriever.TopK = 3
	}
	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = "gemini"
	}
	if cfg.LLM.APIKeyEnv == "" {
		cfg.LLM.APIKeyEnv = defaultAPIKeyEnv(cfg.LLM.Provider)
	}
	if cfg.Conversation.Store == "" {
		cfg.Conversation.Store = "memory"
	}
	if cfg.Conversation.EvictSchedule == "" {
		cfg.Conversation.EvictSchedule = "@every 10m"
	}
}

func defaultAPIKeyEnv(provider string) string {
	switch strings.ToLower(provider) {
	case "claude":
		return "ANTHROPIC_API_KEY"
	case "ollama", "yandex":
		return ""
	}
	return strings.ToUpper(provider) + "_API_KEY"
}

// Validate reports settings that cannot work.
func (c *AppConfig) Validate() error {
	switch c.Embedder.Type {
	case "tfidf", "openai", "ollama":
	default:
		return fmt.Errorf("unknown embedder type %q", c.Embedder.Type)
	}
	switch c.Conversation.Store {
	case "memory":
	case "sqlite":
		if c.Conversation.DBPath == "" {
			return errors.New("conversation.db_path is required for the sqlite store")
		}
	default:
		return fmt.Errorf("unknown conversation store %q", c.Conversation.Store)
	}
	if m := c.Conversation.MaxMessages; m != 0 && m < 3 {
		return fmt.Errorf("conversation.max_messages must be 0 (unbounded) or at least 3, got %d", m)
	}
	if c.Conversation.IdleTTLMins < 0 {
		return errors.New("conversation.idle_ttl_mins must not be negative")
	}
	if c.LLM.MaxRetries < 0 {
		return errors.New("llm.max_retries must not be negative")
	}
	return nil
}

// ResolveAPIKey returns the explicit key or the one named by APIKeyEnv.
func (c LLMConfig) ResolveAPIKey() string {
	if c.APIKey != "" {
		return c.APIKey
	}
	if c.APIKeyEnv != "" {
		return os.Getenv(c.APIKeyEnv)
	}
	return ""
}

// YandexOAuthToken is read from YANDEX_OAUTH_TOKEN and never stored in YAML.
func (c LLMConfig) YandexOAuthToken() string {
	return os.Getenv("YANDEX_OAUTH_TOKEN")
}
