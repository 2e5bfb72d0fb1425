// Package app assembles the process-wide components from configuration. The
// catalog and index are built once here and handed to everything else.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"coursechat/internal/catalog"
	"coursechat/internal/chat"
	"coursechat/internal/config"
	"coursechat/internal/conversation"
	"coursechat/internal/embedding"
	"coursechat/internal/embedding/ollama"
	"coursechat/internal/embedding/openai"
	"coursechat/internal/embedding/tfidf"
	"coursechat/internal/llm"
	"coursechat/internal/logger"
	"coursechat/internal/retriever"
	"coursechat/internal/server"
)

// Retrieval is everything needed to rank catalog items, without a provider.
type Retrieval struct {
	Catalog   *catalog.Catalog
	Index     *retriever.Index
	Retriever *retriever.Retriever
}

type App struct {
	Config *config.AppConfig
	Retrieval
	Store conversation.Store
	Chat  *chat.Service
}

// BuildRetrieval loads the catalog and embeds every item.
func BuildRetrieval(ctx context.Context, cfg *config.AppConfig) (*Retrieval, error) {
	cat, err := catalog.Load(cfg.Catalog.CoursesPath, cfg.Catalog.InstructorsPath, cfg.Catalog.StrictRefs)
	if err != nil {
		return nil, err
	}
	for _, w := range cat.Warnings() {
		logger.Warn("catalog reference problem", "detail", w)
	}
	emb, err := NewEmbedder(cfg.Embedder)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	idx, err := retriever.BuildIndex(ctx, cat, emb)
	if err != nil {
		return nil, fmt.Errorf("build index: %w", err)
	}
	nc, ni := cat.Len()
	logger.Info("index built",
		"embedder", emb.Name(),
		"dimension", idx.Dimension(),
		"courses", nc,
		"instructors", ni,
		"took", time.Since(start),
	)
	return &Retrieval{Catalog: cat, Index: idx, Retriever: retriever.New(idx, cfg.Retriever.TopK)}, nil
}

// Build wires retrieval, the generation provider and the conversation store.
func Build(ctx context.Context, cfg *config.AppConfig) (*App, error) {
	r, err := BuildRetrieval(ctx, cfg)
	if err != nil {
		return nil, err
	}
	gen, err := NewGenerator(cfg.LLM)
	if err != nil {
		return nil, err
	}
	store, err := NewStore(cfg.Conversation)
	if err != nil {
		return nil, err
	}
	svc := chat.NewService(r.Retriever, gen, store, chat.WithSystemPrompt(cfg.LLM.SystemPrompt))
	return &App{Config: cfg, Retrieval: *r, Store: store, Chat: svc}, nil
}

// Server returns the HTTP API bound to this app.
func (a *App) Server() *server.Server {
	s := a.Config.Server
	return server.New(a.Chat, a.Catalog, server.Config{
		Addr:         s.Addr,
		CORSOrigins:  s.CORSOrigins,
		ReadTimeout:  time.Duration(s.ReadTimeoutSecs) * time.Second,
		WriteTimeout: time.Duration(s.WriteTimeoutSecs) * time.Second,
		IdleTimeout:  time.Duration(s.IdleTimeoutSecs) * time.Second,
		MaxBodyBytes: s.MaxBodyBytes,
	})
}

func (a *App) Close() error {
	return a.Store.Close()
}

func NewEmbedder(cfg config.EmbedderConfig) (embedding.Embedder, error) {
	switch cfg.Type {
	case "tfidf", "":
		return tfidf.NewEmbedder(cfg.Dimension), nil
	case "openai":
		o := cfg.OpenAI
		return openai.NewClient(openai.Config{
			BaseURL:   o.BaseURL,
			APIKey:    os.Getenv(o.APIKeyEnv),
			Model:     o.Model,
			Dimension: cfg.Dimension,
			Timeout:   time.Duration(o.TimeoutSecs) * time.Second,
		})
	case "ollama":
		o := cfg.Ollama
		return ollama.NewEmbedder(o.BaseURL, o.Model, time.Duration(o.TimeoutSecs)*time.Second), nil
	}
	return nil, fmt.Errorf("unknown embedder type: %s", cfg.Type)
}

func NewGenerator(cfg config.LLMConfig) (*llm.TextGenerator, error) {
	completer, err := llm.New(llm.Config{
		Provider:         cfg.Provider,
		APIKey:           cfg.ResolveAPIKey(),
		BaseURL:          cfg.BaseURL,
		Model:            cfg.Model,
		Timeout:          time.Duration(cfg.TimeoutSecs) * time.Second,
		Headers:          cfg.Headers,
		YandexOAuthToken: cfg.YandexOAuthToken(),
		YandexFolderID:   cfg.YandexFolderID,
	})
	if errors.Is(err, llm.ErrUnknownProvider) {
		return nil, fmt.Errorf("llm provider: %w (known: %s)", err, strings.Join(llm.KnownProviders(), ", "))
	}
	if err != nil {
		return nil, fmt.Errorf("llm provider: %w", err)
	}
	completer = llm.WithRetry(completer, cfg.MaxRetries, time.Duration(cfg.RetryDelayMs)*time.Millisecond)
	return llm.NewGenerator(completer), nil
}

func NewStore(cfg config.ConversationConfig) (conversation.Store, error) {
	opts := []conversation.Option{conversation.WithMaxMessages(cfg.MaxMessages)}
	switch cfg.Store {
	case "memory", "":
		return conversation.NewMemoryStore(opts...), nil
	case "sqlite":
		s, err := conversation.NewSQLiteStore(cfg.DBPath, opts...)
		if err != nil {
			return nil, fmt.Errorf("conversation store: %w", err)
		}
		return s, nil
	}
	return nil, fmt.Errorf("unknown conversation store: %s", cfg.Store)
}
