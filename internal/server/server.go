// Package server exposes the chat service over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"coursechat/internal/chat"
	"coursechat/internal/domain"
	"coursechat/internal/logger"
)

const (
	genericError      = "An error occurred. Please try again."
	answerApology     = "I couldn't process that request. Please try again."
	translationFailed = "Translation failed. Please try again."
)

// Chat is the subset of chat.Service the handlers use.
type Chat interface {
	Ask(ctx context.Context, question, conversationID string) (chat.Reply, error)
	Translate(ctx context.Context, text, targetLang, conversationID string) (chat.Reply, error)
	Conversation(ctx context.Context, id string) ([]domain.Message, []domain.TranslationRecord, error)
}

// CatalogStats reports catalog sizes for the health endpoint.
type CatalogStats interface {
	Len() (courses, instructors int)
}

type Config struct {
	Addr         string
	CORSOrigins  []string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	MaxBodyBytes int64
}

type Server struct {
	chat    Chat
	catalog CatalogStats
	cfg     Config
	server  *http.Server
}

func New(c Chat, catalog CatalogStats, cfg Config) *Server {
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 1 << 20
	}
	s := &Server{chat: c, catalog: catalog, cfg: cfg}
	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return s
}

// Handler returns the routed API with middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/query", s.handleQuery)
	mux.HandleFunc("POST /api/translate", s.handleTranslate)
	mux.HandleFunc("GET /api/conversations/{id}", s.handleConversation)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	return logRequests(cors(s.cfg.CORSOrigins, mux))
}

// ListenAndServe blocks until the server stops. A graceful Shutdown is not
// reported as an error.
func (s *Server) ListenAndServe() error {
	logger.Info("http server listening", "addr", s.cfg.Addr)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

type queryRequest struct {
	Query          string `json:"query"`
	ConversationID string `json:"conversationId,omitempty"`
}

type queryResponse struct {
	Response       string `json:"response"`
	ConversationID string `json:"conversationId"`
}

type translateRequest struct {
	Text           string `json:"text"`
	TargetLang     string `json:"target_lang"`
	ConversationID string `json:"conversationId,omitempty"`
}

type translateResponse struct {
	Translation    string `json:"translation"`
	ConversationID string `json:"conversationId"`
}

type conversationResponse struct {
	ConversationID string                     `json:"conversationId"`
	Messages       []domain.Message           `json:"messages"`
	Translations   []domain.TranslationRecord `json:"translations"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if !s.decode(w, r, &req) {
		return
	}
	reply, err := s.chat.Ask(r.Context(), req.Query, req.ConversationID)
	if err != nil {
		if !isGeneration(err) {
			s.fail(w, "query failed", err)
			return
		}
		logger.Warn("answer generation failed", "conversation_id", reply.ConversationID, "error", err)
		reply.Text = answerApology
	}
	writeJSON(w, http.StatusOK, queryResponse{Response: reply.Text, ConversationID: reply.ConversationID})
}

func (s *Server) handleTranslate(w http.ResponseWriter, r *http.Request) {
	var req translateRequest
	if !s.decode(w, r, &req) {
		return
	}
	reply, err := s.chat.Translate(r.Context(), req.Text, req.TargetLang, req.ConversationID)
	if err != nil {
		if !isGeneration(err) {
			s.fail(w, "translation failed", err)
			return
		}
		logger.Warn("translation generation failed", "conversation_id", reply.ConversationID, "error", err)
		reply.Text = translationFailed
	}
	writeJSON(w, http.StatusOK, translateResponse{Translation: reply.Text, ConversationID: reply.ConversationID})
}

func (s *Server) handleConversation(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	msgs, trs, err := s.chat.Conversation(r.Context(), id)
	if err != nil {
		s.fail(w, "load conversation failed", err)
		return
	}
	if len(msgs) == 0 && len(trs) == 0 {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "conversation not found"})
		return
	}
	if msgs == nil {
		msgs = []domain.Message{}
	}
	if trs == nil {
		trs = []domain.TranslationRecord{}
	}
	writeJSON(w, http.StatusOK, conversationResponse{ConversationID: id, Messages: msgs, Translations: trs})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	courses, instructors := s.catalog.Len()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"courses":     courses,
		"instructors": instructors,
	})
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "request body too large"})
			return false
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return false
	}
	return true
}

// fail logs the classified error and hides it behind the generic message.
func (s *Server) fail(w http.ResponseWriter, msg string, err error) {
	kind := "unknown"
	var chatErr *chat.Error
	if errors.As(err, &chatErr) {
		kind = chatErr.Kind.String()
	}
	logger.Error(msg, "kind", kind, "error", err)
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: genericError})
}

func isGeneration(err error) bool {
	var chatErr *chat.Error
	return errors.As(err, &chatErr) && chatErr.Kind == chat.KindGeneration
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("write response failed", "error", err)
	}
}
