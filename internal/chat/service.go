// Package chat runs query and translation turns against one conversation id.
package chat

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"coursechat/internal/conversation"
	"coursechat/internal/domain"
	"coursechat/internal/logger"
	"coursechat/internal/prompt"
	"coursechat/internal/retriever"
)

const (
	DefaultSystemPrompt = "You are a helpful course enquiry assistant."
	DefaultTargetLang   = "es"

	EmptyQueryReply       = "Please enter a valid question."
	EmptyTranslationReply = "No text to translate"
)

// Retriever ranks catalog items for a query.
type Retriever interface {
	Retrieve(ctx context.Context, query string) (retriever.Result, error)
}

// Generator produces answers and translations.
type Generator interface {
	Answer(ctx context.Context, prompt string) (string, error)
	Translate(ctx context.Context, text, targetLang string) (string, error)
}

type Reply struct {
	ConversationID string
	Text           string
}

type Service struct {
	retriever    Retriever
	generator    Generator
	store        conversation.Store
	locker       *conversation.Locker
	systemPrompt string
	newID        func() string
}

type Option func(*Service)

func WithSystemPrompt(p string) Option {
	return func(s *Service) {
		if p != "" {
			s.systemPrompt = p
		}
	}
}

// WithIDGenerator replaces the UUID generator for new conversation ids.
func WithIDGenerator(fn func() string) Option {
	return func(s *Service) { s.newID = fn }
}

func NewService(r Retriever, g Generator, store conversation.Store, opts ...Option) *Service {
	s := &Service{
		retriever:    r,
		generator:    g,
		store:        store,
		locker:       conversation.NewLocker(),
		systemPrompt: DefaultSystemPrompt,
		newID:        uuid.NewString,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Service) conversationID(id string) string {
	if id = strings.TrimSpace(id); id != "" {
		return id
	}
	return s.newID()
}

// Ask runs one query turn. The user message is recorded before generation and
// the assistant message only once generation succeeds.
func (s *Service) Ask(ctx context.Context, question, conversationID string) (Reply, error) {
	id := s.conversationID(conversationID)
	question = strings.TrimSpace(question)
	if question == "" {
		return Reply{ConversationID: id, Text: EmptyQueryReply}, nil
	}

	unlock := s.locker.Lock(id)
	defer unlock()

	created, err := s.store.Ensure(ctx, id, domain.Message{Role: domain.RoleSystem, Content: s.systemPrompt})
	if err != nil {
		return Reply{ConversationID: id}, wrap(KindStorage, err)
	}
	if created {
		logger.Debug("conversation started", "conversation_id", id)
	}
	history, err := s.store.History(ctx, id)
	if err != nil {
		return Reply{ConversationID: id}, wrap(KindStorage, err)
	}
	if err := s.store.Append(ctx, id, domain.Message{Role: domain.RoleUser, Content: question}); err != nil {
		return Reply{ConversationID: id}, wrap(KindStorage, err)
	}

	res, err := s.retriever.Retrieve(ctx, question)
	if err != nil {
		return Reply{ConversationID: id}, wrap(KindRetrieval, err)
	}
	contextBlock := prompt.FormatContext(res.CourseList(), res.InstructorList())
	p := prompt.Build(question, contextBlock, history)

	answer, err := s.generator.Answer(ctx, p)
	if err != nil {
		return Reply{ConversationID: id}, wrap(KindGeneration, err)
	}
	if err := s.store.Append(ctx, id, domain.Message{Role: domain.RoleAssistant, Content: answer}); err != nil {
		return Reply{ConversationID: id}, wrap(KindStorage, err)
	}
	logger.Debug("answered query", "conversation_id", id, "courses", len(res.Courses), "instructors", len(res.Instructors))
	return Reply{ConversationID: id, Text: answer}, nil
}

// Translate runs one translation turn and records it under the conversation.
func (s *Service) Translate(ctx context.Context, text, targetLang, conversationID string) (Reply, error) {
	id := s.conversationID(conversationID)
	text = strings.TrimSpace(text)
	if text == "" {
		return Reply{ConversationID: id, Text: EmptyTranslationReply}, nil
	}
	targetLang = strings.TrimSpace(targetLang)
	if targetLang == "" {
		targetLang = DefaultTargetLang
	}

	translation, err := s.generator.Translate(ctx, text, targetLang)
	if err != nil {
		return Reply{ConversationID: id}, wrap(KindGeneration, err)
	}

	unlock := s.locker.Lock(id)
	defer unlock()
	rec := domain.TranslationRecord{Original: text, Translation: translation, Language: targetLang}
	if err := s.store.AppendTranslation(ctx, id, rec); err != nil {
		return Reply{ConversationID: id}, wrap(KindStorage, err)
	}
	return Reply{ConversationID: id, Text: translation}, nil
}

// Conversation returns the stored history and translations for id.
func (s *Service) Conversation(ctx context.Context, id string) ([]domain.Message, []domain.TranslationRecord, error) {
	history, err := s.store.History(ctx, id)
	if err != nil {
		return nil, nil, wrap(KindStorage, err)
	}
	translations, err := s.store.Translations(ctx, id)
	if err != nil {
		return nil, nil, wrap(KindStorage, err)
	}
	return history, translations, nil
}
