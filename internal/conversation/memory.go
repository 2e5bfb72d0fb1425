package conversation

import (
	"context"
	"sync"
	"time"

	"coursechat/internal/domain"
)

type memConversation struct {
	messages     []domain.Message
	translations []domain.TranslationRecord
	lastActive   time.Time
}

// MemoryStore keeps conversations in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	convs map[string]*memConversation
	opts  options
}

func NewMemoryStore(opts ...Option) *MemoryStore {
	return &MemoryStore{convs: make(map[string]*memConversation), opts: buildOptions(opts)}
}

// get returns the conversation for id, creating it if needed. Callers hold mu.
func (s *MemoryStore) get(id string) *memConversation {
	c, ok := s.convs[id]
	if !ok {
		c = &memConversation{}
		s.convs[id] = c
	}
	c.lastActive = s.opts.now()
	return c
}

func (s *MemoryStore) Ensure(_ context.Context, id string, seed domain.Message) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.get(id)
	if len(c.messages) > 0 {
		return false, nil
	}
	c.messages = append(c.messages, seed)
	return true, nil
}

func (s *MemoryStore) Append(_ context.Context, id string, msgs ...domain.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.get(id)
	c.messages = trimMessages(append(c.messages, msgs...), s.opts.maxMessages)
	return nil
}

func (s *MemoryStore) History(_ context.Context, id string) ([]domain.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.convs[id]
	if !ok {
		return nil, nil
	}
	return append([]domain.Message(nil), c.messages...), nil
}

func (s *MemoryStore) AppendTranslation(_ context.Context, id string, rec domain.TranslationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.get(id)
	c.translations = append(c.translations, rec)
	if max := s.opts.maxMessages; max > 0 && len(c.translations) > max {
		c.translations = append([]domain.TranslationRecord(nil), c.translations[len(c.translations)-max:]...)
	}
	return nil
}

func (s *MemoryStore) Translations(_ context.Context, id string) ([]domain.TranslationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.convs[id]
	if !ok {
		return nil, nil
	}
	return append([]domain.TranslationRecord(nil), c.translations...), nil
}

func (s *MemoryStore) EvictIdle(_ context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, c := range s.convs {
		if c.lastActive.Before(cutoff) {
			delete(s.convs, id)
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) Close() error { return nil }
