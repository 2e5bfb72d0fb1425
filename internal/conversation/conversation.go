// Package conversation stores per-conversation message histories and
// translation records, with an explicit retention policy: each list is
// capped, the seeded system message is never trimmed, and conversations idle
// past a TTL can be evicted.
package conversation

import (
	"context"
	"time"

	"coursechat/internal/domain"
)

// DefaultMaxMessages keeps the system message plus ten question/answer pairs.
const DefaultMaxMessages = 21

// Store persists conversations. Implementations are safe for concurrent use,
// but callers serialise read-modify-write sequences on one id with a Locker.
type Store interface {
	// Ensure seeds the conversation with seed when it has no messages yet and
	// reports whether it did.
	Ensure(ctx context.Context, id string, seed domain.Message) (bool, error)
	Append(ctx context.Context, id string, msgs ...domain.Message) error
	History(ctx context.Context, id string) ([]domain.Message, error)
	AppendTranslation(ctx context.Context, id string, rec domain.TranslationRecord) error
	Translations(ctx context.Context, id string) ([]domain.TranslationRecord, error)
	// EvictIdle drops every conversation last written before cutoff.
	EvictIdle(ctx context.Context, cutoff time.Time) (int, error)
	Close() error
}

type options struct {
	maxMessages int
	now         func() time.Time
}

type Option func(*options)

// WithMaxMessages caps every message and translation list. Zero or less
// disables the cap.
func WithMaxMessages(n int) Option {
	return func(o *options) { o.maxMessages = n }
}

// WithClock replaces time.Now for last-activity bookkeeping.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func buildOptions(opts []Option) options {
	o := options{maxMessages: DefaultMaxMessages, now: time.Now}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

// trimMessages drops the oldest messages beyond max, keeping a leading system
// message in place.
func trimMessages(msgs []domain.Message, max int) []domain.Message {
	if max <= 0 || len(msgs) <= max {
		return msgs
	}
	if msgs[0].Role == domain.RoleSystem && max > 1 {
		keep := max - 1
		out := make([]domain.Message, 0, max)
		out = append(out, msgs[0])
		return append(out, msgs[len(msgs)-keep:]...)
	}
	return append([]domain.Message(nil), msgs[len(msgs)-max:]...)
}
