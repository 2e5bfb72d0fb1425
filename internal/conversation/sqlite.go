package conversation

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"coursechat/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS conversations (
	id          TEXT PRIMARY KEY,
	created_at  INTEGER NOT NULL,
	last_active INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_conversations_last_active ON conversations(last_active);

CREATE TABLE IF NOT EXISTS messages (
	id              TEXT PRIMARY KEY,
	conversation_id TEXT NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
	seq             INTEGER NOT NULL,
	role            TEXT NOT NULL,
	content         TEXT NOT NULL,
	created_at      INTEGER NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_messages_conv_seq ON messages(conversation_id, seq);

CREATE TABLE IF NOT EXISTS translations (
	id              TEXT PRIMARY KEY,
	conversation_id TEXT NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
	seq             INTEGER NOT NULL,
	original        TEXT NOT NULL,
	translation     TEXT NOT NULL,
	language        TEXT NOT NULL,
	created_at      INTEGER NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_translations_conv_seq ON translations(conversation_id, seq);
`

// SQLiteStore persists conversations in a SQLite database.
type SQLiteStore struct {
	db   *sql.DB
	opts options

	entropyMu sync.Mutex
	entropy   *rand.Rand
}

// NewSQLiteStore opens or creates the database at dbPath.
func NewSQLiteStore(dbPath string, opts ...Option) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// One writer at a time; SQLite would serialise writes anyway.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{
		db:      db,
		opts:    buildOptions(opts),
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) newID() string {
	s.entropyMu.Lock()
	defer s.entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// touch creates the conversation row if needed and bumps its activity time.
func (s *SQLiteStore) touch(ctx context.Context, tx *sql.Tx, id string, now int64) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO conversations (id, created_at, last_active) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET last_active = excluded.last_active`,
		id, now, now)
	if err != nil {
		return fmt.Errorf("touch conversation: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Ensure(ctx context.Context, id string, seed domain.Message) (bool, error) {
	created := false
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		now := s.opts.now().UnixNano()
		if err := s.touch(ctx, tx, id, now); err != nil {
			return err
		}
		var n int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM messages WHERE conversation_id = ?`, id).Scan(&n); err != nil {
			return fmt.Errorf("count messages: %w", err)
		}
		if n > 0 {
			return nil
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO messages (id, conversation_id, seq, role, content, created_at) VALUES (?, ?, 0, ?, ?, ?)`,
			s.newID(), id, string(seed.Role), seed.Content, now); err != nil {
			return fmt.Errorf("insert seed: %w", err)
		}
		created = true
		return nil
	})
	return created, err
}

func (s *SQLiteStore) Append(ctx context.Context, id string, msgs ...domain.Message) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		now := s.opts.now().UnixNano()
		if err := s.touch(ctx, tx, id, now); err != nil {
			return err
		}
		var next int64
		if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq) + 1, 0) FROM messages WHERE conversation_id = ?`, id).Scan(&next); err != nil {
			return fmt.Errorf("next seq: %w", err)
		}
		for i, m := range msgs {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO messages (id, conversation_id, seq, role, content, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
				s.newID(), id, next+int64(i), string(m.Role), m.Content, now); err != nil {
				return fmt.Errorf("insert message: %w", err)
			}
		}
		return s.trimMessages(ctx, tx, id)
	})
}

// trimMessages applies the FIFO cap, never deleting a seq-0 system message.
func (s *SQLiteStore) trimMessages(ctx context.Context, tx *sql.Tx, id string) error {
	max := s.opts.maxMessages
	if max <= 0 {
		return nil
	}
	var pinned int
	if err := tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM messages WHERE conversation_id = ? AND seq = 0 AND role = ?`,
		id, string(domain.RoleSystem)).Scan(&pinned); err != nil {
		return fmt.Errorf("check seed: %w", err)
	}
	keep := max
	if pinned > 0 && max > 1 {
		keep = max - 1
	} else {
		pinned = 0
	}
	_, err := tx.ExecContext(ctx, `
		DELETE FROM messages
		WHERE conversation_id = ? AND NOT (seq = 0 AND ? > 0) AND id NOT IN (
			SELECT id FROM messages
			WHERE conversation_id = ? AND NOT (seq = 0 AND ? > 0)
			ORDER BY seq DESC
			LIMIT ?
		)`, id, pinned, id, pinned, keep)
	if err != nil {
		return fmt.Errorf("trim messages: %w", err)
	}
	return nil
}

func (s *SQLiteStore) History(ctx context.Context, id string) ([]domain.Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT role, content FROM messages WHERE conversation_id = ? ORDER BY seq ASC`, id)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var out []domain.Message
	for rows.Next() {
		var m domain.Message
		var role string
		if err := rows.Scan(&role, &m.Content); err != nil {
			return nil, err
		}
		m.Role = domain.Role(role)
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) AppendTranslation(ctx context.Context, id string, rec domain.TranslationRecord) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		now := s.opts.now().UnixNano()
		if err := s.touch(ctx, tx, id, now); err != nil {
			return err
		}
		var next int64
		if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq) + 1, 0) FROM translations WHERE conversation_id = ?`, id).Scan(&next); err != nil {
			return fmt.Errorf("next seq: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO translations (id, conversation_id, seq, original, translation, language, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			s.newID(), id, next, rec.Original, rec.Translation, rec.Language, now); err != nil {
			return fmt.Errorf("insert translation: %w", err)
		}
		if s.opts.maxMessages <= 0 {
			return nil
		}
		_, err := tx.ExecContext(ctx, `
			DELETE FROM translations
			WHERE conversation_id = ? AND id NOT IN (
				SELECT id FROM translations WHERE conversation_id = ? ORDER BY seq DESC LIMIT ?
			)`, id, id, s.opts.maxMessages)
		if err != nil {
			return fmt.Errorf("trim translations: %w", err)
		}
		return nil
	})
}

func (s *SQLiteStore) Translations(ctx context.Context, id string) ([]domain.TranslationRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT original, translation, language FROM translations WHERE conversation_id = ? ORDER BY seq ASC`, id)
	if err != nil {
		return nil, fmt.Errorf("query translations: %w", err)
	}
	defer rows.Close()

	var out []domain.TranslationRecord
	for rows.Next() {
		var r domain.TranslationRecord
		if err := rows.Scan(&r.Original, &r.Translation, &r.Language); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) EvictIdle(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM conversations WHERE last_active < ?`, cutoff.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("evict conversations: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}
