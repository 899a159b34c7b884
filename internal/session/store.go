// Package session persists chat transcripts.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/timshannon/badgerhold/v4"

	"github.com/dgallion1/clusterscope/internal/model"
)

var ErrNotFound = errors.New("session not found")

// Session is one conversation. Industry and Region default the search
// filters of later turns.
type Session struct {
	ID        string          `json:"id"`
	Messages  []model.Message `json:"messages"`
	Industry  string          `json:"industry,omitempty"`
	Region    string          `json:"region,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Store keeps sessions in a badger database.
type Store struct {
	db  *badgerhold.Store
	log *slog.Logger

	// Serializes read-modify-write of transcripts.
	mu sync.Mutex
}

// Open opens or creates the database in dir.
func Open(dir string, log *slog.Logger) (*Store, error) {
	if log == nil {
		log = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create session directory: %w", err)
	}

	options := badgerhold.DefaultOptions
	options.Dir = dir
	options.ValueDir = dir
	options.Logger = nil

	db, err := badgerhold.Open(options)
	if err != nil {
		return nil, fmt.Errorf("open session database: %w", err)
	}
	log.Debug("session store opened", "path", dir)
	return &Store{db: db, log: log}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Create starts an empty session with optional filter defaults.
func (s *Store) Create(ctx context.Context, industry, region string) (Session, error) {
	now := time.Now().UTC()
	sess := Session{
		ID:        uuid.NewString(),
		Industry:  industry,
		Region:    region,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.db.Upsert(sess.ID, sess); err != nil {
		return Session{}, fmt.Errorf("store session: %w", err)
	}
	return sess, nil
}

func (s *Store) Get(ctx context.Context, id string) (Session, error) {
	var sess Session
	if err := s.db.Get(id, &sess); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return Session{}, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return Session{}, fmt.Errorf("get session: %w", err)
	}
	return sess, nil
}

// Append adds messages to the end of a session's transcript.
func (s *Store) Append(ctx context.Context, id string, msgs ...model.Message) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.Get(ctx, id)
	if err != nil {
		return Session{}, err
	}
	sess.Messages = append(sess.Messages, msgs...)
	sess.UpdatedAt = time.Now().UTC()
	if err := s.db.Upsert(id, sess); err != nil {
		return Session{}, fmt.Errorf("store session: %w", err)
	}
	return sess, nil
}

// List returns every session, most recently updated first.
func (s *Store) List(ctx context.Context) ([]Session, error) {
	var sessions []Session
	if err := s.db.Find(&sessions, nil); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	slices.SortStableFunc(sessions, func(a, b Session) int {
		return b.UpdatedAt.Compare(a.UpdatedAt)
	})
	return sessions, nil
}

// Delete removes a session. Unknown ids succeed.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := s.db.Delete(id, Session{}); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
