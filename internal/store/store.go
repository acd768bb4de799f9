// Package store provides storage backends for wizard session snapshots.
//
// A snapshot is the durable projection of an in-progress session: the
// user-authored progress only, never generation-phase state. Backends
// include an in-memory store for tests, SQLite for single-node deployments,
// and PostgreSQL.
package store

import (
	"log/slog"
	"strings"
	"sync"
	"time"
)

// Session is one durable session snapshot record. Snapshot holds the
// serialized wizard.Snapshot JSON document.
type Session struct {
	ID        string    `json:"id"`
	Snapshot  string    `json:"snapshot"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store defines the persistence operations for session snapshots.
type Store interface {
	// SaveSession inserts or replaces the snapshot for a session.
	SaveSession(s Session) error
	// GetSession retrieves a session snapshot, or nil if absent.
	GetSession(id string) (*Session, error)
	// DeleteSession removes a session snapshot. Deleting an absent session is not an error.
	DeleteSession(id string) error
	// Close releases backend resources.
	Close() error
}

// Opts holds configuration options for store backends.
type Opts struct {
	DSN string
}

// Option configures a store backend.
type Option func(*Opts)

// WithSQLiteDSN sets a SQLite database file path.
func WithSQLiteDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}

// WithPostgresDSN sets a PostgreSQL connection string.
func WithPostgresDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}

// DetectDSNType classifies a DSN as "postgres" or "sqlite". File paths are
// assumed to be SQLite databases.
func DetectDSNType(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") || strings.Contains(dsn, "host=") {
		return "postgres"
	}
	return "sqlite"
}

// NewStore selects a backend from options: PostgreSQL or SQLite when a DSN
// is configured, the in-memory store otherwise.
func NewStore(opts ...Option) (Store, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.DSN == "" {
		slog.Debug("store.NewStore: no DSN configured, using in-memory store")
		return NewInMemoryStore(), nil
	}
	if DetectDSNType(cfg.DSN) == "postgres" {
		return NewPostgresStore(opts...)
	}
	return NewSQLiteStore(opts...)
}

// InMemoryStore is a non-durable Store used in tests and as a fallback when
// no database is configured.
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{sessions: make(map[string]Session)}
}

// SaveSession inserts or replaces the snapshot for a session.
func (s *InMemoryStore) SaveSession(sess Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	if existing, ok := s.sessions[sess.ID]; ok {
		sess.CreatedAt = existing.CreatedAt
	} else {
		sess.CreatedAt = now
	}
	sess.UpdatedAt = now
	s.sessions[sess.ID] = sess
	slog.Debug("InMemoryStore.SaveSession succeeded", "sessionID", sess.ID, "snapshot_bytes", len(sess.Snapshot))
	return nil
}

// GetSession retrieves a session snapshot, or nil if absent.
func (s *InMemoryStore) GetSession(id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, nil
	}
	return &sess, nil
}

// DeleteSession removes a session snapshot.
func (s *InMemoryStore) DeleteSession(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	slog.Debug("InMemoryStore.DeleteSession succeeded", "sessionID", id)
	return nil
}

// Close is a no-op for the in-memory store.
func (s *InMemoryStore) Close() error { return nil }
