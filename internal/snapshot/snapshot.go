// Package snapshot provides read-only access to a copied iMessage chat.db.
// The snapshot is immutable for its lifetime: an external refresh step
// replaces the file wholesale, and callers serialize refresh against query.
package snapshot

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	_ "github.com/mattn/go-sqlite3"

	"github.com/FO214/remess/internal/filter"
)

// Snapshot wraps a read-only handle to a copied chat.db.
type Snapshot struct {
	db   *sql.DB
	path string
}

// Open opens the snapshot at path read-only. The file must already exist;
// analysis never creates or mutates it.
func Open(path string) (*Snapshot, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("snapshot not found at %s: %w", path, err)
	}

	db, err := sql.Open("sqlite3", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("open snapshot: %w", err)
	}

	// Read-only pragmas. Failures are ignored; some builds reject a few.
	for _, pragma := range []string{
		"PRAGMA query_only=ON",
		"PRAGMA temp_store=MEMORY",
		"PRAGMA cache_size=-65536",
	} {
		_, _ = db.Exec(pragma)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping snapshot: %w", err)
	}

	return &Snapshot{db: db, path: path}, nil
}

// FromDB wraps an already-open database. Used by tests with in-memory
// fixtures.
func FromDB(db *sql.DB) *Snapshot {
	return &Snapshot{db: db}
}

// Close releases the read handle.
func (s *Snapshot) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB returns the underlying connection for queries.
func (s *Snapshot) DB() *sql.DB {
	return s.db
}

// Path returns the snapshot file path ("" for wrapped test databases).
func (s *Snapshot) Path() string {
	return s.path
}

// MemberCount returns the number of distinct handles joined to a chat.
// A chat with no membership rows returns 0.
func (s *Snapshot) MemberCount(ctx context.Context, chatID int64) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(DISTINCT handle_id) FROM chat_handle_join WHERE chat_id = ?
	`, chatID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("member count for chat %d: %w", chatID, err)
	}
	return n, nil
}

// ChatKind classifies a chat by its distinct-member cardinality.
func (s *Snapshot) ChatKind(ctx context.Context, chatID int64) (filter.Kind, error) {
	n, err := s.MemberCount(ctx, chatID)
	if err != nil {
		return filter.KindDirect, err
	}
	return filter.KindFromMemberCount(n), nil
}

// ChatExists reports whether a chat row exists in the snapshot.
func (s *Snapshot) ChatExists(ctx context.Context, chatID int64) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM chat WHERE ROWID = ?`, chatID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("chat exists %d: %w", chatID, err)
	}
	return true, nil
}
