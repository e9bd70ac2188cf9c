package storage

import (
	"database/sql"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

// UnlockedUser is a Telegram user that has passed the access gate.
type UnlockedUser struct {
	TelegramID int64
	UnlockedAt time.Time
}

// Store defines the persistence used by the bot: the access-gate unlocks and
// the generation cache. Listing results are never stored.
type Store interface {
	// Generation cache methods
	GetGeneration(hash string) (string, bool, error)
	SetGeneration(hash, text string) error
	PurgeGenerations(olderThan time.Duration) (int64, error)

	// Access gate methods
	IsUnlocked(telegramID int64) (bool, error)
	Unlock(telegramID int64) error
	Lock(telegramID int64) error
	GetUnlockedUsers() ([]UnlockedUser, error)

	Close() error
}

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates a new SQLite-based store at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	// Configure SQLite with WAL mode and busy timeout for better concurrency
	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.init(); err != nil {
		db.Close()
		return nil, err
	}

	// Set file permissions once the file exists
	if err := os.Chmod(dbPath, 0600); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Str("dbPath", dbPath).Msg("failed to restrict database permissions")
	}

	return store, nil
}

func (s *SQLiteStore) init() error {
	generationCacheQuery := `
	CREATE TABLE IF NOT EXISTS generation_cache (
		request_hash TEXT PRIMARY KEY,
		response TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);
	`
	if _, err := s.db.Exec(generationCacheQuery); err != nil {
		return fmt.Errorf("failed to create generation_cache table: %w", err)
	}

	unlockedUsersQuery := `
	CREATE TABLE IF NOT EXISTS unlocked_users (
		telegram_id INTEGER PRIMARY KEY,
		unlocked_at DATETIME NOT NULL
	);
	`
	if _, err := s.db.Exec(unlockedUsersQuery); err != nil {
		return fmt.Errorf("failed to create unlocked_users table: %w", err)
	}

	return nil
}

// GetGeneration returns a cached response for a request hash.
func (s *SQLiteStore) GetGeneration(hash string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var response string
	err := s.db.QueryRow(
		"SELECT response FROM generation_cache WHERE request_hash = ?",
		hash,
	).Scan(&response)

	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to query generation cache: %w", err)
	}
	return response, true, nil
}

// SetGeneration stores or replaces a cached response.
func (s *SQLiteStore) SetGeneration(hash, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO generation_cache (request_hash, response, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT(request_hash) DO UPDATE SET
			response = excluded.response,
			created_at = excluded.created_at
	`, hash, text, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to save generation: %w", err)
	}
	return nil
}

// PurgeGenerations deletes cache entries older than the given age and returns
// how many were removed.
func (s *SQLiteStore) PurgeGenerations(olderThan time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().UTC().Add(-olderThan)
	res, err := s.db.Exec("DELETE FROM generation_cache WHERE created_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge generation cache: %w", err)
	}
	return res.RowsAffected()
}

// IsUnlocked reports whether the user has entered the access code.
func (s *SQLiteStore) IsUnlocked(telegramID int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var exists int
	err := s.db.QueryRow(
		"SELECT 1 FROM unlocked_users WHERE telegram_id = ?",
		telegramID,
	).Scan(&exists)

	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check unlocked user: %w", err)
	}
	return true, nil
}

// Unlock records that the user passed the access gate.
func (s *SQLiteStore) Unlock(telegramID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO unlocked_users (telegram_id, unlocked_at)
		VALUES (?, ?)
		ON CONFLICT(telegram_id) DO NOTHING
	`, telegramID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to unlock user: %w", err)
	}
	return nil
}

// Lock removes a user's unlock.
func (s *SQLiteStore) Lock(telegramID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec("DELETE FROM unlocked_users WHERE telegram_id = ?", telegramID)
	if err != nil {
		return fmt.Errorf("failed to lock user: %w", err)
	}
	return nil
}

// GetUnlockedUsers returns all unlocked users ordered by unlock time.
func (s *SQLiteStore) GetUnlockedUsers() ([]UnlockedUser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query("SELECT telegram_id, unlocked_at FROM unlocked_users ORDER BY unlocked_at, telegram_id")
	if err != nil {
		return nil, fmt.Errorf("failed to query unlocked users: %w", err)
	}
	defer rows.Close()

	var users []UnlockedUser
	for rows.Next() {
		var u UnlockedUser
		if err := rows.Scan(&u.TelegramID, &u.UnlockedAt); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
