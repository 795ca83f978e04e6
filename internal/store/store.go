// Package store persists users' pity state and draw history in SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/xtding233/gacha-sim/internal/gacha"
)

// Store is a SQLite-backed puller state store.
type Store struct {
	db *sql.DB
}

// HistoryEntry is one persisted draw.
type HistoryEntry struct {
	ID      string    `json:"id"`
	UserID  string    `json:"user_id"`
	Banner  string    `json:"banner"`
	Item    string    `json:"item"`
	Rarity  int       `json:"rarity"`
	DrawnAt time.Time `json:"drawn_at"`
}

// Open opens (or creates) the database at path and applies the schema.
func Open(path string) (*Store, error) {
	// WAL and busy timeout so readers do not block the single writer
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}
	// SQLite has a single writer; one connection avoids SQLITE_BUSY
	db.SetMaxOpenConns(1)

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func migrate(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS puller_state (
			user_id TEXT PRIMARY KEY,
			top_chance REAL NOT NULL,
			miss_streak INTEGER NOT NULL DEFAULT 0,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS draw_history (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			banner TEXT NOT NULL,
			item TEXT NOT NULL,
			rarity INTEGER NOT NULL,
			seq INTEGER NOT NULL,
			drawn_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_draw_history_user ON draw_history(user_id, drawn_at)`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// LoadState returns the user's saved state; ok is false for unknown users.
func (s *Store) LoadState(ctx context.Context, userID string) (state gacha.PullerState, ok bool, err error) {
	err = s.db.QueryRowContext(ctx,
		`SELECT top_chance, miss_streak FROM puller_state WHERE user_id = ?`, userID,
	).Scan(&state.TopChance, &state.MissStreak)
	if errors.Is(err, sql.ErrNoRows) {
		return gacha.PullerState{}, false, nil
	}
	if err != nil {
		return gacha.PullerState{}, false, err
	}
	return state, true, nil
}

// SaveDraw stores the user's state after a draw together with its results,
// in one transaction.
func (s *Store) SaveDraw(ctx context.Context, userID, banner string, state gacha.PullerState, results []gacha.Result) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO puller_state (user_id, top_chance, miss_streak, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(user_id) DO UPDATE SET
			top_chance = excluded.top_chance,
			miss_streak = excluded.miss_streak,
			updated_at = CURRENT_TIMESTAMP`,
		userID, state.TopChance, state.MissStreak)
	if err != nil {
		return fmt.Errorf("save state: %w", err)
	}

	if len(results) > 0 {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO draw_history (id, user_id, banner, item, rarity, seq, drawn_at) VALUES (?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		now := time.Now().UTC()
		for i, r := range results {
			if _, err := stmt.ExecContext(ctx, uuid.NewString(), userID, banner, r.Item, r.Rarity, i, now); err != nil {
				return fmt.Errorf("save history: %w", err)
			}
		}
	}
	return tx.Commit()
}

// History returns the user's most recent draws, newest first.
func (s *Store) History(ctx context.Context, userID string, limit int) ([]HistoryEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, banner, item, rarity, drawn_at
		FROM draw_history WHERE user_id = ?
		ORDER BY drawn_at DESC, seq DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Banner, &e.Item, &e.Rarity, &e.DrawnAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
