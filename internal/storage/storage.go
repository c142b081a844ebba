// Package storage keeps the bot's durable state — reminders and user
// profiles — in a single SQLite file.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Store wraps the SQLite handle. One Store per process.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS reminders (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	chat_id INTEGER NOT NULL,
	username TEXT NOT NULL DEFAULT '',
	text TEXT NOT NULL,
	due_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_reminders_due ON reminders(due_at);

CREATE TABLE IF NOT EXISTS profiles (
	user_id INTEGER PRIMARY KEY,
	relationship INTEGER NOT NULL DEFAULT 50,
	facts TEXT NOT NULL DEFAULT ''
);
`

// Open opens (or creates) the database and applies the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage: open %s: %w", path, err)
	}
	// SQLite handles one writer; serialize access through a single conn.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

// Reminder is one scheduled notification.
type Reminder struct {
	ID       int64
	ChatID   int64
	Username string
	Text     string
	DueAt    time.Time
}

// AddReminder schedules a reminder.
func (s *Store) AddReminder(ctx context.Context, r Reminder) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO reminders (chat_id, username, text, due_at) VALUES (?, ?, ?, ?)`,
		r.ChatID, r.Username, r.Text, r.DueAt.Unix())
	if err != nil {
		return 0, fmt.Errorf("storage: add reminder: %w", err)
	}
	return res.LastInsertId()
}

// Pending returns reminders due at or before now, oldest first.
func (s *Store) Pending(ctx context.Context, now time.Time) ([]Reminder, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, chat_id, username, text, due_at FROM reminders WHERE due_at <= ? ORDER BY due_at`,
		now.Unix())
	if err != nil {
		return nil, fmt.Errorf("storage: pending reminders: %w", err)
	}
	defer rows.Close()

	var out []Reminder
	for rows.Next() {
		var r Reminder
		var due int64
		if err := rows.Scan(&r.ID, &r.ChatID, &r.Username, &r.Text, &due); err != nil {
			return nil, err
		}
		r.DueAt = time.Unix(due, 0)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Remove deletes reminders by id. Called after delivery, including
// deliveries that failed because the user blocked the bot — retrying
// those forever only spams the log.
func (s *Store) Remove(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	for _, id := range ids {
		if _, err := tx.ExecContext(ctx, `DELETE FROM reminders WHERE id = ?`, id); err != nil {
			return fmt.Errorf("storage: remove reminder %d: %w", id, err)
		}
	}
	return tx.Commit()
}

// Profile is the bot's dossier on one user.
type Profile struct {
	UserID       int64
	Relationship int
	Facts        string
}

// GetProfile returns the stored profile, or a neutral default when the
// user is new.
func (s *Store) GetProfile(ctx context.Context, userID int64) (Profile, error) {
	p := Profile{UserID: userID, Relationship: 50}
	err := s.db.QueryRowContext(ctx,
		`SELECT relationship, facts FROM profiles WHERE user_id = ?`, userID).
		Scan(&p.Relationship, &p.Facts)
	if err == sql.ErrNoRows {
		return p, nil
	}
	if err != nil {
		return p, fmt.Errorf("storage: get profile: %w", err)
	}
	return p, nil
}

// SaveProfile upserts a profile.
func (s *Store) SaveProfile(ctx context.Context, p Profile) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO profiles (user_id, relationship, facts) VALUES (?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET relationship = excluded.relationship, facts = excluded.facts`,
		p.UserID, p.Relationship, p.Facts)
	if err != nil {
		return fmt.Errorf("storage: save profile: %w", err)
	}
	return nil
}
