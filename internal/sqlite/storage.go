package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/guilherme-santos/gluecal/internal"
)

const DriverName = "sqlite3"

type Storage struct {
	db *sqlx.DB

	// Now stamps property writes. Defaults to time.Now.
	Now func() time.Time
}

// Open opens (creating if needed) the database at path.
func Open(path string) (*Storage, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("sqlite: %w", err)
	}
	db, err := sql.Open(DriverName, path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: %s: %w", path, err)
	}
	s := &Storage{
		db:  sqlx.NewDb(db, DriverName),
		Now: time.Now,
	}
	if err := s.RunMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}
	return s, nil
}

func (s Storage) Close() error {
	return s.db.Close()
}

func (s Storage) AddAccount(ctx context.Context, account *internal.Account) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO accounts (id, auth) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET auth=?;
	`, account.ID(), account.Auth, account.Auth)
	return err
}

// Account returns the account configured for platform. When several exist
// the first one by name wins.
func (s Storage) Account(ctx context.Context, platform string) (*internal.Account, error) {
	var acc Account
	err := s.db.GetContext(ctx, &acc, `
		SELECT id, auth
		FROM accounts
		WHERE id LIKE ? || '/%'
		ORDER BY id
		LIMIT 1
	`, platform)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("account for %q: %w", platform, internal.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return acc.Convert(), nil
}

func (s Storage) Property(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.GetContext(ctx, &value, `
		SELECT value FROM properties WHERE key = ?
	`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (s Storage) SetProperty(ctx context.Context, key, value string) error {
	updatedAt := s.Now().UTC().Format(time.RFC3339)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO properties (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value=?, updated_at=?;
	`, key, value, updatedAt, value, updatedAt)
	return err
}

func (s Storage) Properties(ctx context.Context) (map[string]string, error) {
	var props []Property
	err := s.db.SelectContext(ctx, &props, `
		SELECT key, value FROM properties ORDER BY key
	`)
	if err != nil {
		return nil, err
	}

	res := make(map[string]string, len(props))
	for _, p := range props {
		res[p.Key] = p.Value
	}
	return res, nil
}

func (s Storage) DeleteAllProperties(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM properties`)
	return err
}
