package credstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/ajudae/go-client/internal/client/migrations"
	"github.com/ajudae/go-client/internal/cryptox"
	"github.com/ajudae/go-client/internal/dbx"
)

// SQLiteStore keeps sealed credentials in a local sqlite database.
type SQLiteStore struct {
	db  *sql.DB
	key []byte
}

// Open opens (creating if necessary) the vault database at dsn, applies
// migrations, and loads the sealing key from keyPath.
func Open(ctx context.Context, dsn string, keyPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open vault: %w", err)
	}

	if err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate vault: %w", err)
	}

	key, err := cryptox.LoadOrCreateKey(keyPath)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &SQLiteStore{db: db, key: key}, nil
}

func runMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, ".")
}

// Get returns the unsealed value for key, or (nil, nil) when absent.
func (s *SQLiteStore) Get(ctx context.Context, key string) ([]byte, error) {
	var sealed []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM credentials WHERE key = ?`, key).Scan(&sealed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get credential[%s]: %w", key, err)
	}

	value, err := cryptox.Open(sealed, s.key)
	if err != nil {
		return nil, fmt.Errorf("failed to unseal credential[%s]: %w", key, err)
	}
	return value, nil
}

// Set seals value and upserts it under key.
func (s *SQLiteStore) Set(ctx context.Context, key string, value []byte) error {
	return s.set(ctx, s.db, key, value)
}

// SetMany seals and upserts all values inside a single transaction.
func (s *SQLiteStore) SetMany(ctx context.Context, values map[string][]byte) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		for key, value := range values {
			if err := s.set(ctx, tx, key, value); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *SQLiteStore) set(ctx context.Context, db dbx.DBTX, key string, value []byte) error {
	sealed, err := cryptox.Seal(value, s.key)
	if err != nil {
		return fmt.Errorf("failed to seal credential[%s]: %w", key, err)
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO credentials (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, sealed)
	if err != nil {
		return fmt.Errorf("failed to set credential[%s]: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting an absent key is not an error.
func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM credentials WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("failed to delete credential[%s]: %w", key, err)
	}
	return nil
}

// Clear wipes the whole vault.
func (s *SQLiteStore) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM credentials`)
	if err != nil {
		return fmt.Errorf("failed to clear credentials: %w", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
