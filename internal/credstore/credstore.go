// Package credstore provides durable persistence for the auth credential.
// Exactly one named credential is stored; it is written only by the session
// controller and cleared on logout or on any verification failure.
package credstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/vadimbarashkov/url-shortener-client/internal/entity"
)

// credentialName is the key under which the auth token is persisted.
const credentialName = "auth_token"

type Store struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Credential returns the stored auth token.
// It returns entity.ErrCredentialNotFound when no token is stored.
func (s *Store) Credential(ctx context.Context) (string, error) {
	const op = "credstore.Store.Credential"
	const query = `SELECT value FROM credentials WHERE name = ?`

	var value string

	if err := s.db.GetContext(ctx, &value, query, credentialName); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("%s: %w", op, entity.ErrCredentialNotFound)
		}

		return "", fmt.Errorf("%s: failed to read credential: %w", op, err)
	}

	return value, nil
}

// Save persists the auth token, replacing any previously stored one.
func (s *Store) Save(ctx context.Context, credential string) error {
	const op = "credstore.Store.Save"
	const query = `INSERT INTO credentials(name, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(name) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`

	if _, err := s.db.ExecContext(ctx, query, credentialName, credential); err != nil {
		return fmt.Errorf("%s: failed to save credential: %w", op, err)
	}

	return nil
}

// Clear removes the stored auth token. Clearing an empty store is not an error.
func (s *Store) Clear(ctx context.Context) error {
	const op = "credstore.Store.Clear"
	const query = `DELETE FROM credentials WHERE name = ?`

	if _, err := s.db.ExecContext(ctx, query, credentialName); err != nil {
		return fmt.Errorf("%s: failed to clear credential: %w", op, err)
	}

	return nil
}
