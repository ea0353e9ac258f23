package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/trifonnt/accountd/internal/domain"
	internal_errors "github.com/trifonnt/accountd/internal/errors"
)

// SaveToken stores a remember-me token series. Token creation belongs to
// the authentication layer; the store keeps it available for tooling and
// tests.
func (s *Storage) SaveToken(token *domain.PersistentToken) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.Exec(`INSERT INTO persistent_tokens(series, user_id, token_date)
			VALUES($1, $2, $3)
			ON CONFLICT (series) DO UPDATE SET token_date = EXCLUDED.token_date`,
			token.Series, token.UserId, token.TokenDate)
		if err != nil {
			return fmt.Errorf("failed to save persistent token: %w", err)
		}
		return nil
	})
}

// TokenBySeries fetches one token.
func (s *Storage) TokenBySeries(series string) (domain.PersistentToken, error) {
	var token domain.PersistentToken
	err := s.db.QueryRow("SELECT series, user_id, token_date FROM persistent_tokens WHERE series = $1", series).
		Scan(&token.Series, &token.UserId, &token.TokenDate)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.PersistentToken{}, internal_errors.NotFound("Token not found")
		}
		return domain.PersistentToken{}, fmt.Errorf("failed to query token: %w", err)
	}
	return token, nil
}

// TokensLastUsedBefore returns the token sweep's candidate set.
func (s *Storage) TokensLastUsedBefore(cutoff time.Time) ([]domain.PersistentToken, error) {
	rows, err := s.db.Query("SELECT series, user_id, token_date FROM persistent_tokens WHERE token_date < $1", cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to query expired tokens: %w", err)
	}
	defer rows.Close()

	tokens := []domain.PersistentToken{}
	for rows.Next() {
		var token domain.PersistentToken
		if err := rows.Scan(&token.Series, &token.UserId, &token.TokenDate); err != nil {
			return nil, fmt.Errorf("failed to scan token: %w", err)
		}
		tokens = append(tokens, token)
	}
	return tokens, rows.Err()
}

func (s *Storage) DeleteToken(token *domain.PersistentToken) error {
	result, err := s.db.Exec("DELETE FROM persistent_tokens WHERE series = $1", token.Series)
	if err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	rowsDeleted, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows for token deletion: %w", err)
	}
	if rowsDeleted == 0 {
		return internal_errors.NotFound("Token not found for deletion")
	}
	return nil
}
