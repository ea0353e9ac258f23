package pg

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/trifonnt/accountd/internal/domain"
	internal_errors "github.com/trifonnt/accountd/internal/errors"
)

// AuthorityByName resolves a role label to its persisted record. A miss
// means the caller asked for a role that was never provisioned.
func (s *Storage) AuthorityByName(name string) (domain.Authority, error) {
	var authority domain.Authority
	err := s.db.QueryRow("SELECT name FROM authorities WHERE name = $1", name).Scan(&authority.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Authority{}, internal_errors.NotFound(fmt.Sprintf("Authority %q not found", name))
		}
		return domain.Authority{}, fmt.Errorf("failed to query authority: %w", err)
	}
	return authority, nil
}

// Authorities lists all provisioned role labels.
func (s *Storage) Authorities() ([]domain.Authority, error) {
	rows, err := s.db.Query("SELECT name FROM authorities ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to query authorities: %w", err)
	}
	defer rows.Close()

	authorities := []domain.Authority{}
	for rows.Next() {
		var authority domain.Authority
		if err := rows.Scan(&authority.Name); err != nil {
			return nil, fmt.Errorf("failed to scan authority: %w", err)
		}
		authorities = append(authorities, authority)
	}
	return authorities, rows.Err()
}
