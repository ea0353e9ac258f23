package pg

import (
	"fmt"
)

// DeleteConnections removes all social-account links of a user. Deleting
// zero rows is fine: most accounts never linked a social login.
func (s *Storage) DeleteConnections(login string) error {
	_, err := s.db.Exec(`DELETE FROM social_connections
		WHERE user_id = (SELECT id FROM users WHERE login = $1)`, login)
	if err != nil {
		return fmt.Errorf("failed to delete social connections: %w", err)
	}
	return nil
}
