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

const userColumns = `id, login, password_hash, first_name, last_name, email,
	image_url, lang_key, activated, COALESCE(activation_key, ''),
	COALESCE(reset_key, ''), reset_date, created_date`

// =========================================================================
// Public Methods (satisfy the service.UserStorage interface)
// =========================================================================

// SaveUser inserts the user when Id == 0 and overwrites the full record
// otherwise. The authority link set is replaced wholesale in the same
// transaction, so partial authority assignment can never be observed.
func (s *Storage) SaveUser(user *domain.User) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		if user.Id == 0 {
			if err := s.insertUser(tx, user); err != nil {
				return err
			}
		} else if err := s.updateUser(tx, user); err != nil {
			return err
		}
		return s.replaceAuthorities(tx, user.Id, user.Authorities)
	})
}

func (s *Storage) UserByLogin(login string) (domain.User, error) {
	return s.userWhere(s.db, "login = $1", login)
}

func (s *Storage) UserByEmail(email string) (domain.User, error) {
	return s.userWhere(s.db, "email = $1", email)
}

func (s *Storage) UserByActivationKey(key string) (domain.User, error) {
	return s.userWhere(s.db, "activation_key = $1", key)
}

func (s *Storage) UserByResetKey(key string) (domain.User, error) {
	return s.userWhere(s.db, "reset_key = $1", key)
}

func (s *Storage) UserById(id int64) (domain.User, error) {
	return s.userWhere(s.db, "id = $1", id)
}

// UsersExcludingLogin lists users ordered by login, skipping the given
// login. Used by the managed-users listing to hide the anonymous account.
func (s *Storage) UsersExcludingLogin(login string, limit, offset int) ([]domain.User, error) {
	query := fmt.Sprintf("SELECT %s FROM users WHERE login <> $1 ORDER BY login LIMIT $2 OFFSET $3", userColumns)
	rows, err := s.db.Query(query, login, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()
	return s.collectUsers(rows)
}

// UnactivatedUsersCreatedBefore returns the stale-registration sweep's
// candidate set.
func (s *Storage) UnactivatedUsersCreatedBefore(cutoff time.Time) ([]domain.User, error) {
	query := fmt.Sprintf("SELECT %s FROM users WHERE activated = FALSE AND created_date < $1", userColumns)
	rows, err := s.db.Query(query, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to query unactivated users: %w", err)
	}
	defer rows.Close()
	return s.collectUsers(rows)
}

// DeleteUser removes the user row. Authority links and persistent tokens
// go with it via ON DELETE CASCADE.
func (s *Storage) DeleteUser(user *domain.User) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		return s.deleteUser(tx, user.Id)
	})
}

// =========================================================================
// Internal Methods (Core Database Logic)
// These methods accept a Querier and are transaction-agnostic.
// =========================================================================

func (s *Storage) insertUser(q Querier, user *domain.User) error {
	err := q.QueryRow(`INSERT INTO users
		(login, password_hash, first_name, last_name, email, image_url,
		 lang_key, activated, activation_key, reset_key, reset_date, created_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULLIF($9, ''), NULLIF($10, ''), $11, $12)
		RETURNING id`,
		user.Login, user.PasswordHash, user.FirstName, user.LastName,
		user.Email, user.ImageUrl, user.LangKey, user.Activated,
		user.ActivationKey, user.ResetKey, user.ResetDate, user.CreatedDate,
	).Scan(&user.Id)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

func (s *Storage) updateUser(q Querier, user *domain.User) error {
	result, err := q.Exec(`UPDATE users SET
		login = $2, password_hash = $3, first_name = $4, last_name = $5,
		email = $6, image_url = $7, lang_key = $8, activated = $9,
		activation_key = NULLIF($10, ''), reset_key = NULLIF($11, ''), reset_date = $12
		WHERE id = $1`,
		user.Id, user.Login, user.PasswordHash, user.FirstName, user.LastName,
		user.Email, user.ImageUrl, user.LangKey, user.Activated,
		user.ActivationKey, user.ResetKey, user.ResetDate,
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows for user update: %w", err)
	}
	if rowsAffected == 0 {
		return internal_errors.NotFound("User not found for update")
	}
	return nil
}

// replaceAuthorities clears the user's authority links and repopulates
// them from the given labels.
func (s *Storage) replaceAuthorities(q Querier, userId int64, authorities []string) error {
	if _, err := q.Exec("DELETE FROM user_authorities WHERE user_id = $1", userId); err != nil {
		return fmt.Errorf("failed to clear user authorities: %w", err)
	}
	for _, name := range authorities {
		if _, err := q.Exec("INSERT INTO user_authorities(user_id, authority_name) VALUES($1, $2)", userId, name); err != nil {
			return fmt.Errorf("failed to link authority %q: %w", name, err)
		}
	}
	return nil
}

func (s *Storage) userWhere(q Querier, where string, arg interface{}) (domain.User, error) {
	var user domain.User
	var resetDate sql.NullTime

	query := fmt.Sprintf("SELECT %s FROM users WHERE %s", userColumns, where)
	err := q.QueryRow(query, arg).Scan(
		&user.Id, &user.Login, &user.PasswordHash, &user.FirstName,
		&user.LastName, &user.Email, &user.ImageUrl, &user.LangKey,
		&user.Activated, &user.ActivationKey, &user.ResetKey,
		&resetDate, &user.CreatedDate,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, internal_errors.NotFound("User not found")
		}
		return domain.User{}, fmt.Errorf("failed to query user: %w", err)
	}
	if resetDate.Valid {
		user.ResetDate = &resetDate.Time
	}

	user.Authorities, err = s.userAuthorities(q, user.Id)
	if err != nil {
		return domain.User{}, err
	}
	return user, nil
}

func (s *Storage) userAuthorities(q Querier, userId int64) ([]string, error) {
	rows, err := q.Query("SELECT authority_name FROM user_authorities WHERE user_id = $1 ORDER BY authority_name", userId)
	if err != nil {
		return nil, fmt.Errorf("failed to query user authorities: %w", err)
	}
	defer rows.Close()

	authorities := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan authority: %w", err)
		}
		authorities = append(authorities, name)
	}
	return authorities, rows.Err()
}

func (s *Storage) collectUsers(rows *sql.Rows) ([]domain.User, error) {
	users := []domain.User{}
	for rows.Next() {
		var user domain.User
		var resetDate sql.NullTime
		err := rows.Scan(
			&user.Id, &user.Login, &user.PasswordHash, &user.FirstName,
			&user.LastName, &user.Email, &user.ImageUrl, &user.LangKey,
			&user.Activated, &user.ActivationKey, &user.ResetKey,
			&resetDate, &user.CreatedDate,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		if resetDate.Valid {
			user.ResetDate = &resetDate.Time
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range users {
		authorities, err := s.userAuthorities(s.db, users[i].Id)
		if err != nil {
			return nil, err
		}
		users[i].Authorities = authorities
	}
	return users, nil
}

func (s *Storage) deleteUser(q Querier, id int64) error {
	result, err := q.Exec("DELETE FROM users WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	rowsDeleted, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows for user deletion: %w", err)
	}
	if rowsDeleted == 0 {
		return internal_errors.NotFound("User not found for deletion")
	}
	return nil
}
