// Package search defines the secondary index that mirrors user records
// for lookup outside the primary store.
package search

import "github.com/trifonnt/accountd/internal/domain"

// Index mirrors the externally visible fields of user records. Writes are
// best-effort from the caller's point of view: a failed mirror must never
// roll back the primary store write.
type Index interface {
	Save(user *domain.User) error
	Delete(user *domain.User) error
	Search(loginPrefix string) ([]domain.User, error)
}
