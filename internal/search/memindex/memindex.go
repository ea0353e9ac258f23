// Package memindex is an in-process implementation of search.Index.
package memindex

import (
	"sort"
	"strings"
	"sync"

	"github.com/trifonnt/accountd/internal/domain"
)

type Index struct {
	mu    sync.RWMutex
	users map[string]domain.User // keyed by login
}

func New() *Index {
	return &Index{users: make(map[string]domain.User)}
}

func (i *Index) Save(user *domain.User) error {
	entry := *user
	// keep the index free of credentials and security tokens
	entry.PasswordHash = ""
	entry.ActivationKey = ""
	entry.ResetKey = ""
	entry.ResetDate = nil

	i.mu.Lock()
	i.users[user.Login] = entry
	i.mu.Unlock()
	return nil
}

func (i *Index) Delete(user *domain.User) error {
	i.mu.Lock()
	delete(i.users, user.Login)
	i.mu.Unlock()
	return nil
}

func (i *Index) Search(loginPrefix string) ([]domain.User, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	var out []domain.User
	for login, u := range i.users {
		if strings.HasPrefix(login, loginPrefix) {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Login < out[b].Login })
	return out, nil
}

// Len reports the number of indexed users.
func (i *Index) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.users)
}
