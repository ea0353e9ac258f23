package memindex

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trifonnt/accountd/internal/domain"
)

func TestSaveStripsSensitiveFields(t *testing.T) {
	index := New()
	now := time.Now()

	err := index.Save(&domain.User{
		Login:         "jdoe",
		Email:         "jdoe@example.com",
		PasswordHash:  "hash",
		ActivationKey: "akey",
		ResetKey:      "rkey",
		ResetDate:     &now,
	})
	require.NoError(t, err)

	found, err := index.Search("jdoe")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "jdoe@example.com", found[0].Email)
	assert.Empty(t, found[0].PasswordHash)
	assert.Empty(t, found[0].ActivationKey)
	assert.Empty(t, found[0].ResetKey)
	assert.Nil(t, found[0].ResetDate)
}

func TestSearch(t *testing.T) {
	index := New()
	for _, login := range []string{"bob", "alice", "albert", "carol"} {
		require.NoError(t, index.Save(&domain.User{Login: login}))
	}

	t.Run("prefix match, sorted", func(t *testing.T) {
		found, err := index.Search("al")
		require.NoError(t, err)
		require.Len(t, found, 2)
		assert.Equal(t, "albert", found[0].Login)
		assert.Equal(t, "alice", found[1].Login)
	})

	t.Run("empty prefix matches everything", func(t *testing.T) {
		found, err := index.Search("")
		require.NoError(t, err)
		assert.Len(t, found, 4)
	})

	t.Run("no match", func(t *testing.T) {
		found, err := index.Search("zeta")
		require.NoError(t, err)
		assert.Empty(t, found)
	})
}

func TestSaveOverwritesAndDeleteRemoves(t *testing.T) {
	index := New()
	require.NoError(t, index.Save(&domain.User{Login: "jdoe", Email: "old@example.com"}))
	require.NoError(t, index.Save(&domain.User{Login: "jdoe", Email: "new@example.com"}))
	assert.Equal(t, 1, index.Len())

	found, err := index.Search("jdoe")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "new@example.com", found[0].Email)

	require.NoError(t, index.Delete(&domain.User{Login: "jdoe"}))
	assert.Equal(t, 0, index.Len())
}
