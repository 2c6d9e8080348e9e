package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveEmail(t *testing.T) {
	dir := NewDirectory(map[string]string{
		"Alice":       "alice@example.com",
		"bob.builder": "bob@example.com",
	})

	t.Run("exact match", func(t *testing.T) {
		email, ok := dir.ResolveEmail("Alice")
		assert.True(t, ok)
		assert.Equal(t, "alice@example.com", email)
	})

	t.Run("case insensitive match", func(t *testing.T) {
		email, ok := dir.ResolveEmail("alice")
		assert.True(t, ok)
		assert.Equal(t, "alice@example.com", email)
	})

	t.Run("whitespace trimmed", func(t *testing.T) {
		email, ok := dir.ResolveEmail("  Alice  ")
		assert.True(t, ok)
		assert.Equal(t, "alice@example.com", email)
	})

	t.Run("substring of key", func(t *testing.T) {
		email, ok := dir.ResolveEmail("bob")
		assert.True(t, ok)
		assert.Equal(t, "bob@example.com", email)
	})

	t.Run("key is substring of name", func(t *testing.T) {
		email, ok := dir.ResolveEmail("Alice Smith")
		assert.True(t, ok)
		assert.Equal(t, "alice@example.com", email)
	})

	t.Run("no match", func(t *testing.T) {
		_, ok := dir.ResolveEmail("mallory")
		assert.False(t, ok)
	})

	t.Run("empty name", func(t *testing.T) {
		_, ok := dir.ResolveEmail("")
		assert.False(t, ok)
		_, ok = dir.ResolveEmail("   ")
		assert.False(t, ok)
	})
}

func TestResolveEmailStableWithOverlappingKeys(t *testing.T) {
	// Both keys substring-match "alice"; the scan walks keys in sorted
	// order, so every call lands on the same entry.
	dir := NewDirectory(map[string]string{
		"ali": "ali@example.com",
		"al":  "al@example.com",
	})
	for i := 0; i < 200; i++ {
		email, ok := dir.ResolveEmail("alice")
		require.True(t, ok)
		require.Equal(t, "al@example.com", email)
	}
}

func TestNewDirectoryCopiesMap(t *testing.T) {
	src := map[string]string{"Alice": "alice@example.com"}
	dir := NewDirectory(src)
	src["Alice"] = "changed@example.com"

	email, ok := dir.ResolveEmail("Alice")
	assert.True(t, ok)
	assert.Equal(t, "alice@example.com", email)
}
