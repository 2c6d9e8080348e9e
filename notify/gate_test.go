package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testGate() *Gate {
	return NewGate(NewDirectory(map[string]string{
		"owner": "owner@example.com",
		"alice": "alice@example.com",
		"bob":   "bob@example.com",
	}))
}

func TestOwnerEligible(t *testing.T) {
	g := testGate()

	t.Run("different author notifies", func(t *testing.T) {
		email, ok := g.OwnerEligible("owner", "alice")
		assert.True(t, ok)
		assert.Equal(t, "owner@example.com", email)
	})

	t.Run("own file never notifies", func(t *testing.T) {
		_, ok := g.OwnerEligible("owner", "owner")
		assert.False(t, ok)
	})

	t.Run("unresolvable owner", func(t *testing.T) {
		_, ok := g.OwnerEligible("stranger", "alice")
		assert.False(t, ok)
	})

	t.Run("empty owner", func(t *testing.T) {
		_, ok := g.OwnerEligible("", "alice")
		assert.False(t, ok)
	})
}

func TestMentionEligible(t *testing.T) {
	g := testGate()

	t.Run("valid mention", func(t *testing.T) {
		email, ok := g.MentionEligible("bob", "alice")
		assert.True(t, ok)
		assert.Equal(t, "bob@example.com", email)
	})

	t.Run("self mention dropped", func(t *testing.T) {
		_, ok := g.MentionEligible("alice", "alice")
		assert.False(t, ok)
	})

	t.Run("self mention case insensitive", func(t *testing.T) {
		_, ok := g.MentionEligible("Alice", "alice")
		assert.False(t, ok)
	})
}

func TestPlan(t *testing.T) {
	g := testGate()

	t.Run("owner plus mentions", func(t *testing.T) {
		got := g.Plan("owner", "carol", []string{"alice", "bob"})
		require.Len(t, got, 3)
		assert.Equal(t, Recipient{Username: "owner", Email: "owner@example.com", Reason: ReasonOwner}, got[0])
		assert.Equal(t, Recipient{Username: "alice", Email: "alice@example.com", Reason: ReasonMention}, got[1])
		assert.Equal(t, Recipient{Username: "bob", Email: "bob@example.com", Reason: ReasonMention}, got[2])
	})

	t.Run("mentioned owner gets one email", func(t *testing.T) {
		got := g.Plan("owner", "carol", []string{"owner", "alice"})
		require.Len(t, got, 2)
		assert.Equal(t, ReasonOwner, got[0].Reason)
		assert.Equal(t, "owner", got[0].Username)
		assert.Equal(t, "alice", got[1].Username)
	})

	t.Run("author commenting own file with mentions", func(t *testing.T) {
		got := g.Plan("carol", "carol", []string{"alice"})
		require.Len(t, got, 1)
		assert.Equal(t, ReasonMention, got[0].Reason)
	})

	t.Run("unresolvable recipients dropped", func(t *testing.T) {
		got := g.Plan("stranger", "carol", []string{"ghost"})
		assert.Empty(t, got)
	})
}
