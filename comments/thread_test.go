package comments

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/probfile/tracker/models"
)

func mkComment(id, createdAt string, parentID *string) models.Comment {
	return models.Comment{
		ID:         id,
		EntityType: models.EntityTask,
		EntityID:   "task-1",
		UserName:   "alice",
		Text:       "text " + id,
		CreatedAt:  createdAt,
		ParentID:   parentID,
	}
}

func ptr(s string) *string { return &s }

func TestBuildThreadOrdering(t *testing.T) {
	// Roots A (oldest) and D (newest); A has replies B then C.
	all := []models.Comment{
		mkComment("A", "2026-01-01T10:00:00+00:00", nil),
		mkComment("B", "2026-01-01T11:00:00+00:00", ptr("A")),
		mkComment("C", "2026-01-01T12:00:00+00:00", ptr("A")),
		mkComment("D", "2026-01-02T09:00:00+00:00", nil),
	}

	thread := BuildThread(all)
	require.Len(t, thread, 2)

	// Roots newest first.
	assert.Equal(t, "D", thread[0].ID)
	assert.Equal(t, "A", thread[1].ID)

	// Replies oldest first.
	require.Len(t, thread[1].Replies, 2)
	assert.Equal(t, "B", thread[1].Replies[0].ID)
	assert.Equal(t, "C", thread[1].Replies[1].ID)
	assert.Empty(t, thread[0].Replies)
}

func TestBuildThreadInputOrderIrrelevant(t *testing.T) {
	all := []models.Comment{
		mkComment("C", "2026-01-01T12:00:00+00:00", ptr("A")),
		mkComment("D", "2026-01-02T09:00:00+00:00", nil),
		mkComment("A", "2026-01-01T10:00:00+00:00", nil),
		mkComment("B", "2026-01-01T11:00:00+00:00", ptr("A")),
	}

	thread := BuildThread(all)
	require.Len(t, thread, 2)
	assert.Equal(t, "D", thread[0].ID)
	assert.Equal(t, "A", thread[1].ID)
	require.Len(t, thread[1].Replies, 2)
	assert.Equal(t, "B", thread[1].Replies[0].ID)
}

func TestBuildThreadNestedReplies(t *testing.T) {
	all := []models.Comment{
		mkComment("A", "2026-01-01T10:00:00+00:00", nil),
		mkComment("B", "2026-01-01T11:00:00+00:00", ptr("A")),
		mkComment("C", "2026-01-01T12:00:00+00:00", ptr("B")),
	}

	thread := BuildThread(all)
	require.Len(t, thread, 1)
	require.Len(t, thread[0].Replies, 1)
	require.Len(t, thread[0].Replies[0].Replies, 1)
	assert.Equal(t, "C", thread[0].Replies[0].Replies[0].ID)
}

func TestBuildThreadMalformedTimestamps(t *testing.T) {
	// Malformed timestamps sort as the zero time: oldest possible, so such
	// roots sink to the end, and the build never fails.
	all := []models.Comment{
		mkComment("A", "not-a-date", nil),
		mkComment("B", "2026-01-01T10:00:00+00:00", nil),
		mkComment("C", "", nil),
	}

	thread := BuildThread(all)
	require.Len(t, thread, 3)
	assert.Equal(t, "B", thread[0].ID)
	// Zero-time ties break by id descending.
	assert.Equal(t, "C", thread[1].ID)
	assert.Equal(t, "A", thread[2].ID)
}

func TestBuildThreadOrphanedReplies(t *testing.T) {
	// Parent X was deleted; its reply surfaces as a root after the real
	// roots, keeping its own children.
	all := []models.Comment{
		mkComment("A", "2026-01-01T10:00:00+00:00", nil),
		mkComment("R", "2026-01-01T11:00:00+00:00", ptr("X")),
		mkComment("S", "2026-01-01T12:00:00+00:00", ptr("R")),
	}

	thread := BuildThread(all)
	require.Len(t, thread, 2)
	assert.Equal(t, "A", thread[0].ID)
	assert.Equal(t, "R", thread[1].ID)
	require.Len(t, thread[1].Replies, 1)
	assert.Equal(t, "S", thread[1].Replies[0].ID)
}

func TestBuildThreadEmpty(t *testing.T) {
	assert.Empty(t, BuildThread(nil))
	assert.Empty(t, BuildThread([]models.Comment{}))
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want time.Time
	}{
		{"explicit offset", "2026-01-02T15:04:05+00:00", time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)},
		{"trailing z", "2026-01-02T15:04:05Z", time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)},
		{"fractional seconds", "2026-01-02T15:04:05.123456+00:00", time.Date(2026, 1, 2, 15, 4, 5, 123456000, time.UTC)},
		{"no zone", "2026-01-02T15:04:05", time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)},
		{"space separator", "2026-01-02 15:04:05", time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)},
		{"empty", "", time.Time{}},
		{"garbage", "yesterday-ish", time.Time{}},
		{"whitespace only", "   ", time.Time{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseTimestamp(tt.raw)
			assert.True(t, tt.want.Equal(got), "got %v, want %v", got, tt.want)
		})
	}
}
