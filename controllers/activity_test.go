package controllers

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/probfile/tracker/models"
)

func feedFixtureFiles() []models.ProblemFile {
	return []models.ProblemFile{
		{
			ID:           "file-1",
			ProblemName:  "Acme Rollout",
			Owner:        "alice",
			LastModified: time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC),
			Tasks: []models.Task{
				{
					ID: "task-1", Name: "Design",
					Subtasks: []models.Subtask{
						{ID: "sub-1", Name: "Wireframes", AssignedTo: "bob", Notes: "waiting on sign-off"},
						{ID: "sub-2", Name: "Mockups", AssignedTo: "bob"},
					},
				},
			},
		},
	}
}

func TestBuildActivityFeedNewestFirst(t *testing.T) {
	files := feedFixtureFiles()
	comms := []models.Comment{
		{ID: "c1", EntityID: "task-1", UserName: "carol", Text: "old comment",
			CreatedAt: "2026-01-03T12:00:00+00:00"},
		{ID: "c2", EntityID: "sub-1", UserName: "dave", Text: "new comment",
			CreatedAt: "2026-01-07T12:00:00+00:00"},
	}
	contacts := []models.Contact{
		{ID: "ct1", ProblemFileID: "file-1", Name: "Eve Vendor", AddedBy: "alice",
			CreatedAt: time.Date(2026, 1, 6, 8, 0, 0, 0, time.UTC)},
	}

	feed := buildActivityFeed(files, comms, contacts, activityFeedLimit)
	require.Len(t, feed, 4)

	// Newest first: c2 (Jan 7), contact (Jan 6), note (Jan 5), c1 (Jan 3).
	assert.Equal(t, "comment", feed[0].Kind)
	assert.Equal(t, "new comment", feed[0].Summary)
	assert.Equal(t, "contact", feed[1].Kind)
	assert.Equal(t, "added contact Eve Vendor", feed[1].Summary)
	assert.Equal(t, "note", feed[2].Kind)
	assert.Equal(t, "Design / Wireframes", feed[2].Summary)
	assert.Equal(t, "bob", feed[2].Actor)
	assert.Equal(t, "comment", feed[3].Kind)

	for _, item := range feed {
		assert.Equal(t, "file-1", item.FileID)
		assert.Equal(t, "Acme Rollout", item.ProblemName)
	}
}

func TestBuildActivityFeedSkipsForeignEntities(t *testing.T) {
	files := feedFixtureFiles()
	comms := []models.Comment{
		{ID: "c1", EntityID: "unknown-task", UserName: "carol", Text: "stray",
			CreatedAt: "2026-01-07T12:00:00+00:00"},
	}
	contacts := []models.Contact{
		{ID: "ct1", ProblemFileID: "other-file", Name: "Stray Contact",
			CreatedAt: time.Date(2026, 1, 7, 8, 0, 0, 0, time.UTC)},
	}

	feed := buildActivityFeed(files, comms, contacts, activityFeedLimit)
	require.Len(t, feed, 1)
	assert.Equal(t, "note", feed[0].Kind)
}

func TestBuildActivityFeedRespectsLimit(t *testing.T) {
	files := feedFixtureFiles()
	var comms []models.Comment
	for i := 0; i < 20; i++ {
		comms = append(comms, models.Comment{
			ID: string(rune('a' + i)), EntityID: "task-1", UserName: "carol",
			Text: "chatter", CreatedAt: "2026-01-07T12:00:00+00:00",
		})
	}

	feed := buildActivityFeed(files, comms, nil, activityFeedLimit)
	assert.Len(t, feed, activityFeedLimit)
}

func TestExcerptTruncatesLongText(t *testing.T) {
	long := strings.Repeat("x", 100)
	got := excerpt(long, 80)
	assert.Len(t, []rune(got), 83)
	assert.True(t, strings.HasSuffix(got, "..."))

	assert.Equal(t, "short", excerpt("short", 80))
}
