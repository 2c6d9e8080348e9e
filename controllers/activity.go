package controllers

import (
	"sort"
	"time"

	"github.com/probfile/tracker/comments"
	"github.com/probfile/tracker/models"
)

const activityFeedLimit = 10

// activityItem is one entry in the dashboard's recent-activity feed.
type activityItem struct {
	Kind        string    `json:"kind"`
	FileID      string    `json:"file_id"`
	ProblemName string    `json:"problem_name"`
	Summary     string    `json:"summary"`
	Actor       string    `json:"actor,omitempty"`
	When        time.Time `json:"when"`
}

// buildActivityFeed merges recent comments, contacts and subtask notes
// across the given files into one feed, newest first, capped at limit.
// Comments on entities outside the file set are skipped.
func buildActivityFeed(files []models.ProblemFile, comms []models.Comment, contacts []models.Contact, limit int) []activityItem {
	type fileRef struct{ id, name string }
	byEntity := map[string]fileRef{}
	byFile := map[string]fileRef{}

	items := make([]activityItem, 0, len(comms)+len(contacts))
	for _, file := range files {
		ref := fileRef{id: file.ID, name: file.ProblemName}
		byFile[file.ID] = ref
		for _, task := range file.Tasks {
			byEntity[task.ID] = ref
			for _, st := range task.Subtasks {
				byEntity[st.ID] = ref
				if st.Notes != "" {
					items = append(items, activityItem{
						Kind:        "note",
						FileID:      file.ID,
						ProblemName: file.ProblemName,
						Summary:     task.Name + " / " + st.Name,
						Actor:       st.AssignedTo,
						When:        file.LastModified,
					})
				}
			}
		}
	}

	for _, c := range comms {
		ref, ok := byEntity[c.EntityID]
		if !ok {
			continue
		}
		items = append(items, activityItem{
			Kind:        "comment",
			FileID:      ref.id,
			ProblemName: ref.name,
			Summary:     excerpt(c.Text, 80),
			Actor:       c.UserName,
			When:        comments.ParseTimestamp(c.CreatedAt),
		})
	}

	for _, ct := range contacts {
		ref, ok := byFile[ct.ProblemFileID]
		if !ok {
			continue
		}
		items = append(items, activityItem{
			Kind:        "contact",
			FileID:      ref.id,
			ProblemName: ref.name,
			Summary:     "added contact " + ct.Name,
			Actor:       ct.AddedBy,
			When:        ct.CreatedAt,
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].When.After(items[j].When)
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}

func excerpt(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max]) + "..."
}
