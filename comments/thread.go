package comments

import (
	"sort"
	"strings"
	"time"

	"github.com/probfile/tracker/models"
)

// Node is one comment in a rendered thread with its direct replies attached.
type Node struct {
	models.Comment
	Replies []*Node `json:"replies"`
}

// BuildThread assembles a flat set of comments into display order: root
// comments newest first, each root's replies oldest first, recursively. The
// asymmetry is deliberate and mirrors how the comment section has always
// rendered. Ordering depends only on stored timestamps, never on slice or
// insertion order; ties fall back to id so output is reproducible.
func BuildThread(all []models.Comment) []*Node {
	byParent := make(map[string][]*Node, len(all))
	ids := make(map[string]bool, len(all))
	var roots []*Node
	for i := range all {
		n := &Node{Comment: all[i], Replies: []*Node{}}
		ids[n.ID] = true
		if n.IsReply() {
			byParent[*n.ParentID] = append(byParent[*n.ParentID], n)
		} else {
			roots = append(roots, n)
		}
	}

	sort.SliceStable(roots, func(i, j int) bool {
		ti, tj := ParseTimestamp(roots[i].CreatedAt), ParseTimestamp(roots[j].CreatedAt)
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return roots[i].ID > roots[j].ID
	})

	for _, n := range roots {
		attachReplies(n, byParent)
	}
	// Orphaned replies whose parent was deleted still need a home: surface
	// them as roots at the end so they stay addressable. Replies nested under
	// an orphan keep their place beneath it.
	var orphans []*Node
	for parentID, nodes := range byParent {
		if !ids[parentID] {
			orphans = append(orphans, nodes...)
		}
	}
	sort.SliceStable(orphans, func(i, j int) bool {
		ti, tj := ParseTimestamp(orphans[i].CreatedAt), ParseTimestamp(orphans[j].CreatedAt)
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return orphans[i].ID > orphans[j].ID
	})
	for _, n := range orphans {
		attachReplies(n, byParent)
	}
	return append(roots, orphans...)
}

func attachReplies(n *Node, byParent map[string][]*Node) {
	replies := byParent[n.ID]
	delete(byParent, n.ID)
	sort.SliceStable(replies, func(i, j int) bool {
		ti, tj := ParseTimestamp(replies[i].CreatedAt), ParseTimestamp(replies[j].CreatedAt)
		if !ti.Equal(tj) {
			return ti.Before(tj)
		}
		return replies[i].ID < replies[j].ID
	})
	n.Replies = replies
	for _, r := range replies {
		attachReplies(r, byParent)
	}
}

// ParseTimestamp turns a stored created_at value into a sortable time. The
// column has seen several shapes over the data's life: empty, ISO-8601 with a
// trailing Z, ISO-8601 with an explicit offset, and ISO-8601 with no zone at
// all. The cascade tries each in turn and falls back to the zero time so the
// thread sort always completes.
func ParseTimestamp(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}
	if strings.HasSuffix(raw, "Z") {
		if t, err := time.Parse(time.RFC3339, strings.TrimSuffix(raw, "Z")+"+00:00"); err == nil {
			return t
		}
	}
	for _, layout := range []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05.999999999",
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
	} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}
