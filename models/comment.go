package models

// Entity types a comment can attach to.
const (
	EntityTask    = "task"
	EntitySubtask = "subtask"
)

// Comment is an immutable note attached to a task or subtask. CreatedAt is
// stored as the raw ISO-8601 string the writer supplied; historical rows may
// carry a trailing Z, no timezone, or nothing at all, so ordering always goes
// through comments.ParseTimestamp rather than trusting the column.
// ParentID links replies to their parent; deleting a parent leaves replies in
// place (no cascade, no tombstone).
type Comment struct {
	ID         string  `gorm:"type:char(36);primaryKey" json:"id"`
	EntityType string  `gorm:"size:16;index:idx_comments_entity;not null" json:"entity_type"`
	EntityID   string  `gorm:"type:char(36);index:idx_comments_entity;not null" json:"entity_id"`
	UserName   string  `gorm:"size:64;not null" json:"user_name"`
	Text       string  `gorm:"type:text;not null" json:"text"`
	CreatedAt  string  `gorm:"size:64" json:"created_at"`
	ParentID   *string `gorm:"type:char(36);index" json:"parent_id"`
	UserRole   string  `gorm:"size:16;default:'User'" json:"user_role"`
}

// IsReply reports whether the comment references a parent.
func (c Comment) IsReply() bool {
	return c.ParentID != nil && *c.ParentID != ""
}
