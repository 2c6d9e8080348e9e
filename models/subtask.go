package models

import "time"

// Subtask carries the assignee, schedule and progress for a slice of a task.
type Subtask struct {
	ID               string    `gorm:"type:char(36);primaryKey" json:"id"`
	TaskID           string    `gorm:"type:char(36);index;not null" json:"task_id"`
	Name             string    `gorm:"size:255;not null" json:"name"`
	AssignedTo       string    `gorm:"size:64;index" json:"assigned_to"`
	StartDate        time.Time `json:"start_date"`
	ProjectedEndDate time.Time `json:"projected_end_date"`
	Progress         int       `gorm:"default:0" json:"progress"`
	Notes            string    `gorm:"type:text" json:"notes"`
}

// Overdue reports whether the subtask has passed its projected end date
// without reaching completion.
func (s Subtask) Overdue(now time.Time) bool {
	return s.Progress < 100 && s.ProjectedEndDate.Before(now.Truncate(24*time.Hour))
}
