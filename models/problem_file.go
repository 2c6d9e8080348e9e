package models

import "time"

// ProblemFile is the top-level project container owning tasks and contacts.
// The owner is a username; it is the default notification target for comments.
type ProblemFile struct {
	ID               string    `gorm:"type:char(36);primaryKey" json:"id"`
	ProblemName      string    `gorm:"size:255;not null" json:"problem_name"`
	Owner            string    `gorm:"size:64;index;not null" json:"owner"`
	ProjectStartDate time.Time `json:"project_start_date"`
	ProjectEndDate   time.Time `json:"project_end_date"`
	DisplayWeek      int       `gorm:"default:1" json:"display_week"`
	CreatedDate      time.Time `json:"created_date"`
	LastModified     time.Time `json:"last_modified"`
	Tasks            []Task    `gorm:"foreignKey:ProblemFileID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"tasks,omitempty"`
}
