package models

import "time"

// Contact is an external person attached to a problem file's contact list.
type Contact struct {
	ID            string    `gorm:"type:char(36);primaryKey" json:"id"`
	ProblemFileID string    `gorm:"type:char(36);index;not null" json:"problem_file_id"`
	Name          string    `gorm:"size:255;not null" json:"name"`
	Organization  string    `gorm:"size:255" json:"organization"`
	Title         string    `gorm:"size:255" json:"title"`
	Email         string    `gorm:"size:255" json:"email"`
	Telephone     string    `gorm:"size:64" json:"telephone"`
	Comments      string    `gorm:"type:text" json:"comments"`
	AddedBy       string    `gorm:"size:64" json:"added_by"`
	CreatedAt     time.Time `json:"created_at"`
}
