package models

// Task is a main work item inside a problem file. Progress is derived from
// its subtasks, never stored.
type Task struct {
	ID            string    `gorm:"type:char(36);primaryKey" json:"id"`
	ProblemFileID string    `gorm:"type:char(36);index;not null" json:"problem_file_id"`
	Name          string    `gorm:"size:255;not null" json:"name"`
	Description   string    `gorm:"type:text" json:"description"`
	Subtasks      []Subtask `gorm:"foreignKey:TaskID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"subtasks,omitempty"`
}
