package controllers

import (
	"gorm.io/gorm"

	"github.com/probfile/tracker/comments"
	"github.com/probfile/tracker/models"
	"github.com/probfile/tracker/utils"
)

// File visibility: Admins and Partners see every file; everyone else sees
// files they own plus files containing a subtask assigned to them.

const assignedFileExists = "owner = ? OR EXISTS (SELECT 1 FROM tasks JOIN subtasks ON subtasks.task_id = tasks.id WHERE tasks.problem_file_id = problem_files.id AND subtasks.assigned_to = ?)"

// scopeVisibleFiles narrows a problem_files query to what actor may see.
func scopeVisibleFiles(query *gorm.DB, actor comments.Actor) *gorm.DB {
	if utils.CanEditAllFiles(actor.Role) {
		return query
	}
	return query.Where(assignedFileExists, actor.Username, actor.Username)
}

// canViewFile reports whether actor may open one specific file.
func canViewFile(db *gorm.DB, actor comments.Actor, file models.ProblemFile) bool {
	if utils.CanEditAllFiles(actor.Role) || file.Owner == actor.Username {
		return true
	}
	var n int64
	err := db.Model(&models.Subtask{}).
		Joins("JOIN tasks ON tasks.id = subtasks.task_id").
		Where("tasks.problem_file_id = ? AND subtasks.assigned_to = ?", file.ID, actor.Username).
		Count(&n).Error
	return err == nil && n > 0
}
