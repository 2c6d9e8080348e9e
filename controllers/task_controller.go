package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/probfile/tracker/models"
	"github.com/probfile/tracker/utils"
)

// TaskController manages tasks and subtasks inside a problem file.
type TaskController struct {
	db *gorm.DB
}

// NewTaskController creates a new TaskController instance.
func NewTaskController(db *gorm.DB) *TaskController {
	return &TaskController{db: db}
}

// fileForTask loads the owning file for permission checks.
func (t *TaskController) fileForTask(taskID string) (models.ProblemFile, models.Task, error) {
	var task models.Task
	if err := t.db.Preload("Subtasks").First(&task, "id = ?", taskID).Error; err != nil {
		return models.ProblemFile{}, models.Task{}, err
	}
	var file models.ProblemFile
	if err := t.db.First(&file, "id = ?", task.ProblemFileID).Error; err != nil {
		return models.ProblemFile{}, task, err
	}
	return file, task, nil
}

// CreateTask adds a task to a file.
func (t *TaskController) CreateTask(ctx *gin.Context) {
	actor, ok := getActor(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req struct {
		ProblemFileID string `json:"problem_file_id" binding:"required"`
		Name          string `json:"name" binding:"required,max=255"`
		Description   string `json:"description"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40040, "invalid request payload")
		return
	}

	var file models.ProblemFile
	if err := t.db.First(&file, "id = ?", req.ProblemFileID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40420, "file not found")
		return
	}
	if !utils.CanEditFile(actor.Role, actor.Username, file.Owner) {
		utils.Error(ctx, http.StatusForbidden, 40321, "no permission to edit this file")
		return
	}

	task := models.Task{
		ID:            uuid.NewString(),
		ProblemFileID: file.ID,
		Name:          utils.Sanitize(req.Name),
		Description:   utils.Sanitize(req.Description),
	}
	if err := t.db.Create(&task).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50040, "failed to create task")
		return
	}

	t.touchFile(file.ID)
	utils.Success(ctx, gin.H{"task": task})
}

// UpdateTask renames or re-describes a task.
func (t *TaskController) UpdateTask(ctx *gin.Context) {
	actor, ok := getActor(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	file, task, err := t.fileForTask(ctx.Param("id"))
	if err != nil {
		utils.Error(ctx, http.StatusNotFound, 40440, "task not found")
		return
	}
	if !utils.CanEditFile(actor.Role, actor.Username, file.Owner) {
		utils.Error(ctx, http.StatusForbidden, 40321, "no permission to edit this file")
		return
	}

	var req struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40041, "invalid request payload")
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil && strings.TrimSpace(*req.Name) != "" {
		updates["name"] = utils.Sanitize(*req.Name)
	}
	if req.Description != nil {
		updates["description"] = utils.Sanitize(*req.Description)
	}
	if len(updates) > 0 {
		if err := t.db.Model(&task).Updates(updates).Error; err != nil {
			utils.Error(ctx, http.StatusInternalServerError, 50041, "failed to update task")
			return
		}
		t.touchFile(file.ID)
	}

	utils.Success(ctx, gin.H{"task": task})
}

// DeleteTask removes a task and its subtasks. Admin and Partner only.
func (t *TaskController) DeleteTask(ctx *gin.Context) {
	actor, ok := getActor(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	if !utils.CanDeleteItems(actor.Role) {
		utils.Error(ctx, http.StatusForbidden, 40340, "no permission to delete tasks")
		return
	}

	file, task, err := t.fileForTask(ctx.Param("id"))
	if err != nil {
		utils.Error(ctx, http.StatusNotFound, 40440, "task not found")
		return
	}
	if err := t.db.Select("Subtasks").Delete(&task).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50042, "failed to delete task")
		return
	}

	t.touchFile(file.ID)
	utils.Success(ctx, gin.H{"deleted": task.ID})
}

// CreateSubtask adds a subtask under a task.
func (t *TaskController) CreateSubtask(ctx *gin.Context) {
	actor, ok := getActor(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req struct {
		TaskID           string    `json:"task_id" binding:"required"`
		Name             string    `json:"name" binding:"required,max=255"`
		AssignedTo       string    `json:"assigned_to"`
		StartDate        time.Time `json:"start_date"`
		ProjectedEndDate time.Time `json:"projected_end_date"`
		Progress         int       `json:"progress"`
		Notes            string    `json:"notes"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40050, "invalid request payload")
		return
	}

	file, task, err := t.fileForTask(req.TaskID)
	if err != nil {
		utils.Error(ctx, http.StatusNotFound, 40440, "task not found")
		return
	}
	if !utils.CanEditFile(actor.Role, actor.Username, file.Owner) {
		utils.Error(ctx, http.StatusForbidden, 40321, "no permission to edit this file")
		return
	}

	now := time.Now()
	start := req.StartDate
	if start.IsZero() {
		start = now
	}
	end := req.ProjectedEndDate
	if end.IsZero() {
		end = start.AddDate(0, 0, 7)
	}

	subtask := models.Subtask{
		ID:               uuid.NewString(),
		TaskID:           task.ID,
		Name:             utils.Sanitize(req.Name),
		AssignedTo:       strings.TrimSpace(req.AssignedTo),
		StartDate:        start,
		ProjectedEndDate: end,
		Progress:         clampProgress(req.Progress),
		Notes:            utils.Sanitize(req.Notes),
	}
	if err := t.db.Create(&subtask).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50050, "failed to create subtask")
		return
	}

	t.touchFile(file.ID)
	utils.Success(ctx, gin.H{"subtask": subtask})
}

// UpdateSubtask edits a subtask. Assignees may update their own subtask's
// progress and notes even on files they cannot otherwise edit; reassignment
// stays with the file owner, Admins and Partners.
func (t *TaskController) UpdateSubtask(ctx *gin.Context) {
	actor, ok := getActor(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var subtask models.Subtask
	if err := t.db.First(&subtask, "id = ?", ctx.Param("id")).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40450, "subtask not found")
		return
	}
	file, _, err := t.fileForTask(subtask.TaskID)
	if err != nil {
		utils.Error(ctx, http.StatusNotFound, 40440, "task not found")
		return
	}

	canEditFile := utils.CanEditFile(actor.Role, actor.Username, file.Owner)
	isAssignee := strings.EqualFold(subtask.AssignedTo, actor.Username)
	if !canEditFile && !isAssignee {
		utils.Error(ctx, http.StatusForbidden, 40350, "no permission to edit this subtask")
		return
	}

	var req struct {
		Name             *string    `json:"name"`
		AssignedTo       *string    `json:"assigned_to"`
		StartDate        *time.Time `json:"start_date"`
		ProjectedEndDate *time.Time `json:"projected_end_date"`
		Progress         *int       `json:"progress"`
		Notes            *string    `json:"notes"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40051, "invalid request payload")
		return
	}

	updates := map[string]interface{}{}
	if req.Progress != nil {
		updates["progress"] = clampProgress(*req.Progress)
	}
	if req.Notes != nil {
		updates["notes"] = utils.Sanitize(*req.Notes)
	}
	if canEditFile {
		if req.Name != nil && strings.TrimSpace(*req.Name) != "" {
			updates["name"] = utils.Sanitize(*req.Name)
		}
		if req.AssignedTo != nil {
			updates["assigned_to"] = strings.TrimSpace(*req.AssignedTo)
		}
		if req.StartDate != nil {
			updates["start_date"] = *req.StartDate
		}
		if req.ProjectedEndDate != nil {
			updates["projected_end_date"] = *req.ProjectedEndDate
		}
	} else if req.AssignedTo != nil || req.Name != nil || req.StartDate != nil || req.ProjectedEndDate != nil {
		utils.Error(ctx, http.StatusForbidden, 40351, "assignees may only update progress and notes")
		return
	}

	if len(updates) > 0 {
		if err := t.db.Model(&subtask).Updates(updates).Error; err != nil {
			utils.Error(ctx, http.StatusInternalServerError, 50051, "failed to update subtask")
			return
		}
		t.touchFile(file.ID)
	}

	utils.Success(ctx, gin.H{"subtask": subtask})
}

// DeleteSubtask removes a subtask. Admin and Partner only. Comments attached
// to it are kept and show up as orphaned roots in their thread.
func (t *TaskController) DeleteSubtask(ctx *gin.Context) {
	actor, ok := getActor(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	if !utils.CanDeleteItems(actor.Role) {
		utils.Error(ctx, http.StatusForbidden, 40350, "no permission to delete subtasks")
		return
	}

	var subtask models.Subtask
	if err := t.db.First(&subtask, "id = ?", ctx.Param("id")).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40450, "subtask not found")
		return
	}
	if err := t.db.Delete(&subtask).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50052, "failed to delete subtask")
		return
	}

	if file, _, err := t.fileForTask(subtask.TaskID); err == nil {
		t.touchFile(file.ID)
	}
	utils.Success(ctx, gin.H{"deleted": subtask.ID})
}

func (t *TaskController) touchFile(fileID string) {
	_ = t.db.Model(&models.ProblemFile{}).Where("id = ?", fileID).
		Update("last_modified", time.Now()).Error
	utils.InvalidateByPrefix(fileCachePrefix)
}

func clampProgress(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
