package controllers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/probfile/tracker/models"
	"github.com/probfile/tracker/utils"
)

const (
	fileCachePrefix = "tracker:files:"
	fileCacheTTL    = 30 * time.Second
)

// FileController manages problem files: the top-level project containers.
type FileController struct {
	db *gorm.DB
}

// NewFileController creates a new FileController instance.
func NewFileController(db *gorm.DB) *FileController {
	return &FileController{db: db}
}

// ListFiles returns the files visible to the caller: all of them for Admins
// and Partners, only owned files otherwise.
func (f *FileController) ListFiles(ctx *gin.Context) {
	actor, ok := getActor(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	cacheKey := fileCachePrefix + "list:" + actor.Role + ":" + actor.Username
	if raw, hit := utils.CacheGetBytes(cacheKey); hit {
		ctx.Data(http.StatusOK, "application/json; charset=utf-8", raw)
		return
	}

	query := scopeVisibleFiles(f.db.Model(&models.ProblemFile{}).Preload("Tasks.Subtasks"), actor)

	var files []models.ProblemFile
	if err := query.Order("last_modified DESC").Find(&files).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50020, "failed to retrieve files")
		return
	}

	type fileSummary struct {
		models.ProblemFile
		Progress  float64 `json:"progress"`
		TaskCount int     `json:"task_count"`
	}
	summaries := make([]fileSummary, 0, len(files))
	for _, file := range files {
		summaries = append(summaries, fileSummary{
			ProblemFile: file,
			Progress:    utils.ProjectProgress(file.Tasks),
			TaskCount:   len(file.Tasks),
		})
	}

	payload := gin.H{"items": summaries, "total": len(summaries)}
	utils.CacheSetJSON(cacheKey, utils.JSONResponse{Code: 0, Message: "success", Data: payload}, fileCacheTTL)
	utils.Success(ctx, payload)
}

// GetFile returns one file with its full task tree. Overdue subtasks are
// pushed out by a week on read, with a note recording the move.
func (f *FileController) GetFile(ctx *gin.Context) {
	actor, ok := getActor(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var file models.ProblemFile
	if err := f.db.Preload("Tasks.Subtasks").First(&file, "id = ?", ctx.Param("id")).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40420, "file not found")
		return
	}
	if !canViewFile(f.db, actor, file) {
		utils.Error(ctx, http.StatusForbidden, 40320, "no access to this file")
		return
	}

	pushed := f.pushOverdueSubtasks(&file)
	if pushed > 0 {
		utils.InvalidateByPrefix(fileCachePrefix)
	}

	utils.Success(ctx, gin.H{
		"file":            file,
		"progress":        utils.ProjectProgress(file.Tasks),
		"overdue_pushed":  pushed,
		"can_edit":        utils.CanEditFile(actor.Role, actor.Username, file.Owner),
		"can_delete":      utils.CanDeleteItems(actor.Role),
		"manage_contacts": utils.CanManageContacts(actor.Role, actor.Username, file.Owner),
	})
}

// pushOverdueSubtasks advances every overdue subtask's projected end date by
// one week and appends an audit note. Returns how many were moved.
func (f *FileController) pushOverdueSubtasks(file *models.ProblemFile) int {
	now := time.Now()
	pushed := 0
	for ti := range file.Tasks {
		for si := range file.Tasks[ti].Subtasks {
			st := &file.Tasks[ti].Subtasks[si]
			if !st.Overdue(now) {
				continue
			}
			oldEnd := st.ProjectedEndDate
			st.ProjectedEndDate = oldEnd.AddDate(0, 0, 7)
			note := fmt.Sprintf("AUTO-UPDATE %s: projected end moved from %s to %s",
				now.Format("2006-01-02"), oldEnd.Format("2006-01-02"), st.ProjectedEndDate.Format("2006-01-02"))
			if st.Notes != "" {
				st.Notes += "\n"
			}
			st.Notes += note
			if err := f.db.Model(&models.Subtask{}).Where("id = ?", st.ID).
				Updates(map[string]interface{}{"projected_end_date": st.ProjectedEndDate, "notes": st.Notes}).Error; err != nil {
				continue
			}
			pushed++
		}
	}
	if pushed > 0 {
		_ = f.db.Model(&models.ProblemFile{}).Where("id = ?", file.ID).
			Update("last_modified", now).Error
	}
	return pushed
}

// CreateFile creates a new problem file owned by the caller unless an Admin
// or Partner names another owner.
func (f *FileController) CreateFile(ctx *gin.Context) {
	actor, ok := getActor(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req struct {
		ProblemName      string    `json:"problem_name" binding:"required,max=255"`
		Owner            string    `json:"owner"`
		ProjectStartDate time.Time `json:"project_start_date"`
		ProjectEndDate   time.Time `json:"project_end_date"`
		DisplayWeek      int       `json:"display_week"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
		return
	}

	owner := strings.TrimSpace(req.Owner)
	if owner == "" || !utils.CanEditAllFiles(actor.Role) {
		owner = actor.Username
	}

	now := time.Now()
	start := req.ProjectStartDate
	if start.IsZero() {
		start = now
	}
	end := req.ProjectEndDate
	if end.IsZero() {
		end = start.AddDate(0, 0, 56)
	}
	week := req.DisplayWeek
	if week < 1 {
		week = 1
	}

	file := models.ProblemFile{
		ID:               uuid.NewString(),
		ProblemName:      utils.Sanitize(req.ProblemName),
		Owner:            owner,
		ProjectStartDate: start,
		ProjectEndDate:   end,
		DisplayWeek:      week,
		CreatedDate:      now,
		LastModified:     now,
	}
	if err := f.db.Create(&file).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50021, "failed to create file")
		return
	}

	utils.InvalidateByPrefix(fileCachePrefix)
	utils.Success(ctx, gin.H{"file": file})
}

// UpdateFile updates file metadata. Only Admins and Partners may reassign
// the owner.
func (f *FileController) UpdateFile(ctx *gin.Context) {
	actor, ok := getActor(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var file models.ProblemFile
	if err := f.db.First(&file, "id = ?", ctx.Param("id")).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40420, "file not found")
		return
	}
	if !utils.CanEditFile(actor.Role, actor.Username, file.Owner) {
		utils.Error(ctx, http.StatusForbidden, 40321, "no permission to edit this file")
		return
	}

	var req struct {
		ProblemName      *string    `json:"problem_name"`
		Owner            *string    `json:"owner"`
		ProjectStartDate *time.Time `json:"project_start_date"`
		ProjectEndDate   *time.Time `json:"project_end_date"`
		DisplayWeek      *int       `json:"display_week"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40021, "invalid request payload")
		return
	}

	updates := map[string]interface{}{"last_modified": time.Now()}
	if req.ProblemName != nil && strings.TrimSpace(*req.ProblemName) != "" {
		updates["problem_name"] = utils.Sanitize(*req.ProblemName)
	}
	if req.Owner != nil && utils.CanEditAllFiles(actor.Role) {
		updates["owner"] = strings.TrimSpace(*req.Owner)
	}
	if req.ProjectStartDate != nil {
		updates["project_start_date"] = *req.ProjectStartDate
	}
	if req.ProjectEndDate != nil {
		updates["project_end_date"] = *req.ProjectEndDate
	}
	if req.DisplayWeek != nil && *req.DisplayWeek >= 1 {
		updates["display_week"] = *req.DisplayWeek
	}

	if err := f.db.Model(&file).Updates(updates).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50022, "failed to update file")
		return
	}

	utils.InvalidateByPrefix(fileCachePrefix)
	utils.Success(ctx, gin.H{"file": file})
}

// DeleteFile removes a file and cascades to its tasks and subtasks. Comments
// on those entities are left in place; a missing parent entity simply stops
// resolving an owner.
func (f *FileController) DeleteFile(ctx *gin.Context) {
	actor, ok := getActor(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	if !utils.CanDeleteItems(actor.Role) {
		utils.Error(ctx, http.StatusForbidden, 40322, "no permission to delete files")
		return
	}

	var file models.ProblemFile
	if err := f.db.First(&file, "id = ?", ctx.Param("id")).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40420, "file not found")
		return
	}
	if err := f.db.Select("Tasks").Delete(&file).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50023, "failed to delete file")
		return
	}

	utils.InvalidateByPrefix(fileCachePrefix)
	utils.Success(ctx, gin.H{"deleted": file.ID})
}

// GanttData returns the flattened bar list a Gantt chart renders from: one
// bar per subtask plus a summary bar per task.
func (f *FileController) GanttData(ctx *gin.Context) {
	actor, ok := getActor(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var file models.ProblemFile
	if err := f.db.Preload("Tasks.Subtasks").First(&file, "id = ?", ctx.Param("id")).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40420, "file not found")
		return
	}
	if !canViewFile(f.db, actor, file) {
		utils.Error(ctx, http.StatusForbidden, 40320, "no access to this file")
		return
	}

	type ganttBar struct {
		ID         string    `json:"id"`
		ParentID   string    `json:"parent_id,omitempty"`
		Label      string    `json:"label"`
		Kind       string    `json:"kind"`
		Start      time.Time `json:"start"`
		End        time.Time `json:"end"`
		Progress   float64   `json:"progress"`
		AssignedTo string    `json:"assigned_to,omitempty"`
		Overdue    bool      `json:"overdue"`
	}

	now := time.Now()
	bars := make([]ganttBar, 0, len(file.Tasks)*4)
	for _, task := range file.Tasks {
		start, end := taskSpan(task, file)
		bars = append(bars, ganttBar{
			ID:       task.ID,
			Label:    task.Name,
			Kind:     "task",
			Start:    start,
			End:      end,
			Progress: utils.TaskProgress(task.Subtasks),
		})
		for _, st := range task.Subtasks {
			bars = append(bars, ganttBar{
				ID:         st.ID,
				ParentID:   task.ID,
				Label:      st.Name,
				Kind:       "subtask",
				Start:      st.StartDate,
				End:        st.ProjectedEndDate,
				Progress:   float64(st.Progress),
				AssignedTo: st.AssignedTo,
				Overdue:    st.Overdue(now),
			})
		}
	}

	utils.Success(ctx, gin.H{
		"file_id":      file.ID,
		"problem_name": file.ProblemName,
		"display_week": file.DisplayWeek,
		"window_start": file.ProjectStartDate,
		"window_end":   file.ProjectEndDate,
		"bars":         bars,
	})
}

// taskSpan derives a task's bar from the extremes of its subtasks, falling
// back to the file window when it has none.
func taskSpan(task models.Task, file models.ProblemFile) (time.Time, time.Time) {
	if len(task.Subtasks) == 0 {
		return file.ProjectStartDate, file.ProjectEndDate
	}
	start := task.Subtasks[0].StartDate
	end := task.Subtasks[0].ProjectedEndDate
	for _, st := range task.Subtasks[1:] {
		if st.StartDate.Before(start) {
			start = st.StartDate
		}
		if st.ProjectedEndDate.After(end) {
			end = st.ProjectedEndDate
		}
	}
	return start, end
}
