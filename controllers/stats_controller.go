package controllers

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/probfile/tracker/comments"
	"github.com/probfile/tracker/models"
	"github.com/probfile/tracker/utils"
)

// StatsController serves the dashboard, the executive summary and the export
// endpoints.
type StatsController struct {
	db    *gorm.DB
	store *comments.Store
}

// NewStatsController creates a new StatsController instance.
func NewStatsController(db *gorm.DB) *StatsController {
	return &StatsController{db: db, store: comments.NewStore(db)}
}

// visibleFiles loads the files the actor may see, with full task trees.
func (s *StatsController) visibleFiles(actor comments.Actor) ([]models.ProblemFile, error) {
	query := scopeVisibleFiles(s.db.Model(&models.ProblemFile{}).Preload("Tasks.Subtasks"), actor)
	var files []models.ProblemFile
	err := query.Order("last_modified DESC").Find(&files).Error
	return files, err
}

// Dashboard aggregates the caller's visible files into counters, the
// overdue work queue, per-file comment/contact counts, and a recent
// activity feed.
func (s *StatsController) Dashboard(ctx *gin.Context) {
	actor, ok := getActor(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	files, err := s.visibleFiles(actor)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50070, "failed to retrieve files")
		return
	}

	type overdueItem struct {
		FileID      string    `json:"file_id"`
		ProblemName string    `json:"problem_name"`
		TaskName    string    `json:"task_name"`
		SubtaskName string    `json:"subtask_name"`
		AssignedTo  string    `json:"assigned_to"`
		DueDate     time.Time `json:"due_date"`
		Progress    int       `json:"progress"`
	}

	now := time.Now()
	var taskCount, subtaskCount, completed int
	var progressSum float64
	overdue := make([]overdueItem, 0)
	myAssignments := 0

	fileIDs := make([]string, 0, len(files))
	var taskIDs, subIDs []string
	entityFileID := map[string]string{}

	for _, file := range files {
		fileIDs = append(fileIDs, file.ID)
		taskCount += len(file.Tasks)
		progressSum += utils.ProjectProgress(file.Tasks)
		for _, task := range file.Tasks {
			taskIDs = append(taskIDs, task.ID)
			entityFileID[task.ID] = file.ID
			for _, st := range task.Subtasks {
				subIDs = append(subIDs, st.ID)
				entityFileID[st.ID] = file.ID
				subtaskCount++
				if st.Progress >= 100 {
					completed++
				}
				if st.AssignedTo == actor.Username {
					myAssignments++
				}
				if st.Overdue(now) {
					overdue = append(overdue, overdueItem{
						FileID:      file.ID,
						ProblemName: file.ProblemName,
						TaskName:    task.Name,
						SubtaskName: st.Name,
						AssignedTo:  st.AssignedTo,
						DueDate:     st.ProjectedEndDate,
						Progress:    st.Progress,
					})
				}
			}
		}
	}

	avgProgress := 0.0
	if len(files) > 0 {
		avgProgress = progressSum / float64(len(files))
	}

	allComments := s.commentsForEntities(taskIDs, subIDs)
	recentContacts := s.recentContacts(fileIDs)

	commentCounts := map[string]int64{}
	for _, c := range allComments {
		commentCounts[entityFileID[c.EntityID]]++
	}
	contactCounts := s.contactCounts(fileIDs)

	type dashboardFile struct {
		FileID       string  `json:"file_id"`
		ProblemName  string  `json:"problem_name"`
		Owner        string  `json:"owner"`
		Progress     float64 `json:"progress"`
		CommentCount int64   `json:"comment_count"`
		ContactCount int64   `json:"contact_count"`
	}
	fileRows := make([]dashboardFile, 0, len(files))
	for _, file := range files {
		fileRows = append(fileRows, dashboardFile{
			FileID:       file.ID,
			ProblemName:  file.ProblemName,
			Owner:        file.Owner,
			Progress:     utils.ProjectProgress(file.Tasks),
			CommentCount: commentCounts[file.ID],
			ContactCount: contactCounts[file.ID],
		})
	}

	utils.Success(ctx, gin.H{
		"file_count":         len(files),
		"task_count":         taskCount,
		"subtask_count":      subtaskCount,
		"completed_subtasks": completed,
		"average_progress":   avgProgress,
		"my_assignments":     myAssignments,
		"overdue":            overdue,
		"files":              fileRows,
		"recent_activity":    buildActivityFeed(files, allComments, recentContacts, activityFeedLimit),
	})
}

func (s *StatsController) commentsForEntities(taskIDs, subIDs []string) []models.Comment {
	q := s.db.Model(&models.Comment{})
	switch {
	case len(taskIDs) > 0 && len(subIDs) > 0:
		q = q.Where("(entity_type = ? AND entity_id IN ?) OR (entity_type = ? AND entity_id IN ?)",
			models.EntityTask, taskIDs, models.EntitySubtask, subIDs)
	case len(taskIDs) > 0:
		q = q.Where("entity_type = ? AND entity_id IN ?", models.EntityTask, taskIDs)
	case len(subIDs) > 0:
		q = q.Where("entity_type = ? AND entity_id IN ?", models.EntitySubtask, subIDs)
	default:
		return nil
	}
	var out []models.Comment
	if err := q.Find(&out).Error; err != nil {
		return nil
	}
	return out
}

func (s *StatsController) recentContacts(fileIDs []string) []models.Contact {
	if len(fileIDs) == 0 {
		return nil
	}
	var out []models.Contact
	if err := s.db.Where("problem_file_id IN ?", fileIDs).
		Order("created_at DESC").Limit(50).Find(&out).Error; err != nil {
		return nil
	}
	return out
}

func (s *StatsController) contactCounts(fileIDs []string) map[string]int64 {
	counts := map[string]int64{}
	if len(fileIDs) == 0 {
		return counts
	}
	var rows []struct {
		ProblemFileID string
		N             int64
	}
	if err := s.db.Model(&models.Contact{}).Select("problem_file_id, COUNT(*) AS n").
		Where("problem_file_id IN ?", fileIDs).Group("problem_file_id").Scan(&rows).Error; err != nil {
		return counts
	}
	for _, r := range rows {
		counts[r.ProblemFileID] = r.N
	}
	return counts
}

// ExecutiveSummary gives one row per visible file: progress, overdue count,
// comment activity and schedule window.
func (s *StatsController) ExecutiveSummary(ctx *gin.Context) {
	actor, ok := getActor(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	files, err := s.visibleFiles(actor)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50070, "failed to retrieve files")
		return
	}

	utils.Success(ctx, gin.H{"rows": s.summaryRows(files), "generated_at": time.Now()})
}

type summaryRow struct {
	FileID       string    `json:"file_id"`
	ProblemName  string    `json:"problem_name"`
	Owner        string    `json:"owner"`
	Progress     float64   `json:"progress"`
	TaskCount    int       `json:"task_count"`
	SubtaskCount int       `json:"subtask_count"`
	OverdueCount int       `json:"overdue_count"`
	CommentCount int64     `json:"comment_count"`
	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date"`
	LastModified time.Time `json:"last_modified"`
}

func (s *StatsController) summaryRows(files []models.ProblemFile) []summaryRow {
	now := time.Now()
	rows := make([]summaryRow, 0, len(files))
	for _, file := range files {
		row := summaryRow{
			FileID:       file.ID,
			ProblemName:  file.ProblemName,
			Owner:        file.Owner,
			Progress:     utils.ProjectProgress(file.Tasks),
			TaskCount:    len(file.Tasks),
			CommentCount: s.store.CountForFile(file.ID),
			StartDate:    file.ProjectStartDate,
			EndDate:      file.ProjectEndDate,
			LastModified: file.LastModified,
		}
		for _, task := range file.Tasks {
			row.SubtaskCount += len(task.Subtasks)
			for _, st := range task.Subtasks {
				if st.Overdue(now) {
					row.OverdueCount++
				}
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// ExportSummaryCSV streams the executive summary as a CSV download.
func (s *StatsController) ExportSummaryCSV(ctx *gin.Context) {
	actor, ok := getActor(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	files, err := s.visibleFiles(actor)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50070, "failed to retrieve files")
		return
	}

	filename := fmt.Sprintf("summary_%s.csv", time.Now().Format("20060102"))
	ctx.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	ctx.Header("Content-Type", "text/csv; charset=utf-8")

	w := csv.NewWriter(ctx.Writer)
	_ = w.Write([]string{"problem_name", "owner", "progress", "tasks", "subtasks", "overdue", "comments", "start_date", "end_date", "last_modified"})
	for _, row := range s.summaryRows(files) {
		_ = w.Write([]string{
			row.ProblemName,
			row.Owner,
			strconv.FormatFloat(row.Progress, 'f', 1, 64),
			strconv.Itoa(row.TaskCount),
			strconv.Itoa(row.SubtaskCount),
			strconv.Itoa(row.OverdueCount),
			strconv.FormatInt(row.CommentCount, 10),
			row.StartDate.Format("2006-01-02"),
			row.EndDate.Format("2006-01-02"),
			row.LastModified.Format(time.RFC3339),
		})
	}
	w.Flush()
}

// ExportAll dumps every file, task, subtask, contact and comment as one JSON
// document. Admin only.
func (s *StatsController) ExportAll(ctx *gin.Context) {
	actor, ok := getActor(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	if !utils.CanAccessDataManagement(actor.Role) {
		utils.Error(ctx, http.StatusForbidden, 40370, "data management is admin only")
		return
	}

	var files []models.ProblemFile
	if err := s.db.Preload("Tasks.Subtasks").Find(&files).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50071, "failed to export files")
		return
	}
	var contacts []models.Contact
	if err := s.db.Find(&contacts).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50072, "failed to export contacts")
		return
	}
	var commentRows []models.Comment
	if err := s.db.Find(&commentRows).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50073, "failed to export comments")
		return
	}

	utils.Success(ctx, gin.H{
		"exported_at": time.Now(),
		"files":       files,
		"contacts":    contacts,
		"comments":    commentRows,
	})
}
