package comments

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/probfile/tracker/models"
)

// Actor is the request-scoped identity passed into comment operations in
// place of any ambient session state.
type Actor struct {
	Username string
	Role     string
}

// Store persists and retrieves comment rows and resolves the ownership chain
// entity -> task -> problem file. Every method reports failure as a result
// value; callers decide how to surface it.
type Store struct {
	db *gorm.DB
}

// NewStore creates a Store over the given database handle.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Save upserts a comment by id. Returns false when the write fails; the
// caller shows an error and nothing else proceeds.
func (s *Store) Save(c *models.Comment) bool {
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(c).Error
	return err == nil
}

// Delete removes a comment by id. Replies are intentionally left behind;
// see BuildThread for how orphans are surfaced.
func (s *Store) Delete(id string) bool {
	return s.db.Delete(&models.Comment{}, "id = ?", id).Error == nil
}

// Get fetches a single comment by id.
func (s *Store) Get(id string) (models.Comment, bool) {
	var c models.Comment
	if err := s.db.First(&c, "id = ?", id).Error; err != nil {
		return models.Comment{}, false
	}
	return c, true
}

// ListByEntity returns every comment, root and reply, for one entity.
// Ordering is BuildThread's job, not the store's.
func (s *Store) ListByEntity(entityType, entityID string) ([]models.Comment, bool) {
	var out []models.Comment
	err := s.db.Where("entity_type = ? AND entity_id = ?", entityType, entityID).Find(&out).Error
	return out, err == nil
}

// CountForFile counts comments attached to any task or subtask of a file.
func (s *Store) CountForFile(fileID string) int64 {
	var taskIDs []string
	if err := s.db.Model(&models.Task{}).Where("problem_file_id = ?", fileID).Pluck("id", &taskIDs).Error; err != nil || len(taskIDs) == 0 {
		return 0
	}
	var subtaskIDs []string
	_ = s.db.Model(&models.Subtask{}).Where("task_id IN ?", taskIDs).Pluck("id", &subtaskIDs).Error

	var n int64
	q := s.db.Model(&models.Comment{}).Where("entity_type = ? AND entity_id IN ?", models.EntityTask, taskIDs)
	if len(subtaskIDs) > 0 {
		q = q.Or("entity_type = ? AND entity_id IN ?", models.EntitySubtask, subtaskIDs)
	}
	_ = q.Count(&n).Error
	return n
}

// ResolveOwner walks entity -> (task ->) problem file and returns the file's
// owner and name. A broken hop anywhere in the chain yields ok=false, never
// an error: the comment section then renders read-only for notifications.
func (s *Store) ResolveOwner(entityType, entityID string) (owner, fileName string, ok bool) {
	switch entityType {
	case models.EntityTask:
		return s.ownerOfTask(entityID)
	case models.EntitySubtask:
		var sub models.Subtask
		if err := s.db.First(&sub, "id = ?", entityID).Error; err != nil {
			return "", "", false
		}
		return s.ownerOfTask(sub.TaskID)
	default:
		return "", "", false
	}
}

func (s *Store) ownerOfTask(taskID string) (string, string, bool) {
	var task models.Task
	if err := s.db.First(&task, "id = ?", taskID).Error; err != nil {
		return "", "", false
	}
	var file models.ProblemFile
	if err := s.db.First(&file, "id = ?", task.ProblemFileID).Error; err != nil {
		return "", "", false
	}
	return file.Owner, file.ProblemName, true
}

// EntityName returns the display name of a task or subtask for use in
// notification templates.
func (s *Store) EntityName(entityType, entityID string) string {
	switch entityType {
	case models.EntityTask:
		var task models.Task
		if err := s.db.First(&task, "id = ?", entityID).Error; err == nil {
			return task.Name
		}
	case models.EntitySubtask:
		var sub models.Subtask
		if err := s.db.First(&sub, "id = ?", entityID).Error; err == nil {
			return sub.Name
		}
	}
	return ""
}
