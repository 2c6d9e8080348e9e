package comments

import (
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/probfile/tracker/models"
)

var commentColumns = []string{"id", "entity_type", "entity_id", "user_name", "text", "created_at", "parent_id", "user_role"}

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	gdb, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Discard,
	})
	require.NoError(t, err)
	return NewStore(gdb), mock
}

func commentRow(c models.Comment) *sqlmock.Rows {
	return sqlmock.NewRows(commentColumns).
		AddRow(c.ID, c.EntityType, c.EntityID, c.UserName, c.Text, c.CreatedAt, c.ParentID, c.UserRole)
}

func TestStoreSaveThenGet(t *testing.T) {
	store, mock := newMockStore(t)

	c := models.Comment{
		ID:         "c1",
		EntityType: models.EntityTask,
		EntityID:   "task-1",
		UserName:   "alice",
		Text:       "looks good",
		CreatedAt:  "2026-01-02T15:04:05+00:00",
		UserRole:   models.RoleUser,
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `comments`")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	require.True(t, store.Save(&c))

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `comments` WHERE id = ?")).
		WillReturnRows(commentRow(c))
	got, found := store.Get("c1")
	require.True(t, found)
	assert.Equal(t, c, got)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreSaveFailureReported(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `comments`")).
		WillReturnError(assert.AnError)

	c := models.Comment{ID: "c1", EntityType: models.EntityTask, EntityID: "task-1"}
	assert.False(t, store.Save(&c))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreDeleteLeavesReplies(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM `comments` WHERE id = ?")).
		WithArgs("A").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.True(t, store.Delete("A"))

	// The replies are still rows of the entity, and the thread builder
	// surfaces them as roots.
	parent := "A"
	reply := models.Comment{
		ID: "B", EntityType: models.EntityTask, EntityID: "task-1",
		UserName: "bob", Text: "follow-up",
		CreatedAt: "2026-01-02T16:00:00+00:00", ParentID: &parent,
	}
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `comments` WHERE entity_type = ? AND entity_id = ?")).
		WithArgs(models.EntityTask, "task-1").
		WillReturnRows(commentRow(reply))

	all, ok := store.ListByEntity(models.EntityTask, "task-1")
	require.True(t, ok)
	require.Len(t, all, 1)

	thread := BuildThread(all)
	require.Len(t, thread, 1)
	assert.Equal(t, "B", thread[0].ID)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreResolveOwnerSubtaskChain(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `subtasks` WHERE id = ?")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "task_id"}).AddRow("sub-1", "task-1"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `tasks` WHERE id = ?")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "problem_file_id"}).AddRow("task-1", "file-1"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `problem_files` WHERE id = ?")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "problem_name", "owner"}).AddRow("file-1", "Acme Rollout", "alice"))

	owner, fileName, ok := store.ResolveOwner(models.EntitySubtask, "sub-1")
	require.True(t, ok)
	assert.Equal(t, "alice", owner)
	assert.Equal(t, "Acme Rollout", fileName)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreResolveOwnerBrokenChain(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `subtasks` WHERE id = ?")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "task_id"}))

	owner, fileName, ok := store.ResolveOwner(models.EntitySubtask, "ghost")
	assert.False(t, ok)
	assert.Empty(t, owner)
	assert.Empty(t, fileName)

	_, _, ok = store.ResolveOwner("project", "file-1")
	assert.False(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}
