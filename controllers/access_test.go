package controllers

import (
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/probfile/tracker/comments"
	"github.com/probfile/tracker/models"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
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
	return gdb, mock
}

func TestScopeVisibleFilesFiltersForRegularUsers(t *testing.T) {
	gdb, mock := newMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT * FROM `problem_files` WHERE owner = ? OR EXISTS (SELECT 1 FROM tasks JOIN subtasks ON subtasks.task_id = tasks.id WHERE tasks.problem_file_id = problem_files.id AND subtasks.assigned_to = ?)")).
		WithArgs("alice", "alice").
		WillReturnRows(sqlmock.NewRows([]string{"id", "problem_name", "owner"}).
			AddRow("file-1", "Acme Rollout", "bob"))

	var files []models.ProblemFile
	actor := comments.Actor{Username: "alice", Role: models.RoleUser}
	err := scopeVisibleFiles(gdb.Model(&models.ProblemFile{}), actor).Find(&files).Error
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "file-1", files[0].ID)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScopeVisibleFilesUnrestrictedForAdminAndPartner(t *testing.T) {
	for _, role := range []string{models.RoleAdmin, models.RolePartner} {
		t.Run(role, func(t *testing.T) {
			gdb, mock := newMockDB(t)

			mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `problem_files`")).
				WillReturnRows(sqlmock.NewRows([]string{"id", "problem_name", "owner"}))

			var files []models.ProblemFile
			actor := comments.Actor{Username: "root", Role: role}
			err := scopeVisibleFiles(gdb.Model(&models.ProblemFile{}), actor).Find(&files).Error
			require.NoError(t, err)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestCanViewFileGrantsAssignee(t *testing.T) {
	gdb, mock := newMockDB(t)

	file := models.ProblemFile{ID: "file-1", Owner: "bob"}
	actor := comments.Actor{Username: "carol", Role: models.RoleUser}

	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT count(*) FROM `subtasks` JOIN tasks ON tasks.id = subtasks.task_id WHERE tasks.problem_file_id = ? AND subtasks.assigned_to = ?")).
		WithArgs("file-1", "carol").
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(1))

	assert.True(t, canViewFile(gdb, actor, file))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCanViewFileDeniesUnrelatedUser(t *testing.T) {
	gdb, mock := newMockDB(t)

	file := models.ProblemFile{ID: "file-1", Owner: "bob"}
	actor := comments.Actor{Username: "mallory", Role: models.RoleUser}

	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT count(*) FROM `subtasks` JOIN tasks ON tasks.id = subtasks.task_id WHERE tasks.problem_file_id = ? AND subtasks.assigned_to = ?")).
		WithArgs("file-1", "mallory").
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(0))

	assert.False(t, canViewFile(gdb, actor, file))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCanViewFileShortCircuitsOwnerAndAdmin(t *testing.T) {
	gdb, mock := newMockDB(t)

	file := models.ProblemFile{ID: "file-1", Owner: "bob"}

	assert.True(t, canViewFile(gdb, comments.Actor{Username: "bob", Role: models.RoleUser}, file))
	assert.True(t, canViewFile(gdb, comments.Actor{Username: "root", Role: models.RoleAdmin}, file))

	// No queries issued on either path.
	require.NoError(t, mock.ExpectationsWereMet())
}
