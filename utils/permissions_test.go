package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/probfile/tracker/models"
)

func TestRoleMatrix(t *testing.T) {
	assert.True(t, CanAccessDataManagement(models.RoleAdmin))
	assert.False(t, CanAccessDataManagement(models.RolePartner))
	assert.False(t, CanAccessDataManagement(models.RoleUser))

	assert.True(t, CanDeleteItems(models.RoleAdmin))
	assert.True(t, CanDeleteItems(models.RolePartner))
	assert.False(t, CanDeleteItems(models.RoleUser))

	assert.True(t, CanEditAllFiles(models.RolePartner))
	assert.False(t, CanEditAllFiles(models.RoleUser))
}

func TestCanEditFile(t *testing.T) {
	assert.True(t, CanEditFile(models.RoleUser, "alice", "alice"))
	assert.False(t, CanEditFile(models.RoleUser, "alice", "bob"))
	assert.True(t, CanEditFile(models.RoleAdmin, "admin", "bob"))
	assert.True(t, CanEditFile(models.RolePartner, "pat", "bob"))
}

func TestCanDeleteComment(t *testing.T) {
	assert.True(t, CanDeleteComment(models.RoleUser, "alice", "alice"))
	assert.False(t, CanDeleteComment(models.RoleUser, "alice", "bob"))
	assert.True(t, CanDeleteComment(models.RoleAdmin, "admin", "bob"))
	assert.True(t, CanDeleteComment(models.RolePartner, "pat", "bob"))
}
