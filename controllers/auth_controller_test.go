package controllers

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/probfile/tracker/config"
	"github.com/probfile/tracker/models"
)

func TestResolveRole(t *testing.T) {
	config.SetForTesting(config.AppConfig{
		UserRoles:      map[string]string{"carol": models.RolePartner, "dave": models.RoleAdmin},
		AdminUsernames: []string{"ops-lead"},
	})

	assert.Equal(t, models.RolePartner, ResolveRole("carol"))
	assert.Equal(t, models.RoleAdmin, ResolveRole("dave"))
	assert.Equal(t, models.RoleAdmin, ResolveRole("ops-lead"))
	assert.Equal(t, models.RoleAdmin, ResolveRole("Admin"))
	assert.Equal(t, models.RolePartner, ResolveRole("acme_partner"))
	assert.Equal(t, models.RoleUser, ResolveRole("alice"))
}
