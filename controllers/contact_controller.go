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

// ContactController manages the contact list attached to a problem file.
type ContactController struct {
	db *gorm.DB
}

// NewContactController creates a new ContactController instance.
func NewContactController(db *gorm.DB) *ContactController {
	return &ContactController{db: db}
}

func (c *ContactController) fileByID(id string) (models.ProblemFile, error) {
	var file models.ProblemFile
	err := c.db.First(&file, "id = ?", id).Error
	return file, err
}

// ListContacts returns a file's contacts, newest first.
func (c *ContactController) ListContacts(ctx *gin.Context) {
	actor, ok := getActor(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	file, err := c.fileByID(ctx.Param("id"))
	if err != nil {
		utils.Error(ctx, http.StatusNotFound, 40420, "file not found")
		return
	}
	if !canViewFile(c.db, actor, file) {
		utils.Error(ctx, http.StatusForbidden, 40320, "no access to this file")
		return
	}

	var contacts []models.Contact
	if err := c.db.Where("problem_file_id = ?", file.ID).
		Order("created_at DESC").Find(&contacts).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50060, "failed to retrieve contacts")
		return
	}

	utils.Success(ctx, gin.H{
		"items":      contacts,
		"total":      len(contacts),
		"can_manage": utils.CanManageContacts(actor.Role, actor.Username, file.Owner),
	})
}

// CreateContact adds a contact to a file's list.
func (c *ContactController) CreateContact(ctx *gin.Context) {
	actor, ok := getActor(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	file, err := c.fileByID(ctx.Param("id"))
	if err != nil {
		utils.Error(ctx, http.StatusNotFound, 40420, "file not found")
		return
	}
	if !utils.CanManageContacts(actor.Role, actor.Username, file.Owner) {
		utils.Error(ctx, http.StatusForbidden, 40360, "no permission to manage contacts")
		return
	}

	var req struct {
		Name         string `json:"name" binding:"required,max=255"`
		Organization string `json:"organization"`
		Title        string `json:"title"`
		Email        string `json:"email"`
		Telephone    string `json:"telephone"`
		Comments     string `json:"comments"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40060, "invalid request payload")
		return
	}

	contact := models.Contact{
		ID:            uuid.NewString(),
		ProblemFileID: file.ID,
		Name:          utils.Sanitize(req.Name),
		Organization:  utils.Sanitize(req.Organization),
		Title:         utils.Sanitize(req.Title),
		Email:         strings.TrimSpace(req.Email),
		Telephone:     strings.TrimSpace(req.Telephone),
		Comments:      utils.Sanitize(req.Comments),
		AddedBy:       actor.Username,
		CreatedAt:     time.Now(),
	}
	if err := c.db.Create(&contact).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50061, "failed to create contact")
		return
	}

	utils.Success(ctx, gin.H{"contact": contact})
}

// UpdateContact edits an existing contact.
func (c *ContactController) UpdateContact(ctx *gin.Context) {
	actor, ok := getActor(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var contact models.Contact
	if err := c.db.First(&contact, "id = ?", ctx.Param("contactId")).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40460, "contact not found")
		return
	}
	file, err := c.fileByID(contact.ProblemFileID)
	if err != nil {
		utils.Error(ctx, http.StatusNotFound, 40420, "file not found")
		return
	}
	if !utils.CanManageContacts(actor.Role, actor.Username, file.Owner) {
		utils.Error(ctx, http.StatusForbidden, 40360, "no permission to manage contacts")
		return
	}

	var req struct {
		Name         *string `json:"name"`
		Organization *string `json:"organization"`
		Title        *string `json:"title"`
		Email        *string `json:"email"`
		Telephone    *string `json:"telephone"`
		Comments     *string `json:"comments"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40061, "invalid request payload")
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil && strings.TrimSpace(*req.Name) != "" {
		updates["name"] = utils.Sanitize(*req.Name)
	}
	if req.Organization != nil {
		updates["organization"] = utils.Sanitize(*req.Organization)
	}
	if req.Title != nil {
		updates["title"] = utils.Sanitize(*req.Title)
	}
	if req.Email != nil {
		updates["email"] = strings.TrimSpace(*req.Email)
	}
	if req.Telephone != nil {
		updates["telephone"] = strings.TrimSpace(*req.Telephone)
	}
	if req.Comments != nil {
		updates["comments"] = utils.Sanitize(*req.Comments)
	}

	if len(updates) > 0 {
		if err := c.db.Model(&contact).Updates(updates).Error; err != nil {
			utils.Error(ctx, http.StatusInternalServerError, 50062, "failed to update contact")
			return
		}
	}

	utils.Success(ctx, gin.H{"contact": contact})
}

// DeleteContact removes a contact from a file's list.
func (c *ContactController) DeleteContact(ctx *gin.Context) {
	actor, ok := getActor(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var contact models.Contact
	if err := c.db.First(&contact, "id = ?", ctx.Param("contactId")).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40460, "contact not found")
		return
	}
	file, err := c.fileByID(contact.ProblemFileID)
	if err != nil {
		utils.Error(ctx, http.StatusNotFound, 40420, "file not found")
		return
	}
	if !utils.CanManageContacts(actor.Role, actor.Username, file.Owner) {
		utils.Error(ctx, http.StatusForbidden, 40360, "no permission to manage contacts")
		return
	}

	if err := c.db.Delete(&contact).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50063, "failed to delete contact")
		return
	}

	utils.Success(ctx, gin.H{"deleted": contact.ID})
}
