package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/probfile/tracker/comments"
	"github.com/probfile/tracker/models"
	"github.com/probfile/tracker/notify"
	"github.com/probfile/tracker/utils"
)

// CommentController handles the comment section for tasks and subtasks:
// threaded listing, submission with mention and owner notifications, and
// deletion.
type CommentController struct {
	db         *gorm.DB
	store      *comments.Store
	gate       *notify.Gate
	dispatcher *notify.Dispatcher
}

// NewCommentController wires the comment pipeline.
func NewCommentController(db *gorm.DB, gate *notify.Gate, dispatcher *notify.Dispatcher) *CommentController {
	return &CommentController{
		db:         db,
		store:      comments.NewStore(db),
		gate:       gate,
		dispatcher: dispatcher,
	}
}

// ListComments returns the rendered thread for one entity, newest roots
// first. When the ownership chain is broken the thread still renders, with
// owner_resolved=false so the client can explain why notifications are off.
func (cc *CommentController) ListComments(ctx *gin.Context) {
	entityType, entityID, ok := entityParams(ctx)
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40030, "invalid entity reference")
		return
	}

	all, ok := cc.store.ListByEntity(entityType, entityID)
	if !ok {
		utils.Error(ctx, http.StatusInternalServerError, 50030, "failed to load comments")
		return
	}

	owner, fileName, resolved := cc.store.ResolveOwner(entityType, entityID)
	payload := gin.H{
		"thread":         comments.BuildThread(all),
		"owner_resolved": resolved,
	}
	if resolved {
		payload["file_owner"] = owner
		payload["file_name"] = fileName
	} else {
		payload["message"] = "could not determine file owner; notifications disabled"
	}
	utils.Success(ctx, payload)
}

// CreateComment persists a comment or reply, evaluates notification
// eligibility, and fires owner/mention emails off the request path. The
// response carries the updated thread snapshot so the client can redraw
// without a second round trip.
func (cc *CommentController) CreateComment(ctx *gin.Context) {
	var req struct {
		Text     string  `json:"text" binding:"required"`
		ParentID *string `json:"parent_id"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40031, "invalid request payload")
		return
	}

	text := strings.TrimSpace(utils.Sanitize(req.Text))
	if text == "" {
		utils.Error(ctx, http.StatusBadRequest, 40032, "comment cannot be empty")
		return
	}

	entityType, entityID, ok := entityParams(ctx)
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40030, "invalid entity reference")
		return
	}
	if name := cc.store.EntityName(entityType, entityID); name == "" {
		utils.Error(ctx, http.StatusNotFound, 40430, "entity not found")
		return
	}

	actor, ok := getActor(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	// A reply must reference an existing comment on the same entity.
	if req.ParentID != nil && *req.ParentID != "" {
		parent, found := cc.store.Get(*req.ParentID)
		if !found || parent.EntityType != entityType || parent.EntityID != entityID {
			utils.Error(ctx, http.StatusBadRequest, 40033, "parent comment not found on this entity")
			return
		}
	} else {
		req.ParentID = nil
	}

	comment := models.Comment{
		ID:         uuid.NewString(),
		EntityType: entityType,
		EntityID:   entityID,
		UserName:   actor.Username,
		Text:       text,
		CreatedAt:  time.Now().UTC().Format(time.RFC3339),
		ParentID:   req.ParentID,
		UserRole:   actor.Role,
	}

	if !cc.store.Save(&comment) {
		utils.Error(ctx, http.StatusInternalServerError, 50031, "failed to save comment")
		return
	}

	// Persist succeeded; everything from here is best-effort and never rolls
	// the comment back.
	notified := cc.notifyForComment(comment)

	all, _ := cc.store.ListByEntity(entityType, entityID)
	utils.Success(ctx, gin.H{
		"comment":       comment,
		"thread":        comments.BuildThread(all),
		"notifications": notified,
	})
}

// notifyForComment runs the gate over the file owner and validated mentions
// and dispatches at most one email per resolved address. Returns the number
// of sends planned; a broken ownership chain plans none.
func (cc *CommentController) notifyForComment(c models.Comment) int {
	owner, fileName, resolved := cc.store.ResolveOwner(c.EntityType, c.EntityID)
	if !resolved {
		if utils.Sugar != nil {
			utils.Sugar.Warnf("owner unresolved for %s/%s, notifications suppressed", c.EntityType, c.EntityID)
		}
		return 0
	}

	var roster []string
	if err := cc.db.Model(&models.User{}).Pluck("username", &roster).Error; err != nil {
		roster = nil
	}
	mentions := comments.ValidateMentions(comments.ExtractMentions(c.Text), roster)

	recipients := cc.gate.Plan(owner, c.UserName, mentions)
	if len(recipients) == 0 {
		return 0
	}

	cc.dispatcher.DispatchComment(recipients, notify.CommentMail{
		Actor:      c.UserName,
		FileName:   fileName,
		EntityName: cc.store.EntityName(c.EntityType, c.EntityID),
		Text:       c.Text,
		IsReply:    c.IsReply(),
	})
	return len(recipients)
}

// DeleteComment removes one comment permanently. Replies stay; the thread
// builder surfaces them as orphaned roots.
func (cc *CommentController) DeleteComment(ctx *gin.Context) {
	commentID := strings.TrimSpace(ctx.Param("commentId"))
	if commentID == "" {
		utils.Error(ctx, http.StatusBadRequest, 40034, "missing comment id")
		return
	}

	c, found := cc.store.Get(commentID)
	if !found {
		utils.Error(ctx, http.StatusNotFound, 40431, "comment not found")
		return
	}

	actor, ok := getActor(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	if !utils.CanDeleteComment(actor.Role, actor.Username, c.UserName) {
		utils.Error(ctx, http.StatusForbidden, 40330, "you can only delete your own comment")
		return
	}

	if !cc.store.Delete(commentID) {
		utils.Error(ctx, http.StatusInternalServerError, 50032, "failed to delete comment")
		return
	}

	all, _ := cc.store.ListByEntity(c.EntityType, c.EntityID)
	utils.Success(ctx, gin.H{
		"message": "comment deleted",
		"thread":  comments.BuildThread(all),
	})
}

// entityParams reads the entity reference from the route. Routes are shaped
// /tasks/:id/comments and /subtasks/:id/comments.
func entityParams(ctx *gin.Context) (entityType, entityID string, ok bool) {
	entityID = strings.TrimSpace(ctx.Param("id"))
	if entityID == "" {
		return "", "", false
	}
	switch {
	case strings.HasPrefix(ctx.FullPath(), "/api/v1/tasks/"):
		return models.EntityTask, entityID, true
	case strings.HasPrefix(ctx.FullPath(), "/api/v1/subtasks/"):
		return models.EntitySubtask, entityID, true
	default:
		return "", "", false
	}
}
