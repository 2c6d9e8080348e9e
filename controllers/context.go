package controllers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/probfile/tracker/comments"
	"github.com/probfile/tracker/middleware"
)

func getUserID(ctx *gin.Context) (uint, bool) {
	value, exists := ctx.Get(middleware.ContextUserIDKey)
	if !exists {
		return 0, false
	}

	switch v := value.(type) {
	case uint:
		return v, true
	case int:
		return uint(v), true
	case int64:
		return uint(v), true
	case float64:
		return uint(v), true
	default:
		return 0, false
	}
}

// getActor builds the request-scoped identity every comment and permission
// check receives explicitly.
func getActor(ctx *gin.Context) (comments.Actor, bool) {
	unameVal, ok := ctx.Get(middleware.ContextUsernameKey)
	if !ok {
		return comments.Actor{}, false
	}
	username, _ := unameVal.(string)
	if username == "" {
		return comments.Actor{}, false
	}
	role := "User"
	if roleVal, ok := ctx.Get(middleware.ContextRoleKey); ok {
		if r, _ := roleVal.(string); r != "" {
			role = r
		}
	}
	return comments.Actor{Username: username, Role: role}, true
}

func parsePagination(pageStr, sizeStr string) (int, int) {
	page := 1
	pageSize := 10
	if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
		page = p
	}
	if s, err := strconv.Atoi(sizeStr); err == nil && s > 0 && s <= 100 {
		pageSize = s
	}
	return page, pageSize
}
