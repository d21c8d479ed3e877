package utils

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/monocle-dev/taskhub/internal/apperr"
	"github.com/monocle-dev/taskhub/internal/middleware"
	"github.com/monocle-dev/taskhub/internal/store"
	"github.com/monocle-dev/taskhub/internal/types"
)

func GetCurrentUser(ctx *gin.Context) (middleware.AuthenticatedUser, error) {
	user, exists := ctx.Get(types.ContextUserKey)

	if !exists {
		return middleware.AuthenticatedUser{}, apperr.Unauthorized("User not authenticated")
	}

	authenticatedUser, ok := user.(middleware.AuthenticatedUser)

	if !ok {
		return middleware.AuthenticatedUser{}, fmt.Errorf("Invalid user type in context")
	}

	return authenticatedUser, nil
}

func GetCurrentUserID(ctx *gin.Context) (uint, error) {
	user, err := GetCurrentUser(ctx)

	if err != nil {
		return 0, err
	}

	return user.ID, nil
}

// GetIDParam parses a positive id from the named path parameter.
func GetIDParam(ctx *gin.Context, name string) (uint, error) {
	raw := ctx.Param(name)

	if raw == "" {
		return 0, apperr.Validation("%s not found", name)
	}

	id, err := strconv.ParseUint(raw, 10, 32)

	if err != nil || id == 0 {
		return 0, apperr.Validation("Invalid %s", name)
	}

	return uint(id), nil
}

// GetOptionalIDQuery parses an optional id from the query string.
func GetOptionalIDQuery(ctx *gin.Context, name string) (*uint, error) {
	raw, ok := ctx.GetQuery(name)
	if !ok || raw == "" {
		return nil, nil
	}

	id, err := strconv.ParseUint(raw, 10, 32)

	if err != nil {
		return nil, apperr.Validation("Invalid %s", name)
	}

	v := uint(id)
	return &v, nil
}

// GetPage reads skip and limit from the query string.
func GetPage(ctx *gin.Context) (store.Page, error) {
	page := store.Page{Limit: store.DefaultLimit}

	if raw, ok := ctx.GetQuery("skip"); ok {
		skip, err := strconv.Atoi(raw)
		if err != nil || skip < 0 {
			return page, apperr.Validation("Invalid skip")
		}
		page.Skip = skip
	}

	if raw, ok := ctx.GetQuery("limit"); ok {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return page, apperr.Validation("Invalid limit")
		}
		page.Limit = limit
	}

	return page.Normalize(), nil
}
