package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/monocle-dev/taskhub/internal/services"
	"github.com/monocle-dev/taskhub/internal/types"
	"github.com/monocle-dev/taskhub/internal/utils"
)

type CreateUserRequest struct {
	Name     string         `json:"name" binding:"required,min=2,max=50,personname"`
	Email    string         `json:"email" binding:"required,email,max=100"`
	Password string         `json:"password" binding:"required,min=8,max=50,password"`
	Role     types.UserRole `json:"role" binding:"omitempty,oneof=admin user moderator"`
}

type UpdateUserRequest struct {
	Name     *string         `json:"name" binding:"omitempty,min=2,max=50,personname"`
	Email    *string         `json:"email" binding:"omitempty,email,max=100"`
	Password *string         `json:"password" binding:"omitempty,min=8,max=50,password"`
	Role     *types.UserRole `json:"role" binding:"omitempty,oneof=admin user moderator"`
}

func (h *Handler) CreateUser(ctx *gin.Context) {
	var body CreateUserRequest

	if err := ctx.ShouldBindJSON(&body); err != nil {
		respondBindError(ctx, err)
		return
	}

	user, err := h.Users.Register(ctx.Request.Context(), services.NewUser{
		Name:     body.Name,
		Email:    body.Email,
		Password: body.Password,
		Role:     body.Role,
	})

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, userResponse(*user))
}

func (h *Handler) ListUsers(ctx *gin.Context) {
	page, err := utils.GetPage(ctx)

	if err != nil {
		respondError(ctx, err)
		return
	}

	users, err := h.Users.List(ctx.Request.Context(), page)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, mapAll(users, userResponse))
}

func (h *Handler) GetUser(ctx *gin.Context) {
	userID, err := utils.GetIDParam(ctx, "user_id")

	if err != nil {
		respondError(ctx, err)
		return
	}

	user, err := h.Users.Get(ctx.Request.Context(), userID)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, userResponse(*user))
}

func (h *Handler) UpdateUser(ctx *gin.Context) {
	userID, err := utils.GetIDParam(ctx, "user_id")

	if err != nil {
		respondError(ctx, err)
		return
	}

	var body UpdateUserRequest

	if err := ctx.ShouldBindJSON(&body); err != nil {
		respondBindError(ctx, err)
		return
	}

	user, err := h.Users.Update(ctx.Request.Context(), userID, services.UserPatch{
		Name:     body.Name,
		Email:    body.Email,
		Password: body.Password,
		Role:     body.Role,
	})

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, userResponse(*user))
}

func (h *Handler) DeleteUser(ctx *gin.Context) {
	userID, err := utils.GetIDParam(ctx, "user_id")

	if err != nil {
		respondError(ctx, err)
		return
	}

	if err := h.Users.Delete(ctx.Request.Context(), userID); err != nil {
		respondError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}
