package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/monocle-dev/taskhub/internal/ownership"
	"github.com/monocle-dev/taskhub/internal/store"
	"github.com/monocle-dev/taskhub/internal/types"
	"github.com/monocle-dev/taskhub/internal/utils"
)

type CreateMembershipRequest struct {
	UserID    uint                 `json:"user_id" binding:"required,gt=0"`
	ProjectID uint                 `json:"project_id" binding:"required,gt=0"`
	Role      types.MembershipRole `json:"role" binding:"omitempty,oneof=owner member viewer"`
	IsActive  *bool                `json:"is_active"`
}

type UpdateMembershipRequest struct {
	Role     *types.MembershipRole `json:"role" binding:"omitempty,oneof=owner member viewer"`
	IsActive *bool                 `json:"is_active"`
}

func (h *Handler) CreateMembership(ctx *gin.Context) {
	var body CreateMembershipRequest

	if err := ctx.ShouldBindJSON(&body); err != nil {
		respondBindError(ctx, err)
		return
	}

	membership, err := h.Memberships.Create(ctx.Request.Context(), ownership.NewMembership{
		UserID:    body.UserID,
		ProjectID: body.ProjectID,
		Role:      body.Role,
		IsActive:  body.IsActive,
	})

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, membershipResponse(*membership))
}

func (h *Handler) ListMemberships(ctx *gin.Context) {
	projectID, err := utils.GetOptionalIDQuery(ctx, "project_id")

	if err != nil {
		respondError(ctx, err)
		return
	}

	userID, err := utils.GetOptionalIDQuery(ctx, "user_id")

	if err != nil {
		respondError(ctx, err)
		return
	}

	page, err := utils.GetPage(ctx)

	if err != nil {
		respondError(ctx, err)
		return
	}

	memberships, err := h.Memberships.List(ctx.Request.Context(), store.MembershipFilter{
		ProjectID: projectID,
		UserID:    userID,
		Page:      page,
	})

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, mapAll(memberships, membershipResponse))
}

func (h *Handler) GetMembership(ctx *gin.Context) {
	membershipID, err := utils.GetIDParam(ctx, "membership_id")

	if err != nil {
		respondError(ctx, err)
		return
	}

	membership, err := h.Memberships.Get(ctx.Request.Context(), membershipID)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, membershipResponse(*membership))
}

func (h *Handler) UpdateMembership(ctx *gin.Context) {
	membershipID, err := utils.GetIDParam(ctx, "membership_id")

	if err != nil {
		respondError(ctx, err)
		return
	}

	var body UpdateMembershipRequest

	if err := ctx.ShouldBindJSON(&body); err != nil {
		respondBindError(ctx, err)
		return
	}

	membership, err := h.Memberships.Update(ctx.Request.Context(), membershipID, ownership.MembershipPatch{
		Role:     body.Role,
		IsActive: body.IsActive,
	})

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, membershipResponse(*membership))
}

func (h *Handler) DeleteMembership(ctx *gin.Context) {
	membershipID, err := utils.GetIDParam(ctx, "membership_id")

	if err != nil {
		respondError(ctx, err)
		return
	}

	if err := h.Memberships.Delete(ctx.Request.Context(), membershipID); err != nil {
		respondError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

func (h *Handler) ListUserMemberships(ctx *gin.Context) {
	userID, err := utils.GetIDParam(ctx, "user_id")

	if err != nil {
		respondError(ctx, err)
		return
	}

	memberships, err := h.Memberships.ListForUser(ctx.Request.Context(), userID)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, mapAll(memberships, membershipResponse))
}

func (h *Handler) ListProjectMemberships(ctx *gin.Context) {
	projectID, err := utils.GetIDParam(ctx, "project_id")

	if err != nil {
		respondError(ctx, err)
		return
	}

	memberships, err := h.Memberships.ListForProject(ctx.Request.Context(), projectID)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, mapAll(memberships, membershipResponse))
}
