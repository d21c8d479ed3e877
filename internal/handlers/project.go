package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/monocle-dev/taskhub/internal/apperr"
	"github.com/monocle-dev/taskhub/internal/ownership"
	"github.com/monocle-dev/taskhub/internal/services"
	"github.com/monocle-dev/taskhub/internal/store"
	"github.com/monocle-dev/taskhub/internal/types"
	"github.com/monocle-dev/taskhub/internal/utils"
)

type CreateProjectRequest struct {
	Title       string              `json:"title" binding:"required,min=3,max=100"`
	Description string              `json:"description" binding:"required,min=10,max=1000"`
	Status      types.ProjectStatus `json:"status" binding:"omitempty,oneof=active completed on_hold cancelled"`
	// OwnerID falls back to the authenticated user.
	OwnerID *uint `json:"owner_id"`
}

type UpdateProjectRequest struct {
	Title       *string              `json:"title" binding:"omitempty,min=3,max=100"`
	Description *string              `json:"description" binding:"omitempty,min=10,max=1000"`
	Status      *types.ProjectStatus `json:"status" binding:"omitempty,oneof=active completed on_hold cancelled"`
}

type AddMemberRequest struct {
	UserID uint                 `json:"user_id" binding:"required,gt=0"`
	Role   types.MembershipRole `json:"role" binding:"omitempty,oneof=owner member viewer"`
}

func statusQuery(ctx *gin.Context) (*types.ProjectStatus, error) {
	raw := ctx.Query("status")
	if raw == "" {
		return nil, nil
	}
	status := types.ProjectStatus(raw)
	if !status.Valid() {
		return nil, apperr.Validation("Invalid status")
	}
	return &status, nil
}

func (h *Handler) CreateProject(ctx *gin.Context) {
	var body CreateProjectRequest

	if err := ctx.ShouldBindJSON(&body); err != nil {
		respondBindError(ctx, err)
		return
	}

	var ownerID uint
	if body.OwnerID != nil {
		ownerID = *body.OwnerID
	} else if userID, err := utils.GetCurrentUserID(ctx); err == nil {
		ownerID = userID
	} else {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "owner_id is required"})
		return
	}

	project, err := h.Projects.Create(ctx.Request.Context(), ownership.NewProject{
		Title:       body.Title,
		Description: body.Description,
		Status:      body.Status,
		OwnerID:     ownerID,
	})

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, projectResponse(*project))
}

func (h *Handler) ListProjects(ctx *gin.Context) {
	status, err := statusQuery(ctx)

	if err != nil {
		respondError(ctx, err)
		return
	}

	page, err := utils.GetPage(ctx)

	if err != nil {
		respondError(ctx, err)
		return
	}

	projects, err := h.Projects.List(ctx.Request.Context(), store.ProjectFilter{Status: status, Page: page})

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, mapAll(projects, projectResponse))
}

func (h *Handler) GetProject(ctx *gin.Context) {
	projectID, err := utils.GetIDParam(ctx, "project_id")

	if err != nil {
		respondError(ctx, err)
		return
	}

	details, err := h.Projects.Details(ctx.Request.Context(), projectID)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, projectDetailsResponse(details))
}

func (h *Handler) UpdateProject(ctx *gin.Context) {
	projectID, err := utils.GetIDParam(ctx, "project_id")

	if err != nil {
		respondError(ctx, err)
		return
	}

	var body UpdateProjectRequest

	if err := ctx.ShouldBindJSON(&body); err != nil {
		respondBindError(ctx, err)
		return
	}

	project, err := h.Projects.Update(ctx.Request.Context(), projectID, services.ProjectPatch{
		Title:       body.Title,
		Description: body.Description,
		Status:      body.Status,
	})

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, projectResponse(*project))
}

func (h *Handler) DeleteProject(ctx *gin.Context) {
	projectID, err := utils.GetIDParam(ctx, "project_id")

	if err != nil {
		respondError(ctx, err)
		return
	}

	if err := h.Projects.Delete(ctx.Request.Context(), projectID); err != nil {
		respondError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

func (h *Handler) ListUserProjects(ctx *gin.Context) {
	userID, err := utils.GetIDParam(ctx, "user_id")

	if err != nil {
		respondError(ctx, err)
		return
	}

	status, err := statusQuery(ctx)

	if err != nil {
		respondError(ctx, err)
		return
	}

	projects, err := h.Projects.ListForUser(ctx.Request.Context(), userID, status)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, mapAll(projects, projectResponse))
}

func (h *Handler) AddProjectMember(ctx *gin.Context) {
	projectID, err := utils.GetIDParam(ctx, "project_id")

	if err != nil {
		respondError(ctx, err)
		return
	}

	var body AddMemberRequest

	if err := ctx.ShouldBindJSON(&body); err != nil {
		respondBindError(ctx, err)
		return
	}

	membership, err := h.Projects.AddMember(ctx.Request.Context(), projectID, body.UserID, body.Role)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, membershipResponse(*membership))
}

func (h *Handler) ListProjectMembers(ctx *gin.Context) {
	projectID, err := utils.GetIDParam(ctx, "project_id")

	if err != nil {
		respondError(ctx, err)
		return
	}

	users, err := h.Projects.Members(ctx.Request.Context(), projectID)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, mapAll(users, userResponse))
}
