package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/monocle-dev/taskhub/internal/apperr"
	"github.com/monocle-dev/taskhub/internal/services"
	"github.com/monocle-dev/taskhub/internal/types"
	"github.com/monocle-dev/taskhub/internal/utils"
)

type CreateTaskRequest struct {
	Title       string           `json:"title" binding:"required,min=3,max=100"`
	Description string           `json:"description" binding:"required,min=10,max=500"`
	Status      types.TaskStatus `json:"status" binding:"omitempty,oneof=todo in_progress done review"`
	DueDate     time.Time        `json:"due_date" binding:"required"`
	ProjectID   uint             `json:"project_id" binding:"required,gt=0"`
	AssignedTo  *uint            `json:"assigned_to" binding:"omitempty,gt=0"`
}

type UpdateTaskRequest struct {
	Title       *string           `json:"title" binding:"omitempty,min=3,max=100"`
	Description *string           `json:"description" binding:"omitempty,min=10,max=500"`
	Status      *types.TaskStatus `json:"status" binding:"omitempty,oneof=todo in_progress done review"`
	DueDate     *time.Time        `json:"due_date"`
	AssignedTo  *uint             `json:"assigned_to" binding:"omitempty,gt=0"`
}

func (h *Handler) CreateTask(ctx *gin.Context) {
	var body CreateTaskRequest

	if err := ctx.ShouldBindJSON(&body); err != nil {
		respondBindError(ctx, err)
		return
	}

	task, err := h.Tasks.Create(ctx.Request.Context(), services.NewTask{
		Title:       body.Title,
		Description: body.Description,
		Status:      body.Status,
		DueDate:     body.DueDate,
		ProjectID:   body.ProjectID,
		AssignedTo:  body.AssignedTo,
	})

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, taskResponse(*task))
}

func (h *Handler) GetTask(ctx *gin.Context) {
	taskID, err := utils.GetIDParam(ctx, "task_id")

	if err != nil {
		respondError(ctx, err)
		return
	}

	view, err := h.Tasks.Get(ctx.Request.Context(), taskID)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, taskViewResponse(*view))
}

func (h *Handler) UpdateTask(ctx *gin.Context) {
	taskID, err := utils.GetIDParam(ctx, "task_id")

	if err != nil {
		respondError(ctx, err)
		return
	}

	var body UpdateTaskRequest

	if err := ctx.ShouldBindJSON(&body); err != nil {
		respondBindError(ctx, err)
		return
	}

	task, err := h.Tasks.Update(ctx.Request.Context(), taskID, services.TaskPatch{
		Title:       body.Title,
		Description: body.Description,
		Status:      body.Status,
		DueDate:     body.DueDate,
		AssignedTo:  body.AssignedTo,
	})

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, taskResponse(*task))
}

func (h *Handler) DeleteTask(ctx *gin.Context) {
	taskID, err := utils.GetIDParam(ctx, "task_id")

	if err != nil {
		respondError(ctx, err)
		return
	}

	if err := h.Tasks.Delete(ctx.Request.Context(), taskID); err != nil {
		respondError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

func (h *Handler) ListProjectTasks(ctx *gin.Context) {
	projectID, err := utils.GetIDParam(ctx, "project_id")

	if err != nil {
		respondError(ctx, err)
		return
	}

	var status *types.TaskStatus
	if raw := ctx.Query("status"); raw != "" {
		s := types.TaskStatus(raw)
		if !s.Valid() {
			respondError(ctx, apperr.Validation("Invalid status"))
			return
		}
		status = &s
	}

	views, err := h.Tasks.ListForProject(ctx.Request.Context(), projectID, status)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, mapAll(views, taskViewResponse))
}

func (h *Handler) ListUserTasks(ctx *gin.Context) {
	userID, err := utils.GetIDParam(ctx, "user_id")

	if err != nil {
		respondError(ctx, err)
		return
	}

	views, err := h.Tasks.ListForUser(ctx.Request.Context(), userID)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, mapAll(views, taskViewResponse))
}
