package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/monocle-dev/taskhub/internal/services"
	"github.com/monocle-dev/taskhub/internal/utils"
)

type CreateFileRequest struct {
	FileName  string `json:"file_name" binding:"required,max=255"`
	FileURL   string `json:"file_url" binding:"required,max=500"`
	ProjectID uint   `json:"project_id" binding:"required,gt=0"`
	UserID    uint   `json:"user_id" binding:"required,gt=0"`
}

func (h *Handler) CreateFile(ctx *gin.Context) {
	var body CreateFileRequest

	if err := ctx.ShouldBindJSON(&body); err != nil {
		respondBindError(ctx, err)
		return
	}

	file, err := h.Files.Create(ctx.Request.Context(), services.NewFile{
		FileName:  body.FileName,
		FileURL:   body.FileURL,
		ProjectID: body.ProjectID,
		UserID:    body.UserID,
	})

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, fileResponse(*file))
}

func (h *Handler) GetFile(ctx *gin.Context) {
	fileID, err := utils.GetIDParam(ctx, "file_id")

	if err != nil {
		respondError(ctx, err)
		return
	}

	file, err := h.Files.Get(ctx.Request.Context(), fileID)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, fileResponse(*file))
}

func (h *Handler) ListProjectFiles(ctx *gin.Context) {
	projectID, err := utils.GetIDParam(ctx, "project_id")

	if err != nil {
		respondError(ctx, err)
		return
	}

	files, err := h.Files.ListForProject(ctx.Request.Context(), projectID)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, mapAll(files, fileResponse))
}

func (h *Handler) DeleteFile(ctx *gin.Context) {
	fileID, err := utils.GetIDParam(ctx, "file_id")

	if err != nil {
		respondError(ctx, err)
		return
	}

	if err := h.Files.Delete(ctx.Request.Context(), fileID); err != nil {
		respondError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}
