package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/monocle-dev/taskhub/internal/services"
	"github.com/monocle-dev/taskhub/internal/store"
	"github.com/monocle-dev/taskhub/internal/utils"
)

// Content is trimmed by the service; blank content is rejected there.
type CreateCommentRequest struct {
	Content   string `json:"content" binding:"required,max=1000"`
	ProjectID uint   `json:"project_id" binding:"required,gt=0"`
	UserID    uint   `json:"user_id" binding:"required,gt=0"`
}

type UpdateCommentRequest struct {
	Content *string `json:"content" binding:"omitempty,max=1000"`
}

func (h *Handler) CreateComment(ctx *gin.Context) {
	var body CreateCommentRequest

	if err := ctx.ShouldBindJSON(&body); err != nil {
		respondBindError(ctx, err)
		return
	}

	comment, err := h.Comments.Create(ctx.Request.Context(), services.NewComment{
		Content:   body.Content,
		ProjectID: body.ProjectID,
		UserID:    body.UserID,
	})

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, commentResponse(*comment))
}

func (h *Handler) ListComments(ctx *gin.Context) {
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

	comments, err := h.Comments.List(ctx.Request.Context(), store.CommentFilter{
		ProjectID: projectID,
		UserID:    userID,
		Page:      page,
	})

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, mapAll(comments, commentResponse))
}

func (h *Handler) GetComment(ctx *gin.Context) {
	commentID, err := utils.GetIDParam(ctx, "comment_id")

	if err != nil {
		respondError(ctx, err)
		return
	}

	comment, err := h.Comments.Get(ctx.Request.Context(), commentID)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, commentResponse(*comment))
}

func (h *Handler) UpdateComment(ctx *gin.Context) {
	commentID, err := utils.GetIDParam(ctx, "comment_id")

	if err != nil {
		respondError(ctx, err)
		return
	}

	var body UpdateCommentRequest

	if err := ctx.ShouldBindJSON(&body); err != nil {
		respondBindError(ctx, err)
		return
	}

	comment, err := h.Comments.Update(ctx.Request.Context(), commentID, body.Content)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, commentResponse(*comment))
}

func (h *Handler) DeleteComment(ctx *gin.Context) {
	commentID, err := utils.GetIDParam(ctx, "comment_id")

	if err != nil {
		respondError(ctx, err)
		return
	}

	if err := h.Comments.Delete(ctx.Request.Context(), commentID); err != nil {
		respondError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

func (h *Handler) ListProjectComments(ctx *gin.Context) {
	projectID, err := utils.GetIDParam(ctx, "project_id")

	if err != nil {
		respondError(ctx, err)
		return
	}

	page, err := utils.GetPage(ctx)

	if err != nil {
		respondError(ctx, err)
		return
	}

	comments, err := h.Comments.ListForProject(ctx.Request.Context(), projectID, page)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, mapAll(comments, commentResponse))
}

func (h *Handler) ListUserComments(ctx *gin.Context) {
	userID, err := utils.GetIDParam(ctx, "user_id")

	if err != nil {
		respondError(ctx, err)
		return
	}

	page, err := utils.GetPage(ctx)

	if err != nil {
		respondError(ctx, err)
		return
	}

	comments, err := h.Comments.ListForUser(ctx.Request.Context(), userID, page)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, mapAll(comments, commentResponse))
}
