package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/monocle-dev/taskhub/internal/types"
	"github.com/monocle-dev/taskhub/internal/utils"
)

type LoginUserRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginUser accepts a JSON body or an OAuth2-style form with username and password.
func (h *Handler) LoginUser(ctx *gin.Context) {
	var body LoginUserRequest

	if strings.HasPrefix(ctx.ContentType(), "application/x-www-form-urlencoded") ||
		strings.HasPrefix(ctx.ContentType(), "multipart/form-data") {
		body.Email = ctx.PostForm("username")
		body.Password = ctx.PostForm("password")
		if body.Email == "" || body.Password == "" {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
			return
		}
	} else if err := ctx.ShouldBindJSON(&body); err != nil {
		respondBindError(ctx, err)
		return
	}

	result, err := h.Auth.Login(ctx.Request.Context(), body.Email, body.Password)

	if err != nil {
		ctx.Header("WWW-Authenticate", "Bearer")
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, types.TokenResponse{
		AccessToken: result.AccessToken,
		TokenType:   result.TokenType,
		UserID:      result.User.ID,
		Name:        result.User.Name,
	})
}

func (h *Handler) Me(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	user, err := h.Users.Get(ctx.Request.Context(), currentUser.ID)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, userResponse(*user))
}
