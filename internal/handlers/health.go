package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"message":   h.App.Name + " is running",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (h *Handler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Welcome to the " + h.App.Name + " project management API",
		"version": h.App.Version,
		"status":  "active",
	})
}
