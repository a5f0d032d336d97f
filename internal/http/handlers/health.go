package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	publicURL func() string
}

// NewHealthHandler takes an optional source for the tunnel URL shown on the banner.
func NewHealthHandler(publicURL func() string) *HealthHandler {
	return &HealthHandler{publicURL: publicURL}
}

// GET /
func (h *HealthHandler) Banner(c *gin.Context) {
	body := gin.H{"message": "ViralCut backend is up and running"}
	if h.publicURL != nil {
		if u := h.publicURL(); u != "" {
			body["public_url"] = u
		}
	}
	c.JSON(http.StatusOK, body)
}

// GET /healthcheck
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}
