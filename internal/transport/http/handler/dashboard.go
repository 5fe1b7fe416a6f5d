package handler

import (
	"net/http"

	"github.com/ErlanBelekov/admin-console/internal/authctx"
	"github.com/gin-gonic/gin"
)

// DashboardHandler stands in for the console's protected area. It only reads
// the session the route guard attached.
type DashboardHandler struct{}

func NewDashboardHandler() *DashboardHandler {
	return &DashboardHandler{}
}

type dashboardResponse struct {
	Message string `json:"message"`
	Subject string `json:"subject"`
}

// GET /dashboard
func (h *DashboardHandler) Index(c *gin.Context) {
	s := authctx.FromContext(c.Request.Context())
	if s == nil {
		c.JSON(http.StatusUnauthorized, fail(msgUnauthorized))
		return
	}
	c.JSON(http.StatusOK, dashboardResponse{Message: "welcome", Subject: s.Subject})
}

// GET /dashboard/session
func (h *DashboardHandler) Session(c *gin.Context) {
	s := authctx.FromContext(c.Request.Context())
	if s == nil {
		c.JSON(http.StatusUnauthorized, fail(msgUnauthorized))
		return
	}
	c.JSON(http.StatusOK, s)
}
