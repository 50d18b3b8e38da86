package controllers

import (
	"net/http"

	"librarydesk/app"

	"github.com/gin-gonic/gin"
)

type DashboardController struct{ *Srv }

func NewDashboardController(s *Srv) *DashboardController { return &DashboardController{Srv: s} }

// GET /
func (dc *DashboardController) Home(c *gin.Context) {
	sum, err := dc.Circulation.DashboardSummary(c.Request.Context())
	if err != nil {
		dc.Log.ErrorContext(c.Request.Context(), "dashboard", "err", err)
		c.JSON(http.StatusInternalServerError, app.H{"error": "could not load dashboard"})
		return
	}
	dc.render(c, app.H{"username": c.GetString(app.CtxUsername), "stats": sum})
}

// GET /staff_dashboard
func (dc *DashboardController) StaffDashboard(c *gin.Context) {
	sum, err := dc.Circulation.StaffDashboard(c.Request.Context())
	if err != nil {
		dc.Log.ErrorContext(c.Request.Context(), "staff dashboard", "err", err)
		c.JSON(http.StatusInternalServerError, app.H{"error": "could not load dashboard"})
		return
	}
	dc.render(c, app.H{"stats": sum.Summary, "issued": sum.Recent})
}
