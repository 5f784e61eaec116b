package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/trademate-console/internal/application/service"
	"github.com/sangkips/trademate-console/internal/domain/entity"
	"github.com/sangkips/trademate-console/internal/presentation/http/dto/request"
	"github.com/sangkips/trademate-console/internal/presentation/http/dto/response"
)

const dashboardDateCookie = "tm_dashboard_date"

// DashboardView is the admin dashboard page.
type DashboardView struct {
	*service.DashboardOverview
	TopPager       Pager
	RefreshSeconds int
}

// DashboardHandler handles the admin dashboard
type DashboardHandler struct {
	*Base
	dashboardService *service.DashboardService
	refresh          time.Duration
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(base *Base, dashboardService *service.DashboardService, refresh time.Duration) *DashboardHandler {
	return &DashboardHandler{Base: base, dashboardService: dashboardService, refresh: refresh}
}

// Show renders the dashboard and starts the session's dashboard poller
func (h *DashboardHandler) Show(c *gin.Context) {
	cred := credentials(c)
	h.dashboardService.Watch(cred)

	view, err := h.overview(c)
	if err != nil {
		h.errorPage(c, err)
		return
	}
	h.render(c, http.StatusOK, "dashboard", Page{Title: "Dashboard", Section: "dashboard", Data: view})
}

// Overview renders the figures fragment the page polls
func (h *DashboardHandler) Overview(c *gin.Context) {
	view, err := h.overview(c)
	if err != nil {
		h.errorPage(c, err)
		return
	}
	h.fragment(c, "dashboard#overview", view)
}

// Stats returns the dashboard figures as JSON
// @Summary Dashboard
// @Tags dashboard
// @Produce json
// @Param date query string false "Selected day (YYYY-MM-DD)"
// @Success 200 {object} response.APIResponse
// @Router /api/dashboard [get]
func (h *DashboardHandler) Stats(c *gin.Context) {
	view, err := h.overview(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Dashboard stats retrieved successfully", view.DashboardOverview)
}

// overview reads the selected day from the query, falling back to the remembered cookie.
func (h *DashboardHandler) overview(c *gin.Context) (*DashboardView, error) {
	var req request.DashboardRequest
	_ = c.ShouldBindQuery(&req)

	if req.Date != "" {
		if _, err := time.Parse(entity.DateLayout, req.Date); err == nil {
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(dashboardDateCookie, req.Date, 0, "/", "", false, true)
		}
	} else if saved, err := c.Cookie(dashboardDateCookie); err == nil {
		req.Date = saved
	}

	o, err := h.dashboardService.Overview(c.Request.Context(), credentials(c), req.Date, req.Page)
	if err != nil {
		return nil, err
	}
	return &DashboardView{
		DashboardOverview: o,
		TopPager:          Pager{Result: o.TopProducts, Base: listURL("/dashboard", "date", o.SelectedDate)},
		RefreshSeconds:    int(h.refresh.Seconds()),
	}, nil
}
