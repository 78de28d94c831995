package admin

import (
	handlershared "github.com/dujiao-next/storefront/internal/http/handlers/shared"
	"github.com/dujiao-next/storefront/internal/http/response"
	"github.com/dujiao-next/storefront/internal/service"

	"github.com/gin-gonic/gin"
)

type dashboardQuery struct {
	Range        string `form:"range"`
	Timezone     string `form:"tz"`
	From         string `form:"from"`
	To           string `form:"to"`
	ForceRefresh bool   `form:"force_refresh"`
}

var dashboardErrorRules = []handlershared.ErrorRule{
	{Target: service.ErrDashboardRangeInvalid, Code: response.CodeBadRequest, Key: "error.dashboard_range_invalid"},
}

// GetDashboardOverview GET /admin/dashboard/overview?range=7d&tz=Asia/Kolkata
func (h *Handler) GetDashboardOverview(c *gin.Context) {
	var query dashboardQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	input := service.DashboardQueryInput{Range: query.Range, Timezone: query.Timezone, ForceRefresh: query.ForceRefresh}
	var err error
	if input.From, err = handlershared.ParseTimeNullable(query.From); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if input.To, err = handlershared.ParseTimeNullable(query.To); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	data, err := h.DashboardService.GetOverview(c.Request.Context(), input)
	if err != nil {
		respondMappedError(c, err, dashboardErrorRules, "error.dashboard_fetch_failed")
		return
	}
	response.Success(c, data)
}
