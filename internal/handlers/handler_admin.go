package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	portssvc "github.com/sunubank/bankapi/internal/core/ports/services"
	"github.com/sunubank/bankapi/internal/dto"
	"github.com/sunubank/bankapi/internal/middleware"
)

// adminHandler exposes operational endpoints.
type adminHandler struct {
	accountService portssvc.AccountLifecycleSvc
}

// registerAdminRoutes registers the admin-only operational routes.
func registerAdminRoutes(rg *gin.RouterGroup, accountService portssvc.AccountLifecycleSvc) {
	h := &adminHandler{accountService: accountService}

	admin := rg.Group("/admin", middleware.RequireAdmin())
	{
		admin.POST("/sweep", h.runSweep)
	}
}

// runSweep godoc
// @Summary Run the archival sweep on demand
// @Description Archives every account whose bounded block interval has elapsed, cascading to its transactions. With dryRun=true the candidates are only reported.
// @Tags admin
// @Produce json
// @Param dryRun query bool false "Report candidates without mutating" default(false)
// @Success 200 {object} dto.SweepResponse
// @Failure 403 {object} dto.ErrorResponse "Admin role required"
// @Security BearerAuth
// @Router /admin/sweep [post]
func (h *adminHandler) runSweep(c *gin.Context) {
	dryRun, err := strconv.ParseBool(c.DefaultQuery("dryRun", "false"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse("VALIDATION_ERROR", "dryRun must be a boolean"))
		return
	}

	result, err := h.accountService.ArchiveExpiredBlocked(c.Request.Context(), dryRun)
	if err != nil {
		respondError(c, err, "ACCOUNT")
		return
	}

	c.JSON(http.StatusOK, dto.SweepResponse{
		DryRun:     result.DryRun,
		AccountIDs: result.AccountIDs,
		Count:      len(result.AccountIDs),
	})
}
