package handler

import (
	"bitcoin-wallet-ledger/internal/adapter/http/dto"
	"bitcoin-wallet-ledger/internal/core/ports"
	"bitcoin-wallet-ledger/pkg/response"

	"github.com/gin-gonic/gin"
)

// StatsHandler handles platform statistics endpoints.
type StatsHandler struct {
	statsSvc ports.StatisticsService
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(statsSvc ports.StatisticsService) *StatsHandler {
	return &StatsHandler{statsSvc: statsSvc}
}

// Statistics handles GET /api/v1/statistics.
func (h *StatsHandler) Statistics(c *gin.Context) {
	stats, err := h.statsSvc.PlatformStatistics(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.FromStatistics(stats))
}
