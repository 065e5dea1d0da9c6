package handler

import (
	"net/http"

	"bitcoin-wallet-ledger/internal/adapter/http/dto"
	"bitcoin-wallet-ledger/internal/core/ports"
	"bitcoin-wallet-ledger/pkg/response"

	"github.com/gin-gonic/gin"
)

// UserHandler handles user registration.
type UserHandler struct {
	userSvc ports.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userSvc ports.UserService) *UserHandler {
	return &UserHandler{userSvc: userSvc}
}

// Register handles POST /api/v1/users. The issued API key appears only
// in this response.
func (h *UserHandler) Register(c *gin.Context) {
	result, err := h.userSvc.Register(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.RegisterResponse{
		UserID: result.UserID.String(),
		APIKey: result.APIKey,
	})
}

// HealthCheck returns a handler that pings every dependency.
func HealthCheck(checkers ...ports.HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		type depStatus struct {
			Status string `json:"status"`
			Error  string `json:"error,omitempty"`
		}

		deps := make(map[string]depStatus)
		allHealthy := true

		for _, checker := range checkers {
			if err := checker.Ping(c.Request.Context()); err != nil {
				deps[checker.Name()] = depStatus{Status: "unhealthy", Error: err.Error()}
				allHealthy = false
			} else {
				deps[checker.Name()] = depStatus{Status: "healthy"}
			}
		}

		status := "healthy"
		httpCode := http.StatusOK
		if !allHealthy {
			status = "degraded"
			httpCode = http.StatusServiceUnavailable
		}

		c.JSON(httpCode, gin.H{
			"status":       status,
			"dependencies": deps,
		})
	}
}
