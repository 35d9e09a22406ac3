package handlers

import (
	"net/http"
	"strconv"

	"shopcrawl/internal/logger"
	"shopcrawl/internal/storage"

	"github.com/gin-gonic/gin"
)

type RunHandler struct {
	ledger *storage.Ledger
	logger *logger.Logger
}

func NewRunHandler(ledger *storage.Ledger, logger *logger.Logger) *RunHandler {
	return &RunHandler{
		ledger: ledger,
		logger: logger,
	}
}

func (h *RunHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit < 1 || limit > 100 {
		limit = 20
	}

	runs, err := h.ledger.List(limit)
	if err != nil {
		h.logger.Error("failed to list runs: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch runs"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": runs})
}
