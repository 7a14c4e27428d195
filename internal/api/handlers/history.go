package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"farmwatch/internal/logging"
	"farmwatch/internal/models"
	"farmwatch/internal/services/history"
)

// HistoryReader reads the persisted detection history.
type HistoryReader interface {
	List() ([]models.HistoryRecord, error)
	Stats() (models.HistoryStats, error)
}

type HistoryHandler struct {
	store HistoryReader
}

func NewHistoryHandler(store HistoryReader) *HistoryHandler {
	return &HistoryHandler{store: store}
}

type HistoryResponse struct {
	Records []models.HistoryRecord `json:"records"`
	Total   int                    `json:"total"`
}

// @Summary Detection history
// @Description Stored detection runs, newest first
// @Tags history
// @Produce json
// @Success 200 {object} HistoryResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/history [get]
func (h *HistoryHandler) GetHistory(c *gin.Context) {
	records, err := h.store.List()
	if err != nil {
		logging.Error(c).Err(err).Msg("Failed to read detection history")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to read detection history", Details: err.Error()})
		return
	}
	records = history.NewestFirst(records)
	c.JSON(http.StatusOK, HistoryResponse{Records: records, Total: len(records)})
}

// @Summary Detection statistics
// @Description Totals, per-species counts and recent activity over the stored history
// @Tags history
// @Produce json
// @Success 200 {object} models.HistoryStats
// @Failure 500 {object} ErrorResponse
// @Router /api/detection_statistics [get]
func (h *HistoryHandler) GetStatistics(c *gin.Context) {
	stats, err := h.store.Stats()
	if err != nil {
		logging.Error(c).Err(err).Msg("Failed to read detection history")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to read detection history", Details: err.Error()})
		return
	}
	c.JSON(http.StatusOK, stats)
}
