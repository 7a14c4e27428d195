package handlers

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	"farmwatch/internal/services/notification"
)

// AlertQueue exposes alert dispatcher counters.
type AlertQueue interface {
	Stats() notification.DispatcherStats
}

// SystemHandler handles system-related endpoints
type SystemHandler struct {
	WorkerID  string
	startedAt time.Time
	alerts    AlertQueue
}

// NewSystemHandler creates a new system handler
func NewSystemHandler(workerID string, alerts AlertQueue) *SystemHandler {
	return &SystemHandler{
		WorkerID:  workerID,
		startedAt: time.Now(),
		alerts:    alerts,
	}
}

// @Summary Get system stats
// @Description Get system statistics and performance metrics
// @Tags system
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /system/stats [get]
func (h *SystemHandler) GetStats(c *gin.Context) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	stats := gin.H{
		"worker_id":      h.WorkerID,
		"uptime_seconds": int64(time.Since(h.startedAt).Seconds()),
		"memory_mb":      m.Alloc / 1024 / 1024,
		"cpu_cores":      runtime.NumCPU(),
		"goroutines":     runtime.NumGoroutine(),
		"go_version":     runtime.Version(),
	}
	if h.alerts != nil {
		stats["alert_queue"] = h.alerts.Stats()
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"stats":     stats,
		"timestamp": time.Now().Unix(),
	})
}
