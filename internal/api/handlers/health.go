package handlers

import (
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
)

// ModelStatus reports whether the detection model can serve requests.
type ModelStatus interface {
	ModelLoaded() bool
}

// EmailStatus reports whether alert email is configured.
type EmailStatus interface {
	Configured() bool
}

type HealthHandler struct {
	WorkerID     string
	Version      string
	UploadDir    string
	ProcessedDir string
	model        ModelStatus
	email        EmailStatus
}

func NewHealthHandler(workerID, version, uploadDir, processedDir string, model ModelStatus, email EmailStatus) *HealthHandler {
	return &HealthHandler{
		WorkerID:     workerID,
		Version:      version,
		UploadDir:    uploadDir,
		ProcessedDir: processedDir,
		model:        model,
		email:        email,
	}
}

type HealthServices struct {
	Detector        bool `json:"detector"`
	EmailAlerts     bool `json:"email_alerts"`
	UploadFolder    bool `json:"upload_folder"`
	ProcessedFolder bool `json:"processed_folder"`
}

type HealthResponse struct {
	Status    string         `json:"status" example:"healthy"`
	WorkerID  string         `json:"worker_id" example:"farmwatch-1"`
	Timestamp time.Time      `json:"timestamp"`
	Version   string         `json:"version" example:"1.0.0"`
	Services  HealthServices `json:"services"`
}

type WorkerInfoResponse struct {
	WorkerID     string   `json:"worker_id" example:"farmwatch-1"`
	Status       string   `json:"status" example:"running"`
	Version      string   `json:"version" example:"1.0.0"`
	Capabilities []string `json:"capabilities"`
}

// @Summary Health check
// @Description Report worker health and the state of its dependencies. The status is "degraded" while the detection model is unavailable.
// @Tags health
// @Accept json
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
// @Router /api/health [get]
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	services := HealthServices{
		Detector:        h.model != nil && h.model.ModelLoaded(),
		EmailAlerts:     h.email != nil && h.email.Configured(),
		UploadFolder:    dirExists(h.UploadDir),
		ProcessedFolder: dirExists(h.ProcessedDir),
	}
	status := "healthy"
	if !services.Detector {
		status = "degraded"
	}

	c.JSON(http.StatusOK, HealthResponse{
		Status:    status,
		WorkerID:  h.WorkerID,
		Timestamp: time.Now(),
		Version:   h.Version,
		Services:  services,
	})
}

// @Summary Worker information
// @Description Get basic worker information and capabilities
// @Tags health
// @Accept json
// @Produce json
// @Success 200 {object} WorkerInfoResponse
// @Router / [get]
func (h *HealthHandler) WorkerInfo(c *gin.Context) {
	c.JSON(http.StatusOK, WorkerInfoResponse{
		WorkerID: h.WorkerID,
		Status:   "running",
		Version:  h.Version,
		Capabilities: []string{
			"video_upload_detection",
			"live_stream_detection",
			"email_alerts",
			"detection_history",
		},
	})
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
