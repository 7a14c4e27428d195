package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"farmwatch/internal/logging"
	"farmwatch/internal/models"
)

// DetectionConfig exposes the detector's runtime settings.
type DetectionConfig interface {
	SupportedSpecies() []string
	ConfidenceThreshold() float64
	SetConfidenceThreshold(v float64) error
	Priorities() map[string]models.Priority
	SetPriorities(updates map[string]models.Priority) error
}

type DetectionHandler struct {
	detector DetectionConfig
}

func NewDetectionHandler(detector DetectionConfig) *DetectionHandler {
	return &DetectionHandler{detector: detector}
}

type SupportedAnimalsResponse struct {
	Animals    []string `json:"animals"`
	TotalCount int      `json:"total_count"`
}

type DetectionConfigResponse struct {
	ConfidenceThreshold float64                    `json:"confidence_threshold"`
	Priorities          map[string]models.Priority `json:"priorities"`
	SupportedAnimals    []string                   `json:"supported_animals"`
}

type ConfidenceRequest struct {
	ConfidenceThreshold *float64 `json:"confidence_threshold" example:"0.6"`
}

type PrioritiesRequest struct {
	Priorities map[string]models.Priority `json:"priorities"`
}

// @Summary Supported animals
// @Tags detection
// @Produce json
// @Success 200 {object} SupportedAnimalsResponse
// @Router /api/supported_animals [get]
func (h *DetectionHandler) GetSupportedAnimals(c *gin.Context) {
	animals := h.detector.SupportedSpecies()
	c.JSON(http.StatusOK, SupportedAnimalsResponse{Animals: animals, TotalCount: len(animals)})
}

// @Summary Detection configuration
// @Tags detection
// @Produce json
// @Success 200 {object} DetectionConfigResponse
// @Router /api/config/detection [get]
func (h *DetectionHandler) GetConfig(c *gin.Context) {
	c.JSON(http.StatusOK, h.config())
}

func (h *DetectionHandler) config() DetectionConfigResponse {
	return DetectionConfigResponse{
		ConfidenceThreshold: h.detector.ConfidenceThreshold(),
		Priorities:          h.detector.Priorities(),
		SupportedAnimals:    h.detector.SupportedSpecies(),
	}
}

// @Summary Update confidence threshold
// @Description Set the minimum confidence a detection needs to be kept (0 to 1)
// @Tags detection
// @Accept json
// @Produce json
// @Param request body ConfidenceRequest true "New threshold"
// @Success 200 {object} DetectionConfigResponse
// @Failure 400 {object} ErrorResponse
// @Router /api/config/confidence [put]
func (h *DetectionHandler) UpdateConfidence(c *gin.Context) {
	var req ConfidenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body", Details: err.Error()})
		return
	}
	if req.ConfidenceThreshold == nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "confidence_threshold is required"})
		return
	}
	if err := h.detector.SetConfidenceThreshold(*req.ConfidenceThreshold); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid confidence threshold", Details: err.Error()})
		return
	}
	logging.Info(c).Float64("confidence_threshold", *req.ConfidenceThreshold).Msg("Confidence threshold updated")
	c.JSON(http.StatusOK, h.config())
}

// @Summary Update species priorities
// @Description Merge priority overrides (LOW, MEDIUM, HIGH, CRITICAL) for supported species
// @Tags detection
// @Accept json
// @Produce json
// @Param request body PrioritiesRequest true "Priority overrides"
// @Success 200 {object} DetectionConfigResponse
// @Failure 400 {object} ErrorResponse
// @Router /api/config/priorities [put]
func (h *DetectionHandler) UpdatePriorities(c *gin.Context) {
	var req PrioritiesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body", Details: err.Error()})
		return
	}
	if len(req.Priorities) == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "priorities is required"})
		return
	}
	if err := h.detector.SetPriorities(req.Priorities); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid priorities", Details: err.Error()})
		return
	}
	logging.Info(c).Int("updated", len(req.Priorities)).Msg("Species priorities updated")
	c.JSON(http.StatusOK, h.config())
}
