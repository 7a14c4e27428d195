package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"farmwatch/internal/logging"
	"farmwatch/internal/services/livestream"
)

// LiveStream is the single live stream controller.
type LiveStream interface {
	Start(ctx context.Context, sourceURL string) error
	Stop() error
	Status() livestream.Status
	Stats() livestream.Stats
}

// MJPEGFeed serves the annotated live preview.
type MJPEGFeed interface {
	StreamMJPEGHTTP(w http.ResponseWriter, r *http.Request)
}

type LiveHandler struct {
	stream LiveStream
	feed   MJPEGFeed
}

func NewLiveHandler(stream LiveStream, feed MJPEGFeed) *LiveHandler {
	return &LiveHandler{stream: stream, feed: feed}
}

type StartLiveStreamRequest struct {
	RTSPURL string `json:"rtsp_url" example:"rtsp://camera.local:554/stream1"`
}

// @Summary Start the live stream
// @Description Open an RTSP source and start sampled detection on it. Returns once the source has been opened.
// @Tags live
// @Accept json
// @Produce json
// @Param request body StartLiveStreamRequest true "RTSP source"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /api/start_live_stream [post]
func (h *LiveHandler) StartLiveStream(c *gin.Context) {
	var req StartLiveStreamRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body", Details: err.Error()})
		return
	}
	req.RTSPURL = strings.TrimSpace(req.RTSPURL)
	if req.RTSPURL == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "RTSP URL is required"})
		return
	}

	err := h.stream.Start(c.Request.Context(), req.RTSPURL)
	switch {
	case err == nil:
	case errors.Is(err, livestream.ErrAlreadyActive):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Live stream already active"})
		return
	case errors.Is(err, livestream.ErrStreamFailed):
		logging.Warn(c).Err(err).Str("source", logging.RedactURL(req.RTSPURL)).Msg("Live stream failed to start")
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: "Could not open RTSP stream", Details: err.Error()})
		return
	default:
		logging.Error(c).Err(err).Msg("Live stream start failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to start live stream", Details: err.Error()})
		return
	}

	logging.Info(c).Str("source", logging.RedactURL(req.RTSPURL)).Msg("Live stream started")
	c.JSON(http.StatusOK, SuccessResponse{Success: true, Message: "Live stream started"})
}

// @Summary Stop the live stream
// @Description Stop the active live stream. Stopping when nothing is running succeeds.
// @Tags live
// @Produce json
// @Success 200 {object} SuccessResponse
// @Failure 504 {object} ErrorResponse
// @Router /api/stop_live_stream [post]
func (h *LiveHandler) StopLiveStream(c *gin.Context) {
	err := h.stream.Stop()
	switch {
	case err == nil:
		logging.Info(c).Msg("Live stream stopped")
		c.JSON(http.StatusOK, SuccessResponse{Success: true, Message: "Live stream stopped"})
	case errors.Is(err, livestream.ErrNotActive):
		c.JSON(http.StatusOK, SuccessResponse{Success: true, Message: "No live stream was active"})
	case errors.Is(err, livestream.ErrStopTimeout):
		logging.Error(c).Err(err).Msg("Live stream did not stop")
		c.JSON(http.StatusGatewayTimeout, ErrorResponse{Error: "Live stream did not stop in time", Details: err.Error()})
	default:
		logging.Error(c).Err(err).Msg("Live stream stop failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to stop live stream", Details: err.Error()})
	}
}

// @Summary Live stream status
// @Tags live
// @Produce json
// @Success 200 {object} livestream.Status
// @Router /api/live_stream_status [get]
func (h *LiveHandler) GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.stream.Status())
}

// @Summary Live stream statistics
// @Description Measured throughput, detection counts and stream quality of the running stream
// @Tags live
// @Produce json
// @Success 200 {object} livestream.Stats
// @Router /api/live_stream_stats [get]
func (h *LiveHandler) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.stream.Stats())
}

// @Summary Live MJPEG feed
// @Description multipart/x-mixed-replace stream of annotated live frames, or a placeholder image when no stream is active
// @Tags live
// @Produce multipart/x-mixed-replace
// @Success 200
// @Router /video_feed [get]
func (h *LiveHandler) VideoFeed(c *gin.Context) {
	h.feed.StreamMJPEGHTTP(c.Writer, c.Request)
}
