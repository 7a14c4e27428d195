package api

import (
	"farmwatch/internal/api/middleware"
)

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Recovery())
	s.router.Use(middleware.RequestID())
	s.router.Use(middleware.RequestContext())
	s.router.Use(middleware.Logger())
	s.router.Use(middleware.CORS())
}

func (s *Server) setupRoutes() {
	s.router.GET("/", s.healthHandler.WorkerInfo)
	s.router.GET("/health", s.healthHandler.HealthCheck)
	s.router.GET("/video_feed", s.liveHandler.VideoFeed)
	s.router.Static("/static/processed", s.config.ProcessedDir)

	api := s.router.Group("/api")
	{
		api.GET("/health", s.healthHandler.HealthCheck)

		api.POST("/upload_video", s.videoHandler.UploadVideo)
		api.GET("/processing_progress/:id", s.videoHandler.GetProgress)
		api.GET("/processing_progress/:id/stream", s.videoHandler.StreamProgress)
		api.GET("/jobs/:id/result", s.videoHandler.GetResult)

		api.POST("/start_live_stream", s.liveHandler.StartLiveStream)
		api.POST("/stop_live_stream", s.liveHandler.StopLiveStream)
		api.GET("/live_stream_status", s.liveHandler.GetStatus)
		api.GET("/live_stream_stats", s.liveHandler.GetStats)

		api.GET("/history", s.historyHandler.GetHistory)
		api.GET("/detection_statistics", s.historyHandler.GetStatistics)

		api.GET("/supported_animals", s.detectionHandler.GetSupportedAnimals)
		api.GET("/config/detection", s.detectionHandler.GetConfig)
		api.PUT("/config/confidence", s.detectionHandler.UpdateConfidence)
		api.PUT("/config/priorities", s.detectionHandler.UpdatePriorities)

		api.GET("/email/statistics", s.emailHandler.GetStatistics)
		api.POST("/email/test", s.emailHandler.SendTest)
	}

	system := s.router.Group("/system")
	{
		system.GET("/stats", s.systemHandler.GetStats)
	}
}
