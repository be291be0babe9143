package ui

import (
	"journeygrid/ui/middleware"
)

func (s *Server) setupRoutes() {
	h := NewJourneyHandler(s.service, s.logger)

	s.router.GET("/healthz", h.HandleHealth())

	api := s.router.Group("/api")
	{
		api.POST("/reload", h.HandleReload())
		api.GET("/journey", h.HandleJourney())
		api.POST("/sessions", h.HandleNewSession())
		api.GET("/records/:stage/:stakeholder/highlights", h.HandleHighlights())
	}

	session := api.Group("/sessions/:id", middleware.SessionParam())
	{
		session.GET("", h.HandleGetSession())
		session.DELETE("", h.HandleEndSession())
		session.GET("/grid", h.HandleGrid())
		session.POST("/axes/:axis/toggle", h.HandleToggle())
		session.POST("/axes/:axis/all", h.HandleSelectAll())
		session.POST("/axes/:axis/clear", h.HandleClear())
	}
}
