package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		// Latest stored sample per room
		r.Route("/temperatures", func(r chi.Router) {
			r.Get("/", s.handleAllTemperatures)
			r.Get("/{room}", s.handleRoomTemperature)
			r.Put("/{room}/target", s.handleSetTargetTemperature)
		})

		r.Route("/detections", func(r chi.Router) {
			r.Get("/", s.handleAllDetections)
			r.Get("/{room}", s.handleRoomDetection)
		})

		r.Route("/actuators/{kind}", func(r chi.Router) {
			r.Get("/", s.handleAllActuatorStates)
			r.Get("/{room}", s.handleRoomActuatorState)
			r.Post("/{room}/command", s.handleActuatorCommand)
		})
	})

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
	})
}
