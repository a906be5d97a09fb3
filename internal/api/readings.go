package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/roomsense/roomsense-core/internal/telemetry"
)

// detectionResponse wraps a stored detection with the presence decision.
// Present is derived at read time from the configured confidence
// threshold; the stored sample is the camera's raw report.
type detectionResponse struct {
	telemetry.DetectionEvent
	Present bool `json:"present"`
}

func (s *Server) toDetectionResponse(e telemetry.DetectionEvent) detectionResponse {
	return detectionResponse{
		DetectionEvent: e,
		Present:        e.Detected && e.Confidence >= s.presenceThreshold,
	}
}

// handleAllTemperatures returns the latest temperature for every room.
func (s *Server) handleAllTemperatures(w http.ResponseWriter, r *http.Request) {
	readings, err := s.telemetry.AllCurrentTemperatures(r.Context())
	if err != nil {
		s.logger.Error("failed to list temperatures", "error", err)
		writeInternalError(w, "failed to list temperatures")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"temperatures": readings, "count": len(readings)})
}

// handleRoomTemperature returns the latest temperature for one room.
func (s *Server) handleRoomTemperature(w http.ResponseWriter, r *http.Request) {
	room := chi.URLParam(r, "room")

	reading, err := s.telemetry.CurrentTemperature(r.Context(), room)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reading)
}

// handleAllDetections returns the latest person detection for every room.
func (s *Server) handleAllDetections(w http.ResponseWriter, r *http.Request) {
	events, err := s.telemetry.AllCurrentDetections(r.Context())
	if err != nil {
		s.logger.Error("failed to list detections", "error", err)
		writeInternalError(w, "failed to list detections")
		return
	}

	out := make([]detectionResponse, 0, len(events))
	for _, e := range events {
		out = append(out, s.toDetectionResponse(e))
	}
	writeJSON(w, http.StatusOK, map[string]any{"detections": out, "count": len(out)})
}

// handleRoomDetection returns the latest person detection for one room.
func (s *Server) handleRoomDetection(w http.ResponseWriter, r *http.Request) {
	room := chi.URLParam(r, "room")

	event, err := s.telemetry.CurrentDetection(r.Context(), room)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.toDetectionResponse(*event))
}

// handleAllActuatorStates returns the latest state of one actuator kind
// for every room.
func (s *Server) handleAllActuatorStates(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")

	states, err := s.telemetry.AllCurrentActuatorStates(r.Context(), kind)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"actuators": states, "count": len(states)})
}

// handleRoomActuatorState returns the latest state of one actuator in one room.
func (s *Server) handleRoomActuatorState(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")
	room := chi.URLParam(r, "room")

	state, err := s.telemetry.CurrentActuatorState(r.Context(), kind, room)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}
