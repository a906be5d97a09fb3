package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/roomsense/roomsense-core/internal/bridge"
)

// commandRequest is the body for POST /actuators/{kind}/{room}/command.
type commandRequest struct {
	On *bool `json:"on"`
}

// targetTemperatureRequest is the body for PUT /temperatures/{room}/target.
type targetTemperatureRequest struct {
	TargetTempF *float64 `json:"target_temp_f"`
}

// handleActuatorCommand publishes an on/off command for a heater or fan.
//
// The command is forwarded to the device's MQTT command topic; the new
// state appears in telemetry only after the device confirms it on its
// status topic.
func (s *Server) handleActuatorCommand(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")
	room := chi.URLParam(r, "room")

	var req commandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.On == nil {
		writeBadRequest(w, "missing required field: on")
		return
	}

	if err := s.commands.PublishCommand(room, bridge.Kind(kind), *req.On); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]any{
		"room": room,
		"kind": kind,
		"on":   *req.On,
	})
}

// handleSetTargetTemperature publishes a thermostat setpoint for a room.
func (s *Server) handleSetTargetTemperature(w http.ResponseWriter, r *http.Request) {
	room := chi.URLParam(r, "room")

	var req targetTemperatureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.TargetTempF == nil {
		writeBadRequest(w, "missing required field: target_temp_f")
		return
	}

	if err := s.commands.PublishTargetTemperature(room, *req.TargetTempF); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]any{
		"room":          room,
		"target_temp_f": *req.TargetTempF,
	})
}
