// Package logging provides structured logging for RoomSense Core.
//
// It wraps log/slog with the service's default attributes and
// config-driven level and format selection.
package logging
