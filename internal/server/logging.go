package server

import (
	"io"
	"log/slog"
	"os"
)

// NewLogger creates the structured JSON logger used by the server.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(handler).With(slog.String("component", "server"))
}
