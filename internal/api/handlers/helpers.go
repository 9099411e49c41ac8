package handlers

import (
	"disposal-route-service/internal/platform/obs"
	"disposal-route-service/internal/ports"
	"disposal-route-service/internal/services"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
)

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.ErrorContext(r.Context(), "encode failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Any("err", err),
		)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, map[string]string{"error": msg})
}

// writeServiceError maps planner errors to HTTP statuses. Unexpected errors
// are logged and hidden behind a generic message.
func writeServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, services.ErrCompanyNotFound):
		writeError(w, r, http.StatusNotFound, "company not found")
	case errors.Is(err, services.ErrStorageNotFound):
		writeError(w, r, http.StatusNotFound, "storage not found")
	case errors.Is(err, services.ErrMaterialNotFound):
		writeError(w, r, http.StatusNotFound, "material not found")
	case errors.Is(err, services.ErrNoRoute):
		writeError(w, r, http.StatusNotFound, "no route found")
	case errors.Is(err, services.ErrNothingToUnload):
		writeError(w, r, http.StatusUnprocessableEntity, "company holds nothing to unload")
	case errors.Is(err, services.ErrCompanyNotPlaced):
		writeError(w, r, http.StatusUnprocessableEntity, "company is not on the road network")
	case errors.Is(err, ports.ErrConflict):
		writeError(w, r, http.StatusConflict, "concurrent update, try again")
	default:
		slog.ErrorContext(r.Context(), op+" failed",
			slog.String("req_id", obs.RequestID(r.Context())),
			slog.Any("err", err),
		)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
	}
}
