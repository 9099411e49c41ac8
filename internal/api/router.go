package api

import (
	"disposal-route-service/internal/api/handlers"
	"disposal-route-service/internal/platform/metrics"
	"net/http"

	"github.com/gorilla/mux"
)

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
// A nil registry disables /metrics.
func NewRouter(planner handlers.Planner, reg *metrics.Registry) http.Handler {
	r := mux.NewRouter()
	r.Use(requestIDMiddleware, observeMiddleware(reg))

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		writeStatus(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		writeStatus(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.HandleFunc("/health", handlers.Health).Methods(http.MethodGet)
	if reg != nil {
		r.Handle("/metrics", reg.Handler()).Methods(http.MethodGet)
	}

	companies := &handlers.CompanyHandler{Planner: planner}
	c := r.PathPrefix("/companies/{companyID:[0-9]+}").Subrouter()
	c.HandleFunc("/storages", companies.ConnectedStorages).Methods(http.MethodGet)
	c.HandleFunc("/storages/{storageID:[0-9]+}/route", companies.RouteToStorage).Methods(http.MethodGet)
	c.HandleFunc("/materials/optimal-route", companies.OptimalRoute).Methods(http.MethodGet)
	c.HandleFunc("/materials/{materialID:[0-9]+}/optimal-route", companies.OptimalRoute).Methods(http.MethodGet)
	c.HandleFunc("/unload", companies.Unload).Methods(http.MethodPost)

	return r
}

func writeStatus(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"error":"` + msg + `"}` + "\n"))
}
