package handlers

import (
	"cmp"
	"context"
	"disposal-route-service/internal/api/dto"
	"disposal-route-service/internal/domain"
	"disposal-route-service/internal/services"
	"encoding/json"
	"io"
	"net/http"
	"slices"
	"strconv"

	"github.com/gorilla/mux"
)

// Planner is the slice of services.Planner the HTTP layer uses.
type Planner interface {
	RouteToStorage(ctx context.Context, companyID domain.CompanyID, storageID domain.StorageID) (domain.Route, error)
	DisposalRoute(ctx context.Context, req services.DisposalRouteRequest) (services.DisposalPlan, error)
	ConnectedStorages(ctx context.Context, companyID domain.CompanyID) ([]*domain.Storage, error)
	Unload(ctx context.Context, req services.UnloadRequest) (services.UnloadResult, error)
}

// CompanyHandler exposes routing and unloading endpoints scoped to one company.
type CompanyHandler struct {
	Planner Planner
}

// ConnectedStorages lists every storage the company can reach.
func (h *CompanyHandler) ConnectedStorages(w http.ResponseWriter, r *http.Request) {
	q, ok := parseRouteQuery(w, r)
	if !ok {
		return
	}

	storages, err := h.Planner.ConnectedStorages(r.Context(), domain.CompanyID(q.CompanyID))
	if err != nil {
		writeServiceError(w, r, "connected storages", err)
		return
	}

	res := dto.ListStoragesResponse{Storages: make([]dto.StorageResponse, 0, len(storages))}
	for _, s := range storages {
		res.Storages = append(res.Storages, storageResponse(s))
	}
	writeJSON(w, r, http.StatusOK, res)
}

// RouteToStorage returns the shortest storage-only route to one storage.
func (h *CompanyHandler) RouteToStorage(w http.ResponseWriter, r *http.Request) {
	q, ok := parseRouteQuery(w, r)
	if !ok {
		return
	}
	if q.StorageID == nil {
		writeError(w, r, http.StatusBadRequest, "StorageID is required")
		return
	}

	route, err := h.Planner.RouteToStorage(r.Context(), domain.CompanyID(q.CompanyID), domain.StorageID(*q.StorageID))
	if err != nil {
		writeServiceError(w, r, "route to storage", err)
		return
	}
	writeJSON(w, r, http.StatusOK, routeResponse(route, ""))
}

// OptimalRoute returns the shortest route with room for the company's waste.
// With a material in the path only that material is considered, and
// ?partial=true allows spreading it over several storages.
func (h *CompanyHandler) OptimalRoute(w http.ResponseWriter, r *http.Request) {
	q, ok := parseRouteQuery(w, r)
	if !ok {
		return
	}

	req := services.DisposalRouteRequest{CompanyID: domain.CompanyID(q.CompanyID), Partial: q.Partial}
	if q.MaterialID != nil {
		m := domain.MaterialID(*q.MaterialID)
		req.Material = &m
	}

	plan, err := h.Planner.DisposalRoute(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, "optimal route", err)
		return
	}
	writeJSON(w, r, http.StatusOK, routeResponse(plan.Route, plan.Accumulation.String()))
}

// Unload moves the company's waste along its optimal route and commits the
// new capacities.
func (h *CompanyHandler) Unload(w http.ResponseWriter, r *http.Request) {
	q, ok := parseRouteQuery(w, r)
	if !ok {
		return
	}

	var body dto.UnloadRequest

	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(&body); err != nil && err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return
	}
	if err := dto.Validate(body); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	req := services.UnloadRequest{CompanyID: domain.CompanyID(q.CompanyID), Partial: body.Partial}
	if body.MaterialID != nil {
		m := domain.MaterialID(*body.MaterialID)
		req.Material = &m
	}

	result, err := h.Planner.Unload(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, "unload", err)
		return
	}

	res := dto.UnloadResponse{
		Route:          routeResponse(result.Plan.Route, result.Plan.Accumulation.String()),
		StorageUpdates: make([]dto.StorageUpdateResponse, 0, len(result.Delta.Storages)),
		CompanyUpdates: make([]dto.CompanyUpdateResponse, 0, len(result.Delta.Companies)),
		Attempts:       result.Attempts,
	}
	for _, u := range result.Delta.Storages {
		res.StorageUpdates = append(res.StorageUpdates, dto.StorageUpdateResponse{
			StorageID:  int64(u.StorageID),
			MaterialID: int64(u.Material),
			Used:       u.Used,
		})
	}
	for _, u := range result.Delta.Companies {
		res.CompanyUpdates = append(res.CompanyUpdates, dto.CompanyUpdateResponse{
			CompanyID:  int64(u.CompanyID),
			MaterialID: int64(u.Material),
			Amount:     u.Amount,
		})
	}
	if result.Plan.Accumulation == domain.Partial {
		remainder := result.Delta.Remainder
		res.Remainder = &remainder
	}

	writeJSON(w, r, http.StatusOK, res)
}

// parseRouteQuery reads path variables and the partial flag, writing a 400
// response on bad input.
func parseRouteQuery(w http.ResponseWriter, r *http.Request) (dto.RouteQuery, bool) {
	vars := mux.Vars(r)
	var q dto.RouteQuery

	id, err := strconv.ParseInt(vars["companyID"], 10, 64)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid company id")
		return q, false
	}
	q.CompanyID = id

	if raw, ok := vars["storageID"]; ok {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "invalid storage id")
			return q, false
		}
		q.StorageID = &id
	}
	if raw, ok := vars["materialID"]; ok {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "invalid material id")
			return q, false
		}
		q.MaterialID = &id
	}
	if raw := r.URL.Query().Get("partial"); raw != "" {
		partial, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "partial must be true or false")
			return q, false
		}
		q.Partial = partial
	}

	if err := dto.Validate(q); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return q, false
	}
	return q, true
}

func routeResponse(r domain.Route, acc string) dto.RouteResponse {
	res := dto.RouteResponse{
		Distance:     r.Distance,
		Stops:        make([]dto.StopResponse, 0, len(r.Stops)),
		Accumulation: acc,
	}
	for _, s := range r.Stops {
		res.Stops = append(res.Stops, dto.StopResponse{
			StorageID:  int64(s.ID),
			Name:       s.Name,
			LocationID: int64(s.LocationID),
		})
	}
	for _, c := range r.Counters {
		res.Counters = append(res.Counters, dto.CounterResponse{MaterialID: int64(c.Material), Available: c.Available})
	}
	return res
}

func storageResponse(s *domain.Storage) dto.StorageResponse {
	res := dto.StorageResponse{
		StorageID:  int64(s.ID),
		Name:       s.Name,
		LocationID: int64(s.LocationID),
		Materials:  make([]dto.CapacityResponse, 0, len(s.Materials)),
	}
	for m, c := range s.Materials {
		res.Materials = append(res.Materials, dto.CapacityResponse{MaterialID: int64(m), Used: c.Used, Max: c.Max})
	}
	slices.SortFunc(res.Materials, func(a, b dto.CapacityResponse) int {
		return cmp.Compare(a.MaterialID, b.MaterialID)
	})
	return res
}
