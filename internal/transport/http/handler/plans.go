package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/unalone/unalone-api/internal/application/plan"
	"github.com/unalone/unalone-api/internal/domain"
	"github.com/unalone/unalone-api/internal/pkg/validate"
	"github.com/unalone/unalone-api/internal/transport/http/middleware"
)

const defaultRadiusMeters = 5000

// PlanHandler handles the /plans endpoints.
type PlanHandler struct {
	svc plan.Service
}

func NewPlanHandler(svc plan.Service) *PlanHandler { return &PlanHandler{svc: svc} }

func (h *PlanHandler) Nearby(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	latStr, lngStr := q.Get("lat"), q.Get("lng")
	if latStr == "" || lngStr == "" {
		writeError(w, http.StatusBadRequest, "lat and lng required")
		return
	}
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "lat must be a number")
		return
	}
	lng, err := strconv.ParseFloat(lngStr, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "lng must be a number")
		return
	}
	radius := float64(defaultRadiusMeters)
	if s := q.Get("radius"); s != "" {
		if radius, err = strconv.ParseFloat(s, 64); err != nil || radius <= 0 {
			writeError(w, http.StatusBadRequest, "radius must be a positive number")
			return
		}
	}

	plans, err := h.svc.Nearby(r.Context(), domain.NearbyQuery{
		Lat:    lat,
		Lng:    lng,
		Radius: radius,
		Filter: domain.ParseTimeFilter(q.Get("filter")),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, plans)
}

func (h *PlanHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}
	var req domain.CreatePlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	p, err := h.svc.Create(r.Context(), claims.UserID, req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, PlanEnvelope{Success: true, Message: "Plan created successfully", Plan: p})
}

func (h *PlanHandler) Join(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}
	if err := h.svc.Join(r.Context(), chi.URLParam(r, "id"), claims.UserID); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "joined"})
}
