package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/TimurManjosov/ledgerrules/internal/audit"
	"github.com/TimurManjosov/ledgerrules/internal/logger"
	"github.com/TimurManjosov/ledgerrules/internal/rules"
	"github.com/TimurManjosov/ledgerrules/internal/store"
	"github.com/TimurManjosov/ledgerrules/internal/telemetry"
)

type listFiltersResponse struct {
	Filters []store.Filter `json:"filters"`
}

// handleListFilters lists saved filters. With ?form=display the conditions
// are returned in editor form.
func (s *Server) handleListFilters(w http.ResponseWriter, r *http.Request) {
	filters, err := s.store.ListFilters(r.Context())
	if err != nil {
		logger.FromContext(r.Context()).Error().Err(err).Msg("list filters failed")
		InternalError(w, r, "Failed to list filters")
		return
	}
	if r.URL.Query().Get("form") == "display" {
		for i := range filters {
			filters[i].Conditions = displayConditions(filters[i].Conditions)
		}
	}
	writeJSON(w, http.StatusOK, listFiltersResponse{Filters: filters})
}

func (s *Server) handleGetFilter(w http.ResponseWriter, r *http.Request) {
	id, ok := filterID(w, r)
	if !ok {
		return
	}
	f, err := s.store.GetFilter(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		NotFoundError(w, r, "Filter not found")
		return
	}
	if err != nil {
		logger.FromContext(r.Context()).Error().Err(err).Str("filter_id", id.String()).Msg("get filter failed")
		InternalError(w, r, "Failed to load filter")
		return
	}
	if r.URL.Query().Get("form") == "display" {
		f.Conditions = displayConditions(f.Conditions)
	}
	writeJSON(w, http.StatusOK, f)
}

type upsertFilterRequest struct {
	ID           string            `json:"id,omitempty"`
	Name         string            `json:"name"`
	ConditionsOp string            `json:"conditionsOp"`
	Conditions   []rules.Condition `json:"conditions"`
}

// handleUpsertFilter validates and saves a filter. Conditions are stored in
// their normalized wire form.
func (s *Server) handleUpsertFilter(w http.ResponseWriter, r *http.Request) {
	var req upsertFilterRequest
	if !decodeJSON(w, r, &req, "expected fields 'name', 'conditionsOp' and 'conditions'") {
		return
	}
	_, t := s.translator(r)

	validationErrors := make(map[string]string)

	var id uuid.UUID
	if req.ID != "" {
		parsed, err := uuid.Parse(req.ID)
		if err != nil {
			validationErrors["id"] = "ID must be a UUID"
		}
		id = parsed
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		validationErrors["name"] = "Name is required"
	}
	op, err := store.ParseConditionsOp(req.ConditionsOp)
	if err != nil {
		validationErrors["conditionsOp"] = "Conditions op must be 'and' or 'or'"
	}

	conditions := make([]rules.Condition, len(req.Conditions))
	for i, c := range req.Conditions {
		normalized, kind := rules.ValidateCondition(c)
		if kind != rules.ErrKindNone {
			validationErrors[fmt.Sprintf("conditions[%d]", i)] = rules.FieldErrorMessage(kind, t)
			continue
		}
		normalized.Error, normalized.InputKey = "", ""
		conditions[i] = normalized
	}

	if len(validationErrors) > 0 {
		ValidationError(w, r, "Validation failed", validationErrors)
		return
	}

	var before *store.Filter
	if id != uuid.Nil {
		existing, err := s.store.GetFilter(r.Context(), id)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			logger.FromContext(r.Context()).Error().Err(err).Str("filter_id", id.String()).Msg("get filter failed")
			InternalError(w, r, "Failed to save filter")
			return
		}
		before = existing
	}

	f, err := s.store.UpsertFilter(r.Context(), store.UpsertParams{
		ID:           id,
		Name:         name,
		ConditionsOp: op,
		Conditions:   conditions,
	})
	if err != nil {
		logger.FromContext(r.Context()).Error().Err(err).Msg("upsert filter failed")
		InternalError(w, r, "Failed to save filter")
		return
	}
	s.refreshFilterGauge(r.Context())

	action, status := audit.ActionCreated, http.StatusCreated
	if before != nil {
		action, status = audit.ActionUpdated, http.StatusOK
	}
	s.audit.Log(audit.NewEventBuilder(r).
		ForFilter(f.ID.String()).
		WithAction(action).
		WithBeforeState(audit.FilterState(before)).
		WithAfterState(audit.FilterState(f)).
		Build())

	writeJSON(w, status, f)
}

func (s *Server) handleDeleteFilter(w http.ResponseWriter, r *http.Request) {
	id, ok := filterID(w, r)
	if !ok {
		return
	}
	before, err := s.store.GetFilter(r.Context(), id)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		logger.FromContext(r.Context()).Error().Err(err).Str("filter_id", id.String()).Msg("get filter failed")
		InternalError(w, r, "Failed to delete filter")
		return
	}
	if err := s.store.DeleteFilter(r.Context(), id); err != nil {
		logger.FromContext(r.Context()).Error().Err(err).Str("filter_id", id.String()).Msg("delete filter failed")
		InternalError(w, r, "Failed to delete filter")
		return
	}
	s.refreshFilterGauge(r.Context())
	if before != nil {
		s.audit.Log(audit.NewEventBuilder(r).
			ForFilter(id.String()).
			WithAction(audit.ActionDeleted).
			WithBeforeState(audit.FilterState(before)).
			Build())
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) refreshFilterGauge(ctx context.Context) {
	filters, err := s.store.ListFilters(ctx)
	if err != nil {
		logger.FromContext(ctx).Warn().Err(err).Msg("count filters failed")
		return
	}
	telemetry.StoredFilters.Set(float64(len(filters)))
}

func filterID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		BadRequestError(w, r, ErrCodeInvalidID, "Filter ID must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}

func displayConditions(conds []rules.Condition) []rules.Condition {
	out := make([]rules.Condition, len(conds))
	for i, c := range conds {
		out[i] = rules.Parse(c.Typed())
	}
	return out
}
