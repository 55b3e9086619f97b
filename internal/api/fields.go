package api

import (
	"net/http"

	"github.com/TimurManjosov/ledgerrules/internal/rules"
)

func (s *Server) handleFields(w http.ResponseWriter, r *http.Request) {
	tag, _ := s.translator(r)
	snap := s.fields.Load(tag)

	w.Header().Set("Vary", "Accept-Language")
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == snap.ETag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", snap.ETag)
	w.Header().Set("Content-Language", snap.Language)
	writeJSON(w, http.StatusOK, snap)
}

type defaultsRequest struct {
	Field string `json:"field"`
}

// handleDefaults returns the starting condition for a field picked in the
// editor, e.g. "amount-inflow" or "date".
func (s *Server) handleDefaults(w http.ResponseWriter, r *http.Request) {
	var req defaultsRequest
	if !decodeJSON(w, r, &req, "expected field 'field'") {
		return
	}
	if req.Field == "" {
		ValidationError(w, r, "Validation failed", map[string]string{"field": "Field is required"})
		return
	}
	c := rules.ConfigureDefaults(req.Field)
	if c.Type == "" {
		ValidationError(w, r, "Validation failed", map[string]string{"field": "Unknown field"})
		return
	}
	writeJSON(w, http.StatusOK, c)
}
