package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"golang.org/x/text/language"

	"github.com/TimurManjosov/ledgerrules/internal/i18n"
)

const maxBodyBytes = 1 << 20 // 1 MB

// ===== HTTP Helpers =====

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeJSON reads a size-limited JSON body into dst. On failure it writes
// the error response and returns false.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any, hint string) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			RequestTooLargeError(w, r, "Request body too large")
			return false
		}
		BadRequestError(w, r, ErrCodeInvalidJSON, "Invalid JSON: "+hint)
		return false
	}
	return true
}

// ===== Localization Helpers =====

// translator picks the catalog language from Accept-Language.
func (s *Server) translator(r *http.Request) (language.Tag, i18n.TranslateFunc) {
	tag := s.catalog.Match(r.Header.Get("Accept-Language"))
	return tag, s.catalog.Translator(tag)
}
