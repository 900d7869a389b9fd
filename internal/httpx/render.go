package httpx

import (
	"encoding/json"
	"log"
	"net/http"

	"orange-brew/internal/apperr"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

var statusByKind = map[apperr.Kind]int{
	apperr.KindValidation:        http.StatusBadRequest,
	apperr.KindNotFound:          http.StatusNotFound,
	apperr.KindAuthentication:    http.StatusUnauthorized,
	apperr.KindAuthorization:     http.StatusForbidden,
	apperr.KindConflict:          http.StatusConflict,
	apperr.KindInvalidTransition: http.StatusConflict,
	apperr.KindInternal:          http.StatusInternalServerError,
}

// writeError maps the error taxonomy to HTTP. Internal errors are logged
// server-side and surfaced with a generic message.
func writeError(w http.ResponseWriter, err error) {
	kind := apperr.KindOf(err)
	status, ok := statusByKind[kind]
	if !ok {
		status = http.StatusInternalServerError
	}
	msg := err.Error()
	if kind == apperr.KindInternal {
		log.Printf("internal error: %v", err)
		msg = "Internal server error"
	}
	writeJSON(w, status, map[string]string{"message": msg})
}
