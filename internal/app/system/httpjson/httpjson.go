// internal/app/system/httpjson/httpjson.go

// Package httpjson holds the JSON request/response helpers shared by every
// API feature, including the mapping from engine errors onto HTTP statuses.
package httpjson

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/studycircle/studycircle/internal/app/membership"
)

// maxBodySize is the maximum allowed request body size (1 MB).
const maxBodySize = 1 << 20

// errorEnvelope is the standard error response shape.
type errorEnvelope struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Write writes a JSON response with the given status code.
func Write(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteError writes a JSON error envelope with the given status code.
func WriteError(w http.ResponseWriter, statusCode int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(errorEnvelope{
		Error: errorDetail{Code: code, Message: message},
	})
}

// Read decodes the request body into v, enforcing a size limit.
func Read(r *http.Request, v interface{}) error {
	lr := io.LimitReader(r.Body, maxBodySize)
	return json.NewDecoder(lr).Decode(v)
}

// engineErrors maps each engine sentinel onto its HTTP status and stable
// error code. Error kinds: not found → 404, conflict → 409, permission
// denied → 403, failed precondition → 422, invalid argument → 400.
var engineErrors = []struct {
	err    error
	status int
	code   string
}{
	{membership.ErrGroupNotFound, http.StatusNotFound, "group_not_found"},
	{membership.ErrUserNotFound, http.StatusNotFound, "user_not_found"},
	{membership.ErrDuplicateGroupName, http.StatusConflict, "duplicate_group_name"},
	{membership.ErrVersionConflict, http.StatusConflict, "version_conflict"},
	{membership.ErrAlreadyMember, http.StatusConflict, "already_member"},
	{membership.ErrAlreadyAdmin, http.StatusConflict, "already_admin"},
	{membership.ErrNotGroupAdmin, http.StatusForbidden, "not_group_admin"},
	{membership.ErrNotMember, http.StatusUnprocessableEntity, "not_member"},
	{membership.ErrNotAdmin, http.StatusUnprocessableEntity, "not_admin"},
	{membership.ErrLastAdmin, http.StatusUnprocessableEntity, "last_admin"},
	{membership.ErrSelfDemotion, http.StatusBadRequest, "self_demotion"},
	{membership.ErrEmptyQuery, http.StatusBadRequest, "empty_query"},
	{membership.ErrNameRequired, http.StatusBadRequest, "name_required"},
	{membership.ErrDescriptionRequired, http.StatusBadRequest, "description_required"},
}

// WriteEngineError maps an engine error onto the response. Unrecognized
// errors become a 500 with a generic body; the caller is responsible for
// logging those.
func WriteEngineError(w http.ResponseWriter, err error) {
	for _, m := range engineErrors {
		if errors.Is(err, m.err) {
			WriteError(w, m.status, m.code, m.err.Error())
			return
		}
	}
	WriteError(w, http.StatusInternalServerError, "internal_error", "internal server error")
}

// IsEngineError reports whether err maps to a client-facing status (i.e.
// it is one of the engine sentinels rather than an infrastructure failure).
func IsEngineError(err error) bool {
	for _, m := range engineErrors {
		if errors.Is(err, m.err) {
			return true
		}
	}
	return false
}
