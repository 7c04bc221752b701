// Package http exposes the store over a JSON REST API.
package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/utafrali/OnlineStore/pkg/errors"
	"github.com/utafrali/OnlineStore/pkg/httputil"
)

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	return httputil.ParseID(w, "id", chi.URLParam(r, "id"))
}

// bodyID lets clients omit the id in an update body; an explicit id must
// then match the path.
func bodyID(path, body int64) int64 {
	if body == 0 {
		return path
	}
	return body
}

// checkBodyID writes a 400 and returns false when the body names another
// entity than the path.
func checkBodyID(w http.ResponseWriter, r *http.Request, resource string, path, body int64, logger *slog.Logger) bool {
	if body != 0 && body != path {
		httputil.WriteError(w, r, apperrors.InvalidInput(resource+" ID mismatch"), logger)
		return false
	}
	return true
}

// writeFound answers 204 when the silent operation found its target and
// 404 otherwise.
func writeFound(w http.ResponseWriter, r *http.Request, ok bool, resource string, id int64, logger *slog.Logger) {
	if !ok {
		httputil.WriteError(w, r, apperrors.NotFound(resource, id), logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// queryID reads an optional positive id from the query string.
func queryID(w http.ResponseWriter, r *http.Request, name string) (*int64, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{
				Code:    "INVALID_PARAMETER",
				Message: fmt.Sprintf("%s must be a positive integer", name),
			},
		})
		return nil, false
	}
	return &id, true
}
