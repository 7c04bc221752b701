package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	apperrors "github.com/utafrali/OnlineStore/pkg/errors"
	"github.com/utafrali/OnlineStore/pkg/logger"
	"github.com/utafrali/OnlineStore/pkg/validator"
)

// MaxBodyBytes caps request bodies read by DecodeJSON.
const MaxBodyBytes = 1 << 20

// Response is the JSON envelope every endpoint answers with.
type Response struct {
	Data  any            `json:"data,omitempty"`
	Error *ErrorResponse `json:"error,omitempty"`
}

type ErrorResponse struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

// WriteJSON encodes v with the given status. Encoding errors are dropped
// because the header is already on the wire.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteData wraps v in Response{Data: v}.
func WriteData(w http.ResponseWriter, status int, v any) {
	WriteJSON(w, status, Response{Data: v})
}

func writeErrorBody(w http.ResponseWriter, status int, code, message, requestID string) {
	WriteJSON(w, status, Response{
		Error: &ErrorResponse{Code: code, Message: message, RequestID: requestID},
	})
}

// WriteError renders err using its AppError details when present, otherwise
// by sentinel. 5xx responses are logged with the request-scoped logger when
// the RequestLogger middleware installed one, else with fallback.
func WriteError(w http.ResponseWriter, r *http.Request, err error, fallback *slog.Logger) {
	l := logger.FromContext(r.Context())
	if l == slog.Default() && fallback != nil {
		l = fallback
	}
	requestID := logger.CorrelationIDFromContext(r.Context())

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.Status >= http.StatusInternalServerError {
			logInternal(l, r, err)
		}
		writeErrorBody(w, appErr.Status, appErr.Code, appErr.Message, requestID)
		return
	}

	status := apperrors.HTTPStatus(err)
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		writeErrorBody(w, status, "NOT_FOUND", "resource not found", requestID)
	case errors.Is(err, apperrors.ErrAlreadyExists):
		writeErrorBody(w, status, "ALREADY_EXISTS", "resource already exists", requestID)
	case errors.Is(err, apperrors.ErrConflict):
		writeErrorBody(w, status, "CONFLICT", err.Error(), requestID)
	case errors.Is(err, apperrors.ErrInvalidInput):
		writeErrorBody(w, status, "INVALID_INPUT", err.Error(), requestID)
	case errors.Is(err, apperrors.ErrUnauthorized):
		writeErrorBody(w, status, "UNAUTHORIZED", "unauthorized", requestID)
	default:
		logInternal(l, r, err)
		writeErrorBody(w, http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred", requestID)
	}
}

func logInternal(l *slog.Logger, r *http.Request, err error) {
	l.ErrorContext(r.Context(), "internal error",
		slog.String("error", err.Error()),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
	)
}

// WriteValidationError answers 400 with per-field messages for validator
// failures and a plain INVALID_INPUT for anything else (e.g. malformed JSON).
func WriteValidationError(w http.ResponseWriter, err error) {
	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		WriteJSON(w, http.StatusBadRequest, Response{
			Error: &ErrorResponse{
				Code:    "VALIDATION_ERROR",
				Message: "request validation failed",
				Fields:  valErr.Fields(),
			},
		})
		return
	}
	writeErrorBody(w, http.StatusBadRequest, "INVALID_INPUT", err.Error(), "")
}

// DecodeJSON reads at most MaxBodyBytes of JSON into dst and validates it.
// On failure it writes the 400 itself and returns false.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			err = errors.New("request body is empty")
		}
		WriteValidationError(w, fmt.Errorf("invalid request body: %w", err))
		return false
	}
	if err := validator.Validate(dst); err != nil {
		WriteValidationError(w, err)
		return false
	}
	return true
}

// ParseID parses a positive integer identifier. On failure it writes a 400
// naming the parameter and returns false.
func ParseID(w http.ResponseWriter, name, raw string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeErrorBody(w, http.StatusBadRequest, "INVALID_PARAMETER",
			fmt.Sprintf("%s must be a positive integer, got %q", name, raw), "")
		return 0, false
	}
	return id, true
}

// PaginatedResponse is the list envelope used by paged endpoints.
type PaginatedResponse[T any] struct {
	Data       []T  `json:"data"`
	TotalCount int  `json:"total_count"`
	Page       int  `json:"page"`
	PerPage    int  `json:"per_page"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
}

func NewPaginatedResponse[T any](data []T, totalCount, page, perPage int) PaginatedResponse[T] {
	if perPage <= 0 {
		perPage = 1
	}
	totalPages := (totalCount + perPage - 1) / perPage
	if data == nil {
		data = []T{}
	}
	return PaginatedResponse[T]{
		Data:       data,
		TotalCount: totalCount,
		Page:       page,
		PerPage:    perPage,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
	}
}
