package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/unkn0wn-root/wtcache"
	"github.com/unkn0wn-root/wtcache/store"
)

// AppError is the JSON error body returned by every handler.
type AppError struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

const (
	CodeBadRequest    = "BAD_REQUEST"
	CodeInvalidJSON   = "INVALID_JSON"
	CodeNotFound      = "NOT_FOUND"
	CodeNotCached     = "NOT_CACHED"
	CodeStoreFailure  = "STORE_FAILURE"
	CodeTimeout       = "TIMEOUT"
	CodeCanceled      = "CANCELED"
	CodeInternalError = "INTERNAL_ERROR"
)

func (e *AppError) Error() string { return e.Code + ": " + e.Message }

func newAppError(status int, code, msg string) *AppError {
	return &AppError{Status: status, Code: code, Message: msg}
}

func badRequest(msg string) *AppError {
	return newAppError(http.StatusBadRequest, CodeBadRequest, msg)
}

func invalidJSON(msg string) *AppError {
	return newAppError(http.StatusBadRequest, CodeInvalidJSON, msg)
}

// fromError maps cache and store errors onto HTTP statuses.
func fromError(err error) *AppError {
	var app *AppError
	if errors.As(err, &app) {
		return app
	}
	switch {
	case errors.Is(err, wtcache.ErrKeyNotFound):
		return newAppError(http.StatusNotFound, CodeNotCached, "key is not cached")
	case errors.Is(err, store.ErrNotFound):
		return newAppError(http.StatusNotFound, CodeNotFound, "key not found")
	case errors.Is(err, context.Canceled):
		return newAppError(http.StatusRequestTimeout, CodeCanceled, "request canceled")
	case errors.Is(err, context.DeadlineExceeded):
		return newAppError(http.StatusGatewayTimeout, CodeTimeout, "request timeout")
	default:
		return newAppError(http.StatusBadGateway, CodeStoreFailure, err.Error())
	}
}

type successEnvelope struct {
	Data any `json:"data"`
}

type errorEnvelope struct {
	Err *AppError `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeSuccess(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, successEnvelope{Data: data})
}

func writeError(w http.ResponseWriter, err error) {
	app := fromError(err)
	writeJSON(w, app.Status, errorEnvelope{Err: app})
}

type handlerFunc func(w http.ResponseWriter, r *http.Request) error

func wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h(w, r); err != nil {
			writeError(w, err)
		}
	}
}
