package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/alanyoungcy/polyview/internal/domain"
	"github.com/alanyoungcy/polyview/internal/platform/polymarket"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// writeJSON marshals v as JSON and writes it to the response with the given
// HTTP status code. If marshaling fails, it falls back to a plain-text 500.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, `{"error":"internal server error","code":"internal"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	w.Write(data)
}

// writeError maps err to a status and code and writes it as JSON.
func writeError(w http.ResponseWriter, err error) {
	status, body := Classify(err)
	writeJSON(w, status, body)
}

// Classify maps an error from the view services to an HTTP status and a
// user-facing body. The websocket endpoint reuses the code.
func Classify(err error) (int, ErrorBody) {
	var apiErr *polymarket.APIError
	var urlErr *url.Error
	switch {
	case domain.IsValidation(err):
		return http.StatusBadRequest, ErrorBody{Error: err.Error(), Code: "validation"}
	case errors.Is(err, domain.ErrBusy):
		return http.StatusConflict, ErrorBody{Error: err.Error(), Code: "busy"}
	case errors.Is(err, domain.ErrNoSearch):
		return http.StatusConflict, ErrorBody{Error: err.Error(), Code: "no_search"}
	case errors.Is(err, domain.ErrNotPaginated):
		return http.StatusBadRequest, ErrorBody{Error: err.Error(), Code: "not_paginated"}
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, ErrorBody{Error: "upstream request timed out", Code: "timeout"}
	case errors.As(err, &apiErr):
		return http.StatusBadGateway, ErrorBody{
			Error: "data API returned " + strconv.Itoa(apiErr.Status),
			Code:  "upstream",
		}
	case errors.As(err, &urlErr):
		return http.StatusBadGateway, ErrorBody{Error: "data API unreachable", Code: "upstream"}
	default:
		return http.StatusInternalServerError, ErrorBody{Error: "internal server error", Code: "internal"}
	}
}

// parseOffset reads a non-negative offset from the query string. Invalid
// values are a validation error.
func parseOffset(r *http.Request) (int, error) {
	v := r.URL.Query().Get("offset")
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, &domain.ValidationError{Field: "offset", Value: v, Err: errors.New("must be a non-negative integer")}
	}
	return n, nil
}

// logHandler is a convenience to attach slog fields in handler code.
func logHandler(logger *slog.Logger, handler string) *slog.Logger {
	return logger.With(slog.String("handler", handler))
}
