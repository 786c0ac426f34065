package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/matzehuels/gangsheet/pkg/catalog"
	"github.com/matzehuels/gangsheet/pkg/errors"
	"github.com/matzehuels/gangsheet/pkg/observability"
	"github.com/matzehuels/gangsheet/pkg/pipeline"
)

// Response headers describing a finished run.
const (
	headerRunID   = "X-Gangsheet-Run"
	headerPages   = "X-Gangsheet-Pages"
	headerLength  = "X-Gangsheet-Length-Cm"
	headerSkipped = "X-Gangsheet-Skipped"
)

type errorBody struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

type errorResponse struct {
	Error   errorBody `json:"error"`
	Skipped []skipped `json:"skipped,omitempty"`
}

type skipped struct {
	Index   int         `json:"index"`
	Name    string      `json:"name"`
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

func skippedOf(rs []catalog.Rejection) []skipped {
	if len(rs) == 0 {
		return nil
	}
	out := make([]skipped, len(rs))
	for i, r := range rs {
		out[i] = skipped{Index: r.Index, Name: r.Name, Code: errors.GetCode(r.Err), Message: errors.UserMessage(r.Err)}
	}
	return out
}

// statusFor maps an error code to an HTTP status.
func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidRequest, errors.ErrCodeInvalidCategory,
		errors.ErrCodeInvalidPath, errors.ErrCodeDecodeFailure, errors.ErrCodeEmptyAsset:
		return http.StatusBadRequest
	case errors.ErrCodeAssetTooLarge:
		return http.StatusRequestEntityTooLarge
	case errors.ErrCodeNotFound, errors.ErrCodeSessionNotFound:
		return http.StatusNotFound
	case errors.ErrCodeEmptyResult:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// fail writes err as a JSON error, attaching the skipped designs of res when
// there is one.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error, res *pipeline.Result) {
	status := statusFor(err)
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}

	observability.HTTP().OnError(r.Context(), r.Method, routePattern(r), err)
	if status >= http.StatusInternalServerError {
		s.logger(r).Error("request failed", "error", err)
	} else {
		s.logger(r).Warn("request rejected", "code", code, "error", errors.UserMessage(err))
	}

	body := errorResponse{Error: errorBody{Code: code, Message: errors.UserMessage(err)}}
	if res != nil {
		body.Skipped = skippedOf(res.Skipped)
	}
	writeJSON(w, status, body)
}

// runHeaders describes res in response headers.
func runHeaders(w http.ResponseWriter, res *pipeline.Result) {
	h := w.Header()
	h.Set(headerRunID, res.RunID)
	h.Set(headerPages, strconv.Itoa(len(res.Pages)))
	h.Set(headerLength, strconv.FormatFloat(res.Summary.Length, 'f', 1, 64))
	h.Set(headerSkipped, strconv.Itoa(len(res.Skipped)))
}
