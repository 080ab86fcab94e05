package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	contractx "github.com/tanpawarit/Chative-Personal-Assistant/agent/contract"
	"github.com/tanpawarit/Chative-Personal-Assistant/agent/external"
	"github.com/tanpawarit/Chative-Personal-Assistant/agent/history"
	"github.com/tanpawarit/Chative-Personal-Assistant/pkg/tts"
)

const (
	errorCodeInvalidRequest = "invalid_request"
	errorCodeNotFound       = "not_found"
	errorCodeUnavailable    = "service_unavailable"
	errorCodeUpstream       = "upstream_error"
	errorCodeInference      = "inference_error"
	errorCodeTooLarge       = "request_too_large"
	errorCodeInternal       = "internal_error"

	inferenceErrorMessage = "LLM Error: Could not generate response."
)

var (
	errInvalidRequest = errors.New("invalid request")
	errNotConfigured  = errors.New("service is not configured")
	errBodyTooLarge   = errors.New("request body too large")
)

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type apiErrorResponse struct {
	Error apiError `json:"error"`
}

func writeMappedError(w http.ResponseWriter, err error) {
	status, code := mapError(err)
	message := err.Error()
	if code == errorCodeInference {
		message = inferenceErrorMessage
	}
	writeError(w, status, code, message)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, apiErrorResponse{
		Error: apiError{
			Code:    code,
			Message: message,
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func decodeJSONBody(r *http.Request, dst any) error {
	if r.Body == nil {
		return invalidRequestError("request body is required")
	}

	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return fmt.Errorf("%w: request body exceeds %d bytes", errBodyTooLarge, maxBytesErr.Limit)
		}
		if errors.Is(err, io.EOF) {
			return invalidRequestError("request body is required")
		}
		return invalidRequestError(fmt.Sprintf("invalid JSON body: %v", err))
	}

	if err := decoder.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return invalidRequestError("request body must contain exactly one JSON object")
	}
	return nil
}

func mapError(err error) (int, string) {
	var speechErr *tts.APIError
	switch {
	case errors.Is(err, contractx.ErrDispatch):
		return http.StatusInternalServerError, errorCodeInternal
	case errors.Is(err, errInvalidRequest),
		errors.Is(err, contractx.ErrValidation),
		errors.Is(err, contractx.ErrMissingArgument),
		errors.Is(err, tts.ErrEmptyText):
		return http.StatusBadRequest, errorCodeInvalidRequest
	case errors.Is(err, errBodyTooLarge):
		return http.StatusRequestEntityTooLarge, errorCodeTooLarge
	case errors.Is(err, external.ErrNotFound):
		return http.StatusNotFound, errorCodeNotFound
	case errors.Is(err, errNotConfigured), errors.Is(err, history.ErrDisabled):
		return http.StatusServiceUnavailable, errorCodeUnavailable
	case errors.Is(err, contractx.ErrInference):
		return http.StatusInternalServerError, errorCodeInference
	case errors.As(err, &speechErr):
		if speechErr.StatusCode >= http.StatusBadRequest && speechErr.StatusCode < 600 {
			return speechErr.StatusCode, errorCodeUpstream
		}
		return http.StatusBadGateway, errorCodeUpstream
	case errors.Is(err, contractx.ErrExternalUnavailable),
		errors.Is(err, contractx.ErrExternalBadResponse),
		errors.Is(err, tts.ErrUnavailable),
		errors.Is(err, context.DeadlineExceeded):
		return http.StatusBadGateway, errorCodeUpstream
	default:
		return http.StatusInternalServerError, errorCodeInternal
	}
}

func invalidRequestError(message string) error {
	return fmt.Errorf("%w: %s", errInvalidRequest, message)
}
