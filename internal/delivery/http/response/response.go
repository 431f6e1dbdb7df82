package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/Siloq-app/siloq-wordpress-sub001/internal/apperror"
)

// Envelope is the body of every JSON response.
type Envelope struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorBody `json:"error,omitempty"`
}

type ErrorBody struct {
	Kind      string `json:"kind"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
}

type HealthResponse struct {
	Status     string            `json:"status"`
	Components map[string]string `json:"components"`
}

// StatusFor maps an error kind to an HTTP status.
func StatusFor(kind apperror.Kind) int {
	switch kind {
	case apperror.KindValidation:
		return http.StatusBadRequest
	case apperror.KindGuard:
		return http.StatusUnprocessableEntity
	case apperror.KindNotFound, apperror.KindNoBackup:
		return http.StatusNotFound
	case apperror.KindJobNotReady, apperror.KindConflict:
		return http.StatusConflict
	case apperror.KindRemoteTransient, apperror.KindRemotePermanent:
		return http.StatusBadGateway
	case apperror.KindUnauthorized:
		return http.StatusUnauthorized
	case apperror.KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// WriteJSON writes data wrapped in a success envelope.
func WriteJSON(w http.ResponseWriter, logger *zap.Logger, status int, data any) {
	write(w, logger, status, Envelope{Success: true, Data: data})
}

// WriteError writes err as a failure envelope. Internal errors are logged and
// their details are not exposed.
func WriteError(w http.ResponseWriter, logger *zap.Logger, err error) {
	kind := apperror.KindOf(err)
	body := &ErrorBody{Kind: string(kind), Retryable: apperror.IsRetryable(err)}

	var appErr *apperror.Error
	if kind == apperror.KindInternal || !errors.As(err, &appErr) {
		logger.Error("request failed", zap.Error(err))
		body.Kind = string(apperror.KindInternal)
		body.Message = "Internal server error"
	} else {
		body.Message = apperror.MessageOf(err)
	}
	write(w, logger, StatusFor(kind), Envelope{Success: false, Error: body})
}

func write(w http.ResponseWriter, logger *zap.Logger, status int, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(env); err != nil {
		logger.Error("failed to write JSON response", zap.Error(err))
	}
}
