package httpserver

import (
	"encoding/json"
	"net/http"

	"github.com/Imm0bilize/xai-prediction-gateway/internal/entities"
	"github.com/Imm0bilize/xai-prediction-gateway/internal/ucase"
	"github.com/pkg/errors"
)

type successResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

type errorResponse struct {
	Status string       `json:"status"`
	Error  errorPayload `json:"error"`
}

type errorPayload struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Field     string `json:"field,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeSuccess(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, successResponse{Status: "success", Message: message, Data: data})
}

func writeError(w http.ResponseWriter, status int, payload errorPayload) {
	writeJSON(w, status, errorResponse{Status: "error", Error: payload})
}

func mapSubmissionError(err error) (int, string) {
	var (
		validationErr *entities.ValidationError
		transportErr  *entities.TransportError
		decodeErr     *entities.DecodeError
		networkErr    *entities.NetworkError
	)

	switch {
	case err == nil:
		return http.StatusOK, ""
	case errors.As(err, &validationErr):
		return http.StatusUnprocessableEntity, "validation_error"
	case errors.Is(err, errInvalidBody):
		return http.StatusBadRequest, "invalid_json"
	case errors.Is(err, ucase.ErrUnknownField):
		return http.StatusBadRequest, "unknown_field"
	case errors.Is(err, entities.ErrUnknownDomain):
		return http.StatusNotFound, "unknown_domain"
	case errors.As(err, &transportErr):
		return http.StatusBadGateway, "transport_error"
	case errors.As(err, &decodeErr):
		return http.StatusBadGateway, "decode_error"
	case errors.As(err, &networkErr):
		return http.StatusBadGateway, "network_error"
	case errors.Is(err, entities.ErrSubmissionPending), errors.Is(err, ucase.ErrResultDiscarded):
		return http.StatusConflict, "conflict"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
