package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/lumina-ai/rag-backend/pkg/e"
)

type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func NewErrorResponse(code int, message string) *ErrorResponse {
	return &ErrorResponse{
		Code:    code,
		Message: message,
	}
}

// ToHTTPResponse переводит категорию ошибки ядра в HTTP-статус.
// Неизвестные ошибки наружу не раскрываются.
func ToHTTPResponse(err error) (int, string) {
	switch {
	case errors.Is(err, e.ErrInvalidInput):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, e.ErrRateLimited):
		return http.StatusTooManyRequests, e.ErrRateLimited.Error()
	case errors.Is(err, e.ErrTimeout):
		return http.StatusGatewayTimeout, e.ErrTimeout.Error()
	case errors.Is(err, e.ErrContractViolation):
		return http.StatusBadGateway, e.ErrContractViolation.Error()
	case errors.Is(err, e.ErrProviderFailure):
		return http.StatusBadGateway, e.ErrProviderFailure.Error()
	case errors.Is(err, e.ErrCollectionUnavailable):
		return http.StatusServiceUnavailable, e.ErrCollectionUnavailable.Error()
	case errors.Is(err, e.ErrStorageWrite):
		return http.StatusServiceUnavailable, e.ErrStorageWrite.Error()
	case errors.Is(err, e.ErrStorageRead):
		return http.StatusServiceUnavailable, e.ErrStorageRead.Error()
	default:
		return http.StatusInternalServerError, e.ErrInternalServerError.Error()
	}
}

func WriteError(w http.ResponseWriter, err error) {
	code, msg := ToHTTPResponse(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(NewErrorResponse(code, msg))
}

func WriteSuccess(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// decodeJSON разбирает тело запроса в dst
func decodeJSON(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return e.ErrNotJSON
	}
	return nil
}
