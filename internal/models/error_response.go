package models

import "net/http"

type ErrorKind string // Класс ошибки движка

const (
	ValidationError       ErrorKind = "validation"
	NotFoundError         ErrorKind = "not_found"
	ForbiddenError        ErrorKind = "forbidden"
	InvalidStateError     ErrorKind = "invalid_state"
	StoreUnavailableError ErrorKind = "store_unavailable"
)

// ErrorResponse описывает ошибку с кодом, классом и сообщением.
type ErrorResponse struct {
	StatusCode int       `json:"-"`
	Kind       ErrorKind `json:"-"`
	Message    string    `json:"reason"`
}

// NewErrorResponse создает новую ошибку с кодом, классом и сообщением.
func NewErrorResponse(statusCode int, kind ErrorKind, message string) *ErrorResponse {
	return &ErrorResponse{
		StatusCode: statusCode,
		Kind:       kind,
		Message:    message}
}

// NewValidationError создает ошибку валидации входных данных.
func NewValidationError(message string) *ErrorResponse {
	return NewErrorResponse(http.StatusBadRequest, ValidationError, message)
}

// NewNotFoundError создает ошибку отсутствия записи.
func NewNotFoundError(message string) *ErrorResponse {
	return NewErrorResponse(http.StatusNotFound, NotFoundError, message)
}

// NewForbiddenError создает ошибку доступа.
func NewForbiddenError(message string) *ErrorResponse {
	return NewErrorResponse(http.StatusForbidden, ForbiddenError, message)
}

// NewInvalidStateError создает ошибку недопустимого перехода статуса.
func NewInvalidStateError(message string) *ErrorResponse {
	return NewErrorResponse(http.StatusConflict, InvalidStateError, message)
}

// NewStoreError создает ошибку недоступности хранилища.
func NewStoreError(message string) *ErrorResponse {
	return NewErrorResponse(http.StatusServiceUnavailable, StoreUnavailableError, message)
}

// Реализация метода Error() для удовлетворения интерфейса error.
func (e *ErrorResponse) Error() string {
	return e.Message
}

// IsKind проверяет, относится ли ошибка к указанному классу.
func IsKind(err error, kind ErrorKind) bool {
	errorResponse, ok := err.(*ErrorResponse)
	return ok && errorResponse.Kind == kind
}
