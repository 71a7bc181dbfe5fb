package domain

import "errors"

var (
	// ErrNoData means the backend has no aggregated cells for the requested year.
	ErrNoData = errors.New("no data for year")
	// ErrUnauthorized means the backend rejected the service token.
	ErrUnauthorized = errors.New("unauthorized")
)

// BackendError - ошибка API оценок с текстом, пригодным для показа пользователю
type BackendError struct {
	StatusCode int
	Message    string
}

func (e *BackendError) Error() string {
	return e.Message
}
