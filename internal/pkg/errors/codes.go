package errors

import "net/http"

var (
	ErrInvalidYear = New(
		"INVALID_YEAR",
		"Year is not available",
		http.StatusBadRequest,
	)

	ErrInvalidViewMode = New(
		"INVALID_VIEW_MODE",
		"View mode must be composite or individual",
		http.StatusBadRequest,
	)

	ErrInvalidContainer = New(
		"INVALID_CONTAINER",
		"Map container must have a positive width and height",
		http.StatusBadRequest,
	)

	ErrSessionNotFound = New(
		"SESSION_NOT_FOUND",
		"Map session not found",
		http.StatusNotFound,
	)

	ErrSessionClosed = New(
		"SESSION_CLOSED",
		"Map session has been unmounted",
		http.StatusGone,
	)

	ErrShapeNotFound = New(
		"SHAPE_NOT_FOUND",
		"Shape not found on the current overlay",
		http.StatusNotFound,
	)

	ErrDetailNotOpen = New(
		"DETAIL_NOT_OPEN",
		"No cell is selected",
		http.StatusNotFound,
	)

	ErrUnauthorized = New(
		"UNAUTHORIZED",
		"Unauthorized. Please log in again.",
		http.StatusUnauthorized,
	)

	ErrBackendUnavailable = New(
		"BACKEND_UNAVAILABLE",
		"Evaluation backend is unavailable",
		http.StatusBadGateway,
	)

	ErrDatabaseError = New(
		"DATABASE_ERROR",
		"Database operation failed",
		http.StatusInternalServerError,
	)

	ErrCacheError = New(
		"CACHE_ERROR",
		"Cache operation failed",
		http.StatusInternalServerError,
	)

	ErrInvalidRequest = New(
		"INVALID_REQUEST",
		"Invalid request parameters",
		http.StatusBadRequest,
	)

	ErrInternalServer = New(
		"INTERNAL_SERVER_ERROR",
		"Internal server error",
		http.StatusInternalServerError,
	)
)
