package handler

import "github.com/ferreteria/backend/internal/interfaces/http/dto"

// Swagger envelopes. The handlers write dto.Response; these mirror it with a
// typed data field so swag can render per-endpoint schemas.

// APIResponse wraps a single resource or report
// @Description Envelope returned by every cash, credit and expense endpoint
type APIResponse[T any] struct {
	Success bool           `json:"success" example:"true"`
	Data    T              `json:"data,omitempty"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
	Meta    *dto.Meta      `json:"meta,omitempty"`
}

// ListResponse wraps a paginated listing; meta is always present
// @Description Paginated envelope for list endpoints
type ListResponse[T any] struct {
	Success bool      `json:"success" example:"true"`
	Data    []T       `json:"data"`
	Meta    *dto.Meta `json:"meta"`
}

// ErrorResponse is returned for every 4xx/5xx
// @Description Error envelope; error.code is one of the dto.ErrCode* values
type ErrorResponse struct {
	Success bool           `json:"success" example:"false"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
}

// SuccessResponse acknowledges a command that returns no body
// @Description Acknowledgement without data
type SuccessResponse struct {
	Success bool `json:"success" example:"true"`
}
