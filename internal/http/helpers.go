package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mrlokans/bookmemo/internal/apperrors"
	"github.com/mrlokans/bookmemo/internal/workerpool"
)

// --- Response Types ---

// ErrorResponse is the standard error response format for all API errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`    // machine-readable error code
	Details any    `json:"details,omitempty"` // additional context (validation errors, etc.)
}

// SuccessResponse is a standard success response with optional data.
type SuccessResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// Error codes carried in ErrorResponse.Code.
const (
	codeInvalidInput = "invalid_input"
	codeNotFound     = "not_found"
	codePartialWrite = "partial_write"
	codeUpstream     = "upstream_error"
	codeOverloaded   = "overloaded"
	codeTimeout      = "timeout"
	codeInternal     = "internal"
)

// --- Error Response Helpers ---

// respondBadRequest sends a 400 Bad Request response.
func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: message, Code: codeInvalidInput})
}

// respondNotFound sends a 404 Not Found response.
func respondNotFound(c *gin.Context, resource string) {
	c.JSON(http.StatusNotFound, ErrorResponse{Error: resource + " not found", Code: codeNotFound})
}

// respondInternalError logs the error and sends a 500 Internal Server Error response.
// The actual error is logged but not exposed to the client.
func respondInternalError(c *gin.Context, err error, context string) {
	requestLogger(c).Error("internal error", zap.String("context", context), zap.Error(err))
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error", Code: codeInternal})
}

// respondAppError maps a domain error onto a status code. resource names the
// thing that was looked up, for 404 messages.
func respondAppError(c *gin.Context, err error, resource string) {
	var (
		ve *apperrors.ValidationError
		pe *apperrors.PartialWriteError
		te *apperrors.TransportError
	)

	switch {
	case errors.As(err, &ve):
		respondBadRequest(c, ve.Error())
	case errors.Is(err, apperrors.ErrNotFound):
		respondNotFound(c, resource)
	case errors.As(err, &pe):
		requestLogger(c).Warn("partial write", zap.Error(err))
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: pe.Error(), Code: codePartialWrite})
	case errors.As(err, &te):
		requestLogger(c).Warn("upstream failure", zap.Error(err))
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: apperrors.Message(err), Code: codeUpstream})
	case errors.Is(err, workerpool.ErrSaturated), errors.Is(err, workerpool.ErrClosed):
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: err.Error(), Code: codeOverloaded})
	case errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusGatewayTimeout, ErrorResponse{Error: "request timed out", Code: codeTimeout})
	default:
		respondInternalError(c, err, resource)
	}
}

// --- Success Response Helpers ---

// respondSuccess sends a 200 OK response with a message.
func respondSuccess(c *gin.Context, message string) {
	c.JSON(http.StatusOK, SuccessResponse{Message: message})
}

// respondCreated sends a 201 Created response with data.
func respondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

// respondAccepted sends a 202 Accepted response (for async operations).
func respondAccepted(c *gin.Context, message string, data any) {
	c.JSON(http.StatusAccepted, SuccessResponse{Message: message, Data: data})
}

// --- Parameter Parsing ---

// parseIDParam extracts and validates a positive integer ID from URL parameters.
// Returns the parsed ID or responds with a 400 error and returns 0, false.
func parseIDParam(c *gin.Context, paramName string) (int64, bool) {
	idStr := c.Param(paramName)
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		respondBadRequest(c, "invalid "+paramName)
		return 0, false
	}
	return id, true
}
