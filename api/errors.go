package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Domenick1991/eventbooking/internal/auth"
	"github.com/Domenick1991/eventbooking/internal/domain"
)

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	Available *int   `json:"available,omitempty"`
}

// statusFor maps a service error to an HTTP status and a stable code clients can branch on.
func statusFor(err error) (int, errorResponse) {
	if capErr, ok := domain.IsCapacityError(err); ok {
		available := capErr.Available
		return http.StatusConflict, errorResponse{
			Error:     fmt.Sprintf("Only %d tickets left", capErr.Available),
			Code:      "capacity_exceeded",
			Available: &available,
		}
	}

	switch {
	case errors.Is(err, auth.ErrMissingToken), errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrTokenExpired):
		return http.StatusUnauthorized, errorResponse{Error: err.Error(), Code: "unauthorized"}
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, errorResponse{Error: err.Error(), Code: "forbidden"}
	case domain.IsValidationError(err):
		return http.StatusBadRequest, errorResponse{Error: err.Error(), Code: "validation"}
	case domain.IsNotFoundError(err):
		return http.StatusNotFound, errorResponse{Error: err.Error(), Code: "not_found"}
	case domain.IsConflictError(err):
		return http.StatusConflict, errorResponse{Error: err.Error(), Code: "conflict"}
	}
	return http.StatusInternalServerError, errorResponse{Error: "internal error", Code: "internal"}
}

func writeError(c *gin.Context, err error) {
	status, body := statusFor(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(status, body)
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: msg, Code: "validation"})
}
