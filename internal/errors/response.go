package errors

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nravish/kanakam-backend/internal/pricing"
)

// ErrorResponse is the standard error body.
type ErrorResponse struct {
	Error   string `json:"error"`   // machine-readable code (codes.go)
	Message string `json:"message"` // human-readable detail
}

// RespondWithError writes a standard error response.
func RespondWithError(c *gin.Context, statusCode int, errorCode string, message string) {
	c.JSON(statusCode, ErrorResponse{
		Error:   errorCode,
		Message: message,
	})
}

// Shorthand responders for the common cases.

func Unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "authentication required"
	}
	RespondWithError(c, http.StatusUnauthorized, AuthUnauthorized, message)
}

func Forbidden(c *gin.Context, message string) {
	if message == "" {
		message = "access denied"
	}
	RespondWithError(c, http.StatusForbidden, AuthzForbidden, message)
}

func BadRequest(c *gin.Context, errorCode string, message string) {
	RespondWithError(c, http.StatusBadRequest, errorCode, message)
}

func NotFound(c *gin.Context, errorCode string, message string) {
	RespondWithError(c, http.StatusNotFound, errorCode, message)
}

func UnprocessableEntity(c *gin.Context, errorCode string, message string) {
	RespondWithError(c, http.StatusUnprocessableEntity, errorCode, message)
}

func InternalError(c *gin.Context, message string) {
	if message == "" {
		message = "something went wrong, please try again later"
	}
	RespondWithError(c, http.StatusInternalServerError, InternalServerError, message)
}

// RespondWithPricingError maps the pricing engine's typed validation
// failures onto HTTP responses. Returns false when err is not a pricing
// validation error, so the caller can fall back to a 500.
func RespondWithPricingError(c *gin.Context, err error) bool {
	var (
		invalid   *pricing.InvalidAttributeError
		missing   *pricing.MissingAttributeError
		inversion *pricing.PriceInversionError
		oor       *pricing.IndexOutOfRangeError
	)
	switch {
	case stderrors.As(err, &invalid):
		BadRequest(c, PricingInvalidAttribute, invalid.Error())
	case stderrors.As(err, &missing):
		BadRequest(c, PricingMissingAttribute, missing.Error())
	case stderrors.As(err, &inversion):
		UnprocessableEntity(c, PricingPriceInversion, inversion.Error())
	case stderrors.As(err, &oor):
		BadRequest(c, StoneIndexOutOfRange, oor.Error())
	default:
		return false
	}
	return true
}
