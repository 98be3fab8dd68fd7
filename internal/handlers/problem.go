package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/markethub/payment-service/internal/service"
)

// problem is an RFC 7807 style error body.
type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail"`
	Code   string `json:"code,omitempty"`
}

func problemDetail(c *gin.Context, status int, title, detail, code string) {
	c.JSON(status, problem{
		Type:   "about:blank",
		Title:  title,
		Status: status,
		Detail: detail,
		Code:   code,
	})
}

// writeServiceError maps the service error taxonomy onto HTTP statuses.
func writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		problemDetail(c, http.StatusBadRequest, "Invalid payload", err.Error(), "VALIDATION_ERROR")
	case errors.Is(err, service.ErrNotFound):
		problemDetail(c, http.StatusNotFound, "Not found", "Payment not found", "NOT_FOUND")
	case errors.Is(err, service.ErrIdempotencyConflict):
		problemDetail(c, http.StatusConflict, "Idempotency conflict", "Idempotency key conflict", "IDEMPOTENCY_CONFLICT")
	case errors.Is(err, service.ErrInvalidState):
		problemDetail(c, http.StatusConflict, "Invalid state", "Payment not refundable", "INVALID_STATE")
	case errors.Is(err, service.ErrProvider):
		problemDetail(c, http.StatusBadGateway, "Provider error", err.Error(), "PROVIDER_ERROR")
	case errors.Is(err, service.ErrInvalidSignature):
		problemDetail(c, http.StatusBadRequest, "Invalid signature", "Signature verification failed", "INVALID_SIGNATURE")
	case errors.Is(err, service.ErrWebhookProcessing):
		problemDetail(c, http.StatusInternalServerError, "Webhook processing failed", "Unable to process webhook", "WEBHOOK_ERROR")
	default:
		problemDetail(c, http.StatusInternalServerError, "Internal error", "Unexpected failure", "INTERNAL_ERROR")
	}
}
