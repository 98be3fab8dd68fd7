package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/markethub/payment-service/internal/interfaces"
)

const signatureHeader = "X-Signature"

type WebhookHandler struct {
	ingestor interfaces.WebhookAPI
}

func NewWebhookHandler(ingestor interfaces.WebhookAPI) *WebhookHandler {
	return &WebhookHandler{ingestor: ingestor}
}

// HandleProviderWebhook acknowledges successful ingestion with 204 whether
// or not the payment actually changed; anything else tells the provider to
// redeliver, except authenticity failures which are final.
func (h *WebhookHandler) HandleProviderWebhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		problemDetail(c, http.StatusBadRequest, "Invalid payload", "unable to read request body", "VALIDATION_ERROR")
		return
	}

	if err := h.ingestor.Ingest(c.Request.Context(), body, c.GetHeader(signatureHeader)); err != nil {
		writeServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
