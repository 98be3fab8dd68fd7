package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/markethub/payment-service/internal/handlers"
	"github.com/markethub/payment-service/internal/interfaces"
	"github.com/markethub/payment-service/internal/telemetry"
)

func NewRouter(payments interfaces.PaymentAPI, webhooks interfaces.WebhookAPI) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(telemetry.TracingMiddleware())

	// Prometheus metrics
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	paymentHandler := handlers.NewPaymentHandler(payments)
	webhookHandler := handlers.NewWebhookHandler(webhooks)

	v1 := r.Group("/v1")
	{
		v1.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "payment-service"})
		})

		v1.POST("/payments", paymentHandler.CreatePayment)
		v1.GET("/payments/:id", paymentHandler.GetPayment)
		v1.POST("/payments/:id/refunds", paymentHandler.CreateRefund)
		v1.POST("/payments/:id/reconcile", paymentHandler.ReconcilePayment)

		v1.POST("/webhooks/payos", webhookHandler.HandleProviderWebhook)
	}

	return r
}
