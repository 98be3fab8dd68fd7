package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/markethub/payment-service/internal/interfaces"
	"github.com/markethub/payment-service/internal/models"
)

const idempotencyHeader = "Idempotency-Key"

type createPaymentRequest struct {
	Amount     int64  `json:"amount"`
	Currency   string `json:"currency"`
	OrderID    string `json:"order_id"`
	CustomerID string `json:"customer_id"`
	ReturnURL  string `json:"return_url"`
}

type paymentResponse struct {
	PaymentID   int64      `json:"payment_id"`
	ProviderRef string     `json:"provider_ref,omitempty"`
	Status      string     `json:"status"`
	QRURL       string     `json:"qr_url,omitempty"`
	CheckoutURL string     `json:"checkout_url,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

type paymentView struct {
	PaymentID   int64     `json:"payment_id"`
	Status      string    `json:"status"`
	Amount      int64     `json:"amount"`
	Currency    string    `json:"currency"`
	OrderID     string    `json:"order_id"`
	ProviderRef string    `json:"provider_ref,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type refundRequest struct {
	Amount int64  `json:"amount"`
	Reason string `json:"reason"`
}

type refundResponse struct {
	RefundID       int64  `json:"refund_id"`
	Status         string `json:"status"`
	RefundedAmount int64  `json:"refunded_amount"`
	PaymentID      int64  `json:"payment_id"`
}

type PaymentHandler struct {
	payments interfaces.PaymentAPI
}

func NewPaymentHandler(payments interfaces.PaymentAPI) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

func (h *PaymentHandler) CreatePayment(c *gin.Context) {
	var req createPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		problemDetail(c, http.StatusBadRequest, "Invalid payload", err.Error(), "VALIDATION_ERROR")
		return
	}

	payment, err := h.payments.CreatePayment(c.Request.Context(), models.CreatePaymentRequest{
		OrderID:    req.OrderID,
		Amount:     req.Amount,
		Currency:   req.Currency,
		CustomerID: req.CustomerID,
		ReturnURL:  req.ReturnURL,
	}, c.GetHeader(idempotencyHeader))
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, paymentResponse{
		PaymentID:   payment.ID,
		ProviderRef: payment.ProviderRef,
		Status:      string(payment.Status),
		QRURL:       payment.QRURL,
		CheckoutURL: payment.CheckoutURL,
		ExpiresAt:   payment.ExpiresAt,
	})
}

func (h *PaymentHandler) GetPayment(c *gin.Context) {
	id, ok := paymentID(c)
	if !ok {
		return
	}

	payment, err := h.payments.GetPayment(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, paymentView{
		PaymentID:   payment.ID,
		Status:      string(payment.Status),
		Amount:      payment.Amount,
		Currency:    payment.Currency,
		OrderID:     payment.OrderID,
		ProviderRef: payment.ProviderRef,
		CreatedAt:   payment.CreatedAt,
		UpdatedAt:   payment.UpdatedAt,
	})
}

func (h *PaymentHandler) CreateRefund(c *gin.Context) {
	id, ok := paymentID(c)
	if !ok {
		return
	}

	var req refundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		problemDetail(c, http.StatusBadRequest, "Invalid payload", err.Error(), "VALIDATION_ERROR")
		return
	}

	refund, err := h.payments.CreateRefund(c.Request.Context(), id, models.RefundRequest{
		Amount: req.Amount,
		Reason: req.Reason,
	}, c.GetHeader(idempotencyHeader))
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, refundResponse{
		RefundID:       refund.ID,
		Status:         string(refund.Status),
		RefundedAmount: refund.Amount,
		PaymentID:      refund.PaymentID,
	})
}

func (h *PaymentHandler) ReconcilePayment(c *gin.Context) {
	id, ok := paymentID(c)
	if !ok {
		return
	}

	payment, err := h.payments.Reconcile(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"payment_id": payment.ID,
		"status":     string(payment.Status),
	})
}

func paymentID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		problemDetail(c, http.StatusBadRequest, "Invalid payload", "payment id must be an integer", "VALIDATION_ERROR")
		return 0, false
	}
	return id, true
}
