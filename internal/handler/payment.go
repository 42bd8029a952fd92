package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/davidnguyen27/sep490-PVSM-sub003/internal/domain"
	"github.com/davidnguyen27/sep490-PVSM-sub003/internal/service"
)

// PaymentHandler handles HTTP requests for payments.
type PaymentHandler struct {
	paymentService *service.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(paymentService *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// CreatePaymentRequest is the HTTP request body for creating a payment.
type CreatePaymentRequest struct {
	LineID      string `json:"line_id"`
	CustomerID  string `json:"customer_id"`
	Amount      int64  `json:"amount"`
	Method      string `json:"method,omitempty"` // CASH, BANK_TRANSFER
	VoucherCode string `json:"voucher_code,omitempty"`
}

// RetryPaymentRequest is the HTTP request body for retrying a payment.
type RetryPaymentRequest struct {
	LineID      string `json:"line_id"`
	CustomerID  string `json:"customer_id"`
	Amount      int64  `json:"amount"`
	Method      string `json:"method,omitempty"`
	VoucherCode string `json:"voucher_code,omitempty"`
	ForceCash   bool   `json:"force_cash,omitempty"`
}

// PaymentResponse is the HTTP response for payment operations.
type PaymentResponse struct {
	ID          string `json:"id"`
	LineID      string `json:"line_id"`
	CustomerID  string `json:"customer_id"`
	Method      string `json:"method"`
	Status      string `json:"status"`
	Amount      int64  `json:"amount"`
	VoucherCode string `json:"voucher_code,omitempty"`
	CheckoutURL string `json:"checkout_url,omitempty"`
	Superseded  bool   `json:"superseded,omitempty"`
	CreatedAt   string `json:"created_at"`
}

// ReturnResponse is the HTTP response for the redirect return endpoint.
type ReturnResponse struct {
	Outcome string           `json:"outcome"` // not_cancelled, cancelled, unverified
	Payment *PaymentResponse `json:"payment,omitempty"`
}

func toPaymentResponse(p *domain.Payment) PaymentResponse {
	return PaymentResponse{
		ID:          p.ID,
		LineID:      p.LineID,
		CustomerID:  p.CustomerID,
		Method:      string(p.Method),
		Status:      string(p.Status),
		Amount:      p.Amount,
		VoucherCode: p.VoucherCode,
		CheckoutURL: p.CheckoutURL,
		Superseded:  p.Superseded,
		CreatedAt:   p.CreatedAt.Format(time.RFC3339),
	}
}

// CreatePayment handles POST /v1/payments
func (h *PaymentHandler) CreatePayment(c *gin.Context) {
	var req CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	method, err := service.ValidatePaymentMethod(req.Method)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	payment, err := h.paymentService.Create(c.Request.Context(), service.CreatePaymentRequest{
		LineID:      req.LineID,
		CustomerID:  req.CustomerID,
		Amount:      req.Amount,
		Method:      method,
		VoucherCode: req.VoucherCode,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toPaymentResponse(payment))
}

// GetPayment handles GET /v1/payments/:id
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	payment, err := h.paymentService.GetPayment(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toPaymentResponse(payment))
}

// GetCurrentPayment handles GET /v1/payments/current?line_id=...
func (h *PaymentHandler) GetCurrentPayment(c *gin.Context) {
	payment, err := h.paymentService.GetCurrentPayment(c.Request.Context(), c.Query("line_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	if payment == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "no payment for line item"})
		return
	}

	respondJSON(c, http.StatusOK, toPaymentResponse(payment))
}

// ConfirmPayment handles POST /v1/payments/:id/confirm
func (h *PaymentHandler) ConfirmPayment(c *gin.Context) {
	payment, err := h.paymentService.Confirm(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toPaymentResponse(payment))
}

// CancelPayment handles POST /v1/payments/:id/cancel
func (h *PaymentHandler) CancelPayment(c *gin.Context) {
	payment, err := h.paymentService.MarkCancelled(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toPaymentResponse(payment))
}

// RetryPayment handles POST /v1/payments/retry
func (h *PaymentHandler) RetryPayment(c *gin.Context) {
	var req RetryPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	method, err := service.ValidatePaymentMethod(req.Method)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	payment, err := h.paymentService.Retry(c.Request.Context(), service.RetryPaymentRequest{
		LineID:      req.LineID,
		CustomerID:  req.CustomerID,
		Amount:      req.Amount,
		Method:      method,
		VoucherCode: req.VoucherCode,
		ForceCash:   req.ForceCash,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toPaymentResponse(payment))
}

// PaymentReturn handles GET /v1/payments/return — the URL the bank-transfer
// checkout redirects the browser back to. Cancellation is applied only when
// the signal correlates to a live payment; an unverifiable signal is reported
// as its own outcome so the UI never claims a cancellation it cannot prove.
func (h *PaymentHandler) PaymentReturn(c *gin.Context) {
	ctx := c.Request.Context()

	outcome, payment, err := h.paymentService.DetectCancellation(ctx, c.Request.URL.Query())
	if err != nil {
		respondError(c, err)
		return
	}

	switch outcome {
	case service.CancellationConfirmed:
		cancelled := payment
		if payment.Status == domain.PaymentStatusPending {
			cancelled, err = h.paymentService.MarkCancelled(ctx, payment.ID)
			if err != nil {
				respondError(c, err)
				return
			}
		}
		resp := toPaymentResponse(cancelled)
		respondJSON(c, http.StatusOK, ReturnResponse{Outcome: "cancelled", Payment: &resp})

	case service.CancellationUnresolvable:
		respondJSON(c, http.StatusOK, ReturnResponse{Outcome: "unverified"})

	default:
		var resp *PaymentResponse
		if payment != nil {
			r := toPaymentResponse(payment)
			resp = &r
		}
		respondJSON(c, http.StatusOK, ReturnResponse{Outcome: "not_cancelled", Payment: resp})
	}
}
