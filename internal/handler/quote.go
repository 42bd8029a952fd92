package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/davidnguyen27/sep490-PVSM-sub003/internal/domain"
	"github.com/davidnguyen27/sep490-PVSM-sub003/internal/service"
)

// QuoteHandler handles HTTP requests for price quotes.
type QuoteHandler struct {
	pricingService *service.PricingService
}

// NewQuoteHandler creates a new QuoteHandler.
func NewQuoteHandler(pricingService *service.PricingService) *QuoteHandler {
	return &QuoteHandler{pricingService: pricingService}
}

// CreateQuoteRequest is the HTTP request body for pricing a line item.
type CreateQuoteRequest struct {
	UnitPrice      int64  `json:"unit_price"`
	Quantity       int    `json:"quantity"`
	MembershipTier string `json:"membership_tier,omitempty"` // NONE, BRONZE, SILVER, GOLD
	VoucherPercent *int64 `json:"voucher_percent,omitempty"`
	IsHomeVisit    bool   `json:"is_home_visit"`
	HomeAddress    string `json:"home_address,omitempty"`
}

// QuoteResponse is the HTTP response for a price quote.
type QuoteResponse struct {
	Subtotal        int64 `json:"subtotal"`
	TransportFee    int64 `json:"transport_fee"`
	MemberDiscount  int64 `json:"member_discount"`
	VoucherDiscount int64 `json:"voucher_discount"`
	TotalDiscount   int64 `json:"total_discount"`
	FinalAmount     int64 `json:"final_amount"`

	DistanceKm     float64 `json:"distance_km,omitempty"`
	DistanceOrigin string  `json:"distance_origin,omitempty"`
}

// CreateQuote handles POST /v1/quotes
func (h *QuoteHandler) CreateQuote(c *gin.Context) {
	var req CreateQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	tier, err := service.ValidateMembershipTier(req.MembershipTier)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	result, err := h.pricingService.Quote(c.Request.Context(), domain.PricingContext{
		UnitPrice:      req.UnitPrice,
		Quantity:       req.Quantity,
		MembershipTier: tier,
		VoucherPercent: req.VoucherPercent,
		IsHomeVisit:    req.IsHomeVisit,
		HomeAddress:    req.HomeAddress,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	resp := QuoteResponse{
		Subtotal:        result.Pricing.Subtotal,
		TransportFee:    result.Pricing.TransportFee,
		MemberDiscount:  result.Pricing.MemberDiscount,
		VoucherDiscount: result.Pricing.VoucherDiscount,
		TotalDiscount:   result.Pricing.TotalDiscount,
		FinalAmount:     result.Pricing.FinalAmount,
	}
	if result.Distance != nil {
		resp.DistanceKm = result.Distance.DistanceKm
		resp.DistanceOrigin = result.Distance.OriginLabel
	}

	respondJSON(c, http.StatusOK, resp)
}
