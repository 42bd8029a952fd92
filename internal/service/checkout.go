package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/davidnguyen27/sep490-PVSM-sub003/internal/domain"
)

// HTTPCheckoutProvider opens checkouts against the bank-transfer gateway.
type HTTPCheckoutProvider struct {
	baseURL   string
	returnURL string
	client    *http.Client
}

// NewHTTPCheckoutProvider creates a checkout provider for the gateway at
// baseURL. returnURL is where the gateway redirects the customer afterwards;
// the gateway appends the correlation and status parameters to it.
func NewHTTPCheckoutProvider(baseURL, returnURL string, timeout time.Duration) *HTTPCheckoutProvider {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPCheckoutProvider{
		baseURL:   baseURL,
		returnURL: returnURL,
		client:    &http.Client{Timeout: timeout},
	}
}

type checkoutRequest struct {
	PaymentID string `json:"payment_id"`
	LineID    string `json:"line_id"`
	Amount    int64  `json:"amount"`
	ReturnURL string `json:"return_url"`
}

type checkoutResponse struct {
	CheckoutURL string `json:"checkout_url"`
}

// CreateCheckout registers the payment with the gateway and returns the URL
// the customer must be redirected to.
func (p *HTTPCheckoutProvider) CreateCheckout(ctx context.Context, payment *domain.Payment) (string, error) {
	body, err := json.Marshal(checkoutRequest{
		PaymentID: payment.ID,
		LineID:    payment.LineID,
		Amount:    payment.Amount,
		ReturnURL: p.returnURL,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/checkouts", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("checkout gateway returned status %d", resp.StatusCode)
	}

	var payload checkoutResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", err
	}

	if payload.CheckoutURL == "" {
		return "", fmt.Errorf("checkout gateway returned no checkout url")
	}

	return payload.CheckoutURL, nil
}

// StubCheckoutProvider is used in development when no gateway is configured.
// It fabricates a checkout URL pointing at the return endpoint.
type StubCheckoutProvider struct {
	returnURL string
}

// NewStubCheckoutProvider creates a stub provider.
func NewStubCheckoutProvider(returnURL string) *StubCheckoutProvider {
	return &StubCheckoutProvider{returnURL: returnURL}
}

// CreateCheckout returns a fake checkout URL carrying the payment correlation id.
func (p *StubCheckoutProvider) CreateCheckout(ctx context.Context, payment *domain.Payment) (string, error) {
	return p.returnURL + "?payment_id=" + url.QueryEscape(payment.ID), nil
}
