package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// HTTPProvider talks to the payment gateway's refund endpoint. The wire
// shape is deliberately minimal; provider-specific plumbing lives outside
// the core.
type HTTPProvider struct {
	baseURL string
	secret  string
	client  *http.Client
}

func NewHTTPProvider(baseURL, secret string) *HTTPProvider {
	return &HTTPProvider{
		baseURL: baseURL,
		secret:  secret,
		client:  &http.Client{},
	}
}

type refundRequest struct {
	Reference string  `json:"reference"`
	Amount    float64 `json:"amount"`
	Currency  string  `json:"currency"`
}

func (p *HTTPProvider) Refund(ctx context.Context, reference string, amount float64, currency string) error {
	body, err := json.Marshal(refundRequest{
		Reference: reference,
		Amount:    amount,
		Currency:  currency,
	})
	if err != nil {
		return fmt.Errorf("marshal refund request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/refund", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build refund request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.secret)

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("refund call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("refund %s: provider returned %d", reference, resp.StatusCode)
	}

	return nil
}
