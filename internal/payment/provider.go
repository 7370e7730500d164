package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"ticket-waitlist/pkg/apperrors"
)

// Provider is the outbound payment contract the core depends on. Calls are
// not retried here; failures surface to the caller.
type Provider interface {
	Refund(ctx context.Context, reference string, amount float64, currency string) error
}

// ConfirmationEvent is the validated internal form of a "charge succeeded"
// notification. Handlers parse and validate the raw payload once on ingress;
// the core never sees provider-specific shapes.
type ConfirmationEvent struct {
	Reference       string
	Amount          float64
	Currency        string
	WaitlistEntryID string
}

type confirmationPayload struct {
	Reference       string  `json:"reference"`
	Amount          float64 `json:"amount"`
	Currency        string  `json:"currency"`
	WaitlistEntryID string  `json:"waitlist_entry_id"`
}

// ParseConfirmation validates an inbound webhook body. Signature
// verification happens upstream in the payment integration layer; this only
// guards the fields the finalizer relies on.
func ParseConfirmation(body []byte) (ConfirmationEvent, error) {
	var p confirmationPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return ConfirmationEvent{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}

	if p.Reference == "" || p.WaitlistEntryID == "" || p.Currency == "" {
		return ConfirmationEvent{}, fmt.Errorf("%w: missing required confirmation fields", apperrors.ErrInvalidInput)
	}
	if p.Amount <= 0 {
		return ConfirmationEvent{}, fmt.Errorf("%w: non-positive amount", apperrors.ErrInvalidInput)
	}

	return ConfirmationEvent{
		Reference:       p.Reference,
		Amount:          p.Amount,
		Currency:        p.Currency,
		WaitlistEntryID: p.WaitlistEntryID,
	}, nil
}
