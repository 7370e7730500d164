package payment

import (
	"testing"
	"ticket-waitlist/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfirmation(t *testing.T) {
	t.Run("valid payload", func(t *testing.T) {
		body := []byte(`{"reference":"pay_123","amount":59.9,"currency":"USD","waitlist_entry_id":"entry-1"}`)

		ev, err := ParseConfirmation(body)
		require.NoError(t, err)
		assert.Equal(t, "pay_123", ev.Reference)
		assert.Equal(t, 59.9, ev.Amount)
		assert.Equal(t, "USD", ev.Currency)
		assert.Equal(t, "entry-1", ev.WaitlistEntryID)
	})

	t.Run("malformed json", func(t *testing.T) {
		_, err := ParseConfirmation([]byte(`{not json`))
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})

	t.Run("missing fields", func(t *testing.T) {
		tests := []struct {
			name string
			body string
		}{
			{"no reference", `{"amount":10,"currency":"USD","waitlist_entry_id":"entry-1"}`},
			{"no entry id", `{"reference":"pay_123","amount":10,"currency":"USD"}`},
			{"no currency", `{"reference":"pay_123","amount":10,"waitlist_entry_id":"entry-1"}`},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := ParseConfirmation([]byte(tt.body))
				assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
			})
		}
	})

	t.Run("non-positive amount", func(t *testing.T) {
		body := []byte(`{"reference":"pay_123","amount":0,"currency":"USD","waitlist_entry_id":"entry-1"}`)
		_, err := ParseConfirmation(body)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})
}
