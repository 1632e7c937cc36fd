package domain

import (
	"time"

	"github.com/google/uuid"
)

// IdempotencyRecord caches the outcome of an applied money movement so a
// retried request returns the original result instead of re-applying.
type IdempotencyRecord struct {
	Key           string    `json:"key"`
	TransactionID uuid.UUID `json:"transaction_id"`
	ResponseJSON  []byte    `json:"response_json"` // Cached transaction to return
	CreatedAt     time.Time `json:"created_at"`
}

// BuildTransferKey constructs the idempotency key for a client-initiated
// transfer. Format: "<account_id>:<client_key>".
func BuildTransferKey(accountID uuid.UUID, clientKey string) string {
	return accountID.String() + ":" + clientKey
}

// BuildSettlementKey constructs the idempotency key for an external
// settlement event, keyed by the processor's reference id so redeliveries
// collapse onto the first application.
func BuildSettlementKey(externalReferenceID string) string {
	return "extref:" + externalReferenceID
}
