package eventadapter

import "strings"

// IdempotencyKey identifies one causal upstream event within a tenant.
// A ledger posts at most one entry per key.
type IdempotencyKey struct {
	TenantID      string
	SourceEventID string
}

// KeyFor returns the idempotency key of an event.
func KeyFor(e Event) IdempotencyKey {
	return IdempotencyKey{TenantID: e.TenantID, SourceEventID: e.EventID}
}

func (k IdempotencyKey) String() string {
	return k.TenantID + "/" + k.SourceEventID
}

// DocumentEventID derives a stable source event id for a document that has no
// upstream event id, such as one previewed from its current state.
func DocumentEventID(sourceType, documentID string) string {
	return "doc:" + strings.ToLower(sourceType) + ":" + documentID
}
