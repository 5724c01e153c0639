package domain

import "time"

// AuditFields holds standard audit information for domain entities.
// CreatedBy and LastUpdatedBy carry the actor id supplied by the caller.
type AuditFields struct {
	CreatedAt     time.Time `json:"createdAt"`
	CreatedBy     string    `json:"createdBy"`
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
	LastUpdatedBy string    `json:"lastUpdatedBy"`
}

// DateRange bounds a query by entry date. A zero From or To leaves that side open.
type DateRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// Before reports whether t falls before the start of the range.
func (r DateRange) Before(t time.Time) bool {
	return !r.From.IsZero() && t.Before(r.From)
}

// Contains reports whether t falls inside the range, both ends inclusive.
func (r DateRange) Contains(t time.Time) bool {
	if r.Before(t) {
		return false
	}
	return r.To.IsZero() || !t.After(r.To)
}
