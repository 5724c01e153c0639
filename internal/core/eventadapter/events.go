package eventadapter

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/SscSPs/tenant_ledger/internal/apperrors"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// EventType enumerates the upstream events that produce postings.
type EventType string

const (
	InvoiceIssued     EventType = "INVOICE_ISSUED"
	PaymentRecorded   EventType = "PAYMENT_RECORDED"
	CreditNoteApplied EventType = "CREDIT_NOTE_APPLIED"
	ExpensePosted     EventType = "EXPENSE_POSTED"
)

// Event is the inbound envelope. EventID is assigned upstream and globally unique.
type Event struct {
	EventID    string          `json:"eventId" validate:"required,max=200"`
	TenantID   string          `json:"tenantId" validate:"required"`
	Type       EventType       `json:"type" validate:"required,oneof=INVOICE_ISSUED PAYMENT_RECORDED CREDIT_NOTE_APPLIED EXPENSE_POSTED"`
	OccurredAt time.Time       `json:"occurredAt" validate:"required"`
	Actor      string          `json:"actor,omitempty"`
	Payload    json.RawMessage `json:"payload" validate:"required"`
}

// InvoiceIssuedPayload carries the totals of an issued invoice.
type InvoiceIssuedPayload struct {
	InvoiceID  string          `json:"invoiceId" validate:"required"`
	GrandTotal decimal.Decimal `json:"grandTotal"`
	NetAmount  decimal.Decimal `json:"netAmount"`
	TaxAmount  decimal.Decimal `json:"taxAmount"`
	Currency   string          `json:"currency" validate:"required,len=3,alpha"`
}

// PaymentRecordedPayload carries a payment received against an invoice.
type PaymentRecordedPayload struct {
	PaymentID     string          `json:"paymentId" validate:"required"`
	InvoiceID     string          `json:"invoiceId"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod PaymentMethod   `json:"paymentMethod" validate:"required"`
	Currency      string          `json:"currency" validate:"required,len=3,alpha"`
}

// CreditNoteAppliedPayload carries a credit note applied to an invoice.
type CreditNoteAppliedPayload struct {
	CreditNoteID string          `json:"creditNoteId" validate:"required"`
	InvoiceID    string          `json:"invoiceId"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency" validate:"required,len=3,alpha"`
}

// ExpenseStatus is the lifecycle state of an upstream expense.
type ExpenseStatus string

const (
	ExpenseStatusDraft     ExpenseStatus = "DRAFT"
	ExpenseStatusSubmitted ExpenseStatus = "SUBMITTED"
	ExpenseStatusApproved  ExpenseStatus = "APPROVED"
	ExpenseStatusPosted    ExpenseStatus = "POSTED"
)

// ExpensePostedPayload carries an expense status change.
// Only a transition into POSTED produces a posting.
type ExpensePostedPayload struct {
	ExpenseID      string          `json:"expenseId" validate:"required"`
	Amount         decimal.Decimal `json:"amount"`
	Category       string          `json:"category"`
	PaymentMethod  PaymentMethod   `json:"paymentMethod" validate:"required"`
	Status         ExpenseStatus   `json:"status" validate:"required"`
	PreviousStatus ExpenseStatus   `json:"previousStatus"`
	Currency       string          `json:"currency" validate:"required,len=3,alpha"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// DecodeEvent parses and validates an event envelope.
func DecodeEvent(data []byte) (Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return Event{}, apperrors.Wrap(apperrors.ErrInvalidEvent, err)
	}
	if err := e.Validate(); err != nil {
		return Event{}, err
	}
	return e, nil
}

// Validate checks the envelope fields.
func (e Event) Validate() error {
	if err := validate.Struct(e); err != nil {
		return invalidEvent(err)
	}
	return nil
}

// DecodePayload unmarshals and validates the payload for the event's type.
// The returned value is one of the *Payload structs.
func (e Event) DecodePayload() (any, error) {
	switch e.Type {
	case InvoiceIssued:
		return decodePayload[InvoiceIssuedPayload](e.Payload)
	case PaymentRecorded:
		return decodePayload[PaymentRecordedPayload](e.Payload)
	case CreditNoteApplied:
		return decodePayload[CreditNoteAppliedPayload](e.Payload)
	case ExpensePosted:
		return decodePayload[ExpensePostedPayload](e.Payload)
	}
	return nil, apperrors.New(apperrors.ErrInvalidEvent, "unknown event type %q", e.Type)
}

func decodePayload[T any](raw json.RawMessage) (T, error) {
	var p T
	if err := json.Unmarshal(raw, &p); err != nil {
		return p, apperrors.Wrap(apperrors.ErrInvalidEvent, fmt.Errorf("payload: %w", err))
	}
	if err := validate.Struct(p); err != nil {
		return p, invalidEvent(err)
	}
	return p, nil
}

// NewEvent builds an envelope around a payload value.
func NewEvent(eventID, tenantID string, eventType EventType, occurredAt time.Time, payload any) (Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("marshal payload: %w", err)
	}
	return Event{
		EventID:    eventID,
		TenantID:   tenantID,
		Type:       eventType,
		OccurredAt: occurredAt,
		Payload:    raw,
	}, nil
}

func invalidEvent(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
		}
		return apperrors.New(apperrors.ErrInvalidEvent, "%s", strings.Join(fields, "; "))
	}
	return apperrors.Wrap(apperrors.ErrInvalidEvent, err)
}
