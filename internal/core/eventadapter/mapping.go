package eventadapter

import (
	"fmt"
	"strings"
	"time"

	"github.com/SscSPs/tenant_ledger/internal/apperrors"
	"github.com/SscSPs/tenant_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// Source types recorded on entries produced from events.
const (
	SourceInvoice    = "INVOICE"
	SourcePayment    = "PAYMENT"
	SourceCreditNote = "CREDIT_NOTE"
	SourceExpense    = "EXPENSE"
)

// Mapper turns events into draft entries using a fixed rule table.
// It holds no state besides the rules and never touches storage.
type Mapper struct {
	rules Rules
}

// NewMapper creates a Mapper over rules.
func NewMapper(rules Rules) *Mapper {
	return &Mapper{rules: rules}
}

// Rules returns the mapper's lookup table.
func (m *Mapper) Rules() Rules { return m.rules }

// Map validates the event and produces its draft entry.
func (m *Mapper) Map(e Event) (domain.DraftEntry, error) {
	if err := e.Validate(); err != nil {
		return domain.DraftEntry{}, err
	}
	payload, err := e.DecodePayload()
	if err != nil {
		return domain.DraftEntry{}, err
	}

	var (
		lines      []domain.DraftLine
		sourceType string
		sourceID   string
		currency   string
		memo       string
	)
	switch p := payload.(type) {
	case InvoiceIssuedPayload:
		lines, err = m.MapInvoiceIssued(p)
		sourceType, sourceID, currency = SourceInvoice, p.InvoiceID, p.Currency
		memo = fmt.Sprintf("Invoice %s issued", p.InvoiceID)
	case PaymentRecordedPayload:
		lines, err = m.MapPaymentRecorded(p)
		sourceType, sourceID, currency = SourcePayment, p.PaymentID, p.Currency
		memo = fmt.Sprintf("Payment %s received", p.PaymentID)
		if p.InvoiceID != "" {
			memo += " for invoice " + p.InvoiceID
		}
	case CreditNoteAppliedPayload:
		lines, err = m.MapCreditNoteApplied(p)
		sourceType, sourceID, currency = SourceCreditNote, p.CreditNoteID, p.Currency
		memo = fmt.Sprintf("Credit note %s applied", p.CreditNoteID)
		if p.InvoiceID != "" {
			memo += " to invoice " + p.InvoiceID
		}
	case ExpensePostedPayload:
		lines, err = m.MapExpensePosted(p)
		sourceType, sourceID, currency = SourceExpense, p.ExpenseID, p.Currency
		memo = fmt.Sprintf("Expense %s posted", p.ExpenseID)
	}
	if err != nil {
		return domain.DraftEntry{}, err
	}

	return domain.DraftEntry{
		SourceType:    sourceType,
		SourceID:      sourceID,
		SourceEventID: e.EventID,
		EntryDate:     EntryDate(e.OccurredAt),
		Memo:          memo,
		CurrencyCode:  strings.ToUpper(currency),
		CreatedBy:     e.Actor,
		Lines:         lines,
	}, nil
}

// MapInvoiceIssued debits receivables with the grand total and credits revenue
// and VAT payable. The VAT line is omitted when there is no tax.
func (m *Mapper) MapInvoiceIssued(p InvoiceIssuedPayload) ([]domain.DraftLine, error) {
	grand := domain.RoundToCurrency(p.GrandTotal, p.Currency)
	net := domain.RoundToCurrency(p.NetAmount, p.Currency)
	tax := domain.RoundToCurrency(p.TaxAmount, p.Currency)

	if !net.IsPositive() {
		return nil, apperrors.New(apperrors.ErrInvalidEvent, "netAmount must be positive, got %s", p.NetAmount)
	}
	if tax.IsNegative() {
		return nil, apperrors.New(apperrors.ErrInvalidEvent, "taxAmount must not be negative, got %s", p.TaxAmount)
	}
	if !grand.Equal(net.Add(tax)) {
		return nil, apperrors.New(apperrors.ErrInvalidEvent, "grandTotal %s != netAmount %s + taxAmount %s", grand, net, tax)
	}

	lines := []domain.DraftLine{
		{AccountCode: m.rules.ReceivableAccount, Side: domain.Debit, Amount: grand},
		{AccountCode: m.rules.RevenueAccount, Side: domain.Credit, Amount: net},
	}
	if tax.IsPositive() {
		lines = append(lines, domain.DraftLine{AccountCode: m.rules.VATPayableAccount, Side: domain.Credit, Amount: tax})
	}
	return lines, nil
}

// MapPaymentRecorded debits the method's cash or bank account and credits receivables
// with the amount actually received.
func (m *Mapper) MapPaymentRecorded(p PaymentRecordedPayload) ([]domain.DraftLine, error) {
	amount, err := positiveAmount("amount", p.Amount, p.Currency)
	if err != nil {
		return nil, err
	}
	account, err := m.rules.PaymentAccount(p.PaymentMethod)
	if err != nil {
		return nil, err
	}
	return []domain.DraftLine{
		{AccountCode: account, Side: domain.Debit, Amount: amount},
		{AccountCode: m.rules.ReceivableAccount, Side: domain.Credit, Amount: amount},
	}, nil
}

// MapCreditNoteApplied debits revenue, or contra-revenue when configured, and credits receivables.
func (m *Mapper) MapCreditNoteApplied(p CreditNoteAppliedPayload) ([]domain.DraftLine, error) {
	amount, err := positiveAmount("amount", p.Amount, p.Currency)
	if err != nil {
		return nil, err
	}
	return []domain.DraftLine{
		{AccountCode: m.rules.CreditNoteDebitAccount(), Side: domain.Debit, Amount: amount},
		{AccountCode: m.rules.ReceivableAccount, Side: domain.Credit, Amount: amount},
	}, nil
}

// MapExpensePosted debits the category's expense account and credits the paying account.
// Any status change other than a move into POSTED yields ErrEventNotApplicable.
func (m *Mapper) MapExpensePosted(p ExpensePostedPayload) ([]domain.DraftLine, error) {
	if !IsExpensePosting(p.Status, p.PreviousStatus) {
		return nil, apperrors.New(apperrors.ErrEventNotApplicable, "expense %s moved %s -> %s", p.ExpenseID, p.PreviousStatus, p.Status)
	}
	amount, err := positiveAmount("amount", p.Amount, p.Currency)
	if err != nil {
		return nil, err
	}
	account, err := m.rules.PaymentAccount(p.PaymentMethod)
	if err != nil {
		return nil, err
	}
	return []domain.DraftLine{
		{AccountCode: m.rules.ExpenseAccount(p.Category), Side: domain.Debit, Amount: amount},
		{AccountCode: account, Side: domain.Credit, Amount: amount},
	}, nil
}

// IsExpensePosting reports whether an expense status change is a transition into POSTED.
func IsExpensePosting(status, previous ExpenseStatus) bool {
	return status == ExpenseStatusPosted && previous != ExpenseStatusPosted
}

// EntryDate truncates an event time to its UTC calendar date.
func EntryDate(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// SplitInclusiveTax splits a tax-inclusive gross amount into net and tax.
// tax = round(gross * rate / (1 + rate)) and net = gross - tax, so net + tax == gross.
func SplitInclusiveTax(gross, rate decimal.Decimal, currency string) (net, tax decimal.Decimal) {
	gross = domain.RoundToCurrency(gross, currency)
	if !rate.IsPositive() {
		return gross, decimal.Zero
	}
	tax = gross.Mul(rate).DivRound(decimal.NewFromInt(1).Add(rate), domain.CurrencyScale(currency))
	return gross.Sub(tax), tax
}

// TaxOnNet computes round(net * rate) at the currency's minor unit.
func TaxOnNet(net, rate decimal.Decimal, currency string) decimal.Decimal {
	if !rate.IsPositive() {
		return decimal.Zero
	}
	return domain.RoundToCurrency(net.Mul(rate), currency)
}

func positiveAmount(field string, v decimal.Decimal, currency string) (decimal.Decimal, error) {
	amount := domain.RoundToCurrency(v, currency)
	if !amount.IsPositive() {
		return decimal.Zero, apperrors.New(apperrors.ErrInvalidEvent, "%s must be positive, got %s", field, v)
	}
	return amount, nil
}
