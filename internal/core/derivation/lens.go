// Package derivation projects billing documents onto the journal lines the
// event adapter would post for them, without touching storage.
package derivation

import (
	"sort"
	"strings"

	"github.com/SscSPs/tenant_ledger/internal/apperrors"
	"github.com/SscSPs/tenant_ledger/internal/core/domain"
	"github.com/SscSPs/tenant_ledger/internal/core/eventadapter"
	"github.com/shopspring/decimal"
)

// Document is a billing document the lens can derive postings for.
type Document interface {
	SourceType() string
	SourceID() string
}

// InvoiceItem is one priced line of an invoice.
type InvoiceItem struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	TaxRate     decimal.Decimal `json:"taxRate"` // fraction, e.g. 0.16
}

// InvoiceDocument is an itemised invoice. When TaxInclusive is set, item
// prices already contain tax and it is split out per item.
type InvoiceDocument struct {
	InvoiceID    string        `json:"invoiceId"`
	Currency     string        `json:"currency"`
	TaxInclusive bool          `json:"taxInclusive"`
	Items        []InvoiceItem `json:"items"`
}

func (d InvoiceDocument) SourceType() string { return eventadapter.SourceInvoice }
func (d InvoiceDocument) SourceID() string   { return d.InvoiceID }

// Totals computes net, tax and grand totals, rounding each item to the currency's
// minor unit before summing.
func (d InvoiceDocument) Totals() (grand, net, tax decimal.Decimal) {
	net, tax = decimal.Zero, decimal.Zero
	for _, it := range d.Items {
		amount := domain.RoundToCurrency(it.Quantity.Mul(it.UnitPrice), d.Currency)
		var itemNet, itemTax decimal.Decimal
		if d.TaxInclusive {
			itemNet, itemTax = eventadapter.SplitInclusiveTax(amount, it.TaxRate, d.Currency)
		} else {
			itemNet, itemTax = amount, eventadapter.TaxOnNet(amount, it.TaxRate, d.Currency)
		}
		net = net.Add(itemNet)
		tax = tax.Add(itemTax)
	}
	return net.Add(tax), net, tax
}

// Payload is the InvoiceIssued payload equivalent to the document.
func (d InvoiceDocument) Payload() eventadapter.InvoiceIssuedPayload {
	grand, net, tax := d.Totals()
	return eventadapter.InvoiceIssuedPayload{
		InvoiceID:  d.InvoiceID,
		GrandTotal: grand,
		NetAmount:  net,
		TaxAmount:  tax,
		Currency:   d.Currency,
	}
}

// PaymentDocument is a recorded payment.
type PaymentDocument struct {
	PaymentID     string                     `json:"paymentId"`
	InvoiceID     string                     `json:"invoiceId"`
	Amount        decimal.Decimal            `json:"amount"`
	PaymentMethod eventadapter.PaymentMethod `json:"paymentMethod"`
	Currency      string                     `json:"currency"`
}

func (d PaymentDocument) SourceType() string { return eventadapter.SourcePayment }
func (d PaymentDocument) SourceID() string   { return d.PaymentID }

// Payload is the PaymentRecorded payload equivalent to the document.
func (d PaymentDocument) Payload() eventadapter.PaymentRecordedPayload {
	return eventadapter.PaymentRecordedPayload(d)
}

// CreditNoteDocument is a credit note applied to an invoice.
type CreditNoteDocument struct {
	CreditNoteID string          `json:"creditNoteId"`
	InvoiceID    string          `json:"invoiceId"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency"`
}

func (d CreditNoteDocument) SourceType() string { return eventadapter.SourceCreditNote }
func (d CreditNoteDocument) SourceID() string   { return d.CreditNoteID }

// Payload is the CreditNoteApplied payload equivalent to the document.
func (d CreditNoteDocument) Payload() eventadapter.CreditNoteAppliedPayload {
	return eventadapter.CreditNoteAppliedPayload(d)
}

// ExpenseDocument is an expense in its current state. Only POSTED expenses derive lines.
type ExpenseDocument struct {
	ExpenseID     string                     `json:"expenseId"`
	Amount        decimal.Decimal            `json:"amount"`
	Category      string                     `json:"category"`
	PaymentMethod eventadapter.PaymentMethod `json:"paymentMethod"`
	Status        eventadapter.ExpenseStatus `json:"status"`
	Currency      string                     `json:"currency"`
}

func (d ExpenseDocument) SourceType() string { return eventadapter.SourceExpense }
func (d ExpenseDocument) SourceID() string   { return d.ExpenseID }

// Payload is the ExpensePosted payload for the document reaching its current status.
func (d ExpenseDocument) Payload() eventadapter.ExpensePostedPayload {
	return eventadapter.ExpensePostedPayload{
		ExpenseID:     d.ExpenseID,
		Amount:        d.Amount,
		Category:      d.Category,
		PaymentMethod: d.PaymentMethod,
		Status:        d.Status,
		Currency:      d.Currency,
	}
}

// Derivation is the posting a document would produce.
type Derivation struct {
	SourceType    string             `json:"sourceType"`
	SourceID      string             `json:"sourceId"`
	SourceEventID string             `json:"sourceEventId"`
	CurrencyCode  string             `json:"currencyCode"`
	Lines         []domain.DraftLine `json:"lines"`
}

// Lens derives postings through the same Mapper the event pipeline uses.
type Lens struct {
	mapper *eventadapter.Mapper
}

// NewLens creates a Lens sharing mapper's rules.
func NewLens(mapper *eventadapter.Mapper) *Lens {
	return &Lens{mapper: mapper}
}

// Derive computes the lines the adapter would post for doc. It has no side effects.
func (l *Lens) Derive(doc Document) (Derivation, error) {
	var (
		lines    []domain.DraftLine
		currency string
		err      error
	)
	switch d := doc.(type) {
	case InvoiceDocument:
		lines, err = l.mapper.MapInvoiceIssued(d.Payload())
		currency = d.Currency
	case PaymentDocument:
		lines, err = l.mapper.MapPaymentRecorded(d.Payload())
		currency = d.Currency
	case CreditNoteDocument:
		lines, err = l.mapper.MapCreditNoteApplied(d.Payload())
		currency = d.Currency
	case ExpenseDocument:
		lines, err = l.mapper.MapExpensePosted(d.Payload())
		currency = d.Currency
	default:
		return Derivation{}, apperrors.New(apperrors.ErrInvalidEvent, "unsupported document %T", doc)
	}
	if err != nil {
		return Derivation{}, err
	}
	return Derivation{
		SourceType:    doc.SourceType(),
		SourceID:      doc.SourceID(),
		SourceEventID: eventadapter.DocumentEventID(doc.SourceType(), doc.SourceID()),
		CurrencyCode:  strings.ToUpper(currency),
		Lines:         lines,
	}, nil
}

// Discrepancy is a per-account, per-side difference between derived and posted amounts.
type Discrepancy struct {
	AccountCode string          `json:"accountCode"`
	Side        domain.Side     `json:"side"`
	Expected    decimal.Decimal `json:"expected"`
	Posted      decimal.Decimal `json:"posted"`
}

type sideKey struct {
	code string
	side domain.Side
}

// Audit compares a derivation with lines already posted for the same document.
// accountCodes maps the posted lines' account ids to codes. An empty result
// means the ledger matches what the rules produce today.
func (l *Lens) Audit(d Derivation, posted []domain.JournalLine, accountCodes map[string]string) []Discrepancy {
	expected := map[sideKey]decimal.Decimal{}
	for _, line := range d.Lines {
		k := sideKey{line.AccountCode, line.Side}
		expected[k] = sumOrZero(expected, k).Add(line.Amount)
	}
	actual := map[sideKey]decimal.Decimal{}
	for _, line := range posted {
		code, ok := accountCodes[line.AccountID]
		if !ok {
			code = line.AccountID
		}
		k := sideKey{code, line.Side}
		actual[k] = sumOrZero(actual, k).Add(line.Amount)
	}

	keys := map[sideKey]struct{}{}
	for k := range expected {
		keys[k] = struct{}{}
	}
	for k := range actual {
		keys[k] = struct{}{}
	}

	var out []Discrepancy
	for k := range keys {
		e, a := sumOrZero(expected, k), sumOrZero(actual, k)
		if !e.Equal(a) {
			out = append(out, Discrepancy{AccountCode: k.code, Side: k.side, Expected: e, Posted: a})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AccountCode != out[j].AccountCode {
			return out[i].AccountCode < out[j].AccountCode
		}
		return out[i].Side < out[j].Side
	})
	return out
}

func sumOrZero(m map[sideKey]decimal.Decimal, k sideKey) decimal.Decimal {
	if v, ok := m[k]; ok {
		return v
	}
	return decimal.Zero
}
