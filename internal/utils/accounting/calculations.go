package accounting

import (
	"github.com/SscSPs/tenant_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// SignedAmount applies the sign of a line amount relative to an account's normal balance.
// This is used by services and repositories alike so balance deltas, running ledgers
// and replays agree.
//
//	DEBIT to a DEBIT-normal account (ASSET/EXPENSE)  -> +
//	CREDIT to a DEBIT-normal account                 -> -
//	CREDIT to a CREDIT-normal account (LIABILITY/EQUITY/REVENUE) -> +
//	DEBIT to a CREDIT-normal account                 -> -
func SignedAmount(side domain.Side, amount decimal.Decimal, normal domain.Side) decimal.Decimal {
	if side == normal {
		return amount
	}
	return amount.Neg()
}

// BalanceDeltas folds lines into per-account balance changes.
// normals maps account id to the account's normal balance side.
func BalanceDeltas(lines []domain.JournalLine, normals map[string]domain.Side) map[string]decimal.Decimal {
	deltas := make(map[string]decimal.Decimal, len(lines))
	for _, l := range lines {
		d, ok := deltas[l.AccountID]
		if !ok {
			d = decimal.Zero
		}
		deltas[l.AccountID] = d.Add(SignedAmount(l.Side, l.Amount, normals[l.AccountID]))
	}
	return deltas
}

// ReverseLines mirrors lines with each side swapped. Line ids and entry ids are cleared.
func ReverseLines(lines []domain.JournalLine) []domain.JournalLine {
	out := make([]domain.JournalLine, len(lines))
	for i, l := range lines {
		out[i] = domain.JournalLine{
			LineNumber: l.LineNumber,
			AccountID:  l.AccountID,
			Side:       l.Side.Opposite(),
			Amount:     l.Amount,
			Memo:       l.Memo,
		}
	}
	return out
}
