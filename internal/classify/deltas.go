package classify

import "github.com/shopspring/decimal"

// Deltas holds the signed change a transaction makes to each summary
// accumulator. The zero value is a no-op.
type Deltas struct {
	CashIncomeExternal       decimal.Decimal
	CashSpending             decimal.Decimal
	CashSavingsContributions decimal.Decimal
	CCPurchases              decimal.Decimal
	CCPayments               decimal.Decimal
	CCInterestFees           decimal.Decimal
	CCRefunds                decimal.Decimal
	CCPrincipalDelta         decimal.Decimal
}

// Scale multiplies every field by multiplier (+1 apply, -1 reverse).
func (d Deltas) Scale(multiplier int64) Deltas {
	m := decimal.NewFromInt(multiplier)
	return Deltas{
		CashIncomeExternal:       d.CashIncomeExternal.Mul(m),
		CashSpending:             d.CashSpending.Mul(m),
		CashSavingsContributions: d.CashSavingsContributions.Mul(m),
		CCPurchases:              d.CCPurchases.Mul(m),
		CCPayments:               d.CCPayments.Mul(m),
		CCInterestFees:           d.CCInterestFees.Mul(m),
		CCRefunds:                d.CCRefunds.Mul(m),
		CCPrincipalDelta:         d.CCPrincipalDelta.Mul(m),
	}
}

func (d Deltas) Add(o Deltas) Deltas {
	return Deltas{
		CashIncomeExternal:       d.CashIncomeExternal.Add(o.CashIncomeExternal),
		CashSpending:             d.CashSpending.Add(o.CashSpending),
		CashSavingsContributions: d.CashSavingsContributions.Add(o.CashSavingsContributions),
		CCPurchases:              d.CCPurchases.Add(o.CCPurchases),
		CCPayments:               d.CCPayments.Add(o.CCPayments),
		CCInterestFees:           d.CCInterestFees.Add(o.CCInterestFees),
		CCRefunds:                d.CCRefunds.Add(o.CCRefunds),
		CCPrincipalDelta:         d.CCPrincipalDelta.Add(o.CCPrincipalDelta),
	}
}

func (d Deltas) IsZero() bool {
	return d.CashIncomeExternal.IsZero() &&
		d.CashSpending.IsZero() &&
		d.CashSavingsContributions.IsZero() &&
		d.CCPurchases.IsZero() &&
		d.CCPayments.IsZero() &&
		d.CCInterestFees.IsZero() &&
		d.CCRefunds.IsZero() &&
		d.CCPrincipalDelta.IsZero()
}

// Equal compares numerically, so 45 and 45.00 are equal.
func (d Deltas) Equal(o Deltas) bool {
	return d.CashIncomeExternal.Equal(o.CashIncomeExternal) &&
		d.CashSpending.Equal(o.CashSpending) &&
		d.CashSavingsContributions.Equal(o.CashSavingsContributions) &&
		d.CCPurchases.Equal(o.CCPurchases) &&
		d.CCPayments.Equal(o.CCPayments) &&
		d.CCInterestFees.Equal(o.CCInterestFees) &&
		d.CCRefunds.Equal(o.CCRefunds) &&
		d.CCPrincipalDelta.Equal(o.CCPrincipalDelta)
}

// CategorySpend is the amount a transaction contributes to its spending
// category: cash spending plus card purchases, net of card refunds.
func (d Deltas) CategorySpend() decimal.Decimal {
	return d.CashSpending.Add(d.CCPurchases).Sub(d.CCRefunds)
}
