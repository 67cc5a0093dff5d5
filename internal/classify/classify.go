package classify

import (
	"strings"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

type AccountType string

const (
	AccountTypeUnknown  AccountType = ""
	AccountTypeChecking AccountType = "checking"
	AccountTypeSavings  AccountType = "savings"
	AccountTypeCredit   AccountType = "credit"
)

// Uncategorized is the spending category for transactions the provider left
// without a primary category.
const Uncategorized = "UNCATEGORIZED"

// Brokerage sweeps the provider tags as TRANSFER on savings accounts even
// though the money leaves the household.
var externalSweepPatterns = []string{"fid bkg svc", "moneyline", "fidelity"}

// Transaction is the subset of a provider transaction the classifier reads.
type Transaction struct {
	Amount           decimal.Decimal
	Name             string
	CategoryPrimary  string
	CategoryDetailed string
	PaymentChannel   string
	Currency         string
	Date             civil.Date
	AuthorizedDate   civil.Date
}

// EffectiveDate is the authorized date when present, else the posted date.
// ok is false when neither is set.
func (t Transaction) EffectiveDate() (date civil.Date, ok bool) {
	if t.AuthorizedDate != (civil.Date{}) {
		return t.AuthorizedDate, true
	}
	if t.Date != (civil.Date{}) {
		return t.Date, true
	}
	return civil.Date{}, false
}

type Classification struct {
	IsInternalTransfer  bool
	IsCreditCardPayment bool
	IsRefundOrReversal  bool
	IsInterestOrFee     bool

	Deltas Deltas

	EffectiveDate    civil.Date
	HasEffectiveDate bool
	Currency         string
	Category         string
}

// Classify derives the economic effect of txn on an account of the given
// type. It has no side effects; an unknown account type yields zero deltas.
func Classify(txn Transaction, accountType AccountType) Classification {
	name := strings.ToLower(txn.Name)
	primary := normalizeCategory(txn.CategoryPrimary)
	detailed := normalizeCategory(txn.CategoryDetailed)

	c := Classification{
		IsInterestOrFee: strings.Contains(detailed, "INTEREST") ||
			strings.Contains(detailed, "ANNUAL_FEE") ||
			strings.Contains(detailed, "LATE_FEE") ||
			strings.Contains(primary, "BANK_FEES"),
		IsRefundOrReversal: strings.Contains(name, "refund") ||
			strings.Contains(detailed, "REFUND"),
		IsCreditCardPayment: accountType == AccountTypeCredit &&
			(strings.Contains(name, "payment") ||
				strings.Contains(name, "thank you") ||
				strings.Contains(detailed, "CREDIT_CARD_PAYMENT") ||
				strings.Contains(detailed, "DEBT_PAYMENTS")),
		IsInternalTransfer: strings.Contains(primary, "TRANSFER") ||
			strings.Contains(detailed, "TRANSFER"),
		Currency: txn.Currency,
		Category: primary,
	}
	if c.Category == "" {
		c.Category = Uncategorized
	}

	if accountType == AccountTypeSavings && isExternalSweep(name) {
		c.IsInternalTransfer = false
	}

	c.EffectiveDate, c.HasEffectiveDate = txn.EffectiveDate()
	c.Deltas = computeDeltas(c, txn.Amount, accountType)
	return c
}

func computeDeltas(c Classification, amount decimal.Decimal, accountType AccountType) Deltas {
	var d Deltas
	abs := amount.Abs()

	switch accountType {
	case AccountTypeChecking, AccountTypeSavings:
		external := !c.IsInternalTransfer && !c.IsCreditCardPayment
		if amount.IsNegative() && external {
			d.CashIncomeExternal = abs
		}
		if amount.IsPositive() && external {
			d.CashSpending = amount
		}
		if accountType == AccountTypeSavings && c.IsInternalTransfer {
			// money arriving in savings is a positive contribution
			if amount.IsNegative() {
				d.CashSavingsContributions = abs
			} else {
				d.CashSavingsContributions = amount.Neg()
			}
		}

	case AccountTypeCredit:
		switch {
		case c.IsInterestOrFee:
			d.CCInterestFees = abs
		case c.IsCreditCardPayment:
			d.CCPayments = abs
			d.CCPrincipalDelta = abs.Neg()
		case c.IsRefundOrReversal:
			d.CCRefunds = abs
			d.CCPrincipalDelta = abs.Neg()
		default:
			d.CCPurchases = abs
			d.CCPrincipalDelta = abs
		}
	}

	return d
}

func isExternalSweep(lowerName string) bool {
	for _, pattern := range externalSweepPatterns {
		if strings.Contains(lowerName, pattern) {
			return true
		}
	}
	return false
}

// normalizeCategory upper-cases and turns spaces into underscores so
// "Bank Fees" and "BANK_FEES" match the same rule.
func normalizeCategory(category string) string {
	category = strings.ToUpper(strings.TrimSpace(category))
	return strings.Join(strings.Fields(category), "_")
}
