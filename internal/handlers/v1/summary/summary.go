package summary

import (
	"time"

	"github.com/carson-networks/budget-engine/internal/storage/summary"
)

// Summary is the API response model for one period bucket. Amounts are
// decimal strings so they round-trip exactly.
type Summary struct {
	Period                   string `json:"period" doc:"day, week or month"`
	BucketStart              string `json:"bucketStart" doc:"RFC3339 start of the bucket, inclusive"`
	BucketEnd                string `json:"bucketEnd" doc:"RFC3339 end of the bucket, exclusive"`
	Currency                 string `json:"currency" doc:"Currency of the first contributing transaction"`
	CashIncomeExternal       string `json:"cashIncomeExternal"`
	CashSpending             string `json:"cashSpending"`
	CashSavingsContributions string `json:"cashSavingsContributions"`
	CCPurchases              string `json:"ccPurchases"`
	CCPayments               string `json:"ccPayments"`
	CCInterestFees           string `json:"ccInterestFees"`
	CCRefunds                string `json:"ccRefunds"`
	CCPrincipalDelta         string `json:"ccPrincipalDelta"`
}

func toResponse(s *summary.Summary) Summary {
	return Summary{
		Period:                   string(s.Period),
		BucketStart:              s.BucketStart.Format(time.RFC3339),
		BucketEnd:                s.BucketEnd.Format(time.RFC3339),
		Currency:                 s.Currency,
		CashIncomeExternal:       s.Totals.CashIncomeExternal.String(),
		CashSpending:             s.Totals.CashSpending.String(),
		CashSavingsContributions: s.Totals.CashSavingsContributions.String(),
		CCPurchases:              s.Totals.CCPurchases.String(),
		CCPayments:               s.Totals.CCPayments.String(),
		CCInterestFees:           s.Totals.CCInterestFees.String(),
		CCRefunds:                s.Totals.CCRefunds.String(),
		CCPrincipalDelta:         s.Totals.CCPrincipalDelta.String(),
	}
}
