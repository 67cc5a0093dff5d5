package bill

import (
	"time"

	"github.com/carson-networks/budget-engine/internal/storage/bill"
)

// Bill is the API response model for a bill.
type Bill struct {
	ID        string `json:"id" doc:"Bill UUID"`
	Name      string `json:"name" doc:"Bill name"`
	Amount    string `json:"amount" doc:"Decimal amount due"`
	DueType   string `json:"dueType" enum:"Fixed,EndOfMonth" doc:"Fixed day of month or last day of month"`
	DayDue    *int   `json:"dayDue,omitempty" doc:"Day of month for Fixed bills"`
	IsAutoPay bool   `json:"isAutoPay" doc:"Payments are settled automatically on the due date"`
	CreatedAt string `json:"createdAt" doc:"RFC3339 creation time"`
}

func toResponse(b *bill.Bill) Bill {
	return Bill{
		ID:        b.ID.String(),
		Name:      b.Name,
		Amount:    b.Amount.String(),
		DueType:   string(b.DueType),
		DayDue:    b.DayDue,
		IsAutoPay: b.IsAutoPay,
		CreatedAt: b.CreatedAt.Format(time.RFC3339),
	}
}
