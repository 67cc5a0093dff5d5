package payment

import (
	"time"

	"github.com/carson-networks/budget-engine/internal/storage/payment"
)

// Payment is the API response model for a scheduled bill payment.
type Payment struct {
	ID       string  `json:"id" doc:"Payment UUID"`
	BillID   string  `json:"billID" doc:"Bill UUID"`
	DueDate  string  `json:"dueDate" doc:"ISO due date"`
	PaidDate *string `json:"paidDate,omitempty" doc:"RFC3339 time the payment was settled, absent while unpaid"`
}

func toResponse(p *payment.Payment) Payment {
	resp := Payment{
		ID:      p.ID.String(),
		BillID:  p.BillID.String(),
		DueDate: p.DueDate.String(),
	}
	if p.PaidDate != nil {
		paid := p.PaidDate.Format(time.RFC3339)
		resp.PaidDate = &paid
	}
	return resp
}
