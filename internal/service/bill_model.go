package service

import (
	"fmt"
	"strings"

	"github.com/carson-networks/budget-engine/internal/billing"
	"github.com/carson-networks/budget-engine/internal/storage/bill"
)

// BillCursor identifies a position in a paginated result set.
type BillCursor struct {
	Position int
	Limit    int
}

func validationError(field, msg string) error {
	return fmt.Errorf("%w: %s %s", ErrValidation, field, msg)
}

// ValidateBill applies the rules every stored bill must satisfy.
func ValidateBill(b bill.Bill) error {
	if strings.TrimSpace(b.Name) == "" {
		return validationError("name", "is required")
	}
	if !b.Amount.IsPositive() {
		return validationError("amount", "must be greater than zero")
	}
	if _, err := billing.ParseDueType(string(b.DueType)); err != nil {
		return validationError("dueType", "must be Fixed or EndOfMonth")
	}
	switch b.DueType {
	case billing.DueTypeFixed:
		if b.DayDue == nil || *b.DayDue < 1 || *b.DayDue > 31 {
			return validationError("dayDue", "must be between 1 and 31 for a Fixed bill")
		}
	case billing.DueTypeEndOfMonth:
		if b.DayDue != nil {
			return validationError("dayDue", "must be empty for an EndOfMonth bill")
		}
	}
	return nil
}
