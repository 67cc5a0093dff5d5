// Package provider is the transaction feed the sync driver pulls from.
package provider

import (
	"context"
	"errors"
	"net"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/budget-engine/internal/classify"
)

// ErrTransient marks failures worth retrying: network trouble, throttling
// and provider-side errors.
var ErrTransient = errors.New("transient provider failure")

// Feed returns one page of changes after cursor. An empty cursor starts
// from the beginning of the item's history.
type Feed interface {
	Sync(ctx context.Context, accessToken, cursor string, count int) (*Page, error)
}

type Page struct {
	Accounts   []Account
	Added      []Transaction
	Modified   []Transaction
	Removed    []string
	NextCursor string
	HasMore    bool
}

// Transaction amounts are positive when money leaves the account.
type Transaction struct {
	ID               string
	AccountID        string
	Amount           decimal.Decimal
	Currency         string
	Date             civil.Date
	AuthorizedDate   civil.Date
	Name             string
	MerchantName     string
	CategoryPrimary  string
	CategoryDetailed string
	PaymentChannel   string
	Pending          bool
}

type Account struct {
	ID       string
	Name     string
	Type     string
	Subtype  string
	Currency string
}

var savingsSubtypes = map[string]bool{
	"savings":      true,
	"money market": true,
	"cd":           true,
}

// AccountType maps the provider's type and subtype onto a classification branch.
func (a Account) AccountType() classify.AccountType {
	switch strings.ToLower(a.Type) {
	case "depository":
		if savingsSubtypes[strings.ToLower(a.Subtype)] {
			return classify.AccountTypeSavings
		}
		return classify.AccountTypeChecking
	case "credit":
		return classify.AccountTypeCredit
	}
	return classify.AccountTypeUnknown
}

// IsTransient reports whether err may succeed on a later attempt.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, ErrTransient) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Transient()
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
