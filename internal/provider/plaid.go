package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"cloud.google.com/go/civil"
	"github.com/davecgh/go-spew/spew"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// https://plaid.com/docs/api/products/transactions/#transactionssync

var plaidHosts = map[string]string{
	"sandbox":     "https://sandbox.plaid.com",
	"development": "https://development.plaid.com",
	"production":  "https://production.plaid.com",
}

// PlaidConfig carries the credentials of one Plaid client. BaseURL
// overrides the host picked from Env.
type PlaidConfig struct {
	ClientID string
	Secret   string
	Env      string
	BaseURL  string
	Timeout  time.Duration
}

type Plaid struct {
	cfg     PlaidConfig
	baseURL string
	client  *http.Client
	log     *logrus.Logger
}

var _ Feed = (*Plaid)(nil)

func NewPlaid(cfg PlaidConfig, log *logrus.Logger) (*Plaid, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		host, ok := plaidHosts[cfg.Env]
		if !ok {
			return nil, fmt.Errorf("unknown plaid environment %q", cfg.Env)
		}
		baseURL = host
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Plaid{
		cfg:     cfg,
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		log:     log,
	}, nil
}

type syncRequest struct {
	ClientID    string      `json:"client_id"`
	Secret      string      `json:"secret"`
	AccessToken string      `json:"access_token"`
	Cursor      string      `json:"cursor,omitempty"`
	Count       int         `json:"count,omitempty"`
	Options     syncOptions `json:"options"`
}

type syncOptions struct {
	IncludePersonalFinanceCategory bool `json:"include_personal_finance_category"`
}

type syncResponse struct {
	Accounts   []plaidAccount     `json:"accounts"`
	Added      []plaidTransaction `json:"added"`
	Modified   []plaidTransaction `json:"modified"`
	Removed    []plaidRemoved     `json:"removed"`
	NextCursor string             `json:"next_cursor"`
	HasMore    bool               `json:"has_more"`
	RequestID  string             `json:"request_id"`
}

type plaidAccount struct {
	AccountID string `json:"account_id"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	Subtype   string `json:"subtype"`
	Balances  struct {
		ISOCurrencyCode        string `json:"iso_currency_code"`
		UnofficialCurrencyCode string `json:"unofficial_currency_code"`
	} `json:"balances"`
}

type plaidTransaction struct {
	TransactionID          string          `json:"transaction_id"`
	AccountID              string          `json:"account_id"`
	Amount                 decimal.Decimal `json:"amount"`
	ISOCurrencyCode        string          `json:"iso_currency_code"`
	UnofficialCurrencyCode string          `json:"unofficial_currency_code"`
	Date                   *civil.Date     `json:"date"`
	AuthorizedDate         *civil.Date     `json:"authorized_date"`
	Name                   string          `json:"name"`
	MerchantName           string          `json:"merchant_name"`
	PaymentChannel         string          `json:"payment_channel"`
	Pending                bool            `json:"pending"`
	Category               struct {
		Primary  string `json:"primary"`
		Detailed string `json:"detailed"`
	} `json:"personal_finance_category"`
}

type plaidRemoved struct {
	TransactionID string `json:"transaction_id"`
}

// APIError is a non-2xx Plaid response.
type APIError struct {
	Status    int
	Type      string `json:"error_type"`
	Code      string `json:"error_code"`
	Message   string `json:"error_message"`
	RequestID string `json:"request_id"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("plaid %d %s/%s: %s", e.Status, e.Type, e.Code, e.Message)
}

// Transient reports whether repeating the same request may succeed.
// A mutation during pagination means the whole sync must be restarted
// from the cursor the driver still holds.
func (e *APIError) Transient() bool {
	if e.Status == http.StatusTooManyRequests || e.Status >= 500 {
		return true
	}
	switch e.Type {
	case "RATE_LIMIT_EXCEEDED", "API_ERROR", "INSTITUTION_ERROR":
		return true
	}
	return e.Code == "TRANSACTIONS_SYNC_MUTATION_DURING_PAGINATION"
}

func (p *Plaid) Sync(ctx context.Context, accessToken, cursor string, count int) (*Page, error) {
	body, err := json.Marshal(syncRequest{
		ClientID:    p.cfg.ClientID,
		Secret:      p.cfg.Secret,
		AccessToken: accessToken,
		Cursor:      cursor,
		Count:       count,
		Options:     syncOptions{IncludePersonalFinanceCategory: true},
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/transactions/sync", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("transactions/sync: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("transactions/sync read body: %w: %v", ErrTransient, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		if jsonErr := json.Unmarshal(data, apiErr); jsonErr != nil {
			apiErr.Message = string(data)
		}
		return nil, apiErr
	}

	var out syncResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("transactions/sync decode: %w", err)
	}

	page := out.toPage()
	if p.log.IsLevelEnabled(logrus.DebugLevel) {
		p.log.WithField("requestID", out.RequestID).Debug("Plaid.Sync.Page\n" + spew.Sdump(page))
	}
	return page, nil
}

func (r *syncResponse) toPage() *Page {
	page := &Page{
		NextCursor: r.NextCursor,
		HasMore:    r.HasMore,
	}
	for _, a := range r.Accounts {
		currency := a.Balances.ISOCurrencyCode
		if currency == "" {
			currency = a.Balances.UnofficialCurrencyCode
		}
		page.Accounts = append(page.Accounts, Account{
			ID:       a.AccountID,
			Name:     a.Name,
			Type:     a.Type,
			Subtype:  a.Subtype,
			Currency: currency,
		})
	}
	for _, t := range r.Added {
		page.Added = append(page.Added, t.toTransaction())
	}
	for _, t := range r.Modified {
		page.Modified = append(page.Modified, t.toTransaction())
	}
	for _, t := range r.Removed {
		page.Removed = append(page.Removed, t.TransactionID)
	}
	return page
}

func (t plaidTransaction) toTransaction() Transaction {
	currency := t.ISOCurrencyCode
	if currency == "" {
		currency = t.UnofficialCurrencyCode
	}
	out := Transaction{
		ID:               t.TransactionID,
		AccountID:        t.AccountID,
		Amount:           t.Amount,
		Currency:         currency,
		Name:             t.Name,
		MerchantName:     t.MerchantName,
		CategoryPrimary:  t.Category.Primary,
		CategoryDetailed: t.Category.Detailed,
		PaymentChannel:   t.PaymentChannel,
		Pending:          t.Pending,
	}
	if t.Date != nil {
		out.Date = *t.Date
	}
	if t.AuthorizedDate != nil {
		out.AuthorizedDate = *t.AuthorizedDate
	}
	return out
}
