package transaction

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/carson-networks/budget-engine/internal/classify"
	"github.com/carson-networks/budget-engine/internal/service"
	"github.com/carson-networks/budget-engine/internal/storage/transaction"
)

type mockTransactionLister struct {
	mock.Mock
}

func (m *mockTransactionLister) ListTransactions(ctx context.Context, userID uuid.UUID, cursor *service.TransactionCursor) ([]*transaction.Transaction, *service.TransactionCursor, error) {
	args := m.Called(ctx, userID, cursor)
	txs, _ := args.Get(0).([]*transaction.Transaction)
	next, _ := args.Get(1).(*service.TransactionCursor)
	return txs, next, args.Error(2)
}

func newListTestAPI(t *testing.T, svc transactionLister) humatest.TestAPI {
	t.Helper()
	_, api := humatest.New(t)
	NewListTransactionsHandler(svc).Register(api)
	return api
}

// -- parseListTransactionsInput unit tests --

func TestParseListTransactionsInput_NoCursor(t *testing.T) {
	user := uuid.Must(uuid.NewV4())

	userID, cursor, err := parseListTransactionsInput(&ListTransactionsInput{UserID: user.String()})
	assert.NoError(t, err)
	assert.Equal(t, user, userID)
	assert.Nil(t, cursor)
}

func TestParseListTransactionsInput_WithCursor(t *testing.T) {
	_, cursor, err := parseListTransactionsInput(&ListTransactionsInput{
		UserID: uuid.Must(uuid.NewV4()).String(),
		After:  "txn-40",
		Limit:  10,
	})
	assert.NoError(t, err)
	require.NotNil(t, cursor)
	assert.Equal(t, "txn-40", cursor.After)
	assert.Equal(t, 10, cursor.Limit)
}

func TestParseListTransactionsInput_InvalidUser(t *testing.T) {
	_, _, err := parseListTransactionsInput(&ListTransactionsInput{UserID: "someone"})
	assert.Error(t, err)
}

// -- HTTP tests --

func TestHTTP_ListTransactions_SinglePage(t *testing.T) {
	user := uuid.Must(uuid.NewV4())

	mockSvc := new(mockTransactionLister)
	mockSvc.On("ListTransactions", mock.Anything, user, (*service.TransactionCursor)(nil)).
		Return([]*transaction.Transaction{
			{
				ID:             "txn-1",
				AccountID:      "acct-1",
				UserID:         user,
				AccountType:    classify.AccountTypeCredit,
				Amount:         decimal.RequireFromString("10.00"),
				Currency:       "USD",
				Date:           civil.Date{Year: 2025, Month: time.June, Day: 2},
				AuthorizedDate: civil.Date{Year: 2025, Month: time.May, Day: 31},
				Name:           "Coffee",
			},
		}, (*service.TransactionCursor)(nil), nil)

	resp := newListTestAPI(t, mockSvc).Get("/v1/transactions", "X-User-ID: "+user.String())

	assert.Equal(t, http.StatusOK, resp.Code)
	var body ListTransactionsResponseBody
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Transactions, 1)
	assert.Equal(t, "txn-1", body.Transactions[0].ID)
	assert.Equal(t, "2025-06-02", body.Transactions[0].Date)
	assert.Equal(t, "2025-05-31", body.Transactions[0].EffectiveDate)
	assert.Equal(t, "credit", body.Transactions[0].AccountType)
	assert.Nil(t, body.NextCursor)
	mockSvc.AssertExpectations(t)
}

func TestHTTP_ListTransactions_WithCursor(t *testing.T) {
	user := uuid.Must(uuid.NewV4())

	mockSvc := new(mockTransactionLister)
	mockSvc.On("ListTransactions", mock.Anything, user, &service.TransactionCursor{After: "txn-40", Limit: 10}).
		Return([]*transaction.Transaction{{ID: "txn-41", UserID: user}}, &service.TransactionCursor{After: "txn-41", Limit: 10}, nil)

	resp := newListTestAPI(t, mockSvc).Get("/v1/transactions?after=txn-40&limit=10", "X-User-ID: "+user.String())

	assert.Equal(t, http.StatusOK, resp.Code)
	var body ListTransactionsResponseBody
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.NotNil(t, body.NextCursor)
	assert.Equal(t, "txn-41", body.NextCursor.After)
	assert.Equal(t, 10, body.NextCursor.Limit)
	mockSvc.AssertExpectations(t)
}

func TestHTTP_ListTransactions_NoResults(t *testing.T) {
	mockSvc := new(mockTransactionLister)
	mockSvc.On("ListTransactions", mock.Anything, mock.Anything, mock.Anything).
		Return(([]*transaction.Transaction)(nil), (*service.TransactionCursor)(nil), nil)

	resp := newListTestAPI(t, mockSvc).Get("/v1/transactions", "X-User-ID: "+uuid.Must(uuid.NewV4()).String())

	assert.Equal(t, http.StatusOK, resp.Code)
	var body ListTransactionsResponseBody
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Empty(t, body.Transactions)
	assert.Nil(t, body.NextCursor)
}

func TestHTTP_ListTransactions_ServiceError(t *testing.T) {
	mockSvc := new(mockTransactionLister)
	mockSvc.On("ListTransactions", mock.Anything, mock.Anything, mock.Anything).
		Return(([]*transaction.Transaction)(nil), (*service.TransactionCursor)(nil), errors.New("database unavailable"))

	resp := newListTestAPI(t, mockSvc).Get("/v1/transactions", "X-User-ID: "+uuid.Must(uuid.NewV4()).String())

	assert.Equal(t, http.StatusInternalServerError, resp.Code)
	mockSvc.AssertExpectations(t)
}

func TestHTTP_ListTransactions_LimitTooLarge(t *testing.T) {
	mockSvc := new(mockTransactionLister)

	resp := newListTestAPI(t, mockSvc).Get("/v1/transactions?limit=5000", "X-User-ID: "+uuid.Must(uuid.NewV4()).String())

	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	mockSvc.AssertNotCalled(t, "ListTransactions", mock.Anything, mock.Anything, mock.Anything)
}
