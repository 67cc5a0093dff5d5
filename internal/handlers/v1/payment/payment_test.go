package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/carson-networks/budget-engine/internal/service"
	"github.com/carson-networks/budget-engine/internal/storage"
	"github.com/carson-networks/budget-engine/internal/storage/payment"
)

type mockPaymentService struct {
	mock.Mock
}

func (m *mockPaymentService) ListPayments(ctx context.Context, userID uuid.UUID, unpaidOnly bool, cursor *service.PaymentCursor) ([]*payment.Payment, *service.PaymentCursor, error) {
	args := m.Called(ctx, userID, unpaidOnly, cursor)
	rows, _ := args.Get(0).([]*payment.Payment)
	next, _ := args.Get(1).(*service.PaymentCursor)
	return rows, next, args.Error(2)
}

func (m *mockPaymentService) SetPaid(ctx context.Context, userID, id uuid.UUID, paid bool) (*payment.Payment, error) {
	args := m.Called(ctx, userID, id, paid)
	p, _ := args.Get(0).(*payment.Payment)
	return p, args.Error(1)
}

func newTestAPI(t *testing.T, svc *mockPaymentService) humatest.TestAPI {
	t.Helper()
	_, api := humatest.New(t)
	NewListPaymentsHandler(svc).Register(api)
	NewSetPaidHandler(svc).Register(api)
	return api
}

func TestHTTP_ListPayments_UnpaidOnly(t *testing.T) {
	user := uuid.Must(uuid.NewV4())
	p := &payment.Payment{
		ID:      uuid.Must(uuid.NewV4()),
		BillID:  uuid.Must(uuid.NewV4()),
		UserID:  user,
		DueDate: civil.Date{Year: 2024, Month: time.February, Day: 29},
	}

	svc := new(mockPaymentService)
	svc.On("ListPayments", mock.Anything, user, true, (*service.PaymentCursor)(nil)).
		Return([]*payment.Payment{p}, (*service.PaymentCursor)(nil), nil)

	resp := newTestAPI(t, svc).Get("/v1/payments?unpaidOnly=true", "X-User-ID: "+user.String())

	assert.Equal(t, http.StatusOK, resp.Code)
	var body ListPaymentsResponseBody
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Payments, 1)
	assert.Equal(t, "2024-02-29", body.Payments[0].DueDate)
	assert.Nil(t, body.Payments[0].PaidDate)
	svc.AssertExpectations(t)
}

func TestHTTP_SetPaid(t *testing.T) {
	user := uuid.Must(uuid.NewV4())
	paidAt := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	p := &payment.Payment{
		ID:       uuid.Must(uuid.NewV4()),
		BillID:   uuid.Must(uuid.NewV4()),
		DueDate:  civil.Date{Year: 2024, Month: time.March, Day: 1},
		PaidDate: &paidAt,
	}

	svc := new(mockPaymentService)
	svc.On("SetPaid", mock.Anything, user, p.ID, true).Return(p, nil)

	resp := newTestAPI(t, svc).Put("/v1/payments/"+p.ID.String()+"/paid", "X-User-ID: "+user.String(), SetPaidBody{Paid: true})

	assert.Equal(t, http.StatusOK, resp.Code)
	var body Payment
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.NotNil(t, body.PaidDate)
	assert.Equal(t, "2024-03-01T09:30:00Z", *body.PaidDate)
}

func TestHTTP_SetPaid_NotFound(t *testing.T) {
	user := uuid.Must(uuid.NewV4())
	id := uuid.Must(uuid.NewV4())

	svc := new(mockPaymentService)
	svc.On("SetPaid", mock.Anything, user, id, false).Return(nil, storage.ErrNotFound)

	resp := newTestAPI(t, svc).Put("/v1/payments/"+id.String()+"/paid", "X-User-ID: "+user.String(), SetPaidBody{Paid: false})

	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestHTTP_SetPaid_InvalidID(t *testing.T) {
	svc := new(mockPaymentService)

	resp := newTestAPI(t, svc).Put("/v1/payments/xyz/paid", "X-User-ID: "+uuid.Must(uuid.NewV4()).String(), SetPaidBody{Paid: true})

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	svc.AssertNotCalled(t, "SetPaid", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
