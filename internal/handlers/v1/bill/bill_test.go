package bill

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/carson-networks/budget-engine/internal/billing"
	"github.com/carson-networks/budget-engine/internal/service"
	"github.com/carson-networks/budget-engine/internal/storage"
	"github.com/carson-networks/budget-engine/internal/storage/bill"
)

type mockBillService struct {
	mock.Mock
}

func (m *mockBillService) CreateBill(ctx context.Context, create bill.BillCreate) (uuid.UUID, error) {
	args := m.Called(ctx, create)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *mockBillService) ListBills(ctx context.Context, userID uuid.UUID, cursor *service.BillCursor) ([]*bill.Bill, *service.BillCursor, error) {
	args := m.Called(ctx, userID, cursor)
	bills, _ := args.Get(0).([]*bill.Bill)
	next, _ := args.Get(1).(*service.BillCursor)
	return bills, next, args.Error(2)
}

func (m *mockBillService) GetBill(ctx context.Context, userID, id uuid.UUID) (*bill.Bill, error) {
	args := m.Called(ctx, userID, id)
	b, _ := args.Get(0).(*bill.Bill)
	return b, args.Error(1)
}

func (m *mockBillService) UpdateBill(ctx context.Context, userID, id uuid.UUID, update bill.BillUpdate) (*bill.Bill, error) {
	args := m.Called(ctx, userID, id, update)
	b, _ := args.Get(0).(*bill.Bill)
	return b, args.Error(1)
}

func (m *mockBillService) DeleteBill(ctx context.Context, userID, id uuid.UUID) error {
	return m.Called(ctx, userID, id).Error(0)
}

func newTestAPI(t *testing.T, svc *mockBillService) humatest.TestAPI {
	t.Helper()
	_, api := humatest.New(t)
	NewCreateBillHandler(svc).Register(api)
	NewListBillsHandler(svc).Register(api)
	NewGetBillHandler(svc).Register(api)
	NewUpdateBillHandler(svc).Register(api)
	NewDeleteBillHandler(svc).Register(api)
	return api
}

func userHeader(id uuid.UUID) string {
	return "X-User-ID: " + id.String()
}

func intPtr(v int) *int { return &v }

func sampleBill(user uuid.UUID) *bill.Bill {
	return &bill.Bill{
		ID:        uuid.Must(uuid.NewV4()),
		UserID:    user,
		Name:      "Rent",
		Amount:    decimal.RequireFromString("1500.00"),
		DueType:   billing.DueTypeFixed,
		DayDue:    intPtr(1),
		CreatedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

// -- parse unit tests --

func TestParseCreateBillInput(t *testing.T) {
	user := uuid.Must(uuid.NewV4())
	create, err := parseCreateBillInput(&CreateBillInput{
		UserID: user.String(),
		Body: CreateBillBody{
			Name: "Rent", Amount: "1500.50", DueType: "Fixed", DayDue: intPtr(3), IsAutoPay: true,
		},
	})
	require.NoError(t, err)
	assert.Equal(t, user, create.UserID)
	assert.True(t, create.Amount.Equal(decimal.RequireFromString("1500.50")))
	assert.Equal(t, billing.DueTypeFixed, create.DueType)
	assert.Equal(t, 3, *create.DayDue)
	assert.True(t, create.IsAutoPay)
}

func TestParseUpdateBillBody(t *testing.T) {
	name := "Mortgage"
	update, err := parseUpdateBillBody(UpdateBillBody{Name: &name, ClearDayDue: true})
	require.NoError(t, err)
	assert.Equal(t, "Mortgage", update.Name.GetOrZero())
	assert.True(t, update.DayDue.IsNull())
	assert.True(t, update.Amount.IsUnset())

	_, err = parseUpdateBillBody(UpdateBillBody{DayDue: intPtr(4), ClearDayDue: true})
	assert.Error(t, err)

	bad := "abc"
	_, err = parseUpdateBillBody(UpdateBillBody{Amount: &bad})
	assert.Error(t, err)
}

// -- HTTP tests --

func TestHTTP_CreateBill_Success(t *testing.T) {
	user := uuid.Must(uuid.NewV4())
	id := uuid.Must(uuid.NewV4())

	svc := new(mockBillService)
	svc.On("CreateBill", mock.Anything, mock.MatchedBy(func(c bill.BillCreate) bool {
		return c.UserID == user && c.Name == "Rent" && c.DueType == billing.DueTypeEndOfMonth && c.DayDue == nil
	})).Return(id, nil)

	resp := newTestAPI(t, svc).Post("/v1/bills", userHeader(user), CreateBillBody{
		Name: "Rent", Amount: "1200", DueType: "EndOfMonth",
	})

	assert.Equal(t, http.StatusCreated, resp.Code)
	var body CreateBillResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, id.String(), body.ID)
	svc.AssertExpectations(t)
}

func TestHTTP_CreateBill_SchemaViolation(t *testing.T) {
	svc := new(mockBillService)

	resp := newTestAPI(t, svc).Post("/v1/bills", userHeader(uuid.Must(uuid.NewV4())), CreateBillBody{
		Name: "Rent", Amount: "10", DueType: "Weekly",
	})

	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	svc.AssertNotCalled(t, "CreateBill", mock.Anything, mock.Anything)
}

func TestHTTP_CreateBill_ValidationError(t *testing.T) {
	svc := new(mockBillService)
	svc.On("CreateBill", mock.Anything, mock.Anything).
		Return(uuid.Nil, fmt.Errorf("%w: dayDue must be between 1 and 31 for a Fixed bill", service.ErrValidation))

	resp := newTestAPI(t, svc).Post("/v1/bills", userHeader(uuid.Must(uuid.NewV4())), CreateBillBody{
		Name: "Rent", Amount: "10", DueType: "Fixed",
	})

	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestHTTP_CreateBill_InvalidAmount(t *testing.T) {
	svc := new(mockBillService)

	resp := newTestAPI(t, svc).Post("/v1/bills", userHeader(uuid.Must(uuid.NewV4())), CreateBillBody{
		Name: "Rent", Amount: "ten", DueType: "EndOfMonth",
	})

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	svc.AssertNotCalled(t, "CreateBill", mock.Anything, mock.Anything)
}

func TestHTTP_CreateBill_BadUserHeader(t *testing.T) {
	svc := new(mockBillService)

	resp := newTestAPI(t, svc).Post("/v1/bills", "X-User-ID: nobody", CreateBillBody{
		Name: "Rent", Amount: "10", DueType: "EndOfMonth",
	})

	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestHTTP_ListBills_WithCursor(t *testing.T) {
	user := uuid.Must(uuid.NewV4())
	b := sampleBill(user)

	svc := new(mockBillService)
	svc.On("ListBills", mock.Anything, user, &service.BillCursor{Position: 2, Limit: 2}).
		Return([]*bill.Bill{b}, &service.BillCursor{Position: 4, Limit: 2}, nil)

	resp := newTestAPI(t, svc).Get("/v1/bills?position=2&limit=2", userHeader(user))

	assert.Equal(t, http.StatusOK, resp.Code)
	var body ListBillsResponseBody
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Bills, 1)
	assert.Equal(t, b.ID.String(), body.Bills[0].ID)
	assert.Equal(t, "1500", body.Bills[0].Amount)
	assert.Equal(t, "2024-01-02T03:04:05Z", body.Bills[0].CreatedAt)
	require.NotNil(t, body.NextCursor)
	assert.Equal(t, 4, body.NextCursor.Position)
	svc.AssertExpectations(t)
}

func TestHTTP_ListBills_DefaultCursorIsNil(t *testing.T) {
	user := uuid.Must(uuid.NewV4())

	svc := new(mockBillService)
	svc.On("ListBills", mock.Anything, user, (*service.BillCursor)(nil)).
		Return(([]*bill.Bill)(nil), (*service.BillCursor)(nil), nil)

	resp := newTestAPI(t, svc).Get("/v1/bills", userHeader(user))

	assert.Equal(t, http.StatusOK, resp.Code)
	var body ListBillsResponseBody
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Empty(t, body.Bills)
	assert.Nil(t, body.NextCursor)
}

func TestHTTP_GetBill_NotFound(t *testing.T) {
	user := uuid.Must(uuid.NewV4())
	id := uuid.Must(uuid.NewV4())

	svc := new(mockBillService)
	svc.On("GetBill", mock.Anything, user, id).Return(nil, storage.ErrNotFound)

	resp := newTestAPI(t, svc).Get("/v1/bills/"+id.String(), userHeader(user))

	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestHTTP_GetBill_InvalidID(t *testing.T) {
	svc := new(mockBillService)

	resp := newTestAPI(t, svc).Get("/v1/bills/not-a-uuid", userHeader(uuid.Must(uuid.NewV4())))

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	svc.AssertNotCalled(t, "GetBill", mock.Anything, mock.Anything, mock.Anything)
}

func TestHTTP_UpdateBill_Success(t *testing.T) {
	user := uuid.Must(uuid.NewV4())
	b := sampleBill(user)
	b.IsAutoPay = true

	svc := new(mockBillService)
	svc.On("UpdateBill", mock.Anything, user, b.ID, mock.MatchedBy(func(u bill.BillUpdate) bool {
		return u.IsAutoPay.GetOrZero() && u.Name.IsUnset() && u.DayDue.IsUnset()
	})).Return(b, nil)

	autoPay := true
	resp := newTestAPI(t, svc).Patch("/v1/bills/"+b.ID.String(), userHeader(user), UpdateBillBody{IsAutoPay: &autoPay})

	assert.Equal(t, http.StatusOK, resp.Code)
	var body Bill
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body.IsAutoPay)
	svc.AssertExpectations(t)
}

func TestHTTP_UpdateBill_ServiceError(t *testing.T) {
	user := uuid.Must(uuid.NewV4())
	id := uuid.Must(uuid.NewV4())

	svc := new(mockBillService)
	svc.On("UpdateBill", mock.Anything, user, id, mock.Anything).Return(nil, errors.New("database unavailable"))

	name := "New"
	resp := newTestAPI(t, svc).Patch("/v1/bills/"+id.String(), userHeader(user), UpdateBillBody{Name: &name})

	assert.Equal(t, http.StatusInternalServerError, resp.Code)
}

func TestHTTP_DeleteBill(t *testing.T) {
	user := uuid.Must(uuid.NewV4())
	id := uuid.Must(uuid.NewV4())

	svc := new(mockBillService)
	svc.On("DeleteBill", mock.Anything, user, id).Return(nil)

	resp := newTestAPI(t, svc).Delete("/v1/bills/"+id.String(), userHeader(user))

	assert.Equal(t, http.StatusNoContent, resp.Code)
	svc.AssertExpectations(t)
}
