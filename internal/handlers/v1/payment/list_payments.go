package payment

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/budget-engine/internal/handlers"
	"github.com/carson-networks/budget-engine/internal/logging"
	"github.com/carson-networks/budget-engine/internal/service"
	"github.com/carson-networks/budget-engine/internal/storage/payment"
)

// ListPaymentsInput is the Huma input for listing payments.
type ListPaymentsInput struct {
	UserID     string `header:"X-User-ID" required:"true" doc:"Caller user UUID"`
	UnpaidOnly bool   `query:"unpaidOnly" doc:"Only return payments without a paid date"`
	Position   int    `query:"position" minimum:"0" doc:"Offset for pagination"`
	Limit      int    `query:"limit" minimum:"0" maximum:"100" doc:"Page size, default 20"`
}

type ListPaymentsCursor struct {
	Position int `json:"position" doc:"Offset for next page"`
	Limit    int `json:"limit" doc:"Page size"`
}

// ListPaymentsResponseBody is the response body for listing payments.
type ListPaymentsResponseBody struct {
	Payments   []Payment           `json:"payments" doc:"Page of payments, soonest due first"`
	NextCursor *ListPaymentsCursor `json:"nextCursor,omitempty" doc:"Cursor to fetch the next page, absent on the last page"`
}

type ListPaymentsOutput struct {
	Body ListPaymentsResponseBody
}

type paymentLister interface {
	ListPayments(ctx context.Context, userID uuid.UUID, unpaidOnly bool, cursor *service.PaymentCursor) ([]*payment.Payment, *service.PaymentCursor, error)
}

// ListPaymentsHandler handles GET /v1/payments.
type ListPaymentsHandler struct {
	PaymentService paymentLister
}

func NewListPaymentsHandler(svc paymentLister) *ListPaymentsHandler {
	return &ListPaymentsHandler{PaymentService: svc}
}

func (h *ListPaymentsHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "list-payments",
		Method:      http.MethodGet,
		Path:        "/v1/payments",
		Summary:     "List bill payments",
		Description: "Returns a paginated list of the caller's scheduled and settled bill payments.",
		Tags:        []string{"Payments"},
	}, h.handle)
}

func (h *ListPaymentsHandler) handle(ctx context.Context, input *ListPaymentsInput) (*ListPaymentsOutput, error) {
	logData := logging.GetLogData(ctx)

	userID, err := handlers.ParseUserID(input.UserID)
	if err != nil {
		return nil, err
	}

	var cursor *service.PaymentCursor
	if input.Position > 0 || input.Limit > 0 {
		cursor = &service.PaymentCursor{Position: input.Position, Limit: input.Limit}
	}

	payments, next, err := h.PaymentService.ListPayments(ctx, userID, input.UnpaidOnly, cursor)
	if err != nil {
		return nil, handlers.Error(err, "failed to list payments")
	}
	if logData != nil {
		logData.AddData("paymentCount", len(payments))
	}

	resp := ListPaymentsResponseBody{Payments: make([]Payment, len(payments))}
	for i, p := range payments {
		resp.Payments[i] = toResponse(p)
	}
	if next != nil {
		resp.NextCursor = &ListPaymentsCursor{Position: next.Position, Limit: next.Limit}
	}
	return &ListPaymentsOutput{Body: resp}, nil
}
