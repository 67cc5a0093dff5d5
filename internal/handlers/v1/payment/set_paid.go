package payment

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/budget-engine/internal/handlers"
	"github.com/carson-networks/budget-engine/internal/logging"
	"github.com/carson-networks/budget-engine/internal/storage/payment"
)

type SetPaidBody struct {
	Paid bool `json:"paid" doc:"true marks the payment paid now, false clears the paid date"`
}

type SetPaidInput struct {
	UserID    string `header:"X-User-ID" required:"true" doc:"Caller user UUID"`
	PaymentID string `path:"paymentID" doc:"Payment UUID"`
	Body      SetPaidBody
}

type SetPaidOutput struct {
	Body Payment
}

type paymentPayer interface {
	SetPaid(ctx context.Context, userID, id uuid.UUID, paid bool) (*payment.Payment, error)
}

// SetPaidHandler handles PUT /v1/payments/{paymentID}/paid.
type SetPaidHandler struct {
	PaymentService paymentPayer
}

func NewSetPaidHandler(svc paymentPayer) *SetPaidHandler {
	return &SetPaidHandler{PaymentService: svc}
}

func (h *SetPaidHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "set-payment-paid",
		Method:      http.MethodPut,
		Path:        "/v1/payments/{paymentID}/paid",
		Summary:     "Mark a payment paid or unpaid",
		Tags:        []string{"Payments"},
	}, h.handle)
}

func (h *SetPaidHandler) handle(ctx context.Context, input *SetPaidInput) (*SetPaidOutput, error) {
	userID, err := handlers.ParseUserID(input.UserID)
	if err != nil {
		return nil, err
	}
	paymentID, err := uuid.FromString(input.PaymentID)
	if err != nil {
		return nil, huma.NewError(http.StatusBadRequest, "invalid paymentID", err)
	}
	if logData := logging.GetLogData(ctx); logData != nil {
		logData.AddData("paymentID", paymentID.String())
		logData.AddData("paid", input.Body.Paid)
	}

	p, err := h.PaymentService.SetPaid(ctx, userID, paymentID, input.Body.Paid)
	if err != nil {
		return nil, handlers.Error(err, "failed to update payment")
	}
	return &SetPaidOutput{Body: toResponse(p)}, nil
}
