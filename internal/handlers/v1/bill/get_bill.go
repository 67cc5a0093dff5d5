package bill

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/budget-engine/internal/handlers"
	"github.com/carson-networks/budget-engine/internal/storage/bill"
)

// BillPathInput addresses one of the caller's bills.
type BillPathInput struct {
	UserID string `header:"X-User-ID" required:"true" doc:"Caller user UUID"`
	BillID string `path:"billID" doc:"Bill UUID"`
}

func parsePath(rawUserID, rawBillID string) (userID, billID uuid.UUID, err error) {
	userID, err = handlers.ParseUserID(rawUserID)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	billID, err = uuid.FromString(rawBillID)
	if err != nil {
		return uuid.Nil, uuid.Nil, huma.NewError(http.StatusBadRequest, "invalid billID", err)
	}
	return userID, billID, nil
}

// BillOutput is the Huma output carrying one bill.
type BillOutput struct {
	Body Bill
}

type billGetter interface {
	GetBill(ctx context.Context, userID, id uuid.UUID) (*bill.Bill, error)
}

// GetBillHandler handles GET /v1/bills/{billID}.
type GetBillHandler struct {
	BillService billGetter
}

func NewGetBillHandler(svc billGetter) *GetBillHandler {
	return &GetBillHandler{BillService: svc}
}

func (h *GetBillHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "get-bill",
		Method:      http.MethodGet,
		Path:        "/v1/bills/{billID}",
		Summary:     "Get a bill",
		Tags:        []string{"Bills"},
	}, h.handle)
}

func (h *GetBillHandler) handle(ctx context.Context, input *BillPathInput) (*BillOutput, error) {
	userID, billID, err := parsePath(input.UserID, input.BillID)
	if err != nil {
		return nil, err
	}
	b, err := h.BillService.GetBill(ctx, userID, billID)
	if err != nil {
		return nil, handlers.Error(err, "failed to get bill")
	}
	return &BillOutput{Body: toResponse(b)}, nil
}
