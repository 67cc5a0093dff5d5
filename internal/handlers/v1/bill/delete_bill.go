package bill

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/budget-engine/internal/handlers"
)

type billDeleter interface {
	DeleteBill(ctx context.Context, userID, id uuid.UUID) error
}

// DeleteBillHandler handles DELETE /v1/bills/{billID}. Existing payments
// of the bill are kept.
type DeleteBillHandler struct {
	BillService billDeleter
}

func NewDeleteBillHandler(svc billDeleter) *DeleteBillHandler {
	return &DeleteBillHandler{BillService: svc}
}

func (h *DeleteBillHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID:   "delete-bill",
		Method:        http.MethodDelete,
		Path:          "/v1/bills/{billID}",
		Summary:       "Delete a bill",
		Tags:          []string{"Bills"},
		DefaultStatus: http.StatusNoContent,
	}, h.handle)
}

func (h *DeleteBillHandler) handle(ctx context.Context, input *BillPathInput) (*struct{}, error) {
	userID, billID, err := parsePath(input.UserID, input.BillID)
	if err != nil {
		return nil, err
	}
	if err := h.BillService.DeleteBill(ctx, userID, billID); err != nil {
		return nil, handlers.Error(err, "failed to delete bill")
	}
	return nil, nil
}
