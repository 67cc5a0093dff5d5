package bill

import (
	"context"
	"net/http"

	"github.com/aarondl/opt/omit"
	"github.com/aarondl/opt/omitnull"
	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/budget-engine/internal/billing"
	"github.com/carson-networks/budget-engine/internal/handlers"
	"github.com/carson-networks/budget-engine/internal/logging"
	"github.com/carson-networks/budget-engine/internal/storage/bill"
)

// UpdateBillBody lists the fields to change. Absent fields are kept.
type UpdateBillBody struct {
	Name        *string `json:"name,omitempty" minLength:"1" doc:"New bill name"`
	Amount      *string `json:"amount,omitempty" doc:"New decimal amount"`
	DueType     *string `json:"dueType,omitempty" enum:"Fixed,EndOfMonth" doc:"New due type"`
	DayDue      *int    `json:"dayDue,omitempty" minimum:"1" maximum:"31" doc:"New day of month"`
	ClearDayDue bool    `json:"clearDayDue,omitempty" doc:"Remove the stored day of month"`
	IsAutoPay   *bool   `json:"isAutoPay,omitempty" doc:"New auto-pay setting"`
}

// UpdateBillInput is the Huma input for updating a bill.
type UpdateBillInput struct {
	UserID string `header:"X-User-ID" required:"true" doc:"Caller user UUID"`
	BillID string `path:"billID" doc:"Bill UUID"`
	Body   UpdateBillBody
}

type billUpdater interface {
	UpdateBill(ctx context.Context, userID, id uuid.UUID, update bill.BillUpdate) (*bill.Bill, error)
}

// UpdateBillHandler handles PATCH /v1/bills/{billID}.
type UpdateBillHandler struct {
	BillService billUpdater
}

func NewUpdateBillHandler(svc billUpdater) *UpdateBillHandler {
	return &UpdateBillHandler{BillService: svc}
}

func (h *UpdateBillHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "update-bill",
		Method:      http.MethodPatch,
		Path:        "/v1/bills/{billID}",
		Summary:     "Update a bill",
		Description: "Changes only the fields present in the body.",
		Tags:        []string{"Bills"},
	}, h.handle)
}

func parseUpdateBillBody(body UpdateBillBody) (bill.BillUpdate, error) {
	var update bill.BillUpdate

	if body.DayDue != nil && body.ClearDayDue {
		return update, huma.NewError(http.StatusBadRequest, "dayDue and clearDayDue are mutually exclusive")
	}
	if body.Name != nil {
		update.Name = omit.From(*body.Name)
	}
	if body.Amount != nil {
		amount, err := decimal.NewFromString(*body.Amount)
		if err != nil {
			return update, huma.NewError(http.StatusBadRequest, "invalid amount", err)
		}
		update.Amount = omit.From(amount)
	}
	if body.DueType != nil {
		dueType, err := billing.ParseDueType(*body.DueType)
		if err != nil {
			return update, huma.NewError(http.StatusBadRequest, "invalid dueType", err)
		}
		update.DueType = omit.From(dueType)
	}
	if body.DayDue != nil {
		update.DayDue = omitnull.From(*body.DayDue)
	}
	if body.ClearDayDue {
		update.DayDue = omitnull.FromPtr[int](nil)
	}
	if body.IsAutoPay != nil {
		update.IsAutoPay = omit.From(*body.IsAutoPay)
	}
	return update, nil
}

func (h *UpdateBillHandler) handle(ctx context.Context, input *UpdateBillInput) (*BillOutput, error) {
	logData := logging.GetLogData(ctx)

	userID, billID, err := parsePath(input.UserID, input.BillID)
	if err != nil {
		return nil, err
	}
	update, err := parseUpdateBillBody(input.Body)
	if err != nil {
		return nil, err
	}

	var stopTimer func()
	if logData != nil {
		stopTimer = logData.AddTiming("updateBillMs")
		logData.AddData("billID", billID.String())
	}
	updated, err := h.BillService.UpdateBill(ctx, userID, billID, update)
	if stopTimer != nil {
		stopTimer()
	}
	if err != nil {
		return nil, handlers.Error(err, "failed to update bill")
	}
	return &BillOutput{Body: toResponse(updated)}, nil
}
