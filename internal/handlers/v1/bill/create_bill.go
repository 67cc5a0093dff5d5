package bill

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/budget-engine/internal/billing"
	"github.com/carson-networks/budget-engine/internal/handlers"
	"github.com/carson-networks/budget-engine/internal/logging"
	"github.com/carson-networks/budget-engine/internal/storage/bill"
)

// CreateBillBody is the request body for creating a bill.
type CreateBillBody struct {
	Name      string `json:"name" minLength:"1" doc:"Bill name"`
	Amount    string `json:"amount" doc:"Decimal amount due, greater than zero"`
	DueType   string `json:"dueType" enum:"Fixed,EndOfMonth" doc:"Fixed day of month or last day of month"`
	DayDue    *int   `json:"dayDue,omitempty" minimum:"1" maximum:"31" doc:"Day of month, required for Fixed bills"`
	IsAutoPay bool   `json:"isAutoPay,omitempty" doc:"Settle payments automatically on the due date"`
}

// CreateBillInput is the Huma input for creating a bill.
type CreateBillInput struct {
	UserID string `header:"X-User-ID" required:"true" doc:"Caller user UUID"`
	Body   CreateBillBody
}

// CreateBillResponse is the response body for creating a bill.
type CreateBillResponse struct {
	ID string `json:"id" doc:"Created bill UUID"`
}

// CreateBillOutput is the Huma output for creating a bill.
type CreateBillOutput struct {
	Status int
	Body   CreateBillResponse
}

type billCreator interface {
	CreateBill(ctx context.Context, create bill.BillCreate) (uuid.UUID, error)
}

// CreateBillHandler handles POST /v1/bills.
type CreateBillHandler struct {
	BillService billCreator
}

func NewCreateBillHandler(svc billCreator) *CreateBillHandler {
	return &CreateBillHandler{BillService: svc}
}

// Register registers the create bill endpoint with the Huma API.
func (h *CreateBillHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-bill",
		Method:        http.MethodPost,
		Path:          "/v1/bills",
		Summary:       "Create a bill",
		Description:   "Creates a recurring bill. Payments for it are scheduled by the next reconciler run.",
		Tags:          []string{"Bills"},
		DefaultStatus: http.StatusCreated,
	}, h.handle)
}

func parseCreateBillInput(input *CreateBillInput) (bill.BillCreate, error) {
	userID, err := handlers.ParseUserID(input.UserID)
	if err != nil {
		return bill.BillCreate{}, err
	}
	amount, err := decimal.NewFromString(input.Body.Amount)
	if err != nil {
		return bill.BillCreate{}, huma.NewError(http.StatusBadRequest, "invalid amount", err)
	}
	dueType, err := billing.ParseDueType(input.Body.DueType)
	if err != nil {
		return bill.BillCreate{}, huma.NewError(http.StatusBadRequest, "invalid dueType", err)
	}
	return bill.BillCreate{
		UserID:    userID,
		Name:      input.Body.Name,
		Amount:    amount,
		DueType:   dueType,
		DayDue:    input.Body.DayDue,
		IsAutoPay: input.Body.IsAutoPay,
	}, nil
}

func (h *CreateBillHandler) handle(ctx context.Context, input *CreateBillInput) (*CreateBillOutput, error) {
	logData := logging.GetLogData(ctx)

	create, err := parseCreateBillInput(input)
	if err != nil {
		return nil, err
	}

	var stopTimer func()
	if logData != nil {
		stopTimer = logData.AddTiming("createBillMs")
	}
	id, err := h.BillService.CreateBill(ctx, create)
	if stopTimer != nil {
		stopTimer()
	}
	if err != nil {
		return nil, handlers.Error(err, "failed to create bill")
	}

	if logData != nil {
		logData.AddData("billID", id.String())
	}

	return &CreateBillOutput{
		Status: http.StatusCreated,
		Body:   CreateBillResponse{ID: id.String()},
	}, nil
}
