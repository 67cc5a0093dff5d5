package bill

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/budget-engine/internal/handlers"
	"github.com/carson-networks/budget-engine/internal/logging"
	"github.com/carson-networks/budget-engine/internal/service"
	"github.com/carson-networks/budget-engine/internal/storage/bill"
)

// ListBillsInput is the Huma input for listing bills.
type ListBillsInput struct {
	UserID   string `header:"X-User-ID" required:"true" doc:"Caller user UUID"`
	Position int    `query:"position" minimum:"0" doc:"Offset for pagination"`
	Limit    int    `query:"limit" minimum:"0" maximum:"100" doc:"Page size, default 20"`
}

// ListBillsCursor is the position of the next page.
type ListBillsCursor struct {
	Position int `json:"position" doc:"Offset for next page"`
	Limit    int `json:"limit" doc:"Page size"`
}

// ListBillsResponseBody is the response body for listing bills.
type ListBillsResponseBody struct {
	Bills      []Bill           `json:"bills" doc:"Page of bills ordered by name"`
	NextCursor *ListBillsCursor `json:"nextCursor,omitempty" doc:"Cursor to fetch the next page, absent on the last page"`
}

// ListBillsOutput is the Huma output for listing bills.
type ListBillsOutput struct {
	Body ListBillsResponseBody
}

type billLister interface {
	ListBills(ctx context.Context, userID uuid.UUID, cursor *service.BillCursor) ([]*bill.Bill, *service.BillCursor, error)
}

// ListBillsHandler handles GET /v1/bills.
type ListBillsHandler struct {
	BillService billLister
}

func NewListBillsHandler(svc billLister) *ListBillsHandler {
	return &ListBillsHandler{BillService: svc}
}

// Register registers the list bills endpoint with the Huma API.
func (h *ListBillsHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "list-bills",
		Method:      http.MethodGet,
		Path:        "/v1/bills",
		Summary:     "List bills",
		Description: "Returns a paginated list of the caller's bills.",
		Tags:        []string{"Bills"},
	}, h.handle)
}

func (h *ListBillsHandler) handle(ctx context.Context, input *ListBillsInput) (*ListBillsOutput, error) {
	logData := logging.GetLogData(ctx)

	userID, err := handlers.ParseUserID(input.UserID)
	if err != nil {
		return nil, err
	}

	var cursor *service.BillCursor
	if input.Position > 0 || input.Limit > 0 {
		cursor = &service.BillCursor{Position: input.Position, Limit: input.Limit}
	}

	var stopTimer func()
	if logData != nil {
		stopTimer = logData.AddTiming("listBillsMs")
	}
	bills, next, err := h.BillService.ListBills(ctx, userID, cursor)
	if stopTimer != nil {
		stopTimer()
	}
	if err != nil {
		return nil, handlers.Error(err, "failed to list bills")
	}

	if logData != nil {
		logData.AddData("billCount", len(bills))
	}

	resp := ListBillsResponseBody{Bills: make([]Bill, len(bills))}
	for i, b := range bills {
		resp.Bills[i] = toResponse(b)
	}
	if next != nil {
		resp.NextCursor = &ListBillsCursor{Position: next.Position, Limit: next.Limit}
	}

	return &ListBillsOutput{Body: resp}, nil
}
