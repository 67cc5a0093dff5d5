package summary

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/budget-engine/internal/handlers"
	"github.com/carson-networks/budget-engine/internal/logging"
	"github.com/carson-networks/budget-engine/internal/period"
	"github.com/carson-networks/budget-engine/internal/service"
	"github.com/carson-networks/budget-engine/internal/storage/summary"
)

// ListSummariesInput is the Huma input for listing summaries.
type ListSummariesInput struct {
	UserID string `header:"X-User-ID" required:"true" doc:"Caller user UUID"`
	Period string `path:"period" enum:"day,week,month" doc:"Bucket granularity"`
	Before string `query:"before" doc:"RFC3339 bucket start from a previous nextCursor"`
	Limit  int    `query:"limit" minimum:"0" maximum:"100" doc:"Page size, default 20"`
}

type ListSummariesCursor struct {
	Before string `json:"before" doc:"Pass as the before query parameter"`
	Limit  int    `json:"limit" doc:"Page size"`
}

type ListSummariesResponseBody struct {
	Summaries  []Summary            `json:"summaries" doc:"Buckets, newest first"`
	NextCursor *ListSummariesCursor `json:"nextCursor,omitempty" doc:"Cursor to fetch older buckets, absent on the last page"`
}

type ListSummariesOutput struct {
	Body ListSummariesResponseBody
}

type summaryLister interface {
	ListByPeriod(ctx context.Context, userID uuid.UUID, g period.Granularity, cursor *service.SummaryCursor) ([]*summary.Summary, *service.SummaryCursor, error)
}

// ListSummariesHandler handles GET /v1/summaries/{period}.
type ListSummariesHandler struct {
	SummaryService summaryLister
}

func NewListSummariesHandler(svc summaryLister) *ListSummariesHandler {
	return &ListSummariesHandler{SummaryService: svc}
}

func (h *ListSummariesHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "list-summaries",
		Method:      http.MethodGet,
		Path:        "/v1/summaries/{period}",
		Summary:     "List period summaries",
		Description: "Returns cash and credit rollups for one granularity, newest bucket first.",
		Tags:        []string{"Summaries"},
	}, h.handle)
}

func parseListSummariesInput(input *ListSummariesInput) (uuid.UUID, period.Granularity, *service.SummaryCursor, error) {
	userID, err := handlers.ParseUserID(input.UserID)
	if err != nil {
		return uuid.Nil, "", nil, err
	}
	g, err := period.Parse(input.Period)
	if err != nil {
		return uuid.Nil, "", nil, huma.NewError(http.StatusBadRequest, "invalid period", err)
	}
	if input.Before == "" {
		if input.Limit > 0 {
			return userID, g, &service.SummaryCursor{Limit: input.Limit}, nil
		}
		return userID, g, nil, nil
	}
	before, err := time.Parse(time.RFC3339, input.Before)
	if err != nil {
		return uuid.Nil, "", nil, huma.NewError(http.StatusBadRequest, "invalid before", err)
	}
	return userID, g, &service.SummaryCursor{Before: before, Limit: input.Limit}, nil
}

func (h *ListSummariesHandler) handle(ctx context.Context, input *ListSummariesInput) (*ListSummariesOutput, error) {
	logData := logging.GetLogData(ctx)

	userID, g, cursor, err := parseListSummariesInput(input)
	if err != nil {
		return nil, err
	}

	var stopTimer func()
	if logData != nil {
		stopTimer = logData.AddTiming("listSummariesMs")
	}
	rows, next, err := h.SummaryService.ListByPeriod(ctx, userID, g, cursor)
	if stopTimer != nil {
		stopTimer()
	}
	if err != nil {
		return nil, handlers.Error(err, "failed to list summaries")
	}

	resp := ListSummariesResponseBody{Summaries: make([]Summary, len(rows))}
	for i, s := range rows {
		resp.Summaries[i] = toResponse(s)
	}
	if next != nil {
		resp.NextCursor = &ListSummariesCursor{Before: next.Before.Format(time.RFC3339), Limit: next.Limit}
	}
	return &ListSummariesOutput{Body: resp}, nil
}
