package summary

import (
	"context"
	"net/http"
	"time"

	"cloud.google.com/go/civil"
	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/budget-engine/internal/handlers"
	"github.com/carson-networks/budget-engine/internal/period"
	"github.com/carson-networks/budget-engine/internal/storage/summary"
)

type ListCategoriesInput struct {
	UserID string `header:"X-User-ID" required:"true" doc:"Caller user UUID"`
	Period string `path:"period" enum:"day,week,month" doc:"Bucket granularity"`
	Date   string `query:"date" required:"true" doc:"ISO date inside the bucket"`
}

type CategorySpend struct {
	Category string `json:"category" doc:"Provider primary category, or UNCATEGORIZED"`
	Amount   string `json:"amount" doc:"Decimal spending in the bucket"`
}

type ListCategoriesResponseBody struct {
	BucketStart string          `json:"bucketStart" doc:"RFC3339 start of the bucket"`
	BucketEnd   string          `json:"bucketEnd" doc:"RFC3339 end of the bucket"`
	Categories  []CategorySpend `json:"categories" doc:"Spending per category, largest first"`
}

type ListCategoriesOutput struct {
	Body ListCategoriesResponseBody
}

type categoryLister interface {
	ListCategories(ctx context.Context, userID uuid.UUID, g period.Granularity, date civil.Date) (period.Bucket, []summary.CategorySpend, error)
}

// ListCategoriesHandler handles GET /v1/summaries/{period}/categories.
type ListCategoriesHandler struct {
	SummaryService categoryLister
}

func NewListCategoriesHandler(svc categoryLister) *ListCategoriesHandler {
	return &ListCategoriesHandler{SummaryService: svc}
}

func (h *ListCategoriesHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "list-category-spending",
		Method:      http.MethodGet,
		Path:        "/v1/summaries/{period}/categories",
		Summary:     "Spending by category",
		Description: "Returns the category breakdown of the bucket containing date.",
		Tags:        []string{"Summaries"},
	}, h.handle)
}

func (h *ListCategoriesHandler) handle(ctx context.Context, input *ListCategoriesInput) (*ListCategoriesOutput, error) {
	userID, err := handlers.ParseUserID(input.UserID)
	if err != nil {
		return nil, err
	}
	g, err := period.Parse(input.Period)
	if err != nil {
		return nil, huma.NewError(http.StatusBadRequest, "invalid period", err)
	}
	date, err := civil.ParseDate(input.Date)
	if err != nil {
		return nil, huma.NewError(http.StatusBadRequest, "invalid date", err)
	}

	bucket, spend, err := h.SummaryService.ListCategories(ctx, userID, g, date)
	if err != nil {
		return nil, handlers.Error(err, "failed to list categories")
	}

	resp := ListCategoriesResponseBody{
		BucketStart: bucket.Start.Format(time.RFC3339),
		BucketEnd:   bucket.End.Format(time.RFC3339),
		Categories:  make([]CategorySpend, len(spend)),
	}
	for i, c := range spend {
		resp.Categories[i] = CategorySpend{Category: c.Category, Amount: c.Amount.String()}
	}
	return &ListCategoriesOutput{Body: resp}, nil
}
