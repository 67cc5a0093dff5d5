// Package export copies summary rows into Elasticsearch for dashboards.
package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esutil"
	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/carson-networks/budget-engine/internal/backfill"
	"github.com/carson-networks/budget-engine/internal/storage/summary"
)

const (
	DefaultIndex = "budget-summaries"
	flushBytes   = 1 << 20
)

// Document is one summary as indexed. Amounts are emitted as raw JSON
// numbers so no precision is lost on the way out.
type Document struct {
	UserID                   string      `json:"user_id"`
	Period                   string      `json:"period"`
	BucketStart              time.Time   `json:"bucket_start"`
	BucketEnd                time.Time   `json:"bucket_end"`
	Currency                 string      `json:"currency"`
	CashIncomeExternal       json.Number `json:"cash_income_external"`
	CashSpending             json.Number `json:"cash_spending"`
	CashSavingsContributions json.Number `json:"cash_savings_contributions"`
	CCPurchases              json.Number `json:"cc_purchases"`
	CCPayments               json.Number `json:"cc_payments"`
	CCInterestFees           json.Number `json:"cc_interest_fees"`
	CCRefunds                json.Number `json:"cc_refunds"`
	CCPrincipalDelta         json.Number `json:"cc_principal_delta"`
	UpdatedAt                time.Time   `json:"updated_at"`
}

func number(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}

func NewDocument(s *summary.Summary) Document {
	return Document{
		UserID:                   s.UserID.String(),
		Period:                   string(s.Period),
		BucketStart:              s.BucketStart.UTC(),
		BucketEnd:                s.BucketEnd.UTC(),
		Currency:                 s.Currency,
		CashIncomeExternal:       number(s.Totals.CashIncomeExternal),
		CashSpending:             number(s.Totals.CashSpending),
		CashSavingsContributions: number(s.Totals.CashSavingsContributions),
		CCPurchases:              number(s.Totals.CCPurchases),
		CCPayments:               number(s.Totals.CCPayments),
		CCInterestFees:           number(s.Totals.CCInterestFees),
		CCRefunds:                number(s.Totals.CCRefunds),
		CCPrincipalDelta:         number(s.Totals.CCPrincipalDelta),
		UpdatedAt:                s.UpdatedAt.UTC(),
	}
}

// DocumentID is stable per summary key, so re-exporting overwrites.
func DocumentID(s *summary.Summary) string {
	return fmt.Sprintf("%s/%s/%s", s.UserID, s.Period, s.BucketStart.UTC().Format(time.RFC3339))
}

type Exporter struct {
	client *elasticsearch.Client
	index  string
	log    *logrus.Logger
}

type Stats struct {
	Indexed uint64
	Failed  uint64
}

func NewExporter(addresses []string, index string, log *logrus.Logger) (*Exporter, error) {
	if index == "" {
		index = DefaultIndex
	}
	retryBackoff := backoff.NewExponentialBackOff()

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses:     addresses,
		RetryOnStatus: []int{http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout, http.StatusTooManyRequests},
		RetryBackoff: func(attempt int) time.Duration {
			if attempt == 1 {
				retryBackoff.Reset()
			}
			return retryBackoff.NextBackOff()
		},
		MaxRetries: 5,
	})
	if err != nil {
		return nil, err
	}
	return &Exporter{client: client, index: index, log: log}, nil
}

// Export indexes every summary row the reader can see.
func (e *Exporter) Export(ctx context.Context, summaries summary.IReader) (Stats, error) {
	var failed atomic.Uint64

	bi, err := esutil.NewBulkIndexer(esutil.BulkIndexerConfig{
		Index:         e.index,
		Client:        e.client,
		NumWorkers:    2,
		FlushBytes:    flushBytes,
		FlushInterval: 5 * time.Second,
	})
	if err != nil {
		return Stats{}, err
	}

	_, runErr := backfill.Run(ctx, e.log, backfill.Job[*summary.Summary, uuid.UUID]{
		Name:   "export-summaries",
		Fetch:  summaries.Scan,
		Cursor: func(s *summary.Summary) uuid.UUID { return s.ID },
		Apply: func(ctx context.Context, s *summary.Summary) error {
			body, err := json.Marshal(NewDocument(s))
			if err != nil {
				return err
			}
			return bi.Add(ctx, esutil.BulkIndexerItem{
				Action:     "index",
				DocumentID: DocumentID(s),
				Body:       bytes.NewReader(body),
				OnFailure: func(ctx context.Context, item esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem, err error) {
					failed.Add(1)
					entry := e.log.WithField("documentID", item.DocumentID)
					if err != nil {
						entry.WithError(err).Error("Exporter.Index.Failed")
						return
					}
					entry.WithFields(logrus.Fields{
						"type":   res.Error.Type,
						"reason": res.Error.Reason,
					}).Error("Exporter.Index.Failed")
				},
			})
		},
		PageSize: 500,
	})

	closeErr := bi.Close(ctx)
	biStats := bi.Stats()
	stats := Stats{Indexed: biStats.NumFlushed, Failed: failed.Load()}

	if runErr != nil {
		return stats, runErr
	}
	if closeErr != nil {
		return stats, closeErr
	}
	if stats.Failed > 0 {
		return stats, fmt.Errorf("failed indexing %d summaries", stats.Failed)
	}

	e.log.WithFields(logrus.Fields{
		"index":   e.index,
		"indexed": stats.Indexed,
	}).Info("Exporter.Export.Complete")
	return stats, nil
}
