package export

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carson-networks/budget-engine/internal/classify"
	"github.com/carson-networks/budget-engine/internal/period"
	"github.com/carson-networks/budget-engine/internal/storage/memstore"
	"github.com/carson-networks/budget-engine/internal/storage/summary"
)

func TestNewDocument_KeepsExactAmounts(t *testing.T) {
	user := uuid.Must(uuid.NewV4())
	start := time.Date(2024, 3, 1, 5, 0, 0, 0, time.UTC)
	s := &summary.Summary{
		UserID:      user,
		Period:      period.Month,
		BucketStart: start,
		BucketEnd:   time.Date(2024, 4, 1, 4, 0, 0, 0, time.UTC),
		Currency:    "USD",
		Totals: classify.Deltas{
			CCPurchases:      decimal.RequireFromString("1234567.89"),
			CCPrincipalDelta: decimal.RequireFromString("-0.10"),
		},
	}

	data, err := json.Marshal(NewDocument(s))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"cc_purchases":1234567.89`)
	assert.Contains(t, string(data), `"cc_principal_delta":-0.1`)
	assert.Contains(t, string(data), `"period":"month"`)
	assert.Equal(t, fmt.Sprintf("%s/month/2024-03-01T05:00:00Z", user), DocumentID(s))
}

// fakeElasticsearch answers bulk requests with one success per action line.
func fakeElasticsearch(t *testing.T) (*httptest.Server, *[]string) {
	var mu sync.Mutex
	var ids []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		if !strings.HasSuffix(r.URL.Path, "/_bulk") {
			_, _ = io.WriteString(w, `{}`)
			return
		}

		var items []string
		scanner := bufio.NewScanner(r.Body)
		scanner.Buffer(make([]byte, 1<<20), 1<<20)
		line := 0
		for scanner.Scan() {
			if line%2 == 0 {
				var meta map[string]map[string]string
				require.NoError(t, json.Unmarshal(scanner.Bytes(), &meta))
				id := meta["index"]["_id"]
				mu.Lock()
				ids = append(ids, id)
				mu.Unlock()
				items = append(items, fmt.Sprintf(`{"index":{"_id":%q,"status":201}}`, id))
			}
			line++
		}
		_, _ = fmt.Fprintf(w, `{"took":1,"errors":false,"items":[%s]}`, strings.Join(items, ","))
	}))
	t.Cleanup(server.Close)
	return server, &ids
}

func TestExport_IndexesEverySummary(t *testing.T) {
	ctx := context.Background()
	server, ids := fakeElasticsearch(t)
	log := logrus.New()
	log.SetOutput(io.Discard)

	store := memstore.New()
	user := uuid.Must(uuid.NewV4())
	w, err := store.Write(ctx)
	require.NoError(t, err)
	for day := 1; day <= 3; day++ {
		start := time.Date(2024, 3, day, 5, 0, 0, 0, time.UTC)
		key := summary.Key{UserID: user, Period: period.Day, BucketStart: start}
		require.NoError(t, w.Summaries.Add(ctx, key, start.Add(24*time.Hour),
			classify.Deltas{CashSpending: decimal.NewFromInt(int64(day))}, "USD"))
	}
	require.NoError(t, w.Commit(ctx))

	exporter, err := NewExporter([]string{server.URL}, "", log)
	require.NoError(t, err)
	stats, err := exporter.Export(ctx, store.Read().Summaries)
	require.NoError(t, err)

	assert.Equal(t, uint64(3), stats.Indexed)
	assert.Equal(t, uint64(0), stats.Failed)
	assert.Len(t, *ids, 3)
}
