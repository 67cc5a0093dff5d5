package status

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/carson-networks/budget-engine/internal/logging"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	Store   Pinger
	Timeout time.Duration
}

// NewHandler builds the status handler. A nil store is always healthy.
func NewHandler(store Pinger) Handler {
	return Handler{Store: store, Timeout: 2 * time.Second}
}

func (h *Handler) Handler(w http.ResponseWriter, req *http.Request, logData *logging.LogData) error {
	if req.Method != http.MethodGet {
		w.WriteHeader(http.StatusBadRequest)
		return errors.New("status: method not GET")
	}

	if h.Store != nil {
		ctx, cancel := context.WithTimeout(req.Context(), h.Timeout)
		defer cancel()

		endTimer := logData.AddTiming("pingMs")
		err := h.Store.Ping(ctx)
		endTimer()
		if err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			return fmt.Errorf("status: storage unreachable: %w", err)
		}
	}

	w.WriteHeader(http.StatusOK)
	return nil
}
