package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"
	"github.com/sirupsen/logrus"

	"github.com/carson-networks/budget-engine/internal/handlers/v1/account"
	"github.com/carson-networks/budget-engine/internal/handlers/v1/bill"
	"github.com/carson-networks/budget-engine/internal/handlers/v1/item"
	"github.com/carson-networks/budget-engine/internal/handlers/v1/payment"
	"github.com/carson-networks/budget-engine/internal/handlers/v1/status"
	"github.com/carson-networks/budget-engine/internal/handlers/v1/summary"
	"github.com/carson-networks/budget-engine/internal/handlers/v1/transaction"
	"github.com/carson-networks/budget-engine/internal/logging"
	"github.com/carson-networks/budget-engine/internal/service"
)

type Rest struct {
	Logger  *logrus.Logger
	Port    string
	Service *service.Service
	Store   status.Pinger
}

type registerer interface {
	Register(api huma.API)
}

// Routes builds the full mux. Split from Serve so tests can drive it
// without a listener.
func (r *Rest) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	statusHandler := status.NewHandler(r.Store)
	mux.HandleFunc("/status", logging.LoggingWrapper("Status", r.Logger, statusHandler.Handler))

	api := humago.New(mux, huma.DefaultConfig("Budget Engine API", "1.0.0"))
	api.UseMiddleware(logging.HumaMiddleware(r.Logger))

	svc := r.Service
	for _, h := range []registerer{
		bill.NewCreateBillHandler(svc.Bills),
		bill.NewListBillsHandler(svc.Bills),
		bill.NewGetBillHandler(svc.Bills),
		bill.NewUpdateBillHandler(svc.Bills),
		bill.NewDeleteBillHandler(svc.Bills),
		payment.NewListPaymentsHandler(svc.Payments),
		payment.NewSetPaidHandler(svc.Payments),
		summary.NewListSummariesHandler(svc.Summaries),
		summary.NewListCategoriesHandler(svc.Summaries),
		transaction.NewListTransactionsHandler(svc.Transactions),
		account.NewListAccountsHandler(svc.Accounts),
		item.NewListItemsHandler(svc.Items),
		item.NewSyncItemHandler(svc.Items),
	} {
		h.Register(api)
	}

	return mux
}

// Serve blocks until ctx is cancelled, then drains in-flight requests.
func (r *Rest) Serve(ctx context.Context) {
	server := http.Server{
		Addr:              ":" + r.Port,
		Handler:           r.Routes(),
		ReadTimeout:       time.Duration(30) * time.Second,
		WriteTimeout:      time.Duration(30) * time.Second,
		IdleTimeout:       time.Duration(10) * time.Second,
		ReadHeaderTimeout: time.Duration(10) * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			r.Logger.WithError(err).Error("HttpServer.Serve.shutdown error")
		}
	}()

	r.Logger.Info("HttpServer.Serve.listening")
	err := server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		r.Logger.WithError(err).Error("HttpServer.Serve.listen error")
	}
	r.Logger.Info("HttpServer.Serve.shutting down")
}
