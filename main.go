package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/alecthomas/kong"
	"github.com/gofrs/uuid/v5"
	"github.com/sirupsen/logrus"

	"github.com/carson-networks/budget-engine/api"
	"github.com/carson-networks/budget-engine/internal/aggregate"
	"github.com/carson-networks/budget-engine/internal/backfill"
	"github.com/carson-networks/budget-engine/internal/config"
	"github.com/carson-networks/budget-engine/internal/crypto"
	"github.com/carson-networks/budget-engine/internal/export"
	"github.com/carson-networks/budget-engine/internal/logging"
	"github.com/carson-networks/budget-engine/internal/operator"
	"github.com/carson-networks/budget-engine/internal/period"
	"github.com/carson-networks/budget-engine/internal/provider"
	"github.com/carson-networks/budget-engine/internal/scheduler"
	"github.com/carson-networks/budget-engine/internal/service"
	"github.com/carson-networks/budget-engine/internal/storage"
	"github.com/carson-networks/budget-engine/internal/txsync"
)

var cli struct {
	Serve     serveCmd     `cmd:"" help:"Run the HTTP API."`
	Sync      syncCmd      `cmd:"" help:"Pull new transactions from the provider."`
	Reconcile reconcileCmd `cmd:"" help:"Create and settle bill payments."`
	Rebuild   rebuildCmd   `cmd:"" help:"Recompute summaries from stored transactions."`
	AddItem   addItemCmd   `cmd:"" name:"add-item" help:"Register a linked provider item."`
	Export    exportCmd    `cmd:"" help:"Bulk index every summary into Elasticsearch."`
}

// app is everything a command needs, built once from the environment.
type app struct {
	env      *config.Config
	log      *logrus.Logger
	store    *storage.Postgres
	operator *operator.OperatorDelegator
	indexer  *period.Indexer
	driver   *txsync.Driver
	service  *service.Service
}

func newApp(ctx context.Context) (*app, error) {
	env, err := config.ProcessEnvironmentVariables()
	if err != nil {
		return nil, fmt.Errorf("config.ProcessEnvironmentVariables: %w", err)
	}
	log := logging.SetupLoggingWithLevel(env.LogLevel)

	store, err := storage.NewPostgres(ctx, env)
	if err != nil {
		return nil, err
	}

	sealer, err := crypto.NewSealer(env.TokenEncryptionKey, env.TokenSigningKey)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("crypto.NewSealer: %w", err)
	}

	plaid, err := provider.NewPlaid(provider.PlaidConfig{
		ClientID: env.PlaidClientID,
		Secret:   env.PlaidSecret,
		Env:      env.PlaidEnv,
	}, log)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("provider.NewPlaid: %w", err)
	}

	op := operator.NewOperatorDelegator(store, env.OperatorWorkers, log)
	op.Start()

	indexer := period.NewIndexer(env.Timezone)
	agg := aggregate.New(indexer, log)

	driver := txsync.NewDriver(store, op, plaid, sealer, agg, log)
	driver.MaxRetries = env.SyncMaxRetries
	driver.PageSize = env.SyncPageSize

	return &app{
		env:      env,
		log:      log,
		store:    store,
		operator: op,
		indexer:  indexer,
		driver:   driver,
		service:  service.NewService(store, op, agg, driver, sealer),
	}, nil
}

func (a *app) Close() {
	a.operator.Stop()
	_ = a.store.Close()
}

type serveCmd struct {
	ReconcileEvery time.Duration `name:"reconcile-every" default:"0s" help:"Run the bill reconciler on this interval. Zero disables it."`
}

func (c *serveCmd) Run(ctx context.Context, a *app) error {
	a.log.Info("budget-engine starting")

	wg := sync.WaitGroup{}
	if c.ReconcileEvery > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ticker := time.NewTicker(c.ReconcileEvery)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					if _, err := newReconciler(a).Run(ctx); err != nil {
						a.log.WithError(err).Error("Serve.Reconcile.Error")
					}
				}
			}
		}()
	}

	httpRest := api.Rest{
		Logger:  a.log,
		Port:    a.env.HTTPPort,
		Service: a.service,
		Store:   a.store,
	}
	httpRest.Serve(ctx)

	wg.Wait()
	return nil
}

type syncCmd struct {
	Item string `help:"Only sync this provider item ID."`
}

func (c *syncCmd) Run(ctx context.Context, a *app) error {
	if c.Item != "" {
		_, err := a.driver.SyncItem(ctx, c.Item)
		return err
	}
	report, err := a.driver.SyncAll(ctx)
	if err != nil {
		return err
	}
	if report.Failed > 0 {
		return fmt.Errorf("%d of %d items failed to sync", report.Failed, report.Items)
	}
	return nil
}

type reconcileCmd struct{}

func newReconciler(a *app) *scheduler.Reconciler {
	r := scheduler.NewReconciler(a.store, a.operator, a.indexer, a.log)
	r.HorizonDays = a.env.PaymentHorizonDays
	return r
}

func (c *reconcileCmd) Run(ctx context.Context, a *app) error {
	report, err := newReconciler(a).Run(ctx)
	if err != nil {
		return err
	}
	if report.Failed > 0 {
		return fmt.Errorf("%d of %d bills failed to reconcile", report.Failed, report.Bills)
	}
	return nil
}

type rebuildCmd struct {
	User        string `help:"Rebuild a single user." xor:"scope" required:""`
	All         bool   `help:"Rebuild every user with stored transactions." xor:"scope" required:""`
	PageSize    int    `name:"page-size" default:"500" help:"Transactions replayed per page."`
	Concurrency int    `default:"2" help:"Users rebuilt at once with --all."`
}

func (c *rebuildCmd) Run(ctx context.Context, a *app) error {
	if !c.All {
		userID, err := uuid.FromString(c.User)
		if err != nil {
			return fmt.Errorf("--user: %w", err)
		}
		_, err = a.service.Summaries.Rebuild(ctx, userID, c.PageSize)
		return err
	}

	stats, err := backfill.Run(ctx, a.log, backfill.Job[uuid.UUID, uuid.UUID]{
		Name: "rebuild-users",
		Fetch: func(ctx context.Context, after uuid.UUID, limit int) ([]uuid.UUID, error) {
			return a.store.Read().Transactions.ListUserIDs(ctx, after, limit)
		},
		Cursor: func(id uuid.UUID) uuid.UUID { return id },
		Apply: func(ctx context.Context, id uuid.UUID) error {
			_, err := a.service.Summaries.Rebuild(ctx, id, c.PageSize)
			return err
		},
		Concurrency:     c.Concurrency,
		ContinueOnError: true,
	})
	if err != nil {
		return err
	}
	if stats.Failed > 0 {
		return fmt.Errorf("%d of %d users failed to rebuild", stats.Failed, stats.Scanned)
	}
	return nil
}

type addItemCmd struct {
	User        string `required:"" help:"Owning user ID."`
	Item        string `required:"" help:"Provider item ID."`
	Token       string `required:"" env:"ITEM_ACCESS_TOKEN" help:"Provider access token. Stored sealed."`
	Institution string `help:"Institution display name."`
}

func (c *addItemCmd) Run(ctx context.Context, a *app) error {
	userID, err := uuid.FromString(c.User)
	if err != nil {
		return fmt.Errorf("--user: %w", err)
	}
	if err := a.service.Items.AddItem(ctx, userID, c.Item, c.Token, c.Institution); err != nil {
		return err
	}
	a.log.WithFields(logrus.Fields{"userID": userID, "itemID": c.Item}).Info("AddItem.Complete")
	return nil
}

type exportCmd struct {
	Index string `default:"budget-summaries" help:"Target index."`
}

func (c *exportCmd) Run(ctx context.Context, a *app) error {
	exporter, err := export.NewExporter([]string{a.env.ElasticsearchURL}, c.Index, a.log)
	if err != nil {
		return err
	}
	stats, err := exporter.Export(ctx, a.store.Read().Summaries)
	if err != nil {
		return err
	}
	if stats.Failed > 0 {
		return fmt.Errorf("%d summaries failed to index", stats.Failed)
	}
	return nil
}

func main() {
	kctx := kong.Parse(&cli,
		kong.Name("budget-engine"),
		kong.Description("Household finance aggregation engine."),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		logrus.WithError(err).Fatal("budget-engine setup")
		return
	}
	defer a.Close()

	kctx.BindTo(ctx, (*context.Context)(nil))
	err = kctx.Run(a)
	if err != nil {
		a.log.WithError(err).Errorf("Command.%v.Error", kctx.Command())
		a.Close()
		os.Exit(1)
	}
}
