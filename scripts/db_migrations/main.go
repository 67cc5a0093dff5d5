package main

import (
	"context"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/carson-networks/budget-engine/internal/config"
	"github.com/carson-networks/budget-engine/internal/logging"
	"github.com/carson-networks/budget-engine/internal/storage"
)

func main() {
	env, err := config.ProcessEnvironmentVariables()
	if err != nil {
		logrus.WithError(err).Fatal("ProcessEnvironmentVariables")
		return
	}

	log := logging.SetupLoggingWithLevel(env.LogLevel)

	store, err := storage.NewPostgres(context.Background(), env)
	if err != nil {
		log.WithError(err).Fatal("storage.NewPostgres")
		return
	}
	defer store.Close()

	source := storage.DefaultMigrationsURL
	if len(os.Args) > 1 {
		source = os.Args[1]
	}

	if _, _, err := storage.Migrate(store.DB(), source, log); err != nil {
		log.WithError(err).Fatal("storage.Migrate")
	}
}
