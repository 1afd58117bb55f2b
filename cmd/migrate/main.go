// Migrate applies or rolls back embedded SQL migrations.
// Usage: migrate [up|down] (default up). Reads DATABASE_URL from env or .env.
package main

import (
	"os"

	"github.com/sirupsen/logrus"

	"medgate/backend/internal/config"
	"medgate/backend/internal/db/migrate"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("config")
	}

	direction := "up"
	if len(os.Args) > 1 {
		direction = os.Args[1]
	}

	if err := migrate.Run(cfg.DatabaseURL, direction); err != nil {
		logrus.WithError(err).Fatal("migrate")
	}
	logrus.WithField("direction", direction).Info("migrations applied")
}
