package main

import (
	"flag"
	"os"

	"github.com/md-rashed-zaman/barberbook/libs/config"
	"github.com/md-rashed-zaman/barberbook/libs/db"
	"github.com/md-rashed-zaman/barberbook/libs/runtime"
	"github.com/md-rashed-zaman/barberbook/services/booking-service/migrations"
)

// booking-migrate applies the embedded schema migrations.
// Usage: booking-migrate [-force N]
func main() {
	force := flag.Int("force", -1, "mark the schema as being at this version without running migrations")
	flag.Parse()

	_ = config.LoadDotEnv()
	logger := runtime.NewLogger("booking-migrate", config.String("LOG_LEVEL", "info"))

	databaseURL, err := config.RequiredString("DATABASE_URL")
	if err != nil {
		logger.Error("missing configuration", "err", err)
		os.Exit(1)
	}

	if *force >= 0 {
		if err := db.ForceVersion(databaseURL, migrations.FS, *force); err != nil {
			logger.Error("force version failed", "err", err)
			os.Exit(1)
		}
		logger.Info("forced schema version", "version", *force)
		return
	}

	version, err := db.Migrate(databaseURL, migrations.FS)
	if err != nil {
		logger.Error("migrate failed", "err", err)
		os.Exit(1)
	}
	logger.Info("migrations complete", "version", version)
}
