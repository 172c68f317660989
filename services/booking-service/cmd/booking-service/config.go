package main

import (
	"fmt"
	"time"

	"github.com/md-rashed-zaman/barberbook/libs/config"
)

type serviceConfig struct {
	Name     string
	Port     string
	LogLevel string

	DatabaseURL string
	AutoMigrate bool
	DBMaxConns  int

	RedisURL     string
	SlotCacheTTL time.Duration

	KafkaBrokers []string
	OutboxPoll   time.Duration
	OutboxBatch  int

	StoreTimeout  time.Duration
	SessionTTL    time.Duration
	SweepInterval time.Duration

	BookingDates []string
	WindowDays   int
	Timezone     string

	CORSOrigins    []string
	RateLimit      int
	RateWindow     time.Duration
	RateFailOpen   bool
	RequestTimeout time.Duration
	MaxBodyBytes   int
}

func loadConfig() (serviceConfig, error) {
	cfg := serviceConfig{
		Name:         config.String("SERVICE_NAME", "booking-service"),
		LogLevel:     config.String("LOG_LEVEL", "info"),
		DatabaseURL:  config.String("DATABASE_URL", ""),
		RedisURL:     config.String("REDIS_URL", ""),
		KafkaBrokers: config.List("KAFKA_BROKERS"),
		BookingDates: config.List("BOOKING_DATES"),
		Timezone:     config.String("BOOKING_TIMEZONE", "America/Sao_Paulo"),
		CORSOrigins:  config.List("CORS_ALLOWED_ORIGINS"),
	}

	var err error
	if cfg.Port, err = config.Port("PORT", "8083"); err != nil {
		return cfg, err
	}
	if cfg.AutoMigrate, err = config.Bool("AUTO_MIGRATE", false); err != nil {
		return cfg, err
	}
	if cfg.DBMaxConns, err = config.Int("DB_MAX_CONNS", 10); err != nil {
		return cfg, err
	}
	if cfg.SlotCacheTTL, err = config.Duration("SLOT_CACHE_TTL", 30*time.Second); err != nil {
		return cfg, err
	}
	if cfg.OutboxPoll, err = config.Duration("OUTBOX_POLL_INTERVAL", 2*time.Second); err != nil {
		return cfg, err
	}
	if cfg.OutboxBatch, err = config.Int("OUTBOX_BATCH_SIZE", 50); err != nil {
		return cfg, err
	}
	if cfg.StoreTimeout, err = config.Duration("STORE_TIMEOUT", 5*time.Second); err != nil {
		return cfg, err
	}
	if cfg.SessionTTL, err = config.Duration("WIZARD_SESSION_TTL", 30*time.Minute); err != nil {
		return cfg, err
	}
	if cfg.SweepInterval, err = config.Duration("WIZARD_SWEEP_INTERVAL", time.Minute); err != nil {
		return cfg, err
	}
	if cfg.WindowDays, err = config.Int("BOOKING_WINDOW_DAYS", 4); err != nil {
		return cfg, err
	}
	if cfg.RateLimit, err = config.Int("BOOK_RATE_LIMIT", 60); err != nil {
		return cfg, err
	}
	if cfg.RateWindow, err = config.Duration("BOOK_RATE_WINDOW", time.Minute); err != nil {
		return cfg, err
	}
	if cfg.RateFailOpen, err = config.Bool("RATE_LIMIT_FAIL_OPEN", true); err != nil {
		return cfg, err
	}
	if cfg.RequestTimeout, err = config.Duration("REQUEST_TIMEOUT", 15*time.Second); err != nil {
		return cfg, err
	}
	if cfg.MaxBodyBytes, err = config.Int("MAX_BODY_BYTES", 64<<10); err != nil {
		return cfg, err
	}

	if cfg.WindowDays < 1 && len(cfg.BookingDates) == 0 {
		return cfg, fmt.Errorf("BOOKING_WINDOW_DAYS must be at least 1 (got %d)", cfg.WindowDays)
	}
	if cfg.AutoMigrate && cfg.DatabaseURL == "" {
		return cfg, fmt.Errorf("AUTO_MIGRATE requires DATABASE_URL")
	}
	return cfg, nil
}
