package main

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/angelmondragon/tableorder/api/controllers"
	"github.com/angelmondragon/tableorder/internal/cron"
	"github.com/angelmondragon/tableorder/internal/history"
	"github.com/angelmondragon/tableorder/pkg/config"
	"github.com/angelmondragon/tableorder/pkg/db"
	"github.com/angelmondragon/tableorder/pkg/logger"
	"github.com/angelmondragon/tableorder/pkg/metrics"
	"github.com/angelmondragon/tableorder/pkg/migrate"
	"github.com/angelmondragon/tableorder/pkg/redis"
)

type historyBackend struct {
	storage     history.Storage
	pinger      controllers.Pinger
	maintenance *cron.Service
	closers     []func() error
}

// openHistory picks the storage for the session history list. The sql driver
// also gets a retention sweep, locked through redis when one is configured so
// kiosks sharing a database take turns.
func openHistory(ctx context.Context, cfg *config.Config, logg *logger.Logger, reg prometheus.Registerer, sessionID string) (*historyBackend, error) {
	ctx = logg.WithField(ctx, "history_driver", cfg.History.Driver)

	switch cfg.History.Driver {
	case config.HistoryDriverRedis:
		client, err := redis.New(ctx, cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("bootstrap redis: %w", err)
		}
		logg.Info(ctx, "history stored in redis")
		return &historyBackend{
			storage: history.NewRedisStorage(client, sessionID, cfg.History.SessionTTL),
			pinger:  client,
			closers: []func() error{client.Close},
		}, nil

	case config.HistoryDriverSQL:
		backend := &historyBackend{}
		client, err := db.New(ctx, cfg.DB, logg)
		if err != nil {
			return nil, fmt.Errorf("bootstrap database: %w", err)
		}
		backend.closers = append(backend.closers, client.Close)
		if err := migrate.Apply(ctx, logg, client); err != nil {
			return nil, multierr.Append(fmt.Errorf("migrate history schema: %w", err), backend.Close())
		}
		storage := history.NewSQLStorage(client, sessionID, cfg.History.SessionTTL)
		backend.storage = storage
		backend.pinger = client

		var lock cron.Lock
		if cfg.Redis.URL != "" || cfg.Redis.Address != "" {
			redisClient, err := redis.New(ctx, cfg.Redis)
			if err != nil {
				return nil, multierr.Append(fmt.Errorf("bootstrap redis lock: %w", err), backend.Close())
			}
			backend.closers = append(backend.closers, redisClient.Close)
			lock, err = cron.NewRedisLock(redisClient, redisClient.LockKey(cron.HistoryRetentionJobName), 0)
			if err != nil {
				return nil, multierr.Append(err, backend.Close())
			}
		}

		job, err := cron.NewHistoryRetentionJob(logg, storage)
		if err != nil {
			return nil, multierr.Append(err, backend.Close())
		}
		backend.maintenance, err = cron.NewService(cron.ServiceParams{
			Logger:   logg,
			Registry: cron.NewRegistry(job),
			Lock:     lock,
			Metrics:  metrics.NewJobMetrics(reg),
			Interval: cfg.History.RetentionInterval,
		})
		if err != nil {
			return nil, multierr.Append(err, backend.Close())
		}
		logg.Info(ctx, "history stored in database")
		return backend, nil
	}

	logg.Info(ctx, "history kept in memory for this process")
	return &historyBackend{storage: history.NewMemoryStorage()}, nil
}

// Close releases every client opened for the history backend.
func (h *historyBackend) Close() error {
	if h == nil {
		return nil
	}
	var err error
	for i := len(h.closers) - 1; i >= 0; i-- {
		err = multierr.Append(err, h.closers[i]())
	}
	h.closers = nil
	return err
}
