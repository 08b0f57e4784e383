package app

import (
	"fmt"

	"github.com/carbontrack/internal/apiclient"
	"github.com/carbontrack/internal/chart"
	"github.com/carbontrack/internal/config"
	"github.com/carbontrack/internal/ledger"
	"github.com/carbontrack/internal/logging"
	"github.com/carbontrack/internal/session"
	"github.com/carbontrack/internal/storage"
)

// redisSessionPrefix namespaces session keys in a shared Redis
const redisSessionPrefix = "carbontrack:session:"

// Runtime is a controller plus the connections it holds open
type Runtime struct {
	Controller *Controller
	closers    []func()
}

// NewRuntime wires the session store, outbox and API client chosen by cfg
func NewRuntime(cfg *config.Config, renderer chart.Renderer, logger *logging.Logger) (*Runtime, error) {
	rt := &Runtime{}

	store, err := rt.sessionStore(cfg, logger)
	if err != nil {
		rt.Close()
		return nil, err
	}
	outbox, err := rt.outbox(cfg, logger)
	if err != nil {
		rt.Close()
		return nil, err
	}

	rt.Controller = New(Options{
		Config:   cfg,
		Backend:  apiclient.NewFromConfig(cfg.API, logger),
		Store:    store,
		Outbox:   outbox,
		Renderer: renderer,
		Logger:   logger,
	})
	rt.closers = append(rt.closers, rt.Controller.Close)
	return rt, nil
}

func (rt *Runtime) sessionStore(cfg *config.Config, logger *logging.Logger) (session.Store, error) {
	switch cfg.Session.Store {
	case "memory":
		return session.NewMemoryStore(), nil
	case "redis":
		cache, err := storage.NewRedisCache(&cfg.Database.Redis)
		if err != nil {
			return nil, fmt.Errorf("session store: %w", err)
		}
		rt.closers = append(rt.closers, func() {
			if err := cache.Close(); err != nil {
				logger.WithError(err).Warn("Failed to close Redis")
			}
		})
		return session.NewRedisStore(cache, redisSessionPrefix, cfg.Session.TTL), nil
	default:
		return session.NewFileStore(cfg.Session.FilePath), nil
	}
}

func (rt *Runtime) outbox(cfg *config.Config, logger *logging.Logger) (ledger.Outbox, error) {
	if cfg.Outbox.Store != "postgres" {
		return ledger.NewMemoryOutbox(), nil
	}
	db, err := storage.NewPostgresDB(&cfg.Database.Postgres)
	if err != nil {
		return nil, fmt.Errorf("outbox: %w", err)
	}
	rt.closers = append(rt.closers, db.Close)
	logger.Info("Using Postgres outbox")
	return storage.NewOutboxRepository(db), nil
}

// Close releases everything in reverse order of acquisition
func (rt *Runtime) Close() {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		rt.closers[i]()
	}
	rt.closers = nil
}
