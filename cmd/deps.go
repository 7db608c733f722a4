package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/matheuskafuri/leadfinder/internal/ai"
	"github.com/matheuskafuri/leadfinder/internal/cache"
	"github.com/matheuskafuri/leadfinder/internal/config"
	"github.com/matheuskafuri/leadfinder/internal/finder"
	"github.com/matheuskafuri/leadfinder/internal/ledger"
	"github.com/matheuskafuri/leadfinder/internal/logging"
	"github.com/matheuskafuri/leadfinder/internal/pipeline"
	"github.com/matheuskafuri/leadfinder/internal/signal"
	"github.com/matheuskafuri/leadfinder/internal/source"
	"github.com/matheuskafuri/leadfinder/internal/store"
)

// deps holds everything a command needs. close releases the database and
// any remote cache connection.
type deps struct {
	cfg    *config.Config
	log    *zap.Logger
	db     *store.DB
	ledger *ledger.Ledger
	cache  *cache.ResultCache

	closers []func() error
}

func loadConfig() (*config.Config, error) {
	if err := config.LoadEnvFile(flagEnvFile); err != nil {
		return nil, err
	}
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	level := cfg.LogLevel
	if flagLogLevel != "" {
		level = flagLogLevel
	}
	if flagDebug && flagLogLevel == "" {
		level = "debug"
	}
	return logging.New(logging.Config{Level: level, Development: flagDebug})
}

func newDeps(ctx context.Context) (*deps, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}

	d := &deps{cfg: cfg, log: log}
	d.closers = append(d.closers, func() error {
		_ = log.Sync()
		return nil
	})

	db, err := store.Open(cfg.DatabasePath())
	if err != nil {
		d.close()
		return nil, fmt.Errorf("opening database: %w", err)
	}
	d.db = db
	d.closers = append(d.closers, db.Close)

	backend, err := d.cacheBackend(ctx)
	if err != nil {
		d.close()
		return nil, err
	}

	d.ledger = ledger.New(db, ledger.WithLogger(log.Named("ledger")))
	d.cache = cache.New(backend, cache.WithLogger(log.Named("cache")))
	return d, nil
}

func (d *deps) cacheBackend(ctx context.Context) (cache.Backend, error) {
	switch d.cfg.Cache.Backend {
	case "sqlite":
		return d.db.CacheBackend(), nil
	case "redis":
		rb, err := cache.DialRedis(ctx, d.cfg.Cache.RedisAddr, d.cfg.Cache.RedisPassword, d.cfg.Cache.RedisDB)
		if err != nil {
			return nil, fmt.Errorf("connecting to redis: %w", err)
		}
		d.closers = append(d.closers, rb.Close)
		return rb, nil
	default:
		return cache.NewMemoryBackend(), nil
	}
}

func (d *deps) finder() (*finder.Finder, error) {
	mode, err := signal.ParseMode(d.cfg.Scoring.Mode)
	if err != nil {
		return nil, err
	}

	opts := []pipeline.Option{pipeline.WithLogger(d.log.Named("pipeline"))}
	if d.cfg.AIEnabled() {
		s, err := ai.New(d.cfg.AI, d.cfg.AIKey(), &http.Client{Timeout: d.cfg.AITimeout()})
		if err != nil {
			return nil, fmt.Errorf("configuring summarizer: %w", err)
		}
		opts = append(opts, pipeline.WithSummarizer(s))
	}
	p := pipeline.New(pipeline.Config{
		Mode:                 mode,
		Threshold:            d.cfg.Scoring.Threshold,
		HighQualityThreshold: d.cfg.Scoring.HighQualityThreshold,
	}, opts...)

	f := d.cfg.Fetch
	src := source.NewReddit(source.Options{
		BaseURL:     f.BaseURL,
		UserAgent:   f.UserAgent,
		Timeout:     d.cfg.FetchTimeout(),
		Concurrency: f.Concurrency,
		RateLimit:   f.RateLimit,
		Retries:     f.Retries,
		TimeRange:   d.cfg.Scoring.TimeRange,
		Logger:      d.log.Named("source"),
	})

	return finder.New(d.ledger, d.cache, src, p,
		finder.WithLogger(d.log.Named("finder")),
		finder.WithRecorder(d.db),
	), nil
}

func (d *deps) close() error {
	var errs []error
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
