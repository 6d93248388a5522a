package main

import (
	"context"
	"errors"

	"github.com/rushteam/animerec/cache"
	"github.com/rushteam/animerec/config"
	"github.com/rushteam/animerec/core"
	"github.com/rushteam/animerec/dataset"
	"github.com/rushteam/animerec/filter"
	"github.com/rushteam/animerec/hybrid"
	"github.com/rushteam/animerec/store"
)

// app 持有进程级资源，Close 时按相反顺序释放。
type app struct {
	rec     *hybrid.Recommender
	closers []func() error
}

func newApp(ctx context.Context, cfg *config.Config) (_ *app, err error) {
	a := &app{}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	var s core.Store
	if cfg.NeedsRedis() {
		if s, err = openStore(ctx, cfg); err != nil {
			return nil, err
		}
		a.closers = append(a.closers, s.Close)
	}

	src, err := a.sources(cfg, s)
	if err != nil {
		return nil, err
	}
	res, err := hybrid.LoadResources(ctx, src)
	if err != nil {
		return nil, err
	}

	opts := []hybrid.Option{hybrid.WithConfig(cfg.Hybrid())}
	if len(cfg.Recommend.Blacklist) > 0 {
		opts = append(opts, hybrid.WithFilters(filter.NewBlacklistFilter(cfg.Recommend.Blacklist...)))
	}
	if cfg.Recommend.PipelineFile != "" {
		p, err := hybrid.LoadPipeline(ctx, cfg.Recommend.PipelineFile, res, cfg.Hybrid(), s)
		if err != nil {
			return nil, err
		}
		opts = append(opts, hybrid.WithPipeline(p))
	}
	if cfg.Cache.Enabled {
		opts = append(opts, hybrid.WithCache(cache.New(s, cfg.CacheSettings())))
	}

	if a.rec, err = hybrid.New(res, opts...); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *app) sources(cfg *config.Config, s core.Store) (hybrid.Sources, error) {
	var src hybrid.Sources

	switch cfg.Data.Source {
	case "sqlite":
		db, err := dataset.OpenSQLite(cfg.Data.SQLitePath)
		if err != nil {
			return src, err
		}
		a.closers = append(a.closers, db.Close)
		src.Ratings, src.Catalog = db, db
	default:
		csv := &dataset.CSVSource{
			RatingsPath:  cfg.Data.RatingsCSV,
			AnimePath:    cfg.Data.AnimeCSV,
			SynopsisPath: cfg.Data.SynopsisCSV,
		}
		src.Ratings, src.Catalog = csv, csv
	}

	switch cfg.Data.Embeddings.Source {
	case "store":
		src.Embeddings = &dataset.StoreEmbeddingSource{Store: s, KeyPrefix: cfg.Data.Embeddings.KeyPrefix}
	default:
		src.Embeddings = &dataset.FileEmbeddingSource{Paths: map[core.Space]string{
			core.SpaceUser: cfg.Data.Embeddings.UserPath,
			core.SpaceItem: cfg.Data.Embeddings.ItemPath,
		}}
	}
	return src, nil
}

func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}

func openStore(ctx context.Context, cfg *config.Config) (*store.RedisStore, error) {
	return store.NewRedisStore(ctx, cfg.RedisSettings())
}
