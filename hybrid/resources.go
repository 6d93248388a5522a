package hybrid

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rushteam/animerec/core"
	"github.com/rushteam/animerec/dataset"
	"github.com/rushteam/animerec/logging"
	"github.com/rushteam/animerec/metrics"
	"github.com/rushteam/animerec/vector"
)

// Resources 是进程级只读状态：两个向量索引、评分表、元数据表。
// 启动时由 LoadResources 构建一次，之后被所有请求并发共享，不需要加锁。
type Resources struct {
	Users   *vector.Index
	Items   *vector.Index
	Ratings *dataset.RatingTable
	Catalog *dataset.Catalog
}

// Sources 是离线产物的数据源。
type Sources struct {
	Embeddings core.EmbeddingSource
	Ratings    core.RatingSource
	Catalog    core.CatalogSource
}

// LoadResources 并发加载全部离线产物，任何一项失败都返回 UNAVAILABLE（不重试）。
func LoadResources(ctx context.Context, src Sources) (*Resources, error) {
	start := time.Now()
	res := &Resources{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ix, err := loadIndex(gctx, src.Embeddings, core.SpaceUser)
		res.Users = ix
		return err
	})
	g.Go(func() error {
		ix, err := loadIndex(gctx, src.Embeddings, core.SpaceItem)
		res.Items = ix
		return err
	})
	g.Go(func() error {
		records, err := src.Ratings.LoadRatings(gctx)
		if err != nil {
			return dataUnavailable(err, "load ratings from %s", src.Ratings.Name())
		}
		res.Ratings = dataset.NewRatingTable(records)
		return nil
	})
	g.Go(func() error {
		animes, err := src.Catalog.LoadCatalog(gctx)
		if err != nil {
			return dataUnavailable(err, "load catalog from %s", src.Catalog.Name())
		}
		res.Catalog = dataset.NewCatalog(animes)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	metrics.SetResourceSize("user_embeddings", res.Users.Len())
	metrics.SetResourceSize("item_embeddings", res.Items.Len())
	metrics.SetResourceSize("ratings", res.Ratings.Len())
	metrics.SetResourceSize("catalog", res.Catalog.Len())
	metrics.RecordResourceLoad(time.Since(start))

	logging.Info().
		Int("users", res.Users.Len()).
		Int("items", res.Items.Len()).
		Int("dim", res.Items.Dim()).
		Int("ratings", res.Ratings.Len()).
		Int("rated_users", res.Ratings.UserCount()).
		Int("catalog", res.Catalog.Len()).
		Dur("took", time.Since(start)).
		Msg("resources loaded")
	return res, nil
}

func loadIndex(ctx context.Context, src core.EmbeddingSource, space core.Space) (*vector.Index, error) {
	set, err := src.LoadEmbeddings(ctx, space)
	if err != nil {
		return nil, dataUnavailable(err, "load %s embeddings from %s", space, src.Name())
	}
	ix, err := vector.NewIndex(space, set)
	if err != nil {
		return nil, dataUnavailable(err, "build %s index", space)
	}
	return ix, nil
}

// dataUnavailable 已经是 UNAVAILABLE 的错误原样返回，其他错误包装为 UNAVAILABLE。
func dataUnavailable(err error, format string, args ...any) error {
	if core.IsUnavailable(err) {
		return err
	}
	return core.WrapDomainError(core.ModuleDataset, core.ErrorCodeUnavailable, err, "hybrid: "+format, args...)
}
