// Package server 是推荐服务的 HTTP 外壳：HTML 表单、JSON API、健康检查与 Prometheus 指标。
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rushteam/animerec/core"
	"github.com/rushteam/animerec/hybrid"
	"github.com/rushteam/animerec/logging"
	"github.com/rushteam/animerec/recall"
	"github.com/rushteam/animerec/vector"
)

// Recommender 是 HTTP 层依赖的推荐能力，*hybrid.Recommender 实现了它。
type Recommender interface {
	Explain(ctx context.Context, userID int64, opts ...hybrid.RecommendOption) ([]hybrid.Recommendation, error)
	SimilarUsers(ctx context.Context, userID int64, k int) ([]hybrid.SimilarUser, error)
	SimilarAnime(ctx context.Context, q core.ItemQuery, k int, mode vector.Mode) ([]hybrid.SimilarAnime, error)
	Preferences(ctx context.Context, userID int64) ([]recall.Preference, error)
	Anime(ctx context.Context, q core.ItemQuery) (core.Anime, error)
}

// Options 是 HTTP 服务参数。
type Options struct {
	RequestTimeout time.Duration
	// RateLimit 为 0 时不限流
	RateLimit  int
	RateWindow time.Duration
	// DefaultK 是相似用户 / 相似物品接口未传 k 时的数量
	DefaultK int
}

// DefaultOptions 返回默认参数。
func DefaultOptions() Options {
	return Options{
		RequestTimeout: 10 * time.Second,
		RateLimit:      100,
		RateWindow:     time.Minute,
		DefaultK:       10,
	}
}

// Server 持有路由与依赖。
type Server struct {
	rec    Recommender
	opts   Options
	router chi.Router
}

// New 创建 Server 并注册全部路由。
func New(rec Recommender, opts Options) *Server {
	if opts.DefaultK <= 0 {
		opts.DefaultK = DefaultOptions().DefaultK
	}
	s := &Server{rec: rec, opts: opts}
	s.router = s.routes()
	return s
}

// Handler 返回根 http.Handler。
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(accessLog)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(rateLimit(s.opts.RateLimit, s.opts.RateWindow))
		if s.opts.RequestTimeout > 0 {
			r.Use(middleware.Timeout(s.opts.RequestTimeout))
		}

		r.Get("/", s.handleIndex)
		r.Post("/", s.handleRecommendForm)

		r.Route("/api/v1", func(r chi.Router) {
			r.Route("/users/{userID}", func(r chi.Router) {
				r.Get("/recommendations", s.handleRecommendations)
				r.Get("/similar", s.handleSimilarUsers)
				r.Get("/preferences", s.handlePreferences)
			})
			r.Get("/anime", s.handleAnimeByName)
			r.Route("/anime/{animeID}", func(r chi.Router) {
				r.Get("/", s.handleAnime)
				r.Get("/similar", s.handleSimilarAnime)
			})
		})
	})
	return r
}

// ListenAndServe 启动 HTTP 服务，ctx 取消后在 shutdownTimeout 内优雅退出。
func (s *Server) ListenAndServe(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", addr).Msg("http server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logging.Info().Msg("http server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
