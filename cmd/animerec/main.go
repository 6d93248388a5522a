// Command animerec 是混合动漫推荐服务。
//
//	animerec serve [-config animerec.yaml]
//	animerec recommend -user 11880 [-user-weight 0.5 -content-weight 0.5 -top-n 10 -explain]
//	animerec publish-embeddings -space user|item -file user_embeddings.json
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/goccy/go-json"

	"github.com/rushteam/animerec/config"
	"github.com/rushteam/animerec/core"
	"github.com/rushteam/animerec/dataset"
	"github.com/rushteam/animerec/hybrid"
	"github.com/rushteam/animerec/logging"
	"github.com/rushteam/animerec/server"
	"github.com/rushteam/animerec/vector"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		logging.Error().Err(err).Msg("animerec failed")
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	cmd := "serve"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		cmd, args = args[0], args[1:]
	}
	switch cmd {
	case "serve":
		return serve(ctx, args)
	case "recommend":
		return recommend(ctx, args, stdout)
	case "publish-embeddings":
		return publishEmbeddings(ctx, args)
	default:
		return fmt.Errorf("unknown command %q (want serve, recommend or publish-embeddings)", cmd)
	}
}

func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	logging.Init(cfg.Logging())
	return cfg, nil
}

func serve(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to config file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	srv := server.New(a.rec, server.Options{
		RequestTimeout: cfg.Server.RequestTimeout,
		RateLimit:      cfg.Server.RateLimit,
		RateWindow:     cfg.Server.RateWindow,
		DefaultK:       cfg.Recommend.SimilarUsers,
	})
	return srv.ListenAndServe(ctx, cfg.Server.Addr, cfg.Server.ShutdownTimeout)
}

func recommend(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("recommend", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to config file")
	userID := fs.Int64("user", 0, "target user id (required)")
	userWeight := fs.Float64("user-weight", 0, "u2u fusion weight (default from config)")
	contentWeight := fs.Float64("content-weight", 0, "i2i fusion weight (default from config)")
	topN := fs.Int("top-n", 0, "number of results (default from config)")
	explain := fs.Bool("explain", false, "print scores, votes and synopsis")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if !flagSet(fs, "user") {
		return fmt.Errorf("recommend: -user is required")
	}
	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}

	var opts []hybrid.RecommendOption
	if flagSet(fs, "user-weight") {
		opts = append(opts, hybrid.WithUserWeight(*userWeight))
	}
	if flagSet(fs, "content-weight") {
		opts = append(opts, hybrid.WithContentWeight(*contentWeight))
	}
	if flagSet(fs, "top-n") {
		opts = append(opts, hybrid.WithTopN(*topN))
	}

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	recs, err := a.rec.Explain(ctx, *userID, opts...)
	if err != nil {
		return err
	}
	var out any = recs
	if !*explain {
		names := make([]string, len(recs))
		for i, r := range recs {
			names[i] = r.Name
		}
		out = names
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(stdout, string(data))
	return err
}

func publishEmbeddings(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("publish-embeddings", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to config file")
	space := fs.String("space", "", "embedding space: user or item")
	file := fs.String("file", "", "embedding JSON file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	sp := core.Space(*space)
	if sp != core.SpaceUser && sp != core.SpaceItem {
		return fmt.Errorf("publish-embeddings: -space must be %q or %q", core.SpaceUser, core.SpaceItem)
	}
	if *file == "" {
		return fmt.Errorf("publish-embeddings: -file is required")
	}
	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	if cfg.Redis.Addr == "" {
		return fmt.Errorf("publish-embeddings: redis.addr is not configured")
	}

	src := &dataset.FileEmbeddingSource{Paths: map[core.Space]string{sp: *file}}
	set, err := src.LoadEmbeddings(ctx, sp)
	if err != nil {
		return err
	}
	// 先建索引校验 ids 唯一、维度一致，避免发布坏数据
	ix, err := vector.NewIndex(sp, set)
	if err != nil {
		return err
	}

	s, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer s.Close()
	if err := dataset.PublishEmbeddings(ctx, s, cfg.Data.Embeddings.KeyPrefix, sp, set); err != nil {
		return err
	}
	logging.Info().
		Str("space", string(sp)).
		Int("rows", ix.Len()).
		Int("dim", ix.Dim()).
		Str("key", dataset.EmbeddingKey(cfg.Data.Embeddings.KeyPrefix, sp)).
		Msg("embeddings published")
	return nil
}

func flagSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}
