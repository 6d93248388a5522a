package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "animerec.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Server.Addr = %q, want :8080", cfg.Server.Addr)
	}
	if cfg.Server.RequestTimeout != 10*time.Second {
		t.Errorf("Server.RequestTimeout = %v, want 10s", cfg.Server.RequestTimeout)
	}
	if cfg.Data.Source != "csv" || cfg.Data.Embeddings.Source != "file" {
		t.Errorf("Data = %+v", cfg.Data)
	}

	h := cfg.Hybrid()
	if h.SimilarUsers != 10 || h.SimilarItems != 10 || h.TopN != 10 || h.UserWeight != 0.5 || h.ContentWeight != 0.5 {
		t.Errorf("Hybrid() = %+v", h)
	}
	if cfg.NeedsRedis() {
		t.Error("NeedsRedis() should be false by default")
	}
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: ":9000"
  request_timeout: 3s
log:
  level: debug
  format: console
data:
  source: sqlite
  sqlite_path: /data/anime.db
redis:
  addr: localhost:6379
cache:
  enabled: true
  ttl: 1m
recommend:
  top_n: 5
  blacklist: [1, 2, 3]
`)
	t.Setenv("ANIMEREC_RECOMMEND__USER_WEIGHT", "0.8")
	t.Setenv("ANIMEREC_SERVER__RATE_LIMIT", "0")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Addr != ":9000" || cfg.Server.RequestTimeout != 3*time.Second || cfg.Server.RateLimit != 0 {
		t.Errorf("Server = %+v", cfg.Server)
	}
	if cfg.Data.Source != "sqlite" || cfg.Data.SQLitePath != "/data/anime.db" {
		t.Errorf("Data = %+v", cfg.Data)
	}
	if cfg.Recommend.TopN != 5 || cfg.Recommend.UserWeight != 0.8 || cfg.Recommend.ContentWeight != 0.5 {
		t.Errorf("Recommend = %+v", cfg.Recommend)
	}
	if len(cfg.Recommend.Blacklist) != 3 || cfg.Recommend.Blacklist[2] != 3 {
		t.Errorf("Recommend.Blacklist = %v", cfg.Recommend.Blacklist)
	}
	if !cfg.NeedsRedis() || cfg.RedisSettings().Addr != "localhost:6379" {
		t.Errorf("Redis = %+v", cfg.Redis)
	}
	if cc := cfg.CacheSettings(); cc.TTL != time.Minute || cc.KeyPrefix != "animerec:" {
		t.Errorf("CacheSettings() = %+v", cc)
	}
	if lc := cfg.Logging(); lc.Level != "debug" || lc.Format != "console" {
		t.Errorf("Logging() = %+v", lc)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "unknown data source",
			content: "data:\n  source: parquet\n",
			want:    "Source",
		},
		{
			name:    "sqlite without path",
			content: "data:\n  source: sqlite\n",
			want:    "SQLitePath",
		},
		{
			name:    "zero top n",
			content: "recommend:\n  top_n: 0\n",
			want:    "TopN",
		},
		{
			name:    "cache without redis",
			content: "cache:\n  enabled: true\n",
			want:    "redis.addr",
		},
		{
			name:    "store embeddings without redis",
			content: "data:\n  embeddings:\n    source: store\n",
			want:    "redis.addr",
		},
		{
			name:    "nan weight",
			content: "recommend:\n  user_weight: .nan\n",
			want:    "finite",
		},
		{
			name:    "bad log level",
			content: "log:\n  level: loud\n",
			want:    "Level",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Load() error = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Load() with missing explicit file should fail")
	}
}

func TestEnvKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"ANIMEREC_SERVER__ADDR", "server.addr"},
		{"ANIMEREC_RECOMMEND__TOP_N", "recommend.top_n"},
		{"ANIMEREC_DATA__EMBEDDINGS__KEY_PREFIX", "data.embeddings.key_prefix"},
		{"ANIMEREC_CONFIG", ""},
	}
	for _, tt := range tests {
		if got := envKey(tt.in); got != tt.want {
			t.Errorf("envKey(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
