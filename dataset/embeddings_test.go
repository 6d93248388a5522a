package dataset

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rushteam/animerec/core"
	"github.com/rushteam/animerec/store"
)

func TestFileEmbeddingSource(t *testing.T) {
	dir := t.TempDir()
	src := &FileEmbeddingSource{Paths: map[core.Space]string{
		core.SpaceUser: writeFile(t, dir, "user.json", `{"ids":[7,8],"vectors":[[1,0],[0,1]]}`),
		core.SpaceItem: writeFile(t, dir, "item.json", `{"ids":`),
	}}
	ctx := context.Background()

	set, err := src.LoadEmbeddings(ctx, core.SpaceUser)
	if err != nil {
		t.Fatalf("LoadEmbeddings(user) error = %v", err)
	}
	if len(set.IDs) != 2 || set.IDs[1] != 8 || set.Vectors[1][1] != 1 {
		t.Errorf("LoadEmbeddings(user) = %+v", set)
	}

	if _, err := src.LoadEmbeddings(ctx, core.SpaceItem); !core.IsUnavailable(err) {
		t.Errorf("LoadEmbeddings(corrupt) error = %v, want UNAVAILABLE", err)
	}

	missing := &FileEmbeddingSource{Paths: map[core.Space]string{
		core.SpaceUser: filepath.Join(dir, "nope.json"),
	}}
	if _, err := missing.LoadEmbeddings(ctx, core.SpaceUser); !core.IsUnavailable(err) {
		t.Errorf("LoadEmbeddings(missing file) error = %v, want UNAVAILABLE", err)
	}
	if _, err := missing.LoadEmbeddings(ctx, core.SpaceItem); !core.IsUnavailable(err) {
		t.Errorf("LoadEmbeddings(unconfigured) error = %v, want UNAVAILABLE", err)
	}
}

func TestStoreEmbeddingSource(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	defer s.Close()

	want := &core.EmbeddingSet{IDs: []int64{3, 1}, Vectors: [][]float64{{0.6, 0.8}, {1, 0}}}
	if err := PublishEmbeddings(ctx, s, "animerec:", core.SpaceItem, want); err != nil {
		t.Fatalf("PublishEmbeddings() error = %v", err)
	}
	if _, err := s.Get(ctx, "animerec:emb:item"); err != nil {
		t.Fatalf("published key missing: %v", err)
	}

	src := &StoreEmbeddingSource{Store: s, KeyPrefix: "animerec:"}
	got, err := src.LoadEmbeddings(ctx, core.SpaceItem)
	if err != nil {
		t.Fatalf("LoadEmbeddings() error = %v", err)
	}
	if len(got.IDs) != 2 || got.IDs[0] != 3 || got.Vectors[0][1] != 0.8 {
		t.Errorf("LoadEmbeddings() = %+v, want %+v", got, want)
	}

	if _, err := src.LoadEmbeddings(ctx, core.SpaceUser); !core.IsUnavailable(err) {
		t.Errorf("LoadEmbeddings(missing key) error = %v, want UNAVAILABLE", err)
	}
	if src.Name() != "store.memory" {
		t.Errorf("Name() = %q", src.Name())
	}
}
