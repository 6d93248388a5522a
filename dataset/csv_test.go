package dataset

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rushteam/animerec/core"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestCSVSource_LoadRatings(t *testing.T) {
	dir := t.TempDir()
	src := &CSVSource{
		RatingsPath: writeFile(t, dir, "rating_df.csv",
			"\ufeffuser_id,anime_id,rating,user,anime\n"+
				"1,20,0.9,0,0\n"+
				"1,21,0.5,0,1\n"+
				"2,20,1.0,1,0\n"),
	}

	got, err := src.LoadRatings(context.Background())
	if err != nil {
		t.Fatalf("LoadRatings() error = %v", err)
	}
	want := []core.Rating{
		{UserID: 1, AnimeID: 20, Rating: 0.9},
		{UserID: 1, AnimeID: 21, Rating: 0.5},
		{UserID: 2, AnimeID: 20, Rating: 1.0},
	}
	if len(got) != len(want) {
		t.Fatalf("LoadRatings() len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("LoadRatings()[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestCSVSource_LoadRatingsErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "empty file", content: ""},
		{name: "missing column", content: "user_id,anime_id\n1,2\n"},
		{name: "bad number", content: "user_id,anime_id,rating\n1,2,abc\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &CSVSource{RatingsPath: writeFile(t, t.TempDir(), "r.csv", tt.content)}
			if _, err := src.LoadRatings(context.Background()); !core.IsUnavailable(err) {
				t.Errorf("LoadRatings() error = %v, want UNAVAILABLE", err)
			}
		})
	}

	t.Run("missing file", func(t *testing.T) {
		src := &CSVSource{RatingsPath: filepath.Join(t.TempDir(), "nope.csv")}
		if _, err := src.LoadRatings(context.Background()); !core.IsUnavailable(err) {
			t.Errorf("LoadRatings() error = %v, want UNAVAILABLE", err)
		}
	})
}

func TestCSVSource_LoadCatalog(t *testing.T) {
	dir := t.TempDir()
	src := &CSVSource{
		AnimePath: writeFile(t, dir, "anime_df.csv",
			"anime_id,eng_version,Score,Genres,Episodes,Type,Premiered,Members\n"+
				"1,Cowboy Bebop,8.78,\"Action, Sci-Fi\",26,TV,Spring 1998,1251960\n"+
				"5,Unknown Title,Unknown,Drama,Unknown,Movie,Unknown,100.0\n"),
		SynopsisPath: writeFile(t, dir, "synopsis_df.csv",
			"MAL_ID,Name,Genres,sypnopsis\n"+
				"1,Cowboy Bebop,\"Action, Sci-Fi\",\"In the year 2071, humanity has colonized...\"\n"),
	}

	got, err := src.LoadCatalog(context.Background())
	if err != nil {
		t.Fatalf("LoadCatalog() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("LoadCatalog() len = %d, want 2", len(got))
	}

	bebop := got[0]
	if bebop.ID != 1 || bebop.Name != "Cowboy Bebop" || bebop.Genre != "Action, Sci-Fi" {
		t.Errorf("first anime = %+v", bebop)
	}
	if bebop.Score != 8.78 || bebop.Members != 1251960 || bebop.Premiered != "Spring 1998" {
		t.Errorf("first anime numeric fields = %+v", bebop)
	}
	if bebop.Synopsis == "" {
		t.Error("first anime synopsis should be joined")
	}

	other := got[1]
	if other.Score != 0 || other.Episodes != "" || other.Premiered != "" {
		t.Errorf("Unknown fields should be zero, got %+v", other)
	}
	if other.Members != 100 {
		t.Errorf("Members = %d, want 100", other.Members)
	}
	if other.Synopsis != "" {
		t.Errorf("Synopsis = %q, want empty", other.Synopsis)
	}
}

func TestCSVSource_LoadCatalogNameFallback(t *testing.T) {
	src := &CSVSource{
		AnimePath: writeFile(t, t.TempDir(), "anime.csv",
			"MAL_ID,Name,Score,Genres,English name,Japanese name\n"+
				"1,Cowboy Bebop,8.78,\"Action, Sci-Fi\",Cowboy Bebop,カウボーイビバップ\n"+
				"20,Naruto,7.91,\"Action, Comedy\",Naruto,ナルト\n"+
				"5114,Fullmetal Alchemist: Brotherhood,9.19,Action,Unknown,鋼の錬金術師\n"+
				"32281,Kimi no Na wa.,9.0,Romance,,君の名は。\n"),
	}

	got, err := src.LoadCatalog(context.Background())
	if err != nil {
		t.Fatalf("LoadCatalog() error = %v", err)
	}
	want := []string{"Cowboy Bebop", "Naruto", "Fullmetal Alchemist: Brotherhood", "Kimi no Na wa."}
	if len(got) != len(want) {
		t.Fatalf("LoadCatalog() len = %d, want %d", len(got), len(want))
	}
	for i, name := range want {
		if got[i].Name != name {
			t.Errorf("LoadCatalog()[%d].Name = %q, want %q", i, got[i].Name, name)
		}
	}
}
