package server

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/rushteam/animerec/core"
	"github.com/rushteam/animerec/dataset"
	"github.com/rushteam/animerec/hybrid"
	"github.com/rushteam/animerec/recall"
	"github.com/rushteam/animerec/vector"
)

func mustIndex(t *testing.T, space core.Space, set *core.EmbeddingSet) *vector.Index {
	t.Helper()
	ix, err := vector.NewIndex(space, set)
	if err != nil {
		t.Fatal(err)
	}
	return ix
}

// newTestRecommender 与 hybrid 包测试使用同一份数据：
// 用户 1 的推荐为 Trigun, Outlaw Star, Cowboy Bebop, Monster。
func newTestRecommender(t *testing.T) *hybrid.Recommender {
	t.Helper()
	items := &core.EmbeddingSet{IDs: []int64{10, 11, 12, 13, 14}}
	for _, d := range []float64{0, 40, 70, 120, 180} {
		rad := d * math.Pi / 180
		items.Vectors = append(items.Vectors, []float64{math.Cos(rad), math.Sin(rad)})
	}
	res := &hybrid.Resources{
		Users: mustIndex(t, core.SpaceUser, &core.EmbeddingSet{
			IDs:     []int64{1, 2, 3},
			Vectors: [][]float64{{1, 0}, {0.9, 0.1}, {0, 1}},
		}),
		Items: mustIndex(t, core.SpaceItem, items),
		Ratings: dataset.NewRatingTable([]core.Rating{
			{UserID: 1, AnimeID: 10, Rating: 1.0},
			{UserID: 2, AnimeID: 10, Rating: 0.9},
			{UserID: 2, AnimeID: 11, Rating: 0.9},
			{UserID: 2, AnimeID: 12, Rating: 0.9},
			{UserID: 3, AnimeID: 11, Rating: 0.8},
			{UserID: 3, AnimeID: 13, Rating: 0.1},
		}),
		Catalog: dataset.NewCatalog([]core.Anime{
			{ID: 10, Name: "Cowboy Bebop", Genre: "Action, Sci-Fi"},
			{ID: 11, Name: "Trigun", Genre: "Action, Sci-Fi", Synopsis: "Vash the Stampede."},
			{ID: 12, Name: "Outlaw Star", Genre: "Action, Sci-Fi"},
			{ID: 13, Name: "Monster", Genre: "Mystery, Drama"},
			{ID: 14, Name: "K-On!", Genre: "Music, Slice of Life"},
		}),
	}
	cfg := hybrid.DefaultConfig()
	cfg.SimilarItems = 2
	rec, err := hybrid.New(res, hybrid.WithConfig(cfg))
	if err != nil {
		t.Fatal(err)
	}
	return rec
}

func do(t *testing.T, h http.Handler, method, target string, body url.Values) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(body.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rr.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rr.Body.String(), err)
	}
	return v
}

func TestAPI_Status(t *testing.T) {
	h := New(newTestRecommender(t), DefaultOptions()).Handler()

	tests := []struct {
		name   string
		target string
		want   int
	}{
		{"health", "/healthz", http.StatusOK},
		{"metrics", "/metrics", http.StatusOK},
		{"recommend", "/api/v1/users/1/recommendations", http.StatusOK},
		{"recommend unknown user", "/api/v1/users/404/recommendations", http.StatusNotFound},
		{"recommend bad user id", "/api/v1/users/abc/recommendations", http.StatusBadRequest},
		{"recommend zero top n", "/api/v1/users/1/recommendations?top_n=0", http.StatusBadRequest},
		{"recommend bad top n", "/api/v1/users/1/recommendations?top_n=ten", http.StatusBadRequest},
		{"recommend bad weight", "/api/v1/users/1/recommendations?user_weight=heavy", http.StatusBadRequest},
		{"recommend nan weight", "/api/v1/users/1/recommendations?content_weight=NaN", http.StatusBadRequest},
		{"similar users", "/api/v1/users/1/similar?k=1", http.StatusOK},
		{"similar users bad k", "/api/v1/users/1/similar?k=-1", http.StatusBadRequest},
		{"preferences", "/api/v1/users/2/preferences", http.StatusOK},
		{"anime", "/api/v1/anime/11", http.StatusOK},
		{"anime unknown", "/api/v1/anime/999", http.StatusNotFound},
		{"anime by name", "/api/v1/anime?name=Trigun", http.StatusOK},
		{"anime by name missing", "/api/v1/anime", http.StatusBadRequest},
		{"similar anime bad mode", "/api/v1/anime/11/similar?mode=sideways", http.StatusBadRequest},
		{"similar anime unknown", "/api/v1/anime/999/similar", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, h, http.MethodGet, tt.target, nil)
			if rr.Code != tt.want {
				t.Errorf("GET %s = %d, want %d (body %s)", tt.target, rr.Code, tt.want, rr.Body.String())
			}
		})
	}
}

func TestAPI_Recommendations(t *testing.T) {
	h := New(newTestRecommender(t), DefaultOptions()).Handler()

	rr := do(t, h, http.MethodGet, "/api/v1/users/1/recommendations", nil)
	got := decode[recommendationsResponse](t, rr)
	want := []string{"Trigun", "Outlaw Star", "Cowboy Bebop", "Monster"}
	if strings.Join(got.Anime, "|") != strings.Join(want, "|") {
		t.Errorf("anime = %v, want %v", got.Anime, want)
	}
	if got.Recommendations != nil {
		t.Errorf("recommendations should be omitted without explain")
	}

	rr = do(t, h, http.MethodGet, "/api/v1/users/1/recommendations?top_n=2&explain=true&user_weight=0.1&content_weight=0.9", nil)
	got = decode[recommendationsResponse](t, rr)
	if len(got.Anime) != 2 || len(got.Recommendations) != 2 {
		t.Fatalf("response = %+v", got)
	}
	first := got.Recommendations[0]
	if first.AnimeID != 11 || first.UserVotes != 2 || first.ContentVotes != 1 || first.Synopsis == "" {
		t.Errorf("recommendations[0] = %+v", first)
	}
}

func TestAPI_Similar(t *testing.T) {
	h := New(newTestRecommender(t), DefaultOptions()).Handler()

	users := decode[similarUsersResponse](t, do(t, h, http.MethodGet, "/api/v1/users/1/similar?k=1", nil))
	if len(users.Users) != 1 || users.Users[0].UserID != 2 {
		t.Errorf("similar users = %+v", users)
	}

	anime := decode[similarAnimeResponse](t, do(t, h, http.MethodGet, "/api/v1/anime/11/similar?k=2&mode=farthest", nil))
	if anime.Mode != "farthest" || len(anime.Anime) != 2 || anime.Anime[0].AnimeID != 14 || anime.Anime[1].AnimeID != 13 {
		t.Errorf("similar anime = %+v", anime)
	}

	prefs := decode[preferencesResponse](t, do(t, h, http.MethodGet, "/api/v1/users/404/preferences", nil))
	if prefs.Preferences == nil || len(prefs.Preferences) != 0 {
		t.Errorf("preferences for unrated user = %#v, want empty list", prefs.Preferences)
	}

	a := decode[core.Anime](t, do(t, h, http.MethodGet, "/api/v1/anime?name=Trigun", nil))
	if a.ID != 11 || a.Synopsis != "Vash the Stampede." {
		t.Errorf("anime by name = %+v", a)
	}
}

type brokenRecommender struct{}

var errBroken = errors.New("index corrupted")

func (brokenRecommender) Explain(context.Context, int64, ...hybrid.RecommendOption) ([]hybrid.Recommendation, error) {
	return nil, errBroken
}
func (brokenRecommender) SimilarUsers(context.Context, int64, int) ([]hybrid.SimilarUser, error) {
	return nil, errBroken
}
func (brokenRecommender) SimilarAnime(context.Context, core.ItemQuery, int, vector.Mode) ([]hybrid.SimilarAnime, error) {
	return nil, errBroken
}
func (brokenRecommender) Preferences(context.Context, int64) ([]recall.Preference, error) {
	return nil, errBroken
}
func (brokenRecommender) Anime(context.Context, core.ItemQuery) (core.Anime, error) {
	return core.Anime{}, errBroken
}

func TestAPI_InternalError(t *testing.T) {
	h := New(brokenRecommender{}, DefaultOptions()).Handler()
	rr := do(t, h, http.MethodGet, "/api/v1/users/1/recommendations", nil)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rr.Code)
	}
	body := decode[errorBody](t, rr)
	if strings.Contains(body.Error.Message, "corrupted") {
		t.Errorf("internal error details leaked: %q", body.Error.Message)
	}
}

func TestForm(t *testing.T) {
	tests := []struct {
		name    string
		rec     Recommender
		userID  string
		want    string
		notWant string
	}{
		{name: "success", rec: newTestRecommender(t), userID: "1", want: "<strong>Trigun</strong>", notWant: "No recommendations"},
		{name: "unknown user", rec: newTestRecommender(t), userID: "404", want: "No recommendations available."},
		{name: "not a number", rec: newTestRecommender(t), userID: "abc", want: "No recommendations available."},
		{name: "backend failure", rec: brokenRecommender{}, userID: "1", want: "No recommendations available."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := New(tt.rec, DefaultOptions()).Handler()
			rr := do(t, h, http.MethodPost, "/", url.Values{"userID": {tt.userID}})
			if rr.Code != http.StatusOK {
				t.Fatalf("POST / = %d, want 200", rr.Code)
			}
			body := rr.Body.String()
			if !strings.Contains(body, tt.want) {
				t.Errorf("body missing %q:\n%s", tt.want, body)
			}
			if tt.notWant != "" && strings.Contains(body, tt.notWant) {
				t.Errorf("body unexpectedly contains %q", tt.notWant)
			}
		})
	}

	rr := do(t, New(newTestRecommender(t), DefaultOptions()).Handler(), http.MethodGet, "/", nil)
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `name="userID"`) {
		t.Errorf("GET / = %d %s", rr.Code, rr.Body.String())
	}
}

func TestMiddleware_RequestIDAndRateLimit(t *testing.T) {
	opts := DefaultOptions()
	opts.RateLimit = 2
	opts.RateWindow = time.Minute
	h := New(newTestRecommender(t), opts).Handler()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/anime/11", nil)
	req.Header.Set(requestIDHeader, "req-123")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if got := rr.Header().Get(requestIDHeader); got != "req-123" {
		t.Errorf("request id = %q, want req-123", got)
	}

	rr = do(t, h, http.MethodGet, "/api/v1/anime/11", nil)
	if rr.Header().Get(requestIDHeader) == "" {
		t.Error("request id should be generated")
	}

	rr = do(t, h, http.MethodGet, "/api/v1/anime/11", nil)
	if rr.Code != http.StatusTooManyRequests {
		t.Errorf("third request = %d, want 429", rr.Code)
	}

	// 健康检查不受限流
	if rr := do(t, h, http.MethodGet, "/healthz", nil); rr.Code != http.StatusOK {
		t.Errorf("healthz = %d, want 200", rr.Code)
	}
}
