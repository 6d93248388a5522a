package server

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/rushteam/animerec/core"
	"github.com/rushteam/animerec/hybrid"
	"github.com/rushteam/animerec/logging"
	"github.com/rushteam/animerec/recall"
	"github.com/rushteam/animerec/vector"
)

type errorBody struct {
	Error apiError `json:"error"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type recommendationsResponse struct {
	UserID          int64                   `json:"user_id"`
	Anime           []string                `json:"anime"`
	Recommendations []hybrid.Recommendation `json:"recommendations,omitempty"`
}

type similarUsersResponse struct {
	UserID int64                `json:"user_id"`
	Users  []hybrid.SimilarUser `json:"users"`
}

type preferencesResponse struct {
	UserID      int64               `json:"user_id"`
	Preferences []recall.Preference `json:"preferences"`
}

type similarAnimeResponse struct {
	AnimeID int64                 `json:"anime_id"`
	Mode    string                `json:"mode"`
	Anime   []hybrid.SimilarAnime `json:"anime"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathInt64(w, r, "userID")
	if !ok {
		return
	}
	q := r.URL.Query()

	var opts []hybrid.RecommendOption
	for _, p := range []struct {
		name string
		opt  func(float64) hybrid.RecommendOption
	}{
		{"user_weight", hybrid.WithUserWeight},
		{"content_weight", hybrid.WithContentWeight},
	} {
		v := q.Get(p.name)
		if v == "" {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			badRequest(w, r, p.name+" must be a number")
			return
		}
		opts = append(opts, p.opt(f))
	}
	if v := q.Get("top_n"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			badRequest(w, r, "top_n must be an integer")
			return
		}
		opts = append(opts, hybrid.WithTopN(n))
	}
	explain, _ := strconv.ParseBool(q.Get("explain"))

	recs, err := s.rec.Explain(r.Context(), userID, opts...)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	resp := recommendationsResponse{UserID: userID, Anime: make([]string, len(recs))}
	for i, rec := range recs {
		resp.Anime[i] = rec.Name
	}
	if explain {
		resp.Recommendations = recs
	}
	writeJSON(w, r, http.StatusOK, resp)
}

func (s *Server) handleSimilarUsers(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathInt64(w, r, "userID")
	if !ok {
		return
	}
	k, ok := s.queryK(w, r)
	if !ok {
		return
	}
	users, err := s.rec.SimilarUsers(r.Context(), userID, k)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, similarUsersResponse{UserID: userID, Users: users})
}

func (s *Server) handlePreferences(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathInt64(w, r, "userID")
	if !ok {
		return
	}
	prefs, err := s.rec.Preferences(r.Context(), userID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, preferencesResponse{UserID: userID, Preferences: prefs})
}

func (s *Server) handleAnime(w http.ResponseWriter, r *http.Request) {
	animeID, ok := pathInt64(w, r, "animeID")
	if !ok {
		return
	}
	s.writeAnime(w, r, core.ByID(animeID))
}

func (s *Server) handleAnimeByName(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		badRequest(w, r, "name is required")
		return
	}
	s.writeAnime(w, r, core.ByName(name))
}

func (s *Server) writeAnime(w http.ResponseWriter, r *http.Request, q core.ItemQuery) {
	a, err := s.rec.Anime(r.Context(), q)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, a)
}

func (s *Server) handleSimilarAnime(w http.ResponseWriter, r *http.Request) {
	animeID, ok := pathInt64(w, r, "animeID")
	if !ok {
		return
	}
	k, ok := s.queryK(w, r)
	if !ok {
		return
	}
	mode, ok := vector.ParseMode(r.URL.Query().Get("mode"))
	if !ok {
		badRequest(w, r, "mode must be closest or farthest")
		return
	}
	anime, err := s.rec.SimilarAnime(r.Context(), core.ByID(animeID), k, mode)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, similarAnimeResponse{AnimeID: animeID, Mode: mode.String(), Anime: anime})
}

func (s *Server) queryK(w http.ResponseWriter, r *http.Request) (int, bool) {
	v := r.URL.Query().Get("k")
	if v == "" {
		return s.opts.DefaultK, true
	}
	k, err := strconv.Atoi(v)
	if err != nil || k < 0 {
		badRequest(w, r, "k must be a non-negative integer")
		return 0, false
	}
	return k, true
}

func pathInt64(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil {
		badRequest(w, r, name+" must be an integer")
		return 0, false
	}
	return id, true
}

// writeDomainError: NOT_FOUND → 404，INVALID_INPUT → 400，其他 → 500。
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case core.IsNotFound(err):
		writeError(w, r, http.StatusNotFound, core.ErrorCodeNotFound, err.Error())
	case core.IsInvalidInput(err):
		writeError(w, r, http.StatusBadRequest, core.ErrorCodeInvalidInput, err.Error())
	default:
		logging.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeError(w, r, http.StatusInternalServerError, "INTERNAL", "internal error")
	}
}

func badRequest(w http.ResponseWriter, r *http.Request, msg string) {
	writeError(w, r, http.StatusBadRequest, core.ErrorCodeInvalidInput, msg)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, msg string) {
	writeJSON(w, r, status, errorBody{Error: apiError{Code: code, Message: msg}})
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("write response")
	}
}
