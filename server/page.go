package server

import (
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/rushteam/animerec/hybrid"
	"github.com/rushteam/animerec/logging"
)

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Anime Recommender</title>
</head>
<body>
<h1>Anime Recommender</h1>
<form method="post" action="/">
  <label for="userID">User ID</label>
  <input type="text" id="userID" name="userID" value="{{.UserID}}">
  <button type="submit">Recommend</button>
</form>
{{if .Submitted}}
{{if .Recommendations}}
<h2>Recommended for user {{.UserID}}</h2>
<ol>
{{range .Recommendations}}  <li><strong>{{.Name}}</strong>{{if .Genre}} <em>{{.Genre}}</em>{{end}}</li>
{{end}}</ol>
{{else}}
<p class="empty">No recommendations available.</p>
{{end}}
{{end}}
</body>
</html>
`))

type indexPage struct {
	UserID          string
	Submitted       bool
	Recommendations []hybrid.Recommendation
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.renderIndex(w, r, indexPage{})
}

// handleRecommendForm 处理表单提交。任何失败都只记录日志并展示空结果，响应码仍为 200。
func (s *Server) handleRecommendForm(w http.ResponseWriter, r *http.Request) {
	page := indexPage{Submitted: true}
	if err := r.ParseForm(); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("parse recommend form")
		s.renderIndex(w, r, page)
		return
	}
	page.UserID = strings.TrimSpace(r.PostForm.Get("userID"))

	userID, err := strconv.ParseInt(page.UserID, 10, 64)
	if err != nil {
		logging.Ctx(r.Context()).Warn().Str("user_id", page.UserID).Msg("invalid user id in recommend form")
		s.renderIndex(w, r, page)
		return
	}
	recs, err := s.rec.Explain(r.Context(), userID)
	if err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Int64("user_id", userID).Msg("recommend form failed")
		s.renderIndex(w, r, page)
		return
	}
	page.Recommendations = recs
	s.renderIndex(w, r, page)
}

func (s *Server) renderIndex(w http.ResponseWriter, r *http.Request, page indexPage) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, page); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("render index")
	}
}
