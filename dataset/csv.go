package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rushteam/animerec/core"
)

// CSVSource 从离线预处理产出的 CSV 文件读取评分表与元数据。
//
// 文件格式：
//   - Ratings:  user_id,anime_id,rating（其他列忽略）
//   - Anime:    anime_id,eng_version,Score,Genres,Episodes,Type,Premiered,Members
//   - Synopsis: MAL_ID,Name,Genres,sypnopsis（可选）
type CSVSource struct {
	RatingsPath  string
	AnimePath    string
	SynopsisPath string
}

func (s *CSVSource) Name() string { return "csv" }

// LoadRatings 实现 core.RatingSource 接口
func (s *CSVSource) LoadRatings(_ context.Context) ([]core.Rating, error) {
	out := make([]core.Rating, 0, 1024)
	err := readCSV(s.RatingsPath, func(h header, rec []string) error {
		userID, err := h.getInt64(rec, "user_id")
		if err != nil {
			return err
		}
		animeID, err := h.getInt64(rec, "anime_id")
		if err != nil {
			return err
		}
		rating, err := h.getFloat64(rec, "rating")
		if err != nil {
			return err
		}
		out = append(out, core.Rating{UserID: userID, AnimeID: animeID, Rating: rating})
		return nil
	}, "user_id", "anime_id", "rating")
	if err != nil {
		return nil, unavailable(err, "dataset: load ratings from %s", s.RatingsPath)
	}
	return out, nil
}

// LoadCatalog 实现 core.CatalogSource 接口
func (s *CSVSource) LoadCatalog(_ context.Context) ([]core.Anime, error) {
	synopses := make(map[int64]string)
	if s.SynopsisPath != "" {
		err := readCSV(s.SynopsisPath, func(h header, rec []string) error {
			id, err := h.getInt64(rec, "MAL_ID", "anime_id")
			if err != nil {
				return err
			}
			synopses[id] = h.getString(rec, "sypnopsis", "synopsis")
			return nil
		}, "MAL_ID|anime_id")
		if err != nil {
			return nil, unavailable(err, "dataset: load synopsis from %s", s.SynopsisPath)
		}
	}

	out := make([]core.Anime, 0, 1024)
	err := readCSV(s.AnimePath, func(h header, rec []string) error {
		id, err := h.getInt64(rec, "anime_id", "MAL_ID")
		if err != nil {
			return err
		}
		a := core.Anime{
			ID:        id,
			Name:      h.getString(rec, "eng_version", "English name", "Name", "name"),
			Genre:     h.getString(rec, "Genres", "genres", "genre"),
			Episodes:  h.getString(rec, "Episodes", "episodes"),
			Type:      h.getString(rec, "Type", "type"),
			Premiered: h.getString(rec, "Premiered", "premiered"),
			Synopsis:  synopses[id],
		}
		// Score / Members 可能为 "Unknown" 或空，解析失败按 0 处理
		a.Score, _ = h.getFloat64(rec, "Score", "score")
		a.Members, _ = h.getInt64(rec, "Members", "members")
		out = append(out, a)
		return nil
	}, "anime_id|MAL_ID")
	if err != nil {
		return nil, unavailable(err, "dataset: load anime from %s", s.AnimePath)
	}
	return out, nil
}

// header 是列名 -> 列下标。
type header map[string]int

// lookup 按顺序尝试候选列名，跳过空值与 "Unknown"，返回第一个有效值。
func (h header) lookup(rec []string, names ...string) (string, bool) {
	for _, name := range names {
		i, ok := h[name]
		if !ok || i >= len(rec) {
			continue
		}
		if v := strings.TrimSpace(rec[i]); v != "" && v != "Unknown" {
			return v, true
		}
	}
	return "", false
}

func (h header) getString(rec []string, names ...string) string {
	v, _ := h.lookup(rec, names...)
	return v
}

func (h header) getInt64(rec []string, names ...string) (int64, error) {
	v, ok := h.lookup(rec, names...)
	if !ok || v == "" {
		return 0, errors.New("missing column " + names[0])
	}
	if n, err := strconv.ParseInt(v, 10, 64); err == nil {
		return n, nil
	}
	// pandas 偶尔把整数列写成 "123.0"
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, errors.New("column " + names[0] + ": invalid integer " + strconv.Quote(v))
	}
	return int64(f), nil
}

func (h header) getFloat64(rec []string, names ...string) (float64, error) {
	v, ok := h.lookup(rec, names...)
	if !ok || v == "" {
		return 0, errors.New("missing column " + names[0])
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, errors.New("column " + names[0] + ": invalid number " + strconv.Quote(v))
	}
	return f, nil
}

// readCSV 逐行回调；required 中的每一项是 "a|b" 形式的候选列名，至少一个存在。
func readCSV(path string, fn func(h header, rec []string) error, required ...string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.ReuseRecord = true

	first, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("empty file")
		}
		return err
	}
	h := make(header, len(first))
	for i, name := range first {
		// 去掉 UTF-8 BOM
		name = strings.TrimPrefix(strings.TrimSpace(name), "\ufeff")
		h[name] = i
	}
	for _, req := range required {
		found := false
		for _, name := range strings.Split(req, "|") {
			if _, ok := h[name]; ok {
				found = true
				break
			}
		}
		if !found {
			return errors.New("missing column " + req)
		}
	}

	line := 1
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		line++
		if err != nil {
			return err
		}
		if err := fn(h, rec); err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
	}
}
