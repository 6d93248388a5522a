package dataset

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rushteam/animerec/core"

	_ "modernc.org/sqlite"
)

// SQLiteSource 从 SQLite 数据库读取评分表与元数据（纯 Go 驱动，无需 cgo）。
//
// 表结构：
//
//	ratings(user_id INTEGER, anime_id INTEGER, rating REAL)
//	anime(anime_id INTEGER PRIMARY KEY, name TEXT, genres TEXT, score REAL,
//	      episodes TEXT, type TEXT, premiered TEXT, members INTEGER)
//	synopsis(anime_id INTEGER PRIMARY KEY, synopsis TEXT)   -- 可选
type SQLiteSource struct {
	db *sql.DB
}

// OpenSQLite 以只读方式打开数据库文件。
func OpenSQLite(path string) (*SQLiteSource, error) {
	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, unavailable(err, "dataset: open sqlite %s", path)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, unavailable(err, "dataset: open sqlite %s", path)
	}
	return &SQLiteSource{db: db}, nil
}

// NewSQLiteSource 使用已打开的连接。
func NewSQLiteSource(db *sql.DB) *SQLiteSource {
	return &SQLiteSource{db: db}
}

func (s *SQLiteSource) Name() string { return "sqlite" }

// LoadRatings 实现 core.RatingSource 接口；按 rowid 顺序读取，保持写入顺序。
func (s *SQLiteSource) LoadRatings(ctx context.Context) ([]core.Rating, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT user_id, anime_id, rating FROM ratings ORDER BY rowid`)
	if err != nil {
		return nil, unavailable(err, "dataset: query ratings")
	}
	defer rows.Close()

	out := make([]core.Rating, 0, 1024)
	for rows.Next() {
		var r core.Rating
		if err := rows.Scan(&r.UserID, &r.AnimeID, &r.Rating); err != nil {
			return nil, unavailable(err, "dataset: scan ratings")
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable(err, "dataset: iterate ratings")
	}
	return out, nil
}

// LoadCatalog 实现 core.CatalogSource 接口；synopsis 表不存在时忽略简介。
func (s *SQLiteSource) LoadCatalog(ctx context.Context) ([]core.Anime, error) {
	hasSynopsis, err := s.tableExists(ctx, "synopsis")
	if err != nil {
		return nil, unavailable(err, "dataset: inspect schema")
	}

	query := `SELECT a.anime_id, COALESCE(a.name, ''), COALESCE(a.genres, ''), COALESCE(a.score, 0),
		COALESCE(a.episodes, ''), COALESCE(a.type, ''), COALESCE(a.premiered, ''), COALESCE(a.members, 0), %s
		FROM anime a %s ORDER BY a.rowid`
	if hasSynopsis {
		query = fmt.Sprintf(query, "COALESCE(s.synopsis, '')", "LEFT JOIN synopsis s ON s.anime_id = a.anime_id")
	} else {
		query = fmt.Sprintf(query, "''", "")
	}

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, unavailable(err, "dataset: query anime")
	}
	defer rows.Close()

	out := make([]core.Anime, 0, 1024)
	for rows.Next() {
		var a core.Anime
		if err := rows.Scan(&a.ID, &a.Name, &a.Genre, &a.Score, &a.Episodes, &a.Type,
			&a.Premiered, &a.Members, &a.Synopsis); err != nil {
			return nil, unavailable(err, "dataset: scan anime")
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable(err, "dataset: iterate anime")
	}
	return out, nil
}

// Close 关闭连接
func (s *SQLiteSource) Close() error {
	return s.db.Close()
}

func (s *SQLiteSource) tableExists(ctx context.Context, name string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, name).Scan(&n)
	return n > 0, err
}
