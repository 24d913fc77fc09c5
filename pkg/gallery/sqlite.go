package gallery

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/matzehuels/dreamscape/pkg/shapes"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS art_pieces (
	id          TEXT PRIMARY KEY,
	title       TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	source_type TEXT NOT NULL,
	source_data TEXT NOT NULL DEFAULT '{}',
	parameters  TEXT NOT NULL DEFAULT '{}',
	svg_url     TEXT NOT NULL DEFAULT '',
	png_url     TEXT NOT NULL DEFAULT '',
	metadata    TEXT NOT NULL DEFAULT '{}',
	created_at  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_art_pieces_created ON art_pieces (created_at DESC);
CREATE INDEX IF NOT EXISTS idx_art_pieces_source ON art_pieces (source_type);
`

// sqliteTime is fixed width so created_at sorts lexically.
const sqliteTime = "2006-01-02T15:04:05.000000Z"

var sqlitePragmas = []string{
	"PRAGMA foreign_keys = ON",
	"PRAGMA journal_mode = WAL",
	"PRAGMA busy_timeout = 10000",
	"PRAGMA synchronous = NORMAL",
}

// SQLiteStore keeps pieces in a local SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens or creates the database at path and applies the schema.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite: empty path")
	}
	memory := path == ":memory:"
	if !memory {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("sqlite: mkdir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	if memory {
		// every connection to :memory: is a separate database
		db.SetMaxOpenConns(1)
	}
	for _, p := range sqlitePragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			db.Close()
			return nil, fmt.Errorf("sqlite: %s: %w", p, err)
		}
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Save(ctx context.Context, p *Piece) error {
	prepare(p)
	enc, err := encode(p)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO art_pieces (id, title, description, source_type, source_data, parameters, svg_url, png_url, metadata, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Title, p.Description, p.SourceType.String(),
		string(enc.source), string(enc.params), p.SVGURL, p.PNGURL, string(enc.meta),
		p.CreatedAt.Format(sqliteTime),
	)
	if err != nil {
		return dbError("save piece", err)
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (*Piece, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, title, description, source_type, source_data, parameters, svg_url, png_url, metadata, created_at
		 FROM art_pieces WHERE id = ?`, id)

	var (
		p                    Piece
		sourceType, created  string
		source, params, meta string
	)
	err := row.Scan(&p.ID, &p.Title, &p.Description, &sourceType, &source, &params, &p.SVGURL, &p.PNGURL, &meta, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, dbError("get piece", err)
	}
	if p.SourceType, err = ParseSourceType(sourceType); err != nil {
		return nil, dbError("get piece", err)
	}
	if p.CreatedAt, err = time.Parse(sqliteTime, created); err != nil {
		return nil, dbError("get piece", err)
	}
	enc := encoded{source: []byte(source), params: []byte(params), meta: []byte(meta)}
	if err := enc.decode(&p); err != nil {
		return nil, dbError("get piece", err)
	}
	return &p, nil
}

func (s *SQLiteStore) List(ctx context.Context, f Filter) ([]Listing, int, error) {
	f = f.normalized()

	where, args := "", []any{}
	if f.SourceType != nil {
		where = " WHERE source_type = ?"
		args = append(args, f.SourceType.String())
	}

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM art_pieces"+where, args...).Scan(&total); err != nil {
		return nil, 0, dbError("count pieces", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, source_type, json_extract(parameters, '$.style'), svg_url, png_url, created_at
		 FROM art_pieces`+where+` ORDER BY created_at DESC, id LIMIT ? OFFSET ?`,
		append(args, f.Limit, f.Offset)...)
	if err != nil {
		return nil, 0, dbError("list pieces", err)
	}
	defer rows.Close()

	listings := []Listing{}
	for rows.Next() {
		var (
			l                          Listing
			sourceType, style, created string
		)
		if err := rows.Scan(&l.ID, &l.Title, &sourceType, &style, &l.SVGURL, &l.PNGURL, &created); err != nil {
			return nil, 0, dbError("list pieces", err)
		}
		if err := scanListing(&l, sourceType, style); err != nil {
			return nil, 0, dbError("list pieces", err)
		}
		if l.CreatedAt, err = time.Parse(sqliteTime, created); err != nil {
			return nil, 0, dbError("list pieces", err)
		}
		listings = append(listings, l)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, dbError("list pieces", err)
	}
	return listings, total, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM art_pieces WHERE id = ?`, id)
	if err != nil {
		return dbError("delete piece", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return dbError("delete piece", err)
	}
	if n == 0 {
		return notFound(id)
	}
	return nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

var _ Store = (*SQLiteStore)(nil)

func scanListing(l *Listing, sourceType, style string) error {
	var err error
	if l.SourceType, err = ParseSourceType(sourceType); err != nil {
		return err
	}
	if l.Style, err = shapes.ParseStyle(style); err != nil {
		return err
	}
	return nil
}
