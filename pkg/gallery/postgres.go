package gallery

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS art_pieces (
		id UUID PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		source_type TEXT NOT NULL,
		source_data JSONB NOT NULL DEFAULT '{}',
		parameters JSONB NOT NULL DEFAULT '{}',
		svg_url TEXT NOT NULL DEFAULT '',
		png_url TEXT NOT NULL DEFAULT '',
		metadata JSONB NOT NULL DEFAULT '{}',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_art_pieces_created ON art_pieces (created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_art_pieces_source ON art_pieces (source_type)`,
}

// PostgresStore keeps pieces in the art_pieces table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects to url and applies the schema.
func OpenPostgres(ctx context.Context, url string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("postgres: parse url: %w", err)
	}
	cfg.MaxConns = 10

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}
	for _, stmt := range postgresSchema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			pool.Close()
			return nil, fmt.Errorf("postgres: schema: %w", err)
		}
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Save(ctx context.Context, p *Piece) error {
	prepare(p)
	enc, err := encode(p)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO art_pieces (id, title, description, source_type, source_data, parameters, svg_url, png_url, metadata, created_at)
		 VALUES ($1, $2, $3, $4, $5::jsonb, $6::jsonb, $7, $8, $9::jsonb, $10)`,
		p.ID, p.Title, p.Description, p.SourceType.String(),
		string(enc.source), string(enc.params), p.SVGURL, p.PNGURL, string(enc.meta),
		p.CreatedAt,
	)
	if err != nil {
		return dbError("save piece", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*Piece, error) {
	var (
		p          Piece
		sourceType string
		enc        encoded
	)
	err := s.pool.QueryRow(ctx,
		`SELECT id::text, title, description, source_type, source_data::text, parameters::text, svg_url, png_url, metadata::text, created_at
		 FROM art_pieces WHERE id = $1`, id,
	).Scan(&p.ID, &p.Title, &p.Description, &sourceType, &enc.source, &enc.params, &p.SVGURL, &p.PNGURL, &enc.meta, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, dbError("get piece", err)
	}
	if p.SourceType, err = ParseSourceType(sourceType); err != nil {
		return nil, dbError("get piece", err)
	}
	if err := enc.decode(&p); err != nil {
		return nil, dbError("get piece", err)
	}
	p.CreatedAt = p.CreatedAt.UTC()
	return &p, nil
}

func (s *PostgresStore) List(ctx context.Context, f Filter) ([]Listing, int, error) {
	f = f.normalized()

	where, args := "", []any{}
	if f.SourceType != nil {
		where = " WHERE source_type = $1"
		args = append(args, f.SourceType.String())
	}

	var total int
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM art_pieces"+where, args...).Scan(&total); err != nil {
		return nil, 0, dbError("count pieces", err)
	}

	query := fmt.Sprintf(`SELECT id::text, title, source_type, parameters->>'style', svg_url, png_url, created_at
		FROM art_pieces%s ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d`, where, len(args)+1, len(args)+2)
	rows, err := s.pool.Query(ctx, query, append(args, f.Limit, f.Offset)...)
	if err != nil {
		return nil, 0, dbError("list pieces", err)
	}
	defer rows.Close()

	listings := []Listing{}
	for rows.Next() {
		var (
			l                 Listing
			sourceType, style string
		)
		if err := rows.Scan(&l.ID, &l.Title, &sourceType, &style, &l.SVGURL, &l.PNGURL, &l.CreatedAt); err != nil {
			return nil, 0, dbError("list pieces", err)
		}
		if err := scanListing(&l, sourceType, style); err != nil {
			return nil, 0, dbError("list pieces", err)
		}
		l.CreatedAt = l.CreatedAt.UTC()
		listings = append(listings, l)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, dbError("list pieces", err)
	}
	return listings, total, nil
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM art_pieces WHERE id = $1`, id)
	if err != nil {
		return dbError("delete piece", err)
	}
	if tag.RowsAffected() == 0 {
		return notFound(id)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

var _ Store = (*PostgresStore)(nil)
