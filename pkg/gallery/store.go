// Package gallery persists generated pieces.
//
// Three backends implement [Store]:
//
//   - sqlite: a local file, the default for the CLI and single-node servers
//   - postgres: the art_pieces table with JSONB columns
//   - mongo: the art_pieces collection
//
// [Open] picks the backend from the configured driver.
package gallery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	derrors "github.com/matzehuels/dreamscape/pkg/errors"
)

// ErrNotFound is returned by Get and Delete for an unknown ID.
var ErrNotFound error = derrors.New(derrors.ErrCodePieceNotFound, "piece not found")

// Listing limits.
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Filter selects and pages gallery listings, newest first.
type Filter struct {
	SourceType *SourceType
	Limit      int
	Offset     int
}

func (f Filter) normalized() Filter {
	switch {
	case f.Limit <= 0:
		f.Limit = DefaultLimit
	case f.Limit > MaxLimit:
		f.Limit = MaxLimit
	}
	f.Offset = max(f.Offset, 0)
	return f
}

// Store persists pieces.
type Store interface {
	// Save inserts p. An empty ID is replaced with a new one and a zero
	// CreatedAt with the current time; both are written back to p.
	Save(ctx context.Context, p *Piece) error

	// Get returns the piece with id or ErrNotFound.
	Get(ctx context.Context, id string) (*Piece, error)

	// List returns one page of listings and the total number of matches.
	List(ctx context.Context, f Filter) ([]Listing, int, error)

	// Delete removes the piece with id or returns ErrNotFound.
	Delete(ctx context.Context, id string) error

	Close() error
}

// Drivers accepted by Open.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

// Open connects to the store of driver at url. For sqlite, url is a file
// path or ":memory:".
func Open(ctx context.Context, driver, url string) (Store, error) {
	switch driver {
	case DriverSQLite, "":
		return OpenSQLite(ctx, url)
	case DriverPostgres:
		return OpenPostgres(ctx, url)
	case DriverMongo:
		return OpenMongo(ctx, url)
	default:
		return nil, fmt.Errorf("unknown gallery driver %q", driver)
	}
}

// IsNotFound reports whether err means the piece does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || derrors.Is(err, derrors.ErrCodePieceNotFound)
}

func notFound(id string) error {
	return derrors.Wrap(derrors.ErrCodePieceNotFound, ErrNotFound, "piece %s not found", id)
}

func dbError(op string, err error) error {
	return derrors.Wrap(derrors.ErrCodeDatabase, err, "%s", op)
}

func prepare(p *Piece) {
	if p.ID == "" {
		p.ID = NewID()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	p.CreatedAt = p.CreatedAt.UTC().Truncate(time.Microsecond)
}

// encoded holds the JSON columns of a piece.
type encoded struct {
	source, params, meta []byte
}

func encode(p *Piece) (encoded, error) {
	var e encoded
	var err error
	if e.source, err = json.Marshal(p.SourceData); err != nil {
		return e, fmt.Errorf("encode source data: %w", err)
	}
	if e.params, err = json.Marshal(p.Parameters); err != nil {
		return e, fmt.Errorf("encode parameters: %w", err)
	}
	if e.meta, err = json.Marshal(p.Metadata); err != nil {
		return e, fmt.Errorf("encode metadata: %w", err)
	}
	return e, nil
}

func (e encoded) decode(p *Piece) error {
	if err := json.Unmarshal(e.source, &p.SourceData); err != nil {
		return fmt.Errorf("decode source data: %w", err)
	}
	if err := json.Unmarshal(e.params, &p.Parameters); err != nil {
		return fmt.Errorf("decode parameters: %w", err)
	}
	if err := json.Unmarshal(e.meta, &p.Metadata); err != nil {
		return fmt.Errorf("decode metadata: %w", err)
	}
	return nil
}
