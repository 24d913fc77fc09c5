package pipeline

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/dreamscape/pkg/artifact"
	"github.com/matzehuels/dreamscape/pkg/cache"
	derrors "github.com/matzehuels/dreamscape/pkg/errors"
	"github.com/matzehuels/dreamscape/pkg/gallery"
	"github.com/matzehuels/dreamscape/pkg/ledger"
	"github.com/matzehuels/dreamscape/pkg/observability"
	"github.com/matzehuels/dreamscape/pkg/render"
	"github.com/matzehuels/dreamscape/pkg/scene"
	"github.com/matzehuels/dreamscape/pkg/shapes"
)

// DefaultArtifactTTL is how long rendered bytes stay in the cache.
const DefaultArtifactTTL = 7 * 24 * time.Hour

// Reader reads ledger data. *ledger.Client implements it.
type Reader interface {
	ReadChainData(ctx context.Context, src ledger.Source) (ledger.Data, error)
}

// Rasterizer converts SVG documents. render.Converter implements it.
type Rasterizer interface {
	ToPNG(ctx context.Context, svg []byte, width, height int) ([]byte, error)
	ToPDF(ctx context.Context, svg []byte) ([]byte, error)
}

// Runner executes generations with caching.
//
// The Runner holds no per-request state; multiple goroutines can share one.
// Reader, Store and Artifacts are only needed by Generate. A nil Rasterizer
// disables PNG and PDF output: Generate then stores pieces without a PNG.
type Runner struct {
	Reader     Reader
	Store      gallery.Store
	Artifacts  *artifact.Store
	Cache      cache.Cache
	Keyer      cache.Keyer
	Rasterizer Rasterizer
	Logger     *log.Logger
	TTL        time.Duration
	Composer   scene.Composer
}

// NewRunner creates a runner. A nil cache disables caching, a nil keyer
// uses cache.DefaultKeyer and a nil logger uses log.Default().
func NewRunner(reader Reader, store gallery.Store, artifacts *artifact.Store, c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Reader:    reader,
		Store:     store,
		Artifacts: artifacts,
		Cache:     c,
		Keyer:     keyer,
		Logger:    logger,
		TTL:       DefaultArtifactTTL,
	}
}

// Generate runs read, compose, render and save for req.
func (r *Runner) Generate(ctx context.Context, req Request) (*Result, error) {
	if err := req.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if r.Reader == nil || r.Store == nil || r.Artifacts == nil {
		return nil, derrors.New(derrors.ErrCodeInternal, "runner is not configured for generation")
	}
	start := time.Now()

	// Stage 1: Read
	data, err := r.Reader.ReadChainData(ctx, req.Source)
	if err != nil {
		return nil, err
	}
	r.Logger.Info("read ledger data",
		"source", req.Source.Kind(),
		"blocks", len(data.Blocks),
		"transactions", len(data.Transactions),
		"duration", time.Since(start))

	// Stage 2: Compose
	params := r.compose(ctx, data, req.Style, req.Width, req.Height)

	// Stage 3: Render and write
	id := gallery.NewID()
	formats := []string{FormatSVG}
	if r.Rasterizer != nil {
		formats = append(formats, FormatPNG)
	}
	res := &Result{Parameters: params}
	urls, err := r.renderAndWrite(ctx, id, params, req.Title, formats, res)
	if err != nil {
		r.cleanup(id)
		return nil, err
	}

	res.Metadata = newMetadata(data, params, time.Since(start).Milliseconds())
	doc, err := render.JSON(params, res.Metadata)
	if err != nil {
		r.cleanup(id)
		return nil, derrors.Wrap(derrors.ErrCodeRenderFailed, err, "encode json")
	}
	if _, err := r.Artifacts.Write(id, FormatJSON, doc); err != nil {
		r.cleanup(id)
		return nil, derrors.Wrap(derrors.ErrCodeRenderFailed, err, "write json")
	}
	res.Artifacts[FormatJSON] = doc

	// Stage 4: Save
	piece := &gallery.Piece{
		ID:          id,
		Title:       req.Title,
		Description: req.Description,
		SourceType:  req.SourceType,
		SourceData:  req.Source,
		Parameters:  params,
		SVGURL:      urls[FormatSVG],
		PNGURL:      urls[FormatPNG],
		Metadata:    res.Metadata,
	}
	saveStart := time.Now()
	err = r.Store.Save(ctx, piece)
	observability.Pipeline().OnSaveComplete(ctx, id, time.Since(saveStart), err)
	if err != nil {
		r.cleanup(id)
		return nil, err
	}
	res.Piece = piece

	r.Logger.Info("saved piece",
		"id", id,
		"title", piece.Title,
		"duration", time.Since(start))
	return res, nil
}

// Compose composes and renders data without reading the ledger or saving.
func (r *Runner) Compose(ctx context.Context, data ledger.Data, opts ComposeOptions) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	start := time.Now()
	params := r.compose(ctx, data, opts.Style, opts.Width, opts.Height)

	var renderFormats []string
	wantJSON := false
	for _, f := range opts.Formats {
		if f == FormatJSON {
			wantJSON = true
			continue
		}
		renderFormats = append(renderFormats, f)
	}

	res := &Result{Parameters: params, Artifacts: map[string][]byte{}, CacheHits: map[string]bool{}}
	if len(renderFormats) > 0 {
		artifacts, hits, err := r.Render(ctx, params, opts.Title, renderFormats)
		if err != nil {
			return nil, err
		}
		res.Artifacts, res.CacheHits = artifacts, hits
	}

	res.Metadata = newMetadata(data, params, time.Since(start).Milliseconds())
	if wantJSON {
		doc, err := render.JSON(params, res.Metadata)
		if err != nil {
			return nil, derrors.Wrap(derrors.ErrCodeRenderFailed, err, "encode json")
		}
		res.Artifacts[FormatJSON] = doc
	}
	return res, nil
}

// Render produces the requested formats of p concurrently, each through the
// cache. Supported formats are svg, png and pdf.
func (r *Runner) Render(ctx context.Context, p scene.VisualParameters, title string, formats []string) (map[string][]byte, map[string]bool, error) {
	artifacts := make(map[string][]byte, len(formats))
	hits := make(map[string]bool, len(formats))
	var mu sync.Mutex

	err := r.renderEach(ctx, p, title, formats, func(format string, data []byte, hit bool) error {
		mu.Lock()
		defer mu.Unlock()
		artifacts[format] = data
		hits[format] = hit
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return artifacts, hits, nil
}

// renderEach renders every format in its own goroutine and hands the bytes
// to emit. The first error cancels the remaining formats.
func (r *Runner) renderEach(ctx context.Context, p scene.VisualParameters, title string, formats []string, emit func(format string, data []byte, hit bool) error) error {
	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, formats)
	start := time.Now()

	paramsHash, err := cache.HashJSON(p)
	if err != nil {
		return derrors.Wrap(derrors.ErrCodeRenderFailed, err, "hash parameters")
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, format := range formats {
		g.Go(func() error {
			key := r.Keyer.ArtifactKey(paramsHash, cache.ArtifactKeyOpts{
				Format:  format,
				Width:   p.Resolution.Width,
				Height:  p.Resolution.Height,
				Title:   title,
				Version: scene.AlgorithmVersion,
			})
			data, hit, err := cache.Fetch(gctx, r.Cache, key, "artifact:"+format, r.TTL, func() ([]byte, error) {
				return r.renderFormat(gctx, p, title, format)
			})
			if err != nil {
				return err
			}
			return emit(format, data, hit)
		})
	}
	err = g.Wait()
	hooks.OnRenderComplete(ctx, formats, time.Since(start), err)
	if err != nil {
		return err
	}

	r.Logger.Debug("rendered outputs", "formats", formats, "duration", time.Since(start))
	return nil
}

func (r *Runner) renderFormat(ctx context.Context, p scene.VisualParameters, title, format string) ([]byte, error) {
	svg := render.SVG(p, render.WithTitle(title))
	switch format {
	case FormatSVG:
		return svg, nil
	case FormatPNG, FormatPDF:
		if r.Rasterizer == nil {
			return nil, derrors.New(derrors.ErrCodeRenderFailed, "%s output needs rsvg-convert", format)
		}
		var out []byte
		var err error
		if format == FormatPNG {
			out, err = r.Rasterizer.ToPNG(ctx, svg, p.Resolution.Width, p.Resolution.Height)
		} else {
			out, err = r.Rasterizer.ToPDF(ctx, svg)
		}
		if err != nil {
			return nil, derrors.Wrap(derrors.ErrCodeRenderFailed, err, "render %s", format)
		}
		return out, nil
	default:
		return nil, derrors.New(derrors.ErrCodeInvalidFormat, "unsupported format %q", format)
	}
}

func (r *Runner) renderAndWrite(ctx context.Context, id string, p scene.VisualParameters, title string, formats []string, res *Result) (map[string]string, error) {
	urls := make(map[string]string, len(formats))
	res.Artifacts = make(map[string][]byte, len(formats)+1)
	res.CacheHits = make(map[string]bool, len(formats))
	var mu sync.Mutex

	err := r.renderEach(ctx, p, title, formats, func(format string, data []byte, hit bool) error {
		url, err := r.Artifacts.Write(id, format, data)
		if err != nil {
			return derrors.Wrap(derrors.ErrCodeRenderFailed, err, "write %s", format)
		}
		mu.Lock()
		defer mu.Unlock()
		urls[format] = url
		res.Artifacts[format] = data
		res.CacheHits[format] = hit
		return nil
	})
	return urls, err
}

func (r *Runner) compose(ctx context.Context, data ledger.Data, style shapes.Style, width, height int) scene.VisualParameters {
	start := time.Now()
	p := r.Composer.Compose(data.Blocks, data.Transactions, style, width, height)

	count := 0
	for _, s := range p.Shapes {
		count += s.Count
	}
	d := time.Since(start)
	observability.Pipeline().OnCompose(ctx, style.String(), count, d)
	if p.NonDeterministic {
		r.Logger.Warn("no ledger data, seed taken from the clock", "seed", p.Palette.SourceHash)
	}
	r.Logger.Debug("composed scene", "style", style, "layout", p.Composition.Type, "shapes", count, "duration", d)
	return p
}

func (r *Runner) cleanup(id string) {
	if err := r.Artifacts.Remove(id); err != nil {
		r.Logger.Warn("remove artifacts", "id", id, "err", err)
	}
}

// Close releases the cache and the gallery store.
func (r *Runner) Close() error {
	var errs []error
	if r.Cache != nil {
		errs = append(errs, r.Cache.Close())
	}
	if r.Store != nil {
		errs = append(errs, r.Store.Close())
	}
	return errors.Join(errs...)
}
