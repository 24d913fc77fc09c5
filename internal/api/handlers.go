package api

import (
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	derrors "github.com/matzehuels/dreamscape/pkg/errors"
	"github.com/matzehuels/dreamscape/pkg/gallery"
	"github.com/matzehuels/dreamscape/pkg/ledger"
	"github.com/matzehuels/dreamscape/pkg/pipeline"
	"github.com/matzehuels/dreamscape/pkg/scene"
	"github.com/matzehuels/dreamscape/pkg/shapes"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"service":   serviceName,
		"timestamp": s.now().UTC().Format(time.RFC3339Nano),
	})
}

type generateBody struct {
	Title         *string `json:"title"`
	Description   string  `json:"description"`
	SourceType    string  `json:"source_type"`
	WalletAddress string  `json:"wallet_address"`
	BlockStart    *int64  `json:"block_start"`
	BlockEnd      *int64  `json:"block_end"`
	TokenMint     string  `json:"token_mint"`
	Style         string  `json:"style"`
	Width         *int    `json:"width"`
	Height        *int    `json:"height"`
}

func (b generateBody) request() (pipeline.Request, error) {
	req := pipeline.Request{Description: b.Description}

	req.Title = pipeline.DefaultTitle
	if b.Title != nil {
		if *b.Title == "" {
			return req, derrors.New(derrors.ErrCodeInvalidInput, "title must not be empty")
		}
		req.Title = *b.Title
	}

	req.SourceType = gallery.SourceBlock
	if b.SourceType != "" {
		st, err := gallery.ParseSourceType(b.SourceType)
		if err != nil {
			return req, derrors.Wrap(derrors.ErrCodeInvalidInput, err, "%v", err)
		}
		req.SourceType = st
	}

	var err error
	if req.Style, err = parseStyle(b.Style, pipeline.DefaultStyle); err != nil {
		return req, err
	}
	if req.Width, err = dimension("width", b.Width); err != nil {
		return req, err
	}
	if req.Height, err = dimension("height", b.Height); err != nil {
		return req, err
	}

	req.Source = ledger.Source{Wallet: b.WalletAddress, TokenMint: b.TokenMint}
	for name, v := range map[string]*int64{"block_start": b.BlockStart, "block_end": b.BlockEnd} {
		if v != nil && *v <= 0 {
			return req, derrors.New(derrors.ErrCodeInvalidInput, "%s must be positive", name)
		}
	}
	if b.BlockStart != nil && b.BlockEnd != nil {
		req.Source.BlockRange = &ledger.BlockRange{Start: uint64(*b.BlockStart), End: uint64(*b.BlockEnd)}
	}
	return req, nil
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var body generateBody
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, s.logger, err)
		return
	}
	req, err := body.request()
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	s.generate(w, r, req)
}

func (s *Server) handleBlock(w http.ResponseWriter, r *http.Request) {
	slot, err := strconv.ParseUint(chi.URLParam(r, "slot"), 10, 64)
	if err != nil {
		writeError(w, s.logger, derrors.New(derrors.ErrCodeInvalidInput, "Invalid slot number"))
		return
	}
	q := r.URL.Query()

	n, err := intParam(q, "range", pipeline.DefaultBlockRange)
	if err == nil {
		err = derrors.ValidateBlockRange(n)
	}
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	style, width, height, err := renderParams(q, pipeline.DefaultStyle)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	s.generate(w, r, pipeline.BlockRequest(slot, n, style, width, height))
}

func (s *Server) handleWallet(w http.ResponseWriter, r *http.Request) {
	address := chi.URLParam(r, "address")
	style, width, height, err := renderParams(r.URL.Query(), pipeline.DefaultWalletStyle)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	s.generate(w, r, pipeline.WalletRequest(address, style, width, height))
}

func (s *Server) generate(w http.ResponseWriter, r *http.Request, req pipeline.Request) {
	res, err := s.runner.Generate(r.Context(), req)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"piece": res.Piece})
}

type previewBody struct {
	Blocks       []scene.Block       `json:"blocks"`
	Transactions []scene.Transaction `json:"transactions"`
	Style        string              `json:"style"`
	Width        *int                `json:"width"`
	Height       *int                `json:"height"`
	Title        string              `json:"title"`
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	var body previewBody
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, s.logger, err)
		return
	}
	opts := pipeline.ComposeOptions{Title: body.Title, Formats: []string{pipeline.FormatSVG}}
	var err error
	if opts.Style, err = parseStyle(body.Style, pipeline.DefaultStyle); err != nil {
		writeError(w, s.logger, err)
		return
	}
	if opts.Width, err = dimension("width", body.Width); err != nil {
		writeError(w, s.logger, err)
		return
	}
	if opts.Height, err = dimension("height", body.Height); err != nil {
		writeError(w, s.logger, err)
		return
	}

	data := ledger.Data{Blocks: body.Blocks, Transactions: body.Transactions}
	res, err := s.runner.Compose(r.Context(), data, opts)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	if res.Parameters.NonDeterministic {
		w.Header().Set("X-Dreamscape-Nondeterministic", "true")
	}
	w.Header().Set("X-Dreamscape-Seed", res.Metadata.Seed)
	w.Header().Set("Content-Type", "image/svg+xml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Artifacts[pipeline.FormatSVG])
}

func (s *Server) handleListGallery(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var f gallery.Filter

	if name := q.Get("source_type"); name != "" {
		st, err := gallery.ParseSourceType(name)
		if err != nil {
			writeError(w, s.logger, derrors.Wrap(derrors.ErrCodeInvalidInput, err, "%v", err))
			return
		}
		f.SourceType = &st
	}

	var err error
	if f.Limit, err = intParam(q, "limit", gallery.DefaultLimit); err == nil && (f.Limit < 1 || f.Limit > gallery.MaxLimit) {
		err = derrors.New(derrors.ErrCodeInvalidInput, "limit must be between 1 and %d", gallery.MaxLimit)
	}
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	if f.Offset, err = intParam(q, "offset", 0); err == nil && f.Offset < 0 {
		err = derrors.New(derrors.ErrCodeInvalidInput, "offset must not be negative")
	}
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	pieces, total, err := s.store.List(r.Context(), f)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"pieces": pieces, "total": total})
}

func (s *Server) handleGetPiece(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := derrors.ValidatePieceID(id); err != nil {
		writeError(w, s.logger, err)
		return
	}
	piece, err := s.store.Get(r.Context(), id)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"piece": piece})
}

func (s *Server) handleDeletePiece(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := derrors.ValidatePieceID(id); err != nil {
		writeError(w, s.logger, err)
		return
	}
	if err := s.store.Delete(r.Context(), id); err != nil {
		writeError(w, s.logger, err)
		return
	}
	if err := s.artifacts.Remove(id); err != nil {
		s.logger.Warn("remove artifacts", "id", id, "err", err)
	}
	s.logger.Info("deleted piece", "id", id)
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

// renderParams reads the style, width and height query parameters.
func renderParams(q url.Values, defaultStyle shapes.Style) (shapes.Style, int, int, error) {
	style, err := parseStyle(q.Get("style"), defaultStyle)
	if err != nil {
		return 0, 0, 0, err
	}
	width, err := intParam(q, "width", pipeline.DefaultWidth)
	if err == nil {
		err = derrors.ValidateDimension("width", width)
	}
	if err != nil {
		return 0, 0, 0, err
	}
	height, err := intParam(q, "height", pipeline.DefaultHeight)
	if err == nil {
		err = derrors.ValidateDimension("height", height)
	}
	if err != nil {
		return 0, 0, 0, err
	}
	return style, width, height, nil
}

func parseStyle(name string, def shapes.Style) (shapes.Style, error) {
	if name == "" {
		return def, nil
	}
	return derrors.ValidateStyle(name)
}

// dimension returns the default for a missing value and validates the rest.
func dimension(name string, v *int) (int, error) {
	if v == nil {
		if name == "width" {
			return pipeline.DefaultWidth, nil
		}
		return pipeline.DefaultHeight, nil
	}
	if err := derrors.ValidateDimension(name, *v); err != nil {
		return 0, err
	}
	return *v, nil
}

func intParam(q url.Values, name string, def int) (int, error) {
	raw := q.Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, derrors.New(derrors.ErrCodeInvalidInput, "%s must be an integer", name)
	}
	return v, nil
}
