package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/dreamscape/pkg/artifact"
	"github.com/matzehuels/dreamscape/pkg/gallery"
	"github.com/matzehuels/dreamscape/pkg/ledger"
	"github.com/matzehuels/dreamscape/pkg/ledger/ledgertest"
	"github.com/matzehuels/dreamscape/pkg/pipeline"
)

const testWallet = "9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM"

type fakeRasterizer struct{}

func (fakeRasterizer) ToPNG(context.Context, []byte, int, int) ([]byte, error) {
	return []byte("\x89PNG"), nil
}

func (fakeRasterizer) ToPDF(context.Context, []byte) ([]byte, error) {
	return []byte("%PDF"), nil
}

type testServer struct {
	*httptest.Server
	node  *ledgertest.Node
	store gallery.Store
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()

	node := ledgertest.NewNode()
	t.Cleanup(node.Close)
	node.Slot = 500
	for slot := uint64(400); slot <= 500; slot++ {
		node.Blocks[slot] = ledgertest.Block{
			Blockhash:  "GHtXQBsoZHVnNFa9YevAzFr17DJjgHXk3ycTKD5xD3Zi",
			ParentSlot: slot - 1,
			BlockTime:  1700000000,
			Signatures: []string{"a", "b", "c"},
		}
	}
	node.Wallets[testWallet] = []ledgertest.Signature{{Signature: "walletsig", Slot: 450}}

	store, err := gallery.OpenSQLite(ctx, ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })

	artifacts, err := artifact.NewStore(filepath.Join(t.TempDir(), "gallery"), "http://example.test")
	if err != nil {
		t.Fatal(err)
	}

	logger := log.New(io.Discard)
	reader := ledger.NewClient(node.URL(), ledger.WithRetry(1, time.Millisecond))
	runner := pipeline.NewRunner(reader, store, artifacts, nil, nil, logger)
	runner.Rasterizer = fakeRasterizer{}

	srv := httptest.NewServer(New(runner, logger).Handler())
	t.Cleanup(srv.Close)
	return &testServer{Server: srv, node: node, store: store}
}

func (ts *testServer) do(t *testing.T, method, path string, body any) (*http.Response, []byte) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		rd = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, ts.URL+path, rd)
	if err != nil {
		t.Fatal(err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp, data
}

type pieceResponse struct {
	Piece gallery.Piece `json:"piece"`
}

type errorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		t.Fatalf("decode %s: %v", data, err)
	}
	return v
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	resp, data := ts.do(t, http.MethodGet, "/health", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	body := decode[map[string]string](t, data)
	if body["status"] != "healthy" || body["service"] != "dreamscape" {
		t.Errorf("body = %v", body)
	}
	if _, err := time.Parse(time.RFC3339Nano, body["timestamp"]); err != nil {
		t.Errorf("timestamp %q: %v", body["timestamp"], err)
	}
	if resp.Header.Get("Content-Type") != "application/json" {
		t.Errorf("Content-Type = %q", resp.Header.Get("Content-Type"))
	}
}

func TestBlockArt(t *testing.T) {
	ts := newTestServer(t)
	resp, data := ts.do(t, http.MethodGet, "/api/block/420?range=3&style=fractal&width=512&height=512", nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d: %s", resp.StatusCode, data)
	}
	p := decode[pieceResponse](t, data).Piece
	if p.Title != "Block #420-422" {
		t.Errorf("Title = %q", p.Title)
	}
	if p.Description != "Generated from Solana blocks 420 to 422" {
		t.Errorf("Description = %q", p.Description)
	}
	if p.Metadata.SourceBlockCount != 3 {
		t.Errorf("SourceBlockCount = %d", p.Metadata.SourceBlockCount)
	}
	if p.Parameters.Resolution.Width != 512 {
		t.Errorf("Resolution = %+v", p.Parameters.Resolution)
	}
	if !strings.HasPrefix(p.SVGURL, "http://example.test/gallery/"+p.ID) {
		t.Errorf("SVGURL = %q", p.SVGURL)
	}

	// the artifact is served statically
	resp, svg := ts.do(t, http.MethodGet, "/gallery/"+p.ID+"/artwork.svg", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("static status = %d", resp.StatusCode)
	}
	if !bytes.HasPrefix(svg, []byte("<svg")) && !bytes.HasPrefix(svg, []byte("<?xml")) {
		t.Errorf("static body = %.40q", svg)
	}
}

func TestBlockArtValidation(t *testing.T) {
	ts := newTestServer(t)
	tests := []struct {
		path string
		code string
	}{
		{"/api/block/abc", "INVALID_INPUT"},
		{"/api/block/-1", "INVALID_INPUT"},
		{"/api/block/420?range=0", "INVALID_INPUT"},
		{"/api/block/420?range=51", "INVALID_INPUT"},
		{"/api/block/420?style=cubist", "INVALID_STYLE"},
		{"/api/block/420?width=100", "INVALID_SIZE"},
		{"/api/block/420?height=9999", "INVALID_SIZE"},
		{"/api/block/420?width=wide", "INVALID_INPUT"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, data := ts.do(t, http.MethodGet, tt.path, nil)
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", resp.StatusCode)
			}
			if got := decode[errorResponse](t, data).Error.Type; got != tt.code {
				t.Errorf("error type = %q, want %q", got, tt.code)
			}
		})
	}
}

func TestWalletArt(t *testing.T) {
	ts := newTestServer(t)
	resp, data := ts.do(t, http.MethodGet, "/api/wallet/"+testWallet, nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d: %s", resp.StatusCode, data)
	}
	p := decode[pieceResponse](t, data).Piece
	if p.Title != "Wallet: 9WzDXwBb..." {
		t.Errorf("Title = %q", p.Title)
	}
	if p.SourceType != gallery.SourceWallet {
		t.Errorf("SourceType = %v", p.SourceType)
	}
	if p.Parameters.Style.String() != "network" {
		t.Errorf("Style = %v, want network default", p.Parameters.Style)
	}
}

func TestWalletArtInvalidAddress(t *testing.T) {
	ts := newTestServer(t)
	resp, data := ts.do(t, http.MethodGet, "/api/wallet/short", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if got := decode[errorResponse](t, data).Error.Type; got != "INVALID_ADDRESS" {
		t.Errorf("error type = %q", got)
	}
}

func TestGenerate(t *testing.T) {
	ts := newTestServer(t)
	body := map[string]any{
		"title":       "My piece",
		"description": "from two blocks",
		"block_start": 410,
		"block_end":   411,
		"style":       "organic",
		"width":       640,
		"height":      480,
	}
	resp, data := ts.do(t, http.MethodPost, "/api/generate", body)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d: %s", resp.StatusCode, data)
	}
	p := decode[pieceResponse](t, data).Piece
	if p.Title != "My piece" || p.SourceType != gallery.SourceBlock {
		t.Errorf("piece = %q %v", p.Title, p.SourceType)
	}
	if p.SourceData.BlockRange == nil || p.SourceData.BlockRange.End != 411 {
		t.Errorf("SourceData = %+v", p.SourceData)
	}
	if p.Metadata.SourceBlockCount != 2 {
		t.Errorf("SourceBlockCount = %d", p.Metadata.SourceBlockCount)
	}
}

func TestGenerateDefaults(t *testing.T) {
	ts := newTestServer(t)
	resp, data := ts.do(t, http.MethodPost, "/api/generate", map[string]any{})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d: %s", resp.StatusCode, data)
	}
	p := decode[pieceResponse](t, data).Piece
	if p.Title != "Untitled" {
		t.Errorf("Title = %q", p.Title)
	}
	if p.Parameters.Resolution.Width != 1920 || p.Parameters.Resolution.Height != 1080 {
		t.Errorf("Resolution = %+v", p.Parameters.Resolution)
	}
	// no source: the latest six slots are read
	if p.Metadata.SourceBlockCount != 6 {
		t.Errorf("SourceBlockCount = %d, want 6", p.Metadata.SourceBlockCount)
	}
}

func TestGenerateValidation(t *testing.T) {
	ts := newTestServer(t)
	tests := []struct {
		name string
		body map[string]any
		code string
	}{
		{"empty title", map[string]any{"title": ""}, "INVALID_INPUT"},
		{"long title", map[string]any{"title": strings.Repeat("t", 201)}, "INVALID_INPUT"},
		{"bad source type", map[string]any{"source_type": "nft"}, "INVALID_INPUT"},
		{"bad style", map[string]any{"style": "baroque"}, "INVALID_STYLE"},
		{"small width", map[string]any{"width": 10}, "INVALID_SIZE"},
		{"negative block", map[string]any{"block_start": -4, "block_end": 2}, "INVALID_INPUT"},
		{"bad wallet", map[string]any{"wallet_address": "xyz"}, "INVALID_ADDRESS"},
		{"wrong type", map[string]any{"width": "big"}, "INVALID_INPUT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, data := ts.do(t, http.MethodPost, "/api/generate", tt.body)
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want 400 (%s)", resp.StatusCode, data)
			}
			if got := decode[errorResponse](t, data).Error.Type; got != tt.code {
				t.Errorf("error type = %q, want %q", got, tt.code)
			}
		})
	}
}

func TestGalleryLifecycle(t *testing.T) {
	ts := newTestServer(t)
	for _, path := range []string{"/api/block/400?range=1", "/api/block/401?range=1", "/api/wallet/" + testWallet} {
		if resp, data := ts.do(t, http.MethodGet, path, nil); resp.StatusCode != http.StatusCreated {
			t.Fatalf("%s: status %d: %s", path, resp.StatusCode, data)
		}
	}

	type listResponse struct {
		Pieces []gallery.Listing `json:"pieces"`
		Total  int               `json:"total"`
	}

	resp, data := ts.do(t, http.MethodGet, "/api/gallery", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list status = %d", resp.StatusCode)
	}
	all := decode[listResponse](t, data)
	if all.Total != 3 || len(all.Pieces) != 3 {
		t.Fatalf("list = %d pieces, total %d", len(all.Pieces), all.Total)
	}

	_, data = ts.do(t, http.MethodGet, "/api/gallery?source_type=block&limit=1", nil)
	blocks := decode[listResponse](t, data)
	if blocks.Total != 2 || len(blocks.Pieces) != 1 || blocks.Pieces[0].SourceType != gallery.SourceBlock {
		t.Errorf("filtered list = %+v", blocks)
	}

	id := all.Pieces[0].ID
	resp, data = ts.do(t, http.MethodGet, "/api/gallery/"+id, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get status = %d", resp.StatusCode)
	}
	if got := decode[pieceResponse](t, data).Piece.ID; got != id {
		t.Errorf("get id = %q", got)
	}

	resp, data = ts.do(t, http.MethodDelete, "/api/gallery/"+id, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete status = %d", resp.StatusCode)
	}
	if !decode[map[string]bool](t, data)["deleted"] {
		t.Errorf("delete body = %s", data)
	}

	resp, data = ts.do(t, http.MethodGet, "/api/gallery/"+id, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("get after delete status = %d", resp.StatusCode)
	}
	if got := decode[errorResponse](t, data).Error.Type; got != "PIECE_NOT_FOUND" {
		t.Errorf("error type = %q", got)
	}
	if resp, _ := ts.do(t, http.MethodGet, "/gallery/"+id+"/artwork.svg", nil); resp.StatusCode != http.StatusNotFound {
		t.Errorf("artifact still served after delete: %d", resp.StatusCode)
	}
	if resp, _ := ts.do(t, http.MethodDelete, "/api/gallery/"+id, nil); resp.StatusCode != http.StatusNotFound {
		t.Errorf("second delete status = %d", resp.StatusCode)
	}
}

func TestGalleryListValidation(t *testing.T) {
	ts := newTestServer(t)
	for _, q := range []string{"limit=0", "limit=101", "offset=-1", "source_type=nft", "limit=x"} {
		resp, _ := ts.do(t, http.MethodGet, "/api/gallery?"+q, nil)
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", q, resp.StatusCode)
		}
	}
}

func TestGetPieceInvalidID(t *testing.T) {
	ts := newTestServer(t)
	resp, data := ts.do(t, http.MethodGet, "/api/gallery/not-a-uuid", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d", resp.StatusCode)
	}
	if got := decode[errorResponse](t, data).Error.Type; got != "INVALID_INPUT" {
		t.Errorf("error type = %q", got)
	}
}

func TestPreview(t *testing.T) {
	ts := newTestServer(t)
	body := map[string]any{
		"blocks": []map[string]any{
			{"slot": 1, "blockhash": "abcdef1234567890", "parent_slot": 0, "transaction_count": 12, "timestamp": nil},
		},
		"transactions": []map[string]any{},
		"style":        "wave",
		"width":        300,
		"height":       300,
	}
	resp, data := ts.do(t, http.MethodPost, "/api/preview", body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, data)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("Content-Type = %q", ct)
	}
	if resp.Header.Get("X-Dreamscape-Seed") != "abcdef1234567890" {
		t.Errorf("seed header = %q", resp.Header.Get("X-Dreamscape-Seed"))
	}
	if !bytes.Contains(data, []byte(`id="background"`)) {
		t.Error("preview lacks background")
	}

	// identical input gives identical output
	_, again := ts.do(t, http.MethodPost, "/api/preview", body)
	if !bytes.Equal(data, again) {
		t.Error("preview is not deterministic")
	}

	_, total, err := ts.store.List(context.Background(), gallery.Filter{})
	if err != nil {
		t.Fatal(err)
	}
	if total != 0 {
		t.Errorf("preview persisted %d pieces", total)
	}
	if ts.node.Total() != 0 {
		t.Errorf("preview reached the ledger")
	}
}

func TestPreviewEmptyIsFlagged(t *testing.T) {
	ts := newTestServer(t)
	resp, _ := ts.do(t, http.MethodPost, "/api/preview", map[string]any{"width": 256, "height": 256})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if resp.Header.Get("X-Dreamscape-Nondeterministic") != "true" {
		t.Error("clock-seeded preview not flagged")
	}
}

func TestUnknownRoute(t *testing.T) {
	ts := newTestServer(t)
	resp, data := ts.do(t, http.MethodGet, "/api/nope", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d", resp.StatusCode)
	}
	if got := decode[errorResponse](t, data).Error.Type; got != "NOT_FOUND" {
		t.Errorf("error type = %q", got)
	}
}

func TestChainFailureIs503(t *testing.T) {
	ts := newTestServer(t)
	ts.node.FailStatus = http.StatusBadGateway
	ts.node.FailCount = 1000

	resp, data := ts.do(t, http.MethodGet, "/api/wallet/"+testWallet, nil)
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503 (%s)", resp.StatusCode, data)
	}
	if got := decode[errorResponse](t, data).Error.Type; got != "CHAIN_READ" {
		t.Errorf("error type = %q", got)
	}
}
