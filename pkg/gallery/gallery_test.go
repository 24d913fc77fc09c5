package gallery

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	derrors "github.com/matzehuels/dreamscape/pkg/errors"
	"github.com/matzehuels/dreamscape/pkg/ledger"
	"github.com/matzehuels/dreamscape/pkg/scene"
	"github.com/matzehuels/dreamscape/pkg/shapes"
)

func testParameters(t *testing.T, style shapes.Style) scene.VisualParameters {
	t.Helper()
	ts := int64(1700000000)
	blocks := []scene.Block{{Slot: 10, Blockhash: "9f3a1c77e2", ParentSlot: 9, TransactionCount: 42, Timestamp: &ts}}
	return scene.Compose(blocks, nil, style, 800, 600)
}

func testPiece(t *testing.T, title string, src SourceType, style shapes.Style) *Piece {
	return &Piece{
		Title:       title,
		Description: "test piece",
		SourceType:  src,
		SourceData:  ledger.Source{BlockRange: &ledger.BlockRange{Start: 10, End: 10}},
		Parameters:  testParameters(t, style),
		SVGURL:      "http://localhost:3300/gallery/x/artwork.svg",
		PNGURL:      "http://localhost:3300/gallery/x/artwork.png",
		Metadata: Metadata{
			GenerationTimeMS: 12,
			SourceBlockCount: 1,
			AlgorithmVersion: scene.AlgorithmVersion,
			Seed:             "9f3a1c77e2",
		},
	}
}

// runStoreTests exercises the Store contract against any backend.
func runStoreTests(t *testing.T, open func(t *testing.T) Store) {
	ctx := context.Background()

	t.Run("SaveGet", func(t *testing.T) {
		s := open(t)
		p := testPiece(t, "Block #10", SourceBlock, shapes.Geometric)
		if err := s.Save(ctx, p); err != nil {
			t.Fatalf("Save() error: %v", err)
		}
		if err := derrors.ValidatePieceID(p.ID); err != nil {
			t.Errorf("Save() assigned id %q: %v", p.ID, err)
		}
		if p.CreatedAt.IsZero() {
			t.Error("Save() did not set CreatedAt")
		}

		got, err := s.Get(ctx, p.ID)
		if err != nil {
			t.Fatalf("Get() error: %v", err)
		}
		if diff := cmp.Diff(p, got); diff != "" {
			t.Errorf("Get() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("GetMissing", func(t *testing.T) {
		s := open(t)
		_, err := s.Get(ctx, NewID())
		if !IsNotFound(err) {
			t.Errorf("Get() error = %v, want not found", err)
		}
		if derrors.GetCode(err) != derrors.ErrCodePieceNotFound {
			t.Errorf("code = %q", derrors.GetCode(err))
		}
	})

	t.Run("List", func(t *testing.T) {
		s := open(t)
		base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		kinds := []SourceType{SourceBlock, SourceWallet, SourceBlock, SourceBlock, SourceWallet}
		var ids []string
		for i, k := range kinds {
			p := testPiece(t, "piece", k, shapes.Wave)
			p.CreatedAt = base.Add(time.Duration(i) * time.Minute)
			if err := s.Save(ctx, p); err != nil {
				t.Fatal(err)
			}
			ids = append(ids, p.ID)
		}

		all, total, err := s.List(ctx, Filter{})
		if err != nil {
			t.Fatalf("List() error: %v", err)
		}
		if total != 5 || len(all) != 5 {
			t.Fatalf("List() = %d listings, total %d", len(all), total)
		}
		if all[0].ID != ids[4] || all[4].ID != ids[0] {
			t.Errorf("List() not newest first: %v", all)
		}
		if all[0].Style != shapes.Wave {
			t.Errorf("Style = %v, want wave", all[0].Style)
		}

		block := SourceBlock
		page, total, err := s.List(ctx, Filter{SourceType: &block, Limit: 2, Offset: 1})
		if err != nil {
			t.Fatalf("List(filter) error: %v", err)
		}
		if total != 3 {
			t.Errorf("filtered total = %d, want 3", total)
		}
		if len(page) != 2 || page[0].ID != ids[2] || page[1].ID != ids[0] {
			t.Errorf("filtered page = %v", page)
		}
		for _, l := range page {
			if l.SourceType != SourceBlock {
				t.Errorf("listing %s has source type %v", l.ID, l.SourceType)
			}
		}
	})

	t.Run("ListEmpty", func(t *testing.T) {
		s := open(t)
		got, total, err := s.List(ctx, Filter{Offset: 50})
		if err != nil {
			t.Fatal(err)
		}
		if total != 0 || got == nil || len(got) != 0 {
			t.Errorf("List() = %v, %d; want empty non-nil slice", got, total)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		s := open(t)
		p := testPiece(t, "to delete", SourceCustom, shapes.Organic)
		if err := s.Save(ctx, p); err != nil {
			t.Fatal(err)
		}
		if err := s.Delete(ctx, p.ID); err != nil {
			t.Fatalf("Delete() error: %v", err)
		}
		if _, err := s.Get(ctx, p.ID); !IsNotFound(err) {
			t.Errorf("Get() after delete error = %v", err)
		}
		if err := s.Delete(ctx, p.ID); !IsNotFound(err) {
			t.Errorf("second Delete() error = %v, want not found", err)
		}
	})
}

func TestSQLiteStore(t *testing.T) {
	runStoreTests(t, func(t *testing.T) Store {
		s, err := OpenSQLite(context.Background(), ":memory:")
		if err != nil {
			t.Fatalf("OpenSQLite() error: %v", err)
		}
		t.Cleanup(func() { s.Close() })
		return s
	})
}

func TestSQLiteStoreFile(t *testing.T) {
	ctx := context.Background()
	path := t.TempDir() + "/nested/dreamscape.db"

	s, err := Open(ctx, DriverSQLite, path)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	p := testPiece(t, "persisted", SourceBlock, shapes.Fractal)
	if err := s.Save(ctx, p); err != nil {
		t.Fatal(err)
	}
	s.Close()

	s, err = Open(ctx, DriverSQLite, path)
	if err != nil {
		t.Fatalf("reopen error: %v", err)
	}
	defer s.Close()
	if _, err := s.Get(ctx, p.ID); err != nil {
		t.Errorf("Get() after reopen error: %v", err)
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	if _, err := Open(context.Background(), "oracle", ""); err == nil {
		t.Error("expected error for unknown driver")
	}
}

func TestFilterNormalized(t *testing.T) {
	tests := []struct {
		in   Filter
		want Filter
	}{
		{Filter{}, Filter{Limit: 20}},
		{Filter{Limit: 500, Offset: -3}, Filter{Limit: 100}},
		{Filter{Limit: 5, Offset: 10}, Filter{Limit: 5, Offset: 10}},
	}
	for _, tt := range tests {
		if got := tt.in.normalized(); got != tt.want {
			t.Errorf("normalized(%+v) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestSourceTypeText(t *testing.T) {
	for _, name := range SourceTypeNames() {
		st, err := ParseSourceType(name)
		if err != nil {
			t.Fatalf("ParseSourceType(%q) error: %v", name, err)
		}
		if st.String() != name {
			t.Errorf("String() = %q, want %q", st.String(), name)
		}
	}
	if _, err := ParseSourceType("nft"); err == nil {
		t.Error("expected error for unknown source type")
	}

	var got struct {
		Type SourceType `json:"type"`
	}
	if err := json.Unmarshal([]byte(`{"type":"wallet"}`), &got); err != nil || got.Type != SourceWallet {
		t.Errorf("unmarshal = %v, %v", got.Type, err)
	}
	if err := json.Unmarshal([]byte(`{"type":"bogus"}`), &got); err == nil {
		t.Error("expected error unmarshaling unknown source type")
	}
}

func TestPieceListing(t *testing.T) {
	p := testPiece(t, "listing", SourceWallet, shapes.Network)
	p.ID = NewID()
	l := p.Listing()
	if l.ID != p.ID || l.Style != shapes.Network || l.SourceType != SourceWallet || l.SVGURL != p.SVGURL {
		t.Errorf("Listing() = %+v", l)
	}
}
