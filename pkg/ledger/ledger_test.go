package ledger

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	derrors "github.com/matzehuels/dreamscape/pkg/errors"
	"github.com/matzehuels/dreamscape/pkg/httputil"
	"github.com/matzehuels/dreamscape/pkg/ledger/ledgertest"
	"github.com/matzehuels/dreamscape/pkg/scene"
)

const testWallet = "9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM"

func newTestNode(t *testing.T) *ledgertest.Node {
	t.Helper()
	n := ledgertest.NewNode()
	t.Cleanup(n.Close)
	n.Slot = 1000
	for slot := uint64(990); slot <= 1000; slot++ {
		if slot == 997 {
			continue // skipped slot
		}
		n.Blocks[slot] = ledgertest.Block{
			Blockhash:  "hash" + string(rune('a'+slot-990)),
			ParentSlot: slot - 1,
			BlockTime:  1700000000 + int64(slot),
			Signatures: make([]string, int(slot%7)),
		}
	}
	n.Wallets[testWallet] = []ledgertest.Signature{
		{Signature: "sigA", Slot: 999},
		{Signature: "sigB", Slot: 998, Failed: true},
		{Signature: "sigC", Slot: 995},
	}
	return n
}

func newTestClient(n *ledgertest.Node, opts ...Option) *Client {
	opts = append([]Option{WithRetry(2, time.Millisecond)}, opts...)
	return NewClient(n.URL(), opts...)
}

func TestNewClientDefaults(t *testing.T) {
	c := NewClient("")
	if c.URL() != DefaultRPCURL {
		t.Errorf("URL() = %q, want %q", c.URL(), DefaultRPCURL)
	}
	if c.commitment != "confirmed" {
		t.Errorf("commitment = %q", c.commitment)
	}
	if c.batchSize != 10 || c.walletLimit != 50 {
		t.Errorf("batchSize, walletLimit = %d, %d", c.batchSize, c.walletLimit)
	}
	if c.host != "api.mainnet-beta.solana.com" {
		t.Errorf("host = %q", c.host)
	}
}

func TestNewClientIgnoresInvalidOptions(t *testing.T) {
	c := NewClient("http://localhost", WithBatchSize(0), WithWalletLimit(-1), WithCommitment(""))
	if c.batchSize != defaultBatchSize || c.walletLimit != defaultWalletLimit || c.commitment != defaultCommitment {
		t.Errorf("options with zero values changed defaults: %+v", c)
	}
}

func TestSlot(t *testing.T) {
	n := newTestNode(t)
	slot, err := newTestClient(n).Slot(context.Background())
	if err != nil {
		t.Fatalf("Slot() error: %v", err)
	}
	if slot != 1000 {
		t.Errorf("Slot() = %d, want 1000", slot)
	}
}

func TestReadBlock(t *testing.T) {
	n := newTestNode(t)
	b, err := newTestClient(n).ReadBlock(context.Background(), 993)
	if err != nil {
		t.Fatalf("ReadBlock() error: %v", err)
	}
	ts := int64(1700000993)
	want := scene.Block{Slot: 993, Blockhash: "hashd", ParentSlot: 992, TransactionCount: 993 % 7, Timestamp: &ts}
	if diff := cmp.Diff(want, b); diff != "" {
		t.Errorf("ReadBlock() mismatch (-want +got):\n%s", diff)
	}
}

func TestReadBlockSkipped(t *testing.T) {
	n := newTestNode(t)
	_, err := newTestClient(n).ReadBlock(context.Background(), 997)
	if !derrors.Is(err, derrors.ErrCodeChainRead) {
		t.Fatalf("ReadBlock(skipped) error = %v, want CHAIN_READ", err)
	}
	if n.Calls("getBlock") != 1 {
		t.Errorf("skipped slot was retried: %d calls", n.Calls("getBlock"))
	}
	var rpcErr *RPCError
	if !errors.As(err, &rpcErr) || !rpcErr.Skipped() {
		t.Errorf("ReadBlock(skipped) error = %v, want a skipped-slot RPCError in the chain", err)
	}
}

func TestRPCErrorSkipped(t *testing.T) {
	tests := []struct {
		code int
		want bool
	}{
		{-32007, true},
		{-32009, true},
		{-32005, false},
		{-32602, false},
	}
	for _, tt := range tests {
		if got := (&RPCError{Code: tt.code}).Skipped(); got != tt.want {
			t.Errorf("RPCError{Code: %d}.Skipped() = %v, want %v", tt.code, got, tt.want)
		}
	}
}

func TestReadBlockUsesCache(t *testing.T) {
	n := newTestNode(t)
	hc, err := httputil.NewCache(t.TempDir(), time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	c := newTestClient(n, WithCache(hc))

	first, err := c.ReadBlock(context.Background(), 995)
	if err != nil {
		t.Fatal(err)
	}
	second, err := c.ReadBlock(context.Background(), 995)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("cached block differs:\n%s", diff)
	}
	if got := n.Calls("getBlock"); got != 1 {
		t.Errorf("getBlock calls = %d, want 1", got)
	}
}

func TestReadBlockIgnoresCorruptCache(t *testing.T) {
	n := newTestNode(t)
	dir := t.TempDir()
	hc, err := httputil.NewCache(dir, 0)
	if err != nil {
		t.Fatal(err)
	}
	c := newTestClient(n, WithCache(hc))

	want, err := c.ReadBlock(context.Background(), 995)
	if err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) != 1 {
		t.Fatalf("cache dir entries = %d, %v; want 1", len(entries), err)
	}
	if err := os.WriteFile(filepath.Join(dir, entries[0].Name()), []byte(`{"slot":995,"blockh`), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := c.ReadBlock(context.Background(), 995)
	if err != nil {
		t.Fatalf("ReadBlock() error: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ReadBlock() after corruption mismatch (-want +got):\n%s", diff)
	}
	if calls := n.Calls("getBlock"); calls != 2 {
		t.Errorf("getBlock calls = %d, want 2 (corrupt entry refetched)", calls)
	}

	again, err := c.ReadBlock(context.Background(), 995)
	if err != nil || again.Blockhash != want.Blockhash {
		t.Errorf("ReadBlock() = %+v, %v; want the rewritten entry", again, err)
	}
	if calls := n.Calls("getBlock"); calls != 2 {
		t.Errorf("getBlock calls = %d, want 2 after the entry was rewritten", calls)
	}
}

func TestReadBlockRange(t *testing.T) {
	n := newTestNode(t)
	blocks, err := newTestClient(n, WithBatchSize(3)).ReadBlockRange(context.Background(), 994, 1000)
	if err != nil {
		t.Fatalf("ReadBlockRange() error: %v", err)
	}

	var slots []uint64
	for _, b := range blocks {
		slots = append(slots, b.Slot)
	}
	want := []uint64{994, 995, 996, 998, 999, 1000}
	if diff := cmp.Diff(want, slots); diff != "" {
		t.Errorf("slots mismatch (-want +got):\n%s", diff)
	}
}

func TestReadBlockRangeAllMissing(t *testing.T) {
	n := newTestNode(t)
	blocks, err := newTestClient(n).ReadBlockRange(context.Background(), 5000, 5003)
	if err != nil {
		t.Fatalf("ReadBlockRange() error: %v", err)
	}
	if len(blocks) != 0 {
		t.Errorf("got %d blocks, want 0", len(blocks))
	}
}

func TestReadBlockRangeInverted(t *testing.T) {
	n := newTestNode(t)
	_, err := newTestClient(n).ReadBlockRange(context.Background(), 10, 5)
	if !derrors.Is(err, derrors.ErrCodeInvalidInput) {
		t.Errorf("error = %v, want INVALID_INPUT", err)
	}
}

func TestReadBlockRangeCancelled(t *testing.T) {
	n := newTestNode(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := newTestClient(n).ReadBlockRange(ctx, 990, 1000); err == nil {
		t.Error("expected error for cancelled context")
	}
}

func TestRetryOnServerError(t *testing.T) {
	n := newTestNode(t)
	n.FailStatus = http.StatusServiceUnavailable
	n.FailCount = 1

	slot, err := newTestClient(n).Slot(context.Background())
	if err != nil {
		t.Fatalf("Slot() error after one transient failure: %v", err)
	}
	if slot != 1000 {
		t.Errorf("Slot() = %d", slot)
	}
	if got := n.Calls("getSlot"); got != 2 {
		t.Errorf("getSlot calls = %d, want 2", got)
	}
}

func TestRateLimited(t *testing.T) {
	n := newTestNode(t)
	n.FailStatus = http.StatusTooManyRequests
	n.FailCount = 5

	_, err := newTestClient(n).Slot(context.Background())
	var rl *derrors.RateLimitedError
	if !errors.As(err, &rl) {
		t.Fatalf("error = %v, want RateLimitedError in chain", err)
	}
}

func TestReadWalletTransactions(t *testing.T) {
	n := newTestNode(t)
	txs, err := newTestClient(n).ReadWalletTransactions(context.Background(), testWallet, 2)
	if err != nil {
		t.Fatalf("ReadWalletTransactions() error: %v", err)
	}
	want := []scene.Transaction{
		{Signature: "sigA", Slot: 999, Accounts: []string{}, Success: true},
		{Signature: "sigB", Slot: 998, Accounts: []string{}, Success: false},
	}
	if diff := cmp.Diff(want, txs); diff != "" {
		t.Errorf("transactions mismatch (-want +got):\n%s", diff)
	}
}

func TestReadWalletTransactionsInvalidAddress(t *testing.T) {
	n := newTestNode(t)
	_, err := newTestClient(n).ReadWalletTransactions(context.Background(), "not-an-address", 10)
	if !derrors.Is(err, derrors.ErrCodeInvalidAddress) {
		t.Errorf("error = %v, want INVALID_ADDRESS", err)
	}
	if n.Total() != 0 {
		t.Errorf("invalid address reached the node")
	}
}

func TestReadChainData(t *testing.T) {
	tests := []struct {
		name       string
		src        Source
		wantBlocks int
		wantTxs    int
		wantKind   string
	}{
		{"block range", Source{BlockRange: &BlockRange{Start: 990, End: 994}}, 5, 0, "block"},
		{"wallet", Source{Wallet: testWallet}, 0, 3, "wallet"},
		{"both", Source{Wallet: testWallet, BlockRange: &BlockRange{Start: 996, End: 998}}, 2, 3, "mixed"},
		{"latest", Source{}, 5, 0, "latest"},
		{"empty range falls back", Source{BlockRange: &BlockRange{Start: 5000, End: 5001}}, 5, 0, "block"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := newTestNode(t)
			data, err := newTestClient(n).ReadChainData(context.Background(), tt.src)
			if err != nil {
				t.Fatalf("ReadChainData() error: %v", err)
			}
			if len(data.Blocks) != tt.wantBlocks {
				t.Errorf("blocks = %d, want %d", len(data.Blocks), tt.wantBlocks)
			}
			if len(data.Transactions) != tt.wantTxs {
				t.Errorf("transactions = %d, want %d", len(data.Transactions), tt.wantTxs)
			}
			if got := tt.src.Kind(); got != tt.wantKind {
				t.Errorf("Kind() = %q, want %q", got, tt.wantKind)
			}
		})
	}
}

func TestReadChainDataNothingAvailable(t *testing.T) {
	n := ledgertest.NewNode()
	defer n.Close()
	n.Slot = 42

	_, err := newTestClient(n).ReadChainData(context.Background(), Source{})
	if !derrors.Is(err, derrors.ErrCodeChainRead) {
		t.Errorf("error = %v, want CHAIN_READ", err)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	ts := int64(1700000000)
	data := Data{
		Blocks:       []scene.Block{{Slot: 7, Blockhash: "abc", ParentSlot: 6, TransactionCount: 3, Timestamp: &ts}},
		Transactions: []scene.Transaction{{Signature: "s", Slot: 7, Accounts: []string{"a"}, Success: true}},
	}
	path := filepath.Join(t.TempDir(), "snap.json")
	if err := SaveSnapshot(path, data); err != nil {
		t.Fatalf("SaveSnapshot() error: %v", err)
	}
	got, err := LoadSnapshot(path)
	if err != nil {
		t.Fatalf("LoadSnapshot() error: %v", err)
	}
	if diff := cmp.Diff(data, got); diff != "" {
		t.Errorf("snapshot mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadSnapshotMissing(t *testing.T) {
	_, err := LoadSnapshot(filepath.Join(t.TempDir(), "nope.json"))
	if !derrors.Is(err, derrors.ErrCodeInvalidInput) {
		t.Errorf("error = %v, want INVALID_INPUT", err)
	}
}
