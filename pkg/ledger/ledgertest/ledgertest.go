// Package ledgertest provides an in-process JSON-RPC node for tests.
package ledgertest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
)

// Block is a block served by the fake node.
type Block struct {
	Blockhash  string
	ParentSlot uint64
	BlockTime  int64
	Signatures []string
}

// Signature is a wallet signature served by the fake node.
type Signature struct {
	Signature string
	Slot      uint64
	Failed    bool
}

// Node is a fake ledger node. Slots missing from Blocks answer with the
// "slot skipped" error.
type Node struct {
	Slot    uint64
	Blocks  map[uint64]Block
	Wallets map[string][]Signature

	// FailStatus, when non-zero, is returned for the next FailCount calls.
	FailStatus int
	FailCount  int

	mu    sync.Mutex
	calls map[string]int
	total atomic.Int64

	server *httptest.Server
}

// NewNode starts a node. Close it when done.
func NewNode() *Node {
	n := &Node{
		Blocks:  map[uint64]Block{},
		Wallets: map[string][]Signature{},
		calls:   map[string]int{},
	}
	n.server = httptest.NewServer(http.HandlerFunc(n.serve))
	return n
}

// URL is the RPC endpoint.
func (n *Node) URL() string { return n.server.URL }

// Close shuts the server down.
func (n *Node) Close() { n.server.Close() }

// Calls returns how often method was called.
func (n *Node) Calls(method string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.calls[method]
}

// Total returns the number of requests received.
func (n *Node) Total() int { return int(n.total.Load()) }

type request struct {
	ID     uint64            `json:"id"`
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (n *Node) serve(w http.ResponseWriter, r *http.Request) {
	n.total.Add(1)

	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	n.mu.Lock()
	n.calls[req.Method]++
	fail := n.FailCount > 0
	if fail {
		n.FailCount--
	}
	n.mu.Unlock()

	if fail {
		w.WriteHeader(n.FailStatus)
		return
	}

	result, rerr := n.dispatch(req)
	resp := map[string]any{"jsonrpc": "2.0", "id": req.ID}
	if rerr != nil {
		resp["error"] = rerr
	} else {
		resp["result"] = result
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (n *Node) dispatch(req request) (any, *rpcError) {
	switch req.Method {
	case "getSlot":
		return n.Slot, nil
	case "getBlock":
		var slot uint64
		if len(req.Params) == 0 || json.Unmarshal(req.Params[0], &slot) != nil {
			return nil, &rpcError{Code: -32602, Message: "invalid params"}
		}
		b, ok := n.Blocks[slot]
		if !ok {
			return nil, &rpcError{Code: -32007, Message: "slot was skipped"}
		}
		sigs := b.Signatures
		if sigs == nil {
			sigs = []string{}
		}
		return map[string]any{
			"blockhash":  b.Blockhash,
			"parentSlot": b.ParentSlot,
			"blockTime":  b.BlockTime,
			"signatures": sigs,
		}, nil
	case "getSignaturesForAddress":
		var addr string
		var opts struct {
			Limit int `json:"limit"`
		}
		if len(req.Params) == 0 || json.Unmarshal(req.Params[0], &addr) != nil {
			return nil, &rpcError{Code: -32602, Message: "invalid params"}
		}
		if len(req.Params) > 1 {
			_ = json.Unmarshal(req.Params[1], &opts)
		}
		sigs := n.Wallets[addr]
		if opts.Limit > 0 && len(sigs) > opts.Limit {
			sigs = sigs[:opts.Limit]
		}
		out := make([]map[string]any, 0, len(sigs))
		for _, s := range sigs {
			var errField any
			if s.Failed {
				errField = map[string]any{"InstructionError": []any{0, "Custom"}}
			}
			out = append(out, map[string]any{
				"signature": s.Signature,
				"slot":      s.Slot,
				"err":       errField,
			})
		}
		return out, nil
	default:
		return nil, &rpcError{Code: -32601, Message: "method not found"}
	}
}
