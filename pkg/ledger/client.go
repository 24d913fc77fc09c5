package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	derrors "github.com/matzehuels/dreamscape/pkg/errors"
	"github.com/matzehuels/dreamscape/pkg/httputil"
	"github.com/matzehuels/dreamscape/pkg/observability"
)

// DefaultRPCURL is the public mainnet endpoint.
const DefaultRPCURL = "https://api.mainnet-beta.solana.com"

const (
	defaultTimeout     = 30 * time.Second
	defaultBatchSize   = 10
	defaultWalletLimit = 50
	defaultCommitment  = "confirmed"
	defaultWindow      = 5 // slots before the current one read when no source is given
)

// Client reads ledger data over JSON-RPC.
type Client struct {
	http        *http.Client
	url         string
	host        string
	commitment  string
	batchSize   int
	walletLimit int
	cache       *httputil.Cache
	logger      *log.Logger

	attempts int
	delay    time.Duration

	nextID atomic.Uint64
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.http = h } }

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http = &http.Client{Timeout: d}
		}
	}
}

// WithCommitment sets the commitment level sent with every call.
func WithCommitment(level string) Option {
	return func(c *Client) {
		if level != "" {
			c.commitment = level
		}
	}
}

// WithBatchSize bounds the number of concurrent getBlock calls.
func WithBatchSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.batchSize = n
		}
	}
}

// WithWalletLimit sets how many signatures ReadChainData reads per wallet.
func WithWalletLimit(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.walletLimit = n
		}
	}
}

// WithCache keeps decoded blocks in cache.
func WithCache(cache *httputil.Cache) Option { return func(c *Client) { c.cache = cache } }

// WithLogger sets the logger used for skipped blocks.
func WithLogger(l *log.Logger) Option { return func(c *Client) { c.logger = l } }

// WithRetry sets the number of attempts and the initial backoff delay.
func WithRetry(attempts int, delay time.Duration) Option {
	return func(c *Client) {
		c.attempts = attempts
		c.delay = delay
	}
}

// NewClient returns a client for the RPC endpoint at rpcURL.
func NewClient(rpcURL string, opts ...Option) *Client {
	if rpcURL == "" {
		rpcURL = DefaultRPCURL
	}
	c := &Client{
		http:        &http.Client{Timeout: defaultTimeout},
		url:         rpcURL,
		commitment:  defaultCommitment,
		batchSize:   defaultBatchSize,
		walletLimit: defaultWalletLimit,
		logger:      log.Default(),
		attempts:    3,
		delay:       time.Second,
	}
	if u, err := url.Parse(rpcURL); err == nil {
		c.host = u.Host
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// URL returns the RPC endpoint.
func (c *Client) URL() string { return c.url }

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params,omitempty"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *RPCError       `json:"error"`
}

// RPCError is an error object returned by the node.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string { return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message) }

// Node error codes that mean the slot holds no block.
const (
	codeSlotSkipped         = -32007
	codeLongTermStorageSkip = -32009
	codeNodeUnhealthy       = -32005
)

// Skipped reports whether the error says the slot has no block.
func (e *RPCError) Skipped() bool {
	return e.Code == codeSlotSkipped || e.Code == codeLongTermStorageSkip
}

// call invokes method and decodes its result into out, retrying transient
// failures. A null result leaves out untouched and returns errNullResult.
func (c *Client) call(ctx context.Context, method string, params []any, out any) error {
	return httputil.Retry(ctx, c.attempts, c.delay, func() error {
		return c.do(ctx, method, params, out)
	})
}

func (c *Client) do(ctx context.Context, method string, params []any, out any) error {
	body, err := json.Marshal(rpcRequest{JSONRPC: "2.0", ID: c.nextID.Add(1), Method: method, Params: params})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	hooks := observability.HTTP()
	hooks.OnRequest(ctx, http.MethodPost, c.host, method)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, http.MethodPost, c.host, method, err)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &httputil.RetryableError{Err: fmt.Errorf("%s: %w", method, err)}
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, http.MethodPost, c.host, method, resp.StatusCode, time.Since(start))

	if err := checkStatus(method, resp); err != nil {
		return err
	}

	var rr rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&rr); err != nil {
		return fmt.Errorf("%s: decode response: %w", method, err)
	}
	if rr.Error != nil {
		if rr.Error.Code == codeNodeUnhealthy {
			return &httputil.RetryableError{Err: rr.Error}
		}
		return rr.Error
	}
	if len(rr.Result) == 0 || string(rr.Result) == "null" {
		return errNullResult
	}
	return json.Unmarshal(rr.Result, out)
}

var errNullResult = errors.New("null result")

func checkStatus(method string, resp *http.Response) error {
	if resp.StatusCode == http.StatusOK {
		return nil
	}
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
	err := fmt.Errorf("%s: status %d: %s", method, resp.StatusCode, bytes.TrimSpace(snippet))
	if resp.StatusCode == http.StatusTooManyRequests {
		rl := &derrors.RateLimitedError{Message: err.Error()}
		rl.RetryAfter, _ = strconv.Atoi(resp.Header.Get("Retry-After"))
		return &httputil.RetryableError{Err: rl}
	}
	if httputil.RetryableStatus(resp.StatusCode) {
		return &httputil.RetryableError{Err: err}
	}
	return err
}

// Slot returns the current slot at the client's commitment.
func (c *Client) Slot(ctx context.Context) (uint64, error) {
	var slot uint64
	if err := c.call(ctx, "getSlot", []any{map[string]any{"commitment": c.commitment}}, &slot); err != nil {
		return 0, derrors.Wrap(derrors.ErrCodeChainRead, err, "read current slot")
	}
	return slot, nil
}
