package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks implements every hook interface by logging at debug level.
type LogHooks struct {
	Logger *log.Logger
}

// NewLogHooks returns hooks writing to l.
func NewLogHooks(l *log.Logger) *LogHooks {
	return &LogHooks{Logger: l}
}

func (h *LogHooks) OnFetchStart(_ context.Context, source string) {
	h.Logger.Debug("fetch started", "source", source)
}

func (h *LogHooks) OnFetchComplete(_ context.Context, source string, blocks, txs int, d time.Duration, err error) {
	if err != nil {
		h.Logger.Debug("fetch failed", "source", source, "duration", d, "err", err)
		return
	}
	h.Logger.Debug("fetch complete", "source", source, "blocks", blocks, "transactions", txs, "duration", d)
}

func (h *LogHooks) OnCompose(_ context.Context, style string, shapeCount int, d time.Duration) {
	h.Logger.Debug("composed", "style", style, "shape_configs", shapeCount, "duration", d)
}

func (h *LogHooks) OnRenderStart(_ context.Context, formats []string) {
	h.Logger.Debug("render started", "formats", formats)
}

func (h *LogHooks) OnRenderComplete(_ context.Context, formats []string, d time.Duration, err error) {
	h.Logger.Debug("render complete", "formats", formats, "duration", d, "err", err)
}

func (h *LogHooks) OnSaveComplete(_ context.Context, id string, d time.Duration, err error) {
	h.Logger.Debug("piece saved", "id", id, "duration", d, "err", err)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.Logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.Logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.Logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *LogHooks) OnRequest(_ context.Context, method, host, rpcMethod string) {
	h.Logger.Debug("rpc request", "method", method, "host", host, "rpc", rpcMethod)
}

func (h *LogHooks) OnResponse(_ context.Context, method, host, rpcMethod string, status int, d time.Duration) {
	h.Logger.Debug("rpc response", "rpc", rpcMethod, "status", status, "duration", d)
}

func (h *LogHooks) OnError(_ context.Context, method, host, rpcMethod string, err error) {
	h.Logger.Debug("rpc error", "rpc", rpcMethod, "host", host, "err", err)
}

var (
	_ PipelineHooks = (*LogHooks)(nil)
	_ CacheHooks    = (*LogHooks)(nil)
	_ HTTPHooks     = (*LogHooks)(nil)
)
