// internal/pkg/logger/elk.go
package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"
)

// ELKConfig configures shipping of log records to Elasticsearch.
type ELKConfig struct {
	ElasticsearchURL string        `json:"elasticsearch_url"`
	IndexPattern     string        `json:"index_pattern"`
	BatchSize        int           `json:"batch_size"`
	FlushInterval    time.Duration `json:"flush_interval"`
	Username         string        `json:"username"`
	Password         string        `json:"password"`
	EnableBatching   bool          `json:"enable_batching"`
}

// ELKHandler mirrors records to an Elasticsearch bulk endpoint while
// delegating local output to the wrapped handler. Shipping happens off
// the request path; a failed bulk request is reported to stderr and the
// records are dropped rather than retried.
type ELKHandler struct {
	client *http.Client
	config ELKConfig
	next   slog.Handler

	mu     sync.Mutex
	buffer []esDocument
}

// esDocument is the shape indexed into Elasticsearch.
type esDocument struct {
	Timestamp   time.Time      `json:"@timestamp"`
	Level       string         `json:"level"`
	Message     string         `json:"message"`
	Service     string         `json:"service"`
	Environment string         `json:"environment"`
	Version     string         `json:"version"`
	RequestID   string         `json:"request_id,omitempty"`
	TraceID     string         `json:"trace_id,omitempty"`
	UserID      string         `json:"user_id,omitempty"`
	ClientIP    string         `json:"client_ip,omitempty"`
	Method      string         `json:"method,omitempty"`
	Path        string         `json:"path,omitempty"`
	StatusCode  int            `json:"status_code,omitempty"`
	Duration    float64        `json:"duration_ms,omitempty"`
	Fields      map[string]any `json:"fields,omitempty"`
	Error       *esError       `json:"error,omitempty"`
}

type esError struct {
	Type       string `json:"type"`
	Message    string `json:"message"`
	StackTrace string `json:"stack_trace,omitempty"`
}

// NewELKHandler wraps next with Elasticsearch shipping.
func NewELKHandler(cfg ELKConfig, next slog.Handler) *ELKHandler {
	h := &ELKHandler{
		client: &http.Client{Timeout: 10 * time.Second},
		config: cfg,
		next:   next,
		buffer: make([]esDocument, 0, cfg.BatchSize),
	}
	if cfg.EnableBatching {
		go h.flushLoop()
	}
	return h
}

func (h *ELKHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *ELKHandler) Handle(ctx context.Context, record slog.Record) error {
	if err := h.next.Handle(ctx, record); err != nil {
		return err
	}

	doc := h.buildDocument(ctx, record)

	if !h.config.EnableBatching {
		go h.ship([]esDocument{doc})
		return nil
	}

	h.mu.Lock()
	h.buffer = append(h.buffer, doc)
	full := len(h.buffer) >= h.config.BatchSize
	h.mu.Unlock()

	if full {
		go h.flush()
	}
	return nil
}

func (h *ELKHandler) buildDocument(ctx context.Context, record slog.Record) esDocument {
	doc := esDocument{
		Timestamp:   record.Time,
		Level:       record.Level.String(),
		Message:     record.Message,
		Service:     ctxString(ctx, ContextKeyService),
		Environment: ctxString(ctx, ContextKeyEnvironment),
		Version:     ctxString(ctx, ContextKeyVersion),
		RequestID:   ctxString(ctx, ContextKeyRequestID),
		TraceID:     ctxString(ctx, ContextKeyTraceID),
		UserID:      ctxString(ctx, ContextKeyUserID),
		ClientIP:    ctxString(ctx, ContextKeyClientIP),
		Method:      ctxString(ctx, ContextKeyMethod),
		Path:        ctxString(ctx, ContextKeyPath),
		Fields:      make(map[string]any),
	}
	if status, ok := ctx.Value(ContextKeyStatusCode).(int); ok {
		doc.StatusCode = status
	}
	if d, ok := ctx.Value(ContextKeyDuration).(time.Duration); ok {
		doc.Duration = float64(d.Milliseconds())
	}

	record.Attrs(func(a slog.Attr) bool {
		doc.Fields[a.Key] = a.Value.Any()

		switch a.Key {
		case "error", "err":
			if err, ok := a.Value.Any().(error); ok {
				doc.Error = &esError{Type: fmt.Sprintf("%T", err), Message: err.Error()}
			}
		case "stack", "stacktrace":
			if stack, ok := a.Value.Any().(string); ok && doc.Error != nil {
				doc.Error.StackTrace = stack
			}
		}
		return true
	})
	return doc
}

// ship posts docs to the _bulk endpoint as NDJSON.
func (h *ELKHandler) ship(docs []esDocument) {
	if len(docs) == 0 {
		return
	}

	index := fmt.Sprintf("%s-%s", h.config.IndexPattern, time.Now().Format("2006.01.02"))

	var body bytes.Buffer
	enc := json.NewEncoder(&body)
	for _, doc := range docs {
		_ = enc.Encode(map[string]any{"index": map[string]string{"_index": index}})
		_ = enc.Encode(doc)
	}

	req, err := http.NewRequest(http.MethodPost, h.config.ElasticsearchURL+"/_bulk", &body)
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/x-ndjson")
	if h.config.Username != "" && h.config.Password != "" {
		req.SetBasicAuth(h.config.Username, h.config.Password)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "elasticsearch bulk request failed: %v\n", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		fmt.Fprintf(os.Stderr, "elasticsearch bulk request returned %d\n", resp.StatusCode)
	}
}

func (h *ELKHandler) flush() {
	h.mu.Lock()
	if len(h.buffer) == 0 {
		h.mu.Unlock()
		return
	}
	docs := make([]esDocument, len(h.buffer))
	copy(docs, h.buffer)
	h.buffer = h.buffer[:0]
	h.mu.Unlock()

	h.ship(docs)
}

func (h *ELKHandler) flushLoop() {
	ticker := time.NewTicker(h.config.FlushInterval)
	defer ticker.Stop()
	for range ticker.C {
		h.flush()
	}
}

func (h *ELKHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ELKHandler{
		client: h.client,
		config: h.config,
		next:   h.next.WithAttrs(attrs),
	}
}

func (h *ELKHandler) WithGroup(name string) slog.Handler {
	return &ELKHandler{
		client: h.client,
		config: h.config,
		next:   h.next.WithGroup(name),
	}
}

func ctxString(ctx context.Context, key ContextKey) string {
	s, _ := ctx.Value(key).(string)
	return s
}
