package testdoubles

import (
	"context"
	"maps"
	"sync"

	"github.com/AntonStoeckl/library-coordination-go/eventstore"
)

// TracingCollectorSpy captures span lifecycles for testing.
type TracingCollectorSpy struct {
	mu    sync.Mutex
	spans []*SpySpanRecord
}

// SpySpanRecord represents a started (and maybe finished) span.
type SpySpanRecord struct {
	Name       string
	Attributes map[string]string
	Status     string
	Finished   bool
}

// SetStatus implements eventstore.SpanContext.
func (r *SpySpanRecord) SetStatus(status string) {
	r.Status = status
}

// AddAttribute implements eventstore.SpanContext.
func (r *SpySpanRecord) AddAttribute(key, value string) {
	r.Attributes[key] = value
}

// NewTracingCollectorSpy creates a new TracingCollectorSpy.
func NewTracingCollectorSpy() *TracingCollectorSpy {
	return &TracingCollectorSpy{}
}

func (s *TracingCollectorSpy) StartSpan(ctx context.Context, name string, attrs map[string]string) (context.Context, eventstore.SpanContext) {
	s.mu.Lock()
	defer s.mu.Unlock()

	attributes := maps.Clone(attrs)
	if attributes == nil {
		attributes = make(map[string]string)
	}

	span := &SpySpanRecord{Name: name, Attributes: attributes}
	s.spans = append(s.spans, span)

	return ctx, span
}

func (s *TracingCollectorSpy) FinishSpan(spanCtx eventstore.SpanContext, status string, attrs map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	span, ok := spanCtx.(*SpySpanRecord)
	if !ok {
		return
	}

	maps.Copy(span.Attributes, attrs)
	span.Status = status
	span.Finished = true
}

// Spans returns copies of all captured spans.
func (s *TracingCollectorSpy) Spans() []SpySpanRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	spans := make([]SpySpanRecord, 0, len(s.spans))
	for _, span := range s.spans {
		c := *span
		c.Attributes = maps.Clone(span.Attributes)
		spans = append(spans, c)
	}

	return spans
}

var _ eventstore.TracingCollector = (*TracingCollectorSpy)(nil)
