package retrieval

import (
	"sort"
	"sync"

	"github.com/geoffsee/proseva-sub005/pkg/logger"
)

type DiagEventKind string

const (
	DiagDuplicateCluster DiagEventKind = "duplicate_cluster"
	DiagMissingEdge      DiagEventKind = "missing_edge"
	DiagNoisyEdge        DiagEventKind = "noisy_edge"
)

// DiagEvent is an extensible envelope for graph-quality observations made
// while serving a query. Events are advisory signals for offline corpus
// curation; they never affect ranking or the response payload.
type DiagEvent struct {
	Kind    DiagEventKind
	QueryID string

	// duplicate_cluster
	DocKey  string
	NodeIDs []int64
	Scores  []float64

	// missing_edge / noisy_edge
	NodeA int64
	NodeB int64
	Proxy float64
}

// DiagnosticSink receives diagnostic events. Implementers can forward
// events to logs, telemetry, or custom post-processing pipelines. Sinks
// must be safe for concurrent use.
type DiagnosticSink interface {
	Record(event DiagEvent)
}

// MultiSink fans out events to multiple sinks.
type MultiSink []DiagnosticSink

func (m MultiSink) Record(event DiagEvent) {
	for _, s := range m {
		if s == nil {
			continue
		}
		s.Record(event)
	}
}

// NopSink discards all events.
type NopSink struct{}

func (NopSink) Record(DiagEvent) {}

// LogSink writes events to the process logger at INFO level.
type LogSink struct{}

func (LogSink) Record(event DiagEvent) {
	switch event.Kind {
	case DiagDuplicateCluster:
		logger.Info("[Triage] Duplicate cluster",
			"query_id", event.QueryID,
			"doc_key", event.DocKey,
			"node_ids", event.NodeIDs,
			"scores", event.Scores,
		)
	case DiagMissingEdge:
		logger.Info("[Triage] Candidate missing edge",
			"query_id", event.QueryID,
			"node_a", event.NodeA,
			"node_b", event.NodeB,
			"proxy", event.Proxy,
		)
	case DiagNoisyEdge:
		logger.Info("[Triage] Candidate noisy edge",
			"query_id", event.QueryID,
			"node_a", event.NodeA,
			"node_b", event.NodeB,
			"proxy", event.Proxy,
		)
	}
}

// DiagRecorder collects events in memory for inspection, primarily in
// tests. It is safe for concurrent use.
type DiagRecorder struct {
	mu     sync.Mutex
	events []DiagEvent
}

func (r *DiagRecorder) Record(event DiagEvent) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

// Events returns a copy of the recorded events, grouped by kind in
// recording order within each kind.
func (r *DiagRecorder) Events() []DiagEvent {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	out := append([]DiagEvent(nil), r.events...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Kind < out[j].Kind
	})
	return out
}

// ByKind returns the recorded events of one kind, in recording order.
func (r *DiagRecorder) ByKind(kind DiagEventKind) []DiagEvent {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []DiagEvent
	for _, e := range r.events {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}
