package retrieval

import (
	"testing"

	"github.com/geoffsee/proseva-sub005/pkg/common"
	"github.com/geoffsee/proseva-sub005/pkg/graphindex"
)

func TestReportDuplicateClusters(t *testing.T) {
	rec := &DiagRecorder{}
	e := &Engine{adj: graphindex.Build(nil), sink: rec}

	rawPool := []candidate{
		makeCandidate(1, "statutes", "a", common.NodeTypeSection, 0.9, ""),
		makeCandidate(2, "statutes", "a", common.NodeTypeSection, 0.8, ""),
		makeCandidate(3, "statutes", "b", common.NodeTypeSection, 0.7, ""),
	}
	e.reportDuplicateClusters("q1", rawPool)

	events := rec.ByKind(DiagDuplicateCluster)
	if len(events) != 1 {
		t.Fatalf("expected 1 duplicate cluster, got %d", len(events))
	}
	ev := events[0]
	if ev.DocKey != "statutes|a" {
		t.Errorf("expected doc key statutes|a, got %q", ev.DocKey)
	}
	if len(ev.NodeIDs) != 2 || ev.NodeIDs[0] != 1 || ev.NodeIDs[1] != 2 {
		t.Errorf("expected node ids [1 2], got %v", ev.NodeIDs)
	}
	if ev.QueryID != "q1" {
		t.Errorf("expected query id q1, got %q", ev.QueryID)
	}
}

func TestReportMissingEdges(t *testing.T) {
	tests := []struct {
		name       string
		edges      []common.Edge
		scoreB     float64
		wantEvents int
	}{
		{
			name:       "close scores, no path",
			scoreB:     0.85,
			wantEvents: 1,
		},
		{
			name:   "close scores, 2-hop path",
			scoreB: 0.85,
			edges: []common.Edge{
				{FromID: 1, ToID: 5, RelType: common.RelCites},
				{FromID: 5, ToID: 2, RelType: common.RelCites},
			},
			wantEvents: 0,
		},
		{
			name:       "distant scores, no path",
			scoreB:     0.50,
			wantEvents: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &DiagRecorder{}
			e := &Engine{adj: graphindex.Build(tt.edges), sink: rec}

			answers := []common.AnswerCandidate{
				{NodeID: 1, Score: 0.90},
				{NodeID: 2, Score: tt.scoreB},
			}
			e.reportMissingEdges("q1", answers)

			events := rec.ByKind(DiagMissingEdge)
			if len(events) != tt.wantEvents {
				t.Fatalf("expected %d events, got %d", tt.wantEvents, len(events))
			}
			if tt.wantEvents == 1 {
				ev := events[0]
				if ev.NodeA != 1 || ev.NodeB != 2 {
					t.Errorf("expected pair (1, 2), got (%d, %d)", ev.NodeA, ev.NodeB)
				}
				if ev.Proxy <= missingEdgeProxyThreshold {
					t.Errorf("expected proxy above %v, got %v", missingEdgeProxyThreshold, ev.Proxy)
				}
			}
		})
	}
}

func TestReportNoisyEdges(t *testing.T) {
	edges := []common.Edge{
		{FromID: 1, ToID: 2, RelType: common.RelCites},
		{FromID: 1, ToID: 3, RelType: common.RelCites},
	}
	rec := &DiagRecorder{}
	e := &Engine{adj: graphindex.Build(edges), sink: rec}

	pool := []candidate{
		makeCandidate(1, "statutes", "a", common.NodeTypeSection, 0.90, ""),
		// Direct edge to 1, scores far apart: noisy.
		makeCandidate(2, "statutes", "b", common.NodeTypeSection, 0.10, ""),
		// Direct edge to 1, scores close: fine.
		makeCandidate(3, "statutes", "c", common.NodeTypeSection, 0.85, ""),
		// Scores far apart but no edge: nothing to report.
		makeCandidate(4, "statutes", "d", common.NodeTypeSection, 0.05, ""),
	}
	e.reportNoisyEdges("q1", pool)

	events := rec.ByKind(DiagNoisyEdge)
	if len(events) != 1 {
		t.Fatalf("expected 1 noisy edge, got %d", len(events))
	}
	if events[0].NodeA != 1 || events[0].NodeB != 2 {
		t.Errorf("expected pair (1, 2), got (%d, %d)", events[0].NodeA, events[0].NodeB)
	}
}
