package retrieval

import (
	"context"
	"fmt"
	"testing"

	"github.com/geoffsee/proseva-sub005/pkg/common"
	"github.com/geoffsee/proseva-sub005/pkg/corpus"
	"github.com/geoffsee/proseva-sub005/pkg/graphindex"
)

func TestExpandContextRelations(t *testing.T) {
	nodes := []common.Node{
		{ID: 1, Source: "statutes", SourceID: "a", NodeType: common.NodeTypeSection},
		{ID: 11, Source: "statutes", SourceID: "a-1", NodeType: common.NodeTypeSection},
		{ID: 12, Source: "statutes", SourceID: "a-2", NodeType: common.NodeTypeSection},
		{ID: 13, Source: "statutes", SourceID: "b", NodeType: common.NodeTypeSection},
		{ID: 14, Source: "courts", SourceID: "c", NodeType: common.NodeTypeCourt},
		{ID: 100, Source: "statutes", SourceID: "title-1", NodeType: "title"},
	}
	edges := []common.Edge{
		{FromID: 100, ToID: 1, RelType: common.RelContains},
		{FromID: 1, ToID: 11, RelType: common.RelContains},
		{FromID: 1, ToID: 12, RelType: common.RelContains},
		{FromID: 1, ToID: 13, RelType: common.RelCites},
		{FromID: 14, ToID: 1, RelType: common.RelCites},
	}
	e := &Engine{
		store: corpus.New(nodes, edges, nil),
		adj:   graphindex.Build(edges),
	}

	got := e.expandContext(context.Background(), []common.AnswerCandidate{{NodeID: 1}})
	want := map[int64]string{
		100: relationParent,
		11:  relationChild,
		12:  relationChild,
		13:  relationCites,
		14:  relationCitedBy,
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d context nodes, got %d", len(want), len(got))
	}
	for _, cn := range got {
		rel, ok := want[cn.NodeID]
		if !ok {
			t.Errorf("unexpected context node %d", cn.NodeID)
			continue
		}
		if cn.Relation != rel {
			t.Errorf("node %d: expected relation %q, got %q", cn.NodeID, rel, cn.Relation)
		}
		if cn.AnchorNodeID != 1 {
			t.Errorf("node %d: expected anchor 1, got %d", cn.NodeID, cn.AnchorNodeID)
		}
	}
}

func TestExpandContextExcludesAnswersAndDuplicates(t *testing.T) {
	nodes := []common.Node{
		{ID: 1, Source: "statutes", SourceID: "a", NodeType: common.NodeTypeSection},
		{ID: 2, Source: "statutes", SourceID: "b", NodeType: common.NodeTypeSection},
		{ID: 100, Source: "statutes", SourceID: "title-1", NodeType: "title"},
	}
	edges := []common.Edge{
		{FromID: 100, ToID: 1, RelType: common.RelContains},
		{FromID: 100, ToID: 2, RelType: common.RelContains},
		{FromID: 1, ToID: 2, RelType: common.RelCites},
	}
	e := &Engine{
		store: corpus.New(nodes, edges, nil),
		adj:   graphindex.Build(edges),
	}

	answers := []common.AnswerCandidate{{NodeID: 1}, {NodeID: 2}}
	got := e.expandContext(context.Background(), answers)

	// The shared parent appears exactly once; the answers never appear.
	if len(got) != 1 {
		t.Fatalf("expected 1 context node, got %d", len(got))
	}
	if got[0].NodeID != 100 {
		t.Errorf("expected shared parent 100, got %d", got[0].NodeID)
	}
	if got[0].AnchorNodeID != 1 {
		t.Errorf("expected parent anchored to first answer, got %d", got[0].AnchorNodeID)
	}
}

func TestExpandContextCap(t *testing.T) {
	nodes := []common.Node{
		{ID: 1, Source: "statutes", SourceID: "a", NodeType: common.NodeTypeSection},
	}
	edges := make([]common.Edge, 0, 20)
	for i := 0; i < 20; i++ {
		id := int64(200 + i)
		nodes = append(nodes, common.Node{
			ID:       id,
			Source:   "statutes",
			SourceID: fmt.Sprintf("a-%d", i),
			NodeType: common.NodeTypeSection,
		})
		edges = append(edges, common.Edge{FromID: 1, ToID: id, RelType: common.RelContains})
	}
	e := &Engine{
		store: corpus.New(nodes, edges, nil),
		adj:   graphindex.Build(edges),
	}

	got := e.expandContext(context.Background(), []common.AnswerCandidate{{NodeID: 1}})
	if len(got) != MaxContextNodes {
		t.Fatalf("expected expansion capped at %d, got %d", MaxContextNodes, len(got))
	}
}
