package corpus

import (
	"context"
	"errors"
	"testing"

	"github.com/geoffsee/proseva-sub005/pkg/common"
)

type staticLoader struct {
	nodes      []common.Node
	edges      []common.Edge
	embeddings []common.EmbeddingRecord
	err        error
}

func (l *staticLoader) LoadNodes(ctx context.Context) ([]common.Node, error) {
	return l.nodes, l.err
}

func (l *staticLoader) LoadEdges(ctx context.Context) ([]common.Edge, error) {
	return l.edges, nil
}

func (l *staticLoader) LoadEmbeddings(ctx context.Context) ([]common.EmbeddingRecord, error) {
	return l.embeddings, nil
}

func TestLoad(t *testing.T) {
	loader := &staticLoader{
		nodes: []common.Node{
			{ID: 1, Source: "statutes", SourceID: "a", NodeType: common.NodeTypeSection},
			{ID: 2, Source: "statutes", SourceID: "b", NodeType: common.NodeTypeSection},
		},
		edges: []common.Edge{
			{FromID: 1, ToID: 2, RelType: common.RelCites},
		},
		embeddings: []common.EmbeddingRecord{
			{Node: common.Node{ID: 1}, Vector: []float32{1, 0}},
		},
	}

	store, err := Load(context.Background(), loader)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, ok := store.Node(1); !ok {
		t.Error("expected node 1")
	}
	if len(store.Edges()) != 1 {
		t.Errorf("expected 1 edge, got %d", len(store.Edges()))
	}
	if rec, ok := store.Embedding(1); !ok || len(rec.Vector) != 2 {
		t.Errorf("expected embedding for node 1, got %v %v", rec, ok)
	}
	if _, ok := store.Embedding(2); ok {
		t.Error("expected no embedding for node 2")
	}
}

func TestLoadPropagatesErrors(t *testing.T) {
	wantErr := errors.New("connection refused")
	if _, err := Load(context.Background(), &staticLoader{err: wantErr}); !errors.Is(err, wantErr) {
		t.Fatalf("expected wrapped loader error, got %v", err)
	}
}

func TestNewKeepsFirstDuplicateNode(t *testing.T) {
	store := New([]common.Node{
		{ID: 1, Source: "statutes", SourceID: "a", NodeType: common.NodeTypeSection},
		{ID: 1, Source: "statutes", SourceID: "changed", NodeType: common.NodeTypeSection},
	}, nil, nil)

	n, ok := store.Node(1)
	if !ok || n.SourceID != "a" {
		t.Errorf("expected first occurrence kept, got %+v", n)
	}
	if store.Stats().NodeCount != 1 {
		t.Errorf("expected 1 node, got %d", store.Stats().NodeCount)
	}
}

func TestListNodes(t *testing.T) {
	nodes := []common.Node{
		{ID: 1, Source: "statutes", SourceID: "a", NodeType: common.NodeTypeSection},
		{ID: 2, Source: "statutes", SourceID: "b", NodeType: common.NodeTypeSection},
		{ID: 3, Source: "courts", SourceID: "c", NodeType: common.NodeTypeCourt},
		{ID: 4, Source: "statutes", SourceID: "d", NodeType: common.NodeTypeSection},
	}
	store := New(nodes, nil, nil)

	sections := store.ListNodes(common.NodeTypeSection, nil, 0, 0)
	if len(sections) != 3 {
		t.Fatalf("expected 3 sections, got %d", len(sections))
	}

	page := store.ListNodes(common.NodeTypeSection, nil, 2, 1)
	if len(page) != 2 || page[0].ID != 2 || page[1].ID != 4 {
		t.Errorf("expected page [2 4], got %v", page)
	}

	matched := store.ListNodes("", func(n common.Node) bool { return n.Source == "courts" }, 0, 0)
	if len(matched) != 1 || matched[0].ID != 3 {
		t.Errorf("expected match [3], got %v", matched)
	}
}

func TestNodeTypeNames(t *testing.T) {
	store := New([]common.Node{
		{ID: 1, NodeType: common.NodeTypeSection},
		{ID: 2, NodeType: common.NodeTypeCourt},
		{ID: 3, NodeType: common.NodeTypeSection},
	}, nil, nil)

	names := store.NodeTypeNames()
	if len(names) != 2 || names[0] != common.NodeTypeCourt || names[1] != common.NodeTypeSection {
		t.Errorf("expected sorted distinct type names, got %v", names)
	}
}
