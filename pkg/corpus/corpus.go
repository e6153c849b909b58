package corpus

import (
	"context"
	"fmt"
	"sort"

	"github.com/geoffsee/proseva-sub005/pkg/common"
	"github.com/geoffsee/proseva-sub005/pkg/logger"

	"golang.org/x/sync/errgroup"
)

// Loader supplies the initial node, edge, and embedding lists from whatever
// store backs the corpus. Implementations must return fully materialized
// slices; the engine never goes back to the loader after startup.
type Loader interface {
	LoadNodes(ctx context.Context) ([]common.Node, error)
	LoadEdges(ctx context.Context) ([]common.Edge, error)
	LoadEmbeddings(ctx context.Context) ([]common.EmbeddingRecord, error)
}

// TextResolver looks up human-readable content for a node from the
// provenance store backing its source. A nil error with an empty string
// means the store had no content for the node.
type TextResolver interface {
	ResolveText(ctx context.Context, node common.Node) (string, error)
}

// TextResolverFunc adapts a function to the TextResolver interface.
type TextResolverFunc func(ctx context.Context, node common.Node) (string, error)

func (f TextResolverFunc) ResolveText(ctx context.Context, node common.Node) (string, error) {
	return f(ctx, node)
}

// Store is an immutable, process-lifetime snapshot of the corpus. It is
// built once at startup and may be shared across concurrent queries
// without locking.
type Store struct {
	nodes      map[int64]common.Node
	nodeOrder  []int64
	edges      []common.Edge
	embeddings []common.EmbeddingRecord
	embIndex   map[int64]int
}

// Load builds a Store from the loader. The three lists are fetched in
// parallel. Edges referencing unknown node ids are tolerated; they only
// surface as empty adjacency entries downstream.
func Load(ctx context.Context, loader Loader) (*Store, error) {
	var (
		nodes      []common.Node
		edges      []common.Edge
		embeddings []common.EmbeddingRecord
	)

	eg, gCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		nodes, err = loader.LoadNodes(gCtx)
		if err != nil {
			return fmt.Errorf("failed to load nodes: %w", err)
		}
		return nil
	})
	eg.Go(func() error {
		var err error
		edges, err = loader.LoadEdges(gCtx)
		if err != nil {
			return fmt.Errorf("failed to load edges: %w", err)
		}
		return nil
	})
	eg.Go(func() error {
		var err error
		embeddings, err = loader.LoadEmbeddings(gCtx)
		if err != nil {
			return fmt.Errorf("failed to load embeddings: %w", err)
		}
		return nil
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	s := New(nodes, edges, embeddings)
	logger.Info("[Corpus] Loaded",
		"nodes", len(s.nodeOrder),
		"edges", len(s.edges),
		"embeddings", len(s.embeddings),
	)
	return s, nil
}

// New builds a Store directly from materialized lists. Duplicate node ids
// keep the first occurrence.
func New(nodes []common.Node, edges []common.Edge, embeddings []common.EmbeddingRecord) *Store {
	byID := make(map[int64]common.Node, len(nodes))
	order := make([]int64, 0, len(nodes))
	for _, n := range nodes {
		if _, ok := byID[n.ID]; ok {
			continue
		}
		byID[n.ID] = n
		order = append(order, n.ID)
	}

	embs := append([]common.EmbeddingRecord(nil), embeddings...)
	embIndex := make(map[int64]int, len(embs))
	for i, rec := range embs {
		if _, ok := embIndex[rec.ID]; !ok {
			embIndex[rec.ID] = i
		}
	}

	return &Store{
		nodes:      byID,
		nodeOrder:  order,
		edges:      append([]common.Edge(nil), edges...),
		embeddings: embs,
		embIndex:   embIndex,
	}
}

// Node returns the node with the given id.
func (s *Store) Node(id int64) (common.Node, bool) {
	n, ok := s.nodes[id]
	return n, ok
}

// Edges returns the directed edge list in load order.
func (s *Store) Edges() []common.Edge {
	return s.edges
}

// Embeddings returns the embedding records in load order. The slice and the
// vectors inside it must be treated as read-only.
func (s *Store) Embeddings() []common.EmbeddingRecord {
	return s.embeddings
}

// Embedding returns the embedding record for a node id, if one exists.
func (s *Store) Embedding(id int64) (common.EmbeddingRecord, bool) {
	i, ok := s.embIndex[id]
	if !ok {
		return common.EmbeddingRecord{}, false
	}
	return s.embeddings[i], true
}

// ListNodes returns a filtered, paginated slice of nodes in load order.
// Filtering by type is exact; the match function, when non-nil, receives
// each candidate and keeps those returning true.
func (s *Store) ListNodes(nodeType string, match func(common.Node) bool, limit, offset int) []common.Node {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	out := make([]common.Node, 0, limit)
	skipped := 0
	for _, id := range s.nodeOrder {
		n := s.nodes[id]
		if nodeType != "" && n.NodeType != nodeType {
			continue
		}
		if match != nil && !match(n) {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		out = append(out, n)
		if len(out) >= limit {
			break
		}
	}
	return out
}

// Stats summarizes the loaded corpus with node and edge type histograms.
func (s *Store) Stats() common.Stats {
	nodeTypes := make(map[string]int)
	for _, id := range s.nodeOrder {
		nodeTypes[s.nodes[id].NodeType]++
	}
	edgeTypes := make(map[string]int)
	for _, e := range s.edges {
		edgeTypes[e.RelType]++
	}
	return common.Stats{
		NodeCount:      len(s.nodeOrder),
		EdgeCount:      len(s.edges),
		EmbeddingCount: len(s.embeddings),
		NodeTypes:      nodeTypes,
		EdgeTypes:      edgeTypes,
	}
}

// NodeTypeNames returns the distinct node types present, sorted.
func (s *Store) NodeTypeNames() []string {
	seen := make(map[string]struct{})
	for _, id := range s.nodeOrder {
		seen[s.nodes[id].NodeType] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for t := range seen {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
