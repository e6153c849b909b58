// Package retrieval implements the two-stage graph-aware retrieval
// pipeline over a loaded legal knowledge corpus: broad vector recall,
// deduplication and demotion heuristics, lexical and graph-coherence
// re-ranking, context expansion, and graph-quality triage.
package retrieval

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/geoffsee/proseva-sub005/pkg/common"
	"github.com/geoffsee/proseva-sub005/pkg/corpus"
	"github.com/geoffsee/proseva-sub005/pkg/graphindex"
	"github.com/geoffsee/proseva-sub005/pkg/lexical"
	"github.com/geoffsee/proseva-sub005/pkg/logger"
	"github.com/geoffsee/proseva-sub005/pkg/similarity"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

var (
	// ErrNodeNotFound indicates a lookup for a node id absent from the corpus.
	ErrNodeNotFound = errors.New("node not found")

	// ErrDimensionMismatch mirrors the similarity engine's sentinel for
	// callers that only import this package.
	ErrDimensionMismatch = similarity.ErrDimensionMismatch
)

// Engine answers knowledge queries over an immutable corpus snapshot. All
// state is read-only after construction, so one Engine may serve
// concurrent queries without locking.
type Engine struct {
	store    *corpus.Store
	resolver corpus.TextResolver
	sim      *similarity.Engine
	adj      *graphindex.Index
	sink     DiagnosticSink
	poolSize int
}

// Option configures an Engine.
type Option func(*Engine)

// WithDiagnostics installs a sink for triage events. The default sink
// discards them.
func WithDiagnostics(sink DiagnosticSink) Option {
	return func(e *Engine) {
		if sink != nil {
			e.sink = sink
		}
	}
}

// WithPoolSize overrides the stage-1 broad-recall pool cap.
func WithPoolSize(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.poolSize = n
		}
	}
}

// NewEngine builds the similarity engine and adjacency index from the
// store and returns a ready Engine.
func NewEngine(store *corpus.Store, resolver corpus.TextResolver, opts ...Option) (*Engine, error) {
	sim, err := similarity.NewEngine(store.Embeddings())
	if err != nil {
		return nil, fmt.Errorf("failed to pack embeddings: %w", err)
	}

	e := &Engine{
		store:    store,
		resolver: resolver,
		sim:      sim,
		adj:      graphindex.Build(store.Edges()),
		sink:     NopSink{},
		poolSize: DefaultPoolSize,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Dimension returns the corpus embedding dimension (0 when the corpus has
// no embeddings).
func (e *Engine) Dimension() int {
	return e.sim.Dimension()
}

// SearchKnowledge answers a natural-language legal query with a small,
// deduplicated set of ranked passages plus structurally related context.
//
// The query embedding must match the corpus dimension; a mismatch returns
// ErrDimensionMismatch and an empty result. topK defaults to 5 when <= 0.
func (e *Engine) SearchKnowledge(ctx context.Context, queryEmbedding []float32, queryText string, topK int) (common.SearchResult, error) {
	empty := common.SearchResult{
		Answers: []common.AnswerCandidate{},
		Context: []common.ContextNode{},
	}
	if topK <= 0 {
		topK = 5
	}

	queryID, err := gonanoid.New(8)
	if err != nil {
		queryID = "unknown"
	}

	ranked, err := e.sim.RankAll(queryEmbedding)
	if err != nil {
		return empty, fmt.Errorf("failed to rank corpus: %w", err)
	}
	if len(ranked) == 0 {
		return empty, nil
	}

	queryTokens := lexical.Tokenize(queryText)
	intents := lexical.DetectIntents(queryTokens)

	rawPool := e.buildPool(ctx, ranked, e.poolSize)
	e.reportDuplicateClusters(queryID, rawPool)

	pool := dedupeByDocument(rawPool)
	dedupedLen := len(pool)
	pool = suppressNearDuplicates(pool, e.adj)
	suppressed := dedupedLen - len(pool)
	pool = applyTypePriors(pool, intents)
	pool = demoteRepealed(pool, intents)
	sortByScore(pool)

	logger.Debug("[Retrieval] Stage 1 complete",
		"query_id", queryID,
		"raw_pool", len(rawPool),
		"deduped", dedupedLen,
		"suppressed", suppressed,
		"manual_intent", intents.Manual,
		"authority_intent", intents.Authority,
		"repeal_intent", intents.Repeal,
	)

	statuteParents := topStatuteParents(pool, e.adj)
	reranked := rerank(pool, queryTokens, e.adj, statuteParents)
	answers := selectAnswers(reranked, topK)
	contextNodes := e.expandContext(ctx, answers)

	logger.Debug("[Retrieval] Stage 2 complete",
		"query_id", queryID,
		"answers", len(answers),
		"context", len(contextNodes),
	)

	e.reportMissingEdges(queryID, answers)
	e.reportNoisyEdges(queryID, pool)

	return common.SearchResult{Answers: answers, Context: contextNodes}, nil
}

// GetNode returns a node's metadata, resolved source text, and adjacency
// grouped by relation and direction.
func (e *Engine) GetNode(ctx context.Context, id int64) (common.NodeDetails, error) {
	node, ok := e.store.Node(id)
	if !ok {
		return common.NodeDetails{}, fmt.Errorf("node %d: %w", id, ErrNodeNotFound)
	}

	adjacency := make(map[string][]int64)
	for _, rel := range []string{common.RelContains, common.RelCites, common.RelReferences} {
		for _, dir := range []string{graphindex.DirOut, graphindex.DirIn} {
			key := rel + "_" + dir
			if ids := e.adj.Neighbors(id, rel, dir); len(ids) > 0 {
				adjacency[key] = ids
			}
		}
	}

	return common.NodeDetails{
		Node:      node,
		Content:   e.resolveText(ctx, node),
		Adjacency: adjacency,
	}, nil
}

// GetNeighbors lists a node's edges with resolved neighbor metadata.
// relation filters to one relation type when non-empty; direction is
// "out", "in", or "both" (the default).
func (e *Engine) GetNeighbors(ctx context.Context, id int64, relation, direction string) ([]common.NeighborEdge, error) {
	if _, ok := e.store.Node(id); !ok {
		return nil, fmt.Errorf("node %d: %w", id, ErrNodeNotFound)
	}

	relations := []string{common.RelContains, common.RelCites, common.RelReferences}
	if relation != "" {
		relations = []string{relation}
	}
	directions := []string{graphindex.DirOut, graphindex.DirIn}
	if direction == graphindex.DirOut || direction == graphindex.DirIn {
		directions = []string{direction}
	}

	out := make([]common.NeighborEdge, 0)
	for _, rel := range relations {
		for _, dir := range directions {
			for _, nid := range e.adj.Neighbors(id, rel, dir) {
				neighbor, ok := e.store.Node(nid)
				if !ok {
					// Dangling edge target; keep the id visible.
					neighbor = common.Node{ID: nid}
				}
				out = append(out, common.NeighborEdge{
					Neighbor:  neighbor,
					RelType:   rel,
					Direction: dir,
				})
			}
		}
	}
	return out, nil
}

// FindSimilar ranks other nodes by cosine similarity to the given node's
// embedding, excluding the node itself. Nodes without an embedding return
// an empty list.
func (e *Engine) FindSimilar(ctx context.Context, id int64, limit int) ([]common.SimilarNode, error) {
	if _, ok := e.store.Node(id); !ok {
		return nil, fmt.Errorf("node %d: %w", id, ErrNodeNotFound)
	}
	if limit <= 0 {
		limit = 10
	}

	rec, ok := e.store.Embedding(id)
	if !ok {
		return []common.SimilarNode{}, nil
	}

	ranked, err := e.sim.RankAll(rec.Vector)
	if err != nil {
		return nil, fmt.Errorf("failed to rank corpus: %w", err)
	}

	records := e.store.Embeddings()
	out := make([]common.SimilarNode, 0, limit)
	for _, s := range ranked {
		candidate := records[s.Index]
		if candidate.ID == id {
			continue
		}
		out = append(out, common.SimilarNode{Node: candidate.Node, Score: s.Score})
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

// Stats summarizes the loaded corpus.
func (e *Engine) Stats() common.Stats {
	return e.store.Stats()
}

// SearchNodes returns a filtered, paginated node listing with truncated
// text previews. search matches case-insensitively against source and
// source id.
func (e *Engine) SearchNodes(ctx context.Context, nodeType, search string, limit, offset int) []common.NodePreview {
	var match func(common.Node) bool
	if search != "" {
		needle := strings.ToLower(search)
		match = func(n common.Node) bool {
			return strings.Contains(strings.ToLower(n.SourceID), needle) ||
				strings.Contains(strings.ToLower(n.Source), needle)
		}
	}

	nodes := e.store.ListNodes(nodeType, match, limit, offset)
	out := make([]common.NodePreview, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, common.NodePreview{
			Node:    n,
			Preview: truncate(e.resolveText(ctx, n), 200),
		})
	}
	return out
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := s[:max]
	if i := strings.LastIndexByte(cut, ' '); i > max/2 {
		cut = cut[:i]
	}
	return cut + "…"
}
