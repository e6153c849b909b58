package common

import "fmt"

// Relation types for edges in the knowledge graph.
//
//   - RelContains models hierarchical containment (title → section).
//   - RelCites models explicit cross-references between provisions.
//   - RelReferences models looser association (e.g. a court record
//     referencing a statute).
const (
	RelContains   = "contains"
	RelCites      = "cites"
	RelReferences = "references"
)

// Node types that receive special treatment during retrieval. Any other
// node type is handled with a generic default prior.
const (
	NodeTypeSection        = "section"
	NodeTypeConstitution   = "constitution_section"
	NodeTypeNamedLaw       = "named_law"
	NodeTypeAuthority      = "authority"
	NodeTypeCourt          = "court"
	NodeTypeManualChunk    = "manual_chunk"
	NodeTypeDocumentChunk  = "document_chunk"
)

// Node is an atomic addressable unit in the knowledge graph: a statute
// section, constitutional provision, court record, authority record,
// named-law alias, or supporting document chunk.
//
// Source names the provenance table the node was ingested from and
// SourceID is the lookup key within that provenance. Nodes are immutable
// once loaded.
type Node struct {
	ID       int64  `json:"node_id"`
	Source   string `json:"source"`
	SourceID string `json:"source_id"`
	NodeType string `json:"node_type"`
}

// DocKey identifies the source document independent of which chunk or node
// represents it. Distinct embedded chunks of the same document share a key.
func (n Node) DocKey() string {
	return n.Source + "|" + n.SourceID
}

// Edge is a directed, typed relation between two nodes. Multiple edges
// between the same pair with different relation types may coexist.
type Edge struct {
	FromID  int64   `json:"from_id"`
	ToID    int64   `json:"to_id"`
	RelType string  `json:"rel_type"`
	Weight  float64 `json:"weight,omitempty"`
}

// EmbeddingRecord pairs a node with its dense embedding vector. All vectors
// in a corpus share one dimension; this is checked at query time rather than
// load time, since a corpus may contain zero embeddings.
type EmbeddingRecord struct {
	Node
	Vector []float32 `json:"-"`
}

// AnswerCandidate is one ranked passage in a search result, with the
// component scores that produced its final score.
type AnswerCandidate struct {
	NodeID         int64   `json:"node_id"`
	Source         string  `json:"source"`
	SourceID       string  `json:"source_id"`
	NodeType       string  `json:"node_type"`
	Content        string  `json:"content"`
	Score          float64 `json:"score"`
	SemanticScore  float64 `json:"semantic_score"`
	LexicalScore   float64 `json:"lexical_score"`
	GraphCoherence float64 `json:"graph_coherence"`
}

// ContextNode is a structurally related node attached to a search result.
// Relation is one of "parent", "child", "cites", "cited_by" and
// AnchorNodeID names the answer it was discovered from.
type ContextNode struct {
	NodeID       int64  `json:"node_id"`
	Source       string `json:"source"`
	SourceID     string `json:"source_id"`
	NodeType     string `json:"node_type"`
	Content      string `json:"content"`
	Relation     string `json:"relation"`
	AnchorNodeID int64  `json:"anchor_node_id"`
}

// SearchResult is the structured response of a knowledge search: a small,
// deduplicated set of ranked passages plus structurally related context.
type SearchResult struct {
	Answers []AnswerCandidate `json:"answers"`
	Context []ContextNode     `json:"context"`
}

// NeighborEdge describes one adjacency of a node, with the resolved
// metadata of the node on the far side.
type NeighborEdge struct {
	Neighbor  Node   `json:"neighbor"`
	RelType   string `json:"rel_type"`
	Direction string `json:"direction"`
}

// NodeDetails is the full view of a single node: metadata, resolved source
// text, and adjacency grouped by relation and direction.
type NodeDetails struct {
	Node      Node               `json:"node"`
	Content   string             `json:"content"`
	Adjacency map[string][]int64 `json:"adjacency"`
}

// SimilarNode is one entry in a ranked by-embedding similarity listing.
type SimilarNode struct {
	Node  Node    `json:"node"`
	Score float64 `json:"score"`
}

// NodePreview is one entry of a paginated node listing, carrying a
// truncated text preview instead of the full resolved content.
type NodePreview struct {
	Node    Node   `json:"node"`
	Preview string `json:"preview"`
}

// Stats summarizes the loaded corpus.
type Stats struct {
	NodeCount      int            `json:"node_count"`
	EdgeCount      int            `json:"edge_count"`
	EmbeddingCount int            `json:"embedding_count"`
	NodeTypes      map[string]int `json:"node_types"`
	EdgeTypes      map[string]int `json:"edge_types"`
}

// FallbackLabel is the synthetic content used when a node's source text
// cannot be resolved from its provenance store.
func FallbackLabel(n Node) string {
	return fmt.Sprintf("%s:%s (%s)", n.Source, n.SourceID, n.NodeType)
}
