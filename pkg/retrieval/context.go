package retrieval

import (
	"context"

	"github.com/geoffsee/proseva-sub005/pkg/common"
	"github.com/geoffsee/proseva-sub005/pkg/graphindex"
)

// MaxContextNodes caps the structurally related nodes attached to a
// search result.
const MaxContextNodes = 15

// Context relation labels, in expansion order per answer.
const (
	relationParent  = "parent"
	relationChild   = "child"
	relationCites   = "cites"
	relationCitedBy = "cited_by"
)

// expandContext walks the adjacency of each selected answer and emits
// related nodes labeled parent, child, cites, or cited_by. A node is never
// emitted twice and never emitted if it is one of the answers. Expansion
// stops as soon as the cap is reached, even mid-answer.
func (e *Engine) expandContext(ctx context.Context, answers []common.AnswerCandidate) []common.ContextNode {
	answerIDs := make(map[int64]struct{}, len(answers))
	for _, a := range answers {
		answerIDs[a.NodeID] = struct{}{}
	}

	type expansion struct {
		relType   string
		direction string
		label     string
	}
	expansions := []expansion{
		{common.RelContains, graphindex.DirIn, relationParent},
		{common.RelContains, graphindex.DirOut, relationChild},
		{common.RelCites, graphindex.DirOut, relationCites},
		{common.RelCites, graphindex.DirIn, relationCitedBy},
	}

	emitted := make(map[int64]struct{})
	out := make([]common.ContextNode, 0, MaxContextNodes)
	for _, a := range answers {
		for _, ex := range expansions {
			for _, id := range e.adj.Neighbors(a.NodeID, ex.relType, ex.direction) {
				if len(out) >= MaxContextNodes {
					return out
				}
				if _, ok := answerIDs[id]; ok {
					continue
				}
				if _, ok := emitted[id]; ok {
					continue
				}
				node, ok := e.store.Node(id)
				if !ok {
					continue
				}
				emitted[id] = struct{}{}
				out = append(out, common.ContextNode{
					NodeID:       node.ID,
					Source:       node.Source,
					SourceID:     node.SourceID,
					NodeType:     node.NodeType,
					Content:      e.resolveText(ctx, node),
					Relation:     ex.label,
					AnchorNodeID: a.NodeID,
				})
			}
		}
	}
	return out
}
