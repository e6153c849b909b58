package retrieval

import (
	"github.com/geoffsee/proseva-sub005/pkg/common"
)

// Triage thresholds. The score-similarity proxy between two candidates is
// 1 - |scoreA - scoreB|: near-identical scores suggest the nodes cover
// near-identical ground.
const (
	missingEdgeProxyThreshold = 0.80
	noisyEdgeProxyThreshold   = 0.35
	noisyEdgeScanLimit        = 50
)

func scoreProxy(a, b float64) float64 {
	d := a - b
	if d < 0 {
		d = -d
	}
	return 1 - d
}

// reportDuplicateClusters emits one event per docKey that appears with
// more than one chunk in the raw stage-1 pool.
func (e *Engine) reportDuplicateClusters(queryID string, rawPool []candidate) {
	groups := make(map[string][]candidate)
	order := make([]string, 0)
	for _, c := range rawPool {
		if _, ok := groups[c.docKey]; !ok {
			order = append(order, c.docKey)
		}
		groups[c.docKey] = append(groups[c.docKey], c)
	}

	for _, key := range order {
		members := groups[key]
		if len(members) < 2 {
			continue
		}
		ids := make([]int64, 0, len(members))
		scores := make([]float64, 0, len(members))
		for _, m := range members {
			ids = append(ids, m.rec.ID)
			scores = append(scores, m.semanticScore)
		}
		e.sink.Record(DiagEvent{
			Kind:    DiagDuplicateCluster,
			QueryID: queryID,
			DocKey:  key,
			NodeIDs: ids,
			Scores:  scores,
		})
	}
}

// reportMissingEdges scans final answer pairs for nodes that score almost
// identically but have no structural path within two hops; those pairs are
// candidate missing edges in the graph.
func (e *Engine) reportMissingEdges(queryID string, answers []common.AnswerCandidate) {
	for i := 0; i < len(answers); i++ {
		for j := i + 1; j < len(answers); j++ {
			proxy := scoreProxy(answers[i].Score, answers[j].Score)
			if proxy <= missingEdgeProxyThreshold {
				continue
			}
			if e.adj.ConnectedWithin2Hops(answers[i].NodeID, answers[j].NodeID) {
				continue
			}
			e.sink.Record(DiagEvent{
				Kind:    DiagMissingEdge,
				QueryID: queryID,
				NodeA:   answers[i].NodeID,
				NodeB:   answers[j].NodeID,
				Proxy:   proxy,
			})
		}
	}
}

// reportNoisyEdges scans the top stage-1 candidates for directly connected
// pairs whose scores diverge sharply; those edges are candidates for
// removal or re-weighting.
func (e *Engine) reportNoisyEdges(queryID string, pool []candidate) {
	limit := noisyEdgeScanLimit
	if limit > len(pool) {
		limit = len(pool)
	}
	for i := 0; i < limit; i++ {
		for j := i + 1; j < limit; j++ {
			proxy := scoreProxy(pool[i].semanticScore, pool[j].semanticScore)
			if proxy >= noisyEdgeProxyThreshold {
				continue
			}
			if !e.adj.DirectStructuralEdge(pool[i].rec.ID, pool[j].rec.ID) {
				continue
			}
			e.sink.Record(DiagEvent{
				Kind:    DiagNoisyEdge,
				QueryID: queryID,
				NodeA:   pool[i].rec.ID,
				NodeB:   pool[j].rec.ID,
				Proxy:   proxy,
			})
		}
	}
}
