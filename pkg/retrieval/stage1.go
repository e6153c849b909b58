package retrieval

import (
	"context"
	"sort"

	"github.com/geoffsee/proseva-sub005/pkg/common"
	"github.com/geoffsee/proseva-sub005/pkg/graphindex"
	"github.com/geoffsee/proseva-sub005/pkg/lexical"
	"github.com/geoffsee/proseva-sub005/pkg/logger"
	"github.com/geoffsee/proseva-sub005/pkg/similarity"
)

// DefaultPoolSize bounds the stage-1 broad-recall pool.
const DefaultPoolSize = 200

// nearDuplicateGap is the score gap below which two candidates under a
// common contains parent are treated as redundant sibling chunks.
const nearDuplicateGap = 0.02

// repealDemotionFactor demotes candidates whose text marks a repealed
// provision, unless the query itself asks about repeals.
const repealDemotionFactor = 0.4

// Per-node-type score priors. Types not listed use defaultTypePrior.
var typePriors = map[string]float64{
	common.NodeTypeSection:      1.0,
	common.NodeTypeConstitution: 1.0,
	common.NodeTypeNamedLaw:     0.85,
	common.NodeTypeAuthority:    0.55,
	common.NodeTypeCourt:        0.70,
	common.NodeTypeManualChunk:  0.50,
}

const defaultTypePrior = 0.80

// candidate is one transient stage-1 pool entry. Scoring phases never
// mutate candidates in place; each phase returns adjusted copies.
type candidate struct {
	rec           common.EmbeddingRecord
	semanticScore float64
	chunkText     string
	docKey        string
	poolRank      int
}

// buildPool extracts the top P entries of the similarity ranking and
// resolves each candidate's source text, substituting a synthetic label
// when resolution fails or returns nothing.
func (e *Engine) buildPool(ctx context.Context, ranked []similarity.Scored, poolSize int) []candidate {
	if poolSize > len(ranked) {
		poolSize = len(ranked)
	}

	records := e.store.Embeddings()
	pool := make([]candidate, 0, poolSize)
	for i := 0; i < poolSize; i++ {
		rec := records[ranked[i].Index]
		pool = append(pool, candidate{
			rec:           rec,
			semanticScore: ranked[i].Score,
			chunkText:     e.resolveText(ctx, rec.Node),
			docKey:        rec.DocKey(),
			poolRank:      i,
		})
	}
	return pool
}

func (e *Engine) resolveText(ctx context.Context, node common.Node) string {
	if e.resolver == nil {
		return common.FallbackLabel(node)
	}
	text, err := e.resolver.ResolveText(ctx, node)
	if err != nil {
		logger.Debug("[Retrieval] Text resolution failed",
			"node_id", node.ID,
			"source", node.Source,
			"err", err,
		)
		return common.FallbackLabel(node)
	}
	if text == "" {
		return common.FallbackLabel(node)
	}
	return text
}

// dedupeByDocument collapses distinct embedded chunks of the same document,
// keeping only the highest-scoring chunk per docKey, and re-sorts the pool
// descending by score.
func dedupeByDocument(pool []candidate) []candidate {
	best := make(map[string]candidate, len(pool))
	order := make([]string, 0, len(pool))
	for _, c := range pool {
		prev, ok := best[c.docKey]
		if !ok {
			best[c.docKey] = c
			order = append(order, c.docKey)
			continue
		}
		if c.semanticScore > prev.semanticScore {
			best[c.docKey] = c
		}
	}

	out := make([]candidate, 0, len(order))
	for _, key := range order {
		out = append(out, best[key])
	}
	sortByScore(out)
	return out
}

// suppressNearDuplicates walks the deduped pool in score order and drops
// any candidate whose score is within nearDuplicateGap of an already kept
// candidate that shares a direct contains parent with it. Only direct
// parents are inspected; siblings-of-siblings under different parents are
// a known blind spot kept for parity with the shipped heuristic.
func suppressNearDuplicates(pool []candidate, adj *graphindex.Index) []candidate {
	kept := make([]candidate, 0, len(pool))
	for _, c := range pool {
		suppressed := false
		for _, k := range kept {
			gap := k.semanticScore - c.semanticScore
			if gap < 0 {
				gap = -gap
			}
			if gap < nearDuplicateGap && adj.SharesContainsParent(k.rec.ID, c.rec.ID) {
				suppressed = true
				break
			}
		}
		if !suppressed {
			kept = append(kept, c)
		}
	}
	return kept
}

// applyTypePriors multiplies each candidate's semantic score by its
// node-type prior. A detected manual or authority intent lifts the matching
// type's prior to 1.0 for this query.
func applyTypePriors(pool []candidate, intents lexical.Intents) []candidate {
	out := make([]candidate, 0, len(pool))
	for _, c := range pool {
		prior, ok := typePriors[c.rec.NodeType]
		if !ok {
			prior = defaultTypePrior
		}
		if intents.Manual && c.rec.NodeType == common.NodeTypeManualChunk {
			prior = 1.0
		}
		if intents.Authority && c.rec.NodeType == common.NodeTypeAuthority {
			prior = 1.0
		}
		c.semanticScore *= prior
		out = append(out, c)
	}
	return out
}

// demoteRepealed multiplies the score of candidates whose resolved text
// marks a repealed provision, unless the query expresses repeal intent.
func demoteRepealed(pool []candidate, intents lexical.Intents) []candidate {
	if intents.Repeal {
		return pool
	}
	out := make([]candidate, 0, len(pool))
	for _, c := range pool {
		if lexical.MentionsRepealed(c.chunkText) {
			c.semanticScore *= repealDemotionFactor
		}
		out = append(out, c)
	}
	return out
}

func sortByScore(pool []candidate) {
	sort.SliceStable(pool, func(i, j int) bool {
		return pool[i].semanticScore > pool[j].semanticScore
	})
}

// topStatuteParents is the union of contains parents over the top 10
// stage-1 candidates of a primary statutory type.
func topStatuteParents(pool []candidate, adj *graphindex.Index) map[int64]struct{} {
	out := make(map[int64]struct{})
	seen := 0
	for _, c := range pool {
		if seen >= 10 {
			break
		}
		seen++
		if c.rec.NodeType != common.NodeTypeSection && c.rec.NodeType != common.NodeTypeConstitution {
			continue
		}
		for parent := range adj.NeighborSet(c.rec.ID, common.RelContains, graphindex.DirIn) {
			out[parent] = struct{}{}
		}
	}
	return out
}

// poolIDSet returns the node ids of the pool as a set.
func poolIDSet(pool []candidate) map[int64]struct{} {
	out := make(map[int64]struct{}, len(pool))
	for _, c := range pool {
		out[c.rec.ID] = struct{}{}
	}
	return out
}
