package retrieval

import (
	"fmt"
	"sort"

	"github.com/geoffsee/proseva-sub005/pkg/common"
	"github.com/geoffsee/proseva-sub005/pkg/graphindex"
	"github.com/geoffsee/proseva-sub005/pkg/lexical"
)

// Final-score blend weights. They must sum to 1.0 so the final score stays
// in the same [0, 1]-ish range as its components.
const (
	weightSemantic  = 0.55
	weightLexical   = 0.25
	weightCoherence = 0.20
)

func init() {
	if weightSemantic+weightLexical+weightCoherence != 1.0 {
		panic(fmt.Sprintf("re-rank weights must sum to 1.0, got %v",
			weightSemantic+weightLexical+weightCoherence))
	}
}

// rankedCandidate pairs a stage-1 candidate with its stage-2 component
// scores and blended final score.
type rankedCandidate struct {
	candidate
	lexicalScore   float64
	graphCoherence float64
	finalScore     float64
}

// rerank computes lexical and graph-coherence scores for every pool
// candidate and sorts by the blended final score, descending, stable on
// ties (pool order is the tiebreak).
func rerank(
	pool []candidate,
	queryTokens []string,
	adj *graphindex.Index,
	statuteParents map[int64]struct{},
) []rankedCandidate {
	poolIDs := poolIDSet(pool)

	ranked := make([]rankedCandidate, 0, len(pool))
	for _, c := range pool {
		lex := lexical.OverlapScore(queryTokens, c.chunkText)
		coh := adj.GraphCoherence(c.rec.ID, poolIDs, statuteParents)
		ranked = append(ranked, rankedCandidate{
			candidate:      c,
			lexicalScore:   lex,
			graphCoherence: coh,
			finalScore:     c.semanticScore*weightSemantic + lex*weightLexical + coh*weightCoherence,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].finalScore > ranked[j].finalScore
	})
	return ranked
}

// selectAnswers greedily walks the re-ranked list and picks up to topK
// candidates, skipping any whose document was already selected. No two
// answers ever share the same source document, even if stage-1 dedup
// missed a case.
func selectAnswers(ranked []rankedCandidate, topK int) []common.AnswerCandidate {
	if topK <= 0 {
		return nil
	}

	seenDocs := make(map[string]struct{}, topK)
	answers := make([]common.AnswerCandidate, 0, topK)
	for _, rc := range ranked {
		if _, ok := seenDocs[rc.docKey]; ok {
			continue
		}
		seenDocs[rc.docKey] = struct{}{}
		answers = append(answers, common.AnswerCandidate{
			NodeID:         rc.rec.ID,
			Source:         rc.rec.Source,
			SourceID:       rc.rec.SourceID,
			NodeType:       rc.rec.NodeType,
			Content:        rc.chunkText,
			Score:          rc.finalScore,
			SemanticScore:  rc.semanticScore,
			LexicalScore:   rc.lexicalScore,
			GraphCoherence: rc.graphCoherence,
		})
		if len(answers) >= topK {
			break
		}
	}
	return answers
}
