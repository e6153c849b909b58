package graphindex

import (
	"math"
	"reflect"
	"testing"

	"github.com/geoffsee/proseva-sub005/pkg/common"
)

func edge(from, to int64, rel string) common.Edge {
	return common.Edge{FromID: from, ToID: to, RelType: rel}
}

func idSet(ids ...int64) map[int64]struct{} {
	out := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out
}

func TestBuild_Symmetry(t *testing.T) {
	ix := Build([]common.Edge{
		edge(1, 2, common.RelContains),
		edge(2, 3, common.RelCites),
		edge(3, 1, common.RelReferences),
	})

	if got := ix.Neighbors(1, common.RelContains, DirOut); !reflect.DeepEqual(got, []int64{2}) {
		t.Fatalf("contains out of 1: got %v", got)
	}
	if got := ix.Neighbors(2, common.RelContains, DirIn); !reflect.DeepEqual(got, []int64{1}) {
		t.Fatalf("contains in of 2: got %v", got)
	}
	if got := ix.Neighbors(3, common.RelCites, DirIn); !reflect.DeepEqual(got, []int64{2}) {
		t.Fatalf("cites in of 3: got %v", got)
	}
	if got := ix.Neighbors(3, common.RelReferences, DirOut); !reflect.DeepEqual(got, []int64{1}) {
		t.Fatalf("references out of 3: got %v", got)
	}
	if got := ix.Neighbors(99, common.RelCites, DirOut); got != nil {
		t.Fatalf("unknown node should have no neighbors, got %v", got)
	}
}

func TestSiblings(t *testing.T) {
	// Title 10 contains sections 11, 12, 13; title 20 contains 13 and 21.
	ix := Build([]common.Edge{
		edge(10, 11, common.RelContains),
		edge(10, 12, common.RelContains),
		edge(10, 13, common.RelContains),
		edge(20, 13, common.RelContains),
		edge(20, 21, common.RelContains),
	})

	got := ix.Siblings(13)
	want := idSet(11, 12, 21)
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("siblings of 13: got %v, want %v", got, want)
	}

	if len(ix.Siblings(10)) != 0 {
		t.Fatal("a root container has no siblings")
	}
}

func TestSharesContainsParent(t *testing.T) {
	ix := Build([]common.Edge{
		edge(10, 11, common.RelContains),
		edge(10, 12, common.RelContains),
		edge(20, 21, common.RelContains),
	})

	if !ix.SharesContainsParent(11, 12) {
		t.Fatal("11 and 12 share parent 10")
	}
	if ix.SharesContainsParent(11, 21) {
		t.Fatal("11 and 21 have different parents")
	}
	if ix.SharesContainsParent(11, 99) {
		t.Fatal("unknown node shares no parent")
	}
}

func TestGraphCoherence_BaseOverlap(t *testing.T) {
	// Node 1 cites 2, is cited by 3, and has sibling 4 under parent 10.
	ix := Build([]common.Edge{
		edge(1, 2, common.RelCites),
		edge(3, 1, common.RelCites),
		edge(10, 1, common.RelContains),
		edge(10, 4, common.RelContains),
	})

	pool := idSet(1, 2, 3, 4, 5)
	got := ix.GraphCoherence(1, pool, nil)
	// Neighborhood {2,3,4} all in pool; pool size 5.
	want := 3.0 / 5.0
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("coherence: got %v, want %v", got, want)
	}
}

func TestGraphCoherence_EmptyPool(t *testing.T) {
	ix := Build([]common.Edge{edge(1, 2, common.RelCites)})
	if got := ix.GraphCoherence(1, nil, nil); got != 0 {
		t.Fatalf("empty pool coherence: got %v, want 0", got)
	}
}

func TestGraphCoherence_ReferenceBonus(t *testing.T) {
	// Node 1 references 5 and 6, whose contains parent 30 is a top
	// statute parent. No citation or sibling overlap with the pool.
	ix := Build([]common.Edge{
		edge(1, 5, common.RelReferences),
		edge(1, 6, common.RelReferences),
		edge(30, 5, common.RelContains),
		edge(30, 6, common.RelContains),
	})

	pool := idSet(7, 8)
	got := ix.GraphCoherence(1, pool, idSet(30))
	want := 0.2
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("coherence with bonus: got %v, want %v", got, want)
	}

	// No bonus when the parent is not a top statute parent.
	if got := ix.GraphCoherence(1, pool, idSet(99)); got != 0 {
		t.Fatalf("coherence without qualifying parent: got %v, want 0", got)
	}
}

func TestGraphCoherence_ClampedToOne(t *testing.T) {
	edges := []common.Edge{
		edge(2, 1, common.RelCites),
	}
	// Many qualifying references push the running score past 1.0.
	for i := int64(0); i < 15; i++ {
		target := 100 + i
		edges = append(edges,
			edge(1, target, common.RelReferences),
			edge(50, target, common.RelContains),
		)
	}
	ix := Build(edges)

	pool := idSet(1, 2)
	got := ix.GraphCoherence(1, pool, idSet(50))
	if got != 1.0 {
		t.Fatalf("coherence should clamp to 1.0, got %v", got)
	}
}

func TestConnectedWithin2Hops(t *testing.T) {
	ix := Build([]common.Edge{
		edge(1, 2, common.RelCites),
		edge(2, 3, common.RelContains),
		edge(4, 5, common.RelReferences),
	})

	tests := []struct {
		name string
		a, b int64
		want bool
	}{
		{name: "direct cites", a: 1, b: 2, want: true},
		{name: "direct reversed", a: 2, b: 1, want: true},
		{name: "two hops", a: 1, b: 3, want: true},
		{name: "references does not count", a: 4, b: 5, want: false},
		{name: "unconnected", a: 1, b: 5, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ix.ConnectedWithin2Hops(tt.a, tt.b); got != tt.want {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBuild_IgnoresUnknownRelType(t *testing.T) {
	ix := Build([]common.Edge{
		edge(1, 2, "related_somehow"),
	})
	if got := ix.Neighbors(1, common.RelCites, DirOut); got != nil {
		t.Fatalf("unexpected neighbors: %v", got)
	}
}
