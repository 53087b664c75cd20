package index

import (
	"github.com/will-rowe/cdrnet/src/alignment"
	"github.com/will-rowe/cdrnet/src/seqio"
)

// IndelCost is how many substitutions an insertion or deletion counts for, when edit scripts are ranked and edges weighted
const IndelCost = 3

// Neighbour is a stored sequence found near a query
// the alignment uses the query as its reference and the stored sequence as its query
type Neighbour struct {
	Payload   int
	Alignment *alignment.Alignment
}

// Neighbourhood returns the stored sequences within the constraint of the query, in the order the search
// first reached them. When a stored sequence is reached by more than one edit script, the cheapest is
// kept (substitutions plus three per indel, then fewest indels, then the first found), so the counts
// reported from either end of a pair mirror each other. The query itself is included if it is stored
// in the index.
func (Index *Index) Neighbourhood(query seqio.Sequence, constraint Constraint) []Neighbour {
	neighbours := []Neighbour{}
	seen := make(map[int32]int)
	Index.Search(query, constraint, func(hit *Hit) bool {
		i, ok := seen[hit.node]
		if ok && !cheaper(hit.Mutations, neighbours[i].Alignment.Mutations) {
			return true
		}
		aln := alignment.NewAlignment(query, hit.Target, hit.Mutations.Copy())

		// the search only reports hits once the whole query is consumed, this guards that anchoring
		if !aln.FullLength() {
			return true
		}
		if ok {
			neighbours[i].Alignment = aln
			return true
		}
		seen[hit.node] = len(neighbours)
		neighbours = append(neighbours, Neighbour{Payload: hit.Payload, Alignment: aln})
		return true
	})
	return neighbours
}

// cheaper reports whether edit script a ranks strictly before edit script b
func cheaper(a, b alignment.Mutations) bool {
	aSubst, aIns, aDel := a.Counts()
	bSubst, bIns, bDel := b.Counts()
	aCost, bCost := aSubst+IndelCost*(aIns+aDel), bSubst+IndelCost*(bIns+bDel)
	if aCost != bCost {
		return aCost < bCost
	}
	return aIns+aDel < bIns+bDel
}
