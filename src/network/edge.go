// Package network turns neighbourhood searches over an index into deduplicated, weighted edges between CDR3 sequences.
package network

import (
	"fmt"

	"github.com/will-rowe/cdrnet/src/alignment"
	"github.com/will-rowe/cdrnet/src/index"
	"github.com/will-rowe/cdrnet/src/seqio"
)

// Header is the first line of the edge table
const Header = "cdr3.1\tcdr3.2\tsame.ag\tsubst\tins\tdel\tedge.id\tweight"

// Edge connects two sequences that are within the search constraint of each other
type Edge struct {
	Seq1          seqio.Sequence
	Seq2          seqio.Sequence
	SameLabel     bool
	Substitutions int
	Insertions    int
	Deletions     int
	Weight        int
}

// Weight is the length of the longer sequence minus one per substitution and three per indel
func Weight(len1, len2, subst, ins, del int) int {
	longest := len1
	if len2 > longest {
		longest = len2
	}
	return longest - subst - index.IndelCost*(ins+del)
}

// Owns reports if the edge between r and c is emitted from the search of r
// only the lexicographically greater sequence of a pair emits it, which also rules out self edges
func Owns(r, c *seqio.Record) bool {
	return r.Seq.Compare(c.Seq) > 0
}

// NewEdge builds the edge from record r to neighbour c, counting the edits of the script from r to c
func NewEdge(r, c *seqio.Record, mutations alignment.Mutations) *Edge {
	subst, ins, del := mutations.Counts()
	return &Edge{
		Seq1:          r.Seq,
		Seq2:          c.Seq,
		SameLabel:     r.SharesLabel(c),
		Substitutions: subst,
		Insertions:    ins,
		Deletions:     del,
		Weight:        Weight(r.Seq.Len(), c.Seq.Len(), subst, ins, del),
	}
}

// ID returns the edge identifier used in the edge table
func (Edge *Edge) ID() string {
	return fmt.Sprintf("%v (pp) %v", Edge.Seq1, Edge.Seq2)
}

// Line returns the edge as a row of the edge table, without the newline
func (Edge *Edge) Line() string {
	sameLabel := 0
	if Edge.SameLabel {
		sameLabel = 1
	}
	return fmt.Sprintf("%v\t%v\t%d\t%d\t%d\t%d\t%v\t%d", Edge.Seq1, Edge.Seq2, sameLabel, Edge.Substitutions, Edge.Insertions, Edge.Deletions, Edge.ID(), Edge.Weight)
}
