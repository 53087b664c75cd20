// Package index is a prefix tree over CDR3 sequences that can be searched for every stored sequence
// within a budget of substitutions, insertions and deletions of a query.
//
// The tree is held in a single slice of nodes (node 0 is the root) and children are referenced by
// their offset into that slice. An Index is built with Insert and is then read-only: Search and
// Neighbourhood do not modify it and can be called from many go routines at once. Insert must not
// be called while searches are running.
package index

import (
	"github.com/will-rowe/cdrnet/src/seqio"
)

// Edge links a node to a child node, labelled with a residue code
type Edge struct {
	Symbol byte
	Child  int32
}

// Node is a node of the tree, the path from the root spells a prefix of one or more stored sequences
type Node struct {
	Edges    []Edge // sorted by Symbol
	Terminal bool   // a stored sequence ends here
	Payload  int    // the payload of the stored sequence (only if Terminal)
	MinLen   int32  // length of the shortest stored sequence in this subtree
	MaxLen   int32  // length of the longest stored sequence in this subtree
}

// Index is the prefix tree
type Index struct {
	Nodes []Node
	Size  int // the number of stored sequences
}

// NewIndex is the Index constructor
func NewIndex() *Index {
	return &Index{Nodes: []Node{{MinLen: -1, MaxLen: -1}}}
}

// Len returns the number of sequences held in the index
func (Index *Index) Len() int {
	return Index.Size
}

// child returns the child of a node along the edge labelled symbol
func (node *Node) child(symbol byte) (int32, bool) {
	edges := node.Edges
	lo, hi := 0, len(edges)
	for lo < hi {
		mid := (lo + hi) / 2
		if edges[mid].Symbol < symbol {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo < len(edges) && edges[lo].Symbol == symbol {
		return edges[lo].Child, true
	}
	return 0, false
}

// updateLengths records that a sequence of length l is stored below the node
func (node *Node) updateLengths(l int32) {
	if node.MinLen < 0 || l < node.MinLen {
		node.MinLen = l
	}
	if l > node.MaxLen {
		node.MaxLen = l
	}
}

// Insert is a method to add a sequence to the index, inserting a stored sequence again replaces its payload
func (Index *Index) Insert(seq seqio.Sequence, payload int) {
	l := int32(seq.Len())
	current := int32(0)
	Index.Nodes[current].updateLengths(l)
	for i := 0; i < seq.Len(); i++ {
		symbol := seq.At(i)
		next, ok := Index.Nodes[current].child(symbol)
		if !ok {
			next = int32(len(Index.Nodes))
			Index.Nodes = append(Index.Nodes, Node{MinLen: l, MaxLen: l})
			Index.addEdge(current, Edge{Symbol: symbol, Child: next})
		}
		current = next
		Index.Nodes[current].updateLengths(l)
	}
	node := &Index.Nodes[current]
	if !node.Terminal {
		node.Terminal = true
		Index.Size++
	}
	node.Payload = payload
}

// addEdge inserts an edge into a node, keeping the edges sorted
func (Index *Index) addEdge(parent int32, edge Edge) {
	edges := Index.Nodes[parent].Edges
	pos := len(edges)
	for pos > 0 && edges[pos-1].Symbol > edge.Symbol {
		pos--
	}
	edges = append(edges, Edge{})
	copy(edges[pos+1:], edges[pos:])
	edges[pos] = edge
	Index.Nodes[parent].Edges = edges
}

// Get returns the payload of a stored sequence
func (Index *Index) Get(seq seqio.Sequence) (int, bool) {
	current := int32(0)
	for i := 0; i < seq.Len(); i++ {
		next, ok := Index.Nodes[current].child(seq.At(i))
		if !ok {
			return 0, false
		}
		current = next
	}
	node := &Index.Nodes[current]
	if !node.Terminal {
		return 0, false
	}
	return node.Payload, true
}

// FromRecords builds an index over a set of records, the payload of each sequence is the record's offset in the slice
func FromRecords(records []*seqio.Record) *Index {
	idx := NewIndex()
	for i, record := range records {
		idx.Insert(record.Seq, i)
	}
	return idx
}
