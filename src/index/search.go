package index

import (
	"fmt"

	"github.com/will-rowe/cdrnet/src/alignment"
	"github.com/will-rowe/cdrnet/src/seqio"
)

// Constraint bounds a single search, each kind of edit is capped independently
// the edits are counted in the edit script from the query to the stored sequence:
// an insertion is a stored residue the query lacks, a deletion is a query residue the stored sequence lacks
type Constraint struct {
	MaxSubstitutions int
	MaxInsertions    int
	MaxDeletions     int
}

// NewConstraint returns a Constraint that uses the same cap for insertions and deletions
func NewConstraint(maxSubstitutions, maxIndels int) Constraint {
	return Constraint{
		MaxSubstitutions: maxSubstitutions,
		MaxInsertions:    maxIndels,
		MaxDeletions:     maxIndels,
	}
}

// Validate checks that no cap is negative
func (Constraint Constraint) Validate() error {
	if Constraint.MaxSubstitutions < 0 || Constraint.MaxInsertions < 0 || Constraint.MaxDeletions < 0 {
		return fmt.Errorf("search constraint caps must not be negative: %+v", Constraint)
	}
	return nil
}

// Hit is a stored sequence reached by a search, together with the edit script from the query to it
// the Mutations slice is reused by the search and is only valid during the visit call, copy it to keep it
type Hit struct {
	Payload   int
	Target    seqio.Sequence
	Mutations alignment.Mutations
	node      int32
}

// searcher holds the state of one depth-first search
type searcher struct {
	nodes      []Node
	query      seqio.Sequence
	constraint Constraint
	path       []byte
	mutations  alignment.Mutations
	visit      func(*Hit) bool
	stopped    bool
}

// Search walks the tree and the query together and calls visit for every edit script that reaches a
// stored sequence within the constraint. Every branch is explored, so a stored sequence can be
// visited more than once (once per edit script). Returning false from visit ends the search.
//
// At each step the branches are tried in a fixed order, which sets the order of the visits:
//  1. match the next query residue with the same child
//  2. substitute the next query residue with each other child, in code order
//  3. insert each child residue, in code order
//  4. delete the next query residue
//
// Adjacent indels that only reorder or cancel each other are not followed: a deletion never comes
// straight after an insertion, and an insertion never re-inserts the query residue just deleted.
// The deletions of a gap are therefore always reported before its insertions.
func (Index *Index) Search(query seqio.Sequence, constraint Constraint, visit func(*Hit) bool) {
	s := &searcher{
		nodes:      Index.Nodes,
		query:      query,
		constraint: constraint,
		path:       make([]byte, 0, query.Len()+constraint.MaxInsertions),
		mutations:  make(alignment.Mutations, 0, constraint.MaxSubstitutions+constraint.MaxInsertions+constraint.MaxDeletions),
		visit:      visit,
	}
	s.walk(0, 0, 0, 0, 0, stepMatch)
}

// step is the kind of the edit that led to the current search state
type step uint8

const (
	stepMatch step = iota
	stepSubstitution
	stepInsertion
	stepDeletion
)

// walk is the recursive step of the search
// node is the current tree node, pos the query cursor, subst/ins/del the edits used so far and last the edit that got here
func (s *searcher) walk(node int32, pos, subst, ins, del int, last step) {
	if s.stopped {
		return
	}
	n := &s.nodes[node]

	// prune if no stored sequence below this node has a length the remaining indels can reach
	depth := int32(len(s.path))
	remaining := int32(s.query.Len() - pos)
	if n.MaxLen < 0 || n.MaxLen-depth-remaining < -int32(s.constraint.MaxDeletions-del) || n.MinLen-depth-remaining > int32(s.constraint.MaxInsertions-ins) {
		return
	}

	// the whole query has been consumed at a stored sequence
	if n.Terminal && pos == s.query.Len() {
		hit := &Hit{
			Payload:   n.Payload,
			Target:    seqio.SequenceFromCodes(s.path),
			Mutations: s.mutations,
			node:      node,
		}
		if !s.visit(hit) {
			s.stopped = true
			return
		}
	}

	// match and substitution
	if pos < s.query.Len() {
		q := s.query.At(pos)
		if child, ok := n.child(q); ok {
			s.path = append(s.path, q)
			s.walk(child, pos+1, subst, ins, del, stepMatch)
			s.path = s.path[:len(s.path)-1]
		}
		if subst < s.constraint.MaxSubstitutions {
			for _, edge := range n.Edges {
				if edge.Symbol == q {
					continue
				}
				s.push(edge.Symbol, alignment.Mutation{Type: alignment.Substitution, Position: pos, From: q, To: edge.Symbol})
				s.walk(edge.Child, pos+1, subst+1, ins, del, stepSubstitution)
				s.pop(true)
			}
		}
	}

	// insertion: the stored sequence has a residue the query lacks
	if ins < s.constraint.MaxInsertions {
		for _, edge := range n.Edges {
			// deleting a residue and inserting it straight back is a match
			if last == stepDeletion && edge.Symbol == s.query.At(pos-1) {
				continue
			}
			s.push(edge.Symbol, alignment.Mutation{Type: alignment.Insertion, Position: pos, To: edge.Symbol})
			s.walk(edge.Child, pos, subst, ins+1, del, stepInsertion)
			s.pop(true)
		}
	}

	// deletion: the query has a residue the stored sequence lacks
	// an insertion followed by a deletion is the same gap as the deletion followed by the insertion
	if pos < s.query.Len() && del < s.constraint.MaxDeletions && last != stepInsertion {
		s.mutations = append(s.mutations, alignment.Mutation{Type: alignment.Deletion, Position: pos, From: s.query.At(pos)})
		s.walk(node, pos+1, subst, ins, del+1, stepDeletion)
		s.pop(false)
	}
}

// push extends the current path by a residue and records the mutation that got there
func (s *searcher) push(symbol byte, mutation alignment.Mutation) {
	s.path = append(s.path, symbol)
	s.mutations = append(s.mutations, mutation)
}

// pop undoes the last mutation, and the last path residue if the mutation consumed one
func (s *searcher) pop(consumedPath bool) {
	if consumedPath {
		s.path = s.path[:len(s.path)-1]
	}
	s.mutations = s.mutations[:len(s.mutations)-1]
}
