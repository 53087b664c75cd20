// Package alignment holds the edit scripts and alignments that relate two CDR3 sequences.
package alignment

import (
	"fmt"
	"strings"

	"github.com/will-rowe/cdrnet/src/seqio"
)

// MutationType is the kind of a single edit operation
type MutationType uint8

const (
	// Substitution replaces a reference residue with another
	Substitution MutationType = iota
	// Insertion adds a residue that the reference lacks
	Insertion
	// Deletion removes a reference residue
	Deletion
)

// String returns the one letter tag of the mutation type
func (MutationType MutationType) String() string {
	switch MutationType {
	case Substitution:
		return "S"
	case Insertion:
		return "I"
	case Deletion:
		return "D"
	}
	return "?"
}

// Mutation is a single edit operation, Position is relative to the reference
// From is the replaced or removed reference code (unused for insertions)
// To is the introduced code (unused for deletions)
// an insertion at Position p places To before reference residue p (p may equal the reference length)
type Mutation struct {
	Type     MutationType
	Position int
	From     byte
	To       byte
}

// String renders a mutation as S3:L>F, D3:L or I3:F
func (Mutation Mutation) String() string {
	switch Mutation.Type {
	case Substitution:
		return fmt.Sprintf("S%d:%c>%c", Mutation.Position, seqio.SymbolOf(Mutation.From), seqio.SymbolOf(Mutation.To))
	case Insertion:
		return fmt.Sprintf("I%d:%c", Mutation.Position, seqio.SymbolOf(Mutation.To))
	default:
		return fmt.Sprintf("D%d:%c", Mutation.Position, seqio.SymbolOf(Mutation.From))
	}
}

// Mutations is an edit script that transforms a reference sequence into a query sequence
// mutations are ordered by position; insertions at a position come before any substitution or deletion at it
type Mutations []Mutation

// Counts returns the number of substitutions, insertions and deletions in the script
func (Mutations Mutations) Counts() (subst, ins, del int) {
	for _, mutation := range Mutations {
		switch mutation.Type {
		case Substitution:
			subst++
		case Insertion:
			ins++
		case Deletion:
			del++
		}
	}
	return
}

// Copy returns a copy of the script
func (muts Mutations) Copy() Mutations {
	if muts == nil {
		return nil
	}
	dup := make(Mutations, len(muts))
	copy(dup, muts)
	return dup
}

// String renders the script as a comma separated list
func (Mutations Mutations) String() string {
	parts := make([]string, len(Mutations))
	for i, mutation := range Mutations {
		parts[i] = mutation.String()
	}
	return strings.Join(parts, ",")
}

// Apply runs the script against the reference and returns the resulting sequence
func (Mutations Mutations) Apply(reference seqio.Sequence) (seqio.Sequence, error) {
	result := make([]byte, 0, reference.Len()+len(Mutations))
	pos := 0
	for i, mutation := range Mutations {
		if mutation.Position < pos || mutation.Position > reference.Len() {
			return seqio.Sequence{}, fmt.Errorf("mutation %d (%v) is out of order or outside the reference", i, mutation)
		}
		for ; pos < mutation.Position; pos++ {
			result = append(result, reference.At(pos))
		}
		switch mutation.Type {
		case Insertion:
			result = append(result, mutation.To)
			continue
		case Substitution:
			if pos == reference.Len() || reference.At(pos) != mutation.From {
				return seqio.Sequence{}, fmt.Errorf("mutation %d (%v) does not match the reference", i, mutation)
			}
			result = append(result, mutation.To)
		case Deletion:
			if pos == reference.Len() || reference.At(pos) != mutation.From {
				return seqio.Sequence{}, fmt.Errorf("mutation %d (%v) does not match the reference", i, mutation)
			}
		}
		pos++
	}
	for ; pos < reference.Len(); pos++ {
		result = append(result, reference.At(pos))
	}
	return seqio.SequenceFromCodes(result), nil
}

// Invert returns the script that turns the query back into the reference, with positions relative to the query
func (muts Mutations) Invert() Mutations {
	inverted := make(Mutations, 0, len(muts))
	shift := 0
	for _, mutation := range muts {
		qPos := mutation.Position + shift
		switch mutation.Type {
		case Substitution:
			inverted = append(inverted, Mutation{Type: Substitution, Position: qPos, From: mutation.To, To: mutation.From})
		case Insertion:
			inverted = append(inverted, Mutation{Type: Deletion, Position: qPos, From: mutation.To})
			shift++
		case Deletion:
			inverted = append(inverted, Mutation{Type: Insertion, Position: qPos, To: mutation.From})
			shift--
		}
	}
	return inverted
}

// Range is a half-open interval of sequence positions
type Range struct {
	From int
	To   int
}

// Len returns the number of positions covered by the range
func (Range Range) Len() int {
	return Range.To - Range.From
}

// Alignment relates a reference sequence to a query sequence through an edit script
// when produced by an index search, the searched sequence is the reference and the stored neighbour is the query
type Alignment struct {
	Reference      seqio.Sequence
	Query          seqio.Sequence
	Mutations      Mutations
	ReferenceRange Range
}

// NewAlignment returns an alignment anchored over the whole reference
func NewAlignment(reference, query seqio.Sequence, mutations Mutations) *Alignment {
	return &Alignment{
		Reference:      reference,
		Query:          query,
		Mutations:      mutations,
		ReferenceRange: Range{From: 0, To: reference.Len()},
	}
}

// FullLength is true if the alignment covers the entire reference
func (Alignment *Alignment) FullLength() bool {
	return Alignment.ReferenceRange.From == 0 && Alignment.ReferenceRange.Len() == Alignment.Reference.Len()
}

// Validate checks that the edit script turns the reference into the query
func (Alignment *Alignment) Validate() error {
	result, err := Alignment.Mutations.Apply(Alignment.Reference)
	if err != nil {
		return err
	}
	if result != Alignment.Query {
		return fmt.Errorf("edit script produces %v, not %v", result, Alignment.Query)
	}
	return nil
}

// Invert swaps the roles of reference and query
func (Alignment *Alignment) Invert() *Alignment {
	return NewAlignment(Alignment.Query, Alignment.Reference, Alignment.Mutations.Invert())
}
