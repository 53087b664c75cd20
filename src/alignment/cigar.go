package alignment

import (
	"github.com/biogo/hts/sam"
)

// Cigar returns the SAM CIGAR for the alignment, with the reference as the SAM reference and the query as the read
// substituted positions are reported as alignment matches (M), as SAM does not separate them
func (Alignment *Alignment) Cigar() sam.Cigar {
	cigar := sam.Cigar{}
	add := func(opType sam.CigarOpType, n int) {
		if n == 0 {
			return
		}
		if last := len(cigar) - 1; last >= 0 && cigar[last].Type() == opType {
			cigar[last] = sam.NewCigarOp(opType, cigar[last].Len()+n)
			return
		}
		cigar = append(cigar, sam.NewCigarOp(opType, n))
	}
	pos := Alignment.ReferenceRange.From
	for _, mutation := range Alignment.Mutations {
		add(sam.CigarMatch, mutation.Position-pos)
		pos = mutation.Position
		switch mutation.Type {
		case Insertion:
			add(sam.CigarInsertion, 1)
		case Deletion:
			add(sam.CigarDeletion, 1)
			pos++
		case Substitution:
			add(sam.CigarMatch, 1)
			pos++
		}
	}
	add(sam.CigarMatch, Alignment.ReferenceRange.To-pos)
	return cigar
}

// EditDistance is the total number of edits in the alignment, as reported by the SAM NM tag
func (Alignment *Alignment) EditDistance() int {
	return len(Alignment.Mutations)
}
