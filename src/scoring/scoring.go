// Package scoring scores alignments against a substitution matrix with a linear gap penalty.
package scoring

import (
	"fmt"
	"io/ioutil"

	"github.com/will-rowe/cdrnet/src/alignment"
	"github.com/will-rowe/cdrnet/src/seqio"
	"gopkg.in/yaml.v3"
)

// Scheme is a substitution score for every pair of alphabet codes plus a penalty per inserted or deleted residue
type Scheme struct {
	Matrix     [seqio.AlphabetSize][seqio.AlphabetSize]int
	GapPenalty int
}

// NewScheme builds a scheme from a matrix whose rows and columns are in the order of symbols
// every symbol of the cdrnet alphabet must be present, symbols outside the alphabet are ignored
func NewScheme(symbols string, matrix [][]int, gapPenalty int) (*Scheme, error) {
	if len(matrix) != len(symbols) {
		return nil, fmt.Errorf("substitution matrix has %d rows for %d symbols", len(matrix), len(symbols))
	}
	seen := make(map[byte]struct{})
	scheme := &Scheme{GapPenalty: gapPenalty}
	for i := 0; i < len(symbols); i++ {
		if len(matrix[i]) != len(symbols) {
			return nil, fmt.Errorf("substitution matrix row %d has %d columns for %d symbols", i, len(matrix[i]), len(symbols))
		}
		from, ok := seqio.CodeOf(symbols[i])
		if !ok {
			continue
		}
		seen[from] = struct{}{}
		for j := 0; j < len(symbols); j++ {
			to, ok := seqio.CodeOf(symbols[j])
			if !ok {
				continue
			}
			scheme.Matrix[from][to] = matrix[i][j]
		}
	}
	if len(seen) != seqio.AlphabetSize {
		for code := 0; code < seqio.AlphabetSize; code++ {
			if _, ok := seen[byte(code)]; !ok {
				return nil, fmt.Errorf("substitution matrix has no scores for %q", seqio.SymbolOf(byte(code)))
			}
		}
	}
	return scheme, nil
}

// Score returns the substitution score for a pair of codes
func (Scheme *Scheme) Score(from, to byte) int {
	return Scheme.Matrix[from][to]
}

// ScoreAlignment scores an alignment relative to a perfect self alignment of its reference:
// the self score of every reference residue, plus the gap penalty for every insertion and deletion,
// plus the change in score for every substitution
func (Scheme *Scheme) ScoreAlignment(aln *alignment.Alignment) int {
	score := 0
	for i := 0; i < aln.Reference.Len(); i++ {
		code := aln.Reference.At(i)
		score += Scheme.Matrix[code][code]
	}
	for _, mutation := range aln.Mutations {
		switch mutation.Type {
		case alignment.Insertion, alignment.Deletion:
			score += Scheme.GapPenalty
		case alignment.Substitution:
			score += Scheme.Matrix[mutation.From][mutation.To] - Scheme.Matrix[mutation.From][mutation.From]
		}
	}
	return score
}

// Scorer pairs a scheme with the score an alignment needs to be accepted
type Scorer struct {
	Scheme    *Scheme
	Threshold int
}

// NewScorer is the Scorer constructor
func NewScorer(scheme *Scheme, threshold int) *Scorer {
	return &Scorer{Scheme: scheme, Threshold: threshold}
}

// Accept scores the alignment and reports if it reaches the threshold
func (Scorer *Scorer) Accept(aln *alignment.Alignment) (int, bool) {
	score := Scorer.Scheme.ScoreAlignment(aln)
	return score, score >= Scorer.Threshold
}

// schemeFile is the YAML layout of a scoring scheme
type schemeFile struct {
	Base       string  `yaml:"base"`
	Symbols    string  `yaml:"symbols"`
	Matrix     [][]int `yaml:"matrix"`
	GapPenalty *int    `yaml:"gapPenalty"`
	Threshold  int     `yaml:"threshold"`
}

// ParseScorer reads a YAML scoring scheme, either a full matrix or "base: blosum62"
func ParseScorer(data []byte) (*Scorer, error) {
	file := &schemeFile{}
	if err := yaml.Unmarshal(data, file); err != nil {
		return nil, fmt.Errorf("could not parse scoring scheme: %w", err)
	}
	gapPenalty := DefaultGapPenalty
	if file.GapPenalty != nil {
		gapPenalty = *file.GapPenalty
	}
	var scheme *Scheme
	var err error
	switch {
	case file.Matrix != nil:
		scheme, err = NewScheme(file.Symbols, file.Matrix, gapPenalty)
	case file.Base == "" || file.Base == "blosum62":
		scheme = BLOSUM62(gapPenalty)
	default:
		err = fmt.Errorf("unknown base matrix: %q", file.Base)
	}
	if err != nil {
		return nil, err
	}
	return NewScorer(scheme, file.Threshold), nil
}

// LoadScorer reads a YAML scoring scheme from disk
func LoadScorer(path string) (*Scorer, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScorer(data)
}
