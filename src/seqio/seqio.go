/*
	the seqio package contains custom types and methods for holding and processing CDR3 sequence data
*/
package seqio

import (
	"errors"
	"fmt"
	"strings"
)

// Symbols is the amino acid alphabet used by cdrnet (stop codon and unknown residue included), in code order
// the symbols are in byte order, so ordering sequences by code is the same as ordering them as text
const Symbols = "*ACDEFGHIKLMNPQRSTVWXY"

// AlphabetSize is the number of symbols in the alphabet
const AlphabetSize = len(Symbols)

// ErrEmptySequence is returned when an empty string is parsed
var ErrEmptySequence = errors.New("empty sequence")

// codeLookup maps a symbol byte to its code, -1 marks a byte outside the alphabet
var codeLookup [256]int8

func init() {
	for i := range codeLookup {
		codeLookup[i] = -1
	}
	for code := 0; code < AlphabetSize; code++ {
		codeLookup[Symbols[code]] = int8(code)
	}
}

// CodeOf returns the code for a symbol, and false if the symbol is not in the alphabet
func CodeOf(symbol byte) (byte, bool) {
	code := codeLookup[symbol]
	if code < 0 {
		return 0, false
	}
	return byte(code), true
}

// SymbolOf returns the symbol for a code
func SymbolOf(code byte) byte {
	return Symbols[code]
}

// InvalidSymbolError is returned when a sequence contains a character outside of the alphabet
type InvalidSymbolError struct {
	Sequence string
	Position int
	Symbol   rune
}

// Error satisfies the error interface
func (InvalidSymbolError *InvalidSymbolError) Error() string {
	return fmt.Sprintf("invalid amino acid %q at position %d of sequence %q", InvalidSymbolError.Symbol, InvalidSymbolError.Position, InvalidSymbolError.Sequence)
}

// Sequence is an immutable amino acid sequence, held as alphabet codes
// two Sequences with the same content are equal (==) and can be used as map keys
type Sequence struct {
	codes string
}

// ParseSequence converts text to a Sequence, upper casing it first
func ParseSequence(text string) (Sequence, error) {
	if len(text) == 0 {
		return Sequence{}, ErrEmptySequence
	}
	codes := make([]byte, len(text))
	for i := 0; i < len(text); i++ {
		symbol := text[i]
		if symbol >= 'a' && symbol <= 'z' {
			symbol -= 'a' - 'A'
		}
		code, ok := CodeOf(symbol)
		if !ok {
			return Sequence{}, &InvalidSymbolError{Sequence: text, Position: i, Symbol: rune(text[i])}
		}
		codes[i] = code
	}
	return Sequence{codes: string(codes)}, nil
}

// MustParseSequence is like ParseSequence but panics on invalid input, it is intended for literals
func MustParseSequence(text string) Sequence {
	seq, err := ParseSequence(text)
	if err != nil {
		panic(err)
	}
	return seq
}

// SequenceFromCodes makes a Sequence from a slice of codes (the slice is copied)
func SequenceFromCodes(codes []byte) Sequence {
	return Sequence{codes: string(codes)}
}

// Len returns the number of residues in the sequence
func (Sequence Sequence) Len() int {
	return len(Sequence.codes)
}

// At returns the code at position i
func (Sequence Sequence) At(i int) byte {
	return Sequence.codes[i]
}

// Codes returns a copy of the codes that make up the sequence
func (Sequence Sequence) Codes() []byte {
	return []byte(Sequence.codes)
}

// Compare orders two sequences lexicographically by code, returning -1, 0 or +1
func (Sequence Sequence) Compare(other Sequence) int {
	return strings.Compare(Sequence.codes, other.codes)
}

// String returns the amino acid letters of the sequence
func (Sequence Sequence) String() string {
	letters := make([]byte, len(Sequence.codes))
	for i := 0; i < len(Sequence.codes); i++ {
		letters[i] = Symbols[Sequence.codes[i]]
	}
	return string(letters)
}
