package seqio

import (
	"io"
	"strings"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq/linear"
)

// fastaWidth is the line width used when writing FASTA
const fastaWidth = 60

// WriteFASTA writes the records as protein FASTA, using the sequence as the ID and the labels as the description
func WriteFASTA(w io.Writer, records []*Record) error {
	writer := fasta.NewWriter(w, fastaWidth)
	for _, record := range records {
		letters := record.Seq.String()
		s := linear.NewSeq(letters, alphabet.BytesToLetters([]byte(letters)), alphabet.Protein)
		s.Desc = strings.Join(record.Labels(), ";")
		if _, err := writer.Write(s); err != nil {
			return err
		}
	}
	return nil
}
