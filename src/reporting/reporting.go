// Package reporting writes the neighbours found for query sequences as SAM records.
package reporting

import (
	"fmt"
	"io"

	"github.com/biogo/hts/sam"
	"github.com/will-rowe/cdrnet/src/alignment"
	"github.com/will-rowe/cdrnet/src/seqio"
)

// mapQ is the SAM mapping quality used for every record, 255 means unavailable
const mapQ byte = 255

// SamWriter writes neighbour alignments as SAM, with the indexed sequences as references and the queries as reads
type SamWriter struct {
	writer     *sam.Writer
	references map[seqio.Sequence]*sam.Reference
	count      int
}

// NewSamWriter creates the SAM header from the indexed records and writes it
func NewSamWriter(w io.Writer, records []*seqio.Record, programVersion string) (*SamWriter, error) {
	references := make([]*sam.Reference, 0, len(records))
	lookup := make(map[seqio.Sequence]*sam.Reference, len(records))
	for _, record := range records {
		reference, err := sam.NewReference(record.Seq.String(), "", "", record.Seq.Len(), nil, nil)
		if err != nil {
			return nil, err
		}
		references = append(references, reference)
		lookup[record.Seq] = reference
	}
	header, err := sam.NewHeader(nil, references)
	if err != nil {
		return nil, err
	}
	header.Version = "1.5"
	programInfo := sam.NewProgram("1", "cdrnet", "cdrnet neighbours", "", programVersion)
	if err := header.AddProgram(programInfo); err != nil {
		return nil, err
	}
	writer, err := sam.NewWriter(w, header, sam.FlagDecimal)
	if err != nil {
		return nil, err
	}
	return &SamWriter{writer: writer, references: lookup}, nil
}

// Write adds one SAM record for a neighbour found by searching a query
// aln has the query as its reference and the neighbour as its query, as returned by an index search
// the record carries the score (AS), the number of edits (NM) and the edit script against the neighbour (XM)
func (SamWriter *SamWriter) Write(aln *alignment.Alignment, score int) error {
	samAln := aln.Invert()
	reference, ok := SamWriter.references[samAln.Reference]
	if !ok {
		return fmt.Errorf("neighbour is not in the SAM header: %v", samAln.Reference)
	}
	aux := []sam.Aux{}
	for _, field := range []struct {
		tag   string
		value interface{}
	}{
		{"AS", int32(score)},
		{"NM", int32(samAln.EditDistance())},
		{"XM", samAln.Mutations.String()},
	} {

		// an empty edit script is not a valid Z field
		if s, ok := field.value.(string); ok && s == "" {
			continue
		}
		a, err := sam.NewAux(sam.NewTag(field.tag), field.value)
		if err != nil {
			return err
		}
		aux = append(aux, a)
	}
	record, err := sam.NewRecord(aln.Reference.String(), reference, nil, samAln.ReferenceRange.From, -1, 0, mapQ, samAln.Cigar(), nil, nil, aux)
	if err != nil {
		return err
	}
	if err := SamWriter.writer.Write(record); err != nil {
		return err
	}
	SamWriter.count++
	return nil
}

// Count returns the number of records written
func (SamWriter *SamWriter) Count() int {
	return SamWriter.count
}
