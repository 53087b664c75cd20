package network

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/will-rowe/cdrnet/src/seqio"
	"github.com/will-rowe/cdrnet/src/version"
	"github.com/will-rowe/gfa"
)

// WriteGFA writes the network as a GFA v1 graph: one segment per record and one link per edge
// segments are numbered by record order starting at 1 and carry the sequence length (LN), the number of
// edges (DG) and, if present, the labels (LB)
func WriteGFA(w io.Writer, records []*seqio.Record, edges []*Edge) error {
	segIDs := make(map[seqio.Sequence]string, len(records))
	for i, record := range records {
		segIDs[record.Seq] = strconv.Itoa(i + 1)
	}
	degrees := make(map[seqio.Sequence]int, len(records))
	for _, edge := range edges {
		degrees[edge.Seq1]++
		degrees[edge.Seq2]++
	}

	stamp := fmt.Sprintf("similarity network created by cdrnet (version %v) at: %v", version.GetVersion(), time.Now().Format("Mon Jan _2 15:04:05 2006"))
	newGFA := gfa.NewGFA()
	_ = newGFA.AddVersion(1)
	newGFA.AddComment([]byte(stamp))
	newGFA.AddComment([]byte(fmt.Sprintf("%d sequences, %d edges", len(records), len(edges))))
	for _, record := range records {

		// GFA only allows letters in a segment sequence, so a stop symbol leaves the sequence unset
		segSeq := record.Seq.String()
		if strings.ContainsRune(segSeq, '*') {
			segSeq = "*"
		}
		seg, err := gfa.NewSegment([]byte(segIDs[record.Seq]), []byte(segSeq))
		if err != nil {
			return err
		}
		fields := [][]byte{
			[]byte(fmt.Sprintf("LN:i:%d", record.Seq.Len())),
			[]byte(fmt.Sprintf("DG:i:%d", degrees[record.Seq])),
		}
		if record.NumLabels() != 0 {
			fields = append(fields, []byte("LB:Z:"+strings.Join(record.Labels(), ";")))
		}
		ofs, err := gfa.NewOptionalFields(fields...)
		if err != nil {
			return err
		}
		seg.AddOptionalFields(ofs)
		seg.Add(newGFA)
	}
	for _, edge := range edges {
		from, ok := segIDs[edge.Seq1]
		if !ok {
			return fmt.Errorf("edge %v refers to an unknown sequence: %v", edge.ID(), edge.Seq1)
		}
		to, ok := segIDs[edge.Seq2]
		if !ok {
			return fmt.Errorf("edge %v refers to an unknown sequence: %v", edge.ID(), edge.Seq2)
		}
		link, err := gfa.NewLink([]byte(from), []byte("+"), []byte(to), []byte("+"), []byte("0M"))
		if err != nil {
			return err
		}
		link.Add(newGFA)
	}
	writer, err := gfa.NewWriter(w, newGFA)
	if err != nil {
		return err
	}
	return newGFA.WriteGFAContent(writer)
}
