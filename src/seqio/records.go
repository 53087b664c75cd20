package seqio

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// maxLineSize is the largest input line the TSV scanner will accept
const maxLineSize = 1024 * 1024

// Record is a unique CDR3 sequence and the set of antigen labels it was seen with
type Record struct {
	Seq    Sequence
	labels map[string]struct{}
}

// NewRecord is the Record constructor
func NewRecord(seq Sequence, labels ...string) *Record {
	record := &Record{
		Seq:    seq,
		labels: make(map[string]struct{}, len(labels)),
	}
	for _, label := range labels {
		record.AddLabel(label)
	}
	return record
}

// AddLabel is a method to add a label to the record, duplicate labels are ignored
func (Record *Record) AddLabel(label string) {
	Record.labels[label] = struct{}{}
}

// NumLabels returns the number of distinct labels held by the record
func (Record *Record) NumLabels() int {
	return len(Record.labels)
}

// Labels returns the labels in sorted order
func (Record *Record) Labels() []string {
	labels := make([]string, 0, len(Record.labels))
	for label := range Record.labels {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

// SharesLabel is true if the two records have at least one label in common
func (Record *Record) SharesLabel(other *Record) bool {
	small, large := Record.labels, other.labels
	if len(small) > len(large) {
		small, large = large, small
	}
	for label := range small {
		if _, ok := large[label]; ok {
			return true
		}
	}
	return false
}

// ReadRecords reads a tab-separated file of sequence and label columns
// the first line is a header and is discarded, rows sharing a sequence are merged into one Record
// the records are returned in the order their sequences were first seen
func ReadRecords(r io.Reader) ([]*Record, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	lookup := make(map[Sequence]*Record)
	records := []*Record{}
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		if lineNum == 1 {
			continue
		}
		line := strings.TrimRight(scanner.Text(), "\r")
		if len(line) == 0 {
			continue
		}
		columns := strings.Split(line, "\t")
		if len(columns) < 2 {
			return nil, fmt.Errorf("line %d: expected sequence and label columns, got %d column(s)", lineNum, len(columns))
		}
		seq, err := ParseSequence(columns[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
		record, ok := lookup[seq]
		if !ok {
			record = NewRecord(seq)
			lookup[seq] = record
			records = append(records, record)
		}
		record.AddLabel(columns[1])
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// OpenRecords reads the records held in a TSV file, gzipped input is handled by extension
func OpenRecords(fileName string) ([]*Record, error) {
	fh, err := os.Open(fileName)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	var r io.Reader = fh
	if strings.HasSuffix(fileName, ".gz") {
		gz, err := gzip.NewReader(fh)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		r = gz
	}
	records, err := ReadRecords(r)
	if err != nil {
		return nil, fmt.Errorf("could not read %v: %w", fileName, err)
	}
	return records, nil
}
