package index

import (
	"fmt"
	"io/ioutil"

	"github.com/will-rowe/cdrnet/src/seqio"
	"gopkg.in/vmihailenco/msgpack.v2"
)

// Bundle is what gets written to disk by the index subcommand: the tree plus the records its payloads refer to
type Bundle struct {
	Version   string
	Sequences []string
	Labels    [][]string
	Index     *Index
}

// NewBundle is the Bundle constructor, the index payloads must be offsets into records
func NewBundle(version string, records []*seqio.Record, idx *Index) *Bundle {
	bundle := &Bundle{
		Version:   version,
		Sequences: make([]string, len(records)),
		Labels:    make([][]string, len(records)),
		Index:     idx,
	}
	for i, record := range records {
		bundle.Sequences[i] = record.Seq.String()
		bundle.Labels[i] = record.Labels()
	}
	return bundle
}

// Records rebuilds the records held in the bundle
func (Bundle *Bundle) Records() ([]*seqio.Record, error) {
	records := make([]*seqio.Record, len(Bundle.Sequences))
	for i, text := range Bundle.Sequences {
		seq, err := seqio.ParseSequence(text)
		if err != nil {
			return nil, err
		}
		records[i] = seqio.NewRecord(seq, Bundle.Labels[i]...)
	}
	return records, nil
}

// Dump is a method to write the bundle to disk
func (Bundle *Bundle) Dump(path string) error {
	data, err := msgpack.Marshal(Bundle)
	if err != nil {
		return err
	}
	return ioutil.WriteFile(path, data, 0644)
}

// LoadBundle reads a bundle from disk and checks that the index and records agree
func LoadBundle(path string) (*Bundle, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("index file appears empty: %v", path)
	}
	bundle := &Bundle{}
	if err := msgpack.Unmarshal(data, bundle); err != nil {
		return nil, err
	}
	if bundle.Index == nil || len(bundle.Index.Nodes) == 0 {
		return nil, fmt.Errorf("loaded an index file without a tree: %v", path)
	}
	if len(bundle.Sequences) != len(bundle.Labels) || len(bundle.Sequences) != bundle.Index.Size {
		return nil, fmt.Errorf("index file is corrupted (%d sequences, %d label sets, %d indexed)", len(bundle.Sequences), len(bundle.Labels), bundle.Index.Size)
	}
	for _, node := range bundle.Index.Nodes {
		if node.Terminal && (node.Payload < 0 || node.Payload >= len(bundle.Sequences)) {
			return nil, fmt.Errorf("index file is corrupted (payload %d out of range)", node.Payload)
		}
	}
	return bundle, nil
}
