package pipeline

import (
	"context"
	"fmt"
	"io/ioutil"

	"github.com/will-rowe/cdrnet/src/index"
	"github.com/will-rowe/cdrnet/src/seqio"
	"gopkg.in/vmihailenco/msgpack.v2"
)

// Info stores the runtime information
type Info struct {
	Version    string
	NumProc    int
	Profiling  bool
	Constraint index.Constraint
	InputFile  string
	Net        NetCmd
	Index      IndexCmd

	// the following fields are not written to disk
	ctx        context.Context
	collection *Collection
}

// NetCmd stores the runtime info for the net command
type NetCmd struct {
	OutFile  string
	GFAfile  string
	PlotFile string
}

// IndexCmd stores the runtime info for the index command
type IndexCmd struct {
	IndexFile string
	FastaFile string
}

// Collection is the unique record set and the index built over it
// the index payloads are offsets into Records
type Collection struct {
	Records []*seqio.Record
	Index   *index.Index
}

// AttachContext is a method to set the context that a running pipeline checks for cancellation
func (Info *Info) AttachContext(ctx context.Context) {
	Info.ctx = ctx
}

// Context returns the attached context, or a background context if none was attached
func (Info *Info) Context() context.Context {
	if Info.ctx == nil {
		return context.Background()
	}
	return Info.ctx
}

// GetCollection returns the records and index once the IndexBuilder has run
func (Info *Info) GetCollection() *Collection {
	return Info.collection
}

// Dump is a method to dump the pipeline info to file
func (Info *Info) Dump(path string) error {
	data, err := msgpack.Marshal(Info)
	if err != nil {
		return err
	}
	return ioutil.WriteFile(path, data, 0644)
}

// Load is a method to load Info from file
func (Info *Info) Load(path string) error {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return err
	}
	return Info.LoadFromBytes(data)
}

// LoadFromBytes is a method to load Info from bytes
func (Info *Info) LoadFromBytes(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("cdrnet runtime info appears empty")
	}
	return msgpack.Unmarshal(data, Info)
}
