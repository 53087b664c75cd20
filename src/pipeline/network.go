package pipeline

/*
 this part of the pipeline loads the CDR3 records, indexes them and then searches every record against the index to build the edges of the network
*/

import (
	"fmt"
	"log"
	"os"

	"github.com/will-rowe/cdrnet/src/index"
	"github.com/will-rowe/cdrnet/src/misc"
	"github.com/will-rowe/cdrnet/src/network"
	"github.com/will-rowe/cdrnet/src/seqio"
)

// PROGRESS is how many completed searches go between progress messages
const PROGRESS int = 100

// RecordLoader is a pipeline process that reads the input table and streams the unique records
type RecordLoader struct {
	info   *Info
	input  string
	output chan *seqio.Record
}

// NewRecordLoader is the constructor
func NewRecordLoader(info *Info) *RecordLoader {
	return &RecordLoader{info: info, output: make(chan *seqio.Record, BUFFERSIZE)}
}

// Connect is the method to connect the RecordLoader to some data source
func (proc *RecordLoader) Connect(fileName string) {
	proc.input = fileName
}

// Run is the method to run this process, which satisfies the pipeline interface
func (proc *RecordLoader) Run() {
	defer close(proc.output)
	records, err := seqio.OpenRecords(proc.input)
	misc.ErrorCheck(err)
	if len(records) == 0 {
		misc.ErrorCheck(fmt.Errorf("no sequences found in input file: %v", proc.input))
	}
	numRows := 0
	for _, record := range records {
		numRows += record.NumLabels()
		proc.output <- record
	}
	log.Printf("\tnumber of unique sequences loaded: %d", len(records))
	log.Printf("\tnumber of distinct sequence/label pairs: %d", numRows)
}

// IndexBuilder is a pipeline process that collects every record and indexes them
// nothing is sent on until the index holds every record
type IndexBuilder struct {
	info   *Info
	input  chan *seqio.Record
	output chan *Collection
}

// NewIndexBuilder is the constructor
func NewIndexBuilder(info *Info) *IndexBuilder {
	return &IndexBuilder{info: info, output: make(chan *Collection, 1)}
}

// Connect is the method to connect the IndexBuilder to the output of a RecordLoader
func (proc *IndexBuilder) Connect(previous *RecordLoader) {
	proc.input = previous.output
}

// Run is the method to run this process, which satisfies the pipeline interface
func (proc *IndexBuilder) Run() {
	defer close(proc.output)
	records := []*seqio.Record{}
	for record := range proc.input {
		records = append(records, record)
	}
	idx := index.FromRecords(records)
	if idx.Len() != len(records) {
		misc.ErrorCheck(fmt.Errorf("indexed %d sequences but received %d unique records", idx.Len(), len(records)))
	}
	log.Printf("\tnumber of sequences indexed: %d", idx.Len())
	log.Printf("\tnumber of index nodes: %d", len(idx.Nodes))
	collection := &Collection{Records: records, Index: idx}
	proc.info.collection = collection
	proc.output <- collection
}

// NetworkBuilder is a pipeline process that searches every record against the index and sends on the edges
type NetworkBuilder struct {
	info   *Info
	input  chan *Collection
	output chan *network.Edge
}

// NewNetworkBuilder is the constructor
func NewNetworkBuilder(info *Info) *NetworkBuilder {
	return &NetworkBuilder{info: info, output: make(chan *network.Edge, BUFFERSIZE)}
}

// Connect is the method to connect the NetworkBuilder to the output of an IndexBuilder
func (proc *NetworkBuilder) Connect(previous *IndexBuilder) {
	proc.input = previous.output
}

// Run is the method to run this process, which satisfies the pipeline interface
// the output channel is closed once every search task has finished, which tells the writer that no more edges are coming
func (proc *NetworkBuilder) Run() {
	defer close(proc.output)
	for collection := range proc.input {
		total := len(collection.Records)
		progress := func(done int) {
			if done%PROGRESS == 0 || done == total {
				log.Printf("\tqueried %d of %d cdr3 sequences", done, total)
			}
		}
		err := network.Build(proc.info.Context(), collection.Records, collection.Index, proc.info.Constraint, proc.info.NumProc, proc.output, progress)
		if err != nil && proc.info.Context().Err() != nil {
			err = fmt.Errorf("interrupted while waiting for the search workers: %w", err)
		}
		misc.ErrorCheck(err)
	}
}

// EdgeWriter is a pipeline process that writes the edge table, plus the optional GFA and plot outputs
type EdgeWriter struct {
	info     *Info
	input    chan *network.Edge
	numEdges int
}

// NewEdgeWriter is the constructor
func NewEdgeWriter(info *Info) *EdgeWriter {
	return &EdgeWriter{info: info}
}

// Connect is the method to connect the EdgeWriter to the output of a NetworkBuilder
func (proc *EdgeWriter) Connect(previous *NetworkBuilder) {
	proc.input = previous.output
}

// NumEdges returns the number of edges written by the last run
func (proc *EdgeWriter) NumEdges() int {
	return proc.numEdges
}

// Run is the method to run this process, which satisfies the pipeline interface
func (proc *EdgeWriter) Run() {
	fh, err := os.Create(proc.info.Net.OutFile)
	misc.ErrorCheck(err)
	defer fh.Close()

	// keep a copy of the edges if they are needed once the table is written
	keepEdges := proc.info.Net.GFAfile != "" || proc.info.Net.PlotFile != ""
	edges := []*network.Edge{}
	input := proc.input
	if keepEdges {
		tee := make(chan *network.Edge, BUFFERSIZE)
		go func() {
			defer close(tee)
			for edge := range proc.input {
				edges = append(edges, edge)
				tee <- edge
			}
		}()
		input = tee
	}
	proc.numEdges, err = network.WriteTSV(fh, input)
	misc.ErrorCheck(err)
	log.Printf("\tnumber of edges written: %d", proc.numEdges)

	if proc.info.Net.GFAfile != "" {
		gfaFH, err := os.Create(proc.info.Net.GFAfile)
		misc.ErrorCheck(err)
		defer gfaFH.Close()
		misc.ErrorCheck(network.WriteGFA(gfaFH, proc.info.GetCollection().Records, edges))
		log.Printf("\tsaved network graph to: %v", proc.info.Net.GFAfile)
	}
	if proc.info.Net.PlotFile != "" {
		if len(edges) == 0 {
			log.Printf("\tno edges found, skipping the weight plot")
		} else {
			misc.ErrorCheck(network.PlotWeights(proc.info.Net.PlotFile, edges))
			log.Printf("\tsaved weight plot to: %v", proc.info.Net.PlotFile)
		}
	}
}
