package pipeline

/*
 this part of the pipeline saves an indexed record set so that it can be queried later without rebuilding
*/

import (
	"log"
	"os"

	"github.com/will-rowe/cdrnet/src/index"
	"github.com/will-rowe/cdrnet/src/misc"
	"github.com/will-rowe/cdrnet/src/seqio"
)

// BundleWriter is a pipeline process that dumps the index and its records to disk, plus an optional FASTA copy of the records
type BundleWriter struct {
	info  *Info
	input chan *Collection
}

// NewBundleWriter is the constructor
func NewBundleWriter(info *Info) *BundleWriter {
	return &BundleWriter{info: info}
}

// Connect is the method to connect the BundleWriter to the output of an IndexBuilder
func (proc *BundleWriter) Connect(previous *IndexBuilder) {
	proc.input = previous.output
}

// Run is the method to run this process, which satisfies the pipeline interface
func (proc *BundleWriter) Run() {
	for collection := range proc.input {
		bundle := index.NewBundle(proc.info.Version, collection.Records, collection.Index)
		misc.ErrorCheck(bundle.Dump(proc.info.Index.IndexFile))
		log.Printf("\tsaved index to: %v", proc.info.Index.IndexFile)
		if proc.info.Index.FastaFile != "" {
			fh, err := os.Create(proc.info.Index.FastaFile)
			misc.ErrorCheck(err)
			misc.ErrorCheck(seqio.WriteFASTA(fh, collection.Records))
			misc.ErrorCheck(fh.Close())
			log.Printf("\tsaved sequences to: %v", proc.info.Index.FastaFile)
		}
	}
}
