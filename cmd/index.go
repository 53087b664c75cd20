// Copyright © 2017 Will Rowe <will.rowe@stfc.ac.uk>
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.


package cmd

import (
	"log"
	"time"

	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	"github.com/will-rowe/cdrnet/src/misc"
	"github.com/will-rowe/cdrnet/src/pipeline"
	"github.com/will-rowe/cdrnet/src/version"
)

// the command line arguments
var (
	fastaOut *string // optional FASTA copy of the unique sequences
)

// the index command (used by cobra)
var indexCmd = &cobra.Command{
	Use:   "index <input.tsv> <index-file>",
	Short: "Index a table of CDR3 sequences and save the index for later queries",
	Long: `Index a table of CDR3 sequences and save the index for later queries.

The input table has the same layout as for the net command. The saved index holds the
unique sequences and their labels, and is used by the neighbours command.`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		runIndex(args)
	},
}

// a function to initialise the command line arguments
func init() {
	fastaOut = indexCmd.Flags().String("fasta", "", "also save the unique sequences to this FASTA file")
	RootCmd.AddCommand(indexCmd)
}

// a function to check user supplied parameters
func indexParamCheck(args []string) error {
	if err := misc.CheckFile(args[0]); err != nil {
		return err
	}
	if err := misc.CheckOutFile(args[1]); err != nil {
		return err
	}
	if *fastaOut != "" {
		if err := misc.CheckOutFile(*fastaOut); err != nil {
			return err
		}
	}
	*proc = misc.SetProcessors(*proc)
	return nil
}

// runIndex is the main function for the index sub-command
func runIndex(args []string) {

	// set up profiling
	if *profiling {
		defer profile.Start(profile.ProfilePath("./")).Stop()
	}

	// start logging
	if logFH := startLogging(); logFH != nil {
		defer logFH.Close()
	}

	// start sub command
	start := time.Now()
	log.Printf("cdrnet (version %s)", version.GetVersion())
	log.Printf("starting the index subcommand")

	// check the supplied files and then log some stuff
	log.Printf("checking parameters...")
	misc.ErrorCheck(indexParamCheck(args))
	log.Printf("\tprocessors: %d", *proc)
	log.Printf("\tinput file: %v", args[0])
	log.Printf("\tindex file: %v", args[1])
	if *fastaOut != "" {
		log.Printf("\tFASTA file: %v", *fastaOut)
	}
	info := &pipeline.Info{
		Version:   version.GetVersion(),
		NumProc:   *proc,
		Profiling: *profiling,
		InputFile: args[0],
		Index: pipeline.IndexCmd{
			IndexFile: args[1],
			FastaFile: *fastaOut,
		},
	}

	// create the pipeline
	log.Printf("initialising indexing pipeline...")
	indexPipeline := pipeline.NewPipeline()

	// initialise processes
	log.Printf("\tinitialising the processes")
	recordLoader := pipeline.NewRecordLoader(info)
	indexBuilder := pipeline.NewIndexBuilder(info)
	bundleWriter := pipeline.NewBundleWriter(info)

	// connect the pipeline processes
	log.Printf("\tconnecting data streams")
	recordLoader.Connect(args[0])
	indexBuilder.Connect(recordLoader)
	bundleWriter.Connect(indexBuilder)

	// submit each process to the pipeline and run it
	indexPipeline.AddProcesses(recordLoader, indexBuilder, bundleWriter)
	log.Printf("\tnumber of processes added to the indexing pipeline: %d\n", indexPipeline.GetNumProcesses())
	log.Printf("indexing...")
	indexPipeline.Run()
	log.Printf("\tmemory usage: %v", misc.PrintMemUsage())
	log.Printf("finished in %s", time.Since(start))
}
