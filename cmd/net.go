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
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	"github.com/will-rowe/cdrnet/src/index"
	"github.com/will-rowe/cdrnet/src/misc"
	"github.com/will-rowe/cdrnet/src/pipeline"
	"github.com/will-rowe/cdrnet/src/version"
)

// the command line arguments
var (
	gfaFile  *string // optional GFA copy of the network
	plotFile *string // optional histogram of the edge weights
	saveInfo *bool   // write the runtime info next to the edge table
)

// the parsed positional arguments
var (
	maxSubstitutions int    // maximum substitutions between two connected sequences
	maxIndels        int    // maximum insertions, and maximum deletions, between two connected sequences
	netInput         string // the input table of sequences and labels
	netOutput        string // the output edge table
)

// the net command (used by cobra)
var netCmd = &cobra.Command{
	Use:   "net <max-substitutions> <max-indels> <input.tsv> <output.tsv>",
	Short: "Build the similarity network for a table of CDR3 sequences",
	Long: `Build the similarity network for a table of CDR3 sequences.

The input is a tab-separated table with a header line, the CDR3 amino acid sequence in
the first column and an antigen label in the second. Every pair of unique sequences that
can be turned into each other with at most <max-substitutions> substitutions, and at most
<max-indels> insertions and <max-indels> deletions, is written to the output table.`,
	Args: cobra.ExactArgs(4),
	Run: func(cmd *cobra.Command, args []string) {
		runNet(args)
	},
}

// a function to initialise the command line arguments
func init() {
	gfaFile = netCmd.Flags().String("gfa", "", "also save the network as a GFA graph to this file")
	plotFile = netCmd.Flags().String("plot", "", "also save a histogram of the edge weights to this file (.png/.svg/.pdf)")
	saveInfo = netCmd.Flags().Bool("info", false, "save the runtime information next to the output table (<output>.info)")
	RootCmd.AddCommand(netCmd)
}

// a function to check user supplied parameters
func netParamCheck(args []string) error {
	var err error
	if maxSubstitutions, err = misc.ParseLimit("max-substitutions", args[0]); err != nil {
		return err
	}
	if maxIndels, err = misc.ParseLimit("max-indels", args[1]); err != nil {
		return err
	}
	netInput, netOutput = args[2], args[3]
	if err := misc.CheckFile(netInput); err != nil {
		return err
	}
	if netInput == netOutput {
		return fmt.Errorf("input and output files are the same: %v", netInput)
	}
	for _, outFile := range []string{netOutput, *gfaFile, *plotFile} {
		if outFile == "" {
			continue
		}
		if err := misc.CheckOutFile(outFile); err != nil {
			return err
		}
	}
	if *plotFile != "" {
		if err := misc.CheckExt(*plotFile, []string{"png", "svg", "pdf", "eps", "jpg", "jpeg", "tif", "tiff"}); err != nil {
			return err
		}
	}
	*proc = misc.SetProcessors(*proc)
	return nil
}

// runNet is the main function for the net sub-command
func runNet(args []string) {

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
	log.Printf("starting the net subcommand")

	// check the supplied files and then log some stuff
	log.Printf("checking parameters...")
	misc.ErrorCheck(netParamCheck(args))
	log.Printf("\tprocessors: %d", *proc)
	log.Printf("\tmax. substitutions: %d", maxSubstitutions)
	log.Printf("\tmax. indels: %d", maxIndels)
	log.Printf("\tinput file: %v", netInput)
	log.Printf("\toutput file: %v", netOutput)
	if *gfaFile != "" {
		log.Printf("\tGFA file: %v", *gfaFile)
	}
	if *plotFile != "" {
		log.Printf("\tplot file: %v", *plotFile)
	}

	// record the runtime information
	info := &pipeline.Info{
		Version:    version.GetVersion(),
		NumProc:    *proc,
		Profiling:  *profiling,
		Constraint: index.NewConstraint(maxSubstitutions, maxIndels),
		InputFile:  netInput,
		Net: pipeline.NetCmd{
			OutFile:  netOutput,
			GFAfile:  *gfaFile,
			PlotFile: *plotFile,
		},
	}

	// an interrupt stops the search workers, the output written so far is left in place
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	info.AttachContext(ctx)

	// create the pipeline
	log.Printf("initialising network pipeline...")
	netPipeline := pipeline.NewPipeline()

	// initialise processes
	log.Printf("\tinitialising the processes")
	recordLoader := pipeline.NewRecordLoader(info)
	indexBuilder := pipeline.NewIndexBuilder(info)
	networkBuilder := pipeline.NewNetworkBuilder(info)
	edgeWriter := pipeline.NewEdgeWriter(info)

	// connect the pipeline processes
	log.Printf("\tconnecting data streams")
	recordLoader.Connect(netInput)
	indexBuilder.Connect(recordLoader)
	networkBuilder.Connect(indexBuilder)
	edgeWriter.Connect(networkBuilder)

	// submit each process to the pipeline and run it
	netPipeline.AddProcesses(recordLoader, indexBuilder, networkBuilder, edgeWriter)
	log.Printf("\tnumber of processes added to the network pipeline: %d\n", netPipeline.GetNumProcesses())
	log.Printf("building network...")
	netPipeline.Run()
	if *saveInfo {
		misc.ErrorCheck(info.Dump(netOutput + ".info"))
		log.Printf("saved runtime info to: %v", netOutput+".info")
	}
	log.Printf("\tmemory usage: %v", misc.PrintMemUsage())
	log.Printf("finished in %s", time.Since(start))
}
