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
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"strings"
	"time"

	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	"github.com/will-rowe/cdrnet/src/index"
	"github.com/will-rowe/cdrnet/src/misc"
	"github.com/will-rowe/cdrnet/src/reporting"
	"github.com/will-rowe/cdrnet/src/scoring"
	"github.com/will-rowe/cdrnet/src/seqio"
	"github.com/will-rowe/cdrnet/src/version"
)

// the command line arguments
var (
	indexFile   *string // the index saved by the index command
	querySubs   *int    // maximum substitutions for a neighbour
	queryIndels *int    // maximum insertions, and maximum deletions, for a neighbour
	scoringFile *string // YAML scoring scheme
	threshold   *int    // minimum score for a neighbour to be reported
	samOut      *string // SAM output file
)

// the neighbours command (used by cobra)
var neighboursCmd = &cobra.Command{
	Use:   "neighbours --index <index-file> QUERY...",
	Short: "Find the indexed sequences near one or more query CDR3 sequences",
	Long: `Find the indexed sequences near one or more query CDR3 sequences.

Every neighbour within the edit limits is scored against the query, using BLOSUM62 or a
YAML scoring scheme, and the neighbours that reach the score threshold are written as
SAM records (indexed sequences are the references, queries are the reads).`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runNeighbours(cmd, args)
	},
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return misc.CheckRequiredFlags(cmd.Flags())
	},
}

// a function to initialise the command line arguments
func init() {
	indexFile = neighboursCmd.Flags().StringP("index", "i", "", "index file created by the index command - required")
	querySubs = neighboursCmd.Flags().IntP("maxSubs", "s", 1, "maximum substitutions between a query and a neighbour")
	queryIndels = neighboursCmd.Flags().IntP("maxIndels", "d", 1, "maximum insertions (and maximum deletions) between a query and a neighbour")
	scoringFile = neighboursCmd.Flags().String("scoring", "", "YAML scoring scheme (default: BLOSUM62, gap penalty -5, no threshold)")
	threshold = neighboursCmd.Flags().IntP("threshold", "t", 0, "minimum alignment score for a neighbour to be reported (overrides the scoring scheme)")
	samOut = neighboursCmd.Flags().StringP("sam", "o", "-", "SAM output file, \"-\" for STDOUT")
	neighboursCmd.MarkFlagRequired("index")
	RootCmd.AddCommand(neighboursCmd)
}

// a function to check user supplied parameters
func neighboursParamCheck(args []string) ([]seqio.Sequence, error) {
	if err := misc.CheckFile(*indexFile); err != nil {
		return nil, err
	}
	if err := index.NewConstraint(*querySubs, *queryIndels).Validate(); err != nil {
		return nil, err
	}
	if *scoringFile != "" {
		if err := misc.CheckFile(*scoringFile); err != nil {
			return nil, err
		}
	}
	if *samOut == "-" && *logFile == "-" {
		return nil, fmt.Errorf("can't write both the log and the SAM output to STDOUT")
	}
	if *samOut != "-" {
		if err := misc.CheckOutFile(*samOut); err != nil {
			return nil, err
		}
	}
	queries := make([]seqio.Sequence, len(args))
	for i, arg := range args {
		query, err := seqio.ParseSequence(arg)
		if err != nil {
			return nil, fmt.Errorf("bad query %q: %w", arg, err)
		}
		queries[i] = query
	}
	*proc = misc.SetProcessors(*proc)
	return queries, nil
}

// runNeighbours is the main function for the neighbours sub-command
func runNeighbours(cmd *cobra.Command, args []string) {

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
	log.Printf("starting the neighbours subcommand")

	// check the supplied files and then log some stuff
	log.Printf("checking parameters...")
	queries, err := neighboursParamCheck(args)
	misc.ErrorCheck(err)
	constraint := index.NewConstraint(*querySubs, *queryIndels)
	log.Printf("\tindex file: %v", *indexFile)
	log.Printf("\tnumber of queries: %d", len(queries))
	log.Printf("\tmax. substitutions: %d", constraint.MaxSubstitutions)
	log.Printf("\tmax. indels: %d", constraint.MaxInsertions)

	// set up the scoring
	scorer := scoring.NewScorer(scoring.BLOSUM62(scoring.DefaultGapPenalty), math.MinInt32)
	if *scoringFile != "" {
		scorer, err = scoring.LoadScorer(*scoringFile)
		misc.ErrorCheck(err)
		log.Printf("\tscoring scheme: %v", *scoringFile)
	} else {
		log.Printf("\tscoring scheme: BLOSUM62")
	}
	if cmd.Flags().Changed("threshold") {
		scorer.Threshold = *threshold
	}
	log.Printf("\tgap penalty: %d", scorer.Scheme.GapPenalty)
	if scorer.Threshold != math.MinInt32 {
		log.Printf("\tscore threshold: %d", scorer.Threshold)
	}

	// load the index
	log.Print("loading the index...")
	bundle, err := index.LoadBundle(*indexFile)
	misc.ErrorCheck(err)
	if bundle.Version != version.GetVersion() {
		misc.ErrorCheck(fmt.Errorf("the index was created with a different version of cdrnet (%v, you are currently using version %v)", bundle.Version, version.GetVersion()))
	}
	records, err := bundle.Records()
	misc.ErrorCheck(err)
	log.Printf("\tnumber of indexed sequences: %d", len(records))

	// set up the SAM output
	var samFH io.Writer = os.Stdout
	if *samOut != "-" {
		fh, err := os.Create(*samOut)
		misc.ErrorCheck(err)
		defer fh.Close()
		samFH = fh
	}
	samWriter, err := reporting.NewSamWriter(samFH, records, version.GetVersion())
	misc.ErrorCheck(err)

	// search each query and report the neighbours
	log.Printf("searching...")
	log.Printf("\tquery\tneighbour\tlabels\tedits\tscore")
	for _, query := range queries {
		neighbours := bundle.Index.Neighbourhood(query, constraint)
		reported := 0
		for _, neighbour := range neighbours {
			score, ok := scorer.Accept(neighbour.Alignment)
			if !ok {
				continue
			}
			misc.ErrorCheck(samWriter.Write(neighbour.Alignment, score))
			labels := strings.Join(records[neighbour.Payload].Labels(), ";")
			log.Printf("\t%v\t%v\t%v\t%v\t%d", query, neighbour.Alignment.Query, labels, neighbour.Alignment.Mutations, score)
			reported++
		}
		log.Printf("\t%v: %d neighbours found, %d reported", query, len(neighbours), reported)
	}
	log.Printf("\tnumber of SAM records written: %d", samWriter.Count())
	log.Printf("\tmemory usage: %v", misc.PrintMemUsage())
	log.Printf("finished in %s", time.Since(start))
}
