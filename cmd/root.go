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
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/will-rowe/cdrnet/src/misc"
)

// the command line arguments
var (
	proc      *int    // number of processors to use
	profiling *bool   // create profile for go pprof
	logFile   *string // the file to write the log to
)

// the default log file
var defaultLogFile = "./cdrnet.log"

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "cdrnet",
	Short: "build similarity networks of CDR3 amino acid sequences",
	Long: `
#####################################################################################
		cdrnet: CDR3 similarity networks
#####################################################################################

 cdrnet connects CDR3 sequences that are within a small number of substitutions,
 insertions and deletions of each other.

 The sequences are held in a tree index that is searched with a bounded edit
 budget, every sequence is searched in parallel and each pair of neighbours is
 reported once, along with the edit counts, a weight and whether the two sequences
 share an antigen label.

 cdrnet can also save the index for later queries, and report the neighbours of
 individual sequences as scored SAM alignments.`,
}

/*
  A function to add all child commands to the root command and sets flags appropriately
*/
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

/*
  A function to initalise the command line arguments
*/
func init() {
	proc = RootCmd.PersistentFlags().IntP("processors", "p", 1, "number of processors to use")
	profiling = RootCmd.PersistentFlags().Bool("profiling", false, "create the files needed to profile cdrnet using the go tool pprof")
	logFile = RootCmd.PersistentFlags().String("log", defaultLogFile, "filename for log file, use \"-\" to log to STDOUT")
}

// startLogging sends the log to the --log file, or to STDOUT if it is "-"
// the returned file handle is nil when logging to STDOUT
func startLogging() *os.File {
	if *logFile == "-" {
		log.SetOutput(os.Stdout)
		return nil
	}
	logFH := misc.StartLogging(*logFile)
	log.SetOutput(logFH)
	return logFH
}
