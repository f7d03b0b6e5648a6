/*******************************************************************************
 * Copyright (c) 2025 Talavera-Lopez Lab
 *
 * Permission is hereby granted, free of charge, to any person obtaining
 * a copy of this software and associated documentation files (the
 * "Software"), to deal in the Software without restriction, including
 * without limitation the rights to use, copy, modify, merge, publish,
 * distribute, sublicense, and/or sell copies of the Software, and to
 * permit persons to whom the Software is furnished to do so, subject to
 * the following conditions:
 *
 * The above copyright notice and this permission notice shall be included
 * in all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND,
 * EXPRESS OR IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF
 * MERCHANTABILITY, FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT.
 * IN NO EVENT SHALL THE AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY
 * CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER IN AN ACTION OF CONTRACT,
 * TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN CONNECTION WITH THE
 * SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.
 ******************************************************************************/

// package cmd is the cobra file that enables subcommands and handles
// command-line args.

package cmd

import (
	"fmt"
	"os"

	"github.com/inconshreveable/log15"
	"github.com/spf13/cobra"
)

// appLogger is used for logging events in our commands.
var appLogger = log15.New()

// options common to sub-commands.
var logFilePath string

// RootCmd represents the base command when called without any subcommands.
var RootCmd = &cobra.Command{
	Use:   "mapping-scripts",
	Short: "mapping-scripts automates STARsolo mapping of single-cell data",
	Long: `mapping-scripts automates STARsolo mapping of single-cell data.

Given a metadata file describing the samples of a study, the "fetch"
sub-command downloads their FASTQ files, and the "map" sub-command works out
the chemistry of each sample (barcode whitelist, barcode and UMI lengths,
strandedness) from a subsample of its reads and runs STARsolo accordingly.

The "merge-gtf" sub-command concatenates GTF annotation files, for building
genome indexes that include custom constructs.
`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main(). It only needs to happen once to
// the rootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		dief("%s", err.Error())
	}
}

func init() {
	// set up logging to stderr
	appLogger.SetHandler(log15.LvlFilterHandler(log15.LvlInfo, log15.StderrHandler))

	RootCmd.PersistentFlags().StringVar(&logFilePath, "log-file", "",
		"additionally log to the given file")
}

// setupLogging adds logging to the --log-file path, if one was given, on top
// of the stderr logging we always do.
func setupLogging() {
	if logFilePath == "" {
		return
	}

	fileHandler, err := log15.FileHandler(logFilePath, log15.LogfmtFormat())
	if err != nil {
		dief("could not log to %s: %s", logFilePath, err)
	}

	appLogger.SetHandler(log15.MultiHandler(
		log15.LvlFilterHandler(log15.LvlInfo, log15.StderrHandler),
		fileHandler,
	))
}

// cliPrint outputs the message to STDOUT.
func cliPrint(msg string, a ...interface{}) {
	fmt.Fprintf(os.Stdout, msg, a...)
}

// info is a convenience to log a message at the Info level.
func info(msg string, a ...interface{}) {
	appLogger.Info(fmt.Sprintf(msg, a...))
}

// warn is a convenience to log a message at the Warn level.
func warn(msg string, a ...interface{}) {
	appLogger.Warn(fmt.Sprintf(msg, a...))
}

// die is a convenience to log an error and exit non zero.
func die(err error) {
	appLogger.Error(err.Error())
	os.Exit(1)
}

// dief is like die, but takes a format string and arguments.
func dief(msg string, a ...interface{}) {
	appLogger.Error(fmt.Sprintf(msg, a...))
	os.Exit(1)
}
