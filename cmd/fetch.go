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

package cmd

import (
	"github.com/Talavera-Lopez-Lab/Mapping-Scripts/fetch"
	"github.com/Talavera-Lopez-Lab/Mapping-Scripts/metadata"
	"github.com/spf13/cobra"
)

// options for this cmd.
var (
	fetchOutputDir    string
	fetchMetadataPath string
	fetchConnections  int
)

// fetchCmd represents the fetch command.
var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download the FASTQ files of a study.",
	Long: `Download the FASTQ files of a study.

axel must be in your PATH.

The metadata file is a tab-separated table whose FASTQ_URI columns hold the
download URLs for each sample's FASTQ files. Every URL of every sample gets
downloaded in to the output directory; files that are already there with
non-zero size are skipped, so an interrupted fetch can be resumed by running
the same command again.

Each file gets up to 3 download attempts before the fetch gives up.

An example command line could look like this:
$ mapping-scripts fetch -m sdrf.txt -o /fastqs
`,
	Run: func(_ *cobra.Command, _ []string) {
		setupLogging()

		table, err := metadata.ReadFile(fetchMetadataPath)
		if err != nil {
			die(err)
		}

		order, uris, err := metadata.FastqURIs(table)
		if err != nil {
			die(err)
		}

		info("found download URLs for %d samples in %s", len(order), fetchMetadataPath)

		f := fetch.New(fetchOutputDir, fetchConnections, appLogger)

		if err := f.FetchAll(order, uris); err != nil {
			die(err)
		}

		info("downloads complete in %s", fetchOutputDir)
	},
}

func init() {
	RootCmd.AddCommand(fetchCmd)

	// flags specific to this sub-command
	fetchCmd.Flags().StringVarP(&fetchMetadataPath, "metadata", "m", "",
		"tab-separated sample metadata file")
	markFlagRequired(fetchCmd, "metadata")
	fetchCmd.Flags().StringVarP(&fetchOutputDir, "output-dir", "o", "",
		"output directory for FASTQ files")
	markFlagRequired(fetchCmd, "output-dir")

	fetchCmd.Flags().IntVarP(&fetchConnections, "connections", "n", fetch.DefaultConnections,
		"concurrent connections per download")
}
