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
	"github.com/Talavera-Lopez-Lab/Mapping-Scripts/gtf"
	"github.com/spf13/cobra"
)

// options for this cmd.
var mergeGtfOutput string

// mergeGtfCmd represents the merge-gtf command.
var mergeGtfCmd = &cobra.Command{
	Use:   "merge-gtf",
	Short: "Concatenate GTF annotation files.",
	Long: `Concatenate GTF annotation files.

This merges the given GTF files in to one, for building genome indexes that
include custom constructs alongside a reference annotation. Each input must
start with the 5 line ## metadata header (description, provider, contact,
format, date). The merged header joins the descriptions and dates; provider,
contact and format come from the first file. Feature lines are concatenated
in the order the files are given.

An example command line could look like this:
$ mapping-scripts merge-gtf -o merged.gtf gencode.v38.gtf gfp.gtf
`,
	Args: cobra.MinimumNArgs(1),
	Run: func(_ *cobra.Command, paths []string) {
		setupLogging()

		merged, err := gtf.MergeFiles(paths...)
		if err != nil {
			die(err)
		}

		if err := merged.Write(mergeGtfOutput); err != nil {
			die(err)
		}

		info("merged %d GTF files in to %s", len(paths), mergeGtfOutput)
	},
}

func init() {
	RootCmd.AddCommand(mergeGtfCmd)

	// flags specific to this sub-command
	mergeGtfCmd.Flags().StringVarP(&mergeGtfOutput, "output", "o", gtf.DefaultOutput,
		"path to write the merged GTF to")
}
