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
	"github.com/Talavera-Lopez-Lab/Mapping-Scripts/batch"
	"github.com/Talavera-Lopez-Lab/Mapping-Scripts/config"
	"github.com/Talavera-Lopez-Lab/Mapping-Scripts/detect"
	"github.com/Talavera-Lopez-Lab/Mapping-Scripts/metadata"
	"github.com/Talavera-Lopez-Lab/Mapping-Scripts/resolve"
	"github.com/Talavera-Lopez-Lab/Mapping-Scripts/star"
	"github.com/Talavera-Lopez-Lab/Mapping-Scripts/types"
	"github.com/spf13/cobra"
)

// options for this cmd.
var (
	mapFastqDir     string
	mapOutputDir    string
	mapIndexDir     string
	mapWhitelistDir string
	mapMetadataPath string
	mapThreads      int
	mapOnFailure    string
)

// mapCmd represents the map command.
var mapCmd = &cobra.Command{
	Use:   "map",
	Short: "Map the samples of a study with STARsolo.",
	Long: `Map the samples of a study with STARsolo.

STAR must be in your PATH (or set ` + config.EnvVarStarExe + `), and the FASTQ
files for your samples should already be in the --fastq-dir directory, eg.
having been downloaded there with the fetch sub-command.

For each sample named in the metadata file, this finds its R1/R2 FASTQ pair,
works out the 10x chemistry (barcode whitelist, barcode and UMI lengths,
strandedness) from a subsample of its reads, and runs STARsolo against the
given genome index. Output for each sample goes to a per-sample directory
under <output-dir>/` + batch.MappedSubdir + `.

The metadata file is a tab-separated table with an "Assay Name" column naming
the samples. If it also has "Comment[READ1 FILE]" and "Comment[READ2 FILE]"
columns, those name each sample's FASTQ files; otherwise files are found by
the <sample>_*R1*_001.fastq.gz naming convention.

The --whitelist-dir directory must contain the 10x barcode whitelist files to
consider, eg. 3M-february-2018.txt and 737K-august-2016.txt.

By default the first sample that fails stops the whole run; pass
--on-failure continue to carry on with the remaining samples instead.

An example command line could look like this:
$ mapping-scripts map -m sdrf.txt -f /fastqs -o /results \
    -i /ref/star_index -w /ref/whitelists
`,
	Run: func(_ *cobra.Command, _ []string) {
		setupLogging()

		c, err := config.FromEnv()
		if err != nil {
			die(err)
		}

		if mapThreads > 0 {
			c.Threads = mapThreads
		}

		policy, err := batch.StringToPolicy(mapOnFailure)
		if err != nil {
			die(err)
		}

		samples, table := readSampleMetadata(mapMetadataPath)

		s := star.New(mapIndexDir, c.Threads, appLogger)
		s.Exe = c.StarExe

		o := batch.New(
			chooseResolver(table, mapFastqDir),
			detect.New(mapWhitelistDir, appLogger),
			s, mapOutputDir, policy, appLogger,
		)

		report, err := o.Run(samples)

		printReport(report)

		if err != nil {
			die(err)
		}
	},
}

func init() {
	RootCmd.AddCommand(mapCmd)

	// flags specific to this sub-command
	mapCmd.Flags().StringVarP(&mapMetadataPath, "metadata", "m", "",
		"tab-separated sample metadata file")
	markFlagRequired(mapCmd, "metadata")
	mapCmd.Flags().StringVarP(&mapFastqDir, "fastq-dir", "f", "",
		"directory containing FASTQ files")
	markFlagRequired(mapCmd, "fastq-dir")
	mapCmd.Flags().StringVarP(&mapOutputDir, "output-dir", "o", "",
		"output directory")
	markFlagRequired(mapCmd, "output-dir")
	mapCmd.Flags().StringVarP(&mapIndexDir, "index-dir", "i", "",
		"STAR genome index directory")
	markFlagRequired(mapCmd, "index-dir")
	mapCmd.Flags().StringVarP(&mapWhitelistDir, "whitelist-dir", "w", "",
		"directory containing 10x barcode whitelist files")
	markFlagRequired(mapCmd, "whitelist-dir")

	mapCmd.Flags().IntVarP(&mapThreads, "threads", "t", 0,
		"threads for STAR (default from "+config.EnvVarThreads+", or 32)")
	mapCmd.Flags().StringVar(&mapOnFailure, "on-failure", "abort",
		"what a failed sample does to the rest of the run: abort or continue")
}

func markFlagRequired(cmd *cobra.Command, flagName string) {
	err := cmd.MarkFlagRequired(flagName)
	if err != nil {
		die(err)
	}
}

// readSampleMetadata parses the metadata file and extracts its samples,
// dying on any problem.
func readSampleMetadata(path string) ([]*types.Sample, *metadata.Table) {
	table, err := metadata.ReadFile(path)
	if err != nil {
		die(err)
	}

	samples, err := metadata.Samples(table)
	if err != nil {
		die(err)
	}

	info("found %d samples in %s", len(samples), path)

	return samples, table
}

// chooseResolver picks how sample FASTQ files will be found: via explicit
// read file columns when the metadata has them, via the naming convention
// otherwise.
func chooseResolver(table *metadata.Table, fastqDir string) batch.Resolver {
	if table.HasColumn(metadata.ColumnRead1) && table.HasColumn(metadata.ColumnRead2) {
		info("using read file columns from the metadata")

		return &resolve.Explicit{FastqDir: fastqDir}
	}

	return &resolve.Convention{FastqDir: fastqDir}
}

// printReport outputs the per-sample outcomes to STDOUT.
func printReport(report batch.Report) {
	for _, result := range report {
		if result.Success {
			cliPrint("%s\tok\t%s\n", result.SampleID, result.OutputDir)
		} else {
			cliPrint("%s\tfailed\n", result.SampleID)
			warn("STAR output for failed sample %s:\n%s", result.SampleID, result.Diagnostics)
		}
	}
}
