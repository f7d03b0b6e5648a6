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

// package star builds and runs STARsolo invocations with detected chemistry
// parameters.

package star

import (
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Talavera-Lopez-Lab/Mapping-Scripts/detect"
	"github.com/inconshreveable/log15"
)

type Error string

func (e Error) Error() string { return string(e) }

const (
	ErrAlignmentFailed = Error("STAR mapping failed")

	DefaultExe     = "STAR"
	DefaultThreads = 32

	// OutputSubdir is the solo output directory STAR must have created for a
	// run to count as successful.
	OutputSubdir = "output"

	soloType          = "CB_UMI_Simple"
	soloCBmatchWLtype = "1MM_multi_Nbase_pseudocounts"
	soloUMIfiltering  = "MultiGeneUMI_CR"
	soloUMIdedup      = "1MM_CR"
	clipAdapterType   = "CellRanger4"
	outFilterScoreMin = "30"
	readFilesCommand  = "zcat"
	runDirPerm        = "All_RWX"

	dirPerm = 0755
)

// Star holds the fixed parts of a STARsolo invocation. The chemistry-specific
// parts are supplied per sample via detect.Parameters.
type Star struct {
	Exe      string
	IndexDir string
	Threads  int

	logger log15.Logger
}

// New returns a Star that will map reads against the given genome index,
// defaulting the executable name and thread count where zero values are
// given.
func New(indexDir string, threads int, logger log15.Logger) *Star {
	if threads < 1 {
		threads = DefaultThreads
	}

	return &Star{
		Exe:      DefaultExe,
		IndexDir: indexDir,
		Threads:  threads,
		logger:   logger,
	}
}

// Command returns the STARsolo argument list for mapping the given read pair
// in to the given output directory with the given detected parameters. STAR
// expects the cDNA read first, so read-2 is passed before read-1.
func (s *Star) Command(r1, r2, outputDir string, params *detect.Parameters) []string {
	cbLen := params.Chemistry.CBLen

	args := []string{
		"--runThreadN", strconv.Itoa(s.Threads),
		"--genomeDir", s.IndexDir,
		"--readFilesIn", r2, r1,
		"--runDirPerm", runDirPerm,
		"--soloCBwhitelist", params.Whitelist,
		"--soloType", soloType,
		"--soloCBstart", "1",
		"--soloCBlen", strconv.Itoa(cbLen),
		"--soloUMIstart", strconv.Itoa(cbLen + 1),
		"--soloUMIlen", strconv.Itoa(params.Chemistry.UMILen),
		"--soloStrand", params.Strand,
		"--soloCBmatchWLtype", soloCBmatchWLtype,
		"--soloUMIfiltering", soloUMIfiltering,
		"--soloUMIdedup", soloUMIdedup,
		"--clipAdapterType", clipAdapterType,
		"--outFilterScoreMin", outFilterScoreMin,
		"--soloFeatures", "Gene", "GeneFull", "Velocyto",
		"--readFilesCommand", readFilesCommand,
		"--soloOutFileNames", OutputSubdir + "/", "features.tsv", "barcodes.tsv", "matrix.mtx",
		"--outFileNamePrefix", outputDir + string(os.PathSeparator),
	}

	if params.ZeroBarcodeReadLength {
		args = append(args, "--soloBarcodeReadLength", "0")
	}

	return args
}

// Map creates the output directory tree, runs STAR synchronously and returns
// the combined stdout and stderr text. Success requires both a zero exit
// status and the solo output subdirectory being present afterwards; anything
// else is ErrAlignmentFailed. Failed mappings are never retried.
func (s *Star) Map(r1, r2, outputDir string, params *detect.Parameters) (string, error) {
	if err := os.MkdirAll(outputDir, dirPerm); err != nil {
		return "", err
	}

	args := s.Command(r1, r2, outputDir, params)

	s.logger.Info("running STAR", "dir", outputDir)
	s.logger.Info(s.Exe + " " + strings.Join(args, " "))

	out, err := exec.Command(s.Exe, args...).CombinedOutput()
	if err != nil {
		return string(out), ErrAlignmentFailed
	}

	if _, err := os.Stat(filepath.Join(outputDir, OutputSubdir)); err != nil {
		return string(out), ErrAlignmentFailed
	}

	return string(out), nil
}
