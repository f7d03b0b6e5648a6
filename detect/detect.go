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

// package detect determines the library chemistry of a sample from a
// subsample of its reads.

package detect

import (
	"bufio"
	"os"
	"path/filepath"

	"github.com/inconshreveable/log15"
)

type Error string

func (e Error) Error() string { return string(e) }

const (
	ErrMissingWhitelistFile = Error("no known whitelist file found in whitelist directory")
	ErrEmptyReadSet         = Error("read subsample contains no records")

	// StrandForward is the only strand orientation we emit; strandedness is
	// not detected from read content.
	StrandForward = "Forward"

	barcodePrefixLength = 16

	scratchPrefix = "test_params_"
	scratchR1     = "test.R1.fastq"
	scratchR2     = "test.R2.fastq"
)

// Parameters are the detected chemistry parameters for one sample, consumed
// once to build a STAR invocation.
type Parameters struct {
	Whitelist string
	Chemistry Chemistry
	Strand    string

	// ZeroBarcodeReadLength is set when sampled read-1 lengths are not all
	// identical, in which case STAR must be told not to enforce a barcode
	// read length.
	ZeroBarcodeReadLength bool
}

// Detector detects chemistry parameters by scoring read-1 barcode prefixes
// against the known whitelists in WhitelistDir.
type Detector struct {
	WhitelistDir string

	logger log15.Logger
}

// New returns a Detector that looks for whitelist files in the given
// directory and logs progress to the given logger.
func New(whitelistDir string, logger log15.Logger) *Detector {
	return &Detector{
		WhitelistDir: whitelistDir,
		logger:       logger,
	}
}

// Detect subsamples the given read files and returns the chemistry parameters
// for the sample they belong to.
//
// Read-1 and read-2 are subsampled independently, so the two subsamples are
// not positionally paired. Only read-1 barcode content contributes to the
// statistics, so this approximation does not affect which whitelist wins, but
// it is an approximation.
//
// A scratch directory holding the two subsampled files is created for the
// duration of the call and removed again on every return path.
func (d *Detector) Detect(r1Path, r2Path string) (*Parameters, error) {
	d.logger.Info("starting parameter detection", "r1", r1Path, "r2", r2Path)

	scratch, err := os.MkdirTemp("", scratchPrefix)
	if err != nil {
		return nil, err
	}

	defer os.RemoveAll(scratch)

	r1Records, err := subsampleBoth(r1Path, r2Path, scratch)
	if err != nil {
		return nil, err
	}

	meanLen, uniform := lengthStats(r1Records)
	d.logger.Info("read-1 length statistics", "mean", meanLen, "uniform", uniform)

	best, err := d.bestWhitelist(r1Records)
	if err != nil {
		return nil, err
	}

	params := &Parameters{
		Whitelist:             filepath.Join(d.WhitelistDir, best),
		Chemistry:             ChemistryForWhitelist(best),
		Strand:                StrandForward,
		ZeroBarcodeReadLength: !uniform,
	}

	d.logger.Info("detected parameters", "whitelist", params.Whitelist,
		"chemistry", params.Chemistry.Name, "cbLen", params.Chemistry.CBLen,
		"umiLen", params.Chemistry.UMILen, "strand", params.Strand,
		"zeroBarcodeReadLength", params.ZeroBarcodeReadLength)

	return params, nil
}

// subsampleBoth subsamples both read files into the scratch directory and
// returns the read-1 records. Either stream subsampling to zero records is an
// error.
func subsampleBoth(r1Path, r2Path, scratch string) ([]fastqRecord, error) {
	r1Records, err := subsampleFastq(r1Path, filepath.Join(scratch, scratchR1))
	if err != nil {
		return nil, err
	}

	r2Records, err := subsampleFastq(r2Path, filepath.Join(scratch, scratchR2))
	if err != nil {
		return nil, err
	}

	if len(r1Records) == 0 || len(r2Records) == 0 {
		return nil, ErrEmptyReadSet
	}

	return r1Records, nil
}

// lengthStats returns the integer mean read length and whether every read has
// the same length.
func lengthStats(records []fastqRecord) (int, bool) {
	sum := 0
	uniform := true

	for _, rec := range records {
		sum += len(rec.seq)

		if len(rec.seq) != len(records[0].seq) {
			uniform = false
		}
	}

	return sum / len(records), uniform
}

// bestWhitelist scores each candidate whitelist present in the whitelist
// directory by exact matches of read-1 barcode prefixes, and returns the
// filename with the highest count. Ties go to the candidate declared first.
func (d *Detector) bestWhitelist(records []fastqRecord) (string, error) {
	best := ""
	bestCount := -1

	for _, name := range whitelistCandidates {
		path := filepath.Join(d.WhitelistDir, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}

		count, err := countWhitelistMatches(path, records)
		if err != nil {
			return "", err
		}

		d.logger.Info("whitelist match count", "whitelist", name, "matches", count)

		if count > bestCount {
			best = name
			bestCount = count
		}
	}

	if best == "" {
		return "", ErrMissingWhitelistFile
	}

	return best, nil
}

// countWhitelistMatches counts how many of the records' barcode prefixes
// (first 16 bases of read-1) appear in the whitelist file. Matching is exact
// string equality; no mismatch tolerance.
func countWhitelistMatches(path string, records []fastqRecord) (int, error) {
	whitelist, err := readWhitelist(path)
	if err != nil {
		return 0, err
	}

	count := 0

	for _, rec := range records {
		prefix := rec.seq
		if len(prefix) > barcodePrefixLength {
			prefix = prefix[:barcodePrefixLength]
		}

		if whitelist[prefix] {
			count++
		}
	}

	return count, nil
}

func readWhitelist(path string) (map[string]bool, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	defer file.Close()

	whitelist := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if barcode := scanner.Text(); barcode != "" {
			whitelist[barcode] = true
		}
	}

	return whitelist, scanner.Err()
}
