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

// package resolve maps metadata-described samples to their pair of read files
// on disk.

package resolve

import (
	"os"
	"path/filepath"

	"github.com/Talavera-Lopez-Lab/Mapping-Scripts/types"
)

type Error string

func (e Error) Error() string { return string(e) }

const (
	ErrFilePairNotFound     = Error("no fastq files match the sample's pattern")
	ErrMissingFileReference = Error("metadata does not name the sample's read files")
	ErrFileNotFound         = Error("read file does not exist")

	read1PatternSuffix = "_*R1*_001.fastq.gz"
	read2PatternSuffix = "_*R2*_001.fastq.gz"
)

// Resolver resolves a sample to its read-1 and read-2 files, verified to
// exist on disk.
type Resolver interface {
	Resolve(sample *types.Sample) (*types.SampleRecord, error)
}

// Convention resolves read files by globbing the fastq directory for
// "{sampleID}_*R1*_001.fastq.gz" and the R2 analog. If multiple files match a
// pattern, the first is used; globbing more than one lane or run per sample is
// an accepted ambiguity, not an error.
type Convention struct {
	FastqDir string
}

// Resolve returns a record with the first R1 and R2 matches for the sample's
// ID. Returns ErrFilePairNotFound if either pattern matches nothing.
func (c *Convention) Resolve(sample *types.Sample) (*types.SampleRecord, error) {
	r1, err := c.glob(sample.SampleID + read1PatternSuffix)
	if err != nil {
		return nil, err
	}

	r2, err := c.glob(sample.SampleID + read2PatternSuffix)
	if err != nil {
		return nil, err
	}

	return verifiedRecord(sample.SampleID, r1, r2)
}

func (c *Convention) glob(pattern string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(c.FastqDir, pattern))
	if err != nil {
		return "", err
	}

	if len(matches) == 0 {
		return "", ErrFilePairNotFound
	}

	return matches[0], nil
}

// Explicit resolves read files from the read filenames named in the sample's
// metadata columns, joined with the fastq directory.
type Explicit struct {
	FastqDir string
}

// Resolve returns a record for the sample's explicit read filenames. Returns
// ErrMissingFileReference if either filename is blank.
func (e *Explicit) Resolve(sample *types.Sample) (*types.SampleRecord, error) {
	if sample.Read1 == "" || sample.Read2 == "" {
		return nil, ErrMissingFileReference
	}

	return verifiedRecord(sample.SampleID,
		filepath.Join(e.FastqDir, sample.Read1),
		filepath.Join(e.FastqDir, sample.Read2))
}

func verifiedRecord(sampleID, r1, r2 string) (*types.SampleRecord, error) {
	for _, path := range []string{r1, r2} {
		if _, err := os.Stat(path); err != nil {
			return nil, ErrFileNotFound
		}
	}

	return &types.SampleRecord{
		SampleID: sampleID,
		R1:       r1,
		R2:       r2,
	}, nil
}
