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

package detect

import (
	"bufio"
	"compress/gzip"
	"io"
	"math/rand"
	"os"
	"strings"
)

const (
	subsampleSize    = 200000
	subsampleLeading = 800000
	subsampleSeed    = 100

	maxLineBytes = 1024 * 1024
	filePerm     = 0644
)

// fastqRecord is one 4-line FASTQ record.
type fastqRecord struct {
	header string
	seq    string
	plus   string
	qual   string
}

// subsampleFastq draws up to subsampleSize records from the leading
// subsampleLeading records of the FASTQ file at src, using a reservoir sample
// with a fixed seed, writes them to the plain-text FASTQ file at dest, and
// returns them. Fewer than subsampleSize records in src means every record is
// returned.
func subsampleFastq(src, dest string) ([]fastqRecord, error) {
	reader, err := openFastq(src)
	if err != nil {
		return nil, err
	}

	defer reader.Close()

	reservoir, err := sampleRecords(reader)
	if err != nil {
		return nil, err
	}

	return reservoir, writeRecords(dest, reservoir)
}

func sampleRecords(reader io.Reader) ([]fastqRecord, error) {
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, bufio.MaxScanTokenSize), maxLineBytes)

	rng := rand.New(rand.NewSource(subsampleSeed))
	reservoir := make([]fastqRecord, 0, subsampleSize)

	for i := 0; i < subsampleLeading; i++ {
		rec, ok := scanRecord(scanner)
		if !ok {
			break
		}

		if len(reservoir) < subsampleSize {
			reservoir = append(reservoir, rec)

			continue
		}

		if j := rng.Intn(i + 1); j < subsampleSize {
			reservoir[j] = rec
		}
	}

	return reservoir, scanner.Err()
}

// scanRecord reads the next 4-line record. A truncated record at the end of
// the stream is discarded.
func scanRecord(scanner *bufio.Scanner) (fastqRecord, bool) {
	var rec fastqRecord

	lines := []*string{&rec.header, &rec.seq, &rec.plus, &rec.qual}

	for _, line := range lines {
		if !scanner.Scan() {
			return rec, false
		}

		*line = strings.TrimRight(scanner.Text(), "\r")
	}

	return rec, true
}

func writeRecords(dest string, records []fastqRecord) error {
	var sb strings.Builder

	for _, rec := range records {
		sb.WriteString(rec.header)
		sb.WriteByte('\n')
		sb.WriteString(rec.seq)
		sb.WriteByte('\n')
		sb.WriteString(rec.plus)
		sb.WriteByte('\n')
		sb.WriteString(rec.qual)
		sb.WriteByte('\n')
	}

	return os.WriteFile(dest, []byte(sb.String()), filePerm)
}

// multiReadCloser closes multiple io.Closers when Close() is called.
type multiReadCloser struct {
	io.Reader
	closers []io.Closer
}

func (m *multiReadCloser) Close() error {
	var err error

	for _, c := range m.closers {
		if cerr := c.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}

	return err
}

// openFastq opens a FASTQ file for reading, transparently decompressing gzip
// input detected by magic number or .gz suffix.
func openFastq(path string) (io.ReadCloser, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	var sig [2]byte

	n, _ := fh.Read(sig[:])

	if _, err := fh.Seek(0, io.SeekStart); err != nil {
		fh.Close()

		return nil, err
	}

	if (n == 2 && sig[0] == 0x1f && sig[1] == 0x8b) || strings.HasSuffix(path, ".gz") {
		gr, err := gzip.NewReader(fh)
		if err != nil {
			fh.Close()

			return nil, err
		}

		return &multiReadCloser{Reader: gr, closers: []io.Closer{gr, fh}}, nil
	}

	return fh, nil
}
