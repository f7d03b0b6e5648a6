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
	"compress/gzip"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/inconshreveable/log15"
	. "github.com/smartystreets/goconvey/convey"
)

const (
	testBarcodeA = "AAACCCAAGAAACACT"
	testBarcodeB = "TTTGGGTTCTTTGTGA"
	testBarcodeC = "GGGAAAGGAGGGACAC"
)

func TestChemistryForWhitelist(t *testing.T) {
	Convey("Chemistry is a pure function of the whitelist filename", t, func() {
		So(ChemistryForWhitelist("3M-february-2018.txt"), ShouldResemble, ChemistryV3)
		So(ChemistryForWhitelist("737K-august-2016.txt"), ShouldResemble, ChemistryV2)
		So(ChemistryForWhitelist("737K-arc-v1.txt"), ShouldResemble, Chemistry737K)
		So(ChemistryForWhitelist("737K-april-2014_rc.txt"), ShouldResemble, Chemistry737K)

		So(ChemistryV3.CBLen, ShouldEqual, 16)
		So(ChemistryV3.UMILen, ShouldEqual, 12)
		So(ChemistryV2.CBLen, ShouldEqual, 16)
		So(ChemistryV2.UMILen, ShouldEqual, 10)
		So(Chemistry737K.CBLen, ShouldEqual, 14)
		So(Chemistry737K.UMILen, ShouldEqual, 10)
	})
}

func TestDetect(t *testing.T) {
	Convey("Given gzipped read files and a whitelist directory", t, func() {
		dir := t.TempDir()
		whitelistDir := filepath.Join(dir, "whitelists")
		So(os.MkdirAll(whitelistDir, 0755), ShouldBeNil)

		tmpDir := filepath.Join(dir, "tmp")
		So(os.MkdirAll(tmpDir, 0755), ShouldBeNil)
		t.Setenv("TMPDIR", tmpDir)

		r1 := filepath.Join(dir, "S1_R1.fastq.gz")
		r2 := filepath.Join(dir, "S1_R2.fastq.gz")

		seqs := []string{
			testBarcodeA + "TTTTTTTTTTCCCC",
			testBarcodeA + "TTTTTTTTTTCCCC",
			testBarcodeB + "TTTTTTTTTTCCCC",
			testBarcodeC + "TTTTTTTTTTCCCC",
		}

		writeFastqGz(t, r1, seqs)
		writeFastqGz(t, r2, []string{strings.Repeat("G", 90)})

		detector := New(whitelistDir, discardLogger())

		Convey("The whitelist with the most matches wins", func() {
			writeWhitelist(t, whitelistDir, "737K-august-2016.txt", testBarcodeB)
			writeWhitelist(t, whitelistDir, "737K-arc-v1.txt", testBarcodeA, testBarcodeC)

			params, err := detector.Detect(r1, r2)
			So(err, ShouldBeNil)
			So(params.Whitelist, ShouldEqual, filepath.Join(whitelistDir, "737K-arc-v1.txt"))
			So(params.Chemistry, ShouldResemble, Chemistry737K)
			So(params.Strand, ShouldEqual, StrandForward)
			So(params.ZeroBarcodeReadLength, ShouldBeFalse)
		})

		Convey("Ties break to the earliest-declared candidate", func() {
			writeWhitelist(t, whitelistDir, "737K-august-2016.txt", testBarcodeA)
			writeWhitelist(t, whitelistDir, "3M-february-2018.txt", testBarcodeA)

			params, err := detector.Detect(r1, r2)
			So(err, ShouldBeNil)
			So(params.Whitelist, ShouldEqual,
				filepath.Join(whitelistDir, "3M-february-2018.txt"))
			So(params.Chemistry, ShouldResemble, ChemistryV3)
		})

		Convey("An all-zero tie still picks the earliest-declared candidate", func() {
			writeWhitelist(t, whitelistDir, "737K-august-2016.txt", "CCCCCCCCCCCCCCCC")
			writeWhitelist(t, whitelistDir, "737K-april-2014_rc.txt", "CCCCCCCCCCCCCCCC")

			params, err := detector.Detect(r1, r2)
			So(err, ShouldBeNil)
			So(params.Whitelist, ShouldEqual,
				filepath.Join(whitelistDir, "737K-august-2016.txt"))
		})

		Convey("Non-uniform read-1 lengths set the barcode read length override", func() {
			writeFastqGz(t, r1, []string{
				testBarcodeA + "TTTT",
				testBarcodeA + "TTTTTTTT",
			})
			writeWhitelist(t, whitelistDir, "737K-arc-v1.txt", testBarcodeA)

			params, err := detector.Detect(r1, r2)
			So(err, ShouldBeNil)
			So(params.ZeroBarcodeReadLength, ShouldBeTrue)
		})

		Convey("No known whitelist files means detection fails", func() {
			writeWhitelist(t, whitelistDir, "custom-whitelist.txt", testBarcodeA)

			params, err := detector.Detect(r1, r2)
			So(err, ShouldEqual, ErrMissingWhitelistFile)
			So(params, ShouldBeNil)
		})

		Convey("Empty read files mean detection fails", func() {
			writeFastqGz(t, r1, nil)
			writeWhitelist(t, whitelistDir, "737K-arc-v1.txt", testBarcodeA)

			params, err := detector.Detect(r1, r2)
			So(err, ShouldEqual, ErrEmptyReadSet)
			So(params, ShouldBeNil)
		})

		Convey("Scratch files are removed on success and on failure", func() {
			writeWhitelist(t, whitelistDir, "737K-arc-v1.txt", testBarcodeA)

			_, err := detector.Detect(r1, r2)
			So(err, ShouldBeNil)
			So(dirEntries(t, tmpDir), ShouldBeEmpty)

			writeFastqGz(t, r1, nil)

			_, err = detector.Detect(r1, r2)
			So(err, ShouldEqual, ErrEmptyReadSet)
			So(dirEntries(t, tmpDir), ShouldBeEmpty)
		})
	})
}

func TestSubsample(t *testing.T) {
	Convey("Subsampling a small file keeps every record in order", t, func() {
		dir := t.TempDir()
		src := filepath.Join(dir, "reads.fastq.gz")

		seqs := []string{"ACGT", "CGTA", "GTAC"}
		writeFastqGz(t, src, seqs)

		dest := filepath.Join(dir, "sub.fastq")

		records, err := subsampleFastq(src, dest)
		So(err, ShouldBeNil)
		So(records, ShouldHaveLength, len(seqs))

		for i, rec := range records {
			So(rec.seq, ShouldEqual, seqs[i])
		}

		data, err := os.ReadFile(dest)
		So(err, ShouldBeNil)
		So(strings.Count(string(data), "\n"), ShouldEqual, len(seqs)*4)
	})

	Convey("A truncated trailing record is discarded", t, func() {
		dir := t.TempDir()
		src := filepath.Join(dir, "reads.fastq")

		err := os.WriteFile(src,
			[]byte("@r1\nACGT\n+\nIIII\n@r2\nCGTA\n"), filePerm)
		So(err, ShouldBeNil)

		records, err := subsampleFastq(src, filepath.Join(dir, "sub.fastq"))
		So(err, ShouldBeNil)
		So(records, ShouldHaveLength, 1)
	})
}

func writeFastqGz(t *testing.T, path string, seqs []string) {
	t.Helper()

	file, err := os.Create(path)
	So(err, ShouldBeNil)

	gw := gzip.NewWriter(file)

	for i, seq := range seqs {
		record := "@read" + string(rune('a'+i)) + "\n" + seq + "\n+\n" +
			strings.Repeat("I", len(seq)) + "\n"

		_, err = gw.Write([]byte(record))
		So(err, ShouldBeNil)
	}

	So(gw.Close(), ShouldBeNil)
	So(file.Close(), ShouldBeNil)
}

func writeWhitelist(t *testing.T, dir, name string, barcodes ...string) {
	t.Helper()

	err := os.WriteFile(filepath.Join(dir, name),
		[]byte(strings.Join(barcodes, "\n")+"\n"), filePerm)
	So(err, ShouldBeNil)
}

func dirEntries(t *testing.T, dir string) []os.DirEntry {
	t.Helper()

	entries, err := os.ReadDir(dir)
	So(err, ShouldBeNil)

	return entries
}

func discardLogger() log15.Logger {
	logger := log15.New()
	logger.SetHandler(log15.DiscardHandler())

	return logger
}
