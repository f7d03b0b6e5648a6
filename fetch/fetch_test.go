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

package fetch

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/inconshreveable/log15"
	. "github.com/smartystreets/goconvey/convey"
)

const filePerm = 0644

func TestSanitizeURL(t *testing.T) {
	Convey("URL path segments get percent-encoded", t, func() {
		So(SanitizeURL("ftp://host/path/file name.fastq.gz"),
			ShouldEqual, "ftp://host/path/file%20name.fastq.gz")

		Convey("Slashes and schemes are preserved", func() {
			So(SanitizeURL("https://host/a/b/c.gz"),
				ShouldEqual, "https://host/a/b/c.gz")
		})

		Convey("Schemeless URLs default to ftp", func() {
			So(SanitizeURL("host/path/c.gz"),
				ShouldEqual, "ftp://host/path/c.gz")
		})
	})
}

func TestCommand(t *testing.T) {
	Convey("The axel command names connections, destination and URL", t, func() {
		f := New("/downloads", 8, discardLogger())

		So(f.Command("ftp://host/S1_R1.fastq.gz", "/downloads/S1_R1.fastq.gz"),
			ShouldEqual,
			`axel -n 8 -o "/downloads/S1_R1.fastq.gz" "ftp://host/S1_R1.fastq.gz"`)
	})
}

func TestFetch(t *testing.T) {
	Convey("Given a Fetcher with a stubbed download command", t, func() {
		dir := t.TempDir()
		f := New(dir, 0, discardLogger())
		So(f.Connections, ShouldEqual, DefaultConnections)

		dest := filepath.Join(dir, "S1_R1.fastq.gz")

		var cmds []string

		f.run = func(cmd string) error {
			cmds = append(cmds, cmd)

			return os.WriteFile(dest, []byte("@r1\nACGT\n+\nIIII\n"), filePerm)
		}

		Convey("A successful download returns the destination path", func() {
			got, err := f.Fetch("ftp://host/path/S1_R1.fastq.gz")
			So(err, ShouldBeNil)
			So(got, ShouldEqual, dest)
			So(cmds, ShouldHaveLength, 1)

			Convey("and an existing non-empty file is not downloaded again", func() {
				got, err = f.Fetch("ftp://host/path/S1_R1.fastq.gz")
				So(err, ShouldBeNil)
				So(got, ShouldEqual, dest)
				So(cmds, ShouldHaveLength, 1)
			})
		})

		Convey("Failing commands are retried up to the attempt limit", func() {
			f.run = func(cmd string) error {
				cmds = append(cmds, cmd)

				return Error("connection refused")
			}

			_, err := f.Fetch("ftp://host/path/S1_R1.fastq.gz")
			So(err, ShouldEqual, ErrDownloadFailed)
			So(cmds, ShouldHaveLength, DefaultAttempts)
		})

		Convey("A download that leaves an empty file counts as a failure", func() {
			f.run = func(cmd string) error {
				cmds = append(cmds, cmd)

				return os.WriteFile(dest, nil, filePerm)
			}

			_, err := f.Fetch("ftp://host/path/S1_R1.fastq.gz")
			So(err, ShouldEqual, ErrDownloadFailed)
			So(cmds, ShouldHaveLength, DefaultAttempts)

			_, err = os.Stat(dest)
			So(os.IsNotExist(err), ShouldBeTrue)
		})
	})
}

func TestFetchAll(t *testing.T) {
	Convey("FetchAll downloads each sample's URLs in order", t, func() {
		dir := t.TempDir()
		f := New(dir, 1, discardLogger())

		var urls []string

		uris := map[string][]string{
			"S1": {"ftp://host/file1.gz", "ftp://host/file2.gz"},
			"S2": {"ftp://host/file3.gz"},
		}

		Convey("Every file of every sample gets fetched", func() {
			f.run = func(cmd string) error {
				urls = append(urls, cmd)

				name := "file" + strconv.Itoa(len(urls)) + ".gz"

				return os.WriteFile(filepath.Join(dir, name), []byte("x"), filePerm)
			}

			err := f.FetchAll([]string{"S1", "S2"}, uris)
			So(err, ShouldBeNil)
			So(urls, ShouldHaveLength, 3)
			So(urls[0], ShouldContainSubstring, "file1.gz")
			So(urls[1], ShouldContainSubstring, "file2.gz")
			So(urls[2], ShouldContainSubstring, "file3.gz")
		})

		Convey("A sample that exhausts its attempts fails the fetch", func() {
			f.run = func(cmd string) error {
				urls = append(urls, cmd)

				return Error("connection refused")
			}

			err := f.FetchAll([]string{"S1", "S2"}, uris)
			So(err, ShouldEqual, ErrDownloadFailed)
			So(urls, ShouldHaveLength, DefaultAttempts)
		})
	})
}

func discardLogger() log15.Logger {
	logger := log15.New()
	logger.SetHandler(log15.DiscardHandler())

	return logger
}
