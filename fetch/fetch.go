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

// package fetch downloads FASTQ files named in study metadata, using axel for
// multi-connection downloads. Unlike the mapping pipeline itself, downloads
// are retried a bounded number of times.

package fetch

import (
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"strings"

	"github.com/inconshreveable/log15"
)

type Error string

func (e Error) Error() string { return string(e) }

const (
	ErrDownloadFailed = Error("download failed after all attempts")

	DefaultConnections = 4
	DefaultAttempts    = 3

	defaultScheme = "ftp"
	dirPerm       = 0755
)

// Fetcher downloads files into OutputDir with axel, using Connections
// concurrent connections and at most Attempts attempts per file.
type Fetcher struct {
	OutputDir   string
	Connections int
	Attempts    int

	logger log15.Logger

	// run executes a download command; swapped out in tests.
	run func(cmd string) error
}

// New returns a Fetcher that downloads into the given directory, defaulting
// connection and attempt counts where zero values are given.
func New(outputDir string, connections int, logger log15.Logger) *Fetcher {
	if connections < 1 {
		connections = DefaultConnections
	}

	return &Fetcher{
		OutputDir:   outputDir,
		Connections: connections,
		Attempts:    DefaultAttempts,
		logger:      logger,
		run:         executeCmd,
	}
}

func executeCmd(cmd string) error {
	execCmd := exec.Command("bash", "-c", "set -o pipefail; "+cmd)
	execCmd.Stdout = os.Stdout
	execCmd.Stderr = os.Stderr

	return execCmd.Run()
}

// SanitizeURL percent-encodes the path segments of a download URL, leaving
// slashes intact. URLs without a scheme are treated as ftp.
func SanitizeURL(rawURL string) string {
	scheme := defaultScheme
	rest := rawURL

	if i := strings.Index(rawURL, "://"); i >= 0 {
		scheme = rawURL[:i]
		rest = rawURL[i+3:]
	}

	parts := strings.Split(rest, "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}

	return scheme + "://" + strings.Join(parts, "/")
}

// Command returns the axel command line for downloading the given URL to the
// given destination path.
func (f *Fetcher) Command(rawURL, dest string) string {
	return fmt.Sprintf("axel -n %d -o %q %q", f.Connections, dest, SanitizeURL(rawURL))
}

// Fetch downloads the file at the given URL into our output directory, named
// after the last path segment of the URL. Files that already exist with
// non-zero size are skipped. Each download gets up to Attempts attempts; a
// download that leaves an empty file counts as a failed attempt.
func (f *Fetcher) Fetch(rawURL string) (string, error) {
	if err := os.MkdirAll(f.OutputDir, dirPerm); err != nil {
		return "", err
	}

	dest := filepath.Join(f.OutputDir, path.Base(SanitizeURL(rawURL)))

	if nonEmptyFileExists(dest) {
		f.logger.Info("file already downloaded", "path", dest)

		return dest, nil
	}

	for attempt := 1; attempt <= f.Attempts; attempt++ {
		f.logger.Info("downloading", "url", rawURL, "attempt", attempt)

		if err := f.run(f.Command(rawURL, dest)); err != nil {
			f.logger.Warn("download attempt failed", "url", rawURL, "err", err)

			continue
		}

		if nonEmptyFileExists(dest) {
			return dest, nil
		}

		f.logger.Warn("download left an empty file", "path", dest)
		os.Remove(dest)
	}

	return "", ErrDownloadFailed
}

// FetchAll downloads every URL of every named sample, in the given sample
// order. The first sample to exhaust its attempts fails the whole fetch.
func (f *Fetcher) FetchAll(order []string, uris map[string][]string) error {
	for _, sample := range order {
		for _, uri := range uris[sample] {
			if _, err := f.Fetch(uri); err != nil {
				f.logger.Error("giving up on sample", "sample", sample, "url", uri)

				return err
			}
		}
	}

	return nil
}

func nonEmptyFileExists(path string) bool {
	info, err := os.Stat(path)

	return err == nil && info.Size() > 0
}
