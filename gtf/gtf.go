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

// package gtf concatenates GTF annotation files, merging their metadata
// headers in to one.

package gtf

import (
	"bufio"
	"io"
	"os"
	"strings"
)

type Error string

func (e Error) Error() string { return string(e) }

const (
	ErrNoFiles       = Error("no GTF files to merge")
	ErrInvalidHeader = Error("GTF file lacks a 5 line ## header")

	// DefaultOutput is the filename merged annotation gets written to when no
	// other name is given.
	DefaultOutput = "concatenated.gtf"

	headerPrefix = "##"
	headerLines  = 5

	filePerm = 0644
)

// Header is the 5 line ## metadata block at the top of a GTF file.
type Header struct {
	Description string
	Provider    string
	Contact     string
	Format      string
	Date        string
}

// GTF is a parsed annotation file: its header and its feature lines.
type GTF struct {
	Header Header
	Lines  []string
}

// ReadFile parses the GTF file at the given path. The first 5 lines must be
// ## header lines in description, provider, contact, format, date order.
func ReadFile(path string) (*GTF, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	defer file.Close()

	return parse(file)
}

func parse(r io.Reader) (*GTF, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)

	header, err := parseHeader(scanner)
	if err != nil {
		return nil, err
	}

	gtf := &GTF{Header: *header}

	for scanner.Scan() {
		gtf.Lines = append(gtf.Lines, scanner.Text())
	}

	return gtf, scanner.Err()
}

func parseHeader(scanner *bufio.Scanner) (*Header, error) {
	values := make([]string, 0, headerLines)

	for i := 0; i < headerLines; i++ {
		if !scanner.Scan() {
			return nil, ErrInvalidHeader
		}

		line := scanner.Text()
		if !strings.HasPrefix(line, headerPrefix) {
			return nil, ErrInvalidHeader
		}

		values = append(values, headerValue(line))
	}

	return &Header{
		Description: values[0],
		Provider:    values[1],
		Contact:     values[2],
		Format:      values[3],
		Date:        values[4],
	}, nil
}

func headerValue(line string) string {
	line = strings.TrimPrefix(line, headerPrefix)

	if _, value, found := strings.Cut(line, ":"); found {
		return strings.TrimSpace(value)
	}

	return strings.TrimSpace(line)
}

// Merge combines the given annotations in order. Descriptions and dates
// accumulate, joined with "; "; provider, contact and format come from the
// first file. Duplicate feature lines are dropped, keeping the first
// occurrence, so merging overlapping annotations doesn't double up features.
func Merge(gtfs ...*GTF) (*GTF, error) {
	if len(gtfs) == 0 {
		return nil, ErrNoFiles
	}

	merged := &GTF{Header: gtfs[0].Header}

	descriptions := make([]string, 0, len(gtfs))
	dates := make([]string, 0, len(gtfs))
	seen := make(map[string]bool)

	for _, gtf := range gtfs {
		descriptions = append(descriptions, gtf.Header.Description)
		dates = append(dates, gtf.Header.Date)

		for _, line := range gtf.Lines {
			if seen[line] {
				continue
			}

			seen[line] = true

			merged.Lines = append(merged.Lines, line)
		}
	}

	merged.Header.Description = strings.Join(descriptions, "; ")
	merged.Header.Date = strings.Join(dates, "; ")

	return merged, nil
}

// MergeFiles parses each named GTF file and merges them in the given order.
func MergeFiles(paths ...string) (*GTF, error) {
	gtfs := make([]*GTF, 0, len(paths))

	for _, path := range paths {
		gtf, err := ReadFile(path)
		if err != nil {
			return nil, err
		}

		gtfs = append(gtfs, gtf)
	}

	return Merge(gtfs...)
}

// Write writes the annotation, header first, to the file at the given path.
func (g *GTF) Write(path string) error {
	var sb strings.Builder

	for _, line := range []struct{ key, value string }{
		{"description", g.Header.Description},
		{"provider", g.Header.Provider},
		{"contact", g.Header.Contact},
		{"format", g.Header.Format},
		{"date", g.Header.Date},
	} {
		sb.WriteString(headerPrefix + line.key + ": " + line.value + "\n")
	}

	for _, line := range g.Lines {
		sb.WriteString(line + "\n")
	}

	return os.WriteFile(path, []byte(sb.String()), filePerm)
}
