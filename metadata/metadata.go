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

// package metadata reads the tab-separated (SDRF-style) metadata tables that
// describe the samples of a sequencing study.

package metadata

import (
	"os"
	"strings"
)

type Error string

func (e Error) Error() string { return string(e) }

const (
	ErrNoData        = Error("no data found in metadata table")
	ErrMissingColumn = Error("column not found in metadata table")
)

// Table contains the cells of a metadata table: a header row of column names
// followed by data rows.
type Table struct {
	ColumnHeaders []string
	Rows          [][]string
}

// ReadFile reads the tab-separated table at the given path. The first line is
// taken as the column headers; blank lines are skipped.
func ReadFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var header []string

	var rows [][]string

	for _, line := range strings.Split(string(data), "\n") {
		if strings.TrimRight(line, "\r") == "" {
			continue
		}

		fields := strings.Split(strings.TrimRight(line, "\r"), "\t")

		if header == nil {
			header = fields
		} else {
			rows = append(rows, fields)
		}
	}

	if header == nil {
		return nil, ErrNoData
	}

	return &Table{
		ColumnHeaders: header,
		Rows:          rows,
	}, nil
}

// HasColumn reports if the table has a column with the given name.
func (t *Table) HasColumn(name string) bool {
	_, err := t.columnIndex(name)

	return err == nil
}

func (t *Table) columnIndex(name string) (int, error) {
	for i, header := range t.ColumnHeaders {
		if header == name {
			return i, nil
		}
	}

	return 0, ErrMissingColumn
}

// Columns returns our rows restricted to the named columns, in the given
// order. Rows shorter than the table header are padded with blank values.
// Returns an error if a named column isn't in our ColumnHeaders.
func (t *Table) Columns(names ...string) ([][]string, error) {
	indexes := make([]int, len(names))

	for i, name := range names {
		index, err := t.columnIndex(name)
		if err != nil {
			return nil, err
		}

		indexes[i] = index
	}

	rows := make([][]string, len(t.Rows))

	for r, row := range t.Rows {
		out := make([]string, len(indexes))

		for i, index := range indexes {
			if index < len(row) {
				out[i] = row[index]
			}
		}

		rows[r] = out
	}

	return rows, nil
}

// cell returns the value of the named column in the given row, or blank if the
// column is absent or the row is short.
func (t *Table) cell(row []string, name string) string {
	index, err := t.columnIndex(name)
	if err != nil || index >= len(row) {
		return ""
	}

	return row[index]
}
