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

package metadata

import (
	"fmt"
	"strings"

	"github.com/Talavera-Lopez-Lab/Mapping-Scripts/types"
)

const (
	ColumnAssayName   = "Assay Name"
	ColumnExtractName = "Extract Name"
	ColumnSourceName  = "Source Name"
	ColumnRead1       = "Comment[READ1 FILE]"
	ColumnRead2       = "Comment[READ2 FILE]"

	fastqURIColumnPart = "FASTQ_URI"

	syntheticSamplePrefix = "sample_"
)

// Samples extracts one Sample per sample described by the table.
//
// If the table has an "Assay Name" column, rows are grouped by it: each unique
// assay name, in row order, becomes one sample, and any explicit read
// filenames are taken from the first row of the group. Otherwise one synthetic
// sample ("sample_1", "sample_2", ...) is created per row.
//
// Explicit read filenames come from the Comment[READ1 FILE] and
// Comment[READ2 FILE] columns when present.
func Samples(t *Table) ([]*types.Sample, error) {
	if len(t.Rows) == 0 {
		return nil, ErrNoData
	}

	if t.HasColumn(ColumnAssayName) {
		return groupedSamples(t)
	}

	return syntheticSamples(t), nil
}

func groupedSamples(t *Table) ([]*types.Sample, error) {
	seen := make(map[string]bool, len(t.Rows))

	var samples []*types.Sample

	for _, row := range t.Rows {
		assay := t.cell(row, ColumnAssayName)
		if assay == "" || seen[assay] {
			continue
		}

		seen[assay] = true

		samples = append(samples, &types.Sample{
			SampleID: assay,
			Read1:    t.cell(row, ColumnRead1),
			Read2:    t.cell(row, ColumnRead2),
		})
	}

	if len(samples) == 0 {
		return nil, ErrNoData
	}

	return samples, nil
}

func syntheticSamples(t *Table) []*types.Sample {
	samples := make([]*types.Sample, len(t.Rows))

	for i, row := range t.Rows {
		samples[i] = &types.Sample{
			SampleID: fmt.Sprintf("%s%d", syntheticSamplePrefix, i+1),
			Read1:    t.cell(row, ColumnRead1),
			Read2:    t.cell(row, ColumnRead2),
		}
	}

	return samples
}

// FastqURIs returns the FASTQ download URLs for each sample in the table,
// taken from every column whose name contains "FASTQ_URI". Samples are named
// by the "Extract Name" column, falling back to "Source Name". The returned
// order follows first appearance in the table.
func FastqURIs(t *Table) ([]string, map[string][]string, error) {
	var uriColumns []string

	for _, header := range t.ColumnHeaders {
		if strings.Contains(header, fastqURIColumnPart) {
			uriColumns = append(uriColumns, header)
		}
	}

	if len(uriColumns) == 0 {
		return nil, nil, ErrMissingColumn
	}

	var order []string

	uris := make(map[string][]string)

	for _, row := range t.Rows {
		name := t.cell(row, ColumnExtractName)
		if name == "" {
			name = t.cell(row, ColumnSourceName)
		}

		if name == "" {
			continue
		}

		for _, column := range uriColumns {
			uri := strings.TrimSpace(t.cell(row, column))
			if uri == "" {
				continue
			}

			if _, exists := uris[name]; !exists {
				order = append(order, name)
			}

			uris[name] = append(uris[name], uri)
		}
	}

	return order, uris, nil
}
