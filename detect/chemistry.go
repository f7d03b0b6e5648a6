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

import "strings"

// Chemistry is a barcode chemistry and the read geometry it implies: the
// cell barcode length and the UMI length.
type Chemistry struct {
	Name   string
	CBLen  int
	UMILen int
}

var (
	ChemistryV3   = Chemistry{Name: "v3", CBLen: 16, UMILen: 12}
	ChemistryV2   = Chemistry{Name: "v2", CBLen: 16, UMILen: 10}
	Chemistry737K = Chemistry{Name: "737K", CBLen: 14, UMILen: 10}
)

// whitelistCandidates are the known whitelist filenames looked for in the
// whitelist directory, in declaration order. Declaration order breaks match
// count ties.
var whitelistCandidates = []string{
	"3M-february-2018.txt",
	"737K-august-2016.txt",
	"737K-arc-v1.txt",
	"737K-april-2014_rc.txt",
}

// ChemistryForWhitelist returns the chemistry implied by a whitelist
// filename. Matching is by substring containment so that renamed or
// versioned whitelist files stay compatible: a name containing "3M" is v3, a
// name containing "737K-august-2016" is v2, and any other 737K-family name is
// the 14bp barcode chemistry.
func ChemistryForWhitelist(filename string) Chemistry {
	switch {
	case strings.Contains(filename, "3M"):
		return ChemistryV3
	case strings.Contains(filename, "737K-august-2016"):
		return ChemistryV2
	default:
		return Chemistry737K
	}
}
