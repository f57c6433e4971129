package bclabel

// The valid part-id combination catalogue.

import (
	"sort"
	"strconv"
	"strings"
)

// Catalogue maps admissible part-id combinations to class labels. Keys are
// the canonical form produced by PartIDKey; lookup is an exact match on the
// sorted tuple. The catalogue is read-only and injected into the validator,
// so alternate tables can be substituted in tests and deployments.
type Catalogue map[string]int

// PartIDKey returns the canonical catalogue key for a part-id tuple: the
// ids sorted ascending and joined with commas. The input slice is not
// modified.
func PartIDKey(pids []int) string {
	sorted := make([]int, len(pids))
	copy(sorted, pids)
	sort.Ints(sorted)

	parts := make([]string, len(sorted))
	for i, pid := range sorted {
		parts[i] = strconv.Itoa(pid)
	}
	return strings.Join(parts, ",")
}

// Lookup returns the class label for the part-id tuple and whether the
// tuple is an admissible combination.
func (c Catalogue) Lookup(pids []int) (label int, ok bool) {
	label, ok = c[PartIDKey(pids)]
	return label, ok
}

// The class labels of the default catalogue.
const (
	ClassLinear     = 0 // 1D barcodes.
	ClassQR         = 1
	ClassDataMatrix = 2
)

// DefaultCatalogue is a stand-in for the production combination table,
// which is maintained outside this repository. Part ids 0-6 tag the corner
// roles; -1 and 7 are the ignore/background sentinels and never appear in
// a catalogue key.
var DefaultCatalogue = Catalogue{
	"0,1,2,3": ClassLinear,
	"2,3,4,5": ClassQR,
	"3,4,5,6": ClassDataMatrix,
}
