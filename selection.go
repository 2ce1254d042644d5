package nerucordarchiver

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/nerufuyo/nerucordarchiver/generic"
)

// SelectionSet is a validated set of zero-based indices into a listing.
// Indices are stored deduplicated and ascending.
type SelectionSet struct {
	indices []int
}

// ParseSelection converts user input like "1,3,5-7" (1-based, ranges
// inclusive) into a SelectionSet bounded by maxCount. Validation is
// all-or-nothing: a single malformed or out-of-range token rejects the whole
// input with ErrInvalidSelection.
func ParseSelection(input string, maxCount int) (SelectionSet, error) {
	if maxCount <= 0 {
		return SelectionSet{}, fmt.Errorf("%w: nothing to select from", ErrInvalidSelection)
	}
	input = strings.TrimSpace(input)
	if input == "" {
		return SelectionSet{}, fmt.Errorf("%w: empty input", ErrInvalidSelection)
	}

	seen := generic.NewSet[int]()
	for _, token := range strings.Split(input, ",") {
		token = strings.TrimSpace(token)
		if before, after, isRange := strings.Cut(token, "-"); isRange {
			lo, err := parseIndex(before, maxCount)
			if err != nil {
				return SelectionSet{}, err
			}
			hi, err := parseIndex(after, maxCount)
			if err != nil {
				return SelectionSet{}, err
			}
			if lo > hi {
				return SelectionSet{}, fmt.Errorf("%w: range %q is reversed", ErrInvalidSelection, token)
			}
			for i := lo; i <= hi; i++ {
				seen.Add(i)
			}
		} else {
			i, err := parseIndex(token, maxCount)
			if err != nil {
				return SelectionSet{}, err
			}
			seen.Add(i)
		}
	}

	indices := seen.ToSlice()
	sort.Ints(indices)
	return SelectionSet{indices: indices}, nil
}

// parseIndex converts a 1-based token to a zero-based index within
// [0, maxCount).
func parseIndex(token string, maxCount int) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(token))
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidSelection, strings.TrimSpace(token))
	}
	if n < 1 || n > maxCount {
		return 0, fmt.Errorf("%w: %d is outside 1-%d", ErrInvalidSelection, n, maxCount)
	}
	return n - 1, nil
}

// Indices returns the selected zero-based indices in ascending order.
func (s SelectionSet) Indices() []int {
	out := make([]int, len(s.indices))
	copy(out, s.indices)
	return out
}

func (s SelectionSet) Len() int {
	return len(s.indices)
}

func (s SelectionSet) Contains(i int) bool {
	n := sort.SearchInts(s.indices, i)
	return n < len(s.indices) && s.indices[n] == i
}

// Apply returns the selected subsequence of items, preserving their original
// relative order. Indices beyond len(items) are ignored.
func (s SelectionSet) Apply(items []MediaItem) []MediaItem {
	out := make([]MediaItem, 0, len(s.indices))
	for _, i := range s.indices {
		if i < len(items) {
			out = append(out, items[i])
		}
	}
	return out
}
