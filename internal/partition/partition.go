// Package partition splits a closed range of addresses into contiguous,
// non-overlapping sub-ranges, one per worker.
//
// For a range of total addresses and n workers the step is ceil(total/n);
// worker i receives [start+i*step, min(start+(i+1)*step-1, end)]. The last
// range is clamped to end, so the union is exactly the input range.
//
//	total=101, n=3, step=34
//	  [0,33] [34,67] [68,100]
package partition

import (
	"errors"
	"fmt"

	"golang.org/x/exp/slices"
)

// ErrInvalidConfiguration is returned for a worker count below one or a
// range whose start lies after its end.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// Range is a closed interval [Start, End] of addresses.
type Range struct {
	Start uint32 `json:"start"`
	End   uint32 `json:"end"`
}

// Full is the whole IPv4 address space.
var Full = Range{Start: 0, End: ^uint32(0)}

// Len returns the number of addresses in r.
func (r Range) Len() uint64 {
	return uint64(r.End) - uint64(r.Start) + 1
}

// Contains reports whether a lies inside r.
func (r Range) Contains(a uint32) bool {
	return a >= r.Start && a <= r.End
}

func (r Range) String() string {
	return fmt.Sprintf("[%d,%d]", r.Start, r.End)
}

// Split divides r into at most n contiguous ranges.
//
// Every returned range is non-empty. Fewer than n ranges are returned only
// when n exceeds what ceil(total/n) steps need to cover r, which can only
// happen when n is close to or larger than r.Len().
func Split(r Range, n int) ([]Range, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: worker count %d, must be at least 1", ErrInvalidConfiguration, n)
	}
	if r.Start > r.End {
		return nil, fmt.Errorf("%w: range %s starts after it ends", ErrInvalidConfiguration, r)
	}

	total := r.Len()
	step := (total + uint64(n) - 1) / uint64(n)
	last := uint64(r.End)

	ranges := make([]Range, 0, n)
	for i := uint64(0); i < uint64(n); i++ {
		start := uint64(r.Start) + i*step
		if start > last {
			break
		}
		end := start + step - 1
		if end > last {
			end = last
		}
		ranges = append(ranges, Range{Start: uint32(start), End: uint32(end)})
	}
	return ranges, nil
}

// Verify checks that ranges tile r exactly: sorted, pairwise disjoint,
// without gaps, starting at r.Start and ending at r.End.
func Verify(r Range, ranges []Range) error {
	if len(ranges) == 0 {
		return fmt.Errorf("no ranges cover %s", r)
	}
	if !slices.IsSortedFunc(ranges, func(a, b Range) int {
		switch {
		case a.Start < b.Start:
			return -1
		case a.Start > b.Start:
			return 1
		}
		return 0
	}) {
		return errors.New("ranges are not sorted by start")
	}
	if ranges[0].Start != r.Start {
		return fmt.Errorf("first range %s does not start at %d", ranges[0], r.Start)
	}
	if ranges[len(ranges)-1].End != r.End {
		return fmt.Errorf("last range %s does not end at %d", ranges[len(ranges)-1], r.End)
	}

	var covered uint64
	for i, cur := range ranges {
		if cur.Start > cur.End {
			return fmt.Errorf("range %d %s is empty", i, cur)
		}
		if i > 0 {
			prev := ranges[i-1]
			if uint64(cur.Start) != uint64(prev.End)+1 {
				return fmt.Errorf("ranges %s and %s overlap or leave a gap", prev, cur)
			}
		}
		covered += cur.Len()
	}
	if covered != r.Len() {
		return fmt.Errorf("ranges cover %d addresses, want %d", covered, r.Len())
	}
	return nil
}
