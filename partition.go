package scanline

import "runtime"

// DefaultWorkers is the worker count used when neither the caller nor the
// platform reports a usable value.
const DefaultWorkers = 4

// Plan divides totalRows into contiguous, disjoint row ranges whose union is
// exactly [0, totalRows).
//
// Every range holds totalRows/workerCount rows; the first
// totalRows%workerCount ranges hold one extra row. For example
// Plan(10, 4) returns [0,3) [3,6) [6,8) [8,10). A workerCount larger than
// totalRows is reduced to totalRows so that no range is empty.
//
// Plan returns a *PartitionError if totalRows or workerCount is not positive.
func Plan(totalRows, workerCount int) ([]RowRange, error) {
	if totalRows <= 0 || workerCount <= 0 {
		return nil, &PartitionError{TotalRows: totalRows, Workers: workerCount}
	}
	if workerCount > totalRows {
		workerCount = totalRows
	}

	base := totalRows / workerCount
	extra := totalRows % workerCount

	ranges := make([]RowRange, workerCount)
	start := 0
	for i := range ranges {
		size := base
		if i < extra {
			size++
		}
		ranges[i] = RowRange{Start: start, End: start + size}
		start += size
	}

	return ranges, nil
}

// ResolveWorkers returns the worker count for a session.
//
// A positive requested count is used as is. Otherwise the platform hint is
// consulted; when the hint is nil or reports a non-positive value,
// DefaultWorkers is returned.
func ResolveWorkers(requested int, hint func() int) int {
	if requested > 0 {
		return requested
	}
	if hint != nil {
		if n := hint(); n > 0 {
			return n
		}
	}
	return DefaultWorkers
}

// PlatformConcurrency reports the number of goroutines that can execute
// simultaneously, as seen by the Go scheduler.
func PlatformConcurrency() int {
	return runtime.GOMAXPROCS(0)
}
