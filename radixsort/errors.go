package gpuradixsort

import "errors"

// Sentinel errors returned by this package, following the gogpu/wgpu
// internal-gpu package's convention of one exported ErrXxx var per distinct
// failure rather than ad-hoc fmt.Errorf strings at every call site.
var (
	// ErrUnsupportedSubgroupSize is returned by New when the requested
	// subgroup width is not a power of two in {1,8,16,32,64,128}, or does
	// not evenly divide RadixSize.
	ErrUnsupportedSubgroupSize = errors.New("gpuradixsort: unsupported subgroup size")

	// ErrZeroCapacity is returned by CreateSortBuffers when capacity is 0.
	ErrZeroCapacity = errors.New("gpuradixsort: capacity must be at least 1")

	// ErrSortFirstNExceedsCapacity is returned by Sort when sortFirstN is
	// greater than the bundle's capacity.
	ErrSortFirstNExceedsCapacity = errors.New("gpuradixsort: sortFirstN exceeds buffer capacity")

	// ErrNilDevice is returned whenever a device argument is nil.
	ErrNilDevice = errors.New("gpuradixsort: device must not be nil")

	// ErrNilBuffers is returned whenever a *SortBuffers argument is nil.
	ErrNilBuffers = errors.New("gpuradixsort: buffers must not be nil")

	// ErrNilDispatchBuffer is returned by SortIndirect when dispatchBuffer
	// is nil.
	ErrNilDispatchBuffer = errors.New("gpuradixsort: dispatch indirect buffer must not be nil")

	// ErrNoWorkingSubgroupSize is returned by GuessWorkgroupSize when none
	// of the probed widths produced a correctly sorted result.
	ErrNoWorkingSubgroupSize = errors.New("gpuradixsort: no subgroup size produced a correct sort")
)
