// Package gpuradixsort implements a GPU-accelerated LSD radix sort for
// 32-bit key/value pairs on top of github.com/go-webgpu/webgpu.
//
// The package is organized the way the algorithm itself is: a host
// orchestrator (GPUSorter) that owns compiled pipelines and records compute
// passes, a buffer bundle (SortBuffers) that owns one sort instance's device
// memory, and a shared WGSL shader body specialized at pipeline-creation time
// for the device's subgroup width.
package gpuradixsort

// Sorter configuration. These values must stay in lock-step with the
// constants baked into the shader prelude in shader.go - duplicating them
// anywhere else is how host and device silently disagree.
const (
	// RadixLog2 is the number of bits examined per pass.
	RadixLog2 = 8

	// RadixSize is the number of histogram bins per pass (1 << RadixLog2).
	RadixSize = 1 << RadixLog2

	// NumPasses is the number of passes needed to cover a 32-bit key,
	// sorting RadixLog2 bits per pass.
	NumPasses = 32 / RadixLog2

	// HistoWG is the workgroup width used by zero_histograms,
	// calculate_histogram and the scatter passes.
	HistoWG = 256

	// PrefixWG is the workgroup width used by prefix_histogram.
	PrefixWG = 128

	// ScatterWG is the workgroup width used by scatter_even/scatter_odd.
	// Always equal to HistoWG in this design.
	ScatterWG = 256

	// HistoBlockRows is the number of keyvals processed per thread in one
	// histogram workgroup.
	HistoBlockRows = 15

	// ScatterBlockRows must equal HistoBlockRows; a single indirect-args
	// buffer serves both the histogram and scatter dispatch families only
	// because of this equality (see SortIndirect).
	ScatterBlockRows = HistoBlockRows

	// HistoBlockKVs is the number of keyvals consumed by one histogram
	// workgroup.
	HistoBlockKVs = HistoWG * HistoBlockRows

	// ScatterBlockKVs is the number of keyvals scattered by one scatter
	// workgroup. Equal to HistoBlockKVs by construction.
	ScatterBlockKVs = HistoWG * ScatterBlockRows

	// bytesPerElem is the width in bytes of one key, payload or histogram
	// bin slot. Only 32-bit keys and payloads are supported.
	bytesPerElem = 4

	// sorterStateSize is the byte size of the wire-format SorterState
	// record (see state.go). Must match binding 0's MinBindingSize.
	sorterStateSize = 16
)

// ceilDiv returns ceil(a/b) for positive b.
func ceilDiv(a, b uint32) uint32 {
	return (a + b - 1) / b
}

// ScatterBlocksRoundUp returns the number of scatter workgroups required to
// cover n keyvals.
func ScatterBlocksRoundUp(n uint32) uint32 {
	return ceilDiv(n, ScatterBlockKVs)
}

// HistoBlocksRoundUp returns the number of histogram workgroups required to
// cover n keyvals. It is derived from ScatterBlocksRoundUp rather than from n
// directly: both families dispatch over the same padded range, and the
// indirect-sort contract (§4.4) depends on that equality holding exactly.
func HistoBlocksRoundUp(n uint32) uint32 {
	return ceilDiv(ScatterBlocksRoundUp(n)*ScatterBlockKVs, HistoBlockKVs)
}

// PaddedSize returns the allocated length of each keys buffer for capacity n:
// a multiple of HistoBlockKVs large enough to hold n keyvals. Payload buffers
// are not padded.
func PaddedSize(n uint32) uint32 {
	return HistoBlocksRoundUp(n) * HistoBlockKVs
}

// internalBufferSize returns the byte size of the internal working buffer
// (histograms plus per-scatter-block partition descriptors) for a bundle of
// the given capacity.
func internalBufferSize(capacity uint32) uint64 {
	scatterBlocks := uint64(ScatterBlocksRoundUp(capacity))
	histoSize := uint64(RadixSize) * bytesPerElem
	return (uint64(NumPasses) + scatterBlocks) * histoSize
}
