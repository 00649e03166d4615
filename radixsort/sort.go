package gpuradixsort

import (
	"github.com/go-webgpu/webgpu/wgpu"
)

// recordPasses encodes the full zero -> histogram -> prefix -> (scatter
// even/odd * NumPasses) sequence into a single compute pass, dispatched over
// numBlocks workgroups for the block-granular stages. The histogram and
// scatter families share numBlocks because ScatterBlockRows == HistoBlockRows
// (see SortIndirect).
func (s *GPUSorter) recordPasses(pass *wgpu.ComputePassEncoder, buffers *SortBuffers, numBlocks uint32) {
	pass.SetBindGroup(0, buffers.bindGroup, nil)

	pass.SetPipeline(s.zeroHistograms)
	pass.DispatchWorkgroups(numBlocks, 1, 1)

	pass.SetPipeline(s.calculateHistogram)
	pass.DispatchWorkgroups(numBlocks, 1, 1)

	pass.SetPipeline(s.prefixHistogram)
	pass.DispatchWorkgroups(NumPasses, 1, 1)

	for p := 0; p < NumPasses; p++ {
		if p%2 == 0 {
			pass.SetPipeline(s.scatterEven)
		} else {
			pass.SetPipeline(s.scatterOdd)
		}
		pass.DispatchWorkgroups(numBlocks, 1, 1)
	}
}

func (s *GPUSorter) recordPassesIndirect(pass *wgpu.ComputePassEncoder, buffers *SortBuffers, dispatchBuffer *wgpu.Buffer) {
	pass.SetBindGroup(0, buffers.bindGroup, nil)

	pass.SetPipeline(s.zeroHistograms)
	pass.DispatchWorkgroupsIndirect(dispatchBuffer, 0)

	pass.SetPipeline(s.calculateHistogram)
	pass.DispatchWorkgroupsIndirect(dispatchBuffer, 0)

	pass.SetPipeline(s.prefixHistogram)
	pass.DispatchWorkgroups(NumPasses, 1, 1)

	for p := 0; p < NumPasses; p++ {
		if p%2 == 0 {
			pass.SetPipeline(s.scatterEven)
		} else {
			pass.SetPipeline(s.scatterOdd)
		}
		pass.DispatchWorkgroupsIndirect(dispatchBuffer, 0)
	}
}

// Sort records a complete radix sort of buffers into encoder, dispatching
// over the buffer's full padded capacity unless sortFirstN restricts it to a
// shorter prefix. queue is used only to patch the live key count into the
// state buffer before the compute pass is recorded; no GPU work is submitted
// by Sort itself, matching the rest of this package's record-don't-submit
// convention.
func (s *GPUSorter) Sort(encoder *wgpu.CommandEncoder, queue *wgpu.Queue, buffers *SortBuffers, sortFirstN *uint32) error {
	if encoder == nil {
		return ErrNilDevice
	}
	if buffers == nil {
		return ErrNilBuffers
	}

	n := buffers.capacity
	if sortFirstN != nil {
		if *sortFirstN > buffers.capacity {
			if s.cfg.debugAssertions {
				panic(ErrSortFirstNExceedsCapacity)
			}
			return ErrSortFirstNExceedsCapacity
		}
		n = *sortFirstN
	}

	patch := numKeysBytes(n)
	queue.WriteBuffer(buffers.state, 0, patch[:])

	numBlocks := ScatterBlocksRoundUp(n)

	pass := encoder.BeginComputePass(&wgpu.ComputePassDescriptor{Label: s.cfg.label})
	s.recordPasses(pass, buffers, numBlocks)
	pass.End()
	pass.Release()

	return nil
}

// SortIndirect behaves like Sort, except the histogram and scatter families'
// workgroup counts are read from dispatchBuffer at the moment the GPU
// executes each dispatch, rather than being fixed at record time. It is the
// host's job to have populated dispatchBuffer with a DispatchIndirectArgs
// triple (numBlocks, 1, 1) consistent with the key count already written
// into the state buffer; this package never writes dispatchBuffer itself.
func (s *GPUSorter) SortIndirect(encoder *wgpu.CommandEncoder, buffers *SortBuffers, dispatchBuffer *wgpu.Buffer) error {
	if encoder == nil {
		return ErrNilDevice
	}
	if buffers == nil {
		return ErrNilBuffers
	}
	if dispatchBuffer == nil {
		return ErrNilDispatchBuffer
	}

	pass := encoder.BeginComputePass(&wgpu.ComputePassDescriptor{Label: s.cfg.label + " indirect"})
	s.recordPassesIndirect(pass, buffers, dispatchBuffer)
	pass.End()
	pass.Release()

	return nil
}
