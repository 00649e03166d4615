package gpuradixsort

import (
	"context"
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/go-webgpu/webgpu/wgpu"
)

// probeSizes lists the subgroup widths to try, narrowest first: wgpu has no
// way to query the device's actual subgroup size ahead of time, so the only
// reliable way to find the widest one that works is to sort something small
// at each width and check the answer.
var probeSizes = []uint32{1, 8, 16, 32, 64, 128}

const testSortKeys = 8192 // spans multiple scatter blocks (ScatterBlockKVs=3840), enough to exercise look-back

func uploadKeys(encoder *wgpu.CommandEncoder, device *wgpu.Device, buffer *wgpu.Buffer, values []uint32) *wgpu.Buffer {
	raw := make([]byte, len(values)*4)
	for i, v := range values {
		binary.LittleEndian.PutUint32(raw[i*4:i*4+4], v)
	}
	staging := device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            "gpuradixsort probe staging",
		Size:             uint64(len(raw)),
		Usage:            wgpu.BufferUsageCopySrc,
		MappedAtCreation: true,
	})
	ptr := staging.GetMappedRange(0, uint64(len(raw)))
	if ptr != nil {
		copy(unsafe.Slice((*byte)(ptr), len(raw)), raw)
	}
	staging.Unmap()
	encoder.CopyBufferToBuffer(staging, 0, buffer, 0, uint64(len(raw)))
	return staging
}

func downloadKeys(device *wgpu.Device, queue *wgpu.Queue, buffer *wgpu.Buffer, n uint32) []uint32 {
	size := uint64(n) * 4
	readback := device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            "gpuradixsort probe readback",
		Size:             size,
		Usage:            wgpu.BufferUsageMapRead | wgpu.BufferUsageCopyDst,
		MappedAtCreation: false,
	})
	defer readback.Release()

	encoder := device.CreateCommandEncoder(nil)
	encoder.CopyBufferToBuffer(buffer, 0, readback, 0, size)
	cmd := encoder.Finish(nil)
	encoder.Release()
	queue.Submit(cmd)
	cmd.Release()

	if err := readback.MapAsync(device, wgpu.MapModeRead, 0, size); err != nil {
		return nil
	}
	defer readback.Unmap()

	ptr := readback.GetMappedRange(0, size)
	if ptr == nil {
		return nil
	}
	raw := unsafe.Slice((*byte)(ptr), size)
	out := make([]uint32, n)
	for i := range out {
		out[i] = binary.LittleEndian.Uint32(raw[i*4 : i*4+4])
	}
	return out
}

// testSort sorts the float32 bit patterns of 8191.0, 8190.0, ..., 0.0 and
// checks the result is exactly 0.0, 1.0, ..., 8191.0. It is only ever used by
// GuessWorkgroupSize's probe loop.
func testSort(sorter *GPUSorter, device *wgpu.Device, queue *wgpu.Queue) bool {
	scrambled := make([]uint32, testSortKeys)
	for i := range scrambled {
		scrambled[i] = math.Float32bits(float32(testSortKeys - 1 - i))
	}

	buffers, err := sorter.CreateSortBuffers(device, testSortKeys)
	if err != nil {
		return false
	}

	encoder := device.CreateCommandEncoder(nil)
	staging := uploadKeys(encoder, device, buffers.Keys(), scrambled)
	cmd := encoder.Finish(nil)
	encoder.Release()
	queue.Submit(cmd)
	cmd.Release()
	staging.Release()

	sortEncoder := device.CreateCommandEncoder(nil)
	if err := sorter.Sort(sortEncoder, queue, buffers, nil); err != nil {
		sortEncoder.Release()
		return false
	}
	sortCmd := sortEncoder.Finish(nil)
	sortEncoder.Release()
	queue.Submit(sortCmd)
	sortCmd.Release()

	sorted := downloadKeys(device, queue, buffers.Keys(), testSortKeys)
	if len(sorted) != testSortKeys {
		return false
	}
	for i, v := range sorted {
		if v != math.Float32bits(float32(i)) {
			return false
		}
	}
	return true
}

// GuessWorkgroupSize probes subgroup widths 1, 8, 16, 32, 64 and 128 in that
// order, building a throwaway GPUSorter and running a small self-check sort
// for each, and returns the widest width that produced a correct result; the
// probe stops at the first width that fails after an earlier one passed.
// wgpu currently offers no way to query a device's subgroup size directly,
// so this probe is the only reliable way to discover it. When no width
// passes, the returned bool is false and the error is
// ErrNoWorkingSubgroupSize; a nil device or a cancelled ctx also returns
// false, with ErrNilDevice or ctx.Err().
func GuessWorkgroupSize(ctx context.Context, device *wgpu.Device, queue *wgpu.Queue) (uint32, bool, error) {
	if device == nil {
		return 0, false, ErrNilDevice
	}

	var best uint32
	found := false
	for _, size := range probeSizes {
		select {
		case <-ctx.Done():
			return 0, false, ctx.Err()
		default:
		}

		sorter, err := New(device, size)
		if err != nil {
			continue
		}
		if testSort(sorter, device, queue) {
			best, found = size, true
		} else if found {
			break
		}
	}
	if found {
		return best, true, nil
	}
	return 0, false, ErrNoWorkingSubgroupSize
}
