package gpuradixsort

import (
	"fmt"
	"unsafe"

	"github.com/go-webgpu/webgpu/wgpu"
)

// SortBuffers is one sort instance's device memory: the key/payload
// ping-pong pair, the internal scratch (histograms plus partition
// descriptors), and the 16-byte state record the shaders read and advance.
// A bundle is sized for a fixed capacity at creation time; Sort may be asked
// to sort fewer than capacity keys via sortFirstN, but never more.
type SortBuffers struct {
	capacity uint32

	keysA    *wgpu.Buffer
	keysB    *wgpu.Buffer
	valuesA  *wgpu.Buffer
	valuesB  *wgpu.Buffer
	internal *wgpu.Buffer
	state    *wgpu.Buffer

	// bindGroup is the single bind group shared by every pass: all six
	// bindings are fixed at creation time, and a scatter pass's read/write
	// direction comes from which entry point runs (scatter_even reads the a
	// buffers, scatter_odd the b buffers) rather than from which bind group
	// is bound.
	bindGroup *wgpu.BindGroup
}

func createStorageBuffer(device *wgpu.Device, label string, size uint64) (*wgpu.Buffer, error) {
	buf := device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            label,
		Size:             size,
		Usage:            wgpu.BufferUsageStorage | wgpu.BufferUsageCopySrc | wgpu.BufferUsageCopyDst,
		MappedAtCreation: false,
	})
	if buf == nil {
		return nil, fmt.Errorf("gpuradixsort: failed to create buffer %q (%d bytes)", label, size)
	}
	return buf, nil
}

// CreateSortBuffers allocates a bundle sized to hold up to capacity 32-bit
// key/value pairs. The two key buffers are padded up to PaddedSize(capacity)
// elements, a multiple of HistoBlockKVs; the two payload buffers hold exactly
// capacity elements.
func (s *GPUSorter) CreateSortBuffers(device *wgpu.Device, capacity uint32) (*SortBuffers, error) {
	if device == nil {
		return nil, ErrNilDevice
	}
	if capacity == 0 {
		if s.cfg.debugAssertions {
			panic(ErrZeroCapacity)
		}
		return nil, ErrZeroCapacity
	}

	padded := PaddedSize(capacity)
	elemBytes := uint64(padded) * bytesPerElem
	payloadBytes := uint64(capacity) * bytesPerElem

	keysA, err := createStorageBuffer(device, s.cfg.label+" keys a", elemBytes)
	if err != nil {
		return nil, err
	}
	keysB, err := createStorageBuffer(device, s.cfg.label+" keys b", elemBytes)
	if err != nil {
		return nil, err
	}
	valuesA, err := createStorageBuffer(device, s.cfg.label+" payload a", payloadBytes)
	if err != nil {
		return nil, err
	}
	valuesB, err := createStorageBuffer(device, s.cfg.label+" payload b", payloadBytes)
	if err != nil {
		return nil, err
	}
	internal, err := createStorageBuffer(device, s.cfg.label+" internal", internalBufferSize(capacity))
	if err != nil {
		return nil, err
	}

	state := device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            s.cfg.label + " state",
		Size:             sorterStateSize,
		Usage:            wgpu.BufferUsageStorage | wgpu.BufferUsageCopySrc | wgpu.BufferUsageCopyDst,
		MappedAtCreation: true,
	})
	if state == nil {
		return nil, fmt.Errorf("gpuradixsort: failed to create state buffer")
	}
	initial := SorterState{NumKeys: capacity, PaddedSize: padded}.bytes()
	ptr := state.GetMappedRange(0, sorterStateSize)
	if ptr != nil {
		mapped := unsafe.Slice((*byte)(ptr), sorterStateSize)
		copy(mapped, initial[:])
	}
	state.Unmap()

	bindGroup := device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  s.cfg.label + " bind group",
		Layout: s.bindGroupLayout,
		Entries: []wgpu.BindGroupEntry{
			wgpu.BufferBindingEntry(0, state, 0, sorterStateSize),
			wgpu.BufferBindingEntry(1, internal, 0, internalBufferSize(capacity)),
			wgpu.BufferBindingEntry(2, keysA, 0, elemBytes),
			wgpu.BufferBindingEntry(3, keysB, 0, elemBytes),
			wgpu.BufferBindingEntry(4, valuesA, 0, payloadBytes),
			wgpu.BufferBindingEntry(5, valuesB, 0, payloadBytes),
		},
	})
	if bindGroup == nil {
		return nil, fmt.Errorf("gpuradixsort: failed to create bind group")
	}

	return &SortBuffers{
		capacity:  capacity,
		keysA:     keysA,
		keysB:     keysB,
		valuesA:   valuesA,
		valuesB:   valuesB,
		internal:  internal,
		state:     state,
		bindGroup: bindGroup,
	}, nil
}

// Len returns the capacity this bundle was created for.
func (b *SortBuffers) Len() uint32 { return b.capacity }

// KeysValidSize returns the byte size of the live key/payload range - the
// un-padded capacity this bundle was created for, not the padded allocation
// backing Keys/Values.
func (b *SortBuffers) KeysValidSize() uint64 { return uint64(b.capacity) * bytesPerElem }

// Keys returns keys_a, the buffer the keys are uploaded to. Once the GPU has
// executed a recorded Sort or SortIndirect, keys_a holds the sorted keys,
// because every sort runs an even number of passes (NumPasses).
func (b *SortBuffers) Keys() *wgpu.Buffer { return b.keysA }

// Values returns the buffer currently holding the (possibly reordered)
// payloads, with the same post-Sort convention as Keys.
func (b *SortBuffers) Values() *wgpu.Buffer { return b.valuesA }

// StateBuffer exposes the raw state buffer, so that a caller of SortIndirect
// can write the key count (4 bytes, little-endian) to offset 0 before the
// sort runs.
func (b *SortBuffers) StateBuffer() *wgpu.Buffer { return b.state }

// Close releases every device resource owned by this bundle.
func (b *SortBuffers) Close() {
	b.keysA.Release()
	b.keysB.Release()
	b.valuesA.Release()
	b.valuesB.Release()
	b.internal.Release()
	b.state.Release()
	b.bindGroup.Release()
}
