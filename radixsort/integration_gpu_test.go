//go:build gpu
// +build gpu

package gpuradixsort

import (
	"context"
	"math/rand"
	"sort"
	"testing"

	"github.com/go-webgpu/webgpu/wgpu"
	"github.com/stretchr/testify/require"
)

// setupDevice requests a real adapter/device pair. It is only ever called
// from this file, which is excluded from a default `go test ./...` run -
// these tests need an actual WebGPU-capable backend to do anything useful,
// the way tests/sort.rs in this package's lineage needs a real adapter too.
func setupDevice(t *testing.T) (*wgpu.Device, *wgpu.Queue) {
	t.Helper()
	require.NoError(t, wgpu.Init())

	instance, err := wgpu.CreateInstance(nil)
	require.NoError(t, err)
	t.Cleanup(instance.Release)

	adapter, err := instance.RequestAdapter(nil)
	require.NoError(t, err)
	t.Cleanup(adapter.Release)

	device, err := adapter.RequestDevice(nil)
	require.NoError(t, err)
	t.Cleanup(device.Release)

	queue := device.GetQueue()
	t.Cleanup(queue.Release)

	return device, queue
}

func runSortScenario(t *testing.T, n uint32, sortFirstN *uint32, indirect bool) {
	device, queue := setupDevice(t)

	size, ok, err := GuessWorkgroupSize(context.Background(), device, queue)
	require.NoError(t, err)
	require.True(t, ok)

	sorter, err := New(device, size)
	require.NoError(t, err)

	buffers, err := sorter.CreateSortBuffers(device, n)
	require.NoError(t, err)

	r := rand.New(rand.NewSource(0))
	scrambled := make([]uint32, n)
	for i := range scrambled {
		scrambled[i] = r.Uint32()
	}

	nSorted := n
	if sortFirstN != nil {
		nSorted = *sortFirstN
	}
	expected := append([]uint32(nil), scrambled...)
	prefix := expected[:nSorted]
	sort.Slice(prefix, func(i, j int) bool { return prefix[i] < prefix[j] })

	encoder := device.CreateCommandEncoder(nil)
	staging := uploadKeys(encoder, device, buffers.Keys(), scrambled)
	valueStaging := uploadKeys(encoder, device, buffers.Values(), scrambled)

	if indirect {
		nelm := n
		if sortFirstN != nil {
			nelm = *sortFirstN
		}
		numWG := HistoBlocksRoundUp(nelm)
		dispatchArgs := []uint32{numWG, 1, 1}
		dispatchRaw := make([]byte, 12)
		for i, v := range dispatchArgs {
			dispatchRaw[i*4] = byte(v)
			dispatchRaw[i*4+1] = byte(v >> 8)
			dispatchRaw[i*4+2] = byte(v >> 16)
			dispatchRaw[i*4+3] = byte(v >> 24)
		}
		dispatchBuffer := device.CreateBuffer(&wgpu.BufferDescriptor{
			Label:            "dispatch indirect buffer",
			Size:             12,
			Usage:            wgpu.BufferUsageIndirect | wgpu.BufferUsageCopyDst,
			MappedAtCreation: false,
		})
		queue.WriteBuffer(dispatchBuffer, 0, dispatchRaw)
		patch := numKeysBytes(nelm)
		queue.WriteBuffer(buffers.StateBuffer(), 0, patch[:])
		require.NoError(t, sorter.SortIndirect(encoder, buffers, dispatchBuffer))
	} else {
		require.NoError(t, sorter.Sort(encoder, queue, buffers, sortFirstN))
	}

	cmd := encoder.Finish(nil)
	encoder.Release()
	queue.Submit(cmd)
	cmd.Release()
	staging.Release()
	valueStaging.Release()

	gotKeys := downloadKeys(device, queue, buffers.Keys(), n)
	require.Equal(t, prefix, gotKeys[:nSorted], "sorted key prefix must match a CPU sort")

	gotValues := downloadKeys(device, queue, buffers.Values(), n)
	require.Equal(t, prefix, gotValues[:nSorted], "payloads must have been permuted identically to keys")
}

func TestSortU32Small(t *testing.T) {
	runSortScenario(t, 2, nil, false)
}

func TestSortU32Large(t *testing.T) {
	runSortScenario(t, 100_000, nil, false)
}

func TestSortHalf(t *testing.T) {
	half := uint32(500_000)
	runSortScenario(t, 1_000_000, &half, false)
}

func TestSortIndirectSmall(t *testing.T) {
	runSortScenario(t, 2, nil, true)
}

func TestSortIndirectLarge(t *testing.T) {
	runSortScenario(t, 100_000, nil, true)
}

func TestSortIndirectHalf(t *testing.T) {
	half := uint32(500_000)
	runSortScenario(t, 1_000_000, &half, true)
}
