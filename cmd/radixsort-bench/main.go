// Command radixsort-bench times a batch of repeated sorts per capacity using
// timestamp queries, the way a GPU-bound kernel's steady-state throughput is
// actually measured: warmup and per-call submission overhead are amortized
// away by recording many iterations into a single command buffer and
// dividing the elapsed device time by the iteration count.
package main

import (
	"context"
	"encoding/binary"
	"fmt"
	"log"
	"time"
	"unsafe"

	"github.com/go-webgpu/webgpu/wgpu"
	gpuradixsort "gpuradixsort/radixsort"
)

type benchContext struct {
	device      *wgpu.Device
	queue       *wgpu.Queue
	querySet    *wgpu.QuerySet
	queryBuffer *wgpu.Buffer
}

func setup() (*benchContext, error) {
	if err := wgpu.Init(); err != nil {
		return nil, err
	}

	instance, err := wgpu.CreateInstance(nil)
	if err != nil {
		return nil, err
	}

	adapter, err := instance.RequestAdapter(nil)
	if err != nil {
		return nil, err
	}

	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		RequiredFeatures: wgpu.FeatureTimestampQuery,
	})
	if err != nil {
		return nil, err
	}

	queue := device.GetQueue()

	const capacity = 2
	querySet := device.CreateQuerySet(&wgpu.QuerySetDescriptor{
		Label: "time stamp query set",
		Type:  wgpu.QueryTypeTimestamp,
		Count: capacity,
	})
	queryBuffer := device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            "query set buffer",
		Size:             capacity * 8,
		Usage:            wgpu.BufferUsageQueryResolve | wgpu.BufferUsageCopySrc | wgpu.BufferUsageMapRead,
		MappedAtCreation: false,
	})

	return &benchContext{device: device, queue: queue, querySet: querySet, queryBuffer: queryBuffer}, nil
}

// timeSort records iters back-to-back sorts of the same buffers into a
// single command buffer, bracketed by timestamp writes, and returns the
// average device time per sort. Sharing one encoder across iterations is
// deliberate: it keeps command-buffer submission overhead out of the
// measurement, at the cost of not modeling a workload that resubmits every
// frame.
func timeSort(ctx *benchContext, sorter *gpuradixsort.GPUSorter, buffers *gpuradixsort.SortBuffers, n uint32, iters uint32) (time.Duration, error) {
	encoder := ctx.device.CreateCommandEncoder(nil)
	encoder.WriteTimestamp(ctx.querySet, 0)

	for i := uint32(0); i < iters; i++ {
		if err := sorter.Sort(encoder, ctx.queue, buffers, &n); err != nil {
			return 0, err
		}
	}

	encoder.WriteTimestamp(ctx.querySet, 1)
	encoder.ResolveQuerySet(ctx.querySet, 0, 2, ctx.queryBuffer, 0)

	cmd := encoder.Finish(nil)
	encoder.Release()
	ctx.queue.Submit(cmd)
	cmd.Release()

	if err := ctx.queryBuffer.MapAsync(ctx.device, wgpu.MapModeRead, 0, 16); err != nil {
		return 0, err
	}
	defer ctx.queryBuffer.Unmap()

	ptr := ctx.queryBuffer.GetMappedRange(0, 16)
	raw := unsafe.Slice((*byte)(ptr), 16)
	t0 := binary.LittleEndian.Uint64(raw[0:8])
	t1 := binary.LittleEndian.Uint64(raw[8:16])

	diffTicks := t1 - t0
	period := ctx.queue.GetTimestampPeriod()
	diffTime := time.Duration(float64(diffTicks) * float64(period) / float64(iters))

	return diffTime, nil
}

func main() {
	ctx, err := setup()
	if err != nil {
		log.Fatal(err)
	}

	subgroupSize, ok, err := gpuradixsort.GuessWorkgroupSize(context.Background(), ctx.device, ctx.queue)
	if err != nil || !ok {
		log.Fatalf("could not find a valid subgroup size: %v", err)
	}

	sorter, err := gpuradixsort.New(ctx.device, subgroupSize)
	if err != nil {
		log.Fatal(err)
	}

	for _, n := range []uint32{10_000, 100_000, 1_000_000, 8_000_000, 20_000_000} {
		buffers, err := sorter.CreateSortBuffers(ctx.device, n)
		if err != nil {
			log.Fatal(err)
		}
		d, err := timeSort(ctx, sorter, buffers, n, 10_000)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("%d: %v\n", n, d)
	}
}
