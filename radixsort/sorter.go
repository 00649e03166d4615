package gpuradixsort

import (
	"fmt"

	"github.com/go-webgpu/webgpu/wgpu"
)

// GPUSorter holds the compiled pipelines for one subgroup width. A single
// instance is reused across any number of SortBuffers: pipelines do not
// reference buffer contents, only the bind group layout shape.
type GPUSorter struct {
	subgroupSize uint32
	cfg          sorterConfig

	bindGroupLayout *wgpu.BindGroupLayout

	zeroHistograms     *wgpu.ComputePipeline
	calculateHistogram *wgpu.ComputePipeline
	prefixHistogram    *wgpu.ComputePipeline
	scatterEven        *wgpu.ComputePipeline
	scatterOdd         *wgpu.ComputePipeline
}

// storageEntry returns a read_write storage binding visible to compute
// shaders with the given minimum size. Every binding in this layout is
// storage, never uniform: none of the five entry points need anything
// smaller than array-length resources.
func storageEntry(binding uint32, minSize uint64) wgpu.BindGroupLayoutEntry {
	return wgpu.BindGroupLayoutEntry{
		Binding:    binding,
		Visibility: wgpu.ShaderStageCompute,
		Buffer: wgpu.BufferBindingLayout{
			Type:           wgpu.BufferBindingTypeStorage,
			MinBindingSize: minSize,
		},
	}
}

func newBindGroupLayout(device *wgpu.Device, label string) (*wgpu.BindGroupLayout, error) {
	layout := device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: label + " bind group layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			storageEntry(0, sorterStateSize),
			storageEntry(1, bytesPerElem),
			storageEntry(2, bytesPerElem),
			storageEntry(3, bytesPerElem),
			storageEntry(4, bytesPerElem),
			storageEntry(5, bytesPerElem),
		},
	})
	if layout == nil {
		return nil, fmt.Errorf("gpuradixsort: failed to create bind group layout")
	}
	return layout, nil
}

func newComputePipeline(device *wgpu.Device, pipelineLayout *wgpu.PipelineLayout, module *wgpu.ShaderModule, entryPoint, label string) (*wgpu.ComputePipeline, error) {
	pipeline := device.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
		Label:  label + " " + entryPoint,
		Layout: pipelineLayout,
		Compute: wgpu.ProgrammableStageDescriptor{
			Module:     module,
			EntryPoint: entryPoint,
		},
	})
	if pipeline == nil {
		return nil, fmt.Errorf("gpuradixsort: failed to create pipeline for entry point %q", entryPoint)
	}
	return pipeline, nil
}

// New compiles the five radix sort pipelines for the given subgroup width.
// The returned GPUSorter is safe to share across any number of SortBuffers
// and goroutines once construction finishes: after New returns, the type
// only ever reads its own fields.
func New(device *wgpu.Device, subgroupSize uint32, opts ...Option) (*GPUSorter, error) {
	if device == nil {
		return nil, ErrNilDevice
	}

	cfg := defaultSorterConfig()
	for _, opt := range opts {
		opt.apply(&cfg)
	}

	source, err := shaderSource(subgroupSize)
	if err != nil {
		return nil, err
	}

	module := device.CreateShaderModuleWGSL(source)
	if module == nil {
		return nil, fmt.Errorf("gpuradixsort: failed to compile shader module")
	}
	defer module.Release()

	bindGroupLayout, err := newBindGroupLayout(device, cfg.label)
	if err != nil {
		return nil, err
	}

	pipelineLayout := device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            cfg.label + " pipeline layout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{bindGroupLayout},
	})
	if pipelineLayout == nil {
		bindGroupLayout.Release()
		return nil, fmt.Errorf("gpuradixsort: failed to create pipeline layout")
	}
	defer pipelineLayout.Release()

	entryPoints := []string{"zero_histograms", "calculate_histogram", "prefix_histogram", "scatter_even", "scatter_odd"}
	pipelines := make([]*wgpu.ComputePipeline, 0, len(entryPoints))
	for _, ep := range entryPoints {
		p, err := newComputePipeline(device, pipelineLayout, module, ep, cfg.label)
		if err != nil {
			for _, created := range pipelines {
				created.Release()
			}
			bindGroupLayout.Release()
			return nil, err
		}
		pipelines = append(pipelines, p)
	}

	return &GPUSorter{
		subgroupSize:       subgroupSize,
		cfg:                cfg,
		bindGroupLayout:    bindGroupLayout,
		zeroHistograms:     pipelines[0],
		calculateHistogram: pipelines[1],
		prefixHistogram:    pipelines[2],
		scatterEven:        pipelines[3],
		scatterOdd:         pipelines[4],
	}, nil
}

// SubgroupSize returns the width this GPUSorter was specialized for.
func (s *GPUSorter) SubgroupSize() uint32 {
	return s.subgroupSize
}

// Close releases the compiled pipelines and bind group layout. A GPUSorter
// must not be used, nor any SortBuffers created from it recorded against,
// after Close returns.
func (s *GPUSorter) Close() {
	s.zeroHistograms.Release()
	s.calculateHistogram.Release()
	s.prefixHistogram.Release()
	s.scatterEven.Release()
	s.scatterOdd.Release()
	s.bindGroupLayout.Release()
}
