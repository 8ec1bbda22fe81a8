package gpu

import (
	"context"
	"encoding/binary"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/kickthemoon/moo/internal/state"
	"github.com/pkg/errors"
)

// Engine owns the wgpu device and the six compute pipelines of the
// neighbor-grid/SPH pipeline, and drives one fixed-order dispatch
// sequence per Step. Buffers are double-buffered (particlesA/B); each
// Step swaps which one is the read source, mirroring the ping-pong swap
// a compute pass does after writing its output.
type Engine struct {
	device *wgpu.Device
	queue  *wgpu.Queue

	bindGroupLayout *wgpu.BindGroupLayout
	pipelineLayout  *wgpu.PipelineLayout

	sortBindGroupLayout *wgpu.BindGroupLayout
	sortPipelineLayout  *wgpu.PipelineLayout

	hashPipeline           *wgpu.ComputePipeline
	sortPipeline           *wgpu.ComputePipeline
	clearOffsetsPipeline   *wgpu.ComputePipeline
	buildOffsetsPipeline   *wgpu.ComputePipeline
	densityPipeline        *wgpu.ComputePipeline
	forceIntegratePipeline *wgpu.ComputePipeline

	paramsBuffer   *wgpu.Buffer
	stageBuffer    *wgpu.Buffer
	particlesA     *wgpu.Buffer
	particlesB     *wgpu.Buffer
	densityBuffer  *wgpu.Buffer
	gridEntries    *wgpu.Buffer
	cellOffsets    *wgpu.Buffer
	readbackBuffer *wgpu.Buffer

	bindGroupFwd  *wgpu.BindGroup // src=A dst=B
	bindGroupRev  *wgpu.BindGroup // src=B dst=A
	sortBindGroup *wgpu.BindGroup

	particleCount uint32
	paddedCount   uint32 // NextPowerOfTwo(particleCount), the bitonic sort's working size
	gridDim       uint32
	front         bool // true: A is the current source
}

// NewEngine requests an adapter and device, builds the bind group
// layout shared by every kernel, and allocates all buffers sized for
// particleCount particles and a hash grid of gridDim cells (gridDim must
// be a power of two; callers typically pass NextPowerOfTwo(particleCount)
// or larger). Adapter-request and device-request failures are reported
// through the returned error and are not retried; the Engine registers
// no device-lost callback. A fresh Engine must be constructed by the
// caller per spec.md's device-error model.
func NewEngine(ctx context.Context, particleCount, gridDim uint32) (*Engine, error) {
	if !IsPowerOfTwo(gridDim) {
		return nil, errors.Errorf("gpu: grid_dim %d must be a power of two", gridDim)
	}

	instance := wgpu.CreateInstance(nil)
	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		PowerPreference: wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		return nil, errors.Wrap(err, "gpu: request adapter")
	}

	device, err := adapter.RequestDevice(nil)
	if err != nil {
		return nil, errors.Wrap(err, "gpu: request device")
	}

	e := &Engine{
		device:        device,
		queue:         device.GetQueue(),
		particleCount: particleCount,
		paddedCount:   NextPowerOfTwo(particleCount),
		gridDim:       gridDim,
		front:         true,
	}

	if err := e.buildLayout(); err != nil {
		return nil, err
	}
	if err := e.buildPipelines(); err != nil {
		return nil, err
	}
	if err := e.buildBuffers(particleCount, gridDim); err != nil {
		return nil, err
	}
	e.rebuildBindGroups()

	_ = ctx
	return e, nil
}

func (e *Engine) buildLayout() error {
	entry := func(binding uint32, readOnly bool, uniform bool) wgpu.BindGroupLayoutEntry {
		bufType := wgpu.BufferBindingTypeStorage
		if readOnly {
			bufType = wgpu.BufferBindingTypeReadOnlyStorage
		}
		if uniform {
			bufType = wgpu.BufferBindingTypeUniform
		}
		return wgpu.BindGroupLayoutEntry{
			Binding:    binding,
			Visibility: wgpu.ShaderStageCompute,
			Buffer:     wgpu.BufferBindingLayout{Type: bufType},
		}
	}

	layout, err := e.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "sph_bind_group_layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			entry(0, false, true),  // SimParams
			entry(1, true, false),  // particles_src
			entry(2, false, false), // particles_dst
			entry(3, false, false), // density
			entry(4, false, false), // grid_entries
			entry(5, false, false), // cell_offsets
		},
	})
	if err != nil {
		return errors.Wrap(err, "gpu: create bind group layout")
	}
	e.bindGroupLayout = layout

	pipelineLayout, err := e.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "sph_pipeline_layout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{layout},
	})
	if err != nil {
		return errors.Wrap(err, "gpu: create pipeline layout")
	}
	e.pipelineLayout = pipelineLayout

	// The sort stage gets its own bind group: a BitonicStage uniform
	// selected per dispatch via a dynamic offset, plus the grid entries
	// it reorders. It shares nothing with bindGroupLayout above, so it
	// cannot collide with SimParams at binding 0.
	sortLayout, err := e.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "bitonic_sort_bind_group_layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageCompute,
				Buffer: wgpu.BufferBindingLayout{
					Type:             wgpu.BufferBindingTypeUniform,
					HasDynamicOffset: true,
				},
			},
			{
				Binding:    1,
				Visibility: wgpu.ShaderStageCompute,
				Buffer:     wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeStorage},
			},
		},
	})
	if err != nil {
		return errors.Wrap(err, "gpu: create bitonic sort bind group layout")
	}
	e.sortBindGroupLayout = sortLayout

	sortPipelineLayout, err := e.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "bitonic_sort_pipeline_layout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{sortLayout},
	})
	if err != nil {
		return errors.Wrap(err, "gpu: create bitonic sort pipeline layout")
	}
	e.sortPipelineLayout = sortPipelineLayout
	return nil
}

func (e *Engine) buildPipelines() error {
	stages := []struct {
		label  string
		source string
		layout *wgpu.PipelineLayout
		dest   **wgpu.ComputePipeline
	}{
		{"hash", HashShader(), e.pipelineLayout, &e.hashPipeline},
		{"bitonic_sort", BitonicSortShader(), e.sortPipelineLayout, &e.sortPipeline},
		{"clear_offsets", ClearOffsetsShader(), e.pipelineLayout, &e.clearOffsetsPipeline},
		{"build_offsets", BuildOffsetsShader(), e.pipelineLayout, &e.buildOffsetsPipeline},
		{"density", DensityShader(), e.pipelineLayout, &e.densityPipeline},
		{"force_integrate", ForceIntegrateShader(), e.pipelineLayout, &e.forceIntegratePipeline},
	}
	for _, st := range stages {
		module, err := e.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
			Label:          st.label,
			WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: st.source},
		})
		if err != nil {
			return errors.Wrapf(err, "gpu: compile %s shader", st.label)
		}
		pipeline, err := e.device.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
			Label:   st.label,
			Layout:  st.layout,
			Compute: wgpu.ProgrammableStageDescriptor{Module: module, EntryPoint: "main"},
		})
		if err != nil {
			return errors.Wrapf(err, "gpu: create %s pipeline", st.label)
		}
		*st.dest = pipeline
	}
	return nil
}

func (e *Engine) buildBuffers(particleCount, gridDim uint32) error {
	storageUsage := wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst | wgpu.BufferUsageCopySrc
	uniformUsage := wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst

	newBuffer := func(label string, size uint64, usage wgpu.BufferUsage) (*wgpu.Buffer, error) {
		buf, err := e.device.CreateBuffer(&wgpu.BufferDescriptor{Label: label, Size: size, Usage: usage})
		if err != nil {
			return nil, errors.Wrapf(err, "gpu: create buffer %s", label)
		}
		return buf, nil
	}

	var err error
	particleBytes := uint64(particleCount) * particleStride
	if e.particlesA, err = newBuffer("particles_a", particleBytes, storageUsage); err != nil {
		return err
	}
	if e.particlesB, err = newBuffer("particles_b", particleBytes, storageUsage); err != nil {
		return err
	}
	if e.densityBuffer, err = newBuffer("density", uint64(particleCount)*4, storageUsage); err != nil {
		return err
	}

	// gridEntries is sized to paddedCount, not particleCount: the
	// bitonic sort's compare-exchange partner index reaches
	// paddedCount-1, and a buffer sized to particleCount would let any
	// non-power-of-two particle count read/write past its end. The
	// padding entries are seeded once below with a hash that sorts to
	// the tail and are never scanned by build_offsets/density, both of
	// which stop at particleCount.
	paddedCount := e.paddedCount
	if e.gridEntries, err = newBuffer("grid_entries", uint64(paddedCount)*8, storageUsage); err != nil {
		return err
	}
	if paddedCount > particleCount {
		padding := make([]byte, uint64(paddedCount-particleCount)*8)
		for idx := uint32(0); idx < paddedCount-particleCount; idx++ {
			off := idx * 8
			binary.LittleEndian.PutUint32(padding[off:], OffsetSentinel)
			binary.LittleEndian.PutUint32(padding[off+4:], particleCount+idx)
		}
		if err := e.queue.WriteBuffer(e.gridEntries, uint64(particleCount)*8, padding); err != nil {
			return errors.Wrap(err, "gpu: seed grid_entries padding")
		}
	}

	if e.cellOffsets, err = newBuffer("cell_offsets", uint64(gridDim)*4, storageUsage); err != nil {
		return err
	}
	if e.paramsBuffer, err = newBuffer("sim_params", SimParamsSize, uniformUsage); err != nil {
		return err
	}

	stages := BitonicStages(paddedCount)
	stageBytes := uint64(len(stages)) * BitonicStageStride
	if stageBytes == 0 {
		stageBytes = BitonicStageStride
	}
	if e.stageBuffer, err = newBuffer("bitonic_stages", stageBytes, uniformUsage); err != nil {
		return err
	}
	if len(stages) > 0 {
		if err := e.queue.WriteBuffer(e.stageBuffer, 0, EncodeBitonicStages(stages)); err != nil {
			return errors.Wrap(err, "gpu: upload bitonic stage table")
		}
	}

	readbackUsage := wgpu.BufferUsageMapRead | wgpu.BufferUsageCopyDst
	if e.readbackBuffer, err = newBuffer("particles_readback", particleBytes, readbackUsage); err != nil {
		return err
	}
	return nil
}

func (e *Engine) rebuildBindGroups() {
	bind := func(src, dst *wgpu.Buffer) *wgpu.BindGroup {
		group, _ := e.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
			Label:  "sph_bind_group",
			Layout: e.bindGroupLayout,
			Entries: []wgpu.BindGroupEntry{
				{Binding: 0, Buffer: e.paramsBuffer},
				{Binding: 1, Buffer: src},
				{Binding: 2, Buffer: dst},
				{Binding: 3, Buffer: e.densityBuffer},
				{Binding: 4, Buffer: e.gridEntries},
				{Binding: 5, Buffer: e.cellOffsets},
			},
		})
		return group
	}
	e.bindGroupFwd = bind(e.particlesA, e.particlesB)
	e.bindGroupRev = bind(e.particlesB, e.particlesA)

	// gridEntries never ping-pongs, so the sort bind group is built once;
	// each dispatch selects its BitonicStage record via a dynamic offset
	// into stageBuffer rather than rebuilding the bind group.
	sortGroup, _ := e.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "bitonic_sort_bind_group",
		Layout: e.sortBindGroupLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: e.stageBuffer, Size: bitonicStageSize},
			{Binding: 1, Buffer: e.gridEntries},
		},
	})
	e.sortBindGroup = sortGroup
}

func (e *Engine) currentBindGroup() *wgpu.BindGroup {
	if e.front {
		return e.bindGroupFwd
	}
	return e.bindGroupRev
}

func (e *Engine) pipelineFor(stage Stage) *wgpu.ComputePipeline {
	switch stage {
	case StageHash:
		return e.hashPipeline
	case StageSort:
		return e.sortPipeline
	case StageClearOffsets:
		return e.clearOffsetsPipeline
	case StageBuildOffsets:
		return e.buildOffsetsPipeline
	case StageDensity:
		return e.densityPipeline
	case StageForceIntegrate:
		return e.forceIntegratePipeline
	default:
		return nil
	}
}

// Step uploads params, runs the fixed dispatch sequence from Plan, and
// swaps the ping-pong source/destination buffers so the next Step reads
// the particles this one just wrote.
func (e *Engine) Step(params SimParams) error {
	paramBytes, err := EncodeSimParams(params)
	if err != nil {
		return err
	}
	if err := e.queue.WriteBuffer(e.paramsBuffer, 0, paramBytes); err != nil {
		return errors.Wrap(err, "gpu: upload sim params")
	}

	encoder, err := e.device.CreateCommandEncoder(nil)
	if err != nil {
		return errors.Wrap(err, "gpu: create command encoder")
	}

	plan := Plan(e.particleCount, e.gridDim)
	bindGroup := e.currentBindGroup()
	for _, d := range plan {
		pass, err := encoder.BeginComputePass(nil)
		if err != nil {
			return errors.Wrap(err, "gpu: begin compute pass")
		}
		pass.SetPipeline(e.pipelineFor(d.Stage))
		if d.Stage == StageSort {
			offset := uint32(d.SortStage) * BitonicStageStride
			pass.SetBindGroup(0, e.sortBindGroup, []uint32{offset})
		} else {
			pass.SetBindGroup(0, bindGroup, nil)
		}
		pass.DispatchWorkgroups(d.Workgroups, 1, 1)
		pass.End()
	}

	cmd, err := encoder.Finish(nil)
	if err != nil {
		return errors.Wrap(err, "gpu: finish command buffer")
	}
	e.queue.Submit([]*wgpu.CommandBuffer{cmd})

	e.front = !e.front
	return nil
}

// CurrentParticleBuffer returns the buffer holding this step's output,
// for readback via DecodeParticles.
func (e *Engine) CurrentParticleBuffer() *wgpu.Buffer {
	if e.front {
		return e.particlesA
	}
	return e.particlesB
}

// Upload writes s's current translational state into the source
// particle buffer for the next Step.
func (e *Engine) Upload(s *state.PhaseSpace) error {
	buf, err := EncodeParticles(s)
	if err != nil {
		return err
	}
	dst := e.particlesB
	if e.front {
		dst = e.particlesA
	}
	return e.queue.WriteBuffer(dst, 0, buf)
}

// ReadParticles copies the current output particle buffer into a
// mappable staging buffer and reads it back to the CPU, the async
// buffer-map suspension point spec.md's GPU step model requires for any
// caller that needs State() to reflect a GPU step's result. The
// returned bytes are laid out exactly as EncodeParticles/DecodeParticles
// expect.
func (e *Engine) ReadParticles() ([]byte, error) {
	particleBytes := uint64(e.particleCount) * particleStride

	encoder, err := e.device.CreateCommandEncoder(nil)
	if err != nil {
		return nil, errors.Wrap(err, "gpu: create readback encoder")
	}
	if err := encoder.CopyBufferToBuffer(e.CurrentParticleBuffer(), 0, e.readbackBuffer, 0, particleBytes); err != nil {
		return nil, errors.Wrap(err, "gpu: copy particles to readback buffer")
	}
	cmd, err := encoder.Finish(nil)
	if err != nil {
		return nil, errors.Wrap(err, "gpu: finish readback command buffer")
	}
	e.queue.Submit([]*wgpu.CommandBuffer{cmd})

	return e.mapRead(e.readbackBuffer, particleBytes)
}

// mapRead maps buf's first size bytes for CPU reads, polling the device
// until the async map completes, copies the mapped range out, and
// unmaps. The caller's buffer must carry BufferUsageMapRead.
func (e *Engine) mapRead(buf *wgpu.Buffer, size uint64) ([]byte, error) {
	done := make(chan error, 1)
	buf.MapAsync(wgpu.MapModeRead, 0, size, func(status wgpu.BufferMapAsyncStatus) {
		if status != wgpu.BufferMapAsyncStatusSuccess {
			done <- errors.Errorf("gpu: map readback buffer failed: status %v", status)
			return
		}
		done <- nil
	})

	for {
		e.device.Poll(true, nil)
		select {
		case err := <-done:
			if err != nil {
				return nil, err
			}
			mapped := buf.GetMappedRange(0, uint(size))
			out := make([]byte, len(mapped))
			copy(out, mapped)
			buf.Unmap()
			return out, nil
		default:
		}
	}
}
