// Package gpu implements the GPU-accelerated SPH pipeline: a hash-grid
// neighbor search (hash -> bitonic sort -> offset table) followed by
// density and pressure/viscosity kernels, dispatched against
// github.com/cogentcore/webgpu. Buffer layouts below are bit-exact with
// spec.md §3/§6.
package gpu

// Particle is the GPU particle record: two 16-byte-aligned 4-vectors,
// (pos.xyz, mass) and (vel.xyz, pad), stride 32 bytes, all float32.
type Particle struct {
	PosX, PosY, PosZ, Mass float32
	VelX, VelY, VelZ, Pad  float32
}

// GridEntry is a (cell_hash, particle_index) pair written by the hash
// stage and consumed by the sort and offset-building stages.
type GridEntry struct {
	Hash  uint32
	Index uint32
}

// OffsetSentinel marks a cell with no particles in the offset table.
const OffsetSentinel uint32 = 0xFFFFFFFF

// SimParams is the uniform buffer bound at binding 0: dt, smoothing
// radius, rest density, pressure stiffness, viscosity, particle count,
// grid dimension, interaction point, interaction-enabled flag, padded to
// a 64-byte multiple of 16 to respect std140 uniform alignment.
type SimParams struct {
	Dt                    float32
	H                     float32
	Rho0                  float32
	K                     float32
	Mu                    float32
	ParticleCount         uint32
	GridDim               uint32
	InteractionX          float32
	InteractionY          float32
	InteractionOn         uint32
	ClampNegativePressure uint32
	_pad                  [5]float32
}

// SimParamsSize is SimParams's encoded size in bytes (64, a multiple of
// 16), also the size of the uniform buffer bound at binding 0.
const SimParamsSize = 64

// BitonicStage is one record of the precomputed (block_height, block_width)
// sequence for a single bitonic-sort compute dispatch. The CPU computes the
// full sequence once and writes it into a single uniform buffer, one
// record per 256-byte-aligned stage slot; each dispatch selects its
// record via a dynamic offset.
type BitonicStage struct {
	BlockHeight uint32
	BlockWidth  uint32
	_pad        [2]uint32
}

// BitonicStageStride is the byte stride between consecutive BitonicStage
// records in the sort-stage uniform buffer, forced to 256 to satisfy
// typical minUniformBufferOffsetAlignment limits for dynamic offsets.
const BitonicStageStride = 256

// bitonicStageSize is BitonicStage's encoded size in bytes: the dynamic-
// offset binding only needs to cover one record, not the full stride.
const bitonicStageSize = 16

// WorkgroupSize is the compute workgroup size used by every per-particle
// dispatch (hash, density, force/integrate).
const WorkgroupSize = 256
