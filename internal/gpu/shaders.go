package gpu

import "fmt"

// ShaderManager generates and caches WGSL compute shader source for the
// neighbor-grid and SPH pipeline. Unlike a GL shader manager there is
// nothing to compile here; cogentcore/webgpu compiles WGSL modules
// lazily from source strings, so the manager's job is string assembly
// and memoization, not driver calls.
type ShaderManager struct {
	cache map[string]string
}

// NewShaderManager creates an empty shader manager.
func NewShaderManager() *ShaderManager {
	return &ShaderManager{cache: make(map[string]string)}
}

// GetCacheSize returns the number of cached shader sources.
func (m *ShaderManager) GetCacheSize() int {
	return len(m.cache)
}

// CacheSource stores a generated shader source under key.
func (m *ShaderManager) CacheSource(key, source string) {
	m.cache[key] = source
}

// GetCachedSource retrieves a previously cached shader source, or "" if
// absent.
func (m *ShaderManager) GetCachedSource(key string) string {
	return m.cache[key]
}

// ClearCache drops all cached shader sources.
func (m *ShaderManager) ClearCache() {
	m.cache = make(map[string]string)
}

// bindingsHeader is the common binding layout shared by every dispatch in
// the pipeline: uniform SimParams at binding 0, the ping-pong particle
// buffers at bindings 1-2, density at binding 3, grid entries at binding
// 4, and the cell offset table at binding 5. Kernels that don't touch a
// given binding still declare it so every pipeline in the step shares one
// bind group layout.
const bindingsHeader = `
struct SimParams {
    dt: f32,
    h: f32,
    rho0: f32,
    k: f32,
    mu: f32,
    particle_count: u32,
    grid_dim: u32,
    interaction_x: f32,
    interaction_y: f32,
    interaction_on: u32,
    clamp_negative_pressure: u32,
    _pad0: f32,
    _pad1: f32,
    _pad2: f32,
    _pad3: f32,
    _pad4: f32,
};

struct Particle {
    pos: vec3<f32>,
    mass: f32,
    vel: vec3<f32>,
    _pad: f32,
};

struct GridEntry {
    hash: u32,
    index: u32,
};

@group(0) @binding(0) var<uniform> params: SimParams;
@group(0) @binding(1) var<storage, read> particles_src: array<Particle>;
@group(0) @binding(2) var<storage, read_write> particles_dst: array<Particle>;
@group(0) @binding(3) var<storage, read_write> density: array<f32>;
@group(0) @binding(4) var<storage, read_write> grid_entries: array<GridEntry>;
@group(0) @binding(5) var<storage, read_write> cell_offsets: array<u32>;
`

// cellHashWGSL emits the shared cell-hash function: a 3D spatial hash
// over cells of width h, reduced into [0, grid_dim) via AND against
// grid_dim-1 (grid_dim is always a power of two, see IsPowerOfTwo).
const cellHashWGSL = `
fn cell_coord(pos: vec3<f32>, h: f32) -> vec3<i32> {
    return vec3<i32>(floor(pos / h));
}

fn cell_hash(c: vec3<i32>, grid_dim: u32) -> u32 {
    let p1: u32 = 73856093u;
    let p2: u32 = 19349663u;
    let p3: u32 = 83492791u;
    let h = (u32(c.x) * p1) ^ (u32(c.y) * p2) ^ (u32(c.z) * p3);
    return h & (grid_dim - 1u);
}
`

// HashShader generates the hash stage: for each particle, compute its
// cell hash and write (hash, particle_index) into grid_entries, the
// input the bitonic sort then orders by hash.
func HashShader() string {
	return fmt.Sprintf(`%s%s
@compute @workgroup_size(%d)
fn main(@builtin(global_invocation_id) gid: vec3<u32>) {
    let i = gid.x;
    if (i >= params.particle_count) {
        return;
    }
    let c = cell_coord(particles_src[i].pos, params.h);
    grid_entries[i] = GridEntry(cell_hash(c, params.grid_dim), i);
}
`, bindingsHeader, cellHashWGSL, WorkgroupSize)
}

// bitonicBindingsHeader is the sort stage's own bind group: a dynamic-
// offset uniform selecting the current (block_height, block_width)
// record, plus the grid entries it reorders. It deliberately does not
// include bindingsHeader — the sort pass touches nothing else, and
// reusing bindingsHeader would declare a second resource at
// @group(0) @binding(0), which WGSL rejects as a duplicate binding.
const bitonicBindingsHeader = `
struct GridEntry {
    hash: u32,
    index: u32,
};

struct BitonicStage {
    block_height: u32,
    block_width: u32,
    _pad: vec2<u32>,
};

@group(0) @binding(0) var<uniform> stage: BitonicStage;
@group(0) @binding(1) var<storage, read_write> grid_entries: array<GridEntry>;
`

// BitonicSortShader generates one bitonic-sort compare-exchange pass for
// a given (block_height, block_width) stage, selected by the dispatch's
// dynamic uniform offset into the stage table (see EncodeBitonicStages
// and Engine's dedicated sort bind group).
func BitonicSortShader() string {
	return fmt.Sprintf(`%s
@compute @workgroup_size(%d)
fn main(@builtin(global_invocation_id) gid: vec3<u32>) {
    let i = gid.x;
    let block_width = stage.block_width;
    let block_height = stage.block_height;

    let pos_in_block = i %% block_width;
    let ascending = (i / block_height) %% 2u == 0u;
    let partner = i ^ (block_width / 2u);

    if (partner <= i) {
        return;
    }

    let a = grid_entries[i];
    let b = grid_entries[partner];
    let swap = select(a.hash < b.hash, a.hash > b.hash, ascending);
    if (swap) {
        grid_entries[i] = b;
        grid_entries[partner] = a;
    }
    _ = pos_in_block;
}
`, bitonicBindingsHeader, WorkgroupSize)
}

// ClearOffsetsShader generates the stage that resets every cell_offsets
// slot to OffsetSentinel before the sorted grid_entries are scanned for
// cell boundaries.
func ClearOffsetsShader() string {
	return fmt.Sprintf(`%s
@compute @workgroup_size(%d)
fn main(@builtin(global_invocation_id) gid: vec3<u32>) {
    let i = gid.x;
    if (i >= params.grid_dim) {
        return;
    }
    cell_offsets[i] = %du;
}
`, bindingsHeader, WorkgroupSize, OffsetSentinel)
}

// BuildOffsetsShader generates the stage that scans the sorted
// grid_entries and records, for each cell hash, the index of its first
// entry: the point where hash[i] != hash[i-1] (or i==0).
func BuildOffsetsShader() string {
	return fmt.Sprintf(`%s
@compute @workgroup_size(%d)
fn main(@builtin(global_invocation_id) gid: vec3<u32>) {
    let i = gid.x;
    if (i >= params.particle_count) {
        return;
    }
    let h = grid_entries[i].hash;
    if (i == 0u || grid_entries[i - 1u].hash != h) {
        cell_offsets[h] = i;
    }
}
`, bindingsHeader, WorkgroupSize)
}

// DensityShader generates the density evaluation stage: for each
// particle, walk its 27 neighboring cells via cell_offsets/grid_entries
// and accumulate the poly6-weighted density sum.
func DensityShader() string {
	return fmt.Sprintf(`%s%s
fn poly6(r2: f32, h: f32) -> f32 {
    if (r2 >= h * h) {
        return 0.0;
    }
    let term = h * h - r2;
    let h9 = h * h * h * h * h * h * h * h * h;
    return (315.0 / (64.0 * 3.14159265358979 * h9)) * term * term * term;
}

@compute @workgroup_size(%d)
fn main(@builtin(global_invocation_id) gid: vec3<u32>) {
    let i = gid.x;
    if (i >= params.particle_count) {
        return;
    }
    let pi = particles_src[i];
    let c = cell_coord(pi.pos, params.h);
    var rho: f32 = 0.0;

    for (var dz = -1; dz <= 1; dz = dz + 1) {
        for (var dy = -1; dy <= 1; dy = dy + 1) {
            for (var dx = -1; dx <= 1; dx = dx + 1) {
                let neighbor_cell = c + vec3<i32>(dx, dy, dz);
                let h2 = cell_hash(neighbor_cell, params.grid_dim);
                var idx = cell_offsets[h2];
                loop {
                    if (idx >= params.particle_count || grid_entries[idx].hash != h2) {
                        break;
                    }
                    let j = grid_entries[idx].index;
                    let pj = particles_src[j];
                    let diff = pi.pos - pj.pos;
                    let r2 = dot(diff, diff);
                    rho = rho + pj.mass * poly6(r2, params.h);
                    idx = idx + 1u;
                }
            }
        }
    }
    density[i] = rho;
}
`, bindingsHeader, cellHashWGSL, WorkgroupSize)
}

// ForceIntegrateShader generates the final stage: pressure (spiky
// gradient) and viscosity (viscosity Laplacian) forces plus gravity and
// the optional interaction-point force, semi-implicit Euler integration,
// and a floor boundary matching the CPU Floor constraint's clamp and
// restitution, all in one dispatch so particles_dst is ready for the
// next frame's ping-pong swap.
func ForceIntegrateShader() string {
	return fmt.Sprintf(`%s%s
fn spiky_grad(diff: vec3<f32>, r: f32, h: f32) -> vec3<f32> {
    if (r <= 0.0 || r >= h) {
        return vec3<f32>(0.0, 0.0, 0.0);
    }
    let term = h - r;
    let h6 = h * h * h * h * h * h;
    let coef = -45.0 / (3.14159265358979 * h6) * term * term;
    return (diff / r) * coef;
}

fn visc_laplacian(r: f32, h: f32) -> f32 {
    if (r >= h) {
        return 0.0;
    }
    let h6 = h * h * h * h * h * h;
    return 45.0 / (3.14159265358979 * h6) * (h - r);
}

@compute @workgroup_size(%d)
fn main(@builtin(global_invocation_id) gid: vec3<u32>) {
    let i = gid.x;
    if (i >= params.particle_count) {
        return;
    }
    let pi = particles_src[i];
    let rho_i = max(density[i], 1e-6);
    var pressure_i = params.k * (rho_i - params.rho0);
    if (params.clamp_negative_pressure != 0u) {
        pressure_i = max(pressure_i, 0.0);
    }

    let c = cell_coord(pi.pos, params.h);
    var force = vec3<f32>(0.0, -9.81, 0.0) * pi.mass;

    if (params.interaction_on != 0u) {
        let to_point = vec3<f32>(params.interaction_x, pi.pos.y, params.interaction_y) - pi.pos;
        force = force + to_point * 50.0;
    }

    for (var dz = -1; dz <= 1; dz = dz + 1) {
        for (var dy = -1; dy <= 1; dy = dy + 1) {
            for (var dx = -1; dx <= 1; dx = dx + 1) {
                let neighbor_cell = c + vec3<i32>(dx, dy, dz);
                let h2 = cell_hash(neighbor_cell, params.grid_dim);
                var idx = cell_offsets[h2];
                loop {
                    if (idx >= params.particle_count || grid_entries[idx].hash != h2) {
                        break;
                    }
                    let j = grid_entries[idx].index;
                    if (j != i) {
                        let pj = particles_src[j];
                        let diff = pi.pos - pj.pos;
                        let r = length(diff);
                        if (r > 0.0 && r < params.h) {
                            let rho_j = max(density[j], 1e-6);
                            var pressure_j = params.k * (rho_j - params.rho0);
                            if (params.clamp_negative_pressure != 0u) {
                                pressure_j = max(pressure_j, 0.0);
                            }
                            let pressure_force = spiky_grad(diff, r, params.h) *
                                (-pj.mass * (pressure_i + pressure_j) / (2.0 * rho_j));
                            let visc_force = (pj.vel - pi.vel) * pj.mass *
                                (params.mu * visc_laplacian(r, params.h) / rho_j);
                            force = force + pressure_force + visc_force;
                        }
                    }
                    idx = idx + 1u;
                }
            }
        }
    }

    var vel = pi.vel + (force / pi.mass) * params.dt;
    var pos = pi.pos + vel * params.dt;

    if (pos.y < 0.0) {
        pos.y = 0.0;
        if (vel.y < 0.0) {
            vel.y = -vel.y * 0.5;
        }
        vel.x = vel.x * 0.9;
        vel.z = vel.z * 0.9;
    }

    particles_dst[i] = Particle(pos, pi.mass, vel, 0.0);
}
`, bindingsHeader, cellHashWGSL, WorkgroupSize)
}
