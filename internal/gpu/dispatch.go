package gpu

// Stage names the six kernel dispatches of one GPU simulation step, in
// the fixed order spec.md §4.9 requires: a full neighbor-grid rebuild
// precedes every density/force evaluation, there is no incremental grid
// update.
type Stage int

const (
	StageHash Stage = iota
	StageSort
	StageClearOffsets
	StageBuildOffsets
	StageDensity
	StageForceIntegrate
)

func (s Stage) String() string {
	switch s {
	case StageHash:
		return "hash"
	case StageSort:
		return "sort"
	case StageClearOffsets:
		return "clear_offsets"
	case StageBuildOffsets:
		return "build_offsets"
	case StageDensity:
		return "density"
	case StageForceIntegrate:
		return "force_integrate"
	default:
		return "unknown"
	}
}

// Dispatch is one compute-pass dispatch: which kernel, how many
// workgroups, and (for sort passes) which precomputed BitonicStage to
// bind via dynamic uniform offset.
type Dispatch struct {
	Stage      Stage
	Workgroups uint32
	SortStage  int // index into the stage table; -1 outside StageSort
}

func workgroupCount(n uint32) uint32 {
	if n == 0 {
		return 0
	}
	return (n + WorkgroupSize - 1) / WorkgroupSize
}

// Plan computes the fixed, deterministic dispatch sequence for one
// simulation step over particleCount particles and a hash grid of
// gridDim cells. gridDim must be a power of two (see NextPowerOfTwo);
// the sort stage count follows directly from
// BitonicStages(NextPowerOfTwo(particleCount)), so the total dispatch
// count for a step is bounded and known up front.
func Plan(particleCount, gridDim uint32) []Dispatch {
	particleGroups := workgroupCount(particleCount)
	gridGroups := workgroupCount(gridDim)
	sortGroups := workgroupCount(NextPowerOfTwo(particleCount))

	plan := []Dispatch{
		{Stage: StageHash, Workgroups: particleGroups, SortStage: -1},
	}
	for i := range BitonicStages(NextPowerOfTwo(particleCount)) {
		plan = append(plan, Dispatch{Stage: StageSort, Workgroups: sortGroups, SortStage: i})
	}
	plan = append(plan,
		Dispatch{Stage: StageClearOffsets, Workgroups: gridGroups, SortStage: -1},
		Dispatch{Stage: StageBuildOffsets, Workgroups: particleGroups, SortStage: -1},
		Dispatch{Stage: StageDensity, Workgroups: particleGroups, SortStage: -1},
		Dispatch{Stage: StageForceIntegrate, Workgroups: particleGroups, SortStage: -1},
	)
	return plan
}
