package gpu

// BitonicStages computes the full (block_height, block_width) sequence for
// a bitonic sort over n elements, in dispatch order. n must be a power of
// two. Stage count is 1/2 * log2(n) * (log2(n)+1), matching spec.md §4.6's
// deterministic, bounded dispatch count.
func BitonicStages(n uint32) []BitonicStage {
	if n < 2 {
		return nil
	}
	var stages []BitonicStage
	for blockHeight := uint32(2); blockHeight <= n; blockHeight *= 2 {
		for blockWidth := blockHeight; blockWidth > 1; blockWidth /= 2 {
			stages = append(stages, BitonicStage{
				BlockHeight: blockHeight,
				BlockWidth:  blockWidth,
			})
		}
	}
	return stages
}

// IsPowerOfTwo reports whether n is a nonzero power of two, the required
// shape of the hash-grid's per-cell offset table (grid_dim) so that
// hash & (grid_dim - 1) is a valid modulo-reduction in the shader.
func IsPowerOfTwo(n uint32) bool {
	return n != 0 && n&(n-1) == 0
}

// NextPowerOfTwo returns the smallest power of two >= n.
func NextPowerOfTwo(n uint32) uint32 {
	if n == 0 {
		return 1
	}
	p := uint32(1)
	for p < n {
		p <<= 1
	}
	return p
}
