package vecmath

// Strategy names the execution path chosen for a batch dot-product call.
type Strategy int

const (
	Sequential Strategy = iota
	SequentialCacheFriendly
	ParallelCacheFriendly
	ParallelAggressive
	ParallelStreaming
)

func (s Strategy) String() string {
	switch s {
	case Sequential:
		return "sequential"
	case SequentialCacheFriendly:
		return "sequential_cache_friendly"
	case ParallelCacheFriendly:
		return "parallel_cache_friendly"
	case ParallelAggressive:
		return "parallel_aggressive"
	case ParallelStreaming:
		return "parallel_streaming"
	default:
		return "unknown"
	}
}

const (
	l1CacheSize           = 32 * 1024
	cacheFriendlySize     = l1CacheSize / 4
	minParallelFLOPs      = 1_000_000
	minParallelPairs      = 100
	streamingThresholdGB  = 0.1
	aggressiveFLOPsCutoff = 10_000_000
)

// Profile describes the workload shape of one batch dot-product call.
type Profile struct {
	VectorLength      int
	NumPairs          int
	TotalFLOPs        int
	MemoryBandwidthGB float64
	ComputeIntensity  float64
}

// NewProfile computes the workload profile for a batch call of N pairs
// of length-L vectors.
func NewProfile(vectorLength, numPairs int) Profile {
	flops := 2 * numPairs * vectorLength
	bytes := 8 * numPairs * vectorLength
	memGB := float64(bytes) / (1024 * 1024 * 1024)
	ci := 0.0
	if bytes > 0 {
		ci = float64(flops) / float64(bytes)
	}
	return Profile{
		VectorLength:      vectorLength,
		NumPairs:          numPairs,
		TotalFLOPs:        flops,
		MemoryBandwidthGB: memGB,
		ComputeIntensity:  ci,
	}
}

// Strategy picks the optimal execution strategy, first match wins.
func (p Profile) Strategy() Strategy {
	if p.TotalFLOPs < minParallelFLOPs || p.NumPairs < minParallelPairs {
		return Sequential
	}
	if p.MemoryBandwidthGB > streamingThresholdGB {
		return ParallelStreaming
	}
	// ComputeIntensity is flops/bytes = 2NL / 8NL ≈ 0.25 for every
	// two-vector dot-product workload, so this branch is reachable only
	// if that ratio changes; kept for fidelity with the source formula.
	if p.ComputeIntensity > 0.5 && p.VectorLength*4 < cacheFriendlySize {
		return ParallelCacheFriendly
	}
	if p.TotalFLOPs > aggressiveFLOPsCutoff {
		return ParallelAggressive
	}
	return SequentialCacheFriendly
}
