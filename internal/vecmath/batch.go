package vecmath

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

const (
	sequentialCacheBlockSize  = 64
	parallelCacheChunkSize    = 256
	streamingChunkSize        = 1024
	streamingSubBlockSize     = 32
	aggressiveMinChunkSize    = 16
	aggressiveThreadsDivisor  = 4
)

// BatchDot writes out[i] = dot(A[i*L:(i+1)*L], B[i*L:(i+1)*L]) for i in
// 0..numPairs, selecting an execution strategy from the workload
// profile. It is a no-op on a zero-sized workload or on undersized
// buffers (bounds-violation-safe: it never panics on short input).
func BatchDot(a, b, out []float32, vectorLength, numPairs int) {
	if vectorLength == 0 || numPairs == 0 {
		return
	}
	needed := vectorLength * numPairs
	if len(a) < needed || len(b) < needed || len(out) < numPairs {
		return
	}

	profile := NewProfile(vectorLength, numPairs)
	switch profile.Strategy() {
	case Sequential:
		executeSequential(a, b, out, vectorLength, numPairs)
	case ParallelStreaming:
		executeParallelStreaming(a, b, out, vectorLength, numPairs)
	case ParallelCacheFriendly:
		executeParallelCacheFriendly(a, b, out, vectorLength, numPairs)
	case ParallelAggressive:
		executeParallelAggressive(a, b, out, vectorLength, numPairs)
	default:
		executeSequentialCacheFriendly(a, b, out, vectorLength, numPairs)
	}
}

func executeSequential(a, b, out []float32, vectorLength, numPairs int) {
	for i := 0; i < numPairs; i++ {
		start := i * vectorLength
		out[i] = Dot16(a[start:start+vectorLength], b[start:start+vectorLength])
	}
}

func executeSequentialCacheFriendly(a, b, out []float32, vectorLength, numPairs int) {
	for blockStart := 0; blockStart < numPairs; blockStart += sequentialCacheBlockSize {
		blockEnd := blockStart + sequentialCacheBlockSize
		if blockEnd > numPairs {
			blockEnd = numPairs
		}
		for i := blockStart; i < blockEnd; i++ {
			start := i * vectorLength
			out[i] = Dot16(a[start:start+vectorLength], b[start:start+vectorLength])
		}
	}
}

func executeParallelCacheFriendly(a, b, out []float32, vectorLength, numPairs int) {
	runChunks(numPairs, parallelCacheChunkSize, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			start := i * vectorLength
			out[i] = Dot16(a[start:start+vectorLength], b[start:start+vectorLength])
		}
	})
}

func executeParallelAggressive(a, b, out []float32, vectorLength, numPairs int) {
	threads := runtime.GOMAXPROCS(0)
	chunkSize := numPairs / (threads * aggressiveThreadsDivisor)
	if chunkSize < aggressiveMinChunkSize {
		chunkSize = aggressiveMinChunkSize
	}
	runChunks(numPairs, chunkSize, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			start := i * vectorLength
			out[i] = Dot32(a[start:start+vectorLength], b[start:start+vectorLength])
		}
	})
}

func executeParallelStreaming(a, b, out []float32, vectorLength, numPairs int) {
	runChunks(numPairs, streamingChunkSize, func(chunkLo, chunkHi int) {
		for subLo := chunkLo; subLo < chunkHi; subLo += streamingSubBlockSize {
			subHi := subLo + streamingSubBlockSize
			if subHi > chunkHi {
				subHi = chunkHi
			}
			for i := subLo; i < subHi; i++ {
				start := i * vectorLength
				out[i] = Dot16(a[start:start+vectorLength], b[start:start+vectorLength])
			}
		}
	})
}

// runChunks fans work over [0, n) out across fixed-size chunks on an
// errgroup, blocking until every chunk completes (fork-join).
func runChunks(n, chunkSize int, work func(lo, hi int)) {
	g, _ := errgroup.WithContext(context.Background())
	for lo := 0; lo < n; lo += chunkSize {
		hi := lo + chunkSize
		if hi > n {
			hi = n
		}
		lo, hi := lo, hi
		g.Go(func() error {
			work(lo, hi)
			return nil
		})
	}
	_ = g.Wait()
}
