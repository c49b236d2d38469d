package cascade

import (
	"math"
	"time"
)

// The BlockScheduler interface is implemented by all block scheduling
// algorithms. A scheduler splits a level's probe rows into contiguous
// blocks, one per worker; every worker traces its block independently
// and the level is complete once all blocks are done.
type BlockScheduler interface {
	// Split rows into blocks and assign them to the pool of workers,
	// optionally using per-worker timing feedback collected from the
	// previously built block. The returned slice holds the row count
	// assigned to each worker and always sums to rows.
	Schedule(workers int, rows int, lastBlockTimes []time.Duration) []int
}

// The naive scheduler splits rows evenly, ignoring feedback.
type naiveScheduler struct {
}

// Create a new naive scheduler instance.
func NaiveScheduler() BlockScheduler {
	return &naiveScheduler{}
}

func (sch *naiveScheduler) Schedule(workers int, rows int, _ []time.Duration) []int {
	if workers > rows {
		workers = rows
	}

	blockAssignment := make([]int, workers)
	per := rows / workers
	for idx := range blockAssignment {
		blockAssignment[idx] = per
	}
	blockAssignment[0] += rows - per*workers

	return blockAssignment
}

// The adaptive scheduler assumes that the per-row tracing workload of
// two subsequently built blocks is approximately the same and sizes each
// worker's next block proportionally to its measured row throughput.
type adaptiveScheduler struct {
	blockAssignment []int
}

// Create a new adaptive scheduler instance.
func AdaptiveScheduler() BlockScheduler {
	return &adaptiveScheduler{}
}

// Split rows into blocks using feedback from the previous schedule.
//
// When previous block times are available the scheduler estimates the
// workload share for worker w as:
//
//	rows_w = (blockRows_w / time_w) / Σ(blockRows_i / time_i)
//
// The first call, or any call after the worker count changed, falls back
// to an even split.
func (sch *adaptiveScheduler) Schedule(workers int, rows int, lastBlockTimes []time.Duration) []int {
	if workers > rows {
		workers = rows
	}

	if len(sch.blockAssignment) != workers || len(lastBlockTimes) != workers {
		sch.blockAssignment = NaiveScheduler().Schedule(workers, rows, nil)
		return sch.blockAssignment
	}

	var total float64
	for idx, blockTime := range lastBlockTimes {
		if blockTime <= 0 || sch.blockAssignment[idx] == 0 {
			// Degenerate feedback; keep the previous assignment.
			return sch.blockAssignment
		}
		total += float64(sch.blockAssignment[idx]) / float64(blockTime)
	}

	scaler := float64(rows) / total
	scheduledRows := 0
	for idx, blockTime := range lastBlockTimes {
		throughput := float64(sch.blockAssignment[idx]) / float64(blockTime)
		sch.blockAssignment[idx] = int(math.Max(1.0, math.Floor(throughput*scaler)))
		scheduledRows += sch.blockAssignment[idx]
	}

	// In case rows don't add up to the level height assign the missing
	// ones to the first worker. The minimum block size of 1 can push the
	// total above rows; steal the excess back from the largest blocks.
	sch.blockAssignment[0] += rows - scheduledRows
	for sch.blockAssignment[0] < 1 {
		maxIdx := 1
		for idx := 2; idx < workers; idx++ {
			if sch.blockAssignment[idx] > sch.blockAssignment[maxIdx] {
				maxIdx = idx
			}
		}
		sch.blockAssignment[maxIdx]--
		sch.blockAssignment[0]++
	}

	return sch.blockAssignment
}
