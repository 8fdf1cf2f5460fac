package runtime

import "sync/atomic"

// Heap tracks allocation statistics for the --stats flag. Chip
// substitutes Go's own tracing garbage collector for the source's
// (largely disabled) reference counting — there is no mark/sweep
// here, only the allocation counters kept for observability.
type Heap struct {
	allocCount atomic.Uint64
	variables  atomic.Uint64
	functions  atomic.Uint64
	arrays     atomic.Uint64
}

func NewHeap() *Heap {
	return &Heap{}
}

func (h *Heap) RecordAlloc(kind Kind) {
	h.allocCount.Add(1)
	switch kind {
	case KindVariable:
		h.variables.Add(1)
	case KindFunction:
		h.functions.Add(1)
	case KindArray:
		h.arrays.Add(1)
	}
}

// Stats is a point-in-time snapshot printed by --stats.
type Stats struct {
	AllocCount uint64
	Variables  uint64
	Functions  uint64
	Arrays     uint64
}

func (h *Heap) Stats() Stats {
	return Stats{
		AllocCount: h.allocCount.Load(),
		Variables:  h.variables.Load(),
		Functions:  h.functions.Load(),
		Arrays:     h.arrays.Load(),
	}
}
