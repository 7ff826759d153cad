package ecs

// Each2 iterates over entities that have both component A and B, walking the
// smaller store and probing the larger one.
func Each2[A, B any](sa *PtrComponentStore[A], sb *PtrComponentStore[B], fn func(EntityID, *A, *B)) {
	if sa.Len() <= sb.Len() {
		for i, id := range sa.ids {
			if j, ok := sb.index[id]; ok {
				fn(id, sa.data[i], sb.data[j])
			}
		}
		return
	}
	for j, id := range sb.ids {
		if i, ok := sa.index[id]; ok {
			fn(id, sa.data[i], sb.data[j])
		}
	}
}

// Each3 iterates over entities that have components A, B, and C. Order
// follows store A so callers get a stable sequence.
func Each3[A, B, C any](sa *PtrComponentStore[A], sb *PtrComponentStore[B], sc *PtrComponentStore[C], fn func(EntityID, *A, *B, *C)) {
	for i, id := range sa.ids {
		j, ok := sb.index[id]
		if !ok {
			continue
		}
		k, ok := sc.index[id]
		if !ok {
			continue
		}
		fn(id, sa.data[i], sb.data[j], sc.data[k])
	}
}
