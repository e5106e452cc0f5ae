package diarization

// Label maps cluster ids onto the label pool. Ids beyond the pool size wrap
// around and collide with earlier clusters.
func Label(ids []int, pool []string) []string {
	if len(pool) == 0 {
		pool = DefaultLabelPool
	}
	labels := make([]string, len(ids))
	for i, id := range ids {
		labels[i] = pool[((id%len(pool))+len(pool))%len(pool)]
	}
	return labels
}
