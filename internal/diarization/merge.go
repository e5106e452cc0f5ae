package diarization

// MergeSmallClusters folds every cluster below MinClusterSize into the large
// cluster with the most similar acoustic profile. Without any large cluster
// the input is returned unchanged.
func MergeSmallClusters(clusters []Cluster, p Params) []Cluster {
	p = p.withDefaults()

	var large, small []Cluster
	for _, c := range clusters {
		if c.Size() >= p.MinClusterSize {
			large = append(large, c)
		} else {
			small = append(small, c)
		}
	}

	if len(large) == 0 || len(small) == 0 {
		return append([]Cluster(nil), clusters...)
	}

	for _, s := range small {
		best := 0
		bestScore := -1.0
		for id, l := range large {
			if score := acousticSimilarity(s.Average, l.Average); score > bestScore {
				best, bestScore = id, score
			}
		}
		large[best] = large[best].absorb(s, p.HistoryDecay)
	}

	return large
}
