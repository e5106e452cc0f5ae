package diarization

import "math"

// Cluster is a group of segments believed to share a speaker. Clusters live in
// an arena ([]Cluster) addressed by position; updates return a new value.
type Cluster struct {
	Members         []int
	History         []Features
	Average         Features
	LastSegmentTime float64
}

func newCluster(f Features) Cluster {
	return Cluster{
		Members:         []int{f.SegmentIndex},
		History:         []Features{f},
		Average:         f,
		LastSegmentTime: f.TimePosition,
	}
}

// Size returns the number of member segments.
func (c Cluster) Size() int {
	return len(c.Members)
}

// withMember returns a copy of c with f appended and the average recomputed.
func (c Cluster) withMember(f Features, decay float64) Cluster {
	members := make([]int, 0, len(c.Members)+1)
	members = append(members, c.Members...)
	members = append(members, f.SegmentIndex)

	history := make([]Features, 0, len(c.History)+1)
	history = append(history, c.History...)
	history = append(history, f)

	return Cluster{
		Members:         members,
		History:         history,
		Average:         runningAverage(history, decay),
		LastSegmentTime: f.TimePosition,
	}
}

// absorb returns a copy of c holding the members and history of other as well.
func (c Cluster) absorb(other Cluster, decay float64) Cluster {
	members := make([]int, 0, len(c.Members)+len(other.Members))
	members = append(members, c.Members...)
	members = append(members, other.Members...)

	history := make([]Features, 0, len(c.History)+len(other.History))
	history = append(history, c.History...)
	history = append(history, other.History...)

	return Cluster{
		Members:         members,
		History:         history,
		Average:         runningAverage(history, decay),
		LastSegmentTime: math.Max(c.LastSegmentTime, other.LastSegmentTime),
	}
}

// runningAverage weights the k-th of n entries by decay^(n-1-k), so the most
// recent member counts most. Flags are decided by simple majority.
func runningAverage(history []Features, decay float64) Features {
	n := len(history)
	if n == 0 {
		return Features{}
	}

	var sums [numericFeatureCount]float64
	var votes [flagFeatureCount]int
	totalWeight := 0.0

	for k, f := range history {
		w := math.Pow(decay, float64(n-1-k))
		totalWeight += w
		for i, v := range f.numeric() {
			sums[i] += w * v
		}
		for i, set := range f.flags() {
			if set {
				votes[i]++
			}
		}
	}

	var avg Features
	var means [numericFeatureCount]float64
	for i := range sums {
		means[i] = sums[i] / totalWeight
	}
	avg.setNumeric(means)

	var majority [flagFeatureCount]bool
	for i, v := range votes {
		majority[i] = v*2 > n
	}
	avg.setFlags(majority)
	avg.SegmentIndex = history[n-1].SegmentIndex
	return avg
}

// BuildClusters assigns every segment, in index order, to the best-scoring
// existing cluster above the threshold or opens a new one.
func BuildClusters(features []Features, p Params) []Cluster {
	p = p.withDefaults()
	clusters := make([]Cluster, 0)

	for _, f := range features {
		best := -1
		bestScore := p.SimilarityThreshold
		for id, c := range clusters {
			// strict > keeps the earliest cluster on ties
			if score := clusterScore(f, c); score > bestScore {
				best, bestScore = id, score
			}
		}

		if best < 0 {
			clusters = append(clusters, newCluster(f))
			continue
		}
		clusters[best] = clusters[best].withMember(f, p.HistoryDecay)
	}

	return clusters
}

// Flatten maps every segment index to the arena position of its cluster.
func Flatten(clusters []Cluster, n int) []int {
	assign := make([]int, n)
	for id, c := range clusters {
		for _, m := range c.Members {
			if m >= 0 && m < n {
				assign[m] = id
			}
		}
	}
	return assign
}
