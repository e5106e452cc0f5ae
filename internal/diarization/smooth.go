package diarization

// Smooth slides a window over the assignment and, where one cluster holds the
// majority share, rewrites the confident positions of the window to it.
// Low-confidence positions keep their cluster.
func Smooth(assign []int, features []Features, p Params) []int {
	p = p.withDefaults()
	out := append([]int(nil), assign...)

	w := p.SmoothingWindow
	if w <= 0 || len(out) < w {
		return out
	}

	for i := 0; i+w <= len(out); i++ {
		label, count := majority(out[i : i+w])
		if float64(count)/float64(w) < p.SmoothingMajority {
			continue
		}
		for j := i; j < i+w; j++ {
			if j < len(features) && features[j].Confidence > p.SmoothingMinConfidence {
				out[j] = label
			}
		}
	}

	return out
}

// majority returns the most frequent value and its count. Ties go to the value
// seen first.
func majority(window []int) (int, int) {
	counts := make(map[int]int, len(window))
	best, bestCount := 0, 0
	for _, v := range window {
		counts[v]++
	}
	for _, v := range window {
		if counts[v] > bestCount {
			best, bestCount = v, counts[v]
		}
	}
	return best, bestCount
}
