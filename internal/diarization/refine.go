package diarization

// RefineTransitions folds short or uncertain speaker flips into the preceding
// speaker. Every decision reads the input slice, so fixes do not cascade.
func RefineTransitions(assign []int, features []Features, p Params) []int {
	p = p.withDefaults()
	out := append([]int(nil), assign...)

	for i := 1; i < len(assign)-1; i++ {
		if i >= len(features) {
			break
		}
		prev, curr, next := assign[i-1], assign[i], assign[i+1]
		f := features[i]

		switch {
		case prev == next && curr != prev && f.Confidence < p.BlipMaxConfidence:
			out[i] = prev
		case prev != curr && curr != next &&
			f.Duration < p.ShortTurnMaxDuration && f.Confidence < p.ShortTurnMaxConfidence:
			out[i] = prev
		}
	}

	return out
}
