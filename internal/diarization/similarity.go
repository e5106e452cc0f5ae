package diarization

import "math"

// Normalization floors for robustSim.
const (
	durationScale       = 10.0
	probabilityScale    = 1.0
	logprobScale        = 2.0
	charPerSecondScale  = 5.0
	wordsPerMinuteScale = 100.0
	sentenceLengthScale = 20.0
)

// Weights of the combined cluster score.
const (
	acousticWeight   = 0.4
	linguisticWeight = 0.4
	temporalWeight   = 0.2
)

// robustSim is 1 - |a-b| / max(a, b, scale), or 1 when the denominator is zero.
func robustSim(a, b, scale float64) float64 {
	denom := math.Max(math.Max(a, b), scale)
	if denom == 0 {
		return 1.0
	}
	return 1 - math.Abs(a-b)/denom
}

func acousticSimilarity(a, b Features) float64 {
	return 0.25*robustSim(a.Duration, b.Duration, durationScale) +
		0.25*robustSim(a.NoSpeechProb, b.NoSpeechProb, probabilityScale) +
		0.20*robustSim(math.Abs(a.AvgLogprob), math.Abs(b.AvgLogprob), logprobScale) +
		0.15*robustSim(a.Confidence, b.Confidence, probabilityScale) +
		0.15*robustSim(a.QualityScore, b.QualityScore, probabilityScale)
}

func linguisticSimilarity(a, b Features) float64 {
	return 0.30*robustSim(a.CharPerSecond, b.CharPerSecond, charPerSecondScale) +
		0.30*robustSim(a.WordsPerMinute, b.WordsPerMinute, wordsPerMinuteScale) +
		0.25*styleAgreement(a, b) +
		0.15*robustSim(a.AverageSentenceLength, b.AverageSentenceLength, sentenceLengthScale)
}

// styleAgreement is the fraction of the four stylistic markers on which a and b agree.
func styleAgreement(a, b Features) float64 {
	pairs := [4][2]bool{
		{a.HasPoliteForm, b.HasPoliteForm},
		{a.HasCasualForm, b.HasCasualForm},
		{a.HasQuestionMark, b.HasQuestionMark},
		{a.HasExclamation, b.HasExclamation},
	}
	same := 0
	for _, p := range pairs {
		if p[0] == p[1] {
			same++
		}
	}
	return float64(same) / float64(len(pairs))
}

// temporalCompatibility scores the gap since the cluster last spoke.
func temporalCompatibility(gap float64) float64 {
	switch {
	case gap < 5:
		return 0.3
	case gap <= 60:
		return 1.0
	case gap <= 300:
		return 0.7
	default:
		return 0.4
	}
}

func clusterScore(f Features, c Cluster) float64 {
	temporal := 1.0
	if c.Size() > 0 {
		temporal = temporalCompatibility(f.TimePosition - c.LastSegmentTime)
	}
	return acousticWeight*acousticSimilarity(f, c.Average) +
		linguisticWeight*linguisticSimilarity(f, c.Average) +
		temporalWeight*temporal
}
