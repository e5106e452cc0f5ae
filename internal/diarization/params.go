package diarization

// Tunables of the assignment pipeline.
const (
	DefaultSimilarityThreshold    = 0.65
	DefaultMinClusterSize         = 2
	DefaultHistoryDecay           = 0.9
	DefaultSmoothingWindow        = 5
	DefaultSmoothingMajority      = 0.6
	DefaultSmoothingMinConfidence = 0.7
	DefaultBlipMaxConfidence      = 0.8
	DefaultShortTurnMaxDuration   = 2.0
	DefaultShortTurnMaxConfidence = 0.9
)

// DefaultLabelPool is the fixed set of speaker names. Cluster ids wrap around it,
// so more than five clusters share labels.
var DefaultLabelPool = []string{"Speaker A", "Speaker B", "Speaker C", "Speaker D", "Speaker E"}

// Params holds the thresholds used by every stage. A zero field takes its
// default, so zero itself is not a usable value for any of them.
type Params struct {
	SimilarityThreshold    float64
	MinClusterSize         int
	HistoryDecay           float64
	SmoothingWindow        int
	SmoothingMajority      float64
	SmoothingMinConfidence float64
	BlipMaxConfidence      float64
	ShortTurnMaxDuration   float64
	ShortTurnMaxConfidence float64
	LabelPool              []string
}

// DefaultParams returns the production thresholds.
func DefaultParams() Params {
	return Params{
		SimilarityThreshold:    DefaultSimilarityThreshold,
		MinClusterSize:         DefaultMinClusterSize,
		HistoryDecay:           DefaultHistoryDecay,
		SmoothingWindow:        DefaultSmoothingWindow,
		SmoothingMajority:      DefaultSmoothingMajority,
		SmoothingMinConfidence: DefaultSmoothingMinConfidence,
		BlipMaxConfidence:      DefaultBlipMaxConfidence,
		ShortTurnMaxDuration:   DefaultShortTurnMaxDuration,
		ShortTurnMaxConfidence: DefaultShortTurnMaxConfidence,
		LabelPool:              DefaultLabelPool,
	}
}

func (p Params) withDefaults() Params {
	d := DefaultParams()
	if p.SimilarityThreshold == 0 {
		p.SimilarityThreshold = d.SimilarityThreshold
	}
	if p.MinClusterSize == 0 {
		p.MinClusterSize = d.MinClusterSize
	}
	if p.HistoryDecay == 0 {
		p.HistoryDecay = d.HistoryDecay
	}
	if p.SmoothingWindow == 0 {
		p.SmoothingWindow = d.SmoothingWindow
	}
	if p.SmoothingMajority == 0 {
		p.SmoothingMajority = d.SmoothingMajority
	}
	if p.SmoothingMinConfidence == 0 {
		p.SmoothingMinConfidence = d.SmoothingMinConfidence
	}
	if p.BlipMaxConfidence == 0 {
		p.BlipMaxConfidence = d.BlipMaxConfidence
	}
	if p.ShortTurnMaxDuration == 0 {
		p.ShortTurnMaxDuration = d.ShortTurnMaxDuration
	}
	if p.ShortTurnMaxConfidence == 0 {
		p.ShortTurnMaxConfidence = d.ShortTurnMaxConfidence
	}
	if len(p.LabelPool) == 0 {
		p.LabelPool = d.LabelPool
	}
	return p
}
