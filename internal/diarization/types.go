package diarization

// Segment is one recognized span of speech as delivered by the transcriber.
// Callers must pass segments ordered by Start.
type Segment struct {
	Start        float64
	End          float64
	Text         string
	NoSpeechProb float64
	AvgLogprob   float64
}

// Features is the per-segment summary used for similarity scoring.
type Features struct {
	Duration              float64
	NoSpeechProb          float64
	AvgLogprob            float64
	Confidence            float64
	TextLength            float64
	WordCount             float64
	CharPerSecond         float64
	WordsPerMinute        float64
	SentenceCount         float64
	AverageSentenceLength float64
	QualityScore          float64
	TimePosition          float64
	SegmentIndex          int

	HasQuestionMark bool
	HasExclamation  bool
	HasPoliteForm   bool
	HasCasualForm   bool
	HasFirstPerson  bool
	HasSecondPerson bool
}

const (
	numericFeatureCount = 12
	flagFeatureCount    = 6
)

func (f Features) numeric() [numericFeatureCount]float64 {
	return [numericFeatureCount]float64{
		f.Duration,
		f.NoSpeechProb,
		f.AvgLogprob,
		f.Confidence,
		f.TextLength,
		f.WordCount,
		f.CharPerSecond,
		f.WordsPerMinute,
		f.SentenceCount,
		f.AverageSentenceLength,
		f.QualityScore,
		f.TimePosition,
	}
}

func (f *Features) setNumeric(v [numericFeatureCount]float64) {
	f.Duration = v[0]
	f.NoSpeechProb = v[1]
	f.AvgLogprob = v[2]
	f.Confidence = v[3]
	f.TextLength = v[4]
	f.WordCount = v[5]
	f.CharPerSecond = v[6]
	f.WordsPerMinute = v[7]
	f.SentenceCount = v[8]
	f.AverageSentenceLength = v[9]
	f.QualityScore = v[10]
	f.TimePosition = v[11]
}

func (f Features) flags() [flagFeatureCount]bool {
	return [flagFeatureCount]bool{
		f.HasQuestionMark,
		f.HasExclamation,
		f.HasPoliteForm,
		f.HasCasualForm,
		f.HasFirstPerson,
		f.HasSecondPerson,
	}
}

func (f *Features) setFlags(v [flagFeatureCount]bool) {
	f.HasQuestionMark = v[0]
	f.HasExclamation = v[1]
	f.HasPoliteForm = v[2]
	f.HasCasualForm = v[3]
	f.HasFirstPerson = v[4]
	f.HasSecondPerson = v[5]
}

// Assignment pairs a segment with its speaker label.
type Assignment struct {
	SegmentIndex int    `json:"segment_index"`
	SpeakerLabel string `json:"speaker"`
}

// Result is the output of one speaker assignment run.
type Result struct {
	Assignments  []Assignment
	ClusterIDs   []int
	ClusterCount int
	// Fallback is set when the pipeline faulted and every segment got the first label.
	Fallback bool
}

// Labels returns the speaker label of every segment in input order.
func (r Result) Labels() []string {
	labels := make([]string, len(r.Assignments))
	for i, a := range r.Assignments {
		labels[i] = a.SpeakerLabel
	}
	return labels
}
