package diarization

import (
	"math"
	"strings"
	"unicode/utf8"
)

// Cue tokens for the linguistic markers. Matching is a plain substring test.
var (
	questionCues    = []string{"?", "？"}
	exclamationCues = []string{"!", "！"}
	politeCues      = []string{"です", "ます", "ございます", "ください", "お願い"}
	casualCues      = []string{"だよ", "だね", "じゃん", "じゃない", "よね", "かな", "っけ", "ちゃう"}
	firstPersonCues = []string{"私", "わたし", "僕", "ぼく", "俺", "おれ"}
	secondPerson    = []string{"あなた", "君", "きみ", "お前", "おまえ", "あんた"}
)

const sentenceTerminators = "。．.！!？?"

// ExtractFeatures converts segments into feature vectors, one per segment.
func ExtractFeatures(segments []Segment) []Features {
	features := make([]Features, len(segments))
	for i, seg := range segments {
		features[i] = extract(i, seg)
	}
	return features
}

func extract(index int, seg Segment) Features {
	text := strings.TrimSpace(seg.Text)
	duration := seg.End - seg.Start

	textLength := float64(utf8.RuneCountInString(text))
	wordCount := float64(len(strings.Fields(text)))
	sentences := float64(countSentences(text))

	f := Features{
		Duration:        duration,
		NoSpeechProb:    seg.NoSpeechProb,
		AvgLogprob:      seg.AvgLogprob,
		Confidence:      1 - seg.NoSpeechProb,
		TextLength:      textLength,
		WordCount:       wordCount,
		SentenceCount:   sentences,
		QualityScore:    qualityScore(seg.NoSpeechProb, seg.AvgLogprob),
		TimePosition:    seg.Start,
		SegmentIndex:    index,
		HasQuestionMark: containsAny(text, questionCues),
		HasExclamation:  containsAny(text, exclamationCues),
		HasPoliteForm:   containsAny(text, politeCues),
		HasCasualForm:   containsAny(text, casualCues),
		HasFirstPerson:  containsAny(text, firstPersonCues),
		HasSecondPerson: containsAny(text, secondPerson),
	}

	if duration > 0 {
		f.CharPerSecond = textLength / duration
		f.WordsPerMinute = wordCount * 60 / duration
	}
	if sentences > 0 {
		f.AverageSentenceLength = textLength / sentences
	}
	return f
}

func qualityScore(noSpeechProb, avgLogprob float64) float64 {
	score := math.Max(0, 1-noSpeechProb)
	if math.Abs(avgLogprob) >= 1 {
		score *= 0.5
	}
	return score
}

// countSentences counts the non-blank pieces between sentence terminators.
func countSentences(text string) int {
	parts := strings.FieldsFunc(text, func(r rune) bool {
		return strings.ContainsRune(sentenceTerminators, r)
	})
	n := 0
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			n++
		}
	}
	return n
}

func containsAny(text string, cues []string) bool {
	for _, c := range cues {
		if strings.Contains(text, c) {
			return true
		}
	}
	return false
}
