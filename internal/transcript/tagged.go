package transcript

import (
	"fmt"
	"strings"

	"github.com/nguyentantai21042004/speaker-flow/internal/diarization"
)

// Tagged is a segment with its assigned speaker.
type Tagged struct {
	SegmentIndex int     `json:"segment_index"`
	Speaker      string  `json:"speaker"`
	Start        float64 `json:"start"`
	End          float64 `json:"end"`
	Text         string  `json:"text"`
}

// SpeakerText is everything one speaker said, in order.
type SpeakerText struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
}

// Tag joins segments with the assignments of res. Segments without an
// assignment are left out.
func Tag(segments []Segment, res diarization.Result) []Tagged {
	tagged := make([]Tagged, 0, len(res.Assignments))
	for _, a := range res.Assignments {
		if a.SegmentIndex < 0 || a.SegmentIndex >= len(segments) {
			continue
		}
		s := segments[a.SegmentIndex]
		tagged = append(tagged, Tagged{
			SegmentIndex: a.SegmentIndex,
			Speaker:      a.SpeakerLabel,
			Start:        s.Start,
			End:          s.End,
			Text:         strings.TrimSpace(s.Text),
		})
	}
	return tagged
}

// GroupBySpeaker concatenates each speaker's text, ordering speakers by first appearance.
func GroupBySpeaker(tagged []Tagged) []SpeakerText {
	index := make(map[string]int)
	var groups []SpeakerText

	for _, t := range tagged {
		if t.Text == "" {
			continue
		}
		i, ok := index[t.Speaker]
		if !ok {
			i = len(groups)
			index[t.Speaker] = i
			groups = append(groups, SpeakerText{Speaker: t.Speaker})
		}
		if groups[i].Text != "" {
			groups[i].Text += " "
		}
		groups[i].Text += t.Text
	}

	return groups
}

// RenderMarkdown renders a speaker-tagged transcript. Consecutive segments of
// the same speaker share one block.
func RenderMarkdown(title string, tagged []Tagged) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# %s\n", title))

	currentSpeaker := ""
	for i, t := range tagged {
		if i == 0 || t.Speaker != currentSpeaker {
			currentSpeaker = t.Speaker
			speaker := currentSpeaker
			if speaker == "" {
				speaker = "Unknown"
			}
			sb.WriteString(fmt.Sprintf("\n**%s** [%s]\n", speaker, formatTimestamp(t.Start)))
		}
		if t.Text == "" {
			continue
		}
		sb.WriteString(t.Text + "\n")
	}

	return sb.String()
}

func formatTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(seconds)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
