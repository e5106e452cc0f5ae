package diarization

import (
	"context"
	"fmt"
	"time"
)

// Assign runs the full pipeline. A fault inside the pipeline degrades to a
// single-speaker result instead of propagating.
func (d *implDiarizer) Assign(ctx context.Context, segments []Segment) (res Result) {
	startTime := time.Now()

	defer func() {
		if r := recover(); r != nil {
			d.logger.Warn(ctx, "Speaker assignment failed, using single speaker: %v", r)
			res = SingleSpeaker(len(segments), d.params.LabelPool)
		}
	}()

	res = d.run(segments, d.params)

	d.logger.Debug(ctx, "Assigned %d segments to %d clusters in %s",
		len(segments), res.ClusterCount, time.Since(startTime))
	return res
}

// Run executes extraction, clustering, merging, smoothing, refinement and
// labeling on segments.
func Run(segments []Segment, p Params) Result {
	p = p.withDefaults()

	features := ExtractFeatures(segments)
	clusters := MergeSmallClusters(BuildClusters(features, p), p)

	ids := Flatten(clusters, len(segments))
	ids = Smooth(ids, features, p)
	ids = RefineTransitions(ids, features, p)

	if len(ids) != len(segments) {
		panic(fmt.Sprintf("assignment length %d does not match %d segments", len(ids), len(segments)))
	}

	labels := Label(ids, p.LabelPool)
	assignments := make([]Assignment, len(labels))
	for i, l := range labels {
		assignments[i] = Assignment{SegmentIndex: i, SpeakerLabel: l}
	}

	return Result{
		Assignments:  assignments,
		ClusterIDs:   ids,
		ClusterCount: len(clusters),
	}
}

// SingleSpeaker labels n segments with the first label of the pool.
func SingleSpeaker(n int, pool []string) Result {
	if len(pool) == 0 {
		pool = DefaultLabelPool
	}
	assignments := make([]Assignment, n)
	for i := range assignments {
		assignments[i] = Assignment{SegmentIndex: i, SpeakerLabel: pool[0]}
	}
	clusterCount := 0
	if n > 0 {
		clusterCount = 1
	}
	return Result{
		Assignments:  assignments,
		ClusterIDs:   make([]int, n),
		ClusterCount: clusterCount,
		Fallback:     true,
	}
}
