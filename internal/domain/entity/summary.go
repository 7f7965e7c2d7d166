package entity

import "time"

// RunOutcome is the terminal status of a completed analysis run.
type RunOutcome string

const (
	OutcomeClean   RunOutcome = "clean"
	OutcomeFlagged RunOutcome = "flagged"
)

// CategoryScores maps every category to its likelihood for one frame.
type CategoryScores map[Category]Likelihood

// Clone returns an independent copy of the score map.
func (cs CategoryScores) Clone() CategoryScores {
	out := make(CategoryScores, len(cs))
	for c, l := range cs {
		out[c] = l
	}
	return out
}

// FrameScore is the immutable scoring result for one sampled frame.
type FrameScore struct {
	Index            int
	TimestampSeconds float64
	Scores           CategoryScores
}

// ShouldFlag reports whether this frame's own scores meet the review
// threshold: any flaggable category at POSSIBLE or above.
func (fs FrameScore) ShouldFlag() bool {
	for _, c := range FlaggableCategories() {
		if fs.Scores[c] >= LikelihoodPossible {
			return true
		}
	}
	return false
}

// FrameResult is one entry of the ordered per-frame result sequence: either a
// score or an error marker for a frame whose classification failed.
type FrameResult struct {
	Index            int            `json:"frame_index"`
	TimestampSeconds float64        `json:"timestamp_seconds"`
	Scores           CategoryScores `json:"scores,omitempty"`
	Error            string         `json:"error,omitempty"`
}

// FlagRecord marks a frame that met the flag predicate when it was scored.
type FlagRecord struct {
	Index            int            `json:"frame_index"`
	TimestampSeconds float64        `json:"timestamp_seconds"`
	Scores           CategoryScores `json:"reasons"`
}

// VideoSummary accumulates per-frame results into the video-level verdict.
// It has a single writer during a run and is read-only afterwards.
type VideoSummary struct {
	VideoID             string
	IntervalSeconds     float64
	AnalyzedAt          time.Time
	TotalFramesAnalyzed int
	FrameResults        []FrameResult
	Maxima              CategoryScores
	Flagged             []FlagRecord
}

// NewVideoSummary initializes the per-category maxima to VERY_UNLIKELY, the
// "no evidence of concern" floor. UNKNOWN is not used as the floor so that a
// frame scored UNKNOWN can never mask a true positive found later.
func NewVideoSummary(videoID string, intervalSeconds float64) *VideoSummary {
	maxima := make(CategoryScores, len(Categories()))
	for _, c := range Categories() {
		maxima[c] = LikelihoodVeryUnlikely
	}
	return &VideoSummary{
		VideoID:         videoID,
		IntervalSeconds: intervalSeconds,
		AnalyzedAt:      time.Now().UTC(),
		Maxima:          maxima,
	}
}

// Observe records one successfully scored frame: the running maxima are
// raised first, then the frame is checked against the flag predicate.
func (s *VideoSummary) Observe(fs FrameScore) {
	s.TotalFramesAnalyzed++
	s.FrameResults = append(s.FrameResults, FrameResult{
		Index:            fs.Index,
		TimestampSeconds: fs.TimestampSeconds,
		Scores:           fs.Scores,
	})

	for _, c := range Categories() {
		s.Maxima[c] = MaxLikelihood(s.Maxima[c], fs.Scores[c])
	}

	if fs.ShouldFlag() {
		s.Flagged = append(s.Flagged, FlagRecord{
			Index:            fs.Index,
			TimestampSeconds: fs.TimestampSeconds,
			Scores:           fs.Scores.Clone(),
		})
	}
}

// RecordError retains an error marker for a frame whose scoring failed. The
// frame counts toward the analyzed total but contributes to neither the
// maxima nor the flag list.
func (s *VideoSummary) RecordError(index int, timestampSeconds float64, msg string) {
	s.TotalFramesAnalyzed++
	s.FrameResults = append(s.FrameResults, FrameResult{
		Index:            index,
		TimestampSeconds: timestampSeconds,
		Error:            msg,
	})
}

// Outcome reports "flagged" when at least one frame met the flag predicate.
func (s *VideoSummary) Outcome() RunOutcome {
	if len(s.Flagged) > 0 {
		return OutcomeFlagged
	}
	return OutcomeClean
}
