package pipeline

import (
	"context"
	"fmt"

	"github.com/safeview/safeview-audit-service/internal/domain/entity"
	"github.com/safeview/safeview-audit-service/internal/domain/port"
)

// ScoringError marks a single frame whose classification failed. It is
// recovered locally: the frame gets an error marker and the run continues.
type ScoringError struct {
	FrameIndex int
	Reason     string
}

func (e *ScoringError) Error() string {
	return fmt.Sprintf("scoring frame %d: %s", e.FrameIndex, e.Reason)
}

// Scorer submits one frame at a time to the safety classifier and shapes the
// result into a FrameScore carrying all five categories.
type Scorer struct {
	classifier port.SafetyClassifier
}

func NewScorer(classifier port.SafetyClassifier) *Scorer {
	return &Scorer{classifier: classifier}
}

// Score classifies one frame. Every failure mode, including a panic inside
// the classifier, comes back as a *ScoringError so one bad frame never
// aborts a batch run.
func (sc *Scorer) Score(ctx context.Context, frame Frame) (score entity.FrameScore, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &ScoringError{FrameIndex: frame.Index, Reason: fmt.Sprintf("panic: %v", r)}
		}
	}()

	scores, cerr := sc.classifier.Classify(ctx, frame.Image)
	if cerr != nil {
		return entity.FrameScore{}, &ScoringError{FrameIndex: frame.Index, Reason: cerr.Error()}
	}

	for _, c := range entity.Categories() {
		if _, ok := scores[c]; !ok {
			return entity.FrameScore{}, &ScoringError{
				FrameIndex: frame.Index,
				Reason:     fmt.Sprintf("classifier response missing category %q", c),
			}
		}
	}

	return entity.FrameScore{
		Index:            frame.Index,
		TimestampSeconds: frame.TimestampSeconds,
		Scores:           scores,
	}, nil
}
