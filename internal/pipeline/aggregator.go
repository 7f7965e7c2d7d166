package pipeline

import (
	"fmt"

	"github.com/safeview/safeview-audit-service/internal/domain/entity"
)

// Aggregator folds the ordered stream of per-frame results into the
// VideoSummary. It enforces strict index order and freezes the summary on
// finalization.
type Aggregator struct {
	summary   *entity.VideoSummary
	nextIndex int
	finalized bool
}

func NewAggregator(videoID string, intervalSeconds float64) *Aggregator {
	return &Aggregator{summary: entity.NewVideoSummary(videoID, intervalSeconds)}
}

// Add records a successfully scored frame: running maxima first, then the
// per-frame flag decision.
func (a *Aggregator) Add(fs entity.FrameScore) error {
	if err := a.checkOrder(fs.Index); err != nil {
		return err
	}
	a.summary.Observe(fs)
	return nil
}

// AddError records an error marker for a frame whose scoring failed.
func (a *Aggregator) AddError(index int, timestampSeconds float64, msg string) error {
	if err := a.checkOrder(index); err != nil {
		return err
	}
	a.summary.RecordError(index, timestampSeconds, msg)
	return nil
}

func (a *Aggregator) checkOrder(index int) error {
	if a.finalized {
		return fmt.Errorf("aggregator already finalized")
	}
	if index != a.nextIndex {
		return fmt.Errorf("out-of-order frame %d, expected %d", index, a.nextIndex)
	}
	a.nextIndex++
	return nil
}

// Finalize freezes and returns the summary.
func (a *Aggregator) Finalize() *entity.VideoSummary {
	a.finalized = true
	return a.summary
}
