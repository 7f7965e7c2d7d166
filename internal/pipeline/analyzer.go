package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/safeview/safeview-audit-service/internal/domain/entity"
	"github.com/safeview/safeview-audit-service/internal/domain/port"
	"go.uber.org/zap"
)

// FlagSink receives the raw image of every flagged frame, for evidence
// persistence. Sink failures are logged and never affect the summary.
type FlagSink func(ctx context.Context, frame Frame, score entity.FrameScore) error

// Analyzer composes Sampler, Scorer and Aggregator into the sequential
// per-video pipeline: frames are sampled, scored and aggregated one at a
// time in index order.
type Analyzer struct {
	source     port.VideoSource
	classifier port.SafetyClassifier
	interval   float64
	flagSink   FlagSink
	logger     *zap.Logger
}

type AnalyzerOption func(*Analyzer)

func WithFlagSink(sink FlagSink) AnalyzerOption {
	return func(a *Analyzer) { a.flagSink = sink }
}

func NewAnalyzer(source port.VideoSource, classifier port.SafetyClassifier, intervalSeconds float64, logger *zap.Logger, opts ...AnalyzerOption) *Analyzer {
	a := &Analyzer{
		source:     source,
		classifier: classifier,
		interval:   intervalSeconds,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run analyzes one video and returns its frozen summary. Source-level
// failures abort the run with no summary; per-frame classification failures
// are contained as error markers.
func (a *Analyzer) Run(ctx context.Context, videoID, videoPath string) (*entity.VideoSummary, error) {
	stream, err := a.source.Open(ctx, videoPath)
	if err != nil {
		return nil, fmt.Errorf("open video %s: %w", videoPath, err)
	}

	sampler := NewSampler(stream, a.interval)
	defer sampler.Close()

	scorer := NewScorer(a.classifier)
	agg := NewAggregator(videoID, a.interval)

	a.logger.Info("starting analysis",
		zap.String("video_id", videoID),
		zap.Float64("frame_rate", stream.FrameRate()),
		zap.Int("stride", sampler.Stride()),
		zap.Float64("interval_seconds", a.interval),
	)

	for {
		frame, err := sampler.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("acquire frame: %w", err)
		}

		score, err := scorer.Score(ctx, frame)
		if err != nil {
			a.logger.Warn("frame scoring failed",
				zap.Int("frame_index", frame.Index),
				zap.Error(err),
			)
			if aggErr := agg.AddError(frame.Index, frame.TimestampSeconds, err.Error()); aggErr != nil {
				return nil, aggErr
			}
			continue
		}

		if err := agg.Add(score); err != nil {
			return nil, err
		}

		if score.ShouldFlag() {
			a.logger.Warn("frame flagged for review",
				zap.Int("frame_index", frame.Index),
				zap.Float64("timestamp_seconds", frame.TimestampSeconds),
			)
			if a.flagSink != nil {
				if err := a.flagSink(ctx, frame, score); err != nil {
					a.logger.Error("flagged frame sink failed",
						zap.Int("frame_index", frame.Index),
						zap.Error(err),
					)
				}
			}
		}
	}

	summary := agg.Finalize()
	a.logger.Info("analysis complete",
		zap.String("video_id", videoID),
		zap.Int("frames_analyzed", summary.TotalFramesAnalyzed),
		zap.Int("flagged_frames", len(summary.Flagged)),
		zap.String("outcome", string(summary.Outcome())),
	)
	return summary, nil
}
