package pipeline

import (
	"context"
	"fmt"
	"testing"

	"github.com/safeview/safeview-audit-service/internal/domain/entity"
	"github.com/safeview/safeview-audit-service/internal/domain/port"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSource struct {
	rate  float64
	total int
	err   error

	opened []*fakeStream
}

func (f *fakeSource) Open(_ context.Context, _ string) (port.FrameStream, error) {
	if f.err != nil {
		return nil, f.err
	}
	stream := &fakeStream{rate: f.rate, total: f.total}
	f.opened = append(f.opened, stream)
	return stream, nil
}

// scriptedClassifier answers per frame index, using the deterministic
// frame payloads produced by fakeStream.
type scriptedClassifier struct {
	overrides map[int]entity.CategoryScores
	failAt    map[int]error
	panicAt   int
	calls     int
}

func newScriptedClassifier() *scriptedClassifier {
	return &scriptedClassifier{
		overrides: map[int]entity.CategoryScores{},
		failAt:    map[int]error{},
		panicAt:   -1,
	}
}

func (c *scriptedClassifier) Classify(_ context.Context, image []byte) (entity.CategoryScores, error) {
	var idx int
	if _, err := fmt.Sscanf(string(image), "frame-%d", &idx); err != nil {
		return nil, fmt.Errorf("unexpected frame payload %q", image)
	}
	c.calls++

	if idx == c.panicAt {
		panic("classifier blew up")
	}
	if err, ok := c.failAt[idx]; ok {
		return nil, err
	}
	if scores, ok := c.overrides[idx]; ok {
		return scores, nil
	}
	return scoresWith(entity.LikelihoodVeryUnlikely, nil), nil
}

func TestAnalyzerEndToEnd(t *testing.T) {
	// 10 frames sampled at 1-second intervals; frame 5 has adult=POSSIBLE.
	source := &fakeSource{rate: 1, total: 10}
	classifier := newScriptedClassifier()
	classifier.overrides[5] = scoresWith(entity.LikelihoodVeryUnlikely, map[entity.Category]entity.Likelihood{
		entity.CategoryAdult: entity.LikelihoodPossible,
	})

	analyzer := NewAnalyzer(source, classifier, 1.0, zap.NewNop())
	summary, err := analyzer.Run(context.Background(), "v.mp4", "v.mp4")
	require.NoError(t, err)

	assert.Equal(t, 10, summary.TotalFramesAnalyzed)
	assert.Equal(t, entity.LikelihoodPossible, summary.Maxima[entity.CategoryAdult])
	for _, c := range entity.Categories() {
		if c == entity.CategoryAdult {
			continue
		}
		assert.Equal(t, entity.LikelihoodVeryUnlikely, summary.Maxima[c])
	}
	require.Len(t, summary.Flagged, 1)
	assert.Equal(t, 5, summary.Flagged[0].Index)
	assert.Equal(t, 5.0, summary.Flagged[0].TimestampSeconds)
	assert.Equal(t, entity.OutcomeFlagged, summary.Outcome())
	assert.True(t, source.opened[0].closed, "decoder must be released")
}

func TestAnalyzerErrorContainment(t *testing.T) {
	source := &fakeSource{rate: 1, total: 10}
	classifier := newScriptedClassifier()
	classifier.failAt[3] = fmt.Errorf("service quota exceeded")
	classifier.overrides[7] = scoresWith(entity.LikelihoodVeryUnlikely, map[entity.Category]entity.Likelihood{
		entity.CategoryViolence: entity.LikelihoodLikely,
	})

	analyzer := NewAnalyzer(source, classifier, 1.0, zap.NewNop())
	summary, err := analyzer.Run(context.Background(), "v.mp4", "v.mp4")
	require.NoError(t, err)

	assert.Equal(t, 10, summary.TotalFramesAnalyzed)
	assert.NotEmpty(t, summary.FrameResults[3].Error)
	assert.Contains(t, summary.FrameResults[3].Error, "quota")
	assert.Equal(t, entity.LikelihoodLikely, summary.Maxima[entity.CategoryViolence])
	require.Len(t, summary.Flagged, 1)
	assert.Equal(t, 7, summary.Flagged[0].Index)
}

func TestAnalyzerContainsClassifierPanic(t *testing.T) {
	source := &fakeSource{rate: 1, total: 5}
	classifier := newScriptedClassifier()
	classifier.panicAt = 2

	analyzer := NewAnalyzer(source, classifier, 1.0, zap.NewNop())
	summary, err := analyzer.Run(context.Background(), "v.mp4", "v.mp4")
	require.NoError(t, err)

	assert.Equal(t, 5, summary.TotalFramesAnalyzed)
	assert.Contains(t, summary.FrameResults[2].Error, "panic")
	assert.Equal(t, entity.OutcomeClean, summary.Outcome())
}

func TestAnalyzerIdempotence(t *testing.T) {
	run := func() *entity.VideoSummary {
		source := &fakeSource{rate: 2, total: 20}
		classifier := newScriptedClassifier()
		classifier.overrides[4] = scoresWith(entity.LikelihoodVeryUnlikely, map[entity.Category]entity.Likelihood{
			entity.CategoryRacy: entity.LikelihoodVeryLikely,
		})
		analyzer := NewAnalyzer(source, classifier, 1.0, zap.NewNop())
		summary, err := analyzer.Run(context.Background(), "v.mp4", "v.mp4")
		require.NoError(t, err)
		return summary
	}

	a, b := run(), run()
	assert.Equal(t, a.TotalFramesAnalyzed, b.TotalFramesAnalyzed)
	assert.Equal(t, a.Maxima, b.Maxima)
	assert.Equal(t, a.Flagged, b.Flagged)
	assert.Equal(t, a.FrameResults, b.FrameResults)
}

func TestAnalyzerEmptyVideo(t *testing.T) {
	source := &fakeSource{rate: 30, total: 0}
	analyzer := NewAnalyzer(source, newScriptedClassifier(), 1.0, zap.NewNop())

	summary, err := analyzer.Run(context.Background(), "empty.mp4", "empty.mp4")
	require.NoError(t, err)

	assert.Zero(t, summary.TotalFramesAnalyzed)
	assert.Empty(t, summary.Flagged)
	assert.Equal(t, entity.OutcomeClean, summary.Outcome())
	for _, c := range entity.Categories() {
		assert.Equal(t, entity.LikelihoodVeryUnlikely, summary.Maxima[c])
	}
}

func TestAnalyzerSourceUnavailable(t *testing.T) {
	source := &fakeSource{err: fmt.Errorf("%w: no such file", port.ErrSourceUnavailable)}
	analyzer := NewAnalyzer(source, newScriptedClassifier(), 1.0, zap.NewNop())

	summary, err := analyzer.Run(context.Background(), "missing.mp4", "missing.mp4")
	require.Error(t, err)
	assert.ErrorIs(t, err, port.ErrSourceUnavailable)
	assert.Nil(t, summary, "no partial summary on a fatal source failure")
}

func TestAnalyzerFlagSinkReceivesFlaggedFrames(t *testing.T) {
	source := &fakeSource{rate: 1, total: 6}
	classifier := newScriptedClassifier()
	classifier.overrides[2] = scoresWith(entity.LikelihoodVeryUnlikely, map[entity.Category]entity.Likelihood{
		entity.CategoryAdult: entity.LikelihoodVeryLikely,
	})

	var captured []int
	sink := func(_ context.Context, frame Frame, score entity.FrameScore) error {
		assert.Equal(t, frame.Index, score.Index)
		captured = append(captured, frame.Index)
		return nil
	}

	analyzer := NewAnalyzer(source, classifier, 1.0, zap.NewNop(), WithFlagSink(sink))
	summary, err := analyzer.Run(context.Background(), "v.mp4", "v.mp4")
	require.NoError(t, err)

	assert.Equal(t, []int{2}, captured)
	require.Len(t, summary.Flagged, 1)
}

func TestAnalyzerFlagSinkFailureIsNonFatal(t *testing.T) {
	source := &fakeSource{rate: 1, total: 3}
	classifier := newScriptedClassifier()
	classifier.overrides[0] = scoresWith(entity.LikelihoodPossible, nil)

	sink := func(_ context.Context, _ Frame, _ entity.FrameScore) error {
		return fmt.Errorf("evidence bucket offline")
	}

	analyzer := NewAnalyzer(source, classifier, 1.0, zap.NewNop(), WithFlagSink(sink))
	summary, err := analyzer.Run(context.Background(), "v.mp4", "v.mp4")
	require.NoError(t, err)
	assert.Len(t, summary.Flagged, 1)
}
