package pipeline

import (
	"context"
	"testing"

	"github.com/safeview/safeview-audit-service/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticClassifier struct {
	scores entity.CategoryScores
	err    error
}

func (c *staticClassifier) Classify(_ context.Context, _ []byte) (entity.CategoryScores, error) {
	return c.scores, c.err
}

func TestScorerMissingCategoryIsScoringError(t *testing.T) {
	partial := scoresWith(entity.LikelihoodVeryUnlikely, nil)
	delete(partial, entity.CategorySpoof)

	scorer := NewScorer(&staticClassifier{scores: partial})
	_, err := scorer.Score(context.Background(), Frame{Index: 4})

	require.Error(t, err)
	var serr *ScoringError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, 4, serr.FrameIndex)
	assert.Contains(t, serr.Reason, "spoof")
}

func TestScorerPropagatesFrameMetadata(t *testing.T) {
	scorer := NewScorer(&staticClassifier{scores: scoresWith(entity.LikelihoodUnlikely, nil)})
	score, err := scorer.Score(context.Background(), Frame{Index: 7, TimestampSeconds: 3.5})

	require.NoError(t, err)
	assert.Equal(t, 7, score.Index)
	assert.Equal(t, 3.5, score.TimestampSeconds)
	assert.Equal(t, entity.LikelihoodUnlikely, score.Scores[entity.CategoryRacy])
}
