package entity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLikelihoodRankOrder(t *testing.T) {
	// The names do not sort lexically in severity order, so the ranks must.
	assert.True(t, LikelihoodUnknown < LikelihoodVeryUnlikely)
	assert.True(t, LikelihoodVeryUnlikely < LikelihoodUnlikely)
	assert.True(t, LikelihoodUnlikely < LikelihoodPossible)
	assert.True(t, LikelihoodPossible < LikelihoodLikely)
	assert.True(t, LikelihoodLikely < LikelihoodVeryLikely)

	// Lexical comparison inverts this pair; rank comparison must not.
	assert.True(t, "UNLIKELY" > "POSSIBLE")
	assert.True(t, LikelihoodUnlikely < LikelihoodPossible)
}

func TestParseLikelihood(t *testing.T) {
	tests := []struct {
		name    string
		want    Likelihood
		wantErr bool
	}{
		{name: "UNKNOWN", want: LikelihoodUnknown},
		{name: "VERY_UNLIKELY", want: LikelihoodVeryUnlikely},
		{name: "UNLIKELY", want: LikelihoodUnlikely},
		{name: "POSSIBLE", want: LikelihoodPossible},
		{name: "LIKELY", want: LikelihoodLikely},
		{name: "VERY_LIKELY", want: LikelihoodVeryLikely},
		{name: "possible", wantErr: true},
		{name: "", wantErr: true},
		{name: "MAYBE", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLikelihood(tt.name)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.name, got.String())
		})
	}
}

func TestMaxLikelihood(t *testing.T) {
	assert.Equal(t, LikelihoodPossible, MaxLikelihood(LikelihoodPossible, LikelihoodUnlikely))
	assert.Equal(t, LikelihoodPossible, MaxLikelihood(LikelihoodUnlikely, LikelihoodPossible))
	assert.Equal(t, LikelihoodVeryLikely, MaxLikelihood(LikelihoodVeryLikely, LikelihoodVeryLikely))
	// UNKNOWN ranks below everything, including the floor.
	assert.Equal(t, LikelihoodVeryUnlikely, MaxLikelihood(LikelihoodVeryUnlikely, LikelihoodUnknown))
}

func TestLikelihoodJSONRoundTrip(t *testing.T) {
	data, err := json.Marshal(LikelihoodLikely)
	require.NoError(t, err)
	assert.Equal(t, `"LIKELY"`, string(data))

	var l Likelihood
	require.NoError(t, json.Unmarshal([]byte(`"VERY_UNLIKELY"`), &l))
	assert.Equal(t, LikelihoodVeryUnlikely, l)

	assert.Error(t, json.Unmarshal([]byte(`"NOPE"`), &l))
}
