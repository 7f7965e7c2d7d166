package entity

import (
	"encoding/json"
	"fmt"
)

// Likelihood is the ordinal confidence scale returned by the safe-search
// classifier. Comparisons must use the numeric rank; the names do not sort
// lexically in severity order.
type Likelihood int

const (
	LikelihoodUnknown Likelihood = iota
	LikelihoodVeryUnlikely
	LikelihoodUnlikely
	LikelihoodPossible
	LikelihoodLikely
	LikelihoodVeryLikely
)

var likelihoodNames = [...]string{
	"UNKNOWN",
	"VERY_UNLIKELY",
	"UNLIKELY",
	"POSSIBLE",
	"LIKELY",
	"VERY_LIKELY",
}

func (l Likelihood) String() string {
	if l < LikelihoodUnknown || l > LikelihoodVeryLikely {
		return fmt.Sprintf("Likelihood(%d)", int(l))
	}
	return likelihoodNames[l]
}

// ParseLikelihood maps a classifier likelihood name onto the ordinal scale.
func ParseLikelihood(name string) (Likelihood, error) {
	for i, n := range likelihoodNames {
		if n == name {
			return Likelihood(i), nil
		}
	}
	return LikelihoodUnknown, fmt.Errorf("unknown likelihood %q", name)
}

// MaxLikelihood returns the higher-ranked of the two.
func MaxLikelihood(a, b Likelihood) Likelihood {
	if b > a {
		return b
	}
	return a
}

func (l Likelihood) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

func (l *Likelihood) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	parsed, err := ParseLikelihood(name)
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
