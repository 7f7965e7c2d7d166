package port

import (
	"context"

	"github.com/safeview/safeview-audit-service/internal/domain/entity"
)

// SafetyClassifier scores one image for safe-search content. A successful
// result always carries all five categories; a partial response is an error.
type SafetyClassifier interface {
	Classify(ctx context.Context, image []byte) (entity.CategoryScores, error)
}
