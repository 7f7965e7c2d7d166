package vision

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/safeview/safeview-audit-service/internal/domain/entity"
	"go.uber.org/zap"
	"google.golang.org/api/option"
	vision "google.golang.org/api/vision/v1"
)

// Classifier scores images with the Cloud Vision safe-search endpoint. It
// implements port.SafetyClassifier.
type Classifier struct {
	svc    *vision.Service
	logger *zap.Logger
}

type ClassifierConfig struct {
	// CredentialsFile is a service-account JSON path. Optional when the
	// ambient GOOGLE_APPLICATION_CREDENTIALS is set or APIKey is given.
	CredentialsFile string
	APIKey          string
}

func NewClassifier(ctx context.Context, cfg ClassifierConfig, logger *zap.Logger) (*Classifier, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}

	svc, err := vision.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create vision service: %w", err)
	}
	return &Classifier{svc: svc, logger: logger}, nil
}

func (c *Classifier) Classify(ctx context.Context, image []byte) (entity.CategoryScores, error) {
	req := &vision.BatchAnnotateImagesRequest{
		Requests: []*vision.AnnotateImageRequest{{
			Image:    &vision.Image{Content: base64.StdEncoding.EncodeToString(image)},
			Features: []*vision.Feature{{Type: "SAFE_SEARCH_DETECTION"}},
		}},
	}

	resp, err := c.svc.Images.Annotate(req).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("annotate image: %w", err)
	}
	if len(resp.Responses) == 0 {
		return nil, fmt.Errorf("empty annotate response")
	}

	r := resp.Responses[0]
	if r.Error != nil {
		return nil, fmt.Errorf("vision api error %d: %s", r.Error.Code, r.Error.Message)
	}
	return mapAnnotation(r.SafeSearchAnnotation)
}

// mapAnnotation translates the API's likelihood names onto the ordinal
// scale. A missing annotation or category is an error, never a default.
func mapAnnotation(ann *vision.SafeSearchAnnotation) (entity.CategoryScores, error) {
	if ann == nil {
		return nil, fmt.Errorf("response has no safe-search annotation")
	}

	raw := map[entity.Category]string{
		entity.CategoryAdult:    ann.Adult,
		entity.CategorySpoof:    ann.Spoof,
		entity.CategoryMedical:  ann.Medical,
		entity.CategoryViolence: ann.Violence,
		entity.CategoryRacy:     ann.Racy,
	}

	scores := make(entity.CategoryScores, len(raw))
	for cat, name := range raw {
		if name == "" {
			return nil, fmt.Errorf("annotation missing category %q", cat)
		}
		l, err := entity.ParseLikelihood(name)
		if err != nil {
			return nil, fmt.Errorf("category %q: %w", cat, err)
		}
		scores[cat] = l
	}
	return scores, nil
}
