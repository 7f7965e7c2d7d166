package port

import (
	"context"

	"github.com/google/uuid"
	"github.com/safeview/safeview-audit-service/internal/domain/entity"
)

type AuditJobRepository interface {
	Create(ctx context.Context, job *entity.AuditJob) error
	Update(ctx context.Context, job *entity.AuditJob) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.AuditJob, error)
}
