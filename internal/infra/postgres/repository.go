package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/safeview/safeview-audit-service/internal/domain/entity"
)

type AuditJobRepository struct {
	pool *pgxpool.Pool
}

func NewAuditJobRepository(pool *pgxpool.Pool) *AuditJobRepository {
	return &AuditJobRepository{pool: pool}
}

func (r *AuditJobRepository) Create(ctx context.Context, job *entity.AuditJob) error {
	query := `
		INSERT INTO audit_jobs (
			id, user_id, video_key, report_key, status, outcome,
			frames_analyzed, flagged_frames, file_size, interval_seconds,
			attempt, max_attempts, error_message,
			created_at, updated_at, completed_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)`

	_, err := r.pool.Exec(ctx, query,
		job.ID, job.UserID, job.VideoKey, job.ReportKey,
		string(job.Status), string(job.Outcome),
		job.FramesAnalyzed, job.FlaggedFrames, job.FileSize, job.IntervalSeconds,
		job.Attempt, job.MaxAttempts, job.ErrorMessage,
		job.CreatedAt, job.UpdatedAt, job.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit job: %w", err)
	}
	return nil
}

func (r *AuditJobRepository) Update(ctx context.Context, job *entity.AuditJob) error {
	query := `
		UPDATE audit_jobs SET
			status=$2, outcome=$3, report_key=$4, frames_analyzed=$5,
			flagged_frames=$6, attempt=$7, error_message=$8,
			updated_at=$9, completed_at=$10
		WHERE id=$1`

	_, err := r.pool.Exec(ctx, query,
		job.ID, string(job.Status), string(job.Outcome), job.ReportKey,
		job.FramesAnalyzed, job.FlaggedFrames, job.Attempt, job.ErrorMessage,
		job.UpdatedAt, job.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("update audit job: %w", err)
	}
	return nil
}

func (r *AuditJobRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.AuditJob, error) {
	query := `
		SELECT id, user_id, video_key, report_key, status, outcome,
			frames_analyzed, flagged_frames, file_size, interval_seconds,
			attempt, max_attempts, error_message,
			created_at, updated_at, completed_at
		FROM audit_jobs WHERE id=$1`

	job := &entity.AuditJob{}
	var status, outcome string
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&job.ID, &job.UserID, &job.VideoKey, &job.ReportKey, &status, &outcome,
		&job.FramesAnalyzed, &job.FlaggedFrames, &job.FileSize, &job.IntervalSeconds,
		&job.Attempt, &job.MaxAttempts, &job.ErrorMessage,
		&job.CreatedAt, &job.UpdatedAt, &job.CompletedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("find audit job by id: %w", err)
	}
	job.Status = entity.JobStatus(status)
	job.Outcome = entity.RunOutcome(outcome)
	return job, nil
}
