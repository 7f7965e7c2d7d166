package entity

import (
	"time"

	"github.com/google/uuid"
)

type JobStatus string

const (
	JobStatusPending    JobStatus = "PENDING"
	JobStatusProcessing JobStatus = "PROCESSING"
	JobStatusCompleted  JobStatus = "COMPLETED"
	JobStatusFailed     JobStatus = "FAILED"
)

// AuditJob tracks one video through the audit pipeline, including retry
// accounting for the worker mode.
type AuditJob struct {
	ID              uuid.UUID
	UserID          string
	VideoKey        string
	ReportKey       string
	Status          JobStatus
	Outcome         RunOutcome
	FramesAnalyzed  int
	FlaggedFrames   int
	FileSize        int64
	IntervalSeconds float64
	Attempt         int
	MaxAttempts     int
	ErrorMessage    string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	CompletedAt     *time.Time
}

func NewAuditJob(userID, videoKey string, fileSize int64, intervalSeconds float64, maxAttempts int) *AuditJob {
	now := time.Now().UTC()
	return &AuditJob{
		ID:              uuid.New(),
		UserID:          userID,
		VideoKey:        videoKey,
		FileSize:        fileSize,
		IntervalSeconds: intervalSeconds,
		Status:          JobStatusPending,
		Attempt:         0,
		MaxAttempts:     maxAttempts,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func (j *AuditJob) MarkProcessing() {
	j.Status = JobStatusProcessing
	j.Attempt++
	j.UpdatedAt = time.Now().UTC()
}

func (j *AuditJob) MarkCompleted(reportKey string, summary *VideoSummary) {
	now := time.Now().UTC()
	j.Status = JobStatusCompleted
	j.ReportKey = reportKey
	j.Outcome = summary.Outcome()
	j.FramesAnalyzed = summary.TotalFramesAnalyzed
	j.FlaggedFrames = len(summary.Flagged)
	j.UpdatedAt = now
	j.CompletedAt = &now
}

func (j *AuditJob) MarkFailed(errMsg string) {
	j.Status = JobStatusFailed
	j.ErrorMessage = errMsg
	j.UpdatedAt = time.Now().UTC()
}

func (j *AuditJob) CanRetry() bool {
	return j.Attempt < j.MaxAttempts
}
