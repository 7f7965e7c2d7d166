package entity

import "github.com/google/uuid"

// AuditRequestMessage is the inbound message from the video.audit queue.
type AuditRequestMessage struct {
	JobID           uuid.UUID `json:"job_id"`
	UserID          string    `json:"user_id"`
	VideoKey        string    `json:"video_key"`
	FileSize        int64     `json:"file_size"`
	IntervalSeconds float64   `json:"interval_seconds,omitempty"`
	UserEmail       string    `json:"user_email,omitempty"`
}

// AuditStatusMessage is the outbound message published to the
// video.audit.status queue.
type AuditStatusMessage struct {
	JobID          uuid.UUID  `json:"job_id"`
	UserID         string     `json:"user_id"`
	Status         JobStatus  `json:"status"`
	Outcome        RunOutcome `json:"outcome,omitempty"`
	VideoKey       string     `json:"video_key"`
	ReportKey      string     `json:"report_key,omitempty"`
	FramesAnalyzed int        `json:"frames_analyzed,omitempty"`
	FlaggedFrames  int        `json:"flagged_frames"`
	ErrorMessage   string     `json:"error_message,omitempty"`
	Attempt        int        `json:"attempt"`
	MaxAttempts    int        `json:"max_attempts"`
}
