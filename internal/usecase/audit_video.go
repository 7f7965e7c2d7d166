package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/safeview/safeview-audit-service/internal/domain/entity"
	"github.com/safeview/safeview-audit-service/internal/domain/port"
	"github.com/safeview/safeview-audit-service/internal/infra/metrics"
	"github.com/safeview/safeview-audit-service/internal/pipeline"
	"github.com/safeview/safeview-audit-service/internal/report"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// AuditVideoUseCase runs the full audit for one queued video: download, the
// sample/score/aggregate pipeline, evidence and report upload, job lifecycle
// bookkeeping.
type AuditVideoUseCase struct {
	repo       port.AuditJobRepository
	storage    port.EvidenceStorage
	source     port.VideoSource
	classifier port.SafetyClassifier
	publisher  port.StatusPublisher
	dlq        port.DLQPublisher
	notifier   port.FailureNotifier
	logger     *zap.Logger
	tempDir    string
	maxRetry   int
	interval   float64
}

type AuditVideoConfig struct {
	TempDir string
	// DefaultIntervalSeconds applies when the request message does not carry
	// its own sampling interval.
	DefaultIntervalSeconds float64
	MaxRetries             int
}

func NewAuditVideoUseCase(
	repo port.AuditJobRepository,
	storage port.EvidenceStorage,
	source port.VideoSource,
	classifier port.SafetyClassifier,
	publisher port.StatusPublisher,
	dlq port.DLQPublisher,
	notifier port.FailureNotifier,
	logger *zap.Logger,
	cfg AuditVideoConfig,
) *AuditVideoUseCase {
	return &AuditVideoUseCase{
		repo:       repo,
		storage:    storage,
		source:     source,
		classifier: classifier,
		publisher:  publisher,
		dlq:        dlq,
		notifier:   notifier,
		logger:     logger,
		tempDir:    cfg.TempDir,
		maxRetry:   cfg.MaxRetries,
		interval:   cfg.DefaultIntervalSeconds,
	}
}

func (uc *AuditVideoUseCase) Execute(ctx context.Context, rawMsg []byte) error {
	tracer := otel.Tracer("usecase")
	ctx, span := tracer.Start(ctx, "AuditVideoUseCase.Execute")
	defer span.End()

	totalTimer := time.Now()

	var msg entity.AuditRequestMessage
	if err := json.Unmarshal(rawMsg, &msg); err != nil {
		uc.logger.Error("failed to unmarshal message", zap.Error(err), zap.ByteString("body", rawMsg))
		_ = uc.dlq.PublishToDLQ(ctx, rawMsg, "unmarshal_error: "+err.Error())
		return nil
	}

	span.SetAttributes(
		attribute.String("job.id", msg.JobID.String()),
		attribute.String("job.video_key", msg.VideoKey),
	)

	log := uc.logger.With(zap.String("job_id", msg.JobID.String()), zap.String("video_key", msg.VideoKey))

	job, err := uc.repo.FindByID(ctx, msg.JobID)
	if err != nil {
		interval := msg.IntervalSeconds
		if interval <= 0 {
			interval = uc.interval
		}
		job = entity.NewAuditJob(msg.UserID, msg.VideoKey, msg.FileSize, interval, uc.maxRetry)
		job.ID = msg.JobID
		if err := uc.repo.Create(ctx, job); err != nil {
			log.Error("failed to create job record", zap.Error(err))
			return fmt.Errorf("create job: %w", err)
		}
	}

	if !job.CanRetry() {
		log.Warn("job exhausted retries, sending to DLQ")
		_ = uc.handlePermanentFailure(ctx, job, msg, rawMsg, "max retries exceeded")
		return nil
	}

	job.MarkProcessing()
	if err := uc.repo.Update(ctx, job); err != nil {
		log.Error("failed to update job to PROCESSING", zap.Error(err))
		return fmt.Errorf("update job: %w", err)
	}

	metrics.ActiveWorkers.Inc()
	defer metrics.ActiveWorkers.Dec()

	if err := uc.runAuditPipeline(ctx, job, msg, rawMsg, log); err != nil {
		return err
	}

	metrics.AuditsProcessedTotal.WithLabelValues("completed").Inc()
	metrics.AuditDuration.WithLabelValues("total").Observe(time.Since(totalTimer).Seconds())

	return nil
}

func (uc *AuditVideoUseCase) runAuditPipeline(
	ctx context.Context,
	job *entity.AuditJob,
	msg entity.AuditRequestMessage,
	rawMsg []byte,
	log *zap.Logger,
) error {
	tracer := otel.Tracer("usecase")

	workDir := filepath.Join(uc.tempDir, job.ID.String())
	if err := os.MkdirAll(workDir, 0755); err != nil {
		return fmt.Errorf("create workdir: %w", err)
	}
	defer os.RemoveAll(workDir)

	// Download video from object storage
	dlStart := time.Now()
	ctx2, spanDl := tracer.Start(ctx, "download_video")
	videoPath := filepath.Join(workDir, "input.mp4")
	if err := uc.storage.DownloadVideo(ctx2, msg.VideoKey, videoPath); err != nil {
		spanDl.End()
		log.Error("failed to download video", zap.Error(err))
		return uc.handleRetryableFailure(ctx, job, msg, rawMsg, "download_video: "+err.Error(), log)
	}
	spanDl.End()
	metrics.AuditDuration.WithLabelValues("download").Observe(time.Since(dlStart).Seconds())

	// Flagged frames go straight to the evidence bucket as they are found.
	evidencePrefix := fmt.Sprintf("%s/%s", job.UserID, job.ID.String())
	sink := func(ctx context.Context, frame pipeline.Frame, _ entity.FrameScore) error {
		key := fmt.Sprintf("%s/flagged_frame_%04d.jpg", evidencePrefix, frame.Index)
		return uc.storage.UploadFlaggedFrame(ctx, key, frame.Image)
	}

	// Sample, score and aggregate
	anStart := time.Now()
	ctx3, spanAn := tracer.Start(ctx, "analyze_video")
	analyzer := pipeline.NewAnalyzer(uc.source, uc.classifier, job.IntervalSeconds, log, pipeline.WithFlagSink(sink))
	summary, err := analyzer.Run(ctx3, msg.VideoKey, videoPath)
	if err != nil {
		spanAn.End()
		log.Error("video analysis failed", zap.Error(err))
		return uc.handleRetryableFailure(ctx, job, msg, rawMsg, "analyze_video: "+err.Error(), log)
	}
	spanAn.End()
	metrics.AuditDuration.WithLabelValues("analyze").Observe(time.Since(anStart).Seconds())
	recordFrameMetrics(summary)

	// Upload JSON report
	upStart := time.Now()
	ctx4, spanUp := tracer.Start(ctx, "upload_report")
	var buf bytes.Buffer
	if err := report.WriteJSON(&buf, summary); err != nil {
		spanUp.End()
		return uc.handleRetryableFailure(ctx, job, msg, rawMsg, "encode_report: "+err.Error(), log)
	}
	reportKey := fmt.Sprintf("%s/report.json", evidencePrefix)
	if err := uc.storage.UploadReport(ctx4, reportKey, &buf, int64(buf.Len())); err != nil {
		spanUp.End()
		log.Error("report upload failed", zap.Error(err))
		return uc.handleRetryableFailure(ctx, job, msg, rawMsg, "upload_report: "+err.Error(), log)
	}
	spanUp.End()
	metrics.AuditDuration.WithLabelValues("upload").Observe(time.Since(upStart).Seconds())

	// Mark completed
	job.MarkCompleted(reportKey, summary)
	if err := uc.repo.Update(ctx, job); err != nil {
		log.Error("failed to update job to COMPLETED", zap.Error(err))
		return fmt.Errorf("update job completed: %w", err)
	}

	uc.publishStatus(ctx, job, log)

	log.Info("audit completed",
		zap.Int("frames_analyzed", summary.TotalFramesAnalyzed),
		zap.Int("flagged_frames", len(summary.Flagged)),
		zap.String("outcome", string(summary.Outcome())),
		zap.String("report_key", reportKey),
	)

	return nil
}

func recordFrameMetrics(summary *entity.VideoSummary) {
	scoringErrors := 0
	for _, fr := range summary.FrameResults {
		if fr.Error != "" {
			scoringErrors++
		}
	}
	metrics.FramesScoredTotal.Add(float64(summary.TotalFramesAnalyzed))
	metrics.FramesFlaggedTotal.Add(float64(len(summary.Flagged)))
	metrics.ScoringErrorsTotal.Add(float64(scoringErrors))
}

func (uc *AuditVideoUseCase) handleRetryableFailure(
	ctx context.Context,
	job *entity.AuditJob,
	msg entity.AuditRequestMessage,
	rawMsg []byte,
	errMsg string,
	log *zap.Logger,
) error {
	job.MarkFailed(errMsg)
	_ = uc.repo.Update(ctx, job)

	if !job.CanRetry() {
		return uc.handlePermanentFailure(ctx, job, msg, rawMsg, errMsg)
	}

	metrics.RetryTotal.WithLabelValues(strconv.Itoa(job.Attempt)).Inc()
	uc.publishStatus(ctx, job, log)

	return fmt.Errorf("retryable failure (attempt %d/%d): %s", job.Attempt, job.MaxAttempts, errMsg)
}

func (uc *AuditVideoUseCase) handlePermanentFailure(
	ctx context.Context,
	job *entity.AuditJob,
	msg entity.AuditRequestMessage,
	rawMsg []byte,
	errMsg string,
) error {
	job.MarkFailed(errMsg)
	_ = uc.repo.Update(ctx, job)

	_ = uc.dlq.PublishToDLQ(ctx, rawMsg, errMsg)

	uc.publishStatus(ctx, job, uc.logger)

	metrics.AuditsProcessedTotal.WithLabelValues("dlq").Inc()

	if msg.UserEmail != "" {
		_ = uc.notifier.NotifyFailure(ctx, msg.UserEmail, job.ID.String(), msg.VideoKey, errMsg)
	}

	return nil
}

func (uc *AuditVideoUseCase) publishStatus(ctx context.Context, job *entity.AuditJob, log *zap.Logger) {
	statusMsg := entity.AuditStatusMessage{
		JobID:          job.ID,
		UserID:         job.UserID,
		Status:         job.Status,
		Outcome:        job.Outcome,
		VideoKey:       job.VideoKey,
		ReportKey:      job.ReportKey,
		FramesAnalyzed: job.FramesAnalyzed,
		FlaggedFrames:  job.FlaggedFrames,
		ErrorMessage:   job.ErrorMessage,
		Attempt:        job.Attempt,
		MaxAttempts:    job.MaxAttempts,
	}
	data, _ := json.Marshal(statusMsg)
	if err := uc.publisher.PublishStatus(ctx, data); err != nil {
		log.Error("failed to publish status", zap.Error(err))
	}
}
