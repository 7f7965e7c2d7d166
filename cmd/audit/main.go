package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/safeview/safeview-audit-service/internal/domain/entity"
	"github.com/safeview/safeview-audit-service/internal/infra/ffmpeg"
	"github.com/safeview/safeview-audit-service/internal/infra/vision"
	"github.com/safeview/safeview-audit-service/internal/pipeline"
	"github.com/safeview/safeview-audit-service/internal/report"
	"github.com/safeview/safeview-audit-service/pkg/logger"
	"go.uber.org/zap"
)

// audit analyzes a single local video and prints the text report. Exit
// codes: 0 clean, 1 flagged, 2 run error.
func main() {
	var (
		videoPath    = flag.String("video", "", "Path to the video file (required)")
		interval     = flag.Float64("interval", 1.0, "Seconds between sampled frames")
		credentials  = flag.String("credentials", "", "Path to a Google service account JSON file")
		apiKey       = flag.String("api-key", "", "Cloud Vision API key (alternative to -credentials)")
		saveFlagged  = flag.Bool("save-flagged", false, "Save flagged frames to disk")
		outputDir    = flag.String("output-dir", "flagged_frames", "Directory for saved flagged frames")
		jsonOutput   = flag.String("json-output", "", "Path to save JSON results")
		reportOutput = flag.String("report-output", "", "Path to save the text report")
		logLevel     = flag.String("log-level", "info", "Log level")
	)
	flag.Parse()

	if *videoPath == "" {
		fmt.Fprintln(os.Stderr, "usage: audit -video path/to/video.mp4 [-interval 1.0] [-credentials sa.json]")
		os.Exit(2)
	}
	if *interval <= 0 {
		fmt.Fprintln(os.Stderr, "audit: -interval must be > 0")
		os.Exit(2)
	}

	log, err := logger.New(*logLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, "audit:", err)
		os.Exit(2)
	}
	defer log.Sync()

	ctx := context.Background()

	classifier, err := vision.NewClassifier(ctx, vision.ClassifierConfig{
		CredentialsFile: *credentials,
		APIKey:          *apiKey,
	}, log)
	if err != nil {
		log.Error("failed to create vision classifier", zap.Error(err))
		os.Exit(2)
	}

	var opts []pipeline.AnalyzerOption
	if *saveFlagged {
		if err := os.MkdirAll(*outputDir, 0755); err != nil {
			log.Error("failed to create output directory", zap.Error(err))
			os.Exit(2)
		}
		dir := *outputDir
		opts = append(opts, pipeline.WithFlagSink(func(_ context.Context, frame pipeline.Frame, _ entity.FrameScore) error {
			path := filepath.Join(dir, fmt.Sprintf("flagged_frame_%04d.jpg", frame.Index))
			return os.WriteFile(path, frame.Image, 0644)
		}))
	}

	analyzer := pipeline.NewAnalyzer(ffmpeg.NewSource(log), classifier, *interval, log, opts...)
	summary, err := analyzer.Run(ctx, *videoPath, *videoPath)
	if err != nil {
		log.Error("analysis failed", zap.Error(err))
		os.Exit(2)
	}

	if *jsonOutput != "" {
		if err := report.WriteJSONFile(*jsonOutput, summary); err != nil {
			log.Error("failed to save JSON results", zap.Error(err))
			os.Exit(2)
		}
		log.Info("JSON results saved", zap.String("path", *jsonOutput))
	}
	if *reportOutput != "" {
		if err := report.WriteTextFile(*reportOutput, summary); err != nil {
			log.Error("failed to save report", zap.Error(err))
			os.Exit(2)
		}
		log.Info("report saved", zap.String("path", *reportOutput))
	}

	fmt.Println()
	fmt.Println(report.RenderText(summary))

	if summary.Outcome() == entity.OutcomeFlagged {
		log.Warn("analysis complete, frames flagged", zap.Int("flagged_frames", len(summary.Flagged)))
		os.Exit(1)
	}
	log.Info("analysis complete, no concerning content detected")
}
