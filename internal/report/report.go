package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/safeview/safeview-audit-service/internal/domain/entity"
)

// Document is the JSON results layout consumed by downstream review tooling.
type Document struct {
	VideoID             string               `json:"video_id"`
	TotalFramesAnalyzed int                  `json:"total_frames_analyzed"`
	IntervalSeconds     float64              `json:"interval_seconds"`
	AnalyzedAt          time.Time            `json:"analyzed_at"`
	FrameResults        []entity.FrameResult `json:"frame_results"`
	Summary             Summary              `json:"summary"`
}

type Summary struct {
	MaxAdult      entity.Likelihood   `json:"max_adult"`
	MaxSpoof      entity.Likelihood   `json:"max_spoof"`
	MaxMedical    entity.Likelihood   `json:"max_medical"`
	MaxViolence   entity.Likelihood   `json:"max_violence"`
	MaxRacy       entity.Likelihood   `json:"max_racy"`
	FlaggedFrames []entity.FlagRecord `json:"flagged_frames"`
	Outcome       entity.RunOutcome   `json:"outcome"`
}

// BuildDocument shapes a frozen VideoSummary into the report document.
func BuildDocument(s *entity.VideoSummary) Document {
	flagged := s.Flagged
	if flagged == nil {
		flagged = []entity.FlagRecord{}
	}
	results := s.FrameResults
	if results == nil {
		results = []entity.FrameResult{}
	}
	return Document{
		VideoID:             s.VideoID,
		TotalFramesAnalyzed: s.TotalFramesAnalyzed,
		IntervalSeconds:     s.IntervalSeconds,
		AnalyzedAt:          s.AnalyzedAt,
		FrameResults:        results,
		Summary: Summary{
			MaxAdult:      s.Maxima[entity.CategoryAdult],
			MaxSpoof:      s.Maxima[entity.CategorySpoof],
			MaxMedical:    s.Maxima[entity.CategoryMedical],
			MaxViolence:   s.Maxima[entity.CategoryViolence],
			MaxRacy:       s.Maxima[entity.CategoryRacy],
			FlaggedFrames: flagged,
			Outcome:       s.Outcome(),
		},
	}
}

// WriteJSON encodes the document to w with indentation.
func WriteJSON(w io.Writer, s *entity.VideoSummary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(BuildDocument(s))
}

// RenderText produces the operator-facing plain-text report.
func RenderText(s *entity.VideoSummary) string {
	var b strings.Builder
	rule := strings.Repeat("=", 60)
	sep := strings.Repeat("-", 40)

	fmt.Fprintln(&b, rule)
	fmt.Fprintln(&b, "VIDEO SAFE SEARCH ANALYSIS REPORT")
	fmt.Fprintln(&b, rule)
	fmt.Fprintf(&b, "Video: %s\n", s.VideoID)
	fmt.Fprintf(&b, "Analysis Date: %s\n", s.AnalyzedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "Frames Analyzed: %d\n", s.TotalFramesAnalyzed)
	fmt.Fprintf(&b, "Sampling Interval: %g seconds\n", s.IntervalSeconds)
	fmt.Fprintln(&b)

	fmt.Fprintln(&b, "SUMMARY")
	fmt.Fprintln(&b, sep)
	fmt.Fprintf(&b, "Maximum Adult Content: %s\n", s.Maxima[entity.CategoryAdult])
	fmt.Fprintf(&b, "Maximum Violence: %s\n", s.Maxima[entity.CategoryViolence])
	fmt.Fprintf(&b, "Maximum Medical: %s\n", s.Maxima[entity.CategoryMedical])
	fmt.Fprintf(&b, "Maximum Racy Content: %s\n", s.Maxima[entity.CategoryRacy])
	fmt.Fprintf(&b, "Maximum Spoof: %s\n", s.Maxima[entity.CategorySpoof])
	fmt.Fprintln(&b)

	if len(s.Flagged) > 0 {
		fmt.Fprintf(&b, "FLAGGED FRAMES: %d\n", len(s.Flagged))
		fmt.Fprintln(&b, sep)
		for _, f := range s.Flagged {
			fmt.Fprintf(&b, "Frame %d at %.1fs:\n", f.Index, f.TimestampSeconds)
			for _, c := range entity.Categories() {
				fmt.Fprintf(&b, "  - %s: %s\n", c, f.Scores[c])
			}
			fmt.Fprintln(&b)
		}
	} else {
		fmt.Fprintln(&b, "No concerning content detected")
	}

	return b.String()
}

// WriteTextFile saves the plain-text report to path.
func WriteTextFile(path string, s *entity.VideoSummary) error {
	return os.WriteFile(path, []byte(RenderText(s)), 0644)
}

// WriteJSONFile saves the JSON document to path.
func WriteJSONFile(path string, s *entity.VideoSummary) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}
	defer f.Close()
	return WriteJSON(f, s)
}
