package port

import (
	"context"
	"io"
)

// EvidenceStorage holds the input videos and the audit artifacts: the JSON
// report and the JPEG bytes of every flagged frame.
type EvidenceStorage interface {
	DownloadVideo(ctx context.Context, objectKey string, destPath string) error
	UploadReport(ctx context.Context, objectKey string, reader io.Reader, size int64) error
	UploadFlaggedFrame(ctx context.Context, objectKey string, image []byte) error
}
