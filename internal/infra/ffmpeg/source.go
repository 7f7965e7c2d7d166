package ffmpeg

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/safeview/safeview-audit-service/internal/domain/port"
	"go.uber.org/zap"
)

// Source decodes video files into sequential JPEG frames by piping ffmpeg's
// mjpeg output. It implements port.VideoSource.
type Source struct {
	logger *zap.Logger
}

func NewSource(logger *zap.Logger) *Source {
	return &Source{logger: logger}
}

func (s *Source) Open(ctx context.Context, videoPath string) (port.FrameStream, error) {
	if _, err := os.Stat(videoPath); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", port.ErrSourceUnavailable, videoPath, err)
	}

	rate, err := s.probeFrameRate(ctx, videoPath)
	if err != nil {
		return nil, fmt.Errorf("%w: probe %s: %v", port.ErrSourceUnavailable, videoPath, err)
	}

	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-i", videoPath,
		"-f", "image2pipe",
		"-vcodec", "mjpeg",
		"-q:v", "2",
		"-",
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: stdout pipe: %v", port.ErrSourceUnavailable, err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: start ffmpeg: %v", port.ErrSourceUnavailable, err)
	}

	s.logger.Debug("ffmpeg decoder started",
		zap.String("video_path", videoPath),
		zap.Float64("frame_rate", rate),
	)

	return &stream{
		cmd:       cmd,
		reader:    bufio.NewReaderSize(stdout, 256*1024),
		frameRate: rate,
		stderr:    &stderr,
	}, nil
}

// probeFrameRate reads the video stream's r_frame_rate via ffprobe.
// An unparseable rate is reported as 0; the sampler falls back to stride 1.
func (s *Source) probeFrameRate(ctx context.Context, videoPath string) (float64, error) {
	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=r_frame_rate",
		"-of", "default=noprint_wrappers=1:nokey=1",
		videoPath,
	)
	output, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe: %w", err)
	}

	raw := strings.TrimSpace(string(output))
	rate, err := parseRational(raw)
	if err != nil {
		s.logger.Warn("could not parse frame rate, defaulting to every frame",
			zap.String("video_path", videoPath),
			zap.String("r_frame_rate", raw),
		)
		return 0, nil
	}
	return rate, nil
}

// parseRational converts ffprobe's "num/den" frame-rate notation (or a plain
// float) to a float64.
func parseRational(raw string) (float64, error) {
	if num, den, ok := strings.Cut(raw, "/"); ok {
		n, err := strconv.ParseFloat(num, 64)
		if err != nil {
			return 0, err
		}
		d, err := strconv.ParseFloat(den, 64)
		if err != nil {
			return 0, err
		}
		if d == 0 {
			return 0, nil
		}
		return n / d, nil
	}
	return strconv.ParseFloat(raw, 64)
}

// stream yields the concatenated JPEGs from ffmpeg's pipe one frame at a
// time, splitting on the EOI marker.
type stream struct {
	cmd       *exec.Cmd
	reader    *bufio.Reader
	frameRate float64
	stderr    *bytes.Buffer
	closed    bool
}

func (st *stream) FrameRate() float64 {
	return st.frameRate
}

func (st *stream) Next() ([]byte, error) {
	if st.closed {
		return nil, io.EOF
	}

	var buf bytes.Buffer
	var prev byte
	for {
		b, err := st.reader.ReadByte()
		if err == io.EOF {
			if buf.Len() == 0 {
				return nil, io.EOF
			}
			return nil, fmt.Errorf("truncated frame at end of stream: %s", lastLine(st.stderr))
		}
		if err != nil {
			return nil, fmt.Errorf("read decoder output: %w", err)
		}

		buf.WriteByte(b)
		if prev == 0xFF && b == 0xD9 {
			frame := make([]byte, buf.Len())
			copy(frame, buf.Bytes())
			return frame, nil
		}
		prev = b
	}
}

func (st *stream) Close() error {
	if st.closed {
		return nil
	}
	st.closed = true
	if st.cmd.Process != nil {
		_ = st.cmd.Process.Kill()
	}
	_ = st.cmd.Wait()
	return nil
}

func lastLine(buf *bytes.Buffer) string {
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) == 0 {
		return ""
	}
	return strings.TrimSpace(lines[len(lines)-1])
}
