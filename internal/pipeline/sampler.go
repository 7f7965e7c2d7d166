package pipeline

import (
	"io"
	"math"

	"github.com/safeview/safeview-audit-service/internal/domain/port"
)

// Frame is one sampled frame handed from the Sampler to the Scorer.
type Frame struct {
	Index            int
	TimestampSeconds float64
	Image            []byte
}

// Sampler walks a FrameStream and emits every stride-th source frame, where
// stride = round(frame_rate * interval_seconds). Sampled frames are
// re-indexed from 0. The sequence is one-shot; the underlying stream is
// closed when it is exhausted or on early termination.
type Sampler struct {
	stream    port.FrameStream
	stride    int
	interval  float64
	sourcePos int
	nextIndex int
	closed    bool
}

func NewSampler(stream port.FrameStream, intervalSeconds float64) *Sampler {
	stride := int(math.Round(stream.FrameRate() * intervalSeconds))
	if stride < 1 {
		// Unreadable or tiny frame rates must not stall the walk.
		stride = 1
	}
	return &Sampler{
		stream:   stream,
		stride:   stride,
		interval: intervalSeconds,
	}
}

// Stride reports the source-frame step between samples.
func (s *Sampler) Stride() int {
	return s.stride
}

// Next returns the next sampled frame. It returns io.EOF once the source is
// exhausted, closing the stream. Any other error means frame acquisition
// failed and the run cannot continue.
func (s *Sampler) Next() (Frame, error) {
	if s.closed {
		return Frame{}, io.EOF
	}
	for {
		data, err := s.stream.Next()
		if err == io.EOF {
			s.Close()
			return Frame{}, io.EOF
		}
		if err != nil {
			s.Close()
			return Frame{}, err
		}

		pos := s.sourcePos
		s.sourcePos++
		if pos%s.stride != 0 {
			continue
		}

		frame := Frame{
			Index:            s.nextIndex,
			TimestampSeconds: float64(s.nextIndex) * s.interval,
			Image:            data,
		}
		s.nextIndex++
		return frame, nil
	}
}

// Close releases the underlying stream. Safe to call more than once.
func (s *Sampler) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.stream.Close()
}
