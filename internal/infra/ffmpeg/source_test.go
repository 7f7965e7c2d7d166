package ffmpeg

import (
	"bufio"
	"bytes"
	"io"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRational(t *testing.T) {
	tests := []struct {
		raw     string
		want    float64
		wantErr bool
	}{
		{raw: "25/1", want: 25},
		{raw: "30000/1001", want: 30000.0 / 1001.0},
		{raw: "0/0", want: 0},
		{raw: "29.97", want: 29.97},
		{raw: "N/A", wantErr: true},
		{raw: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := parseRational(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

// fakeJPEG builds a minimal SOI...EOI byte sequence with a payload.
func fakeJPEG(payload []byte) []byte {
	frame := []byte{0xFF, 0xD8}
	frame = append(frame, payload...)
	return append(frame, 0xFF, 0xD9)
}

func newTestStream(data []byte) *stream {
	return &stream{
		cmd:    exec.Command("true"),
		reader: bufio.NewReader(bytes.NewReader(data)),
		stderr: &bytes.Buffer{},
	}
}

func TestStreamSplitsConcatenatedFrames(t *testing.T) {
	f1 := fakeJPEG([]byte("one"))
	f2 := fakeJPEG([]byte("two"))
	f3 := fakeJPEG([]byte{0x00, 0xFF, 0x00, 0xD9}) // 0xFF and 0xD9 apart is not a marker
	st := newTestStream(bytes.Join([][]byte{f1, f2, f3}, nil))

	for i, want := range [][]byte{f1, f2, f3} {
		got, err := st.Next()
		require.NoError(t, err, "frame %d", i)
		assert.Equal(t, want, got, "frame %d", i)
	}

	_, err := st.Next()
	assert.Equal(t, io.EOF, err)
}

func TestStreamEmptyOutputIsEOF(t *testing.T) {
	st := newTestStream(nil)
	_, err := st.Next()
	assert.Equal(t, io.EOF, err)
}

func TestStreamTruncatedFrame(t *testing.T) {
	st := newTestStream([]byte{0xFF, 0xD8, 0x01, 0x02})
	_, err := st.Next()
	require.Error(t, err)
	assert.NotEqual(t, io.EOF, err)
}

func TestStreamClosedYieldsEOF(t *testing.T) {
	st := newTestStream(fakeJPEG([]byte("x")))
	require.NoError(t, st.Close())
	_, err := st.Next()
	assert.Equal(t, io.EOF, err)
	assert.NoError(t, st.Close())
}
