package frame

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeScenarioBytes(t *testing.T) {
	encoded := Encode([]byte{0x01, 0x02, 0x03})
	require.Equal(t, []byte{0x00, 0x00, 0x00, 0x03, 0x01, 0x02, 0x03}, encoded)

	payload, err := Read(bytes.NewReader(encoded))
	require.NoError(t, err)
	require.Equal(t, []byte{0x01, 0x02, 0x03}, payload)
}

func TestRoundTripLengths(t *testing.T) {
	for length := 0; length <= 300; length++ {
		payload := make([]byte, length)
		for i := range payload {
			payload[i] = byte(i % 251)
		}

		got, err := Read(bytes.NewReader(Encode(payload)))
		require.NoError(t, err, "length %d", length)
		require.Equal(t, payload, got, "length %d", length)
	}
}

func TestReadEmptyPayload(t *testing.T) {
	payload, err := Read(bytes.NewReader([]byte{0, 0, 0, 0}))
	require.NoError(t, err)
	require.Empty(t, payload)
}

// oneByteReader delivers at most one byte per Read call to exercise
// arbitrary chunk boundaries.
type oneByteReader struct {
	r io.Reader
}

func (o oneByteReader) Read(p []byte) (int, error) {
	if len(p) > 1 {
		p = p[:1]
	}
	return o.r.Read(p)
}

func TestReadOneByteChunks(t *testing.T) {
	payload := []byte("split across every possible boundary")
	got, err := Read(oneByteReader{bytes.NewReader(Encode(payload))})
	require.NoError(t, err)
	require.Equal(t, payload, got)
}

func TestReadTruncatedHeader(t *testing.T) {
	for _, partial := range [][]byte{nil, {0x00}, {0x00, 0x00}, {0x00, 0x00, 0x00}} {
		_, err := Read(bytes.NewReader(partial))
		require.ErrorIs(t, err, ErrConnectionClosed, "header bytes %v", partial)
	}
}

func TestReadTruncatedPayload(t *testing.T) {
	encoded := Encode([]byte{0xaa, 0xbb, 0xcc, 0xdd})
	for cut := len(encoded) - 1; cut >= HeaderSize; cut-- {
		_, err := Read(bytes.NewReader(encoded[:cut]))
		require.ErrorIs(t, err, ErrConnectionClosed, "cut at %d", cut)
	}
}

func TestReadOversizeLength(t *testing.T) {
	header := []byte{0xff, 0xff, 0xff, 0xff}
	_, err := Read(bytes.NewReader(header))
	require.ErrorIs(t, err, ErrFrameTooLarge)
}

func TestWriteSingleCall(t *testing.T) {
	var calls int
	w := writerFunc(func(p []byte) (int, error) {
		calls++
		require.Equal(t, []byte{0x00, 0x00, 0x00, 0x02, 0x10, 0x20}, p)
		return len(p), nil
	})

	require.NoError(t, Write(w, []byte{0x10, 0x20}))
	require.Equal(t, 1, calls)
}

func TestWriteOversizePayload(t *testing.T) {
	err := Write(io.Discard, make([]byte, MaxPayload+1))
	require.ErrorIs(t, err, ErrFrameTooLarge)
}

type writerFunc func(p []byte) (int, error)

func (f writerFunc) Write(p []byte) (int, error) { return f(p) }
