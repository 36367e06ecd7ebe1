// Package frame implements the length-prefix wire framing shared by both
// IPC channels: a 4-byte big-endian payload length followed by exactly
// that many payload bytes.
package frame

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// HeaderSize is the fixed width of the length prefix in bytes.
const HeaderSize = 4

// MaxPayload caps the declared payload length accepted on receive.
// Firmware messages are tens of bytes; anything near this limit means
// the stream has desynchronized.
const MaxPayload = 1 << 20

var (
	// ErrConnectionClosed reports that the stream ended before a full
	// header or payload was read.
	ErrConnectionClosed = errors.New("connection closed before full frame was received")

	// ErrFrameTooLarge reports a payload length outside the accepted range.
	ErrFrameTooLarge = errors.New("frame payload exceeds maximum size")
)

// Encode returns payload in wire form: length prefix plus payload bytes.
func Encode(payload []byte) []byte {
	buf := make([]byte, HeaderSize+len(payload))
	binary.BigEndian.PutUint32(buf[:HeaderSize], uint32(len(payload)))
	copy(buf[HeaderSize:], payload)
	return buf
}

// Write sends one whole frame with a single Write call so that no
// partial frame can interleave with another writer's bytes.
func Write(w io.Writer, payload []byte) error {
	if len(payload) > MaxPayload {
		return fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, len(payload))
	}

	buf := Encode(payload)
	n, err := w.Write(buf)
	if err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	if n != len(buf) {
		return fmt.Errorf("write frame: short write (%d of %d bytes)", n, len(buf))
	}
	return nil
}

// Read blocks until one whole frame is available and returns its payload.
//
// It reads exactly HeaderSize bytes, then exactly the declared payload
// length. A stream that ends partway through either phase yields
// ErrConnectionClosed; a short payload is never returned. This is the
// single invariant the whole transport rests on: under-reading here
// desynchronizes every subsequent frame.
func Read(r io.Reader) ([]byte, error) {
	var header [HeaderSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, closedErr("read frame header", err)
	}

	length := binary.BigEndian.Uint32(header[:])
	if length > MaxPayload {
		return nil, fmt.Errorf("%w: declared %d bytes", ErrFrameTooLarge, length)
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, closedErr("read frame payload", err)
	}
	return payload, nil
}

// closedErr maps end-of-stream conditions onto ErrConnectionClosed while
// keeping other transport errors intact.
func closedErr(op string, err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%s: %w", op, ErrConnectionClosed)
	}
	return fmt.Errorf("%s: %w", op, err)
}
