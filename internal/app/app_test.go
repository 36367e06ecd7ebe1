package app

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rbright/keywire/internal/frame"
	"github.com/rbright/keywire/internal/zmkproto"
)

func newRunner(stdin io.Reader) (Runner, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	r := Runner{
		Stdin:  stdin,
		Stdout: &stdout,
		Stderr: &stderr,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	return r, &stdout, &stderr
}

// writeConfig writes a keywire config pointing at the given socket paths,
// with zero key timings so tests run fast.
func writeConfig(t *testing.T, kscan, events string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.conf")
	body := fmt.Sprintf(`{
  // test fixture
  "sockets": {
    "kscan": %q,
    "events": %q,
  },
  "matrix": { "columns": 4 },
  "keys": { "press_ms": 0, "interval_ms": 0 },
}
`, kscan, events)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

// startKscanListener accepts one connection and decodes every framed
// ClientMessage it receives onto the returned channel.
func startKscanListener(t *testing.T, path string) <-chan *zmkproto.KeyEvent {
	t.Helper()
	ln, err := net.Listen("unix", path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	received := make(chan *zmkproto.KeyEvent, 16)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			payload, err := frame.Read(conn)
			if err != nil {
				return
			}
			msg, err := zmkproto.UnmarshalClientMessage(payload)
			if err != nil {
				return
			}
			received <- msg.KeyEvent
		}
	}()
	return received
}

// startEventListener accepts one connection, writes the given events as
// frames, then closes the connection.
func startEventListener(t *testing.T, path string, events ...*zmkproto.Event) {
	t.Helper()
	ln, err := net.Listen("unix", path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		for _, ev := range events {
			payload, err := ev.Marshal()
			if err != nil {
				return
			}
			if err := frame.Write(conn, payload); err != nil {
				return
			}
		}
		if len(events) == 0 {
			// Hold the stream open until the client hangs up.
			_, _ = io.Copy(io.Discard, conn)
		}
	}()
}

func TestExecuteHelp(t *testing.T) {
	r, stdout, _ := newRunner(strings.NewReader(""))
	code := r.Execute(context.Background(), []string{"help"})
	require.Equal(t, 0, code)
	require.Contains(t, stdout.String(), "Usage:")
	require.Contains(t, stdout.String(), "send")
}

func TestExecuteVersion(t *testing.T) {
	r, stdout, _ := newRunner(strings.NewReader(""))
	code := r.Execute(context.Background(), []string{"version"})
	require.Equal(t, 0, code)
	require.Contains(t, stdout.String(), "keywire")
}

func TestExecuteUnknownCommand(t *testing.T) {
	r, _, stderr := newRunner(strings.NewReader(""))
	code := r.Execute(context.Background(), []string{"frobnicate"})
	require.Equal(t, 2, code)
	require.Contains(t, stderr.String(), "error:")
	require.Contains(t, stderr.String(), "Usage:")
}

func TestExecuteSendRequiresPositions(t *testing.T) {
	cfg := writeConfig(t, "/tmp/nope-kscan.sock", "/tmp/nope-events.sock")
	r, _, stderr := newRunner(strings.NewReader(""))
	code := r.Execute(context.Background(), []string{"--config", cfg, "send"})
	require.Equal(t, 2, code)
	require.Contains(t, stderr.String(), "at least one matrix position")
}

func TestExecuteSendInvalidPosition(t *testing.T) {
	cfg := writeConfig(t, "/tmp/nope-kscan.sock", "/tmp/nope-events.sock")
	r, _, stderr := newRunner(strings.NewReader(""))
	code := r.Execute(context.Background(), []string{"--config", cfg, "send", "abc"})
	require.Equal(t, 2, code)
	require.Contains(t, stderr.String(), `invalid matrix position "abc"`)
}

func TestExecuteSendConnectFailure(t *testing.T) {
	dir := t.TempDir()
	cfg := writeConfig(t, filepath.Join(dir, "missing.sock"), filepath.Join(dir, "events.sock"))
	r, _, stderr := newRunner(strings.NewReader(""))
	code := r.Execute(context.Background(), []string{"--config", cfg, "send", "0"})
	require.Equal(t, 1, code)
	require.Contains(t, stderr.String(), "native_sim")
}

func TestExecuteSendDeliversKeyEvents(t *testing.T) {
	dir := t.TempDir()
	kscan := filepath.Join(dir, "kscan.sock")
	received := startKscanListener(t, kscan)

	cfg := writeConfig(t, kscan, filepath.Join(dir, "events.sock"))
	r, stdout, stderr := newRunner(strings.NewReader(""))
	code := r.Execute(context.Background(), []string{"--config", cfg, "send", "5"})
	require.Equal(t, 0, code, "stderr: %s", stderr.String())
	require.Contains(t, stdout.String(), "PRESS   position=5 (row=1, col=1)")
	require.Contains(t, stdout.String(), "Sent 1 key event pair(s).")

	press := requireKeyEvent(t, received)
	require.Equal(t, zmkproto.ActionPress, press.Action)
	require.NotNil(t, press.Position)
	require.Equal(t, uint32(5), *press.Position)

	release := requireKeyEvent(t, received)
	require.Equal(t, zmkproto.ActionRelease, release.Action)
}

func TestExecuteWatchStreamClosed(t *testing.T) {
	dir := t.TempDir()
	events := filepath.Join(dir, "events.sock")
	pos := uint32(7)
	startEventListener(t, events, &zmkproto.Event{
		Kind:  zmkproto.KindKscan,
		Kscan: &zmkproto.KscanEvent{Position: pos, Pressed: true},
	})

	cfg := writeConfig(t, filepath.Join(dir, "kscan.sock"), events)
	r, stdout, _ := newRunner(strings.NewReader(""))
	code := r.Execute(context.Background(), []string{"--config", cfg, "watch"})
	require.Equal(t, 1, code)
	require.Contains(t, stdout.String(), "[kscan")
	require.Contains(t, stdout.String(), "pos=7")
}

func TestExecuteDemoSession(t *testing.T) {
	dir := t.TempDir()
	kscan := filepath.Join(dir, "kscan.sock")
	events := filepath.Join(dir, "events.sock")
	received := startKscanListener(t, kscan)
	startEventListener(t, events)

	cfg := writeConfig(t, kscan, events)
	stdin := strings.NewReader("2\nr 1 3\nbogus\nq\n")
	r, stdout, stderr := newRunner(stdin)
	code := r.Execute(context.Background(), []string{"--config", cfg, "demo"})
	require.Equal(t, 0, code, "stderr: %s", stderr.String())
	require.Contains(t, stdout.String(), "Connected to both sockets.")
	require.Contains(t, stdout.String(), "PRESS   position=2")
	require.Contains(t, stdout.String(), "PRESS   row=1 col=3")
	require.Contains(t, stdout.String(), "Unknown command")
	require.Contains(t, stdout.String(), "Closing connections.")

	// 2 taps, 2 messages each.
	for i := 0; i < 4; i++ {
		requireKeyEvent(t, received)
	}
}

func TestExecuteDemoConnectFailure(t *testing.T) {
	dir := t.TempDir()
	cfg := writeConfig(t, filepath.Join(dir, "kscan.sock"), filepath.Join(dir, "events.sock"))
	r, _, stderr := newRunner(strings.NewReader(""))
	code := r.Execute(context.Background(), []string{"--config", cfg, "demo"})
	require.Equal(t, 1, code)
	require.Contains(t, stderr.String(), "Connection error(s):")
	require.Contains(t, stderr.String(), "native_sim")
}

func requireKeyEvent(t *testing.T, ch <-chan *zmkproto.KeyEvent) *zmkproto.KeyEvent {
	t.Helper()
	select {
	case ev := <-ch:
		require.NotNil(t, ev)
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for key event")
		return nil
	}
}
