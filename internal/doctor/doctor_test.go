package doctor

import (
	"net"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rbright/keywire/internal/config"
)

func loadedWithSockets(t *testing.T, kscan, events string) config.Loaded {
	t.Helper()
	cfg := config.Default()
	cfg.Sockets.Kscan = kscan
	cfg.Sockets.Events = events
	return config.Loaded{Path: "/tmp/keywire-test.conf", Config: cfg, Exists: true}
}

func TestRunAllPass(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_STATE_HOME", t.TempDir())

	kscan := filepath.Join(dir, "kscan.sock")
	events := filepath.Join(dir, "events.sock")
	for _, path := range []string{kscan, events} {
		listener, err := net.Listen("unix", path)
		require.NoError(t, err)
		t.Cleanup(func() { _ = listener.Close() })
		go func() {
			for {
				conn, err := listener.Accept()
				if err != nil {
					return
				}
				_ = conn.Close()
			}
		}()
	}

	report := Run(loadedWithSockets(t, kscan, events))
	require.True(t, report.OK(), report.String())
	require.Len(t, report.Checks, 4)
}

func TestRunMissingSocketFails(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_STATE_HOME", t.TempDir())

	events := filepath.Join(dir, "events.sock")
	listener, err := net.Listen("unix", events)
	require.NoError(t, err)
	t.Cleanup(func() { _ = listener.Close() })
	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				return
			}
			_ = conn.Close()
		}
	}()

	report := Run(loadedWithSockets(t, filepath.Join(dir, "missing.sock"), events))
	require.False(t, report.OK())

	rendered := report.String()
	require.Contains(t, rendered, "[FAIL] sockets.kscan")
	require.Contains(t, rendered, "native_sim")
	require.Contains(t, rendered, "[OK] sockets.events")
}

func TestReportString(t *testing.T) {
	report := Report{Checks: []Check{
		{Name: "a", Pass: true, Message: "fine"},
		{Name: "b", Pass: false, Message: "broken"},
	}}
	rendered := report.String()
	require.Contains(t, rendered, "[OK] a: fine")
	require.Contains(t, rendered, "[FAIL] b: broken")
	require.False(t, report.OK())
}
