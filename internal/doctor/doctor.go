// Package doctor runs readiness diagnostics for config, sockets, and state.
package doctor

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rbright/keywire/internal/config"
)

// probeTimeout bounds each socket dial attempt.
const probeTimeout = 500 * time.Millisecond

// Check is one doctor assertion result.
type Check struct {
	Name    string
	Pass    bool
	Message string
}

// Report is the full doctor output contract.
type Report struct {
	Checks []Check
}

// OK returns true when all checks pass.
func (r Report) OK() bool {
	for _, check := range r.Checks {
		if !check.Pass {
			return false
		}
	}
	return true
}

// String renders the report as user-facing text output.
func (r Report) String() string {
	var b strings.Builder
	for _, check := range r.Checks {
		status := "OK"
		if !check.Pass {
			status = "FAIL"
		}
		b.WriteString(fmt.Sprintf("[%s] %s: %s\n", status, check.Name, check.Message))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// Run executes environment/config/socket checks for a loaded config.
func Run(cfg config.Loaded) Report {
	checks := []Check{}

	configMessage := fmt.Sprintf("loaded %q", cfg.Path)
	if !cfg.Exists {
		configMessage = fmt.Sprintf("%q not found, using defaults", cfg.Path)
	}
	checks = append(checks, Check{Name: "config", Pass: true, Message: configMessage})

	checks = append(checks, checkSocket("sockets.kscan", cfg.Config.Sockets.Kscan))
	checks = append(checks, checkSocket("sockets.events", cfg.Config.Sockets.Events))
	checks = append(checks, checkStateDir())

	return Report{Checks: checks}
}

// checkSocket verifies the socket file exists and accepts a connection.
func checkSocket(name, path string) Check {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return Check{
				Name:    name,
				Pass:    false,
				Message: fmt.Sprintf("socket %q not found; is the ZMK native_sim process running?", path),
			}
		}
		return Check{Name: name, Pass: false, Message: fmt.Sprintf("stat %q: %v", path, err)}
	}

	conn, err := net.DialTimeout("unix", path, probeTimeout)
	if err != nil {
		return Check{Name: name, Pass: false, Message: fmt.Sprintf("dial %q: %v", path, err)}
	}
	_ = conn.Close()

	return Check{Name: name, Pass: true, Message: fmt.Sprintf("connected to %q", path)}
}

// checkStateDir verifies the log/state directory can be created.
func checkStateDir() Check {
	base := strings.TrimSpace(os.Getenv("XDG_STATE_HOME"))
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Check{Name: "state_dir", Pass: false, Message: "unable to resolve home directory"}
		}
		base = filepath.Join(home, ".local", "state")
	}

	dir := filepath.Join(base, "keywire")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return Check{Name: "state_dir", Pass: false, Message: fmt.Sprintf("create %q: %v", dir, err)}
	}
	return Check{Name: "state_dir", Pass: true, Message: fmt.Sprintf("writable at %q", dir)}
}
