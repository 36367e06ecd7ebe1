package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/rbright/keywire/internal/client"
	"github.com/rbright/keywire/internal/config"
	"github.com/rbright/keywire/internal/matrix"
	"github.com/rbright/keywire/internal/watch"
	"github.com/rbright/keywire/internal/zmkproto"
)

const demoHelp = `
Commands:
  <position>      press+release key at linear position (0-based)
  r <row> <col>   press+release key at explicit row/col
  h               show this help
  q               quit
`

// commandDemo connects both channels, streams events in the background,
// and reads key-injection commands interactively.
func (r Runner) commandDemo(ctx context.Context, cfg config.Config, logger *slog.Logger) int {
	if f := r.stdinFile(); f != nil && !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd()) {
		fmt.Fprintln(r.Stderr, "error: demo requires an interactive terminal (use 'send' or 'watch' for scripting)")
		return 2
	}

	c := client.New(cfg.Sockets.Kscan, cfg.Sockets.Events)
	fmt.Fprintln(r.Stdout, "Connecting to ZMK IPC sockets...")
	if err := c.Connect(ctx); err != nil {
		fmt.Fprintln(r.Stderr, "Connection error(s):")
		for _, line := range strings.Split(err.Error(), "\n") {
			fmt.Fprintf(r.Stderr, "  %s\n", line)
		}
		fmt.Fprintln(r.Stderr, "Make sure the ZMK native_sim process is running.")
		logger.Error("demo connect failed", "error", err.Error())
		c.Close()
		return 1
	}
	fmt.Fprintln(r.Stdout, "Connected to both sockets.")

	// say serializes prompt output against event lines arriving from the
	// watch goroutine.
	var outMu sync.Mutex
	say := func(format string, args ...any) {
		outMu.Lock()
		fmt.Fprintf(r.Stdout, format, args...)
		outMu.Unlock()
	}

	// Quitting closes the client to end the watch loop; the resulting
	// connection-closed error is expected and stays quiet.
	var quitMu sync.Mutex
	quitting := false

	w := watch.New(c, logger)
	err := w.Start(
		func(ev *zmkproto.Event) {
			say("\r%s\n> ", ev.String())
		},
		func(err error) {
			quitMu.Lock()
			quiet := quitting
			quitMu.Unlock()
			if !quiet {
				say("\nEvent stream closed: %v\n", err)
			}
		},
	)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		c.Close()
		return 1
	}

	say("%s", demoHelp)

	scanner := bufio.NewScanner(r.Stdin)
	for {
		say("> ")
		if !scanner.Scan() || ctx.Err() != nil {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "q" || line == "quit" || line == "exit" {
			break
		}
		if line == "h" || line == "help" || line == "?" {
			say("%s", demoHelp)
			continue
		}

		if err := r.runDemoLine(ctx, c, cfg, say, line, logger); err != nil {
			say("%v\n", err)
		}
	}

	// The watch loop only ends when its receive fails, so hang up first.
	quitMu.Lock()
	quitting = true
	quitMu.Unlock()
	c.Close()
	w.Wait()
	say("\nClosing connections.\n")
	return 0
}

// runDemoLine executes one prompt line: either a linear position or an
// explicit "r <row> <col>" pair.
func (r Runner) runDemoLine(ctx context.Context, c *client.Client, cfg config.Config, say func(string, ...any), line string, logger *slog.Logger) error {
	parts := strings.Fields(line)

	if parts[0] == "r" {
		if len(parts) != 3 {
			return errors.New("Usage: r <row> <col>  (integers)")
		}
		row, err1 := strconv.ParseUint(parts[1], 10, 32)
		col, err2 := strconv.ParseUint(parts[2], 10, 32)
		if err1 != nil || err2 != nil {
			return errors.New("Usage: r <row> <col>  (integers)")
		}
		return r.tapRC(ctx, c, cfg, say, uint32(row), uint32(col), logger)
	}

	pos, err := strconv.ParseUint(parts[0], 10, 32)
	if err != nil {
		return fmt.Errorf("Unknown command: %q  (type 'h' for help)", line)
	}
	return r.tap(ctx, c, cfg, say, uint32(pos), logger)
}

func (r Runner) tap(ctx context.Context, c *client.Client, cfg config.Config, say func(string, ...any), pos uint32, logger *slog.Logger) error {
	row, col, err := matrix.RC(int(pos), cfg.Matrix.Columns)
	if err != nil {
		return err
	}

	say("  PRESS   position=%d (row=%d, col=%d)\n", pos, row, col)
	if err := c.SendPress(pos); err != nil {
		return err
	}
	sleepCtx(ctx, time.Duration(cfg.Keys.PressMS)*time.Millisecond)

	say("  RELEASE position=%d\n", pos)
	if err := c.SendRelease(pos); err != nil {
		return err
	}
	logger.Debug("demo tap", "position", pos)
	return nil
}

func (r Runner) tapRC(ctx context.Context, c *client.Client, cfg config.Config, say func(string, ...any), row, col uint32, logger *slog.Logger) error {
	say("  PRESS   row=%d col=%d\n", row, col)
	if err := c.SendPressAt(row, col); err != nil {
		return err
	}
	sleepCtx(ctx, time.Duration(cfg.Keys.PressMS)*time.Millisecond)

	say("  RELEASE row=%d col=%d\n", row, col)
	if err := c.SendReleaseAt(row, col); err != nil {
		return err
	}
	logger.Debug("demo tap", "row", row, "col", col)
	return nil
}
