package app

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/rbright/keywire/internal/client"
	"github.com/rbright/keywire/internal/config"
	"github.com/rbright/keywire/internal/matrix"
)

// commandSend presses and releases each listed matrix position with the
// configured hold and inter-key gaps.
func (r Runner) commandSend(ctx context.Context, cfg config.Config, args []string, logger *slog.Logger) int {
	if len(args) == 0 {
		fmt.Fprintln(r.Stderr, "error: send requires at least one matrix position")
		return 2
	}

	positions := make([]uint32, 0, len(args))
	for _, arg := range args {
		pos, err := strconv.ParseUint(arg, 10, 32)
		if err != nil {
			fmt.Fprintf(r.Stderr, "error: invalid matrix position %q\n", arg)
			return 2
		}
		positions = append(positions, uint32(pos))
	}

	c := client.New(cfg.Sockets.Kscan, cfg.Sockets.Events)
	if err := c.ConnectCommand(ctx); err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		fmt.Fprintln(r.Stderr, "Make sure the ZMK native_sim process is running.")
		logger.Error("connect command channel failed", "error", err.Error())
		return 1
	}
	defer c.Close()

	press := time.Duration(cfg.Keys.PressMS) * time.Millisecond
	interval := time.Duration(cfg.Keys.IntervalMS) * time.Millisecond

	for i, pos := range positions {
		row, col, err := matrix.RC(int(pos), cfg.Matrix.Columns)
		if err != nil {
			fmt.Fprintf(r.Stderr, "error: %v\n", err)
			return 1
		}

		fmt.Fprintf(r.Stdout, "  PRESS   position=%d (row=%d, col=%d)\n", pos, row, col)
		if err := c.SendPress(pos); err != nil {
			fmt.Fprintf(r.Stderr, "error: %v\n", err)
			logger.Error("send press failed", "position", pos, "error", err.Error())
			return 1
		}
		logger.Debug("sent key press", "position", pos)

		if !sleepCtx(ctx, press) {
			return 1
		}

		fmt.Fprintf(r.Stdout, "  RELEASE position=%d\n", pos)
		if err := c.SendRelease(pos); err != nil {
			fmt.Fprintf(r.Stderr, "error: %v\n", err)
			logger.Error("send release failed", "position", pos, "error", err.Error())
			return 1
		}
		logger.Debug("sent key release", "position", pos)

		if i < len(positions)-1 && !sleepCtx(ctx, interval) {
			return 1
		}
	}

	fmt.Fprintf(r.Stdout, "Sent %d key event pair(s).\n", len(positions))
	return 0
}

// sleepCtx sleeps for d unless the context ends first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
