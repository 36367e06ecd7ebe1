package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rbright/keywire/internal/client"
	"github.com/rbright/keywire/internal/config"
	"github.com/rbright/keywire/internal/watch"
	"github.com/rbright/keywire/internal/zmkproto"
)

// commandWatch streams firmware events to stdout until the stream
// closes or the process is interrupted.
func (r Runner) commandWatch(ctx context.Context, cfg config.Config, logger *slog.Logger) int {
	c := client.New(cfg.Sockets.Kscan, cfg.Sockets.Events)
	if err := c.ConnectEvent(ctx); err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		fmt.Fprintln(r.Stderr, "Make sure the ZMK native_sim process is running.")
		logger.Error("connect event channel failed", "error", err.Error())
		return 1
	}
	defer c.Close()

	fmt.Fprintf(r.Stdout, "Connected to %s. Watching for ZMK events (Ctrl-C to stop).\n\n", cfg.Sockets.Events)

	streamErr := make(chan error, 1)
	w := watch.New(c, logger)
	err := w.Start(
		func(ev *zmkproto.Event) {
			fmt.Fprintln(r.Stdout, ev.String())
			logger.Debug("event received", "kind", ev.Kind.String())
		},
		func(err error) { streamErr <- err },
	)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	select {
	case <-ctx.Done():
		// Closing the event channel is the only cancellation signal the
		// watch loop has; its receive fails and the loop exits.
		c.Close()
		w.Wait()
		fmt.Fprintln(r.Stdout, "\nStopped.")
		return 0
	case err := <-streamErr:
		w.Wait()
		fmt.Fprintf(r.Stderr, "\nEvent stream closed: %v\n", err)
		logger.Warn("event stream closed", "error", err.Error())
		return 1
	}
}
