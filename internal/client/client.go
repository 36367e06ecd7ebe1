// Package client exposes the typed ZMK IPC surface: key injection on
// the kscan command channel and event receipt on the events channel.
package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/rbright/keywire/internal/channel"
	"github.com/rbright/keywire/internal/zmkproto"
)

// Client composes two independent IPC channels against one firmware
// process. The command channel carries key events toward the firmware;
// the event channel carries firmware output back. The two never depend
// on each other: either may be connected and used alone.
type Client struct {
	command *channel.Conn
	events  *channel.Conn
}

// New builds a client for the given socket paths. Nothing is dialed
// until one of the Connect methods runs.
func New(commandPath, eventsPath string) *Client {
	return &Client{
		command: channel.New(commandPath),
		events:  channel.New(eventsPath),
	}
}

// ConnectCommand dials the kscan command socket.
func (c *Client) ConnectCommand(ctx context.Context) error {
	return c.command.Connect(ctx)
}

// ConnectEvent dials the firmware event socket.
func (c *Client) ConnectEvent(ctx context.Context) error {
	return c.events.Connect(ctx)
}

// Connect dials both channels. Both attempts always run; per-channel
// failures are aggregated so the caller sees the full picture, and a
// channel that did connect stays connected and usable.
func (c *Client) Connect(ctx context.Context) error {
	var errs []error
	if err := c.ConnectCommand(ctx); err != nil {
		errs = append(errs, fmt.Errorf("command channel: %w", err))
	}
	if err := c.ConnectEvent(ctx); err != nil {
		errs = append(errs, fmt.Errorf("event channel: %w", err))
	}
	return errors.Join(errs...)
}

// CommandConnected reports the command channel state.
func (c *Client) CommandConnected() bool { return c.command.Connected() }

// EventConnected reports the event channel state.
func (c *Client) EventConnected() bool { return c.events.Connected() }

// SendPress injects a key press at a linear matrix position.
func (c *Client) SendPress(position uint32) error {
	return c.sendKeyEvent(keyEventAt(zmkproto.ActionPress, position))
}

// SendRelease injects a key release at a linear matrix position.
func (c *Client) SendRelease(position uint32) error {
	return c.sendKeyEvent(keyEventAt(zmkproto.ActionRelease, position))
}

// SendPressAt injects a key press addressed by explicit row/column.
func (c *Client) SendPressAt(row, col uint32) error {
	return c.sendKeyEvent(keyEventAtRC(zmkproto.ActionPress, row, col))
}

// SendReleaseAt injects a key release addressed by explicit row/column.
func (c *Client) SendReleaseAt(row, col uint32) error {
	return c.sendKeyEvent(keyEventAtRC(zmkproto.ActionRelease, row, col))
}

// ReceiveEvent blocks until one firmware event arrives and decodes it.
func (c *Client) ReceiveEvent() (*zmkproto.Event, error) {
	payload, err := c.events.Receive()
	if err != nil {
		return nil, err
	}

	ev, err := zmkproto.UnmarshalEvent(payload)
	if err != nil {
		return nil, fmt.Errorf("decode event: %w", err)
	}
	return ev, nil
}

// Close releases both channels regardless of their individual state.
// It never fails; a watcher blocked on the event channel observes a
// connection-closed receive error as its termination signal.
func (c *Client) Close() {
	_ = c.command.Close()
	_ = c.events.Close()
}

func (c *Client) sendKeyEvent(ev *zmkproto.KeyEvent) error {
	msg := &zmkproto.ClientMessage{KeyEvent: ev}
	payload, err := msg.Marshal()
	if err != nil {
		return fmt.Errorf("encode key event: %w", err)
	}
	return c.command.Send(payload)
}

func keyEventAt(action zmkproto.Action, position uint32) *zmkproto.KeyEvent {
	return &zmkproto.KeyEvent{Action: action, Position: &position}
}

func keyEventAtRC(action zmkproto.Action, row, col uint32) *zmkproto.KeyEvent {
	return &zmkproto.KeyEvent{Action: action, KeyPos: &zmkproto.KeyPosition{Row: row, Col: col}}
}
