// Package zmkproto encodes and decodes the protobuf messages exchanged
// with the ZMK native_sim firmware over the IPC sockets.
//
// The schema is small and owned by the firmware, so the wire format is
// implemented directly on protowire rather than through generated code.
// Outbound: ClientMessage wrapping one KeyEvent. Inbound: ZmkEvent, a
// oneof over kscan events and HID keyboard/consumer/mouse reports.
package zmkproto

import (
	"errors"
	"strconv"
)

// ErrDecode reports payload bytes that do not parse as a valid message.
var ErrDecode = errors.New("malformed zmk ipc message")

// Action is the key action carried by an outbound KeyEvent.
type Action uint32

const (
	ActionPress   Action = 0
	ActionRelease Action = 1
)

func (a Action) String() string {
	switch a {
	case ActionPress:
		return "PRESS"
	case ActionRelease:
		return "RELEASE"
	default:
		return "ACTION(" + strconv.FormatUint(uint64(a), 10) + ")"
	}
}

// Transport identifies the HID endpoint a report was routed to.
type Transport uint32

const (
	TransportNone Transport = 0
	TransportUSB  Transport = 1
	TransportBLE  Transport = 2
)

func (t Transport) String() string {
	switch t {
	case TransportNone:
		return "TRANSPORT_NONE"
	case TransportUSB:
		return "TRANSPORT_USB"
	case TransportBLE:
		return "TRANSPORT_BLE"
	default:
		return "TRANSPORT(" + strconv.FormatUint(uint64(t), 10) + ")"
	}
}

// KeyPosition addresses a key by explicit matrix coordinates.
type KeyPosition struct {
	Row uint32
	Col uint32
}

// KeyEvent is one synthetic key-matrix transition. Exactly one of
// KeyPos and Position must be set; the firmware derives the other from
// its configured column count.
type KeyEvent struct {
	Action   Action
	KeyPos   *KeyPosition
	Position *uint32
}

// ClientMessage is the outbound envelope sent on the kscan socket.
type ClientMessage struct {
	KeyEvent *KeyEvent
}

// EventKind discriminates the populated variant of an Event.
type EventKind int

const (
	KindUnknown EventKind = iota
	KindKscan
	KindKeyboard
	KindConsumer
	KindMouse
)

func (k EventKind) String() string {
	switch k {
	case KindKscan:
		return "kscan"
	case KindKeyboard:
		return "keyboard"
	case KindConsumer:
		return "consumer"
	case KindMouse:
		return "mouse"
	default:
		return "unknown"
	}
}

// KscanEvent is a raw key-scan transition observed inside the firmware.
type KscanEvent struct {
	Position  uint32
	Pressed   bool
	Source    uint32
	Timestamp uint64 // firmware uptime, milliseconds
}

// Endpoint describes the HID transport a report was delivered through.
type Endpoint struct {
	Transport  Transport
	BLEProfile uint32
}

// KeyboardReport mirrors one HID keyboard report.
type KeyboardReport struct {
	Endpoint  *Endpoint
	Modifiers uint32
	Keys      []byte
}

// ConsumerReport mirrors one HID consumer (media key) report.
type ConsumerReport struct {
	Endpoint *Endpoint
	Keys     []byte
}

// MouseReport mirrors one HID mouse report.
type MouseReport struct {
	Endpoint *Endpoint
	Buttons  uint32
	DX       int32
	DY       int32
	ScrollX  int32
	ScrollY  int32
}

// Event is the inbound firmware event union. Kind selects which variant
// field is populated; unrecognized variants decode to KindUnknown with
// the original payload preserved in Raw.
type Event struct {
	Kind EventKind

	Kscan    *KscanEvent
	Keyboard *KeyboardReport
	Consumer *ConsumerReport
	Mouse    *MouseReport

	Raw []byte
}
