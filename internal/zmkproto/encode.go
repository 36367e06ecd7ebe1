package zmkproto

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// Field numbers follow the firmware schema declaration order.
const (
	clientMessageKeyEvent = 1

	keyEventAction   = 1
	keyEventKeyPos   = 2
	keyEventPosition = 3

	keyPositionRow = 1
	keyPositionCol = 2

	eventKscan    = 1
	eventKeyboard = 2
	eventConsumer = 3
	eventMouse    = 4

	kscanPosition  = 1
	kscanPressed   = 2
	kscanSource    = 3
	kscanTimestamp = 4

	endpointTransport  = 1
	endpointBLEProfile = 2

	keyboardEndpoint  = 1
	keyboardModifiers = 2
	keyboardKeys      = 3

	consumerEndpoint = 1
	consumerKeys     = 2

	mouseEndpoint = 1
	mouseButtons  = 2
	mouseDX       = 3
	mouseDY       = 4
	mouseScrollX  = 5
	mouseScrollY  = 6
)

// Marshal encodes the outbound envelope. The wrapped KeyEvent must be
// present and carry exactly one addressing mode.
func (m *ClientMessage) Marshal() ([]byte, error) {
	if m.KeyEvent == nil {
		return nil, errors.New("client message has no key event")
	}

	inner, err := m.KeyEvent.marshal()
	if err != nil {
		return nil, err
	}

	var buf []byte
	buf = protowire.AppendTag(buf, clientMessageKeyEvent, protowire.BytesType)
	buf = protowire.AppendBytes(buf, inner)
	return buf, nil
}

func (e *KeyEvent) marshal() ([]byte, error) {
	if (e.KeyPos == nil) == (e.Position == nil) {
		return nil, errors.New("key event must set exactly one of key_pos and position")
	}

	var buf []byte
	if e.Action != 0 {
		buf = protowire.AppendTag(buf, keyEventAction, protowire.VarintType)
		buf = protowire.AppendVarint(buf, uint64(e.Action))
	}

	// oneof members always carry an explicit tag, even for zero values.
	if e.KeyPos != nil {
		var pos []byte
		if e.KeyPos.Row != 0 {
			pos = protowire.AppendTag(pos, keyPositionRow, protowire.VarintType)
			pos = protowire.AppendVarint(pos, uint64(e.KeyPos.Row))
		}
		if e.KeyPos.Col != 0 {
			pos = protowire.AppendTag(pos, keyPositionCol, protowire.VarintType)
			pos = protowire.AppendVarint(pos, uint64(e.KeyPos.Col))
		}
		buf = protowire.AppendTag(buf, keyEventKeyPos, protowire.BytesType)
		buf = protowire.AppendBytes(buf, pos)
	} else {
		buf = protowire.AppendTag(buf, keyEventPosition, protowire.VarintType)
		buf = protowire.AppendVarint(buf, uint64(*e.Position))
	}
	return buf, nil
}

// Marshal encodes an inbound-style event. The client itself never sends
// events; this direction exists for test doubles standing in for the
// firmware.
func (e *Event) Marshal() ([]byte, error) {
	var buf []byte

	switch e.Kind {
	case KindKscan:
		if e.Kscan == nil {
			return nil, errors.New("kscan event variant is nil")
		}
		buf = protowire.AppendTag(buf, eventKscan, protowire.BytesType)
		buf = protowire.AppendBytes(buf, e.Kscan.marshal())
	case KindKeyboard:
		if e.Keyboard == nil {
			return nil, errors.New("keyboard report variant is nil")
		}
		buf = protowire.AppendTag(buf, eventKeyboard, protowire.BytesType)
		buf = protowire.AppendBytes(buf, e.Keyboard.marshal())
	case KindConsumer:
		if e.Consumer == nil {
			return nil, errors.New("consumer report variant is nil")
		}
		buf = protowire.AppendTag(buf, eventConsumer, protowire.BytesType)
		buf = protowire.AppendBytes(buf, e.Consumer.marshal())
	case KindMouse:
		if e.Mouse == nil {
			return nil, errors.New("mouse report variant is nil")
		}
		buf = protowire.AppendTag(buf, eventMouse, protowire.BytesType)
		buf = protowire.AppendBytes(buf, e.Mouse.marshal())
	case KindUnknown:
		if e.Raw == nil {
			return nil, errors.New("unknown event variant has no raw payload")
		}
		return e.Raw, nil
	default:
		return nil, fmt.Errorf("unsupported event kind %d", e.Kind)
	}
	return buf, nil
}

func (k *KscanEvent) marshal() []byte {
	var buf []byte
	if k.Position != 0 {
		buf = protowire.AppendTag(buf, kscanPosition, protowire.VarintType)
		buf = protowire.AppendVarint(buf, uint64(k.Position))
	}
	if k.Pressed {
		buf = protowire.AppendTag(buf, kscanPressed, protowire.VarintType)
		buf = protowire.AppendVarint(buf, 1)
	}
	if k.Source != 0 {
		buf = protowire.AppendTag(buf, kscanSource, protowire.VarintType)
		buf = protowire.AppendVarint(buf, uint64(k.Source))
	}
	if k.Timestamp != 0 {
		buf = protowire.AppendTag(buf, kscanTimestamp, protowire.VarintType)
		buf = protowire.AppendVarint(buf, k.Timestamp)
	}
	return buf
}

func (e *Endpoint) marshal() []byte {
	var buf []byte
	if e.Transport != 0 {
		buf = protowire.AppendTag(buf, endpointTransport, protowire.VarintType)
		buf = protowire.AppendVarint(buf, uint64(e.Transport))
	}
	if e.BLEProfile != 0 {
		buf = protowire.AppendTag(buf, endpointBLEProfile, protowire.VarintType)
		buf = protowire.AppendVarint(buf, uint64(e.BLEProfile))
	}
	return buf
}

func (r *KeyboardReport) marshal() []byte {
	var buf []byte
	if r.Endpoint != nil {
		buf = protowire.AppendTag(buf, keyboardEndpoint, protowire.BytesType)
		buf = protowire.AppendBytes(buf, r.Endpoint.marshal())
	}
	if r.Modifiers != 0 {
		buf = protowire.AppendTag(buf, keyboardModifiers, protowire.VarintType)
		buf = protowire.AppendVarint(buf, uint64(r.Modifiers))
	}
	if len(r.Keys) > 0 {
		buf = protowire.AppendTag(buf, keyboardKeys, protowire.BytesType)
		buf = protowire.AppendBytes(buf, r.Keys)
	}
	return buf
}

func (r *ConsumerReport) marshal() []byte {
	var buf []byte
	if r.Endpoint != nil {
		buf = protowire.AppendTag(buf, consumerEndpoint, protowire.BytesType)
		buf = protowire.AppendBytes(buf, r.Endpoint.marshal())
	}
	if len(r.Keys) > 0 {
		buf = protowire.AppendTag(buf, consumerKeys, protowire.BytesType)
		buf = protowire.AppendBytes(buf, r.Keys)
	}
	return buf
}

func (r *MouseReport) marshal() []byte {
	var buf []byte
	if r.Endpoint != nil {
		buf = protowire.AppendTag(buf, mouseEndpoint, protowire.BytesType)
		buf = protowire.AppendBytes(buf, r.Endpoint.marshal())
	}
	if r.Buttons != 0 {
		buf = protowire.AppendTag(buf, mouseButtons, protowire.VarintType)
		buf = protowire.AppendVarint(buf, uint64(r.Buttons))
	}
	buf = appendSint32(buf, mouseDX, r.DX)
	buf = appendSint32(buf, mouseDY, r.DY)
	buf = appendSint32(buf, mouseScrollX, r.ScrollX)
	buf = appendSint32(buf, mouseScrollY, r.ScrollY)
	return buf
}

func appendSint32(buf []byte, num protowire.Number, v int32) []byte {
	if v == 0 {
		return buf
	}
	buf = protowire.AppendTag(buf, num, protowire.VarintType)
	return protowire.AppendVarint(buf, protowire.EncodeZigZag(int64(v)))
}
