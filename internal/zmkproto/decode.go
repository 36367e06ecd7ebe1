package zmkproto

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// UnmarshalEvent decodes one inbound firmware event. Unknown fields are
// skipped; an unrecognized payload variant yields KindUnknown with the
// original bytes preserved in Raw.
func UnmarshalEvent(data []byte) (*Event, error) {
	ev := &Event{Kind: KindUnknown}

	rest := data
	for len(rest) > 0 {
		num, typ, n := protowire.ConsumeTag(rest)
		if n < 0 {
			return nil, decodeErr("event tag", n)
		}
		rest = rest[n:]

		if typ == protowire.BytesType {
			body, n := protowire.ConsumeBytes(rest)
			if n < 0 {
				return nil, decodeErr("event payload", n)
			}
			rest = rest[n:]

			switch num {
			case eventKscan:
				kscan, err := unmarshalKscan(body)
				if err != nil {
					return nil, err
				}
				ev.setVariant(KindKscan)
				ev.Kscan = kscan
				continue
			case eventKeyboard:
				kb, err := unmarshalKeyboard(body)
				if err != nil {
					return nil, err
				}
				ev.setVariant(KindKeyboard)
				ev.Keyboard = kb
				continue
			case eventConsumer:
				cr, err := unmarshalConsumer(body)
				if err != nil {
					return nil, err
				}
				ev.setVariant(KindConsumer)
				ev.Consumer = cr
				continue
			case eventMouse:
				mr, err := unmarshalMouse(body)
				if err != nil {
					return nil, err
				}
				ev.setVariant(KindMouse)
				ev.Mouse = mr
				continue
			}
			continue
		}

		n = protowire.ConsumeFieldValue(num, typ, rest)
		if n < 0 {
			return nil, decodeErr("event field", n)
		}
		rest = rest[n:]
	}

	if ev.Kind == KindUnknown {
		ev.Raw = data
	}
	return ev, nil
}

// setVariant enforces last-one-wins oneof semantics when a peer sends
// more than one payload variant in a single event.
func (e *Event) setVariant(kind EventKind) {
	e.Kscan = nil
	e.Keyboard = nil
	e.Consumer = nil
	e.Mouse = nil
	e.Kind = kind
}

// UnmarshalClientMessage decodes an outbound envelope. The client never
// receives these; the firmware-side decode exists for test doubles.
func UnmarshalClientMessage(data []byte) (*ClientMessage, error) {
	msg := &ClientMessage{}

	rest := data
	for len(rest) > 0 {
		num, typ, n := protowire.ConsumeTag(rest)
		if n < 0 {
			return nil, decodeErr("client message tag", n)
		}
		rest = rest[n:]

		if num == clientMessageKeyEvent && typ == protowire.BytesType {
			body, n := protowire.ConsumeBytes(rest)
			if n < 0 {
				return nil, decodeErr("client message payload", n)
			}
			rest = rest[n:]

			ev, err := unmarshalKeyEvent(body)
			if err != nil {
				return nil, err
			}
			msg.KeyEvent = ev
			continue
		}

		n = protowire.ConsumeFieldValue(num, typ, rest)
		if n < 0 {
			return nil, decodeErr("client message field", n)
		}
		rest = rest[n:]
	}
	return msg, nil
}

func unmarshalKeyEvent(data []byte) (*KeyEvent, error) {
	ev := &KeyEvent{}

	rest := data
	for len(rest) > 0 {
		num, typ, n := protowire.ConsumeTag(rest)
		if n < 0 {
			return nil, decodeErr("key event tag", n)
		}
		rest = rest[n:]

		switch {
		case num == keyEventAction && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(rest)
			if n < 0 {
				return nil, decodeErr("key event action", n)
			}
			rest = rest[n:]
			ev.Action = Action(v)
		case num == keyEventKeyPos && typ == protowire.BytesType:
			body, n := protowire.ConsumeBytes(rest)
			if n < 0 {
				return nil, decodeErr("key event key_pos", n)
			}
			rest = rest[n:]

			pos, err := unmarshalKeyPosition(body)
			if err != nil {
				return nil, err
			}
			ev.KeyPos = pos
			ev.Position = nil
		case num == keyEventPosition && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(rest)
			if n < 0 {
				return nil, decodeErr("key event position", n)
			}
			rest = rest[n:]
			pos := uint32(v)
			ev.Position = &pos
			ev.KeyPos = nil
		default:
			n = protowire.ConsumeFieldValue(num, typ, rest)
			if n < 0 {
				return nil, decodeErr("key event field", n)
			}
			rest = rest[n:]
		}
	}
	return ev, nil
}

func unmarshalKeyPosition(data []byte) (*KeyPosition, error) {
	pos := &KeyPosition{}
	err := eachVarint("key position", data, func(num protowire.Number, v uint64) {
		switch num {
		case keyPositionRow:
			pos.Row = uint32(v)
		case keyPositionCol:
			pos.Col = uint32(v)
		}
	})
	if err != nil {
		return nil, err
	}
	return pos, nil
}

func unmarshalKscan(data []byte) (*KscanEvent, error) {
	k := &KscanEvent{}
	err := eachVarint("kscan event", data, func(num protowire.Number, v uint64) {
		switch num {
		case kscanPosition:
			k.Position = uint32(v)
		case kscanPressed:
			k.Pressed = v != 0
		case kscanSource:
			k.Source = uint32(v)
		case kscanTimestamp:
			k.Timestamp = v
		}
	})
	if err != nil {
		return nil, err
	}
	return k, nil
}

func unmarshalEndpoint(data []byte) (*Endpoint, error) {
	ep := &Endpoint{}
	err := eachVarint("endpoint", data, func(num protowire.Number, v uint64) {
		switch num {
		case endpointTransport:
			ep.Transport = Transport(v)
		case endpointBLEProfile:
			ep.BLEProfile = uint32(v)
		}
	})
	if err != nil {
		return nil, err
	}
	return ep, nil
}

func unmarshalKeyboard(data []byte) (*KeyboardReport, error) {
	r := &KeyboardReport{}

	rest := data
	for len(rest) > 0 {
		num, typ, n := protowire.ConsumeTag(rest)
		if n < 0 {
			return nil, decodeErr("keyboard report tag", n)
		}
		rest = rest[n:]

		switch {
		case num == keyboardEndpoint && typ == protowire.BytesType:
			body, n := protowire.ConsumeBytes(rest)
			if n < 0 {
				return nil, decodeErr("keyboard report endpoint", n)
			}
			rest = rest[n:]

			ep, err := unmarshalEndpoint(body)
			if err != nil {
				return nil, err
			}
			r.Endpoint = ep
		case num == keyboardModifiers && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(rest)
			if n < 0 {
				return nil, decodeErr("keyboard report modifiers", n)
			}
			rest = rest[n:]
			r.Modifiers = uint32(v)
		case num == keyboardKeys && typ == protowire.BytesType:
			body, n := protowire.ConsumeBytes(rest)
			if n < 0 {
				return nil, decodeErr("keyboard report keys", n)
			}
			rest = rest[n:]
			r.Keys = append([]byte(nil), body...)
		default:
			n = protowire.ConsumeFieldValue(num, typ, rest)
			if n < 0 {
				return nil, decodeErr("keyboard report field", n)
			}
			rest = rest[n:]
		}
	}
	return r, nil
}

func unmarshalConsumer(data []byte) (*ConsumerReport, error) {
	r := &ConsumerReport{}

	rest := data
	for len(rest) > 0 {
		num, typ, n := protowire.ConsumeTag(rest)
		if n < 0 {
			return nil, decodeErr("consumer report tag", n)
		}
		rest = rest[n:]

		switch {
		case num == consumerEndpoint && typ == protowire.BytesType:
			body, n := protowire.ConsumeBytes(rest)
			if n < 0 {
				return nil, decodeErr("consumer report endpoint", n)
			}
			rest = rest[n:]

			ep, err := unmarshalEndpoint(body)
			if err != nil {
				return nil, err
			}
			r.Endpoint = ep
		case num == consumerKeys && typ == protowire.BytesType:
			body, n := protowire.ConsumeBytes(rest)
			if n < 0 {
				return nil, decodeErr("consumer report keys", n)
			}
			rest = rest[n:]
			r.Keys = append([]byte(nil), body...)
		default:
			n = protowire.ConsumeFieldValue(num, typ, rest)
			if n < 0 {
				return nil, decodeErr("consumer report field", n)
			}
			rest = rest[n:]
		}
	}
	return r, nil
}

func unmarshalMouse(data []byte) (*MouseReport, error) {
	r := &MouseReport{}

	rest := data
	for len(rest) > 0 {
		num, typ, n := protowire.ConsumeTag(rest)
		if n < 0 {
			return nil, decodeErr("mouse report tag", n)
		}
		rest = rest[n:]

		switch {
		case num == mouseEndpoint && typ == protowire.BytesType:
			body, n := protowire.ConsumeBytes(rest)
			if n < 0 {
				return nil, decodeErr("mouse report endpoint", n)
			}
			rest = rest[n:]

			ep, err := unmarshalEndpoint(body)
			if err != nil {
				return nil, err
			}
			r.Endpoint = ep
		case typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(rest)
			if n < 0 {
				return nil, decodeErr("mouse report field", n)
			}
			rest = rest[n:]

			switch num {
			case mouseButtons:
				r.Buttons = uint32(v)
			case mouseDX:
				r.DX = int32(protowire.DecodeZigZag(v))
			case mouseDY:
				r.DY = int32(protowire.DecodeZigZag(v))
			case mouseScrollX:
				r.ScrollX = int32(protowire.DecodeZigZag(v))
			case mouseScrollY:
				r.ScrollY = int32(protowire.DecodeZigZag(v))
			}
		default:
			n = protowire.ConsumeFieldValue(num, typ, rest)
			if n < 0 {
				return nil, decodeErr("mouse report field", n)
			}
			rest = rest[n:]
		}
	}
	return r, nil
}

// eachVarint walks a message whose known fields are all varints,
// invoking fn per varint field and skipping everything else.
func eachVarint(what string, data []byte, fn func(num protowire.Number, v uint64)) error {
	rest := data
	for len(rest) > 0 {
		num, typ, n := protowire.ConsumeTag(rest)
		if n < 0 {
			return decodeErr(what+" tag", n)
		}
		rest = rest[n:]

		if typ == protowire.VarintType {
			v, n := protowire.ConsumeVarint(rest)
			if n < 0 {
				return decodeErr(what+" value", n)
			}
			rest = rest[n:]
			fn(num, v)
			continue
		}

		n = protowire.ConsumeFieldValue(num, typ, rest)
		if n < 0 {
			return decodeErr(what+" field", n)
		}
		rest = rest[n:]
	}
	return nil
}

func decodeErr(what string, n int) error {
	return fmt.Errorf("%w: %s: %v", ErrDecode, what, protowire.ParseError(n))
}
