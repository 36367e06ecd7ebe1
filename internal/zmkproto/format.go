package zmkproto

import (
	"fmt"
	"strings"
)

// String renders one human-readable line per event, keyed by variant.
func (e *Event) String() string {
	switch e.Kind {
	case KindKscan:
		k := e.Kscan
		state := "RELEASE"
		if k.Pressed {
			state = "PRESS  "
		}
		return fmt.Sprintf("[kscan   ] %s  pos=%-4d  source=%d  ts=%d ms",
			state, k.Position, k.Source, k.Timestamp)
	case KindKeyboard:
		r := e.Keyboard
		return fmt.Sprintf("[keyboard] transport=%-15s  modifiers=0x%02x  keys=[%s]",
			transportName(r.Endpoint), r.Modifiers, keyList(r.Keys))
	case KindConsumer:
		r := e.Consumer
		return fmt.Sprintf("[consumer] transport=%-15s  keys=[%s]",
			transportName(r.Endpoint), keyList(r.Keys))
	case KindMouse:
		r := e.Mouse
		return fmt.Sprintf("[mouse   ] transport=%-15s  buttons=%d  dx=%d  dy=%d  scroll_x=%d  scroll_y=%d",
			transportName(r.Endpoint), r.Buttons, r.DX, r.DY, r.ScrollX, r.ScrollY)
	default:
		return fmt.Sprintf("[unknown ] %d bytes", len(e.Raw))
	}
}

func transportName(ep *Endpoint) string {
	if ep == nil {
		return TransportNone.String()
	}
	return ep.Transport.String()
}

// keyList formats the nonzero key codes of a HID report, or "-" when
// the report is empty.
func keyList(keys []byte) string {
	pressed := make([]string, 0, len(keys))
	for _, k := range keys {
		if k == 0 {
			continue
		}
		pressed = append(pressed, fmt.Sprintf("0x%02x", k))
	}
	if len(pressed) == 0 {
		return "-"
	}
	return strings.Join(pressed, ", ")
}
