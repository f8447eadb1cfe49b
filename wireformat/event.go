package wireformat

import (
	"encoding/binary"
	"math"

	"github.com/moshez/ward/domain/entities"
	"github.com/moshez/ward/domain/ports"
)

// EncodeEvent builds the payload delivered with ev. target is the registry
// id of ev.Target, or entities.NoTarget. Kinds without a defined layout
// encode to nil.
func EncodeEvent(ev *ports.Event, target int32) []byte {
	switch entities.ClassifyEvent(ev.Type) {
	case entities.EventClassPointer:
		b := make([]byte, 0, 20)
		b = appendF64(b, ev.ClientX)
		b = appendF64(b, ev.ClientY)
		return binary.LittleEndian.AppendUint32(b, uint32(target))
	case entities.EventClassKey:
		key := ev.Key
		if len(key) > math.MaxUint8 {
			key = key[:math.MaxUint8]
		}
		b := make([]byte, 0, len(key)+2)
		b = append(b, byte(len(key)))
		b = append(b, key...)
		return append(b, ev.Modifiers)
	case entities.EventClassInput:
		v := ev.Value
		if len(v) > math.MaxUint16 {
			v = v[:math.MaxUint16]
		}
		b := make([]byte, 0, len(v)+2)
		b = binary.LittleEndian.AppendUint16(b, uint16(len(v)))
		return append(b, v...)
	case entities.EventClassScroll:
		return appendF64(appendF64(make([]byte, 0, 16), ev.ScrollTop), ev.ScrollLeft)
	case entities.EventClassResize:
		return appendF64(appendF64(make([]byte, 0, 16), ev.Width), ev.Height)
	case entities.EventClassTouch:
		b := make([]byte, 0, 20)
		b = appendF64(b, ev.TouchX)
		b = appendF64(b, ev.TouchY)
		return binary.LittleEndian.AppendUint32(b, uint32(ev.TouchID))
	case entities.EventClassVisibility:
		if ev.Hidden {
			return []byte{1}
		}
		return []byte{0}
	default:
		return nil
	}
}

// DecodeEvent parses a payload produced by EncodeEvent for an event of the
// given kind. It returns the decoded fields and the pointer target id
// (entities.NoTarget for non-pointer kinds).
func DecodeEvent(kind string, payload []byte) (ports.Event, int32, error) {
	c := cursor{buf: payload}
	ev := ports.Event{Type: kind}
	target := entities.NoTarget

	switch entities.ClassifyEvent(kind) {
	case entities.EventClassPointer:
		ev.ClientX = c.f64()
		ev.ClientY = c.f64()
		target = int32(c.u32())
	case entities.EventClassKey:
		ev.Key = c.str8()
		ev.Modifiers = c.u8()
	case entities.EventClassInput:
		ev.Value = c.str16()
	case entities.EventClassScroll:
		ev.ScrollTop = c.f64()
		ev.ScrollLeft = c.f64()
	case entities.EventClassResize:
		ev.Width = c.f64()
		ev.Height = c.f64()
	case entities.EventClassTouch:
		ev.TouchX = c.f64()
		ev.TouchY = c.f64()
		ev.TouchID = int32(c.u32())
	case entities.EventClassVisibility:
		ev.Hidden = c.u8() != 0
	}
	return ev, target, c.err
}

func appendF64(b []byte, v float64) []byte {
	return binary.LittleEndian.AppendUint64(b, math.Float64bits(v))
}
