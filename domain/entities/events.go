package entities

// EventClass selects the payload layout delivered with an event kind.
type EventClass int

const (
	// EventClassNone carries no payload.
	EventClassNone EventClass = iota
	EventClassPointer
	EventClassKey
	EventClassInput
	EventClassScroll
	EventClassResize
	EventClassTouch
	EventClassVisibility
)

// Key modifier bits.
const (
	ModShift uint8 = 1 << iota
	ModCtrl
	ModAlt
	ModMeta
)

var eventClasses = map[string]EventClass{
	"click":       EventClassPointer,
	"dblclick":    EventClassPointer,
	"auxclick":    EventClassPointer,
	"contextmenu": EventClassPointer,
	"mousedown":   EventClassPointer,
	"mouseup":     EventClassPointer,
	"mousemove":   EventClassPointer,
	"mouseover":   EventClassPointer,
	"mouseout":    EventClassPointer,
	"mouseenter":  EventClassPointer,
	"mouseleave":  EventClassPointer,
	"pointerdown": EventClassPointer,
	"pointerup":   EventClassPointer,
	"pointermove": EventClassPointer,
	"wheel":       EventClassPointer,

	"keydown":  EventClassKey,
	"keyup":    EventClassKey,
	"keypress": EventClassKey,

	"input":  EventClassInput,
	"change": EventClassInput,

	"scroll": EventClassScroll,
	"resize": EventClassResize,

	"touchstart":  EventClassTouch,
	"touchmove":   EventClassTouch,
	"touchend":    EventClassTouch,
	"touchcancel": EventClassTouch,

	"visibilitychange": EventClassVisibility,
}

// ClassifyEvent returns the payload class for an event kind. Unknown kinds
// get EventClassNone.
func ClassifyEvent(kind string) EventClass {
	return eventClasses[kind]
}
