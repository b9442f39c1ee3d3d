// Package input defines window-system independent input events and the
// held-key state derived from them.
package input

// EventType identifies what an Event carries.
type EventType int

// Event types.
const (
	EventNone EventType = iota
	EventQuit
	EventWindowResize
	EventKeyDown
	EventKeyUp
	EventMouseMove
	EventMouseDown
	EventMouseUp
)

func (t EventType) String() string {
	switch t {
	case EventQuit:
		return "quit"
	case EventWindowResize:
		return "resize"
	case EventKeyDown:
		return "key_down"
	case EventKeyUp:
		return "key_up"
	case EventMouseMove:
		return "mouse_move"
	case EventMouseDown:
		return "mouse_down"
	case EventMouseUp:
		return "mouse_up"
	}
	return "none"
}

// Key is a physical key position. Values follow the USB HID usage table,
// which is also what SDL scancodes use.
type Key uint16

// Keys used by the engine.
const (
	KeyUnknown Key = 0
	KeyA       Key = 4
	KeyD       Key = 7
	KeyE       Key = 8
	KeyQ       Key = 20
	KeyR       Key = 21
	KeyS       Key = 22
	KeyW       Key = 26
	KeyEscape  Key = 41
	KeySpace   Key = 44
	KeyF1      Key = 58
	KeyLCtrl   Key = 224
	KeyLShift  Key = 225

	maxKey = 512
)

// Mouse buttons.
const (
	ButtonLeft   uint8 = 1
	ButtonMiddle uint8 = 2
	ButtonRight  uint8 = 3
)

// Event is one processed input event.
type Event struct {
	Type EventType
	Key  Key
	// Repeat is set for auto-repeated key downs.
	Repeat bool

	Width  int
	Height int

	// Mouse position and, for motion, the relative movement.
	X, Y   int
	DX, DY int
	Button uint8
}

// State tracks which keys and buttons are held.
type State struct {
	keys    [maxKey]bool
	buttons [8]bool
}

// Handle updates the state from e.
func (s *State) Handle(e Event) {
	switch e.Type {
	case EventKeyDown, EventKeyUp:
		if int(e.Key) < maxKey {
			s.keys[e.Key] = e.Type == EventKeyDown
		}
	case EventMouseDown, EventMouseUp:
		if int(e.Button) < len(s.buttons) {
			s.buttons[e.Button] = e.Type == EventMouseDown
		}
	}
}

// Down reports whether k is held.
func (s *State) Down(k Key) bool {
	return int(k) < maxKey && s.keys[k]
}

// ButtonDown reports whether mouse button b is held.
func (s *State) ButtonDown(b uint8) bool {
	return int(b) < len(s.buttons) && s.buttons[b]
}

// Axis returns +1 when pos is held, -1 when neg is held, 0 for both or neither.
func (s *State) Axis(neg, pos Key) float32 {
	var v float32
	if s.Down(pos) {
		v++
	}
	if s.Down(neg) {
		v--
	}
	return v
}

// Reset releases every key and button, e.g. on focus loss.
func (s *State) Reset() {
	*s = State{}
}
