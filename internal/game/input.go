package game

// Logical actions a KeyState is keyed by.
const (
	KeyLeftUp    = "left-up"
	KeyLeftDown  = "left-down"
	KeyRightUp   = "right-up"
	KeyRightDown = "right-down"
)

// KeyState is the set of held actions for one tick.
type KeyState map[string]bool

// Direction resolves the held keys for side into -1 (up), +1 (down) or 0.
// Holding both cancels out.
func (k KeyState) Direction(side Side) int {
	up, down := KeyLeftUp, KeyLeftDown
	if side == Right {
		up, down = KeyRightUp, KeyRightDown
	}
	dir := 0
	if k[up] {
		dir--
	}
	if k[down] {
		dir++
	}
	return dir
}

// Press returns the key that moves side in dir, or "" for dir 0.
func Press(side Side, dir int) string {
	switch {
	case dir < 0 && side == Left:
		return KeyLeftUp
	case dir > 0 && side == Left:
		return KeyLeftDown
	case dir < 0:
		return KeyRightUp
	case dir > 0:
		return KeyRightDown
	}
	return ""
}

// InputSource is polled exactly once per live tick. The world is read-only
// to implementations.
type InputSource interface {
	Keys(tick int, w *World) KeyState
}

// StaticInput holds the same keys every tick.
type StaticInput KeyState

func (s StaticInput) Keys(int, *World) KeyState {
	return KeyState(s)
}

// ScriptedInput maps ticks to key states; ticks without an entry hold
// nothing.
type ScriptedInput map[int]KeyState

func (s ScriptedInput) Keys(tick int, _ *World) KeyState {
	if k, ok := s[tick]; ok {
		return k
	}
	return KeyState{}
}

// Inputs merges several sources; a key is held if any source holds it.
type Inputs []InputSource

func (in Inputs) Keys(tick int, w *World) KeyState {
	merged := KeyState{}
	for _, src := range in {
		for k, held := range src.Keys(tick, w) {
			if held {
				merged[k] = true
			}
		}
	}
	return merged
}
