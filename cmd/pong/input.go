package main

import (
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/playmatatu/pong/internal/game"
)

// holdWindow is how long a key counts as held after its last key event.
// Terminals report presses and auto-repeats but never releases.
const holdWindow = 150 * time.Millisecond

// heldKeys turns terminal key events into a game.InputSource.
type heldKeys struct {
	mu   sync.Mutex
	last map[string]time.Time
	now  func() time.Time
}

func newHeldKeys() *heldKeys {
	return &heldKeys{last: make(map[string]time.Time), now: time.Now}
}

// keyAction maps a terminal key to a paddle action, or "".
func keyAction(key tcell.Key, r rune) string {
	switch key {
	case tcell.KeyUp:
		return game.KeyRightUp
	case tcell.KeyDown:
		return game.KeyRightDown
	case tcell.KeyRune:
		switch r {
		case 'w', 'W':
			return game.KeyLeftUp
		case 's', 'S':
			return game.KeyLeftDown
		}
	}
	return ""
}

func (h *heldKeys) press(action string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.last[action] = h.now()
}

func (h *heldKeys) Keys(int, *game.World) game.KeyState {
	h.mu.Lock()
	defer h.mu.Unlock()
	now := h.now()
	keys := game.KeyState{}
	for action, at := range h.last {
		if now.Sub(at) < holdWindow {
			keys[action] = true
		}
	}
	return keys
}
