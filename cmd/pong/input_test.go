package main

import (
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/playmatatu/pong/internal/game"
)

func TestKeyAction(t *testing.T) {
	tests := []struct {
		key  tcell.Key
		r    rune
		want string
	}{
		{tcell.KeyRune, 'w', game.KeyLeftUp},
		{tcell.KeyRune, 'S', game.KeyLeftDown},
		{tcell.KeyUp, 0, game.KeyRightUp},
		{tcell.KeyDown, 0, game.KeyRightDown},
		{tcell.KeyRune, 'x', ""},
		{tcell.KeyEnter, 0, ""},
	}
	for _, tt := range tests {
		if got := keyAction(tt.key, tt.r); got != tt.want {
			t.Errorf("keyAction(%v, %q) = %q, want %q", tt.key, tt.r, got, tt.want)
		}
	}
}

func TestHeldKeysExpire(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	h := newHeldKeys()
	h.now = func() time.Time { return now }

	h.press(game.KeyLeftUp)
	if dir := h.Keys(0, nil).Direction(game.Left); dir != -1 {
		t.Errorf("direction right after press = %d, want -1", dir)
	}

	now = now.Add(holdWindow - time.Millisecond)
	if !h.Keys(1, nil)[game.KeyLeftUp] {
		t.Errorf("key released inside the hold window")
	}

	now = now.Add(2 * time.Millisecond)
	if len(h.Keys(2, nil)) != 0 {
		t.Errorf("key still held after the hold window")
	}
}

func TestBotInputs(t *testing.T) {
	for sides, want := range map[string]int{"none": 0, "left": 1, "right": 1, "both": 2} {
		in, err := botInputs(sides, 1)
		if err != nil || len(in) != want {
			t.Errorf("botInputs(%q) = %d sources, %v", sides, len(in), err)
		}
	}
	if _, err := botInputs("middle", 1); err == nil {
		t.Errorf("unknown side accepted")
	}
}

func TestViewportClamps(t *testing.T) {
	v := newViewport(82, 24, game.DefaultTuning())
	if c := v.col(0); c != v.left {
		t.Errorf("col(0) = %d", c)
	}
	if c := v.col(10000); c != v.left+v.cols-1 {
		t.Errorf("col beyond table = %d", c)
	}
	if r := v.row(-50); r != v.top {
		t.Errorf("row above table = %d", r)
	}
	if r := v.row(399.9); r != v.top+v.rows-1 {
		t.Errorf("row at bottom = %d", r)
	}
}
