package game

import (
	"math"
	"math/rand"
)

// DefaultMissChance is the probability a bot lets a ball through.
const DefaultMissChance = 0.25

// Bot plays one side. Each time the ball heads its way it decides once,
// from its seeded generator, whether to return it and at which point of the
// paddle; otherwise it drifts back to the middle.
type Bot struct {
	Side       Side
	MissChance float64

	rng     *rand.Rand
	planned bool
	miss    bool
	offset  float64
}

// NewBot creates a bot whose decisions are fixed by seed.
func NewBot(side Side, seed int64, missChance float64) *Bot {
	return &Bot{
		Side:       side,
		MissChance: missChance,
		rng:        rand.New(rand.NewSource(seed)),
	}
}

// NewBotPair creates two bots seeded from a single match seed.
func NewBotPair(seed int64, missChance float64) Inputs {
	return Inputs{
		NewBot(Left, seed*2+1, missChance),
		NewBot(Right, seed*2+2, missChance),
	}
}

func (b *Bot) Keys(_ int, w *World) KeyState {
	t := w.Tuning
	p := w.Paddle(b.Side)
	ball := w.Ball
	target := (t.TableHeight - t.PaddleHeight) / 2

	if ball.Active && ball.Velocity.X != 0 && sideToward(ball.Velocity.X) == b.Side {
		if !b.planned {
			b.planned = true
			b.miss = b.rng.Float64() < b.MissChance
			b.offset = (b.rng.Float64()*2 - 1) * 0.3 * t.PaddleHeight
		}
		if b.miss {
			target = ComputeMissTarget(ball, b.Side, p.Y, t)
		} else if y, ok := PredictYAtX(t.ContactX(b.Side), ball, t); ok {
			target = y - t.PaddleHeight/2 - b.offset
		}
	} else {
		b.planned = false
	}

	target = t.clampPaddleY(target)
	d := target - p.Y
	if math.Abs(d) < t.PaddleSpeed*TickDuration {
		return KeyState{}
	}
	dir := 1
	if d < 0 {
		dir = -1
	}
	return KeyState{Press(b.Side, dir): true}
}
