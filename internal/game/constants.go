package game

import (
	"errors"
	"fmt"
	"math"
)

// Simulation constants shared by live play, prediction and replay.
// The tick rate is fixed; everything else lives in Tuning.
const (
	TickRate     = 60
	TickDuration = 1.0 / TickRate

	// velocityEpsilon is the horizontal speed below which a ball is treated as
	// never reaching a vertical line.
	velocityEpsilon = 1e-6
)

// ErrInvalidTuning is returned when a Tuning cannot produce a sane simulation.
var ErrInvalidTuning = errors.New("invalid tuning")

// Tuning holds the table geometry and physics parameters. Live play and replay
// must share one Tuning or the reconstructed match drifts.
type Tuning struct {
	TableWidth  float64 `toml:"table_width" json:"table_width"`
	TableHeight float64 `toml:"table_height" json:"table_height"`

	BallRadius float64 `toml:"ball_radius" json:"ball_radius"`

	PaddleWidth  float64 `toml:"paddle_width" json:"paddle_width"`
	PaddleHeight float64 `toml:"paddle_height" json:"paddle_height"`
	PaddleInset  float64 `toml:"paddle_inset" json:"paddle_inset"` // gap between table edge and paddle
	PaddleSpeed  float64 `toml:"paddle_speed" json:"paddle_speed"`

	ServeSpeed      float64 `toml:"serve_speed" json:"serve_speed"`
	ServeAngleDeg   float64 `toml:"serve_angle_deg" json:"serve_angle_deg"` // max deviation from horizontal
	ServeDelayTicks int     `toml:"serve_delay_ticks" json:"serve_delay_ticks"`

	MaxBallSpeed     float64 `toml:"max_ball_speed" json:"max_ball_speed"`
	SpeedEscalation  float64 `toml:"speed_escalation" json:"speed_escalation"`
	MaxBounceAngle   float64 `toml:"max_bounce_angle_deg" json:"max_bounce_angle_deg"`
	ContactClamp     float64 `toml:"contact_clamp" json:"contact_clamp"`
	SpinTransfer     float64 `toml:"spin_transfer" json:"spin_transfer"`
	MissMarginFactor float64 `toml:"miss_margin_factor" json:"miss_margin_factor"` // fraction of paddle height

	MaxFrameDuration float64 `toml:"max_frame_duration" json:"max_frame_duration"`
	WinningScore     int     `toml:"winning_score" json:"winning_score"`
	MatchTolerance   float64 `toml:"match_tolerance" json:"match_tolerance"`
}

// DefaultTuning returns the canonical table: 800x400 with 10x80 paddles.
func DefaultTuning() Tuning {
	return Tuning{
		TableWidth:  800,
		TableHeight: 400,

		BallRadius: 8,

		PaddleWidth:  10,
		PaddleHeight: 80,
		PaddleInset:  30,
		PaddleSpeed:  400,

		ServeSpeed:      300,
		ServeAngleDeg:   30,
		ServeDelayTicks: 60,

		MaxBallSpeed:     800,
		SpeedEscalation:  1.05,
		MaxBounceAngle:   60,
		ContactClamp:     0.8,
		SpinTransfer:     0.3,
		MissMarginFactor: 0.25,

		MaxFrameDuration: 0.1,
		WinningScore:     5,
		MatchTolerance:   5,
	}
}

// Validate checks the tuning for values that break the simulation.
func (t Tuning) Validate() error {
	switch {
	case t.TableWidth <= 0 || t.TableHeight <= 0:
		return fmt.Errorf("%w: table must have positive size", ErrInvalidTuning)
	case t.BallRadius <= 0 || 2*t.BallRadius >= t.TableHeight:
		return fmt.Errorf("%w: ball radius %.2f does not fit the table", ErrInvalidTuning, t.BallRadius)
	case t.PaddleWidth <= 0 || t.PaddleHeight <= 0 || t.PaddleHeight > t.TableHeight:
		return fmt.Errorf("%w: paddle %.2fx%.2f does not fit the table", ErrInvalidTuning, t.PaddleWidth, t.PaddleHeight)
	case t.PaddleInset < 0 || 2*(t.PaddleInset+t.PaddleWidth) >= t.TableWidth:
		return fmt.Errorf("%w: paddle inset %.2f leaves no playfield", ErrInvalidTuning, t.PaddleInset)
	case t.PaddleSpeed <= 0 || t.ServeSpeed <= 0:
		return fmt.Errorf("%w: speeds must be positive", ErrInvalidTuning)
	case t.MaxBallSpeed < t.ServeSpeed:
		return fmt.Errorf("%w: max ball speed below serve speed", ErrInvalidTuning)
	case t.MaxBallSpeed*TickDuration >= 2*t.BallRadius:
		// one tick of travel must not skip the contact window of a paddle face
		return fmt.Errorf("%w: max ball speed %.2f tunnels through paddles", ErrInvalidTuning, t.MaxBallSpeed)
	case t.ContactClamp <= 0 || t.ContactClamp > 1:
		return fmt.Errorf("%w: contact clamp must be in (0,1]", ErrInvalidTuning)
	case t.MaxBounceAngle <= 0 || t.MaxBounceAngle >= 90:
		return fmt.Errorf("%w: bounce angle must be in (0,90)", ErrInvalidTuning)
	case t.ServeAngleDeg < 0 || t.ServeAngleDeg >= 90:
		return fmt.Errorf("%w: serve angle must be in [0,90)", ErrInvalidTuning)
	case t.ServeDelayTicks < 0:
		return fmt.Errorf("%w: serve delay must not be negative", ErrInvalidTuning)
	case t.MaxFrameDuration < TickDuration:
		return fmt.Errorf("%w: max frame duration shorter than one tick", ErrInvalidTuning)
	case t.WinningScore <= 0:
		return fmt.Errorf("%w: winning score must be positive", ErrInvalidTuning)
	case t.MatchTolerance < 0 || t.MissMarginFactor < 0 || t.SpinTransfer < 0 || t.SpeedEscalation < 1:
		return fmt.Errorf("%w: negative tolerance, margin or spin", ErrInvalidTuning)
	}
	return nil
}

// LeftPaddleX returns the left edge of the left paddle.
func (t Tuning) LeftPaddleX() float64 {
	return t.PaddleInset
}

// RightPaddleX returns the left edge of the right paddle.
func (t Tuning) RightPaddleX() float64 {
	return t.TableWidth - t.PaddleInset - t.PaddleWidth
}

// FaceX returns the x coordinate of the paddle face on the given side: the
// vertical edge nearest the table center.
func (t Tuning) FaceX(side Side) float64 {
	if side == Left {
		return t.LeftPaddleX() + t.PaddleWidth
	}
	return t.RightPaddleX()
}

// ContactX returns where the ball center sits when touching a paddle face.
func (t Tuning) ContactX(side Side) float64 {
	if side == Left {
		return t.FaceX(side) + t.BallRadius
	}
	return t.FaceX(side) - t.BallRadius
}

func (t Tuning) maxPaddleY() float64 {
	return t.TableHeight - t.PaddleHeight
}

func (t Tuning) clampPaddleY(y float64) float64 {
	return math.Max(0, math.Min(t.maxPaddleY(), y))
}

func (t Tuning) center() Vec2 {
	return NewVec2(t.TableWidth/2, t.TableHeight/2)
}

func (t Tuning) missMargin() float64 {
	return t.MissMarginFactor * t.PaddleHeight
}
