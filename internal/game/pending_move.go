package game

// MoveKind tags why the replay is steering a paddle.
type MoveKind string

const (
	// MoveHit aims the paddle so the ball meets it at a logged hit.
	MoveHit MoveKind = "hit"
	// MoveMiss keeps the paddle clear of a ball that the log says scores.
	MoveMiss MoveKind = "miss"
	// MoveStageForNextHit pre-positions the hitter where the log places it
	// when the opponent next hits.
	MoveStageForNextHit MoveKind = "stage-for-next-hit"
	// MoveStageAfterServe pre-positions the server after a serve.
	MoveStageAfterServe MoveKind = "stage-after-serve"
)

// Waypoint reports whether the move is dropped once reached. Hit and miss
// moves hold their target until event processing replaces them.
func (k MoveKind) Waypoint() bool {
	return k == MoveStageForNextHit || k == MoveStageAfterServe
}

// PendingMove is a replay-only target for one paddle.
type PendingMove struct {
	TargetY    float64  `json:"targetY"`
	EventIndex int      `json:"eventIndex"`
	Kind       MoveKind `json:"kind"`
	Executed   bool     `json:"executed"`
}
