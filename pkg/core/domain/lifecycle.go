package domain

import "time"

type TransitionKind string

const (
	TransitionPublish TransitionKind = "publish"
	TransitionExpire  TransitionKind = "expire"
)

// Transition is the net effect of one scheduler pass on one link.
// WasActive is the state the update is conditioned on; the Stamp flags say
// which schedule markers the pass consumes.
type Transition struct {
	LinkID         int64
	Kind           TransitionKind
	WasActive      bool
	StampPublished bool
	StampExpired   bool
	At             time.Time
}

// Active is the value of the link's active flag after the transition.
func (t Transition) Active() bool {
	return t.Kind == TransitionPublish
}

// PassResult partitions the links touched by one lifecycle pass.
type PassResult struct {
	PublishedIDs []int64            `json:"published_ids"`
	ExpiredIDs   []int64            `json:"expired_ids"`
	Failed       []FailedTransition `json:"failed,omitempty"`
}

type FailedTransition struct {
	LinkID int64          `json:"link_id"`
	Kind   TransitionKind `json:"kind"`
	Error  string         `json:"error"`
}
