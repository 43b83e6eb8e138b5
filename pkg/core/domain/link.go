package domain

import "time"

// LinkState is derived from a link's fields and is never stored.
type LinkState string

const (
	StateDraft     LinkState = "draft"
	StateScheduled LinkState = "scheduled"
	StateActive    LinkState = "active"
	StateExpired   LinkState = "expired"
)

// Link is a user-owned, orderable, schedulable pointer shown on a public profile.
type Link struct {
	ID          int64      `json:"id"`
	UserID      string     `json:"user_id"`
	Title       string     `json:"title"`
	URL         string     `json:"url"`
	Icon        *string    `json:"icon,omitempty"`
	EmbedType   *string    `json:"embed_type,omitempty"`
	Order       int        `json:"order"`
	Active      bool       `json:"active"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`

	// Set by the lifecycle scheduler once the matching timestamp has fired.
	PublishedAt *time.Time `json:"published_at,omitempty"`
	ExpiredAt   *time.Time `json:"expired_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Clicks    int64     `json:"clicks"` // Aggregated count, read side only
}

// State reports the lifecycle state of the link as seen at now.
func (l *Link) State(now time.Time) LinkState {
	if l.Active {
		return StateActive
	}
	if l.ExpiredAt != nil || (l.ExpiresAt != nil && !l.ExpiresAt.After(now)) {
		return StateExpired
	}
	if l.ScheduledAt != nil && l.ScheduledAt.After(now) {
		return StateScheduled
	}
	return StateDraft
}

// NewLink carries the caller-supplied fields of a link about to be appended.
type NewLink struct {
	Title       string
	URL         string
	Icon        *string
	EmbedType   *string
	Active      bool
	ScheduledAt *time.Time
	ExpiresAt   *time.Time
}

// LinkPatch is a partial update. Nil fields are left untouched; the Clear*
// flags remove an optional timestamp.
type LinkPatch struct {
	Title            *string
	URL              *string
	Icon             *string
	EmbedType        *string
	Active           *bool
	ScheduledAt      *time.Time
	ExpiresAt        *time.Time
	ClearScheduledAt bool
	ClearExpiresAt   bool
}
