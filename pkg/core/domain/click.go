package domain

import "time"

// Click is an immutable fact recording a single visit to a link's target.
// UserID duplicates the link owner so per-user reads never join through links.
type Click struct {
	ID        int64     `json:"id"`
	LinkID    int64     `json:"link_id"`
	UserID    string    `json:"user_id"`
	IP        string    `json:"ip,omitempty"` // salted hash
	Country   string    `json:"country,omitempty"`
	City      string    `json:"city,omitempty"`
	Device    string    `json:"device,omitempty"`
	Browser   string    `json:"browser,omitempty"`
	OS        string    `json:"os,omitempty"`
	Referrer  string    `json:"referrer,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ClickMetadata is what the public surface knows about a requester.
// Empty Device/Browser/OS are filled from UserAgent when possible.
type ClickMetadata struct {
	IP        string
	Country   string
	City      string
	Device    string
	Browser   string
	OS        string
	Referrer  string
	UserAgent string
}
