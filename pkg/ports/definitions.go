package ports

import (
	"context"
	"time"

	"github.com/jaaberaziz-code/gitolink-sub001/pkg/core/domain"
)

// LinkRepository defines storage operations for links
type LinkRepository interface {
	// AppendLink inserts link with order = max(order)+1 for its user (0 when
	// the user has none) and fills ID, Order and timestamps.
	AppendLink(ctx context.Context, link *domain.Link) error
	GetLink(ctx context.Context, id int64) (*domain.Link, error) // nil, nil when absent
	UpdateLink(ctx context.Context, link *domain.Link) error
	DeleteLink(ctx context.Context, userID string, id int64) error // Cascades clicks
	ListLinks(ctx context.Context, userID string) ([]domain.Link, error)
	ListActiveLinks(ctx context.Context, userID string) ([]domain.Link, error)
	// ReorderLinks rewrites every link's order to its index in ids inside one
	// transaction. ids must match the user's link set exactly.
	ReorderLinks(ctx context.Context, userID string, ids []int64) error
	Dump(ctx context.Context) ([]domain.Link, error) // For migration

	// Lifecycle
	ListScheduleCandidates(ctx context.Context, now time.Time) ([]domain.Link, error)
	// ApplyTransition reports false when the link no longer matches the
	// transition's prior state (another pass got there first).
	ApplyTransition(ctx context.Context, t domain.Transition) (bool, error)
}

// ClickRepository is append-only: there is no update or delete.
type ClickRepository interface {
	InsertClick(ctx context.Context, click *domain.Click) error
	ListClicks(ctx context.Context, userID string, from, to *time.Time) ([]domain.Click, error)
}

type UserRepository interface {
	UpsertUser(ctx context.Context, email, displayName string) (*domain.User, error)
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
}

// Store is everything the sqlite adapter provides.
type Store interface {
	LinkRepository
	ClickRepository
	UserRepository
}

// AnalyticsCache memoizes analytics projections per user. It is never
// authoritative; Invalidate drops every entry of the user and bumps the
// generation returned by Generation. Callers fold the generation read before
// loading into the key, so a result computed across an invalidation is never
// served.
type AnalyticsCache interface {
	Generation(ctx context.Context, userID string) (int64, error)
	Get(ctx context.Context, userID, key string) (*domain.AnalyticsData, bool, error)
	Set(ctx context.Context, userID, key string, data *domain.AnalyticsData) error
	Invalidate(ctx context.Context, userID string) error
}

// LinkService covers link management and the ordering rules
type LinkService interface {
	AppendLink(ctx context.Context, userID string, in domain.NewLink) (*domain.Link, error)
	Reorder(ctx context.Context, userID string, orderedIDs []int64) error
	UpdateLink(ctx context.Context, userID string, id int64, patch domain.LinkPatch) (*domain.Link, error)
	DeleteLink(ctx context.Context, userID string, id int64) error
	ListLinks(ctx context.Context, userID string) ([]domain.Link, error)
	PublicProfile(ctx context.Context, username string) (*domain.Profile, error)
}

// SchedulerService runs lifecycle passes against an explicit now
type SchedulerService interface {
	RunPass(ctx context.Context, now time.Time) (*domain.PassResult, error)
}

type ClickService interface {
	RecordClick(ctx context.Context, linkID int64, meta domain.ClickMetadata) (*domain.Click, error)
	// Visit is the public path: inactive links are not clickable.
	Visit(ctx context.Context, linkID int64, meta domain.ClickMetadata) (string, error)
}

type AnalyticsService interface {
	ComputeAnalytics(ctx context.Context, userID string, opts domain.AnalyticsOptions) (*domain.AnalyticsData, error)
}

type UserService interface {
	Login(ctx context.Context, email, displayName string) (*domain.User, error)
	GetUser(ctx context.Context, id string) (*domain.User, error)
}
