package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jaaberaziz-code/gitolink-sub001/pkg/adapters/cache"
	"github.com/jaaberaziz-code/gitolink-sub001/pkg/adapters/repository/sqlite"
	"github.com/jaaberaziz-code/gitolink-sub001/pkg/core/domain"
	"github.com/stretchr/testify/require"
)

// fixture wires every service to one in-memory database.
type fixture struct {
	repo      *sqlite.SQLiteRepository
	cache     *cache.MemoryCache
	links     *LinkService
	clicks    *ClickService
	analytics *AnalyticsService
	scheduler *SchedulerService
	users     *UserService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo, err := sqlite.NewSQLiteRepository("file:" + uuid.NewString() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	c := cache.NewMemoryCache(time.Minute)
	return &fixture{
		repo:      repo,
		cache:     c,
		links:     NewLinkService(repo, repo, c),
		clicks:    NewClickService(repo, repo, c, "salt"),
		analytics: NewAnalyticsService(repo, repo, c),
		scheduler: NewSchedulerService(repo),
		users:     NewUserService(repo),
	}
}

func (f *fixture) user(t *testing.T, email string) *domain.User {
	t.Helper()
	u, err := f.users.Login(context.Background(), email, "")
	require.NoError(t, err)
	return u
}

func (f *fixture) link(t *testing.T, userID string, in domain.NewLink) *domain.Link {
	t.Helper()
	if in.URL == "" {
		in.URL = "https://example.com/" + in.Title
	}
	l, err := f.links.AppendLink(context.Background(), userID, in)
	require.NoError(t, err)
	return l
}

func (f *fixture) get(t *testing.T, id int64) *domain.Link {
	t.Helper()
	l, err := f.repo.GetLink(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, l)
	return l
}

func timePtr(t time.Time) *time.Time { return &t }

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }
