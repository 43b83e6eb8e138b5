package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jaaberaziz-code/gitolink-sub001/pkg/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository("file:" + uuid.NewString() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func newTestUser(t *testing.T, repo *SQLiteRepository, email string) *domain.User {
	t.Helper()
	user, err := repo.UpsertUser(context.Background(), email, "Test User")
	require.NoError(t, err)
	return user
}

func appendLinks(t *testing.T, repo *SQLiteRepository, userID string, titles ...string) []domain.Link {
	t.Helper()
	var out []domain.Link
	for _, title := range titles {
		l := &domain.Link{UserID: userID, Title: title, URL: "https://example.com/" + title, Active: true}
		require.NoError(t, repo.AppendLink(context.Background(), l))
		out = append(out, *l)
	}
	return out
}

func orders(t *testing.T, repo *SQLiteRepository, userID string) map[int64]int {
	t.Helper()
	links, err := repo.ListLinks(context.Background(), userID)
	require.NoError(t, err)
	m := make(map[int64]int, len(links))
	for _, l := range links {
		m[l.ID] = l.Order
	}
	return m
}

func TestAppendLinkAssignsDenseOrder(t *testing.T) {
	repo := newTestRepo(t)
	alice := newTestUser(t, repo, "alice@example.com")
	bob := newTestUser(t, repo, "bob@example.com")

	links := appendLinks(t, repo, alice.ID, "a", "b", "c", "d")
	for i, l := range links {
		assert.Equal(t, i, l.Order)
		assert.NotZero(t, l.ID)
	}

	// Orders are scoped per user.
	other := appendLinks(t, repo, bob.ID, "x")
	assert.Equal(t, 0, other[0].Order)
}

func TestAppendLinkAfterDeleteDoesNotRenumber(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	user := newTestUser(t, repo, "alice@example.com")

	links := appendLinks(t, repo, user.ID, "a", "b", "c")
	require.NoError(t, repo.DeleteLink(ctx, user.ID, links[1].ID))

	next := appendLinks(t, repo, user.ID, "d")
	assert.Equal(t, 3, next[0].Order)

	got := orders(t, repo, user.ID)
	assert.Equal(t, map[int64]int{links[0].ID: 0, links[2].ID: 2, next[0].ID: 3}, got)
}

func TestReorderLinks(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	user := newTestUser(t, repo, "alice@example.com")
	links := appendLinks(t, repo, user.ID, "a", "b", "c")

	err := repo.ReorderLinks(ctx, user.ID, []int64{links[2].ID, links[0].ID, links[1].ID})
	require.NoError(t, err)

	assert.Equal(t, map[int64]int{links[2].ID: 0, links[0].ID: 1, links[1].ID: 2}, orders(t, repo, user.ID))

	listed, err := repo.ListLinks(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a", "b"}, []string{listed[0].Title, listed[1].Title, listed[2].Title})
}

func TestReorderLinksRejectsMismatchedSet(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	user := newTestUser(t, repo, "alice@example.com")
	other := newTestUser(t, repo, "bob@example.com")
	links := appendLinks(t, repo, user.ID, "a", "b", "c")
	foreign := appendLinks(t, repo, other.ID, "x")
	before := orders(t, repo, user.ID)

	tests := []struct {
		name string
		ids  []int64
	}{
		{"missing id", []int64{links[1].ID, links[0].ID}},
		{"extra id", []int64{links[2].ID, links[1].ID, links[0].ID, foreign[0].ID}},
		{"foreign id", []int64{links[2].ID, links[1].ID, foreign[0].ID}},
		{"duplicate id", []int64{links[2].ID, links[2].ID, links[0].ID}},
		{"empty", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.ReorderLinks(ctx, user.ID, tt.ids)
			require.Error(t, err)
			assert.True(t, domain.IsValidation(err))
			assert.Equal(t, before, orders(t, repo, user.ID))
		})
	}
}

func TestScheduleCandidatesAndTransitions(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	user := newTestUser(t, repo, "alice@example.com")
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	due := &domain.Link{UserID: user.ID, Title: "due", URL: "https://a.example", ScheduledAt: &past}
	later := &domain.Link{UserID: user.ID, Title: "later", URL: "https://b.example", ScheduledAt: &future}
	expiring := &domain.Link{UserID: user.ID, Title: "expiring", URL: "https://c.example", Active: true, ExpiresAt: &past}
	for _, l := range []*domain.Link{due, later, expiring} {
		require.NoError(t, repo.AppendLink(ctx, l))
	}

	candidates, err := repo.ListScheduleCandidates(ctx, now)
	require.NoError(t, err)
	var ids []int64
	for _, c := range candidates {
		ids = append(ids, c.ID)
	}
	assert.Equal(t, []int64{due.ID, expiring.ID}, ids)

	publish := domain.Transition{LinkID: due.ID, Kind: domain.TransitionPublish, StampPublished: true, At: now}
	applied, err := repo.ApplyTransition(ctx, publish)
	require.NoError(t, err)
	assert.True(t, applied)

	// The same transition no longer matches the stored state.
	applied, err = repo.ApplyTransition(ctx, publish)
	require.NoError(t, err)
	assert.False(t, applied)

	got, err := repo.GetLink(ctx, due.ID)
	require.NoError(t, err)
	assert.True(t, got.Active)
	require.NotNil(t, got.PublishedAt)
	assert.True(t, got.PublishedAt.Equal(now))

	// A link whose expiry already fired is not offered for publishing.
	fired := &domain.Link{UserID: user.ID, Title: "fired", URL: "https://d.example", ScheduledAt: &past, ExpiresAt: &past}
	require.NoError(t, repo.AppendLink(ctx, fired))
	fired.ExpiredAt = &past
	require.NoError(t, repo.UpdateLink(ctx, fired))

	candidates, err = repo.ListScheduleCandidates(ctx, now)
	require.NoError(t, err)
	for _, c := range candidates {
		assert.NotEqual(t, fired.ID, c.ID)
	}
}

func TestClicksAreFilteredByOwnerAndRange(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	alice := newTestUser(t, repo, "alice@example.com")
	bob := newTestUser(t, repo, "bob@example.com")
	aliceLink := appendLinks(t, repo, alice.ID, "a")[0]
	bobLink := appendLinks(t, repo, bob.ID, "b")[0]

	day1 := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)
	for _, c := range []*domain.Click{
		{LinkID: aliceLink.ID, UserID: alice.ID, Device: "mobile", CreatedAt: day1},
		{LinkID: aliceLink.ID, UserID: alice.ID, CreatedAt: day2},
		{LinkID: bobLink.ID, UserID: bob.ID, CreatedAt: day1},
	} {
		require.NoError(t, repo.InsertClick(ctx, c))
		assert.NotZero(t, c.ID)
	}

	all, err := repo.ListClicks(ctx, alice.ID, nil, nil)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "mobile", all[0].Device)
	assert.Equal(t, "", all[1].Device)

	from := day2
	ranged, err := repo.ListClicks(ctx, alice.ID, &from, nil)
	require.NoError(t, err)
	require.Len(t, ranged, 1)
	assert.True(t, ranged[0].CreatedAt.Equal(day2))

	links, err := repo.ListLinks(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), links[0].Clicks)
}

func TestDeleteLinkCascadesClicks(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	user := newTestUser(t, repo, "alice@example.com")
	links := appendLinks(t, repo, user.ID, "a", "b")
	require.NoError(t, repo.InsertClick(ctx, &domain.Click{LinkID: links[0].ID, UserID: user.ID, CreatedAt: time.Now()}))
	require.NoError(t, repo.InsertClick(ctx, &domain.Click{LinkID: links[1].ID, UserID: user.ID, CreatedAt: time.Now()}))

	require.NoError(t, repo.DeleteLink(ctx, user.ID, links[0].ID))

	clicks, err := repo.ListClicks(ctx, user.ID, nil, nil)
	require.NoError(t, err)
	require.Len(t, clicks, 1)
	assert.Equal(t, links[1].ID, clicks[0].LinkID)

	err = repo.DeleteLink(ctx, user.ID, links[0].ID)
	assert.True(t, domain.IsNotFound(err))
}

func TestUpsertUserDerivesUniqueUsernames(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first, err := repo.UpsertUser(ctx, "Jane.Doe@example.com", "Jane")
	require.NoError(t, err)
	assert.Equal(t, "jane-doe", first.Username)

	second, err := repo.UpsertUser(ctx, "jane.doe@other.org", "Jane Two")
	require.NoError(t, err)
	assert.Equal(t, "jane-doe-2", second.Username)

	again, err := repo.UpsertUser(ctx, "Jane.Doe@example.com", "Jane D")
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, "Jane D", again.DisplayName)

	found, err := repo.GetUserByUsername(ctx, "JANE-DOE")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, first.ID, found.ID)

	missing, err := repo.GetUser(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
