package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/jaaberaziz-code/gitolink-sub001/pkg/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendLinkValidation(t *testing.T) {
	f := newFixture(t)
	user := f.user(t, "owner@example.com")

	tests := []struct {
		name  string
		in    domain.NewLink
		field string
	}{
		{"missing title", domain.NewLink{Title: "  ", URL: "https://example.com"}, "title"},
		{"long title", domain.NewLink{Title: strings.Repeat("x", 201), URL: "https://example.com"}, "title"},
		{"missing url", domain.NewLink{Title: "ok"}, "url"},
		{"relative url", domain.NewLink{Title: "ok", URL: "/about"}, "url"},
		{"unsupported scheme", domain.NewLink{Title: "ok", URL: "javascript:alert(1)"}, "url"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.links.AppendLink(context.Background(), user.ID, tt.in)
			require.Error(t, err)
			assert.True(t, domain.IsValidation(err))
			assert.Equal(t, tt.field, domain.AsError(err).Field)
		})
	}

	links, err := f.links.ListLinks(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Empty(t, links)
}

func TestAppendLinkNormalizes(t *testing.T) {
	f := newFixture(t)
	user := f.user(t, "owner@example.com")
	local := time.Date(2026, 6, 1, 9, 0, 0, 0, time.FixedZone("ICT", 7*60*60))

	link, err := f.links.AppendLink(context.Background(), user.ID, domain.NewLink{
		Title:       "  Portfolio ",
		URL:         " https://example.com/me ",
		Icon:        strPtr("   "),
		ScheduledAt: &local,
	})
	require.NoError(t, err)
	assert.Equal(t, "Portfolio", link.Title)
	assert.Equal(t, "https://example.com/me", link.URL)
	assert.Nil(t, link.Icon)
	require.NotNil(t, link.ScheduledAt)
	assert.Equal(t, time.UTC, link.ScheduledAt.Location())
	assert.True(t, link.ScheduledAt.Equal(local))
}

func TestReorderRejectsDuplicatesBeforeStorage(t *testing.T) {
	f := newFixture(t)
	user := f.user(t, "owner@example.com")
	a := f.link(t, user.ID, domain.NewLink{Title: "a"})
	b := f.link(t, user.ID, domain.NewLink{Title: "b"})

	err := f.links.Reorder(context.Background(), user.ID, []int64{a.ID, a.ID})
	require.Error(t, err)
	assert.Equal(t, "ids", domain.AsError(err).Field)

	assert.Equal(t, 0, f.get(t, a.ID).Order)
	assert.Equal(t, 1, f.get(t, b.ID).Order)
}

func TestUpdateLink(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "owner@example.com")
	stranger := f.user(t, "stranger@example.com")
	link := f.link(t, owner.ID, domain.NewLink{Title: "old", Active: true})

	_, err := f.links.UpdateLink(ctx, stranger.ID, link.ID, domain.LinkPatch{Title: strPtr("hijack")})
	assert.True(t, domain.IsNotFound(err))

	_, err = f.links.UpdateLink(ctx, owner.ID, link.ID, domain.LinkPatch{URL: strPtr("ftp://example.com")})
	assert.True(t, domain.IsValidation(err))

	expires := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	updated, err := f.links.UpdateLink(ctx, owner.ID, link.ID, domain.LinkPatch{
		Title:     strPtr("new"),
		Icon:      strPtr("github"),
		ExpiresAt: &expires,
	})
	require.NoError(t, err)
	assert.Equal(t, "new", updated.Title)
	assert.Equal(t, link.Order, updated.Order)

	stored := f.get(t, link.ID)
	assert.Equal(t, "new", stored.Title)
	require.NotNil(t, stored.Icon)
	assert.Equal(t, "github", *stored.Icon)
	require.NotNil(t, stored.ExpiresAt)
	assert.True(t, stored.ExpiresAt.Equal(expires))

	_, err = f.links.UpdateLink(ctx, owner.ID, link.ID, domain.LinkPatch{ClearExpiresAt: true})
	require.NoError(t, err)
	assert.Nil(t, f.get(t, link.ID).ExpiresAt)
}

func TestDeleteLinkOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "owner@example.com")
	stranger := f.user(t, "stranger@example.com")
	link := f.link(t, owner.ID, domain.NewLink{Title: "mine"})

	assert.True(t, domain.IsNotFound(f.links.DeleteLink(ctx, stranger.ID, link.ID)))
	require.NoError(t, f.links.DeleteLink(ctx, owner.ID, link.ID))
	assert.True(t, domain.IsNotFound(f.links.DeleteLink(ctx, owner.ID, link.ID)))
}

func TestPublicProfileShowsActiveLinksInOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user, err := f.users.Login(ctx, "Creator@Example.com", "The Creator")
	require.NoError(t, err)
	assert.Equal(t, "creator@example.com", user.Email)

	first := f.link(t, user.ID, domain.NewLink{Title: "first", Active: true})
	hidden := f.link(t, user.ID, domain.NewLink{Title: "hidden"})
	third := f.link(t, user.ID, domain.NewLink{Title: "third", Active: true})
	require.NoError(t, f.links.Reorder(ctx, user.ID, []int64{third.ID, hidden.ID, first.ID}))

	profile, err := f.links.PublicProfile(ctx, user.Username)
	require.NoError(t, err)
	assert.Equal(t, "The Creator", profile.DisplayName)
	require.Len(t, profile.Links, 2)
	assert.Equal(t, "third", profile.Links[0].Title)
	assert.Equal(t, "first", profile.Links[1].Title)

	_, err = f.links.PublicProfile(ctx, "nobody")
	assert.True(t, domain.IsNotFound(err))
}

func TestLoginRequiresEmail(t *testing.T) {
	f := newFixture(t)
	_, err := f.users.Login(context.Background(), "not-an-email", "")
	assert.True(t, domain.IsValidation(err))

	_, err = f.users.GetUser(context.Background(), "missing")
	assert.True(t, domain.IsNotFound(err))
}
