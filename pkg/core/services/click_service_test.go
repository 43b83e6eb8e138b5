package services

import (
	"context"
	"testing"
	"time"

	"github.com/jaaberaziz-code/gitolink-sub001/pkg/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	iphoneSafari  = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1"
	windowsChrome = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

func TestRecordClick(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.user(t, "owner@example.com")
	link := f.link(t, user.ID, domain.NewLink{Title: "docs", Active: true})

	fixed := time.Date(2026, 4, 1, 12, 30, 0, 0, time.UTC)
	f.clicks.now = func() time.Time { return fixed }

	click, err := f.clicks.RecordClick(ctx, link.ID, domain.ClickMetadata{
		IP:        "203.0.113.7",
		Country:   " TH ",
		Referrer:  "https://news.example",
		UserAgent: iphoneSafari,
	})
	require.NoError(t, err)

	assert.NotZero(t, click.ID)
	assert.Equal(t, link.ID, click.LinkID)
	assert.Equal(t, user.ID, click.UserID)
	assert.Equal(t, "TH", click.Country)
	assert.Equal(t, "mobile", click.Device)
	assert.Equal(t, "Safari", click.Browser)
	assert.True(t, click.CreatedAt.Equal(fixed))

	// The raw address is never stored.
	assert.NotEmpty(t, click.IP)
	assert.NotEqual(t, "203.0.113.7", click.IP)
	assert.Equal(t, f.clicks.hashIP("203.0.113.7"), click.IP)

	stored, err := f.repo.ListClicks(ctx, user.ID, nil, nil)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, click.ID, stored[0].ID)
	assert.Equal(t, "https://news.example", stored[0].Referrer)
}

func TestRecordClickUnknownLink(t *testing.T) {
	f := newFixture(t)
	user := f.user(t, "owner@example.com")

	_, err := f.clicks.RecordClick(context.Background(), 999, domain.ClickMetadata{})
	assert.True(t, domain.IsNotFound(err))

	clicks, err := f.repo.ListClicks(context.Background(), user.ID, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, clicks)
}

func TestRecordClickKeepsExplicitMetadata(t *testing.T) {
	f := newFixture(t)
	user := f.user(t, "owner@example.com")
	link := f.link(t, user.ID, domain.NewLink{Title: "docs"})

	// Inactive links still accept recorded clicks; only Visit enforces state.
	click, err := f.clicks.RecordClick(context.Background(), link.ID, domain.ClickMetadata{
		Device:    "tv",
		UserAgent: windowsChrome,
	})
	require.NoError(t, err)
	assert.Equal(t, "tv", click.Device)
	assert.Equal(t, "Chrome", click.Browser)
}

func TestVisit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.user(t, "owner@example.com")
	live := f.link(t, user.ID, domain.NewLink{Title: "live", URL: "https://live.example/page", Active: true})
	draft := f.link(t, user.ID, domain.NewLink{Title: "draft"})

	target, err := f.clicks.Visit(ctx, live.ID, domain.ClickMetadata{UserAgent: windowsChrome})
	require.NoError(t, err)
	assert.Equal(t, "https://live.example/page", target)

	_, err = f.clicks.Visit(ctx, draft.ID, domain.ClickMetadata{})
	assert.True(t, domain.IsNotFound(err))

	_, err = f.clicks.Visit(ctx, 12345, domain.ClickMetadata{})
	assert.True(t, domain.IsNotFound(err))

	clicks, err := f.repo.ListClicks(ctx, user.ID, nil, nil)
	require.NoError(t, err)
	require.Len(t, clicks, 1)
	assert.Equal(t, "desktop", clicks[0].Device)
}

func TestDescribeAgent(t *testing.T) {
	device, browser, _ := describeAgent(windowsChrome)
	assert.Equal(t, "desktop", device)
	assert.Equal(t, "Chrome", browser)

	device, browser, os := describeAgent("  ")
	assert.Empty(t, device)
	assert.Empty(t, browser)
	assert.Empty(t, os)
}
