package services

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/jaaberaziz-code/gitolink-sub001/pkg/core/domain"
	"github.com/jaaberaziz-code/gitolink-sub001/pkg/logger"
	"github.com/jaaberaziz-code/gitolink-sub001/pkg/ports"
)

const maxTitleLength = 200

type LinkService struct {
	repo  ports.LinkRepository
	users ports.UserRepository
	cache ports.AnalyticsCache
}

func NewLinkService(repo ports.LinkRepository, users ports.UserRepository, cache ports.AnalyticsCache) *LinkService {
	return &LinkService{repo: repo, users: users, cache: cache}
}

// AppendLink creates a link at the end of the user's ordering.
func (s *LinkService) AppendLink(ctx context.Context, userID string, in domain.NewLink) (*domain.Link, error) {
	title, err := validateTitle(in.Title)
	if err != nil {
		return nil, err
	}
	target, err := validateURL(in.URL)
	if err != nil {
		return nil, err
	}

	link := &domain.Link{
		UserID:      userID,
		Title:       title,
		URL:         target,
		Icon:        trimmed(in.Icon),
		EmbedType:   trimmed(in.EmbedType),
		Active:      in.Active,
		ScheduledAt: utcPtr(in.ScheduledAt),
		ExpiresAt:   utcPtr(in.ExpiresAt),
	}
	if err := s.repo.AppendLink(ctx, link); err != nil {
		return nil, domain.Storage(err)
	}

	s.invalidate(ctx, userID)
	return link, nil
}

// Reorder assigns each link the index of its id in orderedIDs. The ids must
// be exactly the user's current link set; otherwise nothing changes.
func (s *LinkService) Reorder(ctx context.Context, userID string, orderedIDs []int64) error {
	seen := make(map[int64]struct{}, len(orderedIDs))
	for _, id := range orderedIDs {
		if _, dup := seen[id]; dup {
			return domain.Invalid("ids", fmt.Sprintf("link %d appears more than once", id))
		}
		seen[id] = struct{}{}
	}

	if err := s.repo.ReorderLinks(ctx, userID, orderedIDs); err != nil {
		if domain.IsValidation(err) {
			return err
		}
		return domain.Storage(err)
	}

	s.invalidate(ctx, userID)
	return nil
}

func (s *LinkService) UpdateLink(ctx context.Context, userID string, id int64, patch domain.LinkPatch) (*domain.Link, error) {
	link, err := s.ownedLink(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if patch.Title != nil {
		if link.Title, err = validateTitle(*patch.Title); err != nil {
			return nil, err
		}
	}
	if patch.URL != nil {
		if link.URL, err = validateURL(*patch.URL); err != nil {
			return nil, err
		}
	}
	if patch.Icon != nil {
		link.Icon = trimmed(patch.Icon)
	}
	if patch.EmbedType != nil {
		link.EmbedType = trimmed(patch.EmbedType)
	}
	if patch.Active != nil {
		link.Active = *patch.Active
	}

	// A new timestamp re-arms its transition for the scheduler.
	if patch.ClearScheduledAt {
		link.ScheduledAt = nil
		link.PublishedAt = nil
	} else if patch.ScheduledAt != nil && !sameTime(link.ScheduledAt, patch.ScheduledAt) {
		link.ScheduledAt = utcPtr(patch.ScheduledAt)
		link.PublishedAt = nil
	}
	if patch.ClearExpiresAt {
		link.ExpiresAt = nil
		link.ExpiredAt = nil
	} else if patch.ExpiresAt != nil && !sameTime(link.ExpiresAt, patch.ExpiresAt) {
		link.ExpiresAt = utcPtr(patch.ExpiresAt)
		link.ExpiredAt = nil
	}

	link.UpdatedAt = time.Now().UTC()
	if err := s.repo.UpdateLink(ctx, link); err != nil {
		return nil, domain.Storage(err)
	}

	s.invalidate(ctx, userID)
	return link, nil
}

// DeleteLink removes the link and its clicks. Remaining orders are kept as is.
func (s *LinkService) DeleteLink(ctx context.Context, userID string, id int64) error {
	if err := s.repo.DeleteLink(ctx, userID, id); err != nil {
		if domain.IsNotFound(err) {
			return err
		}
		return domain.Storage(err)
	}
	s.invalidate(ctx, userID)
	return nil
}

func (s *LinkService) ListLinks(ctx context.Context, userID string) ([]domain.Link, error) {
	links, err := s.repo.ListLinks(ctx, userID)
	if err != nil {
		return nil, domain.Storage(err)
	}
	return links, nil
}

// PublicProfile returns what the public page renders: active links only.
func (s *LinkService) PublicProfile(ctx context.Context, username string) (*domain.Profile, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, domain.Storage(err)
	}
	if user == nil {
		return nil, domain.NotFound("profile not found")
	}

	links, err := s.repo.ListActiveLinks(ctx, user.ID)
	if err != nil {
		return nil, domain.Storage(err)
	}
	return &domain.Profile{
		Username:    user.Username,
		DisplayName: user.DisplayName,
		Links:       links,
	}, nil
}

func (s *LinkService) ownedLink(ctx context.Context, userID string, id int64) (*domain.Link, error) {
	link, err := s.repo.GetLink(ctx, id)
	if err != nil {
		return nil, domain.Storage(err)
	}
	// Someone else's link is reported the same way as a missing one.
	if link == nil || link.UserID != userID {
		return nil, domain.NotFound("link not found")
	}
	return link, nil
}

func (s *LinkService) invalidate(ctx context.Context, userID string) {
	invalidateAnalytics(ctx, s.cache, userID)
}

func invalidateAnalytics(ctx context.Context, cache ports.AnalyticsCache, userID string) {
	if cache == nil {
		return
	}
	if err := cache.Invalidate(ctx, userID); err != nil {
		logger.Warn().Err(err).Str("user_id", userID).Msg("analytics cache invalidation failed")
	}
}

func validateTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", domain.Invalid("title", "title is required")
	}
	if len(title) > maxTitleLength {
		return "", domain.Invalid("title", fmt.Sprintf("title must be at most %d characters", maxTitleLength))
	}
	return title, nil
}

func validateURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", domain.Invalid("url", "url is required")
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", domain.Invalid("url", "url must be an absolute http or https URL")
	}
	return u.String(), nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}

func sameTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
