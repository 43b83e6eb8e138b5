package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/jaaberaziz-code/gitolink-sub001/pkg/core/domain"
	"github.com/jaaberaziz-code/gitolink-sub001/pkg/ports"
	"github.com/mssola/useragent"
)

type ClickService struct {
	links  ports.LinkRepository
	clicks ports.ClickRepository
	cache  ports.AnalyticsCache
	salt   string
	now    func() time.Time
}

func NewClickService(links ports.LinkRepository, clicks ports.ClickRepository, cache ports.AnalyticsCache, ipSalt string) *ClickService {
	return &ClickService{
		links:  links,
		clicks: clicks,
		cache:  cache,
		salt:   ipSalt,
		now:    time.Now,
	}
}

// RecordClick stores one immutable click fact for an existing link, copying
// the link's owner onto the fact.
func (s *ClickService) RecordClick(ctx context.Context, linkID int64, meta domain.ClickMetadata) (*domain.Click, error) {
	link, err := s.links.GetLink(ctx, linkID)
	if err != nil {
		return nil, domain.Storage(err)
	}
	if link == nil {
		return nil, domain.NotFound("link not found")
	}
	return s.record(ctx, link, meta)
}

// Visit records a click coming from the public profile and returns the
// target URL. Inactive links are not clickable.
func (s *ClickService) Visit(ctx context.Context, linkID int64, meta domain.ClickMetadata) (string, error) {
	link, err := s.links.GetLink(ctx, linkID)
	if err != nil {
		return "", domain.Storage(err)
	}
	if link == nil || !link.Active {
		return "", domain.NotFound("link not found")
	}
	if _, err := s.record(ctx, link, meta); err != nil {
		return "", err
	}
	return link.URL, nil
}

func (s *ClickService) record(ctx context.Context, link *domain.Link, meta domain.ClickMetadata) (*domain.Click, error) {
	device, browser, os := describeAgent(meta.UserAgent)
	click := &domain.Click{
		LinkID:    link.ID,
		UserID:    link.UserID,
		IP:        s.hashIP(meta.IP),
		Country:   strings.TrimSpace(meta.Country),
		City:      strings.TrimSpace(meta.City),
		Device:    firstNonEmpty(meta.Device, device),
		Browser:   firstNonEmpty(meta.Browser, browser),
		OS:        firstNonEmpty(meta.OS, os),
		Referrer:  strings.TrimSpace(meta.Referrer),
		CreatedAt: s.now().UTC(),
	}

	if err := s.clicks.InsertClick(ctx, click); err != nil {
		return nil, domain.Storage(err)
	}

	invalidateAnalytics(ctx, s.cache, link.UserID)
	return click, nil
}

func (s *ClickService) hashIP(ip string) string {
	if ip == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(s.salt + ip))
	return hex.EncodeToString(sum[:])
}

// describeAgent derives device class, browser and OS names from a
// User-Agent header. Unparseable agents yield empty strings.
func describeAgent(raw string) (device, browser, os string) {
	if strings.TrimSpace(raw) == "" {
		return "", "", ""
	}
	ua := useragent.New(raw)

	switch {
	case ua.Bot():
		device = "bot"
	case strings.Contains(ua.Platform(), "iPad") || (strings.Contains(ua.OS(), "Android") && !ua.Mobile()):
		device = "tablet"
	case ua.Mobile():
		device = "mobile"
	default:
		device = "desktop"
	}

	browser, _ = ua.Browser()
	os = ua.OSInfo().Name
	return device, browser, os
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
