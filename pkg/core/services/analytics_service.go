package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jaaberaziz-code/gitolink-sub001/pkg/core/domain"
	"github.com/jaaberaziz-code/gitolink-sub001/pkg/logger"
	"github.com/jaaberaziz-code/gitolink-sub001/pkg/ports"
)

const dayLayout = "2006-01-02"

type AnalyticsService struct {
	links  ports.LinkRepository
	clicks ports.ClickRepository
	cache  ports.AnalyticsCache
}

func NewAnalyticsService(links ports.LinkRepository, clicks ports.ClickRepository, cache ports.AnalyticsCache) *AnalyticsService {
	return &AnalyticsService{links: links, clicks: clicks, cache: cache}
}

// ComputeAnalytics derives the user's analytics from raw click facts. A user
// without links or clicks gets empty aggregates, not an error.
func (s *AnalyticsService) ComputeAnalytics(ctx context.Context, userID string, opts domain.AnalyticsOptions) (*domain.AnalyticsData, error) {
	if opts.From != nil && opts.To != nil && !opts.From.Before(*opts.To) {
		return nil, domain.Invalid("from", "from must be before to")
	}

	// The generation is read before the facts. A click landing mid-compute
	// bumps it, leaving this result under a key nobody asks for again.
	useCache := s.cache != nil
	var key string
	if useCache {
		gen, err := s.cache.Generation(ctx, userID)
		if err != nil {
			logger.Warn().Err(err).Str("user_id", userID).Msg("analytics cache generation read failed")
			useCache = false
		}
		key = cacheKey(gen, opts)
	}
	if useCache {
		data, ok, err := s.cache.Get(ctx, userID, key)
		if err != nil {
			logger.Warn().Err(err).Str("user_id", userID).Msg("analytics cache read failed")
		} else if ok {
			return data, nil
		}
	}

	links, err := s.links.ListLinks(ctx, userID)
	if err != nil {
		return nil, domain.Storage(err)
	}
	clicks, err := s.clicks.ListClicks(ctx, userID, opts.From, opts.To)
	if err != nil {
		return nil, domain.Storage(err)
	}

	data := Aggregate(links, clicks, opts)

	if useCache {
		if err := s.cache.Set(ctx, userID, key, data); err != nil {
			logger.Warn().Err(err).Str("user_id", userID).Msg("analytics cache write failed")
		}
	}
	return data, nil
}

// Aggregate builds the rollups. links must already be in display order;
// clicksPerLink follows it and includes links without clicks.
func Aggregate(links []domain.Link, clicks []domain.Click, opts domain.AnalyticsOptions) *domain.AnalyticsData {
	perLink := make(map[int64]int64, len(links))
	devices := make(map[string]int64)
	browsers := make(map[string]int64)
	days := make(map[string]int64)

	for _, c := range clicks {
		perLink[c.LinkID]++
		devices[labelOf(c.Device)]++
		browsers[labelOf(c.Browser)]++
		days[c.CreatedAt.UTC().Format(dayLayout)]++
	}

	data := &domain.AnalyticsData{
		TotalClicks:   int64(len(clicks)),
		ClicksPerLink: make([]domain.LinkClicks, 0, len(links)),
		DeviceStats:   rankLabels(devices),
		BrowserStats:  rankLabels(browsers),
		TimelineData:  timeline(days, opts),
	}
	for _, l := range links {
		data.ClicksPerLink = append(data.ClicksPerLink, domain.LinkClicks{
			LinkID: l.ID,
			Title:  l.Title,
			Count:  perLink[l.ID],
		})
	}
	return data
}

func labelOf(v string) string {
	if v == "" {
		return domain.UnknownLabel
	}
	return v
}

// rankLabels orders by count descending, ties by label.
func rankLabels(counts map[string]int64) []domain.LabelCount {
	out := make([]domain.LabelCount, 0, len(counts))
	for label, n := range counts {
		out = append(out, domain.LabelCount{Label: label, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Label < out[j].Label
	})
	return out
}

func timeline(days map[string]int64, opts domain.AnalyticsOptions) []domain.DailyClick {
	out := make([]domain.DailyClick, 0, len(days))
	for day, n := range days {
		out = append(out, domain.DailyClick{Date: day, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })

	if !opts.FillGaps {
		return out
	}
	return fillGaps(out, opts)
}

// fillGaps inserts zero-count days. The span is the requested range when both
// bounds are given, otherwise the first to the last day that has clicks.
func fillGaps(points []domain.DailyClick, opts domain.AnalyticsOptions) []domain.DailyClick {
	var start, end time.Time
	switch {
	case opts.From != nil && opts.To != nil:
		start = truncateDay(*opts.From)
		// To is exclusive.
		end = truncateDay(opts.To.Add(-time.Nanosecond))
	case len(points) > 0:
		start, _ = time.Parse(dayLayout, points[0].Date)
		end, _ = time.Parse(dayLayout, points[len(points)-1].Date)
	default:
		return points
	}

	counts := make(map[string]int64, len(points))
	for _, p := range points {
		counts[p.Date] = p.Count
	}

	filled := make([]domain.DailyClick, 0, len(points))
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		key := d.Format(dayLayout)
		filled = append(filled, domain.DailyClick{Date: key, Count: counts[key]})
	}
	return filled
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func cacheKey(gen int64, opts domain.AnalyticsOptions) string {
	bound := func(t *time.Time) string {
		if t == nil {
			return "-"
		}
		return t.UTC().Format(time.RFC3339)
	}
	return fmt.Sprintf("%d|%s|%s|%t", gen, bound(opts.From), bound(opts.To), opts.FillGaps)
}
