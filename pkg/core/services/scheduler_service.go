package services

import (
	"context"
	"fmt"
	"time"

	"github.com/jaaberaziz-code/gitolink-sub001/pkg/core/domain"
	"github.com/jaaberaziz-code/gitolink-sub001/pkg/logger"
	"github.com/jaaberaziz-code/gitolink-sub001/pkg/ports"
)

type SchedulerService struct {
	repo ports.LinkRepository
}

func NewSchedulerService(repo ports.LinkRepository) *SchedulerService {
	return &SchedulerService{repo: repo}
}

// PlanTransition evaluates publish (A) and then expire (B) for one link
// against now. A link whose schedule and expiry have both passed ends
// expired, and an expiry that already fired keeps a due schedule from
// publishing the link again. ok is false when the pass leaves the link alone.
func PlanTransition(l domain.Link, now time.Time) (t domain.Transition, ok bool) {
	scheduleDue := l.ScheduledAt != nil && !l.ScheduledAt.After(now)
	expiryDue := l.ExpiresAt != nil && !l.ExpiresAt.After(now)

	active := l.Active
	published := false

	if !active && l.PublishedAt == nil && scheduleDue && !(expiryDue && l.ExpiredAt != nil) {
		active = true
		published = true
	}

	if active && l.ExpiredAt == nil && expiryDue {
		return domain.Transition{
			LinkID:    l.ID,
			Kind:      domain.TransitionExpire,
			WasActive: l.Active,
			// Expiry also consumes a due schedule, even one the owner
			// published early by hand.
			StampPublished: published || (scheduleDue && l.PublishedAt == nil),
			StampExpired:   true,
			At:             now,
		}, true
	}

	if published {
		return domain.Transition{
			LinkID:         l.ID,
			Kind:           domain.TransitionPublish,
			WasActive:      false,
			StampPublished: true,
			At:             now,
		}, true
	}

	return domain.Transition{}, false
}

// PlanPass returns the transitions of every link that changes at now.
func PlanPass(links []domain.Link, now time.Time) []domain.Transition {
	var plan []domain.Transition
	for _, l := range links {
		if t, ok := PlanTransition(l, now); ok {
			plan = append(plan, t)
		}
	}
	return plan
}

// RunPass applies one lifecycle pass. Links another pass already moved are
// skipped silently; storage failures are listed per link and also returned
// as a storage error so the caller cannot miss them.
func (s *SchedulerService) RunPass(ctx context.Context, now time.Time) (*domain.PassResult, error) {
	candidates, err := s.repo.ListScheduleCandidates(ctx, now)
	if err != nil {
		return nil, domain.Storage(err)
	}

	result := &domain.PassResult{
		PublishedIDs: []int64{},
		ExpiredIDs:   []int64{},
	}

	for _, t := range PlanPass(candidates, now) {
		applied, err := s.repo.ApplyTransition(ctx, t)
		if err != nil {
			logger.Error().Err(err).Int64("link_id", t.LinkID).Str("kind", string(t.Kind)).Msg("lifecycle transition failed")
			result.Failed = append(result.Failed, domain.FailedTransition{
				LinkID: t.LinkID,
				Kind:   t.Kind,
				Error:  "storage failure",
			})
			continue
		}
		if !applied {
			continue
		}
		switch t.Kind {
		case domain.TransitionPublish:
			result.PublishedIDs = append(result.PublishedIDs, t.LinkID)
		case domain.TransitionExpire:
			result.ExpiredIDs = append(result.ExpiredIDs, t.LinkID)
		}
	}

	logger.Info().
		Time("now", now).
		Int("published", len(result.PublishedIDs)).
		Int("expired", len(result.ExpiredIDs)).
		Int("failed", len(result.Failed)).
		Msg("lifecycle pass complete")

	if len(result.Failed) > 0 {
		return result, &domain.Error{
			Kind:    domain.KindStorage,
			Message: fmt.Sprintf("%d of %d transitions failed", len(result.Failed), len(result.Failed)+len(result.PublishedIDs)+len(result.ExpiredIDs)),
		}
	}
	return result, nil
}
