package profile

import (
	"context"

	"github.com/abhisek/learnpath/internal/logger"
	"github.com/abhisek/learnpath/internal/store"
)

// Service saves and loads learner profiles.
type Service struct {
	store *store.Store
	log   *logger.Logger
}

// NewService creates a profile service.
func NewService(s *store.Store, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{store: s, log: log}
}

// Submit validates raw onboarding input and saves it as the user's profile,
// replacing every field of any earlier submission. The user's stats row is
// created on first save.
func (s *Service) Submit(ctx context.Context, userID string, raw map[string]any) (*store.Profile, error) {
	p, err := Validate(userID, raw)
	if err != nil {
		return nil, err
	}
	if err := s.Save(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Save upserts an already validated profile.
func (s *Service) Save(ctx context.Context, p *store.Profile) error {
	err := s.store.WithTx(ctx, func(q *store.Queries) error {
		if err := q.UpsertProfile(ctx, p); err != nil {
			return err
		}
		return q.EnsureStats(ctx, p.UserID)
	})
	if err != nil {
		return err
	}
	s.log.Info("profile saved", "user", p.UserID, "goal", p.Goal, "weeks", p.TimeframeWeeks)
	return nil
}

// Get returns the user's profile, or an apperr.ErrNotFound error.
func (s *Service) Get(ctx context.Context, userID string) (*store.Profile, error) {
	return s.store.Queries().GetProfile(ctx, userID)
}
