package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/advent-api/internal/models"
	"github.com/noah-isme/advent-api/internal/repository"
	appErrors "github.com/noah-isme/advent-api/pkg/errors"
)

type pollRepository interface {
	GetPoll(ctx context.Context, door int) (models.Poll, error)
	SavePoll(ctx context.Context, door int, poll models.Poll) error
	DeletePoll(ctx context.Context, door int) error
	GetVoteRecord(ctx context.Context, door int) (models.VoteRecord, error)
	CastVote(ctx context.Context, door int, option, userID string) (models.VoteRecord, bool, error)
}

// PollService owns poll definitions, tallies and the vote-once invariant.
type PollService struct {
	repo         pollRepository
	availability *AvailabilityService
	metrics      *MetricsService
	logger       *zap.Logger
}

// NewPollService constructs the service.
func NewPollService(repo pollRepository, availability *AvailabilityService, metrics *MetricsService, logger *zap.Logger) *PollService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PollService{repo: repo, availability: availability, metrics: metrics, logger: logger}
}

// PollView is the assembled poll read response.
type PollView struct {
	PollData models.Poll    `json:"pollData"`
	Votes    map[string]int `json:"votes"`
	UserVote *string        `json:"userVote"`
}

// VoteResult reports the outcome of a vote attempt. On a rejected repeat
// vote it carries the existing tally and the user's prior choice.
type VoteResult struct {
	Success  bool           `json:"success"`
	Votes    map[string]int `json:"votes"`
	UserVote *string        `json:"userVote"`
}

// Get returns the poll with tallies and the caller's vote, gated by the
// door's release date. A missing poll is not-found, distinct from the gate.
func (s *PollService) Get(ctx context.Context, door int, userID string) (*PollView, error) {
	if err := s.gate(ctx, door); err != nil {
		return nil, err
	}

	poll, err := s.repo.GetPoll(ctx, door)
	if err != nil {
		if errors.Is(err, repository.ErrNoEntry) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("door %d has no poll", door))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load poll")
	}

	view := &PollView{PollData: poll, Votes: s.votes(ctx, door)}
	view.UserVote = s.userVote(ctx, door, userID)
	return view, nil
}

// Votes returns the option tally for a door. An absent poll yields an empty
// mapping, not an error.
func (s *PollService) Votes(ctx context.Context, door int) map[string]int {
	return s.votes(ctx, door)
}

// Vote validates and records a vote. The first vote per user and door is
// binding; repeats fail closed with the existing tally.
func (s *PollService) Vote(ctx context.Context, door int, option, userID string) (*VoteResult, error) {
	if err := s.gate(ctx, door); err != nil {
		return nil, err
	}
	if userID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "userId is required")
	}

	poll, err := s.repo.GetPoll(ctx, door)
	if err != nil {
		if errors.Is(err, repository.ErrNoEntry) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("door %d has no poll", door))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load poll")
	}
	if !poll.HasOption(option) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%q is not one of this poll's options", option))
	}

	record, recorded, err := s.repo.CastVote(ctx, door, option, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNoEntry) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("door %d has no poll", door))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record vote")
	}

	result := &VoteResult{Success: recorded, Votes: record.Tally}
	if prior, ok := record.Voters[userID]; ok {
		result.UserVote = &prior
	}
	if recorded {
		s.metrics.RecordVote()
		s.logger.Info("vote recorded", zap.Int("door", door), zap.String("option", option))
	}
	return result, nil
}

// Create stores the poll definition for a door on admin upload. Tallies of a
// previously voted door are preserved by the repository.
func (s *PollService) Create(ctx context.Context, door int, poll models.Poll) error {
	if err := s.repo.SavePoll(ctx, door, poll); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save poll")
	}
	return nil
}

// Definition returns the poll without the availability gate, for admin views.
func (s *PollService) Definition(ctx context.Context, door int) (models.Poll, error) {
	poll, err := s.repo.GetPoll(ctx, door)
	if err != nil {
		if errors.Is(err, repository.ErrNoEntry) {
			return models.Poll{}, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("door %d has no poll", door))
		}
		return models.Poll{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load poll")
	}
	return poll, nil
}

// Delete removes the definition and vote record. No-op when absent.
func (s *PollService) Delete(ctx context.Context, door int) error {
	if err := s.repo.DeletePoll(ctx, door); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete poll")
	}
	return nil
}

func (s *PollService) gate(ctx context.Context, door int) error {
	available, err := s.availability.Available(ctx, door)
	if err != nil {
		return err
	}
	if !available {
		return appErrors.Clone(appErrors.ErrNotYetAvailable, fmt.Sprintf("door %d is not available yet", door))
	}
	return nil
}

func (s *PollService) votes(ctx context.Context, door int) map[string]int {
	record, err := s.repo.GetVoteRecord(ctx, door)
	if err != nil {
		return map[string]int{}
	}
	if record.Tally == nil {
		return map[string]int{}
	}
	return record.Tally
}

func (s *PollService) userVote(ctx context.Context, door int, userID string) *string {
	if userID == "" {
		return nil
	}
	record, err := s.repo.GetVoteRecord(ctx, door)
	if err != nil {
		return nil
	}
	if option, ok := record.Voters[userID]; ok {
		return &option
	}
	return nil
}
