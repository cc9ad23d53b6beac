package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/advent-api/internal/models"
	"github.com/noah-isme/advent-api/internal/repository"
	appErrors "github.com/noah-isme/advent-api/pkg/errors"
)

type pollRepoStub struct {
	polls map[int]models.Poll
	votes map[int]models.VoteRecord
}

func newPollRepoStub() *pollRepoStub {
	return &pollRepoStub{polls: map[int]models.Poll{}, votes: map[int]models.VoteRecord{}}
}

func (s *pollRepoStub) GetPoll(ctx context.Context, door int) (models.Poll, error) {
	poll, ok := s.polls[door]
	if !ok {
		return models.Poll{}, repository.ErrNoEntry
	}
	return poll, nil
}

func (s *pollRepoStub) SavePoll(ctx context.Context, door int, poll models.Poll) error {
	s.polls[door] = poll
	if _, ok := s.votes[door]; !ok {
		s.votes[door] = models.NewVoteRecord(poll.Options)
	}
	return nil
}

func (s *pollRepoStub) DeletePoll(ctx context.Context, door int) error {
	delete(s.polls, door)
	delete(s.votes, door)
	return nil
}

func (s *pollRepoStub) GetVoteRecord(ctx context.Context, door int) (models.VoteRecord, error) {
	record, ok := s.votes[door]
	if !ok {
		return models.VoteRecord{}, repository.ErrNoEntry
	}
	return record, nil
}

func (s *pollRepoStub) CastVote(ctx context.Context, door int, option, userID string) (models.VoteRecord, bool, error) {
	record, ok := s.votes[door]
	if !ok {
		return models.VoteRecord{}, false, repository.ErrNoEntry
	}
	if _, voted := record.Voters[userID]; voted {
		return record, false, nil
	}
	record.Tally[option]++
	record.Voters[userID] = option
	s.votes[door] = record
	return record, true, nil
}

func newPollFixture(t *testing.T, today time.Time) (*PollService, *pollRepoStub) {
	t.Helper()
	repo := newPollRepoStub()
	availability := NewAvailabilityService(
		settingsReaderStub{settings: models.Settings{StartDate: "2024-12-01", Title: "Advent"}},
		func() time.Time { return today },
	)
	return NewPollService(repo, availability, nil, nil), repo
}

func TestPollVoteRecordsOnce(t *testing.T) {
	svc, repo := newPollFixture(t, day(2024, time.December, 5))
	require.NoError(t, repo.SavePoll(context.Background(), 3, models.Poll{Question: "Glühwein oder Punsch?", Options: []string{"Glühwein", "Punsch"}}))

	result, err := svc.Vote(context.Background(), 3, "Punsch", "user-1")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 1, result.Votes["Punsch"])
	require.NotNil(t, result.UserVote)
	assert.Equal(t, "Punsch", *result.UserVote)
}

func TestPollRepeatVoteRejectedWithoutTallyChange(t *testing.T) {
	svc, repo := newPollFixture(t, day(2024, time.December, 5))
	require.NoError(t, repo.SavePoll(context.Background(), 3, models.Poll{Question: "q", Options: []string{"a", "b"}}))

	_, err := svc.Vote(context.Background(), 3, "a", "user-1")
	require.NoError(t, err)

	repeat, err := svc.Vote(context.Background(), 3, "b", "user-1")
	require.NoError(t, err)
	assert.False(t, repeat.Success)
	assert.Equal(t, 1, repeat.Votes["a"])
	assert.Equal(t, 0, repeat.Votes["b"])
	require.NotNil(t, repeat.UserVote)
	assert.Equal(t, "a", *repeat.UserVote)
}

func TestPollVoteGatedDoor(t *testing.T) {
	svc, repo := newPollFixture(t, day(2024, time.December, 5))
	require.NoError(t, repo.SavePoll(context.Background(), 20, models.Poll{Question: "q", Options: []string{"a"}}))

	_, err := svc.Vote(context.Background(), 20, "a", "user-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotYetAvailable.Code, appErrors.FromError(err).Code)
}

func TestPollVoteRequiresUserID(t *testing.T) {
	svc, repo := newPollFixture(t, day(2024, time.December, 5))
	require.NoError(t, repo.SavePoll(context.Background(), 3, models.Poll{Question: "q", Options: []string{"a"}}))

	_, err := svc.Vote(context.Background(), 3, "a", "")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestPollVoteUnknownOption(t *testing.T) {
	svc, repo := newPollFixture(t, day(2024, time.December, 5))
	require.NoError(t, repo.SavePoll(context.Background(), 3, models.Poll{Question: "q", Options: []string{"a"}}))

	_, err := svc.Vote(context.Background(), 3, "z", "user-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestPollVoteMissingPoll(t *testing.T) {
	svc, _ := newPollFixture(t, day(2024, time.December, 5))

	_, err := svc.Vote(context.Background(), 3, "a", "user-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestPollGetDistinguishesMissingFromGated(t *testing.T) {
	svc, repo := newPollFixture(t, day(2024, time.December, 5))
	require.NoError(t, repo.SavePoll(context.Background(), 20, models.Poll{Question: "q", Options: []string{"a"}}))

	_, err := svc.Get(context.Background(), 3, "")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)

	_, err = svc.Get(context.Background(), 20, "")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotYetAvailable.Code, appErrors.FromError(err).Code)
}

func TestPollGetIncludesUserVote(t *testing.T) {
	svc, repo := newPollFixture(t, day(2024, time.December, 5))
	require.NoError(t, repo.SavePoll(context.Background(), 3, models.Poll{Question: "q", Options: []string{"a", "b"}}))
	_, err := svc.Vote(context.Background(), 3, "b", "user-1")
	require.NoError(t, err)

	view, err := svc.Get(context.Background(), 3, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "q", view.PollData.Question)
	assert.Equal(t, 1, view.Votes["b"])
	require.NotNil(t, view.UserVote)
	assert.Equal(t, "b", *view.UserVote)

	anonymous, err := svc.Get(context.Background(), 3, "")
	require.NoError(t, err)
	assert.Nil(t, anonymous.UserVote)
}

func TestPollDefinitionSkipsGate(t *testing.T) {
	svc, repo := newPollFixture(t, day(2024, time.December, 5))
	require.NoError(t, repo.SavePoll(context.Background(), 20, models.Poll{Question: "q", Options: []string{"a"}}))

	poll, err := svc.Definition(context.Background(), 20)
	require.NoError(t, err)
	assert.Equal(t, "q", poll.Question)
}
