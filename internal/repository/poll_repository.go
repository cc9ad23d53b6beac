package repository

import (
	"context"
	"strconv"

	"github.com/noah-isme/advent-api/internal/models"
)

// PollRepository persists poll definitions and vote records as two JSON
// documents keyed by door index.
type PollRepository struct {
	polls *document
	votes *document
}

// NewPollRepository builds the repository over the two document paths.
func NewPollRepository(pollsPath, votesPath string) *PollRepository {
	return &PollRepository{
		polls: newDocument(pollsPath),
		votes: newDocument(votesPath),
	}
}

// GetPoll returns the poll definition for a door, or ErrNoEntry.
func (r *PollRepository) GetPoll(ctx context.Context, door int) (models.Poll, error) {
	raw := map[string]models.Poll{}
	if err := r.polls.view(&raw); err != nil {
		return models.Poll{}, err
	}
	poll, ok := raw[strconv.Itoa(door)]
	if !ok {
		return models.Poll{}, ErrNoEntry
	}
	return poll, nil
}

// SavePoll stores the definition and, only when no vote record exists yet for
// the door, a zeroed tally. Re-saving a poll that has collected votes keeps
// the existing tallies.
func (r *PollRepository) SavePoll(ctx context.Context, door int, poll models.Poll) error {
	key := strconv.Itoa(door)

	rawPolls := map[string]models.Poll{}
	if err := r.polls.mutate(&rawPolls, func() error {
		rawPolls[key] = poll
		return nil
	}); err != nil {
		return err
	}

	rawVotes := map[string]models.VoteRecord{}
	return r.votes.mutate(&rawVotes, func() error {
		if _, ok := rawVotes[key]; ok {
			return errNoChange
		}
		rawVotes[key] = models.NewVoteRecord(poll.Options)
		return nil
	})
}

// DeletePoll removes both the definition and the vote record. Deleting a
// non-existent poll is a no-op.
func (r *PollRepository) DeletePoll(ctx context.Context, door int) error {
	key := strconv.Itoa(door)

	rawPolls := map[string]models.Poll{}
	if err := r.polls.mutate(&rawPolls, func() error {
		if _, ok := rawPolls[key]; !ok {
			return errNoChange
		}
		delete(rawPolls, key)
		return nil
	}); err != nil {
		return err
	}

	rawVotes := map[string]models.VoteRecord{}
	return r.votes.mutate(&rawVotes, func() error {
		if _, ok := rawVotes[key]; !ok {
			return errNoChange
		}
		delete(rawVotes, key)
		return nil
	})
}

// GetVoteRecord returns the vote record for a door, or ErrNoEntry.
func (r *PollRepository) GetVoteRecord(ctx context.Context, door int) (models.VoteRecord, error) {
	raw := map[string]models.VoteRecord{}
	if err := r.votes.view(&raw); err != nil {
		return models.VoteRecord{}, err
	}
	record, ok := raw[strconv.Itoa(door)]
	if !ok {
		return models.VoteRecord{}, ErrNoEntry
	}
	return record, nil
}

// CastVote atomically records a vote. The returned bool is false when the
// user had already voted; the record reflects the state after the call either
// way. Returns ErrNoEntry when the door has no vote record.
func (r *PollRepository) CastVote(ctx context.Context, door int, option, userID string) (models.VoteRecord, bool, error) {
	key := strconv.Itoa(door)
	var result models.VoteRecord
	recorded := false

	raw := map[string]models.VoteRecord{}
	err := r.votes.mutate(&raw, func() error {
		record, ok := raw[key]
		if !ok {
			return ErrNoEntry
		}
		if _, voted := record.Voters[userID]; voted {
			result = record
			return errNoChange
		}
		if record.Tally == nil {
			record.Tally = make(map[string]int)
		}
		if record.Voters == nil {
			record.Voters = make(map[string]string)
		}
		record.Tally[option]++
		record.Voters[userID] = option
		raw[key] = record
		result = record
		recorded = true
		return nil
	})
	if err != nil {
		return models.VoteRecord{}, false, err
	}
	return result, recorded, nil
}
