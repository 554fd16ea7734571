package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestApplyVoteInsert(t *testing.T) {
	userID := uuid.New()

	votes, result := ApplyVote(nil, userID, VoteUp)

	assert.Len(t, votes, 1)
	assert.Equal(t, userID, votes[0].UserID)
	assert.Equal(t, VoteUp, votes[0].Type)
	assert.NotNil(t, result)
	assert.Equal(t, VoteUp, *result)
}

func TestApplyVoteToggleOff(t *testing.T) {
	userID := uuid.New()

	votes, _ := ApplyVote(nil, userID, VoteUp)
	votes, result := ApplyVote(votes, userID, VoteUp)

	assert.Empty(t, votes)
	assert.Nil(t, result)
}

func TestApplyVoteSwitch(t *testing.T) {
	userID := uuid.New()
	other := uuid.New()

	votes, _ := ApplyVote(nil, other, VoteUp)
	votes, _ = ApplyVote(votes, userID, VoteUp)
	votes, result := ApplyVote(votes, userID, VoteDown)

	assert.NotNil(t, result)
	assert.Equal(t, VoteDown, *result)

	// Switching must never leave two entries for the same user.
	entries := 0
	for _, v := range votes {
		if v.UserID == userID {
			entries++
			assert.Equal(t, VoteDown, v.Type)
		}
	}
	assert.Equal(t, 1, entries)
	assert.Len(t, votes, 2)
}

func TestApplyVoteDoesNotMutateInput(t *testing.T) {
	userID := uuid.New()
	original := []Vote{{UserID: userID, Type: VoteUp}}

	_, _ = ApplyVote(original, userID, VoteDown)

	assert.Equal(t, VoteUp, original[0].Type)
}

func TestNetScore(t *testing.T) {
	votes := []Vote{
		{UserID: uuid.New(), Type: VoteUp},
		{UserID: uuid.New(), Type: VoteUp},
		{UserID: uuid.New(), Type: VoteUp},
		{UserID: uuid.New(), Type: VoteDown},
	}

	assert.Equal(t, 2, NetScore(votes))
	assert.Equal(t, 0, NetScore(nil))
}

func TestNetScoreRoundTrip(t *testing.T) {
	userID := uuid.New()
	votes := []Vote{
		{UserID: uuid.New(), Type: VoteDown},
		{UserID: uuid.New(), Type: VoteUp},
	}
	before := NetScore(votes)

	// Adding an upvote and toggling it back off restores the prior score.
	votes, _ = ApplyVote(votes, userID, VoteUp)
	assert.Equal(t, before+1, NetScore(votes))

	votes, result := ApplyVote(votes, userID, VoteUp)
	assert.Nil(t, result)
	assert.Equal(t, before, NetScore(votes))
}

func TestUserVote(t *testing.T) {
	userID := uuid.New()
	votes := []Vote{{UserID: userID, Type: VoteDown}}

	vote := UserVote(votes, userID)
	assert.NotNil(t, vote)
	assert.Equal(t, VoteDown, *vote)

	assert.Nil(t, UserVote(votes, uuid.New()))
}

func TestVoteTypeIsValid(t *testing.T) {
	assert.True(t, VoteUp.IsValid())
	assert.True(t, VoteDown.IsValid())
	assert.False(t, VoteType("sideways").IsValid())
}
