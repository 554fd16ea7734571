package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestReputationForScore(t *testing.T) {
	assert.Equal(t, 20, ReputationForScore(2))
	assert.Equal(t, 0, ReputationForScore(0))
	assert.Equal(t, 0, ReputationForScore(-5))
}

func TestAuthorReputation(t *testing.T) {
	thread := &Thread{
		ID:       uuid.New(),
		AuthorID: uuid.New(),
		Votes: []Vote{
			{UserID: uuid.New(), Type: VoteUp},
			{UserID: uuid.New(), Type: VoteUp},
			{UserID: uuid.New(), Type: VoteUp},
			{UserID: uuid.New(), Type: VoteDown},
		},
	}

	assert.Equal(t, 2, thread.NetScore())
	assert.Equal(t, 20, thread.AuthorReputation())
}

func TestAuthorReputationFloorsAtZero(t *testing.T) {
	thread := &Thread{ID: uuid.New(), AuthorID: uuid.New()}
	for i := 0; i < 5; i++ {
		thread.Votes, _ = ApplyVote(thread.Votes, uuid.New(), VoteDown)
	}

	assert.Equal(t, -5, thread.NetScore())
	assert.Equal(t, 0, thread.AuthorReputation())
}

func TestReplyVotesDoNotAffectThreadScore(t *testing.T) {
	reply := &Reply{ID: uuid.New(), AuthorID: uuid.New()}
	thread := &Thread{
		ID:       uuid.New(),
		AuthorID: uuid.New(),
		Replies:  []*Reply{reply},
	}

	reply.Votes, _ = ApplyVote(reply.Votes, uuid.New(), VoteUp)
	reply.Votes, _ = ApplyVote(reply.Votes, uuid.New(), VoteUp)

	assert.Equal(t, 2, reply.NetScore())
	assert.Equal(t, 0, thread.NetScore())
	assert.Equal(t, 0, thread.AuthorReputation())
}
