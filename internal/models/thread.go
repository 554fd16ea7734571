package models

import (
	"time"

	"github.com/google/uuid"
)

// ReputationPerPoint is the multiplier from a thread's net vote score to the
// author's reputation contribution.
const ReputationPerPoint = 10

// Thread is the aggregate root: metadata, the thread's own vote set and the
// reply tree rooted at Replies. Reply order is append-only.
type Thread struct {
	ID             uuid.UUID   `json:"id"`
	Title          string      `json:"title"`
	Content        string      `json:"content"`
	AuthorID       uuid.UUID   `json:"authorId"`
	AuthorUsername string      `json:"authorUsername,omitempty"`
	CategoryID     uuid.UUID   `json:"categoryId"`
	Tags           []uuid.UUID `json:"tags"`
	Votes          []Vote      `json:"votes"`
	Replies        []*Reply    `json:"replies"`
	Views          int         `json:"views"`
	IsPinned       bool        `json:"isPinned"`
	IsEdited       bool        `json:"isEdited"`
	CreatedAt      time.Time   `json:"createdAt"`
	UpdatedAt      time.Time   `json:"updatedAt"`
}

// NetScore returns the thread's own upvotes minus downvotes. Reply votes are
// not included.
func (t *Thread) NetScore() int {
	return NetScore(t.Votes)
}

// ReputationForScore maps a thread's net vote score to the author reputation
// value: ten points per net upvote, floored at zero.
func ReputationForScore(netScore int) int {
	rep := netScore * ReputationPerPoint
	if rep < 0 {
		return 0
	}
	return rep
}

// AuthorReputation recomputes the author's reputation from the thread's full
// vote set. Recomputing from scratch on every thread-level vote change keeps
// the stored value from drifting away from the votes that justify it.
func (t *Thread) AuthorReputation() int {
	return ReputationForScore(t.NetScore())
}
