package models

import (
	"github.com/google/uuid"
)

// VoteType represents the direction of a vote.
type VoteType string

const (
	VoteUp   VoteType = "up"
	VoteDown VoteType = "down"
)

// IsValid reports whether t is one of the two accepted vote directions.
func (t VoteType) IsValid() bool {
	return t == VoteUp || t == VoteDown
}

// Vote is a single user's vote on a votable node (a thread or a reply).
// A node's vote set holds at most one Vote per user.
type Vote struct {
	UserID uuid.UUID `json:"userId" bson:"userid"`
	Type   VoteType  `json:"type" bson:"type"`
}

// ApplyVote applies a user's desired vote to a vote set and returns the new
// set along with the user's resulting vote:
//   - no existing entry: the vote is inserted, result is the desired type
//   - existing entry of the same type: the vote is removed (toggled off),
//     result is nil
//   - existing entry of the other type: the entry switches type, result is
//     the desired type
//
// The function never fails and does not modify the input slice.
func ApplyVote(votes []Vote, userID uuid.UUID, desired VoteType) ([]Vote, *VoteType) {
	for i, v := range votes {
		if v.UserID != userID {
			continue
		}
		if v.Type == desired {
			// Toggle off: drop the entry.
			updated := make([]Vote, 0, len(votes)-1)
			updated = append(updated, votes[:i]...)
			updated = append(updated, votes[i+1:]...)
			return updated, nil
		}
		// Switch direction in place; still exactly one entry for this user.
		updated := make([]Vote, len(votes))
		copy(updated, votes)
		updated[i].Type = desired
		result := desired
		return updated, &result
	}

	updated := make([]Vote, len(votes), len(votes)+1)
	copy(updated, votes)
	updated = append(updated, Vote{UserID: userID, Type: desired})
	result := desired
	return updated, &result
}

// NetScore returns upvote count minus downvote count for a vote set.
func NetScore(votes []Vote) int {
	score := 0
	for _, v := range votes {
		switch v.Type {
		case VoteUp:
			score++
		case VoteDown:
			score--
		}
	}
	return score
}

// UserVote returns the user's current vote in the set, or nil if the user
// has not voted.
func UserVote(votes []Vote, userID uuid.UUID) *VoteType {
	for _, v := range votes {
		if v.UserID == userID {
			t := v.Type
			return &t
		}
	}
	return nil
}
