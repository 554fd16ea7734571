package models

import (
	"time"

	"github.com/google/uuid"
)

// Reply is a single node in a thread's reply tree. A reply owns its Children
// subtree exclusively; nesting depth is unbounded.
type Reply struct {
	ID        uuid.UUID `json:"id" bson:"id"`
	AuthorID  uuid.UUID `json:"authorId" bson:"authorid"`
	Content   string    `json:"content" bson:"content"`
	CreatedAt time.Time `json:"createdAt" bson:"createdat"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedat"`
	IsEdited  bool      `json:"isEdited" bson:"isedited"`
	Votes     []Vote    `json:"votes" bson:"votes"`
	Children  []*Reply  `json:"children" bson:"children"`
}

// NetScore returns the reply's upvotes minus downvotes.
func (r *Reply) NetScore() int {
	return NetScore(r.Votes)
}

// LocateReply searches the reply forest for the reply with the given ID and
// returns a mutable reference to it, or nil if no such reply exists (a normal
// outcome, not a failure). The search is depth-first pre-order: each reply is
// checked before its children, siblings after the preceding sibling's whole
// subtree. An explicit work stack keeps pathologically deep threads from
// exhausting call stack.
func LocateReply(replies []*Reply, id uuid.UUID) *Reply {
	// Seed in reverse so the stack pops siblings in original order.
	stack := make([]*Reply, 0, len(replies))
	for i := len(replies) - 1; i >= 0; i-- {
		stack = append(stack, replies[i])
	}

	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if node.ID == id {
			return node
		}
		for i := len(node.Children) - 1; i >= 0; i-- {
			stack = append(stack, node.Children[i])
		}
	}
	return nil
}

// CountReplies returns the total number of replies in the forest, counting
// every nesting level.
func CountReplies(replies []*Reply) int {
	count := 0
	stack := append([]*Reply(nil), replies...)
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		count++
		stack = append(stack, node.Children...)
	}
	return count
}
