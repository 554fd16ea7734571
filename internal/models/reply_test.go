package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

// buildTestTree returns the forest
//
//	A
//	├── B
//	└── C
//	    └── D
//	E
func buildTestTree() (replies []*Reply, nodes map[string]*Reply) {
	a := &Reply{ID: uuid.New(), Content: "A"}
	b := &Reply{ID: uuid.New(), Content: "B"}
	c := &Reply{ID: uuid.New(), Content: "C"}
	d := &Reply{ID: uuid.New(), Content: "D"}
	e := &Reply{ID: uuid.New(), Content: "E"}

	c.Children = []*Reply{d}
	a.Children = []*Reply{b, c}

	return []*Reply{a, e}, map[string]*Reply{"A": a, "B": b, "C": c, "D": d, "E": e}
}

func TestLocateReply(t *testing.T) {
	replies, nodes := buildTestTree()

	for name, want := range nodes {
		got := LocateReply(replies, want.ID)
		assert.Same(t, want, got, "locate %s", name)
	}
}

func TestLocateReplyMissing(t *testing.T) {
	replies, _ := buildTestTree()

	assert.Nil(t, LocateReply(replies, uuid.New()))
	assert.Nil(t, LocateReply(nil, uuid.New()))
}

func TestLocateReplyReturnsMutableNode(t *testing.T) {
	replies, nodes := buildTestTree()
	userID := uuid.New()

	node := LocateReply(replies, nodes["D"].ID)
	node.Votes, _ = ApplyVote(node.Votes, userID, VoteUp)

	// The mutation is visible through the tree itself.
	assert.Equal(t, 1, nodes["D"].NetScore())
}

func TestLocateReplyDeepNesting(t *testing.T) {
	// A strictly descending chain far beyond comfortable recursion depth.
	const depth = 200000

	root := &Reply{ID: uuid.New()}
	node := root
	var deepest *Reply
	for i := 0; i < depth; i++ {
		child := &Reply{ID: uuid.New()}
		node.Children = []*Reply{child}
		node = child
		deepest = child
	}

	got := LocateReply([]*Reply{root}, deepest.ID)
	assert.Same(t, deepest, got)
}

func TestCountReplies(t *testing.T) {
	replies, _ := buildTestTree()
	assert.Equal(t, 5, CountReplies(replies))
	assert.Equal(t, 0, CountReplies(nil))
}
