package actors

import (
	"context"
	"testing"
	"time"

	"heron-marsh/internal/database"
	"heron-marsh/internal/models"
	"heron-marsh/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type threadActorFixture struct {
	system     *actor.ActorSystem
	pid        *actor.PID
	store      *database.MemoryStore
	authorID   uuid.UUID
	categoryID uuid.UUID
	threadID   uuid.UUID
}

func newThreadActorFixture(t *testing.T) *threadActorFixture {
	t.Helper()

	store := database.NewMemoryStore()
	ctx := context.Background()

	authorID := uuid.New()
	err := store.SaveUser(ctx, &models.User{
		ID:        authorID,
		Username:  "marshbird",
		Email:     "marshbird@example.com",
		CreatedAt: time.Now(),
	})
	assert.NoError(t, err)

	categoryID := uuid.New()
	err = store.CreateCategory(ctx, &models.Category{
		ID:        categoryID,
		Name:      "general",
		CreatorID: authorID,
		CreatedAt: time.Now(),
	})
	assert.NoError(t, err)

	threadID := uuid.New()
	err = store.SaveThread(ctx, &models.Thread{
		ID:         threadID,
		Title:      "Test thread",
		Content:    "Test content",
		AuthorID:   authorID,
		CategoryID: categoryID,
		Votes:      []models.Vote{},
		Replies:    []*models.Reply{},
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	})
	assert.NoError(t, err)

	system := actor.NewActorSystem()
	props := actor.PropsFromProducer(func() actor.Actor {
		return NewThreadActor(store, utils.NewMetricsCollector(), nil, nil)
	})
	pid := system.Root.Spawn(props)

	return &threadActorFixture{
		system:     system,
		pid:        pid,
		store:      store,
		authorID:   authorID,
		categoryID: categoryID,
		threadID:   threadID,
	}
}

func (f *threadActorFixture) castVote(t *testing.T, msg *CastVoteMsg) interface{} {
	t.Helper()
	future := f.system.Root.RequestFuture(f.pid, msg, 5*time.Second)
	result, err := future.Result()
	assert.NoError(t, err)
	return result
}

func TestCastVoteOnThread(t *testing.T) {
	f := newThreadActorFixture(t)
	ctx := context.Background()
	voterID := uuid.New()

	// First upvote.
	result := f.castVote(t, &CastVoteMsg{ThreadID: f.threadID, UserID: voterID, Type: models.VoteUp})
	vote := result.(*VoteResult)
	assert.Equal(t, 1, vote.NetScore)
	assert.NotNil(t, vote.UserVote)
	assert.Equal(t, models.VoteUp, *vote.UserVote)

	author, err := f.store.GetUser(ctx, f.authorID)
	assert.NoError(t, err)
	assert.Equal(t, 10, author.Reputation)

	// Switching to a downvote replaces the entry.
	result = f.castVote(t, &CastVoteMsg{ThreadID: f.threadID, UserID: voterID, Type: models.VoteDown})
	vote = result.(*VoteResult)
	assert.Equal(t, -1, vote.NetScore)
	assert.Equal(t, models.VoteDown, *vote.UserVote)

	author, err = f.store.GetUser(ctx, f.authorID)
	assert.NoError(t, err)
	assert.Equal(t, 0, author.Reputation, "reputation floors at zero for a negative score")

	// Repeating the downvote toggles it off.
	result = f.castVote(t, &CastVoteMsg{ThreadID: f.threadID, UserID: voterID, Type: models.VoteDown})
	vote = result.(*VoteResult)
	assert.Equal(t, 0, vote.NetScore)
	assert.Nil(t, vote.UserVote)

	author, err = f.store.GetUser(ctx, f.authorID)
	assert.NoError(t, err)
	assert.Equal(t, 0, author.Reputation)

	// The persisted aggregate holds no vote for the voter.
	thread, err := f.store.LoadThread(ctx, f.threadID)
	assert.NoError(t, err)
	assert.Empty(t, thread.Votes)
}

func TestCastVoteOnReplyDoesNotTouchReputation(t *testing.T) {
	f := newThreadActorFixture(t)
	ctx := context.Background()

	// Create a nested reply: root -> child.
	future := f.system.Root.RequestFuture(f.pid, &CreateReplyMsg{
		ThreadID: f.threadID,
		AuthorID: f.authorID,
		Content:  "root reply",
	}, 5*time.Second)
	result, err := future.Result()
	assert.NoError(t, err)
	root := result.(*models.Reply)

	future = f.system.Root.RequestFuture(f.pid, &CreateReplyMsg{
		ThreadID: f.threadID,
		ParentID: &root.ID,
		AuthorID: f.authorID,
		Content:  "nested reply",
	}, 5*time.Second)
	result, err = future.Result()
	assert.NoError(t, err)
	nested := result.(*models.Reply)

	// Vote on the nested reply.
	voterID := uuid.New()
	result = f.castVote(t, &CastVoteMsg{
		ThreadID: f.threadID,
		ReplyID:  &nested.ID,
		UserID:   voterID,
		Type:     models.VoteUp,
	})
	vote := result.(*VoteResult)
	assert.Equal(t, 1, vote.NetScore)
	assert.Equal(t, nested.ID, *vote.ReplyID)

	// Reply votes never affect the thread author's reputation.
	author, err := f.store.GetUser(ctx, f.authorID)
	assert.NoError(t, err)
	assert.Equal(t, 0, author.Reputation)

	// The vote is persisted on the nested node, not the root.
	thread, err := f.store.LoadThread(ctx, f.threadID)
	assert.NoError(t, err)
	persistedRoot := models.LocateReply(thread.Replies, root.ID)
	persistedNested := models.LocateReply(thread.Replies, nested.ID)
	assert.Empty(t, persistedRoot.Votes)
	assert.Len(t, persistedNested.Votes, 1)
}

func TestCastVoteThreadNotFound(t *testing.T) {
	f := newThreadActorFixture(t)

	result := f.castVote(t, &CastVoteMsg{ThreadID: uuid.New(), UserID: uuid.New(), Type: models.VoteUp})
	appErr, ok := result.(*utils.AppError)
	assert.True(t, ok)
	assert.Equal(t, utils.ErrThreadNotFound, appErr.Code)
}

func TestCastVoteReplyNotFound(t *testing.T) {
	f := newThreadActorFixture(t)

	missing := uuid.New()
	result := f.castVote(t, &CastVoteMsg{
		ThreadID: f.threadID,
		ReplyID:  &missing,
		UserID:   uuid.New(),
		Type:     models.VoteUp,
	})
	appErr, ok := result.(*utils.AppError)
	assert.True(t, ok)
	assert.Equal(t, utils.ErrReplyNotFound, appErr.Code)

	// The aggregate is untouched.
	thread, err := f.store.LoadThread(context.Background(), f.threadID)
	assert.NoError(t, err)
	assert.Empty(t, thread.Votes)
}

func TestCastVoteInvalidType(t *testing.T) {
	f := newThreadActorFixture(t)

	result := f.castVote(t, &CastVoteMsg{ThreadID: f.threadID, UserID: uuid.New(), Type: "sideways"})
	appErr, ok := result.(*utils.AppError)
	assert.True(t, ok)
	assert.Equal(t, utils.ErrInvalidInput, appErr.Code)
}

func TestCastVoteConcurrentVoters(t *testing.T) {
	f := newThreadActorFixture(t)

	// Ten voters racing through the mailbox; each must land exactly one entry.
	const voters = 10
	done := make(chan struct{}, voters)
	for i := 0; i < voters; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			future := f.system.Root.RequestFuture(f.pid, &CastVoteMsg{
				ThreadID: f.threadID,
				UserID:   uuid.New(),
				Type:     models.VoteUp,
			}, 5*time.Second)
			_, err := future.Result()
			assert.NoError(t, err)
		}()
	}
	for i := 0; i < voters; i++ {
		<-done
	}

	thread, err := f.store.LoadThread(context.Background(), f.threadID)
	assert.NoError(t, err)
	assert.Len(t, thread.Votes, voters)
	assert.Equal(t, voters, thread.NetScore())

	author, err := f.store.GetUser(context.Background(), f.authorID)
	assert.NoError(t, err)
	assert.Equal(t, voters*models.ReputationPerPoint, author.Reputation)
}

func TestCreateThread(t *testing.T) {
	f := newThreadActorFixture(t)

	future := f.system.Root.RequestFuture(f.pid, &CreateThreadMsg{
		Title:      "Another thread",
		Content:    "More content",
		AuthorID:   f.authorID,
		CategoryID: f.categoryID,
	}, 5*time.Second)
	result, err := future.Result()
	assert.NoError(t, err)

	thread := result.(*models.Thread)
	assert.Equal(t, "Another thread", thread.Title)
	assert.Equal(t, "marshbird", thread.AuthorUsername)

	category, err := f.store.GetCategoryByID(context.Background(), f.categoryID)
	assert.NoError(t, err)
	assert.Equal(t, 1, category.ThreadCount)
}

func TestGetThreadIncrementsViews(t *testing.T) {
	f := newThreadActorFixture(t)

	future := f.system.Root.RequestFuture(f.pid, &GetThreadMsg{ThreadID: f.threadID}, 5*time.Second)
	result, err := future.Result()
	assert.NoError(t, err)
	assert.Equal(t, 1, result.(*models.Thread).Views)

	future = f.system.Root.RequestFuture(f.pid, &GetThreadMsg{ThreadID: f.threadID}, 5*time.Second)
	result, err = future.Result()
	assert.NoError(t, err)
	assert.Equal(t, 2, result.(*models.Thread).Views)
}

func TestEditThread(t *testing.T) {
	f := newThreadActorFixture(t)

	// Non-authors cannot edit.
	future := f.system.Root.RequestFuture(f.pid, &EditThreadMsg{
		ThreadID: f.threadID,
		AuthorID: uuid.New(),
		Content:  "hijacked",
	}, 5*time.Second)
	result, err := future.Result()
	assert.NoError(t, err)
	appErr, ok := result.(*utils.AppError)
	assert.True(t, ok)
	assert.Equal(t, utils.ErrForbidden, appErr.Code)

	future = f.system.Root.RequestFuture(f.pid, &EditThreadMsg{
		ThreadID: f.threadID,
		AuthorID: f.authorID,
		Content:  "revised content",
	}, 5*time.Second)
	result, err = future.Result()
	assert.NoError(t, err)

	thread := result.(*models.Thread)
	assert.Equal(t, "revised content", thread.Content)
	assert.True(t, thread.IsEdited)
}

func TestDeleteThread(t *testing.T) {
	f := newThreadActorFixture(t)

	future := f.system.Root.RequestFuture(f.pid, &DeleteThreadMsg{
		ThreadID: f.threadID,
		UserID:   f.authorID,
	}, 5*time.Second)
	result, err := future.Result()
	assert.NoError(t, err)
	_, ok := result.(*ThreadDeletedMsg)
	assert.True(t, ok)

	_, err = f.store.LoadThread(context.Background(), f.threadID)
	assert.True(t, utils.IsErrorCode(err, utils.ErrThreadNotFound))
}
