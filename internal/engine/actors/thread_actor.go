package actors

import (
	stdctx "context"
	"encoding/json"
	"log"
	"time"

	"heron-marsh/internal/database"
	"heron-marsh/internal/models"
	"heron-marsh/internal/utils"
	"heron-marsh/internal/websocket"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
)

// Message types for Thread operations
type (
	CreateThreadMsg struct {
		Title      string      `json:"title"`
		Content    string      `json:"content"`
		AuthorID   uuid.UUID   `json:"authorId"`
		CategoryID uuid.UUID   `json:"categoryId"`
		Tags       []uuid.UUID `json:"tags,omitempty"`
	}

	GetThreadMsg struct {
		ThreadID uuid.UUID `json:"threadId"`
	}

	EditThreadMsg struct {
		ThreadID uuid.UUID `json:"threadId"`
		AuthorID uuid.UUID `json:"authorId"`
		Title    string    `json:"title"`
		Content  string    `json:"content"`
	}

	PinThreadMsg struct {
		ThreadID uuid.UUID `json:"threadId"`
		Pinned   bool      `json:"pinned"`
	}

	DeleteThreadMsg struct {
		ThreadID uuid.UUID `json:"threadId"`
		UserID   uuid.UUID `json:"userId"`
	}

	CreateReplyMsg struct {
		ThreadID uuid.UUID  `json:"threadId"`
		ParentID *uuid.UUID `json:"parentId,omitempty"`
		AuthorID uuid.UUID  `json:"authorId"`
		Content  string     `json:"content"`
	}

	// CastVoteMsg targets the thread itself when ReplyID is nil, otherwise
	// the reply with that ID anywhere in the thread's reply tree.
	CastVoteMsg struct {
		ThreadID uuid.UUID       `json:"threadId"`
		ReplyID  *uuid.UUID      `json:"replyId,omitempty"`
		UserID   uuid.UUID       `json:"userId"`
		Type     models.VoteType `json:"type"`
	}

	GetCategoryThreadsMsg struct {
		CategoryID uuid.UUID `json:"categoryId"`
	}

	GetRecentThreadsMsg struct {
		Limit int `json:"limit"`
	}

	ThreadDeletedMsg struct {
		ThreadID uuid.UUID `json:"threadId"`
	}
)

// VoteResult is the outcome of a CastVoteMsg: the target node's new net score
// and the user's vote after the mutation (nil when toggled off).
type VoteResult struct {
	ThreadID uuid.UUID        `json:"threadId"`
	ReplyID  *uuid.UUID       `json:"replyId,omitempty"`
	NetScore int              `json:"netScore"`
	UserVote *models.VoteType `json:"userVote"`
}

// ThreadActor owns every thread aggregate mutation. All messages pass through
// its mailbox one at a time, so a load-mutate-persist sequence for a vote is
// never interleaved with another writer.
type ThreadActor struct {
	store          database.Store
	metrics        *utils.MetricsCollector
	userSupervisor *actor.PID
	hub            *websocket.Hub
}

// NewThreadActor creates a new ThreadActor instance. userSupervisor and hub
// may be nil; reputation notifications and tally broadcasts are then skipped.
func NewThreadActor(store database.Store, metrics *utils.MetricsCollector, userSupervisor *actor.PID, hub *websocket.Hub) actor.Actor {
	return &ThreadActor{
		store:          store,
		metrics:        metrics,
		userSupervisor: userSupervisor,
		hub:            hub,
	}
}

// Receive handles incoming messages
func (a *ThreadActor) Receive(context actor.Context) {
	switch msg := context.Message().(type) {
	case *actor.Started:
		log.Printf("ThreadActor started")

	case *actor.Stopping:
		log.Printf("ThreadActor stopping")

	case *CreateThreadMsg:
		a.handleCreateThread(context, msg)
	case *GetThreadMsg:
		a.handleGetThread(context, msg)
	case *EditThreadMsg:
		a.handleEditThread(context, msg)
	case *PinThreadMsg:
		a.handlePinThread(context, msg)
	case *DeleteThreadMsg:
		a.handleDeleteThread(context, msg)
	case *CreateReplyMsg:
		a.handleCreateReply(context, msg)
	case *CastVoteMsg:
		a.handleCastVote(context, msg)
	case *GetCategoryThreadsMsg:
		a.handleGetCategoryThreads(context, msg)
	case *GetRecentThreadsMsg:
		a.handleGetRecentThreads(context, msg)
	default:
		log.Printf("ThreadActor: Unknown message type: %T", msg)
	}
}

// respondStoreError forwards AppErrors untouched and wraps anything else as a
// database failure.
func respondStoreError(context actor.Context, err error, operation string) {
	if appErr, ok := err.(*utils.AppError); ok {
		context.Respond(appErr)
		return
	}
	context.Respond(utils.NewDatabaseError(operation, err))
}

func (a *ThreadActor) handleCreateThread(context actor.Context, msg *CreateThreadMsg) {
	startTime := time.Now()
	ctx := stdctx.Background()

	if _, err := a.store.GetCategoryByID(ctx, msg.CategoryID); err != nil {
		respondStoreError(context, err, "fetch category")
		return
	}

	author, err := a.store.GetUser(ctx, msg.AuthorID)
	if err != nil {
		respondStoreError(context, err, "fetch author")
		return
	}

	now := time.Now()
	newThread := &models.Thread{
		ID:             uuid.New(),
		Title:          msg.Title,
		Content:        msg.Content,
		AuthorID:       msg.AuthorID,
		AuthorUsername: author.Username,
		CategoryID:     msg.CategoryID,
		Tags:           msg.Tags,
		Votes:          []models.Vote{},
		Replies:        []*models.Reply{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := a.store.SaveThread(ctx, newThread); err != nil {
		context.Respond(utils.NewDatabaseError("save thread", err))
		return
	}

	if err := a.store.UpdateCategoryThreadCount(ctx, msg.CategoryID, 1); err != nil {
		log.Printf("ThreadActor: Failed to bump thread count for category %s: %v", msg.CategoryID, err)
	}

	a.metrics.AddOperationLatency("create_thread", time.Since(startTime))
	context.Respond(newThread)
}

func (a *ThreadActor) handleGetThread(context actor.Context, msg *GetThreadMsg) {
	ctx := stdctx.Background()

	thread, err := a.store.LoadThread(ctx, msg.ThreadID)
	if err != nil {
		respondStoreError(context, err, "load thread")
		return
	}

	// Reads count as views; the counter is bumped in place so the
	// aggregate itself is not rewritten.
	if err := a.store.IncrementThreadViews(ctx, msg.ThreadID); err != nil {
		log.Printf("ThreadActor: Failed to increment views for thread %s: %v", msg.ThreadID, err)
	} else {
		thread.Views++
	}

	context.Respond(thread)
}

func (a *ThreadActor) handleEditThread(context actor.Context, msg *EditThreadMsg) {
	ctx := stdctx.Background()

	thread, err := a.store.LoadThread(ctx, msg.ThreadID)
	if err != nil {
		respondStoreError(context, err, "load thread")
		return
	}

	if thread.AuthorID != msg.AuthorID {
		context.Respond(utils.NewAppError(utils.ErrForbidden, "Not authorized to edit thread", nil))
		return
	}

	if msg.Title != "" {
		thread.Title = msg.Title
	}
	if msg.Content != "" {
		thread.Content = msg.Content
	}
	thread.IsEdited = true
	thread.UpdatedAt = time.Now()

	if err := a.store.SaveThread(ctx, thread); err != nil {
		context.Respond(utils.NewDatabaseError("save thread", err))
		return
	}

	context.Respond(thread)
}

func (a *ThreadActor) handlePinThread(context actor.Context, msg *PinThreadMsg) {
	ctx := stdctx.Background()

	thread, err := a.store.LoadThread(ctx, msg.ThreadID)
	if err != nil {
		respondStoreError(context, err, "load thread")
		return
	}

	thread.IsPinned = msg.Pinned

	if err := a.store.SaveThread(ctx, thread); err != nil {
		context.Respond(utils.NewDatabaseError("save thread", err))
		return
	}

	context.Respond(thread)
}

func (a *ThreadActor) handleDeleteThread(context actor.Context, msg *DeleteThreadMsg) {
	ctx := stdctx.Background()

	thread, err := a.store.LoadThread(ctx, msg.ThreadID)
	if err != nil {
		respondStoreError(context, err, "load thread")
		return
	}

	if thread.AuthorID != msg.UserID {
		context.Respond(utils.NewAppError(utils.ErrForbidden, "Not authorized to delete thread", nil))
		return
	}

	// Deleting the aggregate cascades to the whole reply tree.
	if err := a.store.DeleteThread(ctx, msg.ThreadID); err != nil {
		respondStoreError(context, err, "delete thread")
		return
	}

	if err := a.store.UpdateCategoryThreadCount(ctx, thread.CategoryID, -1); err != nil {
		log.Printf("ThreadActor: Failed to decrement thread count for category %s: %v", thread.CategoryID, err)
	}

	context.Respond(&ThreadDeletedMsg{ThreadID: msg.ThreadID})
}

func (a *ThreadActor) handleCreateReply(context actor.Context, msg *CreateReplyMsg) {
	startTime := time.Now()
	ctx := stdctx.Background()

	thread, err := a.store.LoadThread(ctx, msg.ThreadID)
	if err != nil {
		respondStoreError(context, err, "load thread")
		return
	}

	now := time.Now()
	newReply := &models.Reply{
		ID:        uuid.New(),
		AuthorID:  msg.AuthorID,
		Content:   msg.Content,
		CreatedAt: now,
		UpdatedAt: now,
		Votes:     []models.Vote{},
		Children:  []*models.Reply{},
	}

	if msg.ParentID == nil {
		thread.Replies = append(thread.Replies, newReply)
	} else {
		parent := models.LocateReply(thread.Replies, *msg.ParentID)
		if parent == nil {
			context.Respond(utils.NewReplyNotFoundError(msg.ParentID.String()))
			return
		}
		parent.Children = append(parent.Children, newReply)
	}

	if err := a.store.SaveThread(ctx, thread); err != nil {
		context.Respond(utils.NewDatabaseError("save thread", err))
		return
	}

	a.metrics.AddOperationLatency("create_reply", time.Since(startTime))
	context.Respond(newReply)
}

// handleCastVote runs the vote sequence: load the aggregate, resolve the
// target node, apply the ledger mutation, recompute the author's reputation
// for thread-level votes, persist the aggregate. A failure anywhere discards
// the in-memory mutation; nothing partial is ever persisted afterward.
func (a *ThreadActor) handleCastVote(context actor.Context, msg *CastVoteMsg) {
	startTime := time.Now()

	if !msg.Type.IsValid() {
		context.Respond(utils.NewAppError(utils.ErrInvalidInput, "Vote type must be \"up\" or \"down\"", nil))
		return
	}

	ctx := stdctx.Background()

	// Load the aggregate snapshot.
	thread, err := a.store.LoadThread(ctx, msg.ThreadID)
	if err != nil {
		respondStoreError(context, err, "load thread")
		return
	}

	// Resolve the target node: the thread itself, or a reply anywhere in
	// the tree.
	var target *models.Reply
	if msg.ReplyID != nil {
		target = models.LocateReply(thread.Replies, *msg.ReplyID)
		if target == nil {
			context.Respond(utils.NewReplyNotFoundError(msg.ReplyID.String()))
			return
		}
	}

	// Apply the ledger mutation to the target's vote set.
	var userVote *models.VoteType
	if target != nil {
		target.Votes, userVote = models.ApplyVote(target.Votes, msg.UserID, msg.Type)
	} else {
		thread.Votes, userVote = models.ApplyVote(thread.Votes, msg.UserID, msg.Type)
	}

	// Thread-level votes drive the author's reputation, recomputed from the
	// full vote set. Reply-level votes never touch it.
	if target == nil {
		reputation := thread.AuthorReputation()
		if err := a.store.SetUserReputation(ctx, thread.AuthorID, reputation); err != nil {
			respondStoreError(context, err, "set user reputation")
			return
		}
		if a.userSupervisor != nil {
			context.Send(a.userSupervisor, &ReputationChangedMsg{
				UserID:     thread.AuthorID,
				Reputation: reputation,
			})
		}
	}

	// Persist the mutated aggregate whole.
	if err := a.store.SaveThread(ctx, thread); err != nil {
		context.Respond(utils.NewDatabaseError("persist thread", err))
		return
	}

	netScore := thread.NetScore()
	if target != nil {
		netScore = target.NetScore()
	}

	result := &VoteResult{
		ThreadID: msg.ThreadID,
		ReplyID:  msg.ReplyID,
		NetScore: netScore,
		UserVote: userVote,
	}

	a.publishTally(result)
	a.metrics.AddOperationLatency("cast_vote", time.Since(startTime))
	context.Respond(result)
}

// publishTally pushes the new tally to websocket watchers of the thread.
func (a *ThreadActor) publishTally(result *VoteResult) {
	if a.hub == nil {
		return
	}
	payload, err := json.Marshal(result)
	if err != nil {
		log.Printf("ThreadActor: Failed to marshal tally update: %v", err)
		return
	}
	a.hub.PublishTally(result.ThreadID, payload)
}

func (a *ThreadActor) handleGetCategoryThreads(context actor.Context, msg *GetCategoryThreadsMsg) {
	ctx := stdctx.Background()

	threads, err := a.store.GetCategoryThreads(ctx, msg.CategoryID)
	if err != nil {
		respondStoreError(context, err, "fetch category threads")
		return
	}
	context.Respond(threads)
}

func (a *ThreadActor) handleGetRecentThreads(context actor.Context, msg *GetRecentThreadsMsg) {
	ctx := stdctx.Background()

	threads, err := a.store.GetRecentThreads(ctx, msg.Limit)
	if err != nil {
		respondStoreError(context, err, "fetch recent threads")
		return
	}
	context.Respond(threads)
}
