package engine

import (
	"heron-marsh/internal/database"
	"heron-marsh/internal/engine/actors"
	"heron-marsh/internal/utils"
	"heron-marsh/internal/websocket"

	"github.com/asynkron/protoactor-go/actor"
)

// Engine coordinates communication between actors. It spawns one actor per
// entity family; every thread mutation funnels through the single thread
// actor's mailbox.
type Engine struct {
	threadActor    *actor.PID
	categoryActor  *actor.PID
	userSupervisor *actor.PID
}

func NewEngine(system *actor.ActorSystem, store database.Store, metrics *utils.MetricsCollector, hub *websocket.Hub) *Engine {
	context := system.Root

	userProps := actor.PropsFromProducer(func() actor.Actor {
		return actors.NewUserSupervisor(store)
	})
	userPID := context.Spawn(userProps)

	threadProps := actor.PropsFromProducer(func() actor.Actor {
		return actors.NewThreadActor(store, metrics, userPID, hub)
	})
	threadPID := context.Spawn(threadProps)

	categoryProps := actor.PropsFromProducer(func() actor.Actor {
		return actors.NewCategoryActor(metrics, store)
	})
	categoryPID := context.Spawn(categoryProps)

	return &Engine{
		threadActor:    threadPID,
		categoryActor:  categoryPID,
		userSupervisor: userPID,
	}
}

// GetThreadActor returns the PID of the thread actor
func (e *Engine) GetThreadActor() *actor.PID {
	return e.threadActor
}

// GetCategoryActor returns the PID of the category actor
func (e *Engine) GetCategoryActor() *actor.PID {
	return e.categoryActor
}

// GetUserSupervisor returns the PID of the user supervisor
func (e *Engine) GetUserSupervisor() *actor.PID {
	return e.userSupervisor
}
