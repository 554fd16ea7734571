package actors

import (
	"context"
	"testing"
	"time"

	"heron-marsh/internal/api"
	"heron-marsh/internal/database"
	"heron-marsh/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
)

func spawnUserSupervisor(store *database.MemoryStore) (*actor.ActorSystem, *actor.PID) {
	system := actor.NewActorSystem()
	props := actor.PropsFromProducer(func() actor.Actor {
		return NewUserSupervisor(store)
	})
	return system, system.Root.Spawn(props)
}

func TestRegisterAndLogin(t *testing.T) {
	store := database.NewMemoryStore()
	system, pid := spawnUserSupervisor(store)

	registerMsg := &RegisterUserMsg{
		Username: "marshdweller",
		Email:    "marsh@example.com",
		Password: "secret123",
	}

	future := system.Root.RequestFuture(pid, registerMsg, 5*time.Second)
	result, err := future.Result()
	assert.NoError(t, err)

	state := result.(*UserState)
	assert.Equal(t, "marshdweller", state.Username)
	assert.Equal(t, 0, state.Reputation, "new users start with zero reputation")

	// The stored password is a bcrypt hash, never the plaintext.
	user, err := store.GetUser(context.Background(), state.ID)
	assert.NoError(t, err)
	assert.NotEqual(t, "secret123", user.HashedPassword)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte("secret123")))

	// Login with the right password succeeds.
	future = system.Root.RequestFuture(pid, &LoginMsg{
		Email:    "marsh@example.com",
		Password: "secret123",
	}, 5*time.Second)
	result, err = future.Result()
	assert.NoError(t, err)

	login := result.(*api.LoginResponse)
	assert.True(t, login.Success)
	assert.Equal(t, state.ID.String(), login.UserID)

	// Wrong password fails without leaking which part was wrong.
	future = system.Root.RequestFuture(pid, &LoginMsg{
		Email:    "marsh@example.com",
		Password: "wrong",
	}, 5*time.Second)
	result, err = future.Result()
	assert.NoError(t, err)

	login = result.(*api.LoginResponse)
	assert.False(t, login.Success)
	assert.Equal(t, "Invalid credentials", login.Error)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	store := database.NewMemoryStore()
	system, pid := spawnUserSupervisor(store)

	msg := &RegisterUserMsg{
		Username: "first",
		Email:    "dup@example.com",
		Password: "secret123",
	}
	future := system.Root.RequestFuture(pid, msg, 5*time.Second)
	_, err := future.Result()
	assert.NoError(t, err)

	future = system.Root.RequestFuture(pid, &RegisterUserMsg{
		Username: "second",
		Email:    "dup@example.com",
		Password: "other456",
	}, 5*time.Second)
	result, err := future.Result()
	assert.NoError(t, err)

	appErr, ok := result.(*utils.AppError)
	assert.True(t, ok)
	assert.Equal(t, utils.ErrUserAlreadyExists, appErr.Code)
}

func TestGetUserProfile(t *testing.T) {
	store := database.NewMemoryStore()
	system, pid := spawnUserSupervisor(store)

	future := system.Root.RequestFuture(pid, &RegisterUserMsg{
		Username: "lurker",
		Email:    "lurker@example.com",
		Password: "secret123",
	}, 5*time.Second)
	result, err := future.Result()
	assert.NoError(t, err)
	registered := result.(*UserState)

	future = system.Root.RequestFuture(pid, &GetUserProfileMsg{UserID: registered.ID}, 5*time.Second)
	result, err = future.Result()
	assert.NoError(t, err)

	profile := result.(*UserState)
	assert.Equal(t, "lurker", profile.Username)
	assert.Equal(t, "lurker@example.com", profile.Email)

	// Unknown users come back as an error, not an empty profile.
	future = system.Root.RequestFuture(pid, &GetUserProfileMsg{UserID: uuid.New()}, 5*time.Second)
	result, err = future.Result()
	assert.NoError(t, err)
	appErr, ok := result.(*utils.AppError)
	assert.True(t, ok)
	assert.Equal(t, utils.ErrUserNotFound, appErr.Code)
}
