package actors

import (
	"log"
	"sync"
	"time"

	stdctx "context"

	"heron-marsh/internal/api"
	"heron-marsh/internal/database"
	"heron-marsh/internal/models"
	"heron-marsh/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// UserSupervisor manages all user actors
type UserSupervisor struct {
	userActors map[uuid.UUID]*actor.PID
	emailToID  map[string]uuid.UUID
	mu         sync.RWMutex
	store      database.Store
}

func NewUserSupervisor(store database.Store) actor.Actor {
	return &UserSupervisor{
		userActors: make(map[uuid.UUID]*actor.PID),
		emailToID:  make(map[string]uuid.UUID),
		store:      store,
	}
}

// Message types for user operations
type (
	RegisterUserMsg struct {
		Username string
		Email    string
		Password string
	}

	UpdateProfileMsg struct {
		UserID      uuid.UUID
		NewUsername string
		NewEmail    string
	}

	// ReputationChangedMsg carries the author's recomputed reputation after
	// a thread-level vote. The store is already updated when this arrives;
	// the actor only refreshes its cached state.
	ReputationChangedMsg struct {
		UserID     uuid.UUID
		Reputation int
	}

	GetUserProfileMsg struct {
		UserID uuid.UUID
	}

	LoginMsg struct {
		Email    string
		Password string
	}

	ConnectUserMsg struct {
		UserID uuid.UUID
	}

	DisconnectUserMsg struct {
		UserID uuid.UUID
	}
)

// UserState represents the internal state
type UserState struct {
	ID             uuid.UUID `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	Reputation     int       `json:"reputation"`
	IsConnected    bool      `json:"isConnected"`
	LastActive     time.Time `json:"lastActive"`
	HashedPassword string    `json:"-"`
}

func (s *UserSupervisor) Receive(context actor.Context) {
	switch msg := context.Message().(type) {
	case *RegisterUserMsg:
		s.mu.Lock()
		defer s.mu.Unlock()

		// Check if email exists in the store first
		ctx := stdctx.Background()
		existingUser, _ := s.store.GetUserByEmail(ctx, msg.Email)
		if existingUser != nil {
			log.Printf("UserSupervisor: Email already registered: %s", msg.Email)
			context.Respond(utils.NewAppError(utils.ErrUserAlreadyExists, "Email already registered", nil))
			return
		}

		// Create new user ID and actor
		userID := uuid.New()
		props := actor.PropsFromProducer(func() actor.Actor {
			return NewUserActor(userID, msg.Username, msg.Email, s.store)
		})

		pid := context.Spawn(props)
		s.userActors[userID] = pid
		s.emailToID[msg.Email] = userID

		future := context.RequestFuture(pid, msg, 5*time.Second)
		result, err := future.Result()
		if err != nil {
			log.Printf("UserSupervisor: Failed to create user: %v", err)
			context.Respond(utils.NewAppError(utils.ErrActorTimeout, "User creation failed", err))
			return
		}
		context.Respond(result)

	case *LoginMsg:
		log.Printf("UserSupervisor: Processing login request for email: %s", msg.Email)

		ctx := stdctx.Background()
		user, err := s.store.GetUserByEmail(ctx, msg.Email)
		if err != nil {
			context.Respond(&api.LoginResponse{
				Success: false,
				Error:   "Invalid credentials",
			})
			return
		}

		pid, err := s.getOrCreateUserActor(context, user.ID)
		if err != nil {
			context.Respond(&api.LoginResponse{
				Success: false,
				Error:   "Login failed",
			})
			return
		}

		future := context.RequestFuture(pid, msg, 5*time.Second)
		result, err := future.Result()
		if err != nil {
			log.Printf("UserSupervisor: Login request to user actor failed: %v", err)
			context.Respond(&api.LoginResponse{
				Success: false,
				Error:   "Login failed",
			})
			return
		}
		context.Respond(result)

	case *GetUserProfileMsg:
		pid, err := s.getOrCreateUserActor(context, msg.UserID)
		if err != nil {
			context.Respond(utils.NewUserNotFoundError(msg.UserID.String()))
			return
		}

		future := context.RequestFuture(pid, msg, 5*time.Second)
		result, err := future.Result()
		if err != nil {
			context.Respond(utils.NewActorTimeoutError("user"))
			return
		}
		context.Respond(result)

	case *ReputationChangedMsg:
		s.mu.RLock()
		pid, exists := s.userActors[msg.UserID]
		s.mu.RUnlock()

		// No live actor means no cached state to refresh; the store already
		// holds the new value.
		if !exists {
			return
		}
		context.Send(pid, msg)

	case *ConnectUserMsg, *DisconnectUserMsg:
		var userID uuid.UUID
		switch m := msg.(type) {
		case *ConnectUserMsg:
			userID = m.UserID
		case *DisconnectUserMsg:
			userID = m.UserID
		}

		pid, err := s.getOrCreateUserActor(context, userID)
		if err != nil {
			context.Respond(utils.NewUserNotFoundError(userID.String()))
			return
		}
		context.Forward(pid)
	}
}

func (s *UserSupervisor) getOrCreateUserActor(context actor.Context, userID uuid.UUID) (*actor.PID, error) {
	s.mu.RLock()
	pid, exists := s.userActors[userID]
	s.mu.RUnlock()

	if exists {
		return pid, nil
	}

	ctx := stdctx.Background()
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	props := actor.PropsFromProducer(func() actor.Actor {
		return NewUserActor(user.ID, user.Username, user.Email, s.store)
	})

	pid = context.Spawn(props)

	s.mu.Lock()
	s.userActors[user.ID] = pid
	s.emailToID[user.Email] = user.ID
	s.mu.Unlock()

	return pid, nil
}

type UserActor struct {
	id    uuid.UUID
	state *UserState
	store database.Store
}

func NewUserActor(id uuid.UUID, username, email string, store database.Store) *UserActor {
	return &UserActor{
		id: id,
		state: &UserState{
			ID:         id,
			Username:   username,
			Email:      email,
			LastActive: time.Now(),
		},
		store: store,
	}
}

func hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), 14)
	return string(bytes), err
}

func (a *UserActor) Receive(context actor.Context) {
	switch msg := context.Message().(type) {
	case *RegisterUserMsg:
		hashedPassword, err := hashPassword(msg.Password)
		if err != nil {
			context.Respond(utils.NewAppError(utils.ErrInvalidInput, "Failed to hash password", err))
			return
		}

		a.state.Username = msg.Username
		a.state.Email = msg.Email
		a.state.HashedPassword = hashedPassword
		a.state.Reputation = 0
		a.state.IsConnected = true

		user := &models.User{
			ID:             a.state.ID,
			Username:       a.state.Username,
			Email:          a.state.Email,
			HashedPassword: hashedPassword,
			Reputation:     0,
			CreatedAt:      time.Now(),
			LastActive:     time.Now(),
			IsConnected:    true,
		}

		ctx := stdctx.Background()
		if err := a.store.SaveUser(ctx, user); err != nil {
			log.Printf("UserActor: Failed to save user: %v", err)
			context.Respond(utils.NewDatabaseError("save user", err))
			return
		}

		context.Respond(&UserState{
			ID:         a.state.ID,
			Username:   a.state.Username,
			Email:      a.state.Email,
			Reputation: a.state.Reputation,
		})

	case *UpdateProfileMsg:
		if a.state.ID != msg.UserID {
			context.Respond(false)
			return
		}
		a.state.Username = msg.NewUsername
		a.state.Email = msg.NewEmail
		context.Respond(true)

	case *ReputationChangedMsg:
		if a.state.ID == msg.UserID {
			a.state.Reputation = msg.Reputation
		}

	case *GetUserProfileMsg:
		ctx := stdctx.Background()
		user, err := a.store.GetUser(ctx, msg.UserID)
		if err != nil {
			if utils.IsErrorCode(err, utils.ErrUserNotFound) {
				context.Respond(utils.NewUserNotFoundError(msg.UserID.String()))
				return
			}
			log.Printf("UserActor: Error fetching user: %v", err)
			context.Respond(utils.NewDatabaseError("fetch user", err))
			return
		}

		state := &UserState{
			ID:             user.ID,
			Username:       user.Username,
			Email:          user.Email,
			Reputation:     user.Reputation,
			IsConnected:    user.IsConnected,
			LastActive:     user.LastActive,
			HashedPassword: user.HashedPassword,
		}

		a.state = state
		context.Respond(state)

	case *LoginMsg:
		ctx := stdctx.Background()
		user, err := a.store.GetUserByEmail(ctx, msg.Email)
		if err != nil {
			log.Printf("UserActor: Login failed, user lookup error: %v", err)
			context.Respond(&api.LoginResponse{
				Success: false,
				Error:   "Invalid credentials",
			})
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(msg.Password)); err != nil {
			context.Respond(&api.LoginResponse{
				Success: false,
				Error:   "Invalid credentials",
			})
			return
		}

		if err := a.store.UpdateUserActivity(ctx, user.ID, true); err != nil {
			log.Printf("UserActor: Failed to update user activity: %v", err)
		}

		a.state = &UserState{
			ID:             user.ID,
			Username:       user.Username,
			Email:          user.Email,
			Reputation:     user.Reputation,
			IsConnected:    true,
			LastActive:     time.Now(),
			HashedPassword: user.HashedPassword,
		}

		log.Printf("UserActor: Login successful for user: %s", user.Username)

		// The HTTP layer attaches the JWT; the actor only reports success
		// and the user's identity.
		context.Respond(&api.LoginResponse{
			Success: true,
			UserID:  user.ID.String(),
		})

	case *ConnectUserMsg:
		ctx := stdctx.Background()
		if err := a.store.UpdateUserActivity(ctx, a.state.ID, true); err != nil {
			log.Printf("UserActor: Failed to mark user connected: %v", err)
		}
		a.state.IsConnected = true
		a.state.LastActive = time.Now()
		context.Respond(true)

	case *DisconnectUserMsg:
		ctx := stdctx.Background()
		if err := a.store.UpdateUserActivity(ctx, a.state.ID, false); err != nil {
			log.Printf("UserActor: Failed to mark user disconnected: %v", err)
		}
		a.state.IsConnected = false
		context.Respond(true)
	}
}
