package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID             uuid.UUID `json:"id" db:"id"`
	Username       string    `json:"username" db:"username"`
	Email          string    `json:"email" db:"email"`
	HashedPassword string    `json:"-" db:"password_hash"`
	Reputation     int       `json:"reputation" db:"reputation"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
	LastActive     time.Time `json:"lastActive" db:"last_active"`
	IsConnected    bool      `json:"isConnected" db:"is_connected"`
}
