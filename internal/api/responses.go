package api

import "heron-marsh/internal/models"

// LoginResponse is the payload returned by the login endpoint.
type LoginResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token,omitempty"`
	Error   string `json:"error,omitempty"`
	UserID  string `json:"userId"`
}

// VoteResponse is the payload returned after a vote is applied. UserVote is
// null when the user's vote was toggled off.
type VoteResponse struct {
	ThreadID string           `json:"threadId"`
	ReplyID  string           `json:"replyId,omitempty"`
	NetScore int              `json:"netScore"`
	UserVote *models.VoteType `json:"userVote"`
}

// StatusResponse reports the outcome of a simple mutation.
type StatusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}
