package handler

import (
	"github.com/campus-chat/chat-service/internal/core/domain"
	"github.com/campus-chat/chat-service/internal/realtime"
)

type loginRequest struct {
	UserID   string `json:"userId"   validate:"required,max=128"`
	Name     string `json:"name"     validate:"omitempty,max=200"`
	UserType string `json:"userType" validate:"omitempty,oneof=student shopkeeper students shopkeepers"`
	Email    string `json:"email"    validate:"omitempty,email"`
}

// loginResponse is the stored user with the session token alongside.
type loginResponse struct {
	*domain.User
	Token string `json:"token,omitempty"`
}

type markReadRequest struct {
	Sender    string `json:"sender"    validate:"required"`
	Recipient string `json:"recipient" validate:"required"`
}

type markReadResponse struct {
	Message  string `json:"message"`
	Modified int64  `json:"modified"`
}

type presenceResponse struct {
	ShopkeeperOnline bool             `json:"shopkeeperOnline"`
	Online           []realtime.Entry `json:"online"`
}

type errorResponse struct {
	Error string `json:"error"`
}
