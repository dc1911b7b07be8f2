package model

import (
	"time"

	"github.com/google/uuid"
)

type AuthEventType string

const (
	EventRegistered  AuthEventType = "registered"
	EventLogin       AuthEventType = "login"
	EventLoginFailed AuthEventType = "login_failed"
	EventLogoff      AuthEventType = "logoff"
	EventUpdated     AuthEventType = "updated"
	EventDisabled    AuthEventType = "disabled"
	EventNonceReset  AuthEventType = "nonce_reset"
	EventDeleted     AuthEventType = "deleted"
)

// AuthEvent records a security-relevant state transition of an account.
type AuthEvent struct {
	ID        string        `gorm:"primaryKey;size:36" bson:"_id" json:"id"`
	Type      AuthEventType `gorm:"size:32;not null;index" bson:"type" json:"type"`
	Email     string        `gorm:"size:128;not null;index" bson:"email" json:"email"`
	Nonce     int64         `bson:"nonce" json:"nonce"`
	CreatedAt time.Time     `gorm:"index" bson:"created_at" json:"created_at"`
}

func NewAuthEvent(eventType AuthEventType, email string, nonce int64) AuthEvent {
	return AuthEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Email:     email,
		Nonce:     nonce,
		CreatedAt: time.Now().UTC(),
	}
}
