// Package domain contains entities without logic, just meta-data.
package domain

import (
	"errors"

	"github.com/google/uuid"
)

const MaxUsernameLen = 36

var (
	ErrUsernameTooLong = errors.New("username too long")
	ErrUsernameEmpty   = errors.New("username empty")
	ErrRoomEmpty       = errors.New("room empty")
)

// Member is one connected participant. It belongs to exactly one room
// for as long as the underlying connection lives.
type Member struct {
	ID       MemberID `json:"id"`
	Username string   `json:"username"`
	Room     RoomName `json:"room"`
}

// NewMember is a tiny helper to avoid ad-hoc struct literals in adapters.
func NewMember(room RoomName, username string) (*Member, error) {
	if len(username) == 0 {
		return nil, ErrUsernameEmpty
	}
	if len(username) > MaxUsernameLen {
		return nil, ErrUsernameTooLong
	}
	if len(room) == 0 {
		return nil, ErrRoomEmpty
	}
	return &Member{ID: MemberID(uuid.NewString()), Username: username, Room: room}, nil
}
