package domain

import (
	"errors"
	"strings"
)

// RoomType 房型
type RoomType struct {
	ID          int64     `json:"id"`
	TypeName    string    `json:"typeName"`
	Description string    `json:"description"`
	CreatedAt   Timestamp `json:"createdAt"`
}

var (
	ErrRoomTypeNameRequired        = errors.New("room type name is required")
	ErrRoomTypeDescriptionRequired = errors.New("room type description is required")
)

func (t *RoomType) Validate() error {
	if strings.TrimSpace(t.TypeName) == "" {
		return ErrRoomTypeNameRequired
	}
	if strings.TrimSpace(t.Description) == "" {
		return ErrRoomTypeDescriptionRequired
	}
	return nil
}
