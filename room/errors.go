package room

import "errors"

var (
	ErrRoomAlreadyExists = errors.New("room already exists")
	ErrRoomNotFound      = errors.New("room not found")
	ErrInvalidRoomName   = errors.New("invalid room name")
	ErrOutOfBounds       = errors.New("pixel coordinates out of bounds")
)
