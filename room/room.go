package room

import "time"

// Room owns exactly one canvas. Membership is tracked by the transport layer,
// not here; a Room only exists while the registry holds it.
type Room struct {
	Name      string
	Canvas    *Canvas
	CreatedAt time.Time
}

func NewRoom(name string, width, height int, defaultColor string) *Room {
	return &Room{
		Name:      name,
		Canvas:    NewCanvas(width, height, defaultColor),
		CreatedAt: time.Now(),
	}
}
