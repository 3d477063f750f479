package ws

import "encoding/json"

type Event struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type EventHandler func(evt Event, c *Client) error

// Client-to-server events.
const (
	EventCreateRoom    = "createRoom"
	EventJoinRoom      = "joinRoom"
	EventPixelUpdate   = "pixelUpdateFromClient"
	EventRequestUpdate = "requestUpdate"
)

// Server-to-client events.
const (
	EventCreateRoomSuccess = "createRoomSuccess"
	EventCreateRoomError   = "createRoomError"
	EventJoinRoomError     = "joinRoomError"
	EventNewUserJoin       = "newUserJoin"
	EventBoardUpdate       = "boardUpdateFromServer"
	EventBootToHome        = "bootToHome"
	EventError             = "error"
)

type PayloadRoomName struct {
	RoomName string `json:"roomName"`
}

type PayloadPixelUpdate struct {
	RoomName string `json:"roomName"`
	X        int    `json:"x"`
	Y        int    `json:"y"`
	HexRGB   string `json:"hexRGB"`
}

type PayloadCanvas struct {
	Board [][]string `json:"board"`
}

// PayloadBoardUpdate wraps the full grid; board events carry the whole canvas
// rather than a delta, so every one is self-consistent on its own.
type PayloadBoardUpdate struct {
	CanvasRGB PayloadCanvas `json:"canvasRGB"`
}

type PayloadError struct {
	Message string `json:"message"`
}

func NewEvent(evtType string, payload any) (Event, error) {
	b, err := json.Marshal(payload)

	if err != nil {
		return Event{}, err
	}

	return Event{
		Type:    evtType,
		Payload: b,
	}, nil
}

func NewErrorEvent(message string) (Event, error) {
	return NewEvent(EventError, PayloadError{Message: message})
}

func NewBoardUpdateEvent(board [][]string) (Event, error) {
	return NewEvent(EventBoardUpdate, PayloadBoardUpdate{
		CanvasRGB: PayloadCanvas{Board: board},
	})
}
