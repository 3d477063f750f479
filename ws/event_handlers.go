package ws

import (
	"encoding/json"
	"fmt"

	"github.com/vi-li/pixel-art/room"
)

// CreateRoomHandler registers a new room with a fresh canvas and starts its
// eviction timer. The failing request's own payload is echoed back on error
// so the client can retry or show a message.
func CreateRoomHandler(e Event, c *Client) error {
	var payload PayloadRoomName

	if err := json.Unmarshal(e.Payload, &payload); err != nil {
		return err
	}

	cfg := c.manager.config

	_, err := c.manager.registry.Create(payload.RoomName, cfg.BoardWidth, cfg.BoardWidth, cfg.DefaultColor)

	if err != nil {
		c.manager.logger.Warn("create room rejected", "room", payload.RoomName, "client", c.ID, "error", err)
		return c.PushEventToEgress(EventCreateRoomError, payload)
	}

	return c.PushEventToEgress(EventCreateRoomSuccess, payload)
}

// JoinRoomHandler binds the session to an existing room, tells the room about
// the arrival and hands the joiner the current canvas. Joining does not
// refresh the room's eviction timer; only drawing keeps a room alive.
func JoinRoomHandler(e Event, c *Client) error {
	var payload PayloadRoomName

	if err := json.Unmarshal(e.Payload, &payload); err != nil {
		return err
	}

	rm, err := c.manager.roomFor(payload.RoomName)

	if err != nil {
		c.manager.logger.Warn("join room rejected", "room", payload.RoomName, "client", c.ID, "error", err)
		return c.PushEventToEgress(EventJoinRoomError, payload)
	}

	c.manager.Join(c, payload.RoomName)

	evt, err := NewEvent(EventNewUserJoin, nil)

	if err != nil {
		return err
	}

	c.manager.EmitToRoom(payload.RoomName, evt)

	return c.PushEventToEgress(EventBoardUpdate, PayloadBoardUpdate{
		CanvasRGB: PayloadCanvas{Board: rm.Canvas.Snapshot()},
	})
}

// PixelUpdateHandler commits one cell write, refreshes the room's eviction
// timer and broadcasts the resulting board to the whole room, sender
// included. A session drawing into a room that no longer exists is told to
// return to the landing page; its room is simply gone.
func PixelUpdateHandler(e Event, c *Client) error {
	var payload PayloadPixelUpdate

	if err := json.Unmarshal(e.Payload, &payload); err != nil {
		return err
	}

	rm, err := c.manager.roomFor(payload.RoomName)

	if err != nil {
		c.manager.logger.Info("pixel update for dead room, booting client", "room", payload.RoomName, "client", c.ID)
		return c.PushEventToEgress(EventBootToHome, nil)
	}

	board, err := rm.Canvas.SetAndSnapshot(payload.X, payload.Y, payload.HexRGB)

	if err != nil {
		return fmt.Errorf("pixel update (%d,%d) rejected: %w", payload.X, payload.Y, err)
	}

	c.manager.registry.Refresh(payload.RoomName)

	evt, err := NewBoardUpdateEvent(board)

	if err != nil {
		return err
	}

	c.manager.EmitToRoom(payload.RoomName, evt)

	return nil
}

// RequestUpdateHandler sends the current canvas to the requesting session
// only. A request against a missing room is silently dropped; the client
// polls this opportunistically and an error would only confuse it.
func RequestUpdateHandler(e Event, c *Client) error {
	var payload PayloadRoomName

	if err := json.Unmarshal(e.Payload, &payload); err != nil {
		return err
	}

	rm, err := c.manager.roomFor(payload.RoomName)

	if err != nil {
		return nil
	}

	return c.PushEventToEgress(EventBoardUpdate, PayloadBoardUpdate{
		CanvasRGB: PayloadCanvas{Board: rm.Canvas.Snapshot()},
	})
}

// roomFor resolves a client-supplied name to a live room. Reserved or empty
// names can never resolve even if something managed to register them.
func (m *Manager) roomFor(name string) (*room.Room, error) {
	if err := room.ValidateName(name); err != nil {
		return nil, err
	}

	return m.registry.Get(name)
}
