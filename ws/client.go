package ws

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var (
	pongWait     = 10 * time.Second
	pingInterval = (pongWait * 9) / 10
)

// egressBuffer bounds how far a slow reader may fall behind before the
// manager starts dropping board updates for it (a later full-board update
// makes up for any dropped one).
const egressBuffer = 32

type Client struct {
	ID         string
	Username   string
	connection *websocket.Conn
	manager    *Manager
	egress     chan Event
	err        chan error

	// currentRoom is the room this session is bound to, or "" when unbound.
	// Guarded by the manager's mutex.
	currentRoom string
}

func NewClient(conn *websocket.Conn, manager *Manager, username string) *Client {
	return &Client{
		ID:         uuid.NewString(),
		Username:   username,
		connection: conn,
		manager:    manager,
		egress:     make(chan Event, egressBuffer),
		// buffered so a pump erroring after teardown never blocks
		err: make(chan error, 2),
	}
}

// CurrentRoom returns the room this session is bound to, or "" when unbound.
func (c *Client) CurrentRoom() string {
	c.manager.RLock()
	defer c.manager.RUnlock()

	return c.currentRoom
}

// Reads incoming events from the client's websocket connection and routes
// them to the manager's handlers, one at a time.
func (c *Client) readMessages(ctx context.Context) {
	c.connection.SetReadLimit(1024)

	if err := c.connection.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.handleError(err)
		return
	}

	c.connection.SetPongHandler(c.pongHandler)

	for {
		select {
		case <-ctx.Done():
			return
		default:
			_, payload, err := c.connection.ReadMessage()

			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
					c.manager.logger.Warn("unexpected socket closure", "client", c.ID, "error", err)
				}
				c.handleError(err)
				return
			}

			var evt Event

			if err := json.Unmarshal(payload, &evt); err != nil {
				c.handleError(err)
				return
			}

			if err := c.manager.routeEvent(evt, c); err != nil {
				c.manager.logger.Warn("event rejected", "client", c.ID, "event", evt.Type, "error", err)

				errEvent, err := NewErrorEvent(err.Error())

				if err != nil {
					c.handleError(err)
					return
				}

				c.PushToEgress(errEvent)
			}
		}
	}
}

// Writes events pushed to the client's egress channel and keeps the
// connection alive with pings.
func (c *Client) writeMessages(ctx context.Context) {
	ticker := time.NewTicker(pingInterval)

	defer func() {
		ticker.Stop()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-c.egress:
			if !ok {
				c.handleError(errors.New("client egress channel unexpectedly closed"))
				return
			}

			data, err := json.Marshal(event)

			if err != nil {
				c.handleError(err)
				return
			}

			if err := c.connection.WriteMessage(websocket.TextMessage, data); err != nil {
				c.handleError(err)
				return
			}
		case <-ticker.C:
			if err := c.connection.WriteMessage(websocket.PingMessage, []byte("")); err != nil {
				c.handleError(err)
				return
			}
		}
	}
}

// Sets a new read deadline when a pong is received for a ping message.
func (c *Client) pongHandler(pongMsg string) error {
	return c.connection.SetReadDeadline(time.Now().Add(pongWait))
}

// Push error to the client error channel. The connection handler waits on
// this channel and tears the client down when anything arrives.
func (c *Client) handleError(e error) {
	c.err <- e
}

func (c *Client) Err() chan error {
	return c.err
}

// Creates an event and pushes it to the client's egress.
func (c *Client) PushEventToEgress(evtType string, payload any) error {
	evt, err := NewEvent(evtType, payload)
	if err != nil {
		return err
	}
	c.PushToEgress(evt)
	return nil
}

// Pushes an event to the client's egress to be delivered over the websocket
// connection. Drops the event if the client's buffer is full.
func (c *Client) PushToEgress(evt Event) {
	select {
	case c.egress <- evt:
	default:
		c.manager.logger.Warn("egress full, dropping event", "client", c.ID, "event", evt.Type)
	}
}
