package ws

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"golang.org/x/exp/slices"

	"github.com/vi-li/pixel-art/room"
	"github.com/vi-li/pixel-art/tokens"
	"github.com/vi-li/pixel-art/util"
)

type ClientList map[string]*Client

type wsQuery struct {
	Token string `form:"token" binding:"required"`
}

// Manager owns every live session and the room membership used for broadcast
// fan-out. All membership state shares one RWMutex; room and canvas state
// lives in the registry.
type Manager struct {
	sync.RWMutex
	clients  ClientList
	rooms    map[string][]*Client
	handlers map[string]EventHandler
	registry *room.Registry
	config   *util.Config
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

func NewManager(config *util.Config, registry *room.Registry, logger *slog.Logger) *Manager {
	m := &Manager{
		clients:  make(ClientList),
		rooms:    make(map[string][]*Client),
		handlers: make(map[string]EventHandler),
		registry: registry,
		config:   config,
		logger:   logger,
	}

	m.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     m.checkOrigin,
	}

	m.setupEventHandlers()

	return m
}

func (m *Manager) setupEventHandlers() {
	m.handlers[EventCreateRoom] = CreateRoomHandler
	m.handlers[EventJoinRoom] = JoinRoomHandler
	m.handlers[EventPixelUpdate] = PixelUpdateHandler
	m.handlers[EventRequestUpdate] = RequestUpdateHandler
}

func (m *Manager) routeEvent(evt Event, c *Client) error {
	if handler, ok := m.handlers[evt.Type]; ok {
		if err := handler(evt, c); err != nil {
			return err
		}

		return nil
	}

	return errors.New("there is no such event type")
}

func (m *Manager) addClient(client *Client) {
	m.Lock()
	defer m.Unlock()

	m.clients[client.ID] = client
}

func (m *Manager) removeClient(client *Client) {
	m.Lock()
	defer m.Unlock()

	m.leaveLocked(client)

	if _, ok := m.clients[client.ID]; ok {
		client.connection.Close()
		delete(m.clients, client.ID)
	}
}

// Join binds a session to a room for broadcast targeting. A session belongs
// to at most one room, so any previous membership is dropped first.
func (m *Manager) Join(client *Client, roomName string) {
	m.Lock()
	defer m.Unlock()

	m.leaveLocked(client)

	members := m.rooms[roomName]

	if !slices.Contains(members, client) {
		m.rooms[roomName] = append(members, client)
	}

	client.currentRoom = roomName
}

// LeaveAll unbinds a session from whatever room it occupies. Used on
// disconnect; the room and its canvas are left untouched.
func (m *Manager) LeaveAll(client *Client) {
	m.Lock()
	defer m.Unlock()

	m.leaveLocked(client)
}

func (m *Manager) leaveLocked(client *Client) {
	if client.currentRoom == "" {
		return
	}

	members := m.rooms[client.currentRoom]

	if i := slices.Index(members, client); i >= 0 {
		members = append(members[:i], members[i+1:]...)

		if len(members) == 0 {
			delete(m.rooms, client.currentRoom)
		} else {
			m.rooms[client.currentRoom] = members
		}
	}

	client.currentRoom = ""
}

// EmitToRoom delivers an event to every session currently a member of the
// room, the sender included. A room with no members is a silent no-op.
func (m *Manager) EmitToRoom(roomName string, evt Event) {
	m.RLock()
	members := slices.Clone(m.rooms[roomName])
	m.RUnlock()

	for _, client := range members {
		client.PushToEgress(evt)
	}
}

// RoomMembers returns the IDs of the sessions bound to a room.
func (m *Manager) RoomMembers(roomName string) []string {
	m.RLock()
	defer m.RUnlock()

	ids := make([]string, 0, len(m.rooms[roomName]))

	for _, client := range m.rooms[roomName] {
		ids = append(ids, client.ID)
	}

	return ids
}

// Websocket connection handler
func (m *Manager) ServeWS(c *gin.Context) {
	var query wsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.IndentedJSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "token not sent",
		})
		return
	}

	payload, err := tokens.ParseJWTToken(query.Token, []byte(m.config.JWTSecret))

	if err != nil {
		c.IndentedJSON(http.StatusUnauthorized, "unauthorized")
		return
	}

	conn, err := m.upgrader.Upgrade(c.Writer, c.Request, nil)

	if err != nil {
		m.logger.Error("error upgrading to websocket connection", "error", err)
		c.IndentedJSON(http.StatusInternalServerError, "something went wrong")
		return
	}

	client := NewClient(conn, m, payload.Username)

	m.addClient(client)

	m.logger.Info("client connected", "client", client.ID, "username", client.Username)

	ctx, cancel := context.WithCancel(c)

	defer func() {
		cancel()
		m.removeClient(client)
		err := client.connection.WriteMessage(websocket.CloseMessage, nil)

		if err != nil && !errors.Is(err, websocket.ErrCloseSent) {
			m.logger.Warn("error sending close message", "client", client.ID, "error", err)
		}
	}()

	go client.readMessages(ctx)
	go client.writeMessages(ctx)

	err = <-client.Err()

	m.logger.Info("client disconnected", "client", client.ID, "error", err)
}

func (m *Manager) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")

	switch origin {
	case "", m.config.ClientOrigin:
		return true
	default:
		return false
	}
}
