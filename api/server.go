package api

import (
	"fmt"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/vi-li/pixel-art/room"
	"github.com/vi-li/pixel-art/util"
	"github.com/vi-li/pixel-art/ws"
)

type Server struct {
	config    *util.Config
	registry  *room.Registry
	wsManager *ws.Manager
	router    *gin.Engine
}

func NewServer(config *util.Config, registry *room.Registry, wsManager *ws.Manager) *Server {
	router := gin.Default()

	server := &Server{
		config:    config,
		registry:  registry,
		wsManager: wsManager,
		router:    router,
	}

	router.Any("/ws", server.wsManager.ServeWS)
	router.Static("/static", filepath.Join(config.PagesDir, "static"))
	router.POST("/auth/username", server.TokenGenerator)
	router.GET("/auth/verify", server.AuthMiddleware, server.GetTokenData)
	router.GET("/", server.LandingPage)
	router.GET("/:room", server.RoomPage)

	return server
}

func (s *Server) Start() error {
	return s.router.Run(fmt.Sprintf(":%v", s.config.Port))
}
