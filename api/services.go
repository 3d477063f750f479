package api

import (
	"errors"
	"log"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vi-li/pixel-art/room"
	"github.com/vi-li/pixel-art/tokens"
)

const tokenDuration = 24 * time.Hour

type usernameRequest struct {
	Username string `json:"username" binding:"required"`
}

// Generates a token using the username passed as request body
func (s *Server) TokenGenerator(c *gin.Context) {
	var data usernameRequest

	if err := c.ShouldBindJSON(&data); err != nil {
		c.JSON(http.StatusUnprocessableEntity, errorResponse(err.Error()))
		return
	}

	payload := tokens.Payload{
		ID:       uuid.NewString(),
		Username: data.Username,
	}

	token, err := tokens.NewJWTToken(payload, tokenDuration, []byte(s.config.JWTSecret))

	if err != nil {
		log.Println(err)
		c.JSON(http.StatusInternalServerError, errorResponse(ErrorMessage500))
		return
	}

	c.JSON(http.StatusOK, successResponse("Auth data", gin.H{
		"id":       payload.ID,
		"username": payload.Username,
		"token":    token,
	}))
}

func (s *Server) GetTokenData(c *gin.Context) {
	payload, ok := GetPayload(c)

	if !ok {
		c.JSON(http.StatusInternalServerError, errorResponse(ErrorMessage500))
		log.Println(errors.New("value in auth_payload key of request context could not be casted to *tokens.Payload"))
		return
	}

	c.JSON(http.StatusOK, successResponse("success", payload))
}

// LandingPage serves the homepage where rooms are created and joined.
func (s *Server) LandingPage(c *gin.Context) {
	c.File(s.page("index.html"))
}

// RoomPage routes a bare path to the drawing page when it names a live room,
// and to the error page otherwise. The reserved landing literal always gets
// the homepage, never a room.
func (s *Server) RoomPage(c *gin.Context) {
	name := c.Param("room")

	if name == room.ReservedName {
		c.File(s.page("index.html"))
		return
	}

	if !s.registry.Exists(name) {
		c.File(s.page("error.html"))
		return
	}

	c.File(s.page("art.html"))
}

func (s *Server) page(name string) string {
	return filepath.Join(s.config.PagesDir, name)
}
