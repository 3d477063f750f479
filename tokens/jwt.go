package tokens

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Payload identifies a connected user for the websocket handshake. The room
// and canvas layers never see it; it only gates the transport.
type Payload struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

func NewJWTToken(payload Payload, duration time.Duration, secret []byte) (string, error) {
	claims := jwt.MapClaims{
		"id":       payload.ID,
		"username": payload.Username,
		"exp":      time.Now().Add(duration).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return token.SignedString(secret)
}

func ParseJWTToken(tokenString string, secret []byte) (*Payload, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}

		return secret, nil
	})

	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)

	if !ok || !token.Valid {
		return nil, errors.New("invalid jwt token")
	}

	id, ok1 := claims["id"].(string)
	username, ok2 := claims["username"].(string)

	if !ok1 || !ok2 || id == "" || username == "" {
		return nil, errors.New("invalid token payload")
	}

	return &Payload{
		ID:       id,
		Username: username,
	}, nil
}
