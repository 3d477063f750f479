package util

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/samber/lo"
)

const (
	defaultPort         = "8080"
	defaultBoardWidth   = 15
	defaultRoomTimeout  = 1800000 * time.Millisecond
	defaultColor        = "#23272a"
	defaultPagesDir     = "./frontend"
	defaultClientOrigin = "http://localhost:8080"
)

type Config struct {
	Port         string        `validate:"required,number"`
	JWTSecret    string        `validate:"required"`
	ClientOrigin string        `validate:"required,url"`
	PagesDir     string        `validate:"required"`
	BoardWidth   int           `validate:"required,gt=0"`
	RoomTimeout  time.Duration `validate:"required,gt=0"`
	DefaultColor string        `validate:"required,hexcolor"`
}

func LoadConfig() (*Config, error) {
	godotenv.Load()

	config := &Config{
		Port:         envOr("PORT", defaultPort),
		JWTSecret:    os.Getenv("JWT_SECRET"),
		ClientOrigin: envOr("CLIENT_ORIGIN", defaultClientOrigin),
		PagesDir:     envOr("PAGES_DIR", defaultPagesDir),
		BoardWidth:   defaultBoardWidth,
		RoomTimeout:  defaultRoomTimeout,
		DefaultColor: envOr("DEFAULT_COLOR", defaultColor),
	}

	if v := os.Getenv("BOARD_WIDTH"); v != "" {
		width, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid BOARD_WIDTH %q: %w", v, err)
		}
		config.BoardWidth = width
	}

	if v := os.Getenv("ROOM_TIMEOUT_MS"); v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid ROOM_TIMEOUT_MS %q: %w", v, err)
		}
		config.RoomTimeout = time.Duration(ms) * time.Millisecond
	}

	if err := Validate.Struct(config); err != nil {
		var vErrs validator.ValidationErrors
		if errors.As(err, &vErrs) {
			msgs := lo.Map(vErrs, func(item validator.FieldError, index int) string {
				return item.Error()
			})
			return nil, fmt.Errorf("invalid configuration: %v", strings.Join(msgs, "; "))
		}
		return nil, err
	}

	return config, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
