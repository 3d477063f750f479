package main

import (
	"log"
	"log/slog"
	"os"

	"github.com/vi-li/pixel-art/api"
	"github.com/vi-li/pixel-art/room"
	"github.com/vi-li/pixel-art/util"
	"github.com/vi-li/pixel-art/ws"
)

func main() {
	util.InitValidator()

	config, err := util.LoadConfig()

	if err != nil {
		log.Fatal(err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	registry := room.NewRegistry(config.RoomTimeout, room.NewTimerScheduler(), logger)
	defer registry.Stop()

	manager := ws.NewManager(config, registry, logger)

	server := api.NewServer(config, registry, manager)

	logger.Info("starting server", "port", config.Port, "board_width", config.BoardWidth, "room_timeout", config.RoomTimeout)

	log.Fatal(server.Start())
}
