package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/camctl/camctl/internal/api"
	"github.com/camctl/camctl/internal/api/ws"
	"github.com/camctl/camctl/internal/app"
	"github.com/camctl/camctl/internal/camera"
)

func main() {
	app.Init() // init config and logs

	api.Init() // init HTTP API server
	ws.Init()  // init WebSocket API

	camera.Init() // camera command API

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigs

	app.Logger.Info().Stringer("signal", sig).Msg("[app] exit")
}
