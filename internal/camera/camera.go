package camera

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/camctl/camctl/internal/api"
	"github.com/camctl/camctl/internal/api/ws"
	"github.com/camctl/camctl/internal/app"
	"github.com/camctl/camctl/pkg/ptz"
)

func Init() {
	var cfg struct {
		Camera struct {
			Timeout time.Duration     `yaml:"timeout"`
			Cameras map[string]Config `yaml:"cameras"`
		} `yaml:"camera"`
		Visca struct {
			Port            int           `yaml:"port"`
			Timeout         time.Duration `yaml:"timeout"`
			DiscoveryWindow time.Duration `yaml:"discovery_window"`
			Broadcast       string        `yaml:"broadcast"`
			DiscoveryPorts  []int         `yaml:"discovery_ports"`
		} `yaml:"visca"`
	}

	app.LoadConfig(&cfg)

	log := app.GetLogger("camera")

	service = NewService()
	service.Log = log
	service.PTZ.Log = app.GetLogger("ptz")
	service.PTZ.CGI.Log = app.GetLogger("cgi")
	service.PTZ.CGI.UserAgent = app.UserAgent
	service.Visca.Log = app.GetLogger("visca")
	service.Discoverer.Log = service.Visca.Log

	if cfg.Camera.Timeout > 0 {
		service.PTZ.CGI.Timeout = cfg.Camera.Timeout
	}
	if cfg.Visca.Port > 0 {
		service.ViscaPort = cfg.Visca.Port
	}
	if cfg.Visca.Timeout > 0 {
		service.Visca.Timeout = cfg.Visca.Timeout
	}
	if cfg.Visca.DiscoveryWindow > 0 {
		service.Discoverer.Window = cfg.Visca.DiscoveryWindow
	}
	if ip := net.ParseIP(cfg.Visca.Broadcast); ip != nil {
		service.Discoverer.Broadcast = ip
	}
	if len(cfg.Visca.DiscoveryPorts) > 0 {
		service.Discoverer.Ports = cfg.Visca.DiscoveryPorts
	}

	for name, config := range cfg.Camera.Cameras {
		service.AddCamera(name, config)
		log.Debug().Str("name", name).Str("host", config.Host).Msg("[camera] config")
	}

	api.HandleFunc("api/camera", apiCamera)
	api.HandleFunc("api/camera/snapshot", apiSnapshot)

	ws.HandleFunc("camera", wsCamera)
}

var service *Service

// Execute runs the command on the service configured by Init
func Execute(cmd *Command) *Result {
	return service.Execute(cmd)
}

func apiCamera(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		http.Error(w, "", http.StatusMethodNotAllowed)
		return
	}

	var cmd Command
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		api.ResponseJSON(w, &Result{Error: "bad request: " + err.Error()})
		return
	}

	api.ResponseJSON(w, Execute(&cmd))
}

// apiSnapshot - image bytes for <img src="/api/camera/snapshot?camera=studio">
func apiSnapshot(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	res := Execute(&Command{
		Cmd:      "snapshot",
		Camera:   query.Get("camera"),
		Host:     query.Get("host"),
		Username: query.Get("username"),
		Password: query.Get("password"),
	})
	if !res.Success {
		api.Error(w, errors.New(res.Error), http.StatusBadGateway)
		return
	}

	snap := res.Data.(*ptz.Snapshot)

	w.Header().Set("Cache-Control", "no-cache")
	api.Response(w, snap.Data, snap.ContentType)
}

func wsCamera(tr *ws.Transport, msg *ws.Message) error {
	var cmd Command
	if err := msg.Unmarshal(&cmd); err != nil {
		return err
	}

	tr.Write(&ws.Message{Type: "camera", Value: Execute(&cmd)})
	return nil
}
