package camera

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/camctl/camctl/pkg/auth"
	"github.com/camctl/camctl/pkg/cgi"
	"github.com/camctl/camctl/pkg/creds"
	"github.com/camctl/camctl/pkg/ptz"
	"github.com/camctl/camctl/pkg/visca"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrUnknownCamera  = errors.New("unknown camera")
	ErrNoHost         = errors.New("camera host required")
	ErrBadArgs        = errors.New("bad command args")
)

var commandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "camctl_commands_total",
	Help: "Camera commands by name and outcome.",
}, []string{"cmd", "result"})

// Command - one call of the camera command API
type Command struct {
	ID       string          `json:"id,omitempty"`
	Cmd      string          `json:"cmd"`
	Camera   string          `json:"camera,omitempty"`
	Host     string          `json:"host,omitempty"`
	Username string          `json:"username,omitempty"`
	Password string          `json:"password,omitempty"`
	Args     json.RawMessage `json:"args,omitempty"`
}

// Result - every command answers with it, errors included
type Result struct {
	ID      string `json:"id"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// Config - named camera from the `camera.cameras` section
type Config struct {
	Host     string `yaml:"host" mapstructure:"host"`
	Username string `yaml:"username" mapstructure:"username"`
	Password string `yaml:"password" mapstructure:"password"`
}

type Service struct {
	PTZ        *ptz.Client
	Visca      *visca.Channel
	Discoverer *visca.Discoverer
	Cameras    map[string]Config
	Log        zerolog.Logger

	// ViscaPort for visca commands without a port, 0 means visca.DefaultPort
	ViscaPort int
}

func NewService() *Service {
	return &Service{
		PTZ:        ptz.NewClient(cgi.NewClient(auth.NewCache())),
		Visca:      visca.NewChannel(),
		Discoverer: visca.NewDiscoverer(),
		Cameras:    map[string]Config{},
		Log:        zerolog.Nop(),
	}
}

// AddCamera registers a named camera, its password is hidden in logs.
// Passwords from single commands are not registered.
func (s *Service) AddCamera(name string, config Config) {
	creds.AddSecret(config.Password)
	s.Cameras[name] = config
}

// Execute runs one command. It never panics and never returns nil.
func (s *Service) Execute(cmd *Command) (res *Result) {
	if cmd == nil {
		cmd = &Command{}
	}
	if cmd.ID == "" {
		cmd.ID = uuid.NewString()
	}

	start := time.Now()

	res = &Result{ID: cmd.ID}

	defer func() {
		if r := recover(); r != nil {
			s.Log.Error().Interface("panic", r).Str("cmd", cmd.Cmd).Msg("[camera] execute")
			res.Success = false
			res.Error = fmt.Sprintf("internal error: %v", r)
			res.Data = nil
		}

		label := cmd.Cmd
		if _, ok := commands[label]; !ok {
			label = "unknown"
		}
		result := "ok"
		if !res.Success {
			result = "error"
		}
		commandsTotal.WithLabelValues(label, result).Inc()

		s.Log.Debug().Str("id", cmd.ID).Str("cmd", cmd.Cmd).Str("host", cmd.Host).Bool("success", res.Success).
			Str("error", res.Error).Dur("duration", time.Since(start)).Msg("[camera] execute")
	}()

	data, err := s.execute(cmd)
	if err != nil {
		res.Error = err.Error()
		return
	}

	res.Success = true
	res.Data = data
	return
}

func (s *Service) execute(cmd *Command) (any, error) {
	handler, ok := commands[cmd.Cmd]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCommand, cmd.Cmd)
	}

	if handler.noHost {
		return handler.fn(s, nil, cmd)
	}

	cam, err := s.resolve(cmd)
	if err != nil {
		return nil, err
	}

	return handler.fn(s, cam, cmd)
}

// resolve picks host and credential: named camera first, request fields override
func (s *Service) resolve(cmd *Command) (*ptz.Camera, error) {
	var config Config

	if cmd.Camera != "" {
		var ok bool
		if config, ok = s.Cameras[cmd.Camera]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownCamera, cmd.Camera)
		}
	}

	if cmd.Host != "" {
		config.Host = cmd.Host
	}
	if cmd.Username != "" {
		config.Username = cmd.Username
	}
	if cmd.Password != "" {
		config.Password = cmd.Password
	}

	if config.Host == "" {
		return nil, ErrNoHost
	}

	// fill the host for logs and the result
	cmd.Host = config.Host

	var cred *auth.Credential
	if config.Username != "" || config.Password != "" {
		cred = &auth.Credential{Username: config.Username, Password: config.Password}
	}

	return s.PTZ.Camera(config.Host, cred), nil
}

// hostOnly strips the port, VISCA uses its own
func hostOnly(host string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		return h
	}
	return host
}
