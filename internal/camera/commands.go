package camera

import (
	"encoding/json"
	"fmt"

	"github.com/camctl/camctl/pkg/ptz"
	"github.com/camctl/camctl/pkg/visca"
)

type handler struct {
	fn     func(s *Service, cam *ptz.Camera, cmd *Command) (any, error)
	noHost bool
}

var commands = map[string]handler{
	"connect": {fn: func(s *Service, cam *ptz.Camera, cmd *Command) (any, error) {
		return cam.Connect()
	}},

	"ptz":   {fn: moveHandler((*ptz.Camera).PTZ)},
	"zoom":  {fn: moveHandler((*ptz.Camera).Zoom)},
	"focus": {fn: moveHandler((*ptz.Camera).Focus)},

	"zoom_to": {fn: func(s *Service, cam *ptz.Camera, cmd *Command) (any, error) {
		args, err := decode[struct {
			Position *int `json:"position"`
			Speed    int  `json:"speed"`
		}](cmd.Args)
		if err != nil {
			return nil, err
		}
		if args.Position == nil {
			return nil, fmt.Errorf("%w: position", ErrBadArgs)
		}
		if args.Speed == 0 {
			args.Speed = DefaultSpeed
		}
		return nil, cam.ZoomTo(*args.Position, args.Speed)
	}},

	"osd": {fn: func(s *Service, cam *ptz.Camera, cmd *Command) (any, error) {
		args, err := decode[struct {
			Key string `json:"key"`
		}](cmd.Args)
		if err != nil {
			return nil, err
		}
		return nil, cam.OSD(args.Key)
	}},

	"ptz_reset": {fn: func(s *Service, cam *ptz.Camera, cmd *Command) (any, error) {
		return nil, cam.PTZReset()
	}},

	"preset_call": {fn: presetHandler((*ptz.Camera).PresetCall)},
	"preset_set":  {fn: presetHandler((*ptz.Camera).PresetSet)},

	"auto_tracking": {fn: func(s *Service, cam *ptz.Camera, cmd *Command) (any, error) {
		args, err := decode[struct {
			Enabled *bool `json:"enabled"`
		}](cmd.Args)
		if err != nil {
			return nil, err
		}
		if args.Enabled == nil {
			return nil, fmt.Errorf("%w: enabled", ErrBadArgs)
		}
		return map[string]bool{"enabled": *args.Enabled}, cam.AutoTracking(*args.Enabled)
	}},

	"snapshot": {fn: func(s *Service, cam *ptz.Camera, cmd *Command) (any, error) {
		return cam.Snapshot()
	}},

	"reboot": {fn: func(s *Service, cam *ptz.Camera, cmd *Command) (any, error) {
		return nil, cam.Reboot()
	}},

	"visca": {fn: func(s *Service, cam *ptz.Camera, cmd *Command) (any, error) {
		args, err := decode[struct {
			Payload string `json:"payload"`
			Port    int    `json:"port"`
		}](cmd.Args)
		if err != nil {
			return nil, err
		}
		if args.Port == 0 {
			args.Port = s.ViscaPort
		}
		reply, err := s.Visca.Send(hostOnly(cam.Host), args.Payload, args.Port)
		if err != nil {
			return nil, err
		}
		return map[string]string{"reply": visca.FormatHex(reply)}, nil
	}},

	"discover": {noHost: true, fn: func(s *Service, cam *ptz.Camera, cmd *Command) (any, error) {
		cameras, err := s.Discoverer.Discover()
		if err != nil {
			return nil, err
		}
		return map[string]any{"cameras": cameras}, nil
	}},
}

func init() {
	for group := range ptz.Groups {
		group := group

		commands["get_"+group] = handler{fn: func(s *Service, cam *ptz.Camera, cmd *Command) (any, error) {
			return cam.Get(group)
		}}

		commands["set_"+group] = handler{fn: func(s *Service, cam *ptz.Camera, cmd *Command) (any, error) {
			values, err := decode[map[string]any](cmd.Args)
			if err != nil {
				return nil, err
			}
			if len(values) == 0 {
				return nil, fmt.Errorf("%w: no values", ErrBadArgs)
			}
			return nil, cam.Set(group, values)
		}}
	}
}

// Commands - names of all known commands
func Commands() []string {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	return names
}

const DefaultSpeed = 5

type moveArgs struct {
	Action string `json:"action"`
	Speed  []int  `json:"speed,omitempty"`
}

func moveHandler(move func(*ptz.Camera, string, ...int) error) func(*Service, *ptz.Camera, *Command) (any, error) {
	return func(s *Service, cam *ptz.Camera, cmd *Command) (any, error) {
		args, err := decode[moveArgs](cmd.Args)
		if err != nil {
			return nil, err
		}
		if args.Action == "" {
			return nil, fmt.Errorf("%w: action", ErrBadArgs)
		}
		return nil, move(cam, args.Action, args.Speed...)
	}
}

func presetHandler(call func(*ptz.Camera, int) error) func(*Service, *ptz.Camera, *Command) (any, error) {
	return func(s *Service, cam *ptz.Camera, cmd *Command) (any, error) {
		args, err := decode[struct {
			Preset *int `json:"preset"`
		}](cmd.Args)
		if err != nil {
			return nil, err
		}
		if args.Preset == nil || *args.Preset < 0 {
			return nil, fmt.Errorf("%w: preset", ErrBadArgs)
		}
		return nil, call(cam, *args.Preset)
	}
}

func decode[T any](raw json.RawMessage) (v T, err error) {
	if len(raw) == 0 || string(raw) == "null" {
		return
	}
	if err = json.Unmarshal(raw, &v); err != nil {
		err = fmt.Errorf("%w: %w", ErrBadArgs, err)
	}
	return
}
