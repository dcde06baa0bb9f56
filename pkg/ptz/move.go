package ptz

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

const (
	ZoomMin = 0
	ZoomMax = 16384
)

var ErrBadCommand = errors.New("bad movement command")

var noArgs = map[string]bool{
	"home": true, "ptzstop": true, "zoomstop": true, "focusstop": true, "ptzreset": true,
}

var presetCmds = map[string]bool{
	"poscall": true, "posset": true, "posdel": true,
}

var reCommand = regexp.MustCompile(`^[a-z_]+$`)

// CommandPath - ptzctrl.cgi path for command and up to two speed or position arguments:
// "home" takes none, presets take one, the rest one or two.
func CommandPath(cmd string, args ...int) string {
	path := PTZCtrlPath + "?ptzcmd&" + cmd

	switch {
	case noArgs[cmd]:
	case presetCmds[cmd]:
		if len(args) > 0 {
			path += "&" + strconv.Itoa(args[0])
		}
	default:
		for i, arg := range args {
			if i == 2 {
				break
			}
			path += "&" + strconv.Itoa(arg)
		}
	}

	return path
}

// ZoomToPath clamps position to [0, 16384] and sends it as 4 digit hex
func ZoomToPath(position, speed int) string {
	if position < ZoomMin {
		position = ZoomMin
	} else if position > ZoomMax {
		position = ZoomMax
	}
	return fmt.Sprintf("%s?ptzcmd&zoomto&%d&%04x", PTZCtrlPath, speed, position)
}

// PTZ - pan/tilt: up, down, left, right, leftup..., ptzstop, home, poscall, posset
func (c *Camera) PTZ(cmd string, args ...int) error {
	if !reCommand.MatchString(cmd) {
		return fmt.Errorf("%w: %q", ErrBadCommand, cmd)
	}
	return c.move(CommandPath(cmd, args...))
}

// Zoom - zoomin, zoomout with speed, zoomstop
func (c *Camera) Zoom(cmd string, speed ...int) error {
	return c.PTZ(cmd, speed...)
}

// Focus - focusin, focusout with speed, focusstop
func (c *Camera) Focus(cmd string, speed ...int) error {
	return c.PTZ(cmd, speed...)
}

func (c *Camera) ZoomTo(position, speed int) error {
	return c.move(ZoomToPath(position, speed))
}

func (c *Camera) PresetCall(n int) error {
	return c.move(CommandPath("poscall", n))
}

func (c *Camera) PresetSet(n int) error {
	return c.move(CommandPath("posset", n))
}

func (c *Camera) PTZReset() error {
	return c.move(CommandPath("ptzreset"))
}

// OSD navigates the on-screen menu: menu, up, down, left, right, enter
func (c *Camera) OSD(key string) error {
	cmd, ok := osdKeys[key]
	if !ok {
		return fmt.Errorf("%w: osd %q", ErrBadCommand, key)
	}
	return c.move(PTZCtrlPath + "?ptzcmd&" + cmd)
}

// AutoTracking switches subject tracking, G3 endpoint first then G2
func (c *Camera) AutoTracking(on bool) error {
	steps := make([]func() (string, error), 0, len(AutoTrackingEndpoints))
	for _, endpoint := range AutoTrackingEndpoints {
		endpoint := endpoint
		steps = append(steps, func() (string, error) {
			err := c.move(endpoint.Path(on))
			if err != nil {
				c.client.Log.Debug().Err(err).Str("host", c.Host).Str("api", endpoint.Name).Msg("[ptz] auto tracking")
			}
			return endpoint.Name, err
		})
	}

	name, err := firstOf(steps...)
	if err != nil {
		return err
	}

	c.client.Log.Debug().Str("host", c.Host).Str("api", name).Bool("on", on).Msg("[ptz] auto tracking")
	return nil
}

// move - some firmware answers 200 with an auth failure in the body
func (c *Camera) move(path string) error {
	res, err := c.get(path)
	if err != nil {
		return err
	}
	if isUnauthorizedBody(res.Body) {
		return fmt.Errorf("%w: %s", ErrUnauthorized, path)
	}
	return nil
}
