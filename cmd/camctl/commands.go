package main

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/camctl/camctl/internal/camera"
	"github.com/camctl/camctl/pkg/cgi"
	"github.com/camctl/camctl/pkg/ptz"
	"github.com/camctl/camctl/pkg/visca"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	snapshotFile string
	zoomSpeed    int
	viscaPort    int
)

var connectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Read device info and image settings",
	Run: func(cmd *cobra.Command, args []string) {
		res := run(&camera.Command{Cmd: "connect"})
		if jsonOutput {
			return
		}

		status := res.Data.(*ptz.Status)
		fmt.Printf("Name:    %s\nModel:   %s\nVersion: %s\nSerial:  %s\n\n",
			status.Info.Name, status.Info.Model, status.Info.Version, status.Info.Serial)
		printConfig(status.Config)
	},
}

var getCmd = &cobra.Command{
	Use:       "get <group>",
	Short:     "Read a settings group: " + strings.Join(groupNames(), ", "),
	Args:      cobra.ExactArgs(1),
	ValidArgs: groupNames(),
	Run: func(cmd *cobra.Command, args []string) {
		printResult(run(&camera.Command{Cmd: "get_" + args[0]}))
	},
}

var setCmd = &cobra.Command{
	Use:   "set <group> key=value...",
	Short: "Change settings, one request per key",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		values, err := parseValues(args[1:])
		if err != nil {
			return err
		}
		printResult(run(&camera.Command{Cmd: "set_" + args[0], Args: rawArgs(values)}))
		return nil
	},
}

var ptzCmd = &cobra.Command{
	Use:   "ptz <action> [pan speed] [tilt speed]",
	Short: "Pan and tilt: up, down, left, right, leftup, rightdown..., ptzstop, home",
	Args:  cobra.RangeArgs(1, 3),
	RunE:  moveRunE("ptz"),
}

var zoomCmd = &cobra.Command{
	Use:   "zoom <zoomin|zoomout|zoomstop> [speed]",
	Short: "Zoom with speed",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  moveRunE("zoom"),
}

var focusCmd = &cobra.Command{
	Use:   "focus <focusin|focusout|focusstop> [speed]",
	Short: "Manual focus with speed",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  moveRunE("focus"),
}

var zoomToCmd = &cobra.Command{
	Use:   "zoom-to <position>",
	Short: "Zoom to an absolute position 0..16384",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		position, err := strconv.Atoi(args[0])
		if err != nil {
			return err
		}
		printResult(run(&camera.Command{
			Cmd:  "zoom_to",
			Args: rawArgs(map[string]int{"position": position, "speed": zoomSpeed}),
		}))
		return nil
	},
}

var osdCmd = &cobra.Command{
	Use:       "osd <menu|up|down|left|right|enter>",
	Short:     "Navigate the on-screen menu",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"menu", "up", "down", "left", "right", "enter"},
	Run: func(cmd *cobra.Command, args []string) {
		printResult(run(&camera.Command{Cmd: "osd", Args: rawArgs(map[string]string{"key": args[0]})}))
	},
}

var presetCmd = &cobra.Command{
	Use:       "preset <call|set> <number>",
	Short:     "Recall or store a preset position",
	Args:      cobra.ExactArgs(2),
	ValidArgs: []string{"call", "set"},
	RunE: func(cmd *cobra.Command, args []string) error {
		if args[0] != "call" && args[0] != "set" {
			return fmt.Errorf("unknown preset action: %s", args[0])
		}
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return err
		}
		printResult(run(&camera.Command{Cmd: "preset_" + args[0], Args: rawArgs(map[string]int{"preset": n})}))
		return nil
	},
}

var resetCmd = &cobra.Command{
	Use:   "ptz-reset",
	Short: "Recalibrate pan and tilt",
	Run: func(cmd *cobra.Command, args []string) {
		printResult(run(&camera.Command{Cmd: "ptz_reset"}))
	},
}

var autotrackCmd = &cobra.Command{
	Use:       "autotrack <on|off>",
	Short:     "Switch subject auto tracking",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"on", "off"},
	RunE: func(cmd *cobra.Command, args []string) error {
		on, err := parseSwitch(args[0])
		if err != nil {
			return err
		}
		printResult(run(&camera.Command{Cmd: "auto_tracking", Args: rawArgs(map[string]bool{"enabled": on})}))
		return nil
	},
}

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Save a JPEG snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		res := run(&camera.Command{Cmd: "snapshot"})
		if jsonOutput {
			return nil
		}

		snap := res.Data.(*ptz.Snapshot)
		if err := os.WriteFile(snapshotFile, snap.Data, 0644); err != nil {
			return err
		}
		fmt.Printf("Saved %d bytes (%s) to %s\n", len(snap.Data), snap.ContentType, snapshotFile)
		return nil
	},
}

var rebootCmd = &cobra.Command{
	Use:   "reboot",
	Short: "Reboot the camera",
	Run: func(cmd *cobra.Command, args []string) {
		printResult(run(&camera.Command{Cmd: "reboot"}))
	},
}

var viscaCmd = &cobra.Command{
	Use:   "visca <hex bytes...>",
	Short: `Send a raw VISCA over IP command, e.g. "81 01 06 04 FF"`,
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		res := run(&camera.Command{
			Cmd:  "visca",
			Args: rawArgs(map[string]any{"payload": strings.Join(args, " "), "port": viscaPort}),
		})
		if !jsonOutput {
			fmt.Println(res.Data.(map[string]string)["reply"])
		}
	},
}

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Find VISCA cameras with a broadcast inquiry",
	Run: func(cmd *cobra.Command, args []string) {
		s := newService()
		if window := viper.GetDuration("window"); window > 0 {
			s.Discoverer.Window = window
		}

		res := finish(s.Execute(&camera.Command{Cmd: "discover"}))
		if jsonOutput {
			return
		}

		cameras := res.Data.(map[string]any)["cameras"].([]visca.Camera)
		if len(cameras) == 0 {
			fmt.Println("No cameras found")
			return
		}
		for _, cam := range cameras {
			fmt.Printf("%s\tport %d\t%s\n", cam.IP, cam.Port, cam.Reply)
		}
	},
}

func init() {
	snapshotCmd.Flags().StringVarP(&snapshotFile, "output", "o", "snapshot.jpg", "output file")
	zoomToCmd.Flags().IntVar(&zoomSpeed, "speed", camera.DefaultSpeed, "zoom speed")
	viscaCmd.Flags().IntVar(&viscaPort, "port", 0, "UDP port (default from visca.port or 1259)")
	discoverCmd.Flags().Duration("window", visca.DefaultWindow, "time to wait for replies")
	_ = viper.BindPFlag("window", discoverCmd.Flags().Lookup("window"))

	rootCmd.AddCommand(
		connectCmd, getCmd, setCmd,
		ptzCmd, zoomCmd, focusCmd, zoomToCmd, osdCmd, presetCmd, resetCmd, autotrackCmd,
		snapshotCmd, rebootCmd, viscaCmd, discoverCmd,
	)
}

func moveRunE(name string) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		speed, err := parseSpeeds(args[1:])
		if err != nil {
			return err
		}
		printResult(run(&camera.Command{
			Cmd:  name,
			Args: rawArgs(map[string]any{"action": args[0], "speed": speed}),
		}))
		return nil
	}
}

func groupNames() []string {
	names := make([]string, 0, len(ptz.Groups))
	for name := range ptz.Groups {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// parseValues - "brightness=7" "title=Main Stage" to typed values
func parseValues(args []string) (cgi.Config, error) {
	for _, arg := range args {
		if i := strings.IndexByte(arg, '='); i <= 0 {
			return nil, fmt.Errorf("expected key=value: %q", arg)
		}
	}
	return cgi.ParseConfig([]byte(strings.Join(args, "\n"))), nil
}

func parseSpeeds(args []string) ([]int, error) {
	speeds := make([]int, 0, len(args))
	for _, arg := range args {
		n, err := strconv.Atoi(arg)
		if err != nil {
			return nil, fmt.Errorf("bad speed %q: %w", arg, err)
		}
		speeds = append(speeds, n)
	}
	return speeds, nil
}

func parseSwitch(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on", "true", "1":
		return true, nil
	case "off", "false", "0":
		return false, nil
	}
	return false, fmt.Errorf("expected on or off: %q", s)
}
