package ptz

const (
	ParamPath    = "/cgi-bin/param.cgi"
	PTZCtrlPath  = "/cgi-bin/ptzctrl.cgi"
	SnapshotPath = "/cgi-bin/snapshot.cgi"
)

// Group - one settings page of the camera web UI
type Group struct {
	Reads []string // param.cgi queries, merged in order
	Set   string   // param.cgi query prefix, followed by &key&value
}

const (
	GroupImage    = "image"
	GroupExposure = "exposure"
	GroupFocus    = "focus"
	GroupVideo    = "video"
	GroupAudio    = "audio"
	GroupNetwork  = "network"
	GroupOverlay  = "overlay"
	GroupIR       = "ir"
)

var Groups = map[string]Group{
	GroupImage:    {Reads: []string{"get_image_conf"}, Set: "post_image_value"},
	GroupExposure: {Reads: []string{"get_exposure_conf"}, Set: "post_image_value"},
	GroupFocus:    {Reads: []string{"get_focus_conf"}, Set: "post_image_value"},
	GroupVideo:    {Reads: []string{"get_media_video"}, Set: "post_video_value"},
	GroupAudio:    {Reads: []string{"get_audio_conf"}, Set: "post_audio_value"},
	GroupNetwork: {
		Reads: []string{"get_network_conf", "get_server_conf", "get_user_conf", "get_trans_conf"},
		Set:   "post_network_value",
	},
	GroupOverlay: {Reads: []string{"get_overlay_conf"}, Set: "set_overlay"},
	GroupIR:      {Reads: []string{"get_ir_conf"}, Set: "post_ir_value"},
}

const deviceRead = "get_device_conf"

// connectReads - device info is optional, some models answer 404
var connectReads = []string{deviceRead, "get_image_conf", "get_exposure_conf", "get_focus_conf"}

// SnapshotPaths in the order they are tried
var SnapshotPaths = []string{SnapshotPath, "/snapshot.jpg"}

// Endpoint - one firmware generation variant of a command
type Endpoint struct {
	Name string
	Path func(on bool) string
}

// AutoTrackingEndpoints - G3 overlay switch first, then G2 parameter with 2=on, 3=off
var AutoTrackingEndpoints = []Endpoint{
	{
		Name: "G3",
		Path: func(on bool) string {
			if on {
				return ParamPath + "?set_overlay&autotracking&on"
			}
			return ParamPath + "?set_overlay&autotracking&off"
		},
	},
	{
		Name: "G2",
		Path: func(on bool) string {
			if on {
				return ParamPath + "?post_image_value&autotracking&2"
			}
			return ParamPath + "?post_image_value&autotracking&3"
		},
	},
}

// OSD menu keys. The menu is toggled with reserved preset 95, Home confirms.
var osdKeys = map[string]string{
	"menu":  "poscall&95",
	"up":    "up&1&1",
	"down":  "down&1&1",
	"left":  "left&1&1",
	"right": "right&1&1",
	"enter": "home",
}
