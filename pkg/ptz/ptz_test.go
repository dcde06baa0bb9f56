package ptz

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/camctl/camctl/pkg/cgi"
	"github.com/stretchr/testify/require"
)

type reply struct {
	status int
	body   string
}

// fakeCamera answers by request URI, unknown URIs get 404
type fakeCamera struct {
	mu     sync.Mutex
	routes map[string]reply
	calls  []string
}

func (f *fakeCamera) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.calls = append(f.calls, r.Method+" "+r.RequestURI)
	rep, ok := f.routes[r.RequestURI]
	f.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}
	if rep.status != 0 {
		w.WriteHeader(rep.status)
	}
	_, _ = w.Write([]byte(rep.body))
}

func (f *fakeCamera) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeCamera) Reset() {
	f.mu.Lock()
	f.calls = nil
	f.mu.Unlock()
}

func newCamera(t *testing.T, routes map[string]reply) (*Camera, *fakeCamera) {
	fake := &fakeCamera{routes: routes}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	client := NewClient(cgi.NewClient(nil))
	return client.Camera(srv.Listener.Addr().String(), nil), fake
}

func TestCommandPath(t *testing.T) {
	tests := []struct {
		cmd  string
		args []int
		path string
	}{
		{"home", []int{5, 5}, "/cgi-bin/ptzctrl.cgi?ptzcmd&home"},
		{"ptzstop", nil, "/cgi-bin/ptzctrl.cgi?ptzcmd&ptzstop"},
		{"poscall", []int{3, 9}, "/cgi-bin/ptzctrl.cgi?ptzcmd&poscall&3"},
		{"left", []int{5, 4}, "/cgi-bin/ptzctrl.cgi?ptzcmd&left&5&4"},
		{"left", []int{5, 4, 3}, "/cgi-bin/ptzctrl.cgi?ptzcmd&left&5&4"},
		{"zoomin", []int{3}, "/cgi-bin/ptzctrl.cgi?ptzcmd&zoomin&3"},
	}
	for _, test := range tests {
		t.Run(test.cmd, func(t *testing.T) {
			require.Equal(t, test.path, CommandPath(test.cmd, test.args...))
		})
	}
}

func TestZoomToPath(t *testing.T) {
	require.Equal(t, "/cgi-bin/ptzctrl.cgi?ptzcmd&zoomto&5&0000", ZoomToPath(-5, 5))
	require.Equal(t, "/cgi-bin/ptzctrl.cgi?ptzcmd&zoomto&5&4000", ZoomToPath(99999, 5))
	require.Equal(t, "/cgi-bin/ptzctrl.cgi?ptzcmd&zoomto&7&2000", ZoomToPath(8192, 7))
	require.Equal(t, "/cgi-bin/ptzctrl.cgi?ptzcmd&zoomto&1&000a", ZoomToPath(10, 1))
}

func TestMove(t *testing.T) {
	cam, fake := newCamera(t, map[string]reply{
		"/cgi-bin/ptzctrl.cgi?ptzcmd&left&10&10":    {body: "ok"},
		"/cgi-bin/ptzctrl.cgi?ptzcmd&zoomto&5&4000": {body: "ok"},
		"/cgi-bin/ptzctrl.cgi?ptzcmd&home":          {body: "HTTP/1.1 401 Unauthorized"},
		"/cgi-bin/ptzctrl.cgi?ptzcmd&poscall&95":    {body: "ok"},
		"/cgi-bin/ptzctrl.cgi?ptzcmd&focusin&2":     {body: "ok"},
		"/cgi-bin/ptzctrl.cgi?ptzcmd&ptzreset":      {body: "ok"},
		"/cgi-bin/ptzctrl.cgi?ptzcmd&posset&4":      {body: "ok"},
		"/cgi-bin/ptzctrl.cgi?ptzcmd&zoomstop":      {body: "ok"},
		"/cgi-bin/ptzctrl.cgi?ptzcmd&focusstop":     {body: "ok"},
		"/cgi-bin/ptzctrl.cgi?ptzcmd&zoomout&1":     {body: "ok"},
		"/cgi-bin/ptzctrl.cgi?ptzcmd&right&1&1":     {body: "ok"},
		"/cgi-bin/ptzctrl.cgi?ptzcmd&poscall&1":     {body: "ok"},
		"/cgi-bin/ptzctrl.cgi?ptzcmd&poscall&2":     {body: "zoompos=401\nfirmware=V2.401\n"},
	})

	require.NoError(t, cam.PTZ("left", 10, 10))
	require.NoError(t, cam.ZoomTo(99999, 5))
	require.NoError(t, cam.OSD("menu"))
	require.NoError(t, cam.OSD("right"))
	require.NoError(t, cam.Focus("focusin", 2))
	require.NoError(t, cam.Focus("focusstop"))
	require.NoError(t, cam.Zoom("zoomout", 1))
	require.NoError(t, cam.Zoom("zoomstop"))
	require.NoError(t, cam.PTZReset())
	require.NoError(t, cam.PresetSet(4))
	require.NoError(t, cam.PresetCall(1))

	// status digits in a normal reply are not an auth failure
	require.NoError(t, cam.PresetCall(2))

	// 200 with auth failure in the body
	require.ErrorIs(t, cam.PTZ("home"), ErrUnauthorized)

	require.ErrorIs(t, cam.PTZ("up", 1, 1), ErrUnsupported)
	require.ErrorIs(t, cam.PTZ("left&reboot"), ErrBadCommand)
	require.ErrorIs(t, cam.OSD("jump"), ErrBadCommand)

	require.Contains(t, fake.Calls(), "GET /cgi-bin/ptzctrl.cgi?ptzcmd&zoomto&5&4000")
}

func TestSnapshot(t *testing.T) {
	jpeg := append([]byte{0xFF, 0xD8, 0xFF, 0xE0}, bytes.Repeat([]byte{0x01}, 496)...)
	html := "<html><body>Not Found</body></html>" + strings.Repeat(" ", 464)

	t.Run("binary", func(t *testing.T) {
		cam, _ := newCamera(t, map[string]reply{
			"/cgi-bin/snapshot.cgi": {body: string(jpeg)},
		})
		snap, err := cam.Snapshot()
		require.NoError(t, err)
		require.Equal(t, jpeg, snap.Data)
		require.Equal(t, "image/jpeg", snap.ContentType)
	})

	t.Run("html", func(t *testing.T) {
		cam, _ := newCamera(t, map[string]reply{
			"/cgi-bin/snapshot.cgi": {body: html},
			"/snapshot.jpg":         {body: html},
		})
		_, err := cam.Snapshot()
		require.ErrorIs(t, err, ErrHTMLResponse)
	})

	t.Run("html unauthorized", func(t *testing.T) {
		cam, _ := newCamera(t, map[string]reply{
			"/cgi-bin/snapshot.cgi": {body: "<HTML><title>401 Unauthorized</title></HTML>"},
		})
		_, err := cam.Snapshot()
		require.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("fallback", func(t *testing.T) {
		cam, fake := newCamera(t, map[string]reply{
			"/snapshot.jpg": {body: string(jpeg)},
		})
		snap, err := cam.Snapshot()
		require.NoError(t, err)
		require.Equal(t, jpeg, snap.Data)
		require.Equal(t, []string{"GET /cgi-bin/snapshot.cgi", "GET /snapshot.jpg"}, fake.Calls())
	})
}

func TestConnect(t *testing.T) {
	t.Run("without device info", func(t *testing.T) {
		cam, _ := newCamera(t, map[string]reply{
			"/cgi-bin/param.cgi?get_image_conf":    {body: "brightness=7\nsaturation=4\n"},
			"/cgi-bin/param.cgi?get_exposure_conf": {body: "mode=auto\n"},
			"/cgi-bin/param.cgi?get_focus_conf":    {body: "focusmode=auto\n"},
		})

		status, err := cam.Connect()
		require.NoError(t, err)
		require.Equal(t, Info{Name: "unknown", Model: "unknown", Version: "unknown", Serial: "unknown"}, status.Info)
		require.Equal(t, cgi.Config{
			"brightness": 7, "saturation": 4, "mode": "auto", "focusmode": "auto",
		}, status.Config)
	})

	t.Run("partial", func(t *testing.T) {
		cam, _ := newCamera(t, map[string]reply{
			"/cgi-bin/param.cgi?get_device_conf": {body: "devname=Studio\ndevtype=PT30X\nversioninfo=SOC v6.3.34\nserial_num=123\n"},
			"/cgi-bin/param.cgi?get_image_conf":  {status: http.StatusInternalServerError},
		})

		status, err := cam.Connect()
		require.NoError(t, err)
		require.Equal(t, Info{Name: "Studio", Model: "PT30X", Version: "SOC v6.3.34", Serial: "123"}, status.Info)
	})

	t.Run("all failed", func(t *testing.T) {
		cam, _ := newCamera(t, map[string]reply{})

		_, err := cam.Connect()
		require.ErrorIs(t, err, ErrUnsupported)
		require.Contains(t, err.Error(), "get_device_conf")
	})
}

func TestGetGroup(t *testing.T) {
	cam, _ := newCamera(t, map[string]reply{
		"/cgi-bin/param.cgi?get_network_conf": {body: "ipaddr=192.168.1.10\nport=80\n"},
		"/cgi-bin/param.cgi?get_server_conf":  {status: http.StatusInternalServerError},
		"/cgi-bin/param.cgi?get_user_conf":    {body: "user=admin\nport=8080\n"},
		"/cgi-bin/param.cgi?get_trans_conf":   {body: "rtmp=1\n"},
	})

	config, err := cam.Get(GroupNetwork)
	require.NoError(t, err)
	require.Equal(t, cgi.Config{"ipaddr": "192.168.1.10", "port": 8080, "user": "admin", "rtmp": 1}, config)

	_, err = cam.Get("sound")
	require.ErrorIs(t, err, ErrUnknownGroup)
}

func TestSetGroup(t *testing.T) {
	cam, fake := newCamera(t, map[string]reply{
		"/cgi-bin/param.cgi?post_image_value&brightness&9":  {body: "ok"},
		"/cgi-bin/param.cgi?post_image_value&contrast&5":    {body: "ok"},
		"/cgi-bin/param.cgi?set_overlay&title&Main%20Stage": {body: "ok"},
	})

	require.NoError(t, cam.Set(GroupImage, map[string]any{"contrast": 5, "brightness": 9}))
	require.Equal(t, []string{
		"GET /cgi-bin/param.cgi?post_image_value&brightness&9",
		"GET /cgi-bin/param.cgi?post_image_value&contrast&5",
	}, fake.Calls())

	require.NoError(t, cam.Set(GroupOverlay, map[string]any{"title": "Main Stage"}))

	// stops on first failure
	fake.Reset()
	err := cam.Set(GroupImage, map[string]any{"aaa": 1, "brightness": 9})
	require.ErrorIs(t, err, ErrUnsupported)
	require.Len(t, fake.Calls(), 1)
}

func TestAutoTracking(t *testing.T) {
	t.Run("G3", func(t *testing.T) {
		cam, fake := newCamera(t, map[string]reply{
			"/cgi-bin/param.cgi?set_overlay&autotracking&on": {body: "ok"},
		})
		require.NoError(t, cam.AutoTracking(true))
		require.Len(t, fake.Calls(), 1)
	})

	t.Run("G2 fallback", func(t *testing.T) {
		cam, fake := newCamera(t, map[string]reply{
			"/cgi-bin/param.cgi?post_image_value&autotracking&3": {body: "ok"},
		})
		require.NoError(t, cam.AutoTracking(false))
		require.Equal(t, []string{
			"GET /cgi-bin/param.cgi?set_overlay&autotracking&off",
			"GET /cgi-bin/param.cgi?post_image_value&autotracking&3",
		}, fake.Calls())
	})

	t.Run("both failed", func(t *testing.T) {
		cam, _ := newCamera(t, map[string]reply{})
		err := cam.AutoTracking(true)
		require.ErrorIs(t, err, ErrUnsupported)
		require.Contains(t, err.Error(), "set_overlay")
	})
}

func TestReboot(t *testing.T) {
	cam, fake := newCamera(t, map[string]reply{
		"/cgi-bin/param.cgi?post_reboot": {body: "ok"},
	})
	require.NoError(t, cam.Reboot())
	require.Equal(t, []string{"POST /cgi-bin/param.cgi?post_reboot"}, fake.Calls())
}
