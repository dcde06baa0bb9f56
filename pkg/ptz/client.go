package ptz

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"

	"github.com/camctl/camctl/pkg/auth"
	"github.com/camctl/camctl/pkg/cgi"
	"github.com/rs/zerolog"
)

var (
	ErrUnauthorized = errors.New("camera requires valid credentials")
	ErrUnsupported  = errors.New("endpoint not supported by this camera")
	ErrHTMLResponse = errors.New("camera returned an HTML page")
	ErrUnknownGroup = errors.New("unknown settings group")
)

// Client - CGI command API of PTZ cameras (G2 and G3 firmware)
type Client struct {
	CGI *cgi.Client
	Log zerolog.Logger
}

func NewClient(c *cgi.Client) *Client {
	if c == nil {
		c = cgi.NewClient(nil)
	}
	return &Client{CGI: c, Log: zerolog.Nop()}
}

func (c *Client) Camera(host string, cred *auth.Credential) *Camera {
	return &Camera{client: c, Host: host, Credential: cred}
}

type Camera struct {
	Host       string
	Credential *auth.Credential

	client *Client
}

type Info struct {
	Name    string `json:"name"`
	Model   string `json:"model"`
	Version string `json:"version"`
	Serial  string `json:"serial"`
}

type Status struct {
	Info   Info       `json:"info"`
	Config cgi.Config `json:"config"`
}

// Connect reads device info and image, exposure, focus pages at once.
// It fails only when every read failed.
func (c *Camera) Connect() (*Status, error) {
	configs, err := c.readAll(connectReads)
	if err != nil {
		return nil, err
	}

	status := &Status{Config: cgi.Config{}}
	for _, config := range configs {
		status.Config.Merge(config)
	}

	status.Info = Info{
		Name:    orUnknown(status.Config.String("devname")),
		Model:   orUnknown(status.Config.String("devtype")),
		Version: orUnknown(status.Config.String("versioninfo")),
		Serial:  orUnknown(status.Config.String("serial_num")),
	}

	c.client.Log.Debug().Str("host", c.Host).Str("model", status.Info.Model).
		Int("params", len(status.Config)).Msg("[ptz] connect")

	return status, nil
}

// Get returns the merged settings of the group, the later read wins on the same key
func (c *Camera) Get(group string) (cgi.Config, error) {
	g, ok := Groups[group]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownGroup, group)
	}

	configs, err := c.readAll(g.Reads)
	if err != nil {
		return nil, err
	}

	merged := cgi.Config{}
	for _, config := range configs {
		merged.Merge(config)
	}
	return merged, nil
}

// Set writes values one by one, the camera rejects batched parameter lists
func (c *Camera) Set(group string, values map[string]any) error {
	g, ok := Groups[group]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownGroup, group)
	}

	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := url.PathEscape(fmt.Sprint(values[key]))
		path := ParamPath + "?" + g.Set + "&" + url.PathEscape(key) + "&" + value
		if _, err := c.get(path); err != nil {
			return err
		}
	}

	return nil
}

// Reboot - success means the camera accepted the request
func (c *Camera) Reboot() error {
	path := ParamPath + "?post_reboot"
	res, err := c.client.CGI.Post(c.Host, path, c.Credential)
	if err != nil {
		return err
	}
	return statusError(res, path)
}

// readAll runs reads concurrently. Failed reads are nil in the result,
// the error is returned only when all of them failed.
func (c *Camera) readAll(queries []string) ([]cgi.Config, error) {
	configs := make([]cgi.Config, len(queries))
	errs := make([]error, len(queries))

	var wg sync.WaitGroup
	for i, query := range queries {
		wg.Add(1)
		go func(i int, query string) {
			defer wg.Done()
			configs[i], errs[i] = c.read(query)
		}(i, query)
	}
	wg.Wait()

	var firstErr error
	var ok int
	for i, err := range errs {
		if err == nil {
			ok++
			continue
		}
		c.client.Log.Debug().Err(err).Str("host", c.Host).Str("query", queries[i]).Msg("[ptz] read")
		if firstErr == nil {
			firstErr = err
		}
	}

	if ok == 0 {
		return nil, firstErr
	}
	return configs, nil
}

func (c *Camera) read(query string) (cgi.Config, error) {
	res, err := c.get(ParamPath + "?" + query)
	if err != nil {
		return nil, err
	}
	return cgi.ParseConfig(res.Body), nil
}

func (c *Camera) get(path string) (*cgi.Response, error) {
	res, err := c.client.CGI.Get(c.Host, path, c.Credential)
	if err != nil {
		return nil, err
	}
	if err = statusError(res, path); err != nil {
		return nil, err
	}
	return res, nil
}

func statusError(res *cgi.Response, path string) error {
	switch {
	case res.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrUnsupported, path)
	case res.StatusCode == http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", ErrUnauthorized, path)
	case res.StatusCode >= 300:
		return &cgi.StatusError{StatusCode: res.StatusCode, Path: path}
	}
	return nil
}

// firstOf tries steps in order until one succeeds and returns the first error if none did
func firstOf[T any](steps ...func() (T, error)) (T, error) {
	var firstErr error
	for _, step := range steps {
		v, err := step()
		if err == nil {
			return v, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	var zero T
	if firstErr == nil {
		firstErr = ErrUnsupported
	}
	return zero, firstErr
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

func isHTML(b []byte) bool {
	s := strings.ToLower(string(b))
	return strings.Contains(s, "<html") || strings.Contains(s, "<!doctype html")
}

func isUnauthorizedBody(b []byte) bool {
	s := strings.ToLower(string(b))
	return strings.Contains(s, "unauthorized")
}
