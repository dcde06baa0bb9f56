package cgi

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/camctl/camctl/pkg/auth"
	"github.com/rs/zerolog"
)

const DefaultTimeout = 5 * time.Second

// AuthStore - per host memory of the last accepted challenge
type AuthStore interface {
	Get(host string) auth.Challenge
	Put(host string, ch auth.Challenge)
	Invalidate(host string)
}

type Request struct {
	Host       string // IP or hostname, optional port
	Path       string // path with raw query, "/cgi-bin/param.cgi?get_image_conf"
	Method     string
	Timeout    time.Duration
	Credential *auth.Credential
}

type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Client - camera HTTP client with Digest, Basic and vendor Authn negotiation
type Client struct {
	Store     AuthStore
	Timeout   time.Duration
	UserAgent string
	Log       zerolog.Logger

	transport http.RoundTripper
}

func NewClient(store AuthStore) *Client {
	if store == nil {
		store = auth.NewCache()
	}
	return &Client{
		Store:     store,
		Timeout:   DefaultTimeout,
		Log:       zerolog.Nop(),
		transport: http.DefaultTransport,
	}
}

func (c *Client) Get(host, path string, cred *auth.Credential) (*Response, error) {
	return c.Do(&Request{Host: host, Path: path, Method: http.MethodGet, Credential: cred})
}

func (c *Client) Post(host, path string, cred *auth.Credential) (*Response, error) {
	return c.Do(&Request{Host: host, Path: path, Method: http.MethodPost, Credential: cred})
}

// Do sends one logical request. A cached challenge is tried first; a 401 on it
// drops the cache entry and, for GET, runs one fresh negotiation. A POST
// answers a fresh challenge once but never renegotiates after a cached 401.
func (c *Client) Do(req *Request) (*Response, error) {
	res, err := c.do(req)

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	requestsTotal.WithLabelValues(method, requestResult(res, err)).Inc()

	return res, err
}

func (c *Client) do(req *Request) (*Response, error) {
	post := req.Method == http.MethodPost

	if req.Credential != nil {
		if ch := c.Store.Get(req.Host); ch != nil {
			res, err := c.send(req, ch)
			if err != nil {
				return nil, err
			}
			if res.StatusCode != http.StatusUnauthorized {
				return res, nil
			}

			c.Store.Invalidate(req.Host)
			negotiationsTotal.WithLabelValues(ch.Scheme().String(), "stale").Inc()
			c.Log.Debug().Str("host", req.Host).Stringer("scheme", ch.Scheme()).Msg("[cgi] stale auth")

			if post {
				return res, nil
			}
		}
	}

	res, err := c.send(req, nil)
	if err != nil {
		return nil, err
	}

	if res.StatusCode != http.StatusUnauthorized || req.Credential == nil {
		return res, nil
	}

	ch, err := auth.Parse(res.Header)
	if err != nil {
		if errors.Is(err, auth.ErrBadCookie) {
			c.Log.Warn().Err(err).Str("host", req.Host).Msg("[cgi] read auth cookie")
		}
		negotiationsTotal.WithLabelValues(auth.SchemeNone.String(), "unsupported").Inc()
		return nil, err
	}

	if res, err = c.send(req, ch); err != nil {
		return nil, err
	}

	if res.StatusCode == http.StatusUnauthorized {
		negotiationsTotal.WithLabelValues(ch.Scheme().String(), "rejected").Inc()
		return nil, fmt.Errorf("%w: %s (%s)", ErrAuthRejected, req.Host, ch.Scheme())
	}

	c.Store.Put(req.Host, ch)
	negotiationsTotal.WithLabelValues(ch.Scheme().String(), "ok").Inc()
	c.Log.Trace().Str("host", req.Host).Stringer("scheme", ch.Scheme()).Msg("[cgi] auth ok")

	return res, nil
}

func (c *Client) send(req *Request, ch auth.Challenge) (*Response, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	rawURL := req.Host + req.Path
	if !strings.Contains(req.Host, "://") {
		rawURL = "http://" + rawURL
	}

	r, err := http.NewRequest(method, rawURL, nil)
	if err != nil {
		return nil, err
	}

	if method == http.MethodPost {
		// param.cgi rejects POST without a length, Go sends "Content-Length: 0" for NoBody
		r.Body = http.NoBody
		r.ContentLength = 0
	}

	if c.UserAgent != "" {
		r.Header.Set("User-Agent", c.UserAgent)
	}

	if ch != nil && req.Credential != nil {
		for k, v := range auth.Header(method, r.URL.RequestURI(), *req.Credential, ch) {
			r.Header[k] = v
		}
	}

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = c.Timeout
	}

	// need to create new client each time to reset timeout
	client := http.Client{Timeout: timeout, Transport: c.transport}

	c.Log.Trace().Str("method", method).Str("url", rawURL).Msg("[cgi] request")

	res, err := client.Do(r)
	if err != nil {
		return nil, classify(err, req.Host)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, classify(err, req.Host)
	}

	return &Response{StatusCode: res.StatusCode, Header: res.Header, Body: body}, nil
}
