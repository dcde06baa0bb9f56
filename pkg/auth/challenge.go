package auth

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
)

var ErrUnknownScheme = errors.New("auth: unknown authentication scheme")

// Parse selects the scheme from a 401 response: WWW-Authenticate first,
// then a bare auth_tkt session cookie.
func Parse(header http.Header) (Challenge, error) {
	www := header.Get("WWW-Authenticate")
	cookie := findCookie(header)

	s := strings.ToLower(strings.TrimSpace(www))

	switch {
	case strings.HasPrefix(s, "digest"):
		params := ParseParams(www)
		return &DigestChallenge{
			Realm:     params["realm"],
			Nonce:     params["nonce"],
			Opaque:    params["opaque"],
			QOP:       params["qop"],
			Algorithm: params["algorithm"],
		}, nil

	case strings.HasPrefix(s, "authn"), strings.HasPrefix(s, CookieName):
		params := ParseParams(www)
		return &AuthnChallenge{
			Realm:  params["realm"],
			Nonce:  params["nonce"],
			Cookie: cookie,
		}, nil

	case strings.HasPrefix(s, "basic"):
		return &BasicChallenge{}, nil
	}

	if cookie == "" {
		if www == "" {
			return nil, ErrUnknownScheme
		}
		return nil, fmt.Errorf("%w: %s", ErrUnknownScheme, www)
	}

	nonce, err := CookieNonce(cookie[len(CookieName)+1:])
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnknownScheme, err)
	}

	return &AuthnChallenge{Nonce: nonce, Cookie: cookie}, nil
}

var reParam = regexp.MustCompile(`([\w-]+)=(?:"([^"]*)"|([^\s,]+))`)

// ParseParams - `Digest realm="x", nonce="y", qop=auth` => {realm: x, nonce: y, qop: auth}
func ParseParams(s string) map[string]string {
	params := map[string]string{}
	for _, m := range reParam.FindAllStringSubmatch(s, -1) {
		key := strings.ToLower(m[1])
		if m[2] != "" {
			params[key] = m[2]
		} else {
			params[key] = m[3]
		}
	}
	return params
}

// findCookie returns "auth_tkt=value" from Set-Cookie, without attributes
func findCookie(header http.Header) string {
	for _, s := range header.Values("Set-Cookie") {
		s = strings.TrimSpace(s)
		if !strings.HasPrefix(s, CookieName+"=") {
			continue
		}
		if i := strings.IndexByte(s, ';'); i > 0 {
			s = s[:i]
		}
		return s
	}
	return ""
}
