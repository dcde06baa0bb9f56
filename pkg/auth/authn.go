package auth

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

const (
	HeaderAuthn = "Authn"
	CookieName  = "auth_tkt"
)

// BuildAuthn answers the vendor SHA-256 challenge. The firmware always hashes
// "GET:uri" into HA2, whatever the real request method is.
func BuildAuthn(uri string, cred Credential, ch *AuthnChallenge) http.Header {
	return buildAuthn(uri, cred, ch, CNonce())
}

func buildAuthn(uri string, cred Credential, ch *AuthnChallenge, cnonce string) http.Header {
	ha1 := HexSHA256(cred.Username, ch.Realm, cred.Password)
	ha2 := HexSHA256("GET", uri)
	response := HexSHA256(ha1, ch.Nonce, cnonce, ha2)

	header := http.Header{}
	header.Set(HeaderAuthn, fmt.Sprintf(
		`Authn username="%s", realm="%s", nonce="%s", uri="%s", cnonce="%s", response="%s"`,
		cred.Username, ch.Realm, ch.Nonce, uri, cnonce, response,
	))
	header.Set("User-From", "www")
	if ch.Cookie != "" {
		header.Set("Cookie", ch.Cookie)
	}
	return header
}

var ErrBadCookie = errors.New("auth: malformed auth_tkt cookie")

// CookieNonce extracts nonce from base64("nonce!username!token")
func CookieNonce(value string) (string, error) {
	value = strings.Trim(value, `"`)

	var b []byte
	var err error
	for _, enc := range []*base64.Encoding{
		base64.StdEncoding, base64.RawStdEncoding, base64.URLEncoding, base64.RawURLEncoding,
	} {
		if b, err = enc.DecodeString(value); err == nil {
			break
		}
	}
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrBadCookie, err)
	}

	parts := strings.Split(string(b), "!")
	if len(parts) < 2 || parts[0] == "" {
		return "", fmt.Errorf("%w: %q", ErrBadCookie, b)
	}

	return parts[0], nil
}
