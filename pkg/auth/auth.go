package auth

import (
	"crypto/md5"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"hash"
	"net/http"
	"strings"
)

type Credential struct {
	Username string `json:"username" yaml:"username"`
	Password string `json:"password" yaml:"password"`
}

type Scheme byte

const (
	SchemeNone Scheme = iota
	SchemeDigest
	SchemeBasic
	SchemeAuthn // vendor SHA-256 scheme with auth_tkt session cookie
)

func (s Scheme) String() string {
	switch s {
	case SchemeDigest:
		return "digest"
	case SchemeBasic:
		return "basic"
	case SchemeAuthn:
		return "authn"
	}
	return "none"
}

// Challenge is one of *DigestChallenge, *BasicChallenge or *AuthnChallenge.
type Challenge interface {
	Scheme() Scheme
}

type DigestChallenge struct {
	Realm     string
	Nonce     string
	Opaque    string
	QOP       string
	Algorithm string
}

func (*DigestChallenge) Scheme() Scheme { return SchemeDigest }

type BasicChallenge struct{}

func (*BasicChallenge) Scheme() Scheme { return SchemeBasic }

type AuthnChallenge struct {
	Realm  string
	Nonce  string
	Cookie string // "auth_tkt=..." as received, without attributes
}

func (*AuthnChallenge) Scheme() Scheme { return SchemeAuthn }

// Header builds request headers that answer the challenge.
func Header(method, uri string, cred Credential, ch Challenge) http.Header {
	header := http.Header{}

	switch ch := ch.(type) {
	case *DigestChallenge:
		header.Set("Authorization", BuildDigest(method, uri, cred, ch))
	case *BasicChallenge:
		header.Set("Authorization", BuildBasic(cred))
	case *AuthnChallenge:
		for k, v := range BuildAuthn(uri, cred, ch) {
			header[k] = v
		}
	}

	return header
}

func HexMD5(s ...string) string {
	return hexHash(md5.New(), s...)
}

func HexSHA256(s ...string) string {
	return hexHash(sha256.New(), s...)
}

func hexHash(h hash.Hash, s ...string) string {
	h.Write([]byte(strings.Join(s, ":")))
	return hex.EncodeToString(h.Sum(nil))
}

func B64(s ...string) string {
	b := []byte(strings.Join(s, ":"))
	return base64.StdEncoding.EncodeToString(b)
}

// CNonce returns 8 random bytes in hex
func CNonce() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b)
}
