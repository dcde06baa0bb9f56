package auth

import (
	"crypto/md5"
	"crypto/sha256"
	"fmt"
	"hash"
	"strings"
)

const digestNC = "00000001"

// BuildDigest - RFC 2617 / RFC 7616 Authorization header value
func BuildDigest(method, uri string, cred Credential, ch *DigestChallenge) string {
	return buildDigest(method, uri, cred, ch, CNonce())
}

func buildDigest(method, uri string, cred Credential, ch *DigestChallenge, cnonce string) string {
	newHash, sess := digestAlgorithm(ch.Algorithm)

	ha1 := hexHash(newHash(), cred.Username, ch.Realm, cred.Password)
	if sess {
		ha1 = hexHash(newHash(), ha1, ch.Nonce, cnonce)
	}
	ha2 := hexHash(newHash(), method, uri)

	qop := selectQOP(ch.QOP)

	var response string
	if qop != "" {
		response = hexHash(newHash(), ha1, ch.Nonce, digestNC, cnonce, qop, ha2)
	} else {
		response = hexHash(newHash(), ha1, ch.Nonce, ha2)
	}

	header := fmt.Sprintf(
		`Digest username="%s", realm="%s", nonce="%s", uri="%s"`,
		cred.Username, ch.Realm, ch.Nonce, uri,
	)
	if ch.Algorithm != "" {
		header += ", algorithm=" + ch.Algorithm
	}
	if qop != "" {
		header += fmt.Sprintf(`, qop=%s, nc=%s, cnonce="%s"`, qop, digestNC, cnonce)
	}
	header += fmt.Sprintf(`, response="%s"`, response)
	if ch.Opaque != "" {
		header += fmt.Sprintf(`, opaque="%s"`, ch.Opaque)
	}

	return header
}

// digestAlgorithm matches by prefix, ignoring case: some firmware sends "sha-256" or "SHA-256-sess".
func digestAlgorithm(algorithm string) (func() hash.Hash, bool) {
	s := strings.ToUpper(algorithm)
	sess := strings.HasSuffix(s, "-SESS")
	if strings.HasPrefix(s, "SHA-256") {
		return sha256.New, sess
	}
	return md5.New, sess
}

// selectQOP picks "auth" from a list like "auth,auth-int". The body is never
// hashed, so an "auth-int" only challenge is answered without qop.
func selectQOP(qop string) string {
	for _, s := range strings.Split(qop, ",") {
		if strings.TrimSpace(s) == "auth" {
			return "auth"
		}
	}
	return ""
}
